package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Addr string `yaml:"addr"`
}

type Storage struct {
	DBPath string `yaml:"db_path"`
}

type Market struct {
	HistoryPeriod   string `yaml:"history_period"` // e.g. "3mo"
	NewsWindowDays  int    `yaml:"news_window_days"`
	QuoteTTLSeconds int    `yaml:"quote_ttl_seconds"`
	RecTTLSeconds   int    `yaml:"recommendation_ttl_seconds"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	RatePerMinute   int    `yaml:"rate_per_minute"`
	FinnhubAPIKey   string `yaml:"finnhub_api_key"` // env FINNHUB_API_KEY wins
}

type Broker struct {
	Kind         string  `yaml:"kind"` // paper | alpaca
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"api_key"`    // env ALPACA_API_KEY wins
	SecretKey    string  `yaml:"secret_key"` // env ALPACA_SECRET_KEY wins
	TimeoutMs    int     `yaml:"timeout_ms"`
	PaperCashUSD float64 `yaml:"paper_cash_usd"`
}

type Agent struct {
	DefaultPortfolioUSD float64 `yaml:"default_portfolio_usd"`
	MinConfidence       float64 `yaml:"min_confidence"`
	RiskPerTrade        float64 `yaml:"risk_per_trade"`
}

type Root struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Market  Market  `yaml:"market"`
	Broker  Broker  `yaml:"broker"`
	Agent   Agent   `yaml:"agent"`
}

func Load(path string) (Root, error) {
	var c Root
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "data/agent.db"
	}
	if c.Market.HistoryPeriod == "" {
		c.Market.HistoryPeriod = "3mo"
	}
	if c.Market.NewsWindowDays == 0 {
		c.Market.NewsWindowDays = 7
	}
	if c.Market.QuoteTTLSeconds == 0 {
		c.Market.QuoteTTLSeconds = 15
	}
	if c.Market.RecTTLSeconds == 0 {
		c.Market.RecTTLSeconds = 300
	}
	if c.Market.TimeoutSeconds == 0 {
		c.Market.TimeoutSeconds = 10
	}
	if c.Market.RatePerMinute == 0 {
		c.Market.RatePerMinute = 60
	}
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		c.Market.FinnhubAPIKey = key
	}

	if c.Broker.Kind == "" {
		c.Broker.Kind = "paper"
	}
	if c.Broker.BaseURL == "" {
		c.Broker.BaseURL = "https://paper-api.alpaca.markets"
	}
	if c.Broker.TimeoutMs == 0 {
		c.Broker.TimeoutMs = 10000
	}
	if c.Broker.PaperCashUSD == 0 {
		c.Broker.PaperCashUSD = 10000
	}
	if key := os.Getenv("ALPACA_API_KEY"); key != "" {
		c.Broker.APIKey = key
	}
	if key := os.Getenv("ALPACA_SECRET_KEY"); key != "" {
		c.Broker.SecretKey = key
	}

	if c.Agent.DefaultPortfolioUSD == 0 {
		c.Agent.DefaultPortfolioUSD = 10000
	}
	if c.Agent.MinConfidence == 0 {
		c.Agent.MinConfidence = 0.3
	}
	if c.Agent.RiskPerTrade == 0 {
		c.Agent.RiskPerTrade = 0.02
	}

	return c, nil
}
