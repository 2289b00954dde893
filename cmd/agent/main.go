package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradeagent/internal/agent"
	"tradeagent/internal/api"
	"tradeagent/internal/broker"
	"tradeagent/internal/config"
	"tradeagent/internal/market"
	"tradeagent/internal/observ"
	sig "tradeagent/internal/signal"
	"tradeagent/internal/store"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config/config.yaml", "config path")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config %s: %v", cfgPath, err)
	}

	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	marketTimeout := time.Duration(cfg.Market.TimeoutSeconds) * time.Second
	yahoo := market.NewYahooProvider(cfg.Market.RatePerMinute, marketTimeout)
	quotes := market.NewQuoteCache(yahoo, time.Duration(cfg.Market.QuoteTTLSeconds)*time.Second)

	var news market.NewsProvider
	if cfg.Market.FinnhubAPIKey != "" {
		news = market.NewFinnhubNews(cfg.Market.FinnhubAPIKey, marketTimeout)
	}

	var exec broker.ExecutionAdapter
	switch cfg.Broker.Kind {
	case "alpaca":
		exec = broker.NewAlpacaBroker(cfg.Broker.BaseURL, cfg.Broker.APIKey, cfg.Broker.SecretKey,
			time.Duration(cfg.Broker.TimeoutMs)*time.Millisecond)
	default:
		exec = broker.NewPaperBroker(cfg.Broker.PaperCashUSD)
	}

	ctrl := agent.NewController(st, yahoo, quotes, news, sig.LexiconScorer{}, exec, agent.Options{
		DefaultPortfolioUSD: cfg.Agent.DefaultPortfolioUSD,
		MinConfidence:       cfg.Agent.MinConfidence,
		RiskPerTrade:        cfg.Agent.RiskPerTrade,
		HistoryPeriod:       cfg.Market.HistoryPeriod,
		NewsWindow:          time.Duration(cfg.Market.NewsWindowDays) * 24 * time.Hour,
		RecommendationTTL:   time.Duration(cfg.Market.RecTTLSeconds) * time.Second,
	})

	scheduler := agent.NewScheduler(func(ctx context.Context) {
		if _, err := ctrl.RunCycle(ctx); err != nil && !errors.Is(err, agent.ErrCycleInFlight) {
			observ.LogError("scheduled_cycle_failed", err, nil)
		}
	}, 2*time.Minute)
	defer scheduler.Stop()

	agentCfg, err := st.LoadConfig(context.Background(), agent.DefaultConfig())
	if err != nil {
		log.Fatalf("load agent config: %v", err)
	}
	scheduler.Reschedule(agentCfg.Enabled, time.Duration(agentCfg.CheckIntervalSeconds)*time.Second)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewServer(st, ctrl, scheduler).Handler(),
	}

	go func() {
		observ.Log("server_listening", map[string]any{"addr": cfg.Server.Addr, "broker": cfg.Broker.Kind})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen %s: %v", cfg.Server.Addr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	observ.Log("server_shutting_down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
