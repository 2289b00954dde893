package market

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"tradeagent/internal/observ"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubNews fetches company news from the Finnhub API. With no API key
// configured it returns an empty list, which downstream treats as a neutral
// no-news outcome.
type FinnhubNews struct {
	client   *resty.Client
	limiter  *rate.Limiter
	apiKey   string
	maxItems int
}

type finnhubArticle struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

func NewFinnhubNews(apiKey string, timeout time.Duration) *FinnhubNews {
	client := resty.New()
	client.SetBaseURL(finnhubBaseURL)
	client.SetTimeout(timeout)

	return &FinnhubNews{
		client:   client,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 5),
		apiKey:   apiKey,
		maxItems: 10,
	}
}

func (f *FinnhubNews) News(ctx context.Context, symbol string, window time.Duration) ([]NewsItem, error) {
	symbol = NormalizeSymbol(symbol)
	if f.apiKey == "" {
		return nil, nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &DataError{Symbol: symbol, Message: "rate limit wait", Cause: err}
	}

	to := time.Now()
	from := to.Add(-window)

	var articles []finnhubArticle
	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
			"token":  f.apiKey,
		}).
		SetResult(&articles).
		Get("/company-news")
	observ.ObserveDuration("finnhub_news_latency", time.Since(start), nil)

	if err != nil {
		observ.IncCounter("finnhub_news_errors_total", map[string]string{"symbol": symbol})
		return nil, &DataError{Symbol: symbol, Message: "news fetch failed", Cause: err}
	}
	if resp.StatusCode() != 200 {
		observ.IncCounter("finnhub_news_errors_total", map[string]string{"symbol": symbol})
		return nil, &DataError{Symbol: symbol, Message: fmt.Sprintf("news fetch status %d", resp.StatusCode())}
	}

	items := make([]NewsItem, 0, f.maxItems)
	for _, a := range articles {
		if a.Headline == "" {
			continue
		}
		items = append(items, NewsItem{
			Headline:    a.Headline,
			Summary:     a.Summary,
			Source:      a.Source,
			PublishedAt: time.Unix(a.DateTime, 0),
		})
		if len(items) >= f.maxItems {
			break
		}
	}
	return items, nil
}
