package market

import (
	"context"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"golang.org/x/time/rate"

	"tradeagent/internal/observ"
)

// YahooProvider serves quotes and daily history from Yahoo Finance. Calls
// are rate limited so a large watchlist cannot burn through the upstream
// goodwill budget in one cycle.
type YahooProvider struct {
	limiter *rate.Limiter
	timeout time.Duration
}

func NewYahooProvider(ratePerMinute int, timeout time.Duration) *YahooProvider {
	return &YahooProvider{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), ratePerMinute),
		timeout: timeout,
	}
}

func (p *YahooProvider) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = NormalizeSymbol(symbol)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.limiter.Wait(ctx); err != nil {
		return Quote{}, &DataError{Symbol: symbol, Message: "rate limit wait", Cause: err}
	}

	start := time.Now()
	q, err := quote.Get(symbol)
	observ.ObserveDuration("yahoo_quote_latency", time.Since(start), nil)
	if err != nil {
		observ.IncCounter("yahoo_quote_errors_total", map[string]string{"symbol": symbol})
		return Quote{}, &DataError{Symbol: symbol, Message: "quote fetch failed", Cause: err}
	}
	if q == nil || q.RegularMarketPrice <= 0 {
		return Quote{}, &DataError{Symbol: symbol, Message: "no quote data"}
	}

	prev := q.RegularMarketPreviousClose
	change := q.RegularMarketPrice - prev
	changePct := 0.0
	if prev > 0 {
		changePct = change / prev * 100
	}
	return Quote{
		Symbol:    symbol,
		Price:     q.RegularMarketPrice,
		PrevClose: prev,
		Change:    change,
		ChangePct: changePct,
		Volume:    int64(q.RegularMarketVolume),
		Timestamp: time.Unix(int64(q.RegularMarketTime), 0),
	}, nil
}

func (p *YahooProvider) History(ctx context.Context, symbol, period string) ([]PriceBar, error) {
	symbol = NormalizeSymbol(symbol)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &DataError{Symbol: symbol, Message: "rate limit wait", Cause: err}
	}

	end := time.Now()
	startDate := end.AddDate(0, 0, -PeriodDays(period))
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&startDate),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	start := time.Now()
	iter := chart.Get(params)
	bars := make([]PriceBar, 0, PeriodDays(period))
	for iter.Next() {
		b := iter.Bar()
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		closeP, _ := b.Close.Float64()
		bars = append(bars, PriceBar{
			Date:   time.Unix(int64(b.Timestamp), 0),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeP,
			Volume: int64(b.Volume),
		})
	}
	observ.ObserveDuration("yahoo_history_latency", time.Since(start), nil)
	if err := iter.Err(); err != nil {
		observ.IncCounter("yahoo_history_errors_total", map[string]string{"symbol": symbol})
		return nil, &DataError{Symbol: symbol, Message: "history fetch failed", Cause: err}
	}
	// empty history is a valid outcome; the analyzer handles short series
	return bars, nil
}
