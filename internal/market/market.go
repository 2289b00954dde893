package market

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PriceBar is one OHLCV bar. Sequences are ordered ascending by date and
// immutable once fetched.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote is a normalized snapshot quote.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	PrevClose float64   `json:"prev_close"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// NewsItem is one headline with its summary.
type NewsItem struct {
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// HistoryProvider returns daily bars for a symbol over a named period
// (e.g. "1mo", "3mo", "1y"). A short or empty result is a valid outcome,
// not an error.
type HistoryProvider interface {
	History(ctx context.Context, symbol, period string) ([]PriceBar, error)
}

// QuoteProvider returns a current quote.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// NewsProvider returns recent news items for a symbol. An empty list is a
// valid result.
type NewsProvider interface {
	News(ctx context.Context, symbol string, window time.Duration) ([]NewsItem, error)
}

// DataError distinguishes unavailable-data conditions from programming
// errors, matching the fallback contract of the providers.
type DataError struct {
	Symbol  string
	Message string
	Cause   error
}

func (e *DataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("market data unavailable for %s: %s (%v)", e.Symbol, e.Message, e.Cause)
	}
	return fmt.Sprintf("market data unavailable for %s: %s", e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error { return e.Cause }

// NormalizeSymbol uppercases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// PeriodDays maps a named history period to a day count.
func PeriodDays(period string) int {
	switch period {
	case "1w":
		return 7
	case "1mo":
		return 31
	case "3mo":
		return 92
	case "6mo":
		return 183
	case "1y":
		return 366
	default:
		return 92
	}
}
