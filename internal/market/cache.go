package market

import (
	"context"
	"sync"
	"time"

	"tradeagent/internal/observ"
)

// QuoteCache wraps a QuoteProvider with a TTL cache. A fresh entry is served
// without touching the provider; on refresh failure an expired entry still
// serves as a fallback so a flaky provider degrades instead of failing the
// caller.
type QuoteCache struct {
	mu       sync.Mutex
	provider QuoteProvider
	ttl      time.Duration
	entries  map[string]cachedQuote
	now      func() time.Time
}

type cachedQuote struct {
	quote     Quote
	fetchedAt time.Time
}

func NewQuoteCache(provider QuoteProvider, ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		provider: provider,
		ttl:      ttl,
		entries:  map[string]cachedQuote{},
		now:      time.Now,
	}
}

func (c *QuoteCache) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = NormalizeSymbol(symbol)

	c.mu.Lock()
	entry, ok := c.entries[symbol]
	c.mu.Unlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		observ.IncCounter("quote_cache_hit_total", map[string]string{"symbol": symbol})
		return entry.quote, nil
	}
	observ.IncCounter("quote_cache_miss_total", map[string]string{"symbol": symbol})

	q, err := c.provider.Quote(ctx, symbol)
	if err != nil {
		if ok {
			// expired entry beats no entry
			observ.IncCounter("quote_cache_stale_serve_total", map[string]string{"symbol": symbol})
			return entry.quote, nil
		}
		return Quote{}, err
	}

	c.mu.Lock()
	c.entries[symbol] = cachedQuote{quote: q, fetchedAt: c.now()}
	c.mu.Unlock()
	return q, nil
}
