package broker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"tradeagent/internal/observ"
)

// PaperBroker simulates fills against an in-memory cash balance with a
// small latency and a configurable failure rate. Positions are tracked so
// sells of stock the account never bought are rejected.
type PaperBroker struct {
	mu        sync.Mutex
	cash      float64
	positions map[string]int64
	random    *rand.Rand

	// FailureRate is the probability in [0,1) that an otherwise valid
	// order fails, for exercising failure paths. Zero in normal use.
	FailureRate float64
	// Latency per order; zero disables the sleep.
	Latency time.Duration
}

// NewPaperBroker starts a simulated account with the given cash balance.
func NewPaperBroker(cash float64) *PaperBroker {
	return &PaperBroker{
		cash:      cash,
		positions: map[string]int64{},
		random:    rand.New(rand.NewSource(time.Now().UnixNano())),
		Latency:   20 * time.Millisecond,
	}
}

// PlaceOrder fills the order at its reference price, adjusting cash and
// the position book.
func (b *PaperBroker) PlaceOrder(ctx context.Context, order Order) error {
	if b.Latency > 0 {
		select {
		case <-time.After(b.Latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if order.Quantity <= 0 {
		return &OrderError{Symbol: order.Symbol, Message: "quantity must be positive"}
	}
	if order.Price <= 0 {
		return &OrderError{Symbol: order.Symbol, Message: "missing reference price"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailureRate > 0 && b.random.Float64() < b.FailureRate {
		observ.IncCounter("paper_order_failures_total", map[string]string{"symbol": order.Symbol})
		return &OrderError{Symbol: order.Symbol, Message: "simulated venue rejection"}
	}

	total := float64(order.Quantity) * order.Price
	switch order.Action {
	case "buy":
		if total > b.cash {
			return &OrderError{Symbol: order.Symbol, Message: "insufficient cash"}
		}
		b.cash -= total
		b.positions[order.Symbol] += order.Quantity
	case "sell":
		if b.positions[order.Symbol] < order.Quantity {
			return &OrderError{Symbol: order.Symbol, Message: "insufficient position"}
		}
		b.cash += total
		b.positions[order.Symbol] -= order.Quantity
	default:
		return &OrderError{Symbol: order.Symbol, Message: "unknown action " + order.Action}
	}

	observ.IncCounter("paper_orders_filled_total", map[string]string{"action": order.Action})
	observ.Log("paper_order_filled", map[string]any{
		"symbol": order.Symbol, "action": order.Action,
		"quantity": order.Quantity, "price": order.Price, "cash": b.cash,
	})
	return nil
}

// AccountValue returns remaining cash. Open positions are not marked to
// market; the paper account is a cash-accounting simulation.
func (b *PaperBroker) AccountValue(ctx context.Context) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cash, nil
}

// Position reports the current holding for a symbol.
func (b *PaperBroker) Position(symbol string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positions[symbol]
}
