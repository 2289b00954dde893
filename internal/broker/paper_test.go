package broker

import (
	"context"
	"errors"
	"testing"
)

func newTestBroker(cash float64) *PaperBroker {
	b := NewPaperBroker(cash)
	b.Latency = 0
	return b
}

func TestPaperBroker_BuySellRoundTrip(t *testing.T) {
	b := newTestBroker(10000)
	ctx := context.Background()

	if err := b.PlaceOrder(ctx, Order{Symbol: "AAPL", Action: "buy", Quantity: 10, Price: 100}); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if got := b.Position("AAPL"); got != 10 {
		t.Fatalf("position = %d, want 10", got)
	}
	cash, _ := b.AccountValue(ctx)
	if cash != 9000 {
		t.Fatalf("cash = %v, want 9000", cash)
	}

	if err := b.PlaceOrder(ctx, Order{Symbol: "AAPL", Action: "sell", Quantity: 10, Price: 110}); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	cash, _ = b.AccountValue(ctx)
	if cash != 10100 {
		t.Fatalf("cash = %v, want 10100 after profitable round trip", cash)
	}
}

func TestPaperBroker_Rejections(t *testing.T) {
	b := newTestBroker(100)
	ctx := context.Background()

	if err := b.PlaceOrder(ctx, Order{Symbol: "X", Action: "buy", Quantity: 10, Price: 100}); err == nil {
		t.Fatalf("buy beyond cash must fail")
	}
	if err := b.PlaceOrder(ctx, Order{Symbol: "X", Action: "sell", Quantity: 1, Price: 100}); err == nil {
		t.Fatalf("selling stock never bought must fail")
	}
	if err := b.PlaceOrder(ctx, Order{Symbol: "X", Action: "buy", Quantity: 0, Price: 100}); err == nil {
		t.Fatalf("zero quantity must fail")
	}
	if err := b.PlaceOrder(ctx, Order{Symbol: "X", Action: "hold", Quantity: 1, Price: 100}); err == nil {
		t.Fatalf("unknown action must fail")
	}
}

func TestPaperBroker_ConfiguredFailureRate(t *testing.T) {
	b := newTestBroker(100000)
	b.FailureRate = 1.0
	err := b.PlaceOrder(context.Background(), Order{Symbol: "X", Action: "buy", Quantity: 1, Price: 10})
	if err == nil {
		t.Fatalf("failure rate 1.0 must reject every order")
	}
	var oe *OrderError
	if !errors.As(err, &oe) {
		t.Fatalf("want *OrderError, got %T", err)
	}
}
