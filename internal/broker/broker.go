// Package broker abstracts order execution. The paper broker simulates
// fills against a cash balance; the Alpaca broker submits real market
// orders over REST.
package broker

import (
	"context"
	"fmt"
)

// Order is a market order request as the execution layer sees it.
type Order struct {
	Symbol   string  `json:"symbol"`
	Action   string  `json:"action"` // buy | sell
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"` // reference price for simulation and records
}

// ExecutionAdapter places orders and reports account value.
type ExecutionAdapter interface {
	PlaceOrder(ctx context.Context, order Order) error
	AccountValue(ctx context.Context) (float64, error)
}

// OrderError describes a rejected or failed order.
type OrderError struct {
	Symbol  string
	Message string
	Cause   error
}

func (e *OrderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("order %s: %s: %v", e.Symbol, e.Message, e.Cause)
	}
	return fmt.Sprintf("order %s: %s", e.Symbol, e.Message)
}

func (e *OrderError) Unwrap() error { return e.Cause }
