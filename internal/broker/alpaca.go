package broker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"tradeagent/internal/observ"
)

// AlpacaBroker submits market day orders to the Alpaca trading API.
// Point BaseURL at the paper endpoint for dry trading.
type AlpacaBroker struct {
	client *resty.Client
}

// NewAlpacaBroker builds a client for the given endpoint and key pair.
func NewAlpacaBroker(baseURL, apiKey, secretKey string, timeout time.Duration) *AlpacaBroker {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("APCA-API-KEY-ID", apiKey).
		SetHeader("APCA-API-SECRET-KEY", secretKey).
		SetHeader("Content-Type", "application/json")
	return &AlpacaBroker{client: client}
}

type alpacaOrderRequest struct {
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
}

type alpacaOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type alpacaAccountResponse struct {
	Equity string `json:"equity"`
	Status string `json:"status"`
}

// PlaceOrder submits a market day order.
func (b *AlpacaBroker) PlaceOrder(ctx context.Context, order Order) error {
	if order.Quantity <= 0 {
		return &OrderError{Symbol: order.Symbol, Message: "quantity must be positive"}
	}
	var out alpacaOrderResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(alpacaOrderRequest{
			Symbol:      order.Symbol,
			Qty:         strconv.FormatInt(order.Quantity, 10),
			Side:        order.Action,
			Type:        "market",
			TimeInForce: "day",
		}).
		SetResult(&out).
		Post("/v2/orders")
	if err != nil {
		return &OrderError{Symbol: order.Symbol, Message: "submit order", Cause: err}
	}
	if resp.IsError() {
		return &OrderError{
			Symbol:  order.Symbol,
			Message: fmt.Sprintf("order rejected: %s: %s", resp.Status(), resp.String()),
		}
	}
	observ.Log("alpaca_order_submitted", map[string]any{
		"symbol": order.Symbol, "action": order.Action,
		"quantity": order.Quantity, "order_id": out.ID, "status": out.Status,
	})
	return nil
}

// AccountValue returns current account equity.
func (b *AlpacaBroker) AccountValue(ctx context.Context) (float64, error) {
	var out alpacaAccountResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/v2/account")
	if err != nil {
		return 0, fmt.Errorf("alpaca account: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("alpaca account: %s", resp.Status())
	}
	equity, err := strconv.ParseFloat(out.Equity, 64)
	if err != nil {
		return 0, fmt.Errorf("alpaca account: parse equity %q: %w", out.Equity, err)
	}
	return equity, nil
}
