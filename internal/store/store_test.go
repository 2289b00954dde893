package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTradeRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := &Trade{
		Symbol:    "AAPL",
		Action:    "buy",
		Quantity:  10,
		Price:     150.25,
		Total:     1502.5,
		Status:    "pending",
		Mode:      "paper",
		Rationale: "combined signal BUY",
	}
	require.NoError(t, s.InsertTrade(ctx, in))
	require.NotZero(t, in.ID)

	got, err := s.GetTrade(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, int64(10), got.Quantity)
	assert.Equal(t, "pending", got.Status)
	assert.Nil(t, got.ExecutedAt)

	_, err = s.GetTrade(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTradeStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tr := &Trade{Symbol: "X", Action: "buy", Quantity: 1, Price: 10, Total: 10, Status: "ready", Mode: "paper"}
	require.NoError(t, s.InsertTrade(ctx, tr))

	at := time.Now().Truncate(time.Second)
	require.NoError(t, s.UpdateTradeStatus(ctx, tr.ID, "executed", &at))

	got, err := s.GetTrade(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "executed", got.Status)
	require.NotNil(t, got.ExecutedAt)
	assert.True(t, got.ExecutedAt.Equal(at))

	err = s.UpdateTradeStatus(ctx, 9999, "executed", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTrades_FilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		status := "executed"
		if i%2 == 0 {
			status = "pending"
		}
		tr := &Trade{
			Symbol:    "S",
			Action:    "buy",
			Quantity:  int64(i + 1),
			Price:     10,
			Total:     float64((i + 1) * 10),
			Status:    status,
			Mode:      "paper",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.InsertTrade(ctx, tr))
	}

	all, err := s.ListTrades(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(5), all[0].Quantity, "newest first")

	pending, err := s.ListTrades(ctx, "pending", 10)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	limited, err := s.ListTrades(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRealizedPnLSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	insert := func(action, status, mode string, total float64, createdAt time.Time) {
		tr := &Trade{Symbol: "S", Action: action, Quantity: 1, Price: total, Total: total,
			Status: status, Mode: mode, CreatedAt: createdAt}
		require.NoError(t, s.InsertTrade(ctx, tr))
		if status == "executed" {
			require.NoError(t, s.UpdateTradeStatus(ctx, tr.ID, "executed", &now))
		}
	}

	insert("sell", "executed", "paper", 500, now)     // +500
	insert("buy", "executed", "paper", 1100, now)     // -1100
	insert("buy", "executed", "advisory", 9999, now)  // advisory, ignored
	insert("buy", "pending", "paper", 9999, now)      // not executed, ignored
	insert("sell", "executed", "paper", 9999, now.Add(-48*time.Hour)) // created before window

	pnl, err := s.RealizedPnLSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, -600.0, pnl, 1e-9)
}

func TestConfigSingleton(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	def := AgentConfig{
		Mode:                 "advisory",
		RiskProfile:          "moderate",
		MaxTradePct:          10,
		MaxPositionPct:       20,
		DailyLossLimitPct:    5,
		ConfirmAboveUSD:      500,
		CheckIntervalSeconds: 300,
	}

	got, err := s.LoadConfig(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, "moderate", got.RiskProfile)
	assert.False(t, got.Enabled)

	got.Enabled = true
	got.RiskProfile = "aggressive"
	got.MaxTradePct = 20
	got.Whitelist = []string{"AAPL", "MSFT"}
	require.NoError(t, s.SaveConfig(ctx, got))

	reloaded, err := s.LoadConfig(ctx, def)
	require.NoError(t, err)
	assert.True(t, reloaded.Enabled)
	assert.Equal(t, "aggressive", reloaded.RiskProfile)
	assert.Equal(t, 20.0, reloaded.MaxTradePct)
	assert.Equal(t, []string{"AAPL", "MSFT"}, reloaded.Whitelist)
}

func TestWatchlist(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddWatchSymbol(ctx, "AAPL"))
	require.NoError(t, s.AddWatchSymbol(ctx, "MSFT"))
	require.NoError(t, s.AddWatchSymbol(ctx, "AAPL"), "duplicate add is a no-op")

	syms, err := s.Watchlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, syms)

	require.NoError(t, s.RemoveWatchSymbol(ctx, "AAPL"))
	assert.ErrorIs(t, s.RemoveWatchSymbol(ctx, "AAPL"), ErrNotFound)

	syms, err = s.Watchlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, syms)
}
