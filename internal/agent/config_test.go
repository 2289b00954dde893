package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestApplyUpdate_ProfilePresetOverwritesThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTradePct = 7 // hand-tuned value that a profile switch must replace

	got, err := ApplyUpdate(cfg, ConfigUpdate{RiskProfile: ptr(ProfileConservative)})
	require.NoError(t, err)
	assert.Equal(t, ProfileConservative, got.RiskProfile)
	assert.Equal(t, 5.0, got.MaxTradePct)
	assert.Equal(t, 10.0, got.MaxPositionPct)
	assert.Equal(t, 2.0, got.DailyLossLimitPct)
	assert.Equal(t, 100.0, got.ConfirmAboveUSD)
}

func TestApplyUpdate_OverridesApplyAfterPreset(t *testing.T) {
	got, err := ApplyUpdate(DefaultConfig(), ConfigUpdate{
		RiskProfile: ptr(ProfileAggressive),
		MaxTradePct: ptr(15.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.MaxTradePct, "explicit override wins over the preset")
	assert.Equal(t, 40.0, got.MaxPositionPct, "untouched fields keep the preset value")
}

func TestApplyUpdate_RejectsInvalidInput(t *testing.T) {
	cases := []ConfigUpdate{
		{Mode: ptr("yolo")},
		{RiskProfile: ptr("reckless")},
		{MaxTradePct: ptr(0.0)},
		{MaxTradePct: ptr(150.0)},
		{MaxPositionPct: ptr(-1.0)},
		{DailyLossLimitPct: ptr(0.0)},
		{ConfirmAboveUSD: ptr(-5.0)},
		{CheckIntervalSeconds: ptr(1)},
	}
	for i, u := range cases {
		_, err := ApplyUpdate(DefaultConfig(), u)
		assert.Errorf(t, err, "case %d should be rejected", i)
	}
}

func TestApplyUpdate_PartialUpdateLeavesRestAlone(t *testing.T) {
	cfg := DefaultConfig()
	got, err := ApplyUpdate(cfg, ConfigUpdate{Enabled: ptr(true), Whitelist: ptr([]string{"AAPL"})})
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.Equal(t, []string{"AAPL"}, got.Whitelist)
	assert.Equal(t, cfg.Mode, got.Mode)
	assert.Equal(t, cfg.MaxTradePct, got.MaxTradePct)
}
