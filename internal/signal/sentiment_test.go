package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeagent/internal/market"
)

type stubScorer struct {
	result SentimentScore
	err    error
	calls  int
}

func (s *stubScorer) Score(_ context.Context, _ []market.NewsItem, _ string) (SentimentScore, error) {
	s.calls++
	return s.result, s.err
}

func news(headlines ...string) []market.NewsItem {
	items := make([]market.NewsItem, len(headlines))
	for i, h := range headlines {
		items[i] = market.NewsItem{Headline: h}
	}
	return items
}

func TestAnalyzeSentiment_NoItemsShortCircuits(t *testing.T) {
	scorer := &stubScorer{}
	sig := AnalyzeSentiment(context.Background(), scorer, "aapl", nil)

	assert.Equal(t, 0, scorer.calls, "scorer must not be called with zero items")
	assert.Equal(t, Hold, sig.Signal)
	assert.Equal(t, Neutral, sig.Sentiment)
	assert.Zero(t, sig.Score)
	assert.Zero(t, sig.Confidence)
	assert.Zero(t, sig.ItemCount)
	assert.Equal(t, "AAPL", sig.Symbol)
}

func TestAnalyzeSentiment_ScorerFailureDegradesToNeutral(t *testing.T) {
	scorer := &stubScorer{err: errors.New("model timeout")}
	sig := AnalyzeSentiment(context.Background(), scorer, "AAPL", news("a", "b"))

	assert.Equal(t, Hold, sig.Signal)
	assert.Equal(t, Neutral, sig.Sentiment)
	assert.Zero(t, sig.Score)
	assert.Zero(t, sig.Confidence)
	assert.Contains(t, sig.Rationale, "model timeout")
	assert.Equal(t, 2, sig.ItemCount)
}

func TestAnalyzeSentiment_ScoreToSignalMapping(t *testing.T) {
	cases := []struct {
		score float64
		want  Type
	}{
		{0.7, Buy},
		{0.61, Buy},
		{0.5, WeakBuy},
		{0.31, WeakBuy},
		{0.3, Hold},
		{0.0, Hold},
		{-0.3, Hold},
		{-0.31, WeakSell},
		{-0.5, WeakSell},
		{-0.61, Sell},
		{-0.9, Sell},
	}
	for _, tc := range cases {
		scorer := &stubScorer{result: SentimentScore{Sentiment: Neutral, Score: tc.score, Confidence: 0.8}}
		sig := AnalyzeSentiment(context.Background(), scorer, "X", news("h"))
		assert.Equalf(t, tc.want, sig.Signal, "score %v", tc.score)
	}
}

func TestLexiconScorer_Directions(t *testing.T) {
	scorer := LexiconScorer{}

	pos, err := scorer.Score(context.Background(), news(
		"Company beats estimates, shares surge on record growth",
		"Analyst upgrade after strong quarter",
	), "X")
	require.NoError(t, err)
	assert.Greater(t, pos.Score, 0.6)
	assert.Greater(t, pos.Confidence, 0.0)

	neg, err := scorer.Score(context.Background(), news(
		"Shares plunge after earnings miss",
		"Regulator opens probe, downgrade follows",
	), "X")
	require.NoError(t, err)
	assert.Less(t, neg.Score, -0.6)

	flat, err := scorer.Score(context.Background(), news("Company announces annual meeting date"), "X")
	require.NoError(t, err)
	assert.Zero(t, flat.Score)
	assert.Equal(t, Neutral, flat.Sentiment)
	assert.Zero(t, flat.Confidence)
}
