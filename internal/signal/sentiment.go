package signal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradeagent/internal/market"
	"tradeagent/internal/observ"
)

// SentimentScore is the raw result of a sentiment scorer.
type SentimentScore struct {
	Sentiment  Sentiment
	Score      float64 // [-1, 1]
	Confidence float64 // [0, 1]
	Rationale  string
}

// Scorer turns a batch of text items into a sentiment score. Implementations
// may call out to a model API; failures degrade to a neutral signal and never
// abort a cycle.
type Scorer interface {
	Score(ctx context.Context, items []market.NewsItem, symbol string) (SentimentScore, error)
}

// AnalyzeSentiment maps recent news to a directional signal via the scorer.
// With no items the scorer is not called at all.
func AnalyzeSentiment(ctx context.Context, scorer Scorer, symbol string, items []market.NewsItem) SentimentSignal {
	symbol = market.NormalizeSymbol(symbol)

	if len(items) == 0 {
		return SentimentSignal{
			Symbol:    symbol,
			Signal:    Hold,
			Sentiment: Neutral,
			Rationale: "No recent news available for analysis",
			Timestamp: time.Now().UTC(),
		}
	}

	scored, err := scorer.Score(ctx, items, symbol)
	if err != nil {
		observ.IncCounter("sentiment_scorer_errors_total", map[string]string{"symbol": symbol})
		return SentimentSignal{
			Symbol:    symbol,
			Signal:    Hold,
			Sentiment: Neutral,
			Rationale: fmt.Sprintf("Sentiment scoring failed: %v", err),
			ItemCount: len(items),
			Timestamp: time.Now().UTC(),
		}
	}

	return SentimentSignal{
		Symbol:     symbol,
		Signal:     mapSentimentScore(scored.Score),
		Sentiment:  scored.Sentiment,
		Score:      scored.Score,
		Confidence: scored.Confidence,
		Rationale:  scored.Rationale,
		ItemCount:  len(items),
		Timestamp:  time.Now().UTC(),
	}
}

func mapSentimentScore(score float64) Type {
	switch {
	case score > 0.6:
		return Buy
	case score > 0.3:
		return WeakBuy
	case score < -0.6:
		return Sell
	case score < -0.3:
		return WeakSell
	default:
		return Hold
	}
}

// LexiconScorer is the default deterministic scorer: it counts positive and
// negative marker words across headlines and summaries. It stands in for a
// model-backed scorer behind the same interface.
type LexiconScorer struct{}

var positiveWords = []string{
	"beat", "beats", "surge", "soar", "record", "upgrade", "upgraded",
	"growth", "profit", "strong", "rally", "outperform", "raised", "wins",
}

var negativeWords = []string{
	"miss", "misses", "plunge", "fall", "falls", "downgrade", "downgraded",
	"loss", "losses", "weak", "lawsuit", "recall", "cut", "cuts", "probe",
}

func (LexiconScorer) Score(_ context.Context, items []market.NewsItem, symbol string) (SentimentScore, error) {
	var pos, neg int
	for _, item := range items {
		text := strings.ToLower(item.Headline + " " + item.Summary)
		for _, w := range positiveWords {
			if strings.Contains(text, w) {
				pos++
			}
		}
		for _, w := range negativeWords {
			if strings.Contains(text, w) {
				neg++
			}
		}
	}

	total := pos + neg
	if total == 0 {
		return SentimentScore{
			Sentiment: Neutral,
			Rationale: fmt.Sprintf("No sentiment markers found across %d items for %s", len(items), symbol),
		}, nil
	}

	score := float64(pos-neg) / float64(total)
	// confidence grows with marker count, capped at 0.9 for a lexicon method
	confidence := float64(total) / float64(total+3)
	if confidence > 0.9 {
		confidence = 0.9
	}

	var label Sentiment
	switch {
	case score > 0.6:
		label = VeryPositive
	case score > 0.2:
		label = Positive
	case score < -0.6:
		label = VeryNegative
	case score < -0.2:
		label = Negative
	default:
		label = Neutral
	}

	return SentimentScore{
		Sentiment:  label,
		Score:      score,
		Confidence: confidence,
		Rationale:  fmt.Sprintf("%d positive vs %d negative markers across %d items", pos, neg, len(items)),
	}, nil
}
