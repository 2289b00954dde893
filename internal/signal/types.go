package signal

import "time"

// Type is the closed set of directional signals on a symmetric 7-point scale.
type Type string

const (
	StrongBuy  Type = "STRONG_BUY"
	Buy        Type = "BUY"
	WeakBuy    Type = "WEAK_BUY"
	Hold       Type = "HOLD"
	WeakSell   Type = "WEAK_SELL"
	Sell       Type = "SELL"
	StrongSell Type = "STRONG_SELL"
)

// Score maps a signal to its numeric position on the scale.
func (t Type) Score() float64 {
	switch t {
	case StrongBuy:
		return 2.0
	case Buy:
		return 1.0
	case WeakBuy:
		return 0.5
	case WeakSell:
		return -0.5
	case Sell:
		return -1.0
	case StrongSell:
		return -2.0
	default:
		return 0.0
	}
}

// IsBuy reports whether the signal is on the buy side of the scale.
func (t Type) IsBuy() bool { return t.Score() > 0 }

// IsSell reports whether the signal is on the sell side of the scale.
func (t Type) IsSell() bool { return t.Score() < 0 }

// Sentiment is the closed set of sentiment labels.
type Sentiment string

const (
	VeryPositive Sentiment = "VERY_POSITIVE"
	Positive     Sentiment = "POSITIVE"
	Neutral      Sentiment = "NEUTRAL"
	Negative     Sentiment = "NEGATIVE"
	VeryNegative Sentiment = "VERY_NEGATIVE"
)

// Agreement classifies how closely the technical and fundamental views align.
type Agreement string

const (
	AgreementHigh     Agreement = "HIGH"
	AgreementModerate Agreement = "MODERATE"
	AgreementLow      Agreement = "LOW"
)

// IndicatorSnapshot captures the indicator readings behind a technical
// signal. Pointer fields are nil when the indicator was undefined at the
// latest bar.
type IndicatorSnapshot struct {
	Price       float64  `json:"price"`
	SMA20       *float64 `json:"sma20,omitempty"`
	SMA50       *float64 `json:"sma50,omitempty"`
	RSI         *float64 `json:"rsi,omitempty"`
	MACD        *float64 `json:"macd,omitempty"`
	VolumeRatio *float64 `json:"volume_ratio,omitempty"`
}

// TechnicalSignal is the chart-derived view for one symbol. Created per
// analysis call and consumed immediately.
type TechnicalSignal struct {
	Symbol     string            `json:"symbol"`
	Signal     Type              `json:"signal"`
	Confidence float64           `json:"confidence"`
	Score      float64           `json:"score"`
	Rationale  string            `json:"rationale"`
	Indicators IndicatorSnapshot `json:"indicators"`
	Timestamp  time.Time         `json:"timestamp"`
}

// SentimentSignal is the news-derived view for one symbol.
type SentimentSignal struct {
	Symbol     string    `json:"symbol"`
	Signal     Type      `json:"signal"`
	Sentiment  Sentiment `json:"sentiment"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	Rationale  string    `json:"rationale"`
	ItemCount  int       `json:"item_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// CombinedSignal is the fused recommendation for one symbol.
type CombinedSignal struct {
	Symbol            string    `json:"symbol"`
	FinalSignal       Type      `json:"final_signal"`
	FinalConfidence   float64   `json:"final_confidence"`
	CombinedScore     float64   `json:"combined_score"`
	TechnicalWeight   float64   `json:"technical_weight"`
	FundamentalWeight float64   `json:"fundamental_weight"`
	Agreement         Agreement `json:"agreement"`
	Rationale         string    `json:"rationale"`
	Timestamp         time.Time `json:"timestamp"`
}
