package indicator

import "math"

// Value is one point of an indicator series. For the windowed indicators
// (SMA, RSI, MACD, Bollinger) Valid is false until the lookback window has
// filled; callers must skip those points rather than read V. EMA is the one
// exception: it seeds from the first sample, so all its points are valid.
type Value struct {
	V     float64
	Valid bool
}

// Last returns the most recent point of a series.
func Last(s []Value) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	p := s[len(s)-1]
	return p.V, p.Valid
}

// SMA computes a simple moving average over the given period.
func SMA(vals []float64, period int) []Value {
	out := make([]Value, len(vals))
	if period <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= period {
			sum -= vals[i-period]
		}
		if i >= period-1 {
			out[i] = Value{V: sum / float64(period), Valid: true}
		}
	}
	return out
}

// EMA computes an exponential moving average with multiplier 2/(period+1),
// seeded from the first value. Every point is valid from index 0.
func EMA(vals []float64, period int) []Value {
	out := make([]Value, len(vals))
	if period <= 0 || len(vals) == 0 {
		return out
	}
	k := 2.0 / float64(period+1)
	ema := vals[0]
	out[0] = Value{V: ema, Valid: true}
	for i := 1; i < len(vals); i++ {
		ema = vals[i]*k + ema*(1-k)
		out[i] = Value{V: ema, Valid: true}
	}
	return out
}

// RSI computes the Relative Strength Index over the given period using
// window-averaged gains and losses: 100 - 100/(1+RS). Points before the
// window fills are invalid. An all-gain window yields 100.
func RSI(vals []float64, period int) []Value {
	out := make([]Value, len(vals))
	if period <= 0 || len(vals) < period+1 {
		return out
	}
	gains := make([]float64, len(vals))
	losses := make([]float64, len(vals))
	for i := 1; i < len(vals); i++ {
		d := vals[i] - vals[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	var gainSum, lossSum float64
	for i := 1; i < len(vals); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i >= period {
			avgGain := gainSum / float64(period)
			avgLoss := lossSum / float64(period)
			if avgLoss == 0 {
				// flat window: no movement, no reading
				if avgGain > 0 {
					out[i] = Value{V: 100, Valid: true}
				}
				continue
			}
			rs := avgGain / avgLoss
			out[i] = Value{V: 100 - 100/(1+rs), Valid: true}
		}
	}
	return out
}

// MACD returns the MACD line (fast EMA - slow EMA), its signal line and the
// histogram (line - signal).
func MACD(vals []float64, fast, slow, signal int) (line, sig, hist []Value) {
	emaFast := EMA(vals, fast)
	emaSlow := EMA(vals, slow)
	line = make([]Value, len(vals))
	diff := make([]float64, 0, len(vals))
	for i := range vals {
		if emaFast[i].Valid && emaSlow[i].Valid {
			line[i] = Value{V: emaFast[i].V - emaSlow[i].V, Valid: true}
			diff = append(diff, line[i].V)
		}
	}
	sig = make([]Value, len(vals))
	hist = make([]Value, len(vals))
	sigCompact := EMA(diff, signal)
	j := 0
	for i := range vals {
		if !line[i].Valid {
			continue
		}
		if sigCompact[j].Valid {
			sig[i] = sigCompact[j]
			hist[i] = Value{V: line[i].V - sig[i].V, Valid: true}
		}
		j++
	}
	return line, sig, hist
}

/// Bollinger returns upper, middle and lower bands: SMA(period) +/- k
// population standard deviations over the same window.
func Bollinger(vals []float64, period int, k float64) (upper, middle, lower []Value) {
	middle = SMA(vals, period)
	upper = make([]Value, len(vals))
	lower = make([]Value, len(vals))
	if period <= 0 {
		return upper, middle, lower
	}
	for i := period - 1; i < len(vals); i++ {
		if !middle[i].Valid {
			continue
		}
		mean := middle[i].V
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := vals[j] - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period))
		upper[i] = Value{V: mean + k*sd, Valid: true}
		lower[i] = Value{V: mean - k*sd, Valid: true}
	}
	return upper, middle, lower
}
