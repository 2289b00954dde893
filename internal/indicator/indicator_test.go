package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA_WindowFill(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	out := SMA(vals, 3)

	for i := 0; i < 2; i++ {
		if out[i].Valid {
			t.Fatalf("index %d should be undefined before window fills", i)
		}
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		got := out[i+2]
		if !got.Valid || !almostEqual(got.V, w) {
			t.Fatalf("sma[%d] = %+v, want %v", i+2, got, w)
		}
	}
}

func TestEMA_SeededFromFirstValue(t *testing.T) {
	vals := []float64{10, 10, 10, 10}
	out := EMA(vals, 3)
	for i, p := range out {
		if !p.Valid || !almostEqual(p.V, 10) {
			t.Fatalf("ema[%d] = %+v, want 10", i, p)
		}
	}

	out = EMA([]float64{1, 2}, 3)
	// k = 0.5: 1*0.5 + 1*0.5 = 1 then 2*0.5 + 1*0.5 = 1.5
	if !almostEqual(out[1].V, 1.5) {
		t.Fatalf("ema[1] = %v, want 1.5", out[1].V)
	}
}

func TestRSI_Bounds(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	out := RSI(rising, 14)
	if out[13].Valid {
		t.Fatalf("rsi should be undefined before period+1 samples")
	}
	v, ok := Last(out)
	if !ok || v != 100 {
		t.Fatalf("all-gain series should give RSI 100, got %v ok=%v", v, ok)
	}

	falling := make([]float64, 20)
	for i := range falling {
		falling[i] = 100 - float64(i)
	}
	v, ok = Last(RSI(falling, 14))
	if !ok || !almostEqual(v, 0) {
		t.Fatalf("all-loss series should give RSI 0, got %v", v)
	}
}

func TestRSI_ShortInput(t *testing.T) {
	out := RSI([]float64{1, 2, 3}, 14)
	for i, p := range out {
		if p.Valid {
			t.Fatalf("rsi[%d] should be undefined on short input", i)
		}
	}
}

func TestMACD_HistogramIsLineMinusSignal(t *testing.T) {
	vals := make([]float64, 60)
	for i := range vals {
		vals[i] = 50 + math.Sin(float64(i)/5)*10
	}
	line, sig, hist := MACD(vals, 12, 26, 9)
	last := len(vals) - 1
	if !line[last].Valid || !sig[last].Valid || !hist[last].Valid {
		t.Fatalf("macd components undefined at latest bar")
	}
	if !almostEqual(hist[last].V, line[last].V-sig[last].V) {
		t.Fatalf("histogram %v != line-signal %v", hist[last].V, line[last].V-sig[last].V)
	}
}

func TestBollinger_ConstantSeriesCollapses(t *testing.T) {
	vals := make([]float64, 25)
	for i := range vals {
		vals[i] = 42
	}
	upper, middle, lower := Bollinger(vals, 20, 2)
	u, _ := Last(upper)
	m, _ := Last(middle)
	l, _ := Last(lower)
	if !almostEqual(u, 42) || !almostEqual(m, 42) || !almostEqual(l, 42) {
		t.Fatalf("constant series should collapse bands: %v %v %v", u, m, l)
	}
	if upper[18].Valid {
		t.Fatalf("bands should be undefined before window fills")
	}
}

func TestLast_Empty(t *testing.T) {
	if _, ok := Last(nil); ok {
		t.Fatalf("Last(nil) should be undefined")
	}
}
