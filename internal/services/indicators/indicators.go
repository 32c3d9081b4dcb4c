package indicators

import (
	"math"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// SafeRatio divides a by b, returning the neutral ratio 1.0 when the
// denominator is unusable. Regime math must never propagate NaN/Inf.
func SafeRatio(a, b float64) float64 {
	if b == 0 || math.IsNaN(b) || math.IsInf(b, 0) || math.IsNaN(a) || math.IsInf(a, 0) {
		return 1.0
	}
	return a / b
}

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average over values with the given
// period, seeded with an SMA of the first period values.
func EMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	k := 2.0 / float64(period+1)
	ema := SMA(values[:period], period)
	for _, v := range values[period:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// TrueRange computes the true range of bar i against bar i-1.
func TrueRange(bars []models.Candle, i int) float64 {
	if i <= 0 || i >= len(bars) {
		return 0
	}
	hl := bars[i].High - bars[i].Low
	hc := math.Abs(bars[i].High - bars[i-1].Close)
	lc := math.Abs(bars[i].Low - bars[i-1].Close)
	return math.Max(hl, math.Max(hc, lc))
}

// ATRSeries returns the Wilder-smoothed ATR value for every bar index
// >= period. The result has one entry per bar from index period onward.
func ATRSeries(bars []models.Candle, period int) []float64 {
	if period <= 0 || len(bars) <= period {
		return nil
	}
	trs := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		trs[i] = TrueRange(bars, i)
	}
	out := make([]float64, 0, len(bars)-period)
	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trs[i]
	}
	atr /= float64(period)
	out = append(out, atr)
	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
		out = append(out, atr)
	}
	return out
}

// ATR returns the latest Wilder ATR over period bars, or 0 when the
// window is too short.
func ATR(bars []models.Candle, period int) float64 {
	s := ATRSeries(bars, period)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// BollingerWidthSeries returns (upper-lower)/middle for each bar index
// >= period-1, using a period-bar SMA and k standard deviations.
func BollingerWidthSeries(closes []float64, period int, k float64) []float64 {
	if period <= 1 || len(closes) < period {
		return nil
	}
	out := make([]float64, 0, len(closes)-period+1)
	for i := period; i <= len(closes); i++ {
		window := closes[i-period : i]
		mean := SMA(window, period)
		var ss float64
		for _, v := range window {
			d := v - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period))
		if mean == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (2*k*sd)/mean)
	}
	return out
}

// ROC returns the rate of change over n bars as a fraction.
func ROC(closes []float64, n int) float64 {
	if n <= 0 || len(closes) <= n {
		return 0
	}
	prev := closes[len(closes)-1-n]
	if prev == 0 {
		return 0
	}
	return (closes[len(closes)-1] - prev) / prev
}

// ADX computes the average directional index over period bars using
// Wilder smoothing. Returns 0 with insufficient history.
func ADX(bars []models.Candle, period int) float64 {
	if period <= 0 || len(bars) < 2*period+1 {
		return 0
	}
	var trSum, plusSum, minusSum float64
	dxs := make([]float64, 0, len(bars))
	tr14, plus14, minus14 := 0.0, 0.0, 0.0
	for i := 1; i < len(bars); i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		plusDM, minusDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}
		tr := TrueRange(bars, i)
		if i <= period {
			trSum += tr
			plusSum += plusDM
			minusSum += minusDM
			if i == period {
				tr14, plus14, minus14 = trSum, plusSum, minusSum
			}
			continue
		}
		tr14 = tr14 - tr14/float64(period) + tr
		plus14 = plus14 - plus14/float64(period) + plusDM
		minus14 = minus14 - minus14/float64(period) + minusDM
		if tr14 == 0 {
			continue
		}
		plusDI := 100 * plus14 / tr14
		minusDI := 100 * minus14 / tr14
		if plusDI+minusDI == 0 {
			continue
		}
		dxs = append(dxs, 100*math.Abs(plusDI-minusDI)/(plusDI+minusDI))
	}
	if len(dxs) < period {
		return 0
	}
	adx := SMA(dxs[:period], period)
	for _, dx := range dxs[period:] {
		adx = (adx*float64(period-1) + dx) / float64(period)
	}
	return adx
}

// PercentileRank returns the percentile (0-100) of v within history.
// With fewer than 10 samples the estimate is unreliable and the neutral
// 50 is returned instead.
func PercentileRank(history []float64, v float64) float64 {
	if len(history) < 10 {
		return 50
	}
	below := 0
	for _, h := range history {
		if h <= v {
			below++
		}
	}
	return 100 * float64(below) / float64(len(history))
}

// TrendEfficiency returns |net change| / sum(|bar changes|) over the
// last n closes, in [0,1]. A straight-line move scores 1.
func TrendEfficiency(closes []float64, n int) float64 {
	if n < 2 || len(closes) < n {
		return 0
	}
	w := closes[len(closes)-n:]
	net := math.Abs(w[len(w)-1] - w[0])
	var path float64
	for i := 1; i < len(w); i++ {
		path += math.Abs(w[i] - w[i-1])
	}
	if path == 0 {
		return 0
	}
	return net / path
}

// Closes extracts the close series from bars.
func Closes(bars []models.Candle) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
