package indicators

import (
	"math"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// TrendVote is the number of trend-following checks consulted by
// TrendAgreement.
const TrendVote = 7

// TrendAgreement counts how many of seven trend-following indicator
// checks agree with the dominant direction of the window. Returns the
// agreement count and the dominant direction.
func TrendAgreement(bars []models.Candle) (int, models.Direction) {
	closes := Closes(bars)
	if len(closes) < 50 {
		return 0, models.DirectionNeutral
	}
	net := closes[len(closes)-1] - closes[len(closes)-15]
	dominant := models.DirectionNeutral
	if net > 0 {
		dominant = models.DirectionLong
	} else if net < 0 {
		dominant = models.DirectionShort
	}
	if dominant == models.DirectionNeutral {
		return 0, dominant
	}

	up := dominant == models.DirectionLong
	last := closes[len(closes)-1]
	ema8 := EMA(closes, 8)
	ema21 := EMA(closes, 21)
	sma50 := SMA(closes, 50)
	macd := EMA(closes, 12) - EMA(closes, 26)

	checks := []bool{
		agree(ema8 > ema21, up),
		agree(last > ema21, up),
		agree(last > sma50, up),
		agree(ROC(closes, 10) > 0, up),
		agree(macd > 0, up),
		agree(closes[len(closes)-1] > closes[len(closes)-4], up),
		agree(barsClosingWith(bars, 8, up) >= 5, true),
	}
	count := 0
	for _, c := range checks {
		if c {
			count++
		}
	}
	return count, dominant
}

func agree(bullishSignal, up bool) bool { return bullishSignal == up }

// barsClosingWith counts, over the last n bars, how many closed in the
// given direction.
func barsClosingWith(bars []models.Candle, n int, up bool) int {
	if len(bars) < n {
		return 0
	}
	count := 0
	for _, b := range bars[len(bars)-n:] {
		if up && b.Close > b.Open {
			count++
		}
		if !up && b.Close < b.Open {
			count++
		}
	}
	return count
}

// StructureIntact reports whether the last n bars preserve the swing
// structure of the given direction: higher highs and higher lows for
// bullish, lower lows and lower highs for bearish. It compares the two
// halves of the window.
func StructureIntact(bars []models.Candle, n int, dir models.Direction) bool {
	if len(bars) < n || n < 4 {
		return false
	}
	w := bars[len(bars)-n:]
	half := n / 2
	firstHigh, firstLow := extremes(w[:half])
	secondHigh, secondLow := extremes(w[half:])
	switch dir {
	case models.DirectionLong:
		return secondHigh > firstHigh && secondLow > firstLow
	case models.DirectionShort:
		return secondLow < firstLow && secondHigh < firstHigh
	default:
		return false
	}
}

func extremes(bars []models.Candle) (high, low float64) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}
