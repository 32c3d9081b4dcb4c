package models

import "time"

// Candle represents one OHLCV bar from the price source.
// Time is the bar open time; bars arrive strictly increasing with gaps
// permitted (weekend close).
type Candle struct {
	Time     time.Time
	Pair     string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Complete bool
}

// Range returns the high-low span of the bar.
func (c Candle) Range() float64 { return c.High - c.Low }

// Tick is a single bid/ask quote from the streaming price feed.
type Tick struct {
	Pair      string
	Timestamp int64 // unix seconds
	Bid       float64
	Ask       float64
}

// SpreadPips returns the bid/ask spread expressed in pips for the pair.
func (t Tick) SpreadPips() float64 {
	return (t.Ask - t.Bid) / PipSize(t.Pair)
}

// PipSize returns the pip increment for an instrument. JPY-quoted pairs
// use 0.01, everything else 0.0001.
func PipSize(pair string) float64 {
	if len(pair) >= 3 && pair[len(pair)-3:] == "JPY" {
		return 0.01
	}
	return 0.0001
}
