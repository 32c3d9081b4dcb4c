package models

import "time"

// RegimeLabel is the exact market regime classification for one bar.
type RegimeLabel string

const (
	RegimeCompression RegimeLabel = "compression"
	RegimeFlat        RegimeLabel = "flat"
	RegimeTransition  RegimeLabel = "transition"
	RegimeMomentum    RegimeLabel = "momentum"
	RegimeRiskOff     RegimeLabel = "risk-off"
	RegimeExpansion   RegimeLabel = "expansion"
	RegimeBreakdown   RegimeLabel = "breakdown"
	RegimeIgnition    RegimeLabel = "ignition"
	RegimeExhaustion  RegimeLabel = "exhaustion"
)

// RegimeFamily is the direction-aware grouping of regime labels.
type RegimeFamily string

const (
	FamilyBullish RegimeFamily = "bullish"
	FamilyBearish RegimeFamily = "bearish"
	FamilyNeutral RegimeFamily = "neutral"
)

// FamilyOf maps an exact label plus the measured dominant direction to
// its family. A direction mismatch forces neutral: a bullish-shaped
// label in a measured downtrend is not trusted as bullish.
func FamilyOf(label RegimeLabel, dominant Direction) RegimeFamily {
	switch label {
	case RegimeExpansion, RegimeMomentum:
		if dominant == DirectionLong {
			return FamilyBullish
		}
		return FamilyNeutral
	case RegimeBreakdown, RegimeRiskOff:
		if dominant == DirectionShort {
			return FamilyBearish
		}
		return FamilyNeutral
	default:
		return FamilyNeutral
	}
}

// MarketRegimeSnapshot is the per-instrument-per-bar regime record.
// Derived deterministically from a rolling candle window and never
// mutated after creation; the next bar supersedes it.
type MarketRegimeSnapshot struct {
	Pair      string
	Timestamp time.Time

	VolatilityScore        float64 // 0-100
	VolAcceleration        float64 // 0-100
	DirectionalPersistence float64 // 0-100
	DominantDirection      Direction

	Label       RegimeLabel
	FamilyLabel RegimeFamily
	Strength    float64 // 0-1

	HoldBars       int
	FamilyHoldBars int

	RegimeConfirmed       bool // entry gate: holdBars >= 3
	RegimeFamilyConfirmed bool // familyHoldBars >= 3
	RegimeDiverging       bool // exit signal: >=2 of 5 lookback bars off-family
	RegimeEarlyWarning    bool // first divergent bar appeared
}
