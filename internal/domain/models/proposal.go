package models

import "time"

// Direction is a trade direction intent or signal.
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

// TradingSession buckets the FX day by liquidity character.
type TradingSession string

const (
	SessionSydney   TradingSession = "sydney"
	SessionAsian    TradingSession = "asian"
	SessionLondon   TradingSession = "london"
	SessionNewYork  TradingSession = "newyork"
	SessionOverlap  TradingSession = "overlap" // London/NY overlap
	SessionRollover TradingSession = "rollover"
)

// SessionAt maps a UTC instant to its trading session. The rollover
// window around 21:00 UTC (5pm ET) is deliberately wide because spread
// behavior degrades on both sides of the daily cutover.
func SessionAt(t time.Time) TradingSession {
	h := t.UTC().Hour()
	switch {
	case h == 21:
		return SessionRollover
	case h >= 22 || h == 0:
		return SessionSydney
	case h < 7:
		return SessionAsian
	case h < 12:
		return SessionLondon
	case h < 16:
		return SessionOverlap
	default: // 16:00-20:59
		return SessionNewYork
	}
}

// TradeProposal is an immutable trade intent emitted by a signal agent.
// It is consumed exactly once by the evaluation pipeline.
type TradeProposal struct {
	ID        string
	Pair      string
	Intent    Direction
	AgentID   string
	Timeframe string
	CreatedAt time.Time
}

// Session returns the trading session the proposal was created in.
func (p TradeProposal) Session() TradingSession { return SessionAt(p.CreatedAt) }

// ClosedTrade is a realized trade outcome fed back into edge memory and
// pair performance statistics.
type ClosedTrade struct {
	Pair         string
	AgentID      string
	Direction    Direction
	Regime       string
	Session      TradingSession
	PipsGained   float64
	OpenedAt     time.Time
	ClosedAt     time.Time
	SlippagePips float64
	FillLatency  time.Duration
}
