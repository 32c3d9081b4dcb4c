package models

import "time"

// GateOutcome is the result of the pre-trade execution safety gate.
type GateOutcome string

const (
	GatePass     GateOutcome = "PASS"
	GateReject   GateOutcome = "REJECT"
	GateThrottle GateOutcome = "THROTTLE"
)

// FrictionBudget itemizes the expected execution cost for a pair in the
// current session, all in pips.
type FrictionBudget struct {
	MeanSpread   float64
	SpreadVol    float64
	SlippageEst  float64
	LatencyDrift float64
}

// Total returns the summed friction cost.
func (b FrictionBudget) Total() float64 {
	return b.MeanSpread + b.SpreadVol + b.SlippageEst + b.LatencyDrift
}

// PreTradeGateResult is the L4 friction gate outcome.
type PreTradeGateResult struct {
	Pair          string
	Session       TradingSession
	Result        GateOutcome
	FrictionScore float64 // expected move / total friction
	RequiredRatio float64 // session-dependent K
	Budget        FrictionBudget
	Reasons       []string
}

// ExecutionRecord is one fill's realized execution telemetry.
type ExecutionRecord struct {
	Pair          string
	Timestamp     time.Time
	SlippagePips  float64
	FillLatencyMs float64
	SpreadRatio   float64 // realized spread / expected spread
	Rejected      bool
	QualityScore  float64 // 0-100
	Expectancy    float64 // realized pips
}

// ProtectionLevel is the escalation state of the execution protection
// monitor.
type ProtectionLevel string

const (
	ProtectionNormal   ProtectionLevel = "normal"
	ProtectionElevated ProtectionLevel = "elevated"
	ProtectionCritical ProtectionLevel = "critical"
)

// ProtectionStatus is the observable state of the execution kill switch.
type ProtectionStatus struct {
	Level              ProtectionLevel
	DensityMultiplier  float64 // forced to 0 at critical (kill switch)
	CriticalConditions []string
	EvaluatedAt        time.Time
}
