package models

import "time"

// RiskLabel names the allocation outcome for a classified environment.
type RiskLabel string

const (
	RiskBlocked   RiskLabel = "BLOCKED"
	RiskReduced   RiskLabel = "REDUCED"
	RiskNormal    RiskLabel = "NORMAL"
	RiskEdgeBoost RiskLabel = "EDGE_BOOST"
)

// RiskAllocation is the blocking decision plus position-size multiplier
// for one evaluation. Invariant: Label == BLOCKED iff Multiplier == 0.
type RiskAllocation struct {
	Blocked                bool
	PositionSizeMultiplier float64
	Label                  RiskLabel
	Reason                 string
}

// AllocationDecision is one row of the bounded in-memory decision log
// backing the dashboard's discovery-risk panel.
type AllocationDecision struct {
	Timestamp      time.Time
	Signature      string
	AgentID        string
	Allocation     RiskAllocation
	Classification EnvironmentClassification
}

// AgentProfile describes a registered signal agent. Static per process;
// consumed by the agent weighting table.
type AgentProfile struct {
	ID                string
	Name              string
	BaseWinRate       float64
	BaseSharpe        float64
	CoordinationScore float64 // 0-1, capital priority weight
}
