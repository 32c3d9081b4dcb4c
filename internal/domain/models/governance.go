package models

import "time"

// GovernanceDecision is the L1 gate outcome for a proposal.
type GovernanceDecision string

const (
	GovernanceApproved  GovernanceDecision = "approved"
	GovernanceThrottled GovernanceDecision = "throttled"
	GovernanceRejected  GovernanceDecision = "rejected"
)

// GovernanceResult is the immutable audit record for one proposal
// evaluation. Every non-approved decision carries at least one reason.
type GovernanceResult struct {
	ProposalID  string
	Pair        string
	AgentID     string
	Timestamp   time.Time
	Composite   float64 // 0-1
	Decision    GovernanceDecision
	Reasons     []string
	Multipliers map[string]float64 // breakdown by named factor
	GateFailed  string             // name of the hard gate that rejected, if any
}

// Approved reports whether the proposal may proceed to direction and
// allocation layers.
func (r GovernanceResult) Approved() bool {
	return r.Decision == GovernanceApproved || r.Decision == GovernanceThrottled
}
