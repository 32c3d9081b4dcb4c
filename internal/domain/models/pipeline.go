package models

import "time"

// PipelineOutcome is the terminal state of one proposal evaluation.
type PipelineOutcome string

const (
	OutcomeExecute  PipelineOutcome = "EXECUTE"
	OutcomeRejected PipelineOutcome = "REJECTED"
	OutcomeBlocked  PipelineOutcome = "BLOCKED"
	OutcomeSkipped  PipelineOutcome = "SKIPPED"
)

// PipelineDecision is the typed result of a full L1→L4 evaluation,
// returned directly to callers and journaled for the dashboard. No
// layer mutates another layer's section.
type PipelineDecision struct {
	Proposal       TradeProposal
	Outcome        PipelineOutcome
	Stage          string // layer that terminated the evaluation
	Direction      Direction
	SizeMultiplier float64
	Reasons        []string
	Governance     *GovernanceResult
	Regime         *MarketRegimeSnapshot
	Environment    *EnvironmentClassification
	Allocation     *RiskAllocation
	Safety         *PreTradeGateResult
	EvaluatedAt    time.Time
	Elapsed        time.Duration
}

// StatusSnapshot is the auditable orchestrator state served to the
// dashboard.
type StatusSnapshot struct {
	Timestamp       time.Time
	Regimes         map[string]MarketRegimeSnapshot
	Protection      ProtectionStatus
	Drift           *DriftScanSummary
	RiskEngine      DiscoveryRiskState
	DecisionCount   int
	RecentDecisions []PipelineDecision
}

// DiscoveryRiskState is the readable view of the risk engine tunables.
type DiscoveryRiskState struct {
	Enabled                     bool
	EdgeBoostMultiplier         float64
	BaselineReductionMultiplier float64
	SpreadBlockThreshold        float64
	IgnitionMinComposite        float64
}
