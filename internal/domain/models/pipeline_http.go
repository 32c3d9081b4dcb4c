package models

// Requests for the pipeline HTTP endpoints. Defined in domain for consistency and reuse.

type EvaluateRequest struct {
	Pair      string `json:"pair" validate:"required"`
	Intent    string `json:"intent" default:"NEUTRAL" validate:"oneof=LONG SHORT NEUTRAL"`
	AgentID   string `json:"agent_id" validate:"required"`
	Timeframe string `json:"timeframe" default:"M5" validate:"oneof=M1 M5 M15 H1"`
}

type DecisionsRequest struct {
	Pair  string `query:"pair" json:"pair"`
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=2000"`
	Since string `query:"since" json:"since"` // RFC3339 or unix seconds
}

type RegimeStatusRequest struct {
	Pair string `query:"pair" json:"pair" validate:"required"`
}

type UpdateRiskConfigRequest struct {
	Enabled                     *bool    `json:"enabled"`
	EdgeBoostMultiplier         *float64 `json:"edge_boost_multiplier" validate:"omitempty,gte=1,lte=3"`
	BaselineReductionMultiplier *float64 `json:"baseline_reduction_multiplier" validate:"omitempty,gt=0,lte=1"`
	SpreadBlockThreshold        *float64 `json:"spread_block_threshold" validate:"omitempty,gt=0,lte=20"`
	IgnitionMinComposite        *float64 `json:"ignition_min_composite" validate:"omitempty,gte=0,lte=1"`
}
