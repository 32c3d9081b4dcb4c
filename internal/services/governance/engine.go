package governance

import (
	"fmt"
	"math"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// Config holds the composite score weights and gate thresholds. The
// multiplier weights are a calibration surface; the layering contract
// (multipliers × gates, no downstream mutation) is not.
type Config struct {
	ApproveThreshold  float64 `yaml:"approve_threshold"`
	ThrottleThreshold float64 `yaml:"throttle_threshold"`

	MaxFrictionShare   float64       `yaml:"max_friction_share"` // gate: friction / expected move
	MaxTradesPerWindow int           `yaml:"max_trades_per_window"`
	SequencingWindow   time.Duration `yaml:"sequencing_window"`
	LossStreakLimit    int           `yaml:"loss_streak_limit"`
}

// DefaultConfig returns the production governance configuration.
func DefaultConfig() Config {
	return Config{
		ApproveThreshold:   0.60,
		ThrottleThreshold:  0.40,
		MaxFrictionShare:   0.50,
		MaxTradesPerWindow: 4,
		SequencingWindow:   30 * time.Minute,
		LossStreakLimit:    3,
	}
}

// Context carries everything the engine consults for one evaluation.
// All fields are already-resolved data; the engine performs no I/O.
type Context struct {
	Proposal         models.TradeProposal
	Regime           models.MarketRegimeSnapshot   // evaluation timeframe
	HigherTimeframes []models.MarketRegimeSnapshot // e.g. M15, H1
	RecentTrades     []models.ClosedTrade          // newest last, this pair
	ExpectedMovePips float64
	FrictionPips     float64
	SpreadStable     bool
}

// Engine computes the composite approval score. Pure and safe for
// concurrent use; downstream layers never modify its output.
type Engine struct {
	cfg Config
}

// New creates a governance engine.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.ApproveThreshold <= 0 {
		cfg.ApproveThreshold = def.ApproveThreshold
	}
	if cfg.ThrottleThreshold <= 0 {
		cfg.ThrottleThreshold = def.ThrottleThreshold
	}
	if cfg.MaxFrictionShare <= 0 {
		cfg.MaxFrictionShare = def.MaxFrictionShare
	}
	if cfg.MaxTradesPerWindow <= 0 {
		cfg.MaxTradesPerWindow = def.MaxTradesPerWindow
	}
	if cfg.SequencingWindow <= 0 {
		cfg.SequencingWindow = def.SequencingWindow
	}
	if cfg.LossStreakLimit <= 0 {
		cfg.LossStreakLimit = def.LossStreakLimit
	}
	return &Engine{cfg: cfg}
}

// Evaluate runs the hard gates, then the weighted multipliers, and
// returns the immutable audit record. Every rejection and throttle
// carries the reasons that drove it.
func (e *Engine) Evaluate(gc Context) models.GovernanceResult {
	res := models.GovernanceResult{
		ProposalID:  gc.Proposal.ID,
		Pair:        gc.Proposal.Pair,
		AgentID:     gc.Proposal.AgentID,
		Timestamp:   time.Now(),
		Multipliers: make(map[string]float64),
	}

	// Hard gates run first; a failed gate rejects outright and records
	// which gate fired.
	for _, g := range e.gates() {
		if reason, failed := g.check(gc); failed {
			res.Decision = models.GovernanceRejected
			res.GateFailed = g.name
			res.Reasons = append(res.Reasons, reason)
			res.Composite = 0
			return res
		}
	}

	composite := 1.0
	for _, m := range e.multipliers() {
		value, reason := m.compute(gc)
		res.Multipliers[m.name] = value
		composite *= value
		if reason != "" {
			res.Reasons = append(res.Reasons, reason)
		}
	}
	res.Composite = clamp01(composite)

	switch {
	case res.Composite >= e.cfg.ApproveThreshold:
		res.Decision = models.GovernanceApproved
	case res.Composite >= e.cfg.ThrottleThreshold:
		res.Decision = models.GovernanceThrottled
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("composite %.2f below approval threshold %.2f", res.Composite, e.cfg.ApproveThreshold))
	default:
		res.Decision = models.GovernanceRejected
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("composite %.2f below throttle threshold %.2f", res.Composite, e.cfg.ThrottleThreshold))
	}
	return res
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
