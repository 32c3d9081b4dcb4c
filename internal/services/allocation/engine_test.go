package allocation

import (
	"fmt"
	"testing"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/agents"
)

func newTestEngine() *Engine {
	return NewEngine(NewDiscoveryRiskConfig(), agents.NewRegistry(agents.DefaultProfiles()))
}

func TestAllocateBlocksDestructive(t *testing.T) {
	e := newTestEngine()
	alloc := e.Allocate(models.EnvironmentClassification{
		Pair:                      "EUR_USD",
		IsHistoricallyDestructive: true,
		MatchedDestructiveRule:    "rollover_session",
	})
	if !alloc.Blocked {
		t.Fatalf("destructive environment must block")
	}
	if alloc.PositionSizeMultiplier != 0 {
		t.Fatalf("blocked allocation must carry zero multiplier, got %.2f", alloc.PositionSizeMultiplier)
	}
	if alloc.Label != models.RiskBlocked {
		t.Fatalf("unexpected label %s", alloc.Label)
	}
}

func TestAllocateDestructiveWinsOverEdge(t *testing.T) {
	e := newTestEngine()
	alloc := e.Allocate(models.EnvironmentClassification{
		IsEdgeCandidate:           true,
		IsHistoricallyDestructive: true,
		MatchedEdgeRule:           "ignition_high_composite",
		MatchedDestructiveRule:    "spread_above_block",
	})
	if !alloc.Blocked || alloc.PositionSizeMultiplier != 0 {
		t.Fatalf("destructive must take precedence over edge, got %+v", alloc)
	}
}

func TestAllocateEdgeBoostWeightedByAgent(t *testing.T) {
	e := newTestEngine()
	alloc := e.Allocate(models.EnvironmentClassification{
		AgentID:         "momentum_rider", // coordination 0.80 -> weight 1.09
		IsEdgeCandidate: true,
		MatchedEdgeRule: "eurusd_london_momentum_long",
	})
	if alloc.Blocked || alloc.Label != models.RiskEdgeBoost {
		t.Fatalf("expected edge boost, got %+v", alloc)
	}
	want := 1.35 * (0.85 + 0.30*0.80)
	if diff := alloc.PositionSizeMultiplier - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected multiplier %.4f, got %.4f", want, alloc.PositionSizeMultiplier)
	}
}

func TestAllocateUnknownAgentNeutralWeight(t *testing.T) {
	e := newTestEngine()
	alloc := e.Allocate(models.EnvironmentClassification{
		AgentID:         "no_such_agent",
		IsEdgeCandidate: true,
	})
	if diff := alloc.PositionSizeMultiplier - 1.35; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("unknown agent must carry neutral weight, got %.4f", alloc.PositionSizeMultiplier)
	}
}

func TestAgentWeightClamped(t *testing.T) {
	e := NewEngine(NewDiscoveryRiskConfig(), agents.NewRegistry([]models.AgentProfile{
		{ID: "hot", CoordinationScore: 5.0},
		{ID: "cold", CoordinationScore: -3.0},
	}))
	if w := e.agentWeight("hot"); w != 1.15 {
		t.Fatalf("expected upper clamp 1.15, got %.2f", w)
	}
	if w := e.agentWeight("cold"); w != 0.85 {
		t.Fatalf("expected lower clamp 0.85, got %.2f", w)
	}
}

func TestAllocateBaselineReduction(t *testing.T) {
	e := newTestEngine()
	alloc := e.Allocate(models.EnvironmentClassification{Pair: "NZD_USD"})
	if alloc.Blocked || alloc.Label != models.RiskReduced {
		t.Fatalf("unclassified environment must reduce, got %+v", alloc)
	}
	if alloc.PositionSizeMultiplier != 0.55 {
		t.Fatalf("expected baseline 0.55, got %.2f", alloc.PositionSizeMultiplier)
	}
}

func TestAllocateKillSwitchPrecedence(t *testing.T) {
	cfg := NewDiscoveryRiskConfig()
	cfg.SetEnabled(false)
	e := NewEngine(cfg, nil)
	alloc := e.Allocate(models.EnvironmentClassification{
		IsHistoricallyDestructive: true,
	})
	if alloc.Blocked {
		t.Fatalf("disabled engine must pass through, got %+v", alloc)
	}
	if alloc.PositionSizeMultiplier != 1.0 || alloc.Label != models.RiskNormal {
		t.Fatalf("disabled engine must be neutral, got %+v", alloc)
	}
}

func TestDecisionLogBounded(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < DecisionLogCap+250; i++ {
		e.Allocate(models.EnvironmentClassification{Pair: fmt.Sprintf("P%d", i)})
	}
	if n := e.DecisionCount(); n != DecisionLogCap {
		t.Fatalf("expected log capped at %d, got %d", DecisionLogCap, n)
	}
	last := e.Decisions(1)
	if len(last) != 1 || last[0].Classification.Pair != fmt.Sprintf("P%d", DecisionLogCap+249) {
		t.Fatalf("newest decision must survive eviction, got %+v", last)
	}
}
