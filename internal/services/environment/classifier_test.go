package environment

import (
	"testing"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

func TestClassifyEdgeCandidate(t *testing.T) {
	c := New(DefaultThresholds())
	out := c.Classify(Input{
		Pair:      "EUR_USD",
		Session:   models.SessionLondon,
		Regime:    models.RegimeMomentum,
		Direction: models.DirectionLong,
	})
	if !out.IsEdgeCandidate {
		t.Fatalf("expected edge candidate")
	}
	if out.MatchedEdgeRule != "eurusd_london_momentum_long" {
		t.Fatalf("unexpected rule %q", out.MatchedEdgeRule)
	}
	if out.IsHistoricallyDestructive {
		t.Fatalf("london momentum long must not be destructive")
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Build two overlapping edge rules; the earlier one must own the label.
	edge := []Rule{
		{Name: "first", Label: "a", When: func(Input) bool { return true }},
		{Name: "second", Label: "b", When: func(Input) bool { return true }},
	}
	c := NewWithRules(edge, nil)
	out := c.Classify(Input{})
	if out.MatchedEdgeRule != "first" || out.EnvironmentLabel != "a" {
		t.Fatalf("first rule must win, got %q label %q", out.MatchedEdgeRule, out.EnvironmentLabel)
	}
}

func TestClassifyDestructiveOwnsLabel(t *testing.T) {
	c := New(DefaultThresholds())
	// Edge-shaped context trading into the rollover window: both tables
	// match, the destructive label wins.
	out := c.Classify(Input{
		Pair:      "EUR_USD",
		Session:   models.SessionRollover,
		Regime:    models.RegimeIgnition,
		Direction: models.DirectionLong,
		// Ignition edge requires composite; destructive rollover does not.
		CompositeScore: 0.90,
	})
	if !out.IsHistoricallyDestructive {
		t.Fatalf("rollover session must classify destructive")
	}
	if out.MatchedDestructiveRule != "rollover_session" {
		t.Fatalf("unexpected destructive rule %q", out.MatchedDestructiveRule)
	}
	if out.EnvironmentLabel != "rollover spread trap" {
		t.Fatalf("destructive match must own the label, got %q", out.EnvironmentLabel)
	}
	if !out.IsEdgeCandidate {
		t.Fatalf("edge match is still recorded alongside the destructive one")
	}
}

func TestClassifySpreadBlock(t *testing.T) {
	c := New(DefaultThresholds())
	out := c.Classify(Input{
		Pair:       "EUR_USD",
		Session:    models.SessionLondon,
		Regime:     models.RegimeFlat,
		SpreadPips: 3.1,
	})
	if out.MatchedDestructiveRule != "spread_above_block" {
		t.Fatalf("expected spread block, got %q", out.MatchedDestructiveRule)
	}
}

func TestClassifyIgnitionNeedsComposite(t *testing.T) {
	c := New(DefaultThresholds())
	in := Input{
		Pair:           "AUD_USD",
		Session:        models.SessionLondon,
		Regime:         models.RegimeIgnition,
		Direction:      models.DirectionLong,
		CompositeScore: 0.50,
	}
	if out := c.Classify(in); out.IsEdgeCandidate {
		t.Fatalf("ignition below composite floor must not be an edge")
	}
	in.CompositeScore = 0.75
	if out := c.Classify(in); !out.IsEdgeCandidate || out.MatchedEdgeRule != "ignition_high_composite" {
		t.Fatalf("ignition above composite floor must match, got %+v", c.Classify(in))
	}
}

func TestClassifyNeutralNeitherTable(t *testing.T) {
	c := New(DefaultThresholds())
	out := c.Classify(Input{
		Pair:      "NZD_USD",
		Session:   models.SessionNewYork,
		Regime:    models.RegimeFlat,
		Direction: models.DirectionNeutral,
	})
	if out.IsEdgeCandidate || out.IsHistoricallyDestructive {
		t.Fatalf("flat NY context must be neutral, got %+v", out)
	}
	if out.EnvironmentLabel != "" {
		t.Fatalf("no match must leave the label empty")
	}
}
