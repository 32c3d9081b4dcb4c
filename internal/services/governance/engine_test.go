package governance

import (
	"strings"
	"testing"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// london returns a timestamp inside the London session so session gates
// and multipliers behave predictably.
func london() time.Time {
	return time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
}

func baseContext() Context {
	return Context{
		Proposal: models.TradeProposal{
			ID:        "p-1",
			Pair:      "EUR_USD",
			Intent:    models.DirectionLong,
			AgentID:   "momentum_rider",
			CreatedAt: london(),
		},
		Regime: models.MarketRegimeSnapshot{
			Pair:                  "EUR_USD",
			Label:                 models.RegimeMomentum,
			FamilyLabel:           models.FamilyBullish,
			DominantDirection:     models.DirectionLong,
			HoldBars:              4,
			FamilyHoldBars:        4,
			RegimeConfirmed:       true,
			RegimeFamilyConfirmed: true,
		},
		HigherTimeframes: []models.MarketRegimeSnapshot{
			{FamilyLabel: models.FamilyBullish},
			{FamilyLabel: models.FamilyBullish},
		},
		ExpectedMovePips: 8,
		FrictionPips:     1.2,
		SpreadStable:     true,
	}
}

func TestEvaluateApprovesCleanContext(t *testing.T) {
	e := New(Config{})
	res := e.Evaluate(baseContext())
	if res.Decision != models.GovernanceApproved {
		t.Fatalf("expected approval, got %s (%v)", res.Decision, res.Reasons)
	}
	if res.Composite < 0.60 {
		t.Fatalf("composite %.2f below approval threshold", res.Composite)
	}
	if len(res.Multipliers) != 7 {
		t.Fatalf("expected 7 multipliers, got %d", len(res.Multipliers))
	}
}

func TestEvaluateRejectsRolloverSession(t *testing.T) {
	e := New(Config{})
	gc := baseContext()
	gc.Proposal.CreatedAt = time.Date(2026, 3, 4, 21, 15, 0, 0, time.UTC)
	res := e.Evaluate(gc)
	if res.Decision != models.GovernanceRejected {
		t.Fatalf("expected rejection, got %s", res.Decision)
	}
	if res.GateFailed != "rollover_session" {
		t.Fatalf("expected rollover gate, got %q", res.GateFailed)
	}
	if res.Composite != 0 {
		t.Fatalf("gate rejection must carry zero composite, got %.2f", res.Composite)
	}
}

func TestEvaluateRejectsExcessiveFriction(t *testing.T) {
	e := New(Config{})
	gc := baseContext()
	gc.ExpectedMovePips = 2.0
	gc.FrictionPips = 1.5 // 75% of expected move
	res := e.Evaluate(gc)
	if res.GateFailed != "excessive_friction" {
		t.Fatalf("expected friction gate, got %q (%v)", res.GateFailed, res.Reasons)
	}
}

func TestEvaluateRejectsUnknownExpectedMove(t *testing.T) {
	e := New(Config{})
	gc := baseContext()
	gc.ExpectedMovePips = 0
	res := e.Evaluate(gc)
	if res.Decision != models.GovernanceRejected || res.GateFailed != "excessive_friction" {
		t.Fatalf("zero expected move must fail the friction gate, got %s/%q", res.Decision, res.GateFailed)
	}
}

func TestEvaluateRejectsDivergingRegime(t *testing.T) {
	e := New(Config{})
	gc := baseContext()
	gc.Regime.RegimeDiverging = true
	res := e.Evaluate(gc)
	if res.GateFailed != "regime_divergence" {
		t.Fatalf("expected divergence gate, got %q", res.GateFailed)
	}
}

func TestEvaluateRejectsOvertrading(t *testing.T) {
	e := New(Config{MaxTradesPerWindow: 2, SequencingWindow: 30 * time.Minute})
	gc := baseContext()
	for i := 0; i < 2; i++ {
		gc.RecentTrades = append(gc.RecentTrades, models.ClosedTrade{
			Pair:       "EUR_USD",
			PipsGained: 1.0,
			ClosedAt:   gc.Proposal.CreatedAt.Add(-time.Duration(i+1) * 5 * time.Minute),
		})
	}
	res := e.Evaluate(gc)
	if res.GateFailed != "overtrading" {
		t.Fatalf("expected overtrading gate, got %q", res.GateFailed)
	}
}

func TestOvertradingIgnoresTradesOutsideWindow(t *testing.T) {
	e := New(Config{MaxTradesPerWindow: 2, SequencingWindow: 30 * time.Minute})
	gc := baseContext()
	for i := 0; i < 5; i++ {
		gc.RecentTrades = append(gc.RecentTrades, models.ClosedTrade{
			Pair:       "EUR_USD",
			PipsGained: 1.0,
			ClosedAt:   gc.Proposal.CreatedAt.Add(-2 * time.Hour),
		})
	}
	res := e.Evaluate(gc)
	if res.GateFailed == "overtrading" {
		t.Fatalf("stale trades must not trip the sequencing gate")
	}
}

func TestCompositeIsMultiplicative(t *testing.T) {
	e := New(Config{})
	gc := baseContext()
	res := e.Evaluate(gc)

	product := 1.0
	for _, v := range res.Multipliers {
		product *= v
	}
	if product > 1 {
		product = 1
	}
	if diff := res.Composite - product; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("composite %.6f != product of multipliers %.6f", res.Composite, product)
	}
}

func TestThrottleBand(t *testing.T) {
	e := New(Config{})
	gc := baseContext()
	// Degrade several factors without tripping a gate: unconfirmed regime,
	// disagreeing higher timeframes, negative pair expectancy.
	gc.Regime.RegimeConfirmed = false
	gc.Regime.RegimeFamilyConfirmed = false
	gc.HigherTimeframes = []models.MarketRegimeSnapshot{
		{FamilyLabel: models.FamilyBearish},
		{FamilyLabel: models.FamilyBearish},
	}
	for i := 0; i < 6; i++ {
		gc.RecentTrades = append(gc.RecentTrades, models.ClosedTrade{
			PipsGained: -0.3,
			ClosedAt:   gc.Proposal.CreatedAt.Add(-3 * time.Hour),
		})
	}
	res := e.Evaluate(gc)
	if res.Decision != models.GovernanceThrottled && res.Decision != models.GovernanceRejected {
		t.Fatalf("degraded context should not be approved, got %s composite %.2f", res.Decision, res.Composite)
	}
	if len(res.Reasons) == 0 {
		t.Fatalf("non-approved decision must carry reasons")
	}
}

func TestSequencingMultiplierPenalizesLossStreak(t *testing.T) {
	e := New(Config{LossStreakLimit: 3})
	gc := baseContext()
	for i := 0; i < 3; i++ {
		gc.RecentTrades = append(gc.RecentTrades, models.ClosedTrade{
			PipsGained: -1.0,
			ClosedAt:   gc.Proposal.CreatedAt.Add(-2 * time.Hour),
		})
	}
	v, reason := e.sequencing(gc)
	if v != 0.70 {
		t.Fatalf("expected 0.70 cooldown multiplier, got %.2f", v)
	}
	if !strings.Contains(reason, "consecutive losses") {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestLossStreakResetsOnWin(t *testing.T) {
	trades := []models.ClosedTrade{
		{PipsGained: -1}, {PipsGained: -1}, {PipsGained: 2}, {PipsGained: -1},
	}
	if got := lossStreak(trades); got != 1 {
		t.Fatalf("expected streak 1, got %d", got)
	}
}

func TestMtfConsensusBands(t *testing.T) {
	full := Context{
		Regime: models.MarketRegimeSnapshot{FamilyLabel: models.FamilyBullish},
		HigherTimeframes: []models.MarketRegimeSnapshot{
			{FamilyLabel: models.FamilyBullish},
			{FamilyLabel: models.FamilyBullish},
		},
	}
	if v, _ := mtfConsensus(full); v != 1.10 {
		t.Fatalf("full alignment expected 1.10, got %.2f", v)
	}

	none := full
	none.HigherTimeframes = []models.MarketRegimeSnapshot{
		{FamilyLabel: models.FamilyBearish},
		{FamilyLabel: models.FamilyNeutral},
	}
	if v, reason := mtfConsensus(none); v != 0.80 || reason == "" {
		t.Fatalf("disagreement expected 0.80 with reason, got %.2f %q", v, reason)
	}

	if v, _ := mtfConsensus(Context{}); v != 0.95 {
		t.Fatalf("missing context expected 0.95, got %.2f", v)
	}
}
