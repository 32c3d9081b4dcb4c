package governance

import (
	"fmt"
	"math"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// multiplier is one weighted factor of the composite score. Values sit
// near 1.0 for neutral conditions, below for penalties, slightly above
// for favorable ones. A non-empty reason is recorded in the audit trail.
type multiplier struct {
	name    string
	compute func(Context) (value float64, reason string)
}

func (e *Engine) multipliers() []multiplier {
	return []multiplier{
		{name: "mtf_consensus", compute: mtfConsensus},
		{name: "regime_confirmation", compute: regimeConfirmation},
		{name: "pair_performance", compute: pairPerformance},
		{name: "friction_cost", compute: e.frictionCost},
		{name: "exit_quality", compute: exitQuality},
		{name: "session_quality", compute: sessionQuality},
		{name: "sequencing", compute: e.sequencing},
	}
}

// mtfConsensus rewards alignment between the evaluation timeframe's
// regime family and the higher timeframes.
func mtfConsensus(gc Context) (float64, string) {
	if len(gc.HigherTimeframes) == 0 {
		return 0.95, "no higher-timeframe context"
	}
	aligned := 0
	for _, htf := range gc.HigherTimeframes {
		if htf.FamilyLabel == gc.Regime.FamilyLabel {
			aligned++
		}
	}
	frac := float64(aligned) / float64(len(gc.HigherTimeframes))
	switch {
	case frac == 1:
		return 1.10, ""
	case frac >= 0.5:
		return 1.0, ""
	default:
		return 0.80, fmt.Sprintf("higher timeframes disagree (%d/%d aligned)", aligned, len(gc.HigherTimeframes))
	}
}

// regimeConfirmation penalizes entries before the anti-flicker window
// confirms the regime.
func regimeConfirmation(gc Context) (float64, string) {
	switch {
	case gc.Regime.RegimeConfirmed:
		return 1.10, ""
	case gc.Regime.RegimeFamilyConfirmed:
		return 1.0, ""
	case gc.Regime.RegimeEarlyWarning:
		return 0.80, "regime early warning: first divergent bar in lookback"
	default:
		return 0.90, fmt.Sprintf("regime %s unconfirmed (%d hold bars)", gc.Regime.Label, gc.Regime.HoldBars)
	}
}

// pairPerformance scales by realized expectancy on this pair.
func pairPerformance(gc Context) (float64, string) {
	if len(gc.RecentTrades) < 5 {
		return 0.95, "thin pair history"
	}
	var sum float64
	for _, t := range gc.RecentTrades {
		sum += t.PipsGained
	}
	expectancy := sum / float64(len(gc.RecentTrades))
	switch {
	case expectancy > 1.0:
		return 1.15, ""
	case expectancy > 0:
		return 1.05, ""
	case expectancy > -0.5:
		return 0.85, fmt.Sprintf("pair expectancy %.2f pips slightly negative", expectancy)
	default:
		return 0.70, fmt.Sprintf("pair expectancy %.2f pips negative", expectancy)
	}
}

// frictionCost penalizes proportionally as friction consumes the
// expected move (the hard gate already rejected the worst cases).
func (e *Engine) frictionCost(gc Context) (float64, string) {
	if gc.ExpectedMovePips <= 0 {
		return 0.80, "expected move unknown"
	}
	share := gc.FrictionPips / gc.ExpectedMovePips
	v := 1.10 - share
	v = math.Min(1.10, math.Max(0.60, v))
	if share > 0.30 {
		return v, fmt.Sprintf("friction consumes %.0f%% of expected move", share*100)
	}
	return v, ""
}

// exitQuality scores how cleanly recent trades on this pair exited:
// heavy slippage on exits degrades realized edge.
func exitQuality(gc Context) (float64, string) {
	if len(gc.RecentTrades) == 0 {
		return 1.0, ""
	}
	var slip float64
	for _, t := range gc.RecentTrades {
		slip += math.Abs(t.SlippagePips)
	}
	avg := slip / float64(len(gc.RecentTrades))
	switch {
	case avg <= 0.3:
		return 1.05, ""
	case avg <= 0.8:
		return 0.95, ""
	default:
		return 0.80, fmt.Sprintf("average exit slippage %.2f pips", avg)
	}
}

// sessionQuality applies the historical per-session quality table.
func sessionQuality(gc Context) (float64, string) {
	switch gc.Proposal.Session() {
	case models.SessionOverlap:
		return 1.10, ""
	case models.SessionLondon, models.SessionNewYork:
		return 1.05, ""
	case models.SessionAsian:
		return 0.90, "asian session: reduced follow-through"
	case models.SessionSydney:
		return 0.80, "sydney session: thin liquidity"
	default:
		return 0.70, "off-session entry"
	}
}

// sequencing applies an anti-tilt penalty after consecutive losses.
func (e *Engine) sequencing(gc Context) (float64, string) {
	streak := lossStreak(gc.RecentTrades)
	if streak >= e.cfg.LossStreakLimit {
		return 0.70, fmt.Sprintf("%d consecutive losses, cooling down", streak)
	}
	if streak == e.cfg.LossStreakLimit-1 {
		return 0.90, fmt.Sprintf("%d consecutive losses", streak)
	}
	return 1.0, ""
}
