package governance

import (
	"fmt"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// gate is a hard rejection check. Gates run in order before any
// multiplier; a single failure rejects the proposal.
type gate struct {
	name  string
	check func(Context) (reason string, failed bool)
}

func (e *Engine) gates() []gate {
	return []gate{
		{
			name: "rollover_session",
			check: func(gc Context) (string, bool) {
				if gc.Proposal.Session() == models.SessionRollover {
					return "rollover session: spreads uneconomic for scalping", true
				}
				return "", false
			},
		},
		{
			name: "excessive_friction",
			check: func(gc Context) (string, bool) {
				if gc.ExpectedMovePips <= 0 {
					return "expected move unknown, cannot budget friction", true
				}
				share := gc.FrictionPips / gc.ExpectedMovePips
				if share > e.cfg.MaxFrictionShare {
					return fmt.Sprintf("friction %.1f pips is %.0f%% of expected move (max %.0f%%)",
						gc.FrictionPips, share*100, e.cfg.MaxFrictionShare*100), true
				}
				return "", false
			},
		},
		{
			name: "regime_divergence",
			check: func(gc Context) (string, bool) {
				if gc.Regime.RegimeDiverging {
					return fmt.Sprintf("regime %s destabilizing: %d/%d lookback bars off-family",
						gc.Regime.Label, gc.Regime.FamilyHoldBars, 5), true
				}
				return "", false
			},
		},
		{
			name: "overtrading",
			check: func(gc Context) (string, bool) {
				cutoff := gc.Proposal.CreatedAt.Add(-e.cfg.SequencingWindow)
				n := 0
				for _, t := range gc.RecentTrades {
					if t.ClosedAt.After(cutoff) {
						n++
					}
				}
				if n >= e.cfg.MaxTradesPerWindow {
					return fmt.Sprintf("%d trades in last %s exceeds sequencing limit %d",
						n, e.cfg.SequencingWindow, e.cfg.MaxTradesPerWindow), true
				}
				return "", false
			},
		},
	}
}

// lossStreak counts consecutive losing trades from the tail of history.
func lossStreak(trades []models.ClosedTrade) int {
	streak := 0
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].PipsGained >= 0 {
			break
		}
		streak++
	}
	return streak
}
