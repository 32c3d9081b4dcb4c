package environment

import (
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// Rule tables distilled from the discovery backtests. Earlier rules win
// over later ones, so the most specific environments come first.

func edgeRules(th Thresholds) []Rule {
	return []Rule{
		{
			Name:  "eurusd_london_momentum_long",
			Label: "trend-continuation edge",
			When: func(in Input) bool {
				return in.Pair == "EUR_USD" &&
					(in.Session == models.SessionLondon || in.Session == models.SessionOverlap) &&
					in.Regime == models.RegimeMomentum &&
					in.Direction == models.DirectionLong
			},
		},
		{
			Name:  "gbpusd_overlap_expansion",
			Label: "volatility-expansion edge",
			When: func(in Input) bool {
				return in.Pair == "GBP_USD" &&
					in.Session == models.SessionOverlap &&
					(in.Regime == models.RegimeExpansion || in.Regime == models.RegimeBreakdown)
			},
		},
		{
			Name:  "usdjpy_asian_riskoff_short",
			Label: "risk-off drift edge",
			When: func(in Input) bool {
				return in.Pair == "USD_JPY" &&
					in.Session == models.SessionAsian &&
					in.Regime == models.RegimeRiskOff &&
					in.Direction == models.DirectionShort
			},
		},
		{
			Name:  "ignition_high_composite",
			Label: "ignition breakout edge",
			When: func(in Input) bool {
				return in.Regime == models.RegimeIgnition &&
					in.CompositeScore >= th.IgnitionMinComposite
			},
		},
		{
			Name:  "london_breakdown_short",
			Label: "session-open breakdown edge",
			When: func(in Input) bool {
				return in.Session == models.SessionLondon &&
					in.Regime == models.RegimeBreakdown &&
					in.Direction == models.DirectionShort
			},
		},
	}
}

func destructiveRules(th Thresholds) []Rule {
	return []Rule{
		{
			Name:  "rollover_session",
			Label: "rollover spread trap",
			When: func(in Input) bool {
				return in.Session == models.SessionRollover
			},
		},
		{
			Name:  "spread_above_block",
			Label: "uneconomic spread",
			When: func(in Input) bool {
				return in.SpreadPips > th.SpreadBlockPips
			},
		},
		{
			Name:  "exhaustion_entry",
			Label: "late-cycle entry",
			When: func(in Input) bool {
				return in.Regime == models.RegimeExhaustion
			},
		},
		{
			Name:  "compression_chase",
			Label: "no-range churn",
			When: func(in Input) bool {
				return in.Regime == models.RegimeCompression &&
					in.Direction != models.DirectionNeutral &&
					in.CompositeScore < 0.50
			},
		},
		{
			Name:  "sydney_illiquid_momentum",
			Label: "thin-book fakeout",
			When: func(in Input) bool {
				return in.Session == models.SessionSydney &&
					(in.Regime == models.RegimeMomentum || in.Regime == models.RegimeExpansion)
			},
		},
	}
}
