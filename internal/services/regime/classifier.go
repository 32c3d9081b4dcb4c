package regime

import (
	"fmt"
	"math"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/indicators"
)

// MinBars is the minimum candle window for stable percentile estimates.
// Shorter windows must be rejected by the caller.
const MinBars = 60

// Config holds the classifier tunables. Defaults reproduce the
// production axis weights.
type Config struct {
	ATRPeriod          int     `yaml:"atr_period"`
	ATRBaselinePeriod  int     `yaml:"atr_baseline_period"`
	BBPeriod           int     `yaml:"bb_period"`
	PercentileWindow   int     `yaml:"percentile_window"`
	EfficiencyBars     int     `yaml:"efficiency_bars"`
	StructureBars      int     `yaml:"structure_bars"`
	StabilityLookback  int     `yaml:"stability_lookback"`
	ConfirmBars        int     `yaml:"confirm_bars"`
	DivergeBars        int     `yaml:"diverge_bars"`
	ROCStallPct        float64 `yaml:"roc_stall_pct"`
	EfficiencyStallPct float64 `yaml:"efficiency_stall_pct"`
}

// DefaultConfig returns the production classifier configuration.
func DefaultConfig() Config {
	return Config{
		ATRPeriod:          14,
		ATRBaselinePeriod:  50,
		BBPeriod:           20,
		PercentileWindow:   100,
		EfficiencyBars:     15,
		StructureBars:      8,
		StabilityLookback:  5,
		ConfirmBars:        3,
		DivergeBars:        2,
		ROCStallPct:        0.30,
		EfficiencyStallPct: 0.40,
	}
}

// Classifier computes multi-axis market regime snapshots from candle
// windows. Pure: safe to call from concurrent evaluation contexts.
type Classifier struct {
	cfg Config
}

// New creates a classifier with the given config, filling zero fields
// from defaults.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = def.ATRPeriod
	}
	if cfg.ATRBaselinePeriod <= 0 {
		cfg.ATRBaselinePeriod = def.ATRBaselinePeriod
	}
	if cfg.BBPeriod <= 0 {
		cfg.BBPeriod = def.BBPeriod
	}
	if cfg.PercentileWindow <= 0 {
		cfg.PercentileWindow = def.PercentileWindow
	}
	if cfg.EfficiencyBars <= 0 {
		cfg.EfficiencyBars = def.EfficiencyBars
	}
	if cfg.StructureBars <= 0 {
		cfg.StructureBars = def.StructureBars
	}
	if cfg.StabilityLookback <= 0 {
		cfg.StabilityLookback = def.StabilityLookback
	}
	if cfg.ConfirmBars <= 0 {
		cfg.ConfirmBars = def.ConfirmBars
	}
	if cfg.DivergeBars <= 0 {
		cfg.DivergeBars = def.DivergeBars
	}
	if cfg.ROCStallPct <= 0 {
		cfg.ROCStallPct = def.ROCStallPct
	}
	if cfg.EfficiencyStallPct <= 0 {
		cfg.EfficiencyStallPct = def.EfficiencyStallPct
	}
	return &Classifier{cfg: cfg}
}

// Classify produces the regime snapshot for the latest bar of the
// window. The window must hold at least MinBars bars.
func (c *Classifier) Classify(pair string, bars []models.Candle) (models.MarketRegimeSnapshot, error) {
	if len(bars) < MinBars {
		return models.MarketRegimeSnapshot{}, fmt.Errorf("regime: need >=%d bars, got %d", MinBars, len(bars))
	}

	axes := c.computeAxes(bars)
	label := decideLabel(axes)
	family := models.FamilyOf(label, axes.dominant)

	snap := models.MarketRegimeSnapshot{
		Pair:                   pair,
		Timestamp:              bars[len(bars)-1].Time,
		VolatilityScore:        axes.volScore,
		VolAcceleration:        axes.accelScore,
		DirectionalPersistence: axes.persScore,
		DominantDirection:      axes.dominant,
		Label:                  label,
		FamilyLabel:            family,
		Strength:               axes.strength(),
	}

	c.applyStability(&snap, bars)
	return snap, nil
}

// axisValues carries the intermediate per-bar axis computation.
type axisValues struct {
	volScore   float64
	accelScore float64
	persScore  float64
	volLevel   level
	accelLevel accelLevel
	persLevel  level
	dominant   models.Direction
	stalling   bool
}

func (a axisValues) strength() float64 {
	s := (a.persScore*0.6 + a.volScore*0.4) / 100
	return math.Min(1, math.Max(0, s))
}

type level int

const (
	levelLow level = iota
	levelNormal
	levelHigh
)

type accelLevel int

const (
	accelDecelerating accelLevel = iota
	accelStable
	accelAccelerating
)

func (c *Classifier) computeAxes(bars []models.Candle) axisValues {
	closes := indicators.Closes(bars)

	// Volatility axis: ATR ratio vs 50-bar baseline, BB-width percentile,
	// ATR percentile. Weights 0.40/0.30/0.30.
	atrSeries := indicators.ATRSeries(bars, c.cfg.ATRPeriod)
	atrNow := lastOr(atrSeries, 0)
	atrBaseline := indicators.ATR(bars, c.cfg.ATRBaselinePeriod)
	atrRatio := indicators.SafeRatio(atrNow, atrBaseline)

	bbSeries := indicators.BollingerWidthSeries(closes, c.cfg.BBPeriod, 2)
	bbNow := lastOr(bbSeries, 0)

	volScore := 0.40*mapRatioScore(atrRatio) +
		0.30*indicators.PercentileRank(tail(bbSeries, c.cfg.PercentileWindow), bbNow) +
		0.30*indicators.PercentileRank(tail(atrSeries, c.cfg.PercentileWindow), atrNow)

	// Volatility-acceleration axis: recent 3-bar avg vs prior 3-bar avg
	// for ATR, BB width, and high-low range. Weights 0.40/0.30/0.30.
	ranges := make([]float64, len(bars))
	for i, b := range bars {
		ranges[i] = b.Range()
	}
	accelScore := 0.40*mapRatioScore(recentRatio(atrSeries)) +
		0.30*mapRatioScore(recentRatio(bbSeries)) +
		0.30*mapRatioScore(recentRatio(ranges))

	// Directional-persistence axis: trend efficiency, ADX, trend-follower
	// agreement. Weights 0.40/0.35/0.25.
	eff := indicators.TrendEfficiency(closes, c.cfg.EfficiencyBars)
	adx := indicators.ADX(bars, 14)
	agreeCount, dominant := indicators.TrendAgreement(bars)
	persScore := 0.40*(eff*100) +
		0.35*math.Min(adx*2, 100) +
		0.25*(float64(agreeCount)/indicators.TrendVote*100)

	av := axisValues{
		volScore:   clampScore(volScore),
		accelScore: clampScore(accelScore),
		persScore:  clampScore(persScore),
		dominant:   dominant,
	}
	av.volLevel = volLevelOf(av.volScore)
	av.accelLevel = accelLevelOf(av.accelScore)
	av.persLevel = persLevelOf(av.persScore)
	av.stalling = c.priceProgressStalling(bars, dominant)
	return av
}

// priceProgressStalling distinguishes genuine exhaustion from an orderly
// low-volatility continuation: momentum must be fading AND the swing
// structure must be broken before a trend is called stalled.
func (c *Classifier) priceProgressStalling(bars []models.Candle, dominant models.Direction) bool {
	closes := indicators.Closes(bars)
	if len(closes) < 13 || dominant == models.DirectionNeutral {
		return false
	}
	rocNow := math.Abs(indicators.ROC(closes, 6))
	rocPrev := math.Abs(indicators.ROC(closes[:len(closes)-6], 6))
	rocShrank := rocPrev > 0 && (rocPrev-rocNow)/rocPrev > c.cfg.ROCStallPct

	effNow := indicators.TrendEfficiency(closes, 6)
	effPrev := indicators.TrendEfficiency(closes[:len(closes)-6], 6)
	effDropped := effPrev > 0 && (effPrev-effNow)/effPrev > c.cfg.EfficiencyStallPct

	if !rocShrank && !effDropped {
		return false
	}
	return !indicators.StructureIntact(bars, c.cfg.StructureBars, dominant)
}

// decideLabel is the regime decision table over (volatility level ×
// persistence level × direction × acceleration × stalling).
func decideLabel(a axisValues) models.RegimeLabel {
	switch a.persLevel {
	case levelHigh: // strong persistence
		if a.stalling {
			return models.RegimeExhaustion
		}
		if a.volLevel == levelHigh {
			switch a.dominant {
			case models.DirectionLong:
				return models.RegimeExpansion
			case models.DirectionShort:
				return models.RegimeBreakdown
			}
			return models.RegimeTransition
		}
		// Decelerating or low volatility with structure intact is a
		// continuation, never exhaustion.
		switch a.dominant {
		case models.DirectionLong:
			return models.RegimeMomentum
		case models.DirectionShort:
			return models.RegimeRiskOff
		}
		return models.RegimeTransition

	case levelNormal: // moderate persistence
		if a.volLevel == levelLow {
			if a.accelLevel == accelAccelerating {
				return models.RegimeIgnition
			}
			return models.RegimeFlat
		}
		return models.RegimeTransition

	default: // weak persistence
		switch a.volLevel {
		case levelLow:
			if a.accelLevel == accelAccelerating {
				return models.RegimeIgnition
			}
			return models.RegimeCompression
		case levelHigh:
			return models.RegimeTransition
		default:
			return models.RegimeFlat
		}
	}
}

// applyStability recomputes the simplified label over the previous
// lookback-1 bars and fills the anti-flicker fields. Confirmation is
// slow (>=3 matching bars) and divergence fast (>=2 off-family bars):
// late entries are avoided while exposure is cut quickly.
func (c *Classifier) applyStability(snap *models.MarketRegimeSnapshot, bars []models.Candle) {
	lookback := c.cfg.StabilityLookback
	hold := 1 // current bar matches itself
	familyHold := 1
	divergent := 0

	for back := 1; back < lookback; back++ {
		sub := bars[:len(bars)-back]
		if len(sub) < MinBars {
			break
		}
		axes := c.computeAxes(sub)
		label := decideLabel(axes)
		family := models.FamilyOf(label, axes.dominant)
		if label == snap.Label {
			hold++
		}
		if family == snap.FamilyLabel {
			familyHold++
		} else {
			divergent++
		}
	}

	snap.HoldBars = hold
	snap.FamilyHoldBars = familyHold
	snap.RegimeConfirmed = hold >= c.cfg.ConfirmBars
	snap.RegimeFamilyConfirmed = familyHold >= c.cfg.ConfirmBars
	snap.RegimeDiverging = divergent >= c.cfg.DivergeBars
	snap.RegimeEarlyWarning = divergent >= 1
}

// mapRatioScore maps a ratio through the 3-segment piecewise-linear
// curve: low <0.7x → 0-35, normal 0.7-1.3x → 35-65, high >1.3x → 65-100.
func mapRatioScore(r float64) float64 {
	switch {
	case math.IsNaN(r) || math.IsInf(r, 0):
		return 50
	case r <= 0:
		return 0
	case r < 0.7:
		return r / 0.7 * 35
	case r <= 1.3:
		return 35 + (r-0.7)/0.6*30
	default:
		return 65 + math.Min((r-1.3)/0.7, 1)*35
	}
}

// recentRatio returns the recent 3-value average over the prior 3-value
// average, neutral 1.0 when history is too short.
func recentRatio(series []float64) float64 {
	if len(series) < 6 {
		return 1.0
	}
	recent := indicators.SMA(series, 3)
	prior := indicators.SMA(series[:len(series)-3], 3)
	return indicators.SafeRatio(recent, prior)
}

func volLevelOf(score float64) level {
	switch {
	case score < 35:
		return levelLow
	case score > 65:
		return levelHigh
	default:
		return levelNormal
	}
}

func persLevelOf(score float64) level {
	switch {
	case score < 35:
		return levelLow
	case score > 65:
		return levelHigh
	default:
		return levelNormal
	}
}

func accelLevelOf(score float64) accelLevel {
	switch {
	case score < 35:
		return accelDecelerating
	case score > 55:
		return accelAccelerating
	default:
		return accelStable
	}
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 50
	}
	return math.Min(100, math.Max(0, v))
}

func tail(s []float64, n int) []float64 {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func lastOr(s []float64, def float64) float64 {
	if len(s) == 0 {
		return def
	}
	return s[len(s)-1]
}
