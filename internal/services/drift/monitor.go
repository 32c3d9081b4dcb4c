package drift

import (
	"fmt"
	"math"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// Config holds the drift detection thresholds.
type Config struct {
	MinTrades                int     `yaml:"min_trades"`
	SlopeWindow              int     `yaml:"slope_window"`
	ExpectancySlopeThreshold float64 `yaml:"expectancy_slope_threshold"` // pips per trade, positive magnitude
	SessionEntropyThreshold  float64 `yaml:"session_entropy_threshold"`  // bits
	MinConfidenceForEntropy  float64 `yaml:"min_confidence_for_entropy"`
	DrawdownMultiple         float64 `yaml:"drawdown_multiple"`
	DecayFraction            float64 `yaml:"decay_fraction"`
}

// DefaultConfig returns the production drift thresholds.
func DefaultConfig() Config {
	return Config{
		MinTrades:                20,
		SlopeWindow:              10,
		ExpectancySlopeThreshold: 0.15,
		SessionEntropyThreshold:  1.8,
		MinConfidenceForEntropy:  0.30,
		DrawdownMultiple:         4.0,
		DecayFraction:            0.50,
	}
}

// Monitor scans edge memory for decaying environments and drives
// reversion safety actions.
type Monitor struct {
	cfg   Config
	store *MemoryStore
}

// NewMonitor creates a drift monitor over the given memory store.
func NewMonitor(cfg Config, store *MemoryStore) *Monitor {
	def := DefaultConfig()
	if cfg.MinTrades <= 0 {
		cfg.MinTrades = def.MinTrades
	}
	if cfg.SlopeWindow <= 0 {
		cfg.SlopeWindow = def.SlopeWindow
	}
	if cfg.ExpectancySlopeThreshold <= 0 {
		cfg.ExpectancySlopeThreshold = def.ExpectancySlopeThreshold
	}
	if cfg.SessionEntropyThreshold <= 0 {
		cfg.SessionEntropyThreshold = def.SessionEntropyThreshold
	}
	if cfg.MinConfidenceForEntropy <= 0 {
		cfg.MinConfidenceForEntropy = def.MinConfidenceForEntropy
	}
	if cfg.DrawdownMultiple <= 0 {
		cfg.DrawdownMultiple = def.DrawdownMultiple
	}
	if cfg.DecayFraction <= 0 {
		cfg.DecayFraction = def.DecayFraction
	}
	return &Monitor{cfg: cfg, store: store}
}

// DetectDrift checks one environment entry against the four drift
// conditions. Alerts are ephemeral: the caller discards previous scans.
func (m *Monitor) DetectDrift(entry models.EdgeMemoryEntry) []models.DriftAlert {
	if entry.TradeCount < m.cfg.MinTrades {
		return nil
	}
	now := time.Now()
	var alerts []models.DriftAlert

	// (a) Expectancy slope over the recent window.
	window := tailFloats(entry.ExpectancyHistory, m.cfg.SlopeWindow)
	if len(window) >= 5 {
		slope := linearSlope(window)
		if slope < -m.cfg.ExpectancySlopeThreshold {
			severity := models.SeverityWarning
			if slope < -2*m.cfg.ExpectancySlopeThreshold {
				severity = models.SeverityCritical
			}
			alerts = append(alerts, models.DriftAlert{
				EnvironmentSignature: entry.Signature,
				AlertType:            models.DriftExpectancySlope,
				Severity:             severity,
				Message:              fmt.Sprintf("expectancy slope %.3f pips/trade over last %d trades", slope, len(window)),
				MetricValue:          slope,
				Threshold:            -m.cfg.ExpectancySlopeThreshold,
				Timestamp:            now,
			})
		}
	}

	// (b) Session entropy: an edge firing evenly across many sessions is
	// too dispersed to be structural.
	entropy := sessionEntropy(entry.SessionsCovered)
	if entropy > m.cfg.SessionEntropyThreshold && entry.EdgeConfidence >= m.cfg.MinConfidenceForEntropy {
		alerts = append(alerts, models.DriftAlert{
			EnvironmentSignature: entry.Signature,
			AlertType:            models.DriftSessionEntropy,
			Severity:             models.SeverityWarning,
			Message:              fmt.Sprintf("session entropy %.2f bits exceeds %.2f", entropy, m.cfg.SessionEntropyThreshold),
			MetricValue:          entropy,
			Threshold:            m.cfg.SessionEntropyThreshold,
			Timestamp:            now,
		})
	}

	// (c) Drawdown relative to the expectancy-derived baseline.
	baseline := math.Abs(meanFloats(entry.ExpectancyHistory)) * m.cfg.DrawdownMultiple
	if baseline > 0 && entry.MaxDrawdown > baseline {
		alerts = append(alerts, models.DriftAlert{
			EnvironmentSignature: entry.Signature,
			AlertType:            models.DriftDrawdownBreach,
			Severity:             models.SeverityCritical,
			Message:              fmt.Sprintf("drawdown %.1f pips exceeds %.1fx expectancy baseline", entry.MaxDrawdown, m.cfg.DrawdownMultiple),
			MetricValue:          entry.MaxDrawdown,
			Threshold:            baseline,
			Timestamp:            now,
		})
	}

	// (d) First-half vs second-half expectancy decay.
	if first, second, ok := halves(entry.ExpectancyHistory); ok && first > 0 {
		decay := (first - second) / first
		if decay > m.cfg.DecayFraction {
			severity := models.SeverityWarning
			if second < 0 {
				severity = models.SeverityCritical
			}
			alerts = append(alerts, models.DriftAlert{
				EnvironmentSignature: entry.Signature,
				AlertType:            models.DriftExpectancyDecay,
				Severity:             severity,
				Message:              fmt.Sprintf("expectancy decayed %.0f%% (%.2f → %.2f pips)", decay*100, first, second),
				MetricValue:          decay,
				Threshold:            m.cfg.DecayFraction,
				Timestamp:            now,
			})
		}
	}

	return alerts
}

// Scan runs drift detection across all tracked environments, applies
// state transitions and reversions, and aggregates the summary.
func (m *Monitor) Scan() models.DriftScanSummary {
	entries := m.store.Entries()
	summary := models.DriftScanSummary{
		ScannedAt:    time.Now(),
		Environments: len(entries),
	}

	for _, entry := range entries {
		alerts := m.DetectDrift(entry)
		if len(alerts) == 0 {
			if entry.LearningState != models.LearningReverting {
				m.store.SetLearningState(entry.Signature, models.LearningStable)
			}
			summary.StableCount++
			continue
		}

		critical := 0
		for _, a := range alerts {
			if a.Severity == models.SeverityCritical {
				critical++
			}
		}
		summary.Alerts = append(summary.Alerts, alerts...)
		summary.CriticalAlerts += critical

		if critical >= 2 {
			m.store.TriggerReversion(entry.Signature, entry.EdgeConfidence, 0.5,
				fmt.Sprintf("%d critical drift conditions", critical))
			summary.RevertingCount++
			continue
		}
		m.store.SetLearningState(entry.Signature, models.LearningDecaying)
		summary.DriftingCount++
	}

	if summary.Environments > 0 {
		summary.OverallDriftScore = math.Min(1,
			(float64(summary.DriftingCount)+2*float64(summary.RevertingCount))/float64(summary.Environments))
	}
	return summary
}

// linearSlope fits y = a + b*x by least squares over implicit x=0..n-1
// and returns b.
func linearSlope(ys []float64) float64 {
	n := float64(len(ys))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// sessionEntropy computes the Shannon entropy (bits) of the session
// distribution.
func sessionEntropy(sessions map[models.TradingSession]int) float64 {
	total := 0
	for _, n := range sessions {
		total += n
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, n := range sessions {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

func halves(xs []float64) (first, second float64, ok bool) {
	if len(xs) < 6 {
		return 0, 0, false
	}
	mid := len(xs) / 2
	return meanFloats(xs[:mid]), meanFloats(xs[mid:]), true
}

func meanFloats(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func tailFloats(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
