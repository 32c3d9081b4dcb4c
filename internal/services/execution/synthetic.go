package execution

import (
	"math/rand"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// SyntheticTelemetry generates plausible execution records for demo and
// health-check environments. The PRNG is injected so callers control
// reproducibility; tests seed it explicitly.
type SyntheticTelemetry struct {
	rng *rand.Rand
}

// NewSyntheticTelemetry creates a generator around the given PRNG.
func NewSyntheticTelemetry(rng *rand.Rand) *SyntheticTelemetry {
	return &SyntheticTelemetry{rng: rng}
}

// Records produces n execution records for the pair, centered on clean
// fills with occasional slippage outliers and rare rejections.
func (s *SyntheticTelemetry) Records(pair string, n int, at time.Time) []models.ExecutionRecord {
	out := make([]models.ExecutionRecord, 0, n)
	for i := 0; i < n; i++ {
		slip := s.rng.NormFloat64() * 0.25
		if s.rng.Float64() < 0.05 {
			slip *= 4 // outlier fill
		}
		rec := models.ExecutionRecord{
			Pair:          pair,
			Timestamp:     at.Add(time.Duration(i) * time.Minute),
			SlippagePips:  slip,
			FillLatencyMs: 40 + s.rng.Float64()*120,
			SpreadRatio:   0.9 + s.rng.Float64()*0.4,
			Rejected:      s.rng.Float64() < 0.02,
			Expectancy:    s.rng.NormFloat64() * 1.5,
		}
		rec.QualityScore = ScoreExecutionQuality(rec.SlippagePips, rec.FillLatencyMs, rec.SpreadRatio)
		out = append(out, rec)
	}
	return out
}
