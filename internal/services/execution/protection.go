package execution

import (
	"fmt"
	"math"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// ScoreExecutionQuality produces a 0-100 post-trade score from realized
// slippage, fill latency, and spread-vs-expected ratio. 100 is a clean
// fill at the quoted price.
func ScoreExecutionQuality(slippagePips, fillLatencyMs, spreadRatio float64) float64 {
	slipScore := 100 - math.Min(math.Abs(slippagePips)*50, 100)
	latencyScore := 100 - math.Min(fillLatencyMs/10, 100)
	spreadScore := 100.0
	if spreadRatio > 1 {
		spreadScore = 100 - math.Min((spreadRatio-1)*100, 100)
	}
	score := 0.45*slipScore + 0.25*latencyScore + 0.30*spreadScore
	return math.Min(100, math.Max(0, score))
}

// RecordExecution appends a fill's telemetry to the rolling window and
// re-evaluates protection.
func (e *Engine) RecordExecution(rec models.ExecutionRecord) {
	if rec.QualityScore == 0 && !rec.Rejected {
		rec.QualityScore = ScoreExecutionQuality(rec.SlippagePips, rec.FillLatencyMs, rec.SpreadRatio)
	}
	e.mu.Lock()
	e.records.Append(rec)
	e.mu.Unlock()
	e.EvaluateExecutionProtection()
}

// EvaluateExecutionProtection inspects the rolling telemetry window and
// escalates normal→elevated→critical. Three or more independent
// critical conditions co-occurring trip the kill switch: the density
// multiplier is forced to 0 until conditions clear.
func (e *Engine) EvaluateExecutionProtection() models.ProtectionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	recs := e.records.Items()
	status := models.ProtectionStatus{
		Level:             models.ProtectionNormal,
		DensityMultiplier: 1.0,
		EvaluatedAt:       time.Now(),
	}
	if len(recs) < 10 {
		e.status = status
		return status
	}

	var slip, quality, expectancy float64
	rejected := 0
	for _, r := range recs {
		slip += math.Abs(r.SlippagePips)
		quality += r.QualityScore
		expectancy += r.Expectancy
		if r.Rejected {
			rejected++
		}
	}
	n := float64(len(recs))
	avgSlip := slip / n
	avgQuality := quality / n
	rejectionRate := float64(rejected) / n
	netExpectancy := expectancy / n

	var critical []string
	if avgSlip > 1.0 {
		critical = append(critical, fmt.Sprintf("avg slippage %.2f pips", avgSlip))
	}
	if avgQuality < 50 {
		critical = append(critical, fmt.Sprintf("avg execution quality %.0f", avgQuality))
	}
	if rejectionRate > 0.20 {
		critical = append(critical, fmt.Sprintf("rejection rate %.0f%%", rejectionRate*100))
	}
	if netExpectancy < 0 {
		critical = append(critical, fmt.Sprintf("net expectancy %.2f pips", netExpectancy))
	}

	status.CriticalConditions = critical
	switch {
	case len(critical) >= 3:
		status.Level = models.ProtectionCritical
		status.DensityMultiplier = 0 // kill switch
	case len(critical) >= 1:
		status.Level = models.ProtectionElevated
		status.DensityMultiplier = 0.5
	}

	e.status = status
	return status
}

// ProtectionStatus returns the last evaluated protection state.
func (e *Engine) ProtectionStatus() models.ProtectionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}
