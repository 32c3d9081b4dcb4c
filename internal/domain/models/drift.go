package models

import "time"

// LearningState tracks where an environment sits in the adapt/revert
// lifecycle.
type LearningState string

const (
	LearningStable    LearningState = "Stable"
	LearningDecaying  LearningState = "Decaying"
	LearningReverting LearningState = "Reverting"
)

// EdgeMemoryEntry accumulates per-environment-signature statistics from
// closed trades. Entries grow (bounded history tail) and are never
// deleted.
type EdgeMemoryEntry struct {
	Signature         string
	TradeCount        int
	ExpectancyHistory []float64 // ordered, append-only, bounded tail
	PeakEquity        float64
	CurrentEquity     float64
	MaxDrawdown       float64
	EdgeConfidence    float64 // 0-1
	SessionsCovered   map[TradingSession]int
	LearningState     LearningState
	LastTradeAt       time.Time
}

// DriftAlertType names the statistical trigger that fired.
type DriftAlertType string

const (
	DriftExpectancySlope DriftAlertType = "expectancy_slope"
	DriftSessionEntropy  DriftAlertType = "session_entropy"
	DriftDrawdownBreach  DriftAlertType = "drawdown_breach"
	DriftExpectancyDecay DriftAlertType = "expectancy_decay"
)

// DriftSeverity ranks alert urgency.
type DriftSeverity string

const (
	SeverityWarning  DriftSeverity = "warning"
	SeverityCritical DriftSeverity = "critical"
)

// DriftAlert is an ephemeral per-scan finding. Each scan regenerates
// alerts from scratch; previous alerts are discarded, not merged.
type DriftAlert struct {
	EnvironmentSignature string
	AlertType            DriftAlertType
	Severity             DriftSeverity
	Message              string
	MetricValue          float64
	Threshold            float64
	Timestamp            time.Time
}

// ReversionEntry records an automatic confidence reversion. Append-only,
// bounded to the last 100 entries FIFO.
type ReversionEntry struct {
	EnvironmentSignature string
	PriorConfidence      float64
	NewConfidence        float64
	PriorAllocation      float64
	BaselineAllocation   float64
	Reason               string
	Timestamp            time.Time
}

// DriftScanSummary aggregates one full monitor pass.
type DriftScanSummary struct {
	ScannedAt         time.Time
	Environments      int
	StableCount       int
	DriftingCount     int
	RevertingCount    int
	CriticalAlerts    int
	Alerts            []DriftAlert
	OverallDriftScore float64 // 0-1
}
