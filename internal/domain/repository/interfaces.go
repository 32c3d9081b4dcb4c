package repository

import (
	"context"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// PriceStream delivers live bid/ask ticks from the broker feed.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// CandleSource provides historical OHLC windows for regime analysis.
// Bars are ordered by time ascending; gaps are permitted.
type CandleSource interface {
	GetCandles(ctx context.Context, pair string, granularity Granularity, count int) ([]models.Candle, error)
}

// DirectionProvider is the external directional-signal engine. The
// returned direction is advisory only downstream of governance and can
// never override a governance rejection.
type DirectionProvider interface {
	Direction(ctx context.Context, proposal models.TradeProposal, regime models.MarketRegimeSnapshot) (models.Direction, error)
}

// AgentRegistry resolves signal-agent ids to their static profiles.
type AgentRegistry interface {
	Lookup(agentID string) (models.AgentProfile, bool)
	All() []models.AgentProfile
}

// DecisionJournal persists evaluation results and serves historical
// trade context back to the governance engine.
type DecisionJournal interface {
	Init(ctx context.Context) error
	AppendDecision(ctx context.Context, d *models.PipelineDecision) error
	AppendClosedTrade(ctx context.Context, t *models.ClosedTrade) error
	RecentTrades(ctx context.Context, pair string, since time.Time, limit int) ([]models.ClosedTrade, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher fans decisions and drift alerts out to the dashboard's
// event bus.
type EventPublisher interface {
	PublishDecision(ctx context.Context, d *models.PipelineDecision) error
	PublishAlerts(ctx context.Context, summary *models.DriftScanSummary) error
	Close() error
}

// Metrics records operational telemetry for the pipeline.
type Metrics interface {
	RecordEvaluation(pair string, outcome string)
	RecordGateRejection(gate string)
	RecordDriftAlert(alertType string, severity string)
	RecordError(kind string)
	RecordLastSpread(pair string, pips float64)
	RecordLatency(op string, seconds float64)
}
