package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	svcmetrics "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/metrics"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/execution"
	pkgkafka "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/kafka"
)

// TradeCloseHandler consumes closed-trade events from Kafka and feeds
// them into edge memory, the journal, and execution telemetry.
type TradeCloseHandler struct {
	topic    string
	pipeline *Pipeline
	executor *execution.Engine
	metrics  domrepo.Metrics
}

func NewTradeCloseHandler(topic string, pipeline *Pipeline, executor *execution.Engine, metrics domrepo.Metrics) *TradeCloseHandler {
	return &TradeCloseHandler{topic: topic, pipeline: pipeline, executor: executor, metrics: metrics}
}

func (h *TradeCloseHandler) Topic() string { return h.topic }

// incoming message schema mirrors the execution desk's close event.
func (h *TradeCloseHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Pair          string  `json:"pair"`
		AgentID       string  `json:"agent_id"`
		Direction     string  `json:"direction"`
		Regime        string  `json:"regime"`
		PipsGained    float64 `json:"pips_gained"`
		OpenedAt      int64   `json:"opened_at"`
		ClosedAt      int64   `json:"closed_at"`
		SlippagePips  float64 `json:"slippage_pips"`
		FillLatencyMs int64   `json:"fill_latency_ms"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.ClosedAt > 1e11 { // ms
		m.ClosedAt /= 1000
	}
	if m.OpenedAt > 1e11 {
		m.OpenedAt /= 1000
	}
	closedAt := time.Unix(m.ClosedAt, 0).UTC()
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(closedAt).Seconds())

	trade := models.ClosedTrade{
		Pair:         m.Pair,
		AgentID:      m.AgentID,
		Direction:    models.Direction(m.Direction),
		Regime:       m.Regime,
		Session:      models.SessionAt(closedAt),
		PipsGained:   m.PipsGained,
		OpenedAt:     time.Unix(m.OpenedAt, 0).UTC(),
		ClosedAt:     closedAt,
		SlippagePips: m.SlippagePips,
		FillLatency:  time.Duration(m.FillLatencyMs) * time.Millisecond,
	}
	if err := h.pipeline.RecordClosedTrade(ctx, trade); err != nil {
		h.metrics.RecordError("consumer_record")
		return err
	}

	// execution telemetry feeds the protection monitor
	quality := execution.ScoreExecutionQuality(trade.SlippagePips, float64(m.FillLatencyMs), 1.0)
	h.executor.RecordExecution(models.ExecutionRecord{
		Pair:          trade.Pair,
		Timestamp:     closedAt,
		SlippagePips:  trade.SlippagePips,
		FillLatencyMs: float64(m.FillLatencyMs),
		SpreadRatio:   1.0,
		QualityScore:  quality,
		Expectancy:    trade.PipsGained,
	})
	svcmetrics.ExecutionQuality.WithLabelValues(trade.Pair).Observe(quality)
	status := h.executor.EvaluateExecutionProtection()
	svcmetrics.ProtectionLevel.Set(protectionLevelValue(status.Level))
	return nil
}

func protectionLevelValue(l models.ProtectionLevel) float64 {
	switch l {
	case models.ProtectionCritical:
		return 2
	case models.ProtectionElevated:
		return 1
	default:
		return 0
	}
}

var _ pkgkafka.MessageHandler = (*TradeCloseHandler)(nil)
