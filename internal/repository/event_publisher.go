package repository

import (
	"context"
	"strings"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	pkgkafka "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/kafka"
)

// KafkaEventPublisher fans decisions and drift alerts out to the
// dashboard's event bus.
type KafkaEventPublisher struct {
	producer      *pkgkafka.Producer
	decisionTopic string
	alertTopic    string
}

// NewKafkaEventPublisher creates the Kafka event publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, decisionTopic, alertTopic string) domrepo.EventPublisher {
	return &KafkaEventPublisher{
		producer:      producer,
		decisionTopic: decisionTopic,
		alertTopic:    alertTopic,
	}
}

func (p *KafkaEventPublisher) PublishDecision(ctx context.Context, d *models.PipelineDecision) error {
	payload := map[string]interface{}{
		"ts":              d.EvaluatedAt.UnixMilli(),
		"proposal_id":     d.Proposal.ID,
		"pair":            d.Proposal.Pair,
		"agent_id":        d.Proposal.AgentID,
		"outcome":         string(d.Outcome),
		"stage":           d.Stage,
		"direction":       string(d.Direction),
		"size_multiplier": d.SizeMultiplier,
		"reasons":         strings.Join(d.Reasons, "; "),
	}
	if d.Governance != nil {
		payload["composite"] = d.Governance.Composite
		payload["governance"] = string(d.Governance.Decision)
	}
	if d.Regime != nil {
		payload["regime"] = string(d.Regime.Label)
	}
	return p.producer.Publish(ctx, p.decisionTopic, []byte(d.Proposal.Pair), payload)
}

func (p *KafkaEventPublisher) PublishAlerts(ctx context.Context, summary *models.DriftScanSummary) error {
	if len(summary.Alerts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(summary.Alerts))
	for i, a := range summary.Alerts {
		msgs[i] = pkgkafka.Message{
			Key: []byte(a.EnvironmentSignature),
			Value: map[string]interface{}{
				"ts":           a.Timestamp.UnixMilli(),
				"signature":    a.EnvironmentSignature,
				"alert_type":   string(a.AlertType),
				"severity":     string(a.Severity),
				"message":      a.Message,
				"metric_value": a.MetricValue,
				"threshold":    a.Threshold,
				"drift_score":  summary.OverallDriftScore,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.alertTopic, msgs)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
