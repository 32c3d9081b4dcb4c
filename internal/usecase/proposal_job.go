package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/queue"
)

// ProposalMessageType is the queue message type for trade proposals.
const ProposalMessageType = "trade.proposal"

// ProposalPayload is the queued form of a trade proposal.
type ProposalPayload struct {
	ID        string `json:"id"`
	Pair      string `json:"pair"`
	Intent    string `json:"intent"`
	AgentID   string `json:"agent_id"`
	Timeframe string `json:"timeframe"`
	CreatedAt int64  `json:"created_at"` // unix ms
}

// EvaluateProposalJob processes queued trade proposals through the
// evaluation pipeline. Agents enqueue proposals; the decision is
// journaled and published, not returned.
type EvaluateProposalJob struct {
	pipeline *Pipeline
}

// NewEvaluateProposalJob creates the proposal intake job.
func NewEvaluateProposalJob(pipeline *Pipeline) *EvaluateProposalJob {
	return &EvaluateProposalJob{pipeline: pipeline}
}

func (j *EvaluateProposalJob) Name() string { return "evaluate_proposal" }

func (j *EvaluateProposalJob) Type() string { return ProposalMessageType }

func (j *EvaluateProposalJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ProposalPayload](payload)
	if err != nil {
		return fmt.Errorf("parse proposal: %w", err)
	}
	if p.Pair == "" || p.AgentID == "" {
		return fmt.Errorf("proposal missing pair or agent_id")
	}

	createdAt := time.Now()
	if p.CreatedAt > 0 {
		createdAt = time.UnixMilli(p.CreatedAt).UTC()
	}
	proposal := models.TradeProposal{
		ID:        p.ID,
		Pair:      p.Pair,
		Intent:    models.Direction(p.Intent),
		AgentID:   p.AgentID,
		Timeframe: p.Timeframe,
		CreatedAt: createdAt,
	}
	if proposal.ID == "" {
		proposal.ID = fmt.Sprintf("%s-%s-%d", p.Pair, p.AgentID, createdAt.UnixNano())
	}

	_, err = j.pipeline.Evaluate(ctx, proposal)
	return err
}

var _ queue.Job = (*EvaluateProposalJob)(nil)
