package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	svcmetrics "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/metrics"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/allocation"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/drift"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/environment"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/execution"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/governance"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/indicators"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/regime"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/logger"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/util"
)

const (
	// DecisionLogCap bounds the in-memory decision ring backing the
	// dashboard and the status endpoint.
	DecisionLogCap = 2000

	evaluationBars   = 120
	recentTradeLimit = 50
	expectedMoveATR  = 1.5 // expected favorable move as a multiple of ATR(14)
)

// Pipeline runs the layered evaluation for each trade proposal:
// governance, direction resolution, risk allocation, then execution
// safety. Layers run strictly in order and no layer mutates another
// layer's output.
type Pipeline struct {
	candles   domrepo.CandleSource
	direction domrepo.DirectionProvider
	journal   domrepo.DecisionJournal
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger

	regimes    *regime.Classifier
	envs       *environment.Classifier
	allocator  *allocation.Engine
	governor   *governance.Engine
	executor   *execution.Engine
	edgeMemory *drift.MemoryStore

	lastRegimes *util.SyncMap[string, models.MarketRegimeSnapshot]
	decisions   *util.SyncRing[models.PipelineDecision]
}

// NewPipeline wires the evaluation layers. All collaborators are
// required except the publisher, which may be nil when the event bus is
// disabled.
func NewPipeline(
	candles domrepo.CandleSource,
	direction domrepo.DirectionProvider,
	journal domrepo.DecisionJournal,
	publisher domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	regimes *regime.Classifier,
	envs *environment.Classifier,
	allocator *allocation.Engine,
	governor *governance.Engine,
	executor *execution.Engine,
	edgeMemory *drift.MemoryStore,
) *Pipeline {
	return &Pipeline{
		candles:     candles,
		direction:   direction,
		journal:     journal,
		publisher:   publisher,
		metrics:     metrics,
		log:         log,
		regimes:     regimes,
		envs:        envs,
		allocator:   allocator,
		governor:    governor,
		executor:    executor,
		edgeMemory:  edgeMemory,
		lastRegimes: util.NewSyncMap[string, models.MarketRegimeSnapshot](),
		decisions:   util.NewSyncRing[models.PipelineDecision](DecisionLogCap),
	}
}

// Evaluate runs one proposal through all four layers and returns the
// journaled decision. A collaborator failure degrades to SKIPPED, never
// to a silent approval.
func (p *Pipeline) Evaluate(ctx context.Context, proposal models.TradeProposal) (*models.PipelineDecision, error) {
	start := time.Now()
	if proposal.CreatedAt.IsZero() {
		proposal.CreatedAt = start
	}
	session := proposal.Session()

	d := &models.PipelineDecision{
		Proposal:       proposal,
		Direction:      proposal.Intent,
		SizeMultiplier: 0,
		EvaluatedAt:    start,
	}

	bars, err := p.candles.GetCandles(ctx, proposal.Pair, domrepo.GranM1, evaluationBars)
	if err != nil {
		p.skip(d, "regime", fmt.Sprintf("candle source unavailable: %v", err))
		return p.finish(ctx, d, start), nil
	}
	snap, err := p.regimes.Classify(proposal.Pair, bars)
	if err != nil {
		p.skip(d, "regime", fmt.Sprintf("regime classification failed: %v", err))
		return p.finish(ctx, d, start), nil
	}
	p.lastRegimes.Store(proposal.Pair, snap)
	d.Regime = &snap

	expectedMove := p.expectedMovePips(proposal.Pair, bars)
	budget := p.executor.FrictionBudget(proposal.Pair)

	// L1: governance.
	recent := p.recentTrades(ctx, proposal.Pair)
	gov := p.governor.Evaluate(governance.Context{
		Proposal:         proposal,
		Regime:           snap,
		HigherTimeframes: p.higherTimeframes(ctx, proposal.Pair),
		RecentTrades:     recent,
		ExpectedMovePips: expectedMove,
		FrictionPips:     budget.Total(),
		SpreadStable:     budget.SpreadVol <= budget.MeanSpread,
	})
	d.Governance = &gov
	d.Reasons = append(d.Reasons, gov.Reasons...)
	if !gov.Approved() {
		d.Outcome = models.OutcomeRejected
		d.Stage = "governance"
		return p.finish(ctx, d, start), nil
	}

	// L2: direction resolution. The provider is advisory; it can refuse
	// a direction but never override a governance rejection.
	dir, err := p.direction.Direction(ctx, proposal, snap)
	if err != nil {
		p.skip(d, "direction", fmt.Sprintf("direction provider unavailable: %v", err))
		return p.finish(ctx, d, start), nil
	}
	if dir == models.DirectionNeutral {
		d.Outcome = models.OutcomeRejected
		d.Stage = "direction"
		d.Reasons = append(d.Reasons, "direction provider returned neutral")
		return p.finish(ctx, d, start), nil
	}
	d.Direction = dir

	// L3: risk allocation. The execution kill switch outranks every
	// allocation rule, including edge boost.
	protection := p.executor.ProtectionStatus()
	if protection.Level == models.ProtectionCritical {
		d.Outcome = models.OutcomeBlocked
		d.Stage = "allocation"
		d.Reasons = append(d.Reasons, "execution protection kill switch active")
		d.Allocation = &models.RiskAllocation{
			Blocked:                true,
			PositionSizeMultiplier: 0,
			Label:                  models.RiskBlocked,
			Reason:                 "execution protection kill switch active",
		}
		return p.finish(ctx, d, start), nil
	}

	cls := p.envs.Classify(environment.Input{
		Pair:           proposal.Pair,
		Session:        session,
		Regime:         snap.Label,
		Direction:      dir,
		CompositeScore: gov.Composite,
		SpreadPips:     budget.MeanSpread,
		AgentID:        proposal.AgentID,
	})
	d.Environment = &cls

	alloc := p.allocator.Allocate(cls)
	d.Allocation = &alloc
	if alloc.Blocked {
		d.Outcome = models.OutcomeBlocked
		d.Stage = "allocation"
		d.Reasons = append(d.Reasons, alloc.Reason)
		return p.finish(ctx, d, start), nil
	}

	// L4: execution safety.
	gate := p.executor.RunPreTradeGate(proposal.Pair, expectedMove, snap, session)
	d.Safety = &gate
	d.Reasons = append(d.Reasons, gate.Reasons...)
	if gate.Result == models.GateReject {
		d.Outcome = models.OutcomeRejected
		d.Stage = "execution_safety"
		return p.finish(ctx, d, start), nil
	}

	size := alloc.PositionSizeMultiplier * protection.DensityMultiplier
	if gate.Result == models.GateThrottle {
		size *= 0.5
	}
	if gov.Decision == models.GovernanceThrottled {
		size *= gov.Composite
	}

	d.Outcome = models.OutcomeExecute
	d.Stage = "complete"
	d.SizeMultiplier = size
	return p.finish(ctx, d, start), nil
}

// RecordClosedTrade feeds a realized outcome back into edge memory and
// the journal.
func (p *Pipeline) RecordClosedTrade(ctx context.Context, t models.ClosedTrade) error {
	p.edgeMemory.RecordTrade(t)
	if err := p.journal.AppendClosedTrade(ctx, &t); err != nil {
		p.metrics.RecordError("journal_closed_trade")
		return fmt.Errorf("journal closed trade: %w", err)
	}
	return nil
}

// Regimes returns the most recent regime snapshot per pair.
func (p *Pipeline) Regimes() map[string]models.MarketRegimeSnapshot {
	return p.lastRegimes.Snapshot()
}

// Decisions returns up to n retained decisions, newest last.
func (p *Pipeline) Decisions(n int) []models.PipelineDecision {
	items := p.decisions.Items()
	if n > 0 && len(items) > n {
		items = items[len(items)-n:]
	}
	return items
}

// DecisionCount returns how many decisions the ring currently retains.
func (p *Pipeline) DecisionCount() int { return p.decisions.Len() }

func (p *Pipeline) skip(d *models.PipelineDecision, stage, reason string) {
	d.Outcome = models.OutcomeSkipped
	d.Stage = stage
	d.Reasons = append(d.Reasons, reason)
}

func (p *Pipeline) finish(ctx context.Context, d *models.PipelineDecision, start time.Time) *models.PipelineDecision {
	d.Elapsed = time.Since(start)
	p.decisions.Append(*d)
	p.metrics.RecordEvaluation(d.Proposal.Pair, string(d.Outcome))
	p.metrics.RecordLatency("evaluate", d.Elapsed.Seconds())
	if d.Safety != nil && d.Safety.Result == models.GateReject {
		p.metrics.RecordGateRejection("friction")
	}
	if d.Governance != nil && d.Governance.GateFailed != "" {
		p.metrics.RecordGateRejection(d.Governance.GateFailed)
	}
	if d.Governance != nil {
		svcmetrics.GovernanceComposite.WithLabelValues(d.Proposal.Pair).Observe(d.Governance.Composite)
	}

	if err := p.journal.AppendDecision(ctx, d); err != nil {
		p.metrics.RecordError("journal_decision")
		p.log.Error("journal decision", logger.Error(err), logger.String("pair", d.Proposal.Pair))
	}
	if p.publisher != nil {
		if err := p.publisher.PublishDecision(ctx, d); err != nil {
			p.metrics.RecordError("publish_decision")
			p.log.Error("publish decision", logger.Error(err), logger.String("pair", d.Proposal.Pair))
		}
	}

	p.log.Info("proposal evaluated",
		logger.String("pair", d.Proposal.Pair),
		logger.String("agent", d.Proposal.AgentID),
		logger.String("outcome", string(d.Outcome)),
		logger.String("stage", d.Stage),
		logger.Any("size_multiplier", d.SizeMultiplier),
		logger.Duration("elapsed", d.Elapsed),
	)
	return d
}

// higherTimeframes classifies M15 and H1 windows for multi-timeframe
// consensus. Best effort: a missing window is omitted rather than
// failing the evaluation.
func (p *Pipeline) higherTimeframes(ctx context.Context, pair string) []models.MarketRegimeSnapshot {
	var out []models.MarketRegimeSnapshot
	for _, g := range []domrepo.Granularity{domrepo.GranM15, domrepo.GranH1} {
		bars, err := p.candles.GetCandles(ctx, pair, g, evaluationBars)
		if err != nil {
			continue
		}
		snap, err := p.regimes.Classify(pair, bars)
		if err != nil {
			continue
		}
		out = append(out, snap)
	}
	return out
}

func (p *Pipeline) recentTrades(ctx context.Context, pair string) []models.ClosedTrade {
	since := time.Now().Add(-24 * time.Hour)
	trades, err := p.journal.RecentTrades(ctx, pair, since, recentTradeLimit)
	if err != nil {
		p.metrics.RecordError("recent_trades")
		p.log.Warn("recent trades lookup failed", logger.Error(err), logger.String("pair", pair))
		return nil
	}
	return trades
}

// expectedMovePips estimates the favorable move available to a scalp
// from current volatility.
func (p *Pipeline) expectedMovePips(pair string, bars []models.Candle) float64 {
	atr := indicators.ATRSeries(bars, 14)
	if len(atr) == 0 {
		return 0
	}
	pip := models.PipSize(pair)
	if pip <= 0 {
		return 0
	}
	return atr[len(atr)-1] / pip * expectedMoveATR
}
