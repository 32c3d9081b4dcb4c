package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/agents"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/allocation"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/drift"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/environment"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/execution"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/governance"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/regime"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/logger"
)

type fakeCandles struct {
	bars []models.Candle
	err  error
}

func (f *fakeCandles) GetCandles(_ context.Context, _ string, _ domrepo.Granularity, _ int) ([]models.Candle, error) {
	return f.bars, f.err
}

type fakeDirection struct {
	dir models.Direction
	err error
}

func (f *fakeDirection) Direction(context.Context, models.TradeProposal, models.MarketRegimeSnapshot) (models.Direction, error) {
	return f.dir, f.err
}

type fakeJournal struct {
	mu        sync.Mutex
	decisions []*models.PipelineDecision
	closed    []*models.ClosedTrade
	trades    []models.ClosedTrade
}

func (f *fakeJournal) Init(context.Context) error { return nil }

func (f *fakeJournal) AppendDecision(_ context.Context, d *models.PipelineDecision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, d)
	return nil
}

func (f *fakeJournal) AppendClosedTrade(_ context.Context, t *models.ClosedTrade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, t)
	return nil
}

func (f *fakeJournal) RecentTrades(context.Context, string, time.Time, int) ([]models.ClosedTrade, error) {
	return f.trades, nil
}

func (f *fakeJournal) Health(context.Context) error { return nil }
func (f *fakeJournal) Close() error                 { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordEvaluation(string, string)  {}
func (nopMetrics) RecordGateRejection(string)       {}
func (nopMetrics) RecordDriftAlert(string, string)  {}
func (nopMetrics) RecordError(string)               {}
func (nopMetrics) RecordLastSpread(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)    {}

// trendBars builds a clean linear climb wide enough that friction never
// dominates the expected move.
func trendBars(n int) []models.Candle {
	bars := make([]models.Candle, n)
	price := 1.0
	start := time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC)
	for i := range bars {
		open := price
		close := price + 0.0010
		bars[i] = models.Candle{
			Time:  start.Add(time.Duration(i) * time.Minute),
			Pair:  "EUR_USD",
			Open:  open,
			Close: close,
			High:  close + 0.0005,
			Low:   open - 0.0005,
		}
		price = close
	}
	return bars
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type pipelineFixture struct {
	pipeline  *Pipeline
	journal   *fakeJournal
	executor  *execution.Engine
	direction *fakeDirection
	candles   *fakeCandles
}

func newFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	candles := &fakeCandles{bars: trendBars(120)}
	direction := &fakeDirection{dir: models.DirectionLong}
	journal := &fakeJournal{}
	executor := execution.NewEngine(execution.Config{})
	p := NewPipeline(
		candles,
		direction,
		journal,
		nil,
		nopMetrics{},
		testLogger(t),
		regime.New(regime.Config{}),
		environment.New(environment.DefaultThresholds()),
		allocation.NewEngine(allocation.NewDiscoveryRiskConfig(), agents.NewRegistry(agents.DefaultProfiles())),
		governance.New(governance.Config{}),
		executor,
		drift.NewMemoryStore(),
	)
	return &pipelineFixture{pipeline: p, journal: journal, executor: executor, direction: direction, candles: candles}
}

func proposalAt(hour int) models.TradeProposal {
	return models.TradeProposal{
		ID:        "p-1",
		Pair:      "EUR_USD",
		Intent:    models.DirectionLong,
		AgentID:   "momentum_rider",
		Timeframe: "M1",
		CreatedAt: time.Date(2026, 3, 4, hour, 30, 0, 0, time.UTC),
	}
}

func TestEvaluateCleanProposalExecutes(t *testing.T) {
	fx := newFixture(t)
	d, err := fx.pipeline.Evaluate(context.Background(), proposalAt(9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Outcome != models.OutcomeExecute {
		t.Fatalf("expected EXECUTE, got %s at stage %s: %v", d.Outcome, d.Stage, d.Reasons)
	}
	if d.Stage != "complete" {
		t.Fatalf("unexpected stage %s", d.Stage)
	}
	if d.SizeMultiplier <= 0 {
		t.Fatalf("executed decision must carry positive size, got %.3f", d.SizeMultiplier)
	}
	if d.Governance == nil || d.Regime == nil || d.Allocation == nil || d.Safety == nil {
		t.Fatalf("executed decision must carry all layer sections: %+v", d)
	}
	if len(fx.journal.decisions) != 1 {
		t.Fatalf("decision must be journaled, got %d", len(fx.journal.decisions))
	}
}

func TestEvaluateRejectsAtGovernance(t *testing.T) {
	fx := newFixture(t)
	d, err := fx.pipeline.Evaluate(context.Background(), proposalAt(21)) // rollover
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Outcome != models.OutcomeRejected || d.Stage != "governance" {
		t.Fatalf("expected governance rejection, got %s/%s", d.Outcome, d.Stage)
	}
	if d.Governance.GateFailed != "rollover_session" {
		t.Fatalf("expected rollover gate, got %q", d.Governance.GateFailed)
	}
	if d.SizeMultiplier != 0 {
		t.Fatalf("rejected decision must carry zero size")
	}
}

func TestEvaluateRejectsNeutralDirection(t *testing.T) {
	fx := newFixture(t)
	fx.direction.dir = models.DirectionNeutral
	d, _ := fx.pipeline.Evaluate(context.Background(), proposalAt(9))
	if d.Outcome != models.OutcomeRejected || d.Stage != "direction" {
		t.Fatalf("expected direction rejection, got %s/%s", d.Outcome, d.Stage)
	}
}

func TestEvaluateSkipsOnDirectionError(t *testing.T) {
	fx := newFixture(t)
	fx.direction.err = errors.New("service down")
	d, _ := fx.pipeline.Evaluate(context.Background(), proposalAt(9))
	if d.Outcome != models.OutcomeSkipped || d.Stage != "direction" {
		t.Fatalf("provider failure must skip, got %s/%s", d.Outcome, d.Stage)
	}
}

func TestEvaluateSkipsOnCandleError(t *testing.T) {
	fx := newFixture(t)
	fx.candles.err = errors.New("feed down")
	fx.candles.bars = nil
	d, _ := fx.pipeline.Evaluate(context.Background(), proposalAt(9))
	if d.Outcome != models.OutcomeSkipped || d.Stage != "regime" {
		t.Fatalf("candle failure must skip at regime stage, got %s/%s", d.Outcome, d.Stage)
	}
}

func TestEvaluateKillSwitchBlocksEdgeBoost(t *testing.T) {
	fx := newFixture(t)
	// Trip the execution kill switch: heavy slippage, rejections,
	// negative expectancy across the telemetry window.
	for i := 0; i < 20; i++ {
		fx.executor.RecordExecution(models.ExecutionRecord{
			Pair:          "EUR_USD",
			SlippagePips:  2.0,
			FillLatencyMs: 900,
			SpreadRatio:   2.0,
			Rejected:      i%3 == 0,
			Expectancy:    -1.0,
		})
	}
	d, _ := fx.pipeline.Evaluate(context.Background(), proposalAt(9))
	if d.Outcome != models.OutcomeBlocked || d.Stage != "allocation" {
		t.Fatalf("kill switch must block before allocation, got %s/%s: %v", d.Outcome, d.Stage, d.Reasons)
	}
	if d.Allocation == nil || !d.Allocation.Blocked || d.Allocation.PositionSizeMultiplier != 0 {
		t.Fatalf("blocked decision must carry zero allocation, got %+v", d.Allocation)
	}
}

func TestEvaluateRetainsDecisionsAndRegimes(t *testing.T) {
	fx := newFixture(t)
	for i := 0; i < 3; i++ {
		fx.pipeline.Evaluate(context.Background(), proposalAt(9))
	}
	if fx.pipeline.DecisionCount() != 3 {
		t.Fatalf("expected 3 retained decisions, got %d", fx.pipeline.DecisionCount())
	}
	if got := fx.pipeline.Decisions(2); len(got) != 2 {
		t.Fatalf("expected 2 recent decisions, got %d", len(got))
	}
	regimes := fx.pipeline.Regimes()
	if _, ok := regimes["EUR_USD"]; !ok {
		t.Fatalf("regime snapshot must be retained per pair")
	}
}

func TestRecordClosedTradeFeedsMemoryAndJournal(t *testing.T) {
	fx := newFixture(t)
	trade := models.ClosedTrade{
		Pair:       "EUR_USD",
		AgentID:    "momentum_rider",
		Direction:  models.DirectionLong,
		Regime:     string(models.RegimeMomentum),
		Session:    models.SessionLondon,
		PipsGained: 1.5,
		ClosedAt:   time.Now(),
	}
	if err := fx.pipeline.RecordClosedTrade(context.Background(), trade); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.journal.closed) != 1 {
		t.Fatalf("closed trade must be journaled")
	}
	entries := fx.pipeline.edgeMemory.Entries()
	if len(entries) != 1 || entries[0].TradeCount != 1 {
		t.Fatalf("closed trade must reach edge memory, got %+v", entries)
	}
}

func TestTradeCloseHandlerParsesEvent(t *testing.T) {
	fx := newFixture(t)
	h := NewTradeCloseHandler("scalpgov.trades.closed", fx.pipeline, fx.executor, nopMetrics{})
	if h.Topic() != "scalpgov.trades.closed" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}

	closedAt := time.Date(2026, 3, 4, 9, 45, 0, 0, time.UTC)
	payload := []byte(`{
		"pair": "EUR_USD",
		"agent_id": "momentum_rider",
		"direction": "LONG",
		"regime": "momentum",
		"pips_gained": 2.1,
		"opened_at": ` + itoa(closedAt.Add(-10*time.Minute).UnixMilli()) + `,
		"closed_at": ` + itoa(closedAt.UnixMilli()) + `,
		"slippage_pips": 0.2,
		"fill_latency_ms": 80
	}`)
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fx.journal.closed) != 1 {
		t.Fatalf("close event must be journaled")
	}
	got := fx.journal.closed[0]
	if got.Pair != "EUR_USD" || got.PipsGained != 2.1 {
		t.Fatalf("unexpected trade %+v", got)
	}
	if !got.ClosedAt.Equal(closedAt) {
		t.Fatalf("millisecond timestamps must normalize to seconds, got %v", got.ClosedAt)
	}
	if got.Session != models.SessionLondon {
		t.Fatalf("session must derive from close time, got %s", got.Session)
	}
	if got.FillLatency != 80*time.Millisecond {
		t.Fatalf("unexpected latency %v", got.FillLatency)
	}
}

func TestTradeCloseHandlerRejectsMalformed(t *testing.T) {
	fx := newFixture(t)
	h := NewTradeCloseHandler("t", fx.pipeline, fx.executor, nopMetrics{})
	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
