package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/allocation"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/drift"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/execution"
	pkgcache "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/cache"
)

type capturePublisher struct {
	mu        sync.Mutex
	summaries []*models.DriftScanSummary
}

func (p *capturePublisher) PublishDecision(context.Context, *models.PipelineDecision) error {
	return nil
}

func (p *capturePublisher) PublishAlerts(_ context.Context, s *models.DriftScanSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, s)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newStatusFixture(t *testing.T, publisher *capturePublisher, locker pkgcache.Service) (*StatusService, *drift.MemoryStore) {
	t.Helper()
	fx := newFixture(t)
	memory := drift.NewMemoryStore()
	monitor := drift.NewMonitor(drift.Config{}, memory)
	var pub domrepo.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	svc := NewStatusService(
		fx.pipeline,
		allocation.NewEngine(allocation.NewDiscoveryRiskConfig(), nil),
		execution.NewEngine(execution.Config{}),
		monitor,
		memory,
		pub,
		nopMetrics{},
		testLogger(t),
		locker,
	)
	return svc, memory
}

func decayingTrades(memory *drift.MemoryStore) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	n := 0
	add := func(pips float64) {
		memory.RecordTrade(models.ClosedTrade{
			Pair:       "EUR_USD",
			AgentID:    "momentum_rider",
			Direction:  models.DirectionLong,
			Regime:     string(models.RegimeMomentum),
			Session:    models.SessionLondon,
			PipsGained: pips,
			ClosedAt:   base.Add(time.Duration(n) * 5 * time.Minute),
		})
		n++
	}
	for i := 0; i < 10; i++ {
		add(2.0)
	}
	for i := 0; i < 20; i++ {
		add(-2.0)
	}
}

func TestStatusSnapshotShape(t *testing.T) {
	svc, _ := newStatusFixture(t, nil, nil)
	snap := svc.Status()
	if snap.Timestamp.IsZero() {
		t.Fatalf("snapshot must be timestamped")
	}
	if !snap.RiskEngine.Enabled {
		t.Fatalf("default risk engine state must be enabled")
	}
	if snap.DecisionCount != 0 || len(snap.RecentDecisions) != 0 {
		t.Fatalf("fresh service must have no decisions: %+v", snap)
	}
}

func TestRunDriftScanPublishesAndRetains(t *testing.T) {
	pub := &capturePublisher{}
	svc, memory := newStatusFixture(t, pub, nil)
	decayingTrades(memory)

	summary := svc.RunDriftScan(context.Background())
	if summary.RevertingCount != 1 {
		t.Fatalf("expected reversion, got %+v", summary)
	}
	if svc.LastScan() == nil || svc.LastScan().RevertingCount != 1 {
		t.Fatalf("scan summary must be retained")
	}
	if len(pub.summaries) != 1 {
		t.Fatalf("alerts must be published once, got %d", len(pub.summaries))
	}
	if len(svc.EdgeMemory()) != 1 {
		t.Fatalf("edge memory must be visible through the service")
	}
	if len(svc.Reversions()) != 1 {
		t.Fatalf("reversion log must be visible through the service")
	}
}

func TestRunDriftScanSkipsWhenLockHeld(t *testing.T) {
	locker := pkgcache.NewMemoryCache()
	held, err := locker.TryLock(context.Background(), "drift_scan_lock", time.Minute)
	if err != nil || !held {
		t.Fatalf("precondition lock failed: %v", err)
	}

	svc, memory := newStatusFixture(t, nil, locker)
	decayingTrades(memory)

	summary := svc.RunDriftScan(context.Background())
	if summary.Environments != 0 || summary.RevertingCount != 0 {
		t.Fatalf("scan must be skipped while another replica holds the lock, got %+v", summary)
	}
	if svc.LastScan() != nil {
		t.Fatalf("skipped scan must not retain a summary")
	}
}

func TestRunDriftScanAcquiresAndReleasesLock(t *testing.T) {
	locker := pkgcache.NewMemoryCache()
	svc, memory := newStatusFixture(t, nil, locker)
	decayingTrades(memory)

	if summary := svc.RunDriftScan(context.Background()); summary.Environments != 1 {
		t.Fatalf("scan must run with a free lock, got %+v", summary)
	}
	// The lock must be released afterwards so the next cycle can run.
	held, err := locker.TryLock(context.Background(), "drift_scan_lock", time.Minute)
	if err != nil || !held {
		t.Fatalf("lock must be free after the scan, held=%v err=%v", held, err)
	}
}
