package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/allocation"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/drift"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/execution"
	pkgcache "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/cache"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/logger"
)

const (
	recentDecisionsInStatus = 20
	driftScanLockKey        = "drift_scan_lock"
	driftScanLockTTL        = time.Minute
)

// StatusService assembles the auditable orchestrator state for the
// dashboard and runs the periodic drift scan.
type StatusService struct {
	pipeline  *Pipeline
	allocator *allocation.Engine
	executor  *execution.Engine
	monitor   *drift.Monitor
	memory    *drift.MemoryStore
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	locker    pkgcache.Service // scan leader lock across replicas; nil when single-instance

	mu       sync.RWMutex
	lastScan *models.DriftScanSummary
}

// NewStatusService wires the status and drift-scan service.
func NewStatusService(
	pipeline *Pipeline,
	allocator *allocation.Engine,
	executor *execution.Engine,
	monitor *drift.Monitor,
	memory *drift.MemoryStore,
	publisher domrepo.EventPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	locker pkgcache.Service,
) *StatusService {
	return &StatusService{
		pipeline:  pipeline,
		allocator: allocator,
		executor:  executor,
		monitor:   monitor,
		memory:    memory,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		locker:    locker,
	}
}

// Status returns the current orchestrator snapshot.
func (s *StatusService) Status() models.StatusSnapshot {
	s.mu.RLock()
	scan := s.lastScan
	s.mu.RUnlock()

	return models.StatusSnapshot{
		Timestamp:       time.Now(),
		Regimes:         s.pipeline.Regimes(),
		Protection:      s.executor.ProtectionStatus(),
		Drift:           scan,
		RiskEngine:      s.allocator.State(),
		DecisionCount:   s.pipeline.DecisionCount(),
		RecentDecisions: s.pipeline.Decisions(recentDecisionsInStatus),
	}
}

// RunDriftScan executes one full edge-drift pass, publishes alerts, and
// retains the summary for the status endpoint.
func (s *StatusService) RunDriftScan(ctx context.Context) models.DriftScanSummary {
	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, driftScanLockKey, driftScanLockTTL)
		if err != nil {
			s.log.Warn("drift scan lock error", logger.Error(err))
		} else if !ok {
			s.log.Debug("drift scan held by another replica")
			return models.DriftScanSummary{ScannedAt: time.Now()}
		} else {
			defer func() { _ = s.locker.Unlock(ctx, driftScanLockKey) }()
		}
	}

	summary := s.monitor.Scan()

	s.mu.Lock()
	s.lastScan = &summary
	s.mu.Unlock()

	for _, a := range summary.Alerts {
		s.metrics.RecordDriftAlert(string(a.AlertType), string(a.Severity))
	}
	if s.publisher != nil && len(summary.Alerts) > 0 {
		if err := s.publisher.PublishAlerts(ctx, &summary); err != nil {
			s.metrics.RecordError("publish_alerts")
			s.log.Error("publish drift alerts", logger.Error(err))
		}
	}

	s.log.Info("drift scan complete",
		logger.Int("environments", summary.Environments),
		logger.Int("stable", summary.StableCount),
		logger.Int("drifting", summary.DriftingCount),
		logger.Int("reverting", summary.RevertingCount),
		logger.Int("critical_alerts", summary.CriticalAlerts),
		logger.Any("drift_score", summary.OverallDriftScore),
	)
	return summary
}

// StartDriftScheduler launches the periodic drift scan until ctx is
// cancelled.
func (s *StatusService) StartDriftScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunDriftScan(ctx)
			}
		}
	}()
}

// EdgeMemory returns the tracked environment entries.
func (s *StatusService) EdgeMemory() []models.EdgeMemoryEntry { return s.memory.Entries() }

// Reversions returns the retained reversion log.
func (s *StatusService) Reversions() []models.ReversionEntry { return s.memory.Reversions() }

// LastScan returns the most recent drift scan summary, if any.
func (s *StatusService) LastScan() *models.DriftScanSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastScan
}
