package drift

import (
	"math"
	"sync"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/util"
)

// expectancyTail bounds the per-environment expectancy history.
const expectancyTail = 50

// ReversionLogCap bounds the reversion audit log.
const ReversionLogCap = 100

// MemoryStore owns the per-environment-signature statistics and the
// reversion log. All access is serialized: two concurrent reversion or
// update operations racing would lose state.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]*models.EdgeMemoryEntry
	reversions *util.Ring[models.ReversionEntry]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]*models.EdgeMemoryEntry),
		reversions: util.NewRing[models.ReversionEntry](ReversionLogCap),
	}
}

// RecordTrade folds a closed trade into the environment's entry,
// creating it on first sight. Entries only grow; the expectancy history
// keeps a bounded tail.
func (s *MemoryStore) RecordTrade(t models.ClosedTrade) {
	sig := models.EnvironmentSignature(t.Pair, t.Session, models.RegimeLabel(t.Regime), t.Direction, t.AgentID)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sig]
	if !ok {
		entry = &models.EdgeMemoryEntry{
			Signature:       sig,
			SessionsCovered: make(map[models.TradingSession]int),
			LearningState:   models.LearningStable,
			EdgeConfidence:  0.5,
		}
		s.entries[sig] = entry
	}

	entry.TradeCount++
	entry.ExpectancyHistory = append(entry.ExpectancyHistory, t.PipsGained)
	if len(entry.ExpectancyHistory) > expectancyTail {
		entry.ExpectancyHistory = entry.ExpectancyHistory[len(entry.ExpectancyHistory)-expectancyTail:]
	}
	entry.SessionsCovered[t.Session]++
	entry.LastTradeAt = t.ClosedAt

	entry.CurrentEquity += t.PipsGained
	if entry.CurrentEquity > entry.PeakEquity {
		entry.PeakEquity = entry.CurrentEquity
	}
	if dd := entry.PeakEquity - entry.CurrentEquity; dd > entry.MaxDrawdown {
		entry.MaxDrawdown = dd
	}

	// Confidence drifts toward the win evidence, bounded [0.05, 0.95].
	if t.PipsGained > 0 {
		entry.EdgeConfidence = math.Min(0.95, entry.EdgeConfidence+0.02)
	} else {
		entry.EdgeConfidence = math.Max(0.05, entry.EdgeConfidence-0.03)
	}
}

// Entry returns a copy of the entry for a signature.
func (s *MemoryStore) Entry(sig string) (models.EdgeMemoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[sig]
	if !ok {
		return models.EdgeMemoryEntry{}, false
	}
	return copyEntry(e), true
}

// Entries returns copies of all tracked entries.
func (s *MemoryStore) Entries() []models.EdgeMemoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EdgeMemoryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, copyEntry(e))
	}
	return out
}

// TriggerReversion resets an environment's confidence to baseline and
// records the action in the bounded reversion log.
func (s *MemoryStore) TriggerReversion(sig string, priorAllocation, baselineAllocation float64, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sig]
	if !ok {
		return
	}
	prior := entry.EdgeConfidence
	entry.EdgeConfidence = 0.5
	entry.LearningState = models.LearningReverting

	s.reversions.Append(models.ReversionEntry{
		EnvironmentSignature: sig,
		PriorConfidence:      prior,
		NewConfidence:        entry.EdgeConfidence,
		PriorAllocation:      priorAllocation,
		BaselineAllocation:   baselineAllocation,
		Reason:               reason,
		Timestamp:            time.Now(),
	})
}

// SetLearningState updates an entry's lifecycle state.
func (s *MemoryStore) SetLearningState(sig string, state models.LearningState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[sig]; ok {
		entry.LearningState = state
	}
}

// Reversions returns the retained reversion log, oldest first.
func (s *MemoryStore) Reversions() []models.ReversionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reversions.Items()
}

func copyEntry(e *models.EdgeMemoryEntry) models.EdgeMemoryEntry {
	cp := *e
	cp.ExpectancyHistory = append([]float64(nil), e.ExpectancyHistory...)
	cp.SessionsCovered = make(map[models.TradingSession]int, len(e.SessionsCovered))
	for k, v := range e.SessionsCovered {
		cp.SessionsCovered[k] = v
	}
	return cp
}
