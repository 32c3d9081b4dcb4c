package allocation

import (
	"math"
	"sync"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/util"
)

// DecisionLogCap bounds the in-memory allocation decision log.
const DecisionLogCap = 2000

// Engine turns an environment classification into a blocking decision
// and position-size multiplier. Precedence is fixed:
// kill-switch > destructive-block > edge-boost > default-reduction.
type Engine struct {
	cfg      *DiscoveryRiskConfig
	registry domrepo.AgentRegistry

	mu  sync.Mutex
	log *util.Ring[models.AllocationDecision]
}

// NewEngine creates the allocation engine.
func NewEngine(cfg *DiscoveryRiskConfig, registry domrepo.AgentRegistry) *Engine {
	return &Engine{
		cfg:      cfg,
		registry: registry,
		log:      util.NewRing[models.AllocationDecision](DecisionLogCap),
	}
}

// Allocate computes the risk allocation for a classified environment.
// Every call is appended to the bounded decision log.
func (e *Engine) Allocate(cls models.EnvironmentClassification) models.RiskAllocation {
	alloc := e.decide(cls)
	e.mu.Lock()
	e.log.Append(models.AllocationDecision{
		Timestamp:      time.Now(),
		Signature:      cls.Signature(),
		AgentID:        cls.AgentID,
		Allocation:     alloc,
		Classification: cls,
	})
	e.mu.Unlock()
	return alloc
}

func (e *Engine) decide(cls models.EnvironmentClassification) models.RiskAllocation {
	// Kill switch has absolute precedence over every rule.
	if !e.cfg.Enabled() {
		return models.RiskAllocation{
			Blocked:                false,
			PositionSizeMultiplier: 1.0,
			Label:                  models.RiskNormal,
			Reason:                 "discovery risk engine disabled",
		}
	}

	if cls.IsHistoricallyDestructive {
		return models.RiskAllocation{
			Blocked:                true,
			PositionSizeMultiplier: 0,
			Label:                  models.RiskBlocked,
			Reason:                 "destructive environment: " + cls.MatchedDestructiveRule,
		}
	}

	if cls.IsEdgeCandidate {
		return models.RiskAllocation{
			Blocked:                false,
			PositionSizeMultiplier: e.cfg.EdgeBoostMultiplier() * e.agentWeight(cls.AgentID),
			Label:                  models.RiskEdgeBoost,
			Reason:                 "edge candidate: " + cls.MatchedEdgeRule,
		}
	}

	// Unclassified environments size down by default.
	return models.RiskAllocation{
		Blocked:                false,
		PositionSizeMultiplier: e.cfg.BaselineReductionMultiplier(),
		Label:                  models.RiskReduced,
		Reason:                 "unclassified environment, baseline reduction",
	}
}

// agentWeight scales the boost by the agent's capital priority. Unknown
// agents carry neutral weight.
func (e *Engine) agentWeight(agentID string) float64 {
	if e.registry == nil {
		return 1.0
	}
	profile, ok := e.registry.Lookup(agentID)
	if !ok {
		return 1.0
	}
	// 0.85-1.15 band centered on a 0.5 coordination score.
	w := 0.85 + 0.30*profile.CoordinationScore
	return math.Min(1.15, math.Max(0.85, w))
}

// Decisions returns up to n most recent allocation decisions.
func (e *Engine) Decisions(n int) []models.AllocationDecision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Last(n)
}

// DecisionCount returns the number of retained decisions.
func (e *Engine) DecisionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Len()
}

// State returns the readable config view for the status snapshot.
func (e *Engine) State() models.DiscoveryRiskState {
	return models.DiscoveryRiskState{
		Enabled:                     e.cfg.Enabled(),
		EdgeBoostMultiplier:         e.cfg.EdgeBoostMultiplier(),
		BaselineReductionMultiplier: e.cfg.BaselineReductionMultiplier(),
		SpreadBlockThreshold:        e.cfg.SpreadBlockThreshold(),
		IgnitionMinComposite:        e.cfg.IgnitionMinComposite(),
	}
}

// Config exposes the underlying tunables for the config API.
func (e *Engine) Config() *DiscoveryRiskConfig { return e.cfg }
