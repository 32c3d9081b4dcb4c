package agents

import (
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	drepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
)

// Registry is the static agent weighting table. Profiles are fixed per
// process; capital priority comes from the coordination score.
type Registry struct {
	profiles map[string]models.AgentProfile
	order    []string
}

// NewRegistry builds a registry from explicit profiles. Unknown agents
// resolve to nothing; callers fall back to neutral weighting.
func NewRegistry(profiles []models.AgentProfile) drepo.AgentRegistry {
	r := &Registry{profiles: make(map[string]models.AgentProfile, len(profiles))}
	for _, p := range profiles {
		if p.ID == "" {
			continue
		}
		if _, dup := r.profiles[p.ID]; dup {
			continue
		}
		r.profiles[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

// DefaultProfiles returns the production agent table.
func DefaultProfiles() []models.AgentProfile {
	return []models.AgentProfile{
		{ID: "momentum_rider", Name: "Momentum Rider", BaseWinRate: 0.54, BaseSharpe: 1.4, CoordinationScore: 0.80},
		{ID: "breakout_hunter", Name: "Breakout Hunter", BaseWinRate: 0.47, BaseSharpe: 1.1, CoordinationScore: 0.65},
		{ID: "mean_reverter", Name: "Mean Reverter", BaseWinRate: 0.58, BaseSharpe: 1.2, CoordinationScore: 0.55},
		{ID: "session_opener", Name: "Session Opener", BaseWinRate: 0.51, BaseSharpe: 0.9, CoordinationScore: 0.45},
	}
}

// Lookup resolves an agent id.
func (r *Registry) Lookup(agentID string) (models.AgentProfile, bool) {
	p, ok := r.profiles[agentID]
	return p, ok
}

// All returns the registered profiles in registration order.
func (r *Registry) All() []models.AgentProfile {
	out := make([]models.AgentProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}
