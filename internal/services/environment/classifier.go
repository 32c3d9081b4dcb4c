package environment

import (
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

// Input is the evaluation tuple the rule tables predicate over.
type Input struct {
	Pair           string
	Session        models.TradingSession
	Regime         models.RegimeLabel
	Direction      models.Direction
	CompositeScore float64 // governance composite, 0-1
	SpreadPips     float64
	AgentID        string
}

// Rule is one ordered rule-table entry. Order is load-bearing:
// classification uses first-match-wins, never probabilistic tie-break.
type Rule struct {
	Name  string
	Label string
	When  func(Input) bool
}

// Thresholds feed the rule predicates from global config.
type Thresholds struct {
	SpreadBlockPips      float64
	IgnitionMinComposite float64
}

// DefaultThresholds returns the production rule thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SpreadBlockPips:      2.5,
		IgnitionMinComposite: 0.70,
	}
}

// Classifier evaluates the edge-candidate and historically-destructive
// rule tables. Side-effect-free; safe to call with arbitrary frequency.
type Classifier struct {
	edge        []Rule
	destructive []Rule
}

// New builds a classifier with the production rule tables.
func New(th Thresholds) *Classifier {
	return &Classifier{
		edge:        edgeRules(th),
		destructive: destructiveRules(th),
	}
}

// NewWithRules builds a classifier from explicit rule lists, preserving
// their order. Used by tests and discovery tooling.
func NewWithRules(edge, destructive []Rule) *Classifier {
	return &Classifier{edge: edge, destructive: destructive}
}

// Classify returns the first-match labels from both tables.
func (c *Classifier) Classify(in Input) models.EnvironmentClassification {
	out := models.EnvironmentClassification{
		Pair:      in.Pair,
		Session:   in.Session,
		Regime:    in.Regime,
		Direction: in.Direction,
		AgentID:   in.AgentID,
	}
	for _, r := range c.edge {
		if r.When(in) {
			out.IsEdgeCandidate = true
			out.MatchedEdgeRule = r.Name
			out.EnvironmentLabel = r.Label
			break
		}
	}
	for _, r := range c.destructive {
		if r.When(in) {
			out.IsHistoricallyDestructive = true
			out.MatchedDestructiveRule = r.Name
			// A destructive match owns the environment label.
			out.EnvironmentLabel = r.Label
			break
		}
	}
	return out
}
