package models

import "fmt"

// EnvironmentClassification is the on-demand risk classification of a
// (pair, session, regime, direction, agent) tuple. It is recomputed per
// evaluation and never persisted as an entity.
type EnvironmentClassification struct {
	Pair      string
	Session   TradingSession
	Regime    RegimeLabel
	Direction Direction
	AgentID   string

	IsEdgeCandidate           bool
	IsHistoricallyDestructive bool
	EnvironmentLabel          string
	MatchedEdgeRule           string
	MatchedDestructiveRule    string
}

// Signature returns the environment key used for edge memory tracking.
func (c EnvironmentClassification) Signature() string {
	return EnvironmentSignature(c.Pair, c.Session, c.Regime, c.Direction, c.AgentID)
}

// EnvironmentSignature builds the canonical edge-signature key.
func EnvironmentSignature(pair string, session TradingSession, regime RegimeLabel, dir Direction, agentID string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", pair, session, regime, dir, agentID)
}
