package quantlabs

import (
	"context"
	"fmt"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	drepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	xhttp "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/http"
)

// DirectionService resolves trade direction via the external signal
// engine's HTTP API. The engine is advisory: it can refuse a direction
// but governance decisions always take precedence upstream.
type DirectionService struct {
	baseURL string
	client  *xhttp.Client
	retries int
}

// NewDirectionService builds the HTTP direction provider.
func NewDirectionService(baseURL string, timeout time.Duration, retries int) drepo.DirectionProvider {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if retries <= 0 {
		retries = 2
	}
	return &DirectionService{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		retries: retries,
	}
}

type directionRequest struct {
	Pair              string  `json:"pair"`
	Intent            string  `json:"intent"`
	AgentID           string  `json:"agent_id"`
	Regime            string  `json:"regime"`
	RegimeFamily      string  `json:"regime_family"`
	DominantDirection string  `json:"dominant_direction"`
	Persistence       float64 `json:"persistence"`
	RegimeConfirmed   bool    `json:"regime_confirmed"`
}

type directionResponse struct {
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
}

// Direction asks the signal engine for a resolved direction.
func (s *DirectionService) Direction(ctx context.Context, proposal models.TradeProposal, regime models.MarketRegimeSnapshot) (models.Direction, error) {
	if s.baseURL == "" {
		// no external engine configured: trust the agent's intent when
		// it agrees with the measured dominant direction
		if proposal.Intent == regime.DominantDirection {
			return proposal.Intent, nil
		}
		return models.DirectionNeutral, nil
	}

	payload := directionRequest{
		Pair:              proposal.Pair,
		Intent:            string(proposal.Intent),
		AgentID:           proposal.AgentID,
		Regime:            string(regime.Label),
		RegimeFamily:      string(regime.FamilyLabel),
		DominantDirection: string(regime.DominantDirection),
		Persistence:       regime.DirectionalPersistence,
		RegimeConfirmed:   regime.RegimeConfirmed,
	}

	var resp directionResponse
	var err error
	for i := 1; i <= s.retries; i++ {
		err = s.post(ctx, payload, &resp)
		if err == nil {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return models.DirectionNeutral, ctx.Err()
		}
	}
	if err != nil {
		return models.DirectionNeutral, fmt.Errorf("direction service: %w", err)
	}

	switch models.Direction(resp.Direction) {
	case models.DirectionLong:
		return models.DirectionLong, nil
	case models.DirectionShort:
		return models.DirectionShort, nil
	default:
		return models.DirectionNeutral, nil
	}
}

func (s *DirectionService) post(ctx context.Context, payload, dest interface{}) error {
	return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.baseURL + "/api/v1/direction",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}, dest)
}
