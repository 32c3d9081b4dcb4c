package quantlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

func TestDirectionFallbackWithoutService(t *testing.T) {
	svc := NewDirectionService("", 0, 0)
	proposal := models.TradeProposal{Pair: "EUR_USD", Intent: models.DirectionLong}

	agree := models.MarketRegimeSnapshot{DominantDirection: models.DirectionLong}
	if dir, err := svc.Direction(context.Background(), proposal, agree); err != nil || dir != models.DirectionLong {
		t.Fatalf("aligned intent must pass through, got %s %v", dir, err)
	}

	disagree := models.MarketRegimeSnapshot{DominantDirection: models.DirectionShort}
	if dir, err := svc.Direction(context.Background(), proposal, disagree); err != nil || dir != models.DirectionNeutral {
		t.Fatalf("conflicting intent must fall back to neutral, got %s %v", dir, err)
	}
}

func TestDirectionParsesServiceResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/direction" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req directionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Pair != "EUR_USD" || req.Intent != "LONG" {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(directionResponse{Direction: "SHORT", Confidence: 0.8})
	}))
	defer srv.Close()

	svc := NewDirectionService(srv.URL, time.Second, 1)
	dir, err := svc.Direction(context.Background(),
		models.TradeProposal{Pair: "EUR_USD", Intent: models.DirectionLong, AgentID: "momentum_rider"},
		models.MarketRegimeSnapshot{Label: models.RegimeMomentum, DominantDirection: models.DirectionLong})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != models.DirectionShort {
		t.Fatalf("expected SHORT, got %s", dir)
	}
}

func TestDirectionUnknownValueIsNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(directionResponse{Direction: "SIDEWAYS"})
	}))
	defer srv.Close()

	svc := NewDirectionService(srv.URL, time.Second, 1)
	dir, err := svc.Direction(context.Background(), models.TradeProposal{}, models.MarketRegimeSnapshot{})
	if err != nil || dir != models.DirectionNeutral {
		t.Fatalf("unknown direction must map to neutral, got %s %v", dir, err)
	}
}

func TestDirectionRetriesThenFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewDirectionService(srv.URL, time.Second, 3)
	dir, err := svc.Direction(context.Background(), models.TradeProposal{}, models.MarketRegimeSnapshot{})
	if err == nil {
		t.Fatalf("expected error after retries")
	}
	if dir != models.DirectionNeutral {
		t.Fatalf("failure must resolve neutral, got %s", dir)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}
