package oanda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	drepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/cache"
)

func candlesPayload(n int) candlesResponse {
	var resp candlesResponse
	resp.Instrument = "EUR_USD"
	resp.Granularity = "M1"
	start := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		resp.Candles = append(resp.Candles, struct {
			Time     string  `json:"time"`
			Volume   float64 `json:"volume"`
			Complete bool    `json:"complete"`
			Mid      struct {
				O string `json:"o"`
				H string `json:"h"`
				L string `json:"l"`
				C string `json:"c"`
			} `json:"mid"`
		}{
			Time:     start.Add(time.Duration(i) * time.Minute).Format(time.RFC3339Nano),
			Volume:   100,
			Complete: true,
			Mid: struct {
				O string `json:"o"`
				H string `json:"h"`
				L string `json:"l"`
				C string `json:"c"`
			}{O: "1.0800", H: "1.0810", L: "1.0795", C: "1.0805"},
		})
	}
	return resp
}

func TestGetCandlesParsesResponse(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/v3/instruments/EUR_USD/candles" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.URL.Query().Get("granularity"); got != "M1" {
			t.Errorf("unexpected granularity %q", got)
		}
		json.NewEncoder(w).Encode(candlesPayload(3))
	}))
	defer srv.Close()

	src := NewCandles(srv.URL, "tok", time.Second, cache.NewTTLCache())
	bars, err := src.GetCandles(context.Background(), "EUR_USD", drepo.GranM1, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].Open != 1.0800 || bars[0].Close != 1.0805 {
		t.Fatalf("unexpected bar %+v", bars[0])
	}
	if !bars[0].Complete || bars[0].Pair != "EUR_USD" {
		t.Fatalf("unexpected bar metadata %+v", bars[0])
	}
}

func TestGetCandlesServesFromCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(candlesPayload(2))
	}))
	defer srv.Close()

	src := NewCandles(srv.URL, "tok", time.Second, cache.NewTTLCache())
	for i := 0; i < 3; i++ {
		if _, err := src.GetCandles(context.Background(), "EUR_USD", drepo.GranM1, 2); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("repeat windows must come from cache, got %d upstream calls", got)
	}
}

func TestGetCandlesEmptyResponseErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candlesResponse{})
	}))
	defer srv.Close()

	src := NewCandles(srv.URL, "tok", time.Second, nil)
	if _, err := src.GetCandles(context.Background(), "EUR_USD", drepo.GranM1, 10); err == nil {
		t.Fatalf("expected error on empty candle set")
	}
}

func TestToInstrument(t *testing.T) {
	if got := toInstrument("EURUSD"); got != "EUR_USD" {
		t.Fatalf("expected EUR_USD, got %s", got)
	}
	if got := toInstrument("EUR_USD"); got != "EUR_USD" {
		t.Fatalf("already-formatted pairs pass through, got %s", got)
	}
}
