package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: make(map[string]int)}
}

func (m *fakeMetrics) RecordEvaluation(string, string)  {}
func (m *fakeMetrics) RecordGateRejection(string)       {}
func (m *fakeMetrics) RecordDriftAlert(string, string)  {}
func (m *fakeMetrics) RecordLastSpread(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)    {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

type fakeProc struct {
	mu    sync.Mutex
	ticks []*models.Tick
	err   error
}

func (p *fakeProc) Process(_ context.Context, t *models.Tick) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.ticks = append(p.ticks, t)
	return nil
}

func (p *fakeProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ticks)
}

func validTick(pair string) *models.Tick {
	return &models.Tick{Pair: pair, Timestamp: time.Now().Unix(), Bid: 1.0800, Ask: 1.0801}
}

func TestProcessForwardsValidTick(t *testing.T) {
	proc := &fakeProc{}
	p := NewTickPipeline(proc, newFakeMetrics())
	if err := p.Process(context.Background(), validTick("EUR_USD")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 forwarded tick, got %d", proc.count())
	}
}

func TestProcessRejectsInvalidTicks(t *testing.T) {
	proc := &fakeProc{}
	m := newFakeMetrics()
	p := NewTickPipeline(proc, m)

	bad := []*models.Tick{
		nil,
		{Pair: "", Timestamp: 1, Bid: 1, Ask: 1.1},
		{Pair: "EUR_USD", Timestamp: 0, Bid: 1, Ask: 1.1},
		{Pair: "EUR_USD", Timestamp: 1, Bid: 1.1, Ask: 1.0}, // crossed
		{Pair: "EUR_USD", Timestamp: 1, Bid: 0, Ask: 1.0},
	}
	for _, tick := range bad {
		if err := p.Process(context.Background(), tick); err == nil {
			t.Fatalf("expected validation error for %+v", tick)
		}
	}
	if proc.count() != 0 {
		t.Fatalf("invalid ticks must not reach downstream, got %d", proc.count())
	}
	if m.errCount("pipeline_validate") != len(bad) {
		t.Fatalf("expected %d validation errors, got %d", len(bad), m.errCount("pipeline_validate"))
	}
}

func TestProcessThrottlesPerPair(t *testing.T) {
	proc := &fakeProc{}
	m := newFakeMetrics()
	p := NewTickPipeline(proc, m, WithMaxRPS(1))

	// Second tick on the same pair inside the 1s window drops silently;
	// a different pair has its own budget.
	if err := p.Process(context.Background(), validTick("EUR_USD")); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	if err := p.Process(context.Background(), validTick("EUR_USD")); err != nil {
		t.Fatalf("throttled tick must not error: %v", err)
	}
	if err := p.Process(context.Background(), validTick("GBP_USD")); err != nil {
		t.Fatalf("other pair: %v", err)
	}
	if proc.count() != 2 {
		t.Fatalf("expected 2 forwarded ticks, got %d", proc.count())
	}
	if m.errCount("pipeline_throttle") != 1 {
		t.Fatalf("expected 1 throttle drop, got %d", m.errCount("pipeline_throttle"))
	}
}

func TestProcessBuffersOnDownstreamError(t *testing.T) {
	proc := &fakeProc{err: errors.New("downstream down")}
	m := newFakeMetrics()
	p := NewTickPipeline(proc, m, WithBufferSize(8))

	if err := p.Process(context.Background(), validTick("EUR_USD")); err == nil {
		t.Fatalf("downstream error must surface")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("failed tick must be buffered, got %d", len(p.bufCh))
	}
	if m.errCount("pipeline_process") != 1 {
		t.Fatalf("expected process error recorded")
	}
}

func TestStartFlushesBuffer(t *testing.T) {
	proc := &fakeProc{err: errors.New("down")}
	p := NewTickPipeline(proc, newFakeMetrics(), WithBufferSize(8))

	_ = p.Process(context.Background(), validTick("EUR_USD"))

	// Downstream recovers before the flusher starts.
	proc.mu.Lock()
	proc.err = nil
	proc.mu.Unlock()

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered tick never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	p := NewTickPipeline(&fakeProc{}, newFakeMetrics(), WithMaxRPS(-5), WithBufferSize(0))
	if p.maxRPS != 20 || p.bufSize != 1000 {
		t.Fatalf("invalid options must keep defaults, got rps=%d buf=%d", p.maxRPS, p.bufSize)
	}
}
