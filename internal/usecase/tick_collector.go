package usecase

import (
	"context"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	mid "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/middleware"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/execution"
)

// SpreadObserver feeds validated ticks into the execution friction
// model and exposes the live spread to the dashboard.
type SpreadObserver struct {
	executor *execution.Engine
	metrics  domrepo.Metrics
}

// NewSpreadObserver creates the downstream tick processor.
func NewSpreadObserver(executor *execution.Engine, metrics domrepo.Metrics) *SpreadObserver {
	return &SpreadObserver{executor: executor, metrics: metrics}
}

// Process records one tick's spread observation.
func (o *SpreadObserver) Process(_ context.Context, t *models.Tick) error {
	pips := t.SpreadPips()
	o.executor.ObserveSpread(t.Pair, pips)
	o.metrics.RecordLastSpread(t.Pair, pips)
	return nil
}

var _ mid.TickProc = (*SpreadObserver)(nil)

// TickCollector collects quotes from the price stream and routes them
// through the tick pipeline.
type TickCollector struct {
	stream  domrepo.PriceStream
	metrics domrepo.Metrics
	pipe    *mid.TickPipeline
}

// NewTickCollector creates a new TickCollector instance.
func NewTickCollector(stream domrepo.PriceStream, metrics domrepo.Metrics, pipe *mid.TickPipeline) *TickCollector {
	return &TickCollector{stream: stream, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the price stream is connected.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.pipe.Start(ctx)
	tkCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tkCh, errCh)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, tkCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-tkCh:
			if t == nil {
				continue
			}
			_ = c.pipe.Process(ctx, t)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
