package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerHook wraps message handling. BeforeHandle may rewrite the
// context, message, or payload; a non-nil error skips the handler and
// routes the message through error processing (OnError, DLQ, commit).
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error)
	AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
	OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
}

// NoopHook does nothing.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return ctx, km, data, nil
}

func (NoopHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
}

func (NoopHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
}

type hookStartKey struct{}

// LatencyHook reports per-message handling latency and handler errors
// through plain callbacks, so the consumer package stays free of any
// metrics dependency.
type LatencyHook struct {
	// OnLatency receives the topic and wall-clock handling duration.
	OnLatency func(topic string, elapsed time.Duration)
	// OnFailure receives the topic of a message whose handler errored.
	OnFailure func(topic string)
}

func (h LatencyHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return context.WithValue(ctx, hookStartKey{}, time.Now()), km, data, nil
}

func (h LatencyHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	if h.OnLatency != nil {
		if start, ok := ctx.Value(hookStartKey{}).(time.Time); ok {
			h.OnLatency(topic, time.Since(start))
		}
	}
	if err != nil && h.OnFailure != nil {
		h.OnFailure(topic)
	}
}

func (h LatencyHook) OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error) {
	if h.OnFailure != nil {
		h.OnFailure(topic)
	}
}
