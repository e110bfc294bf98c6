package sink

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/pipeline-score/internal/metrics"
	"github.com/sells-group/pipeline-score/internal/resilience"
)

// Dispatcher fans a record out to every configured sink.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	policy  resilience.Policy
}

// DispatchOption configures a Dispatcher.
type DispatchOption func(*Dispatcher)

// WithTimeout bounds each sink's delivery, retries included.
func WithTimeout(d time.Duration) DispatchOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// WithRetryPolicy sets the retry policy applied to each delivery.
func WithRetryPolicy(p resilience.Policy) DispatchOption {
	return func(dp *Dispatcher) {
		dp.policy = p
	}
}

// NewDispatcher creates a dispatcher over sinks. Nil sinks are skipped.
func NewDispatcher(sinks []Sink, opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{
		timeout: 15 * time.Second,
		policy:  resilience.DefaultPolicy(),
	}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Sinks returns the names of the configured sinks.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.Name()
	}
	return names
}

// Dispatch delivers rec to all sinks concurrently and returns how many
// succeeded. Failures are logged and counted, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, rec Record) int {
	if len(d.sinks) == 0 {
		return 0
	}

	var delivered atomic.Int32
	var g errgroup.Group
	for _, s := range d.sinks {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			policy := d.policy
			if r, ok := s.(Retrier); ok {
				policy.Retryable = r.Retryable
			}
			_, err := resilience.Retry(sctx, policy, "sink "+s.Name(), func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.Deliver(ctx, rec)
			})
			metrics.SinkDeliveries.WithLabelValues(s.Name(), metrics.Outcome(err)).Inc()
			if err != nil {
				zap.L().Error("sink: delivery failed",
					zap.String("sink", s.Name()),
					zap.String("quiz_id", rec.QuizID),
					zap.Error(err),
				)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(delivered.Load())
	zap.L().Info("sink: dispatch complete",
		zap.String("quiz_id", rec.QuizID),
		zap.Int("delivered", n),
		zap.Int("sinks", len(d.sinks)),
	)
	return n
}
