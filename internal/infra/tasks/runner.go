// Package tasks runs best-effort side effects off the request path, such as
// favicon generation and audit writes. Failures are retried with backoff and
// logged; they are never surfaced to the request that queued them.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/infra/resilience"
)

// Runner executes submitted tasks on background goroutines. A bulkhead caps
// concurrency so a burst of slow tasks cannot exhaust the process.
type Runner struct {
	bulkhead *resilience.Bulkhead
	retryCfg resilience.Config
	metrics  *observability.Metrics
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner. maxConcurrency bounds in-flight tasks.
func NewRunner(maxConcurrency, maxRetries int, initialBackoff time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Runner {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		bulkhead: resilience.NewBulkhead(maxConcurrency),
		retryCfg: resilience.Config{
			MaxRetries:     maxRetries,
			InitialBackoff: initialBackoff,
		},
		metrics: metrics,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit queues fn for background execution. It returns immediately; the
// task runs with the runner's lifecycle context, not the caller's, so it
// survives the triggering request.
func (r *Runner) Submit(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if err := r.bulkhead.Acquire(r.ctx); err != nil {
			r.logger.Warn("task dropped, runner shutting down", zap.String("task", name))
			return
		}
		defer r.bulkhead.Release()

		start := time.Now()
		err := resilience.RetryWithBackoff(r.ctx, r.retryCfg, func() error {
			return fn(r.ctx)
		})
		if err != nil {
			r.metrics.IncrTaskRun(name, "failed")
			r.logger.Error("background task failed",
				zap.String("task", name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			return
		}

		r.metrics.IncrTaskRun(name, "ok")
		r.logger.Debug("background task completed",
			zap.String("task", name),
			zap.Duration("duration", time.Since(start)),
		)
	}()
}

// Shutdown stops accepting retries and waits for in-flight tasks up to the
// context deadline.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}
