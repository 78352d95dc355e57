package qecc

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Worker processes jobs
type Worker struct {
	id   int
	pool *Q
	jobs chan Job
}

func (w *Worker) run() {
	for {
		// Offer ourselves to the manager, then wait for the job it hands over.
		select {
		case <-w.pool.ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-w.pool.ctx.Done():
			return
		case job := <-w.jobs:
			result, err := w.processJob(job)
			w.pool.space.Store(job.ID, result, err, job.TTL)
		}
	}
}

func (w *Worker) processJob(job Job) (any, error) {
	if err := w.checkCircuitBreaker(job.CircuitID); err != nil {
		w.pool.metrics.recordJobExecution(job.StartTime, false)
		return nil, err
	}

	result, err := w.execute(job)

	w.pool.metrics.recordJobExecution(job.StartTime, err == nil)

	if err == nil {
		w.recordSuccess(job.CircuitID)
	}

	return result, err
}

// execute runs the job once and returns its result together with its
// error, so callers can still inspect partial output of a failed job.
func (w *Worker) execute(job Job) (any, error) {
	result, err := job.Fn()
	if err != nil {
		log.Debug("job failed", "job", job.ID, "worker", w.id, "err", err)
		w.recordFailure(job.CircuitID)
	}
	return result, err
}

func (w *Worker) checkCircuitBreaker(circuitID string) error {
	if breaker := w.pool.breaker(circuitID); breaker != nil && !breaker.Allow() {
		return fmt.Errorf("circuit breaker %s is open: %w", circuitID, ErrBreakerOpen)
	}
	return nil
}

func (w *Worker) recordSuccess(circuitID string) {
	if breaker := w.pool.breaker(circuitID); breaker != nil {
		breaker.RecordSuccess()
	}
}

func (w *Worker) recordFailure(circuitID string) {
	if breaker := w.pool.breaker(circuitID); breaker != nil {
		breaker.RecordFailure()
	}
}
