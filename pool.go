package qecc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/errnie"
)

/*
Q is a fixed-size worker pool. Jobs go onto a queue, a manager goroutine
hands each one to the next idle worker, and results land in a ResultSpace
where Schedule's caller awaits them.
*/
type Q struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *ResultSpace
	metrics    *Metrics
	breakers   map[string]*CircuitBreaker
	breakersMu sync.RWMutex
	workerList []*Worker
	config     *Config
	closeOnce  sync.Once
}

// NewQ starts config.Workers workers. A nil config means NewConfig().
func NewQ(ctx context.Context, config *Config) *Q {
	if config == nil {
		config = NewConfig()
	}
	size := max(config.Workers, 1)

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:      ctx,
		cancel:   cancel,
		breakers: make(map[string]*CircuitBreaker),
		jobs:     make(chan Job, size*10),
		workers:  make(chan chan Job, size),
		space:    NewResultSpace(config.resultTTL()),
		metrics:  NewMetrics(),
		config:   config,
	}

	errnie.Info("NewQ - workers %d, scheduling timeout %v", size, config.schedulingTimeout())

	for i := 0; i < size; i++ {
		q.startWorker(i)
	}

	q.wg.Add(2)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()
	go func() {
		defer q.wg.Done()
		q.collectMetrics()
	}()

	return q
}

func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			select {
			case <-q.ctx.Done():
				return
			case workerChan := <-q.workers:
				select {
				case workerChan <- job:
				case <-q.ctx.Done():
					return
				}
			case <-time.After(q.config.schedulingTimeout()):
				log.Warn("no available workers, dropping job", "job", job.ID)
				q.metrics.recordSchedulingFailure()
				q.space.Store(job.ID, nil, fmt.Errorf("no available workers for job %s", job.ID), job.TTL)
			}
		}
	}
}

func (q *Q) collectMetrics() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.metrics.setQueue(len(q.jobs), len(q.workerList))
		}
	}
}

// Schedule queues fn under id and returns a channel carrying its Result.
func (q *Q) Schedule(id string, fn func() (any, error), opts ...JobOption) chan Result {
	ctx, cancel := context.WithTimeout(q.ctx, q.config.schedulingTimeout())
	defer cancel()

	job := Job{
		ID:        id,
		Fn:        fn,
		StartTime: time.Now(),
	}

	for _, opt := range opts {
		opt(&job)
	}

	if job.CircuitID != "" {
		if breaker := q.getCircuitBreaker(job); breaker != nil && !breaker.Allow() {
			return settled(Result{
				Error:     fmt.Errorf("circuit breaker %s is open: %w", job.CircuitID, ErrBreakerOpen),
				CreatedAt: time.Now(),
			})
		}
	}

	select {
	case q.jobs <- job:
		return q.space.Await(id)
	case <-ctx.Done():
		q.metrics.recordSchedulingFailure()
		return settled(Result{
			Error:     fmt.Errorf("job scheduling timeout: %w", ctx.Err()),
			CreatedAt: time.Now(),
		})
	}
}

// Forget drops the stored result of a job once its caller has read it.
func (q *Q) Forget(id string) {
	q.space.Delete(id)
}

func (q *Q) Metrics() *Metrics {
	return q.metrics
}

// AddBreaker registers a breaker that jobs can join with WithCircuitBreaker.
func (q *Q) AddBreaker(id string, breaker *CircuitBreaker) {
	q.breakersMu.Lock()
	defer q.breakersMu.Unlock()
	q.breakers[id] = breaker
}

func (q *Q) startWorker(id int) {
	worker := &Worker{
		id:   id,
		pool: q,
		jobs: make(chan Job),
	}
	q.workerList = append(q.workerList, worker)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		worker.run()
	}()
}

func (q *Q) breaker(id string) *CircuitBreaker {
	if id == "" {
		return nil
	}

	q.breakersMu.RLock()
	defer q.breakersMu.RUnlock()
	return q.breakers[id]
}

func (q *Q) getCircuitBreaker(job Job) *CircuitBreaker {
	q.breakersMu.Lock()
	defer q.breakersMu.Unlock()

	breaker, exists := q.breakers[job.CircuitID]
	if !exists && job.CircuitConfig != nil {
		breaker = NewCircuitBreaker(
			job.CircuitConfig.MaxFailures,
			job.CircuitConfig.ResetTimeout,
			job.CircuitConfig.HalfOpenMax,
		)
		q.breakers[job.CircuitID] = breaker
	}

	return breaker
}

// Close cancels every worker and waits for them to exit. Jobs still queued
// are abandoned.
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.closeOnce.Do(func() {
		q.cancel()
		q.wg.Wait()
		q.space.Close()
		errnie.Info("Q closed - %d jobs processed", q.metrics.JobCount)
	})
}

func settled(r Result) chan Result {
	ch := make(chan Result, 1)
	ch <- r
	close(ch)
	return ch
}
