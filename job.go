package qecc

import "time"

// Job represents work to be done. Jobs run exactly once; evaluations are
// deterministic, so a failed one fails again.
type Job struct {
	ID            string
	Fn            func() (any, error)
	CircuitID     string
	CircuitConfig *CircuitBreakerConfig
	TTL           time.Duration
	StartTime     time.Time
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

// CircuitBreakerConfig struct
type CircuitBreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
	HalfOpenMax  int
}

// WithTTL configures how long a finished job's result is kept. Results
// nobody collects are dropped by the space's cleanup once it runs out.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}

// WithCircuitBreaker attaches the job to a named breaker, creating it on
// first use.
func WithCircuitBreaker(id string, maxFailures int, resetTimeout time.Duration) JobOption {
	return func(j *Job) {
		j.CircuitID = id
		j.CircuitConfig = &CircuitBreakerConfig{
			MaxFailures:  maxFailures,
			ResetTimeout: resetTimeout,
			HalfOpenMax:  1,
		}
	}
}
