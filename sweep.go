package qecc

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Outcome is the result of one scenario inside a sweep.
type Outcome struct {
	Scenario Scenario
	Verdict  Verdict
	Err      error
	Class    ErrorClass
}

// Label names the outcome the way metrics count it.
func (o Outcome) Label() string {
	switch {
	case o.Err == nil && o.Verdict.Passed:
		return OutcomePassed
	case o.Err == nil:
		return OutcomeFailed
	case o.Class.Fatal():
		return OutcomeFatal
	case o.Class == ClassInvalidInput:
		return OutcomeInvalid
	default:
		return OutcomeSkipped
	}
}

// Report aggregates a sweep. Outcomes keep the order of the scenarios
// passed to Run.
type Report struct {
	Total    int
	Passed   int
	Failed   int
	Fatal    int
	Invalid  int
	Skipped  int
	Outcomes []Outcome
	Elapsed  time.Duration
}

func (r *Report) add(o Outcome) {
	r.Total++
	r.Outcomes = append(r.Outcomes, o)

	switch o.Label() {
	case OutcomePassed:
		r.Passed++
	case OutcomeFailed:
		r.Failed++
	case OutcomeFatal:
		r.Fatal++
	case OutcomeInvalid:
		r.Invalid++
	default:
		r.Skipped++
	}
}

// OK is true when every scenario passed.
func (r Report) OK() bool {
	return r.Total == r.Passed
}

// Failures returns every outcome that did not pass.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Label() != OutcomePassed {
			out = append(out, o)
		}
	}
	return out
}

// EvaluateFunc evaluates a single scenario.
type EvaluateFunc func(Scenario) (Verdict, error)

/*
Sweeper fans scenarios out over a worker pool. Every scenario is evaluated
independently; mismatches and fatal errors are recorded and the sweep keeps
going, unless Config.FatalBreaker is set and that many fatal evaluations
have been seen, in which case the remaining scenarios are skipped.
*/
type Sweeper struct {
	config   *Config
	pool     *Q
	evaluate EvaluateFunc
	runs     atomic.Uint64
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithEvaluator evaluates scenarios with e instead of a default Shor
// evaluator.
func WithEvaluator(e *Evaluator) SweeperOption {
	return func(s *Sweeper) {
		s.evaluate = func(sc Scenario) (Verdict, error) {
			return e.Evaluate(sc.Input, sc.Errors)
		}
	}
}

// WithEvaluateFunc replaces evaluation entirely.
func WithEvaluateFunc(fn EvaluateFunc) SweeperOption {
	return func(s *Sweeper) {
		s.evaluate = fn
	}
}

// NewSweeper starts the pool backing the sweeps. A nil config means
// NewConfig(). Close the Sweeper when done.
func NewSweeper(ctx context.Context, config *Config, opts ...SweeperOption) (*Sweeper, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Sweeper{config: config}
	WithEvaluator(NewEvaluator(config))(s)

	for _, opt := range opts {
		opt(s)
	}

	s.pool = NewQ(ctx, config)
	return s, nil
}

// Run evaluates every scenario and waits for all of them.
func (s *Sweeper) Run(ctx context.Context, scenarios []Scenario) (Report, error) {
	run := s.runs.Add(1)
	start := time.Now()

	opts := []JobOption{WithTTL(s.config.resultTTL())}
	if s.config.FatalBreaker > 0 {
		breakerID := fmt.Sprintf("fatal-%d", run)
		s.pool.AddBreaker(breakerID, NewCircuitBreaker(s.config.FatalBreaker, 0, 1))
		opts = append(opts, WithCircuitBreaker(breakerID, s.config.FatalBreaker, 0))
	}

	ids := make([]string, len(scenarios))
	pending := make([]chan Result, len(scenarios))

	for i, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		ids[i] = fmt.Sprintf("run%d/%s", run, sc.ID)
		pending[i] = s.pool.Schedule(ids[i], s.job(sc), opts...)
	}

	report := Report{Outcomes: make([]Outcome, 0, len(scenarios))}

	for i, ch := range pending {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case r := <-ch:
			s.pool.Forget(ids[i])

			o, ok := r.Value.(Outcome)
			if !ok {
				o = Outcome{Scenario: scenarios[i], Err: r.Error, Class: Classify(r.Error)}
			}

			report.add(o)
			s.pool.metrics.RecordOutcome(o.Label())

			if o.Err != nil {
				log.Debug("scenario errored", "scenario", o.Scenario.ID, "class", o.Class, "err", o.Err)
			}
		}
	}

	report.Elapsed = time.Since(start)

	log.Info("sweep finished",
		"run", run,
		"total", report.Total,
		"passed", report.Passed,
		"failed", report.Failed,
		"fatal", report.Fatal,
		"elapsed", report.Elapsed,
	)

	return report, nil
}

// job wraps one scenario. Fatal errors are returned as job errors so the
// pool's breaker sees them; the Outcome travels with them either way.
func (s *Sweeper) job(sc Scenario) func() (any, error) {
	return func() (any, error) {
		verdict, err := s.evaluate(sc)
		o := Outcome{Scenario: sc, Verdict: verdict, Err: err, Class: Classify(err)}

		if o.Class.Fatal() {
			return o, err
		}
		return o, nil
	}
}

func (s *Sweeper) Metrics() *Metrics {
	return s.pool.Metrics()
}

func (s *Sweeper) Close() {
	s.pool.Close()
}
