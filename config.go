package qecc

import (
	"fmt"
	"runtime"
	"time"
)

// Config tunes the pool, the numerical tolerances and the sweep.
type Config struct {
	Workers           int           `mapstructure:"workers" yaml:"workers"`
	SchedulingTimeout time.Duration `mapstructure:"scheduling_timeout" yaml:"scheduling_timeout"`
	// ResultTTL bounds how long a sweep result nobody collected stays in
	// the pool, e.g. after the caller's context was cancelled.
	ResultTTL time.Duration `mapstructure:"result_ttl" yaml:"result_ttl"`

	// Tolerance is ε for state equivalence.
	Tolerance             float64 `mapstructure:"tolerance" yaml:"tolerance"`
	NormTolerance         float64 `mapstructure:"norm_tolerance" yaml:"norm_tolerance"`
	NegligibleProbability float64 `mapstructure:"negligible_probability" yaml:"negligible_probability"`

	// ProbabilityTolerance bounds |P(0)-|α|²| in the measurement check.
	ProbabilityTolerance float64 `mapstructure:"probability_tolerance" yaml:"probability_tolerance"`
	Shots                int     `mapstructure:"shots" yaml:"shots"`
	Seed                 uint64  `mapstructure:"seed" yaml:"seed"`

	MaxErrors int `mapstructure:"max_errors" yaml:"max_errors"`
	// FatalBreaker stops a sweep after this many fatal evaluations; 0
	// disables it.
	FatalBreaker int `mapstructure:"fatal_breaker" yaml:"fatal_breaker"`
}

func NewConfig() *Config {
	return &Config{
		Workers:               runtime.GOMAXPROCS(0),
		SchedulingTimeout:     10 * time.Second,
		ResultTTL:             time.Minute,
		Tolerance:             DefaultTolerance,
		NormTolerance:         DefaultNormTolerance,
		NegligibleProbability: DefaultNegligibleProbability,
		ProbabilityTolerance:  1e-4,
		Shots:                 0,
		Seed:                  1,
		MaxErrors:             1,
		FatalBreaker:          0,
	}
}

// Validate rejects settings the engine cannot run with.
func (config *Config) Validate() error {
	switch {
	case config.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalidInput, config.Workers)
	case config.Tolerance <= 0 || config.NormTolerance <= 0 || config.NegligibleProbability <= 0:
		return fmt.Errorf("%w: tolerances must be positive", ErrInvalidInput)
	case config.ProbabilityTolerance <= 0:
		return fmt.Errorf("%w: probability tolerance %v", ErrInvalidInput, config.ProbabilityTolerance)
	case config.ResultTTL < 0:
		return fmt.Errorf("%w: result ttl %v", ErrInvalidInput, config.ResultTTL)
	case config.Shots < 0:
		return fmt.Errorf("%w: shots %d", ErrInvalidInput, config.Shots)
	case config.MaxErrors < 0 || config.MaxErrors > ShorQubits:
		return fmt.Errorf("%w: max errors %d", ErrInvalidInput, config.MaxErrors)
	case config.FatalBreaker < 0:
		return fmt.Errorf("%w: fatal breaker %d", ErrInvalidInput, config.FatalBreaker)
	}
	return nil
}

func (config *Config) schedulingTimeout() time.Duration {
	if config != nil && config.SchedulingTimeout > 0 {
		return config.SchedulingTimeout
	}
	return 5 * time.Second
}

func (config *Config) resultTTL() time.Duration {
	if config != nil && config.ResultTTL > 0 {
		return config.ResultTTL
	}
	return time.Minute
}

// withDefaults returns a copy of config with every non-positive tolerance
// replaced by its NewConfig value, so hand-built configs stay usable.
func (config *Config) withDefaults() *Config {
	defaults := NewConfig()
	if config == nil {
		return defaults
	}

	out := *config
	if out.Tolerance <= 0 {
		out.Tolerance = defaults.Tolerance
	}
	if out.NormTolerance <= 0 {
		out.NormTolerance = defaults.NormTolerance
	}
	if out.NegligibleProbability <= 0 {
		out.NegligibleProbability = defaults.NegligibleProbability
	}
	if out.ProbabilityTolerance <= 0 {
		out.ProbabilityTolerance = defaults.ProbabilityTolerance
	}
	return &out
}
