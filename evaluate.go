package qecc

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
)

// Code selects the error-correcting code an Evaluator builds.
type Code int

const (
	CodeShor Code = iota
	CodeBitFlip
)

func (c Code) String() string {
	switch c {
	case CodeShor:
		return "shor"
	case CodeBitFlip:
		return "bitflip"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// ParseCode accepts the names printed by Code.String.
func ParseCode(s string) (Code, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shor", "shor9":
		return CodeShor, nil
	case "bitflip", "bit-flip", "repetition":
		return CodeBitFlip, nil
	default:
		return 0, fmt.Errorf("%w: code %q", ErrInvalidInput, s)
	}
}

func (c Code) qubits() int {
	if c == CodeBitFlip {
		return BitFlipQubits
	}
	return ShorQubits
}

/*
Verdict is the outcome of one evaluation. Got and Expected are always
populated so a failed correction can be diagnosed.
*/
type Verdict struct {
	Passed   bool
	Got      Qubit
	Expected Qubit

	// Probabilities is the marginal distribution of qubit 0 in the decoded
	// register; ProbabilitiesMatch compares it with |α|², |β|² of Expected.
	Probabilities      [2]float64
	ProbabilitiesMatch bool

	// Counts holds sampled outcomes of qubit 0 when shots are configured.
	Counts [2]int
}

// Evaluator runs encode, inject, decode and compare for one scenario at a
// time. It holds no per-scenario state and is safe for concurrent use.
type Evaluator struct {
	config *Config
	sim    *Simulator
	code   Code
	fault  Fault
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

func WithCode(code Code) EvaluatorOption {
	return func(e *Evaluator) {
		e.code = code
	}
}

func WithFault(fault Fault) EvaluatorOption {
	return func(e *Evaluator) {
		e.fault = fault
	}
}

// NewEvaluator builds an Evaluator for the Shor code with X+Z faults unless
// options say otherwise. A nil config, or any tolerance left at zero, falls
// back to NewConfig().
func NewEvaluator(config *Config, opts ...EvaluatorOption) *Evaluator {
	config = config.withDefaults()

	e := &Evaluator{
		config: config,
		sim:    NewSimulator(config),
		code:   CodeShor,
		fault:  FaultBitPhase,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Evaluator) Code() Code   { return e.code }
func (e *Evaluator) Fault() Fault { return e.fault }

// Circuit returns the circuit Evaluate would run.
func (e *Evaluator) Circuit(in InputState, errs ErrorPattern) Circuit {
	if e.code == CodeBitFlip {
		return BuildBitFlipCircuit(in, errs, e.fault)
	}
	return BuildShorCircuitWithFault(in, errs, e.fault)
}

/*
Evaluate decides whether the logical qubit survives errs.

A correction that fails returns Passed == false and a nil error. Invalid
input and the fatal internal-consistency and numeric-range conditions come
back as *EvaluationError.
*/
func (e *Evaluator) Evaluate(in InputState, errs ErrorPattern) (Verdict, error) {
	scenario := fmt.Sprintf("%s %s errors=%s", e.code, in, errs)

	if err := in.Validate(); err != nil {
		return Verdict{}, newEvaluationError(scenario, err)
	}
	if err := errs.validFor(e.code.qubits()); err != nil {
		return Verdict{}, newEvaluationError(scenario, err)
	}

	verdict := Verdict{Expected: in.Expected()}

	sv, err := e.sim.Run(e.Circuit(in, errs))
	if err != nil {
		return verdict, newEvaluationError(scenario, err)
	}
	defer e.sim.Release(sv)

	if verdict.Got, err = sv.ReducedAmplitudes(0); err != nil {
		return verdict, newEvaluationError(scenario, err)
	}

	if verdict.Passed, err = SameStateTolerance(verdict.Got, verdict.Expected, e.config.Tolerance); err != nil {
		return verdict, newEvaluationError(scenario, err)
	}

	verdict.Probabilities = [2]float64{sv.Probability(0, 0), sv.Probability(0, 1)}
	e0, e1 := verdict.Expected.Probabilities()
	verdict.ProbabilitiesMatch = math.Abs(verdict.Probabilities[0]-e0) < e.config.ProbabilityTolerance &&
		math.Abs(verdict.Probabilities[1]-e1) < e.config.ProbabilityTolerance

	if e.config.Shots > 0 {
		rng := rand.New(rand.NewPCG(e.config.Seed, scenarioSeed(scenario)))
		verdict.Counts[0], verdict.Counts[1] = sv.Sample(0, e.config.Shots, rng)
	}

	return verdict, nil
}

var defaultEvaluator = NewEvaluator(nil)

// Evaluate runs the Shor code with default settings.
func Evaluate(in InputState, errs ErrorPattern) (Verdict, error) {
	return defaultEvaluator.Evaluate(in, errs)
}

func scenarioSeed(scenario string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(scenario))
	return h.Sum64()
}
