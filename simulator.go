package qecc

import "fmt"

// Simulator replays circuits on pooled registers.
type Simulator struct {
	pool                  *StatePool
	normTolerance         float64
	negligibleProbability float64
}

// NewSimulator takes its tolerances from config. Unset tolerances, or a nil
// config, fall back to NewConfig().
func NewSimulator(config *Config) *Simulator {
	config = config.withDefaults()

	return &Simulator{
		pool:                  NewStatePool(),
		normTolerance:         config.NormTolerance,
		negligibleProbability: config.NegligibleProbability,
	}
}

// Run executes c from |0…0⟩ on a pooled register. Hand the result back with
// Release once done with it.
func (sim *Simulator) Run(c Circuit) (*StateVector, error) {
	sv, err := sim.pool.Get(c.Qubits(), 0)
	if err != nil {
		return nil, err
	}

	sim.tune(sv)

	if err := sim.RunInto(sv, c); err != nil {
		sim.Release(sv)
		return nil, err
	}

	return sv, nil
}

// RunInto applies every gate of c to sv in order.
func (sim *Simulator) RunInto(sv *StateVector, c Circuit) error {
	if sv.Qubits() != c.Qubits() {
		return fmt.Errorf("%w: %d-qubit circuit on %d-qubit register", ErrInvalidInput, c.Qubits(), sv.Qubits())
	}

	for i, op := range c.ops {
		if err := sv.ApplyGate(op); err != nil {
			return fmt.Errorf("gate %d (%s): %w", i, op, err)
		}
	}

	return nil
}

// Reduce runs c and extracts the reduced state of qubit 0.
func (sim *Simulator) Reduce(c Circuit) (Qubit, error) {
	sv, err := sim.Run(c)
	if err != nil {
		return Qubit{}, err
	}
	defer sim.Release(sv)

	return sv.ReducedAmplitudes(0)
}

func (sim *Simulator) Release(sv *StateVector) {
	sim.pool.Put(sv)
}

func (sim *Simulator) tune(sv *StateVector) {
	if sim.normTolerance > 0 {
		sv.NormTolerance = sim.normTolerance
	}
	if sim.negligibleProbability > 0 {
		sv.NegligibleProbability = sim.negligibleProbability
	}
}
