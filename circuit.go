package qecc

import (
	"fmt"
	"strings"
)

/*
Circuit is an ordered, immutable list of gates over a fixed number of qubits.
It describes work and carries no execution state; a Simulator replays it.
Each GateOp maps one-to-one onto a native gate call of any SDK adapter.
*/
type Circuit struct {
	qubits int
	ops    []GateOp
}

// NewCircuit validates ops against an n-qubit register and freezes them.
func NewCircuit(n int, ops ...GateOp) (Circuit, error) {
	if n < 1 || n > MaxQubits {
		return Circuit{}, fmt.Errorf("%w: register of %d qubits", ErrInvalidInput, n)
	}

	b := newCircuitBuilder(n)
	b.add(ops...)
	c := b.build()

	if err := c.Validate(); err != nil {
		return Circuit{}, err
	}

	return c, nil
}

func (c Circuit) Qubits() int { return c.qubits }
func (c Circuit) Len() int    { return len(c.ops) }

// At returns the i-th gate.
func (c Circuit) At(i int) GateOp {
	return c.ops[i]
}

// Ops returns a copy of the gate list.
func (c Circuit) Ops() []GateOp {
	out := make([]GateOp, len(c.ops))
	copy(out, c.ops)
	return out
}

// Validate checks every gate against the register size.
func (c Circuit) Validate() error {
	for i, op := range c.ops {
		if err := op.Validate(c.qubits); err != nil {
			return fmt.Errorf("gate %d: %w", i, err)
		}
	}
	return nil
}

// Inverse returns the circuit that undoes c.
func (c Circuit) Inverse() Circuit {
	inv := Circuit{qubits: c.qubits, ops: make([]GateOp, len(c.ops))}
	for i, op := range c.ops {
		inv.ops[len(c.ops)-1-i] = op.Inverse()
	}
	return inv
}

// String lists one gate per line. It is meant for diagnostics, not as a
// serialization format.
func (c Circuit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circuit: %d qubits, %d gates\n", c.qubits, len(c.ops))
	for i, op := range c.ops {
		fmt.Fprintf(&b, "%3d  %s\n", i, op)
	}
	return b.String()
}

// circuitBuilder accumulates gates and hands out a frozen Circuit once.
type circuitBuilder struct {
	qubits int
	ops    []GateOp
}

func newCircuitBuilder(n int) *circuitBuilder {
	return &circuitBuilder{qubits: n}
}

func (b *circuitBuilder) add(ops ...GateOp) *circuitBuilder {
	b.ops = append(b.ops, ops...)
	return b
}

func (b *circuitBuilder) build() Circuit {
	ops := make([]GateOp, len(b.ops))
	copy(ops, b.ops)
	b.ops = nil
	return Circuit{qubits: b.qubits, ops: ops}
}
