package qecc

import (
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"
	"sync"
)

const (
	// MaxQubits bounds registers so buffers stay small.
	MaxQubits = 16

	DefaultNormTolerance         = 1e-6
	DefaultNegligibleProbability = 1e-8
)

/*
StateVector is the complex-amplitude representation of an n-qubit register.

Index i holds the amplitude of the basis state whose binary digits are the
qubit values, with qubit 0 in the least-significant bit: on three qubits,
index 0b110 is |q2=1, q1=1, q0=0⟩.

Every ApplyGate verifies that the squared magnitudes still sum to 1 within
NormTolerance. A StateVector is not safe for concurrent use; each
evaluation owns its buffer.
*/
type StateVector struct {
	amps   []complex128
	qubits int

	NormTolerance         float64
	NegligibleProbability float64
}

// NewStateVector returns |0…0⟩ on n qubits. It panics if n is outside
// [1, MaxQubits]; use NewBasisState to get an error instead.
func NewStateVector(n int) *StateVector {
	sv, err := NewBasisState(n, 0)
	if err != nil {
		panic(err)
	}
	return sv
}

// NewBasisState returns the computational basis state |index⟩ on n qubits.
func NewBasisState(n, index int) (*StateVector, error) {
	if n < 1 || n > MaxQubits {
		return nil, fmt.Errorf("%w: register of %d qubits", ErrInvalidInput, n)
	}

	sv := &StateVector{
		amps:                  make([]complex128, 1<<n),
		qubits:                n,
		NormTolerance:         DefaultNormTolerance,
		NegligibleProbability: DefaultNegligibleProbability,
	}

	if err := sv.Reset(index); err != nil {
		return nil, err
	}

	return sv, nil
}

// NewStateFromAmplitudes copies amps into a new register. The length must be
// a power of two and the amplitudes normalized.
func NewStateFromAmplitudes(amps []complex128) (*StateVector, error) {
	if len(amps) < 2 || bits.OnesCount(uint(len(amps))) != 1 {
		return nil, fmt.Errorf("%w: %d amplitudes is not a power of two", ErrInvalidInput, len(amps))
	}

	n := bits.TrailingZeros(uint(len(amps)))
	if n > MaxQubits {
		return nil, fmt.Errorf("%w: register of %d qubits", ErrInvalidInput, n)
	}

	sv := &StateVector{
		amps:                  make([]complex128, len(amps)),
		qubits:                n,
		NormTolerance:         DefaultNormTolerance,
		NegligibleProbability: DefaultNegligibleProbability,
	}
	copy(sv.amps, amps)

	if norm := sv.squaredNorm(); math.Abs(norm-1) > sv.NormTolerance {
		return nil, fmt.Errorf("%w: squared norm %.12f", ErrInvalidInput, norm)
	}

	return sv, nil
}

// Reset reinitializes the buffer to |index⟩, discarding every amplitude.
func (sv *StateVector) Reset(index int) error {
	if index < 0 || index >= len(sv.amps) {
		return fmt.Errorf("%w: basis index %d outside register of %d qubits", ErrInvalidInput, index, sv.qubits)
	}

	clear(sv.amps)
	sv.amps[index] = 1
	return nil
}

func (sv *StateVector) Qubits() int { return sv.qubits }
func (sv *StateVector) Len() int    { return len(sv.amps) }

// Amplitude returns the amplitude of basis state i.
func (sv *StateVector) Amplitude(i int) complex128 {
	return sv.amps[i]
}

// Amplitudes returns a copy of the amplitude buffer.
func (sv *StateVector) Amplitudes() []complex128 {
	out := make([]complex128, len(sv.amps))
	copy(out, sv.amps)
	return out
}

func (sv *StateVector) Clone() *StateVector {
	clone := *sv
	clone.amps = sv.Amplitudes()
	return &clone
}

/*
ApplyGate applies op across the full tensor-product space.

Basis indices are paired by the target bit; a pair is touched only when every
control bit is set. Both amplitudes of a pair are read before either is
written, so the update is safe in place. Pauli X and Z kinds, controlled or
not, are applied as exact swaps and negations.
*/
func (sv *StateVector) ApplyGate(op GateOp) error {
	if err := op.Validate(sv.qubits); err != nil {
		return err
	}

	bit := 1 << op.target
	mask := op.controlMask()

	switch op.kind {
	case GateI:
	case GateX, GateCNOT, GateToffoli:
		for i := range sv.amps {
			if i&bit != 0 || i&mask != mask {
				continue
			}
			j := i | bit
			sv.amps[i], sv.amps[j] = sv.amps[j], sv.amps[i]
		}
	case GateZ:
		for i := range sv.amps {
			if i&bit != 0 && i&mask == mask {
				sv.amps[i] = -sv.amps[i]
			}
		}
	default:
		m := op.Matrix()
		for i := range sv.amps {
			if i&bit != 0 || i&mask != mask {
				continue
			}
			j := i | bit
			a0, a1 := sv.amps[i], sv.amps[j]
			sv.amps[i] = m[0][0]*a0 + m[0][1]*a1
			sv.amps[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}

	if norm := sv.squaredNorm(); math.Abs(norm-1) > sv.NormTolerance {
		return fmt.Errorf("%w: squared norm %.12f after %s", ErrInternalConsistency, norm, op)
	}

	return nil
}

// Norm returns the Euclidean norm of the amplitude vector.
func (sv *StateVector) Norm() float64 {
	return math.Sqrt(sv.squaredNorm())
}

func (sv *StateVector) squaredNorm() float64 {
	var total float64
	for _, a := range sv.amps {
		total += sqAbs(a)
	}
	return total
}

// Probability sums |a|² over the basis states whose bit q equals value.
func (sv *StateVector) Probability(q, value int) float64 {
	var p float64
	for i, a := range sv.amps {
		if (i>>q)&1 == value {
			p += sqAbs(a)
		}
	}
	return p
}

/*
ReducedAmplitudes returns, for each value of qubit q, the amplitude with the
largest magnitude among basis states sharing that value.

This is only meaningful once every other qubit sits in one fixed basis
state, as it does after Shor decoding. If a value of q has two or more
amplitudes above NegligibleProbability, or the surviving |0⟩ and |1⟩
amplitudes disagree on the other qubits, the collapse did not happen and
ErrInternalConsistency is returned.
*/
func (sv *StateVector) ReducedAmplitudes(q int) (Qubit, error) {
	if q < 0 || q >= sv.qubits {
		return Qubit{}, fmt.Errorf("%w: qubit %d outside register of %d qubits", ErrInvalidInput, q, sv.qubits)
	}

	var (
		best      [2]complex128
		bestP     [2]float64
		bestIndex = [2]int{-1, -1}
		count     [2]int
	)

	for i, a := range sv.amps {
		v := (i >> q) & 1
		p := sqAbs(a)
		if p > sv.NegligibleProbability {
			count[v]++
		}
		if bestIndex[v] < 0 || p > bestP[v] {
			best[v], bestP[v], bestIndex[v] = a, p, i
		}
	}

	for v := 0; v < 2; v++ {
		if count[v] > 1 {
			return Qubit{}, fmt.Errorf(
				"%w: %d non-negligible amplitudes with qubit %d = %d",
				ErrInternalConsistency, count[v], q, v,
			)
		}
	}

	rest := ^(1 << q)
	if count[0] == 1 && count[1] == 1 && bestIndex[0]&rest != bestIndex[1]&rest {
		return Qubit{}, fmt.Errorf(
			"%w: qubit %d entangled with the rest of the register (indices %b, %b)",
			ErrInternalConsistency, q, bestIndex[0], bestIndex[1],
		)
	}

	return Qubit{Alpha: best[0], Beta: best[1]}, nil
}

// Sample measures qubit q shots times without collapsing the register and
// returns how often 0 and 1 came up.
func (sv *StateVector) Sample(q, shots int, rng *rand.Rand) (int, int) {
	p1 := sv.Probability(q, 1)
	ones := 0
	for s := 0; s < shots; s++ {
		if rng.Float64() < p1 {
			ones++
		}
	}
	return shots - ones, ones
}

/*
StatePool recycles amplitude buffers between evaluations. Get always resets
the buffer it hands out, so a recycled register never carries amplitudes
from a previous scenario.
*/
type StatePool struct {
	pools [MaxQubits + 1]sync.Pool
}

func NewStatePool() *StatePool {
	return &StatePool{}
}

// Get returns a register of n qubits in |index⟩.
func (sp *StatePool) Get(n, index int) (*StateVector, error) {
	if n < 1 || n > MaxQubits {
		return nil, fmt.Errorf("%w: register of %d qubits", ErrInvalidInput, n)
	}

	sv, ok := sp.pools[n].Get().(*StateVector)
	if !ok {
		return NewBasisState(n, index)
	}

	sv.NormTolerance = DefaultNormTolerance
	sv.NegligibleProbability = DefaultNegligibleProbability
	if err := sv.Reset(index); err != nil {
		sp.Put(sv)
		return nil, err
	}

	return sv, nil
}

// Put hands sv back. The caller must not use it afterwards.
func (sp *StatePool) Put(sv *StateVector) {
	if sv == nil {
		return
	}
	sp.pools[sv.qubits].Put(sv)
}
