package qecc

import (
	"fmt"
	"math"
	"math/cmplx"
)

/*
Qubit is a two-level state: the amplitudes of |0⟩ and |1⟩. It is what
ReducedAmplitudes extracts from a decoded register and what an InputState
expands to, so both sides of an equivalence check share one type.
*/
type Qubit struct {
	Alpha complex128 // |0⟩ amplitude
	Beta  complex128 // |1⟩ amplitude
}

func NewQubit(alpha, beta complex128) Qubit {
	return Qubit{Alpha: alpha, Beta: beta}
}

// Amplitude returns the amplitude of basis state i (0 or 1).
func (q Qubit) Amplitude(i int) complex128 {
	if i == 0 {
		return q.Alpha
	}
	return q.Beta
}

// Probabilities returns |α|² and |β|².
func (q Qubit) Probabilities() (float64, float64) {
	return sqAbs(q.Alpha), sqAbs(q.Beta)
}

func (q Qubit) Norm() float64 {
	return math.Sqrt(sqAbs(q.Alpha) + sqAbs(q.Beta))
}

// Apply returns m applied to q.
func (q Qubit) Apply(m Matrix2) Qubit {
	return Qubit{
		Alpha: m[0][0]*q.Alpha + m[0][1]*q.Beta,
		Beta:  m[1][0]*q.Alpha + m[1][1]*q.Beta,
	}
}

// WithGlobalPhase multiplies both amplitudes by e^{iφ}.
func (q Qubit) WithGlobalPhase(phi float64) Qubit {
	phase := cmplx.Exp(complex(0, phi))
	return Qubit{Alpha: q.Alpha * phase, Beta: q.Beta * phase}
}

func (q Qubit) String() string {
	return fmt.Sprintf("(%.6f%+.6fi)|0⟩ + (%.6f%+.6fi)|1⟩",
		real(q.Alpha), imag(q.Alpha), real(q.Beta), imag(q.Beta))
}

func sqAbs(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
