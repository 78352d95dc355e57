package qecc

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// GateKind tags the unitary a GateOp applies.
type GateKind int

const (
	GateI GateKind = iota
	GateX
	GateY
	GateZ
	GateH
	GateRX
	GateRZ
	GateCNOT
	GateToffoli
)

func (kind GateKind) String() string {
	switch kind {
	case GateI:
		return "I"
	case GateX:
		return "X"
	case GateY:
		return "Y"
	case GateZ:
		return "Z"
	case GateH:
		return "H"
	case GateRX:
		return "RX"
	case GateRZ:
		return "RZ"
	case GateCNOT:
		return "CNOT"
	case GateToffoli:
		return "TOFFOLI"
	default:
		return fmt.Sprintf("GateKind(%d)", int(kind))
	}
}

// controlCount is the number of control qubits a kind requires.
func (kind GateKind) controlCount() int {
	switch kind {
	case GateCNOT:
		return 1
	case GateToffoli:
		return 2
	default:
		return 0
	}
}

// parameterized reports whether the kind carries an angle.
func (kind GateKind) parameterized() bool {
	return kind == GateRX || kind == GateRZ
}

// Matrix2 is a single-qubit operator in the computational basis,
// indexed [row][column].
type Matrix2 [2][2]complex128

// Mul returns m·o.
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	var out Matrix2
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			out[r][c] = m[r][0]*o[0][c] + m[r][1]*o[1][c]
		}
	}
	return out
}

// Dagger returns the conjugate transpose.
func (m Matrix2) Dagger() Matrix2 {
	return Matrix2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

var (
	matI = Matrix2{{1, 0}, {0, 1}}
	matX = Matrix2{{0, 1}, {1, 0}}
	matY = Matrix2{{0, -1i}, {1i, 0}}
	matZ = Matrix2{{1, 0}, {0, -1}}
	matH = Matrix2{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	}
)

/*
GateOp is one unitary action on a register: a kind, a target qubit, the
control qubits that must all be 1 for the action to apply, and an angle for
the rotation kinds.

A GateOp is immutable. Build it with the constructors below; the zero value
is the identity on qubit 0.
*/
type GateOp struct {
	kind     GateKind
	target   int
	controls []int
	angle    float64
}

func I(target int) GateOp { return GateOp{kind: GateI, target: target} }
func X(target int) GateOp { return GateOp{kind: GateX, target: target} }
func Y(target int) GateOp { return GateOp{kind: GateY, target: target} }
func Z(target int) GateOp { return GateOp{kind: GateZ, target: target} }
func H(target int) GateOp { return GateOp{kind: GateH, target: target} }

// RX rotates target about the X axis by theta.
func RX(target int, theta float64) GateOp {
	return GateOp{kind: GateRX, target: target, angle: theta}
}

// RZ rotates target about the Z axis by theta.
func RZ(target int, theta float64) GateOp {
	return GateOp{kind: GateRZ, target: target, angle: theta}
}

// CNOT flips target when control is 1.
func CNOT(control, target int) GateOp {
	return GateOp{kind: GateCNOT, target: target, controls: []int{control}}
}

// Toffoli flips target when both c1 and c2 are 1.
func Toffoli(c1, c2, target int) GateOp {
	return GateOp{kind: GateToffoli, target: target, controls: []int{c1, c2}}
}

func (op GateOp) Kind() GateKind { return op.kind }
func (op GateOp) Target() int    { return op.target }
func (op GateOp) Angle() float64 { return op.angle }

// Controls returns a copy of the control indices.
func (op GateOp) Controls() []int {
	out := make([]int, len(op.controls))
	copy(out, op.controls)
	return out
}

// controlMask has one bit set per control qubit.
func (op GateOp) controlMask() int {
	mask := 0
	for _, c := range op.controls {
		mask |= 1 << c
	}
	return mask
}

/*
Matrix returns the 2×2 unitary applied to the target qubit whenever every
control is 1. Controlled kinds return Pauli X.

RX(θ) = [[cos θ/2, −i sin θ/2], [−i sin θ/2, cos θ/2]] and
RZ(θ) = diag(e^{−iθ/2}, e^{iθ/2}). Preparation with RX(θ) followed by RZ(φ)
yields exactly the amplitudes of InputState.Expected.
*/
func (op GateOp) Matrix() Matrix2 {
	switch op.kind {
	case GateX, GateCNOT, GateToffoli:
		return matX
	case GateY:
		return matY
	case GateZ:
		return matZ
	case GateH:
		return matH
	case GateRX:
		c := complex(math.Cos(op.angle/2), 0)
		s := complex(0, -math.Sin(op.angle/2))
		return Matrix2{{c, s}, {s, c}}
	case GateRZ:
		half := op.angle / 2
		return Matrix2{
			{cmplx.Exp(complex(0, -half)), 0},
			{0, cmplx.Exp(complex(0, half))},
		}
	default:
		return matI
	}
}

// Inverse returns the gate undoing op. Every non-rotation kind is its own
// inverse.
func (op GateOp) Inverse() GateOp {
	inv := op
	inv.controls = op.Controls()
	if op.kind.parameterized() {
		inv.angle = -op.angle
	}
	return inv
}

// Validate checks op against a register of n qubits.
func (op GateOp) Validate(n int) error {
	if op.target < 0 || op.target >= n {
		return fmt.Errorf("%w: %s target %d outside register of %d qubits", ErrInvalidInput, op.kind, op.target, n)
	}

	if len(op.controls) != op.kind.controlCount() {
		return fmt.Errorf("%w: %s expects %d controls, got %d", ErrInvalidInput, op.kind, op.kind.controlCount(), len(op.controls))
	}

	seen := map[int]bool{op.target: true}
	for _, c := range op.controls {
		if c < 0 || c >= n {
			return fmt.Errorf("%w: %s control %d outside register of %d qubits", ErrInvalidInput, op.kind, c, n)
		}
		if seen[c] {
			return fmt.Errorf("%w: %s reuses qubit %d", ErrInvalidInput, op.kind, c)
		}
		seen[c] = true
	}

	if math.IsNaN(op.angle) || math.IsInf(op.angle, 0) {
		return fmt.Errorf("%w: %s angle %v", ErrInvalidInput, op.kind, op.angle)
	}

	return nil
}

func (op GateOp) String() string {
	var b strings.Builder
	b.WriteString(op.kind.String())
	if op.kind.parameterized() {
		fmt.Fprintf(&b, "(%.6g)", op.angle)
	}
	b.WriteByte(' ')
	for _, c := range op.controls {
		fmt.Fprintf(&b, "q%d,", c)
	}
	fmt.Fprintf(&b, "q%d", op.target)
	return b.String()
}
