package qecc

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"time"
)

const testTimeout = 5 * time.Second

func approxComplex(a, b complex128, tol float64) bool {
	return cmplx.Abs(a-b) <= tol
}

func approxMatrix(a, b Matrix2, tol float64) bool {
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if !approxComplex(a[r][c], b[r][c], tol) {
				return false
			}
		}
	}
	return true
}

func approxQubit(a, b Qubit, tol float64) bool {
	return approxComplex(a.Alpha, b.Alpha, tol) && approxComplex(a.Beta, b.Beta, tol)
}

// randomState returns a normalized n-qubit register with Gaussian amplitudes.
func randomState(rng *rand.Rand, n int) *StateVector {
	amps := make([]complex128, 1<<n)
	var total float64
	for i := range amps {
		amps[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		total += sqAbs(amps[i])
	}

	scale := complex(1/math.Sqrt(total), 0)
	for i := range amps {
		amps[i] *= scale
	}

	sv, err := NewStateFromAmplitudes(amps)
	if err != nil {
		panic(err)
	}
	return sv
}

// everyGate lists one instance of each kind on a three-qubit register.
func everyGate() []GateOp {
	return []GateOp{
		I(0), X(1), Y(2), Z(0), H(1),
		RX(2, 0.7), RZ(0, -2.3),
		CNOT(0, 2), Toffoli(2, 0, 1),
	}
}
