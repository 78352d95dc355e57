package qecc

import (
	"fmt"
	"math"
	"math/cmplx"
)

// DefaultTolerance is ε for state equivalence.
const DefaultTolerance = 1e-5

/*
SameState reports whether psiA and psiB are the same two-level state up to a
single global phase e^{iφ}, within DefaultTolerance.

A false result with a nil error is an ordinary mismatch. ErrNumericRange
means a phase-difference component left [-1-ε, 1+ε], which cannot happen for
normalized inputs that differ by a phase.
*/
func SameState(psiA, psiB Qubit) (bool, error) {
	return SameStateTolerance(psiA, psiB, DefaultTolerance)
}

// SameStateTolerance is SameState with an explicit ε.
func SameStateTolerance(psiA, psiB Qubit, tol float64) (bool, error) {
	// Divide by the larger component of psiA to stay clear of zeros.
	ref := 0
	if cmplx.Abs(psiA.Beta) > cmplx.Abs(psiA.Alpha) {
		ref = 1
	}

	denominator := psiA.Amplitude(ref)
	if denominator == 0 {
		return false, fmt.Errorf("%w: reference amplitude of %s is zero", ErrNumericRange, psiA)
	}

	phaseDiff, err := ClampComponents(psiB.Amplitude(ref)/denominator, tol)
	if err != nil {
		return false, err
	}

	if !onUnitCircle(phaseDiff, tol) {
		return false, nil
	}

	other := 1 - ref
	return ApproxEqual(psiA.Amplitude(other)*phaseDiff, psiB.Amplitude(other), tol), nil
}

// ClampComponents pulls the real and imaginary parts of z into [-1, 1].
// A part beyond [-1-tol, 1+tol] is an ErrNumericRange, not a clamp.
func ClampComponents(z complex128, tol float64) (complex128, error) {
	re, err := clampUnit(real(z), tol)
	if err != nil {
		return 0, fmt.Errorf("real part of %v: %w", z, err)
	}

	im, err := clampUnit(imag(z), tol)
	if err != nil {
		return 0, fmt.Errorf("imaginary part of %v: %w", z, err)
	}

	return complex(re, im), nil
}

func clampUnit(x, tol float64) (float64, error) {
	switch {
	case math.IsNaN(x), x < -1-tol, x > 1+tol:
		return 0, fmt.Errorf("%w: %v outside [-1, 1]", ErrNumericRange, x)
	case x < -1:
		return -1, nil
	case x > 1:
		return 1, nil
	default:
		return x, nil
	}
}

/*
onUnitCircle checks that z = cos φ + i sin φ for some φ by recovering the
angle twice, from acos of the real part and from asin of the imaginary part,
and requiring one of the four sign/complement pairings to agree mod π.
*/
func onUnitCircle(z complex128, tol float64) bool {
	phiReal := math.Acos(real(z)) // φ or -φ, in [0, π]
	phiImag := math.Asin(imag(z)) // φ or π-φ, in [-π/2, π/2]

	candidates := [4]float64{
		phiReal - phiImag,
		-phiReal - phiImag,
		phiReal - (math.Pi - phiImag),
		-phiReal - (math.Pi - phiImag),
	}

	for _, c := range candidates {
		r := modPi(c)
		if approxEqualReal(r, 0, tol) || approxEqualReal(r, math.Pi, tol) {
			return true
		}
	}

	return false
}

// modPi reduces x into [0, π).
func modPi(x float64) float64 {
	r := math.Mod(x, math.Pi)
	if r < 0 {
		r += math.Pi
	}
	return r
}

// ApproxEqual treats x and y as equal when both are within tol of zero, or
// when they differ by at most half their summed magnitude times tol.
func ApproxEqual(x, y complex128, tol float64) bool {
	if cmplx.Abs(x) < tol && cmplx.Abs(y) < tol {
		return true
	}
	return cmplx.Abs(x-y) <= 0.5*cmplx.Abs(x+y)*tol
}

func approxEqualReal(x, y, tol float64) bool {
	return ApproxEqual(complex(x, 0), complex(y, 0), tol)
}
