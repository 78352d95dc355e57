package qecc

import (
	"fmt"
	"math"
)

// Scenario pairs one input state with one error pattern.
type Scenario struct {
	ID     string
	Input  InputState
	Errors ErrorPattern
}

/*
StandardInputs returns the input states every Shor-code check has used:
|0⟩, |1⟩, the uniform superposition, and two states with irregular phase
and amplitude.
*/
func StandardInputs() []InputState {
	return []InputState{
		{Theta: 0, Phi: 0},
		{Theta: math.Pi, Phi: math.Pi},
		{Theta: math.Pi / 2, Phi: math.Pi / 2},
		{Theta: math.Pi / 2, Phi: 2},
		{Theta: math.Pi * 2 / 3, Phi: 4},
	}
}

// ErrorPatterns lists every pattern of 0 up to maxErrors distinct qubits of
// the nine-qubit register, smallest first.
func ErrorPatterns(maxErrors int) []ErrorPattern {
	return errorPatterns(ShorQubits, maxErrors)
}

// ErrorPatterns lists the error patterns for the register of code c.
func (c Code) ErrorPatterns(maxErrors int) []ErrorPattern {
	return errorPatterns(c.qubits(), maxErrors)
}

func errorPatterns(n, maxErrors int) []ErrorPattern {
	maxErrors = min(maxErrors, n)

	var out []ErrorPattern
	for size := 0; size <= maxErrors; size++ {
		out = append(out, combinations(n, size)...)
	}
	return out
}

// combinations returns every k-subset of [0, n) in lexicographic order.
func combinations(n, k int) []ErrorPattern {
	var (
		out  []ErrorPattern
		pick = make([]int, 0, k)
		walk func(start int)
	)

	walk = func(start int) {
		if len(pick) == k {
			out = append(out, append(ErrorPattern{}, pick...))
			return
		}
		for i := start; i <= n-(k-len(pick)); i++ {
			pick = append(pick, i)
			walk(i + 1)
			pick = pick[:len(pick)-1]
		}
	}

	walk(0)
	return out
}

// Scenarios builds the cross product of inputs and patterns. IDs are
// unique and sort in generation order.
func Scenarios(inputs []InputState, patterns []ErrorPattern) []Scenario {
	out := make([]Scenario, 0, len(inputs)*len(patterns))
	for i, in := range inputs {
		for j, errs := range patterns {
			out = append(out, Scenario{
				ID:     fmt.Sprintf("in%02d/err%04d%s", i, j, errs),
				Input:  in,
				Errors: errs,
			})
		}
	}
	return out
}
