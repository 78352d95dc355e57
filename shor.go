package qecc

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	// ShorQubits is the register size of the nine-qubit code.
	ShorQubits = 9
	// BitFlipQubits is the register size of the three-qubit repetition code.
	BitFlipQubits = 3
)

var (
	phaseBlock = [3]int{0, 3, 6}
	bitBlocks  = [3][3]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}
)

// InputState holds the Bloch-sphere angles of the logical qubit, with
// Theta in [0, π] and Phi in [0, 2π).
type InputState struct {
	Theta float64 `yaml:"theta" mapstructure:"theta"`
	Phi   float64 `yaml:"phi" mapstructure:"phi"`
}

func (in InputState) Validate() error {
	if math.IsNaN(in.Theta) || in.Theta < 0 || in.Theta > math.Pi {
		return fmt.Errorf("%w: theta %v outside [0, π]", ErrInvalidInput, in.Theta)
	}
	if math.IsNaN(in.Phi) || in.Phi < 0 || in.Phi >= 2*math.Pi {
		return fmt.Errorf("%w: phi %v outside [0, 2π)", ErrInvalidInput, in.Phi)
	}
	return nil
}

/*
Expected is the state RX(θ) then RZ(φ) prepares from |0⟩:

	α = cos(φ/2)cos(θ/2) − i·sin(φ/2)cos(θ/2)
	β = sin(φ/2)sin(θ/2) − i·cos(φ/2)sin(θ/2)

Decoded output is compared against this.
*/
func (in InputState) Expected() Qubit {
	ct, st := math.Cos(in.Theta/2), math.Sin(in.Theta/2)
	cp, sp := math.Cos(in.Phi/2), math.Sin(in.Phi/2)
	return Qubit{
		Alpha: complex(cp*ct, -sp*ct),
		Beta:  complex(sp*st, -cp*st),
	}
}

func (in InputState) String() string {
	return fmt.Sprintf("θ=%.4f φ=%.4f", in.Theta, in.Phi)
}

// ErrorPattern is the sorted set of qubits that receive an injected fault.
type ErrorPattern []int

// NewErrorPattern sorts and de-duplicates indices, rejecting any outside
// the nine-qubit register.
func NewErrorPattern(indices ...int) (ErrorPattern, error) {
	return newPattern(ShorQubits, indices)
}

func newPattern(n int, indices []int) (ErrorPattern, error) {
	out := make(ErrorPattern, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: error index %d outside [0, %d]", ErrInvalidInput, idx, n-1)
		}
		out = append(out, idx)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// ParseErrorPattern reads a comma separated index list such as "0,4".
func ParseErrorPattern(s string) (ErrorPattern, error) {
	s = strings.Trim(strings.TrimSpace(s), "{}")
	if s == "" {
		return ErrorPattern{}, nil
	}

	var indices []int
	for _, field := range strings.Split(s, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("%w: error index %q", ErrInvalidInput, field)
		}
		indices = append(indices, idx)
	}
	return NewErrorPattern(indices...)
}

func (p ErrorPattern) Len() int { return len(p) }

func (p ErrorPattern) Contains(idx int) bool {
	return slices.Contains(p, idx)
}

// validFor reports an error if any index lies outside an n-qubit register.
func (p ErrorPattern) validFor(n int) error {
	for _, idx := range p {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: error index %d outside [0, %d]", ErrInvalidInput, idx, n-1)
		}
	}
	return nil
}

func (p ErrorPattern) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Fault selects which Pauli errors are injected on each pattern qubit.
type Fault int

const (
	// FaultBitPhase applies X then Z.
	FaultBitPhase Fault = iota
	FaultBit
	FaultPhase
)

func (f Fault) String() string {
	switch f {
	case FaultBitPhase:
		return "bit+phase"
	case FaultBit:
		return "bit"
	case FaultPhase:
		return "phase"
	default:
		return fmt.Sprintf("Fault(%d)", int(f))
	}
}

// ParseFault accepts the names printed by Fault.String.
func ParseFault(s string) (Fault, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bit+phase", "bitphase", "xz":
		return FaultBitPhase, nil
	case "bit", "x":
		return FaultBit, nil
	case "phase", "z":
		return FaultPhase, nil
	default:
		return 0, fmt.Errorf("%w: fault %q", ErrInvalidInput, s)
	}
}

/*
BuildShorCircuit emits the nine-qubit Shor code for one input state and one
error pattern:

 1. prepare qubit 0 with RX(θ) then RZ(φ)
 2. phase-flip encode {0,3,6}
 3. bit-flip encode {0,1,2}, {3,4,5}, {6,7,8}
 4. X then Z on every qubit in errs
 5. bit-flip decode the triples in reverse order
 6. phase-flip decode {0,3,6}

No simulation happens here and the output is identical across calls.
*/
func BuildShorCircuit(in InputState, errs ErrorPattern) Circuit {
	return BuildShorCircuitWithFault(in, errs, FaultBitPhase)
}

// BuildShorCircuitWithFault is BuildShorCircuit with a chosen fault kind.
func BuildShorCircuitWithFault(in InputState, errs ErrorPattern, fault Fault) Circuit {
	b := newCircuitBuilder(ShorQubits)

	prepare(b, in)
	phaseFlipEncode(b, phaseBlock)
	for _, block := range bitBlocks {
		bitFlipEncode(b, block)
	}

	injectFaults(b, errs, fault)

	for i := len(bitBlocks) - 1; i >= 0; i-- {
		bitFlipDecode(b, bitBlocks[i])
	}
	phaseFlipDecode(b, phaseBlock)

	return b.build()
}

// BuildBitFlipCircuit emits the three-qubit repetition code on {0,1,2}. It
// corrects one bit flip and nothing else.
func BuildBitFlipCircuit(in InputState, errs ErrorPattern, fault Fault) Circuit {
	b := newCircuitBuilder(BitFlipQubits)

	block := bitBlocks[0]
	prepare(b, in)
	bitFlipEncode(b, block)
	injectFaults(b, errs, fault)
	bitFlipDecode(b, block)

	return b.build()
}

func prepare(b *circuitBuilder, in InputState) {
	b.add(RX(0, in.Theta), RZ(0, in.Phi))
}

func bitFlipEncode(b *circuitBuilder, block [3]int) {
	b.add(CNOT(block[0], block[1]), CNOT(block[0], block[2]))
}

func phaseFlipEncode(b *circuitBuilder, block [3]int) {
	bitFlipEncode(b, block)
	for _, q := range block {
		b.add(H(q))
	}
}

func injectFaults(b *circuitBuilder, errs ErrorPattern, fault Fault) {
	for _, q := range errs {
		switch fault {
		case FaultBit:
			b.add(X(q))
		case FaultPhase:
			b.add(Z(q))
		default:
			b.add(X(q), Z(q))
		}
	}
}

// bitFlipDecode recomputes the syndrome into block[1], block[2] and then
// forces block[0] to the majority vote.
func bitFlipDecode(b *circuitBuilder, block [3]int) {
	b.add(
		CNOT(block[0], block[1]),
		CNOT(block[0], block[2]),
		Toffoli(block[2], block[1], block[0]),
	)
}

func phaseFlipDecode(b *circuitBuilder, block [3]int) {
	for _, q := range block {
		b.add(H(q))
	}
	bitFlipDecode(b, block)
}
