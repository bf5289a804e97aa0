package quantum

import (
	"errors"
	"fmt"
	"math"
)

// Gate names as they appear in the gate log and over the API.
const (
	GateHadamard = "h"
	GatePauliX   = "x"
	GateCNOT     = "cx"
)

var (
	// ErrInvalidQubitIndex is returned when a gate targets a qubit outside [0, n).
	ErrInvalidQubitIndex = errors.New("qubit index out of range")
	// ErrInvalidGateParameters is returned for malformed gate arguments,
	// e.g. a CNOT whose control and target coincide.
	ErrInvalidGateParameters = errors.New("invalid gate parameters")
)

var invSqrt2 = complex(1/math.Sqrt2, 0)

// applyHadamard transforms every amplitude pair differing only in bit q:
// a0' = (a0+a1)/sqrt2, a1' = (a0-a1)/sqrt2.
func applyHadamard(amps []complex128, q int) {
	bit := 1 << q
	for i := range amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := amps[i], amps[j]
		amps[i] = (a0 + a1) * invSqrt2
		amps[j] = (a0 - a1) * invSqrt2
	}
}

// applyPauliX swaps the amplitudes of every pair differing only in bit q.
func applyPauliX(amps []complex128, q int) {
	bit := 1 << q
	for i := range amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		amps[i], amps[j] = amps[j], amps[i]
	}
}

// applyCNOT flips the target bit of every basis state whose control bit is set.
func applyCNOT(amps []complex128, control, target int) {
	cbit := 1 << control
	tbit := 1 << target
	for i := range amps {
		if i&cbit == 0 || i&tbit != 0 {
			continue
		}
		j := i | tbit
		amps[i], amps[j] = amps[j], amps[i]
	}
}

func validateQubit(numQubits, q int) error {
	if q < 0 || q >= numQubits {
		return fmt.Errorf("%w: qubit %d with %d qubits", ErrInvalidQubitIndex, q, numQubits)
	}
	return nil
}
