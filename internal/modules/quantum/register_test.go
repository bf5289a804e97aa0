package quantum

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func newTestRegister(t *testing.T, n int) *Register {
	t.Helper()
	reg, err := NewRegister(n, NewCategoricalSampler(42), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create register: %v", err)
	}
	return reg
}

func TestNewRegister_RejectsNonPositiveSize(t *testing.T) {
	_, err := NewRegister(0, NewCategoricalSampler(1), zerolog.Nop())
	if !errors.Is(err, ErrInvalidGateParameters) {
		t.Errorf("Expected ErrInvalidGateParameters, got %v", err)
	}
}

func TestRegister_InitialState(t *testing.T) {
	reg := newTestRegister(t, 3)

	amps := reg.Amplitudes()
	if len(amps) != 8 {
		t.Fatalf("Expected 8 amplitudes, got %d", len(amps))
	}
	if amps[0] != 1 {
		t.Errorf("Expected |000> amplitude 1, got %v", amps[0])
	}
	if reg.GateCount() != 0 || reg.CircuitDepth() != 0 {
		t.Errorf("Fresh register should have empty circuit")
	}
}

func TestRegister_ValidationBeforeMutation(t *testing.T) {
	reg := newTestRegister(t, 2)

	if err := reg.ApplyHadamard(5); !errors.Is(err, ErrInvalidQubitIndex) {
		t.Errorf("Expected ErrInvalidQubitIndex, got %v", err)
	}
	if err := reg.ApplyCNOT(1, 1); !errors.Is(err, ErrInvalidGateParameters) {
		t.Errorf("Expected ErrInvalidGateParameters for equal control/target, got %v", err)
	}

	// Failed gates must leave the state and log untouched.
	if reg.GateCount() != 0 {
		t.Errorf("Rejected gates must not be logged, count = %d", reg.GateCount())
	}
	if reg.Amplitudes()[0] != 1 {
		t.Error("Rejected gates must not mutate the state")
	}
}

func TestRegister_NormInvariant(t *testing.T) {
	reg := newTestRegister(t, 3)

	ops := []func() error{
		func() error { return reg.ApplyHadamard(0) },
		func() error { return reg.ApplyPauliX(1) },
		func() error { return reg.ApplyCNOT(0, 2) },
		func() error { return reg.ApplyHadamard(2) },
		func() error { return reg.ApplyCNOT(2, 1) },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("Gate %d failed: %v", i, err)
		}
		if n := reg.Norm(); math.Abs(n-1) > NormTolerance {
			t.Fatalf("Norm %v after gate %d violates unit invariant", n, i)
		}
	}
}

func TestRegister_GateLogAndDepth(t *testing.T) {
	reg := newTestRegister(t, 3)

	reg.ApplyHadamard(0)
	reg.ApplyHadamard(1)
	reg.ApplyCNOT(0, 1)
	reg.ApplyPauliX(2)

	log := reg.GateLog()
	if len(log) != 4 {
		t.Fatalf("Expected 4 log entries, got %d", len(log))
	}
	wantNames := []string{GateHadamard, GateHadamard, GateCNOT, GatePauliX}
	for i, rec := range log {
		if rec.Name != wantNames[i] || rec.Ordinal != i {
			t.Errorf("Entry %d = %+v, want name %s ordinal %d", i, rec, wantNames[i], i)
		}
	}

	// H(0) and H(1) run in parallel, the CNOT stacks on both, X(2) is free.
	if depth := reg.CircuitDepth(); depth != 2 {
		t.Errorf("Expected depth 2, got %d", depth)
	}
	if reg.GateCount() != 4 {
		t.Errorf("Expected gate count 4, got %d", reg.GateCount())
	}
}

func TestRegister_Reset(t *testing.T) {
	reg := newTestRegister(t, 2)
	reg.ApplyHadamard(0)
	reg.ApplyCNOT(0, 1)

	reg.Reset()

	if reg.GateCount() != 0 {
		t.Errorf("Reset should clear the gate log, count = %d", reg.GateCount())
	}
	if reg.Amplitudes()[0] != 1 {
		t.Error("Reset should restore |00>")
	}
}

func TestMeasureSample_PointMass(t *testing.T) {
	reg := newTestRegister(t, 3)
	reg.ApplyPauliX(0)

	outcome, err := reg.MeasureSample(1000)
	if err != nil {
		t.Fatalf("MeasureSample failed: %v", err)
	}
	if len(outcome) != 1 || outcome["001"] != 1000 {
		t.Errorf("Expected all 1000 shots on 001, got %v", outcome)
	}
}

func TestMeasureSample_RejectsNonPositiveShots(t *testing.T) {
	reg := newTestRegister(t, 1)
	if _, err := reg.MeasureSample(0); !errors.Is(err, ErrInvalidGateParameters) {
		t.Errorf("Expected ErrInvalidGateParameters, got %v", err)
	}
}

func TestQubitProbabilities_HadamardMarginal(t *testing.T) {
	reg := newTestRegister(t, 3)
	reg.ApplyHadamard(0)

	probs, err := reg.QubitProbabilities(100000)
	if err != nil {
		t.Fatalf("QubitProbabilities failed: %v", err)
	}

	if probs[0] < 0.48 || probs[0] > 0.52 {
		t.Errorf("Qubit 0 marginal %v too far from 0.5", probs[0])
	}
	// Untouched qubits carry no sampling noise at all.
	if probs[1] != 0 || probs[2] != 0 {
		t.Errorf("Untouched qubits should be exactly 0, got %v and %v", probs[1], probs[2])
	}
}

func TestQubitProbabilities_DeterministicState(t *testing.T) {
	reg := newTestRegister(t, 2)
	reg.ApplyPauliX(0)
	reg.ApplyCNOT(0, 1)

	probs, err := reg.QubitProbabilities(512)
	if err != nil {
		t.Fatalf("QubitProbabilities failed: %v", err)
	}
	if probs[0] != 1 || probs[1] != 1 {
		t.Errorf("X then CNOT should pin both qubits to 1, got %v", probs)
	}
}
