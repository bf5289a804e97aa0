package quantum

import (
	"fmt"
	"math/cmplx"

	"github.com/rs/zerolog"
)

// NormTolerance is the allowed drift of the statevector norm from 1.
const NormTolerance = 1e-9

// GateRecord describes one applied gate. Records are immutable once appended;
// Ordinal is the position in the log.
type GateRecord struct {
	Name    string `json:"name"`
	Qubits  []int  `json:"qubits"`
	Ordinal int    `json:"ordinal"`
}

// MeasurementOutcome maps measured bitstrings (qubit n-1 first, qubit 0 last)
// to observed counts. Counts sum to the requested shot total.
type MeasurementOutcome map[string]int

// Register is an n-qubit statevector with a gate log. Amplitudes are indexed
// by basis state with qubit 0 as the least-significant bit. Not safe for
// concurrent use; the owning session serializes access.
type Register struct {
	numQubits int
	amps      []complex128
	gateLog   []GateRecord
	sampler   Sampler
	log       zerolog.Logger
}

// NewRegister creates a register of numQubits qubits in the |0...0> state.
// The sampler drives measurement; pass a seeded sampler for reproducible runs.
func NewRegister(numQubits int, sampler Sampler, log zerolog.Logger) (*Register, error) {
	if numQubits <= 0 {
		return nil, fmt.Errorf("%w: register needs at least one qubit, got %d", ErrInvalidGateParameters, numQubits)
	}
	r := &Register{
		numQubits: numQubits,
		sampler:   sampler,
		log:       log.With().Str("component", "quantum_register").Logger(),
	}
	r.Reset()
	return r, nil
}

// Reset returns the register to |0...0> and clears the gate log.
func (r *Register) Reset() {
	r.amps = make([]complex128, 1<<r.numQubits)
	r.amps[0] = 1
	r.gateLog = nil
}

// NumQubits returns the qubit count fixed at construction.
func (r *Register) NumQubits() int { return r.numQubits }

// Amplitudes returns a copy of the statevector.
func (r *Register) Amplitudes() []complex128 {
	out := make([]complex128, len(r.amps))
	copy(out, r.amps)
	return out
}

// ApplyHadamard applies H to qubit q.
func (r *Register) ApplyHadamard(q int) error {
	if err := validateQubit(r.numQubits, q); err != nil {
		return err
	}
	applyHadamard(r.amps, q)
	r.record(GateHadamard, q)
	return nil
}

// ApplyPauliX applies X to qubit q.
func (r *Register) ApplyPauliX(q int) error {
	if err := validateQubit(r.numQubits, q); err != nil {
		return err
	}
	applyPauliX(r.amps, q)
	r.record(GatePauliX, q)
	return nil
}

// ApplyCNOT applies a controlled-NOT with the given control and target.
// Validation happens before any amplitude is touched.
func (r *Register) ApplyCNOT(control, target int) error {
	if err := validateQubit(r.numQubits, control); err != nil {
		return err
	}
	if err := validateQubit(r.numQubits, target); err != nil {
		return err
	}
	if control == target {
		return fmt.Errorf("%w: cnot control and target are both %d", ErrInvalidGateParameters, control)
	}
	applyCNOT(r.amps, control, target)
	r.record(GateCNOT, control, target)
	return nil
}

func (r *Register) record(name string, qubits ...int) {
	r.gateLog = append(r.gateLog, GateRecord{
		Name:    name,
		Qubits:  qubits,
		Ordinal: len(r.gateLog),
	})
	r.log.Debug().Str("gate", name).Ints("qubits", qubits).Msg("Gate applied")
}

// GateLog returns a copy of the applied gate sequence.
func (r *Register) GateLog() []GateRecord {
	out := make([]GateRecord, len(r.gateLog))
	copy(out, r.gateLog)
	return out
}

// GateCount returns the number of gates applied since the last reset.
func (r *Register) GateCount() int { return len(r.gateLog) }

// CircuitDepth returns the circuit depth: the longest chain of gates that
// must execute sequentially because they share a qubit.
func (r *Register) CircuitDepth() int {
	depths := make([]int, r.numQubits)
	max := 0
	for _, g := range r.gateLog {
		layer := 0
		for _, q := range g.Qubits {
			if depths[q] > layer {
				layer = depths[q]
			}
		}
		layer++
		for _, q := range g.Qubits {
			depths[q] = layer
		}
		if layer > max {
			max = layer
		}
	}
	return max
}

// Norm returns the sum of squared amplitude magnitudes. 1 within
// NormTolerance after every operation; anything else is a bug upstream.
func (r *Register) Norm() float64 {
	total := 0.0
	for _, a := range r.amps {
		m := cmplx.Abs(a)
		total += m * m
	}
	return total
}

// Probabilities returns the analytic basis-state distribution |a_i|^2.
func (r *Register) Probabilities() []float64 {
	probs := make([]float64, len(r.amps))
	for i, a := range r.amps {
		m := cmplx.Abs(a)
		probs[i] = m * m
	}
	return probs
}

// MeasureSample draws shots independent samples from the basis-state
// distribution and aggregates them into a MeasurementOutcome. The register
// itself does not collapse.
func (r *Register) MeasureSample(shots int) (MeasurementOutcome, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("%w: shots must be positive, got %d", ErrInvalidGateParameters, shots)
	}
	probs := r.Probabilities()
	if norm := r.Norm(); norm < 1-NormTolerance || norm > 1+NormTolerance {
		return nil, fmt.Errorf("statevector norm %v violates unit invariant", norm)
	}

	counts, err := r.sampler.Counts(probs, shots)
	if err != nil {
		return nil, fmt.Errorf("sampling failed: %w", err)
	}

	outcome := make(MeasurementOutcome)
	for state, count := range counts {
		if count == 0 {
			continue
		}
		outcome[r.bitstring(state)] += count
	}
	return outcome, nil
}

// QubitProbabilities estimates, per qubit, the probability of measuring |1>.
// This is a sampling estimate over shots draws, not the analytic marginal;
// it converges to the marginal as shots grows.
func (r *Register) QubitProbabilities(shots int) (map[int]float64, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("%w: shots must be positive, got %d", ErrInvalidGateParameters, shots)
	}
	probs := r.Probabilities()
	if norm := r.Norm(); norm < 1-NormTolerance || norm > 1+NormTolerance {
		return nil, fmt.Errorf("statevector norm %v violates unit invariant", norm)
	}

	counts, err := r.sampler.Counts(probs, shots)
	if err != nil {
		return nil, fmt.Errorf("sampling failed: %w", err)
	}

	marginals := make(map[int]float64, r.numQubits)
	for q := 0; q < r.numQubits; q++ {
		marginals[q] = 0
	}
	for state, count := range counts {
		if count == 0 {
			continue
		}
		for q := 0; q < r.numQubits; q++ {
			if state&(1<<q) != 0 {
				marginals[q] += float64(count) / float64(shots)
			}
		}
	}
	return marginals, nil
}

// bitstring renders a basis-state index with qubit n-1 first and qubit 0 last.
func (r *Register) bitstring(state int) string {
	return fmt.Sprintf("%0*b", r.numQubits, state)
}
