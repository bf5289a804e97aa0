package synth

import (
	"math"

	"github.com/aristath/quantum-synth/internal/modules/audio"
	"github.com/aristath/quantum-synth/internal/modules/quantum"
)

// baseFrequency anchors the qubit voices on A3 (220 Hz). Qubits 0, 1 and 2
// land on 220, 330 and 440 Hz; larger registers continue the same series.
const baseFrequency = 220.0

// QubitFrequency returns the base frequency assigned to a qubit.
func QubitFrequency(qubit int) float64 {
	return baseFrequency * (1 + float64(qubit)/2)
}

// Mapper turns measured probabilities into audible voices per gate type.
type Mapper struct {
	synth     *audio.Synthesizer
	threshold float64
}

// NewMapper creates a mapper. Probabilities below threshold map to silence.
func NewMapper(synth *audio.Synthesizer, threshold float64) *Mapper {
	return &Mapper{synth: synth, threshold: threshold}
}

// ProbabilityToAmplitude maps a measurement probability onto a square-root
// volume curve so quiet-but-real probabilities stay audible. Anything below
// the threshold is silent.
func (m *Mapper) ProbabilityToAmplitude(p float64) float64 {
	if p < m.threshold {
		return 0
	}
	return math.Sqrt((p - m.threshold) / (1 - m.threshold))
}

// QubitVoice synthesizes one qubit's buffer for a single-qubit gate. The
// Hadamard voice is a harmonic chord, Pauli-X a toggle keyed on p > 0.5, and
// anything else (demo resynthesis) a plain sine.
func (m *Mapper) QubitVoice(qubit int, probability float64, gateType string, duration float64) []float64 {
	freq := QubitFrequency(qubit)
	amplitude := m.ProbabilityToAmplitude(probability)
	if amplitude == 0 {
		return make([]float64, m.synth.BufferLength(duration))
	}

	switch gateType {
	case quantum.GateHadamard:
		return m.synth.HarmonicChord(freq, duration, amplitude, nil)
	case quantum.GatePauliX:
		return m.synth.ToggleWave(freq, duration, amplitude, probability > 0.5)
	default:
		return m.synth.SineWave(freq, duration, amplitude, 0)
	}
}
