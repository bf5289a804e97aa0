package synth

import "time"

// AudioTrack is one synthesized voice for a qubit. The orchestrator owns the
// current track set exclusively and replaces it wholesale on every gate
// application.
type AudioTrack struct {
	QubitID     int
	Frequency   float64
	Probability float64
	Amplitude   float64
	GateType    string
	Samples     []float64
	Duration    float64
}

// TrackSummary is the read-only view of a track exposed to presentation
// collaborators. It never carries the sample buffer.
type TrackSummary struct {
	QubitID     int     `json:"qubit_id"`
	Frequency   float64 `json:"frequency"`
	Probability float64 `json:"probability"`
	Amplitude   float64 `json:"amplitude"`
	GateType    string  `json:"gate_type"`
	Duration    float64 `json:"duration"`
	SampleCount int     `json:"sample_count"`
}

// SynthesisEvent records one orchestrator transition in the append-only
// history.
type SynthesisEvent struct {
	ID             string          `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	GateType       string          `json:"gate_type"`
	AffectedQubits []int           `json:"affected_qubits"`
	Probabilities  map[int]float64 `json:"probabilities"`
	TrackCount     int             `json:"track_count"`
}

// GateResult reports the outcome of a gate application back to the caller.
type GateResult struct {
	GateType       string          `json:"gate_type"`
	AffectedQubits []int           `json:"affected_qubits"`
	Probabilities  map[int]float64 `json:"probabilities"`
	TrackCount     int             `json:"track_count"`
}

// CircuitInfo summarizes the circuit for read-only consumers.
type CircuitInfo struct {
	NumQubits        int             `json:"num_qubits"`
	CircuitDepth     int             `json:"circuit_depth"`
	GateCount        int             `json:"gate_count"`
	QubitFrequencies map[int]float64 `json:"qubit_frequencies"`
}
