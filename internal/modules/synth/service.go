package synth

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/quantum-synth/internal/events"
	"github.com/aristath/quantum-synth/internal/modules/audio"
	"github.com/aristath/quantum-synth/internal/modules/quantum"
)

// historyCap bounds the in-memory event history; older entries roll off.
const historyCap = 100

// gateTypeDemo marks resynthesis after a demo load; it selects the plain
// sine voice for every qubit.
const gateTypeDemo = "demo"

// gateTypeReset marks the history entry a reset leaves behind.
const gateTypeReset = "reset"

// Config holds synthesis parameters validated upstream by the config package.
type Config struct {
	SampleRate              int
	DefaultDuration         float64
	MeasurementShots        int
	MinProbabilityThreshold float64
	EnableEnvelope          bool
	MasterVolume            float64
}

// Service orchestrates the register and the audio pipeline for one session.
// Every gate application re-measures the register and replaces the current
// track set with voices for exactly the qubits that gate touched. All public
// methods serialize on one mutex; the core beneath holds no locks.
type Service struct {
	cfg      Config
	register *quantum.Register
	synth    *audio.Synthesizer
	mapper   *Mapper
	mixer    *audio.Mixer
	encoder  *audio.Encoder
	envelope audio.Envelope
	repo     *Repository
	events   *events.Manager
	log      zerolog.Logger

	mu        sync.Mutex
	tracks    []AudioTrack
	history   []SynthesisEvent
	lastProbs map[int]float64
}

// NewService creates a synthesizer session. repo may be nil to run without
// persistence.
func NewService(cfg Config, register *quantum.Register, repo *Repository, eventMgr *events.Manager, log zerolog.Logger) (*Service, error) {
	synth, err := audio.NewSynthesizer(cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	encoder, err := audio.NewEncoder(cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	s := &Service{
		cfg:      cfg,
		register: register,
		synth:    synth,
		mapper:   NewMapper(synth, cfg.MinProbabilityThreshold),
		mixer:    audio.NewMixer(),
		encoder:  encoder,
		envelope: audio.DefaultEnvelope(),
		repo:     repo,
		events:   eventMgr,
		log:      log.With().Str("service", "synth").Logger(),
	}
	s.resetState()
	return s, nil
}

func (s *Service) resetState() {
	s.tracks = nil
	probs := make(map[int]float64, s.register.NumQubits())
	for q := 0; q < s.register.NumQubits(); q++ {
		probs[q] = 0
	}
	s.lastProbs = probs
}

// Reset clears the register, the gate log and the track set.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.register.Reset()
	s.resetState()

	// Resets are transitions too; the history keeps a trace of them.
	s.appendHistory(SynthesisEvent{
		ID:             uuid.NewString(),
		Timestamp:      time.Now(),
		GateType:       gateTypeReset,
		AffectedQubits: []int{},
		Probabilities:  s.lastProbs,
		TrackCount:     0,
	})

	s.events.Emit(events.CircuitReset, "synth", nil)
	s.log.Info().Msg("Circuit and tracks reset")
}

// ApplyHadamard applies H to a qubit and resynthesizes its voice.
func (s *Service) ApplyHadamard(qubit int) (GateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.register.ApplyHadamard(qubit); err != nil {
		return GateResult{}, err
	}
	return s.synthesize(quantum.GateHadamard, []int{qubit}), nil
}

// ApplyPauliX applies X to a qubit and resynthesizes its voice.
func (s *Service) ApplyPauliX(qubit int) (GateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.register.ApplyPauliX(qubit); err != nil {
		return GateResult{}, err
	}
	return s.synthesize(quantum.GatePauliX, []int{qubit}), nil
}

// ApplyCNOT applies a controlled-NOT and resynthesizes both affected qubits
// as one synchronized harmony.
func (s *Service) ApplyCNOT(control, target int) (GateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.register.ApplyCNOT(control, target); err != nil {
		return GateResult{}, err
	}
	return s.synthesize(quantum.GateCNOT, []int{control, target}), nil
}

// LoadDemo replaces the circuit with a predefined gate sequence and
// resynthesizes every qubit.
func (s *Service) LoadDemo(name string) (GateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gates, ok := demoCircuits[name]
	if !ok {
		return GateResult{}, fmt.Errorf("%w: %q", ErrUnknownDemo, name)
	}
	if span := demoQubitSpan(gates); span > s.register.NumQubits() {
		return GateResult{}, fmt.Errorf("%w: demo %q needs %d qubits, register has %d",
			quantum.ErrInvalidGateParameters, name, span, s.register.NumQubits())
	}

	s.register.Reset()
	for _, g := range gates {
		var err error
		switch g.name {
		case quantum.GateHadamard:
			err = s.register.ApplyHadamard(g.qubits[0])
		case quantum.GatePauliX:
			err = s.register.ApplyPauliX(g.qubits[0])
		case quantum.GateCNOT:
			err = s.register.ApplyCNOT(g.qubits[0], g.qubits[1])
		}
		if err != nil {
			return GateResult{}, fmt.Errorf("failed to apply demo gate: %w", err)
		}
	}

	allQubits := make([]int, s.register.NumQubits())
	for q := range allQubits {
		allQubits[q] = q
	}
	result := s.synthesize(gateTypeDemo, allQubits)

	s.events.Emit(events.DemoLoaded, "synth", map[string]interface{}{"demo": name})
	s.log.Info().Str("demo", name).Msg("Demo circuit loaded")
	return result, nil
}

// synthesize re-measures the register and replaces the track set with fresh
// voices for the affected qubits. Callers hold the mutex.
func (s *Service) synthesize(gateType string, affected []int) GateResult {
	probs := s.measureWithFallback()
	s.lastProbs = probs

	var newTracks []AudioTrack
	if gateType == quantum.GateCNOT {
		newTracks = s.synthesizeHarmony(probs, affected)
	} else {
		for _, q := range affected {
			newTracks = append(newTracks, s.synthesizeVoice(gateType, q, probs[q]))
		}
	}
	s.tracks = newTracks

	event := SynthesisEvent{
		ID:             uuid.NewString(),
		Timestamp:      time.Now(),
		GateType:       gateType,
		AffectedQubits: affected,
		Probabilities:  probs,
		TrackCount:     len(newTracks),
	}
	s.appendHistory(event)

	s.events.Emit(events.GateApplied, "synth", map[string]interface{}{
		"gate_type": gateType,
		"qubits":    affected,
		"tracks":    len(newTracks),
	})

	return GateResult{
		GateType:       gateType,
		AffectedQubits: affected,
		Probabilities:  probs,
		TrackCount:     len(newTracks),
	}
}

// measureWithFallback samples the register. A sampling failure degrades to
// the all-zero outcome so an interactive session never aborts mid-gesture.
func (s *Service) measureWithFallback() map[int]float64 {
	probs, err := s.register.QubitProbabilities(s.cfg.MeasurementShots)
	if err == nil {
		return probs
	}

	s.log.Warn().Err(err).Msg("Measurement failed, treating all shots as |0...0>")
	s.events.Emit(events.MeasurementFallback, "synth", map[string]interface{}{"error": err.Error()})

	fallback := make(map[int]float64, s.register.NumQubits())
	for q := 0; q < s.register.NumQubits(); q++ {
		fallback[q] = 0
	}
	return fallback
}

// synthesizeVoice builds one single-qubit track, envelope-shaped when enabled.
func (s *Service) synthesizeVoice(gateType string, qubit int, probability float64) AudioTrack {
	samples := s.mapper.QubitVoice(qubit, probability, gateType, s.cfg.DefaultDuration)
	if s.cfg.EnableEnvelope && len(samples) > 0 {
		samples = s.envelope.Apply(samples, s.cfg.SampleRate)
	}
	return AudioTrack{
		QubitID:     qubit,
		Frequency:   QubitFrequency(qubit),
		Probability: probability,
		Amplitude:   s.mapper.ProbabilityToAmplitude(probability),
		GateType:    gateType,
		Samples:     samples,
		Duration:    s.cfg.DefaultDuration,
	}
}

// synthesizeHarmony builds the CNOT pair: one shared synchronized-harmony
// buffer, rescaled per qubit by its share of the loudest amplitude.
func (s *Service) synthesizeHarmony(probs map[int]float64, affected []int) []AudioTrack {
	freqs := make([]float64, len(affected))
	amps := make([]float64, len(affected))
	maxAmp := 0.0
	for i, q := range affected {
		freqs[i] = QubitFrequency(q)
		amps[i] = s.mapper.ProbabilityToAmplitude(probs[q])
		if amps[i] > maxAmp {
			maxAmp = amps[i]
		}
	}

	harmony, err := s.synth.SynchronizedHarmony(freqs, s.cfg.DefaultDuration, amps, 0.8)
	if err != nil {
		// Lengths match by construction; treat as silence if it ever trips.
		s.log.Error().Err(err).Msg("Harmony synthesis failed")
		harmony = make([]float64, s.synth.BufferLength(s.cfg.DefaultDuration))
	}

	tracks := make([]AudioTrack, 0, len(affected))
	for i, q := range affected {
		share := 0.0
		if maxAmp > 0 {
			share = amps[i] / maxAmp
		}
		samples := make([]float64, len(harmony))
		for j, v := range harmony {
			samples[j] = v * share
		}
		tracks = append(tracks, AudioTrack{
			QubitID:     q,
			Frequency:   freqs[i],
			Probability: probs[q],
			Amplitude:   amps[i],
			GateType:    quantum.GateCNOT,
			Samples:     samples,
			Duration:    s.cfg.DefaultDuration,
		})
	}
	return tracks
}

func (s *Service) appendHistory(event SynthesisEvent) {
	s.history = append(s.history, event)
	if len(s.history) > historyCap {
		s.history = s.history[len(s.history)-historyCap:]
	}
	if s.repo != nil {
		if err := s.repo.Create(&event); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist synthesis event")
		}
	}
}

// MixedAudio mixes the current track set into one buffer: amplitude-weighted
// sum, peak-limited, then master volume. With no audible tracks it returns
// silence of the default duration.
func (s *Service) MixedAudio() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mixLocked()
}

func (s *Service) mixLocked() []float64 {
	var buffers [][]float64
	var weights []float64
	for _, track := range s.tracks {
		if len(track.Samples) == 0 {
			continue
		}
		buffers = append(buffers, track.Samples)
		weights = append(weights, track.Amplitude)
	}
	if len(buffers) == 0 {
		return make([]float64, s.synth.BufferLength(s.cfg.DefaultDuration))
	}

	mixed, err := s.mixer.MixWithMasterVolume(buffers, weights, s.cfg.MasterVolume)
	if err != nil {
		s.log.Error().Err(err).Msg("Mixing failed")
		return make([]float64, s.synth.BufferLength(s.cfg.DefaultDuration))
	}
	return mixed
}

// WAV returns the mixed audio as a complete RIFF/WAVE container.
func (s *Service) WAV() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	wav := s.encoder.WAVBytes(s.mixLocked())
	s.events.Emit(events.AudioExported, "synth", map[string]interface{}{"bytes": len(wav)})
	return wav
}

// AudioBase64 returns the mixed audio WAV as base64 text.
func (s *Service) AudioBase64() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder.Base64(s.mixLocked())
}

// QubitProbabilities returns the probability snapshot from the most recent
// measurement. All zeros before any gate is applied.
func (s *Service) QubitProbabilities() map[int]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]float64, len(s.lastProbs))
	for q, p := range s.lastProbs {
		out[q] = p
	}
	return out
}

// TrackSummaries returns buffer-free views of the current track set.
func (s *Service) TrackSummaries() []TrackSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]TrackSummary, 0, len(s.tracks))
	for _, t := range s.tracks {
		summaries = append(summaries, TrackSummary{
			QubitID:     t.QubitID,
			Frequency:   t.Frequency,
			Probability: t.Probability,
			Amplitude:   t.Amplitude,
			GateType:    t.GateType,
			Duration:    t.Duration,
			SampleCount: len(t.Samples),
		})
	}
	return summaries
}

// GateSequence returns the ordered gate log.
func (s *Service) GateSequence() []quantum.GateRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.GateLog()
}

// CircuitInfo returns depth, gate count and the frequency map.
func (s *Service) CircuitInfo() CircuitInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	freqs := make(map[int]float64, s.register.NumQubits())
	for q := 0; q < s.register.NumQubits(); q++ {
		freqs[q] = QubitFrequency(q)
	}
	return CircuitInfo{
		NumQubits:        s.register.NumQubits(),
		CircuitDepth:     s.register.CircuitDepth(),
		GateCount:        s.register.GateCount(),
		QubitFrequencies: freqs,
	}
}

// RecentEvents returns up to limit of the newest history entries, newest
// first.
func (s *Service) RecentEvents(limit int) []SynthesisEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]SynthesisEvent, 0, limit)
	for i := len(s.history) - 1; i >= len(s.history)-limit; i-- {
		out = append(out, s.history[i])
	}
	return out
}

// SampleRate returns the session sample rate in Hz.
func (s *Service) SampleRate() int { return s.cfg.SampleRate }
