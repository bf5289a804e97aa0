package audio

import (
	"errors"
	"fmt"
	"math"

	"github.com/aristath/quantum-synth/pkg/dsp"
)

// ErrInvalidArguments is returned for mismatched slice lengths across
// synthesis and mixing calls.
var ErrInvalidArguments = errors.New("invalid arguments")

// fadeDuration is the linear fade-in/out applied to raw sine buffers to
// suppress edge clicks.
const fadeDuration = 0.01

// DefaultHarmonics are the chord ratios used when the caller passes none.
var DefaultHarmonics = []float64{1.0, 1.25, 1.5}

// Synthesizer generates time-domain sample buffers at a fixed sample rate.
type Synthesizer struct {
	sampleRate int
}

// NewSynthesizer creates a synthesizer. The sample rate must be positive.
func NewSynthesizer(sampleRate int) (*Synthesizer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidArguments, sampleRate)
	}
	return &Synthesizer{sampleRate: sampleRate}, nil
}

// SampleRate returns the configured sample rate in Hz.
func (s *Synthesizer) SampleRate() int { return s.sampleRate }

// BufferLength returns the sample count for a duration in seconds.
func (s *Synthesizer) BufferLength(duration float64) int {
	n := int(math.Round(float64(s.sampleRate) * duration))
	if n < 0 {
		return 0
	}
	return n
}

// SineWave generates amplitude*sin(2*pi*freq*t + phase) with a 10ms linear
// fade at both ends. Non-positive frequency or duration yields silence.
func (s *Synthesizer) SineWave(freq, duration, amplitude, phase float64) []float64 {
	n := s.BufferLength(duration)
	wave := make([]float64, n)
	if freq <= 0 || duration <= 0 {
		return wave
	}

	omega := 2 * math.Pi * freq / float64(s.sampleRate)
	for i := range wave {
		wave[i] = amplitude * math.Sin(omega*float64(i)+phase)
	}

	s.applyFades(wave)
	return wave
}

// applyFades ramps the buffer edges linearly over the fade window. Buffers
// shorter than two fade windows are left untouched.
func (s *Synthesizer) applyFades(wave []float64) {
	fade := int(fadeDuration * float64(s.sampleRate))
	if fade <= 0 || len(wave) <= 2*fade {
		return
	}
	for i := 0; i < fade; i++ {
		gain := float64(i) / float64(fade)
		wave[i] *= gain
		wave[len(wave)-1-i] *= gain
	}
}

// HarmonicChord sums sine partials at base*ratio for each harmonic ratio,
// with per-partial amplitude amplitude/len * (1 - 0.1*i), then peak-normalizes
// the chord back to amplitude. Nil harmonics selects DefaultHarmonics.
func (s *Synthesizer) HarmonicChord(baseFreq, duration, amplitude float64, harmonics []float64) []float64 {
	if len(harmonics) == 0 {
		harmonics = DefaultHarmonics
	}

	chord := make([]float64, s.BufferLength(duration))
	for i, ratio := range harmonics {
		partialAmp := amplitude / float64(len(harmonics)) * (1.0 - 0.1*float64(i))
		partial := s.SineWave(baseFreq*ratio, duration, partialAmp, 0)
		for j := range chord {
			chord[j] += partial[j]
		}
	}

	dsp.NormalizeTo(chord, amplitude)
	return chord
}

// ToggleWave is silence when off; when on it layers a second-harmonic boost
// at 0.3*amplitude over the fundamental, summed without renormalization.
func (s *Synthesizer) ToggleWave(freq, duration, amplitude float64, isOn bool) []float64 {
	if !isOn {
		return make([]float64, s.BufferLength(duration))
	}

	wave := s.SineWave(freq, duration, amplitude, 0)
	boost := s.SineWave(freq*2, duration, amplitude*0.3, 0)
	for i := range wave {
		wave[i] += boost[i]
	}
	return wave
}

// SynchronizedHarmony sums sines for every frequency whose amplitude clears
// the 0.01 floor. With two or more frequencies and a positive syncFactor, the
// sum is shaped by a beat envelope 0.5*(1+cos(2*pi*beatFreq*t)) where
// beatFreq = |f0-f1|*syncFactor. The result is peak-normalized to the largest
// requested amplitude.
func (s *Synthesizer) SynchronizedHarmony(freqs []float64, duration float64, amplitudes []float64, syncFactor float64) ([]float64, error) {
	if len(freqs) != len(amplitudes) {
		return nil, fmt.Errorf("%w: %d frequencies vs %d amplitudes", ErrInvalidArguments, len(freqs), len(amplitudes))
	}

	harmony := make([]float64, s.BufferLength(duration))
	maxAmp := 0.0
	for i, freq := range freqs {
		if amplitudes[i] > maxAmp {
			maxAmp = amplitudes[i]
		}
		if amplitudes[i] <= 0.01 {
			continue
		}
		wave := s.SineWave(freq, duration, amplitudes[i], 0)
		for j := range harmony {
			harmony[j] += wave[j]
		}
	}

	if syncFactor > 0 && len(freqs) >= 2 {
		beatFreq := math.Abs(freqs[0]-freqs[1]) * syncFactor
		if beatFreq > 0 {
			omega := 2 * math.Pi * beatFreq / float64(s.sampleRate)
			for i := range harmony {
				harmony[i] *= 0.5 * (1 + math.Cos(omega*float64(i)))
			}
		}
	}

	dsp.NormalizeTo(harmony, maxAmp)
	return harmony, nil
}
