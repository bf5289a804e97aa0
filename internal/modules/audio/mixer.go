package audio

import (
	"fmt"

	"github.com/aristath/quantum-synth/pkg/dsp"
)

// mixCeiling is the peak the mixed buffer is normalized to before master
// volume, leaving headroom against clipping.
const mixCeiling = 0.8

// Mixer combines weighted sample buffers into one normalized buffer.
type Mixer struct{}

// NewMixer creates a mixer.
func NewMixer() *Mixer { return &Mixer{} }

// Mix pads every track to the longest length with trailing silence, sums
// them weighted, and rescales the sum so its peak sits at the 0.8 ceiling.
// A nil weights slice means unit weight per track; a mismatched one is an
// error. Silence stays silence.
func (m *Mixer) Mix(tracks [][]float64, weights []float64) ([]float64, error) {
	if len(tracks) == 0 {
		return []float64{}, nil
	}
	if weights == nil {
		weights = make([]float64, len(tracks))
		for i := range weights {
			weights[i] = 1.0
		}
	}
	if len(weights) != len(tracks) {
		return nil, fmt.Errorf("%w: %d weights vs %d tracks", ErrInvalidArguments, len(weights), len(tracks))
	}

	maxLen := 0
	for _, track := range tracks {
		if len(track) > maxLen {
			maxLen = len(track)
		}
	}

	mixed := make([]float64, maxLen)
	for i, track := range tracks {
		for j, sample := range track {
			mixed[j] += sample * weights[i]
		}
	}

	dsp.NormalizeTo(mixed, mixCeiling)
	return mixed, nil
}

// MixWithMasterVolume mixes and then applies a master volume scalar after
// normalization.
func (m *Mixer) MixWithMasterVolume(tracks [][]float64, weights []float64, masterVolume float64) ([]float64, error) {
	mixed, err := m.Mix(tracks, weights)
	if err != nil {
		return nil, err
	}
	dsp.Scale(mixed, masterVolume)
	return mixed, nil
}
