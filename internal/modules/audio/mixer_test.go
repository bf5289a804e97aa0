package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/aristath/quantum-synth/pkg/dsp"
)

func TestMix_Empty(t *testing.T) {
	m := NewMixer()

	mixed, err := m.Mix(nil, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	if len(mixed) != 0 {
		t.Errorf("No tracks should mix to an empty buffer, got %d samples", len(mixed))
	}
}

func TestMix_NormalizesToCeiling(t *testing.T) {
	m := NewMixer()

	mixed, err := m.Mix([][]float64{{0.5, -0.25}}, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	if math.Abs(mixed[0]-0.8) > 1e-9 || math.Abs(mixed[1]+0.4) > 1e-9 {
		t.Errorf("Expected [0.8 -0.4], got %v", mixed)
	}
}

func TestMix_PadsToLongest(t *testing.T) {
	m := NewMixer()

	mixed, err := m.Mix([][]float64{
		{1, 1},
		{1, 1, 1, 1},
	}, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	if len(mixed) != 4 {
		t.Fatalf("Expected padding to 4 samples, got %d", len(mixed))
	}
	// First half sums both tracks, second half only the longer one.
	if math.Abs(mixed[0]-0.8) > 1e-9 || math.Abs(mixed[3]-0.4) > 1e-9 {
		t.Errorf("Expected [0.8 0.8 0.4 0.4], got %v", mixed)
	}
}

func TestMix_Weights(t *testing.T) {
	m := NewMixer()

	mixed, err := m.Mix([][]float64{
		{1, 0},
		{0, 1},
	}, []float64{1.0, 0.5})
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	if math.Abs(mixed[0]-0.8) > 1e-9 || math.Abs(mixed[1]-0.4) > 1e-9 {
		t.Errorf("Expected [0.8 0.4], got %v", mixed)
	}
}

func TestMix_WeightMismatch(t *testing.T) {
	m := NewMixer()

	_, err := m.Mix([][]float64{{1}, {1}}, []float64{1})
	if !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("Expected ErrInvalidArguments, got %v", err)
	}
}

func TestMix_SilenceStaysSilent(t *testing.T) {
	m := NewMixer()

	mixed, err := m.Mix([][]float64{{0, 0, 0}}, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	if dsp.Peak(mixed) != 0 {
		t.Errorf("Silence should not be rescaled, got %v", mixed)
	}
}

func TestMix_OppositePhasesCancel(t *testing.T) {
	m := NewMixer()
	s, err := NewSynthesizer(8000)
	if err != nil {
		t.Fatalf("Failed to create synthesizer: %v", err)
	}

	a := s.SineWave(440, 0.5, 0.5, 0)
	b := s.SineWave(440, 0.5, 0.5, math.Pi)

	mixed, err := m.Mix([][]float64{a, b}, nil)
	if err != nil {
		t.Fatalf("Mix failed: %v", err)
	}
	for i, v := range mixed {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("Sample %d = %v, want silence", i, v)
		}
	}
}

func TestMixWithMasterVolume(t *testing.T) {
	m := NewMixer()

	mixed, err := m.MixWithMasterVolume([][]float64{{1, -1}}, nil, 0.5)
	if err != nil {
		t.Fatalf("MixWithMasterVolume failed: %v", err)
	}
	// Master volume applies after the 0.8 ceiling.
	if math.Abs(mixed[0]-0.4) > 1e-9 || math.Abs(mixed[1]+0.4) > 1e-9 {
		t.Errorf("Expected [0.4 -0.4], got %v", mixed)
	}
}
