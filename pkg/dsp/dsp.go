package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Peak returns the maximum absolute sample value of a buffer
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Norm(samples, math.Inf(1))
}

// RMS returns the root-mean-square level of a buffer
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Norm(samples, 2) / math.Sqrt(float64(len(samples)))
}

// Mean returns the DC offset of a buffer
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// silenceFloor is the peak below which a buffer counts as silent. Rescaling
// cancellation residue up to a full-scale peak would turn rounding noise
// into signal.
const silenceFloor = 1e-12

// NormalizeTo rescales samples in place so their peak equals target.
// A silent buffer is left untouched.
func NormalizeTo(samples []float64, target float64) {
	peak := Peak(samples)
	if peak < silenceFloor {
		return
	}
	floats.Scale(target/peak, samples)
}

// Scale multiplies every sample by factor in place
func Scale(samples []float64, factor float64) {
	floats.Scale(factor, samples)
}
