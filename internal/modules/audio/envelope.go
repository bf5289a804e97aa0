package audio

// Envelope is a linear ADSR amplitude envelope. Times are in seconds,
// Sustain is a level ratio in [0, 1].
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// DefaultEnvelope matches the synthesizer's stock voice shaping.
func DefaultEnvelope() Envelope {
	return Envelope{Attack: 0.1, Decay: 0.1, Sustain: 0.7, Release: 0.2}
}

// Apply multiplies the envelope into the buffer in place and returns it.
// Segments that do not fit the buffer are clipped or skipped rather than
// erroring; Attack=Decay=Release=0 with Sustain=1 is the identity.
func (e Envelope) Apply(samples []float64, sampleRate int) []float64 {
	if len(samples) == 0 || sampleRate <= 0 {
		return samples
	}

	n := len(samples)
	env := make([]float64, n)
	for i := range env {
		env[i] = 1
	}

	attackSamples := int(e.Attack * float64(sampleRate))
	decaySamples := int(e.Decay * float64(sampleRate))
	releaseSamples := int(e.Release * float64(sampleRate))

	if attackSamples > 0 && attackSamples < n {
		ramp(env[:attackSamples], 0, 1)
	}

	decayStart := attackSamples
	decayEnd := decayStart + decaySamples
	if decayEnd > n {
		decayEnd = n
	}
	if decayEnd > decayStart {
		ramp(env[decayStart:decayEnd], 1, e.Sustain)
	}

	sustainStart := decayEnd
	sustainEnd := n - releaseSamples
	if sustainEnd < 0 {
		sustainEnd = 0
	}
	for i := sustainStart; i < sustainEnd; i++ {
		env[i] = e.Sustain
	}

	if releaseSamples > 0 && sustainEnd < n {
		ramp(env[sustainEnd:], e.Sustain, 0)
	}

	for i := range samples {
		samples[i] *= env[i]
	}
	return samples
}

// ramp fills dst with a linear sweep from start to end, endpoints inclusive.
func ramp(dst []float64, start, end float64) {
	if len(dst) == 1 {
		dst[0] = start
		return
	}
	step := (end - start) / float64(len(dst)-1)
	for i := range dst {
		dst[i] = start + step*float64(i)
	}
}
