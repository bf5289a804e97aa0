package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	wavHeaderSize = 44
	bitsPerSample = 16
	numChannels   = 1
	pcmFormat     = 1
)

// Encoder serializes float sample buffers to single-channel 16-bit PCM WAV.
type Encoder struct {
	sampleRate int
}

// NewEncoder creates an encoder for the given sample rate.
func NewEncoder(sampleRate int) (*Encoder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidArguments, sampleRate)
	}
	return &Encoder{sampleRate: sampleRate}, nil
}

// SampleRate returns the configured sample rate in Hz.
func (e *Encoder) SampleRate() int { return e.sampleRate }

// PCM16 converts float samples in [-1, 1] to signed 16-bit integers via
// round(sample*32767), clamped to the representable range.
func PCM16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(s * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// WAVBytes serializes samples as a complete RIFF/WAVE container: 44-byte
// header plus little-endian PCM data.
func (e *Encoder) WAVBytes(samples []float64) []byte {
	pcm := PCM16(samples)
	dataSize := uint32(len(pcm) * 2)

	buf := make([]byte, wavHeaderSize+len(pcm)*2)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], 36+dataSize)
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(buf[22:24], numChannels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(e.sampleRate))

	byteRate := e.sampleRate * numChannels * bitsPerSample / 8
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))

	blockAlign := numChannels * bitsPerSample / 8
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], dataSize)

	for i, v := range pcm {
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+i*2:], uint16(v))
	}
	return buf
}

// Base64 returns the WAV container as base64 text for embedding in markup.
func (e *Encoder) Base64(samples []float64) string {
	return base64.StdEncoding.EncodeToString(e.WAVBytes(samples))
}
