package sidetone

import (
	"encoding/binary"
	"math"
	"time"
)

// FadeDivisor is the share (1/FadeDivisor) of the samples at each edge of a
// tone which are ramped to avoid clicks.
const FadeDivisor = 15

// BytesPerSample of the encoded stream (mono float32).
const BytesPerSample = 4

// Waveform renders a sine tone of the given length, ramped in and out.
func Waveform(frequency float64, length time.Duration, sampleRate uint32, volume float64) []float32 {
	n := int(int64(length) * int64(sampleRate) / int64(time.Second))
	samples := make([]float32, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = float32(volume * math.Sin(2*math.Pi*frequency*t))
	}
	fadeInAndOut(samples)
	return samples
}

func fadeInAndOut(samples []float32) {
	n := len(samples)
	fade := n / FadeDivisor
	for i := 0; i < fade; i++ {
		factor := float32(i) / float32(fade)
		samples[i] *= factor
		samples[n-fade+i] *= 1 - factor
	}
}

// Encode converts samples into the float32 little endian byte stream the
// audio output consumes.
func Encode(samples []float32) []byte {
	result := make([]byte, len(samples)*BytesPerSample)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(result[i*BytesPerSample:], math.Float32bits(v))
	}
	return result
}
