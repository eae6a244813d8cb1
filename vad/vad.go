package vad

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// VAD scores audio frames by mean spectral magnitude. The capture loop
// compares consecutive scores: a jump marks the start of speech, a sustained
// drop marks its end.
type VAD struct {
	size   int
	window []float64
}

func New(size int) *VAD {
	// Hann window to keep frame edges from leaking energy across bins
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return &VAD{
		size:   size,
		window: window,
	}
}

// Flux returns the mean magnitude of the frame's spectrum. Frames shorter
// than the configured size are zero-padded.
func (v *VAD) Flux(samples []int16) float64 {
	input := make([]float64, v.size)

	for i := 0; i < v.size && i < len(samples); i++ {
		input[i] = float64(samples[i]) / 32768.0 * v.window[i]
	}

	spectrum := fft.FFTReal(input)

	half := len(spectrum) / 2
	if half == 0 {
		return 0
	}

	var sum float64
	for _, bin := range spectrum[:half] {
		sum += cmplx.Abs(bin)
	}

	return sum / float64(half)
}
