// Package levels converts live audio streams into scalar loudness and
// frequency-bucket magnitudes for the visualization engine.
//
// An Analyser keeps a short ring of recent samples per stream direction.
// Levels are computed fresh on every query; nothing is cached between
// frames and no internal timers run.
package levels

import (
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// FFTSize is the analysis window length in samples.
	FFTSize = 256

	// BinCount is the number of frequency magnitude buckets
	// (the usable half-spectrum).
	BinCount = FFTSize / 2
)

// Levels is a point-in-time loudness snapshot of both stream directions.
// Input and Output are normalized to [0, 1]. The spectra are per-bin
// magnitudes scaled to 0..255, nil when no session is active.
type Levels struct {
	Input          float64 `json:"input"`
	Output         float64 `json:"output"`
	InputSpectrum  []byte  `json:"-"`
	OutputSpectrum []byte  `json:"-"`
}

// Analyser accumulates recent samples from one audio direction and
// produces frequency-domain magnitudes on demand.
type Analyser struct {
	mu   sync.Mutex
	ring [FFTSize]float64
	pos  int
	fill int
}

// NewAnalyser creates an empty analyser.
func NewAnalyser() *Analyser {
	return &Analyser{}
}

// Write appends normalized [-1, 1] samples to the ring.
// Called from the capture callback and the playback scheduler.
func (a *Analyser) Write(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range samples {
		a.ring[a.pos] = s
		a.pos = (a.pos + 1) % FFTSize
	}
	a.fill += len(samples)
	if a.fill > FFTSize {
		a.fill = FFTSize
	}
}

// WritePCM16 appends raw PCM16 samples, normalizing to [-1, 1].
func (a *Analyser) WritePCM16(samples []int16) {
	floats := make([]float64, len(samples))
	for i, s := range samples {
		floats[i] = float64(s) / 32768.0
	}
	a.Write(floats)
}

// Reset clears the ring.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ring = [FFTSize]float64{}
	a.pos = 0
	a.fill = 0
}

// ByteFrequencyData computes the current per-bin magnitudes scaled
// to 0..255, oldest sample first, Hann-windowed.
func (a *Analyser) ByteFrequencyData() []byte {
	a.mu.Lock()
	window := make([]float64, FFTSize)
	for i := 0; i < FFTSize; i++ {
		window[i] = a.ring[(a.pos+i)%FFTSize]
	}
	a.mu.Unlock()

	for i := range window {
		hann := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(FFTSize-1)))
		window[i] *= hann
	}

	spectrum := fft.FFTReal(window)

	out := make([]byte, BinCount)
	for i := 0; i < BinCount; i++ {
		// Normalize by the window's coherent gain (N/2 for Hann * full scale).
		mag := cmplxAbs(spectrum[i]) / (FFTSize / 4)
		v := mag * 255
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// Extractor answers GetVolumeLevels queries for the render loop.
// Analysers are attached while a session is connected and detached on
// disconnect; with none attached every query returns zero levels.
type Extractor struct {
	mu     sync.RWMutex
	input  *Analyser
	output *Analyser
}

// NewExtractor creates an extractor with no analysers attached.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Attach wires the input and output analysers of a live session.
func (e *Extractor) Attach(input, output *Analyser) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.input = input
	e.output = output
}

// Detach drops both analysers. Subsequent queries return zero levels.
func (e *Extractor) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.input = nil
	e.output = nil
}

// GetVolumeLevels returns a fresh loudness snapshot. Never panics;
// callable at display-refresh frequency.
func (e *Extractor) GetVolumeLevels() Levels {
	e.mu.RLock()
	input, output := e.input, e.output
	e.mu.RUnlock()

	var lv Levels
	if input != nil {
		lv.InputSpectrum = input.ByteFrequencyData()
		lv.Input = meanByte(lv.InputSpectrum)
	}
	if output != nil {
		lv.OutputSpectrum = output.ByteFrequencyData()
		lv.Output = meanByte(lv.OutputSpectrum)
	}
	return lv
}

func meanByte(bins []byte) float64 {
	if len(bins) == 0 {
		return 0
	}
	sum := 0
	for _, b := range bins {
		sum += int(b)
	}
	return float64(sum) / float64(len(bins)) / 255.0
}
