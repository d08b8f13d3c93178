package levels

import (
	"math"
	"testing"
)

func TestExtractorNoSession(t *testing.T) {
	e := NewExtractor()

	lv := e.GetVolumeLevels()
	if lv.Input != 0 || lv.Output != 0 {
		t.Errorf("expected zero levels, got input=%f output=%f", lv.Input, lv.Output)
	}
	if lv.InputSpectrum != nil || lv.OutputSpectrum != nil {
		t.Error("expected nil spectra with no session")
	}

	// Repeated queries stay safe.
	for i := 0; i < 100; i++ {
		_ = e.GetVolumeLevels()
	}
}

func TestExtractorDetach(t *testing.T) {
	e := NewExtractor()
	e.Attach(NewAnalyser(), NewAnalyser())

	lv := e.GetVolumeLevels()
	if lv.InputSpectrum == nil || lv.OutputSpectrum == nil {
		t.Fatal("expected spectra while attached")
	}

	e.Detach()
	lv = e.GetVolumeLevels()
	if lv.InputSpectrum != nil || lv.OutputSpectrum != nil {
		t.Error("expected nil spectra after detach")
	}
}

func TestAnalyserSilence(t *testing.T) {
	a := NewAnalyser()
	a.Write(make([]float64, FFTSize))

	bins := a.ByteFrequencyData()
	if len(bins) != BinCount {
		t.Fatalf("bin count = %d, want %d", len(bins), BinCount)
	}
	for i, b := range bins {
		if b != 0 {
			t.Errorf("bin %d = %d for silence, want 0", i, b)
		}
	}
}

func TestAnalyserSineConcentratesEnergy(t *testing.T) {
	a := NewAnalyser()

	// A sine at bin 16 of a 256-point window sampled at 16 kHz.
	const bin = 16
	samples := make([]float64, FFTSize)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * bin * float64(i) / FFTSize)
	}
	a.Write(samples)

	bins := a.ByteFrequencyData()

	peak := 0
	for i, b := range bins {
		if b > bins[peak] {
			peak = i
		}
		_ = i
	}
	if peak != bin {
		t.Errorf("energy peak at bin %d, want %d", peak, bin)
	}
	if bins[bin] < 100 {
		t.Errorf("peak magnitude %d too low for full-scale sine", bins[bin])
	}
	// Energy far from the peak stays near zero.
	if bins[BinCount-1] > 10 {
		t.Errorf("expected negligible energy at top bin, got %d", bins[BinCount-1])
	}
}

func TestAnalyserWritePCM16(t *testing.T) {
	a := NewAnalyser()
	pcm := make([]int16, FFTSize)
	for i := range pcm {
		pcm[i] = int16(16000 * math.Sin(2*math.Pi*8*float64(i)/FFTSize))
	}
	a.WritePCM16(pcm)

	e := NewExtractor()
	e.Attach(a, NewAnalyser())

	lv := e.GetVolumeLevels()
	if lv.Input <= 0 {
		t.Error("expected positive input level for sine signal")
	}
	if lv.Output != 0 {
		t.Errorf("expected zero output level, got %f", lv.Output)
	}
}

func TestLevelsRecomputedEveryCall(t *testing.T) {
	a := NewAnalyser()
	out := NewAnalyser()
	e := NewExtractor()
	e.Attach(a, out)

	lv1 := e.GetVolumeLevels()
	if lv1.Input != 0 {
		t.Fatalf("expected silence first, got %f", lv1.Input)
	}

	samples := make([]float64, FFTSize)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 4 * float64(i) / FFTSize)
	}
	a.Write(samples)

	lv2 := e.GetVolumeLevels()
	if lv2.Input <= lv1.Input {
		t.Error("levels did not reflect newly written audio")
	}
}

func TestAnalyserReset(t *testing.T) {
	a := NewAnalyser()
	samples := make([]float64, FFTSize)
	for i := range samples {
		samples[i] = 0.9
	}
	a.Write(samples)
	a.Reset()

	for i, b := range a.ByteFrequencyData() {
		if b != 0 {
			t.Errorf("bin %d = %d after reset, want 0", i, b)
		}
	}
}
