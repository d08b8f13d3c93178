package visual

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/fogleman/gg"
)

// ringLayout orbits seeded particles around a breathing base radius.
// Frequency-domain output displaces particles outward through a noise
// gate; a bass-weighted sample modulates particle size.
type ringLayout struct{}

func (ringLayout) Seed(rng *rand.Rand, s Settings) []Particle {
	n := populationSize(s.Density, ringDensityK)
	particles := make([]Particle, n)
	for i := range particles {
		p := &particles[i]
		p.Angle = rng.Float64() * 2 * math.Pi
		p.Distance = s.Radius * (0.85 + rng.Float64()*0.3)
		seedCommon(rng, p)
	}
	return particles
}

func (ringLayout) Draw(gc *gg.Context, f FrameInfo) {
	s := f.Settings
	cx, cy := f.Width/2, f.Height/2

	breath := 1 + s.BreathingAmplitude*math.Sin(f.Clock*s.BreathingFrequency)
	expand := 1 + f.Intensity*s.RadiusSensitivity*0.3
	bass := bassLevel(f.Levels.OutputSpectrum)

	for i := range f.Particles {
		p := &f.Particles[i]

		disp := 0.0
		if spec := f.Levels.OutputSpectrum; len(spec) > 0 {
			bin := int(p.Angle / (2 * math.Pi) * float64(len(spec)))
			if bin >= len(spec) {
				bin = len(spec) - 1
			}
			mag := float64(spec[bin]) / 255
			disp = gated(mag, s.NoiseGate) * p.DisplacementMultiplier * s.Sensitivity * 40
		}

		r := p.Distance*breath*expand + disp
		angle := p.Angle + f.Clock*0.2
		x := cx + math.Cos(angle)*r
		y := cy + math.Sin(angle)*r

		fade := 0.5 + 0.5*math.Sin(f.Clock*p.FadeSpeed+p.FadePhase)
		size := p.BaseSize * p.SizeMultiplier * (1 + bass*s.SizeSensitivity*2)

		setAlpha(gc, f.Palette.Primary, p.Opacity*fade)
		gc.DrawCircle(x, y, size)
		gc.Fill()
	}
}

// bassLevel averages the lowest spectrum bins, normalized to [0,1].
func bassLevel(spec []byte) float64 {
	if len(spec) == 0 {
		return 0
	}
	n := 8
	if n > len(spec) {
		n = len(spec)
	}
	sum := 0.0
	for _, v := range spec[:n] {
		sum += float64(v)
	}
	return sum / float64(n) / 255
}

func setAlpha(gc *gg.Context, c color.RGBA, a float64) {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	gc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(a*255))
}
