package visual

import (
	"math"
	"math/rand"

	"github.com/fogleman/gg"

	"github.com/corvidlabs/go-aura/pkg/session"
)

// sphereLayout places particles on a unit sphere, rotates them about
// two axes at mode-dependent rates, and projects with simple
// perspective. A pulse term modulates per-particle size and opacity.
// The optional outer shell renders only while searching.
type sphereLayout struct{}

func (sphereLayout) Seed(rng *rand.Rand, s Settings) []Particle {
	n := populationSize(s.Density, sphereDensityK)
	shell := 0
	if s.OuterShell {
		shell = populationSize(s.OuterShellDensity, shellDensityK) / 2
	}

	particles := make([]Particle, 0, n+shell)
	for i := 0; i < n+shell; i++ {
		var p Particle
		// Uniform placement: cos(theta) uniform in [-1,1].
		p.Theta = math.Acos(2*rng.Float64() - 1)
		p.Phi = rng.Float64() * 2 * math.Pi
		seedCommon(rng, &p)
		p.Shell = i >= n
		particles = append(particles, p)
	}
	return particles
}

// rotationRate scales the sphere's angular velocity by agent mode.
func rotationRate(mode session.Mode) float64 {
	switch mode {
	case session.ModeListening:
		return 0.6
	case session.ModeSpeaking:
		return 1.0
	case session.ModeSearching:
		return 1.6
	default:
		return 0.3
	}
}

func (sphereLayout) Draw(gc *gg.Context, f FrameInfo) {
	s := f.Settings
	cx, cy := f.Width/2, f.Height/2

	radius := s.Radius * (1 +
		s.BreathingAmplitude*math.Sin(f.Clock*s.BreathingFrequency) +
		f.Intensity*s.RadiusSensitivity*0.3)

	rate := rotationRate(f.Mode)
	rotX := f.Clock * s.RotationSpeedX * rate
	rotY := f.Clock * s.RotationSpeedY * rate
	sinX, cosX := math.Sincos(rotX)
	sinY, cosY := math.Sincos(rotY)

	fov := s.FOV
	if fov <= 0 {
		fov = 300
	}

	for i := range f.Particles {
		p := &f.Particles[i]
		if p.Shell && f.Mode != session.ModeSearching {
			continue
		}

		r := radius
		if p.Shell {
			r *= 1.6
		}

		x := r * math.Sin(p.Theta) * math.Cos(p.Phi)
		y := r * math.Sin(p.Theta) * math.Sin(p.Phi)
		z := r * math.Cos(p.Theta)

		// Rotate about X, then Y.
		y, z = y*cosX-z*sinX, y*sinX+z*cosX
		x, z = x*cosY+z*sinY, -x*sinY+z*cosY

		scale := fov / (fov + z)
		px := cx + x*scale
		py := cy + y*scale

		pulse := math.Sin(f.Clock*s.PulseRate + p.FadePhase)
		size := p.BaseSize * scale * (1 + 0.3*pulse*s.SizeSensitivity)
		if size <= 0 {
			continue
		}
		alpha := p.Opacity * math.Min(scale, 1) * (0.6 + 0.4*pulse)

		c := f.Palette.Primary
		if p.Shell {
			c = f.Palette.Secondary
			// Shell particles blink on their own phase.
			alpha *= (math.Sin(f.Clock*3+p.FadePhase) + 1) / 2
		} else {
			// The pulse shifts color toward the secondary along with
			// size and opacity.
			c = lerpRGBA(f.Palette.Primary, f.Palette.Secondary, 0.4*(pulse+1)/2)
		}

		setAlpha(gc, c, alpha)
		gc.DrawCircle(px, py, size)
		gc.Fill()
	}
}
