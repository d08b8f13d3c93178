package visual

import (
	"math"
	"math/rand"
)

// Particle population sizing. Each particle layout contributes
// floor(50 + density*K) particles with a layout-specific K.
const (
	basePopulation = 50
	ringDensityK   = 150
	sphereDensityK = 250
	shellDensityK  = 60
)

// Particle is one seeded animation element. Seed attributes are fixed
// at generation time; per-frame appearance is recomputed from them plus
// the shared clock, never mutated in place.
type Particle struct {
	// Polar placement for 2-D layouts.
	Angle    float64
	Distance float64

	// Spherical placement for the 3-D layout.
	Theta float64
	Phi   float64

	BaseSize  float64
	Opacity   float64
	FadePhase float64
	FadeSpeed float64

	SizeMultiplier         float64
	DisplacementMultiplier float64

	NoiseOffsetX float64
	NoiseOffsetY float64

	// Shell marks outer-shell particles, drawn only while searching.
	Shell bool
}

// populationSize returns the particle count for a density and layout K.
// Out-of-range densities from external profile edits clamp to an empty
// population instead of producing a negative length.
func populationSize(density, k float64) int {
	n := int(math.Floor(basePopulation + density*k))
	if n < 0 {
		return 0
	}
	return n
}

// seedCommon fills the attributes every layout shares.
func seedCommon(rng *rand.Rand, p *Particle) {
	p.BaseSize = 1 + rng.Float64()*2.5
	p.Opacity = 0.3 + rng.Float64()*0.6
	p.FadePhase = rng.Float64() * 2 * math.Pi
	p.FadeSpeed = 0.5 + rng.Float64()
	p.SizeMultiplier = 0.5 + rng.Float64()
	p.DisplacementMultiplier = 0.5 + rng.Float64()
	p.NoiseOffsetX = rng.Float64() * 1000
	p.NoiseOffsetY = rng.Float64() * 1000
}

// seedKey is the regeneration trigger: the particle population is a
// pure function of these three values and the generator seed.
type seedKey struct {
	kind    LayoutKind
	density float64
	radius  float64
}

func seedKeyOf(p Profile) seedKey {
	return seedKey{kind: p.Kind, density: p.Settings.Density, radius: p.Settings.Radius}
}
