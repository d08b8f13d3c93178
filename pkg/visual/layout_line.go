package visual

import (
	"math"
	"math/rand"

	"github.com/fogleman/gg"

	"github.com/corvidlabs/go-aura/pkg/session"
)

// lineSamples fixes the horizontal resolution of the waveform.
const lineSamples = 128

// lineLayout draws a sampled waveform across the width: a slow base
// wobble plus an edge-tapered reactive amplitude. While searching the
// reactive term is replaced by a traveling wave.
type lineLayout struct{}

func (lineLayout) Seed(rng *rand.Rand, s Settings) []Particle { return nil }

func (lineLayout) Draw(gc *gg.Context, f FrameInfo) {
	s := f.Settings
	cy := f.Height / 2

	for i := 0; i < lineSamples; i++ {
		progress := float64(i) / (lineSamples - 1)
		x := progress * f.Width

		// The taper pins both ends of the line to the midline.
		taper := math.Sin(math.Pi * progress)
		wobble := 3 * math.Sin(progress*9+f.Clock*1.5)

		var reactive float64
		if f.Mode == session.ModeSearching {
			reactive = 25 * taper * math.Sin(progress*4*math.Pi-f.Clock*s.SearchingRate*2)
		} else {
			carrier := math.Sin(progress*6*math.Pi + f.Clock*3)
			amp := f.Intensity * s.Sensitivity * 60
			if spec := f.Levels.OutputSpectrum; len(spec) > 0 {
				bin := int(progress * float64(len(spec)-1))
				amp *= 0.4 + 1.2*gated(float64(spec[bin])/255, s.NoiseGate)
			}
			reactive = amp * taper * carrier
		}

		y := cy + wobble + reactive
		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}

	setAlpha(gc, f.Palette.Primary, 0.95)
	gc.SetLineWidth(math.Max(1, s.Thickness))
	gc.Stroke()
}
