package visual

import (
	"math"
	"math/rand"

	"github.com/fogleman/gg"

	"github.com/corvidlabs/go-aura/pkg/session"
)

// circleLayout is a single breathing disk. An inner disk appears above
// an intensity threshold; searching adds a rotating partial arc.
type circleLayout struct{}

func (circleLayout) Seed(rng *rand.Rand, s Settings) []Particle { return nil }

func (circleLayout) Draw(gc *gg.Context, f FrameInfo) {
	s := f.Settings
	cx, cy := f.Width/2, f.Height/2

	r := s.Radius * (1 +
		s.BreathingAmplitude*math.Sin(f.Clock*s.BreathingFrequency) +
		f.Intensity*s.RadiusSensitivity*0.25)

	setAlpha(gc, f.Palette.Primary, 0.9)
	gc.DrawCircle(cx, cy, r)
	gc.Fill()

	if f.Intensity > innerDiskThreshold {
		inner := r * 0.5 * math.Min(f.Intensity, 1)
		setAlpha(gc, f.Palette.Secondary, 0.8)
		gc.DrawCircle(cx, cy, inner)
		gc.Fill()
	}

	if f.Mode == session.ModeSearching {
		start := f.Clock * s.SearchingRate
		setAlpha(gc, f.Palette.Secondary, 0.9)
		gc.SetLineWidth(math.Max(1, s.Thickness))
		gc.DrawArc(cx, cy, r+12, start, start+math.Pi/2)
		gc.Stroke()
	}
}
