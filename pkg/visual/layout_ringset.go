package visual

import (
	"math"
	"math/rand"

	"github.com/fogleman/gg"

	"github.com/corvidlabs/go-aura/pkg/session"
)

// ringSetLayout draws concentric rings rotating as a rigid group, each
// ring's radius independently perturbed by intensity and a clock-phase
// sine. Searching adds expanding ping rings that fade in fast and out
// linearly over one expansion cycle.
type ringSetLayout struct{}

func (ringSetLayout) Seed(rng *rand.Rand, s Settings) []Particle { return nil }

func (ringSetLayout) Draw(gc *gg.Context, f FrameInfo) {
	s := f.Settings
	cx, cy := f.Width/2, f.Height/2

	rings := 3 + int(s.Density*5)
	gc.Push()
	gc.RotateAbout(f.Clock*0.3, cx, cy)

	for i := 0; i < rings; i++ {
		frac := float64(i) / float64(rings-1)
		base := s.Radius * (0.4 + 0.6*frac)
		perturb := f.Intensity * s.RadiusSensitivity * 12 * math.Sin(f.Clock*2+float64(i)*0.9)
		r := base + perturb

		if i%2 == 1 {
			gc.SetDash(6, 9)
		} else {
			gc.SetDash()
		}
		setAlpha(gc, f.Palette.Primary, 0.45+0.5*frac)
		gc.SetLineWidth(math.Max(1, s.Thickness))
		gc.DrawCircle(cx, cy, r)
		gc.Stroke()
	}
	gc.SetDash()
	gc.Pop()

	if f.Mode == session.ModeSearching {
		drawPings(gc, f, cx, cy)
	}
}

// drawPings renders three independently-phased expanding rings. Each
// ping's alpha ramps in over the first eighth of its cycle, then fades
// linearly to zero at full expansion.
func drawPings(gc *gg.Context, f FrameInfo, cx, cy float64) {
	s := f.Settings
	for k := 0; k < 3; k++ {
		phase := math.Mod(f.Clock*s.SearchingRate*0.4+float64(k)/3, 1)
		r := s.Radius * (0.3 + phase*1.2)
		alpha := math.Min(phase*8, 1) * (1 - phase)

		setAlpha(gc, f.Palette.Secondary, alpha)
		gc.SetLineWidth(math.Max(1, s.Thickness))
		gc.DrawCircle(cx, cy, r)
		gc.Stroke()
	}
}
