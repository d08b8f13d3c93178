package visual

import (
	"image"
	"testing"

	"github.com/corvidlabs/go-aura/pkg/levels"
	"github.com/corvidlabs/go-aura/pkg/session"
)

// testLevels builds a loudness snapshot with a synthetic spectrum so
// frequency-driven displacement paths are exercised.
func testLevels() levels.Levels {
	spec := make([]byte, levels.BinCount)
	for i := range spec {
		spec[i] = byte(255 - i*2)
	}
	return levels.Levels{
		Input:          0.4,
		Output:         0.7,
		InputSpectrum:  spec,
		OutputSpectrum: spec,
	}
}

// paintedPixels counts pixels that differ from the background color.
func paintedPixels(dst *image.RGBA, e *Engine) int {
	pal := resolvePalette(e.Profile().Settings, ThemeDark)
	count := 0
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if dst.RGBAAt(x, y) != pal.Background {
				count++
			}
		}
	}
	return count
}

func TestLayoutsDrawContent(t *testing.T) {
	kinds := []LayoutKind{
		LayoutParticleRing, LayoutLine, LayoutCircle, LayoutRingSet, LayoutSphere,
	}
	modes := []session.Mode{
		session.ModeIdle, session.ModeListening, session.ModeSpeaking, session.ModeSearching,
	}

	for _, kind := range kinds {
		for _, mode := range modes {
			t.Run(string(kind)+"/"+string(mode), func(t *testing.T) {
				p := DefaultProfile()
				p.Kind = kind
				e := NewEngine(p, WithSeed(11))
				dst := image.NewRGBA(image.Rect(0, 0, 320, 320))

				// A few frames so intensity builds up from zero.
				for i := 0; i < 5; i++ {
					e.Frame(dst, testLevels(), mode)
				}

				if paintedPixels(dst, e) == 0 {
					t.Error("layout drew nothing")
				}
			})
		}
	}
}

func TestFrameWithoutSpectra(t *testing.T) {
	// Levels without spectra must not panic in any layout.
	for kind := range layouts {
		p := DefaultProfile()
		p.Kind = kind
		e := NewEngine(p, WithSeed(5))
		dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
		e.Frame(dst, levels.Levels{}, session.ModeListening)
	}
}

func TestSphereShellOnlyWhileSearching(t *testing.T) {
	p := DefaultProfile()
	p.Kind = LayoutSphere
	p.Settings.OuterShell = true
	p.Settings.OuterShellDensity = 1.0
	e := NewEngine(p, WithSeed(9))

	shell := 0
	for _, particle := range e.particles {
		if particle.Shell {
			shell++
		}
	}
	if shell == 0 {
		t.Fatal("expected shell particles with outer shell enabled")
	}

	// More particles are eligible to draw while searching than while
	// listening, so the searching frame paints at least as much.
	dstListen := image.NewRGBA(image.Rect(0, 0, 320, 320))
	dstSearch := image.NewRGBA(image.Rect(0, 0, 320, 320))
	for i := 0; i < 5; i++ {
		e.Frame(dstListen, testLevels(), session.ModeListening)
	}
	eSearch := NewEngine(p, WithSeed(9))
	for i := 0; i < 5; i++ {
		eSearch.Frame(dstSearch, testLevels(), session.ModeSearching)
	}

	if paintedPixels(dstSearch, eSearch) < paintedPixels(dstListen, e) {
		t.Error("searching frame painted fewer pixels than listening frame")
	}
}

func TestThemeSwitchChangesBackground(t *testing.T) {
	e := NewEngine(DefaultProfile(), WithSeed(2))
	dst := image.NewRGBA(image.Rect(0, 0, 32, 32))

	e.Frame(dst, levels.Levels{}, session.ModeIdle)
	dark := dst.RGBAAt(0, 0)

	e.SetTheme(ThemeLight)
	e.Frame(dst, levels.Levels{}, session.ModeIdle)
	light := dst.RGBAAt(0, 0)

	if dark == light {
		t.Error("background did not change with theme")
	}
}
