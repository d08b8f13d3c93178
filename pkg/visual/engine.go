package visual

import (
	"image"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/corvidlabs/go-aura/pkg/levels"
	"github.com/corvidlabs/go-aura/pkg/session"
)

// Engine owns all mutable animation state: the clock, the smoothed
// intensity, and the particle population. One engine drives one
// surface; Frame is safe to call concurrently with profile updates.
type Engine struct {
	mu        sync.Mutex
	profile   Profile
	theme     Theme
	layout    Layout
	rng       *rand.Rand
	clock     float64
	intensity float64
	particles []Particle
	seed      seedKey
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithSeed fixes the particle generator seed so populations are
// reproducible in tests.
func WithSeed(seed int64) EngineOption {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithTheme sets the initial theme.
func WithTheme(t Theme) EngineOption {
	return func(e *Engine) { e.theme = t }
}

// NewEngine creates an engine and seeds the initial population.
func NewEngine(p Profile, opts ...EngineOption) *Engine {
	e := &Engine{
		profile: p,
		theme:   ThemeDark,
		layout:  layoutFor(p.Kind),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		seed:    seedKeyOf(p),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.particles = e.layout.Seed(e.rng, p.Settings)
	return e
}

// SetProfile swaps the active profile. The particle population is
// regenerated only when the layout kind, density, or radius changed;
// any other settings edit keeps the existing population.
func (e *Engine) SetProfile(p Profile) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := seedKeyOf(p)
	e.profile = p
	e.layout = layoutFor(p.Kind)
	if key != e.seed {
		e.seed = key
		e.particles = e.layout.Seed(e.rng, p.Settings)
	}
}

// Profile returns the active profile.
func (e *Engine) Profile() Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// SetTheme switches the light/dark palette.
func (e *Engine) SetTheme(t Theme) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.theme = t
}

// Intensity returns the current smoothed reactivity scalar.
func (e *Engine) Intensity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.intensity
}

// Clock returns the current animation clock value.
func (e *Engine) Clock() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

// ParticleCount returns the size of the current population.
func (e *Engine) ParticleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.particles)
}

// Frame renders one animation frame onto dst. It advances the clock by
// a fixed step, smooths intensity toward the mode's target, and
// dispatches to the active layout.
func (e *Engine) Frame(dst *image.RGBA, lv levels.Levels, mode session.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock += clockStep
	target := targetIntensity(mode, lv, e.clock, e.profile.Settings)
	e.intensity += (target - e.intensity) * intensityAlpha

	pal := resolvePalette(e.profile.Settings, e.theme)
	gc := gg.NewContextForRGBA(dst)
	gc.SetColor(pal.Background)
	gc.Clear()

	b := dst.Bounds()
	e.layout.Draw(gc, FrameInfo{
		Width:     float64(b.Dx()),
		Height:    float64(b.Dy()),
		Clock:     e.clock,
		Intensity: e.intensity,
		Particles: e.particles,
		Settings:  e.profile.Settings,
		Mode:      mode,
		Levels:    lv,
		Palette:   pal,
	})
}

// targetIntensity maps (mode, levels, clock) to the reactivity target
// the exponential filter chases.
func targetIntensity(mode session.Mode, lv levels.Levels, clock float64, s Settings) float64 {
	switch mode {
	case session.ModeListening:
		return math.Max(0, lv.Input) * s.Sensitivity * s.ListeningIntensity
	case session.ModeSpeaking:
		return lv.Output * s.SpeakingIntensity * (math.Sin(clock*s.SpeakingRate) + 1) / 2
	case session.ModeSearching:
		return s.SearchingIntensity * (searchingBase + searchingSwing*math.Sin(clock*s.SearchingRate))
	default:
		return 0
	}
}

// gated applies the noise gate to a normalized magnitude: values below
// the threshold contribute nothing, values above ramp linearly to 1.
func gated(v, gate float64) float64 {
	if v <= gate {
		return 0
	}
	if gate >= 1 {
		return 0
	}
	return (v - gate) / (1 - gate)
}
