// Package visual renders the audio-reactive avatar animation. Each
// display tick the engine pulls a loudness snapshot and the agent mode,
// advances a shared animation clock, smooths a reactivity scalar, and
// dispatches to one of five procedural layouts drawn onto a raster
// surface. Layouts are stateless: everything that persists across
// frames lives in the engine (clock, intensity, particle population).
package visual

import (
	"fmt"
	"math/rand"

	"github.com/fogleman/gg"

	"github.com/corvidlabs/go-aura/pkg/levels"
	"github.com/corvidlabs/go-aura/pkg/session"
)

// LayoutKind selects one of the five procedural layouts.
type LayoutKind string

const (
	LayoutParticleRing LayoutKind = "particle-ring"
	LayoutLine         LayoutKind = "line"
	LayoutCircle       LayoutKind = "circle"
	LayoutRingSet      LayoutKind = "ring-set"
	LayoutSphere       LayoutKind = "sphere"
)

// ParseLayoutKind validates a layout name from an external source.
func ParseLayoutKind(s string) (LayoutKind, error) {
	switch k := LayoutKind(s); k {
	case LayoutParticleRing, LayoutLine, LayoutCircle, LayoutRingSet, LayoutSphere:
		return k, nil
	}
	return "", fmt.Errorf("unknown layout kind %q", s)
}

// Profile is a named animation preset. It is supplied whole by the
// profile-management layer and never mutated here.
type Profile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Kind      LayoutKind `json:"type"`
	Settings  Settings   `json:"settings"`
	IsDefault bool       `json:"is_default"`
}

// DefaultProfile returns the profile the engine starts with.
func DefaultProfile() Profile {
	return Profile{
		ID:        "default",
		Name:      "Aura",
		Kind:      LayoutParticleRing,
		Settings:  DefaultSettings(),
		IsDefault: true,
	}
}

// FrameInfo carries everything a layout needs to draw one frame.
type FrameInfo struct {
	Width, Height float64
	Clock         float64
	Intensity     float64
	Particles     []Particle
	Settings      Settings
	Mode          session.Mode
	Levels        levels.Levels
	Palette       Palette
}

// Layout is the capability every procedural layout implements. Seed
// builds the particle population from the injected generator; Draw is a
// pure function of its inputs.
type Layout interface {
	Seed(rng *rand.Rand, s Settings) []Particle
	Draw(gc *gg.Context, f FrameInfo)
}

var layouts = map[LayoutKind]Layout{
	LayoutParticleRing: ringLayout{},
	LayoutLine:         lineLayout{},
	LayoutCircle:       circleLayout{},
	LayoutRingSet:      ringSetLayout{},
	LayoutSphere:       sphereLayout{},
}

func layoutFor(k LayoutKind) Layout {
	if l, ok := layouts[k]; ok {
		return l
	}
	return layouts[LayoutParticleRing]
}
