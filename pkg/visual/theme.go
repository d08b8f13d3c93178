package visual

import (
	"fmt"
	"image/color"
)

// Theme selects the light or dark palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Palette holds the resolved colors a layout draws with.
type Palette struct {
	Background color.RGBA
	Primary    color.RGBA
	Secondary  color.RGBA
}

var (
	lightPalette = Palette{
		Background: color.RGBA{R: 0xf5, G: 0xf5, B: 0xf7, A: 0xff},
		Primary:    color.RGBA{R: 0x1d, G: 0x4e, B: 0xd8, A: 0xff},
		Secondary:  color.RGBA{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff},
	}
	darkPalette = Palette{
		Background: color.RGBA{R: 0x0b, G: 0x0e, B: 0x14, A: 0xff},
		Primary:    color.RGBA{R: 0x6e, G: 0xe7, B: 0xff, A: 0xff},
		Secondary:  color.RGBA{R: 0xa7, G: 0x8b, B: 0xfa, A: 0xff},
	}
)

// resolvePalette starts from the theme's stock palette and applies any
// color overrides the settings carry. Unparseable overrides are ignored.
func resolvePalette(s Settings, t Theme) Palette {
	pal := darkPalette
	bgOverride := s.BackgroundDark
	if t == ThemeLight {
		pal = lightPalette
		bgOverride = s.BackgroundLight
	}

	if c, err := parseHexColor(s.PrimaryColor); err == nil {
		pal.Primary = c
	}
	if c, err := parseHexColor(s.SecondaryColor); err == nil {
		pal.Secondary = c
	}
	if c, err := parseHexColor(bgOverride); err == nil {
		pal.Background = c
	}
	return pal
}

// lerpRGBA blends a toward b by t in [0,1].
func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{
		R: mix(a.R, b.R),
		G: mix(a.G, b.G),
		B: mix(a.B, b.B),
		A: mix(a.A, b.A),
	}
}

// parseHexColor parses #rgb and #rrggbb.
func parseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	switch len(s) {
	case 7:
		_, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
		return c, err
	case 4:
		_, err := fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
		return c, err
	}
	return c, fmt.Errorf("invalid hex color %q", s)
}
