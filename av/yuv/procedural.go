package yuv

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// SolidSource is a procedural source of a single colour.
type SolidSource struct {
	width, height int
	r, g, b       uint8
}

// NewSolidSource creates a width x height source filled with c.
// Out-of-gamut colours are clamped before quantisation.
func NewSolidSource(width, height int, c colorful.Color) *SolidSource {
	r, g, b := c.Clamped().RGB255()
	return &SolidSource{width: width, height: height, r: r, g: g, b: b}
}

// NewSolidSourceHex parses a "#rrggbb" colour and creates a SolidSource.
func NewSolidSourceHex(width, height int, hex string) (*SolidSource, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("solid source colour %q: %w", hex, err)
	}
	return NewSolidSource(width, height, c), nil
}

// Dimensions returns the configured size.
func (s *SolidSource) Dimensions() (int, int) { return s.width, s.height }

// Pixel returns the fill colour.
func (s *SolidSource) Pixel(_, _ int) (uint8, uint8, uint8) { return s.r, s.g, s.b }

// GradientSource is a linear two-colour gradient blended in CIE L*a*b*.
// The blend is quantised once per column (or row) at construction.
type GradientSource struct {
	width, height int
	vertical      bool
	ramp          [][3]uint8
}

// NewGradientSource creates a gradient running from `from` to `to`,
// left to right, or top to bottom when vertical is set.
func NewGradientSource(width, height int, from, to colorful.Color, vertical bool) *GradientSource {
	steps := width
	if vertical {
		steps = height
	}
	if steps < 0 {
		steps = 0
	}

	ramp := make([][3]uint8, steps)
	for i := range ramp {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		r, g, b := from.BlendLab(to, t).Clamped().RGB255()
		ramp[i] = [3]uint8{r, g, b}
	}

	return &GradientSource{width: width, height: height, vertical: vertical, ramp: ramp}
}

// Dimensions returns the configured size.
func (s *GradientSource) Dimensions() (int, int) { return s.width, s.height }

// Pixel returns the quantised gradient colour at (x, y).
func (s *GradientSource) Pixel(x, y int) (uint8, uint8, uint8) {
	i := x
	if s.vertical {
		i = y
	}
	c := s.ramp[i]
	return c[0], c[1], c[2]
}
