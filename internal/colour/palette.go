package colour

import (
	"fmt"
	"image/color"
	"strings"
)

// Palette is the ordered set of colours produced by a posterization run.
// Order follows cluster index; it is meaningful for display and export but
// carries no ranking.
type Palette struct {
	Colors []RGB
}

// NewPalette creates a new Palette with the given colours.
func NewPalette(colors []RGB) *Palette {
	return &Palette{
		Colors: colors,
	}
}

// PaletteFromLab converts Lab centroids to a palette, one entry per centroid.
func PaletteFromLab(centroids []Lab) *Palette {
	colors := make([]RGB, len(centroids))
	for i, c := range centroids {
		colors[i] = LabToRGB(c)
	}
	return NewPalette(colors)
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// Clone returns a deep copy of the palette.
func (p *Palette) Clone() *Palette {
	colors := make([]RGB, len(p.Colors))
	copy(colors, p.Colors)
	return NewPalette(colors)
}

// RGB represents a colour in 8-bit sRGB.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// RGBA returns the colour as an opaque color.RGBA.
func (rgb RGB) RGBA() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// ToRGB converts a color.Color to RGB, dropping alpha.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// ToHex converts the palette colours to hex strings.
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Colors))
	for i, rgb := range p.Colors {
		hexColors[i] = rgb.Hex()
	}
	return hexColors
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Colors) == 0 {
		return "Empty palette"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Palette with %d colours:\n", len(p.Colors))
	for i, rgb := range p.Colors {
		fmt.Fprintf(&sb, "  %2d: %s (%s)\n", i+1, rgb.Hex(), rgb.String())
	}
	return sb.String()
}

// All returns an iterator over all colours in the palette.
func (p *Palette) All() func(func(int, RGB) bool) {
	return func(yield func(int, RGB) bool) {
		for i, c := range p.Colors {
			if !yield(i, c) {
				return
			}
		}
	}
}
