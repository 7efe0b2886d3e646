package colour

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(rgb RGB) float64 {
	rf := gammaCorrect(float64(rgb.R) / 255.0)
	rg := gammaCorrect(float64(rgb.G) / 255.0)
	rb := gammaCorrect(float64(rgb.B) / 255.0)

	return 0.2126*rf + 0.7152*rg + 0.0722*rb
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// HueDistance calculates the angular distance between two hues on the colour wheel.
// Returns a value between 0 and 180 degrees (shortest path around the wheel).
func HueDistance(h1, h2 float64) float64 {
	diff := math.Abs(normaliseHue(h1) - normaliseHue(h2))
	if diff > 180 {
		diff = 360 - diff // Handle wraparound
	}
	return diff
}

// signedHueDelta returns the signed shortest rotation from h1 to h2, in (-180, 180].
func signedHueDelta(h1, h2 float64) float64 {
	d := normaliseHue(h2 - h1)
	if d > 180 {
		d -= 360
	}
	return d
}

// normaliseHue wraps a hue into [0, 360).
func normaliseHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// rgbToHSL converts RGB to HSL colour space.
// Returns hue (0-360), saturation (0-1), lightness (0-1).
func rgbToHSL(rgb RGB) (h, s, l float64) {
	c := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
	h, s, l = c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return normaliseHue(h), s, l
}

// HSLToRGB converts HSL to RGB colour space.
// h is hue (0-360), s is saturation (0-1), l is lightness (0-1).
func HSLToRGB(h, s, l float64) RGB {
	r, g, b := colorful.Hsl(normaliseHue(h), clamp01(s), clamp01(l)).Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// HSL returns the hue (0-360), saturation (0-1) and lightness (0-1) of rgb.
func HSL(rgb RGB) (h, s, l float64) {
	return rgbToHSL(rgb)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
