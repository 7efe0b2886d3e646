// Package colour implements the posterization pipeline: Lab conversion,
// importance sampling, weighted k-means, palette styling and remapping.
package colour

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Lab is a CIE-Lab colour (D65). L is nominally 0-100.
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// String returns the colour as "lab(L, a, b)".
func (c Lab) String() string {
	return fmt.Sprintf("lab(%.2f, %.2f, %.2f)", c.L, c.A, c.B)
}

// Chroma returns the distance of the colour from the neutral axis.
func (c Lab) Chroma() float64 {
	return math.Hypot(c.A, c.B)
}

// IsFinite reports whether every component is a finite number.
func (c Lab) IsFinite() bool {
	for _, v := range [3]float64{c.L, c.A, c.B} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// go-colorful works with L in [0,1]; the rest of the package uses the
// conventional 0-100 scale.
const colorfulLabScale = 100.0

// RGBToLab converts an 8-bit sRGB colour to Lab via linear RGB and XYZ (D65).
func RGBToLab(rgb RGB) Lab {
	c := colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
	l, a, b := c.Lab()
	return Lab{L: l * colorfulLabScale, A: a * colorfulLabScale, B: b * colorfulLabScale}
}

// LabToRGB converts a Lab colour back to 8-bit sRGB. Out-of-gamut results are
// clamped to [0,255] and rounded to the nearest integer.
func LabToRGB(c Lab) RGB {
	col := colorful.Lab(c.L/colorfulLabScale, c.A/colorfulLabScale, c.B/colorfulLabScale).Clamped()
	r, g, b := col.RGB255()
	return RGB{R: r, G: g, B: b}
}

// LabDistance returns the Euclidean (CIE76) distance between two Lab colours.
func LabDistance(c1, c2 Lab) float64 {
	dl := c1.L - c2.L
	da := c1.A - c2.A
	db := c1.B - c2.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// LabConverter memoizes RGB to Lab conversions. Photographs repeat colours
// heavily, so converting each distinct RGB once saves most of the work.
// A LabConverter is not safe for concurrent use.
type LabConverter struct {
	cache map[RGB]Lab
}

// NewLabConverter creates an empty converter.
func NewLabConverter() *LabConverter {
	return &LabConverter{cache: make(map[RGB]Lab)}
}

// Convert returns the Lab value for rgb.
func (lc *LabConverter) Convert(rgb RGB) Lab {
	if lab, ok := lc.cache[rgb]; ok {
		return lab
	}
	lab := RGBToLab(rgb)
	lc.cache[rgb] = lab
	return lab
}

// Len returns the number of distinct colours converted so far.
func (lc *LabConverter) Len() int {
	return len(lc.cache)
}

// nearestCentroid returns the index of the centroid closest to c.
// Ties go to the lowest index.
func nearestCentroid(c Lab, centroids []Lab) int {
	best := 0
	minDist := math.MaxFloat64
	for i, centroid := range centroids {
		if d := LabDistance(c, centroid); d < minDist {
			minDist = d
			best = i
		}
	}
	return best
}
