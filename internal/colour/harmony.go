package colour

import (
	"fmt"
	"math"
	"slices"
)

// HarmonyMode names a rule constraining the hue relationships of a palette.
type HarmonyMode string

const (
	HarmonyNone          HarmonyMode = "none"
	HarmonyMonochrome    HarmonyMode = "monochrome"
	HarmonyComplementary HarmonyMode = "complementary"
	HarmonyAnalogous     HarmonyMode = "analogous"
	HarmonyTriadic       HarmonyMode = "triadic"
)

const (
	// analogousSpread is the maximum hue deviation from the base hue.
	analogousSpread = 30.0

	// achromaticSaturation is the HSL saturation at or below which a colour
	// is treated as grey and left alone.
	achromaticSaturation = 0.02
)

// ValidHarmonyModes returns the supported harmony modes.
func ValidHarmonyModes() []HarmonyMode {
	return []HarmonyMode{
		HarmonyNone,
		HarmonyMonochrome,
		HarmonyComplementary,
		HarmonyAnalogous,
		HarmonyTriadic,
	}
}

// ParseHarmonyMode converts a name to a HarmonyMode. The empty string means none.
func ParseHarmonyMode(s string) (HarmonyMode, error) {
	if s == "" {
		return HarmonyNone, nil
	}
	m := HarmonyMode(s)
	if !slices.Contains(ValidHarmonyModes(), m) {
		return "", fmt.Errorf("%w: unknown harmony mode %q (valid: %v)", ErrInvalidInput, s, ValidHarmonyModes())
	}
	return m, nil
}

// String implements fmt.Stringer and pflag.Value.
func (m *HarmonyMode) String() string {
	if m == nil || *m == "" {
		return string(HarmonyNone)
	}
	return string(*m)
}

// Set implements pflag.Value.
func (m *HarmonyMode) Set(s string) error {
	parsed, err := ParseHarmonyMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value.
func (m *HarmonyMode) Type() string {
	return "harmony"
}

// anchors returns the hue offsets, relative to the base hue, that palette
// hues are snapped to. Analogous and none have no anchors.
func (m HarmonyMode) anchors() []float64 {
	switch m {
	case HarmonyMonochrome:
		return []float64{0}
	case HarmonyComplementary:
		return []float64{0, 180}
	case HarmonyTriadic:
		return []float64{0, 120, 240}
	default:
		return nil
	}
}

// ApplyHarmony returns a copy of the palette with hues redistributed according
// to mode. Work happens in HSL: saturation and lightness of each entry are kept,
// only hue moves. Grey entries are left untouched, and a palette without any
// chromatic entry is returned unchanged.
//
// The base hue is the saturation-weighted circular mean of the chromatic entries.
// Complementary and triadic snap every hue to one of 2 or 3 anchors around the
// base and use all anchors whenever there are enough chromatic entries, even if
// the input hues are close together.
func ApplyHarmony(p *Palette, mode HarmonyMode) (*Palette, error) {
	mode, err := ParseHarmonyMode(string(mode))
	if err != nil {
		return nil, err
	}
	out := p.Clone()
	if mode == HarmonyNone {
		return out, nil
	}

	base, ok := representativeHue(p.Colors)
	if !ok {
		return out, nil
	}

	var entries []harmonyEntry
	for i, rgb := range p.Colors {
		h, s, l := rgbToHSL(rgb)
		if s <= achromaticSaturation {
			continue
		}
		entries = append(entries, harmonyEntry{index: i, h: h, s: s, l: l})
	}

	if mode == HarmonyAnalogous {
		for _, e := range entries {
			d := signedHueDelta(base, e.h)
			out.Colors[e.index] = HSLToRGB(base+clamp(d, -analogousSpread, analogousSpread), e.s, e.l)
		}
		return out, nil
	}

	anchors := mode.anchors()
	for i := range anchors {
		anchors[i] = normaliseHue(base + anchors[i])
	}
	for j, a := range assignAnchors(entries, anchors) {
		e := entries[j]
		out.Colors[e.index] = HSLToRGB(anchors[a], e.s, e.l)
	}

	return out, nil
}

type harmonyEntry struct {
	index   int
	h, s, l float64
}

// assignAnchors maps each entry to an anchor hue. Entries start at their
// nearest anchor; then, while an anchor is empty, the entry closest to it is
// moved over from an anchor holding more than one entry. With at least as many
// entries as anchors, every anchor ends up used.
func assignAnchors(entries []harmonyEntry, anchors []float64) []int {
	assign := make([]int, len(entries))
	counts := make([]int, len(anchors))
	for j, e := range entries {
		assign[j] = nearestAnchor(e.h, anchors)
		counts[assign[j]]++
	}

	for a := range anchors {
		if counts[a] > 0 {
			continue
		}
		donor := -1
		minDist := math.MaxFloat64
		for j, e := range entries {
			if counts[assign[j]] < 2 {
				continue
			}
			if d := HueDistance(e.h, anchors[a]); d < minDist {
				minDist = d
				donor = j
			}
		}
		if donor < 0 {
			break
		}
		counts[assign[donor]]--
		assign[donor] = a
		counts[a]++
	}

	return assign
}

// representativeHue returns the saturation-weighted circular mean hue of the
// chromatic colours. If those hues cancel out exactly, the hue of the most
// saturated colour is used instead.
func representativeHue(colors []RGB) (float64, bool) {
	var x, y float64
	found := false
	bestS, bestH := -1.0, 0.0

	for _, rgb := range colors {
		h, s, _ := rgbToHSL(rgb)
		if s <= achromaticSaturation {
			continue
		}
		found = true
		rad := h * math.Pi / 180
		x += s * math.Cos(rad)
		y += s * math.Sin(rad)
		if s > bestS {
			bestS, bestH = s, h
		}
	}

	if !found {
		return 0, false
	}
	if math.Hypot(x, y) < 1e-9 {
		return bestH, true
	}
	return normaliseHue(math.Atan2(y, x) * 180 / math.Pi), true
}

// nearestAnchor returns the index of the anchor hue closest to h; ties go to
// the lowest index.
func nearestAnchor(h float64, anchors []float64) int {
	best := 0
	minDist := math.MaxFloat64
	for i, anchor := range anchors {
		if d := HueDistance(h, anchor); d < minDist {
			minDist = d
			best = i
		}
	}
	return best
}
