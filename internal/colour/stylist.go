package colour

import (
	"fmt"
	"math"
	"slices"
)

// Character is a named stylistic transform applied to Lab centroids.
type Character string

const (
	CharacterNone    Character = ""
	CharacterVibrant Character = "vibrant" // chroma boosted
	CharacterMuted   Character = "muted"   // chroma reduced
	CharacterPastel  Character = "pastel"  // low chroma, lifted lightness
	CharacterMoody   Character = "moody"   // darker, slightly desaturated
	CharacterWarm    Character = "warm"    // shifted toward red/yellow
	CharacterCool    Character = "cool"    // shifted toward green/blue
)

// ValidCharacters returns the supported character transforms.
func ValidCharacters() []Character {
	return []Character{
		CharacterVibrant,
		CharacterMuted,
		CharacterPastel,
		CharacterMoody,
		CharacterWarm,
		CharacterCool,
	}
}

// ParseCharacter converts a name to a Character. The empty string means none.
func ParseCharacter(s string) (Character, error) {
	c := Character(s)
	if c == CharacterNone || slices.Contains(ValidCharacters(), c) {
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown character %q (valid: %v)", ErrInvalidInput, s, ValidCharacters())
}

// Modification describes optional palette transforms. A zero value applies nothing.
type Modification struct {
	Character Character
	// Value shifts every centroid's lightness when non-nil.
	Value *float64
}

// Validate reports whether the modification can be applied.
func (m Modification) Validate() error {
	if _, err := ParseCharacter(string(m.Character)); err != nil {
		return err
	}
	if m.Value != nil && (math.IsNaN(*m.Value) || math.IsInf(*m.Value, 0)) {
		return fmt.Errorf("%w: value adjustment must be a finite number", ErrInvalidInput)
	}
	return nil
}

// Apply runs the character transform and then the value shift, skipping
// whichever is not configured.
func (m Modification) Apply(centroids []Lab) ([]Lab, error) {
	out := slices.Clone(centroids)
	if m.Character != CharacterNone {
		var err error
		if out, err = ModifyCharacter(out, m.Character); err != nil {
			return nil, err
		}
	}
	if m.Value != nil {
		out = AdjustValue(out, *m.Value)
	}
	return out, nil
}

// ModifyCharacter returns a copy of centroids with the named transform applied.
// Lightness is clamped to [0,100]; chroma changes scale a and b together so hue
// is preserved.
func ModifyCharacter(centroids []Lab, character Character) ([]Lab, error) {
	var fn func(Lab) Lab
	switch character {
	case CharacterNone:
		return slices.Clone(centroids), nil
	case CharacterVibrant:
		fn = func(c Lab) Lab { return scaleChroma(c, 1.35) }
	case CharacterMuted:
		fn = func(c Lab) Lab { return scaleChroma(c, 0.55) }
	case CharacterPastel:
		fn = func(c Lab) Lab {
			c = scaleChroma(c, 0.5)
			c.L += (100 - c.L) * 0.4
			return c
		}
	case CharacterMoody:
		fn = func(c Lab) Lab {
			c = scaleChroma(c, 0.85)
			c.L *= 0.8
			return c
		}
	case CharacterWarm:
		fn = func(c Lab) Lab {
			c.A += 6
			c.B += 14
			return c
		}
	case CharacterCool:
		fn = func(c Lab) Lab {
			c.A -= 4
			c.B -= 16
			return c
		}
	default:
		return nil, fmt.Errorf("%w: unknown character %q (valid: %v)", ErrInvalidInput, character, ValidCharacters())
	}

	out := make([]Lab, len(centroids))
	for i, c := range centroids {
		c = fn(c)
		c.L = clamp(c.L, 0, 100)
		out[i] = c
	}
	return out, nil
}

func scaleChroma(c Lab, factor float64) Lab {
	c.A *= factor
	c.B *= factor
	return c
}

// AdjustValue returns a copy of centroids with L shifted by delta and clamped to [0,100].
func AdjustValue(centroids []Lab, delta float64) []Lab {
	out := make([]Lab, len(centroids))
	for i, c := range centroids {
		c.L = clamp(c.L+delta, 0, 100)
		out[i] = c
	}
	return out
}
