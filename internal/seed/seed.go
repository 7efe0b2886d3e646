// Package seed derives the k-means++ seed for a posterization run.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmylchreest/posterize/internal/colour"
)

// Mode determines how the seed is chosen.
type Mode string

const (
	// ModeManual uses the configured seed value (default).
	ModeManual Mode = "manual"
	// ModeContent hashes the pixel data, so identical images share a seed wherever they live.
	ModeContent Mode = "content"
	// ModeFilepath hashes the absolute path or URL of the source.
	ModeFilepath Mode = "filepath"
	// ModeRandom picks a fresh seed on every run.
	ModeRandom Mode = "random"
)

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeManual, ModeContent, ModeFilepath, ModeRandom}
}

// ParseMode converts a string to a Mode. The empty string selects manual.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeManual, nil
	}
	mode := Mode(s)
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("%w: invalid seed mode %q (valid: %v)", colour.ErrInvalidInput, s, ValidModes())
}

// Calculate returns the seed for mode. manual is the value used by ModeManual.
func Calculate(mode Mode, manual uint64, in colour.Input, source string) (uint64, error) {
	switch mode {
	case ModeManual, "":
		return manual, nil
	case ModeContent:
		return ContentSeed(in)
	case ModeFilepath:
		return FilepathSeed(source)
	case ModeRandom:
		return rand.Uint64(), nil // #nosec G404 -- non-reproducible by request
	default:
		return 0, fmt.Errorf("%w: invalid seed mode %q", colour.ErrInvalidInput, mode)
	}
}

// ContentSeed hashes the dimensions and a grid of at most ~100x100 pixels.
func ContentSeed(in colour.Input) (uint64, error) {
	if len(in.Pixels) == 0 || len(in.Pixels) != in.Width*in.Height*4 {
		return 0, fmt.Errorf("%w: content seed needs a complete image", colour.ErrInvalidInput)
	}

	hasher := sha256.New()

	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(in.Width))  // #nosec G115 -- image dimensions are positive
	binary.LittleEndian.PutUint32(dims[4:8], uint32(in.Height)) // #nosec G115 -- image dimensions are positive
	hasher.Write(dims[:])

	step := max(in.Width/100, in.Height/100, 1)
	for y := 0; y < in.Height; y += step {
		for x := 0; x < in.Width; x += step {
			o := (y*in.Width + x) * 4
			hasher.Write(in.Pixels[o : o+3])
		}
	}

	return binary.LittleEndian.Uint64(hasher.Sum(nil)[:8]), nil
}

// FilepathSeed hashes the absolute path of source; URLs are hashed as given.
func FilepathSeed(source string) (uint64, error) {
	if source == "" {
		return 0, fmt.Errorf("%w: image path cannot be empty", colour.ErrInvalidInput)
	}

	key := source
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		if abs, err := filepath.Abs(source); err == nil {
			key = abs
		}
	}

	hash := sha256.Sum256([]byte(key))
	return binary.LittleEndian.Uint64(hash[:8]), nil
}
