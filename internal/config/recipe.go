// Package config loads posterize recipes: YAML files holding a reusable set of
// pipeline settings that command-line flags can override.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/posterize/internal/colour"
	"github.com/jmylchreest/posterize/internal/seed"
)

// Recipe is the on-disk form of the pipeline settings. Zero values mean
// "not set" and leave the corresponding option untouched.
type Recipe struct {
	Colours    int      `yaml:"colours" validate:"omitempty,min=1,max=256"`
	Detail     int      `yaml:"detail" validate:"omitempty,min=1"`
	Iterations int      `yaml:"iterations" validate:"omitempty,min=1,max=1000"`
	Algorithm  string   `yaml:"algorithm" validate:"omitempty,algorithm"`
	Weighting  string   `yaml:"weighting" validate:"omitempty,weighting"`
	Character  string   `yaml:"character" validate:"omitempty,character"`
	Value      *float64 `yaml:"value" validate:"omitempty,min=-100,max=100"`
	Harmony    string   `yaml:"harmony" validate:"omitempty,harmony"`
	Remap      string   `yaml:"remap" validate:"omitempty,remap"`
	Seed       *uint64  `yaml:"seed"`
	SeedMode   string   `yaml:"seed_mode" validate:"omitempty,seed_mode"`
	MaxPixels  *int     `yaml:"max_pixels" validate:"omitempty,min=0"`
}

// Load reads, decodes and validates a recipe file. Unknown keys are rejected.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe %s: %w", path, err)
	}

	recipe, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", path, err)
	}
	return recipe, nil
}

// Parse decodes and validates a recipe from YAML. An empty document is a valid
// recipe that sets nothing.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks every set field.
func (r *Recipe) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: recipe is nil", colour.ErrInvalidInput)
	}
	return convertValidationError(validatorInstance().Struct(r))
}

// Apply overlays the fields set in the recipe onto opts and returns the result.
// SeedMode is not part of the options; see SeedModeOr.
func (r *Recipe) Apply(opts colour.Options) colour.Options {
	if r.Colours != 0 {
		opts.Colours = r.Colours
	}
	if r.Detail != 0 {
		opts.DetailLevel = r.Detail
	}
	if r.Iterations != 0 {
		opts.MaxIterations = r.Iterations
	}
	if r.Algorithm != "" {
		opts.Algorithm = colour.Algorithm(r.Algorithm)
	}
	if r.Weighting != "" {
		opts.Weighting = colour.Weighting(r.Weighting)
	}
	if r.Character != "" {
		opts.Modification.Character = colour.Character(r.Character)
	}
	if r.Value != nil {
		v := *r.Value
		opts.Modification.Value = &v
	}
	if r.Harmony != "" {
		opts.Harmony = colour.HarmonyMode(r.Harmony)
	}
	if r.Remap != "" {
		opts.Remap = colour.RemapMode(r.Remap)
	}
	if r.Seed != nil {
		opts.Seed = *r.Seed
	}
	if r.MaxPixels != nil {
		opts.MaxPixels = *r.MaxPixels
	}
	return opts
}

// Options returns the default options with the recipe applied.
func (r *Recipe) Options() colour.Options {
	return r.Apply(colour.DefaultOptions())
}

// SeedModeOr returns the recipe's seed mode, or fallback when it sets none.
func (r *Recipe) SeedModeOr(fallback seed.Mode) seed.Mode {
	if r.SeedMode == "" {
		return fallback
	}
	return seed.Mode(r.SeedMode)
}
