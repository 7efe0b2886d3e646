package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/posterize/internal/colour"
	"github.com/jmylchreest/posterize/internal/seed"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		contents string
		assert   func(t *testing.T, r *Recipe, err error)
	}{
		{
			name: "full recipe is parsed",
			contents: `colours: 6
detail: 250
iterations: 40
algorithm: dominant
weighting: chroma
character: pastel
value: -12.5
harmony: triadic
remap: full
seed: 99
seed_mode: content
max_pixels: 1000000
`,
			assert: func(t *testing.T, r *Recipe, err error) {
				require.NoError(t, err)
				require.Equal(t, 6, r.Colours)
				require.Equal(t, 250, r.Detail)
				require.Equal(t, 40, r.Iterations)
				require.Equal(t, "dominant", r.Algorithm)
				require.Equal(t, "chroma", r.Weighting)
				require.Equal(t, "pastel", r.Character)
				require.NotNil(t, r.Value)
				require.InDelta(t, -12.5, *r.Value, 1e-9)
				require.Equal(t, "triadic", r.Harmony)
				require.Equal(t, "full", r.Remap)
				require.NotNil(t, r.Seed)
				require.Equal(t, uint64(99), *r.Seed)
				require.Equal(t, seed.ModeContent, r.SeedModeOr(seed.ModeManual))
				require.NotNil(t, r.MaxPixels)
				require.Equal(t, 1000000, *r.MaxPixels)
			},
		},
		{
			name:     "empty document sets nothing",
			contents: "",
			assert: func(t *testing.T, r *Recipe, err error) {
				require.NoError(t, err)
				require.Equal(t, Recipe{}, *r)
			},
		},
		{
			name:     "unknown key is rejected",
			contents: "colors: 4\n",
			assert: func(t *testing.T, r *Recipe, err error) {
				require.Error(t, err)
				require.Nil(t, r)
				require.Contains(t, err.Error(), "colors")
			},
		},
		{
			name:     "malformed yaml is rejected",
			contents: "colours: [1, 2\n",
			assert: func(t *testing.T, r *Recipe, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "failed to parse YAML")
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, err := Parse([]byte(tc.contents))
			tc.assert(t, r, err)
		})
	}
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		contents  string
		wantField string
		wantTag   string
	}{
		{name: "too many colours", contents: "colours: 300\n", wantField: "colours", wantTag: "max"},
		{name: "negative detail", contents: "detail: -1\n", wantField: "detail", wantTag: "min"},
		{name: "unknown algorithm", contents: "algorithm: octree\n", wantField: "algorithm", wantTag: "algorithm"},
		{name: "unknown weighting", contents: "weighting: edges\n", wantField: "weighting", wantTag: "weighting"},
		{name: "unknown character", contents: "character: noir\n", wantField: "character", wantTag: "character"},
		{name: "value out of range", contents: "value: 150\n", wantField: "value", wantTag: "max"},
		{name: "unknown harmony", contents: "harmony: tetradic\n", wantField: "harmony", wantTag: "harmony"},
		{name: "unknown remap", contents: "remap: dither\n", wantField: "remap", wantTag: "remap"},
		{name: "unknown seed mode", contents: "seed_mode: lunar\n", wantField: "seed_mode", wantTag: "seed_mode"},
		{name: "negative max pixels", contents: "max_pixels: -1\n", wantField: "max_pixels", wantTag: "min"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.contents))
			require.Error(t, err)
			require.ErrorIs(t, err, colour.ErrInvalidInput)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.wantField, ve.Field)
			require.Equal(t, tc.wantTag, ve.Tag)
		})
	}
}

func TestRecipeCanDisablePixelLimit(t *testing.T) {
	t.Parallel()

	r, err := Parse([]byte("max_pixels: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, r.MaxPixels)
	require.Equal(t, 0, r.Options().MaxPixels)

	// Leaving it out keeps the default guard.
	r, err = Parse([]byte("colours: 4\n"))
	require.NoError(t, err)
	require.Equal(t, colour.DefaultMaxPixels, r.Options().MaxPixels)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colours: 3\nharmony: monochrome\n"), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, r.Colours)
	require.Equal(t, "monochrome", r.Harmony)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("colours: 0.5\n"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
	require.Contains(t, err.Error(), bad)
}

func TestRecipeApply(t *testing.T) {
	t.Parallel()

	value := 8.0
	seedValue := uint64(7)
	r := &Recipe{
		Colours:   5,
		Algorithm: "unweighted",
		Character: "moody",
		Value:     &value,
		Seed:      &seedValue,
		Remap:     "full",
	}

	opts := r.Options()
	require.Equal(t, 5, opts.Colours)
	require.Equal(t, colour.AlgorithmUnweighted, opts.Algorithm)
	require.Equal(t, colour.CharacterMoody, opts.Modification.Character)
	require.NotNil(t, opts.Modification.Value)
	require.InDelta(t, 8.0, *opts.Modification.Value, 1e-9)
	require.Equal(t, uint64(7), opts.Seed)
	require.Equal(t, colour.RemapFull, opts.Remap)

	// Unset fields keep their defaults.
	defaults := colour.DefaultOptions()
	require.Equal(t, defaults.DetailLevel, opts.DetailLevel)
	require.Equal(t, defaults.MaxIterations, opts.MaxIterations)
	require.Equal(t, defaults.Weighting, opts.Weighting)
	require.Equal(t, defaults.Harmony, opts.Harmony)
	require.NoError(t, opts.Validate())

	require.Equal(t, seed.ModeRandom, r.SeedModeOr(seed.ModeRandom))

	// The recipe's value is copied, not shared.
	value = 50
	require.InDelta(t, 8.0, *opts.Modification.Value, 1e-9)
}
