package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/posterize/internal/colour"
	"github.com/jmylchreest/posterize/internal/config"
	"github.com/jmylchreest/posterize/internal/seed"
)

var _ pflag.Value = (*colour.HarmonyMode)(nil)

// pipelineFlags holds the flags shared by every command that runs the pipeline.
type pipelineFlags struct {
	configPath string
	colours    int
	detail     int
	iterations int
	algorithm  string
	weighting  string
	character  string
	value      float64
	harmony    colour.HarmonyMode
	remap      string
	seed       uint64
	seedMode   string
	maxPixels  int
}

// runSettings is everything a command resolved from defaults, recipe and flags.
type runSettings struct {
	opts     colour.Options
	seedMode seed.Mode
}

// register binds the pipeline flags to fs with their defaults.
func (f *pipelineFlags) register(fs *pflag.FlagSet) {
	d := colour.DefaultOptions()
	f.harmony = d.Harmony

	fs.StringVar(&f.configPath, "config", "", "YAML recipe with pipeline settings (flags override it)")
	fs.IntVarP(&f.colours, "colours", "c", d.Colours, "number of palette colours")
	fs.IntVarP(&f.detail, "detail", "d", d.DetailLevel, "sampling detail; stride is 1000/detail pixels")
	fs.IntVar(&f.iterations, "iterations", d.MaxIterations, "maximum k-means iterations")
	fs.StringVarP(&f.algorithm, "algorithm", "a", string(d.Algorithm), "clustering algorithm ("+joinNames(colour.ValidAlgorithms())+")")
	fs.StringVar(&f.weighting, "weighting", string(d.Weighting), "sample weighting ("+joinNames(colour.ValidWeightings())+")")
	fs.StringVar(&f.character, "character", "", "palette character ("+joinNames(colour.ValidCharacters())+")")
	fs.Float64Var(&f.value, "value", 0, "shift palette lightness by this many L* units")
	fs.Var(&f.harmony, "harmony", "hue harmony ("+joinNames(colour.ValidHarmonyModes())+")")
	fs.StringVar(&f.remap, "remap", string(d.Remap), "pixel remap mode ("+joinNames(colour.ValidRemapModes())+")")
	fs.Uint64Var(&f.seed, "seed", d.Seed, "seed for reproducible k-means++ initialisation")
	fs.StringVar(&f.seedMode, "seed-mode", string(seed.ModeManual), "how the seed is chosen ("+joinNames(seed.ValidModes())+")")
	fs.IntVar(&f.maxPixels, "max-pixels", d.MaxPixels, "refuse images with more pixels than this (0 disables)")
}

// resolve applies defaults, then the recipe from --config, then every flag
// set explicitly on the command line.
func (f *pipelineFlags) resolve(cmd *cobra.Command) (runSettings, error) {
	opts := colour.DefaultOptions()
	mode := seed.ModeManual

	if f.configPath != "" {
		recipe, err := config.Load(f.configPath)
		if err != nil {
			return runSettings{}, err
		}
		opts = recipe.Apply(opts)
		mode = recipe.SeedModeOr(mode)
	}

	fs := cmd.Flags()
	if fs.Changed("colours") {
		opts.Colours = f.colours
	}
	if fs.Changed("detail") {
		opts.DetailLevel = f.detail
	}
	if fs.Changed("iterations") {
		opts.MaxIterations = f.iterations
	}
	if fs.Changed("algorithm") {
		opts.Algorithm = colour.Algorithm(f.algorithm)
	}
	if fs.Changed("weighting") {
		opts.Weighting = colour.Weighting(f.weighting)
	}
	if fs.Changed("character") {
		opts.Modification.Character = colour.Character(f.character)
	}
	if fs.Changed("value") {
		v := f.value
		opts.Modification.Value = &v
	}
	if fs.Changed("harmony") {
		opts.Harmony = f.harmony
	}
	if fs.Changed("remap") {
		opts.Remap = colour.RemapMode(f.remap)
	}
	if fs.Changed("seed") {
		opts.Seed = f.seed
	}
	if fs.Changed("max-pixels") {
		opts.MaxPixels = f.maxPixels
	}
	if fs.Changed("seed-mode") {
		mode = seed.Mode(f.seedMode)
	}

	if err := opts.Validate(); err != nil {
		return runSettings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	mode, err := seed.ParseMode(string(mode))
	if err != nil {
		return runSettings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return runSettings{opts: opts, seedMode: mode}, nil
}

func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
