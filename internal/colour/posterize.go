package colour

import (
	"fmt"
	"image"
	"slices"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"
)

// RemapMode selects which Lab value drives each output pixel.
type RemapMode string

const (
	// RemapSampled walks the sampled Lab array positionally: output pixel i
	// takes the colour nearest to sample i, and pixels past the last sample
	// are left transparent. This reproduces the historical output, including
	// its transparent tail whenever the stride is greater than 1.
	RemapSampled RemapMode = "sampled"

	// RemapFull maps every pixel from its own Lab value; the output is fully opaque.
	RemapFull RemapMode = "full"
)

// ValidRemapModes returns the supported remap modes.
func ValidRemapModes() []RemapMode {
	return []RemapMode{RemapSampled, RemapFull}
}

// DefaultMaxPixels is the largest image Process accepts by default (64 MP).
const DefaultMaxPixels = 64 << 20

// Options configures a posterization run.
type Options struct {
	Colours       int
	DetailLevel   int
	MaxIterations int
	Algorithm     Algorithm
	Weighting     Weighting
	Seed          uint64
	Modification  Modification
	Harmony       HarmonyMode
	Remap         RemapMode
	// MaxPixels bounds width*height; 0 disables the check.
	MaxPixels int
}

// DefaultOptions returns the default posterization options.
func DefaultOptions() Options {
	return Options{
		Colours:       8,
		DetailLevel:   1000,
		MaxIterations: DefaultMaxIterations,
		Algorithm:     AlgorithmKMeans,
		Weighting:     WeightingContrast,
		Seed:          DefaultSeed,
		Harmony:       HarmonyNone,
		Remap:         RemapSampled,
		MaxPixels:     DefaultMaxPixels,
	}
}

// Validate checks the options without looking at any image.
func (o Options) Validate() error {
	if o.Colours < 1 {
		return fmt.Errorf("%w: colour count must be at least 1, got %d", ErrInvalidInput, o.Colours)
	}
	if _, err := SampleStride(o.DetailLevel); err != nil {
		return err
	}
	if o.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrInvalidInput, o.MaxIterations)
	}
	if !IsValidAlgorithm(o.Algorithm) {
		return fmt.Errorf("%w: unknown algorithm: %s (valid algorithms: %v)", ErrInvalidInput, o.Algorithm, ValidAlgorithms())
	}
	if _, err := ParseWeighting(string(o.Weighting)); err != nil {
		return err
	}
	if err := o.Modification.Validate(); err != nil {
		return err
	}
	if _, err := ParseHarmonyMode(string(o.Harmony)); err != nil {
		return err
	}
	if o.Remap != "" && !slices.Contains(ValidRemapModes(), o.Remap) {
		return fmt.Errorf("%w: unknown remap mode %q (valid: %v)", ErrInvalidInput, o.Remap, ValidRemapModes())
	}
	if o.MaxPixels < 0 {
		return fmt.Errorf("%w: max pixels cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Input is a raw 8-bit RGBA pixel buffer, row-major, 4 bytes per pixel.
// Alpha is ignored.
type Input struct {
	Pixels []uint8
	Width  int
	Height int
}

// NewInput wraps an RGBA buffer after checking its length against the dimensions.
func NewInput(pixels []uint8, width, height int) (Input, error) {
	if width <= 0 || height <= 0 {
		return Input{}, fmt.Errorf("%w: image dimensions must be positive, got %dx%d", ErrInvalidInput, width, height)
	}
	if len(pixels) != width*height*4 {
		return Input{}, fmt.Errorf("%w: expected %d bytes for %dx%d RGBA, got %d",
			ErrInvalidInput, width*height*4, width, height, len(pixels))
	}
	return Input{Pixels: pixels, Width: width, Height: height}, nil
}

// InputFromImage copies any image into an Input.
func InputFromImage(img image.Image) Input {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return Input{Pixels: dst.Pix, Width: b.Dx(), Height: b.Dy()}
}

// Stats summarises a run for logging and reporting.
type Stats struct {
	Samples         int     `json:"samples"`
	Stride          int     `json:"stride"`
	DistinctColours int     `json:"distinct_colours"`
	MeanWeight      float64 `json:"mean_weight"`
	WeightStdDev    float64 `json:"weight_stddev"`
	Iterations      int     `json:"iterations"`
	Converged       bool    `json:"converged"`
	// QuantizationError is the weighted mean Lab distance from each sample
	// to its raw centroid.
	QuantizationError float64 `json:"quantization_error"`
	// ClusterWeights is the summed sample weight behind each palette entry.
	ClusterWeights []float64 `json:"cluster_weights"`
}

// Result is everything a run hands back to its caller.
type Result struct {
	Palette *Palette
	// Centroids are the styled centroids used for remapping, one per palette entry.
	Centroids []Lab
	// RawCentroids are the centroids as clustering produced them.
	RawCentroids []Lab
	// Pixels is the RGBA output buffer with the input's dimensions.
	Pixels     []uint8
	Width      int
	Height     int
	Clustering *Clustering
	Stats      Stats
}

// Image wraps the output buffer as an image without copying it.
func (r *Result) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pixels,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Posterizer runs the posterization pipeline. It holds no per-image state and
// can be reused; each Process call owns its buffers.
type Posterizer struct {
	opts   Options
	logger hclog.Logger
}

// PosterizerOption configures a Posterizer.
type PosterizerOption func(*Posterizer)

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(logger hclog.Logger) PosterizerOption {
	return func(p *Posterizer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPosterizer validates opts and returns a Posterizer.
func NewPosterizer(opts Options, options ...PosterizerOption) (*Posterizer, error) {
	if opts.Remap == "" {
		opts.Remap = RemapSampled
	}
	if opts.Harmony == "" {
		opts.Harmony = HarmonyNone
	}
	if opts.Weighting == "" {
		opts.Weighting = WeightingContrast
	}
	if opts.Algorithm == "" {
		opts.Algorithm = AlgorithmKMeans
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	p := &Posterizer{
		opts:   opts,
		logger: hclog.NewNullLogger(),
	}
	for _, o := range options {
		o(p)
	}
	return p, nil
}

// Options returns the options the Posterizer was built with.
func (p *Posterizer) Options() Options {
	return p.opts
}

// Process samples, clusters, styles and remaps one image. Input problems are
// reported before any clustering starts and no partial result is returned.
func (p *Posterizer) Process(in Input) (*Result, error) {
	if err := p.validateInput(in); err != nil {
		return nil, err
	}
	opts := p.opts
	width, height := in.Width, in.Height
	pixelCount := width * height

	converter := NewLabConverter()
	labs := make([]Lab, pixelCount)
	for i := range labs {
		o := i * 4
		labs[i] = converter.Convert(RGB{R: in.Pixels[o], G: in.Pixels[o+1], B: in.Pixels[o+2]})
	}

	samples, err := Sample(labs, width, height, opts.DetailLevel, opts.Weighting)
	if err != nil {
		return nil, err
	}
	meanWeight, stdWeight := samples.WeightStats()
	p.logger.Debug("sampled image",
		"width", width, "height", height,
		"stride", samples.Stride, "samples", samples.Len(),
		"distinct_colours", converter.Len(),
		"mean_weight", meanWeight, "weight_stddev", stdWeight)

	if opts.Colours > samples.Len() {
		return nil, fmt.Errorf("%w: palette size %d exceeds sample count %d (raise the detail level or lower the colour count)",
			ErrInvalidInput, opts.Colours, samples.Len())
	}

	clusterer, err := NewClusterer(opts.Algorithm, opts.Seed)
	if err != nil {
		return nil, err
	}
	clustering, err := clusterer.Cluster(samples.Lab, samples.Weights, opts.Colours, opts.MaxIterations)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster samples: %w", err)
	}
	p.logger.Debug("clustered samples",
		"algorithm", opts.Algorithm, "k", opts.Colours,
		"iterations", clustering.Iterations, "converged", clustering.Converged)

	styled, err := opts.Modification.Apply(clustering.Centroids)
	if err != nil {
		return nil, err
	}

	palette, err := ApplyHarmony(PaletteFromLab(styled), opts.Harmony)
	if err != nil {
		return nil, err
	}

	var pixels []uint8
	switch opts.Remap {
	case RemapFull:
		pixels, err = Remap(labs, pixelCount, palette, styled)
	default:
		pixels, err = Remap(samples.Lab, pixelCount, palette, styled)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Palette:      palette,
		Centroids:    styled,
		RawCentroids: clustering.Centroids,
		Pixels:       pixels,
		Width:        width,
		Height:       height,
		Clustering:   clustering,
		Stats: Stats{
			Samples:           samples.Len(),
			Stride:            samples.Stride,
			DistinctColours:   converter.Len(),
			MeanWeight:        meanWeight,
			WeightStdDev:      stdWeight,
			Iterations:        clustering.Iterations,
			Converged:         clustering.Converged,
			QuantizationError: quantizationError(samples, clustering),
			ClusterWeights:    clustering.ClusterWeights(samples.Weights),
		},
	}
	p.logger.Info("posterized image", "colours", palette.Len(), "remap", opts.Remap,
		"quantization_error", result.Stats.QuantizationError)

	return result, nil
}

func (p *Posterizer) validateInput(in Input) error {
	if len(in.Pixels) == 0 {
		return fmt.Errorf("%w: no image loaded", ErrInvalidInput)
	}
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("%w: image dimensions must be positive, got %dx%d", ErrInvalidInput, in.Width, in.Height)
	}
	if p.opts.MaxPixels > 0 && in.Width*in.Height > p.opts.MaxPixels {
		return fmt.Errorf("%w: image has %d pixels, limit is %d", ErrResourceExhausted, in.Width*in.Height, p.opts.MaxPixels)
	}
	if len(in.Pixels) != in.Width*in.Height*4 {
		return fmt.Errorf("%w: expected %d bytes for %dx%d RGBA, got %d",
			ErrInvalidInput, in.Width*in.Height*4, in.Width, in.Height, len(in.Pixels))
	}
	return nil
}

func quantizationError(samples *Samples, clustering *Clustering) float64 {
	dist := make([]float64, samples.Len())
	for i, s := range samples.Lab {
		dist[i] = LabDistance(s, clustering.Centroids[clustering.Assignment[i]])
	}
	return stat.Mean(dist, samples.Weights)
}

// Remap renders pixelCount RGBA pixels. Pixel i takes the palette entry whose
// centroid is nearest to labs[i] (linear scan, ties to the lowest index) with
// alpha 255. Pixels with no corresponding Lab value (i >= len(labs)) are
// written fully transparent.
//
// Pass the full-resolution Lab grid to map every pixel, or the sampled Lab
// array to reproduce the positional sampled-prefix output.
func Remap(labs []Lab, pixelCount int, palette *Palette, centroids []Lab) ([]uint8, error) {
	if palette == nil || palette.Len() == 0 {
		return nil, fmt.Errorf("%w: palette is empty", ErrInvalidInput)
	}
	if palette.Len() != len(centroids) {
		return nil, fmt.Errorf("%w: palette has %d colours but %d centroids were given",
			ErrInvalidInput, palette.Len(), len(centroids))
	}
	if pixelCount < 0 {
		return nil, fmt.Errorf("%w: negative pixel count %d", ErrInvalidInput, pixelCount)
	}

	out := make([]uint8, pixelCount*4)
	for i := 0; i < pixelCount && i < len(labs); i++ {
		col := palette.Colors[nearestCentroid(labs[i], centroids)]
		o := i * 4
		out[o] = col.R
		out[o+1] = col.G
		out[o+2] = col.B
		out[o+3] = 255
	}
	return out, nil
}
