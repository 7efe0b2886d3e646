package colour

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/hashicorp/go-hclog"
)

// solidInput returns a width x height buffer filled with one opaque colour.
func solidInput(width, height int, c RGB) Input {
	pix := make([]uint8, 0, width*height*4)
	for range width * height {
		pix = append(pix, c.R, c.G, c.B, 255)
	}
	return Input{Pixels: pix, Width: width, Height: height}
}

func testOptions(colours, detail int) Options {
	opts := DefaultOptions()
	opts.Colours = colours
	opts.DetailLevel = detail
	return opts
}

func newTestPosterizer(t *testing.T, opts Options) *Posterizer {
	t.Helper()
	p, err := NewPosterizer(opts, WithLogger(hclog.NewNullLogger()))
	if err != nil {
		t.Fatalf("NewPosterizer() error = %v", err)
	}
	return p
}

func closeTo(a, b RGB, tol int) bool {
	return absDiff(a.R, b.R) <= tol && absDiff(a.G, b.G) <= tol && absDiff(a.B, b.B) <= tol
}

func pixelAt(pix []uint8, i int) (RGB, uint8) {
	o := i * 4
	return RGB{R: pix[o], G: pix[o+1], B: pix[o+2]}, pix[o+3]
}

func TestProcessSolidImage(t *testing.T) {
	red := RGB{R: 255, G: 0, B: 0}
	p := newTestPosterizer(t, testOptions(1, 1000))

	res, err := p.Process(solidInput(2, 2, red))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if res.Palette.Len() != 1 {
		t.Fatalf("palette has %d colours, want 1", res.Palette.Len())
	}
	if !closeTo(res.Palette.Colors[0], red, 1) {
		t.Errorf("palette colour = %v, want %v", res.Palette.Colors[0], red)
	}
	if len(res.Pixels) != 2*2*4 {
		t.Fatalf("output has %d bytes, want 16", len(res.Pixels))
	}
	for i := range 4 {
		c, a := pixelAt(res.Pixels, i)
		if c != res.Palette.Colors[0] || a != 255 {
			t.Errorf("pixel %d = %v alpha %d, want %v alpha 255", i, c, a, res.Palette.Colors[0])
		}
	}
	if res.Stats.QuantizationError > 1e-9 {
		t.Errorf("QuantizationError = %v, want 0", res.Stats.QuantizationError)
	}
	if res.Stats.DistinctColours != 1 {
		t.Errorf("DistinctColours = %d, want 1", res.Stats.DistinctColours)
	}
}

func TestProcessBlackAndWhite(t *testing.T) {
	black := RGB{0, 0, 0}
	white := RGB{255, 255, 255}
	in := Input{Pixels: []uint8{0, 0, 0, 255, 255, 255, 255, 255}, Width: 1, Height: 2}

	for _, alg := range ValidAlgorithms() {
		t.Run(string(alg), func(t *testing.T) {
			opts := testOptions(2, 1000)
			opts.Algorithm = alg
			res, err := newTestPosterizer(t, opts).Process(in)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}

			var sawBlack, sawWhite bool
			for _, c := range res.Palette.Colors {
				sawBlack = sawBlack || closeTo(c, black, 1)
				sawWhite = sawWhite || closeTo(c, white, 1)
			}
			if !sawBlack || !sawWhite {
				t.Fatalf("palette %v should hold near-black and near-white", res.Palette.ToHex())
			}

			top, _ := pixelAt(res.Pixels, 0)
			bottom, _ := pixelAt(res.Pixels, 1)
			if !closeTo(top, black, 1) {
				t.Errorf("black pixel mapped to %v", top)
			}
			if !closeTo(bottom, white, 1) {
				t.Errorf("white pixel mapped to %v", bottom)
			}
		})
	}
}

func TestProcessReportsClusterWeights(t *testing.T) {
	// A flat image gives every sample weight 1.
	res, err := newTestPosterizer(t, testOptions(1, 1000)).Process(solidInput(2, 2, RGB{R: 200, G: 40, B: 40}))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := res.Stats.ClusterWeights; len(got) != 1 || math.Abs(got[0]-4) > 1e-9 {
		t.Errorf("ClusterWeights = %v, want [4]", got)
	}
}

func TestProcessRemapModes(t *testing.T) {
	in := solidInput(2, 2, RGB{R: 20, G: 120, B: 220})

	t.Run("sampled leaves a transparent tail", func(t *testing.T) {
		// Detail 500 gives stride 2, so two samples for four pixels.
		res, err := newTestPosterizer(t, testOptions(1, 500)).Process(in)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if res.Stats.Samples != 2 || res.Stats.Stride != 2 {
			t.Fatalf("samples=%d stride=%d, want 2 and 2", res.Stats.Samples, res.Stats.Stride)
		}
		for i, wantAlpha := range []uint8{255, 255, 0, 0} {
			if _, a := pixelAt(res.Pixels, i); a != wantAlpha {
				t.Errorf("pixel %d alpha = %d, want %d", i, a, wantAlpha)
			}
		}
	})

	t.Run("full maps every pixel", func(t *testing.T) {
		opts := testOptions(1, 500)
		opts.Remap = RemapFull
		res, err := newTestPosterizer(t, opts).Process(in)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		for i := range 4 {
			c, a := pixelAt(res.Pixels, i)
			if a != 255 || c != res.Palette.Colors[0] {
				t.Errorf("pixel %d = %v alpha %d", i, c, a)
			}
		}
	})
}

func TestProcessIsDeterministic(t *testing.T) {
	in := Input{Width: 8, Height: 8}
	for i := range 64 {
		in.Pixels = append(in.Pixels, uint8(i*4), uint8(255-i*3), uint8(i*i%256), 255)
	}

	p := newTestPosterizer(t, testOptions(4, 1000))
	a, err := p.Process(in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	b, err := p.Process(in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for i := range a.Palette.Colors {
		if a.Palette.Colors[i] != b.Palette.Colors[i] {
			t.Errorf("palette entry %d differs: %v vs %v", i, a.Palette.Colors[i], b.Palette.Colors[i])
		}
	}
	if a.Palette.Len() != 4 || len(a.Centroids) != 4 || len(a.RawCentroids) != 4 {
		t.Errorf("expected 4 colours and centroids, got %d/%d/%d", a.Palette.Len(), len(a.Centroids), len(a.RawCentroids))
	}
}

func TestProcessAppliesModification(t *testing.T) {
	value := -20.0
	opts := testOptions(1, 1000)
	opts.Modification = Modification{Value: &value}

	res, err := newTestPosterizer(t, opts).Process(solidInput(2, 2, RGB{R: 200, G: 200, B: 200}))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if d := res.RawCentroids[0].L - res.Centroids[0].L; math.Abs(d-20) > 1e-9 {
		t.Errorf("styled L is %v below raw, want 20", d)
	}
	if c, _ := pixelAt(res.Pixels, 0); c != res.Palette.Colors[0] {
		t.Errorf("pixel uses %v, want styled colour %v", c, res.Palette.Colors[0])
	}
}

func TestProcessRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		in      Input
		wantErr error
	}{
		{
			name:    "no pixels",
			opts:    testOptions(1, 1000),
			in:      Input{},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "buffer too short",
			opts:    testOptions(1, 1000),
			in:      Input{Pixels: make([]uint8, 12), Width: 2, Height: 2},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero width",
			opts:    testOptions(1, 1000),
			in:      Input{Pixels: make([]uint8, 4), Width: 0, Height: 1},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "more colours than samples",
			opts:    testOptions(2, 1000),
			in:      solidInput(1, 1, RGB{}),
			wantErr: ErrInvalidInput,
		},
		{
			name: "too many pixels",
			opts: func() Options {
				o := testOptions(1, 1000)
				o.MaxPixels = 3
				return o
			}(),
			in:      solidInput(2, 2, RGB{}),
			wantErr: ErrResourceExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestPosterizer(t, tt.opts).Process(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Process() error = %v, want %v", err, tt.wantErr)
			}
			if res != nil {
				t.Error("Process() returned a partial result")
			}
		})
	}
}

func TestNewPosterizerValidatesOptions(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{name: "zero colours", mutate: func(o *Options) { o.Colours = 0 }},
		{name: "zero detail", mutate: func(o *Options) { o.DetailLevel = 0 }},
		{name: "zero iterations", mutate: func(o *Options) { o.MaxIterations = 0 }},
		{name: "unknown algorithm", mutate: func(o *Options) { o.Algorithm = "octree" }},
		{name: "unknown weighting", mutate: func(o *Options) { o.Weighting = "edge" }},
		{name: "unknown character", mutate: func(o *Options) { o.Modification.Character = "noir" }},
		{name: "nan value", mutate: func(o *Options) { o.Modification.Value = &nan }},
		{name: "unknown harmony", mutate: func(o *Options) { o.Harmony = "split" }},
		{name: "unknown remap", mutate: func(o *Options) { o.Remap = "dither" }},
		{name: "negative max pixels", mutate: func(o *Options) { o.MaxPixels = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			if _, err := NewPosterizer(opts); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("NewPosterizer() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestNewPosterizerFillsDefaults(t *testing.T) {
	p, err := NewPosterizer(Options{Colours: 3, DetailLevel: 100, MaxIterations: 5})
	if err != nil {
		t.Fatalf("NewPosterizer() error = %v", err)
	}
	got := p.Options()
	if got.Algorithm != AlgorithmKMeans || got.Weighting != WeightingContrast ||
		got.Harmony != HarmonyNone || got.Remap != RemapSampled {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestInputFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(6, 5, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	in := InputFromImage(img)
	if in.Width != 2 || in.Height != 1 {
		t.Fatalf("dimensions = %dx%d, want 2x1", in.Width, in.Height)
	}
	want := []uint8{10, 20, 30, 255, 200, 100, 50, 255}
	if len(in.Pixels) != len(want) {
		t.Fatalf("got %d bytes, want %d", len(in.Pixels), len(want))
	}
	for i := range want {
		if in.Pixels[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, in.Pixels[i], want[i])
		}
	}
}

func TestResultImage(t *testing.T) {
	res, err := newTestPosterizer(t, testOptions(1, 1000)).Process(solidInput(3, 2, RGB{R: 9, G: 9, B: 9}))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	img := res.Image()
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("Bounds() = %v", img.Bounds())
	}
	if got := ToRGB(img.At(2, 1)); got != res.Palette.Colors[0] {
		t.Errorf("At(2,1) = %v, want %v", got, res.Palette.Colors[0])
	}
}

func TestRemap(t *testing.T) {
	palette := NewPalette([]RGB{{0, 0, 0}, {255, 255, 255}})
	centroids := []Lab{{L: 0}, {L: 100}}
	labs := []Lab{{L: 10}, {L: 90}, {L: 50}}

	out, err := Remap(labs, 4, palette, centroids)
	if err != nil {
		t.Fatalf("Remap() error = %v", err)
	}
	want := []uint8{
		0, 0, 0, 255,
		255, 255, 255, 255,
		0, 0, 0, 255, // equidistant, lowest index wins
		0, 0, 0, 0,
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, out[i], want[i])
		}
	}

	if _, err := Remap(labs, 3, NewPalette(nil), nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Remap(empty palette) error = %v, want ErrInvalidInput", err)
	}
	if _, err := Remap(labs, 3, palette, centroids[:1]); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Remap(mismatched centroids) error = %v, want ErrInvalidInput", err)
	}
}

func TestNewInput(t *testing.T) {
	in, err := NewInput(make([]uint8, 8), 2, 1)
	if err != nil {
		t.Fatalf("NewInput() error = %v", err)
	}
	if in.Width != 2 || in.Height != 1 || len(in.Pixels) != 8 {
		t.Errorf("NewInput() = %+v", in)
	}

	if _, err := NewInput(make([]uint8, 7), 2, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewInput(short buffer) error = %v, want ErrInvalidInput", err)
	}
	if _, err := NewInput(nil, 0, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewInput(zero width) error = %v, want ErrInvalidInput", err)
	}
}
