package colour

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
)

func exportPalette() *Palette {
	return NewPalette([]RGB{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 128, B: 255},
	})
}

func TestExportName(t *testing.T) {
	if got := ExportName(0); got != "color-1" {
		t.Errorf("ExportName(0) = %q, want color-1", got)
	}
	if got := ExportName(9); got != "color-10" {
		t.Errorf("ExportName(9) = %q, want color-10", got)
	}
}

func TestCSSVariables(t *testing.T) {
	want := "/* CSS Variables */\n" +
		":root {\n" +
		"  --color-1: #ff0000;\n" +
		"  --color-2: #0080ff;\n" +
		"}\n"
	if got := CSSVariables(exportPalette()); got != want {
		t.Errorf("CSSVariables() =\n%s\nwant\n%s", got, want)
	}
}

func TestSCSSVariables(t *testing.T) {
	want := "// SCSS Variables\n" +
		"$color-1: #ff0000;\n" +
		"$color-2: #0080ff;\n"
	if got := SCSSVariables(exportPalette()); got != want {
		t.Errorf("SCSSVariables() =\n%s\nwant\n%s", got, want)
	}
}

func TestPaletteToJSON(t *testing.T) {
	data, err := exportPalette().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded PaletteJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	want := []ColorJSON{
		{Name: "color-1", Hex: "#ff0000", RGB: [3]int{255, 0, 0}},
		{Name: "color-2", Hex: "#0080ff", RGB: [3]int{0, 128, 255}},
	}
	if len(decoded.Palette) != len(want) {
		t.Fatalf("got %d entries, want %d", len(decoded.Palette), len(want))
	}
	for i := range want {
		if decoded.Palette[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, decoded.Palette[i], want[i])
		}
	}

	if !strings.Contains(string(data), "\n  \"palette\": [") {
		t.Errorf("expected two-space indentation, got:\n%s", data)
	}
}

func TestCodeBundle(t *testing.T) {
	p := exportPalette()
	got, err := CodeBundle(p)
	if err != nil {
		t.Fatalf("CodeBundle() error = %v", err)
	}

	jsonBytes, err := p.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	want := "/* Palette Code Export */\n\n" +
		CSSVariables(p) + "\n\n" +
		SCSSVariables(p) + "\n\n" +
		string(jsonBytes) + "\n"
	if got != want {
		t.Errorf("CodeBundle() =\n%s\nwant\n%s", got, want)
	}
}

func TestSwatchLabels(t *testing.T) {
	tests := []struct {
		rgb  RGB
		want [3]string
	}{
		{rgb: RGB{255, 0, 0}, want: [3]string{"#ff0000", "RGB: 255, 0, 0", "HSL: 0°, 100%, 50%"}},
		{rgb: RGB{255, 255, 255}, want: [3]string{"#ffffff", "RGB: 255, 255, 255", "HSL: 0°, 0%, 100%"}},
		{rgb: RGB{0, 0, 255}, want: [3]string{"#0000ff", "RGB: 0, 0, 255", "HSL: 240°, 100%, 50%"}},
	}

	for _, tt := range tests {
		t.Run(tt.want[0], func(t *testing.T) {
			if got := SwatchLabels(tt.rgb); got != tt.want {
				t.Errorf("SwatchLabels(%v) = %q, want %q", tt.rgb, got, tt.want)
			}
		})
	}
}

func TestPaletteImage(t *testing.T) {
	p := exportPalette()
	img, err := PaletteImage(p)
	if err != nil {
		t.Fatalf("PaletteImage() error = %v", err)
	}

	wantBounds := image.Rect(0, 0, 2*(SwatchSize+SwatchPadding)+SwatchPadding, SwatchSize+2*SwatchPadding+SwatchText)
	if img.Bounds() != wantBounds {
		t.Fatalf("Bounds() = %v, want %v", img.Bounds(), wantBounds)
	}

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}

	checks := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{name: "background", x: 5, y: 5, want: white},
		{name: "gap between swatches", x: 130, y: 60, want: white},
		{name: "first swatch", x: 70, y: 40, want: p.Colors[0].RGBA()},
		{name: "second swatch", x: 190, y: 40, want: p.Colors[1].RGBA()},
		{name: "first label band", x: 21, y: 121, want: p.Colors[0].RGBA()},
		{name: "border", x: SwatchPadding, y: SwatchPadding, want: black},
		{name: "bottom border", x: 70, y: SwatchPadding + SwatchSize + SwatchText - 1, want: black},
	}

	for _, c := range checks {
		if got := img.RGBAAt(c.x, c.y); got != c.want {
			t.Errorf("%s at (%d,%d) = %v, want %v", c.name, c.x, c.y, got, c.want)
		}
	}
}

func TestPaletteImageEmpty(t *testing.T) {
	if _, err := PaletteImage(NewPalette(nil)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("PaletteImage(empty) error = %v, want ErrInvalidInput", err)
	}
}
