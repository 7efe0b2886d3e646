package colour

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportName returns the 1-based variable name used for palette entry i.
func ExportName(i int) string {
	return fmt.Sprintf("color-%d", i+1)
}

// CSSVariables renders the palette as a :root block of custom properties.
func CSSVariables(p *Palette) string {
	var sb strings.Builder
	sb.WriteString("/* CSS Variables */\n:root {\n")
	for i, rgb := range p.Colors {
		fmt.Fprintf(&sb, "  --%s: %s;\n", ExportName(i), rgb.Hex())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// SCSSVariables renders the palette as SCSS variables.
func SCSSVariables(p *Palette) string {
	var sb strings.Builder
	sb.WriteString("// SCSS Variables\n")
	for i, rgb := range p.Colors {
		fmt.Fprintf(&sb, "$%s: %s;\n", ExportName(i), rgb.Hex())
	}
	return sb.String()
}

// ColorJSON represents a colour in JSON output format.
type ColorJSON struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
	RGB  [3]int `json:"rgb"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Palette []ColorJSON `json:"palette"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	colors := make([]ColorJSON, len(p.Colors))
	for i, rgb := range p.Colors {
		colors[i] = ColorJSON{
			Name: ExportName(i),
			Hex:  rgb.Hex(),
			RGB:  [3]int{int(rgb.R), int(rgb.G), int(rgb.B)},
		}
	}

	return json.MarshalIndent(PaletteJSON{Palette: colors}, "", "  ")
}

// CodeBundle combines the CSS, SCSS and JSON exports into one text document.
func CodeBundle(p *Palette) (string, error) {
	jsonBytes, err := p.ToJSON()
	if err != nil {
		return "", fmt.Errorf("failed to convert to JSON: %w", err)
	}

	return "/* Palette Code Export */\n\n" +
		CSSVariables(p) + "\n\n" +
		SCSSVariables(p) + "\n\n" +
		string(jsonBytes) + "\n", nil
}
