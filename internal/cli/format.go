package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jmylchreest/posterize/internal/colour"
)

// Format names a palette output format.
type Format string

const (
	FormatHex   Format = "hex"
	FormatRGB   Format = "rgb"
	FormatJSON  Format = "json"
	FormatCSS   Format = "css"
	FormatSCSS  Format = "scss"
	FormatTable Format = "table"
	FormatCode  Format = "code"
)

// ValidFormats returns the supported palette output formats.
func ValidFormats() []Format {
	return []Format{FormatHex, FormatRGB, FormatJSON, FormatCSS, FormatSCSS, FormatTable, FormatCode}
}

func validateFormat(format string) error {
	if !slices.Contains(ValidFormats(), Format(format)) {
		return fmt.Errorf("unsupported format: %s (supported: %s)", format, joinNames(ValidFormats()))
	}
	return nil
}

// formatPalette formats the palette according to the specified format.
// Previews only affect the plain-text formats.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	if err := validateFormat(format); err != nil {
		return "", err
	}

	switch Format(format) {
	case FormatHex:
		return formatHex(palette, showPreview), nil
	case FormatRGB:
		return formatRGB(palette, showPreview), nil
	case FormatJSON:
		jsonBytes, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	case FormatCSS:
		return colour.CSSVariables(palette), nil
	case FormatSCSS:
		return colour.SCSSVariables(palette), nil
	case FormatCode:
		return colour.CodeBundle(palette)
	default:
		return formatTable(palette, showPreview), nil
	}
}

// formatHex formats the palette as hex colour codes.
func formatHex(palette *colour.Palette, showPreview bool) string {
	if !showPreview {
		if palette.Len() == 0 {
			return ""
		}
		return strings.Join(palette.ToHex(), "\n") + "\n"
	}

	var sb strings.Builder
	for _, rgb := range palette.All() {
		sb.WriteString(colour.FormatColourWithPreview(rgb, 8))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatRGB formats the palette as RGB values.
func formatRGB(palette *colour.Palette, showPreview bool) string {
	var sb strings.Builder
	for _, rgb := range palette.All() {
		if showPreview {
			sb.WriteString(colour.ColourPreview(rgb, 8) + "  ")
		}
		sb.WriteString(rgb.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatTable lists each entry with its name, hex, RGB and HSL.
func formatTable(palette *colour.Palette, showPreview bool) string {
	headers := []string{"Name", "Hex", "RGB", "HSL"}
	if showPreview {
		headers = append([]string{"Colour"}, headers...)
	}

	table := NewTable(headers)
	for i, rgb := range palette.All() {
		labels := colour.SwatchLabels(rgb)
		row := []string{
			colour.ExportName(i),
			labels[0],
			strings.TrimPrefix(labels[1], "RGB: "),
			strings.TrimPrefix(labels[2], "HSL: "),
		}
		if showPreview {
			row = append([]string{colour.ColourPreview(rgb, 6)}, row...)
		}
		table.AddRow(row)
	}
	return table.Render()
}

// writeStats prints run statistics as JSON or as a two-column table.
func writeStats(w io.Writer, stats colour.Stats, format string) error {
	if Format(format) == FormatJSON {
		return writeJSON(w, stats)
	}

	table := NewTable([]string{"Statistic", "Value"})
	table.AddRow([]string{"samples", fmt.Sprint(stats.Samples)})
	table.AddRow([]string{"stride", fmt.Sprint(stats.Stride)})
	table.AddRow([]string{"distinct colours", fmt.Sprint(stats.DistinctColours)})
	table.AddRow([]string{"mean weight", fmt.Sprintf("%.3f", stats.MeanWeight)})
	table.AddRow([]string{"weight stddev", fmt.Sprintf("%.3f", stats.WeightStdDev)})
	table.AddRow([]string{"iterations", fmt.Sprint(stats.Iterations)})
	table.AddRow([]string{"converged", fmt.Sprint(stats.Converged)})
	table.AddRow([]string{"quantization error", fmt.Sprintf("%.3f", stats.QuantizationError)})

	weights := make([]string, len(stats.ClusterWeights))
	for i, w := range stats.ClusterWeights {
		weights[i] = fmt.Sprintf("%.1f", w)
	}
	table.AddRow([]string{"cluster weights", strings.Join(weights, ", ")})

	_, err := fmt.Fprint(w, "\n"+table.Render())
	return err
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
