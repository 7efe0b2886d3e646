package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type paletteOptions struct {
	pipeline pipelineFlags
	export   exportFlags
	output   string
}

func newPaletteCmd() *cobra.Command {
	o := &paletteOptions{}

	cmd := &cobra.Command{
		Use:   "palette <image>",
		Short: "Print the palette an image would be posterized to",
		Long: `Run the posterization pipeline and print only the resulting palette.

All pipeline flags of "render" apply, so the palette printed here is exactly
the one "render" would use for the same settings.

Examples:
  # Hex codes, one per line
  posterize palette photo.jpg

  # CSS custom properties for six muted colours
  posterize palette -c 6 --character muted -f css photo.jpg

  # JSON written to a file
  posterize palette -f json -o palette.json photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPalette(cmd, args[0], o)
		},
	}

	o.pipeline.register(cmd.Flags())
	o.export.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the palette to this file instead of stdout")

	return cmd
}

func runPalette(cmd *cobra.Command, source string, o *paletteOptions) error {
	if err := validateFormat(o.export.format); err != nil {
		return err
	}

	settings, err := o.pipeline.resolve(cmd)
	if err != nil {
		return err
	}

	result, err := runPipeline(cmd, source, settings)
	if err != nil {
		return err
	}

	if err := o.export.writeArtefacts(cmd, result.Palette); err != nil {
		return err
	}

	if o.output != "" {
		text, err := formatPalette(result.Palette, o.export.format, false)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.output, []byte(text), 0o644); err != nil { // #nosec G306 - Palette files are meant to be shared
			return fmt.Errorf("failed to write output file: %w", err)
		}
		infof(cmd, "Palette written to %s\n", o.output)
		return nil
	}

	w := cmd.OutOrStdout()
	text, err := formatPalette(result.Palette, o.export.format, o.export.showPreview(cmd, w))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, text)
	return err
}
