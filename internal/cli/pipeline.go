package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/posterize/internal/colour"
	"github.com/jmylchreest/posterize/internal/image"
	"github.com/jmylchreest/posterize/internal/seed"
)

// runPipeline loads the image at source and posterizes it.
func runPipeline(cmd *cobra.Command, source string, settings runSettings) (*colour.Result, error) {
	logger := newLogger(cmd)

	if err := image.ValidateImagePath(source); err != nil {
		return nil, fmt.Errorf("invalid image path: %w", err)
	}

	logger.Debug("loading image", "source", source)
	img, err := image.NewSmartLoader("").Load(cmd.Context(), source)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	bounds := img.Bounds()
	logger.Debug("image loaded", "width", bounds.Dx(), "height", bounds.Dy())

	in := colour.InputFromImage(img)
	opts := settings.opts
	opts.Seed, err = seed.Calculate(settings.seedMode, opts.Seed, in, source)
	if err != nil {
		return nil, err
	}
	logger.Debug("seed selected", "mode", settings.seedMode, "seed", opts.Seed)

	posterizer, err := colour.NewPosterizer(opts, colour.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	result, err := posterizer.Process(in)
	if err != nil {
		return nil, fmt.Errorf("failed to posterize %s: %w", source, err)
	}
	return result, nil
}

// exportFlags are the palette artefacts both commands can write.
type exportFlags struct {
	paletteImage string
	paletteCode  string
	format       string
	preview      bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.paletteImage, "palette-image", "", "write a PNG of labelled palette swatches to this path")
	fs.StringVar(&f.paletteCode, "palette-code", "", "write CSS, SCSS and JSON palette code to this path")
	fs.StringVarP(&f.format, "format", "f", "hex", "palette output format ("+joinNames(ValidFormats())+")")
	fs.BoolVar(&f.preview, "preview", false, "show colour previews (default: on when stdout is a terminal)")
}

// writeArtefacts writes the palette image and code bundle if requested.
func (f *exportFlags) writeArtefacts(cmd *cobra.Command, palette *colour.Palette) error {
	if f.paletteImage != "" {
		swatches, err := colour.PaletteImage(palette)
		if err != nil {
			return fmt.Errorf("failed to render palette image: %w", err)
		}
		if err := image.SavePNG(f.paletteImage, swatches); err != nil {
			return err
		}
		infof(cmd, "Palette image written to %s\n", f.paletteImage)
	}

	if f.paletteCode != "" {
		code, err := colour.CodeBundle(palette)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.paletteCode, []byte(code), 0o644); err != nil { // #nosec G306 - Exported code is meant to be shared
			return fmt.Errorf("failed to write palette code: %w", err)
		}
		infof(cmd, "Palette code written to %s\n", f.paletteCode)
	}

	return nil
}

// showPreview honours an explicit --preview and otherwise enables previews
// only when w is a terminal.
func (f *exportFlags) showPreview(cmd *cobra.Command, w io.Writer) bool {
	if cmd.Flags().Changed("preview") {
		return f.preview
	}
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
