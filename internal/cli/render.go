package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/posterize/internal/image"
)

type renderOptions struct {
	pipeline pipelineFlags
	export   exportFlags
	output   string
	stats    bool
}

func newRenderCmd() *cobra.Command {
	o := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <image>",
		Short: "Posterize an image and write the result as PNG",
		Long: `Posterize an image: pick a weighted k-means palette in CIE-Lab, style it,
and remap the image onto it.

The image may be a local file (JPEG, PNG, GIF, WebP) or an http(s) URL.
Settings come from defaults, then the --config recipe, then flags.

With the default "sampled" remap only the sampled pixels are written, in
order, and the rest of the image is transparent whenever --detail is below
1000. Use --remap full to map every pixel.

Examples:
  # Eight colours, written next to the source as photo-posterized.png
  posterize render photo.jpg

  # Five pastel colours with a complementary harmony
  posterize render -c 5 --character pastel --harmony complementary photo.jpg

  # Full-resolution remap plus a swatch sheet
  posterize render --remap full --palette-image swatches.png photo.jpg

  # Settings from a recipe, overriding its colour count
  posterize render --config poster.yaml -c 12 photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], o)
		},
	}

	o.pipeline.register(cmd.Flags())
	o.export.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output PNG path (default: <name>-posterized.png)")
	cmd.Flags().BoolVar(&o.stats, "stats", false, "print run statistics after the palette")

	return cmd
}

func runRender(cmd *cobra.Command, source string, o *renderOptions) error {
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

	output := o.output
	if output == "" {
		output = image.OutputPath(source, "posterized")
	}
	if err := image.SavePNG(output, result.Image()); err != nil {
		return err
	}
	infof(cmd, "Posterized image written to %s\n", output)

	if err := o.export.writeArtefacts(cmd, result.Palette); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	text, err := formatPalette(result.Palette, o.export.format, o.export.showPreview(cmd, w))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, text); err != nil {
		return err
	}

	if o.stats {
		return writeStats(w, result.Stats, o.export.format)
	}
	return nil
}
