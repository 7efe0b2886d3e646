package colour

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Palette image layout, in pixels.
const (
	SwatchSize    = 100
	SwatchPadding = 20
	SwatchText    = 50

	labelFontSize = 8
	labelLine     = 15
)

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// SwatchLabels returns the three text lines printed under a swatch:
// hex code, RGB triple and rounded HSL.
func SwatchLabels(rgb RGB) [3]string {
	h, s, l := rgbToHSL(rgb)
	return [3]string{
		rgb.Hex(),
		fmt.Sprintf("RGB: %d, %d, %d", rgb.R, rgb.G, rgb.B),
		fmt.Sprintf("HSL: %d°, %d%%, %d%%", int(math.Round(h))%360, int(math.Round(s*100)), int(math.Round(l*100))),
	}
}

// PaletteImage draws the palette as a row of labelled swatches on a white
// background. Each swatch has a 1px black border and a label band in its own
// colour; labels are white on dark colours and black otherwise.
func PaletteImage(p *Palette) (*image.RGBA, error) {
	if p == nil || p.Len() == 0 {
		return nil, fmt.Errorf("%w: palette is empty", ErrInvalidInput)
	}

	ttf, err := loadLabelFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    labelFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	width := p.Len()*(SwatchSize+SwatchPadding) + SwatchPadding
	height := SwatchSize + SwatchPadding*2 + SwatchText
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), color.White)

	for i, rgb := range p.Colors {
		x := SwatchPadding + i*(SwatchSize+SwatchPadding)
		y := SwatchPadding

		swatch := image.Rect(x, y, x+SwatchSize, y+SwatchSize)
		band := image.Rect(x, y+SwatchSize, x+SwatchSize, y+SwatchSize+SwatchText)
		fill(img, swatch, rgb.RGBA())
		fill(img, band, rgb.RGBA())
		strokeRect(img, swatch.Union(band), color.Black)

		_, _, l := rgbToHSL(rgb)
		var textColour color.Color = color.Black
		if math.Round(l*100) < 50 {
			textColour = color.White
		}

		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(textColour),
			Face: face,
		}
		for line, text := range SwatchLabels(rgb) {
			advance := d.MeasureString(text)
			d.Dot = fixed.Point26_6{
				X: fixed.I(x+SwatchSize/2) - advance/2,
				Y: fixed.I(y + SwatchSize + labelLine*(line+1)),
			}
			d.DrawString(text)
		}
	}

	return img, nil
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(dst draw.Image, r image.Rectangle, c color.Color) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}
