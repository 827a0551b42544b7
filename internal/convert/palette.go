package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Palette is the tri-color e-paper palette. Index 0 is the paper color.
var Palette = color.Palette{
	color.White,
	color.Black,
	color.RGBA{R: 0xff, A: 0xff},
}

const (
	indexWhite uint8 = iota
	indexBlack
	indexRed
)

// DefaultThreshold is the luma below which a pixel gets black ink. It is
// high enough that mid-tone event fills stay visible.
const DefaultThreshold = 160

// Quantize maps img onto Palette for tri-color e-paper panels.
//
// Transparent pixels (alpha < 128) become white, clearly red pixels red,
// pixels with luma below threshold black, and everything else white.
func Quantize(img image.Image, threshold uint8) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(b, Palette)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetColorIndex(x, y, classifyPixel(c, threshold))
		}
	}
	return out
}

// classifyPixel uses luma Y = 0.299R + 0.587G + 0.114B and
// redness = R - max(G, B).
func classifyPixel(c color.NRGBA, threshold uint8) uint8 {
	if c.A < 128 {
		return indexWhite
	}

	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	if r > 128 && r-max(g, b) > 32 {
		return indexRed
	}
	if 0.299*r+0.587*g+0.114*b < float64(threshold) {
		return indexBlack
	}
	return indexWhite
}

// QuantizePNG decodes a PNG, quantizes it and returns the encoded result.
func QuantizePNG(data []byte, threshold uint8) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("convert: decode png: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Quantize(img, threshold)); err != nil {
		return nil, fmt.Errorf("convert: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
