package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"

	di "github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// Decode parses uploaded JPEG or PNG bytes into an in-memory image.
func Decode(b []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	log.Debug().Str("format", format).Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).Msg("decoded upload")
	return img, nil
}

// Enhance applies the lightweight display enhancement: a histogram stretch,
// mild sharpening and a small contrast lift. Dimensions are unchanged.
func Enhance(src image.Image) image.Image {
	out := autocontrast(src, 0.005)
	out = di.Sharpen(out, 0.8)
	out = di.AdjustContrast(out, 5)
	return out
}

// autocontrast linearly remaps channel values so that, after clipping the
// given fraction of the histogram mass at each end, the darkest value maps
// to 0 and the brightest to 255.
func autocontrast(src image.Image, cutoff float64) *image.NRGBA {
	img := di.Clone(src)

	var hist [256]int
	total := 0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		hist[img.Pix[i]]++
		hist[img.Pix[i+1]]++
		hist[img.Pix[i+2]]++
		total += 3
	}
	if total == 0 {
		return img
	}

	clip := int(float64(total) * cutoff)
	lo, hi := 0, 255
	for acc := 0; lo < 255; lo++ {
		acc += hist[lo]
		if acc > clip {
			break
		}
	}
	for acc := 0; hi > 0; hi-- {
		acc += hist[hi]
		if acc > clip {
			break
		}
	}
	if hi <= lo {
		return img
	}

	scale := 255.0 / float64(hi-lo)
	return di.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = stretch(c.R, lo, scale)
		c.G = stretch(c.G, lo, scale)
		c.B = stretch(c.B, lo, scale)
		return c
	})
}

func stretch(v uint8, lo int, scale float64) uint8 {
	x := float64(int(v)-lo) * scale
	if x < 0 {
		x = 0
	}
	if x > 255 {
		x = 255
	}
	return uint8(x + 0.5)
}

// EncodePNG serializes the displayed image. The same bytes serve the UI, the
// model input and the document embed, so what the user sees is exactly what
// is exported.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// ToBase64 converts binary data to a base64 string for inline model input.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
