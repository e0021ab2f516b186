package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// narrow band around mid-grey, so a histogram stretch has
			// visible effect
			img.Set(x, y, color.Gray{Y: uint8(100 + (x+y)%56)})
		}
	}
	return img
}

func TestDecodeRoundTrip(t *testing.T) {
	src := gradient(40, 30)
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds() != src.Bounds() {
		t.Errorf("bounds changed: %v", img.Bounds())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not an image")); err == nil {
		t.Fatal("expected an error for non-image bytes")
	}
}

func TestEnhancePreservesDimensions(t *testing.T) {
	src := gradient(64, 48)
	out := Enhance(src)
	if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 48 {
		t.Errorf("dimensions changed: %v", out.Bounds())
	}
}

func TestEnhanceDeterministic(t *testing.T) {
	src := gradient(32, 32)
	a, err := EncodePNG(Enhance(src))
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncodePNG(Enhance(src))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("enhancement is not deterministic")
	}
}

func TestEnhanceStretchesContrast(t *testing.T) {
	src := gradient(64, 64)
	out := Enhance(src)

	spread := func(img image.Image) int {
		lo, hi := 255, 0
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				g := int(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
				if g < lo {
					lo = g
				}
				if g > hi {
					hi = g
				}
			}
		}
		return hi - lo
	}
	if spread(out) <= spread(src) {
		t.Errorf("contrast spread did not grow: src %d, out %d", spread(src), spread(out))
	}
}

func TestAutocontrastUniformImageUnchanged(t *testing.T) {
	// A flat image has no histogram range to stretch; it must pass through.
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.Gray{Y: 128})
		}
	}
	out := autocontrast(src, 0.005)
	c := out.NRGBAAt(3, 3)
	if c.R != 128 || c.G != 128 || c.B != 128 {
		t.Errorf("flat image altered: %+v", c)
	}
}

func TestEncodePNGToBase64(t *testing.T) {
	b, err := EncodePNG(gradient(4, 4))
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Error("missing PNG signature")
	}
	if s := ToBase64(b); s == "" || s == ToBase64(nil) {
		t.Error("base64 output empty")
	}
}
