package imagerender

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// RenderFirstPage rasterizes page 1 of a PDF study at the given DPI so the
// rest of the pipeline can treat it like any uploaded image. Multi-page
// studies are out of scope; only the first page is taken.
func RenderFirstPage(pdfPath string, dpi int) (image.Image, error) {
	if dpi <= 0 {
		dpi = 200
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	img, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page 1: %w", err)
	}

	bounds := img.Bounds()
	log.Debug().
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Int("dpi", dpi).
		Msg("rendered PDF study page")

	return img, nil
}
