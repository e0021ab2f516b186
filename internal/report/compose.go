package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
)

const (
	bodySize   = 10
	lineHeight = 5.5
	tokenMax   = 60

	reportTitle = "Medical Imaging Report"
	footerText  = "AI-assisted report for educational purposes. Please have a qualified clinician review."
)

// Metadata carries the optional patient fields printed under the title.
type Metadata struct {
	Name      string
	Age       string
	Sex       string
	StudyDate string
}

// Compose lays out the patient metadata, the displayed image and the analysis
// markdown into an A4 document and returns the serialized PDF bytes.
//
// The text path is total: any analysis text, including empty input and single
// tokens wider than a page, produces a well-formed document. An unreadable
// image is skipped rather than failing the report.
func Compose(meta Metadata, markdown, imagePath string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	lm, _, rm, bm := pdf.GetMargins()
	epw := pageW - lm - rm

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetX(lm)
	pdf.CellFormat(epw, 10, reportTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetX(lm)
	pdf.MultiCell(epw, lineHeight, Sanitize(fmt.Sprintf("Patient: %s    Age: %s    Sex: %s", meta.Name, meta.Age, meta.Sex)), "", "", false)
	pdf.SetX(lm)
	pdf.MultiCell(epw, lineHeight, Sanitize("Study Date: "+meta.StudyDate), "", "", false)
	pdf.Ln(2)

	embedImage(pdf, imagePath, lm, epw, pageH, bm)

	for _, raw := range strings.Split(markdown, "\n") {
		renderLine(pdf, lm, epw, raw)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetX(lm)
	pdf.MultiCell(epw, 5, footerText, "", "", false)
	pdf.SetTextColor(0, 0, 0)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize report: %w", err)
	}
	return buf.Bytes(), nil
}

// embedImage places the displayed image once, full content width with aspect
// preserved, breaking to a fresh page first if it would overflow the current
// one. It is never repeated on later pages.
func embedImage(pdf *gofpdf.Fpdf, imagePath string, lm, epw, pageH, bm float64) {
	if imagePath == "" {
		return
	}
	f, err := os.Open(imagePath)
	if err != nil {
		log.Debug().Err(err).Str("image", imagePath).Msg("report image unavailable, skipping embed")
		return
	}
	defer f.Close()

	opts := gofpdf.ImageOptions{ImageType: imageType(imagePath)}
	info := pdf.RegisterImageOptionsReader("study-image", opts, f)
	if pdf.Err() || info == nil || info.Width() <= 0 {
		log.Warn().Str("image", imagePath).Msg("report image unreadable, skipping embed")
		pdf.ClearError()
		return
	}

	imgH := epw * info.Height() / info.Width()
	if pdf.GetY()+imgH+8 > pageH-bm {
		pdf.AddPage()
	}
	y := pdf.GetY()
	pdf.ImageOptions("study-image", lm, y, epw, 0, false, opts, 0, "")
	pdf.SetXY(lm, y+imgH+4)
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	default:
		return "PNG"
	}
}

func renderLine(pdf *gofpdf.Fpdf, lm, epw float64, raw string) {
	s := Sanitize(strings.TrimRight(raw, " \t"))
	ln := ClassifyLine(s)
	switch ln.Kind {
	case Blank:
		pdf.Ln(2)
		return
	case Heading:
		pdf.SetFont("Helvetica", "B", ln.Size)
		pdf.SetX(lm)
		pdf.MultiCell(epw, lineHeight, SoftWrap(ln.Text, tokenMax), "", "", false)
		return
	}

	spans := SplitBold(ln.Text)
	if len(spans) == 1 && !spans[0].Bold {
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetX(lm)
		pdf.MultiCell(epw, lineHeight, SoftWrap(spans[0].Text, tokenMax), "", "", false)
		return
	}

	// Mixed weights inside one line: Write flows each span with automatic
	// wrapping at the right margin.
	pdf.SetX(lm)
	for _, sp := range spans {
		style := ""
		if sp.Bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, bodySize)
		pdf.Write(lineHeight, SoftWrap(sp.Text, tokenMax))
	}
	pdf.Ln(lineHeight)
}
