package filetype

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Kind classifies an upload for the analysis pipeline.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage           // decoded directly
	KindPDF             // first page rasterized before analysis
)

// Info contains detected file type information
type Info struct {
	MIMEType    string
	Extension   string
	Kind        Kind
	Description string
}

// Detector handles upload type detection using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// Detect detects the actual file type using magic bytes, not filename
func (d *Detector) Detect(filePath string) (*Info, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	info := &Info{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
	}
	log.Debug().Str("mime", info.MIMEType).Str("ext", info.Extension).Str("file", filePath).Msg("detected file type")

	switch {
	case mtype.Is("image/jpeg"):
		info.Kind = KindImage
		info.Description = "JPEG image"
	case mtype.Is("image/png"):
		info.Kind = KindImage
		info.Description = "PNG image"
	case mtype.Is("application/pdf"):
		info.Kind = KindPDF
		info.Description = "PDF study"
	default:
		info.Kind = KindUnsupported
		info.Description = fmt.Sprintf("Unsupported file type: %s", info.MIMEType)
	}
	return info, nil
}
