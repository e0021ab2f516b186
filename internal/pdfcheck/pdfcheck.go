package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validate runs a structural validation over serialized PDF bytes. It backs
// the composer's totality guarantee: a composed document that fails here is
// treated as an unrecoverable composition error.
func Validate(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty document")
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(b), conf); err != nil {
		return fmt.Errorf("pdf validation: %w", err)
	}
	return nil
}

// PageCount returns the number of pages in serialized PDF bytes.
func PageCount(b []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(b), conf)
}
