// Package extract turns source documents into ordered page texts.
//
// Extraction is a collaborator of the index core, not part of it: the builder
// only depends on the Extractor contract and is indifferent to how text is
// produced. Adapters here cover plain text files and PDFs via the pdftotext
// subprocess.
package extract

import (
	"context"
	"fmt"
)

// Extractor produces page texts for a supported document, or fails.
type Extractor interface {
	// Supports reports whether this extractor handles the given path.
	Supports(path string) bool
	// Pages returns the document's text, one string per page, in order.
	Pages(ctx context.Context, path string) ([]string, error)
}

// Set tries extractors in order; the first that supports a path handles it.
type Set []Extractor

// Supports reports whether any member handles the path.
func (s Set) Supports(path string) bool {
	for _, e := range s {
		if e.Supports(path) {
			return true
		}
	}
	return false
}

// Pages dispatches to the first supporting member.
func (s Set) Pages(ctx context.Context, path string) ([]string, error) {
	for _, e := range s {
		if e.Supports(path) {
			return e.Pages(ctx, path)
		}
	}
	return nil, fmt.Errorf("no extractor supports %s", path)
}

// Default returns the standard extractor set.
func Default() Set {
	return Set{NewPlaintext(), NewPDFToText("")}
}
