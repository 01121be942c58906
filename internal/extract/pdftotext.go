package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// PDFToText extracts PDF page text by delegating to the pdftotext binary
// (poppler-utils). The subprocess may block on I/O; callers bound
// concurrency and pass a cancellable context.
type PDFToText struct {
	binary string
}

// NewPDFToText creates the adapter. binary defaults to "pdftotext" on PATH.
func NewPDFToText(binary string) *PDFToText {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PDFToText{binary: binary}
}

// Supports implements Extractor.
func (p *PDFToText) Supports(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Pages implements Extractor. pdftotext emits one form feed per page break,
// so the output splits directly into pages.
func (p *PDFToText) Pages(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, p.binary, "-enc", "UTF-8", path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("pdftotext %s: %s", path, msg)
	}

	return splitPages(stdout.String()), nil
}
