package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// plaintextExtensions are the file types read directly as text.
var plaintextExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".rst":      true,
}

// Plaintext reads text files. Form feeds (\f) delimit pages, matching the
// convention pdftotext uses; files without form feeds are one page.
type Plaintext struct{}

// NewPlaintext creates a plain text extractor.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// Supports implements Extractor.
func (p *Plaintext) Supports(path string) bool {
	return plaintextExtensions[strings.ToLower(filepath.Ext(path))]
}

// Pages implements Extractor.
func (p *Plaintext) Pages(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return splitPages(string(data)), nil
}

// splitPages splits on form feed and drops trailing empty pages, keeping at
// least one page so empty documents still get a record.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	for len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
