// Package document is the page source for the pipeline: it opens the input
// PDF, reports its page count, and renders individual pages to PNG at a
// requested resolution.
package document

import (
	"context"
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"
)

// RenderError wraps a failure to rasterize a single page. The pipeline
// classifies it the same as an OCR failure: isolated to that page.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render page %d: %s", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Renderer produces a rasterized PNG for one page of a document.
type Renderer interface {
	Render(ctx context.Context, page, dpi int) ([]byte, error)
}

// Source is an opened input PDF.
type Source struct {
	path string
}

// Open validates that the PDF exists and is a regular file.
func Open(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open pdf: %s is a directory", path)
	}
	return &Source{path: path}, nil
}

// Path returns the filesystem path of the PDF.
func (s *Source) Path() string { return s.path }

// PageCount reads the page count from the PDF's page tree.
func (s *Source) PageCount() (int, error) {
	f, reader, err := pdflib.Open(s.path)
	if err != nil {
		return 0, fmt.Errorf("read pdf %s: %w", s.path, err)
	}
	defer f.Close()

	n := reader.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("read pdf %s: no pages", s.path)
	}
	return n, nil
}
