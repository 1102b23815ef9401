package document

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PdftoppmRenderer rasterizes pages by shelling out to pdftoppm (poppler).
// No library in our stack rasterizes PDF content streams, so rendering is an
// external collaborator the same way pdftotext is for text extraction.
type PdftoppmRenderer struct {
	// Binary overrides the pdftoppm executable path. Empty means $PATH lookup.
	Binary string
	path   string
}

// NewPdftoppmRenderer checks that the pdftoppm binary is available and binds
// it to the given PDF.
func NewPdftoppmRenderer(pdfPath, binary string) (*PdftoppmRenderer, error) {
	if binary == "" {
		binary = "pdftoppm"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("pdftoppm not found: %w", err)
	}
	return &PdftoppmRenderer{Binary: binary, path: pdfPath}, nil
}

// Render rasterizes one 1-based page to PNG bytes at the given DPI.
func (r *PdftoppmRenderer) Render(ctx context.Context, page, dpi int) ([]byte, error) {
	// With no output prefix argument pdftoppm writes the single page to stdout.
	cmd := exec.CommandContext(ctx, r.Binary,
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		r.path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return nil, &RenderError{Page: page, Err: err}
	}
	if stdout.Len() == 0 {
		return nil, &RenderError{Page: page, Err: fmt.Errorf("empty render output")}
	}
	return stdout.Bytes(), nil
}
