// Package ocr defines the recognition engine interface consumed by the worker
// pool and its Tesseract-backed production implementation.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Error wraps a failure to recognize one page image. The pipeline treats it
// the same as a render failure: the page is recorded as failed, siblings
// continue.
type Error struct {
	Page int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ocr page %d: %s", e.Page, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Engine recognizes text in a page image. Implementations need not be safe
// for concurrent use; each pool executor calls sequentially on its own tasks.
type Engine interface {
	// Recognize runs OCR over PNG image bytes. languages is a Tesseract-style
	// spec such as "eng" or "eng+deu". page is carried for error context only.
	Recognize(ctx context.Context, page int, image []byte, languages string) (string, error)
	Name() string
}

// Tesseract is the production Engine backed by gosseract. A fresh client is
// created per call: gosseract clients are not safe for concurrent use and the
// per-call cost is negligible next to recognition itself.
type Tesseract struct {
	// TessdataPrefix points gosseract at the engine's trained model data.
	// Empty means the library default.
	TessdataPrefix string
}

// NewTesseract verifies the engine is usable and that every requested
// language pack is installed before any page is dispatched.
func NewTesseract(tessdataPrefix, languages string) (*Tesseract, error) {
	available, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, fmt.Errorf("tesseract unavailable: %w", err)
	}
	installed := make(map[string]bool, len(available))
	for _, lang := range available {
		installed[lang] = true
	}
	for _, lang := range splitLanguages(languages) {
		if !installed[lang] {
			return nil, fmt.Errorf("tesseract language %q not installed (have: %s)",
				lang, strings.Join(available, ", "))
		}
	}
	return &Tesseract{TessdataPrefix: tessdataPrefix}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(ctx context.Context, page int, image []byte, languages string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Page: page, Err: err}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return "", &Error{Page: page, Err: err}
		}
	}
	if langs := splitLanguages(languages); len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			return "", &Error{Page: page, Err: err}
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", &Error{Page: page, Err: err}
	}

	text, err := client.Text()
	if err != nil {
		return "", &Error{Page: page, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// splitLanguages turns a "eng+deu" spec into gosseract language arguments.
func splitLanguages(spec string) []string {
	var langs []string
	for _, lang := range strings.Split(spec, "+") {
		lang = strings.TrimSpace(lang)
		if lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}
