// Package names builds the person-name occurrence index from per-page OCR
// text. The recognizer is a soft dependency: when it cannot be constructed the
// whole feature is skipped and the rest of the pipeline is unaffected.
package names

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	prose "github.com/jdkato/prose/v2"

	"github.com/ddriverplays/pdf-extractor/internal/checkpoint"
)

// Recognizer extracts person-name spans from free text.
type Recognizer interface {
	Persons(text string) ([]string, error)
}

// NameOccurrence accumulates one recognized name across the run. Keys are the
// exact recognized spans: "John Smith" and "J. Smith" stay distinct, no fuzzy
// merging is attempted.
type NameOccurrence struct {
	Name  string
	Total int
	Pages []int // ascending, no duplicates
}

// Index maps recognized name spans to their occurrence records.
type Index struct {
	byName map[string]*NameOccurrence
}

func NewIndex() *Index {
	return &Index{byName: make(map[string]*NameOccurrence)}
}

// Add folds one page's recognized spans into the index. Callers must add
// pages in ascending order; the page lists rely on it to stay sorted.
func (x *Index) Add(page int, spans []string) {
	for _, span := range spans {
		span = strings.TrimSpace(span)
		if span == "" {
			continue
		}
		occ, ok := x.byName[span]
		if !ok {
			occ = &NameOccurrence{Name: span}
			x.byName[span] = occ
		}
		occ.Total++
		if n := len(occ.Pages); n == 0 || occ.Pages[n-1] != page {
			occ.Pages = append(occ.Pages, page)
		}
	}
}

// Len returns the number of distinct names.
func (x *Index) Len() int { return len(x.byName) }

// All returns every occurrence record in unspecified order; the report writer
// owns sorting.
func (x *Index) All() []*NameOccurrence {
	out := make([]*NameOccurrence, 0, len(x.byName))
	for _, occ := range x.byName {
		out = append(out, occ)
	}
	return out
}

// Extract runs the recognizer over persisted page artifacts in ascending page
// order. Failed or unreadable pages are skipped; a recognizer error on one
// page degrades that page with a warning, matching per-page OCR isolation.
func Extract(log *slog.Logger, rec Recognizer, layout checkpoint.Layout, start, end int) *Index {
	idx := NewIndex()
	for page := start; page <= end; page++ {
		content, err := os.ReadFile(layout.TextPath(page))
		if err != nil || checkpoint.IsFailureArtifact(content) {
			continue
		}
		spans, err := rec.Persons(string(content))
		if err != nil {
			log.Warn("name extraction failed for page", "page", page, "error", err)
			continue
		}
		idx.Add(page, spans)
	}
	return idx
}

// ProseRecognizer is the production Recognizer backed by the prose NLP
// library's named-entity model.
type ProseRecognizer struct{}

// NewProseRecognizer probes the model once so a broken installation is
// reported as a capability failure up front instead of per page.
func NewProseRecognizer() (*ProseRecognizer, error) {
	if _, err := prose.NewDocument("probe"); err != nil {
		return nil, fmt.Errorf("ner model unavailable: %w", err)
	}
	return &ProseRecognizer{}, nil
}

func (r *ProseRecognizer) Persons(text string) ([]string, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}
	var spans []string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			spans = append(spans, ent.Text)
		}
	}
	return spans, nil
}
