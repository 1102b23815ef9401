// Package report renders the consolidated text and the occurrence indices to
// their persisted formats. Reports are fully rewritten on every run so a
// re-run with a different page range can never leave stale entries behind.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ddriverplays/pdf-extractor/internal/aggregate"
	"github.com/ddriverplays/pdf-extractor/internal/names"
)

// WriteCombined persists the consolidated text artifact.
func WriteCombined(path, combined string) error {
	if err := os.WriteFile(path, []byte(combined), 0o644); err != nil {
		return fmt.Errorf("write combined output: %w", err)
	}
	return nil
}

// WriteWordReport renders the word occurrence report: a document summary,
// per-page word counts, and the word table sorted by total occurrences
// descending with ties broken by ascending word.
func WriteWordReport(path string, res *aggregate.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write word report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	records := [][]string{
		{"Document Summary"},
		{"Total Words", strconv.Itoa(res.TotalWords)},
		{"Pages Analyzed", strconv.Itoa(res.PagesAnalyzed())},
		{"Unique Words", strconv.Itoa(len(res.Words))},
		{""},
		{"Per-Page Word Counts"},
		{"Page", "Words"},
	}
	for _, pc := range res.PageCounts {
		records = append(records, []string{fmt.Sprintf("%04d", pc.Page), strconv.Itoa(pc.Words)})
	}
	records = append(records,
		[]string{""},
		[]string{"Word", "Total Occurrences", "Pages"},
	)

	words := make([]*aggregate.WordOccurrence, 0, len(res.Words))
	for _, occ := range res.Words {
		words = append(words, occ)
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Total != words[j].Total {
			return words[i].Total > words[j].Total
		}
		return words[i].Word < words[j].Word
	})
	for _, occ := range words {
		records = append(records, []string{occ.Word, strconv.Itoa(occ.Total), formatPages(occ.Pages)})
	}

	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write word report: %w", err)
	}
	return nil
}

// WriteNameReport renders the person-name occurrence report with the same
// ordering convention as the word report.
func WriteNameReport(path string, idx *names.Index) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write name report: %w", err)
	}
	defer f.Close()

	occs := idx.All()
	sort.Slice(occs, func(i, j int) bool {
		if occs[i].Total != occs[j].Total {
			return occs[i].Total > occs[j].Total
		}
		return occs[i].Name < occs[j].Name
	})

	w := csv.NewWriter(f)
	records := [][]string{{"Name", "Total Occurrences", "Pages"}}
	for _, occ := range occs {
		records = append(records, []string{occ.Name, strconv.Itoa(occ.Total), formatPages(occ.Pages)})
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write name report: %w", err)
	}
	return nil
}

// formatPages renders an ascending page list as one comma-separated field.
// The csv writer quotes it whenever it holds more than one page.
func formatPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}
