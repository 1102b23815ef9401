// Package aggregate folds persisted per-page artifacts into consolidated text
// and a word occurrence index. The fold is single-threaded and iterates pages
// strictly in ascending index order, so the output depends only on what is on
// disk, never on worker completion order.
package aggregate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/ddriverplays/pdf-extractor/internal/checkpoint"
)

// WordOccurrence accumulates one normalized word across the run.
type WordOccurrence struct {
	Word  string
	Total int
	Pages []int // ascending, no duplicates
}

// PageCount records how many words a successful page contributed. Pages with
// zero recognized words are recorded as zero, not omitted.
type PageCount struct {
	Page  int
	Words int
}

// Result is the output of one consolidation pass.
type Result struct {
	// Combined is the consolidated text of all successful pages in page
	// order, each introduced by a page separator line.
	Combined string
	// Words maps normalized word to its occurrence record.
	Words map[string]*WordOccurrence
	// PageCounts holds per-page word counts for successful pages, ascending.
	PageCounts []PageCount
	// TotalWords is the sum of all page counts.
	TotalWords int
	// Skipped lists pages excluded from the output: failed, missing, or
	// unreadable artifacts. Page numbering is never compacted around them.
	Skipped []int
}

// PagesAnalyzed returns the number of successful pages folded in.
func (r *Result) PagesAnalyzed() int { return len(r.PageCounts) }

// Consolidate reads artifacts for pages start..end and merges them. Failed
// pages are skipped; an unreadable artifact degrades to a skipped page with a
// warning rather than aborting the pass.
func Consolidate(log *slog.Logger, layout checkpoint.Layout, start, end int) *Result {
	res := &Result{Words: make(map[string]*WordOccurrence)}

	var combined strings.Builder
	for page := start; page <= end; page++ {
		content, err := os.ReadFile(layout.TextPath(page))
		if errors.Is(err, fs.ErrNotExist) {
			res.Skipped = append(res.Skipped, page)
			continue
		}
		if err != nil {
			log.Warn("skipping unreadable page artifact", "page", page, "error", err)
			res.Skipped = append(res.Skipped, page)
			continue
		}
		if checkpoint.IsFailureArtifact(content) {
			res.Skipped = append(res.Skipped, page)
			continue
		}

		text := strings.TrimSpace(string(content))
		fmt.Fprintf(&combined, "\n\n==================== PAGE %d ====================\n\n", page)
		combined.WriteString(text)

		words := Tokenize(text)
		res.PageCounts = append(res.PageCounts, PageCount{Page: page, Words: len(words)})
		res.TotalWords += len(words)
		for _, word := range words {
			occ, ok := res.Words[word]
			if !ok {
				occ = &WordOccurrence{Word: word}
				res.Words[word] = occ
			}
			occ.Total++
			// Pages are visited in ascending order, so appending when the
			// last entry differs keeps the list sorted and deduplicated.
			if n := len(occ.Pages); n == 0 || occ.Pages[n-1] != page {
				occ.Pages = append(occ.Pages, page)
			}
		}
	}

	res.Combined = combined.String()
	return res
}
