// Package checkpoint defines the on-disk artifact layout for a processing run
// and derives completion state from it. There is no separate progress log: a
// page is done exactly when its text artifact exists and is non-empty, whether
// or not the OCR succeeded.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FailureMarker prefixes the text artifact of a page whose render or OCR
// failed. Its presence makes the page count as completed for resume purposes
// while keeping it out of the consolidated output.
const FailureMarker = "OCR FAILED"

const (
	imageDirName = "png_images"
	textDirName  = "text_files"

	combinedName   = "combined_output.txt"
	wordReportName = "word_count_report.csv"
	nameReportName = "proper_names_report.csv"
)

// Layout resolves every path inside a run's output tree, rooted at
// <outputDir>/<pdfBase>_processed with spaces in the base name replaced by
// underscores.
type Layout struct {
	Root string
}

// NewLayout derives the output tree root from the base output directory and
// the input PDF path.
func NewLayout(outputDir, pdfPath string) Layout {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	safe := strings.ReplaceAll(base, " ", "_")
	return Layout{Root: filepath.Join(outputDir, safe+"_processed")}
}

func (l Layout) ImageDir() string { return filepath.Join(l.Root, imageDirName) }
func (l Layout) TextDir() string  { return filepath.Join(l.Root, textDirName) }

// ImagePath returns the rendered PNG path for a 1-based page index.
func (l Layout) ImagePath(page int) string {
	return filepath.Join(l.ImageDir(), fmt.Sprintf("%04d.png", page))
}

// TextPath returns the per-page text artifact path for a 1-based page index.
func (l Layout) TextPath(page int) string {
	return filepath.Join(l.TextDir(), fmt.Sprintf("%04d.txt", page))
}

func (l Layout) CombinedPath() string   { return filepath.Join(l.Root, combinedName) }
func (l Layout) WordReportPath() string { return filepath.Join(l.Root, wordReportName) }
func (l Layout) NameReportPath() string { return filepath.Join(l.Root, nameReportName) }

// EnsureDirs creates the image and text subdirectories. Failure here is fatal
// to the run: without the tree there is nowhere to record progress.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.ImageDir(), l.TextDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	return nil
}

// IsFailureArtifact reports whether artifact content records a failed page.
// Only the first line is examined so OCR text that merely mentions the marker
// phrase mid-page is not misclassified.
func IsFailureArtifact(content []byte) bool {
	line, _, _ := strings.Cut(string(content), "\n")
	return strings.HasPrefix(line, FailureMarker)
}

// State is the completion state derived from persisted artifacts.
type State struct {
	// LastCompleted is the highest page index such that every page up to and
	// including it has a non-empty text artifact. Zero means no progress.
	LastCompleted int
	// Failed lists completed pages whose artifact carries the failure marker,
	// in ascending order. They advance the checkpoint but hold no text.
	Failed []int
}

// ComputeState scans text artifacts for pages 1..totalPages in order and stops
// at the first missing or empty one. The scan is read-only. Any I/O error
// other than absence is returned: progress state cannot be trusted past an
// unreadable directory.
func ComputeState(l Layout, totalPages int) (State, error) {
	var st State
	for page := 1; page <= totalPages; page++ {
		path := l.TextPath(page)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		if err != nil {
			return State{}, fmt.Errorf("checkpoint scan %s: %w", path, err)
		}
		if info.Size() == 0 {
			return st, nil
		}

		content, err := readPrefix(path, len(FailureMarker)+64)
		if err != nil {
			return State{}, fmt.Errorf("checkpoint scan %s: %w", path, err)
		}
		if IsFailureArtifact(content) {
			st.Failed = append(st.Failed, page)
		}
		st.LastCompleted = page
	}
	return st, nil
}

// readPrefix reads at most n bytes from the start of a file. Classifying an
// artifact never needs more than its first line.
func readPrefix(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}
