package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLayout_SanitizesBaseName(t *testing.T) {
	l := NewLayout("/out", "/books/My Old Book.pdf")
	want := filepath.Join("/out", "My_Old_Book_processed")
	if l.Root != want {
		t.Fatalf("expected root %q, got %q", want, l.Root)
	}
}

func TestLayout_PathsAreZeroPadded(t *testing.T) {
	l := Layout{Root: "/out/doc_processed"}

	if got := l.ImagePath(7); got != filepath.Join("/out/doc_processed", "png_images", "0007.png") {
		t.Errorf("unexpected image path: %q", got)
	}
	if got := l.TextPath(123); got != filepath.Join("/out/doc_processed", "text_files", "0123.txt") {
		t.Errorf("unexpected text path: %q", got)
	}
}

func writePage(t *testing.T, l Layout, page int, content string) {
	t.Helper()
	if err := os.WriteFile(l.TextPath(page), []byte(content), 0o644); err != nil {
		t.Fatalf("write page %d: %v", page, err)
	}
}

func testLayout(t *testing.T) Layout {
	t.Helper()
	l := Layout{Root: t.TempDir()}
	if err := l.EnsureDirs(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	return l
}

func TestComputeState_EmptyDirectory(t *testing.T) {
	l := testLayout(t)

	st, err := ComputeState(l, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.LastCompleted != 0 {
		t.Errorf("expected last completed 0, got %d", st.LastCompleted)
	}
	if len(st.Failed) != 0 {
		t.Errorf("expected no failed pages, got %v", st.Failed)
	}
}

func TestComputeState_StopsAtFirstGap(t *testing.T) {
	l := testLayout(t)
	writePage(t, l, 1, "alpha")
	writePage(t, l, 2, "beta")
	// Page 3 missing.
	writePage(t, l, 4, "delta")

	st, err := ComputeState(l, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.LastCompleted != 2 {
		t.Errorf("expected last completed 2, got %d", st.LastCompleted)
	}
}

func TestComputeState_FailedPageAdvancesCheckpoint(t *testing.T) {
	l := testLayout(t)
	writePage(t, l, 1, "alpha")
	writePage(t, l, 2, FailureMarker+" FOR THIS PAGE: render page 2: boom")
	writePage(t, l, 3, "gamma")

	st, err := ComputeState(l, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.LastCompleted != 3 {
		t.Errorf("expected last completed 3, got %d", st.LastCompleted)
	}
	if len(st.Failed) != 1 || st.Failed[0] != 2 {
		t.Errorf("expected failed pages [2], got %v", st.Failed)
	}
}

func TestComputeState_EmptyArtifactStopsScan(t *testing.T) {
	l := testLayout(t)
	writePage(t, l, 1, "alpha")
	writePage(t, l, 2, "")
	writePage(t, l, 3, "gamma")

	st, err := ComputeState(l, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.LastCompleted != 1 {
		t.Errorf("expected last completed 1, got %d", st.LastCompleted)
	}
}

func TestComputeState_CapsAtTotalPages(t *testing.T) {
	l := testLayout(t)
	for page := 1; page <= 5; page++ {
		writePage(t, l, page, "text")
	}

	st, err := ComputeState(l, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.LastCompleted != 3 {
		t.Errorf("expected last completed 3, got %d", st.LastCompleted)
	}
}

func TestIsFailureArtifact(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{"marker only", FailureMarker, true},
		{"marker with detail", FailureMarker + " FOR THIS PAGE: ocr page 4: timeout", true},
		{"ordinary text", "The quick brown fox.", false},
		{"marker mid-page", "intro text\n" + FailureMarker + " mentioned later", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		if got := IsFailureArtifact([]byte(tc.content)); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
