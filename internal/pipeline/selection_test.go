package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/ddriverplays/pdf-extractor/internal/checkpoint"
)

func choose(t *testing.T, input string, st checkpoint.State, total int) (Selection, string) {
	t.Helper()
	var out strings.Builder
	sel, err := NewPrompter(strings.NewReader(input), &out).Choose(st, total)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sel, out.String()
}

func TestPrompter_All(t *testing.T) {
	sel, _ := choose(t, "a\n", checkpoint.State{}, 100)
	if sel.Mode != ModeAll || sel.Start != 1 || sel.End != 100 {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestPrompter_Quit(t *testing.T) {
	sel, _ := choose(t, "q\n", checkpoint.State{LastCompleted: 5}, 100)
	if sel.Mode != ModeQuit {
		t.Fatalf("expected quit, got %+v", sel)
	}
}

func TestPrompter_ResumeFromCheckpoint(t *testing.T) {
	sel, out := choose(t, "r\n", checkpoint.State{LastCompleted: 42}, 100)
	if sel.Mode != ModeResume || sel.Start != 43 || sel.End != 100 {
		t.Fatalf("unexpected selection: %+v", sel)
	}
	if !strings.Contains(out, "Last processed page was 42 of 100") {
		t.Errorf("prompt missing checkpoint summary: %q", out)
	}
}

func TestPrompter_ResumeWithoutProgressReprompts(t *testing.T) {
	sel, out := choose(t, "r\na\n", checkpoint.State{}, 100)
	if sel.Mode != ModeAll {
		t.Fatalf("expected fall through to all, got %+v", sel)
	}
	if !strings.Contains(out, "No previous progress") {
		t.Errorf("expected re-prompt message, got %q", out)
	}
}

func TestPrompter_ResumeWhenFullyProcessedQuits(t *testing.T) {
	sel, out := choose(t, "r\n", checkpoint.State{LastCompleted: 100}, 100)
	if sel.Mode != ModeQuit {
		t.Fatalf("expected quit, got %+v", sel)
	}
	if !strings.Contains(out, "already processed") {
		t.Errorf("expected already-processed notice, got %q", out)
	}
}

func TestPrompter_DirectRange(t *testing.T) {
	sel, _ := choose(t, "5-10\n", checkpoint.State{}, 100)
	if sel.Mode != ModeRange || sel.Start != 5 || sel.End != 10 {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestPrompter_RangeViaMenu(t *testing.T) {
	sel, _ := choose(t, "n\n7-9\n", checkpoint.State{}, 100)
	if sel.Mode != ModeRange || sel.Start != 7 || sel.End != 9 {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestPrompter_InvalidRangesReprompt(t *testing.T) {
	// 50-10 (start > end), 0-5 (start < 1), 90-110 (end > total): all
	// rejected without dispatch, then a valid range is accepted.
	sel, out := choose(t, "50-10\n0-5\n90-110\n5-10\n", checkpoint.State{}, 100)
	if sel.Mode != ModeRange || sel.Start != 5 || sel.End != 10 {
		t.Fatalf("unexpected selection: %+v", sel)
	}
	if strings.Count(out, "invalid page range") != 3 {
		t.Errorf("expected 3 rejections, got output: %q", out)
	}
}

func TestPrompter_UnknownCommandReprompts(t *testing.T) {
	sel, out := choose(t, "bogus\nq\n", checkpoint.State{}, 100)
	if sel.Mode != ModeQuit {
		t.Fatalf("unexpected selection: %+v", sel)
	}
	if !strings.Contains(out, "Invalid command") {
		t.Errorf("expected invalid-command notice, got %q", out)
	}
}

func TestPrompter_ClosedInputIsError(t *testing.T) {
	_, err := NewPrompter(strings.NewReader(""), &strings.Builder{}).Choose(checkpoint.State{}, 10)
	if err == nil {
		t.Fatal("expected error on exhausted input")
	}
}

func TestStaticSelector(t *testing.T) {
	st := checkpoint.State{LastCompleted: 30}

	sel, err := StaticSelector{ModeFlag: "all"}.Choose(st, 100)
	if err != nil || sel.Mode != ModeAll || sel.End != 100 {
		t.Fatalf("all: got %+v, %v", sel, err)
	}

	sel, err = StaticSelector{ModeFlag: "resume"}.Choose(st, 100)
	if err != nil || sel.Mode != ModeResume || sel.Start != 31 {
		t.Fatalf("resume: got %+v, %v", sel, err)
	}

	sel, err = StaticSelector{ModeFlag: "resume"}.Choose(checkpoint.State{LastCompleted: 100}, 100)
	if err != nil || sel.Mode != ModeQuit {
		t.Fatalf("resume at end: got %+v, %v", sel, err)
	}

	sel, err = StaticSelector{ModeFlag: "range", PageRange: "5-10"}.Choose(st, 100)
	if err != nil || sel.Mode != ModeRange || sel.Start != 5 || sel.End != 10 {
		t.Fatalf("range: got %+v, %v", sel, err)
	}

	var rangeErr *RangeError
	if _, err = (StaticSelector{ModeFlag: "range", PageRange: "50-10"}).Choose(st, 100); !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError for 50-10, got %v", err)
	}
	if _, err = (StaticSelector{ModeFlag: "bogus"}).Choose(st, 100); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
