package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ddriverplays/pdf-extractor/internal/checkpoint"
)

// Mode is the operator's choice of task set for a run.
type Mode int

const (
	ModeAll Mode = iota
	ModeResume
	ModeRange
	ModeQuit
)

// Selection is the resolved task set for one run. Ephemeral: re-derived each
// invocation from the checkpoint plus operator input, never persisted.
type Selection struct {
	Mode  Mode
	Start int
	End   int
}

// RangeError reports an operator-supplied page range outside 1..Total. The
// prompter re-prompts on it; the non-interactive resolver returns it.
type RangeError struct {
	Input string
	Total int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid page range %q: must be within 1-%d with start <= end", e.Input, e.Total)
}

// parseRange parses "start-end" and validates 1 <= start <= end <= total.
func parseRange(input string, total int) (Selection, error) {
	startStr, endStr, ok := strings.Cut(input, "-")
	if !ok {
		return Selection{}, &RangeError{Input: input, Total: total}
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(startStr))
	end, err2 := strconv.Atoi(strings.TrimSpace(endStr))
	if err1 != nil || err2 != nil || start < 1 || start > end || end > total {
		return Selection{}, &RangeError{Input: input, Total: total}
	}
	return Selection{Mode: ModeRange, Start: start, End: end}, nil
}

// Selector resolves the task set for a run given the derived checkpoint
// state. The orchestrator is driven through this interface so tests never
// need interactive I/O.
type Selector interface {
	Choose(st checkpoint.State, totalPages int) (Selection, error)
}

// Prompter is the interactive Selector: a small state machine over an
// operator input stream. Resume is only offered when prior progress exists.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) Choose(st checkpoint.State, totalPages int) (Selection, error) {
	last := st.LastCompleted
	if last > 0 {
		fmt.Fprintf(p.out, "Found existing files. Last processed page was %d of %d.\n", last, totalPages)
		fmt.Fprintf(p.out, "Enter 'r' to resume at page %d, 'a' for all, 'n' for a new range, or 'q' to quit: ", last+1)
	} else {
		fmt.Fprintf(p.out, "PDF contains %d pages. No existing output found.\n", totalPages)
		fmt.Fprint(p.out, "Enter 'a' for all pages, a range (e.g. 5-10), or 'q' to quit: ")
	}

	for {
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return Selection{}, fmt.Errorf("read selection: %w", err)
			}
			return Selection{}, fmt.Errorf("read selection: %w", io.ErrUnexpectedEOF)
		}
		input := strings.ToLower(strings.TrimSpace(p.in.Text()))

		switch {
		case input == "q":
			return Selection{Mode: ModeQuit}, nil

		case input == "a":
			return Selection{Mode: ModeAll, Start: 1, End: totalPages}, nil

		case input == "r":
			if last == 0 {
				fmt.Fprint(p.out, "No previous progress found. Enter 'a', a range, or 'q': ")
				continue
			}
			if last >= totalPages {
				fmt.Fprintln(p.out, "All pages already processed.")
				return Selection{Mode: ModeQuit}, nil
			}
			return Selection{Mode: ModeResume, Start: last + 1, End: totalPages}, nil

		case input == "n":
			fmt.Fprintf(p.out, "Enter page range (e.g. 1-%d): ", totalPages)
			continue

		case strings.Contains(input, "-"):
			sel, err := parseRange(input, totalPages)
			if err != nil {
				fmt.Fprintf(p.out, "%s. Try again: ", err)
				continue
			}
			return sel, nil

		default:
			fmt.Fprint(p.out, "Invalid command. Enter 'a', 'r', 'n', a range, or 'q': ")
		}
	}
}

// StaticSelector resolves the task set from flags without prompting, for
// scripted runs. mode is "all", "resume", or "range"; pageRange is required
// for "range".
type StaticSelector struct {
	ModeFlag  string
	PageRange string
}

func (s StaticSelector) Choose(st checkpoint.State, totalPages int) (Selection, error) {
	switch s.ModeFlag {
	case "all":
		return Selection{Mode: ModeAll, Start: 1, End: totalPages}, nil
	case "resume":
		if st.LastCompleted >= totalPages {
			return Selection{Mode: ModeQuit}, nil
		}
		return Selection{Mode: ModeResume, Start: st.LastCompleted + 1, End: totalPages}, nil
	case "range":
		return parseRange(s.PageRange, totalPages)
	default:
		return Selection{}, fmt.Errorf("unknown mode %q", s.ModeFlag)
	}
}
