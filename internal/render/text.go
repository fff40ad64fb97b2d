package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/overview"
)

// Compile-time interface satisfaction check.
var _ Renderer = (*Text)(nil)

// Text renders the overview as ANSI-escaped terminal output. The colour
// profile is pinned to ANSI so output is identical regardless of the
// terminal the process happens to run in.
type Text struct {
	w      io.Writer
	out    *termenv.Output
	cutoff time.Time
}

// NewText returns a terminal renderer writing to w.
func NewText(w io.Writer, opts Options) *Text {
	return &Text{
		w:      w,
		out:    termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI)),
		cutoff: opts.cutoff(),
	}
}

// Begin is a no-op; terminal output needs no preamble.
func (t *Text) Begin() error { return nil }

// RepoHeader prints the repository bold and underlined, the branch italic.
func (t *Text) RepoHeader(repository, branch string) error {
	repo := t.out.String(repository).Underline().Bold()
	br := t.out.String("(" + branch + ")").Italic()
	_, err := fmt.Fprintf(t.w, "%s  %s\n", repo, br)
	return err
}

// CheckHeader prints the check name underlined and indented.
func (t *Text) CheckHeader(name string) error {
	_, err := fmt.Fprintf(t.w, "%s%s\n", overview.Indent, t.out.String(name).Underline())
	return err
}

// EmptyTable prints the placeholder for a check with no open pull requests.
func (t *Text) EmptyTable() error {
	msg := t.out.String("(no open non-draft PRs here)").Foreground(termenv.ANSIBrightBlack).Italic()
	_, err := fmt.Fprintf(t.w, "%s%s%s\n\n", overview.Indent, overview.Indent, msg)
	return err
}

// StatusTable prints the laid-out rows, colour- and link-coded per cell.
func (t *Text) StatusTable(rows [][]overview.Cell) error {
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = t.cell(cell)
		}
		line := overview.Indent + overview.Indent + strings.Join(cells, overview.Separator)
		if _, err := fmt.Fprintln(t.w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(t.w)
	return err
}

// End is a no-op.
func (t *Text) End() error { return nil }

// cell styles one label for its status: fixed colour per state, reverse video
// when recent, and an OSC 8 hyperlink when a result URL is known.
func (t *Text) cell(c overview.Cell) string {
	style := t.out.String(c.Label)
	switch c.Status.State {
	case model.StateExpected:
		style = style.Foreground(termenv.ANSIBrightBlack)
	case model.StatePending:
		style = style.Foreground(termenv.ANSIYellow)
	case model.StateSuccess:
		style = style.Foreground(termenv.ANSIGreen)
	case model.StateFailure:
		style = style.Foreground(termenv.ANSIRed).Bold()
	case model.StateError:
		style = style.Foreground(termenv.ANSIRed)
	}
	if c.Status.Recent(t.cutoff) {
		style = style.Reverse()
	}

	text := style.String()
	if url := c.Status.URL(); url != "" {
		text = t.out.Hyperlink(url, text)
	}
	return text
}
