package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/alisw/ci-overview/internal/overview"
)

// Compile-time interface satisfaction check.
var _ Renderer = (*HTML)(nil)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	// The legend's example chips are class-styled spans, so the UGC policy is
	// widened to keep class attributes on them.
	htmlSanitizer = bluemonday.UGCPolicy()
	htmlSanitizer.AllowAttrs("class").OnElements("span", "div")
}

// stylesheet is the complete, self-contained style for the HTML document.
const stylesheet = `body { font-family: sans-serif; margin: 0; padding: 1rem; }
#key { padding: 0.5rem; }
#key[open] { border: 0.15rem dashed #777; }
#key summary { font-weight: bold; }
.branch-name { font-family: monospace; font-size: 1.25rem;
               font-style: italic; margin-left: 0.75rem; }
.branch-name::before { content: "("; }
.branch-name::after { content: ")"; }
.check-name { margin-left: 1rem; }
.empty { font-size: 0.875rem; color: #777; font-style: italic; }
.table { margin-left: 1.75rem; display: flex; place-content: start;
         flex-flow: row wrap; }
.status { padding: 0.25rem; margin: 0.25rem; --status-color: currentColor;
          border: 0.1rem solid transparent; color: var(--status-color); }
.status a { display: block; color: inherit; }
.status.recent { border-color: var(--status-color); }
.status.EXPECTED { --status-color: #24292f; border-style: dotted; }
.status.PENDING { --status-color: #bf8700; }
.status.SUCCESS { --status-color: #1a7f37; }
.status.ERROR { --status-color: #cf222e; }
.status.FAILURE { --status-color: #cf222e; font-weight: bold; }`

// legendMarkdown is the explanatory key, authored as markdown and rendered
// through the same pipeline as any other rich text.
const legendMarkdown = `The results of the check listed in each heading are shown for each open pull
request in a list.

Results are ordered most recent first. Checks that completed after a set
cutoff point (see the top of this document for the specific time) have a
border around them, <span class="status recent">like this</span>.

The colour coding works as follows:

- <span class="status EXPECTED">#0000</span> is an "expected" status: the CI
  has not picked this pull request up at all yet for the respective check.
- <span class="status PENDING">#0000</span> is a "pending" status: the CI has
  picked the pull request up, but the check has not completed yet.
- <span class="status SUCCESS">#0000</span> is a successful status: the check
  ran and no errors were found.
- <span class="status FAILURE">#0000</span> is a failed status: the check ran
  and reported a failure.
- <span class="status ERROR">#0000</span> is an error status: the check ran
  but a build error occurred.

Draft pull requests, and those whose title starts with ` + "`[WIP]`" + `, are
not shown at all.`

// HTML renders the overview as one self-contained HTML document with no
// external assets.
type HTML struct {
	w      io.Writer
	now    time.Time
	cutoff time.Time
	window time.Duration
}

// NewHTML returns an HTML renderer writing to w.
func NewHTML(w io.Writer, opts Options) *HTML {
	return &HTML{
		w:      w,
		now:    opts.Now,
		cutoff: opts.cutoff(),
		window: opts.RecentWindow,
	}
}

// renderLegend converts the legend markdown to sanitized HTML.
func renderLegend() string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(legendMarkdown), &buf); err != nil {
		slog.Warn("legend markdown conversion failed", "error", err)
		return htmlSanitizer.Sanitize(legendMarkdown)
	}
	return htmlSanitizer.Sanitize(buf.String())
}

// Begin writes the document head, title, generation stamp, and legend.
func (h *HTML) Begin() error {
	_, err := fmt.Fprintf(h.w, `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>CI overview</title>
<style type="text/css">
%s
</style>
</head>
<body>
<h1>CI overview</h1>
<p>Document generated at %s. Statuses from the last <strong>%s</strong>,
   i.e. newer than %s, are marked as <span class="status recent">recent</span>.</p>
<details id="key"><summary>Explanation (click to expand)</summary>
%s
</details>
`,
		stylesheet,
		h.now.UTC().Format(time.RFC3339),
		h.window,
		h.cutoff.UTC().Format(time.RFC3339),
		renderLegend(),
	)
	return err
}

// RepoHeader writes a heading with the repository and branch name.
func (h *HTML) RepoHeader(repository, branch string) error {
	_, err := fmt.Fprintf(h.w, "<h2>%s <span class=\"branch-name\">%s</span></h2>\n",
		html.EscapeString(repository), html.EscapeString(branch))
	return err
}

// CheckHeader writes the check name heading.
func (h *HTML) CheckHeader(name string) error {
	_, err := fmt.Fprintf(h.w, "<h3 class=\"check-name\">%s</h3>\n", html.EscapeString(name))
	return err
}

// EmptyTable writes the placeholder for a check with no open pull requests.
func (h *HTML) EmptyTable() error {
	_, err := fmt.Fprintln(h.w, `<div class="table empty">(no open non-draft PRs here)</div>`)
	return err
}

// StatusTable writes all cells of the table; rows wrap via CSS, so the layout
// rows are flattened in order.
func (h *HTML) StatusTable(rows [][]overview.Cell) error {
	if _, err := fmt.Fprintln(h.w, `<div class="table">`); err != nil {
		return err
	}
	for _, row := range rows {
		for _, cell := range row {
			if _, err := fmt.Fprintln(h.w, h.cell(cell)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(h.w, "</div>")
	return err
}

// End closes the document.
func (h *HTML) End() error {
	_, err := fmt.Fprintln(h.w, "</body></html>")
	return err
}

// cell tags one label with its state class, recency class, and link, mirroring
// the text renderer's colour and recency semantics exactly.
func (h *HTML) cell(c overview.Cell) string {
	text := html.EscapeString(c.Label)
	if url := c.Status.URL(); url != "" {
		text = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), text)
	}

	age := "old"
	if c.Status.Recent(h.cutoff) {
		age = "recent"
	}
	return fmt.Sprintf(`<div class="status %s %s" title="%s">%s</div>`,
		c.Status.State, age, c.Status.CreatedAt.UTC().Format(time.RFC3339), text)
}
