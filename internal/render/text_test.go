package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisw/ci-overview/internal/render"
)

func renderText(t *testing.T) string {
	t.Helper()
	cat, statuses := fixture()
	var buf bytes.Buffer
	opts := render.Options{Now: renderNow, RecentWindow: 24 * time.Hour, DisplayWidth: 80}
	require.NoError(t, render.Overview(render.NewText(&buf, opts), cat, statuses, opts))
	return buf.String()
}

func TestTextHeaders(t *testing.T) {
	out := renderText(t)

	assert.Contains(t, out, "acme/widgets")
	assert.Contains(t, out, "(main)")
	assert.Contains(t, out, "unit-gcc")
	assert.Contains(t, out, "lint")

	// The unfetched target is skipped, not rendered as empty.
	assert.NotContains(t, out, "acme/gadgets")
}

func TestTextStateColors(t *testing.T) {
	out := renderText(t)

	// #12 succeeded an hour ago: green, reverse video for recency.
	assert.Contains(t, out, "\x1b[32;7m#12\x1b[0m")
	// #7 failed two days ago: bold red, no recency marking.
	assert.Contains(t, out, "\x1b[31;1m# 7\x1b[0m")
	// #3 is the synthetic EXPECTED status stamped at generation time:
	// bright black, recent.
	assert.Contains(t, out, "\x1b[90;7m# 3\x1b[0m")
}

func TestTextHyperlinks(t *testing.T) {
	out := renderText(t)

	// The reported status links to its CI result page.
	assert.Contains(t, out, "\x1b]8;;https://ci.example.org/12\x1b\\")
	// Statuses without a target URL fall back to the pull request page.
	assert.Contains(t, out, "\x1b]8;;https://github.com/acme/widgets/pull/7\x1b\\")
}

func TestTextEmptyTablePlaceholder(t *testing.T) {
	out := renderText(t)
	assert.Contains(t, out, "(no open non-draft PRs here)")
}

func TestTextOrderIsMostRecentFirst(t *testing.T) {
	out := renderText(t)

	// #3 (now) before #12 (an hour ago) before #7 (two days ago).
	i3 := bytes.Index([]byte(out), []byte("# 3"))
	i12 := bytes.Index([]byte(out), []byte("#12"))
	i7 := bytes.Index([]byte(out), []byte("# 7"))
	require.True(t, i3 >= 0 && i12 >= 0 && i7 >= 0)
	assert.Less(t, i3, i12)
	assert.Less(t, i12, i7)
}
