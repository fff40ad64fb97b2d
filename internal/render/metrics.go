package render

import (
	"fmt"
	"io"
	"time"

	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/overview"
)

// Compile-time interface satisfaction check.
var _ Renderer = (*Metrics)(nil)

// Metrics renders the overview as Prometheus-style exposition text: one gauge
// line per (repository, branch, check, state). Every check emits a line for
// all five states, zero-valued included, so scrape series never appear and
// disappear between cycles. Line order follows the catalog walk and the
// state enumeration, making the output deterministic for identical input.
type Metrics struct {
	w   io.Writer
	now time.Time

	repository string
	branch     string
	series     []metricSeries
}

type metricSeries struct {
	repository string
	branch     string
	check      string
	counts     map[model.State]int
}

// NewMetrics returns a metrics renderer writing to w.
func NewMetrics(w io.Writer, opts Options) *Metrics {
	return &Metrics{w: w, now: opts.Now}
}

// Begin writes the metric headers.
func (m *Metrics) Begin() error {
	_, err := fmt.Fprint(m.w,
		"# HELP ci_check_statuses Open non-draft pull requests per check and state.\n"+
			"# TYPE ci_check_statuses gauge\n")
	return err
}

// RepoHeader records the target the following checks belong to.
func (m *Metrics) RepoHeader(repository, branch string) error {
	m.repository = repository
	m.branch = branch
	return nil
}

// CheckHeader opens a fresh series for the check, all counts zero.
func (m *Metrics) CheckHeader(name string) error {
	m.series = append(m.series, metricSeries{
		repository: m.repository,
		branch:     m.branch,
		check:      name,
		counts:     make(map[model.State]int),
	})
	return nil
}

// EmptyTable keeps the zero-valued series opened by CheckHeader.
func (m *Metrics) EmptyTable() error { return nil }

// StatusTable counts the states of the current check's statuses.
func (m *Metrics) StatusTable(rows [][]overview.Cell) error {
	current := &m.series[len(m.series)-1]
	for _, row := range rows {
		for _, cell := range row {
			current.counts[cell.Status.State]++
		}
	}
	return nil
}

// End writes all accumulated series plus the generation timestamp.
func (m *Metrics) End() error {
	// %q covers the exposition-format label escapes (backslash, quote, newline).
	for _, s := range m.series {
		for _, state := range model.States {
			_, err := fmt.Fprintf(m.w,
				"ci_check_statuses{repository=%q,branch=%q,check=%q,state=%q} %d\n",
				s.repository, s.branch, s.check, state, s.counts[state])
			if err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(m.w,
		"# HELP ci_overview_generated_timestamp_seconds When this overview was generated.\n"+
			"# TYPE ci_overview_generated_timestamp_seconds gauge\n"+
			"ci_overview_generated_timestamp_seconds %d\n", m.now.Unix())
	return err
}
