// Package render produces the overview documents. Three variants (terminal
// text, HTML, metrics) implement one Renderer interface and consume the same
// catalog, classified statuses, and table layout, so switching the output
// format can never change which pull requests or checks are included.
package render

import (
	"time"

	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/overview"
)

// Options carry the rendering parameters shared by all variants.
type Options struct {
	Now          time.Time
	RecentWindow time.Duration // Statuses strictly newer than Now-RecentWindow are marked recent.
	DisplayWidth int           // Available table width; zero still lays out one item per row.
}

// cutoff returns the recency threshold.
func (o Options) cutoff() time.Time {
	return o.Now.Add(-o.RecentWindow)
}

// Renderer is the capability set every output variant provides.
type Renderer interface {
	Begin() error
	RepoHeader(repository, branch string) error
	CheckHeader(name string) error
	EmptyTable() error
	StatusTable(rows [][]overview.Cell) error
	End() error
}

// Statuses holds one cycle's classified statuses: target -> check -> ordered
// status list. A target missing from the map entirely failed to fetch this
// cycle; a present target with empty lists genuinely has no open pull
// requests.
type Statuses map[model.Target]map[string][]model.CheckStatus

// Overview walks the catalog in its deterministic order and drives the
// renderer. Targets whose fetch failed are skipped rather than shown as
// empty, so a transport failure is never mistaken for "no open PRs".
func Overview(r Renderer, cat *model.Catalog, statuses Statuses, opts Options) error {
	if err := r.Begin(); err != nil {
		return err
	}

	for _, target := range cat.Targets() {
		byCheck, fetched := statuses[target]
		if !fetched {
			continue
		}

		if err := r.RepoHeader(target.Repository, target.Branch); err != nil {
			return err
		}
		for _, check := range cat.ChecksFor(target) {
			if err := r.CheckHeader(check); err != nil {
				return err
			}

			rows := overview.Layout(byCheck[check], opts.DisplayWidth)
			if len(rows) == 0 {
				if err := r.EmptyTable(); err != nil {
					return err
				}
				continue
			}
			if err := r.StatusTable(rows); err != nil {
				return err
			}
		}
	}

	return r.End()
}
