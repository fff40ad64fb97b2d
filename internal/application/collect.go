// Package application contains use-case orchestration: the fetch/classify
// pipeline and the service-mode refresh loop.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alisw/ci-overview/internal/catalog"
	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/domain/port/driven"
	"github.com/alisw/ci-overview/internal/overview"
	"github.com/alisw/ci-overview/internal/render"
)

// fetchConcurrency bounds parallel per-target status fetches in one pass.
const fetchConcurrency = 4

// Collect runs one full fetch+classify pass: definitions tree, catalog
// resolution, and pull-request statuses for every target. Failures local to
// one repository are logged and leave that target out of the result; the
// returned error is non-nil when the pass as a whole cannot stand (no tree,
// every fetch failed) or when a filter-requested check could not be resolved.
// The catalog is non-nil whenever anything at all was resolved, so callers
// can still report best-effort results alongside the error.
func Collect(ctx context.Context, source driven.DefinitionSource, fetcher driven.StatusFetcher,
	filters catalog.Filters, now time.Time) (*model.Catalog, render.Statuses, error) {

	tree, err := source.FetchTree(ctx)
	if err != nil {
		return nil, nil, err
	}

	cat, resolveErr := catalog.Resolve(tree, filters)
	if cat == nil {
		return nil, nil, resolveErr
	}

	targets := cat.Targets()
	statuses := make(render.Statuses, len(targets))

	var (
		mu         sync.Mutex
		fetchErrs  []error
		group, gtx = errgroup.WithContext(ctx)
	)
	group.SetLimit(fetchConcurrency)

	for _, target := range targets {
		group.Go(func() error {
			pulls, err := fetcher.FetchPullRequests(gtx, target.Repository, target.Branch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("status fetch failed", "repo", target.Repository, "branch", target.Branch, "error", err)
				fetchErrs = append(fetchErrs, err)
				return nil // Other targets still report.
			}
			statuses[target] = overview.Classify(pulls, cat.Checks[target], cat.Names, now)
			return nil
		})
	}
	_ = group.Wait()

	if len(targets) > 0 && len(fetchErrs) == len(targets) {
		return cat, nil, errors.Join(append([]error{fmt.Errorf("all %d status fetches failed", len(targets))}, fetchErrs...)...)
	}
	return cat, statuses, resolveErr
}
