package application

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/alisw/ci-overview/internal/catalog"
	"github.com/alisw/ci-overview/internal/domain/port/driven"
	"github.com/alisw/ci-overview/internal/render"
)

// Snapshot is one complete, internally consistent set of rendered outputs
// from one refresh cycle. Snapshots are immutable once published.
type Snapshot struct {
	HTML        []byte
	Metrics     []byte
	GeneratedAt time.Time
}

// placeholderSnapshot is served until the first cycle completes.
func placeholderSnapshot() *Snapshot {
	return &Snapshot{
		HTML:        []byte("<!doctype html><body><h2>Generating, please wait...</h2></body>"),
		Metrics:     []byte("# Generating, please wait...\n"),
		GeneratedAt: time.Now().UTC(),
	}
}

// RefreshService runs the fetch -> classify -> render pipeline on a fixed
// interval and publishes the result for concurrent readers. Publication is
// by replacement: a cycle renders completely off to the side, then a single
// atomic pointer swap makes it visible. Readers never block on the pipeline
// and never observe a partially rendered document; a failed cycle leaves the
// previous snapshot published unchanged.
type RefreshService struct {
	source       driven.DefinitionSource
	fetcher      driven.StatusFetcher
	filters      catalog.Filters
	interval     time.Duration
	recentWindow time.Duration

	snapshot  atomic.Pointer[Snapshot]
	refreshCh chan struct{}
}

// NewRefreshService creates the service and publishes the placeholder
// snapshot so readers always have a document.
func NewRefreshService(source driven.DefinitionSource, fetcher driven.StatusFetcher,
	filters catalog.Filters, interval, recentWindow time.Duration) *RefreshService {

	s := &RefreshService{
		source:       source,
		fetcher:      fetcher,
		filters:      filters,
		interval:     interval,
		recentWindow: recentWindow,
		refreshCh:    make(chan struct{}, 1),
	}
	s.snapshot.Store(placeholderSnapshot())
	return s
}

// Snapshot returns the most recently published snapshot. Safe for any number
// of concurrent callers.
func (s *RefreshService) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// TriggerRefresh requests an early cycle, coalescing with any already
// pending request.
func (s *RefreshService) TriggerRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// Start runs an immediate cycle, then loops on the configured interval until
// the context is canceled. A missing collaborator is unrecoverable and
// returned as an error so the caller can initiate shutdown; cycle failures
// are logged and the loop keeps going.
func (s *RefreshService) Start(ctx context.Context) error {
	if s.source == nil || s.fetcher == nil {
		return fmt.Errorf("refresh service started without its collaborators")
	}

	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh service stopped")
			return nil
		case <-ticker.C:
			s.cycle(ctx)
		case <-s.refreshCh:
			s.cycle(ctx)
			ticker.Reset(s.interval)
		}
	}
}

// cycle runs one pipeline pass and publishes the result. Any failure keeps
// the previous snapshot: stale-but-available beats unavailable.
func (s *RefreshService) cycle(ctx context.Context) {
	start := time.Now()
	now := start.UTC()

	cat, statuses, err := Collect(ctx, s.source, s.fetcher, s.filters, now)
	if err != nil {
		slog.Error("refresh cycle failed, keeping previous snapshot", "error", err)
		if cat == nil || statuses == nil {
			return
		}
		// Partial results (e.g. an unresolvable requested check) still render.
	}

	opts := render.Options{Now: now, RecentWindow: s.recentWindow, DisplayWidth: 80}

	var htmlBuf, metricsBuf bytes.Buffer
	if err := render.Overview(render.NewHTML(&htmlBuf, opts), cat, statuses, opts); err != nil {
		slog.Error("html render failed, keeping previous snapshot", "error", err)
		return
	}
	if err := render.Overview(render.NewMetrics(&metricsBuf, opts), cat, statuses, opts); err != nil {
		slog.Error("metrics render failed, keeping previous snapshot", "error", err)
		return
	}

	s.snapshot.Store(&Snapshot{
		HTML:        htmlBuf.Bytes(),
		Metrics:     metricsBuf.Bytes(),
		GeneratedAt: now,
	})

	slog.Info("snapshot published",
		"targets", len(cat.Checks),
		"checks", len(cat.Names),
		"duration", time.Since(start).Round(time.Millisecond),
	)
}
