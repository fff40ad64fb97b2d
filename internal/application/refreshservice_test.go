package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisw/ci-overview/internal/application"
	"github.com/alisw/ci-overview/internal/catalog"
)

// runOneCycle starts the service with an already-canceled context, so Start
// performs exactly its immediate cycle and returns.
func runOneCycle(t *testing.T, svc *application.RefreshService) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Start(ctx))
}

func TestRefreshServicePlaceholderBeforeFirstCycle(t *testing.T) {
	svc := application.NewRefreshService(&stubSource{tree: testTree()}, testFetcher(),
		catalog.Filters{}, time.Minute, 24*time.Hour)

	snap := svc.Snapshot()
	require.NotNil(t, snap)
	assert.Contains(t, string(snap.HTML), "Generating, please wait")
	assert.Contains(t, string(snap.Metrics), "Generating, please wait")
}

func TestRefreshServiceStartWithoutCollaborators(t *testing.T) {
	svc := application.NewRefreshService(nil, nil, catalog.Filters{}, time.Minute, 24*time.Hour)
	require.Error(t, svc.Start(context.Background()))
}

func TestRefreshServicePublishesSnapshot(t *testing.T) {
	svc := application.NewRefreshService(&stubSource{tree: testTree()}, testFetcher(),
		catalog.Filters{}, time.Minute, 24*time.Hour)

	runOneCycle(t, svc)

	snap := svc.Snapshot()
	require.NotNil(t, snap)
	assert.Contains(t, string(snap.HTML), "acme/widgets")
	assert.Contains(t, string(snap.HTML), "#42")
	assert.Contains(t, string(snap.Metrics), `ci_check_statuses{repository="acme/widgets"`)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestRefreshServiceFailedCycleKeepsPreviousSnapshot(t *testing.T) {
	fetcher := testFetcher()
	svc := application.NewRefreshService(&stubSource{tree: testTree()}, fetcher,
		catalog.Filters{}, time.Minute, 24*time.Hour)

	runOneCycle(t, svc)
	published := svc.Snapshot()

	// Every fetch now fails; the next cycle must not replace the snapshot.
	fetcher.setError("acme/widgets", errors.New("boom"))
	fetcher.setError("acme/gadgets", errors.New("boom"))
	runOneCycle(t, svc)

	assert.Same(t, published, svc.Snapshot())
}

func TestRefreshServiceSourceFailureKeepsPlaceholder(t *testing.T) {
	svc := application.NewRefreshService(&stubSource{err: errors.New("no tree")}, testFetcher(),
		catalog.Filters{}, time.Minute, 24*time.Hour)

	before := svc.Snapshot()
	runOneCycle(t, svc)
	assert.Same(t, before, svc.Snapshot())
}

func TestRefreshServiceTriggerRefreshNeverBlocks(t *testing.T) {
	svc := application.NewRefreshService(&stubSource{tree: testTree()}, testFetcher(),
		catalog.Filters{}, time.Minute, 24*time.Hour)

	done := make(chan struct{})
	go func() {
		// No loop is running; repeated triggers must coalesce, not block.
		svc.TriggerRefresh()
		svc.TriggerRefresh()
		svc.TriggerRefresh()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TriggerRefresh blocked")
	}
}
