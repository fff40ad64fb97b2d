// Package driven defines the ports implemented by driven adapters.
package driven

import (
	"context"

	"github.com/alisw/ci-overview/internal/domain/model"
)

// StatusFetcher retrieves open pull requests, with their latest-commit check
// contexts, for one repository and base branch. Any data source honoring this
// shape works: the GitHub adapter, a cache, or a test fixture. Implementations
// must not return draft-filtered results; filtering is the classifier's job.
type StatusFetcher interface {
	FetchPullRequests(ctx context.Context, repository, branch string) ([]model.PullRequest, error)
}
