package overview_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/overview"
)

var classifyNow = time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

func pull(number int, title string, draft bool, contexts map[string]model.CommitContext) model.PullRequest {
	return model.PullRequest{
		Repository: "acme/widgets",
		Number:     number,
		Title:      title,
		IsDraft:    draft,
		CommitSHA:  "abc123",
		Contexts:   contexts,
	}
}

func TestClassifySkipsDraftsAndWIP(t *testing.T) {
	pulls := []model.PullRequest{
		pull(1, "real change", false, nil),
		pull(2, "secret work", true, nil),
		pull(3, "[WIP] fix bug", false, nil), // excluded even though not flagged as draft
		pull(4, "[wip] lowercase is not the marker", false, nil),
		pull(5, "not a [WIP] prefix", false, nil),
	}

	statuses := overview.Classify(pulls, []string{"build"}, map[string]string{"build": "build-ci"}, classifyNow)

	numbers := make([]int, 0, len(statuses["build"]))
	for _, status := range statuses["build"] {
		numbers = append(numbers, status.PullNumber)
	}
	assert.Equal(t, []int{1, 4, 5}, numbers)
}

func TestClassifySynthesizesExpected(t *testing.T) {
	reported := time.Date(2026, 8, 22, 9, 30, 0, 0, time.UTC)
	pulls := []model.PullRequest{
		pull(7, "add feature", false, map[string]model.CommitContext{
			"build": {State: model.StateSuccess, CreatedAt: reported, TargetURL: "https://ci.example.org/7"},
		}),
	}
	checks := []string{"build", "lint"}
	names := map[string]string{"build": "build-ci", "lint": "lint-ci"}

	statuses := overview.Classify(pulls, checks, names, classifyNow)

	require.Len(t, statuses["build"], 1)
	build := statuses["build"][0]
	assert.Equal(t, model.StateSuccess, build.State)
	assert.Equal(t, reported, build.CreatedAt)
	assert.Equal(t, "https://ci.example.org/7", build.TargetURL)
	assert.Equal(t, "build-ci", build.CIName)
	assert.Equal(t, "abc123", build.CommitSHA)
	assert.Equal(t, "acme/widgets", build.Repository)
	assert.Equal(t, 7, build.PullNumber)

	// No lint context reported: exactly one synthetic EXPECTED status,
	// timestamped at generation time.
	require.Len(t, statuses["lint"], 1)
	lint := statuses["lint"][0]
	assert.Equal(t, model.StateExpected, lint.State)
	assert.Equal(t, classifyNow, lint.CreatedAt)
	assert.Empty(t, lint.TargetURL)
	assert.Equal(t, "lint-ci", lint.CIName)
}

func TestClassifyRowCountIsPullsTimesChecks(t *testing.T) {
	pulls := []model.PullRequest{
		pull(1, "one", false, nil),
		pull(2, "two", false, nil),
		pull(3, "three", false, nil),
	}
	checks := []string{"a", "b"}

	statuses := overview.Classify(pulls, checks, map[string]string{}, classifyNow)

	total := 0
	for _, check := range checks {
		total += len(statuses[check])
	}
	assert.Equal(t, len(pulls)*len(checks), total)
}

func TestClassifyEmptyInputKeepsCheckKeys(t *testing.T) {
	statuses := overview.Classify(nil, []string{"build", "lint"}, map[string]string{}, classifyNow)

	require.Len(t, statuses, 2)
	assert.Empty(t, statuses["build"])
	assert.Empty(t, statuses["lint"])
}
