// Package overview turns fetched pull-request data into classified check
// statuses and lays them out into bounded-width tables.
package overview

import (
	"strings"
	"time"

	"github.com/alisw/ci-overview/internal/domain/model"
)

// wipMarker excludes pull requests whose title declares work in progress even
// when the draft flag is not set. The match is a case-sensitive prefix match.
const wipMarker = "[WIP]"

// Classify normalizes pull requests into one CheckStatus per (check, pull
// request). Draft and [WIP]-titled pull requests are skipped. A check with no
// matching context on a pull request's latest commit yields a synthetic
// EXPECTED status timestamped now, so every surviving pull request
// contributes exactly one status per requested check.
func Classify(pulls []model.PullRequest, checks []string, names map[string]string, now time.Time) map[string][]model.CheckStatus {
	statuses := make(map[string][]model.CheckStatus, len(checks))
	for _, check := range checks {
		statuses[check] = nil
	}

	for _, pull := range pulls {
		if pull.IsDraft || strings.HasPrefix(pull.Title, wipMarker) {
			continue
		}

		for _, check := range checks {
			status := model.CheckStatus{
				Check:      check,
				State:      model.StateExpected,
				CreatedAt:  now,
				Repository: pull.Repository,
				PullNumber: pull.Number,
				CommitSHA:  pull.CommitSHA,
				CIName:     names[check],
			}
			if context, ok := pull.Contexts[check]; ok {
				status.State = context.State
				status.CreatedAt = context.CreatedAt
				status.TargetURL = context.TargetURL
			}
			statuses[check] = append(statuses[check], status)
		}
	}
	return statuses
}
