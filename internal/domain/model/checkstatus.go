package model

import (
	"fmt"
	"time"
)

// CheckStatus is one classified result of a single check on a single pull
// request. Real contexts come from the CI; checks the CI has not reported on
// yet are synthesized with StateExpected. After classification every field
// except TargetURL is populated.
type CheckStatus struct {
	Check      string    // Display name of the check (the commit status context).
	State      State     // One of the five check states.
	CreatedAt  time.Time // When the context was reported (or synthesized).
	Repository string    // "owner/repo".
	PullNumber int       // Pull request number.
	CommitSHA  string    // Head commit the context was reported for.
	CIName     string    // Internal CI-system name for the check.
	TargetURL  string    // Optional link reported by the CI; empty if none.
}

// URL returns the most useful link for this status: the CI-reported target
// URL when present, otherwise the pull request page. An empty string means
// the status should render as plain, non-linked text.
func (s CheckStatus) URL() string {
	if s.TargetURL != "" {
		return s.TargetURL
	}
	if s.Repository != "" && s.PullNumber != 0 {
		return fmt.Sprintf("https://github.com/%s/pull/%d", s.Repository, s.PullNumber)
	}
	return ""
}

// Recent reports whether the status was created strictly after the given
// cutoff. A status created exactly at the cutoff is not recent.
func (s CheckStatus) Recent(cutoff time.Time) bool {
	return s.CreatedAt.After(cutoff)
}
