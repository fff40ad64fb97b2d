package model

import "time"

// PullRequest carries the data the status fetcher reports for one open pull
// request: its latest commit and that commit's check contexts.
type PullRequest struct {
	Repository string // "owner/repo".
	Number     int
	Title      string
	IsDraft    bool
	CommitSHA  string                   // Latest commit only; older commits are never considered.
	Contexts   map[string]CommitContext // Keyed by context (check) name.
}

// CommitContext is a single reported status entry on a commit.
type CommitContext struct {
	State     State
	CreatedAt time.Time
	TargetURL string // Optional.
}
