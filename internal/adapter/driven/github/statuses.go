package github

import (
	"context"
	"fmt"
	"time"

	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StatusFetcher = (*Client)(nil)

const prStatusesQuery = `query statuses($repoOwner: String!, $repoName: String!, $baseBranch: String!) {
	repository(owner: $repoOwner, name: $repoName) {
		pullRequests(last: 50, baseRefName: $baseBranch, states: OPEN) {
			nodes {
				number
				title
				isDraft
				commits(last: 1) {
					nodes {
						commit {
							oid
							status {
								contexts {
									context
									state
									createdAt
									targetUrl
								}
							}
						}
					}
				}
			}
		}
	}
}`

// prStatusesResponse is the expected shape of the pull-request statuses query.
type prStatusesResponse struct {
	Data struct {
		Repository struct {
			PullRequests struct {
				Nodes []struct {
					Number  int    `json:"number"`
					Title   string `json:"title"`
					IsDraft bool   `json:"isDraft"`
					Commits struct {
						Nodes []struct {
							Commit struct {
								OID    string `json:"oid"`
								Status *struct {
									Contexts []struct {
										Context   string    `json:"context"`
										State     string    `json:"state"`
										CreatedAt time.Time `json:"createdAt"`
										TargetURL string    `json:"targetUrl"`
									} `json:"contexts"`
								} `json:"status"`
							} `json:"commit"`
						} `json:"nodes"`
					} `json:"commits"`
				} `json:"nodes"`
			} `json:"pullRequests"`
		} `json:"repository"`
	} `json:"data"`
	graphqlErrors
}

// FetchPullRequests retrieves open pull requests on the given base branch,
// each with its latest commit's check contexts. Draft filtering is left to
// the classifier. A malformed response (unknown state, missing commit) fails
// the whole fetch so a partial answer is never mistaken for a complete one.
func (c *Client) FetchPullRequests(ctx context.Context, repository, branch string) ([]model.PullRequest, error) {
	owner, repo, err := splitRepo(repository)
	if err != nil {
		return nil, err
	}

	var resp prStatusesResponse
	if err := c.postGraphQL(ctx, prStatusesQuery, map[string]any{
		"repoOwner":  owner,
		"repoName":   repo,
		"baseBranch": branch,
	}, &resp); err != nil {
		return nil, fmt.Errorf("fetching pull requests for %s (%s): %w", repository, branch, err)
	}
	if err := resp.firstError(); err != nil {
		return nil, fmt.Errorf("fetching pull requests for %s (%s): %w", repository, branch, err)
	}

	nodes := resp.Data.Repository.PullRequests.Nodes
	pulls := make([]model.PullRequest, 0, len(nodes))
	for _, node := range nodes {
		if len(node.Commits.Nodes) == 0 {
			return nil, fmt.Errorf("pull request %s#%d has no commits in response", repository, node.Number)
		}
		commit := node.Commits.Nodes[0].Commit

		contexts := make(map[string]model.CommitContext)
		if commit.Status != nil {
			for _, raw := range commit.Status.Contexts {
				state := model.State(raw.State)
				if !state.Valid() {
					return nil, fmt.Errorf("pull request %s#%d: unknown check state %q for context %q",
						repository, node.Number, raw.State, raw.Context)
				}
				contexts[raw.Context] = model.CommitContext{
					State:     state,
					CreatedAt: raw.CreatedAt,
					TargetURL: raw.TargetURL,
				}
			}
		}

		pulls = append(pulls, model.PullRequest{
			Repository: repository,
			Number:     node.Number,
			Title:      node.Title,
			IsDraft:    node.IsDraft,
			CommitSHA:  commit.OID,
			Contexts:   contexts,
		})
	}
	return pulls, nil
}
