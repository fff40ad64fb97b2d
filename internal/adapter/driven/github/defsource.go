package github

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/alisw/ci-overview/internal/domain/model"
	"github.com/alisw/ci-overview/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DefinitionSource = (*RemoteSource)(nil)

// The definitions tree is at most three levels deep. The `... on Tree` blocks
// cannot go in a fragment as that would recurse forever, so the nesting is
// spelled out; blob fields appear at each level so every DEFAULTS.env is
// captured.
const defTreeQuery = `query files($repoOwner: String!, $repoName: String!, $object: String!) {
	repository(name: $repoName, owner: $repoOwner) {
		object(expression: $object) {
			... on Tree {
				entries {
					name
					object {
						... on Blob { text isTruncated }
						... on Tree {
							entries {
								name
								object {
									... on Blob { text isTruncated }
									... on Tree {
										entries {
											name
											object {
												... on Blob { text isTruncated }
											}
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

// defObject is either a blob (Text non-nil) or a tree (Entries).
type defObject struct {
	Text        *string    `json:"text"`
	IsTruncated bool       `json:"isTruncated"`
	Entries     []defEntry `json:"entries"`
}

type defEntry struct {
	Name   string    `json:"name"`
	Object defObject `json:"object"`
}

type defTreeResponse struct {
	Data struct {
		Repository struct {
			Object *defObject `json:"object"`
		} `json:"repository"`
	} `json:"data"`
	graphqlErrors
}

// RemoteSource fetches the check definitions tree from a repository via the
// GraphQL directory listing, producing the same uniform tree the local
// directory walker produces.
type RemoteSource struct {
	client     *Client
	repository string // "owner/repo" holding the definitions.
	branch     string
	dir        string // Directory within the repository.
}

// NewRemoteSource returns a DefinitionSource reading dir on branch of the
// given repository.
func NewRemoteSource(client *Client, repository, branch, dir string) *RemoteSource {
	return &RemoteSource{client: client, repository: repository, branch: branch, dir: dir}
}

// FetchTree retrieves and converts the remote directory listing. A truncated
// blob is a data-shape error fatal for this resolution pass, identifying the
// offending path.
func (s *RemoteSource) FetchTree(ctx context.Context) (*model.DefNode, error) {
	owner, repo, err := splitRepo(s.repository)
	if err != nil {
		return nil, err
	}

	var resp defTreeResponse
	if err := s.client.postGraphQL(ctx, defTreeQuery, map[string]any{
		"repoOwner": owner,
		"repoName":  repo,
		"object":    fmt.Sprintf("%s:%s", s.branch, strings.Trim(s.dir, "/")),
	}, &resp); err != nil {
		return nil, fmt.Errorf("fetching definitions tree from %s: %w", s.repository, err)
	}
	if err := resp.firstError(); err != nil {
		return nil, fmt.Errorf("fetching definitions tree from %s: %w", s.repository, err)
	}

	root := resp.Data.Repository.Object
	if root == nil || root.Entries == nil {
		return nil, fmt.Errorf("definitions tree %s:%s not found in %s", s.branch, s.dir, s.repository)
	}

	node, err := convertTree(root, path.Base(s.dir))
	if err != nil {
		return nil, err
	}
	return node, nil
}

// convertTree maps a decoded tree object onto the uniform node type.
func convertTree(obj *defObject, name string) (*model.DefNode, error) {
	node := &model.DefNode{Name: name}
	for _, entry := range obj.Entries {
		child, err := convertEntry(entry, path.Join(name, entry.Name))
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, *child)
		}
	}
	return node, nil
}

// convertEntry maps one listing entry; non-.env blobs are dropped.
func convertEntry(entry defEntry, entryPath string) (*model.DefNode, error) {
	if entry.Object.Text != nil {
		if !strings.HasSuffix(entry.Name, ".env") {
			return nil, nil
		}
		if entry.Object.IsTruncated {
			return nil, fmt.Errorf("got truncated definitions blob %s", entryPath)
		}
		return &model.DefNode{Name: entry.Name, IsLeaf: true, Contents: *entry.Object.Text}, nil
	}

	child := &model.DefNode{Name: entry.Name}
	for _, sub := range entry.Object.Entries {
		converted, err := convertEntry(sub, path.Join(entryPath, sub.Name))
		if err != nil {
			return nil, err
		}
		if converted != nil {
			child.Children = append(child.Children, *converted)
		}
	}
	return child, nil
}
