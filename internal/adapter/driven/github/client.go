// Package github implements the status fetcher and remote definition source
// ports against the GitHub API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
)

const defaultGraphQLURL = "https://api.github.com/graphql"

// Client talks to the GitHub API. GraphQL queries go through the same
// transport stack as REST calls:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github / raw GraphQL POSTs with PAT auth
type Client struct {
	gh         *gh.Client
	httpClient *http.Client
	token      string // GraphQL Authorization header.
	graphqlURL string
}

// NewClient creates an authenticated GitHub client. The token must be
// non-empty; its validity is checked separately via VerifyCredentials.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("please define the GITHUB_TOKEN environment variable")
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	// 30-second safety net alongside context cancellation.
	rateLimitClient.Timeout = 30 * time.Second

	return &Client{
		gh:         gh.NewClient(rateLimitClient).WithAuthToken(token),
		httpClient: rateLimitClient,
		token:      token,
		graphqlURL: defaultGraphQLURL,
	}, nil
}

// NewClientWithHTTPClient creates a Client against a custom base URL, for
// tests injecting an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	// go-github insists on a trailing slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	client.BaseURL = u

	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		gh:         client,
		httpClient: httpClient,
		token:      token,
		graphqlURL: graphqlU.String(),
	}, nil
}

// VerifyCredentials checks the token against the REST API and returns the
// authenticated login. A rejected or missing credential here is startup-fatal
// for callers, with the API's diagnostic preserved.
func (c *Client) VerifyCredentials(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("verifying GitHub credentials: %w", err)
	}
	return user.GetLogin(), nil
}

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// graphqlErrors is embedded in every typed response shape so callers can
// check the response-level error list after decoding.
type graphqlErrors struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// firstError returns the first response-level GraphQL error, if any.
func (e graphqlErrors) firstError() error {
	if len(e.Errors) > 0 {
		return fmt.Errorf("graphql: %s", e.Errors[0].Message)
	}
	return nil
}

// postGraphQL executes one GraphQL query and decodes the response into out.
func (c *Client) postGraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	bodyBytes, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshaling graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating graphql request: %w", err)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("bearer %s", c.token))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql request: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding graphql response: %w", err)
	}
	return nil
}

// splitRepo splits "owner/repo" into its parts.
func splitRepo(repoFullName string) (owner, repo string, err error) {
	owner, repo, found := strings.Cut(repoFullName, "/")
	if !found || owner == "" || repo == "" {
		return "", "", fmt.Errorf("repository %q not in owner/repo form", repoFullName)
	}
	return owner, repo, nil
}
