package github_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisw/ci-overview/internal/adapter/driven/github"
	"github.com/alisw/ci-overview/internal/domain/model"
)

const defTreeFixture = `{"data": {"repository": {"object": {"entries": [
	{"name": "DEFAULTS.env",
	 "object": {"text": "PR_REPO=acme/widgets PR_BRANCH=main CI_NAME=ci", "isTruncated": false}},
	{"name": "README.md",
	 "object": {"text": "docs, not a definition", "isTruncated": false}},
	{"name": "build",
	 "object": {"entries": [
		{"name": "gcc",
		 "object": {"entries": [
			{"name": "unit.env",
			 "object": {"text": "CHECK_NAME=unit-gcc", "isTruncated": false}}
		 ]}}
	 ]}}
]}}}}`

func TestRemoteSourceFetchTree(t *testing.T) {
	client := newTestClient(t, func(query string, variables map[string]any) string {
		assert.Equal(t, "alisw", variables["repoOwner"])
		assert.Equal(t, "ali-bot", variables["repoName"])
		assert.Equal(t, "master:ci/repo-config", variables["object"])
		return defTreeFixture
	})

	tree, err := github.NewRemoteSource(client, "alisw/ali-bot", "master", "ci/repo-config").
		FetchTree(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "repo-config", tree.Name)
	require.Len(t, tree.Children, 2) // README.md is not a definition file

	defaults := tree.Children[0]
	assert.Equal(t, "DEFAULTS.env", defaults.Name)
	assert.True(t, defaults.IsLeaf)
	assert.Equal(t, "PR_REPO=acme/widgets PR_BRANCH=main CI_NAME=ci", defaults.Contents)

	build := tree.Children[1]
	assert.Equal(t, "build", build.Name)
	require.Len(t, build.Children, 1)
	gcc := build.Children[0]
	require.Len(t, gcc.Children, 1)
	assert.Equal(t, model.DefNode{Name: "unit.env", IsLeaf: true, Contents: "CHECK_NAME=unit-gcc"},
		gcc.Children[0])
}

func TestRemoteSourceTruncatedBlob(t *testing.T) {
	client := newTestClient(t, func(string, map[string]any) string {
		return `{"data": {"repository": {"object": {"entries": [
			{"name": "huge.env", "object": {"text": "CHECK_NAME=...", "isTruncated": true}}
		]}}}}`
	})

	_, err := github.NewRemoteSource(client, "alisw/ali-bot", "master", "ci/repo-config").
		FetchTree(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "truncated definitions blob repo-config/huge.env")
}

func TestRemoteSourceMissingTree(t *testing.T) {
	client := newTestClient(t, func(string, map[string]any) string {
		return `{"data": {"repository": {"object": null}}}`
	})

	_, err := github.NewRemoteSource(client, "alisw/ali-bot", "master", "ci/no-such-dir").
		FetchTree(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found")
}
