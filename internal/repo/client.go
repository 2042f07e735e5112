// Package repo wraps the GitHub API for the handful of repository
// operations the investigation tools need: browsing the tree, reading
// files, and producing a branch, commits, and a pull request for a fix.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
)

type Client struct {
	gh    *github.Client
	owner string
	name  string
}

// New builds a client for one repository given as "owner/name".
func New(token, repository string) (*Client, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repository must be \"owner/name\", got %q", repository)
	}
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh, owner: owner, name: name}, nil
}

type treeEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

// ListFiles lists the entries at path on ref as a JSON array of
// name/path/type/size objects. A file path yields a single-entry list.
func (c *Client) ListFiles(ctx context.Context, path, ref string) (string, error) {
	file, dir, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.name, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", fmt.Errorf("listing %q: %w", path, err)
	}
	if file != nil {
		dir = []*github.RepositoryContent{file}
	}
	entries := make([]treeEntry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, treeEntry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Type: item.GetType(),
			Size: item.GetSize(),
		})
	}
	return marshalIndent(entries)
}

// FileContent returns the decoded text of the file at path on ref.
func (c *Client) FileContent(ctx context.Context, path, ref string) (string, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.name, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}
	if file == nil {
		return "", fmt.Errorf("path %q is a directory, not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding %q: %w", path, err)
	}
	return content, nil
}

// CreateBranch creates branch pointing at the head of base.
func (c *Client) CreateBranch(ctx context.Context, branch, base string) (string, error) {
	baseRef, _, err := c.gh.Git.GetRef(ctx, c.owner, c.name, "heads/"+base)
	if err != nil {
		return "", fmt.Errorf("resolving base branch %q: %w", base, err)
	}
	sha := baseRef.Object.GetSHA()
	_, _, err = c.gh.Git.CreateRef(ctx, c.owner, c.name, &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	})
	if err != nil {
		return "", fmt.Errorf("creating branch %q: %w", branch, err)
	}
	return marshalIndent(map[string]any{
		"success":  true,
		"branch":   branch,
		"base_sha": sha,
	})
}

// CommitFile writes content to path on branch in a single commit,
// updating the file if it already exists there and creating it otherwise.
func (c *Client) CommitFile(ctx context.Context, branch, path, content, message string) (string, error) {
	existing, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.name, path, &github.RepositoryContentGetOptions{Ref: branch})

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
		Branch:  github.String(branch),
	}

	var action string
	var resp *github.RepositoryContentResponse
	switch {
	case err == nil && existing == nil:
		return "", fmt.Errorf("path %q is a directory, not a file", path)
	case err == nil:
		action = "updated"
		opts.SHA = github.String(existing.GetSHA())
		resp, _, err = c.gh.Repositories.UpdateFile(ctx, c.owner, c.name, path, opts)
	case isNotFound(err):
		action = "created"
		resp, _, err = c.gh.Repositories.CreateFile(ctx, c.owner, c.name, path, opts)
	default:
		return "", fmt.Errorf("checking %q on %s: %w", path, branch, err)
	}
	if err != nil {
		return "", fmt.Errorf("committing %q to %s: %w", path, branch, err)
	}
	return marshalIndent(map[string]any{
		"success":    true,
		"action":     action,
		"commit_sha": resp.Commit.GetSHA(),
	})
}

// OpenPullRequest opens a pull request from head into base.
func (c *Client) OpenPullRequest(ctx context.Context, title, body, head, base string) (string, error) {
	pr, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.name, &github.NewPullRequest{
		Title: github.String(title),
		Body:  github.String(body),
		Head:  github.String(head),
		Base:  github.String(base),
	})
	if err != nil {
		return "", fmt.Errorf("creating pull request: %w", err)
	}
	return marshalIndent(map[string]any{
		"success":   true,
		"pr_number": pr.GetNumber(),
		"pr_url":    pr.GetHTMLURL(),
		"title":     pr.GetTitle(),
	})
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

func marshalIndent(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
