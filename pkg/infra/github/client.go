package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

type config struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for the GitHub client
type Option func(*config)

// WithBaseURL sets the API endpoint, e.g. for GitHub Enterprise Server
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

type client struct {
	githubClient *github.Client
	owner        string
	repo         string
}

// NewClient creates a GitHub client for repository ("owner/name")
// authenticated with a personal access token
func NewClient(token, repository string, opts ...Option) (interfaces.Repository, error) {
	if token == "" {
		return nil, goerr.Wrap(types.ErrConfiguration, "GitHub access token is required")
	}
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, goerr.Wrap(types.ErrConfiguration, "repository must be in owner/name form",
			goerr.V("repository", repository))
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	githubClient := github.NewClient(cfg.httpClient).WithAuthToken(token)
	if cfg.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.baseURL, "/") + "/")
		if err != nil {
			return nil, goerr.Wrap(types.ErrConfiguration, "invalid GitHub API URL",
				goerr.V("url", cfg.baseURL),
				goerr.V("error", err.Error()),
			)
		}
		githubClient.BaseURL = u
	}

	return &client{
		githubClient: githubClient,
		owner:        owner,
		repo:         repo,
	}, nil
}

// BranchExists reports whether the branch exists in the repository
func (c *client) BranchExists(ctx context.Context, name string) (bool, error) {
	_, resp, err := c.githubClient.Repositories.GetBranch(ctx, c.owner, c.repo, name, 1)
	if err != nil {
		if isNotFound(resp) {
			return false, nil
		}
		return false, c.remoteError(err, "failed to get branch", goerr.V("branch", name))
	}
	return true, nil
}

// CreateBranch creates a branch at the head commit of baseRef
func (c *client) CreateBranch(ctx context.Context, name, baseRef string) error {
	logger := ctxlog.From(ctx)

	base, _, err := c.githubClient.Repositories.GetBranch(ctx, c.owner, c.repo, baseRef, 1)
	if err != nil {
		return c.remoteError(err, "could not retrieve the base branch", goerr.V("base", baseRef))
	}
	sha := base.GetCommit().GetSHA()
	logger.Debug("base branch resolved", "base", baseRef, "sha", sha)

	_, resp, err := c.githubClient.Git.CreateRef(ctx, c.owner, c.repo, github.CreateRef{
		Ref: "refs/heads/" + name,
		SHA: sha,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return goerr.Wrap(types.ErrData, "branch already exists", goerr.V("branch", name))
		}
		return c.remoteError(err, "failed to create branch", goerr.V("branch", name), goerr.V("sha", sha))
	}

	logger.Debug("created ref", "branch", name, "sha", sha)
	return nil
}

// CommitFile creates or updates path on branch
func (c *client) CommitFile(ctx context.Context, path string, content []byte, branch, message string) error {
	logger := ctxlog.From(ctx)

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: content,
		Branch:  github.Ptr(branch),
	}

	current, _, resp, err := c.githubClient.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: branch})
	switch {
	case err != nil && isNotFound(resp):
		logger.Debug("file does not exist yet, creating", "path", path, "branch", branch)
		if _, _, err := c.githubClient.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts); err != nil {
			return c.remoteError(err, "failed to create file", goerr.V("path", path), goerr.V("branch", branch))
		}
		return nil

	case err != nil:
		return c.remoteError(err, "failed to get file", goerr.V("path", path), goerr.V("branch", branch))

	case current == nil:
		return goerr.Wrap(types.ErrRemote, "path is not a file", goerr.V("path", path))
	}

	opts.SHA = github.Ptr(current.GetSHA())
	if _, _, err := c.githubClient.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts); err != nil {
		return c.remoteError(err, "failed to update file", goerr.V("path", path), goerr.V("branch", branch))
	}

	logger.Debug("updated file", "path", path, "branch", branch, "previous_sha", current.GetSHA())
	return nil
}

// ReadFileAtRef returns the content of path at ref. A missing ref or file is
// reported as found=false.
func (c *client) ReadFileAtRef(ctx context.Context, path, ref string) ([]byte, bool, error) {
	file, _, resp, err := c.githubClient.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if isNotFound(resp) {
			return nil, false, nil
		}
		return nil, false, c.remoteError(err, "failed to get file", goerr.V("path", path), goerr.V("ref", ref))
	}
	if file == nil {
		return nil, false, goerr.Wrap(types.ErrRemote, "path is not a file", goerr.V("path", path), goerr.V("ref", ref))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, false, c.remoteError(err, "failed to decode file content", goerr.V("path", path), goerr.V("ref", ref))
	}

	return []byte(content), true, nil
}

func (c *client) remoteError(err error, msg string, opts ...goerr.Option) error {
	opts = append(opts, goerr.V("repository", c.owner+"/"+c.repo))
	return goerr.Wrap(fmt.Errorf("%w: %w", types.ErrRemote, err), msg, opts...)
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
