package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
	githubinfra "github.com/m-mizutani/codefreeze/pkg/infra/github"
)

// GitHub holds GitHub configuration
type GitHub struct {
	AccessToken string `masq:"secret"`
	Repository  string
	APIURL      string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-access-token",
			Usage:       "GitHub personal access token",
			Destination: &c.AccessToken,
			Sources:     cli.EnvVars("GITHUB_ACCESS_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "repository",
			Usage:       "Target repository in owner/name form",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("CODEFREEZE_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub API endpoint (for GitHub Enterprise Server)",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("CODEFREEZE_GITHUB_API_URL"),
		},
	}
}

// applyFile fills settings the command line left empty
func (c *GitHub) applyFile(f *fileConfig) {
	if c.Repository == "" {
		c.Repository = f.Repository
	}
	if c.APIURL == "" {
		c.APIURL = f.GitHubAPIURL
	}
}

// Validate reports missing settings as configuration errors
func (c *GitHub) Validate() error {
	if c.AccessToken == "" {
		return goerr.Wrap(types.ErrConfiguration,
			"GITHUB_ACCESS_TOKEN must contain a valid GitHub access token")
	}
	if c.Repository == "" {
		return goerr.Wrap(types.ErrConfiguration, "repository is required (--repository or config file)")
	}
	return nil
}

// NewRepository builds the remote repository client
func (c *GitHub) NewRepository() (interfaces.Repository, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []githubinfra.Option
	if c.APIURL != "" {
		opts = append(opts, githubinfra.WithBaseURL(c.APIURL))
	}
	return githubinfra.NewClient(c.AccessToken, c.Repository, opts...)
}
