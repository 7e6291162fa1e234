package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/codefreeze/pkg/domain/types"
	"github.com/m-mizutani/codefreeze/pkg/usecase"
)

// Release holds the release repository layout
type Release struct {
	ConfigFile     string
	WorkDir        string
	BaseBranch     string
	VersionsFile   string
	DescriptorFile string
	FlagsFile      string
	ReportFile     string
}

// Flags returns CLI flags for the release repository layout
func (c *Release) Flags() []cli.Flag {
	defaults := usecase.DefaultSettings()

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML config file",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("CODEFREEZE_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "Working tree of the release repository",
			Value:       defaults.WorkDir,
			Destination: &c.WorkDir,
			Sources:     cli.EnvVars("CODEFREEZE_WORK_DIR"),
		},
		&cli.StringFlag{
			Name:        "base-branch",
			Usage:       "Branch release branches are cut from",
			Destination: &c.BaseBranch,
			Sources:     cli.EnvVars("CODEFREEZE_BASE_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "versions-file",
			Usage:       "Release catalog (name,version per line)",
			Destination: &c.VersionsFile,
			Sources:     cli.EnvVars("CODEFREEZE_VERSIONS_FILE"),
		},
		&cli.StringFlag{
			Name:        "descriptor-file",
			Usage:       "Version descriptor holding the current release",
			Destination: &c.DescriptorFile,
			Sources:     cli.EnvVars("CODEFREEZE_DESCRIPTOR_FILE"),
		},
		&cli.StringFlag{
			Name:        "flags-file",
			Usage:       "Feature flag file (name,state per line)",
			Destination: &c.FlagsFile,
			Sources:     cli.EnvVars("CODEFREEZE_FLAGS_FILE"),
		},
		&cli.StringFlag{
			Name:        "report-file",
			Usage:       "Output path of the feature flag report",
			Destination: &c.ReportFile,
			Sources:     cli.EnvVars("CODEFREEZE_REPORT_FILE"),
		},
	}
}

// fileConfig is the layout of the TOML config file
type fileConfig struct {
	Repository     string `toml:"repository"`
	GitHubAPIURL   string `toml:"github_api_url"`
	BaseBranch     string `toml:"base_branch"`
	VersionsFile   string `toml:"versions_file"`
	DescriptorFile string `toml:"descriptor_file"`
	FlagsFile      string `toml:"flags_file"`
	ReportFile     string `toml:"report_file"`
	SlackChannel   string `toml:"slack_channel"`
}

func loadFile(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(types.ErrConfiguration, "failed to read config file",
			goerr.V("path", path),
			goerr.V("error", err.Error()),
		)
	}

	var cfg fileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, goerr.Wrap(types.ErrConfiguration, "failed to parse config file",
			goerr.V("path", path),
			goerr.V("error", err.Error()),
		)
	}
	return &cfg, nil
}

// Settings merges command line values, the config file and defaults, in
// that order of precedence.
func (c *Release) Settings() usecase.Settings {
	s := usecase.DefaultSettings()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&s.WorkDir, c.WorkDir)
	set(&s.BaseBranch, c.BaseBranch)
	set(&s.VersionsFile, c.VersionsFile)
	set(&s.DescriptorFile, c.DescriptorFile)
	set(&s.FlagsFile, c.FlagsFile)
	set(&s.ReportFile, c.ReportFile)
	return s
}

func (c *Release) applyFile(f *fileConfig) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&c.BaseBranch, f.BaseBranch)
	fill(&c.VersionsFile, f.VersionsFile)
	fill(&c.DescriptorFile, f.DescriptorFile)
	fill(&c.FlagsFile, f.FlagsFile)
	fill(&c.ReportFile, f.ReportFile)
}
