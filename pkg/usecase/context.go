package usecase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
	"github.com/m-mizutani/codefreeze/pkg/domain/model"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// Settings holds file locations and the base branch used by a run. File
// paths are relative to WorkDir locally and to the repository root remotely.
type Settings struct {
	WorkDir        string
	BaseBranch     string
	VersionsFile   string
	DescriptorFile string
	FlagsFile      string
	ReportFile     string
}

// DefaultSettings returns the layout of the release repository
func DefaultSettings() Settings {
	return Settings{
		WorkDir:        ".",
		BaseBranch:     "master",
		VersionsFile:   "releng/release_info.csv",
		DescriptorFile: "release.plist",
		FlagsFile:      "featureflags/FF.csv",
		ReportFile:     "out_flags.csv",
	}
}

// LocalPath resolves a repository relative path inside WorkDir
func (s Settings) LocalPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.WorkDir, path)
}

// ReadLocal reads a repository relative file from the working tree
func (s Settings) ReadLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(s.LocalPath(path))
	if err != nil {
		return nil, goerr.Wrap(fmt.Errorf("%w: %w", types.ErrData, err), "failed to read local file",
			goerr.V("path", s.LocalPath(path)))
	}
	return data, nil
}

// Outputs is filled in by tasks for the tasks that run after them
type Outputs struct {
	ReleaseBranch       string          // set by create_release_branch
	DescriptorCommitted bool            // set by increment_version
	FlagReport          model.FlagDiffs // set by generate_feature_report, nil until then
	ReportPath          string          // set by generate_feature_report
}

// ReleaseContext is the state shared by all tasks of a run. It is built once
// by the Orchestrator and handed to each task in turn; tasks never build
// their own.
type ReleaseContext struct {
	Catalog  *model.Catalog
	Current  model.Release
	Previous *model.Release // nil when current is the first release
	Next     *model.Release // nil when current is the last release

	Remote   interfaces.Repository
	Settings Settings
	Outputs  Outputs
}

// RequireNext returns the next release or a data error when there is none
func (c *ReleaseContext) RequireNext() (model.Release, error) {
	if c.Next == nil {
		return model.Release{}, goerr.Wrap(types.ErrData, "no next release",
			goerr.V("current", c.Current.String()))
	}
	return *c.Next, nil
}
