package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/model"
)

// TaskIncrementVersion is the name of the version bump task
const TaskIncrementVersion = "increment_version"

type incrementVersion struct{}

// NewIncrementVersion returns the task that commits the next release into
// the version descriptor on the base branch. The local working tree is never
// written; a later run only sees the new version after the checkout is
// synced.
func NewIncrementVersion() Task {
	return &incrementVersion{}
}

func (t *incrementVersion) Name() string { return TaskIncrementVersion }

func (t *incrementVersion) Run(ctx context.Context, rctx *ReleaseContext) error {
	logger := ctxlog.From(ctx)

	next, err := rctx.RequireNext()
	if err != nil {
		return err
	}

	path := rctx.Settings.DescriptorFile
	base := rctx.Settings.BaseBranch
	logger.Info("incrementing version descriptor",
		"path", path,
		"current", rctx.Current.String(),
		"next", next.String(),
	)

	raw, found, err := rctx.Remote.ReadFileAtRef(ctx, path, base)
	if err != nil {
		return goerr.Wrap(err, "failed to read remote version descriptor", goerr.V("path", path), goerr.V("ref", base))
	}
	if !found {
		logger.Warn("version descriptor not found on base branch, using working tree copy", "path", path, "ref", base)
		if raw, err = rctx.Settings.ReadLocal(path); err != nil {
			return err
		}
	}

	descriptor, err := model.ParseDescriptor(raw)
	if err != nil {
		return err
	}
	if descriptor.Version != rctx.Current.Version {
		logger.Warn("remote version descriptor differs from the working tree",
			"remote_version", descriptor.Version,
			"local_version", rctx.Current.Version,
		)
	}

	content, err := descriptor.WithRelease(next).Encode()
	if err != nil {
		return err
	}

	message := "Update current release to " + next.String()
	if err := rctx.Remote.CommitFile(ctx, path, content, base, message); err != nil {
		return goerr.Wrap(err, "failed to commit version descriptor", goerr.V("path", path))
	}

	rctx.Outputs.DescriptorCommitted = true
	logger.Info("version descriptor has been committed", "path", path, "branch", base)
	return nil
}
