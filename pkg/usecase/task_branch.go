package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// TaskCreateReleaseBranch is the name of the release branch task
const TaskCreateReleaseBranch = "create_release_branch"

type createReleaseBranch struct{}

// NewCreateReleaseBranch returns the task that cuts the next release branch
// from the base branch.
func NewCreateReleaseBranch() Task {
	return &createReleaseBranch{}
}

func (t *createReleaseBranch) Name() string { return TaskCreateReleaseBranch }

func (t *createReleaseBranch) Run(ctx context.Context, rctx *ReleaseContext) error {
	logger := ctxlog.From(ctx)

	next, err := rctx.RequireNext()
	if err != nil {
		return err
	}

	branch := next.BranchName()
	base := rctx.Settings.BaseBranch
	logger.Info("creating release branch",
		"current", rctx.Current.String(),
		"branch", branch,
		"base", base,
	)

	exists, err := rctx.Remote.BranchExists(ctx, branch)
	if err != nil {
		return goerr.Wrap(err, "failed to check release branch", goerr.V("branch", branch))
	}
	if exists {
		return goerr.Wrap(types.ErrData, "branch already exists", goerr.V("branch", branch))
	}

	if err := rctx.Remote.CreateBranch(ctx, branch, base); err != nil {
		return goerr.Wrap(err, "failed to create release branch",
			goerr.V("branch", branch),
			goerr.V("base", base),
		)
	}

	rctx.Outputs.ReleaseBranch = branch
	logger.Info("created release branch", "branch", branch)
	return nil
}
