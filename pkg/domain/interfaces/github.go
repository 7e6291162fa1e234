package interfaces

import (
	"context"
)

// Repository is the remote source control repository the release tasks
// operate on. Implementations report their own failures wrapped with
// types.ErrRemote and never retry on behalf of the caller.
type Repository interface {
	// BranchExists reports whether a branch named name exists
	BranchExists(ctx context.Context, name string) (bool, error)

	// CreateBranch creates branch name pointing at the head of baseRef
	CreateBranch(ctx context.Context, name, baseRef string) error

	// CommitFile writes content to path on branch with a commit message
	CommitFile(ctx context.Context, path string, content []byte, branch, message string) error

	// ReadFileAtRef returns the content of path at ref. found is false when
	// the ref or the file does not exist.
	ReadFileAtRef(ctx context.Context, path, ref string) (content []byte, found bool, err error)
}
