package types

import "errors"

// Error kinds. Every fatal error returned by codefreeze wraps exactly one of
// these, so callers classify with errors.Is.
var (
	// ErrConfiguration is an environment or setup problem: missing token,
	// malformed or unknown task, unusable config file.
	ErrConfiguration = errors.New("configuration error")

	// ErrData is a catalog or version resolution failure.
	ErrData = errors.New("data error")

	// ErrRemote is a failure reported by the remote repository.
	ErrRemote = errors.New("remote error")
)

// ErrorKind returns a short label for the kind of err, used in log output.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrData):
		return "data"
	case errors.Is(err, ErrRemote):
		return "remote"
	default:
		return "unknown"
	}
}
