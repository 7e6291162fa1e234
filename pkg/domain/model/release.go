package model

import (
	"regexp"
)

var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// Release represents one row of the release catalog
type Release struct {
	Version string // Dot separated numeric version, e.g. "3.7"
	Name    string // Release label, e.g. "2024-03-01"
}

// BranchName returns the release branch name, "<name>/<version>"
func (r Release) BranchName() string {
	return r.Name + "/" + r.Version
}

// String returns the same form as BranchName and is used in log output
func (r Release) String() string {
	return r.BranchName()
}

// IsValidVersion reports whether v is a dot separated sequence of integers
func IsValidVersion(v string) bool {
	return versionPattern.MatchString(v)
}
