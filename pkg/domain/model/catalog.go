package model

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// catalogColumns is the column count of a versions file row: name,version
const catalogColumns = 2

// Catalog is the ordered list of known releases. Order is file order and is
// assumed to be chronological. A Catalog is immutable once parsed.
type Catalog struct {
	releases []Release
}

// ParseCatalog reads a versions file of "name,version" CSV records. Records
// that are malformed, have the wrong column count, have an empty column, an
// invalid version or a duplicated name or version are skipped and logged.
// Only read errors are returned.
func ParseCatalog(ctx context.Context, r io.Reader) (*Catalog, error) {
	logger := ctxlog.From(ctx)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	c := &Catalog{}
	seen := newSeenSet()

	for {
		columns, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Debug("ignoring malformed release row", "line", parseErr.Line, "error", parseErr.Err)
				continue
			}
			return nil, goerr.Wrap(err, "failed to read versions file")
		}

		lineNo, _ := reader.FieldPos(0)
		if len(columns) != catalogColumns {
			logger.Debug("ignoring release row: unexpected column count",
				"line", lineNo,
				"want", catalogColumns,
				"got", len(columns),
			)
			continue
		}

		rel := Release{
			Name:    strings.TrimSpace(columns[0]),
			Version: strings.TrimSpace(columns[1]),
		}
		if rel.Name == "" || rel.Version == "" {
			logger.Debug("ignoring release row: empty column", "line", lineNo)
			continue
		}
		if !IsValidVersion(rel.Version) {
			logger.Debug("ignoring release row: invalid version", "line", lineNo, "version", rel.Version)
			continue
		}
		if field := seen.duplicate(rel); field != "" {
			logger.Debug("ignoring release row: duplicate "+field, "line", lineNo, "release", rel.String())
			continue
		}

		seen.add(rel)
		c.releases = append(c.releases, rel)
		logger.Debug("found release", "line", lineNo, "release", rel.String())
	}

	return c, nil
}

// Releases returns a copy of the catalog rows in file order
func (c *Catalog) Releases() []Release {
	out := make([]Release, len(c.releases))
	copy(out, c.releases)
	return out
}

// Len returns the number of releases in the catalog
func (c *Catalog) Len() int {
	return len(c.releases)
}

func (c *Catalog) indexOf(version string) int {
	for i, r := range c.releases {
		if r.Version == version {
			return i
		}
	}
	return -1
}

// ResolveCurrent returns the catalog row whose version is version.
func (c *Catalog) ResolveCurrent(version string) (Release, error) {
	idx := c.indexOf(strings.TrimSpace(version))
	if idx < 0 {
		return Release{}, goerr.Wrap(types.ErrData, "current release not found",
			goerr.V("version", version))
	}
	return c.releases[idx], nil
}

// ResolveNext returns the row immediately after current. It fails when
// current is the last row or is not in the catalog.
func (c *Catalog) ResolveNext(current Release) (Release, error) {
	idx := c.indexOf(current.Version)
	if idx < 0 || idx+1 >= len(c.releases) {
		return Release{}, goerr.Wrap(types.ErrData, "no next release",
			goerr.V("current", current.String()))
	}
	return c.releases[idx+1], nil
}

// ResolvePrevious returns the row immediately before current, or nil when
// current is the first row. Having no previous release is not an error; a
// current release missing from the catalog is.
func (c *Catalog) ResolvePrevious(current Release) (*Release, error) {
	idx := c.indexOf(current.Version)
	if idx < 0 {
		return nil, goerr.Wrap(types.ErrData, "current release not found",
			goerr.V("version", current.Version))
	}
	if idx == 0 {
		return nil, nil
	}
	prev := c.releases[idx-1]
	return &prev, nil
}

// CheckOrder logs a warning for every row whose version is not greater than
// the row before it. Previous and next are still decided by file order.
func (c *Catalog) CheckOrder(ctx context.Context) bool {
	logger := ctxlog.From(ctx)

	ordered := true
	var last *semver.Version
	for _, r := range c.releases {
		v, err := semver.NewVersion(r.Version)
		if err != nil {
			// more than three components; not comparable as semver
			last = nil
			continue
		}
		if last != nil && !v.GreaterThan(last) {
			logger.Warn("release catalog is not in ascending version order",
				"release", r.String(),
				"after", last.Original(),
			)
			ordered = false
		}
		last = v
	}
	return ordered
}

type seenSet struct {
	names    map[string]struct{}
	versions map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{
		names:    map[string]struct{}{},
		versions: map[string]struct{}{},
	}
}

func (s *seenSet) duplicate(r Release) string {
	if _, ok := s.versions[r.Version]; ok {
		return "version"
	}
	if _, ok := s.names[r.Name]; ok {
		return "name"
	}
	return ""
}

func (s *seenSet) add(r Release) {
	s.names[r.Name] = struct{}{}
	s.versions[r.Version] = struct{}{}
}
