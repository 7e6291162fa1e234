package model

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Feature flag states
const (
	FlagOn  = "ON"
	FlagOff = "OFF"
)

// FlagSnapshot maps a feature flag name to its state at one point in time
type FlagSnapshot map[string]string

// ParseFlags reads a feature flag file of "name,state" records. Names and
// states are trimmed and upper-cased so snapshots from different branches
// compare equal regardless of formatting. Rows with a state other than ON or
// OFF, or with the wrong column count, are skipped with a warning.
func ParseFlags(ctx context.Context, r io.Reader) (FlagSnapshot, error) {
	logger := ctxlog.From(ctx)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	snapshot := FlagSnapshot{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn("ignoring malformed feature flag row", "line", parseErr.Line, "error", parseErr.Err)
				continue
			}
			return nil, goerr.Wrap(err, "failed to read feature flag file")
		}

		line, _ := reader.FieldPos(0)
		if len(record) != 2 {
			logger.Warn("ignoring feature flag row: unexpected column count", "line", line, "got", len(record))
			continue
		}

		name := strings.ToUpper(strings.TrimSpace(record[0]))
		state := strings.ToUpper(strings.TrimSpace(record[1]))
		if name == "" {
			logger.Warn("ignoring feature flag row: empty name", "line", line)
			continue
		}
		if state != FlagOn && state != FlagOff {
			logger.Warn("unknown value for feature flag", "line", line, "flag", name, "state", state)
			continue
		}

		snapshot[name] = state
	}

	return snapshot, nil
}
