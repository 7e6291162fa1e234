package model

import (
	"sort"
)

// FlagStatus describes how a flag changed between two releases
type FlagStatus string

const (
	FlagAdded     FlagStatus = "added"
	FlagRemoved   FlagStatus = "removed"
	FlagChanged   FlagStatus = "changed"
	FlagUnchanged FlagStatus = "unchanged"
)

// AbsentValue is used in reports for the side of a diff where a flag does not exist
const AbsentValue = "-"

// FlagDiff is one row of the feature flag report
type FlagDiff struct {
	Name   string
	Status FlagStatus
	Old    string // state in the previous release, AbsentValue if none
	New    string // state in the current release, AbsentValue if none
}

// FlagDiffs is a feature flag report sorted by flag name
type FlagDiffs []FlagDiff

// DiffFlags compares the current snapshot with the previous one. A nil
// previous snapshot means no previous release data is available; every
// current flag is then reported unchanged with no previous state. Inputs are not modified and the result is sorted by flag name.
func DiffFlags(current, previous FlagSnapshot) FlagDiffs {
	if previous == nil {
		out := make(FlagDiffs, 0, len(current))
		for name, state := range current {
			out = append(out, FlagDiff{Name: name, Status: FlagUnchanged, Old: AbsentValue, New: state})
		}
		sortDiffs(out)
		return out
	}

	names := make(map[string]struct{}, len(current)+len(previous))
	for name := range current {
		names[name] = struct{}{}
	}
	for name := range previous {
		names[name] = struct{}{}
	}

	out := make(FlagDiffs, 0, len(names))
	for name := range names {
		cur, inCurrent := current[name]
		prev, inPrevious := previous[name]

		d := FlagDiff{Name: name, Old: AbsentValue, New: AbsentValue}
		switch {
		case inCurrent && !inPrevious:
			d.Status, d.New = FlagAdded, cur
		case !inCurrent && inPrevious:
			d.Status, d.Old = FlagRemoved, prev
		case cur != prev:
			d.Status, d.Old, d.New = FlagChanged, prev, cur
		default:
			d.Status, d.Old, d.New = FlagUnchanged, prev, cur
		}
		out = append(out, d)
	}

	sortDiffs(out)
	return out
}

// Summary counts report rows per status
func (d FlagDiffs) Summary() map[FlagStatus]int {
	summary := map[FlagStatus]int{
		FlagAdded:     0,
		FlagRemoved:   0,
		FlagChanged:   0,
		FlagUnchanged: 0,
	}
	for _, row := range d {
		summary[row.Status]++
	}
	return summary
}

func sortDiffs(d FlagDiffs) {
	sort.Slice(d, func(i, j int) bool { return d[i].Name < d[j].Name })
}
