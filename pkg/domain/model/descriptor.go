package model

import (
	"bytes"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"howett.net/plist"

	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// Keys of the release plist
const (
	DescriptorVersionKey = "CFBundleShortVersionString"
	DescriptorNameKey    = "SLKReleaseName"
)

// Descriptor is the version descriptor file: either an XML property list
// carrying the version and release name, or a bare version token.
type Descriptor struct {
	Version string
	Name    string // empty for bare token descriptors

	isPlist bool
	fields  map[string]any
}

// ParseDescriptor decodes a version descriptor. Leading and trailing
// whitespace is ignored for both formats.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, goerr.Wrap(types.ErrData, "version descriptor is empty")
	}

	if !looksLikePlist(trimmed) {
		token := string(trimmed)
		if !IsValidVersion(token) {
			return nil, goerr.Wrap(types.ErrData, "malformed version descriptor", goerr.V("content", token))
		}
		return &Descriptor{Version: token}, nil
	}

	fields := map[string]any{}
	if _, err := plist.Unmarshal(trimmed, &fields); err != nil {
		return nil, goerr.Wrap(types.ErrData, "failed to decode version descriptor plist", goerr.V("error", err.Error()))
	}

	version, _ := fields[DescriptorVersionKey].(string)
	name, _ := fields[DescriptorNameKey].(string)
	version = strings.TrimSpace(version)
	if !IsValidVersion(version) {
		return nil, goerr.Wrap(types.ErrData, "malformed version in descriptor plist",
			goerr.V("key", DescriptorVersionKey),
			goerr.V("value", version),
		)
	}

	return &Descriptor{
		Version: version,
		Name:    strings.TrimSpace(name),
		isPlist: true,
		fields:  fields,
	}, nil
}

// WithRelease returns a copy of d pointing at rel. Other plist keys are kept.
func (d *Descriptor) WithRelease(rel Release) *Descriptor {
	fields := make(map[string]any, len(d.fields))
	for k, v := range d.fields {
		fields[k] = v
	}

	out := &Descriptor{
		Version: rel.Version,
		isPlist: d.isPlist,
		fields:  fields,
	}
	if d.isPlist {
		out.Name = rel.Name
		out.fields[DescriptorVersionKey] = rel.Version
		out.fields[DescriptorNameKey] = rel.Name
	}
	return out
}

// Encode serializes the descriptor in the format it was parsed from
func (d *Descriptor) Encode() ([]byte, error) {
	if !d.isPlist {
		return []byte(d.Version + "\n"), nil
	}

	raw, err := plist.MarshalIndent(d.fields, plist.XMLFormat, "\t")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode version descriptor plist")
	}
	return append(raw, '\n'), nil
}

func looksLikePlist(data []byte) bool {
	return bytes.HasPrefix(data, []byte("<?xml")) ||
		bytes.HasPrefix(data, []byte("<plist")) ||
		bytes.HasPrefix(data, []byte("<!DOCTYPE"))
}
