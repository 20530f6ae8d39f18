package core

import (
	"strings"
)

// DeclarationVersion is the only partial declaration schema version the
// linker understands.
const DeclarationVersion = 1

// Version represents a semantic version
type Version struct {
	Full  string
	Major string
	Minor string
	Patch string
}

// NewVersion creates a new Version from a full version string
func NewVersion(full string) *Version {
	parts := strings.SplitN(full, ".", 3)
	v := &Version{Full: full}
	if len(parts) > 0 {
		v.Major = parts[0]
	}
	if len(parts) > 1 {
		v.Minor = parts[1]
	}
	if len(parts) > 2 {
		v.Patch = parts[2]
	}
	return v
}

// LinkerVersion is the version of this module, reported by `ngc-link version`.
// Overridden at build time with -ldflags.
var LinkerVersion = "0.0.0-dev"

// CurrentVersion returns the parsed LinkerVersion
func CurrentVersion() *Version {
	return NewVersion(LinkerVersion)
}
