// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata embedded into the mirage binary at link
// time, for example:
//
//	go build -ldflags "-X mirage/pkg/build.buildName=mirage \
//	    -X mirage/pkg/build.buildVersion=0.3.0 \
//	    -X mirage/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	    -X mirage/pkg/build.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Development builds carry no ldflags and keep the defaults below.
package build

import (
	"errors"
	"fmt"
)

// Description is the one-line summary shown by the CLI.
const Description = "Streaming audio to power spectrogram analysis"

// ErrMissingFlag is returned by Initialize when a link-time value is absent.
var ErrMissingFlag = errors.New("build flag is required")

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = defaults()
)

func defaults() *ldFlags {
	return &ldFlags{
		Name:        "mirage",
		Description: Description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize validates and copies build information from ldflags variables
// into the buildFlags struct. On error the development defaults are kept, so
// callers may log the error and carry on.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName: %w", ErrMissingFlag)
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime: %w", ErrMissingFlag)
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit: %w", ErrMissingFlag)
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion: %w", ErrMissingFlag)
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String renders the flags for `mirage version`.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
