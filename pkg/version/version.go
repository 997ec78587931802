// Package version exposes build information injected at link time.
package version

import "fmt"

// Set with -ldflags "-X github.com/rshade/energyscope/pkg/version.version=..." at build time.
//
//nolint:gochecknoglobals // Link-time injected build metadata.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// Info returns a one-line summary for --version output.
func Info() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, gitCommit, buildDate)
}
