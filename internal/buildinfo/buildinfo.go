// Package buildinfo carries version data injected with -ldflags, e.g.
//
//	go build -ldflags "-X dotfield/internal/buildinfo.Version=v0.3.0" ./cmd/dotfield
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns a compact build identifier for window titles and log fields.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 7 {
			return Commit[:7]
		}
		return Commit
	}
	return "dev"
}

// String is the full one-line description printed by the version command.
func String() string {
	return fmt.Sprintf("dotfield %s (commit %s, built %s)", Version, Commit, Date)
}
