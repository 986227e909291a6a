// Package buildinfo holds identifiers stamped in with -ldflags "-X".
package buildinfo

import "fmt"

var (
	// Version is the release tag, or "dev".
	Version = "dev"
	// Commit is the source revision.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// Short returns a compact build identifier for window titles.
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

// Line returns the banner logged at startup.
func Line() string {
	return fmt.Sprintf("linefb %s (commit %s, built %s)", Version, Commit, Date)
}
