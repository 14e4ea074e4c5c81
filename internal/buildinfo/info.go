// Package buildinfo carries release metadata stamped into the shekinah
// binary at build time.
package buildinfo

var (
	// Version is set via ldflags during build.
	Version = "dev"
	// Commit is set via ldflags during build.
	Commit = "none"
	// Date is set via ldflags during build.
	Date = "unknown"
)
