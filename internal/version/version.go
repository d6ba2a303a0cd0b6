package version

import "runtime"

// These variables are set at build time via -ldflags
var (
	// Version is the semantic version of the desktop package (e.g., "1.4.0")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info returns formatted version information
func Info() string {
	return Version + " (" + Commit + ")"
}

// Full returns full version information including build time and target
func Full() string {
	return Version + " (commit: " + Commit + ", built: " + BuildTime + ", " + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
