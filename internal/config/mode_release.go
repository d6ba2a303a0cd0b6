//go:build !debug

package config

// Release builds run the backend without a console window and capture its
// output to backend.log.
const (
	DebugBuild           = false
	defaultShowConsole   = false
	defaultEnableLogging = true
)
