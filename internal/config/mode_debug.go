//go:build debug

package config

// Debug builds (-tags debug) give the backend a visible console and leave its
// output on that console.
const (
	DebugBuild           = true
	defaultShowConsole   = true
	defaultEnableLogging = false
)
