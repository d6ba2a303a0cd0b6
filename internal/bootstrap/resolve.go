package bootstrap

import (
	"fmt"
	"path/filepath"
)

const (
	pythonDir = "python"
	// updaterDir holds an update that has been staged but not yet promoted.
	updaterDir = "_up_"
)

// CandidatePaths returns the script locations for exeDir in lookup order.
func CandidatePaths(exeDir, scriptName string) (primary, fallback string) {
	primary = filepath.Join(exeDir, pythonDir, scriptName)
	fallback = filepath.Join(exeDir, updaterDir, pythonDir, scriptName)
	return primary, fallback
}

// resolveScript returns the first candidate that exists as a regular file.
// The fallback is only looked at when the primary is missing.
func (b *Bootstrapper) resolveScript(exeDir string) (path string, fallback bool, err error) {
	primary, staged := CandidatePaths(exeDir, b.opts.ScriptName)

	b.logf("Checking %s", primary)
	if b.isFile(primary) {
		b.logf("Using %s", primary)
		return primary, false, nil
	}

	b.logf("Checking %s", staged)
	if b.isFile(staged) {
		b.logf("Using updater copy %s", staged)
		return staged, true, nil
	}

	return "", false, fmt.Errorf("%w: tried %s and %s", ErrScriptNotFound, primary, staged)
}

func (b *Bootstrapper) isFile(path string) bool {
	info, err := b.Stat(path)
	return err == nil && !info.IsDir()
}
