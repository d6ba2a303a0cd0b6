package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate clears the env vars Load reads so the host environment cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfigFile, EnvDataDir, EnvLogDir, EnvDSN} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDataDir, t.TempDir())

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
	if cfg.StartupDelay.Std() != 2*time.Second {
		t.Errorf("StartupDelay = %s, want 2s", cfg.StartupDelay)
	}
	if cfg.ShowConsole != defaultShowConsole || cfg.EnableLogging != defaultEnableLogging {
		t.Errorf("ShowConsole/EnableLogging = %v/%v, want build defaults %v/%v",
			cfg.ShowConsole, cfg.EnableLogging, defaultShowConsole, defaultEnableLogging)
	}
	if !strings.HasPrefix(cfg.JournalDSN, "sqlite://") || !strings.HasSuffix(cfg.JournalDSN, "launcher.db") {
		t.Errorf("JournalDSN = %q, want sqlite://.../launcher.db", cfg.JournalDSN)
	}
	if cfg.BackendPort() != 8000 {
		t.Errorf("BackendPort() = %d, want 8000", cfg.BackendPort())
	}
}

func TestLoadJSONWithComments(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "launcher.json", `{
		// slower machines at the front desk
		"startupDelay": "5s",
		"enableLogging": false,
		"hostReadyTimeout": 1500,
		"scriptName": "run.bat",
	}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StartupDelay.Std() != 5*time.Second {
		t.Errorf("StartupDelay = %s, want 5s", cfg.StartupDelay)
	}
	if cfg.HostReadyTimeout.Std() != 1500*time.Millisecond {
		t.Errorf("HostReadyTimeout = %s, want 1.5s", cfg.HostReadyTimeout)
	}
	if cfg.EnableLogging {
		t.Error("EnableLogging = true, want false from file")
	}
	if cfg.ScriptName != "run.bat" {
		t.Errorf("ScriptName = %q, want run.bat", cfg.ScriptName)
	}
	// untouched keys keep their defaults
	if cfg.HealthPath != "/api/health" {
		t.Errorf("HealthPath = %q, want /api/health", cfg.HealthPath)
	}
	if cfg.Source != filepath.Join(dir, "launcher.json") {
		t.Errorf("Source = %q", cfg.Source)
	}
}

func TestLoadYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, dir, "launcher.yaml", "showConsole: true\nstartupDelay: 3s\nreadyTimeout: 2000\nbackendURL: http://127.0.0.1:8100\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.ShowConsole {
		t.Error("ShowConsole = false, want true")
	}
	if cfg.StartupDelay.Std() != 3*time.Second {
		t.Errorf("StartupDelay = %s, want 3s", cfg.StartupDelay)
	}
	if cfg.ReadyTimeout.Std() != 2*time.Second {
		t.Errorf("ReadyTimeout = %s, want 2s", cfg.ReadyTimeout)
	}
	if cfg.BackendPort() != 8100 {
		t.Errorf("BackendPort() = %d, want 8100", cfg.BackendPort())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	other := t.TempDir()
	path := writeFile(t, other, "custom.json", `{"logDirectory": "/from/file", "journalDSN": "file.db"}`)
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvLogDir, "/from/env")
	t.Setenv(EnvDSN, "host=db dbname=citynh")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if cfg.LogDirectory != "/from/env" {
		t.Errorf("LogDirectory = %q, want /from/env", cfg.LogDirectory)
	}
	if cfg.JournalDSN != "host=db dbname=citynh" {
		t.Errorf("JournalDSN = %q", cfg.JournalDSN)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative delay", `{"startupDelay": "-1s"}`, "startupDelay"},
		{"script with path", `{"scriptName": "../evil.bat"}`, "scriptName"},
		{"relative url", `{"backendURL": "localhost"}`, "backendURL"},
		{"bad duration", `{"startupDelay": "soon"}`, "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			writeFile(t, dir, "launcher.json", tt.body)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestBootstrapOptions(t *testing.T) {
	cfg := Default()
	cfg.LogDirectory = "/logs"
	cfg.StartupDelay = Duration(4 * time.Second)

	opts := cfg.BootstrapOptions()
	if opts.Delay != 4*time.Second {
		t.Errorf("Delay = %s, want 4s", opts.Delay)
	}
	if opts.LogDirectory != "/logs" || opts.AppName != AppName {
		t.Errorf("opts = %+v", opts)
	}
	if opts.HostReady != nil {
		t.Error("HostReady set by config, want it left to the host")
	}
}
