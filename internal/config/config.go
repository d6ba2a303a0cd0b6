package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/citynh/desktop/internal/bootstrap"
)

const (
	// AppName names the per-user data directory and the tray tooltip.
	AppName = "CityNH"

	// EnvConfigFile points at an explicit launcher config file.
	EnvConfigFile = "CITYNH_CONFIG"
	// EnvDataDir overrides the data directory (journal database).
	EnvDataDir = "CITYNH_DATA_DIR"
	// EnvLogDir overrides the backend log directory.
	EnvLogDir = "CITYNH_LOG_DIR"
	// EnvDSN overrides the journal database DSN.
	EnvDSN = "CITYNH_DSN"
)

// candidateFiles are looked up next to the executable, first match wins.
var candidateFiles = []string{"launcher.json", "launcher.jsonc", "launcher.yaml", "launcher.yml"}

// Config is resolved once at startup and never changes afterwards.
type Config struct {
	AppName string `json:"appName" yaml:"appName"`

	// Backend process
	ShowConsole      bool     `json:"showConsole" yaml:"showConsole"`
	EnableLogging    bool     `json:"enableLogging" yaml:"enableLogging"`
	LogDirectory     string   `json:"logDirectory" yaml:"logDirectory"`
	ScriptName       string   `json:"scriptName" yaml:"scriptName"`
	StartupDelay     Duration `json:"startupDelay" yaml:"startupDelay"`
	HostReadyTimeout Duration `json:"hostReadyTimeout" yaml:"hostReadyTimeout"`
	SkipIfRunning    bool     `json:"skipIfRunning" yaml:"skipIfRunning"`

	// Backend health
	BackendURL   string   `json:"backendURL" yaml:"backendURL"`
	HealthPath   string   `json:"healthPath" yaml:"healthPath"`
	ReadyTimeout Duration `json:"readyTimeout" yaml:"readyTimeout"`

	// Launch journal
	DataDir    string `json:"dataDir" yaml:"dataDir"`
	JournalDSN string `json:"journalDSN" yaml:"journalDSN"`

	// Source is the file the config was read from, empty when only defaults apply.
	Source string `json:"-" yaml:"-"`
}

// Default returns the built-in configuration for the current build mode.
func Default() *Config {
	return &Config{
		AppName:          AppName,
		ShowConsole:      defaultShowConsole,
		EnableLogging:    defaultEnableLogging,
		ScriptName:       bootstrap.DefaultScriptName,
		StartupDelay:     Duration(bootstrap.DefaultDelay),
		HostReadyTimeout: Duration(10 * time.Second),
		SkipIfRunning:    true,
		BackendURL:       "http://127.0.0.1:8000",
		HealthPath:       "/api/health",
		ReadyTimeout:     Duration(90 * time.Second),
	}
}

// Load resolves the configuration: defaults, then the first config file
// found (CITYNH_CONFIG or next to the executable), then env overrides.
func Load(exeDir string) (*Config, error) {
	cfg := Default()

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = findConfigFile(exeDir)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.fillDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range candidateFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// LoadFile overlays the settings in path onto c. Keys absent from the file
// keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		// launcher.json may carry comments and trailing commas
		if err := sonic.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	c.Source = path
	log.Printf("[Config] Loaded %s", path)
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		c.LogDirectory = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		c.JournalDSN = v
	}
}

// fillDerived sets the values that depend on other fields.
func (c *Config) fillDerived() {
	if c.AppName == "" {
		c.AppName = AppName
	}
	if c.ScriptName == "" {
		c.ScriptName = bootstrap.DefaultScriptName
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir(c.AppName)
	}
	if c.JournalDSN == "" {
		c.JournalDSN = "sqlite://" + filepath.Join(c.DataDir, "launcher.db")
	}
}

// defaultDataDir returns <UserConfigDir>/<app>, or "." when the OS cannot
// report a config directory.
func defaultDataDir(app string) string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "."
	}
	return filepath.Join(dir, app)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.StartupDelay < 0 {
		errs = append(errs, fmt.Errorf("startupDelay must not be negative, got %s", c.StartupDelay))
	}
	if c.HostReadyTimeout < 0 {
		errs = append(errs, fmt.Errorf("hostReadyTimeout must not be negative, got %s", c.HostReadyTimeout))
	}
	if c.ReadyTimeout < 0 {
		errs = append(errs, fmt.Errorf("readyTimeout must not be negative, got %s", c.ReadyTimeout))
	}
	if strings.ContainsAny(c.ScriptName, `/\`) {
		errs = append(errs, fmt.Errorf("scriptName must be a bare file name, got %q", c.ScriptName))
	}
	if c.BackendURL != "" {
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("backendURL %q is not an absolute URL", c.BackendURL))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid launcher config: %w", errors.Join(errs...))
	}
	return nil
}

// BackendPort returns the TCP port of BackendURL, or 0 if it has none.
func (c *Config) BackendPort() int {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return 0
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			return 80
		case "https":
			return 443
		}
		return 0
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0
	}
	return n
}

// BootstrapOptions maps the launcher config onto the bootstrapper.
func (c *Config) BootstrapOptions() bootstrap.Options {
	return bootstrap.Options{
		AppName:          c.AppName,
		ScriptName:       c.ScriptName,
		Delay:            c.StartupDelay.Std(),
		HostReadyTimeout: c.HostReadyTimeout.Std(),
		EnableLogging:    c.EnableLogging,
		ShowConsole:      c.ShowConsole,
		LogDirectory:     c.LogDirectory,
	}
}
