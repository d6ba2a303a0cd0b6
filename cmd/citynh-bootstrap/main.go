// citynh-bootstrap runs one backend launch attempt from a terminal, without
// the desktop window. Packaging smoke tests use it to check that an
// installed tree resolves and starts start_backend the way the app would.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/citynh/desktop/internal/bootstrap"
	"github.com/citynh/desktop/internal/config"
	"github.com/citynh/desktop/internal/desktop"
	"github.com/citynh/desktop/internal/health"
	"github.com/citynh/desktop/internal/journal"
	"github.com/citynh/desktop/internal/version"
)

// exitError carries a process exit status without printing anything more.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitError) ExitCode() int { return int(e) }

func main() {
	if err := run(os.Args[1:]); err != nil {
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	log.SetOutput(os.Stdout)

	var (
		appDir      string
		configPath  string
		delay       time.Duration
		noLog       bool
		showConsole bool
		noJournal   bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("citynh-bootstrap", pflag.ContinueOnError)
	flagSet.StringVar(&appDir, "app-dir", "", "directory to resolve python/ and _up_/python/ from (default: this executable's directory)")
	flagSet.StringVar(&configPath, "config", "", "launcher config file (default: launcher.json/.yaml next to the app)")
	flagSet.DurationVar(&delay, "delay", 0, "warm-up delay before the first filesystem check (default: from config)")
	flagSet.BoolVar(&noLog, "no-log", false, "do not redirect backend output to backend.log")
	flagSet.BoolVar(&showConsole, "show-console", false, "give the backend its own console window (Windows)")
	flagSet.BoolVar(&noJournal, "no-journal", false, "do not record the attempt in the launch journal")
	flagSet.BoolVar(&showVersion, "version", false, "show version information and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		fmt.Println("citynh-bootstrap", version.Full())
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot determine executable path: %w", err)
	}
	if appDir != "" {
		abs, err := filepath.Abs(appDir)
		if err != nil {
			return fmt.Errorf("invalid --app-dir: %w", err)
		}
		// only the directory of the executable matters to the bootstrapper
		exe = filepath.Join(abs, filepath.Base(exe))
	}

	if configPath != "" {
		os.Setenv(config.EnvConfigFile, configPath)
	}
	cfg, err := config.Load(filepath.Dir(exe))
	if err != nil {
		return err
	}

	opts := cfg.BootstrapOptions()
	if flagSet.Changed("delay") {
		opts.Delay = delay
	}
	if noLog {
		opts.EnableLogging = false
	}
	if flagSet.Changed("show-console") {
		opts.ShowConsole = showConsole
	}

	boot := bootstrap.New(opts)
	boot.Executable = func() (string, error) { return exe, nil }
	if cfg.SkipIfRunning {
		port := cfg.BackendPort()
		checker := health.NewChecker(cfg.BackendURL, cfg.HealthPath)
		boot.AlreadyRunning = func() bool {
			_, running := desktop.BackendRunning(context.Background(), port, checker)
			return running
		}
	}

	if !noJournal {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			log.Printf("[Journal] Failed to create data directory %s: %v", cfg.DataDir, err)
		}
		db, err := journal.Open(cfg.JournalDSN)
		if err != nil {
			log.Printf("[Journal] Launch journal unavailable: %v", err)
		} else {
			defer db.Close()
			boot.Recorder = db
		}
	}

	res := boot.Run()
	printResult(res)

	switch res.Outcome {
	case bootstrap.OutcomeSpawned, bootstrap.OutcomeSpawnedUnlogged, bootstrap.OutcomeAlreadyRunning:
		return nil
	}
	return exitError(1)
}

func printResult(res bootstrap.Result) {
	fmt.Printf("outcome:  %s\n", res.Outcome)
	if res.ScriptPath != "" {
		fmt.Printf("script:   %s", res.ScriptPath)
		if res.Fallback {
			fmt.Print(" (fallback)")
		}
		fmt.Println()
	}
	if res.PID != 0 {
		fmt.Printf("pid:      %d\n", res.PID)
	}
	if res.LogPath != "" {
		fmt.Printf("log:      %s\n", res.LogPath)
	}
	if res.Err != nil {
		fmt.Printf("error:    %v\n", res.Err)
	}
	fmt.Printf("attempt:  %s\n", res.ID)
}
