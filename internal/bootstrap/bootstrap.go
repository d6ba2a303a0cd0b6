// Package bootstrap starts the CityNH backend once per application launch.
//
// After a warm-up delay the bootstrapper resolves start_backend next to the
// running executable (python/ first, then the _up_/python/ staging copy),
// spawns it detached from the host window and forgets about it. Every
// failure ends the attempt quietly: the host never blocks on or learns about
// the backend except through Last() and the optional Recorder.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultDelay is the warm-up interval before the first filesystem check.
const DefaultDelay = 2 * time.Second

var (
	ErrNoExecutable   = errors.New("executable path unavailable")
	ErrScriptNotFound = errors.New("backend script NOT FOUND")
	ErrSpawn          = errors.New("failed to spawn backend")
	ErrAlreadyRunning = errors.New("backend already running")
	ErrDuplicate      = errors.New("bootstrap already attempted")
)

// Outcome classifies how an attempt ended.
type Outcome string

const (
	OutcomeSpawned         Outcome = "spawned"
	OutcomeSpawnedUnlogged Outcome = "spawned_unlogged"
	OutcomeNoExecutable    Outcome = "no_executable"
	OutcomeNotFound        Outcome = "not_found"
	OutcomeSpawnFailed     Outcome = "spawn_failed"
	OutcomeAlreadyRunning  Outcome = "already_running"
	OutcomeDuplicate       Outcome = "duplicate"
)

// Started reports whether a backend child exists after this outcome.
func (o Outcome) Started() bool {
	return o == OutcomeSpawned || o == OutcomeSpawnedUnlogged
}

// Options are the build/deployment variants of the launch.
type Options struct {
	AppName    string
	ScriptName string
	Delay      time.Duration

	// HostReady, when set, is waited on after Delay for at most
	// HostReadyTimeout. A zero timeout skips the wait.
	HostReady        <-chan struct{}
	HostReadyTimeout time.Duration

	EnableLogging bool
	ShowConsole   bool
	// LogDirectory overrides the per-user log directory.
	LogDirectory string
}

// Result describes one bootstrap attempt.
type Result struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Executable string
	ScriptPath string
	WorkDir    string
	Fallback   bool
	LogPath    string
	PID        int
	Outcome    Outcome
	Err        error
}

// Recorder persists attempt results. Implementations must not block for long;
// errors are theirs to log.
type Recorder interface {
	Record(Result)
}

// Bootstrapper runs at most one launch attempt. The function fields are the
// OS seams; New fills them with the real implementations.
type Bootstrapper struct {
	opts Options

	Clock         clockwork.Clock
	Executable    func() (string, error)
	Stat          func(string) (os.FileInfo, error)
	MkdirAll      func(string, os.FileMode) error
	OpenLog       func(string) (*os.File, error)
	UserConfigDir func() (string, error)
	// AlreadyRunning, when set, is asked before resolving the script.
	AlreadyRunning func() bool
	Spawner        Spawner
	Recorder       Recorder
	Logger         *log.Logger

	attempted atomic.Bool
	mu        sync.RWMutex
	last      *Result
}

// New creates a Bootstrapper wired to the real OS.
func New(opts Options) *Bootstrapper {
	if opts.ScriptName == "" {
		opts.ScriptName = DefaultScriptName
	}
	return &Bootstrapper{
		opts:          opts,
		Clock:         clockwork.NewRealClock(),
		Executable:    os.Executable,
		Stat:          os.Stat,
		MkdirAll:      os.MkdirAll,
		OpenLog:       openAppend,
		UserConfigDir: os.UserConfigDir,
		Spawner:       ExecSpawner{},
		Logger:        log.Default(),
	}
}

// Options returns the options the bootstrapper was built with.
func (b *Bootstrapper) Options() Options { return b.opts }

// Start schedules Run on its own goroutine and returns immediately.
func (b *Bootstrapper) Start() {
	go b.Run()
}

// Run performs the attempt synchronously. Only the first call does any work;
// later calls return an OutcomeDuplicate result without touching the OS.
func (b *Bootstrapper) Run() Result {
	if !b.attempted.CompareAndSwap(false, true) {
		b.logf("Launch already attempted in this process, ignoring")
		return Result{Outcome: OutcomeDuplicate, Err: ErrDuplicate}
	}

	res := Result{ID: uuid.NewString()}
	b.wait()
	res.StartedAt = b.Clock.Now()

	b.launch(&res)

	res.FinishedAt = b.Clock.Now()
	b.mu.Lock()
	b.last = &res
	b.mu.Unlock()

	if b.Recorder != nil {
		b.Recorder.Record(res)
	}
	return res
}

// Last returns the result of the attempt, if it has finished.
func (b *Bootstrapper) Last() (Result, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.last == nil {
		return Result{}, false
	}
	return *b.last, true
}

// wait holds the attempt back until the host has had time to come up.
func (b *Bootstrapper) wait() {
	if b.opts.Delay > 0 {
		b.logf("Waiting %s before starting backend", b.opts.Delay)
		b.Clock.Sleep(b.opts.Delay)
	}
	if b.opts.HostReady == nil || b.opts.HostReadyTimeout <= 0 {
		return
	}

	select {
	case <-b.opts.HostReady:
	case <-b.Clock.After(b.opts.HostReadyTimeout):
		b.logf("Host not ready after %s, starting backend anyway", b.opts.HostReadyTimeout)
	}
}

func (b *Bootstrapper) launch(res *Result) {
	exe, err := b.Executable()
	if err == nil && exe == "" {
		err = errors.New("empty path")
	}
	if err != nil {
		res.Outcome = OutcomeNoExecutable
		res.Err = fmt.Errorf("%w: %v", ErrNoExecutable, err)
		b.logf("Cannot determine executable path: %v", err)
		return
	}
	res.Executable = exe
	exeDir := filepath.Dir(exe)
	b.logf("Application directory: %s", exeDir)

	if b.AlreadyRunning != nil && b.AlreadyRunning() {
		res.Outcome = OutcomeAlreadyRunning
		res.Err = ErrAlreadyRunning
		b.logf("Backend already answering on its port, not starting another")
		return
	}

	script, fallback, err := b.resolveScript(exeDir)
	if err != nil {
		res.Outcome = OutcomeNotFound
		res.Err = err
		b.logf("Backend script NOT FOUND under %s", exeDir)
		return
	}
	res.ScriptPath = script
	res.WorkDir = filepath.Dir(script)
	res.Fallback = fallback

	req := SpawnRequest{
		Script:      script,
		Dir:         res.WorkDir,
		ShowConsole: b.opts.ShowConsole,
	}

	logged := false
	if b.opts.EnableLogging {
		logPath := b.logFilePath(exeDir)
		f, err := b.openLogFile(logPath)
		if err != nil {
			b.logf("Backend log unavailable, starting without it: %v", err)
		} else {
			req.Output = f
			res.LogPath = logPath
			logged = true
			b.logf("Backend output -> %s", logPath)
		}
	}

	pid, err := b.Spawner.Spawn(req)
	if req.Output != nil {
		// the child holds its own copy of the handle
		req.Output.Close()
	}
	if err != nil {
		res.Outcome = OutcomeSpawnFailed
		res.Err = fmt.Errorf("%w: %v", ErrSpawn, err)
		res.LogPath = ""
		b.logf("Failed to start backend %s: %v", script, err)
		return
	}

	res.PID = pid
	if b.opts.EnableLogging && !logged {
		res.Outcome = OutcomeSpawnedUnlogged
	} else {
		res.Outcome = OutcomeSpawned
	}
	b.logf("Backend started (pid %d) from %s", pid, script)
}

func (b *Bootstrapper) logf(format string, args ...any) {
	if b.Logger == nil {
		return
	}
	b.Logger.Printf("[Bootstrap] "+format, args...)
}
