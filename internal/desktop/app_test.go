package desktop

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/citynh/desktop/internal/bootstrap"
	"github.com/citynh/desktop/internal/config"
)

type countingSpawner struct {
	mu    sync.Mutex
	calls []bootstrap.SpawnRequest
}

func (s *countingSpawner) Spawn(req bootstrap.SpawnRequest) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	return 4242, nil
}

func (s *countingSpawner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestApp(t *testing.T, tweaks ...func(*config.Config)) *LauncherApp {
	t.Helper()
	cfg := config.Default()
	cfg.StartupDelay = 0
	cfg.SkipIfRunning = false
	cfg.EnableLogging = false
	cfg.ReadyTimeout = config.Duration(time.Millisecond)
	cfg.JournalDSN = "sqlite://" + filepath.Join(t.TempDir(), "launcher.db")
	for _, tweak := range tweaks {
		tweak(cfg)
	}

	app, err := NewLauncherApp(cfg)
	if err != nil {
		t.Fatalf("NewLauncherApp() error = %v", err)
	}
	t.Cleanup(func() { app.Shutdown(context.Background()) })

	exe := filepath.Join(t.TempDir(), "CityNH.exe")
	app.boot.Executable = func() (string, error) { return exe, nil }
	return app
}

func TestNewLauncherAppRequiresConfig(t *testing.T) {
	if _, err := NewLauncherApp(nil); err == nil {
		t.Fatal("NewLauncherApp(nil) succeeded, want error")
	}
}

func TestBackendStatusBeforeAttempt(t *testing.T) {
	app := newTestApp(t)

	st := app.BackendStatus()
	if st.Attempted {
		t.Error("Attempted = true before any launch")
	}
	if st.Address != "http://127.0.0.1:8000" {
		t.Errorf("Address = %q", st.Address)
	}
	if app.LogDirectory() != "" {
		t.Errorf("LogDirectory() = %q, want empty", app.LogDirectory())
	}
	if got := statusLabel(st); got != "启动中..." {
		t.Errorf("statusLabel() = %q", got)
	}
}

func TestMissingScriptIsRecorded(t *testing.T) {
	app := newTestApp(t)

	notified := 0
	app.onStatusChange(func() { notified++ })

	app.DomReady(context.Background())
	// a second DOM ready (page reload) must not panic on the closed channel
	app.DomReady(context.Background())

	res := app.boot.Run()
	if res.Outcome != bootstrap.OutcomeNotFound {
		t.Fatalf("Outcome = %s, want not_found", res.Outcome)
	}
	if notified != 1 {
		t.Errorf("status callbacks = %d, want 1", notified)
	}

	st := app.BackendStatus()
	if !st.Attempted || st.Outcome != string(bootstrap.OutcomeNotFound) {
		t.Errorf("BackendStatus() = %+v", st)
	}
	if st.Error == "" {
		t.Error("Error empty, want the not found reason")
	}
	if got := statusLabel(st); got != "未找到启动脚本" {
		t.Errorf("statusLabel() = %q", got)
	}

	launches, err := app.RecentLaunches(5)
	if err != nil {
		t.Fatalf("RecentLaunches() error = %v", err)
	}
	if len(launches) != 1 || launches[0].ID != res.ID {
		t.Fatalf("RecentLaunches() = %+v, want the one attempt", launches)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		name string
		st   BackendStatus
		want string
	}{
		{"waiting for health", BackendStatus{Attempted: true, Outcome: "spawned", PID: 12}, "已启动，等待就绪 (PID 12)"},
		{"already running", BackendStatus{Attempted: true, Outcome: "already_running"}, "运行中 (已有实例)"},
		{"spawn failed", BackendStatus{Attempted: true, Outcome: "spawn_failed"}, "启动失败"},
		{"unknown outcome", BackendStatus{Attempted: true, Outcome: "duplicate"}, "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusLabel(tt.st); got != tt.want {
				t.Errorf("statusLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

// withPrimaryScript points the app at an install directory that ships the
// backend script and swaps in a spawner that only counts.
func withPrimaryScript(t *testing.T, app *LauncherApp) *countingSpawner {
	t.Helper()
	dir := t.TempDir()
	pyDir := filepath.Join(dir, "python")
	if err := os.MkdirAll(pyDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pyDir, bootstrap.DefaultScriptName), []byte("exit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	exe := filepath.Join(dir, "CityNH.exe")
	app.boot.Executable = func() (string, error) { return exe, nil }

	sp := &countingSpawner{}
	app.boot.Spawner = sp
	return sp
}

func TestForeignListenerOnBackendPortDoesNotBlockLaunch(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	app := newTestApp(t, func(c *config.Config) {
		c.SkipIfRunning = true
		c.BackendURL = "http://" + ln.Addr().String()
	})
	sp := withPrimaryScript(t, app)

	res := app.boot.Run()
	if res.Outcome != bootstrap.OutcomeSpawned {
		t.Fatalf("Outcome = %s, want spawned (err=%v)", res.Outcome, res.Err)
	}
	if n := sp.count(); n != 1 {
		t.Errorf("spawns = %d, want 1", n)
	}
}

func TestHealthyBackendOnPortSkipsLaunch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy","service":"citynh","version":"1.0.0"}`))
	}))
	defer srv.Close()

	app := newTestApp(t, func(c *config.Config) {
		c.SkipIfRunning = true
		c.BackendURL = srv.URL
	})
	sp := withPrimaryScript(t, app)

	res := app.boot.Run()
	if res.Outcome != bootstrap.OutcomeAlreadyRunning {
		t.Fatalf("Outcome = %s, want already_running", res.Outcome)
	}
	if n := sp.count(); n != 0 {
		t.Errorf("spawns = %d, want 0", n)
	}
	if st := app.BackendStatus(); !st.Health.Ready {
		t.Errorf("Health = %+v, want ready from the existing backend", st.Health)
	}
}
