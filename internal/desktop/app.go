package desktop

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/citynh/desktop/internal/bootstrap"
	"github.com/citynh/desktop/internal/config"
	"github.com/citynh/desktop/internal/health"
	"github.com/citynh/desktop/internal/journal"
	"github.com/citynh/desktop/internal/version"
)

// readyPollInterval 后端就绪轮询间隔
const readyPollInterval = time.Second

// BackendStatus 暴露给前端的后端状态
type BackendStatus struct {
	Attempted  bool          `json:"attempted"`
	Outcome    string        `json:"outcome"`
	ScriptPath string        `json:"scriptPath"`
	Fallback   bool          `json:"fallback"`
	PID        int           `json:"pid"`
	LogPath    string        `json:"logPath"`
	Error      string        `json:"error,omitempty"`
	Address    string        `json:"address"`
	Health     health.Status `json:"health"`
	Version    string        `json:"version"`
}

// LauncherApp Wails 绑定对象：调度一次后端启动，并只读地展示结果
type LauncherApp struct {
	ctx     context.Context
	cfg     *config.Config
	boot    *bootstrap.Bootstrapper
	checker *health.Checker
	journal *journal.DB

	hostReady chan struct{}
	readyOnce sync.Once
	quitting  atomic.Bool

	mu     sync.RWMutex
	health health.Status
	onDone []func()
}

// NewLauncherApp 根据配置创建桌面应用实例
// 日志库打不开不影响启动，只是不再记录启动历史
func NewLauncherApp(cfg *config.Config) (*LauncherApp, error) {
	if cfg == nil {
		return nil, fmt.Errorf("launcher config is required")
	}

	a := &LauncherApp{
		cfg:       cfg,
		checker:   health.NewChecker(cfg.BackendURL, cfg.HealthPath),
		hostReady: make(chan struct{}),
	}

	opts := cfg.BootstrapOptions()
	opts.HostReady = a.hostReady
	a.boot = bootstrap.New(opts)
	if cfg.SkipIfRunning {
		port := cfg.BackendPort()
		a.boot.AlreadyRunning = func() bool {
			st, running := BackendRunning(context.Background(), port, a.checker)
			if running {
				a.setHealth(st)
			}
			return running
		}
	}

	db, err := journal.Open(cfg.JournalDSN)
	if err != nil {
		log.Printf("[Launcher] Launch journal unavailable: %v", err)
	} else {
		a.journal = db
	}
	a.boot.Recorder = launchRecorder{app: a}

	return a, nil
}

// launchRecorder 写入启动记录，并在启动成功后开始就绪探测
// 不直接挂在 LauncherApp 上，避免被 Wails 绑定到前端
type launchRecorder struct {
	app *LauncherApp
}

func (r launchRecorder) Record(res bootstrap.Result) {
	a := r.app
	if a.journal != nil {
		a.journal.Record(res)
	}
	if res.Outcome.Started() {
		go a.watchReady(res.ID)
	}
	a.notify()
}

// Startup Wails OnStartup 回调
func (a *LauncherApp) Startup(ctx context.Context) {
	a.ctx = ctx
	log.Printf("[Launcher] CityNH %s starting", version.Info())
	// 后台启动，不阻塞窗口
	a.boot.Start()
}

// DomReady Wails OnDomReady 回调：通知启动器窗口已就绪
func (a *LauncherApp) DomReady(ctx context.Context) {
	a.readyOnce.Do(func() { close(a.hostReady) })
}

// Shutdown Wails OnShutdown 回调
// 后端是独立进程，这里不等待也不终止它
func (a *LauncherApp) Shutdown(ctx context.Context) {
	log.Println("[Launcher] Shutting down")
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			log.Printf("[Launcher] Failed to close journal: %v", err)
		}
	}
}

// onStatusChange 注册状态变化回调（托盘刷新用）
func (a *LauncherApp) onStatusChange(fn func()) {
	a.mu.Lock()
	a.onDone = append(a.onDone, fn)
	a.mu.Unlock()
}

func (a *LauncherApp) notify() {
	a.mu.RLock()
	fns := append([]func(){}, a.onDone...)
	a.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// watchReady 轮询健康检查直到后端就绪或超时，仅用于展示
func (a *LauncherApp) watchReady(launchID string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ReadyTimeout.Std())
	defer cancel()

	st, err := a.checker.WaitReady(ctx, clockwork.NewRealClock(), readyPollInterval)
	a.setHealth(st)
	if err != nil {
		log.Printf("[Launcher] Backend did not become ready within %s: %s", a.cfg.ReadyTimeout, st.Error)
	} else if a.journal != nil {
		if err := a.journal.MarkReady(launchID, st.CheckedAt); err != nil {
			log.Printf("[Launcher] %v", err)
		}
	}
	a.notify()
}

func (a *LauncherApp) setHealth(st health.Status) {
	a.mu.Lock()
	a.health = st
	a.mu.Unlock()
}

// CheckBackendStatus 返回当前后端状态；会实时探测一次健康检查
func (a *LauncherApp) CheckBackendStatus() BackendStatus {
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	a.setHealth(a.checker.Check(ctx))
	return a.BackendStatus()
}

// BackendStatus 返回最近一次启动结果和缓存的健康状态
func (a *LauncherApp) BackendStatus() BackendStatus {
	a.mu.RLock()
	st := BackendStatus{
		Address: a.GetBackendAddress(),
		Health:  a.health,
		Version: version.Info(),
	}
	a.mu.RUnlock()

	res, ok := a.boot.Last()
	if !ok {
		return st
	}
	st.Attempted = true
	st.Outcome = string(res.Outcome)
	st.ScriptPath = res.ScriptPath
	st.Fallback = res.Fallback
	st.PID = res.PID
	st.LogPath = res.LogPath
	if res.Err != nil {
		st.Error = res.Err.Error()
	}
	return st
}

// RecentLaunches 返回最近的启动记录
func (a *LauncherApp) RecentLaunches(limit int) ([]journal.Launch, error) {
	if a.journal == nil {
		return nil, fmt.Errorf("launch journal unavailable")
	}
	return a.journal.Recent(limit)
}

// GetBackendAddress 返回后端地址
func (a *LauncherApp) GetBackendAddress() string {
	return a.cfg.BackendURL
}

// LogDirectory 返回后端日志所在目录（未记录日志时为空）
func (a *LauncherApp) LogDirectory() string {
	res, ok := a.boot.Last()
	if !ok || res.LogPath == "" {
		return ""
	}
	return filepath.Dir(res.LogPath)
}

// Quit 退出应用（后端进程不受影响）
func (a *LauncherApp) Quit() {
	a.quitting.Store(true)
	if a.ctx != nil {
		runtime.Quit(a.ctx)
	}
}
