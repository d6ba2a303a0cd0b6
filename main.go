package main

import (
	"context"
	"embed"
	"log"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"

	"github.com/citynh/desktop/internal/config"
	"github.com/citynh/desktop/internal/desktop"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	log.SetOutput(os.Stdout)

	// 配置文件放在程序旁边（launcher.json / launcher.yaml）
	exeDir := ""
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	cfg, err := config.Load(exeDir)
	if err != nil {
		log.Fatal("Failed to load launcher config:", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Printf("Failed to create data directory %s: %v", cfg.DataDir, err)
	}

	app, err := desktop.NewLauncherApp(cfg)
	if err != nil {
		log.Fatal("Failed to initialize desktop app:", err)
	}

	// 托盘在 OnStartup 拿到 context 之后启动
	started := make(chan context.Context, 1)
	go func() {
		ctx := <-started
		tray := desktop.NewTrayManager(ctx, app)
		tray.Start()
	}()

	var appMenu *menu.Menu
	if goruntime.GOOS == "darwin" {
		appMenu = menu.NewMenu()
		appMenu.Append(menu.AppMenu())

		fileMenu := appMenu.AddSubmenu("File")
		fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
			app.Quit()
		})

		appMenu.Append(menu.EditMenu())
	}

	err = wails.Run(&options.App{
		Title:     cfg.AppName,
		Width:     960,
		Height:    640,
		MinWidth:  720,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			app.Startup(ctx)
			started <- ctx
		},
		OnDomReady:    app.DomReady,
		OnBeforeClose: app.BeforeClose,
		OnShutdown:    app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Menu: appMenu,
		Debug: options.Debug{
			OpenInspectorOnStartup: config.DebugBuild,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},
		Mac: &mac.Options{
			Appearance: mac.NSAppearanceNameDarkAqua,
			About: &mac.AboutInfo{
				Title:   cfg.AppName,
				Message: "Hospital management desktop",
			},
		},
	})

	if err != nil {
		log.Fatal("Error:", err)
	}
}

