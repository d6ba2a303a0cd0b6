//go:build windows

package bootstrap

import (
	"testing"

	"golang.org/x/sys/windows"
)

func TestSysProcAttrWindows(t *testing.T) {
	tests := []struct {
		name        string
		showConsole bool
		wantFlags   uint32
		wantHidden  bool
	}{
		{"hidden", false, windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NO_WINDOW, true},
		{"own console", true, windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_NEW_CONSOLE, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := sysProcAttr(tt.showConsole)
			if attr.CreationFlags != tt.wantFlags {
				t.Errorf("CreationFlags = %#x, want %#x", attr.CreationFlags, tt.wantFlags)
			}
			if attr.HideWindow != tt.wantHidden {
				t.Errorf("HideWindow = %v, want %v", attr.HideWindow, tt.wantHidden)
			}
			// a console of its own and no console at all are mutually exclusive
			if attr.CreationFlags&windows.CREATE_NEW_CONSOLE != 0 && attr.CreationFlags&windows.CREATE_NO_WINDOW != 0 {
				t.Error("both CREATE_NEW_CONSOLE and CREATE_NO_WINDOW set")
			}
		})
	}
}

func TestShellCommandWindows(t *testing.T) {
	cmd := shellCommand(`C:\CityNH\python\start_backend.bat`)
	want := []string{"cmd", "/C", `C:\CityNH\python\start_backend.bat`}
	if len(cmd.Args) != len(want) {
		t.Fatalf("Args = %q, want %q", cmd.Args, want)
	}
	for i := range want {
		if cmd.Args[i] != want[i] {
			t.Errorf("Args[%d] = %q, want %q", i, cmd.Args[i], want[i])
		}
	}
}
