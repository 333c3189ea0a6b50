package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestHelpersBeforeInit(t *testing.T) {
	L, S = nil, nil
	Debug("dropped", "k", 1)
	Error("dropped too")
}

func TestInitLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qbuffer.log")
	if err := Init(Options{Path: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { Use(nil) })

	Debug("hidden detail")
	SetDebug(true)
	if !DebugEnabled() {
		t.Fatalf("DebugEnabled = false after SetDebug(true)")
	}
	Debug("visible detail", "buffer", "a.rb")
	Warn("watch disabled")
	SetDebug(false)
	Close()

	got := readLog(t, path)
	if strings.Contains(got, "hidden detail") {
		t.Fatalf("debug line written at info level:\n%s", got)
	}
	for _, want := range []string{"logger initialized", "visible detail", "a.rb", "watch disabled"} {
		if !strings.Contains(got, want) {
			t.Fatalf("log missing %q:\n%s", want, got)
		}
	}
}

func TestInitAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qbuffer.log")
	if err := os.WriteFile(path, []byte("earlier run\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { Use(nil) })

	if err := Init(Options{Path: path, Append: true}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Close()
	if got := readLog(t, path); !strings.HasPrefix(got, "earlier run\n") {
		t.Fatalf("append lost earlier content:\n%s", got)
	}

	if err := Init(Options{Path: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Close()
	if got := readLog(t, path); strings.Contains(got, "earlier run") {
		t.Fatalf("truncating Init kept earlier content:\n%s", got)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("QBUFFER_LOG_FILE", "")
	t.Setenv("QBUFFER_CONFIG_HOME", "/tmp/qb")
	got, err := defaultPath()
	if err != nil || got != filepath.Join("/tmp/qb", "qbuffer.log") {
		t.Fatalf("defaultPath = %q, %v", got, err)
	}
	t.Setenv("QBUFFER_LOG_FILE", "/var/log/qb.log")
	if got, _ := defaultPath(); got != "/var/log/qb.log" {
		t.Fatalf("defaultPath = %q, want QBUFFER_LOG_FILE", got)
	}
}
