package session

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultPath(t *testing.T) {
	t.Setenv("QBUFFER_STATE_HOME", "/tmp/qb-state")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if got != "/tmp/qb-state/session.json" {
		t.Fatalf("DefaultPath = %q", got)
	}

	t.Setenv("QBUFFER_STATE_HOME", "")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	got, err = DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if got != "/tmp/xdg-state/qbuffer/session.json" {
		t.Fatalf("DefaultPath = %q", got)
	}
}

func TestStopPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	m, err := NewManager(path, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	state := FileState{CaretOffset: 42, SelectionLength: 3, FindText: "and", CaseSensitive: true}
	m.SetFileState("/src/a.rb", state)
	m.SetOpenFiles([]string{"/src/a.rb", "/src/b.rb"})
	m.SetActiveFile("/src/a.rb")
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	again, err := NewManager(path, time.Hour)
	if err != nil {
		t.Fatalf("NewManager reload: %v", err)
	}
	defer again.Stop()
	got, ok := again.FileState("/src/a.rb")
	if !ok || got != state {
		t.Fatalf("FileState = %+v, %v; want %+v", got, ok, state)
	}
	if files := again.OpenFiles(); !reflect.DeepEqual(files, []string{"/src/a.rb", "/src/b.rb"}) {
		t.Fatalf("OpenFiles = %v", files)
	}
	if again.ActiveFile() != "/src/a.rb" {
		t.Fatalf("ActiveFile = %q", again.ActiveFile())
	}
}

func TestSaveOnlyWhenDirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	m, err := NewManager(path, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Stop()

	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("clean Save wrote a file: %v", err)
	}
	m.SetActiveFile("/x")
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("dirty Save wrote nothing: %v", err)
	}
}

func TestForget(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "session.json"), time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Stop()
	m.SetFileState("/a", FileState{CaretOffset: 1})
	m.SetActiveFile("/a")
	m.Forget("/a")
	if _, ok := m.FileState("/a"); ok {
		t.Fatalf("FileState kept after Forget")
	}
	if m.ActiveFile() != "" {
		t.Fatalf("ActiveFile = %q after Forget", m.ActiveFile())
	}
}

func TestCorruptSessionStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := NewManager(path, time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Stop()
	if _, ok := m.FileState("/a"); ok {
		t.Fatalf("unexpected state from corrupt file")
	}
	m.SetFileState("/a", FileState{CaretOffset: 2})
}

func TestAutosave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	m, err := NewManager(path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Stop()
	m.SetActiveFile("/a")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("autosave did not write %s", path)
}
