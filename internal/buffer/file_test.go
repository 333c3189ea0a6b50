package buffer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestOpenRejectsNonFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "missing.rb"), Options{}); !errors.Is(err, ErrNotFile) {
		t.Fatalf("Open missing error = %v, want ErrNotFile", err)
	}
	if _, err := Open(dir, Options{}); !errors.Is(err, ErrNotFile) {
		t.Fatalf("Open dir error = %v, want ErrNotFile", err)
	}
}

func TestOpenScratch(t *testing.T) {
	b, err := Open("", Options{})
	if err != nil {
		t.Fatalf("Open scratch: %v", err)
	}
	if !b.IsScratch() || b.Name() != ScratchName || b.Content() != "" {
		t.Fatalf("scratch = %q %q, want empty %q", b.Name(), b.Content(), ScratchName)
	}
	if !b.WatchDisabled() {
		t.Fatalf("scratch buffer has an active watch")
	}
	if b.Save() || b.SaveRaw() {
		t.Fatalf("scratch buffer saved")
	}
}

func TestOpenReadsFile(t *testing.T) {
	path := writeTemp(t, "notes.md", "a\r\nb\n")
	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Name() != "notes.md" || b.Path() != path {
		t.Fatalf("name/path = %q/%q", b.Name(), b.Path())
	}
	assertContent(t, b, "a\nb\n")
	if b.WatchDisabled() {
		t.Fatalf("watch disabled for text file")
	}
	if got := b.DisplayPath(filepath.Dir(path)); got != "notes.md" {
		t.Fatalf("DisplayPath = %q, want notes.md", got)
	}
}

func TestOpenBinaryDisablesWatch(t *testing.T) {
	path := writeTemp(t, "blob.bin", "\x00\x01\x02")
	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	assertContent(t, b, "")
	if !b.WatchDisabled() {
		t.Fatalf("watch active for binary file")
	}
}

func TestSaveNeverOverwritesUnloadedFile(t *testing.T) {
	png := "\x89PNG\x00\x00\xff\xfe"
	path := writeTemp(t, "image.png", png)
	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Loaded() {
		t.Fatalf("Loaded = true for binary file")
	}
	if b.Save() {
		t.Fatalf("Save wrote a file whose content was never loaded")
	}
	b.ChangeContent("typed over\n")
	if b.Save() || b.SaveRaw() {
		t.Fatalf("save after edit wrote a file whose content was never loaded")
	}
	if got := readFile(t, path); got != png {
		t.Fatalf("disk = %q, want original bytes", got)
	}
}

func TestSaveFormatsAndKeepsCaret(t *testing.T) {
	path := writeTemp(t, "a.rb", "def x  \n  y\t\nend\n\n\n")
	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b.SetCaretOffset(9)
	b.SetTopScrollOffset(40)
	if !b.Save() {
		t.Fatalf("Save = false, want true")
	}
	want := "def x\n  y\nend\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("disk = %q, want %q", got, want)
	}
	assertContent(t, b, want)
	if b.CaretOffset() != 9 || b.TopScrollOffset() != 40 {
		t.Fatalf("caret/top = %d/%d, want 9/40", b.CaretOffset(), b.TopScrollOffset())
	}
	if b.Save() {
		t.Fatalf("second Save wrote identical content")
	}
}

func TestSaveSkips(t *testing.T) {
	path := writeTemp(t, "a.rb", "x\n")
	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b.ChangeContent("y\n")

	b.StartCommand()
	if b.Save() {
		t.Fatalf("Save ran during a command")
	}
	b.EndCommand()

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if b.Save() {
		t.Fatalf("Save recreated a deleted file")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stat after Save = %v, want not exist", err)
	}
}

func TestSaveRaw(t *testing.T) {
	path := writeTemp(t, "a.txt", "")
	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b.ChangeContent("keep  \n\n")
	if !b.SaveRaw() {
		t.Fatalf("SaveRaw = false")
	}
	if got := readFile(t, path); got != "keep  \n\n" {
		t.Fatalf("disk = %q", got)
	}
}

func TestReconcile(t *testing.T) {
	path := writeTemp(t, "a.rb", "one\n")
	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got := b.Reconcile([]byte("one\n")); got != Unchanged {
		t.Fatalf("Reconcile same = %v, want unchanged", got)
	}
	b.StartCommand()
	if got := b.Reconcile([]byte("two\n")); got != Deferred {
		t.Fatalf("Reconcile during command = %v, want deferred", got)
	}
	b.EndCommand()
	assertContent(t, b, "one\n")

	if got := b.Reconcile([]byte("two\r\nthree\n")); got != Reloaded {
		t.Fatalf("Reconcile = %v, want reloaded", got)
	}
	assertContent(t, b, "two\nthree\n")

	if got := b.Reconcile([]byte{0, 1}); got != Disabled {
		t.Fatalf("Reconcile binary = %v, want disabled", got)
	}
	if got := b.Reconcile([]byte("four\n")); got != Disabled {
		t.Fatalf("Reconcile after disable = %v, want disabled", got)
	}
	assertContent(t, b, "two\nthree\n")
}

func TestRenameAndDelete(t *testing.T) {
	path := writeTemp(t, "old.rb", "x\n")
	b, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b.Rename("new.rb"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "new.rb")
	if b.Path() != want || b.Name() != "new.rb" {
		t.Fatalf("path/name = %q/%q, want %q", b.Path(), b.Name(), want)
	}
	if got := readFile(t, want); got != "x\n" {
		t.Fatalf("renamed file = %q", got)
	}
	if err := b.Rename("../escape.rb"); err == nil {
		t.Fatalf("Rename accepted a path")
	}

	if err := b.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(want); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stat after Delete = %v", err)
	}
}

func TestRenameScratch(t *testing.T) {
	b := New("", Options{})
	if err := b.Rename("todo"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if b.Name() != "todo" || !b.IsScratch() {
		t.Fatalf("name = %q scratch %v", b.Name(), b.IsScratch())
	}
}
