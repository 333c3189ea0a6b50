package buffer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kobzarvs/qbuffer/internal/logger"
)

// Save formats the content for writing and writes it back to the backing
// file. Nothing happens for scratch buffers, while a command is in
// progress, when the file has gone away, when its content was never loaded
// or when the disk already holds the formatted text. Failures are logged; the result reports whether bytes
// were written.
func (b *Buffer) Save() bool {
	if b.IsScratch() || b.commandInProgress {
		return false
	}
	if b.loadFailed {
		logger.Warn("save skipped, content never loaded", "path", b.path)
		return false
	}
	info, err := os.Stat(b.path)
	if err != nil {
		logger.Debug("save skipped, file missing", "path", b.path, "error", err)
		return false
	}
	formatted := FormatForWriting(b.Content())
	if disk, err := os.ReadFile(b.path); err == nil && string(disk) == formatted {
		return false
	}
	b.formatForWriting()
	if err := os.WriteFile(b.path, []byte(formatted), info.Mode().Perm()); err != nil {
		logger.Error("save failed", "path", b.path, "error", err)
		return false
	}
	logger.Debug("saved", "path", b.path, "bytes", len(formatted))
	return true
}

// SaveRaw writes the content exactly as held, without formatting.
func (b *Buffer) SaveRaw() bool {
	if b.IsScratch() {
		return false
	}
	if b.loadFailed {
		logger.Warn("raw save skipped, content never loaded", "path", b.path)
		return false
	}
	info, err := os.Stat(b.path)
	if err != nil {
		logger.Debug("raw save skipped, file missing", "path", b.path, "error", err)
		return false
	}
	if err := os.WriteFile(b.path, []byte(b.Content()), info.Mode().Perm()); err != nil {
		logger.Error("raw save failed", "path", b.path, "error", err)
		return false
	}
	return true
}

// Reconcile outcomes.
type Reconciled int

const (
	Unchanged Reconciled = iota
	Reloaded
	// Deferred means a command was running; the caller may retry later.
	Deferred
	// Disabled means the data was unusable and the watch is now off.
	Disabled
)

func (r Reconciled) String() string {
	switch r {
	case Unchanged:
		return "unchanged"
	case Reloaded:
		return "reloaded"
	case Deferred:
		return "deferred"
	case Disabled:
		return "disabled"
	}
	return fmt.Sprintf("Reconciled(%d)", int(r))
}

// Reconcile applies bytes read from the backing file. Binary data disables
// the watch for good; text replaces the content when it differs and no
// command is in progress.
func (b *Buffer) Reconcile(data []byte) Reconciled {
	if b.WatchDisabled() {
		return Disabled
	}
	if IsBinary(data) {
		logger.Warn("external change is binary, watch disabled", "path", b.path)
		b.DisableWatch()
		return Disabled
	}
	if b.commandInProgress {
		return Deferred
	}
	text := NormalizeNewlines(string(data))
	if text == b.Content() {
		return Unchanged
	}
	b.setContent([]rune(text))
	b.syncLineNumber()
	logger.Debug("reloaded from disk", "path", b.path, "runes", len(b.content))
	return Reloaded
}

// Rename changes the buffer name and, for file buffers, moves the file
// within its directory.
func (b *Buffer) Rename(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid buffer name %q", name)
	}
	if b.IsScratch() {
		b.name = name
		return nil
	}
	target := filepath.Join(filepath.Dir(b.path), name)
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("rename %s: %w", target, os.ErrExist)
	}
	if err := os.Rename(b.path, target); err != nil {
		return err
	}
	b.path = target
	b.name = name
	return nil
}

// Delete removes the backing file. Scratch buffers have nothing to remove.
func (b *Buffer) Delete() error {
	if b.IsScratch() {
		return nil
	}
	if err := os.Remove(b.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	b.DisableWatch()
	return nil
}
