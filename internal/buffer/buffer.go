package buffer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kobzarvs/qbuffer/internal/logger"
)

// ErrNotFile is returned by Open for a path that is not an existing regular file.
var ErrNotFile = errors.New("not a file path")

const ScratchName = "Scratchpad"

const indentUnit = "  "

type Options struct {
	// ExpandTabs makes ChangeContent replace tabs with two spaces.
	ExpandTabs    bool
	CaseSensitive bool
}

// Buffer holds the in-memory text of one file together with caret,
// selection and search state. It is not safe for concurrent use; all calls
// are expected from the goroutine that owns it.
type Buffer struct {
	id   uuid.UUID
	name string
	path string
	opts Options

	content []rune
	version uint64
	idx     lineIndex

	caret      int
	selection  int
	lineNumber int
	topScroll  int

	findText      string
	replaceText   string
	caseSensitive bool

	commandInProgress  bool
	formattingForWrite bool
	watchDisabled      bool
	// loadFailed marks a file whose content never made it into memory.
	loadFailed bool

	observers notifier
}

func newBuffer(opts Options) *Buffer {
	return &Buffer{
		id:            uuid.New(),
		name:          ScratchName,
		opts:          opts,
		lineNumber:    1,
		caseSensitive: opts.CaseSensitive,
	}
}

// New returns a scratch buffer holding text.
func New(text string, opts Options) *Buffer {
	b := newBuffer(opts)
	b.content = []rune(NormalizeNewlines(text))
	return b
}

// Open creates a buffer backed by path. An empty path yields a scratch
// buffer. Content that cannot be read or looks binary leaves the buffer
// empty with its watch disabled, and the file is never written back.
func Open(path string, opts Options) (*Buffer, error) {
	if path == "" {
		return New("", opts), nil
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFile, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	b := newBuffer(opts)
	b.path = abs
	b.name = filepath.Base(abs)
	b.load()
	return b, nil
}

func (b *Buffer) load() {
	data, err := os.ReadFile(b.path)
	if err != nil {
		logger.Warn("read failed, watch disabled", "path", b.path, "error", err)
		b.DisableWatch()
		b.loadFailed = true
		return
	}
	if IsBinary(data) {
		logger.Warn("binary content, watch disabled", "path", b.path)
		b.DisableWatch()
		b.loadFailed = true
		return
	}
	b.content = []rune(NormalizeNewlines(string(data)))
	b.version++
}

func (b *Buffer) ID() uuid.UUID   { return b.id }
func (b *Buffer) Name() string    { return b.name }
func (b *Buffer) Path() string    { return b.path }
func (b *Buffer) IsScratch() bool { return b.path == "" }
func (b *Buffer) Version() uint64 { return b.version }

// DisplayPath returns the path relative to root when it lies inside it.
func (b *Buffer) DisplayPath(root string) string {
	if b.IsScratch() {
		return ""
	}
	if root != "" {
		if rel, err := filepath.Rel(root, b.path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return b.path
}

func (b *Buffer) Content() string { return string(b.content) }
func (b *Buffer) Len() int        { return len(b.content) }
func (b *Buffer) empty() bool     { return len(b.content) == 0 }

func (b *Buffer) CaretOffset() int     { return b.caret }
func (b *Buffer) SelectionLength() int { return b.selection }
func (b *Buffer) LineNumber() int      { return b.lineNumber }
func (b *Buffer) TopScrollOffset() int { return b.topScroll }

// SelectedText returns the text covered by the selection.
func (b *Buffer) SelectedText() string {
	return string(b.content[b.caret : b.caret+b.selection])
}

func (b *Buffer) FindText() string    { return b.findText }
func (b *Buffer) ReplaceText() string { return b.replaceText }
func (b *Buffer) CaseSensitive() bool { return b.caseSensitive }

func (b *Buffer) SetFindText(s string)    { b.findText = s }
func (b *Buffer) SetReplaceText(s string) { b.replaceText = s }
func (b *Buffer) SetCaseSensitive(v bool) { b.caseSensitive = v }

func (b *Buffer) StartCommand()           { b.commandInProgress = true }
func (b *Buffer) EndCommand()             { b.commandInProgress = false }
func (b *Buffer) CommandInProgress() bool { return b.commandInProgress }

// Loaded reports whether a file buffer holds its file's text. Scratch
// buffers are always loaded.
func (b *Buffer) Loaded() bool { return !b.loadFailed }

func (b *Buffer) WatchDisabled() bool { return b.IsScratch() || b.watchDisabled }

// DisableWatch permanently stops external reconciliation for this buffer.
func (b *Buffer) DisableWatch() { b.watchDisabled = true }

// setContent is the single content assignment point. Caret and selection
// are clamped to the new length; while formatting for a write the previous
// caret and scroll position are put back.
func (b *Buffer) setContent(text []rune) {
	oldCaret, oldTop := b.caret, b.topScroll
	b.content = normalizeRunes(text)
	b.version++
	if b.observers.has(AttrContent) {
		b.observers.notify(AttrContent, string(b.content))
	}
	if b.caret > len(b.content) {
		b.setCaret(len(b.content))
	}
	if b.caret+b.selection > len(b.content) {
		b.SetSelectionLength(len(b.content) - b.caret)
	}
	if b.formattingForWrite {
		b.setCaret(oldCaret)
		b.SetTopScrollOffset(oldTop)
	}
}

// ChangeContent replaces the whole text, as a widget binding would.
func (b *Buffer) ChangeContent(value string) {
	if b.opts.ExpandTabs {
		value = strings.ReplaceAll(value, "\t", indentUnit)
	}
	value = NormalizeNewlines(value)
	if value == b.Content() {
		return
	}
	b.setContent([]rune(value))
	b.syncLineNumber()
}

func (b *Buffer) SetCaretOffset(o int) { b.setCaret(o) }

func (b *Buffer) setCaret(o int) {
	o = clamp(o, 0, len(b.content))
	b.caret = o
	b.observers.notify(AttrCaretOffset, o)
	b.syncLineNumber()
	if b.caret+b.selection > len(b.content) {
		b.SetSelectionLength(len(b.content) - b.caret)
	}
}

// syncLineNumber is the caret -> line number direction of the derived pair.
func (b *Buffer) syncLineNumber() {
	n := b.LineIndexForOffset(b.caret) + 1
	if n == b.lineNumber {
		return
	}
	b.lineNumber = n
	b.observers.notify(AttrLineNumber, n)
}

// SetLineNumber moves to line n (1-based). The caret only follows when it
// is currently on a different line, so it keeps its column otherwise.
func (b *Buffer) SetLineNumber(n int) {
	n = clamp(n, 1, b.LineCount())
	b.lineNumber = n
	b.observers.notify(AttrLineNumber, n)
	candidate := b.OffsetForLineIndex(n - 1)
	if b.LineIndexForOffset(candidate) != b.LineIndexForOffset(b.caret) {
		b.setCaret(candidate)
	}
}

func (b *Buffer) SetSelectionLength(n int) {
	n = clamp(n, 0, len(b.content)-b.caret)
	b.selection = n
	b.observers.notify(AttrSelectionLength, n)
}

func (b *Buffer) SetTopScrollOffset(v int) {
	b.topScroll = v
	b.observers.notify(AttrTopScrollOffset, v)
}

// Reset returns the buffer to its just-opened state and drops observers.
func (b *Buffer) Reset() {
	b.observers.clear()
	b.caret = 0
	b.selection = 0
	b.lineNumber = 1
	b.topScroll = 0
	b.findText = ""
	b.replaceText = ""
	b.caseSensitive = b.opts.CaseSensitive
	b.commandInProgress = false
	b.formattingForWrite = false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
