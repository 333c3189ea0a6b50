package app

import (
	"strconv"
	"strings"

	"github.com/kobzarvs/qbuffer/internal/buffer"
	"github.com/kobzarvs/qbuffer/internal/logger"
)

// structural maps console words onto recorded buffer operations.
var structural = map[string]string{
	"indent":       buffer.OpIndent,
	"outdent":      buffer.OpOutdent,
	"comment":      buffer.OpComment,
	"duplicate":    buffer.OpDuplicate,
	"up":           buffer.OpMoveUp,
	"down":         buffer.OpMoveDown,
	"kill":         buffer.OpKill,
	"above":        buffer.OpInsertAbove,
	"below":        buffer.OpInsertBelow,
	"replace-next": buffer.OpReplaceNext,
	"pgup":         buffer.OpPageUp,
	"pgdn":         buffer.OpPageDown,
	"top":          buffer.OpGotoFirstLine,
	"bottom":       buffer.OpGotoLastLine,
	"home":         buffer.OpStartOfLine,
	"end":          buffer.OpEndOfLine,
}

// Exec runs one console line against the active buffer and reports whether
// the console should exit.
func (a *App) Exec(line string) bool {
	line = strings.TrimPrefix(strings.TrimSpace(line), ":")
	if line == "" {
		return false
	}
	name, arg, _ := strings.Cut(line, " ")
	logger.Debug("console command", "name", name)

	if op, ok := structural[name]; ok {
		if a.cur == nil {
			a.printf("no buffer\n")
			return false
		}
		a.ws.Do(a.cur, op)
		return false
	}

	switch name {
	case "q":
		if b := a.unsaved(); b != nil {
			a.printf("%s has unsaved changes (add ! to override)\n", b.Name())
			return false
		}
		return true
	case "q!":
		return true
	case "open", "e":
		a.open(strings.TrimSpace(arg))
	case "scratch":
		a.cur = a.ws.Scratch()
		a.track(a.cur)
	case "close":
		a.close()
	case "buffers", "ls":
		a.list()
	case "buffer", "b":
		a.switchTo(strings.TrimSpace(arg))
	case "w":
		a.write(false)
	case "w!":
		a.write(true)
	case "wq":
		a.write(false)
		return a.unsaved() == nil
	case "rename":
		a.rename(strings.TrimSpace(arg))
	case "delete":
		a.remove()
	case "undo", "u":
		a.undo()
	case "redo":
		a.redo()
	case "find":
		a.find(arg)
	case "replace":
		if a.cur != nil {
			a.cur.SetReplaceText(arg)
		}
	case "next":
		a.search(buffer.OpFindNext)
	case "prev":
		a.search(buffer.OpFindPrevious)
	case "case":
		a.setCase(strings.TrimSpace(arg))
	case "goto":
		a.intOp(buffer.OpSetLineNumber, arg)
	case "caret":
		a.intOp(buffer.OpSetCaret, arg)
	case "select":
		a.intOp(buffer.OpSetSelection, arg)
	case "set":
		if a.cur != nil {
			a.ws.Do(a.cur, buffer.OpChangeContent, strings.ReplaceAll(arg, `\n`, "\n"))
		}
	case "lang":
		if a.cur != nil {
			a.printf("%s\n", a.ws.Language(a.cur))
		}
	case "selection", "sel":
		if a.cur != nil {
			a.printf("%q\n", a.cur.SelectedText())
		}
	case "log":
		a.setLogLevel(strings.TrimSpace(arg))
	case "print", "p":
		a.print()
	case "status":
		a.status()
	default:
		a.printf("unknown command: %s\n", name)
	}
	return false
}

func (a *App) open(path string) {
	if path == "" {
		a.printf("usage: open <path>\n")
		return
	}
	b, err := a.ws.Open(path)
	if err != nil {
		a.printf("%v\n", err)
		return
	}
	a.track(b)
	a.cur = b
}

func (a *App) close() {
	if a.cur == nil {
		return
	}
	a.untrack(a.cur)
	a.ws.Close(a.cur)
	a.cur = a.last()
}

func (a *App) last() *buffer.Buffer {
	bufs := a.ws.Buffers()
	if len(bufs) == 0 {
		return nil
	}
	return bufs[len(bufs)-1]
}

func (a *App) list() {
	for i, b := range a.ws.Buffers() {
		mark := " "
		if b == a.cur {
			mark = "*"
		}
		a.printf("%s%d %s\n", mark, i+1, a.label(b))
	}
}

func (a *App) switchTo(arg string) {
	n, err := strconv.Atoi(arg)
	bufs := a.ws.Buffers()
	if err != nil || n < 1 || n > len(bufs) {
		a.printf("no buffer %q\n", arg)
		return
	}
	a.cur = bufs[n-1]
}

// unsaved returns the first file-backed buffer with unwritten edits.
func (a *App) unsaved() *buffer.Buffer {
	for _, b := range a.ws.Buffers() {
		if !b.IsScratch() && a.modified[b.ID()] {
			return b
		}
	}
	return nil
}

func (a *App) write(raw bool) {
	b := a.cur
	if b == nil {
		return
	}
	if b.IsScratch() {
		a.printf("scratch buffer has no file\n")
		return
	}
	if !b.Loaded() {
		a.printf("%s was never loaded, not writing\n", a.label(b))
		return
	}
	var wrote bool
	if raw {
		wrote = a.ws.SaveRaw(b)
	} else {
		wrote = a.ws.Save(b)
	}
	a.modified[b.ID()] = false
	if wrote {
		a.printf("written %s\n", a.label(b))
	} else {
		a.printf("%s unchanged\n", a.label(b))
	}
}

func (a *App) rename(name string) {
	if a.cur == nil {
		return
	}
	if err := a.ws.Rename(a.cur, name); err != nil {
		a.printf("%v\n", err)
	}
}

func (a *App) remove() {
	if a.cur == nil {
		return
	}
	b := a.cur
	a.untrack(b)
	if err := a.ws.Delete(b); err != nil {
		a.track(b)
		a.printf("%v\n", err)
		return
	}
	a.cur = a.last()
}

func (a *App) undo() {
	if a.cur == nil {
		return
	}
	cmd, err := a.ws.Undo(a.cur)
	if err != nil {
		a.printf("%v\n", err)
		return
	}
	a.printf("undo %s\n", cmd.Description())
}

func (a *App) redo() {
	if a.cur == nil {
		return
	}
	cmd, err := a.ws.Redo(a.cur)
	if err != nil {
		a.printf("%v\n", err)
		return
	}
	a.printf("redo %s\n", cmd.Description())
}

func (a *App) find(text string) {
	if a.cur == nil {
		return
	}
	a.cur.SetFindText(text)
	if text != "" {
		a.search(buffer.OpFindNext)
	}
}

func (a *App) search(op string) {
	b := a.cur
	if b == nil {
		return
	}
	if b.FindText() == "" {
		a.printf("nothing to find\n")
		return
	}
	a.ws.Do(b, op)
	if b.SelectionLength() == 0 || !b.FoundAt(b.CaretOffset()) {
		a.printf("not found: %s\n", b.FindText())
	}
}

func (a *App) setCase(arg string) {
	if a.cur == nil {
		return
	}
	switch arg {
	case "on":
		a.cur.SetCaseSensitive(true)
	case "off":
		a.cur.SetCaseSensitive(false)
	default:
		a.printf("usage: case on|off\n")
	}
}

func (a *App) setLogLevel(arg string) {
	switch arg {
	case "debug":
		logger.SetDebug(true)
	case "info":
		logger.SetDebug(false)
	case "":
	default:
		a.printf("usage: log debug|info\n")
		return
	}
	if logger.DebugEnabled() {
		a.printf("log level debug\n")
	} else {
		a.printf("log level info\n")
	}
}

func (a *App) intOp(op, arg string) {
	if a.cur == nil {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		a.printf("not a number: %q\n", strings.TrimSpace(arg))
		return
	}
	a.ws.Do(a.cur, op, n)
}

func (a *App) print() {
	b := a.cur
	if b == nil {
		return
	}
	current := b.LineNumber()
	for i, l := range b.Lines() {
		mark := " "
		if i+1 == current {
			mark = ">"
		}
		a.printf("%s%4d  %s\n", mark, i+1, l)
	}
}

func (a *App) status() {
	b := a.cur
	if b == nil {
		a.printf("no buffer\n")
		return
	}
	flag := ""
	if !b.IsScratch() && a.modified[b.ID()] {
		flag = " [+]"
	}
	if !b.IsScratch() && !a.ws.Watching(b) {
		flag += " [unwatched]"
	}
	a.printf("%s%s line %d/%d col %d caret %d sel %d lang %s\n",
		a.label(b), flag,
		b.LineNumber(), b.LineCount(), b.ColumnForOffset(b.CaretOffset())+1,
		b.CaretOffset(), b.SelectionLength(), a.ws.Language(b))
}

// label names a buffer for console output.
func (a *App) label(b *buffer.Buffer) string {
	if b.IsScratch() {
		return b.Name()
	}
	return b.DisplayPath(a.ws.Root())
}
