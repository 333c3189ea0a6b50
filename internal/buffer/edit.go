package buffer

import "strings"

// Each structural edit does nothing on empty content and performs exactly
// one content assignment. With a selection the result re-spans whole
// touched lines; otherwise the caret is adjusted by the edit's delta.

func (b *Buffer) respan(first, last int) {
	b.setCaret(b.OffsetForLineIndex(first))
	b.SetSelectionLength(b.OffsetForLineIndex(last+1) - b.caret)
}

func (b *Buffer) Indent() {
	if b.empty() {
		return
	}
	first, last := b.selectedLines()
	oldCaret, selected := b.caret, b.selection > 0
	lines := b.cloneLines()
	for i := first; i <= last; i++ {
		lines[i] = append([]rune(indentUnit), lines[i]...)
	}
	b.replaceLines(lines)
	if selected {
		b.respan(first, last)
		return
	}
	b.setCaret(oldCaret + len(indentUnit))
	b.SetSelectionLength(0)
}

func (b *Buffer) Outdent() {
	if b.empty() {
		return
	}
	first, last := b.selectedLines()
	oldCaret, selected := b.caret, b.selection > 0
	lineStart := b.OffsetForLineIndex(b.LineIndexForOffset(oldCaret))
	lines := b.cloneLines()
	delta := 0
	for i := first; i <= last; i++ {
		switch line := lines[i]; {
		case strings.HasPrefix(string(line), indentUnit):
			lines[i] = line[len(indentUnit):]
			delta = -len(indentUnit)
		case strings.HasPrefix(string(line), " "):
			lines[i] = line[1:]
			delta = -1
		}
	}
	b.replaceLines(lines)
	if selected {
		b.respan(first, last)
		return
	}
	b.setCaret(max(oldCaret+delta, lineStart))
	b.SetSelectionLength(0)
}

// ToggleComment adds "# " to lines without a comment marker and strips the
// first "# " (or bare "#") from lines that have one after leading space.
func (b *Buffer) ToggleComment() {
	if b.empty() {
		return
	}
	first, last := b.selectedLines()
	oldCaret, selected := b.caret, b.selection > 0
	lineStart := b.OffsetForLineIndex(b.LineIndexForOffset(oldCaret))
	lines := b.cloneLines()
	delta := 0
	for i := first; i <= last; i++ {
		line := string(lines[i])
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "# "):
			line = strings.Replace(line, "# ", "", 1)
			delta = -2
		case strings.HasPrefix(trimmed, "#"):
			line = strings.Replace(line, "#", "", 1)
			delta = -1
		default:
			line = "# " + line
			delta = 2
		}
		lines[i] = []rune(line)
	}
	b.replaceLines(lines)
	if selected {
		b.respan(first, last)
		return
	}
	b.setCaret(max(oldCaret+delta, lineStart))
	b.SetSelectionLength(0)
}

// DuplicateLines inserts a copy of the touched lines above them and moves
// the caret into the lower copy.
func (b *Buffer) DuplicateLines() {
	if b.empty() {
		return
	}
	first, last := b.selectedLines()
	oldCaret, selected := b.caret, b.selection > 0
	lines := b.cloneLines()
	block := append([][]rune(nil), lines[first:last+1]...)
	b.replaceLines(insertLines(lines, first, block))
	if selected {
		b.respan(first, last)
		return
	}
	b.setCaret(oldCaret + blockLength(block) + 1)
	b.SetSelectionLength(0)
}

func (b *Buffer) MoveLinesUp() {
	if b.empty() || b.LineCount() < 2 {
		return
	}
	first, last := b.selectedLines()
	if first == 0 {
		return
	}
	b.moveBlock(first, last, first-1)
}

func (b *Buffer) MoveLinesDown() {
	if b.empty() {
		return
	}
	first, last := b.selectedLines()
	if last >= b.LineCount()-1 {
		return
	}
	b.moveBlock(first, last, first+1)
}

// moveBlock reinserts lines[first..last] at target, counted after removal.
// The caret keeps its column, clamped to the new line, and a selection
// keeps its length.
func (b *Buffer) moveBlock(first, last, target int) {
	col := b.ColumnForOffset(b.caret)
	sel := b.selection
	lines := b.cloneLines()
	block := append([][]rune(nil), lines[first:last+1]...)
	moved := insertLines(removeLines(lines, first, last), target, block)
	b.replaceLines(moved)
	b.setCaret(b.OffsetForLineIndex(target) + min(col, len(moved[target])))
	if sel > 0 {
		b.SetSelectionLength(sel)
	}
}

// KillLines removes every touched line. Killing the last line leaves a
// single newline.
func (b *Buffer) KillLines() {
	if b.empty() {
		return
	}
	first, last := b.selectedLines()
	lineIdx := b.LineIndexForOffset(b.caret)
	col := b.ColumnForOffset(b.caret)
	rest := removeLines(b.cloneLines(), first, last)
	if len(rest) == 0 {
		b.setContent([]rune("\n"))
	} else {
		b.replaceLines(rest)
	}
	lineIdx = min(lineIdx, b.LineCount()-1)
	b.setCaret(b.OffsetForLineIndex(lineIdx) + min(col, len(b.index().lines[lineIdx])))
	b.SetSelectionLength(0)
}

func (b *Buffer) InsertLineAbove() {
	if b.empty() {
		return
	}
	b.insertIndentedLine(b.LineIndexForOffset(b.caret))
}

func (b *Buffer) InsertLineBelow() {
	if b.empty() {
		return
	}
	b.insertIndentedLine(b.LineIndexForOffset(b.caret) + 1)
}

// insertIndentedLine inserts a line holding only the caret line's
// indentation at index at and puts the caret after it.
func (b *Buffer) insertIndentedLine(at int) {
	indent := []rune(b.CurrentLineIndentation())
	lines := insertLines(b.cloneLines(), at, [][]rune{indent})
	b.replaceLines(lines)
	b.setCaret(b.OffsetForLineIndex(at) + len(indent))
	b.SetSelectionLength(0)
}

// Navigation.

const pageLines = 15

func (b *Buffer) PageUp() {
	b.SetSelectionLength(0)
	b.SetLineNumber(max(b.lineNumber-pageLines, 1))
}

func (b *Buffer) PageDown() {
	b.SetSelectionLength(0)
	b.SetLineNumber(min(b.lineNumber+pageLines, b.LineCount()))
}

func (b *Buffer) GotoFirstLine() {
	b.SetSelectionLength(0)
	b.SetLineNumber(1)
}

func (b *Buffer) GotoLastLine() {
	b.SetSelectionLength(0)
	b.SetLineNumber(b.LineCount())
}

func (b *Buffer) StartOfLine() {
	b.SetSelectionLength(0)
	b.setCaret(b.OffsetForLineIndex(b.LineIndexForOffset(b.caret)))
}

func (b *Buffer) EndOfLine() {
	b.SetSelectionLength(0)
	i := b.LineIndexForOffset(b.caret)
	b.setCaret(b.OffsetForLineIndex(i) + len(b.index().lines[i]))
}
