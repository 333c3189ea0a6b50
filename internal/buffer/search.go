package buffer

import (
	"strings"
	"unicode"
)

func (b *Buffer) fold(r []rune) []rune {
	if b.caseSensitive {
		return r
	}
	out := make([]rune, len(r))
	for i, c := range r {
		out[i] = unicode.ToLower(c)
	}
	return out
}

func indexRunes(hay, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := 0; i+len(needle) <= len(hay); i++ {
		if equalRunes(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func lastIndexRunes(hay, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
	for i := len(hay) - len(needle); i >= 0; i-- {
		if equalRunes(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FoundAt reports whether the find text occurs at offset o.
func (b *Buffer) FoundAt(o int) bool {
	needle := b.fold([]rune(b.findText))
	if len(needle) == 0 || o < 0 || o+len(needle) > len(b.content) {
		return false
	}
	return equalRunes(b.fold(b.content[o:o+len(needle)]), needle)
}

func (b *Buffer) selectMatch(line, col, length int) {
	b.setCaret(b.OffsetForLineIndex(line) + col)
	b.SetSelectionLength(length)
}

// FindNext selects the next occurrence of the find text after the caret,
// wrapping around the end of the buffer. When the caret already sits on a
// match the search starts past it. It reports whether anything matched.
func (b *Buffer) FindNext() bool {
	needle := b.fold([]rune(b.findText))
	if len(needle) == 0 {
		return false
	}
	lines := b.index().lines
	n := len(lines)
	cur := b.LineIndexForOffset(b.caret)
	col := b.ColumnForOffset(b.caret)
	if b.FoundAt(b.caret) {
		col += len(needle)
	}
	for pass := 0; pass < 2; pass++ {
		for k := 0; k < n; k++ {
			i := (cur + k) % n
			line := lines[i]
			start := 0
			if pass == 0 && i == cur {
				start = col
			}
			if start > len(line) {
				continue
			}
			if at := indexRunes(b.fold(line[start:]), needle); at >= 0 {
				b.selectMatch(i, start+at, len(needle))
				return true
			}
		}
	}
	return false
}

// FindPrevious mirrors FindNext: the caret line is searched left of the
// caret first, then earlier lines wrapping to the end, then the caret line
// again as a whole.
func (b *Buffer) FindPrevious() bool {
	needle := b.fold([]rune(b.findText))
	if len(needle) == 0 {
		return false
	}
	lines := b.index().lines
	n := len(lines)
	cur := b.LineIndexForOffset(b.caret)
	col := b.ColumnForOffset(b.caret)
	for pass := 0; pass < 2; pass++ {
		for k := 0; k < n; k++ {
			i := ((cur-k)%n + n) % n
			hay := lines[i]
			if pass == 0 && i == cur {
				hay = hay[:min(col, len(hay))]
			}
			if at := lastIndexRunes(b.fold(hay), needle); at >= 0 {
				b.selectMatch(i, at, len(needle))
				return true
			}
		}
	}
	return false
}

func (b *Buffer) blank() bool {
	return strings.TrimSpace(string(b.content)) == ""
}

// EnsureFindNext moves to the next match unless the caret is already on one.
func (b *Buffer) EnsureFindNext() {
	if b.findText == "" || b.blank() {
		return
	}
	if !b.FoundAt(b.caret) {
		b.FindNext()
	}
}

// ReplaceNext replaces the match under the caret (finding one first if
// needed) and advances to the following match. When the replacement
// contains the find text somewhere past its start, one more advance skips
// the occurrence just written. Nothing is replaced unless a match exists.
func (b *Buffer) ReplaceNext() bool {
	if b.findText == "" || b.blank() {
		return false
	}
	b.EnsureFindNext()
	if !b.FoundAt(b.caret) {
		return false
	}
	find := []rune(b.findText)
	repl := []rune(b.replaceText)
	at := b.caret
	next := make([]rune, 0, len(b.content)-len(find)+len(repl))
	next = append(next, b.content[:at]...)
	next = append(next, repl...)
	next = append(next, b.content[at+len(find):]...)
	b.setContent(next)
	b.syncLineNumber()

	b.FindNext()
	if strings.Contains(b.replaceText, b.findText) && !strings.HasPrefix(b.replaceText, b.findText) {
		b.FindNext()
	}
	return true
}
