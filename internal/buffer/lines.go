package buffer

import (
	"sort"
	"strings"
	"unicode"
)

// lineIndex caches the split of content into lines and the offset at which
// each line starts. It is rebuilt lazily whenever the version moves.
type lineIndex struct {
	version uint64
	valid   bool
	lines   [][]rune
	starts  []int
}

func (b *Buffer) index() *lineIndex {
	if b.idx.valid && b.idx.version == b.version {
		return &b.idx
	}
	lines := splitLines(b.content)
	starts := make([]int, len(lines)+1)
	for i, l := range lines {
		starts[i+1] = starts[i] + len(l) + 1
	}
	b.idx = lineIndex{version: b.version, valid: true, lines: lines, starts: starts}
	return &b.idx
}

// splitLines splits on "\n" and drops the empty element a trailing newline
// produces. Each line is capped so appending never writes into content.
func splitLines(text []rune) [][]rune {
	var lines [][]rune
	start := 0
	for i, r := range text {
		if r == '\n' {
			lines = append(lines, text[start:i:i])
			start = i + 1
		}
	}
	lines = append(lines, text[start:len(text):len(text)])
	if n := len(lines); n > 1 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}
	return lines
}

// Lines returns the content split into lines. Empty content has one empty
// line.
func (b *Buffer) Lines() []string {
	idx := b.index()
	out := make([]string, len(idx.lines))
	for i, l := range idx.lines {
		out[i] = string(l)
	}
	return out
}

func (b *Buffer) LineCount() int { return len(b.index().lines) }

func (b *Buffer) Line(i int) string {
	lines := b.index().lines
	if i < 0 || i >= len(lines) {
		return ""
	}
	return string(lines[i])
}

func (b *Buffer) hasTrailingNewline() bool {
	return len(b.content) > 0 && b.content[len(b.content)-1] == '\n'
}

// OffsetForLineIndex sums the lengths of the lines before i, each plus one
// for its newline. Indices past the end are clamped to the line count.
func (b *Buffer) OffsetForLineIndex(i int) int {
	idx := b.index()
	if i <= 0 {
		return 0
	}
	if i > len(idx.lines) {
		i = len(idx.lines)
	}
	return idx.starts[i]
}

// LineIndexForOffset is the number of newlines before the clamped offset,
// capped at the last line. The end of content after a trailing newline
// therefore maps to the last line.
func (b *Buffer) LineIndexForOffset(o int) int {
	o = clamp(o, 0, len(b.content))
	idx := b.index()
	n := len(idx.lines)
	i := sort.Search(n, func(i int) bool { return idx.starts[i] > o }) - 1
	return clamp(i, 0, n-1)
}

func (b *Buffer) ColumnForOffset(o int) int {
	o = clamp(o, 0, len(b.content))
	return o - b.OffsetForLineIndex(b.LineIndexForOffset(o))
}

// endLineIndex is the line holding the last character of the span. A span
// ending right after a newline does not reach into the next line.
func (b *Buffer) endLineIndex(o, length int) int {
	end := clamp(o+length, 0, len(b.content))
	if end > 0 && b.content[end-1] == '\n' && end-1 >= o {
		end--
	}
	return b.LineIndexForOffset(end)
}

// LineIndicesForSelection returns the first and last line the span touches.
func (b *Buffer) LineIndicesForSelection(o, length int) (int, int) {
	first := b.LineIndexForOffset(o)
	last := b.endLineIndex(o, length)
	if last < first {
		last = first
	}
	return first, last
}

func (b *Buffer) selectedLines() (int, int) {
	return b.LineIndicesForSelection(b.caret, b.selection)
}

// CurrentLine is the line holding the caret.
func (b *Buffer) CurrentLine() string {
	return b.Line(b.LineIndexForOffset(b.caret))
}

// CurrentLineIndentation is the caret line's leading whitespace.
func (b *Buffer) CurrentLineIndentation() string {
	return leadingSpace(b.CurrentLine())
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeftFunc(s, unicode.IsSpace))]
}

func (b *Buffer) cloneLines() [][]rune {
	src := b.index().lines
	out := make([][]rune, len(src))
	copy(out, src)
	return out
}

// joinLines rebuilds content from lines. A trailing newline is kept when
// the old content had one, and is required when the last line is empty so
// the result splits back into the same lines.
func joinLines(lines [][]rune, trailing bool) []rune {
	size := 0
	for _, l := range lines {
		size += len(l) + 1
	}
	out := make([]rune, 0, size)
	for i, l := range lines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, l...)
	}
	if trailing || len(lines) == 0 || len(lines[len(lines)-1]) == 0 {
		out = append(out, '\n')
	}
	return out
}

func (b *Buffer) replaceLines(lines [][]rune) {
	b.setContent(joinLines(lines, b.hasTrailingNewline()))
}

func blockLength(lines [][]rune) int {
	n := 0
	for i, l := range lines {
		if i > 0 {
			n++
		}
		n += len(l)
	}
	return n
}

func insertLines(lines [][]rune, at int, block [][]rune) [][]rune {
	out := make([][]rune, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	return append(out, lines[at:]...)
}

func removeLines(lines [][]rune, first, last int) [][]rune {
	out := make([][]rune, 0, len(lines)-(last-first+1))
	out = append(out, lines[:first]...)
	return append(out, lines[last+1:]...)
}
