package buffer

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func normalizeRunes(r []rune) []rune {
	for _, c := range r {
		if c == '\r' {
			return []rune(NormalizeNewlines(string(r)))
		}
	}
	return r
}

// FormatForWriting trims trailing whitespace from every line and ends the
// text with exactly one newline. It is idempotent.
func FormatForWriting(text string) string {
	lines := strings.Split(NormalizeNewlines(text), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

// IsBinary treats invalid UTF-8 or any NUL byte as binary content.
func IsBinary(data []byte) bool {
	return !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0
}

// formatForWriting rewrites the content in place while keeping caret and
// scroll where they were.
func (b *Buffer) formatForWriting() {
	formatted := FormatForWriting(b.Content())
	if formatted == b.Content() {
		return
	}
	b.formattingForWrite = true
	defer func() { b.formattingForWrite = false }()
	b.setContent([]rune(formatted))
}
