package buffer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func openFixture(t *testing.T, name string) *Buffer {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return New(string(data), Options{})
}

func TestLinesEmpty(t *testing.T) {
	b := openFixture(t, "empty_file")
	if got := b.Lines(); !reflect.DeepEqual(got, []string{""}) {
		t.Fatalf("Lines = %q, want [\"\"]", got)
	}
	if got := b.LineCount(); got != 1 {
		t.Fatalf("LineCount = %d, want 1", got)
	}
	if got := b.OffsetForLineIndex(3); got != 0 {
		t.Fatalf("OffsetForLineIndex(3) = %d, want 0", got)
	}
	if got := b.LineIndexForOffset(5); got != 0 {
		t.Fatalf("LineIndexForOffset(5) = %d, want 0", got)
	}
}

func TestLinesTrailingNewline(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"abc", []string{"abc"}},
		{"abc\n", []string{"abc"}},
		{"\n", []string{""}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"a\n\n", []string{"a", ""}},
		{"a\r\nb\rc", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		b := New(tt.text, Options{})
		if got := b.Lines(); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Lines(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestOffsetForLineIndex(t *testing.T) {
	b := openFixture(t, "ten_line_file")
	tests := []struct{ index, want int }{
		{-1, 0},
		{0, 0},
		{1, 54},
		{2, 117},
		{4, 237},
		{10, 594},
		{20, 594},
	}
	for _, tt := range tests {
		if got := b.OffsetForLineIndex(tt.index); got != tt.want {
			t.Fatalf("OffsetForLineIndex(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestLineIndexForOffset(t *testing.T) {
	b := openFixture(t, "ten_line_file")
	tests := []struct{ offset, want int }{
		{-3, 0},
		{0, 0},
		{53, 0},
		{54, 1},
		{116, 1},
		{117, 2},
		{593, 9},
		{594, 9},
		{1000, 9},
	}
	for _, tt := range tests {
		if got := b.LineIndexForOffset(tt.offset); got != tt.want {
			t.Fatalf("LineIndexForOffset(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestLineIndexRoundTrip(t *testing.T) {
	b := openFixture(t, "ten_line_file")
	for i := 0; i < b.LineCount(); i++ {
		if got := b.LineIndexForOffset(b.OffsetForLineIndex(i)); got != i {
			t.Fatalf("LineIndexForOffset(OffsetForLineIndex(%d)) = %d", i, got)
		}
	}
}

func TestColumnForOffset(t *testing.T) {
	b := openFixture(t, "ten_line_file")
	if got := b.ColumnForOffset(120); got != 3 {
		t.Fatalf("ColumnForOffset(120) = %d, want 3", got)
	}
	if got := b.ColumnForOffset(54); got != 0 {
		t.Fatalf("ColumnForOffset(54) = %d, want 0", got)
	}
}

func TestLineIndicesForSelection(t *testing.T) {
	b := openFixture(t, "ten_line_file")
	tests := []struct {
		offset, length int
		first, last    int
	}{
		{54, 0, 1, 1},
		{117, 175, 2, 4},
		{54, 119, 1, 2},
		{54, 120, 1, 3},
		{50, 10, 0, 1},
	}
	for _, tt := range tests {
		first, last := b.LineIndicesForSelection(tt.offset, tt.length)
		if first != tt.first || last != tt.last {
			t.Fatalf("LineIndicesForSelection(%d, %d) = (%d, %d), want (%d, %d)",
				tt.offset, tt.length, first, last, tt.first, tt.last)
		}
	}
}

func TestLineCacheFollowsContent(t *testing.T) {
	b := New("a\nb\n", Options{})
	if got := b.LineCount(); got != 2 {
		t.Fatalf("LineCount = %d, want 2", got)
	}
	b.ChangeContent("a\nb\nc\n")
	if got := b.LineCount(); got != 3 {
		t.Fatalf("LineCount after change = %d, want 3", got)
	}
}

func TestCurrentLineIndentation(t *testing.T) {
	b := New("def x\n    y\n", Options{})
	b.SetCaretOffset(8)
	if got := b.CurrentLine(); got != "    y" {
		t.Fatalf("CurrentLine = %q, want %q", got, "    y")
	}
	if got := b.CurrentLineIndentation(); got != "    " {
		t.Fatalf("CurrentLineIndentation = %q, want 4 spaces", got)
	}
}
