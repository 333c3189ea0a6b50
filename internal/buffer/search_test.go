package buffer

import "testing"

func TestFindNextCycles(t *testing.T) {
	b := openFixture(t, "two_line_file")
	b.SetFindText("and")
	want := []int{18, 36, 75, 96, 18}
	for i, offset := range want {
		if !b.FindNext() {
			t.Fatalf("FindNext #%d found nothing", i)
		}
		assertCaret(t, b, offset, 3)
	}
}

func TestFindNextIgnoresCaseByDefault(t *testing.T) {
	b := openFixture(t, "two_line_file")
	b.SetFindText("AND")
	if !b.FindNext() {
		t.Fatalf("FindNext found nothing")
	}
	assertCaret(t, b, 18, 3)

	b = openFixture(t, "two_line_file")
	b.SetFindText("AND")
	b.SetCaseSensitive(true)
	if b.FindNext() {
		t.Fatalf("FindNext matched with case sensitivity on")
	}
	assertCaret(t, b, 0, 0)
}

func TestFindPreviousCycles(t *testing.T) {
	b := openFixture(t, "two_line_file")
	b.SetFindText("and")
	want := []int{96, 75, 36, 18, 96}
	for i, offset := range want {
		if !b.FindPrevious() {
			t.Fatalf("FindPrevious #%d found nothing", i)
		}
		assertCaret(t, b, offset, 3)
	}
}

func TestFindWithoutMatch(t *testing.T) {
	b := openFixture(t, "ten_line_file")
	b.SetCaretOffset(40)
	b.SetFindText("zzz")
	if b.FindNext() || b.FindPrevious() {
		t.Fatalf("find matched missing text")
	}
	assertCaret(t, b, 40, 0)

	b.SetFindText("")
	if b.FindNext() {
		t.Fatalf("FindNext matched empty text")
	}
}

func TestFindNextFromLineEnd(t *testing.T) {
	b := openFixture(t, "ten_line_file")
	b.SetFindText("one")
	b.SetCaretOffset(b.Len())
	if !b.FindNext() {
		t.Fatalf("FindNext found nothing")
	}
	assertCaret(t, b, 0, 3)
}

func TestEnsureFindNext(t *testing.T) {
	b := openFixture(t, "two_line_file")
	b.SetFindText("and")
	b.SetCaretOffset(36)
	b.EnsureFindNext()
	assertCaret(t, b, 36, 0)

	b.SetCaretOffset(37)
	b.EnsureFindNext()
	assertCaret(t, b, 75, 3)
}

func TestReplaceNext(t *testing.T) {
	b := openFixture(t, "two_line_file")
	b.SetFindText("Hello")
	b.SetReplaceText("Bye")
	if !b.ReplaceNext() {
		t.Fatalf("ReplaceNext = false, want true")
	}
	if got := b.Line(0); got != "one Bye, World! and Hello, World! and Hello, World!" {
		t.Fatalf("Line(0) = %q", got)
	}
	assertCaret(t, b, 20, 5)
}

func TestReplaceNextSkipsInsertedMatch(t *testing.T) {
	b := openFixture(t, "two_line_file")
	b.SetFindText("and")
	b.SetReplaceText("band")
	if !b.ReplaceNext() {
		t.Fatalf("ReplaceNext = false, want true")
	}
	assertCaret(t, b, 37, 3)
}

func TestReplaceNextUntilExhausted(t *testing.T) {
	b := openFixture(t, "two_line_file")
	b.SetFindText("hello")
	b.SetReplaceText("Hi")
	n := 0
	for b.ReplaceNext() {
		n++
		if n > 10 {
			t.Fatalf("ReplaceNext did not terminate")
		}
	}
	if n != 3 {
		t.Fatalf("replacements = %d, want 3", n)
	}
	assertContent(t, b, "one Hi, World! and Hi, World! and Hi, World!\n"+
		"two Howdy, Universe! and Howdy, Universe! and Howdy, Universe!\n")
}

func TestReplaceNextGuards(t *testing.T) {
	b := openFixture(t, "two_line_file")
	before := b.Content()
	b.SetFindText("zzz")
	b.SetReplaceText("x")
	if b.ReplaceNext() {
		t.Fatalf("ReplaceNext replaced missing text")
	}
	assertContent(t, b, before)

	b.SetFindText("")
	if b.ReplaceNext() {
		t.Fatalf("ReplaceNext with empty find = true")
	}

	b = New("   \n\n", Options{})
	b.SetFindText(" ")
	b.SetReplaceText("x")
	if b.ReplaceNext() {
		t.Fatalf("ReplaceNext on blank content = true")
	}
	assertContent(t, b, "   \n\n")
}
