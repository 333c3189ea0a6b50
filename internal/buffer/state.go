package buffer

// State is the part of a buffer an undoable command can change.
type State struct {
	Content         string
	CaretOffset     int
	SelectionLength int
}

func (b *Buffer) Snapshot() State {
	return State{Content: b.Content(), CaretOffset: b.caret, SelectionLength: b.selection}
}

// Restore puts a snapshot back with a single content assignment.
func (b *Buffer) Restore(s State) {
	if s.Content != b.Content() {
		b.setContent([]rune(s.Content))
	}
	b.setCaret(s.CaretOffset)
	b.SetSelectionLength(s.SelectionLength)
}

// Properties is the per-file view state kept across sessions.
type Properties struct {
	FindText        string `json:"find_text,omitempty"`
	ReplaceText     string `json:"replace_text,omitempty"`
	CaseSensitive   bool   `json:"case_sensitive,omitempty"`
	TopScrollOffset int    `json:"top_scroll_offset,omitempty"`
	CaretOffset     int    `json:"caret_offset,omitempty"`
	SelectionLength int    `json:"selection_length,omitempty"`
}

func (p Properties) IsZero() bool { return p == Properties{} }

func (b *Buffer) Properties() Properties {
	return Properties{
		FindText:        b.findText,
		ReplaceText:     b.replaceText,
		CaseSensitive:   b.caseSensitive,
		TopScrollOffset: b.topScroll,
		CaretOffset:     b.caret,
		SelectionLength: b.selection,
	}
}

// RestoreProperties applies saved view state. An all-zero value is ignored
// so a fresh buffer keeps its defaults.
func (b *Buffer) RestoreProperties(p Properties) bool {
	if p.IsZero() {
		return false
	}
	b.findText = p.FindText
	b.replaceText = p.ReplaceText
	b.caseSensitive = p.CaseSensitive
	b.SetTopScrollOffset(p.TopScrollOffset)
	b.setCaret(p.CaretOffset)
	b.SetSelectionLength(p.SelectionLength)
	return true
}
