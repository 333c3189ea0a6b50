package buffer

import (
	"fmt"
	"sort"
)

// Operation names accepted by Apply. These are what history records.
const (
	OpIndent        = "indent"
	OpOutdent       = "outdent"
	OpComment       = "comment"
	OpDuplicate     = "duplicate"
	OpMoveUp        = "move_up"
	OpMoveDown      = "move_down"
	OpKill          = "kill"
	OpInsertAbove   = "insert_above"
	OpInsertBelow   = "insert_below"
	OpReplaceNext   = "replace_next"
	OpChangeContent = "change_content"
	OpSetCaret      = "set_caret"
	OpSetSelection  = "set_selection"
	OpSetLineNumber = "set_line_number"
	OpFindNext      = "find_next"
	OpFindPrevious  = "find_previous"
	OpPageUp        = "page_up"
	OpPageDown      = "page_down"
	OpGotoFirstLine = "goto_first_line"
	OpGotoLastLine  = "goto_last_line"
	OpStartOfLine   = "start_of_line"
	OpEndOfLine     = "end_of_line"
)

var operations = map[string]func(b *Buffer, args []any){
	OpIndent:        func(b *Buffer, _ []any) { b.Indent() },
	OpOutdent:       func(b *Buffer, _ []any) { b.Outdent() },
	OpComment:       func(b *Buffer, _ []any) { b.ToggleComment() },
	OpDuplicate:     func(b *Buffer, _ []any) { b.DuplicateLines() },
	OpMoveUp:        func(b *Buffer, _ []any) { b.MoveLinesUp() },
	OpMoveDown:      func(b *Buffer, _ []any) { b.MoveLinesDown() },
	OpKill:          func(b *Buffer, _ []any) { b.KillLines() },
	OpInsertAbove:   func(b *Buffer, _ []any) { b.InsertLineAbove() },
	OpInsertBelow:   func(b *Buffer, _ []any) { b.InsertLineBelow() },
	OpReplaceNext:   func(b *Buffer, _ []any) { b.ReplaceNext() },
	OpChangeContent: func(b *Buffer, args []any) { b.ChangeContent(stringArg(OpChangeContent, args)) },
	OpSetCaret:      func(b *Buffer, args []any) { b.SetCaretOffset(intArg(OpSetCaret, args)) },
	OpSetSelection:  func(b *Buffer, args []any) { b.SetSelectionLength(intArg(OpSetSelection, args)) },
	OpSetLineNumber: func(b *Buffer, args []any) { b.SetLineNumber(intArg(OpSetLineNumber, args)) },
	OpFindNext:      func(b *Buffer, _ []any) { b.FindNext() },
	OpFindPrevious:  func(b *Buffer, _ []any) { b.FindPrevious() },
	OpPageUp:        func(b *Buffer, _ []any) { b.PageUp() },
	OpPageDown:      func(b *Buffer, _ []any) { b.PageDown() },
	OpGotoFirstLine: func(b *Buffer, _ []any) { b.GotoFirstLine() },
	OpGotoLastLine:  func(b *Buffer, _ []any) { b.GotoLastLine() },
	OpStartOfLine:   func(b *Buffer, _ []any) { b.StartOfLine() },
	OpEndOfLine:     func(b *Buffer, _ []any) { b.EndOfLine() },
}

func stringArg(op string, args []any) string {
	if len(args) != 1 {
		panic(fmt.Sprintf("buffer: %s takes one argument, got %d", op, len(args)))
	}
	s, ok := args[0].(string)
	if !ok {
		panic(fmt.Sprintf("buffer: %s wants a string, got %T", op, args[0]))
	}
	return s
}

func intArg(op string, args []any) int {
	if len(args) != 1 {
		panic(fmt.Sprintf("buffer: %s takes one argument, got %d", op, len(args)))
	}
	n, ok := args[0].(int)
	if !ok {
		panic(fmt.Sprintf("buffer: %s wants an int, got %T", op, args[0]))
	}
	return n
}

// HasOperation reports whether Apply knows name.
func HasOperation(name string) bool {
	_, ok := operations[name]
	return ok
}

// Operations lists the known operation names in sorted order.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply invokes the named operation. Unknown names are a programming error
// and panic.
func (b *Buffer) Apply(name string, args ...any) {
	fn, ok := operations[name]
	if !ok {
		panic(fmt.Sprintf("buffer: unknown operation %q", name))
	}
	fn(b, args)
}
