// Package history records buffer operations as undoable commands.
//
// Every structural edit goes through Manager.Do, which snapshots the buffer,
// runs the named operation with the buffer's command flag set and records a
// Command holding the state before and after. Commands that leave the buffer
// unchanged are not recorded.
//
// Each buffer has its own History, keyed by buffer ID:
//
//	m := history.NewManager(1000)
//	m.Do(buf, buffer.OpIndent)
//	m.Undo(buf)
//	m.Redo(buf)
//
// A new command clears the redo stack. Undo and redo restore content with a
// single assignment so observers see one content change per step.
package history
