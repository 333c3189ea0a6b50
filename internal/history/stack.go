package history

import (
	"errors"

	"github.com/kobzarvs/qbuffer/internal/buffer"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

const defaultMaxEntries = 1000

// History is the undo and redo stack of a single buffer.
type History struct {
	undoStack  []*Command
	redoStack  []*Command
	maxEntries int
}

func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Push records cmd, drops the redo stack and evicts the oldest entries
// beyond the limit.
func (h *History) Push(cmd *Command) {
	h.undoStack = append(h.undoStack, cmd)
	h.redoStack = nil
	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

func (h *History) Undo(b *buffer.Buffer) (*Command, error) {
	if len(h.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	if err := cmd.Undo(b); err != nil {
		return nil, err
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, cmd)
	return cmd, nil
}

func (h *History) Redo(b *buffer.Buffer) (*Command, error) {
	if len(h.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	if err := cmd.Redo(b); err != nil {
		return nil, err
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, cmd)
	return cmd, nil
}

func (h *History) CanUndo() bool  { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool  { return len(h.redoStack) > 0 }
func (h *History) UndoCount() int { return len(h.undoStack) }
func (h *History) RedoCount() int { return len(h.redoStack) }

func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}
