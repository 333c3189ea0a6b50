package history

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kobzarvs/qbuffer/internal/buffer"
	"github.com/kobzarvs/qbuffer/internal/logger"
)

// Manager owns one History per buffer.
type Manager struct {
	mu         sync.Mutex
	maxEntries int
	histories  map[uuid.UUID]*History
}

func NewManager(maxEntries int) *Manager {
	return &Manager{
		maxEntries: maxEntries,
		histories:  make(map[uuid.UUID]*History),
	}
}

// For returns the history of buffer id, creating it on first use.
func (m *Manager) For(id uuid.UUID) *History {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.histories[id]
	if !ok {
		h = NewHistory(m.maxEntries)
		m.histories[id] = h
	}
	return h
}

// Do runs the named buffer operation as a command. The buffer's command
// flag is held for the duration, so saves and external reloads wait. It
// returns nil when the operation changed nothing. Unknown operation names
// panic.
func (m *Manager) Do(b *buffer.Buffer, op string, args ...any) *Command {
	before := b.Snapshot()
	func() {
		b.StartCommand()
		defer b.EndCommand()
		b.Apply(op, args...)
	}()
	after := b.Snapshot()
	if before == after {
		return nil
	}
	cmd := newCommand(b.ID(), op, args, before, after)
	m.For(b.ID()).Push(cmd)
	logger.Debug("command recorded", "buffer", b.ID(), "op", op, "content", before.Content != after.Content)
	return cmd
}

// Undo reverts the buffer's most recent command.
func (m *Manager) Undo(b *buffer.Buffer) (*Command, error) {
	return m.For(b.ID()).Undo(b)
}

func (m *Manager) Redo(b *buffer.Buffer) (*Command, error) {
	return m.For(b.ID()).Redo(b)
}

// Clear forgets the history of buffer id.
func (m *Manager) Clear(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.histories, id)
}
