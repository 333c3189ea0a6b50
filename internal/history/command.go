package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kobzarvs/qbuffer/internal/buffer"
)

// Command is one recorded operation on one buffer.
type Command struct {
	Name   string
	Args   []any
	Target uuid.UUID

	Before buffer.State
	After  buffer.State

	Timestamp time.Time
}

func newCommand(target uuid.UUID, name string, args []any, before, after buffer.State) *Command {
	return &Command{
		Name:      name,
		Args:      args,
		Target:    target,
		Before:    before,
		After:     after,
		Timestamp: time.Now(),
	}
}

// Description names the command for status lines.
func (c *Command) Description() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return fmt.Sprintf("%s %v", c.Name, c.Args)
}

// Undo puts the buffer back to the state before the command ran.
func (c *Command) Undo(b *buffer.Buffer) error {
	return c.restore(b, c.Before)
}

// Redo puts the buffer into the state the command produced.
func (c *Command) Redo(b *buffer.Buffer) error {
	return c.restore(b, c.After)
}

func (c *Command) restore(b *buffer.Buffer, s buffer.State) error {
	if b.ID() != c.Target {
		return fmt.Errorf("%s: command belongs to buffer %s, not %s", c.Name, c.Target, b.ID())
	}
	b.StartCommand()
	defer b.EndCommand()
	b.Restore(s)
	return nil
}
