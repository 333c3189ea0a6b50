package buffer

// Attr names an observable buffer attribute.
type Attr string

const (
	AttrContent         Attr = "content"
	AttrCaretOffset     Attr = "caret_offset"
	AttrSelectionLength Attr = "selection_length"
	AttrLineNumber      Attr = "line_number"
	AttrTopScrollOffset Attr = "top_scroll_offset"
)

// Change is delivered to observers synchronously, in the goroutine that
// made the assignment, before the assigning call returns.
type Change struct {
	Attr  Attr
	Value any
}

type Observer func(Change)

type observerEntry struct {
	id uint64
	fn Observer
}

type notifier struct {
	nextID    uint64
	observers map[Attr][]observerEntry
}

// Subscription is returned by Subscribe and removes the observer again.
type Subscription struct {
	attr Attr
	id   uint64
	n    *notifier
}

func (s *Subscription) Unsubscribe() {
	if s == nil || s.n == nil {
		return
	}
	s.n.remove(s.attr, s.id)
	s.n = nil
}

func (n *notifier) add(attr Attr, fn Observer) *Subscription {
	if n.observers == nil {
		n.observers = make(map[Attr][]observerEntry)
	}
	n.nextID++
	n.observers[attr] = append(n.observers[attr], observerEntry{id: n.nextID, fn: fn})
	return &Subscription{attr: attr, id: n.nextID, n: n}
}

func (n *notifier) remove(attr Attr, id uint64) {
	entries := n.observers[attr]
	for i, e := range entries {
		if e.id == id {
			n.observers[attr] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

func (n *notifier) has(attr Attr) bool { return len(n.observers[attr]) > 0 }

func (n *notifier) notify(attr Attr, value any) {
	entries := n.observers[attr]
	if len(entries) == 0 {
		return
	}
	snapshot := append([]observerEntry(nil), entries...)
	change := Change{Attr: attr, Value: value}
	for _, e := range snapshot {
		e.fn(change)
	}
}

func (n *notifier) clear() { n.observers = nil }

// Subscribe registers fn for changes to attr.
func (b *Buffer) Subscribe(attr Attr, fn Observer) *Subscription {
	return b.observers.add(attr, fn)
}

// RemoveAllObservers drops every subscription, e.g. when a view goes away.
func (b *Buffer) RemoveAllObservers() { b.observers.clear() }
