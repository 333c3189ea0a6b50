package workspace

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kobzarvs/qbuffer/internal/buffer"
	"github.com/kobzarvs/qbuffer/internal/config"
	"github.com/kobzarvs/qbuffer/internal/history"
	"github.com/kobzarvs/qbuffer/internal/language"
	"github.com/kobzarvs/qbuffer/internal/logger"
	"github.com/kobzarvs/qbuffer/internal/session"
	"github.com/kobzarvs/qbuffer/internal/watch"
)

// Workspace owns the open buffers and everything attached to them. All
// methods must be called from one goroutine; the watcher only hands it
// messages.
type Workspace struct {
	cfg      config.Config
	root     string
	detector *language.Detector
	history  *history.Manager
	watcher  *watch.Watcher
	session  *session.Manager

	buffers []*buffer.Buffer
	byPath  map[string]*buffer.Buffer
	byID    map[uuid.UUID]*buffer.Buffer
	pending map[uuid.UUID][]byte
}

type Option func(*Workspace)

// WithSession persists per-file view state through m.
func WithSession(m *session.Manager) Option {
	return func(w *Workspace) { w.session = m }
}

// WithRoot sets the directory paths are displayed relative to.
func WithRoot(dir string) Option {
	return func(w *Workspace) { w.root = dir }
}

func New(cfg config.Config, langs config.Languages, opts ...Option) *Workspace {
	w := &Workspace{
		cfg:      cfg,
		detector: language.NewDetector(langs, cfg.Editor.ScratchLanguage),
		history:  history.NewManager(cfg.History.Limit),
		byPath:   make(map[string]*buffer.Buffer),
		byID:     make(map[uuid.UUID]*buffer.Buffer),
		pending:  make(map[uuid.UUID][]byte),
	}
	for _, opt := range opts {
		opt(w)
	}
	if cfg.Watch.On() {
		w.watcher = watch.New(watch.Options{
			Interval: cfg.Watch.PollInterval.Duration,
			Buffer:   cfg.Watch.Buffer,
		})
		w.watcher.Start()
	}
	return w
}

func (w *Workspace) bufferOptions() buffer.Options {
	return buffer.Options{
		ExpandTabs:    w.cfg.Editor.TabsExpanded(),
		CaseSensitive: w.cfg.Editor.SearchCaseSensitive(),
	}
}

func (w *Workspace) Root() string { return w.root }

// Open returns the buffer for path, loading it on first use. A path has at
// most one live buffer.
func (w *Workspace) Open(path string) (*buffer.Buffer, error) {
	if path == "" {
		return w.Scratch(), nil
	}
	if !filepath.IsAbs(path) && w.root != "" {
		path = filepath.Join(w.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if b, ok := w.byPath[abs]; ok {
		w.activate(b)
		return b, nil
	}
	b, err := buffer.Open(abs, w.bufferOptions())
	if err != nil {
		return nil, err
	}
	w.restoreState(b)
	if w.watcher != nil && !b.WatchDisabled() {
		if err := w.watcher.Track(b.ID(), b.Path(), []byte(b.Content())); err != nil {
			logger.Warn("watch not started", "path", b.Path(), "error", err)
		}
	}
	w.add(b)
	w.byPath[abs] = b
	w.activate(b)
	logger.Info("buffer opened", "path", abs, "language", w.Language(b))
	return b, nil
}

// Scratch opens a new unsaved buffer.
func (w *Workspace) Scratch() *buffer.Buffer {
	b := buffer.New("", w.bufferOptions())
	w.add(b)
	return b
}

func (w *Workspace) add(b *buffer.Buffer) {
	w.buffers = append(w.buffers, b)
	w.byID[b.ID()] = b
	w.syncOpenFiles()
}

// Close stops the buffer's watch, drops its history and resets it.
func (w *Workspace) Close(b *buffer.Buffer) {
	if _, ok := w.byID[b.ID()]; !ok {
		return
	}
	w.storeState(b)
	if w.watcher != nil && !b.IsScratch() {
		w.watcher.Forget(b.Path())
	}
	w.history.Clear(b.ID())
	delete(w.pending, b.ID())
	delete(w.byID, b.ID())
	if !b.IsScratch() {
		delete(w.byPath, b.Path())
	}
	for i, other := range w.buffers {
		if other == b {
			w.buffers = append(w.buffers[:i], w.buffers[i+1:]...)
			break
		}
	}
	b.Reset()
	w.syncOpenFiles()
	logger.Debug("buffer closed", "name", b.Name(), "path", b.Path())
}

func (w *Workspace) Buffers() []*buffer.Buffer {
	return append([]*buffer.Buffer(nil), w.buffers...)
}

func (w *Workspace) Lookup(id uuid.UUID) *buffer.Buffer { return w.byID[id] }

func (w *Workspace) Language(b *buffer.Buffer) language.Tag {
	return w.detector.Detect(b.Path(), b.Content())
}

func (w *Workspace) History(b *buffer.Buffer) *history.History {
	return w.history.For(b.ID())
}

// Do runs a buffer operation through history.
func (w *Workspace) Do(b *buffer.Buffer, op string, args ...any) *history.Command {
	cmd := w.history.Do(b, op, args...)
	w.retryPending(b)
	return cmd
}

func (w *Workspace) Undo(b *buffer.Buffer) (*history.Command, error) {
	cmd, err := w.history.Undo(b)
	w.retryPending(b)
	return cmd, err
}

func (w *Workspace) Redo(b *buffer.Buffer) (*history.Command, error) {
	cmd, err := w.history.Redo(b)
	w.retryPending(b)
	return cmd, err
}

// Save writes the buffer and refreshes its watch fingerprint so the write
// does not come back as an external change.
func (w *Workspace) Save(b *buffer.Buffer) bool {
	if !b.Save() {
		return false
	}
	w.retrack(b)
	return true
}

func (w *Workspace) SaveRaw(b *buffer.Buffer) bool {
	if !b.SaveRaw() {
		return false
	}
	w.retrack(b)
	return true
}

func (w *Workspace) retrack(b *buffer.Buffer) {
	if w.watcher == nil || b.WatchDisabled() {
		return
	}
	if err := w.watcher.Track(b.ID(), b.Path(), []byte(b.Content())); err != nil {
		logger.Warn("watch refresh failed", "path", b.Path(), "error", err)
	}
}

// Rename moves the buffer's file and keeps the path index and watch in step.
func (w *Workspace) Rename(b *buffer.Buffer, name string) error {
	old := b.Path()
	if err := b.Rename(name); err != nil {
		return err
	}
	if b.IsScratch() {
		return nil
	}
	delete(w.byPath, old)
	w.byPath[b.Path()] = b
	if w.session != nil {
		w.session.Forget(old)
	}
	if w.watcher != nil {
		w.watcher.Forget(old)
		w.retrack(b)
	}
	w.syncOpenFiles()
	return nil
}

// Delete removes the buffer's file and closes it.
func (w *Workspace) Delete(b *buffer.Buffer) error {
	if err := b.Delete(); err != nil {
		return err
	}
	path := b.Path()
	w.Close(b)
	if w.session != nil && path != "" {
		w.session.Forget(path)
	}
	return nil
}

// Shutdown records view state, stops the watcher and flushes the session.
func (w *Workspace) Shutdown() {
	for _, b := range w.buffers {
		w.storeState(b)
	}
	if w.watcher != nil {
		w.watcher.Stop()
		w.watcher = nil
	}
	if w.session != nil {
		if err := w.session.Stop(); err != nil {
			logger.Warn("session save failed", "error", err)
		}
	}
}

func (w *Workspace) activate(b *buffer.Buffer) {
	if w.session != nil && !b.IsScratch() {
		w.session.SetActiveFile(b.Path())
	}
}

func (w *Workspace) syncOpenFiles() {
	if w.session == nil {
		return
	}
	paths := make([]string, 0, len(w.buffers))
	for _, b := range w.buffers {
		if !b.IsScratch() {
			paths = append(paths, b.Path())
		}
	}
	w.session.SetOpenFiles(paths)
}

func (w *Workspace) storeState(b *buffer.Buffer) {
	if w.session == nil || b.IsScratch() {
		return
	}
	p := b.Properties()
	w.session.SetFileState(b.Path(), session.FileState{
		CaretOffset:     p.CaretOffset,
		SelectionLength: p.SelectionLength,
		TopScrollOffset: p.TopScrollOffset,
		FindText:        p.FindText,
		ReplaceText:     p.ReplaceText,
		CaseSensitive:   p.CaseSensitive,
	})
}

func (w *Workspace) restoreState(b *buffer.Buffer) {
	if w.session == nil {
		return
	}
	st, ok := w.session.FileState(b.Path())
	if !ok {
		return
	}
	b.RestoreProperties(buffer.Properties{
		FindText:        st.FindText,
		ReplaceText:     st.ReplaceText,
		CaseSensitive:   st.CaseSensitive,
		TopScrollOffset: st.TopScrollOffset,
		CaretOffset:     st.CaretOffset,
		SelectionLength: st.SelectionLength,
	})
}

// RestoreOpenFiles reopens the files the session had open. Files that are
// gone are skipped.
func (w *Workspace) RestoreOpenFiles() []*buffer.Buffer {
	if w.session == nil {
		return nil
	}
	var opened []*buffer.Buffer
	for _, path := range w.session.OpenFiles() {
		b, err := w.Open(path)
		if err != nil {
			logger.Debug("session file skipped", "path", path, "error", err)
			continue
		}
		opened = append(opened, b)
	}
	if active := w.session.ActiveFile(); active != "" {
		if b, ok := w.byPath[active]; ok {
			w.activate(b)
		}
	}
	return opened
}

// Watching reports whether external changes to b's file are still being
// picked up.
func (w *Workspace) Watching(b *buffer.Buffer) bool {
	return w.watcher != nil && !b.WatchDisabled() && w.watcher.Tracking(b.Path())
}

// Messages is the watcher's channel, nil when watching is off.
func (w *Workspace) Messages() <-chan watch.Message {
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Messages()
}

// Apply reconciles one watcher message with its buffer.
func (w *Workspace) Apply(msg watch.Message) buffer.Reconciled {
	b, ok := w.byID[msg.Buffer]
	if !ok {
		return buffer.Unchanged
	}
	if msg.Kind == watch.Failed {
		logger.Warn("external read failed, watch disabled", "path", msg.Path, "error", msg.Err)
		b.DisableWatch()
		w.forget(b)
		return buffer.Disabled
	}
	return w.reconcile(b, msg.Data)
}

func (w *Workspace) reconcile(b *buffer.Buffer, data []byte) buffer.Reconciled {
	r := b.Reconcile(data)
	switch r {
	case buffer.Reloaded:
		delete(w.pending, b.ID())
		w.history.Clear(b.ID())
	case buffer.Deferred:
		w.pending[b.ID()] = data
	case buffer.Disabled:
		delete(w.pending, b.ID())
		w.forget(b)
	case buffer.Unchanged:
		delete(w.pending, b.ID())
	}
	return r
}

func (w *Workspace) forget(b *buffer.Buffer) {
	if w.watcher != nil && !b.IsScratch() {
		w.watcher.Forget(b.Path())
	}
}

func (w *Workspace) retryPending(b *buffer.Buffer) {
	data, ok := w.pending[b.ID()]
	if !ok || b.CommandInProgress() {
		return
	}
	w.reconcile(b, data)
}

// Pump applies every message already queued without blocking and returns
// how many there were.
func (w *Workspace) Pump() int {
	for id := range w.pending {
		if b, ok := w.byID[id]; ok {
			w.retryPending(b)
		}
	}
	ch := w.Messages()
	if ch == nil {
		return 0
	}
	n := 0
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return n
			}
			w.Apply(msg)
			n++
		default:
			return n
		}
	}
}

// Run applies watcher messages until ctx is done or the watcher stops.
func (w *Workspace) Run(ctx context.Context) error {
	ch := w.Messages()
	if ch == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			w.Apply(msg)
		}
	}
}
