package watch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/kobzarvs/qbuffer/internal/logger"
)

type Kind int

const (
	// Changed carries the new file bytes.
	Changed Kind = iota
	// Failed reports a read error; the owner disables the buffer's watch.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Changed:
		return "changed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Message is produced by the watcher goroutine and consumed by whichever
// goroutine owns the buffers. Buffers are never touched from here.
type Message struct {
	Buffer uuid.UUID
	Path   string
	Kind   Kind
	Data   []byte
	Err    error
}

type Fingerprint struct {
	Mod  time.Time
	Size int64
	Hash string
}

type Options struct {
	Interval time.Duration
	Buffer   int
	// DisableNotify turns off fsnotify and relies on polling alone.
	DisableNotify bool
}

type entry struct {
	id     uuid.UUID
	path   string
	fp     Fingerprint
	failed bool
}

// Watcher polls tracked files and, where the platform allows, reacts to
// fsnotify events on their directories.
type Watcher struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	dirs     map[string]int
	fsw      *fsnotify.Watcher
	out      chan Message
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	started  bool
	closed   bool
}

const (
	defaultInterval = time.Second
	defaultBuffer   = 16
	hashPrefix      = "sha256:"
)

func New(opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	buf := opts.Buffer
	if buf <= 0 {
		buf = defaultBuffer
	}
	w := &Watcher{
		entries:  make(map[string]*entry),
		dirs:     make(map[string]int),
		out:      make(chan Message, buf),
		interval: interval,
		stop:     make(chan struct{}),
	}
	if !opts.DisableNotify {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Warn("fsnotify unavailable, polling only", "error", err)
		} else {
			w.fsw = fsw
		}
	}
	return w
}

func (w *Watcher) Messages() <-chan Message {
	return w.out
}

func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started || w.closed {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.loop()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	t := time.NewTicker(w.interval)
	defer t.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	if w.fsw != nil {
		events = w.fsw.Events
		errs = w.fsw.Errors
	}
	for {
		select {
		case <-w.stop:
			return
		case <-t.C:
			w.Scan()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.checkPath(ev.Name)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("fsnotify error", "error", err)
		}
	}
}

// Stop ends the watcher goroutine and closes the message channel.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.stop)
	w.mu.Unlock()

	w.wg.Wait()
	if w.fsw != nil {
		_ = w.fsw.Close()
	}
	close(w.out)
}

// Track starts watching path for buffer id. data is the content the buffer
// currently holds, so only later changes are reported. Tracking an already
// tracked path just refreshes its fingerprint.
func (w *Watcher) Track(id uuid.UUID, path string, data []byte) error {
	clean, ok := cleanPath(path)
	if !ok {
		return errors.New("watch: empty path")
	}
	fp := buildFingerprint(clean, data)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("watch: watcher stopped")
	}
	if e, ok := w.entries[clean]; ok {
		e.id = id
		e.fp = fp
		e.failed = false
		return nil
	}
	w.entries[clean] = &entry{id: id, path: clean, fp: fp}
	if w.fsw != nil {
		dir := filepath.Dir(clean)
		if w.dirs[dir] == 0 {
			if err := w.fsw.Add(dir); err != nil {
				logger.Warn("fsnotify add failed, polling", "dir", dir, "error", err)
				return nil
			}
		}
		w.dirs[dir]++
	}
	return nil
}

// Forget stops watching path.
func (w *Watcher) Forget(path string) {
	clean, ok := cleanPath(path)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[clean]; !ok {
		return
	}
	delete(w.entries, clean)
	if w.fsw == nil || w.closed {
		return
	}
	dir := filepath.Dir(clean)
	if n, ok := w.dirs[dir]; ok {
		if n <= 1 {
			delete(w.dirs, dir)
			_ = w.fsw.Remove(dir)
		} else {
			w.dirs[dir] = n - 1
		}
	}
}

func (w *Watcher) Tracking(path string) bool {
	clean, ok := cleanPath(path)
	if !ok {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok = w.entries[clean]
	return ok
}

// Scan checks every tracked file once.
func (w *Watcher) Scan() {
	if w.isClosed() {
		return
	}
	for _, e := range w.snapshot() {
		w.check(e, false)
	}
}

func (w *Watcher) checkPath(path string) {
	clean, ok := cleanPath(path)
	if !ok {
		return
	}
	w.mu.RLock()
	e, ok := w.entries[clean]
	var cp entry
	if ok {
		cp = *e
	}
	w.mu.RUnlock()
	if ok {
		w.check(&cp, true)
	}
}

func (w *Watcher) snapshot() []*entry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	list := make([]*entry, 0, len(w.entries))
	for _, e := range w.entries {
		cp := *e
		list = append(list, &cp)
	}
	return list
}

// check reads the file when its metadata moved (or always, when forced by
// an fsnotify event) and reports content whose hash differs.
func (w *Watcher) check(e *entry, force bool) {
	if e.failed {
		return
	}
	info, err := os.Stat(e.path)
	if err == nil && !force && metaSame(info, e.fp) {
		return
	}
	var data []byte
	if err == nil {
		data, err = os.ReadFile(e.path)
	}
	if err != nil {
		if !w.setFailed(e.path) {
			return
		}
		w.emit(Message{Buffer: e.id, Path: e.path, Kind: Failed, Err: err}, e.path, e.fp)
		return
	}
	next := fingerprintFromStat(info, data)
	if next.Hash == e.fp.Hash {
		w.update(e.path, next)
		return
	}
	w.update(e.path, next)
	w.emit(Message{Buffer: e.id, Path: e.path, Kind: Changed, Data: data}, e.path, e.fp)
}

// emit never blocks. A dropped message puts the previous fingerprint back
// so the next scan reports the change again.
func (w *Watcher) emit(msg Message, path string, prev Fingerprint) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return
	}
	select {
	case w.out <- msg:
		w.mu.RUnlock()
		return
	default:
	}
	w.mu.RUnlock()
	logger.Debug("watch message dropped", "path", path)
	w.mu.Lock()
	if e, ok := w.entries[path]; ok {
		e.fp = prev
		e.failed = false
	}
	w.mu.Unlock()
}

func (w *Watcher) setFailed(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[path]
	if !ok || e.failed {
		return false
	}
	e.failed = true
	return true
}

func (w *Watcher) update(path string, fp Fingerprint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entries[path]; ok {
		e.fp = fp
	}
}

func (w *Watcher) isClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}

func metaSame(info fs.FileInfo, fp Fingerprint) bool {
	return info.ModTime().Equal(fp.Mod) && info.Size() == fp.Size
}

func cleanPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	clean := filepath.Clean(path)
	if clean == "." {
		return "", false
	}
	return clean, true
}

func buildFingerprint(path string, data []byte) Fingerprint {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{Size: int64(len(data)), Hash: hashBytes(data)}
	}
	return fingerprintFromStat(info, data)
}

func fingerprintFromStat(info fs.FileInfo, data []byte) Fingerprint {
	return Fingerprint{
		Mod:  info.ModTime(),
		Size: int64(len(data)),
		Hash: hashBytes(data),
	}
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hashPrefix + hex.EncodeToString(sum[:])
}
