package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kobzarvs/qbuffer/internal/logger"
)

// FileState stores the view state of a single file
type FileState struct {
	CaretOffset     int    `json:"caret_offset"`
	SelectionLength int    `json:"selection_length,omitempty"`
	TopScrollOffset int    `json:"top_scroll_offset,omitempty"`
	FindText        string `json:"find_text,omitempty"`
	ReplaceText     string `json:"replace_text,omitempty"`
	CaseSensitive   bool   `json:"case_sensitive,omitempty"`
}

// Session stores the complete workspace session state
type Session struct {
	Files      map[string]FileState `json:"files"`
	OpenFiles  []string             `json:"open_files,omitempty"`
	ActiveFile string               `json:"active_file,omitempty"`
	LastSaved  time.Time            `json:"last_saved"`
}

// Manager handles session persistence
type Manager struct {
	mu       sync.RWMutex
	session  Session
	path     string
	dirty    bool
	stopChan chan struct{}
	stopOnce sync.Once
}

const defaultAutosave = 15 * time.Second

// NewManager loads the session stored at path and starts autosaving every
// interval. A zero interval uses the default.
func NewManager(path string, interval time.Duration) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = defaultAutosave
	}

	m := &Manager{
		session: Session{
			Files: make(map[string]FileState),
		},
		path:     path,
		stopChan: make(chan struct{}),
	}

	m.load()

	go m.autosaveLoop(interval)

	return m, nil
}

// DefaultPath is session.json under the XDG state directory.
func DefaultPath() (string, error) {
	if v := os.Getenv("QBUFFER_STATE_HOME"); v != "" {
		return filepath.Join(v, "session.json"), nil
	}
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "qbuffer", "session.json"), nil
}

func (m *Manager) Path() string { return m.path }

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return // No existing session, start fresh
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("session file unreadable, starting fresh", "path", m.path, "error", err)
		return
	}
	if session.Files == nil {
		session.Files = make(map[string]FileState)
	}
	m.session = session
}

// Save persists the session to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return err
	}

	m.dirty = false
	return nil
}

// ForceSave saves even if not dirty
func (m *Manager) ForceSave() error {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
	return m.Save()
}

func (m *Manager) FileState(absPath string) (FileState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.session.Files[absPath]
	return state, ok
}

func (m *Manager) SetFileState(absPath string, state FileState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Files[absPath] = state
	m.dirty = true
}

// Forget drops everything stored about a file.
func (m *Manager) Forget(absPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.session.Files, absPath)
	if m.session.ActiveFile == absPath {
		m.session.ActiveFile = ""
	}
	m.dirty = true
}

func (m *Manager) SetOpenFiles(paths []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.OpenFiles = append([]string(nil), paths...)
	m.dirty = true
}

func (m *Manager) OpenFiles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.session.OpenFiles...)
}

func (m *Manager) SetActiveFile(absPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.ActiveFile = absPath
	m.dirty = true
}

func (m *Manager) ActiveFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.ActiveFile
}

func (m *Manager) autosaveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Save(); err != nil {
				logger.Warn("session autosave failed", "path", m.path, "error", err)
			}
		case <-m.stopChan:
			return
		}
	}
}

// Stop stops the autosave loop and saves final state
func (m *Manager) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		close(m.stopChan)
		err = m.ForceSave()
	})
	return err
}
