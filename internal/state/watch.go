// internal/state/watch.go
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/barka/internal/types"
)

// WatchTask names a conversation whose transcript is synced on a schedule
// and optionally delivered through a registered channel.
type WatchTask struct {
	Name           string                `json:"name"`
	ConversationID types.ConversationID  `json:"conversation_id"`
	Schedule       string                `json:"schedule,omitempty"`
	DeliverKey     types.ConversationKey `json:"deliver_key,omitempty"`
	Enabled        bool                  `json:"enabled"`
}

// WatchStore is a JSON-file-backed store for watch tasks.
type WatchStore struct {
	path string
	mu   sync.RWMutex
}

// NewWatchStore creates a new file-backed WatchStore at the given file path.
func NewWatchStore(path string) *WatchStore {
	return &WatchStore{path: path}
}

// Path returns the file path used by this store.
func (s *WatchStore) Path() string {
	return s.path
}

// List returns all watch tasks. Returns an empty slice if the file doesn't exist.
func (s *WatchStore) List() ([]*WatchTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		return []*WatchTask{}, nil
	}
	return tasks, nil
}

// Get finds a watch task by name. Returns an error if not found.
func (s *WatchStore) Get(name string) (*WatchTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, task := range tasks {
		if task.Name == name {
			return task, nil
		}
	}
	return nil, fmt.Errorf("watch task not found: %s", name)
}

// Add appends a watch task. Returns an error if a task with the same name
// already exists.
func (s *WatchStore) Add(task *WatchTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range tasks {
		if existing.Name == task.Name {
			return fmt.Errorf("watch task already exists: %s", task.Name)
		}
	}

	tasks = append(tasks, task)
	return s.save(tasks)
}

// Remove deletes a watch task by name. Returns an error if not found.
func (s *WatchStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return err
	}

	for i, task := range tasks {
		if task.Name == name {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return s.save(tasks)
		}
	}
	return fmt.Errorf("watch task not found: %s", name)
}

// SetEnabled toggles the enabled flag for a watch task. Returns an error if
// not found.
func (s *WatchStore) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if task.Name == name {
			task.Enabled = enabled
			return s.save(tasks)
		}
	}
	return fmt.Errorf("watch task not found: %s", name)
}

// load reads the JSON file and returns the task list. Returns nil if the
// file doesn't exist.
func (s *WatchStore) load() ([]*WatchTask, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read watch tasks file: %w", err)
	}

	var tasks []*WatchTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("unmarshal watch tasks: %w", err)
	}
	return tasks, nil
}

// save writes the task list to disk using atomic write (temp file + rename).
func (s *WatchStore) save(tasks []*WatchTask) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal watch tasks: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create watch tasks dir: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp watch tasks file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp watch tasks file: %w", err)
	}
	return nil
}
