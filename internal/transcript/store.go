// internal/transcript/store.go
package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/barka/internal/types"
)

// Store is a JSONL-backed transcript archive. Formatted messages are stored
// per-conversation in transcripts/<conversationID>/messages.jsonl. Each Save
// rewrites the whole file: snapshots are re-formatted from scratch each
// sync, so there is nothing to append to.
type Store struct {
	root  string
	mu    sync.Mutex
	locks map[types.ConversationID]*sync.Mutex
}

// NewStore creates a file-backed transcript Store rooted at the given
// directory.
func NewStore(root string) *Store {
	return &Store{
		root:  root,
		locks: make(map[types.ConversationID]*sync.Mutex),
	}
}

// getLock returns the per-conversation mutex, creating one if it doesn't exist.
func (s *Store) getLock(id types.ConversationID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lock, ok := s.locks[id]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[id] = lock
	return lock
}

func (s *Store) messagesPath(id types.ConversationID) string {
	return filepath.Join(s.root, "transcripts", string(id), "messages.jsonl")
}

// Save atomically replaces the conversation's transcript with the given
// messages.
func (s *Store) Save(_ context.Context, id types.ConversationID, messages []*types.FormattedMessage) error {
	lock := s.getLock(id)
	lock.Lock()
	defer lock.Unlock()

	path := s.messagesPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp transcript: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("marshal message: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("write message: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp transcript: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp transcript: %w", err)
	}
	return nil
}

// Load returns the conversation's full archived transcript. A missing file
// is an empty transcript, not an error.
func (s *Store) Load(_ context.Context, id types.ConversationID) ([]*types.FormattedMessage, error) {
	lock := s.getLock(id)
	lock.Lock()
	defer lock.Unlock()

	return s.load(id)
}

// Tail returns the last N archived messages for the conversation.
func (s *Store) Tail(_ context.Context, id types.ConversationID, limit int) ([]*types.FormattedMessage, error) {
	lock := s.getLock(id)
	lock.Lock()
	defer lock.Unlock()

	messages, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// Count returns the number of archived messages for the conversation.
func (s *Store) Count(_ context.Context, id types.ConversationID) (int64, error) {
	lock := s.getLock(id)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(s.messagesPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var count int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan transcript: %w", err)
	}
	return count, nil
}

// load reads the JSONL file. Caller must hold the conversation lock.
func (s *Store) load(id types.ConversationID) ([]*types.FormattedMessage, error) {
	f, err := os.Open(s.messagesPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var messages []*types.FormattedMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg types.FormattedMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	return messages, nil
}
