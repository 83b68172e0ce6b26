// Package poll runs adaptive-interval polling sessions against the session
// provider, one per watched conversation, behind a registry that owns their
// lifecycle.
package poll

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/user/barka/internal/types"
	"github.com/user/barka/pkg/provider"
)

// Service is the registry of active polling sessions. It is a constructed
// value owned by the caller, not a package-level singleton, and is safe for
// concurrent use: the map is the only shared state and stays behind the
// mutex. A weighted semaphore caps in-flight provider fetches across all
// sessions.
type Service struct {
	provider provider.Provider
	fetchSem *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[types.PollID]*Session
}

// NewService creates a Service that allows up to maxConcurrentFetches
// simultaneous provider requests across all sessions.
func NewService(p provider.Provider, maxConcurrentFetches ...int64) *Service {
	var concurrency int64 = 4
	if len(maxConcurrentFetches) > 0 && maxConcurrentFetches[0] > 0 {
		concurrency = maxConcurrentFetches[0]
	}
	return &Service{
		provider: p,
		fetchSem: semaphore.NewWeighted(concurrency),
		sessions: make(map[types.PollID]*Session),
	}
}

// Start initialises the service's context. Must be called before
// StartPolling.
func (s *Service) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
}

// Stop cancels the service context and stops every registered session.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.StopAll()
}

// StartPolling creates, registers and starts a new polling session for the
// conversation in opts, returning its caller-opaque poll id.
func (s *Service) StartPolling(opts SessionOptions) (types.PollID, error) {
	if opts.ConversationID == "" {
		return "", fmt.Errorf("conversation id is required")
	}
	if s.ctx == nil {
		return "", fmt.Errorf("service not started")
	}

	id := types.NewPollID()
	sess := newSession(id, opts, s.provider, s.fetchSem, s.remove)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	sess.start(s.ctx)
	return id, nil
}

// StopPolling stops and deregisters the named session. Unknown ids are a
// no-op, which makes repeated stops safe.
func (s *Service) StopPolling(id types.PollID) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if ok {
		// Outside the lock: Stop re-enters remove(), which takes it again.
		sess.Stop()
	}
}

// StopAll stops and clears every registered session. Used on teardown.
func (s *Service) StopAll() {
	s.mu.Lock()
	stopped := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		stopped = append(stopped, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range stopped {
		sess.Stop()
	}
}

// ActiveCount returns the number of registered sessions.
func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ActiveSessions returns a snapshot of the registered sessions.
func (s *Service) ActiveSessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// remove deregisters a session by id. Deleting an absent id is harmless, so
// a session finishing naturally and a concurrent StopPolling cannot
// double-deregister.
func (s *Service) remove(id types.PollID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
