// internal/poll/session.go
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/user/barka/internal/consolidate"
	"github.com/user/barka/internal/types"
	"github.com/user/barka/pkg/provider"
)

// DefaultMaxDuration is the wall-clock budget for one polling session.
const DefaultMaxDuration = 100 * time.Second

// Callbacks are invoked from the session's own goroutine. All are optional
// and best-effort: callers re-render from the latest consolidation they
// hold, so a dropped callback never corrupts state.
type Callbacks struct {
	OnStatusUpdate func(*types.Consolidation)
	OnComplete     func(*types.Consolidation)
	OnError        func(error)
	OnTimeout      func()
}

// SessionOptions configures one polling session. Zero values fall back to
// the documented defaults at construction.
type SessionOptions struct {
	ConversationID types.ConversationID
	MaxDuration    time.Duration
	Interval       *IntervalPolicy
	Consolidate    consolidate.Options
	Callbacks      Callbacks
}

// Session is one conversation's adaptive-interval polling loop. Cycles are
// strictly sequential: the next cycle is scheduled only after the current
// fetch and its processing finish, so there is at most one in-flight request
// per session.
type Session struct {
	id       types.PollID
	opts     SessionOptions
	provider provider.Provider
	fetchSem *semaphore.Weighted

	startTime      time.Time
	interval       atomic.Int64 // nanoseconds, readable while the loop runs
	lastEventCount int

	active     atomic.Bool
	stopOnce   sync.Once
	stopCh     chan struct{}
	deregister func(types.PollID)
}

func newSession(id types.PollID, opts SessionOptions, p provider.Provider, sem *semaphore.Weighted, deregister func(types.PollID)) *Session {
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultMaxDuration
	}
	if opts.Interval == nil {
		opts.Interval = DefaultIntervalPolicy()
	}
	s := &Session{
		id:         id,
		opts:       opts,
		provider:   p,
		fetchSem:   sem,
		stopCh:     make(chan struct{}),
		deregister: deregister,
	}
	s.interval.Store(int64(opts.Interval.Initial))
	return s
}

// ID returns the caller-opaque poll identifier.
func (s *Session) ID() types.PollID { return s.id }

// ConversationID returns the conversation this session watches.
func (s *Session) ConversationID() types.ConversationID { return s.opts.ConversationID }

// Active reports whether the session is still polling.
func (s *Session) Active() bool { return s.active.Load() }

// CurrentInterval returns the delay that will precede the next cycle.
func (s *Session) CurrentInterval() time.Duration {
	return time.Duration(s.interval.Load())
}

// Stop cooperatively cancels the session. Idempotent: safe to call more
// than once and after natural completion. An in-flight fetch is not interrupted; its
// result is discarded when it resolves.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	if s.active.CompareAndSwap(true, false) {
		s.deregister(s.id)
	}
}

// start marks the session active and launches the poll loop.
func (s *Session) start(ctx context.Context) {
	s.startTime = time.Now()
	s.active.Store(true)
	go s.run(ctx)
}

func (s *Session) run(ctx context.Context) {
	// First cycle fires immediately; the adaptive interval governs the rest.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-s.stopCh:
			return
		case <-timer.C:
		}

		if !s.active.Load() {
			return
		}

		// Wall-clock budget, checked at the top of every cycle. A hanging
		// fetch inside a cycle is not preempted; only the next cycle is.
		if time.Since(s.startTime) > s.opts.MaxDuration {
			if s.finish() {
				slog.Warn("polling session timed out",
					"poll_id", string(s.id),
					"conversation_id", string(s.opts.ConversationID),
					"max_duration", s.opts.MaxDuration)
				if cb := s.opts.Callbacks.OnTimeout; cb != nil {
					cb()
				}
			}
			return
		}

		snapshot, err := s.fetch(ctx)

		// A stop may have raced with the fetch; discard the result.
		if !s.active.Load() {
			return
		}

		if err != nil {
			s.handleFetchError(err)
		} else {
			if done := s.handleSnapshot(snapshot); done {
				return
			}
		}

		timer.Reset(s.CurrentInterval())
	}
}

func (s *Session) fetch(ctx context.Context) (*types.SessionSnapshot, error) {
	if s.fetchSem != nil {
		if err := s.fetchSem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer s.fetchSem.Release(1)
	}
	return s.provider.FetchSession(ctx, s.opts.ConversationID)
}

func (s *Session) handleFetchError(err error) {
	if errors.Is(err, provider.ErrNoSession) {
		// Bootstrap window between conversation creation and the runtime's
		// session appearing. Not an error; keep the idle cadence.
		slog.Debug("session not ready yet",
			"poll_id", string(s.id),
			"conversation_id", string(s.opts.ConversationID))
		s.interval.Store(int64(s.opts.Interval.Next(s.CurrentInterval(), false)))
		return
	}

	slog.Warn("session fetch failed, backing off",
		"poll_id", string(s.id),
		"conversation_id", string(s.opts.ConversationID),
		"error", err)
	if cb := s.opts.Callbacks.OnError; cb != nil {
		cb(err)
	}
	s.interval.Store(int64(s.opts.Interval.NextAfterError(s.CurrentInterval())))
}

// handleSnapshot consolidates a fresh snapshot and reports whether the
// session reached its terminal completed state.
func (s *Session) handleSnapshot(snapshot *types.SessionSnapshot) bool {
	events := snapshot.Events()

	grew := len(events) > s.lastEventCount
	s.lastEventCount = len(events)

	result := consolidate.Consolidate(events, s.opts.Consolidate)

	if consolidate.IsProcessingComplete(events) && result.FinalMessage != nil {
		if s.finish() {
			if cb := s.opts.Callbacks.OnComplete; cb != nil {
				cb(result)
			}
		}
		return true
	}

	if cb := s.opts.Callbacks.OnStatusUpdate; cb != nil {
		cb(result)
	}
	s.interval.Store(int64(s.opts.Interval.Next(s.CurrentInterval(), grew)))
	return false
}

// finish transitions to a terminal state exactly once, deregistering from
// the service. Returns false if Stop() already won the race.
func (s *Session) finish() bool {
	if !s.active.CompareAndSwap(true, false) {
		return false
	}
	s.deregister(s.id)
	return true
}
