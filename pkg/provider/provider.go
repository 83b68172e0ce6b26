// Package provider defines the client-side contract for the remote agent
// session provider. The provider owns all persistence; this module only ever
// reads conversation-scoped session snapshots from it.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/user/barka/internal/types"
)

// ErrNoSession means the conversation exists but the agent runtime has not
// bootstrapped a session for it yet. Callers treat this as "no data yet",
// not as a failure.
var ErrNoSession = errors.New("session not created yet")

// ErrUnavailable means the provider itself is down (503-equivalent).
var ErrUnavailable = errors.New("session provider unavailable")

// Provider fetches the current snapshot of a conversation's agent session.
// Every fetch returns a fresh, immutable snapshot; there is no incremental
// diffing.
type Provider interface {
	FetchSession(ctx context.Context, id types.ConversationID) (*types.SessionSnapshot, error)
}

// Config holds connection settings for a provider client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}
