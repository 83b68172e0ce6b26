// internal/types/ids.go
package types

import (
	"strings"

	"github.com/google/uuid"
)

type ConversationID string
type ConversationKey string
type PollID string
type StatusID string
type WatchID string

func NewPollID() PollID {
	return PollID(uuid.New().String())
}

func NewStatusID() StatusID {
	return StatusID(uuid.New().String())
}

func NewWatchID() WatchID {
	return WatchID(uuid.New().String())
}

func NewConversationKey(parts ...string) ConversationKey {
	return ConversationKey(strings.Join(parts, ":"))
}
