// internal/types/interfaces.go
package types

import (
	"context"
)

type TranscriptStore interface {
	Save(ctx context.Context, id ConversationID, messages []*FormattedMessage) error
	Load(ctx context.Context, id ConversationID) ([]*FormattedMessage, error)
	Tail(ctx context.Context, id ConversationID, limit int) ([]*FormattedMessage, error)
	Count(ctx context.Context, id ConversationID) (int64, error)
}
