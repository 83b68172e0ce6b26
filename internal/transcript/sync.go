// internal/transcript/sync.go
package transcript

import (
	"context"
	"fmt"

	"github.com/user/barka/internal/format"
	"github.com/user/barka/internal/types"
	"github.com/user/barka/pkg/provider"
)

// Sync fetches the conversation's current snapshot, formats it, and archives
// the result. Returns the formatted messages for the caller to reuse.
func Sync(ctx context.Context, p provider.Provider, store types.TranscriptStore, id types.ConversationID, opts format.Options) ([]*types.FormattedMessage, error) {
	snapshot, err := p.FetchSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	messages := format.Format(snapshot, opts)
	if err := store.Save(ctx, id, messages); err != nil {
		return nil, fmt.Errorf("archive transcript: %w", err)
	}
	return messages, nil
}
