// internal/transcript/stats.go
package transcript

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/barka/internal/types"
)

// Counter measures transcript sizes in tokens.
type Counter struct {
	tokenizer *tiktoken.Tiktoken
}

// Stats summarises one transcript.
type Stats struct {
	Messages        int
	VisibleMessages int
	TotalTokens     int
	FinalTokens     int
}

// NewCounter creates a token counter for the given model name, falling back
// to cl100k_base for unknown models.
func NewCounter(model string) (*Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Counter{tokenizer: enc}, nil
}

// Measure counts messages and tokens across a transcript. final may be nil
// when the agent has not answered yet.
func (c *Counter) Measure(messages []*types.FormattedMessage, final *types.FormattedMessage) Stats {
	stats := Stats{Messages: len(messages)}
	for _, msg := range messages {
		if msg.IsVisible && !msg.IsDebugOnly {
			stats.VisibleMessages++
		}
		stats.TotalTokens += c.countTokens(msg.Content)
	}
	if final != nil {
		stats.FinalTokens = c.countTokens(final.Content)
	}
	return stats
}

func (c *Counter) countTokens(text string) int {
	return len(c.tokenizer.Encode(text, nil, nil))
}
