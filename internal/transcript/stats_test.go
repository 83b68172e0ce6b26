// internal/transcript/stats_test.go
package transcript

import (
	"testing"

	"github.com/user/barka/internal/types"
)

func TestCounterMeasure(t *testing.T) {
	counter, err := NewCounter("gpt-4")
	if err != nil {
		// Tokenizer data is fetched on first use; skip when unreachable.
		t.Skipf("tokenizer unavailable: %v", err)
	}

	messages := []*types.FormattedMessage{
		{Content: "hello there", IsVisible: true},
		{Content: "🔧 Function Call: get_projects", IsVisible: true, IsDebugOnly: true},
	}
	final := &types.FormattedMessage{Content: "All done."}

	stats := counter.Measure(messages, final)
	if stats.Messages != 2 {
		t.Errorf("expected 2 messages, got %d", stats.Messages)
	}
	if stats.VisibleMessages != 1 {
		t.Errorf("debug-only messages are not visible: got %d", stats.VisibleMessages)
	}
	if stats.TotalTokens == 0 {
		t.Error("expected non-zero total tokens")
	}
	if stats.FinalTokens == 0 {
		t.Error("expected non-zero final tokens")
	}
}

func TestCounterMeasureNoFinal(t *testing.T) {
	counter, err := NewCounter("gpt-4")
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}

	stats := counter.Measure(nil, nil)
	if stats.Messages != 0 || stats.TotalTokens != 0 || stats.FinalTokens != 0 {
		t.Errorf("empty transcript should measure zero: %+v", stats)
	}
}
