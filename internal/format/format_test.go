// internal/format/format_test.go
package format

import (
	"strings"
	"testing"

	"github.com/user/barka/internal/types"
)

func snapshot(events ...*types.Event) *types.SessionSnapshot {
	return &types.SessionSnapshot{
		Session: &types.Session{ID: "sess-1", Events: events},
	}
}

func TestFormatFanOut(t *testing.T) {
	ev := &types.Event{
		ID:        "evt-1",
		Author:    "project_manager_agent",
		Timestamp: 100.0,
		Content: &types.Content{Parts: []types.Part{
			{Text: "Let me check"},
			{FunctionCall: &types.FunctionCall{Name: "get_projects"}},
		}},
	}

	msgs := Format(snapshot(ev), Options{Filter: FilterAll, IncludeDebugInfo: true, SortOrder: SortAsc})
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}

	text, call := msgs[0], msgs[1]
	if text.Type != types.MessageText || call.Type != types.MessageFunctionCall {
		t.Fatalf("unexpected types: %s, %s", text.Type, call.Type)
	}
	if !strings.HasPrefix(text.ID, "evt-1:") || !strings.HasPrefix(call.ID, "evt-1:") {
		t.Errorf("ids should share the event prefix: %s, %s", text.ID, call.ID)
	}
	if text.ID == call.ID {
		t.Error("fan-out messages must have distinct ids")
	}
	if !(text.Timestamp < call.Timestamp) {
		t.Errorf("part order not preserved: %f >= %f", text.Timestamp, call.Timestamp)
	}
}

func TestFormatEmptyPartsPlaceholder(t *testing.T) {
	ev := &types.Event{
		ID:        "evt-2",
		Author:    "gaia",
		Timestamp: 50.0,
		Content:   &types.Content{Parts: []types.Part{}},
	}

	msgs := Format(snapshot(ev), Options{
		Filter:                FilterAll,
		IncludeDebugInfo:      true,
		IncludeSystemMessages: true,
		SortOrder:             SortAsc,
	})
	if len(msgs) != 1 {
		t.Fatalf("expected exactly 1 placeholder, got %d", len(msgs))
	}
	if msgs[0].IsVisible || !msgs[0].IsDebugOnly {
		t.Errorf("placeholder must be invisible and debug-only: %+v", msgs[0])
	}

	// Without debug inclusion the placeholder is filtered out entirely.
	msgs = Format(snapshot(ev), DefaultOptions())
	if len(msgs) != 0 {
		t.Errorf("expected placeholder hidden by default, got %d messages", len(msgs))
	}
}

func TestFormatTransferMessage(t *testing.T) {
	ev := &types.Event{
		ID:        "evt-3",
		Author:    "gaia",
		Timestamp: 10.0,
		Content: &types.Content{Parts: []types.Part{
			{Text: "Handing off"},
		}},
		Actions: &types.EventActions{TransferToAgent: "discovery_agent"},
	}

	msgs := Format(snapshot(ev), Options{Filter: FilterAll, IncludeSystemMessages: true, SortOrder: SortAsc})
	if len(msgs) != 2 {
		t.Fatalf("expected text + transfer, got %d", len(msgs))
	}

	transfer := msgs[1]
	if transfer.Type != types.MessageTransfer {
		t.Fatalf("expected transfer message, got %s", transfer.Type)
	}
	if transfer.IsDebugOnly {
		t.Error("transfers are user-facing, not debug-only")
	}
	if transfer.Content != "🔄 Agent Transfer: Routing to discovery_agent agent" {
		t.Errorf("unexpected transfer content: %q", transfer.Content)
	}
	if transfer.AgentTransfer == nil || transfer.AgentTransfer.To != "discovery_agent" {
		t.Errorf("unexpected transfer payload: %+v", transfer.AgentTransfer)
	}
	if !(msgs[0].Timestamp < transfer.Timestamp) {
		t.Error("transfer must sort after the event's parts")
	}
}

func TestFormatFunctionInternalsHiddenByDefault(t *testing.T) {
	ev := &types.Event{
		ID:        "evt-4",
		Author:    "project_manager_agent",
		Timestamp: 5.0,
		Content: &types.Content{Parts: []types.Part{
			{FunctionCall: &types.FunctionCall{Name: "get_tasks"}},
			{FunctionResponse: &types.FunctionResponse{Name: "get_tasks"}},
			{Text: "Found 3 tasks"},
		}},
	}

	msgs := Format(snapshot(ev), DefaultOptions())
	if len(msgs) != 1 {
		t.Fatalf("expected only the text message, got %d", len(msgs))
	}
	if msgs[0].Content != "Found 3 tasks" {
		t.Errorf("unexpected content: %q", msgs[0].Content)
	}

	msgs = Format(snapshot(ev), Options{Filter: FilterAll, IncludeDebugInfo: true, SortOrder: SortAsc})
	if len(msgs) != 3 {
		t.Fatalf("expected all 3 with debug enabled, got %d", len(msgs))
	}
}

func TestFormatFilters(t *testing.T) {
	ev := &types.Event{
		ID:        "evt-5",
		Author:    "project_manager_agent",
		Timestamp: 1.0,
		Content: &types.Content{Parts: []types.Part{
			{Text: "hello"},
			{FunctionCall: &types.FunctionCall{Name: "get_projects"}},
		}},
		Actions: &types.EventActions{TransferToAgent: "client_agent"},
	}
	opts := Options{IncludeDebugInfo: true, IncludeSystemMessages: true, SortOrder: SortAsc}

	opts.Filter = FilterTextOnly
	if msgs := Format(snapshot(ev), opts); len(msgs) != 1 || msgs[0].Type != types.MessageText {
		t.Errorf("text_only filter failed: %+v", msgs)
	}

	opts.Filter = FilterFunctionCalls
	if msgs := Format(snapshot(ev), opts); len(msgs) != 1 || msgs[0].Type != types.MessageFunctionCall {
		t.Errorf("function_calls filter failed: %+v", msgs)
	}

	opts.Filter = FilterTransfers
	if msgs := Format(snapshot(ev), opts); len(msgs) != 1 || msgs[0].Type != types.MessageTransfer {
		t.Errorf("transfers filter failed: %+v", msgs)
	}

	opts.Filter = FilterErrors
	if msgs := Format(snapshot(ev), opts); len(msgs) != 0 {
		t.Errorf("errors filter should drop everything here, got %d", len(msgs))
	}
}

func TestFormatSortDescending(t *testing.T) {
	early := &types.Event{
		ID: "evt-a", Author: "user", Timestamp: 1.0,
		Content: &types.Content{Parts: []types.Part{{Text: "first"}}},
	}
	late := &types.Event{
		ID: "evt-b", Author: "barka", Timestamp: 2.0,
		Content: &types.Content{Parts: []types.Part{{Text: "second"}}},
	}

	msgs := Format(snapshot(early, late), Options{Filter: FilterAll, SortOrder: SortDesc})
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "second" {
		t.Errorf("descending sort failed, first message is %q", msgs[0].Content)
	}
}

func TestFormatUnrecognisedPartSkipped(t *testing.T) {
	ev := &types.Event{
		ID: "evt-6", Author: "barka", Timestamp: 1.0,
		Content: &types.Content{Parts: []types.Part{
			{}, // no recognised field set
			{Text: "still here"},
		}},
	}

	msgs := Format(snapshot(ev), DefaultOptions())
	if len(msgs) != 1 || msgs[0].Content != "still here" {
		t.Errorf("expected malformed part skipped, got %+v", msgs)
	}
}

func TestFormatNilSnapshot(t *testing.T) {
	if msgs := Format(nil, DefaultOptions()); len(msgs) != 0 {
		t.Errorf("nil snapshot should format to nothing, got %d", len(msgs))
	}
}

func TestParseFilter(t *testing.T) {
	if f, err := ParseFilter(""); err != nil || f != FilterAll {
		t.Errorf("empty filter should default to all, got %v/%v", f, err)
	}
	if _, err := ParseFilter("bogus"); err == nil {
		t.Error("expected error for unknown filter")
	}
}
