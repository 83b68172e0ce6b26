// internal/format/format.go
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/user/barka/internal/types"
)

// Filter selects which message types survive formatting.
type Filter string

const (
	FilterAll           Filter = "all"
	FilterTextOnly      Filter = "text_only"
	FilterFunctionCalls Filter = "function_calls"
	FilterTransfers     Filter = "transfers"
	FilterErrors        Filter = "errors"
)

// SortOrder is the final ordering of the transcript by timestamp.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Options controls transcript expansion. The filter is applied after full
// expansion, then the two inclusion flags, then the sort.
type Options struct {
	Filter                Filter
	IncludeDebugInfo      bool
	IncludeSystemMessages bool
	SortOrder             SortOrder
}

// DefaultOptions is the end-user view: all types, no debug internals, no
// system messages, oldest first.
func DefaultOptions() Options {
	return Options{
		Filter:    FilterAll,
		SortOrder: SortAsc,
	}
}

// partSpacing spreads a single event's parts over distinct synthetic
// timestamps so intra-event order survives the final sort without colliding
// with neighbouring events.
const partSpacing = 0.001

// Format expands a session snapshot into an ordered sequence of
// display-ready messages. Each raw event yields zero or more messages; an
// event with no content parts still yields a debug placeholder so the
// transcript stays traceable back to the event log.
func Format(snapshot *types.SessionSnapshot, opts Options) []*types.FormattedMessage {
	var out []*types.FormattedMessage
	for _, ev := range snapshot.Events() {
		if ev == nil {
			continue
		}
		out = append(out, expandEvent(ev)...)
	}

	out = applyFilter(out, opts.Filter)

	kept := out[:0]
	for _, m := range out {
		if m.IsDebugOnly && !opts.IncludeDebugInfo {
			continue
		}
		if m.AuthorType == types.AuthorSystem && !opts.IncludeSystemMessages {
			continue
		}
		kept = append(kept, m)
	}
	out = kept

	sort.SliceStable(out, func(i, j int) bool {
		if opts.SortOrder == SortDesc {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].Timestamp < out[j].Timestamp
	})

	return out
}

// expandEvent fans one event out into formatted messages in part order,
// followed by a transfer message when the event carries a transfer action.
func expandEvent(ev *types.Event) []*types.FormattedMessage {
	var msgs []*types.FormattedMessage

	parts := 0
	if ev.Content != nil {
		parts = len(ev.Content.Parts)
	}

	if parts == 0 {
		// Placeholder so empty events are never silently dropped. Forced to
		// system so it only ever shows in debug views.
		msgs = append(msgs, &types.FormattedMessage{
			ID:           ev.ID + ":empty",
			Author:       ev.Author,
			AuthorType:   types.AuthorSystem,
			Content:      "(event with no content)",
			Timestamp:    ev.Timestamp,
			TimestampISO: types.ISOTimestamp(ev.Timestamp),
			Type:         types.MessageText,
			IsVisible:    false,
			IsDebugOnly:  true,
		})
	} else {
		for i, part := range ev.Content.Parts {
			if m := formatPart(ev, part, i); m != nil {
				msgs = append(msgs, m)
			}
		}
	}

	if ev.Actions != nil && ev.Actions.TransferToAgent != "" {
		target := ev.Actions.TransferToAgent
		ts := ev.Timestamp + float64(parts)*partSpacing
		msgs = append(msgs, &types.FormattedMessage{
			ID:           ev.ID + ":transfer",
			Author:       ev.Author,
			AuthorType:   ClassifyAuthor(ev.Author),
			Content:      fmt.Sprintf("🔄 Agent Transfer: Routing to %s agent", target),
			Timestamp:    ts,
			TimestampISO: types.ISOTimestamp(ts),
			Type:         types.MessageTransfer,
			AgentTransfer: &types.AgentTransfer{
				From: ev.Author,
				To:   target,
			},
			IsVisible: true,
			// Transfers are shown to end users, unlike function internals.
			IsDebugOnly: false,
		})
	}

	return msgs
}

// formatPart turns one content part into a formatted message. Parts with no
// recognised field are skipped rather than failing the whole snapshot.
func formatPart(ev *types.Event, part types.Part, index int) *types.FormattedMessage {
	ts := ev.Timestamp + float64(index)*partSpacing
	msg := &types.FormattedMessage{
		Author:       ev.Author,
		AuthorType:   ClassifyAuthor(ev.Author),
		Timestamp:    ts,
		TimestampISO: types.ISOTimestamp(ts),
		IsVisible:    true,
	}

	switch {
	case part.Text != "":
		msg.ID = fmt.Sprintf("%s:text:%d", ev.ID, index)
		msg.Type = types.MessageText
		msg.Content = part.Text

	case part.FunctionCall != nil:
		msg.ID = fmt.Sprintf("%s:call:%d", ev.ID, index)
		msg.Type = types.MessageFunctionCall
		msg.Content = "🔧 Function Call: " + part.FunctionCall.Name
		msg.FunctionCall = part.FunctionCall
		msg.IsDebugOnly = true

	case part.FunctionResponse != nil:
		msg.ID = fmt.Sprintf("%s:response:%d", ev.ID, index)
		msg.Type = types.MessageFunctionResponse
		msg.Content = "📋 Function Response: " + part.FunctionResponse.Name
		msg.FunctionResponse = part.FunctionResponse
		msg.IsDebugOnly = true

	case len(part.FileData) > 0:
		msg.ID = fmt.Sprintf("%s:file:%d", ev.ID, index)
		msg.Type = types.MessageText
		msg.Content = "📎 File attachment"
		msg.IsDebugOnly = true

	case len(part.InlineData) > 0:
		msg.ID = fmt.Sprintf("%s:inline:%d", ev.ID, index)
		msg.Type = types.MessageText
		msg.Content = "📎 Inline data"
		msg.IsDebugOnly = true

	case len(part.ExecutableCode) > 0:
		msg.ID = fmt.Sprintf("%s:code:%d", ev.ID, index)
		msg.Type = types.MessageText
		msg.Content = "💻 Executable code"
		msg.IsDebugOnly = true

	default:
		// Unrecognised part shape; degrade by dropping just this part.
		return nil
	}

	return msg
}

func applyFilter(msgs []*types.FormattedMessage, filter Filter) []*types.FormattedMessage {
	if filter == "" || filter == FilterAll {
		return msgs
	}

	kept := msgs[:0]
	for _, m := range msgs {
		switch filter {
		case FilterTextOnly:
			if m.Type == types.MessageText {
				kept = append(kept, m)
			}
		case FilterFunctionCalls:
			if m.Type == types.MessageFunctionCall || m.Type == types.MessageFunctionResponse {
				kept = append(kept, m)
			}
		case FilterTransfers:
			if m.Type == types.MessageTransfer {
				kept = append(kept, m)
			}
		case FilterErrors:
			if m.Type == types.MessageError {
				kept = append(kept, m)
			}
		}
	}
	return kept
}

// ParseFilter validates a filter name from user input.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(s)) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterTextOnly:
		return FilterTextOnly, nil
	case FilterFunctionCalls:
		return FilterFunctionCalls, nil
	case FilterTransfers:
		return FilterTransfers, nil
	case FilterErrors:
		return FilterErrors, nil
	default:
		return "", fmt.Errorf("unknown filter: %s", s)
	}
}
