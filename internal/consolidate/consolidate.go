// Package consolidate folds a raw session event list into the best current
// candidate final answer plus an ordered trail of human-readable progress
// updates. The full transcript view lives in internal/format; this package
// answers the narrower question "what should the user see right now".
package consolidate

import (
	"sort"
	"strings"

	"github.com/user/barka/internal/format"
	"github.com/user/barka/internal/types"
)

// Options controls consolidation. AdminMode only selects the admin transfer
// phrasing table.
type Options struct {
	IncludeDebugInfo bool
	AdminMode        bool
}

// orchestratorAuthors are authors whose text never counts as the final
// answer: the orchestrator narrates between hand-offs and the runtime emits
// system text. Kept as a variable so an explicit provider-side completion
// signal can replace the whole heuristic later.
var orchestratorAuthors = map[string]bool{
	"gaia":   true,
	"system": true,
}

// finalCandidate reports whether text from this author may be the final
// answer: anything but the user and the orchestrator/system names.
func finalCandidate(author string) bool {
	name := strings.ToLower(strings.TrimSpace(author))
	return name != "user" && !orchestratorAuthors[name]
}

// Consolidate sorts the events by timestamp (input order is not trusted) and
// folds them left to right. The most recent non-empty agent text wins as the
// final message; every function call and transfer contributes one status
// update; debug records are collected only when requested.
func Consolidate(events []*types.Event, opts Options) *types.Consolidation {
	sorted := make([]*types.Event, 0, len(events))
	for _, ev := range events {
		if ev != nil {
			sorted = append(sorted, ev)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	result := &types.Consolidation{
		StatusUpdates: []types.StatusUpdate{},
	}

	for _, ev := range sorted {
		if ev.Content != nil {
			for _, part := range ev.Content.Parts {
				consolidatePart(result, ev, part, opts)
			}
		}

		if ev.Actions != nil && ev.Actions.TransferToAgent != "" {
			target := ev.Actions.TransferToAgent
			result.StatusUpdates = append(result.StatusUpdates, types.StatusUpdate{
				ID:        types.NewStatusID(),
				Message:   transferPhrase(target, opts.AdminMode),
				Timestamp: ev.Timestamp,
				Type:      types.StatusTransferring,
				IsVisible: true,
			})
			if opts.IncludeDebugInfo {
				result.DebugEvents = append(result.DebugEvents, types.DebugEvent{
					ID:        ev.ID + ":transfer",
					Kind:      "transfer",
					Author:    ev.Author,
					Timestamp: ev.Timestamp,
					Detail:    map[string]any{"from": ev.Author, "to": target},
				})
			}
		}
	}

	if result.FinalMessage != nil {
		result.StatusUpdates = append(result.StatusUpdates, types.StatusUpdate{
			ID:        types.NewStatusID(),
			Message:   "Response ready",
			Timestamp: result.FinalMessage.Timestamp,
			Type:      types.StatusCompleting,
			IsVisible: true,
		})
	}

	// All updates are constructed visible today; the filter is here so a
	// future invisible class never leaks to callers.
	visible := result.StatusUpdates[:0]
	for _, su := range result.StatusUpdates {
		if su.IsVisible {
			visible = append(visible, su)
		}
	}
	result.StatusUpdates = visible

	return result
}

func consolidatePart(result *types.Consolidation, ev *types.Event, part types.Part, opts Options) {
	switch {
	case part.Text != "":
		text := strings.TrimSpace(part.Text)
		if text == "" || !finalCandidate(ev.Author) {
			return
		}
		// Last writer wins: a later text event supersedes this one.
		result.FinalMessage = &types.FormattedMessage{
			ID:           ev.ID + ":final",
			Author:       ev.Author,
			AuthorType:   format.ClassifyAuthor(ev.Author),
			Content:      text,
			Timestamp:    ev.Timestamp,
			TimestampISO: types.ISOTimestamp(ev.Timestamp),
			Type:         types.MessageText,
			IsVisible:    true,
		}

	case part.FunctionCall != nil:
		p := functionPhrase(part.FunctionCall.Name)
		result.StatusUpdates = append(result.StatusUpdates, types.StatusUpdate{
			ID:        types.NewStatusID(),
			Message:   p.message,
			Timestamp: ev.Timestamp,
			Type:      p.status,
			IsVisible: true,
		})
		if opts.IncludeDebugInfo {
			result.DebugEvents = append(result.DebugEvents, types.DebugEvent{
				ID:        ev.ID + ":call:" + part.FunctionCall.Name,
				Kind:      "function_call",
				Author:    ev.Author,
				Timestamp: ev.Timestamp,
				Detail: map[string]any{
					"name": part.FunctionCall.Name,
					"args": part.FunctionCall.Args,
				},
			})
		}

	case part.FunctionResponse != nil:
		// Responses never surface as progress text, only calls do.
		if opts.IncludeDebugInfo {
			result.DebugEvents = append(result.DebugEvents, types.DebugEvent{
				ID:        ev.ID + ":response:" + part.FunctionResponse.Name,
				Kind:      "function_response",
				Author:    ev.Author,
				Timestamp: ev.Timestamp,
				Detail: map[string]any{
					"name":     part.FunctionResponse.Name,
					"response": part.FunctionResponse.Response,
				},
			})
		}
	}
}

// IsProcessingComplete reports whether the event list contains a terminal
// answer: any non-empty trimmed text authored by someone other than the user
// or the orchestrator. There is no explicit done flag from the provider;
// completion is inferred from content shape.
func IsProcessingComplete(events []*types.Event) bool {
	for _, ev := range events {
		if ev == nil || ev.Content == nil || !finalCandidate(ev.Author) {
			continue
		}
		for _, part := range ev.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return true
			}
		}
	}
	return false
}
