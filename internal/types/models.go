// internal/types/models.go
package types

import (
	"encoding/json"
	"time"
)

// Event is one atomic record from the remote agent session's log: text,
// function call/response, special content, or a transfer action. Events are
// produced by the session provider and are read-only here.
type Event struct {
	ID        string         `json:"id"`
	Author    string         `json:"author"`
	Timestamp float64        `json:"timestamp"`
	Content   *Content       `json:"content,omitempty"`
	Actions   *EventActions  `json:"actions,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Content holds an event's ordered content parts. An event may carry zero,
// one, or several parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is a tagged union: exactly one of its fields is expected to be set.
// Unrecognised shapes are skipped by consumers, never fatal.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
	FileData         json.RawMessage   `json:"fileData,omitempty"`
	InlineData       json.RawMessage   `json:"inlineData,omitempty"`
	ExecutableCode   json.RawMessage   `json:"executableCode,omitempty"`
}

type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response,omitempty"`
}

type EventActions struct {
	TransferToAgent string `json:"transfer_to_agent,omitempty"`
}

// Session is the provider-side agent session embedded in a snapshot.
type Session struct {
	ID             string          `json:"id"`
	AppName        string          `json:"app_name"`
	UserID         string          `json:"user_id"`
	State          json.RawMessage `json:"state,omitempty"`
	Events         []*Event        `json:"events"`
	LastUpdateTime float64         `json:"last_update_time"`
}

// SessionSnapshot is the full envelope returned by the provider for one
// conversation. Conversation and Messages are opaque to this module.
type SessionSnapshot struct {
	Conversation json.RawMessage `json:"conversation,omitempty"`
	Session      *Session        `json:"session"`
	Messages     json.RawMessage `json:"messages,omitempty"`
}

// Events returns the snapshot's event list, tolerating nil receivers and a
// missing session.
func (s *SessionSnapshot) Events() []*Event {
	if s == nil || s.Session == nil {
		return nil
	}
	return s.Session.Events
}

type MessageType string

const (
	MessageText             MessageType = "text"
	MessageFunctionCall     MessageType = "function_call"
	MessageFunctionResponse MessageType = "function_response"
	MessageTransfer         MessageType = "transfer"
	MessageError            MessageType = "error"
)

type AuthorType string

const (
	AuthorUser   AuthorType = "user"
	AuthorAgent  AuthorType = "agent"
	AuthorSystem AuthorType = "system"
)

type AgentTransfer struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

// FormattedMessage is a display-ready unit derived from one content part (or
// the empty-event placeholder, or a transfer action). One event can fan out
// to several messages, so IDs are synthetic.
type FormattedMessage struct {
	ID               string            `json:"id"`
	Author           string            `json:"author"`
	AuthorType       AuthorType        `json:"author_type"`
	Content          string            `json:"content"`
	Timestamp        float64           `json:"timestamp"`
	TimestampISO     string            `json:"timestamp_iso"`
	Type             MessageType       `json:"type"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
	AgentTransfer    *AgentTransfer    `json:"agent_transfer,omitempty"`
	IsVisible        bool              `json:"is_visible"`
	IsDebugOnly      bool              `json:"is_debug_only"`
}

type StatusType string

const (
	StatusAnalyzing    StatusType = "analyzing"
	StatusTransferring StatusType = "transferring"
	StatusGathering    StatusType = "gathering"
	StatusProcessing   StatusType = "processing"
	StatusCompleting   StatusType = "completing"
)

// StatusUpdate is a short progress line streamed to the caller while the
// agent is still working. Never persisted.
type StatusUpdate struct {
	ID        StatusID   `json:"id"`
	Message   string     `json:"message"`
	Timestamp float64    `json:"timestamp"`
	Type      StatusType `json:"type"`
	IsVisible bool       `json:"is_visible"`
}

// DebugEvent records a raw function call/response or transfer for debug and
// admin views.
type DebugEvent struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Author    string         `json:"author"`
	Timestamp float64        `json:"timestamp"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Consolidation is the folded view of an event list: the best current
// candidate final answer plus the progress trail.
type Consolidation struct {
	FinalMessage  *FormattedMessage `json:"final_message,omitempty"`
	StatusUpdates []StatusUpdate    `json:"status_updates"`
	DebugEvents   []DebugEvent      `json:"debug_events,omitempty"`
}

// ISOTimestamp renders a fractional unix-seconds timestamp as RFC 3339 UTC.
func ISOTimestamp(ts float64) string {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC().Format(time.RFC3339Nano)
}
