// internal/types/ids_test.go
package types

import (
	"testing"
)

func TestNewPollID(t *testing.T) {
	id := NewPollID()
	if id == "" {
		t.Error("expected non-empty PollID")
	}
	if len(string(id)) != 36 {
		t.Errorf("expected UUID format, got %s", id)
	}
}

func TestConversationKeyFormat(t *testing.T) {
	key := NewConversationKey("telegram", "123", "conv-9")
	expected := ConversationKey("telegram:123:conv-9")
	if key != expected {
		t.Errorf("expected %s, got %s", expected, key)
	}
}

func TestISOTimestamp(t *testing.T) {
	iso := ISOTimestamp(1700000000)
	if iso != "2023-11-14T22:13:20Z" {
		t.Errorf("unexpected ISO timestamp: %s", iso)
	}
}
