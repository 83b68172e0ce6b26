// internal/transcript/store_test.go
package transcript

import (
	"context"
	"testing"

	"github.com/user/barka/internal/types"
)

func sampleMessages() []*types.FormattedMessage {
	return []*types.FormattedMessage{
		{ID: "e1:text:0", Author: "user", AuthorType: types.AuthorUser, Content: "hi",
			Timestamp: 1.0, Type: types.MessageText, IsVisible: true},
		{ID: "e2:text:0", Author: "project_manager_agent", AuthorType: types.AuthorAgent,
			Content: "hello", Timestamp: 2.0, Type: types.MessageText, IsVisible: true},
		{ID: "e3:text:0", Author: "project_manager_agent", AuthorType: types.AuthorAgent,
			Content: "done", Timestamp: 3.0, Type: types.MessageText, IsVisible: true},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()
	id := types.ConversationID("conv-1")

	if err := store.Save(ctx, id, sampleMessages()); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(loaded))
	}
	if loaded[0].Content != "hi" || loaded[2].Content != "done" {
		t.Errorf("message order not preserved: %+v", loaded)
	}

	count, err := store.Count(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()
	id := types.ConversationID("conv-1")

	if err := store.Save(ctx, id, sampleMessages()); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, id, sampleMessages()[:1]); err != nil {
		t.Fatal(err)
	}

	count, err := store.Count(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("save must replace, not append: count %d", count)
	}
}

func TestStoreTail(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()
	id := types.ConversationID("conv-1")

	if err := store.Save(ctx, id, sampleMessages()); err != nil {
		t.Fatal(err)
	}

	tail, err := store.Tail(ctx, id, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(tail) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(tail))
	}
	if tail[0].Content != "hello" || tail[1].Content != "done" {
		t.Errorf("tail returned wrong messages: %+v", tail)
	}
}

func TestStoreMissingConversation(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	loaded, err := store.Load(ctx, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Errorf("expected nil transcript for unknown conversation, got %+v", loaded)
	}

	count, err := store.Count(ctx, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
}
