package adk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/barka/pkg/provider"
)

func TestFetchSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/agent/conversations/conv-1/session" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", auth)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"session": {
				"id": "sess-1",
				"app_name": "barka",
				"user_id": "u-1",
				"events": [
					{"id": "e1", "author": "user", "timestamp": 100.0,
					 "content": {"parts": [{"text": "hi"}]}}
				],
				"last_update_time": 100.0
			}
		}`))
	}))
	defer server.Close()

	client := New(&provider.Config{BaseURL: server.URL, APIKey: "test-key"})

	snapshot, err := client.FetchSession(context.Background(), "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if snapshot.Session == nil || snapshot.Session.ID != "sess-1" {
		t.Fatalf("unexpected session: %+v", snapshot.Session)
	}
	if len(snapshot.Events()) != 1 {
		t.Errorf("expected 1 event, got %d", len(snapshot.Events()))
	}
}

func TestFetchSessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no session"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := New(&provider.Config{BaseURL: server.URL})

	_, err := client.FetchSession(context.Background(), "conv-1")
	if !errors.Is(err, provider.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestFetchSessionUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(&provider.Config{BaseURL: server.URL})

	_, err := client.FetchSession(context.Background(), "conv-1")
	if !errors.Is(err, provider.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchSessionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(&provider.Config{BaseURL: server.URL})

	_, err := client.FetchSession(context.Background(), "conv-1")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, provider.ErrNoSession) || errors.Is(err, provider.ErrUnavailable) {
		t.Errorf("500 should be a generic error, got %v", err)
	}
}

func TestFetchSessionEmptyID(t *testing.T) {
	client := New(&provider.Config{BaseURL: "http://localhost:0"})
	if _, err := client.FetchSession(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty conversation id")
	}
}
