// internal/scheduler/scheduler_test.go
package scheduler

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/barka/internal/state"
)

func TestSchedulerFiresTask(t *testing.T) {
	dir := t.TempDir()
	store := state.NewWatchStore(filepath.Join(dir, "watches.json"))

	task := &state.WatchTask{
		Name:           "every-second",
		ConversationID: "conv-1",
		Schedule:       "* * * * * *",
		Enabled:        true,
	}
	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	var fires atomic.Int32
	handler := func(task *state.WatchTask) {
		fires.Add(1)
	}

	sched := New(store, handler)
	if err := sched.Start(); err != nil {
		t.Fatal(err)
	}
	defer sched.Stop()

	// Wait up to 2.5 seconds for at least one fire
	deadline := time.After(2500 * time.Millisecond)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			t.Fatalf("handler did not fire within 2.5s, fires=%d", fires.Load())
		case <-ticker.C:
			if fires.Load() > 0 {
				return
			}
		}
	}
}

func TestSchedulerSkipsDisabled(t *testing.T) {
	dir := t.TempDir()
	store := state.NewWatchStore(filepath.Join(dir, "watches.json"))

	task := &state.WatchTask{
		Name:           "disabled-task",
		ConversationID: "conv-1",
		Schedule:       "* * * * * *",
		Enabled:        false,
	}
	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	var fires atomic.Int32
	handler := func(task *state.WatchTask) {
		fires.Add(1)
	}

	sched := New(store, handler)
	if err := sched.Start(); err != nil {
		t.Fatal(err)
	}
	defer sched.Stop()

	time.Sleep(2 * time.Second)

	if n := fires.Load(); n != 0 {
		t.Errorf("expected 0 fires for disabled task, got %d", n)
	}
}

func TestSchedulerNoScheduleTasks(t *testing.T) {
	dir := t.TempDir()
	store := state.NewWatchStore(filepath.Join(dir, "watches.json"))

	task := &state.WatchTask{
		Name:           "sync-on-demand",
		ConversationID: "conv-1",
		Schedule:       "",
		Enabled:        true,
	}
	if err := store.Add(task); err != nil {
		t.Fatal(err)
	}

	var fires atomic.Int32
	handler := func(task *state.WatchTask) {
		fires.Add(1)
	}

	sched := New(store, handler)
	if err := sched.Start(); err != nil {
		t.Fatal(err)
	}
	defer sched.Stop()

	time.Sleep(2 * time.Second)

	if n := fires.Load(); n != 0 {
		t.Errorf("expected 0 fires for task with no schedule, got %d", n)
	}
}
