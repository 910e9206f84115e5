package learning

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestJSONLStore(t *testing.T) *JSONLStore {
	t.Helper()
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "data", "feedback_kb.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestJSONLStoreAppendAndForEach(t *testing.T) {
	store := newTestJSONLStore(t)
	ctx := context.Background()

	events := []Event{
		NewEvent("pw.md", true, "password_reset", "T-1", ""),
		NewEvent("vpn.md", false, "", "T-2", "u-abc"),
	}
	for _, ev := range events {
		if err := store.Append(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	var got []Event
	err := store.ForEach(ctx, func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("replayed %d events, want 2", len(got))
	}
	if got[0].DocPath != "pw.md" || !got[0].Success || got[0].Intent != "password_reset" {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].DocPath != "vpn.md" || got[1].Success || got[1].UserHash != "u-abc" {
		t.Errorf("second event = %+v", got[1])
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("event IDs not unique: %q, %q", got[0].ID, got[1].ID)
	}
}

func TestJSONLStoreAppendRejectsEmptyDocPath(t *testing.T) {
	store := newTestJSONLStore(t)
	err := store.Append(context.Background(), NewEvent("", true, "", "", ""))
	if !errors.Is(err, ErrEmptyDocPath) {
		t.Errorf("err = %v, want ErrEmptyDocPath", err)
	}
}

func TestJSONLStoreForEachMissingFile(t *testing.T) {
	store := newTestJSONLStore(t)
	calls := 0
	err := store.ForEach(context.Background(), func(Event) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach on missing file: %v", err)
	}
	if calls != 0 {
		t.Errorf("callback ran %d times for a missing file", calls)
	}
}

func TestJSONLStoreSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feedback_kb.jsonl")
	content := `{"id":"1","ts":"2026-08-01T10:00:00Z","doc_path":"pw.md","success":true}
not json at all

{"id":"2","ts":"2026-08-02T10:00:00Z","doc_path":"vpn.md","success":false}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewJSONLStore(path)
	if err != nil {
		t.Fatal(err)
	}

	var got []Event
	err = store.ForEach(context.Background(), func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("replayed %d events, want 2 (malformed and blank lines skipped)", len(got))
	}
	if got[0].DocPath != "pw.md" || got[1].DocPath != "vpn.md" {
		t.Errorf("events = %+v", got)
	}
}

func TestJSONLStoreForEachCallbackError(t *testing.T) {
	store := newTestJSONLStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, NewEvent("pw.md", true, "", "", "")); err != nil {
			t.Fatal(err)
		}
	}

	sentinel := errors.New("stop")
	calls := 0
	err := store.ForEach(ctx, func(Event) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want sentinel", err)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times after returning an error", calls)
	}
}

func TestJSONLStoreReset(t *testing.T) {
	store := newTestJSONLStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, NewEvent("pw.md", true, "", "", "")); err != nil {
		t.Fatal(err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatal(err)
	}

	calls := 0
	if err := store.ForEach(ctx, func(Event) error { calls++; return nil }); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("replayed %d events after reset, want 0", calls)
	}

	// Resetting an already-empty store is not an error.
	if err := store.Reset(ctx); err != nil {
		t.Errorf("second reset: %v", err)
	}
}

func TestJSONLStoreConcurrentAppends(t *testing.T) {
	store := newTestJSONLStore(t)
	ctx := context.Background()

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := store.Append(ctx, NewEvent("pw.md", true, "", "", "")); err != nil {
					t.Errorf("append: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	count := 0
	if err := store.ForEach(ctx, func(Event) error { count++; return nil }); err != nil {
		t.Fatal(err)
	}
	if count != writers*perWriter {
		t.Errorf("replayed %d events, want %d (no interleaved or lost lines)", count, writers*perWriter)
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	ev := NewEvent("pw.md", true, "password_reset", "T-9", "u-1")
	after := time.Now().UTC()

	if ev.ID == "" {
		t.Error("ID is empty")
	}
	if ev.TS.Before(before) || ev.TS.After(after) {
		t.Errorf("TS = %v, want within [%v, %v]", ev.TS, before, after)
	}
	if ev.TS.Location() != time.UTC {
		t.Errorf("TS location = %v, want UTC", ev.TS.Location())
	}
}
