package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"triage-kb/internal/learning"
)

func newLearningFixture(t *testing.T) (*LearningHandler, learning.Store) {
	t.Helper()
	store, err := learning.NewJSONLStore(filepath.Join(t.TempDir(), "feedback_kb.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	return NewLearningHandler(learning.NewCalculator(store), store), store
}

func getJSON(t *testing.T, fn http.HandlerFunc, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	fn(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec
}

func TestLearningPriors(t *testing.T) {
	handler, store := newLearningFixture(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, learning.NewEvent("pw.md", true, "", "", "")); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Append(ctx, learning.NewEvent("vpn.md", false, "", "", "")); err != nil {
		t.Fatal(err)
	}

	var priors map[string]float64
	rec := getJSON(t, handler.Priors, "/api/learning/priors", &priors)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if priors["pw.md"] <= 0 {
		t.Errorf("priors[pw.md] = %f, want > 0", priors["pw.md"])
	}
	if priors["vpn.md"] >= 0 {
		t.Errorf("priors[vpn.md] = %f, want < 0", priors["vpn.md"])
	}
}

func TestLearningPriorsIntentFilter(t *testing.T) {
	handler, store := newLearningFixture(t)
	ctx := context.Background()
	if err := store.Append(ctx, learning.NewEvent("pw.md", true, "password_reset", "", "")); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, learning.NewEvent("vpn.md", true, "vpn_issue", "", "")); err != nil {
		t.Fatal(err)
	}

	var priors map[string]float64
	rec := getJSON(t, handler.Priors, "/api/learning/priors?intent=password_reset", &priors)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(priors) != 1 {
		t.Errorf("got %d priors, want 1 after intent filtering", len(priors))
	}
	if _, ok := priors["pw.md"]; !ok {
		t.Errorf("priors = %v, want pw.md only", priors)
	}
}

func TestLearningPriorsBadQueryParams(t *testing.T) {
	handler, _ := newLearningFixture(t)

	for _, path := range []string{
		"/api/learning/priors?half_life_days=soon",
		"/api/learning/priors?m=lots",
	} {
		rec := getJSON(t, handler.Priors, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestLearningStats(t *testing.T) {
	handler, store := newLearningFixture(t)
	ctx := context.Background()
	for _, success := range []bool{true, true, false} {
		if err := store.Append(ctx, learning.NewEvent("pw.md", success, "", "", "")); err != nil {
			t.Fatal(err)
		}
	}

	var stats learning.GlobalStats
	rec := getJSON(t, handler.Stats, "/api/learning/stats", &stats)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stats.Events != 3 {
		t.Errorf("Events = %d, want 3", stats.Events)
	}
	if stats.SuccessRate <= 0.5 || stats.SuccessRate >= 1 {
		t.Errorf("SuccessRate = %f, want in (0.5, 1)", stats.SuccessRate)
	}
}

func TestLearningEventsExport(t *testing.T) {
	handler, store := newLearningFixture(t)
	ctx := context.Background()
	if err := store.Append(ctx, learning.NewEvent("pw.md", true, "", "T-7", "")); err != nil {
		t.Fatal(err)
	}

	var events []learning.Event
	rec := getJSON(t, handler.Events, "/api/learning/events", &events)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(events) != 1 || events[0].DocPath != "pw.md" || events[0].TicketID != "T-7" {
		t.Errorf("events = %+v", events)
	}
}

func TestLearningEventsExportEmpty(t *testing.T) {
	handler, _ := newLearningFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/learning/events", nil)
	rec := httptest.NewRecorder()
	handler.Events(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" && body != "[]" {
		t.Errorf("body = %q, want an empty JSON array", body)
	}
}
