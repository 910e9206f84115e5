package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"triage-kb/internal/learning"
	"triage-kb/internal/learning/mocks"
)

func TestFeedbackRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	var captured learning.Event
	store.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev learning.Event) error {
			captured = ev
			return nil
		})

	handler := NewFeedbackHandler(store)
	rec := postJSON(t, http.HandlerFunc(handler.Record), "/api/feedback",
		`{"doc_path":"pw.md","success":true,"intent":"password_reset","ticket_id":"T-1"}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var resp FeedbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Recorded {
		t.Error("recorded = false, want true")
	}

	if captured.DocPath != "pw.md" || !captured.Success {
		t.Errorf("appended event = %+v", captured)
	}
	if captured.Intent != "password_reset" || captured.TicketID != "T-1" {
		t.Errorf("event metadata = %+v", captured)
	}
	if captured.ID == "" || captured.TS.IsZero() {
		t.Errorf("event missing ID or timestamp: %+v", captured)
	}
}

func TestFeedbackRecordStoreFailureStillAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(errors.New("disk full"))

	handler := NewFeedbackHandler(store)
	rec := postJSON(t, http.HandlerFunc(handler.Record), "/api/feedback",
		`{"doc_path":"pw.md","success":false}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (feedback is best-effort)", rec.Code)
	}
	var resp FeedbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Recorded {
		t.Error("recorded = true after a failed append")
	}
}

func TestFeedbackRecordMissingDocPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	// No Append expected: validation rejects the request first.

	handler := NewFeedbackHandler(store)
	rec := postJSON(t, http.HandlerFunc(handler.Record), "/api/feedback", `{"success":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFeedbackRecordInvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	handler := NewFeedbackHandler(mocks.NewMockStore(ctrl))
	rec := postJSON(t, http.HandlerFunc(handler.Record), "/api/feedback", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFeedbackReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Reset(gomock.Any()).Return(nil)

	handler := NewFeedbackHandler(store)
	req := httptest.NewRequest(http.MethodDelete, "/api/feedback", nil)
	rec := httptest.NewRecorder()
	handler.Reset(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestFeedbackResetFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Reset(gomock.Any()).Return(errors.New("locked"))

	handler := NewFeedbackHandler(store)
	req := httptest.NewRequest(http.MethodDelete, "/api/feedback", nil)
	rec := httptest.NewRecorder()
	handler.Reset(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
