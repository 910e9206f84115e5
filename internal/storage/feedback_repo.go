package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"triage-kb/internal/learning"
)

// FeedbackRepo persists feedback events in SQLite. It implements
// learning.Store and is selected with FEEDBACK_BACKEND=sqlite; the default
// backend is the flat JSONL log.
type FeedbackRepo struct {
	db *sql.DB
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// Append inserts a single feedback event.
func (r *FeedbackRepo) Append(ctx context.Context, ev learning.Event) error {
	if ev.DocPath == "" {
		return learning.ErrEmptyDocPath
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO feedback_events (id, ts, doc_path, success, intent, ticket_id, user_hash) VALUES (?, ?, ?, ?, ?, ?, ?)",
		ev.ID, ev.TS.UTC().Format(time.RFC3339Nano), ev.DocPath, ev.Success, ev.Intent, ev.TicketID, ev.UserHash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback event: %w", err)
	}
	return nil
}

// ForEach yields every stored event in insertion order. Rows that fail to
// scan are skipped so one bad record cannot hide the rest of the history.
func (r *FeedbackRepo) ForEach(ctx context.Context, fn func(learning.Event) error) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, ts, doc_path, success, intent, ticket_id, user_hash FROM feedback_events ORDER BY rowid")
	if err != nil {
		return fmt.Errorf("failed to query feedback events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var ev learning.Event
		var ts string
		if err := rows.Scan(&ev.ID, &ts, &ev.DocPath, &ev.Success, &ev.Intent, &ev.TicketID, &ev.UserHash); err != nil {
			continue
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ev.TS = parsed
		}
		if err := fn(ev); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

// Reset deletes all feedback events.
func (r *FeedbackRepo) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM feedback_events"); err != nil {
		return fmt.Errorf("failed to reset feedback events: %w", err)
	}
	return nil
}
