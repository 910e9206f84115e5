// Package learning records retrieval outcomes and turns them into
// per-document priors: bounded biases in [-1, +1] that the search engine
// applies multiplicatively on top of BM25.
package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyDocPath is returned when a feedback event carries no document path.
var ErrEmptyDocPath = errors.New("feedback event requires a doc_path")

// Event is one immutable, append-only feedback fact: a previously retrieved
// document either resolved the user's issue or did not. Events are never
// mutated or deleted outside the administrative bulk reset.
type Event struct {
	// ID is a generated identifier kept for audit trails.
	ID string `json:"id,omitempty"`
	// TS is the moment the outcome was recorded, UTC.
	TS time.Time `json:"ts"`
	// DocPath joins the event to a knowledge article across reindexes.
	DocPath string `json:"doc_path"`
	// Success is true when the user confirmed the article solved the issue.
	Success bool `json:"success"`
	// Intent optionally scopes the outcome to a classified intent label.
	Intent string `json:"intent,omitempty"`
	// TicketID optionally references the originating ticket, for audit.
	TicketID string `json:"ticket_id,omitempty"`
	// UserHash is an optional privacy-preserving actor reference.
	UserHash string `json:"user_hash,omitempty"`
}

// NewEvent stamps a feedback outcome with an ID and the current UTC time.
func NewEvent(docPath string, success bool, intent, ticketID, userHash string) Event {
	return Event{
		ID:       uuid.NewString(),
		TS:       time.Now().UTC(),
		DocPath:  docPath,
		Success:  success,
		Intent:   intent,
		TicketID: ticketID,
		UserHash: userHash,
	}
}
