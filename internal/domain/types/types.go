// Package types contains common types used across the application
package types

import (
	"github.com/okian/ringside/internal/domain/feedback"
	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/tally"
)

// Feedback is the result of ending a match.
type Feedback struct {
	SessionID string
	Winner    model.Participant
	Key       feedback.Key
	Lines     []feedback.Line
}

// FeedbackResponse is the wire form of Feedback.
type FeedbackResponse struct {
	SessionID string          `json:"session_id"`
	Winner    int             `json:"winner"`
	Feedback  string          `json:"feedback"`
	Side      string          `json:"side"`
	Count     uint64          `json:"count"`
	Lines     []feedback.Line `json:"lines"`
}

// NewFeedbackResponse converts fb. A draw is reported as feedback "none".
func NewFeedbackResponse(fb Feedback) FeedbackResponse {
	resp := FeedbackResponse{
		SessionID: fb.SessionID,
		Winner:    int(fb.Winner),
		Feedback:  fb.Key.Category,
		Side:      fb.Key.Side.String(),
		Count:     fb.Key.Count,
		Lines:     fb.Lines,
	}
	if fb.Key.IsNone() {
		resp.Feedback = "none"
	}
	if resp.Lines == nil {
		resp.Lines = []feedback.Line{}
	}
	return resp
}

// TallyEntry is one column of a tally.
type TallyEntry struct {
	Category string `json:"category"`
	Count    uint64 `json:"count"`
}

// TallyResponse is a participant's counts in column order.
type TallyResponse struct {
	Kind        string       `json:"kind"`
	Participant int          `json:"participant"`
	Counts      []TallyEntry `json:"counts"`
}

// NewTallyResponse converts a snapshot.
func NewTallyResponse(kind model.Kind, p model.Participant, snap tally.Snapshot) TallyResponse {
	entries := make([]TallyEntry, len(snap))
	for i, c := range snap {
		entries[i] = TallyEntry{Category: c.Category, Count: c.Count}
	}
	return TallyResponse{Kind: string(kind), Participant: int(p), Counts: entries}
}
