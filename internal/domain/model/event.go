// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Participant identifies one of the two competing sides.
type Participant int

// The two sides of a match, and the draw sentinel accepted at match end.
const (
	P1       Participant = 0
	P2       Participant = 1
	NoWinner Participant = -1
)

// Participants lists both sides in index order.
var Participants = [2]Participant{P1, P2}

// Valid reports whether p is one of the two sides.
func (p Participant) Valid() bool { return p == P1 || p == P2 }

// Opponent returns the other side. Only meaningful for valid participants.
func (p Participant) Opponent() Participant { return 1 - p }

// Label returns the short name used in destination file names and logs.
func (p Participant) Label() string {
	switch p {
	case P1:
		return "P1"
	case P2:
		return "P2"
	case NoWinner:
		return "none"
	}
	return fmt.Sprintf("P?%d", int(p))
}

// Kind selects which category universe an event belongs to.
type Kind string

// Event kinds.
const (
	KindAction  Kind = "action"
	KindOutcome Kind = "outcome"
)

// ParseKind accepts "action" and "outcome" (case-insensitive). "success" is an
// alias for outcome.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindAction):
		return KindAction, nil
	case string(KindOutcome), "success":
		return KindOutcome, nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// Event is one gameplay observation to be tallied.
type Event struct {
	EventID     string      // unique id for idempotency
	Kind        Kind        // action or outcome universe
	Category    string      // category display name within the universe
	Participant Participant // side that performed the action / achieved the outcome
	TS          time.Time   // event timestamp
}
