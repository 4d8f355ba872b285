// Package simulate drives a running ringside server with a generated match.
package simulate

import (
	"fmt"
	"time"
)

// WinnerAuto lets the simulator pick the participant with more outcomes.
const WinnerAuto = -2

// Config holds configuration for one simulated match.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumEvents  int           // Number of events to generate
	Workers    int           // Number of concurrent submitters
	FlushEvery int           // Events between flushes; 0 flushes once at the end
	Winner     int           // 0, 1, -1 for a draw, or WinnerAuto
	OutcomePct int           // Share of events drawn from the outcome universe
	Seed       uint64        // Generator seed; 0 picks one from the clock
	Timeout    time.Duration // HTTP request timeout
	Restart    bool          // Restart the server session before the match
	Verbose    bool          // Log every batch
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url must not be empty", ErrInvalidConfig)
	case c.NumEvents <= 0:
		return fmt.Errorf("%w: events must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.FlushEvery < 0:
		return fmt.Errorf("%w: flush-every must not be negative", ErrInvalidConfig)
	case c.OutcomePct < 0 || c.OutcomePct > 100:
		return fmt.Errorf("%w: outcome share must be within 0..100", ErrInvalidConfig)
	case c.Winner != 0 && c.Winner != 1 && c.Winner != -1 && c.Winner != WinnerAuto:
		return fmt.Errorf("%w: winner must be 0, 1, -1 or auto", ErrInvalidConfig)
	}
	return nil
}

// Event is the wire form of a submitted event.
type Event struct {
	EventID     string `json:"event_id"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Participant int    `json:"participant"`
	TS          string `json:"ts"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated  int
	EventsSuccessful int
	EventsDuplicate  int
	EventsFailed     int
	Flushes          int
	Outcomes         [2]int // generated outcome events per participant
	Winner           int
	StartTime        time.Time
	Duration         time.Duration
}
