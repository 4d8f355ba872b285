// Package feedback turns a final outcome tally into a feedback key and the
// message lines shown for it once a match ends.
package feedback

import (
	"github.com/okian/ringside/internal/domain/tally"
)

// Dominant returns the entry with the greatest count, scanning in ordinal
// order. Only a strictly greater count replaces the current pick, so the first
// category to reach the maximum wins ties, and an all-zero snapshot yields
// ordinal 0.
func Dominant(snap tally.Snapshot) (tally.Count, error) {
	if len(snap) == 0 {
		return tally.Count{}, ErrEmptyUniverse
	}
	best := snap[0]
	for _, c := range snap[1:] {
		if c.Count > best.Count {
			best = c
		}
	}
	return best, nil
}
