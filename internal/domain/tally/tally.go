// Package tally counts category occurrences for the two participants of a
// session over one fixed category universe.
//
// Every category is present from construction with a zero count, so reads
// never observe a missing category. Increments and snapshots on the same
// tally are serialised by a single mutex.
package tally

import (
	"fmt"
	"sync"

	"github.com/okian/ringside/internal/domain/category"
	"github.com/okian/ringside/internal/domain/model"
)

// Count is one (category, count) pair of a snapshot.
type Count struct {
	Ordinal  int
	Category string
	Count    uint64
}

// Snapshot is an ordered read of all counts for a participant. Entries are in
// universe ordinal order; the slice is owned by the caller.
type Snapshot []Count

// Counts returns just the counts in ordinal order.
func (s Snapshot) Counts() []uint64 {
	out := make([]uint64, len(s))
	for i, c := range s {
		out[i] = c.Count
	}
	return out
}

// CategoryTally holds per-participant counts over one universe.
type CategoryTally struct {
	universe *category.Universe

	mu     sync.Mutex
	counts [2][]uint64
}

// New creates a tally with every category of u at zero for both participants.
func New(u *category.Universe) *CategoryTally {
	t := &CategoryTally{universe: u}
	for i := range t.counts {
		t.counts[i] = make([]uint64, u.Len())
	}
	return t
}

// Universe returns the category universe the tally counts over.
func (t *CategoryTally) Universe() *category.Universe { return t.universe }

// Increment adds exactly one to the count of name for p.
func (t *CategoryTally) Increment(name string, p model.Participant) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidParticipant, int(p))
	}
	ordinal, ok := t.universe.Ordinal(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}
	t.mu.Lock()
	t.counts[p][ordinal]++
	t.mu.Unlock()
	return nil
}

// IncrementOrdinal is Increment addressed by ordinal position.
func (t *CategoryTally) IncrementOrdinal(ordinal int, p model.Participant) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidParticipant, int(p))
	}
	if ordinal < 0 || ordinal >= t.universe.Len() {
		return fmt.Errorf("%w: ordinal %d", ErrInvalidCategory, ordinal)
	}
	t.mu.Lock()
	t.counts[p][ordinal]++
	t.mu.Unlock()
	return nil
}

// Snapshot returns p's counts in ordinal order. It never mutates the tally.
func (t *CategoryTally) Snapshot(p model.Participant) (Snapshot, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidParticipant, int(p))
	}
	t.mu.Lock()
	counts := make([]uint64, len(t.counts[p]))
	copy(counts, t.counts[p])
	t.mu.Unlock()

	snap := make(Snapshot, len(counts))
	for i, c := range counts {
		name, _ := t.universe.Name(i)
		snap[i] = Count{Ordinal: i, Category: name, Count: c}
	}
	return snap, nil
}

// Reset clears every count for p back to zero. Only used at teardown.
func (t *CategoryTally) Reset(p model.Participant) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidParticipant, int(p))
	}
	t.mu.Lock()
	clear(t.counts[p])
	t.mu.Unlock()
	return nil
}
