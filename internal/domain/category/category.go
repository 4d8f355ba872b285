// Package category holds the fixed, ordered category universes that tallies
// count over. Ordinal order is column order in persisted output.
package category

import (
	"fmt"
	"strings"
)

// Total is the enumeration terminator some category sources carry. It is never
// a real category and is dropped by New.
const Total = "TOTAL"

// Universe is an immutable ordered set of category names.
type Universe struct {
	names    []string
	ordinals map[string]int
}

// New builds a Universe from names in ordinal order. A Total entry is skipped;
// empty or repeated names are rejected, as are names containing a comma or a
// line break since they would split a header column.
func New(names ...string) (*Universe, error) {
	u := &Universe{
		names:    make([]string, 0, len(names)),
		ordinals: make(map[string]int, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		switch {
		case n == Total:
			continue
		case n == "":
			return nil, fmt.Errorf("%w: empty name at position %d", ErrInvalidUniverse, len(u.names))
		case strings.ContainsAny(n, ",\r\n"):
			return nil, fmt.Errorf("%w: name %q contains a delimiter", ErrInvalidUniverse, n)
		}
		if _, dup := u.ordinals[n]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidUniverse, n)
		}
		u.ordinals[n] = len(u.names)
		u.names = append(u.names, n)
	}
	return u, nil
}

// MustNew is New for package-level universes known to be valid.
func MustNew(names ...string) *Universe {
	u, err := New(names...)
	if err != nil {
		panic(err)
	}
	return u
}

// Len returns the number of categories.
func (u *Universe) Len() int { return len(u.names) }

// Name returns the display name at ordinal.
func (u *Universe) Name(ordinal int) (string, bool) {
	if ordinal < 0 || ordinal >= len(u.names) {
		return "", false
	}
	return u.names[ordinal], true
}

// Ordinal returns the stable position of name.
func (u *Universe) Ordinal(name string) (int, bool) {
	o, ok := u.ordinals[name]
	return o, ok
}

// Names returns a copy of the names in ordinal order.
func (u *Universe) Names() []string {
	out := make([]string, len(u.names))
	copy(out, u.names)
	return out
}
