package feedback

import "fmt"

// Side frames a feedback key from the point of view of the participant it is
// shown to.
type Side int

// Side values. SideNone only appears on the None key.
const (
	SideNone Side = iota
	// SideWinner: the viewer won; the category is what they did well.
	SideWinner
	// SideLoser: the viewer lost; the category is what they suffered.
	SideLoser
)

func (s Side) String() string {
	switch s {
	case SideWinner:
		return "winner"
	case SideLoser:
		return "loser"
	case SideNone:
		return "none"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Key is the dominant outcome category plus the framing it is shown with.
type Key struct {
	Category string
	Ordinal  int
	Count    uint64
	Side     Side
}

// None is returned when a match has no winner. It matches no real category.
var None = Key{Ordinal: -1, Side: SideNone}

// IsNone reports whether k carries no feedback.
func (k Key) IsNone() bool { return k.Side == SideNone }
