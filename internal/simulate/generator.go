package simulate

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ringside/internal/domain/category"
	"github.com/okian/ringside/internal/domain/model"
)

const (
	maxWeight     = 10
	eventSpacing  = 16 * time.Millisecond // one frame at 60fps
	favouredShare = 60                    // percent of events taken by the stronger side
)

// Generator produces a plausible match: each participant gets its own
// category weights so that one style dominates its tallies.
type Generator struct {
	rng      *rand.Rand
	actions  *category.Universe
	outcomes *category.Universe
	weights  [2]map[model.Kind][]int
	favoured model.Participant
}

// NewGenerator creates a generator over the built-in universes.
func NewGenerator(seed uint64) *Generator {
	return NewGeneratorFor(seed, category.Actions(), category.Outcomes())
}

// NewGeneratorFor creates a generator over the given universes.
func NewGeneratorFor(seed uint64, actions, outcomes *category.Universe) *Generator {
	g := &Generator{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		actions:  actions,
		outcomes: outcomes,
	}
	for _, p := range model.Participants {
		g.weights[p] = map[model.Kind][]int{
			model.KindAction:  g.randomWeights(actions.Len()),
			model.KindOutcome: g.randomWeights(outcomes.Len()),
		}
	}
	g.favoured = model.Participant(g.rng.IntN(2))
	return g
}

func (g *Generator) randomWeights(n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = 1 + g.rng.IntN(maxWeight)
	}
	return w
}

// Generate returns n events. outcomePct of them, on average, are outcomes.
func (g *Generator) Generate(n, outcomePct int, start time.Time) []Event {
	events := make([]Event, n)
	for i := range events {
		p := g.favoured
		if g.rng.IntN(100) >= favouredShare {
			p = p.Opponent()
		}
		kind, u := model.KindAction, g.actions
		if g.rng.IntN(100) < outcomePct {
			kind, u = model.KindOutcome, g.outcomes
		}
		name, _ := u.Name(g.pick(g.weights[p][kind]))
		events[i] = Event{
			EventID:     uuid.NewString(),
			Kind:        string(kind),
			Category:    name,
			Participant: int(p),
			TS:          start.Add(time.Duration(i) * eventSpacing).UTC().Format(time.RFC3339),
		}
	}
	return events
}

// pick draws an index with probability proportional to its weight.
func (g *Generator) pick(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := g.rng.IntN(total)
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

// OutcomeCounts returns how many outcome events each participant has.
func OutcomeCounts(events []Event) [2]int {
	var counts [2]int
	for _, e := range events {
		if e.Kind == string(model.KindOutcome) && (e.Participant == 0 || e.Participant == 1) {
			counts[e.Participant]++
		}
	}
	return counts
}
