package feedback

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog maps a dominant category and side to the message lines shown for it.
type Catalog struct {
	entries map[string]catalogEntry
}

type catalogEntry struct {
	Winner []string `yaml:"winner"`
	Loser  []string `yaml:"loser"`
}

// ParseCatalog decodes a YAML catalog of the form
//
//	CATEGORY:
//	  winner: [lines...]
//	  loser:  [lines...]
func ParseCatalog(data []byte) (*Catalog, error) {
	entries := make(map[string]catalogEntry)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	return &Catalog{entries: entries}, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the embedded catalog for the built-in outcome universe.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := ParseCatalog(defaultCatalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup returns the lines for k. None and unknown categories report false.
func (c *Catalog) Lookup(k Key) ([]string, bool) {
	if k.IsNone() {
		return nil, false
	}
	e, ok := c.entries[k.Category]
	if !ok {
		return nil, false
	}
	var lines []string
	switch k.Side {
	case SideWinner:
		lines = e.Winner
	case SideLoser:
		lines = e.Loser
	}
	if len(lines) == 0 {
		return nil, false
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out, true
}

// Len returns the number of categories with entries.
func (c *Catalog) Len() int { return len(c.entries) }
