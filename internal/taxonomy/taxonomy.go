// Package taxonomy holds the immutable category table that drives scoring.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/aforti1/clarity-cash/internal/model"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateCategory is returned when a category id appears twice.
var ErrDuplicateCategory = errors.New("duplicate category id")

//go:embed default_taxonomy.yaml
var defaultYAML []byte

// Taxonomy is a read-only category table. It is safe for concurrent use.
type Taxonomy struct {
	entries map[int]model.TaxonomyEntry
	ids     []int
}

type file struct {
	Categories []model.TaxonomyEntry `yaml:"categories"`
}

// New builds a Taxonomy from entries. Entries are copied.
func New(entries []model.TaxonomyEntry) (*Taxonomy, error) {
	if len(entries) == 0 {
		return nil, errors.New("taxonomy has no categories")
	}
	t := &Taxonomy{
		entries: make(map[int]model.TaxonomyEntry, len(entries)),
		ids:     make([]int, 0, len(entries)),
	}
	for _, e := range entries {
		if _, ok := t.entries[e.CategoryID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCategory, e.CategoryID)
		}
		if e.IsScored && e.Profile == "" {
			return nil, fmt.Errorf("category %d is scored but has no profile", e.CategoryID)
		}
		t.entries[e.CategoryID] = e
		t.ids = append(t.ids, e.CategoryID)
	}
	sort.Ints(t.ids)
	return t, nil
}

// Parse decodes a YAML taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	return New(f.Categories)
}

// Load reads a YAML taxonomy from path.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return Parse(data)
}

var defaultTaxonomy = sync.OnceValue(func() *Taxonomy {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return t
})

// Default returns the built-in taxonomy.
func Default() *Taxonomy { return defaultTaxonomy() }

// LoadOrDefault loads path, or returns the built-in table when path is empty.
func LoadOrDefault(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Lookup returns the entry for a category id. A nil taxonomy knows no
// categories.
func (t *Taxonomy) Lookup(categoryID int) (model.TaxonomyEntry, bool) {
	if t == nil {
		return model.TaxonomyEntry{}, false
	}
	e, ok := t.entries[categoryID]
	return e, ok
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ids)
}

// Entries returns all entries ordered by category id.
func (t *Taxonomy) Entries() []model.TaxonomyEntry {
	out := make([]model.TaxonomyEntry, len(t.ids))
	for i, id := range t.ids {
		out[i] = t.entries[id]
	}
	return out
}

// CategoriesFor returns the scored category ids with the given profile.
func (t *Taxonomy) CategoriesFor(profile model.SpendProfile) []int {
	if t == nil {
		return nil
	}
	var out []int
	for _, id := range t.ids {
		e := t.entries[id]
		if e.IsScored && e.Profile == profile {
			out = append(out, id)
		}
	}
	return out
}
