// Package catalog loads the bundled cheese dataset and answers filter and
// search queries over it. The dataset is read once and never mutated.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

//go:embed data/cheeses.json
var bundled []byte

var ErrNotFound = errors.New("cheese not found")

// Pairings groups serving partners by kind.
type Pairings struct {
	Wine  []string `json:"wine"`
	Beer  []string `json:"beer"`
	Fruit []string `json:"fruit"`
	Bread []string `json:"bread"`
}

// All returns every pairing, wine first.
func (p Pairings) All() []string {
	out := make([]string, 0, len(p.Wine)+len(p.Beer)+len(p.Fruit)+len(p.Bread))
	out = append(out, p.Wine...)
	out = append(out, p.Beer...)
	out = append(out, p.Fruit...)
	return append(out, p.Bread...)
}

// Cheese is one catalog record. FatPercent and PDOStatus are nil when
// unknown or not protected.
type Cheese struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Country               string   `json:"country"`
	Region                string   `json:"region,omitempty"`
	MilkType              string   `json:"milkType"`
	Texture               string   `json:"texture"`
	AgingTime             string   `json:"agingTime"`
	FlavorNotes           []string `json:"flavorNotes"`
	Aroma                 string   `json:"aroma"`
	RindType              string   `json:"rindType"`
	PasteType             string   `json:"pasteType"`
	FatPercent            *float64 `json:"fatPercent"`
	PDOStatus             *string  `json:"pdoPgiStatus"`
	Pairings              Pairings `json:"pairings"`
	Allergens             []string `json:"allergens"`
	VegetarianSuitability string   `json:"vegetarianSuitability"`
	Storage               string   `json:"storage"`
	ServingSuggestions    string   `json:"servingSuggestions"`
}

// Catalog is the read-only cheese dataset.
type Catalog struct {
	cheeses []Cheese
	byID    map[string]int
	bySlug  map[string]int
	index   []searchDoc
}

// Load parses a JSON array of cheeses. IDs must be non-empty and unique.
func Load(r io.Reader) (*Catalog, error) {
	var cheeses []Cheese
	if err := json.NewDecoder(r).Decode(&cheeses); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		cheeses: cheeses,
		byID:    make(map[string]int, len(cheeses)),
		bySlug:  make(map[string]int, len(cheeses)),
		index:   make([]searchDoc, len(cheeses)),
	}
	for i, ch := range cheeses {
		if ch.ID == "" {
			return nil, fmt.Errorf("cheese %d (%q): empty id", i, ch.Name)
		}
		if _, dup := c.byID[ch.ID]; dup {
			return nil, fmt.Errorf("duplicate cheese id %q", ch.ID)
		}
		c.byID[ch.ID] = i
		if _, taken := c.bySlug[Slug(ch.ID)]; !taken {
			c.bySlug[Slug(ch.ID)] = i
		}
		c.index[i] = newSearchDoc(ch)
	}
	return c, nil
}

// LoadBundled loads the dataset compiled into the binary.
func LoadBundled() (*Catalog, error) {
	return Load(bytes.NewReader(bundled))
}

// Len returns the number of cheeses.
func (c *Catalog) Len() int { return len(c.cheeses) }

// All returns every cheese in dataset order.
func (c *Catalog) All() []Cheese {
	out := make([]Cheese, len(c.cheeses))
	copy(out, c.cheeses)
	return out
}

// Get returns the cheese with the given id. An id that misses exactly is
// retried as its ASCII slug, so "comte" finds "comté".
func (c *Catalog) Get(id string) (Cheese, error) {
	i, ok := c.byID[id]
	if !ok {
		i, ok = c.bySlug[Slug(id)]
	}
	if !ok {
		return Cheese{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.cheeses[i], nil
}

// FlavorNotes returns the notes of the cheese with the given id. ok is
// false when the catalog has no such cheese.
func (c *Catalog) FlavorNotes(id string) (notes []string, ok bool) {
	ch, err := c.Get(id)
	if err != nil {
		return nil, false
	}
	return ch.FlavorNotes, true
}

// Slug folds an id to lowercase ASCII words joined by hyphens.
func Slug(id string) string {
	return strings.ReplaceAll(fold(strings.ReplaceAll(id, "’", "")), " ", "-")
}

// Facet is a distinct field value and how many cheeses carry it.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets lists the filterable values for each facet field.
type Facets struct {
	Countries []Facet `json:"countries"`
	Milks     []Facet `json:"milks"`
	Textures  []Facet `json:"textures"`
}

// Facets counts distinct countries, milks and textures, sorted by value.
func (c *Catalog) Facets() Facets {
	countries := map[string]int{}
	milks := map[string]int{}
	textures := map[string]int{}
	for _, ch := range c.cheeses {
		countries[ch.Country]++
		milks[ch.MilkType]++
		textures[ch.Texture]++
	}
	return Facets{
		Countries: sortedFacets(countries),
		Milks:     sortedFacets(milks),
		Textures:  sortedFacets(textures),
	}
}

func sortedFacets(m map[string]int) []Facet {
	out := make([]Facet, 0, len(m))
	for v, n := range m {
		if v == "" {
			continue
		}
		out = append(out, Facet{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
