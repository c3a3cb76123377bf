package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filter narrows a catalog listing. Empty fields match everything.
type Filter struct {
	Query   string
	Country string
	Milk    string
	Texture string
	Limit   int
}

// Match is a search hit with its relevance score in (0,1].
type Match struct {
	Cheese Cheese  `json:"cheese"`
	Score  float64 `json:"score"`
}

type searchDoc struct {
	name   string
	tokens []string // every searchable word, folded
	text   string   // every searchable field joined, folded
}

func newSearchDoc(ch Cheese) searchDoc {
	fields := []string{
		ch.Name, ch.Country, ch.Region, ch.MilkType, ch.Texture,
		ch.AgingTime, ch.Aroma, ch.RindType, ch.PasteType,
	}
	fields = append(fields, ch.FlavorNotes...)
	fields = append(fields, ch.Pairings.All()...)
	text := fold(strings.Join(fields, " "))
	return searchDoc{
		name:   fold(ch.Name),
		tokens: strings.Fields(text),
		text:   text,
	}
}

// Search scans the catalog linearly. Facet filters are case-insensitive
// equality; every query word must hit the name, another field, or a word
// within typo distance. Results are ordered by score, then name.
func (c *Catalog) Search(f Filter) []Match {
	query := strings.Fields(fold(f.Query))

	var out []Match
	for i, ch := range c.cheeses {
		if !facetMatch(f.Country, ch.Country) || !facetMatch(f.Milk, ch.MilkType) || !facetMatch(f.Texture, ch.Texture) {
			continue
		}
		score := 1.0
		if len(query) > 0 {
			var ok bool
			score, ok = c.index[i].score(query)
			if !ok {
				continue
			}
		}
		out = append(out, Match{Cheese: ch, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Cheese.Name < out[j].Cheese.Name
		}
		return out[i].Score > out[j].Score
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func facetMatch(want, have string) bool {
	return want == "" || strings.EqualFold(fold(want), fold(have))
}

// score averages per-word scores; ok is false if any word misses.
func (d searchDoc) score(query []string) (float64, bool) {
	total := 0.0
	for _, q := range query {
		s := d.wordScore(q)
		if s == 0 {
			return 0, false
		}
		total += s
	}
	return total / float64(len(query)), true
}

func (d searchDoc) wordScore(q string) float64 {
	switch {
	case d.name == q:
		return 1.0
	case strings.HasPrefix(d.name, q):
		return 0.9
	case strings.Contains(d.name, q):
		return 0.8
	case strings.Contains(d.text, q):
		return 0.6
	}
	if len(q) < 4 {
		return 0
	}
	best := 0.0
	for _, tok := range d.tokens {
		dist := levenshtein.ComputeDistance(q, tok)
		if dist > typoLimit(len(tok)) {
			continue
		}
		if s := 0.56 - 0.08*float64(dist); s > best {
			best = s
		}
	}
	return best
}

func typoLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// fold lowercases, strips accents and turns punctuation into spaces, so
// "Comté" and "comte" compare equal.
func fold(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if t, _, err := transform.String(stripMarks, s); err == nil {
		s = t
	}
	s = strings.ToLower(s)
	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
