package synesthesia

import "regexp"

// Rule maps a flavor-note pattern to accumulator contributions.
type Rule struct {
	Name       string
	Pattern    *regexp.Regexp
	Hue        float64
	Saturation float64
	Lightness  float64
	Motion     float64
	Shimmer    float64
	BaseHz     float64
}

// Rules is evaluated top to bottom; the first match per note wins.
// "toasted nuts" resolves to smoke and "salty tangy" to tang.
var Rules = []Rule{
	{
		Name:       "smoke",
		Pattern:    regexp.MustCompile(`(?i)smok|char|toasted|burnt`),
		Hue:        28,
		Saturation: 72,
		Lightness:  50,
		Motion:     0.15,
		Shimmer:    0.1,
		BaseHz:     92,
	},
	{
		Name:       "umami",
		Pattern:    regexp.MustCompile(`(?i)umami|broth|savory|meaty`),
		Hue:        210,
		Saturation: 58,
		Lightness:  42,
		Motion:     0.18,
		Shimmer:    0.12,
		BaseHz:     82,
	},
	{
		Name:       "nut",
		Pattern:    regexp.MustCompile(`(?i)nut|hazelnut|almond|walnut`),
		Hue:        36,
		Saturation: 62,
		Lightness:  55,
		Motion:     0.2,
		Shimmer:    0.15,
		BaseHz:     110,
	},
	{
		Name:       "earth",
		Pattern:    regexp.MustCompile(`(?i)mushroom|earth|truffle|cave|mineral`),
		Hue:        130,
		Saturation: 45,
		Lightness:  42,
		Motion:     0.14,
		Shimmer:    0.08,
		BaseHz:     74,
	},
	{
		Name:       "cream",
		Pattern:    regexp.MustCompile(`(?i)creamy|butter|milky`),
		Hue:        48,
		Saturation: 70,
		Lightness:  72,
		Motion:     0.12,
		Shimmer:    0.22,
		BaseHz:     132,
	},
	{
		Name:       "tang",
		Pattern:    regexp.MustCompile(`(?i)tangy|citrus|acid|sharp`),
		Hue:        310,
		Saturation: 74,
		Lightness:  62,
		Motion:     0.28,
		Shimmer:    0.35,
		BaseHz:     164,
	},
	{
		Name:       "salt",
		Pattern:    regexp.MustCompile(`(?i)salty`),
		Hue:        190,
		Saturation: 55,
		Lightness:  60,
		Motion:     0.22,
		Shimmer:    0.18,
		BaseHz:     124,
	},
	{
		Name:       "sweet",
		Pattern:    regexp.MustCompile(`(?i)sweet|honey|caramel|fruit|pineapple`),
		Hue:        18,
		Saturation: 78,
		Lightness:  60,
		Motion:     0.25,
		Shimmer:    0.3,
		BaseHz:     176,
	},
	{
		Name:       "spice",
		Pattern:    regexp.MustCompile(`(?i)spicy|pepper|piquant`),
		Hue:        4,
		Saturation: 85,
		Lightness:  56,
		Motion:     0.32,
		Shimmer:    0.24,
		BaseHz:     196,
	},
	{
		Name:       "herb",
		Pattern:    regexp.MustCompile(`(?i)herb|floral|rosemary|thyme`),
		Hue:        92,
		Saturation: 62,
		Lightness:  55,
		Motion:     0.2,
		Shimmer:    0.28,
		BaseHz:     146,
	},
}

// Match returns the first rule matching note, or nil.
func Match(note string) *Rule {
	for i := range Rules {
		if Rules[i].Pattern.MatchString(note) {
			return &Rules[i]
		}
	}
	return nil
}
