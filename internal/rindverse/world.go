// Package rindverse holds the RINDVERSE narrative: a fixed two-level world
// of regions and biomes, and the navigator that walks a visitor through it.
package rindverse

import "math"

// FeaturedCheese is a lightweight cheese reference shown inside a biome.
// ID is the catalog id of the full record.
type FeaturedCheese struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Tagline     string   `json:"tagline"`
	FlavorNotes []string `json:"flavorNotes"`
}

// Biome groups featured cheeses under a landscape.
type Biome struct {
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Featured    []FeaturedCheese `json:"featured"`
}

// DefaultEntry is the cheese whose notes theme the biome before a pick.
func (b *Biome) DefaultEntry() *FeaturedCheese {
	if b == nil || len(b.Featured) == 0 {
		return nil
	}
	return &b.Featured[0]
}

// FindFeatured returns the featured cheese with the given id.
func (b *Biome) FindFeatured(id string) *FeaturedCheese {
	if b == nil {
		return nil
	}
	for i := range b.Featured {
		if b.Featured[i].ID == id {
			return &b.Featured[i]
		}
	}
	return nil
}

// Region is a globe marker with its biomes. Lat/Lon place the marker and
// key the weather lookup.
type Region struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Biomes      []Biome `json:"biomes"`
}

// FindBiome returns the biome with the given key.
func (r *Region) FindBiome(key string) *Biome {
	if r == nil {
		return nil
	}
	for i := range r.Biomes {
		if r.Biomes[i].Key == key {
			return &r.Biomes[i]
		}
	}
	return nil
}

// Vec3 is a point on the unit globe.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Marker projects the region's lat/lon onto the unit sphere, Y up.
func (r *Region) Marker() Vec3 {
	lat := r.Lat * math.Pi / 180
	lon := r.Lon * math.Pi / 180
	return Vec3{
		X: math.Cos(lat) * math.Sin(lon),
		Y: math.Sin(lat),
		Z: math.Cos(lat) * math.Cos(lon),
	}
}

// Regions is the fixed RINDVERSE world.
var Regions = []Region{
	{
		Key:         "spain",
		Name:        "Spain",
		Description: "Sun-baked wind, herbs in the air, milk turned into quiet power.",
		Lat:         40.4,
		Lon:         -3.7,
		Biomes: []Biome{
			{
				Key:         "spain-mediterranean",
				Name:        "Mediterranean Scrub",
				Description: "Rosemary heat, limestone dust, coastal light.",
				Featured: []FeaturedCheese{
					{
						ID:          "manchego",
						Label:       "Manchego",
						Tagline:     "Lanolin + toasted grain; a clean, dry crescendo.",
						FlavorNotes: []string{"nutty", "buttery", "salty finish", "caramelized"},
					},
					{
						ID:          "mahón",
						Label:       "Mahón",
						Tagline:     "Sea-salt edge and browned butter on a steady bassline.",
						FlavorNotes: []string{"salty finish", "toasted nuts", "buttery", "tangy"},
					},
				},
			},
			{
				Key:         "spain-pyrenees",
				Name:        "Pyrenees Ridge",
				Description: "High pasture, cold stone caves, mineral air.",
				Featured: []FeaturedCheese{
					{
						ID:          "idiazabal",
						Label:       "Idiazabal",
						Tagline:     "Smoked sheep’s milk with an alpine hush.",
						FlavorNotes: []string{"smoky", "nutty", "savory", "herbal"},
					},
					{
						ID:          "tetilla",
						Label:       "Tetilla",
						Tagline:     "Soft sweetness under a misty, coastal treble.",
						FlavorNotes: []string{"milky", "buttery", "sweet", "gentle"},
					},
				},
			},
		},
	},
	{
		Key:         "france",
		Name:        "France",
		Description: "Pasture geometry, cellar silence, bloom and bite.",
		Lat:         46.6,
		Lon:         2.2,
		Biomes: []Biome{
			{
				Key:         "france-normandy",
				Name:        "Normandy Pasture",
				Description: "Cool grass, apple skin, cream and rain.",
				Featured: []FeaturedCheese{
					{
						ID:          "camembert-de-normandie",
						Label:       "Camembert de Normandie",
						Tagline:     "Mushroom bloom and warm butter in slow rotation.",
						FlavorNotes: []string{"creamy", "mushroomy", "earthy", "buttery"},
					},
					{
						ID:          "pont-l’évêque",
						Label:       "Pont-l’Évêque",
						Tagline:     "Square, supple, and floral with a salted core.",
						FlavorNotes: []string{"creamy", "tangy", "floral", "salty finish"},
					},
				},
			},
			{
				Key:         "france-alps",
				Name:        "Alpine Cellars",
				Description: "Cave humidity, crystalline crunch, long echoes.",
				Featured: []FeaturedCheese{
					{
						ID:          "comté",
						Label:       "Comté",
						Tagline:     "Hazelnut resonance; brothy depth; bright lift.",
						FlavorNotes: []string{"nutty", "brothy", "umami", "fruity"},
					},
					{
						ID:          "roquefort",
						Label:       "Roquefort",
						Tagline:     "Blue lightning in a velvet storm.",
						FlavorNotes: []string{"salty finish", "tangy", "earthy", "spicy"},
					},
				},
			},
		},
	},
}

// FindRegion returns the region with the given key.
func FindRegion(key string) *Region {
	for i := range Regions {
		if Regions[i].Key == key {
			return &Regions[i]
		}
	}
	return nil
}
