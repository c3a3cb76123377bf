package rindverse

import (
	"errors"
	"fmt"
)

// Step is the current RINDVERSE scene.
type Step uint8

const (
	StepPortal Step = iota
	StepGlobe
	StepBiome
	StepCheese
	StepRitual
)

var stepNames = [...]string{"portal", "globe", "biome", "cheese", "ritual"}

func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return fmt.Sprintf("step(%d)", uint8(s))
}

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStep is the inverse of Step.String.
func ParseStep(name string) (Step, bool) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), true
		}
	}
	return 0, false
}

// EventType names a navigator input.
type EventType string

const (
	EventBegin          EventType = "begin"
	EventSelectRegion   EventType = "select-region"
	EventPickBiome      EventType = "pick-biome"
	EventSelectFeatured EventType = "select-featured"
	EventEnterRitual    EventType = "enter-ritual"
	EventBack           EventType = "back"
	EventRestart        EventType = "restart"
)

// Event is a discrete UI input. Key carries the region, biome or featured
// cheese id for the selection events.
type Event struct {
	Type EventType `json:"type"`
	Key  string    `json:"key,omitempty"`
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownEvent      = errors.New("unknown event")
	ErrUnknownRegion     = errors.New("unknown region")
	ErrUnknownBiome      = errors.New("unknown biome")
	ErrUnknownFeatured   = errors.New("unknown featured cheese")
	ErrNoFeatured        = errors.New("no featured cheese selected")
)

// NotesLookup resolves a featured cheese id to the catalog record's flavor
// notes. ok is false when the catalog has no such cheese.
type NotesLookup func(id string) (notes []string, ok bool)

// Navigator is the RINDVERSE step state machine. It is not safe for
// concurrent use; callers serialize access.
type Navigator struct {
	step     Step
	region   *Region
	biome    *Biome
	featured *FeaturedCheese
	lookup   NotesLookup
}

// NewNavigator starts at the portal with nothing selected.
func NewNavigator() *Navigator {
	return &Navigator{step: StepPortal}
}

// WithLookup makes Notes prefer catalog records over featured references.
func (n *Navigator) WithLookup(l NotesLookup) *Navigator {
	n.lookup = l
	return n
}

// Step returns the current scene.
func (n *Navigator) Step() Step { return n.step }

// Region returns the selected region, or nil.
func (n *Navigator) Region() *Region { return n.region }

// Biome returns the selected biome, or nil.
func (n *Navigator) Biome() *Biome { return n.biome }

// Featured returns the selected featured cheese, or nil.
func (n *Navigator) Featured() *FeaturedCheese { return n.featured }

// CanEnterRitual reports whether EnterRitual would succeed.
func (n *Navigator) CanEnterRitual() bool {
	return n.step == StepCheese && n.featured != nil
}

// Begin leaves the portal for the globe.
func (n *Navigator) Begin() error {
	if n.step != StepPortal {
		return n.invalid(EventBegin)
	}
	n.step = StepGlobe
	return nil
}

// SelectRegion picks a globe marker and moves to the biome scene.
func (n *Navigator) SelectRegion(key string) error {
	if n.step != StepGlobe {
		return n.invalid(EventSelectRegion)
	}
	r := FindRegion(key)
	if r == nil {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, key)
	}
	n.region = r
	n.biome = nil
	n.featured = nil
	n.step = StepBiome
	return nil
}

// PickBiome picks a biome card of the current region.
func (n *Navigator) PickBiome(key string) error {
	if n.step != StepBiome {
		return n.invalid(EventPickBiome)
	}
	b := n.region.FindBiome(key)
	if b == nil {
		return fmt.Errorf("%w: %q in region %q", ErrUnknownBiome, key, n.region.Key)
	}
	n.biome = b
	n.featured = nil
	n.step = StepCheese
	return nil
}

// SelectFeatured marks a featured cheese without leaving the cheese scene.
func (n *Navigator) SelectFeatured(id string) error {
	if n.step != StepCheese {
		return n.invalid(EventSelectFeatured)
	}
	fc := n.biome.FindFeatured(id)
	if fc == nil {
		return fmt.Errorf("%w: %q in biome %q", ErrUnknownFeatured, id, n.biome.Key)
	}
	n.featured = fc
	return nil
}

// EnterRitual moves to the ritual scene. It requires a featured cheese;
// consult CanEnterRitual first.
func (n *Navigator) EnterRitual() error {
	if n.step != StepCheese {
		return n.invalid(EventEnterRitual)
	}
	if n.featured == nil {
		return ErrNoFeatured
	}
	n.step = StepRitual
	return nil
}

// Back steps one scene toward the globe. Leaving the biome scene drops the
// region so the globe starts clean.
func (n *Navigator) Back() error {
	switch n.step {
	case StepBiome:
		n.region = nil
		n.biome = nil
		n.featured = nil
		n.step = StepGlobe
	case StepCheese:
		n.step = StepBiome
	case StepRitual:
		n.step = StepCheese
	default:
		return n.invalid(EventBack)
	}
	return nil
}

// Restart returns to the portal from anywhere and clears every selection.
func (n *Navigator) Restart() {
	n.step = StepPortal
	n.region = nil
	n.biome = nil
	n.featured = nil
}

// Apply dispatches an event to the matching transition.
func (n *Navigator) Apply(e Event) error {
	switch e.Type {
	case EventBegin:
		return n.Begin()
	case EventSelectRegion:
		return n.SelectRegion(e.Key)
	case EventPickBiome:
		return n.PickBiome(e.Key)
	case EventSelectFeatured:
		return n.SelectFeatured(e.Key)
	case EventEnterRitual:
		return n.EnterRitual()
	case EventBack:
		return n.Back()
	case EventRestart:
		n.Restart()
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
}

// Notes returns the flavor notes that theme the current scene. A selected
// featured cheese resolves through the catalog lookup first and falls back
// to its own notes; with nothing selected the biome's default entry themes
// the scene.
func (n *Navigator) Notes() []string {
	if n.featured != nil {
		if n.lookup != nil {
			if notes, ok := n.lookup(n.featured.ID); ok {
				return notes
			}
		}
		return n.featured.FlavorNotes
	}
	if fc := n.biome.DefaultEntry(); fc != nil {
		return fc.FlavorNotes
	}
	return nil
}

// State is a read-only snapshot for renderers and the API.
type State struct {
	Step           Step            `json:"step"`
	Region         *Region         `json:"region,omitempty"`
	Biome          *Biome          `json:"biome,omitempty"`
	Featured       *FeaturedCheese `json:"featured,omitempty"`
	CanEnterRitual bool            `json:"can_enter_ritual"`
	Events         []EventType     `json:"events"`
}

// Snapshot captures the navigator's current state.
func (n *Navigator) Snapshot() State {
	return State{
		Step:           n.step,
		Region:         n.region,
		Biome:          n.biome,
		Featured:       n.featured,
		CanEnterRitual: n.CanEnterRitual(),
		Events:         n.Available(),
	}
}

// Available lists the events the current step accepts. enter-ritual only
// appears once a featured cheese is selected.
func (n *Navigator) Available() []EventType {
	var out []EventType
	switch n.step {
	case StepPortal:
		out = append(out, EventBegin)
	case StepGlobe:
		out = append(out, EventSelectRegion)
	case StepBiome:
		out = append(out, EventPickBiome, EventBack)
	case StepCheese:
		out = append(out, EventSelectFeatured)
		if n.CanEnterRitual() {
			out = append(out, EventEnterRitual)
		}
		out = append(out, EventBack)
	case StepRitual:
		out = append(out, EventBack)
	}
	return append(out, EventRestart)
}

func (n *Navigator) invalid(ev EventType) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, n.step)
}
