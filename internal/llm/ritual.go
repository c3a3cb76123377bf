// Ritual narration: a short tasting invocation for the featured cheese.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// RitualContext describes the cheese the visitor brought into the ritual.
type RitualContext struct {
	Cheese  string
	Tagline string
	Region  string
	Biome   string
	Notes   []string
	Palette string // CSS color of the primary accent, for mood
	Weather string // live conditions in the region, if known
}

const ritualSystem = `You are the keeper of the RINDVERSE tasting ritual. A visitor has travelled from the portal across the globe to a single cheese.

Write 2-3 sentences inviting them to taste it: name the place, call out its flavor notes as sensations, and end on an instruction (breathe, break, taste). Warm, unhurried, no lists, no emoji. Do not mention being an AI.`

// NarrateRitual asks Haiku for ritual prose.
func NarrateRitual(ctx context.Context, client *Client, rc RitualContext) (string, error) {
	if !client.Enabled() {
		return "", ErrDisabled
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cheese: %s\n", rc.Cheese)
	if rc.Tagline != "" {
		fmt.Fprintf(&b, "Tagline: %s\n", rc.Tagline)
	}
	fmt.Fprintf(&b, "Place: %s, %s\n", rc.Biome, rc.Region)
	if len(rc.Notes) > 0 {
		fmt.Fprintf(&b, "Flavor notes: %s\n", strings.Join(rc.Notes, ", "))
	}
	if rc.Palette != "" {
		fmt.Fprintf(&b, "Light in the room: %s\n", rc.Palette)
	}
	if rc.Weather != "" {
		fmt.Fprintf(&b, "Outside, over the region right now: %s\n", rc.Weather)
	}

	text, err := client.Complete(ctx, ritualSystem, b.String(), 220)
	if err != nil {
		return "", fmt.Errorf("narrate ritual: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// FallbackRitual is the deterministic narration used without Haiku.
func FallbackRitual(rc RitualContext) string {
	notes := "its quiet character"
	switch len(rc.Notes) {
	case 0:
	case 1:
		notes = rc.Notes[0]
	default:
		notes = strings.Join(rc.Notes[:len(rc.Notes)-1], ", ") + " and " + rc.Notes[len(rc.Notes)-1]
	}
	line := fmt.Sprintf("You have come from %s in %s to %s.", rc.Biome, rc.Region, rc.Cheese)
	if rc.Tagline != "" {
		line += " " + rc.Tagline
	}
	return fmt.Sprintf("%s Breathe in %s. Break a piece, let it warm, and taste.", line, notes)
}
