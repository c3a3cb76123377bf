package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/rindverse/internal/llm"
	"github.com/talgya/rindverse/internal/rindverse"
)

var ErrArrived = errors.New("already at the ritual")

// Decision is the next event to send and who chose it.
type Decision struct {
	Event     rindverse.Event
	Rationale string
	Source    string // "llm", "fallback" or "forced" when only one move exists
}

// Decide picks the next navigator event for the observed session. With
// more than one option it asks Haiku; any LLM failure falls back to the
// deterministic choice.
func Decide(ctx context.Context, client *llm.Client, snap *Snapshot, mem *Memory) (Decision, error) {
	st := snap.Session.State
	evType, options, fallback, err := movesFor(snap, mem)
	if err != nil {
		return Decision{}, err
	}

	if len(options) == 0 {
		return Decision{Event: rindverse.Event{Type: evType}, Rationale: "only move from " + st.Step, Source: "forced"}, nil
	}
	if len(options) == 1 {
		return Decision{Event: rindverse.Event{Type: evType, Key: options[0].Key}, Rationale: "single option", Source: "forced"}, nil
	}

	if client.Enabled() {
		key, err := llm.ChooseOption(ctx, client, situation(snap, mem), options)
		if err == nil {
			return Decision{Event: rindverse.Event{Type: evType, Key: key}, Rationale: "chosen by Haiku", Source: "llm"}, nil
		}
		slog.Warn("guide choice failed, using fallback", "step", st.Step, "error", err)
	}
	return Decision{Event: rindverse.Event{Type: evType, Key: fallback.key}, Rationale: fallback.why, Source: "fallback"}, nil
}

type pick struct {
	key string
	why string
}

// movesFor lists the keyed options at the current step along with the
// deterministic pick. Steps with a single unkeyed move return no options.
func movesFor(snap *Snapshot, mem *Memory) (rindverse.EventType, []llm.Option, pick, error) {
	st := snap.Session.State
	switch st.Step {
	case rindverse.StepPortal.String():
		return rindverse.EventBegin, nil, pick{}, nil

	case rindverse.StepGlobe.String():
		if len(snap.Regions) == 0 {
			return "", nil, pick{}, fmt.Errorf("no regions observed")
		}
		opts := make([]llm.Option, 0, len(snap.Regions))
		choice := pick{key: snap.Regions[0].Key, why: "every region visited, starting over"}
		found := false
		for _, r := range snap.Regions {
			opts = append(opts, llm.Option{Key: r.Key, Label: r.Name + ": " + r.Description})
			if !found && !mem.Visited(r.Key) {
				choice = pick{key: r.Key, why: "first region not yet visited"}
				found = true
			}
		}
		return rindverse.EventSelectRegion, opts, choice, nil

	case rindverse.StepBiome.String():
		if st.Region == nil || len(st.Region.Biomes) == 0 {
			return "", nil, pick{}, fmt.Errorf("biome step without a region")
		}
		opts := make([]llm.Option, 0, len(st.Region.Biomes))
		for _, b := range st.Region.Biomes {
			opts = append(opts, llm.Option{Key: b.Key, Label: b.Name + ": " + b.Description})
		}
		return rindverse.EventPickBiome, opts, pick{key: st.Region.Biomes[0].Key, why: "first biome"}, nil

	case rindverse.StepCheese.String():
		if st.CanEnterRitual {
			return rindverse.EventEnterRitual, nil, pick{}, nil
		}
		if st.Biome == nil || len(st.Biome.Featured) == 0 {
			return "", nil, pick{}, fmt.Errorf("cheese step without featured cheeses")
		}
		opts := make([]llm.Option, 0, len(st.Biome.Featured))
		best := 0
		for i, fc := range st.Biome.Featured {
			opts = append(opts, llm.Option{Key: fc.ID, Label: fc.Label + " (" + strings.Join(fc.FlavorNotes, ", ") + ")"})
			if len(fc.FlavorNotes) > len(st.Biome.Featured[best].FlavorNotes) {
				best = i
			}
		}
		return rindverse.EventSelectFeatured, opts, pick{key: st.Biome.Featured[best].ID, why: "most flavor notes"}, nil

	case rindverse.StepRitual.String():
		return "", nil, pick{}, ErrArrived
	}
	return "", nil, pick{}, fmt.Errorf("unknown step %q", st.Step)
}

// situation describes the scene for the Haiku prompt.
func situation(snap *Snapshot, mem *Memory) string {
	var b strings.Builder
	st := snap.Session.State
	fmt.Fprintf(&b, "You are at the %s.\n", st.Step)
	if st.Region != nil {
		fmt.Fprintf(&b, "Region: %s. %s\n", st.Region.Name, st.Region.Description)
	}
	if st.Biome != nil {
		fmt.Fprintf(&b, "Biome: %s. %s\n", st.Biome.Name, st.Biome.Description)
	}
	if len(snap.Session.Notes) > 0 {
		fmt.Fprintf(&b, "The air tastes of %s.\n", strings.Join(snap.Session.Notes, ", "))
	}
	if recent := mem.FormatForPrompt(); recent != "" {
		b.WriteString("\n")
		b.WriteString(recent)
		b.WriteString("Prefer somewhere you have not been.\n")
	}
	return b.String()
}
