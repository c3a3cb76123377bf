package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/rindverse/internal/llm"
)

var ErrStepBudget = errors.New("step budget exhausted before the ritual")

// Guide walks one session from portal to ritual.
type Guide struct {
	Observer *Observer
	Actor    *Actor
	LLM      *llm.Client // optional
	Memory   *Memory     // optional
	MaxSteps int
}

// Result summarizes a completed walk.
type Result struct {
	SessionID string
	Steps     int
	Region    string
	Biome     string
	Featured  string
	Ritual    *Ritual
}

// Walk opens a session and observes, decides and acts until the ritual is
// reached or MaxSteps events were sent.
func (g *Guide) Walk(ctx context.Context) (*Result, error) {
	view, err := g.Actor.StartSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	res := &Result{SessionID: view.ID}
	slog.Info("guide walk starting", "session", view.ID, "render", view.Render)

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		snap, err := g.Observer.Observe(ctx, res.SessionID)
		if err != nil {
			return res, fmt.Errorf("observe: %w", err)
		}

		d, err := Decide(ctx, g.LLM, snap, g.Memory)
		if errors.Is(err, ErrArrived) {
			return res, g.arrive(ctx, res, snap)
		}
		if err != nil {
			return res, fmt.Errorf("decide: %w", err)
		}

		if res.Steps >= g.MaxSteps {
			return res, ErrStepBudget
		}
		view, err := g.Actor.Send(ctx, res.SessionID, d.Event)
		if err != nil {
			return res, fmt.Errorf("act: %w", err)
		}
		res.Steps++
		slog.Info("guide moved",
			"event", d.Event.Type,
			"key", d.Event.Key,
			"source", d.Source,
			"rationale", d.Rationale,
			"step", view.State.Step,
		)
	}
}

func (g *Guide) arrive(ctx context.Context, res *Result, snap *Snapshot) error {
	st := snap.Session.State
	if st.Region != nil {
		res.Region = st.Region.Key
	}
	if st.Biome != nil {
		res.Biome = st.Biome.Key
	}
	if st.Featured != nil {
		res.Featured = st.Featured.ID
	}

	ritual, err := g.Actor.Ritual(ctx, res.SessionID)
	if err != nil {
		return fmt.Errorf("ritual: %w", err)
	}
	res.Ritual = ritual

	if g.Memory != nil {
		g.Memory.Record(WalkRecord{
			At:       time.Now().UTC(),
			Region:   res.Region,
			Biome:    res.Biome,
			Featured: res.Featured,
			Source:   ritual.Source,
		})
	}
	return nil
}
