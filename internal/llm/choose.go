package llm

import (
	"context"
	"fmt"
	"strings"
)

const chooseSystem = `You are a curious traveller choosing where to go next in a cheese world.

You will be given a situation and a numbered list of options. Reply with ONLY the key of the option you choose, exactly as written, and nothing else.`

// Option is one choice offered to ChooseOption.
type Option struct {
	Key   string
	Label string
}

// ChooseOption asks Haiku to pick one of options. The reply must be one of
// the option keys; anything else is an error so callers fall back.
func ChooseOption(ctx context.Context, client *Client, situation string, options []Option) (string, error) {
	if !client.Enabled() {
		return "", ErrDisabled
	}
	if len(options) == 0 {
		return "", fmt.Errorf("no options")
	}

	var b strings.Builder
	b.WriteString(situation)
	b.WriteString("\n\nOptions:\n")
	for i, o := range options {
		fmt.Fprintf(&b, "%d. %s (key: %s)\n", i+1, o.Label, o.Key)
	}

	resp, err := client.Complete(ctx, chooseSystem, b.String(), 32)
	if err != nil {
		return "", fmt.Errorf("choose option: %w", err)
	}
	resp = strings.Trim(strings.TrimSpace(resp), "`\"'.")
	for _, o := range options {
		if strings.EqualFold(resp, o.Key) {
			return o.Key, nil
		}
	}
	return "", fmt.Errorf("choice %q is not an option", resp)
}
