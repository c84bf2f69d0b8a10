package ops

import (
	"context"

	"github.com/risutools/charx/internal/card"
	"github.com/risutools/charx/internal/config"
)

// LorebookInput contains parameters for the Lorebook operation.
type LorebookInput struct {
	Path string
}

// LorebookOutput contains the embedded lorebook, when the card carries one.
type LorebookOutput struct {
	Path       string         `json:"path"`
	Present    bool           `json:"present"`
	EntryCount int            `json:"entry_count"`
	Lorebook   *card.Lorebook `json:"lorebook,omitempty"`
}

// Lorebook returns a card's embedded lorebook. A card without one is a
// normal outcome: Present is false.
func Lorebook(ctx context.Context, cfg *config.Config, input LorebookInput) (*LorebookOutput, error) {
	c, _, err := parseArchive(ctx, cfg, input.Path, false)
	if err != nil {
		return nil, err
	}

	out := &LorebookOutput{Path: input.Path}
	if c.Card.Data.CharacterBook == nil {
		return out, nil
	}

	out.Present = true
	out.Lorebook = c.Card.Data.CharacterBook
	out.EntryCount = len(out.Lorebook.Entries)
	return out, nil
}
