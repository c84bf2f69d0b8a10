package ops

import (
	"context"

	"github.com/risutools/charx/internal/card"
	"github.com/risutools/charx/internal/config"
)

// CardInput contains parameters for the Card operation.
type CardInput struct {
	Path string
}

// CardOutput contains the full normalized card.
type CardOutput struct {
	Path string     `json:"path"`
	Card *card.Card `json:"card"`
}

// Card returns an archive's normalized character card.
func Card(ctx context.Context, cfg *config.Config, input CardInput) (*CardOutput, error) {
	c, _, err := parseArchive(ctx, cfg, input.Path, false)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Path: input.Path, Card: c.Card}, nil
}
