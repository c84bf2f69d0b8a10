package ops

import (
	"context"

	"github.com/risutools/charx/internal/assets"
	"github.com/risutools/charx/internal/config"
)

// AssetsInput contains parameters for the Assets operation.
type AssetsInput struct {
	Path     string
	Category string // optional filter: emotions, icons, backgrounds, other
}

// AssetsOutput lists classified assets without their payloads.
type AssetsOutput struct {
	Path     string         `json:"path"`
	Category string         `json:"category,omitempty"`
	Assets   []assets.Asset `json:"assets"`
	Total    int            `json:"total"`
}

// Assets returns an archive's classified asset inventory.
func Assets(ctx context.Context, cfg *config.Config, input AssetsInput) (*AssetsOutput, error) {
	if err := validateCategory(input.Category); err != nil {
		return nil, err
	}

	c, _, err := parseArchive(ctx, cfg, input.Path, false)
	if err != nil {
		return nil, err
	}

	listed := filterByCategory(c.Classify(), input.Category)
	return &AssetsOutput{
		Path:     input.Path,
		Category: input.Category,
		Assets:   listed,
		Total:    len(listed),
	}, nil
}
