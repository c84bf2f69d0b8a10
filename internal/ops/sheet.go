package ops

import (
	"context"
	"path/filepath"

	"github.com/risutools/charx/internal/config"
	"github.com/risutools/charx/internal/sheet"
)

// SheetInput contains parameters for the Sheet operation.
type SheetInput struct {
	Path string
	Out  string // optional, default: ~/.charx/exports/<name>-sheet.html
}

// SheetOutput contains the result of the Sheet operation.
type SheetOutput struct {
	Path  string `json:"path"`
	File  string `json:"file"`
	Bytes int64  `json:"bytes"`
}

// Sheet renders an archive's HTML character sheet to a file.
func Sheet(ctx context.Context, cfg *config.Config, input SheetInput) (*SheetOutput, error) {
	c, _, err := parseArchive(ctx, cfg, input.Path, false)
	if err != nil {
		return nil, err
	}

	html, err := sheet.Render(c)
	if err != nil {
		return nil, err
	}

	outPath := input.Out
	if outPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		outPath = filepath.Join(dir, SanitizeForFilename(c.Card.Data.Name)+"-sheet.html")
	}
	if err := ValidatePath(outPath, PathCheckWrite, []string{".html"}, cfg); err != nil {
		return nil, err
	}
	if err := writeAtomic(outPath, html); err != nil {
		return nil, err
	}

	return &SheetOutput{
		Path:  input.Path,
		File:  outPath,
		Bytes: int64(len(html)),
	}, nil
}
