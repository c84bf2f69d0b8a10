package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/risutools/charx/internal/config"
	charxerr "github.com/risutools/charx/internal/errors"
)

// ExtractInput contains parameters for the Extract operation.
type ExtractInput struct {
	Path     string
	Dir      string // destination directory, default ~/.charx/exports
	Category string // optional filter: extract one category
	Asset    string // optional filter: extract a single archive path
}

// WrittenFile records one extracted payload.
type WrittenFile struct {
	Asset string `json:"asset"`
	File  string `json:"file"`
	Size  int64  `json:"size"`
}

// SkippedFile records one asset that was selected but not written.
type SkippedFile struct {
	Asset  string `json:"asset"`
	Reason string `json:"reason"`
}

// ExtractOutput contains the result of the Extract operation.
type ExtractOutput struct {
	Path    string        `json:"path"`
	Dir     string        `json:"dir"`
	Written []WrittenFile `json:"written"`
	Skipped []SkippedFile `json:"skipped"`
}

// Extract writes asset payloads to a destination directory. Archive paths
// are flattened into single filenames (assets/emotion/happy.png becomes
// emotion-happy.png), so every written file sits directly in the validated
// directory and nested-path symlink swaps have nothing to attack.
func Extract(ctx context.Context, cfg *config.Config, input ExtractInput) (*ExtractOutput, error) {
	if input.Asset != "" && input.Category != "" {
		return nil, charxerr.NewInvalidRequest("specify either asset or category, not both")
	}
	if err := validateCategory(input.Category); err != nil {
		return nil, err
	}

	c, _, err := parseArchive(ctx, cfg, input.Path, false)
	if err != nil {
		return nil, err
	}

	// Selection: one named asset, one category, or everything.
	var selected []string
	if input.Asset != "" {
		if _, ok := c.Assets[input.Asset]; !ok {
			return nil, charxerr.NewNotFound(input.Asset)
		}
		selected = []string{input.Asset}
	} else {
		for _, a := range filterByCategory(c.Classify(), input.Category) {
			selected = append(selected, a.Path)
		}
	}

	dir := input.Dir
	if dir == "" {
		dir, err = DefaultExportsDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, charxerr.NewInternal(fmt.Errorf("create destination directory: %w", err))
	}

	out := &ExtractOutput{
		Path:    input.Path,
		Dir:     dir,
		Written: []WrittenFile{},
		Skipped: []SkippedFile{},
	}

	seen := make(map[string]string, len(selected))
	for _, assetPath := range selected {
		name := SanitizeForFilename(strings.TrimPrefix(assetPath, "assets/"))
		if prev, dup := seen[name]; dup {
			out.Skipped = append(out.Skipped, SkippedFile{
				Asset:  assetPath,
				Reason: fmt.Sprintf("filename %q already written for %s", name, prev),
			})
			continue
		}
		seen[name] = assetPath

		destPath := filepath.Join(dir, name)
		if err := ValidatePath(destPath, PathCheckWrite, nil, cfg); err != nil {
			return nil, err
		}
		if err := writeFileNoFollow(destPath, c.Assets[assetPath]); err != nil {
			return nil, err
		}

		out.Written = append(out.Written, WrittenFile{
			Asset: assetPath,
			File:  destPath,
			Size:  int64(len(c.Assets[assetPath])),
		})
	}

	return out, nil
}

// writeFileNoFollow writes data to path with symlink-safe open semantics.
func writeFileNoFollow(path string, data []byte) error {
	f, err := openFileNoFollow(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if _, ok := err.(*charxerr.CharxError); ok {
			return err
		}
		return charxerr.NewInternal(fmt.Errorf("create %s: %w", path, err))
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return charxerr.NewInternal(fmt.Errorf("write %s: %w", path, err))
	}
	return nil
}
