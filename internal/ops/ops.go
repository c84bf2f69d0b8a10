// Package ops implements the file-level operations shared by the CLI and
// the MCP server. Every operation takes an Input struct, validates paths
// before touching the filesystem, and returns an Output struct that both
// front ends serialize as-is.
package ops

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/risutools/charx/internal/assets"
	"github.com/risutools/charx/internal/charx"
	"github.com/risutools/charx/internal/config"
	charxerr "github.com/risutools/charx/internal/errors"
)

// ArchiveExt is the file extension required for archive reads.
const ArchiveExt = ".charx"

// readArchive validates path and loads the archive bytes.
func readArchive(path string, cfg *config.Config) ([]byte, error) {
	if err := ValidatePath(path, PathCheckRead, []string{ArchiveExt}, cfg); err != nil {
		return nil, err
	}

	f, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := err.(*charxerr.CharxError); ok {
			return nil, err
		}
		return nil, charxerr.NewInternal(fmt.Errorf("open archive: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, charxerr.NewInternal(fmt.Errorf("read archive: %w", err))
	}
	return data, nil
}

// parseOptions maps configuration onto parser options. Degraded-path
// warnings go to the default logger (stderr), which is safe alongside the
// MCP stdio transport on stdout.
func parseOptions(cfg *config.Config) charx.Options {
	opts := charx.Options{Logger: log.Default()}
	if cfg != nil {
		opts.MaxEntryBytes = cfg.MaxEntryBytes
		opts.Concurrency = cfg.ParseConcurrency
	}
	return opts
}

// parseArchive loads and parses path. With worker set, the parse runs in an
// isolated goroutine via Dispatch and the job ID is returned with the result.
func parseArchive(ctx context.Context, cfg *config.Config, path string, worker bool) (*charx.Container, string, error) {
	data, err := readArchive(path, cfg)
	if err != nil {
		return nil, "", err
	}
	opts := parseOptions(cfg)

	if worker {
		req, err := charx.NewRequest(data, opts)
		if err != nil {
			return nil, "", err
		}
		resp := <-charx.Dispatch(ctx, req)
		return resp.Container, resp.JobID, resp.Err
	}

	c, err := charx.Parse(ctx, data, opts)
	return c, "", err
}

// KnownCategories lists the asset category filter values operations accept.
var KnownCategories = []string{
	assets.CategoryEmotions,
	assets.CategoryIcons,
	assets.CategoryBackgrounds,
	assets.CategoryOther,
}

// validateCategory checks an optional category filter value.
func validateCategory(category string) error {
	if category == "" {
		return nil
	}
	for _, known := range KnownCategories {
		if category == known {
			return nil
		}
	}
	return charxerr.NewInvalidRequest(fmt.Sprintf("unknown category %q; known: %v", category, KnownCategories))
}

// filterByCategory returns the bucket a filter names, or every asset for an
// empty filter.
func filterByCategory(classified assets.Classification, category string) []assets.Asset {
	switch category {
	case assets.CategoryEmotions:
		return classified.Emotions
	case assets.CategoryIcons:
		return classified.Icons
	case assets.CategoryBackgrounds:
		return classified.Backgrounds
	case assets.CategoryOther:
		return classified.Other
	default:
		return classified.All()
	}
}

// archiveSize stats path for reporting. Errors degrade to zero; size is
// informational only.
func archiveSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
