package ops

import (
	"context"
	"sort"

	"github.com/risutools/charx/internal/config"
	charxerr "github.com/risutools/charx/internal/errors"
)

// MetaInput contains parameters for the Meta operation.
type MetaInput struct {
	Path string
	ID   string // optional: return a single record
}

// MetaOutput contains sidecar metadata records.
type MetaOutput struct {
	Path    string         `json:"path"`
	IDs     []string       `json:"ids"`
	Records map[string]any `json:"records"`
}

// Meta returns an archive's x_meta records, optionally narrowed to one ID.
func Meta(ctx context.Context, cfg *config.Config, input MetaInput) (*MetaOutput, error) {
	c, _, err := parseArchive(ctx, cfg, input.Path, false)
	if err != nil {
		return nil, err
	}

	records := c.Meta
	if input.ID != "" {
		record, ok := c.Meta[input.ID]
		if !ok {
			return nil, charxerr.NewNotFound(input.ID)
		}
		records = map[string]any{input.ID: record}
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &MetaOutput{Path: input.Path, IDs: ids, Records: records}, nil
}
