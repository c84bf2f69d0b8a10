package ops

import (
	"context"
	"sort"

	"github.com/risutools/charx/internal/config"
)

// InspectInput contains parameters for the Inspect operation.
type InspectInput struct {
	Path   string
	Worker bool // parse in an isolated worker goroutine
}

// CategoryCounts is the per-category asset tally.
type CategoryCounts struct {
	Emotions    int `json:"emotions"`
	Icons       int `json:"icons"`
	Backgrounds int `json:"backgrounds"`
	Other       int `json:"other"`
}

// InspectOutput summarizes an archive without exposing any payload bytes.
type InspectOutput struct {
	Path             string         `json:"path"`
	ArchiveBytes     int64          `json:"archive_bytes"`
	JobID            string         `json:"job_id,omitempty"`
	Name             string         `json:"name"`
	Nickname         string         `json:"nickname,omitempty"`
	Creator          string         `json:"creator,omitempty"`
	CharacterVersion string         `json:"character_version,omitempty"`
	Spec             string         `json:"spec"`
	SpecVersion      string         `json:"spec_version"`
	Tags             []string       `json:"tags"`
	HasModule        bool           `json:"has_module"`
	ModuleName       string         `json:"module_name,omitempty"`
	LorebookEntries  int            `json:"lorebook_entries"`
	AssetCounts      CategoryCounts `json:"asset_counts"`
	MetaIDs          []string       `json:"meta_ids"`
	ExcludedFiles    []string       `json:"excluded_files"`
}

// Inspect parses an archive and reports its shape.
func Inspect(ctx context.Context, cfg *config.Config, input InspectInput) (*InspectOutput, error) {
	c, jobID, err := parseArchive(ctx, cfg, input.Path, input.Worker)
	if err != nil {
		return nil, err
	}

	classified := c.Classify()
	d := c.Card.Data

	out := &InspectOutput{
		Path:             input.Path,
		ArchiveBytes:     archiveSize(input.Path),
		JobID:            jobID,
		Name:             d.Name,
		Nickname:         d.Nickname,
		Creator:          d.Creator,
		CharacterVersion: d.CharacterVersion,
		Spec:             c.Card.Spec,
		SpecVersion:      c.Card.SpecVersion,
		Tags:             d.Tags,
		HasModule:        c.Module != nil,
		AssetCounts: CategoryCounts{
			Emotions:    len(classified.Emotions),
			Icons:       len(classified.Icons),
			Backgrounds: len(classified.Backgrounds),
			Other:       len(classified.Other),
		},
		MetaIDs:       make([]string, 0, len(c.Meta)),
		ExcludedFiles: c.ExcludedFiles,
	}

	if c.Module != nil {
		out.ModuleName = c.Module.Name
	}
	if d.CharacterBook != nil {
		out.LorebookEntries = len(d.CharacterBook.Entries)
	}
	for id := range c.Meta {
		out.MetaIDs = append(out.MetaIDs, id)
	}
	sort.Strings(out.MetaIDs)

	return out, nil
}
