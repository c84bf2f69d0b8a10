package ops

import (
	"context"

	"github.com/risutools/charx/internal/config"
)

// ModuleInput contains parameters for the Module operation.
type ModuleInput struct {
	Path          string
	IncludeScript bool // include the raw cjs payload in the output
}

// ModuleView is the envelope summary returned by Module. Entry payloads are
// reported as counts; the script body is withheld unless asked for.
type ModuleView struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	ID             string `json:"id"`
	Namespace      string `json:"namespace"`
	LorebookCount  int    `json:"lorebook_count"`
	RegexCount     int    `json:"regex_count"`
	TriggerCount   int    `json:"trigger_count"`
	AssetCount     int    `json:"asset_count"`
	HasScript      bool   `json:"has_script"`
	Script         string `json:"script,omitempty"`
	LowLevelAccess bool   `json:"low_level_access"`
	HideIcon       bool   `json:"hide_icon"`
}

// ModuleOutput contains the result of the Module operation.
type ModuleOutput struct {
	Path    string      `json:"path"`
	Present bool        `json:"present"`
	Module  *ModuleView `json:"module,omitempty"`
}

// Module reports an archive's decoded module envelope. Absence is a normal
// outcome, not an error: Present is false and Module is nil.
func Module(ctx context.Context, cfg *config.Config, input ModuleInput) (*ModuleOutput, error) {
	c, _, err := parseArchive(ctx, cfg, input.Path, false)
	if err != nil {
		return nil, err
	}

	out := &ModuleOutput{Path: input.Path}
	if c.Module == nil {
		return out, nil
	}

	out.Present = true
	out.Module = &ModuleView{
		Name:           c.Module.Name,
		Description:    c.Module.Description,
		ID:             c.Module.ID,
		Namespace:      c.Module.Namespace,
		LorebookCount:  len(c.Module.Lorebook),
		RegexCount:     len(c.Module.Regex),
		TriggerCount:   len(c.Module.Trigger),
		AssetCount:     len(c.Module.Assets),
		HasScript:      c.Module.CJS != "",
		LowLevelAccess: c.Module.LowLevelAccess,
		HideIcon:       c.Module.HideIcon,
	}
	if input.IncludeScript {
		out.Module.Script = c.Module.CJS
	}
	return out, nil
}
