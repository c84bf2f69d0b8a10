package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/risutools/charx/internal/config"
	"github.com/risutools/charx/internal/errors"
	"github.com/risutools/charx/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{cfg: cfg}
}

// Request types for each tool

// InspectRequest represents the arguments for inspect.
type InspectRequest struct {
	Path   string `json:"path"`
	Worker bool   `json:"worker,omitempty"`
}

// CardRequest represents the arguments for card.
type CardRequest struct {
	Path string `json:"path"`
}

// AssetsRequest represents the arguments for assets.
type AssetsRequest struct {
	Path     string `json:"path"`
	Category string `json:"category,omitempty"`
}

// ExtractRequest represents the arguments for extract.
type ExtractRequest struct {
	Path     string `json:"path"`
	Dir      string `json:"dir,omitempty"`
	Category string `json:"category,omitempty"`
	Asset    string `json:"asset,omitempty"`
}

// ModuleRequest represents the arguments for module.
type ModuleRequest struct {
	Path          string `json:"path"`
	IncludeScript bool   `json:"include_script,omitempty"`
}

// LorebookRequest represents the arguments for lorebook.
type LorebookRequest struct {
	Path string `json:"path"`
}

// MetaRequest represents the arguments for meta.
type MetaRequest struct {
	Path string `json:"path"`
	ID   string `json:"id,omitempty"`
}

// PackRequest represents the arguments for pack.
type PackRequest struct {
	Card      string `json:"card"`
	Module    string `json:"module,omitempty"`
	AssetsDir string `json:"assets_dir,omitempty"`
	MetaDir   string `json:"meta_dir,omitempty"`
	Out       string `json:"out,omitempty"`
}

// SheetRequest represents the arguments for sheet.
type SheetRequest struct {
	Path string `json:"path"`
	Out  string `json:"out,omitempty"`
}

// Handler implementations

// HandleInspect handles the inspect tool call.
func (h *Handlers) HandleInspect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InspectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Inspect(ctx, h.cfg, ops.InspectInput{
		Path:   input.Path,
		Worker: input.Worker,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCard handles the card tool call.
func (h *Handlers) HandleCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Card(ctx, h.cfg, ops.CardInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAssets handles the assets tool call.
func (h *Handlers) HandleAssets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AssetsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Assets(ctx, h.cfg, ops.AssetsInput{
		Path:     input.Path,
		Category: input.Category,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExtract handles the extract tool call.
func (h *Handlers) HandleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExtractRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Extract(ctx, h.cfg, ops.ExtractInput{
		Path:     input.Path,
		Dir:      input.Dir,
		Category: input.Category,
		Asset:    input.Asset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleModule handles the module tool call.
func (h *Handlers) HandleModule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ModuleRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Module(ctx, h.cfg, ops.ModuleInput{
		Path:          input.Path,
		IncludeScript: input.IncludeScript,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLorebook handles the lorebook tool call.
func (h *Handlers) HandleLorebook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LorebookRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Lorebook(ctx, h.cfg, ops.LorebookInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMeta handles the meta tool call.
func (h *Handlers) HandleMeta(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MetaRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Meta(ctx, h.cfg, ops.MetaInput{
		Path: input.Path,
		ID:   input.ID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePack handles the pack tool call.
func (h *Handlers) HandlePack(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PackRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Pack(ctx, h.cfg, ops.PackInput{
		CardPath:   input.Card,
		ModulePath: input.Module,
		AssetsDir:  input.AssetsDir,
		MetaDir:    input.MetaDir,
		Out:        input.Out,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSheet handles the sheet tool call.
func (h *Handlers) HandleSheet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SheetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Sheet(ctx, h.cfg, ops.SheetInput{
		Path: input.Path,
		Out:  input.Out,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if charxErr, ok := err.(*errors.CharxError); ok {
		errorObj := map[string]any{
			"code":    charxErr.Code,
			"message": charxErr.Message,
			"status":  charxErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths
		if charxErr.Code != errors.ErrInternal && charxErr.Details != nil {
			errorObj["details"] = charxErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
