// Package sheet renders a parsed container into a single self-contained
// HTML character sheet. The output embeds its styling, lists assets by
// name and size only, and carries no binary payloads, so sheets stay small
// no matter how heavy the archive is.
package sheet

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"

	"github.com/yuin/goldmark"

	"github.com/risutools/charx/internal/assets"
	"github.com/risutools/charx/internal/card"
	"github.com/risutools/charx/internal/charx"
	charxerr "github.com/risutools/charx/internal/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("sheet").Funcs(template.FuncMap{
	"formatBytes": formatBytes,
}).ParseFS(templateFS, "templates/*.html"))

// PageData is the template payload for a rendered sheet.
type PageData struct {
	Title            string
	Name             string
	Nickname         string
	Creator          string
	CharacterVersion string
	Spec             string
	SpecVersion      string
	Tags             []string

	Description  template.HTML
	Personality  template.HTML
	Scenario     template.HTML
	FirstMes     template.HTML
	CreatorNotes template.HTML

	MesExample              string
	SystemPrompt            string
	PostHistoryInstructions string

	AlternateGreetings []template.HTML
	GroupOnlyGreetings []template.HTML

	Emotions    []AssetRow
	Icons       []AssetRow
	Backgrounds []AssetRow
	Other       []AssetRow

	Lorebook *LorebookView
	Module   *ModuleView
	Meta     []MetaRow

	ExcludedFiles []string
}

// AssetRow is one asset inventory line.
type AssetRow struct {
	Path string
	Name string
	MIME string
	Size int64
}

// LorebookView is the lorebook section of the sheet.
type LorebookView struct {
	ScanDepth         int
	TokenBudget       int
	RecursiveScanning bool
	Entries           []EntryView
}

// EntryView is one lorebook entry row.
type EntryView struct {
	Name     string
	Keys     []string
	Position string
	Constant bool
	Enabled  bool
	Content  template.HTML
}

// ModuleView summarizes an attached module without exposing its payloads.
type ModuleView struct {
	Name           string
	Description    string
	ID             string
	Namespace      string
	LorebookCount  int
	RegexCount     int
	TriggerCount   int
	AssetCount     int
	HasCJS         bool
	LowLevelAccess bool
	HideIcon       bool
}

// MetaRow is one sidecar metadata record, pretty-printed.
type MetaRow struct {
	ID   string
	JSON string
}

// Render produces the HTML sheet for a parsed container.
func Render(c *charx.Container) ([]byte, error) {
	if c == nil || c.Card == nil {
		return nil, charxerr.NewInvalidRequest("container has no card")
	}

	data := buildPageData(c)

	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "sheet.html", data); err != nil {
		return nil, charxerr.NewInternal(fmt.Errorf("render sheet: %w", err))
	}
	return buf.Bytes(), nil
}

func buildPageData(c *charx.Container) PageData {
	d := c.Card.Data
	classified := c.Classify()

	data := PageData{
		Title:            d.Name,
		Name:             d.Name,
		Nickname:         d.Nickname,
		Creator:          d.Creator,
		CharacterVersion: d.CharacterVersion,
		Spec:             c.Card.Spec,
		SpecVersion:      c.Card.SpecVersion,
		Tags:             d.Tags,

		Description:  renderMarkdown(d.Description),
		Personality:  renderMarkdown(d.Personality),
		Scenario:     renderMarkdown(d.Scenario),
		FirstMes:     renderMarkdown(d.FirstMes),
		CreatorNotes: renderMarkdown(d.CreatorNotes),

		MesExample:              d.MesExample,
		SystemPrompt:            d.SystemPrompt,
		PostHistoryInstructions: d.PostHistoryInstructions,

		Emotions:    assetRows(classified.Emotions),
		Icons:       assetRows(classified.Icons),
		Backgrounds: assetRows(classified.Backgrounds),
		Other:       assetRows(classified.Other),

		ExcludedFiles: c.ExcludedFiles,
	}

	for _, g := range d.AlternateGreetings {
		data.AlternateGreetings = append(data.AlternateGreetings, renderMarkdown(g))
	}
	for _, g := range d.GroupOnlyGreetings {
		data.GroupOnlyGreetings = append(data.GroupOnlyGreetings, renderMarkdown(g))
	}

	if d.CharacterBook != nil {
		data.Lorebook = lorebookView(d.CharacterBook)
	}
	if c.Module != nil {
		data.Module = &ModuleView{
			Name:           c.Module.Name,
			Description:    c.Module.Description,
			ID:             c.Module.ID,
			Namespace:      c.Module.Namespace,
			LorebookCount:  len(c.Module.Lorebook),
			RegexCount:     len(c.Module.Regex),
			TriggerCount:   len(c.Module.Trigger),
			AssetCount:     len(c.Module.Assets),
			HasCJS:         c.Module.CJS != "",
			LowLevelAccess: c.Module.LowLevelAccess,
			HideIcon:       c.Module.HideIcon,
		}
	}

	data.Meta = metaRows(c.Meta)
	return data
}

func lorebookView(lb *card.Lorebook) *LorebookView {
	view := &LorebookView{
		ScanDepth:         lb.ScanDepth,
		TokenBudget:       lb.TokenBudget,
		RecursiveScanning: lb.RecursiveScanning,
	}
	for _, e := range lb.Entries {
		view.Entries = append(view.Entries, EntryView{
			Name:     e.Name,
			Keys:     e.Keys,
			Position: e.Position,
			Constant: e.Constant,
			Enabled:  e.Enabled,
			Content:  renderMarkdown(e.Content),
		})
	}
	return view
}

func assetRows(list []assets.Asset) []AssetRow {
	rows := make([]AssetRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, AssetRow{Path: a.Path, Name: a.Name, MIME: a.MIME, Size: a.Size})
	}
	return rows
}

func metaRows(meta map[string]any) []MetaRow {
	ids := make([]string, 0, len(meta))
	for id := range meta {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]MetaRow, 0, len(ids))
	for _, id := range ids {
		pretty, err := json.MarshalIndent(meta[id], "", "  ")
		if err != nil {
			continue
		}
		rows = append(rows, MetaRow{ID: id, JSON: string(pretty)})
	}
	return rows
}

// renderMarkdown converts markdown text to HTML using goldmark. Raw HTML in
// the source is not passed through, so card text cannot inject markup.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
