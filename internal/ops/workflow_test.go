package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	charxerr "github.com/risutools/charx/internal/errors"
	"github.com/risutools/charx/internal/risum"
	"github.com/stretchr/testify/require"
)

const workflowCardJSON = `{
	"spec": "chara_card_v3",
	"spec_version": "3.0",
	"data": {
		"name": "Luna",
		"description": "A **bold** explorer.",
		"creator": "nightwright",
		"tags": ["Fantasy", "Sci-Fi"],
		"character_book": {
			"scan_depth": 4,
			"entries": [
				{"keys": ["moon"], "content": "Luna grew up on a lunar station.", "enabled": true, "insertion_order": 1}
			]
		},
		"assets": [
			{"type": "emotion", "uri": "embeded://assets/emotion/happy.png", "name": "happy", "ext": "png"}
		]
	}
}`

// TestFullWorkflow exercises the complete archive lifecycle:
// pack → inspect → card → assets → extract → module → lorebook → meta → sheet
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	extractDir := filepath.Join(tmpDir, "extracted")
	cfg := testConfig(tmpDir, extractDir)
	ctx := context.Background()

	// Lay out the pack sources on disk.
	cardPath := filepath.Join(tmpDir, "card.json")
	require.NoError(t, os.WriteFile(cardPath, []byte(workflowCardJSON), 0600))

	moduleBytes, err := risum.EncodeModule(&risum.Module{
		Name:     "companion",
		Lorebook: []any{map[string]any{"name": "rules"}},
		CJS:      "module.exports = {}",
	})
	require.NoError(t, err)
	modulePath := filepath.Join(tmpDir, "module.risum")
	require.NoError(t, os.WriteFile(modulePath, moduleBytes, 0600))

	assetsDir := filepath.Join(tmpDir, "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(assetsDir, "emotion"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(assetsDir, "emotion", "happy.png"), []byte("happy"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(assetsDir, "readme.txt"), []byte("notes"), 0600))

	metaDir := filepath.Join(tmpDir, "meta")
	require.NoError(t, os.MkdirAll(metaDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(metaDir, "origin.json"), []byte(`{"source":"workflow"}`), 0600))

	archivePath := filepath.Join(tmpDir, "luna.charx")

	// 1. Pack
	packOut, err := Pack(ctx, cfg, PackInput{
		CardPath:   cardPath,
		ModulePath: modulePath,
		AssetsDir:  assetsDir,
		MetaDir:    metaDir,
		Out:        archivePath,
	})
	require.NoError(t, err)
	require.Equal(t, "Luna", packOut.Name)
	require.Equal(t, 2, packOut.AssetCount)
	require.Equal(t, 1, packOut.MetaCount)
	require.True(t, packOut.HasModule)

	// 2. Inspect
	inspectOut, err := Inspect(ctx, cfg, InspectInput{Path: archivePath})
	require.NoError(t, err)
	require.Equal(t, "Luna", inspectOut.Name)
	require.Equal(t, []string{"Fantasy", "Sci-Fi"}, inspectOut.Tags)
	require.True(t, inspectOut.HasModule)
	require.Equal(t, "companion", inspectOut.ModuleName)
	require.Equal(t, 1, inspectOut.LorebookEntries)
	require.Equal(t, 1, inspectOut.AssetCounts.Emotions)
	require.Equal(t, 1, inspectOut.AssetCounts.Other)
	require.Equal(t, []string{"origin"}, inspectOut.MetaIDs)
	require.Empty(t, inspectOut.ExcludedFiles)

	// 3. Card
	cardOut, err := Card(ctx, cfg, CardInput{Path: archivePath})
	require.NoError(t, err)
	require.Equal(t, "Luna", cardOut.Card.Data.Name)
	require.NotNil(t, cardOut.Card.Data.CharacterBook)

	// 4. Assets, then filtered by category
	assetsOut, err := Assets(ctx, cfg, AssetsInput{Path: archivePath})
	require.NoError(t, err)
	require.Equal(t, 2, assetsOut.Total)

	emotions, err := Assets(ctx, cfg, AssetsInput{Path: archivePath, Category: "emotions"})
	require.NoError(t, err)
	require.Len(t, emotions.Assets, 1)
	require.Equal(t, "assets/emotion/happy.png", emotions.Assets[0].Path)
	require.Equal(t, "image/png", emotions.Assets[0].MIME)

	// 5. Extract payloads to disk
	extractOut, err := Extract(ctx, cfg, ExtractInput{Path: archivePath, Dir: extractDir})
	require.NoError(t, err)
	require.Len(t, extractOut.Written, 2)
	require.Empty(t, extractOut.Skipped)
	happy, err := os.ReadFile(filepath.Join(extractDir, "emotion-happy.png"))
	require.NoError(t, err)
	require.Equal(t, "happy", string(happy))

	// 6. Module view, script withheld then included
	moduleOut, err := Module(ctx, cfg, ModuleInput{Path: archivePath})
	require.NoError(t, err)
	require.True(t, moduleOut.Present)
	require.Equal(t, "companion", moduleOut.Module.Name)
	require.Equal(t, 1, moduleOut.Module.LorebookCount)
	require.True(t, moduleOut.Module.HasScript)
	require.Empty(t, moduleOut.Module.Script)

	moduleOut, err = Module(ctx, cfg, ModuleInput{Path: archivePath, IncludeScript: true})
	require.NoError(t, err)
	require.Equal(t, "module.exports = {}", moduleOut.Module.Script)

	// 7. Lorebook
	lorebookOut, err := Lorebook(ctx, cfg, LorebookInput{Path: archivePath})
	require.NoError(t, err)
	require.True(t, lorebookOut.Present)
	require.Equal(t, 1, lorebookOut.EntryCount)
	require.Equal(t, 4, lorebookOut.Lorebook.ScanDepth)

	// 8. Metadata records
	metaOut, err := Meta(ctx, cfg, MetaInput{Path: archivePath})
	require.NoError(t, err)
	require.Equal(t, []string{"origin"}, metaOut.IDs)
	record, ok := metaOut.Records["origin"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "workflow", record["source"])

	// 9. Sheet
	sheetPath := filepath.Join(tmpDir, "luna-sheet.html")
	sheetOut, err := Sheet(ctx, cfg, SheetInput{Path: archivePath, Out: sheetPath})
	require.NoError(t, err)
	require.Greater(t, sheetOut.Bytes, int64(0))
	html, err := os.ReadFile(sheetPath)
	require.NoError(t, err)
	require.Contains(t, string(html), "<title>Luna</title>")

	// 10. Inspect a path that no longer exists
	require.NoError(t, os.Remove(archivePath))
	_, err = Inspect(ctx, cfg, InspectInput{Path: archivePath})
	require.Error(t, err)
	var ce *charxerr.CharxError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, charxerr.ErrNotFound, ce.Code)
}
