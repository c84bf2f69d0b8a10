package charx

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/risutools/charx/internal/card"
	charxerr "github.com/risutools/charx/internal/errors"
	"github.com/risutools/charx/internal/risum"
)

// BuildInput describes an archive to compose. Card is required; everything
// else is optional.
type BuildInput struct {
	// Card becomes the card.json entry
	Card *card.Card

	// Module, when non-nil, is encoded into the module.risum entry
	Module *risum.Module

	// Assets maps entry paths to payloads. Keys without the assets/ prefix
	// get it prepended.
	Assets map[string][]byte

	// Meta maps metadata ids to records, written as x_meta/<id>.json
	Meta map[string]any
}

// Build composes a CharX archive from its parts: the inverse of a parse.
// Entry order is deterministic (card, module, sorted assets, sorted
// metadata) so identical input produces identical archives.
func Build(in BuildInput) ([]byte, error) {
	if in.Card == nil {
		return nil, charxerr.NewInvalidRequest("card is required")
	}
	if in.Card.Data.Name == "" {
		return nil, charxerr.NewInvalidRequest("card name must not be empty")
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	writeEntry := func(name string, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("create entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write entry %s: %w", name, err)
		}
		return nil
	}

	cardJSON, err := json.Marshal(in.Card)
	if err != nil {
		return nil, charxerr.NewInternal(fmt.Errorf("marshal card: %w", err))
	}
	if err := writeEntry("card.json", cardJSON); err != nil {
		return nil, charxerr.NewInternal(err)
	}

	if in.Module != nil {
		moduleBytes, err := risum.EncodeModule(in.Module)
		if err != nil {
			return nil, charxerr.NewInternal(fmt.Errorf("encode module: %w", err))
		}
		if err := writeEntry("module.risum", moduleBytes); err != nil {
			return nil, charxerr.NewInternal(err)
		}
	}

	normalized := make(map[string][]byte, len(in.Assets))
	assetPaths := make([]string, 0, len(in.Assets))
	for p, data := range in.Assets {
		entryPath, err := assetEntryPath(p)
		if err != nil {
			return nil, err
		}
		if _, dup := normalized[entryPath]; dup {
			return nil, charxerr.NewInvalidRequest(fmt.Sprintf("duplicate asset path %q", entryPath))
		}
		normalized[entryPath] = data
		assetPaths = append(assetPaths, entryPath)
	}
	sort.Strings(assetPaths)
	for _, entryPath := range assetPaths {
		if err := writeEntry(entryPath, normalized[entryPath]); err != nil {
			return nil, charxerr.NewInternal(err)
		}
	}

	metaIDs := make([]string, 0, len(in.Meta))
	for id := range in.Meta {
		if id == "" || strings.ContainsAny(id, "/\\") {
			return nil, charxerr.NewInvalidRequest(fmt.Sprintf("invalid metadata id %q", id))
		}
		metaIDs = append(metaIDs, id)
	}
	sort.Strings(metaIDs)
	for _, id := range metaIDs {
		record, err := json.Marshal(in.Meta[id])
		if err != nil {
			return nil, charxerr.NewInternal(fmt.Errorf("marshal metadata %s: %w", id, err))
		}
		if err := writeEntry("x_meta/"+id+".json", record); err != nil {
			return nil, charxerr.NewInternal(err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, charxerr.NewInternal(fmt.Errorf("finalize archive: %w", err))
	}
	return buf.Bytes(), nil
}

// assetEntryPath normalizes an asset key to its archive entry path and
// rejects paths that would escape or alias the reserved entries.
func assetEntryPath(p string) (string, error) {
	entryPath := p
	if !strings.HasPrefix(entryPath, "assets/") {
		entryPath = "assets/" + entryPath
	}
	if strings.Contains(entryPath, "..") || strings.Contains(entryPath, "\\") || strings.HasPrefix(p, "/") {
		return "", charxerr.NewInvalidRequest(fmt.Sprintf("invalid asset path %q", p))
	}
	if strings.HasSuffix(entryPath, "/") {
		return "", charxerr.NewInvalidRequest(fmt.Sprintf("invalid asset path %q", p))
	}
	return entryPath, nil
}
