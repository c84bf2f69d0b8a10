package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/risutools/charx/internal/card"
	"github.com/risutools/charx/internal/charx"
	"github.com/risutools/charx/internal/config"
	charxerr "github.com/risutools/charx/internal/errors"
	"github.com/risutools/charx/internal/risum"
)

// PackInput contains parameters for the Pack operation.
type PackInput struct {
	CardPath   string // required: normalized card JSON
	ModulePath string // optional: module.risum bytes
	AssetsDir  string // optional: directory of asset payloads
	MetaDir    string // optional: directory of <id>.json metadata records
	Out        string // optional, default: ~/.charx/exports/<name>.charx
}

// PackOutput contains the result of the Pack operation.
type PackOutput struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	AssetCount int    `json:"asset_count"`
	MetaCount  int    `json:"meta_count"`
	HasModule  bool   `json:"has_module"`
	Bytes      int64  `json:"bytes"`
}

// Pack composes a .charx archive from files on disk.
func Pack(ctx context.Context, cfg *config.Config, input PackInput) (*PackOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := charx.BuildInput{}

	cardBytes, err := readValidated(input.CardPath, []string{".json"}, cfg)
	if err != nil {
		return nil, err
	}
	in.Card, err = card.Decode(cardBytes)
	if err != nil {
		return nil, err
	}

	if input.ModulePath != "" {
		moduleBytes, err := readValidated(input.ModulePath, []string{".risum"}, cfg)
		if err != nil {
			return nil, err
		}
		in.Module = risum.DecodeModule(moduleBytes)
		if in.Module == nil {
			return nil, charxerr.NewInvalidRequest("module file is not a decodable module envelope")
		}
	}

	if input.AssetsDir != "" {
		in.Assets, err = collectAssets(input.AssetsDir, cfg)
		if err != nil {
			return nil, err
		}
	}

	if input.MetaDir != "" {
		in.Meta, err = collectMeta(input.MetaDir, cfg)
		if err != nil {
			return nil, err
		}
	}

	data, err := charx.Build(in)
	if err != nil {
		return nil, err
	}

	outPath := input.Out
	if outPath == "" {
		outPath, err = defaultPackPath(in.Card.Data.Name)
		if err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(outPath, PathCheckWrite, []string{ArchiveExt}, cfg); err != nil {
		return nil, err
	}
	if err := writeAtomic(outPath, data); err != nil {
		return nil, err
	}

	return &PackOutput{
		Path:       outPath,
		Name:       in.Card.Data.Name,
		AssetCount: len(in.Assets),
		MetaCount:  len(in.Meta),
		HasModule:  in.Module != nil,
		Bytes:      int64(len(data)),
	}, nil
}

// readValidated validates a read path and loads the file.
func readValidated(path string, exts []string, cfg *config.Config) ([]byte, error) {
	if err := ValidatePath(path, PathCheckRead, exts, cfg); err != nil {
		return nil, err
	}
	f, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := err.(*charxerr.CharxError); ok {
			return nil, err
		}
		return nil, charxerr.NewInternal(fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, charxerr.NewInternal(fmt.Errorf("read %s: %w", path, err))
	}
	return data, nil
}

// collectAssets walks dir and maps relative slash paths to payloads. The
// directory itself must pass the allowed-directory check; symlinks inside
// it are rejected rather than followed.
func collectAssets(dir string, cfg *config.Config) (map[string][]byte, error) {
	if err := validateDir(dir, cfg); err != nil {
		return nil, err
	}

	out := map[string][]byte{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return charxerr.NewInternal(fmt.Errorf("walk %s: %w", dir, err))
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return charxerr.NewInvalidRequest(fmt.Sprintf("asset %s is not a regular file", p))
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return charxerr.NewInternal(fmt.Errorf("read asset %s: %w", p, err))
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return charxerr.NewInternal(fmt.Errorf("relativize %s: %w", p, err))
		}
		out[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// collectMeta reads top-level <id>.json files from dir into metadata records.
func collectMeta(dir string, cfg *config.Config) (map[string]any, error) {
	if err := validateDir(dir, cfg); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, charxerr.NewInternal(fmt.Errorf("read metadata directory: %w", err))
	}

	out := map[string]any{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if !e.Type().IsRegular() {
			return nil, charxerr.NewInvalidRequest(fmt.Sprintf("metadata %s is not a regular file", e.Name()))
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, charxerr.NewInternal(fmt.Errorf("read metadata %s: %w", e.Name(), err))
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, charxerr.NewInvalidRequest(fmt.Sprintf("metadata %s is not valid JSON: %v", e.Name(), err))
		}
		out[strings.TrimSuffix(e.Name(), ".json")] = v
	}
	return out, nil
}

// validateDir applies the allowed-directory rules to a directory argument.
func validateDir(dir string, cfg *config.Config) error {
	if containsTraversal(dir) {
		return charxerr.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return charxerr.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return charxerr.NewNotFound(dir)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return charxerr.NewInvalidRequest("directory must not be a symlink")
	}
	if !info.IsDir() {
		return charxerr.NewInvalidRequest(fmt.Sprintf("%s is not a directory", dir))
	}

	if cfg != nil && cfg.AllowUnsafePaths {
		return nil
	}

	allowedDirs, err := getAllowedDirs(cfg)
	if err != nil {
		return err
	}
	// The directory may be an allowed directory itself, or sit directly
	// inside one (a layout dir like exports/luna-src).
	if !isDirectlyInAllowedDir(abs, allowedDirs) && !isDirectlyInAllowedDir(filepath.Dir(abs), allowedDirs) {
		return charxerr.NewInvalidRequest(
			fmt.Sprintf("directory must be an allowed directory or directly inside one; allowed: %v", allowedDirs))
	}
	return nil
}

// defaultPackPath generates the default pack output path from the card name.
func defaultPackPath(name string) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SanitizeForFilename(name)+ArchiveExt), nil
}

// writeAtomic writes data to a temp file in the destination directory and
// renames it into place, preserving any existing file on failure.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return charxerr.NewInternal(fmt.Errorf("create output directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return charxerr.NewInternal(fmt.Errorf("generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if _, ok := err.(*charxerr.CharxError); ok {
			return err
		}
		return charxerr.NewInternal(fmt.Errorf("create output file: %w", err))
	}

	// Clean up the temp file on failure (any existing file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return charxerr.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return charxerr.NewInternal(err)
	}

	// Close before the atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return charxerr.NewInternal(fmt.Errorf("close output file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return charxerr.NewInternal(fmt.Errorf("output path is a symlink"))
	}

	// On Windows, os.Rename fails if the destination exists. Fail safely
	// (preserving the existing file) instead of doing a non-atomic
	// delete+rename that could lose the original if rename fails.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return charxerr.NewInvalidRequest("output destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return charxerr.NewInternal(fmt.Errorf("finalize output: %w", err))
	}

	success = true
	return nil
}
