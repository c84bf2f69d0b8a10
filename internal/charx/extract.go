package charx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/risutools/charx/internal/card"
	charxerr "github.com/risutools/charx/internal/errors"
	"github.com/risutools/charx/internal/risum"
)

// Options configures a parse.
type Options struct {
	// MaxEntryBytes overrides the per-entry size ceiling. Zero or negative
	// means DefaultMaxEntryBytes.
	MaxEntryBytes int64

	// Concurrency is how many entries are decompressed at once. Entries are
	// independent of each other, so reads can overlap; zero or one reads
	// sequentially.
	Concurrency int

	// Logger receives degraded-path warnings and progress. Nil discards.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxEntryBytes <= 0 {
		o.MaxEntryBytes = DefaultMaxEntryBytes
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// rawEntry is one archive entry read into memory, before classification.
type rawEntry struct {
	path string
	data []byte
}

// extract walks the archive and routes every entry by path convention:
// card.json to the normalizer (failure is fatal), module.risum to the module
// decoder (failure degrades to no module), assets/ into the raw asset map,
// x_meta/<id>.json into the metadata map (per-entry failures skip that
// entry), anything else ignored so archives may carry extra files.
func extract(ctx context.Context, data []byte, opts Options) (*Container, error) {
	opts = opts.withDefaults()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, charxerr.NewInvalidArchive(err)
	}

	entries, excluded, err := readEntries(ctx, zr, opts)
	if err != nil {
		return nil, err
	}

	container := &Container{
		Assets:        map[string][]byte{},
		Meta:          map[string]any{},
		ExcludedFiles: excluded,
	}

	var cardBytes []byte
	for _, e := range entries {
		switch {
		case e.path == "card.json":
			cardBytes = e.data
		case e.path == "module.risum":
			container.Module = risum.DecodeModule(e.data)
			if container.Module == nil {
				opts.Logger.Warn("module.risum present but undecodable, continuing without module")
			}
		case strings.HasPrefix(e.path, "assets/"):
			container.Assets[e.path] = e.data
		case strings.HasPrefix(e.path, "x_meta/"):
			id := strings.TrimSuffix(path.Base(e.path), ".json")
			var v any
			if !utf8.Valid(e.data) || json.Unmarshal(e.data, &v) != nil {
				opts.Logger.Warn("metadata entry is not valid JSON, skipping", "entry", e.path)
				continue
			}
			container.Meta[id] = v
		}
	}

	if cardBytes == nil {
		return nil, charxerr.NewCardMissing()
	}
	parsed, err := card.Decode(cardBytes)
	if err != nil {
		return nil, err
	}
	container.Card = parsed

	return container, nil
}

// entrySlot is the read outcome for one archive entry, indexed by position
// so concurrent reads keep a deterministic result order.
type entrySlot struct {
	entry    rawEntry
	excluded bool
	skip     bool
}

// readEntries reads every non-directory entry's bytes, enforcing the size
// ceiling. Entries are independent, so up to opts.Concurrency of them are
// decompressed at once; results land in per-index slots, never shared.
// Cancellation is checked between entries.
func readEntries(ctx context.Context, zr *zip.Reader, opts Options) ([]rawEntry, []string, error) {
	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files = append(files, f)
	}

	var (
		wg    sync.WaitGroup
		sem   = make(chan struct{}, opts.Concurrency)
		slots = make([]entrySlot, len(files))
	)

loop:
	for i, f := range files {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, f *zip.File) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[i] = readEntry(f, opts.MaxEntryBytes, opts.Logger)
		}(i, f)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	entries := make([]rawEntry, 0, len(files))
	excluded := []string{}
	for i, s := range slots {
		switch {
		case s.excluded:
			excluded = append(excluded, files[i].Name)
		case s.skip:
		default:
			entries = append(entries, s.entry)
		}
	}
	return entries, excluded, nil
}

// readEntry reads one entry's decompressed bytes. Oversized entries are
// excluded on the declared size when possible and re-checked against actual
// bytes, since archive headers can lie. Read failures exclude the entry
// rather than failing the parse. Entries no classification wants are not
// read at all.
func readEntry(f *zip.File, limit int64, logger *log.Logger) entrySlot {
	name := f.Name

	if f.UncompressedSize64 > uint64(limit) {
		logger.Warn("entry exceeds size ceiling, excluding",
			"entry", name, "size", f.UncompressedSize64, "limit", limit)
		return entrySlot{excluded: true}
	}
	if !relevantPath(name) {
		return entrySlot{skip: true}
	}

	rc, err := f.Open()
	if err != nil {
		logger.Warn("entry could not be opened, excluding", "entry", name, "err", err)
		return entrySlot{excluded: true}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		logger.Warn("entry could not be read, excluding", "entry", name, "err", err)
		return entrySlot{excluded: true}
	}
	if int64(len(data)) > limit {
		logger.Warn("entry exceeds size ceiling, excluding",
			"entry", name, "size", len(data), "limit", limit)
		return entrySlot{excluded: true}
	}

	logger.Debug("entry read", "entry", name, "size", len(data))
	return entrySlot{entry: rawEntry{path: name, data: data}}
}

// relevantPath reports whether classification has any use for an entry.
func relevantPath(name string) bool {
	return name == "card.json" ||
		name == "module.risum" ||
		strings.HasPrefix(name, "assets/") ||
		strings.HasPrefix(name, "x_meta/")
}
