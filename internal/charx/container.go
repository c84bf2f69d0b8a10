package charx

import (
	"github.com/risutools/charx/internal/assets"
	"github.com/risutools/charx/internal/card"
	"github.com/risutools/charx/internal/risum"
)

// DefaultMaxEntryBytes is the per-entry decompressed size ceiling (50 MiB).
// A single oversized entry is excluded rather than read, bounding memory
// against compression-bomb style archives without failing the whole parse.
const DefaultMaxEntryBytes = 50 * 1024 * 1024

// Container is the terminal result of one parse. It is constructed once per
// parse call, not mutated afterwards, and owned by the caller; asset buffers
// are not shared with any other parse.
type Container struct {
	// Card is the normalized character card. Never nil in a successful
	// parse; an archive without a usable card fails instead.
	Card *card.Card `json:"card"`

	// Module is the decoded module envelope, nil when absent or undecodable
	Module *risum.Module `json:"module,omitempty"`

	// Assets maps archive entry path to raw payload bytes
	Assets map[string][]byte `json:"-"`

	// Meta maps metadata id (x_meta/<id>.json) to its decoded JSON value
	Meta map[string]any `json:"meta"`

	// ExcludedFiles lists entry paths skipped during extraction: oversized
	// entries and entries whose bytes could not be read
	ExcludedFiles []string `json:"excludedFiles"`
}

// Classify buckets the container's raw assets using the card's declared
// manifest. Safe to call repeatedly; the container is not modified.
func (c *Container) Classify() assets.Classification {
	var declared []card.AssetRef
	if c.Card != nil {
		declared = c.Card.Data.Assets
	}
	return assets.Classify(c.Assets, declared)
}
