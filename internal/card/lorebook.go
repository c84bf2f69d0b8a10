package card

// Lorebook entry positions. Anything else in source JSON normalizes to
// PositionBeforeChar.
const (
	PositionBeforeChar = "before_char"
	PositionAfterChar  = "after_char"
)

// Lorebook is a card's embedded set of keyed text snippets. This package
// carries lorebooks; it does not run keyword matching.
type Lorebook struct {
	// ScanDepth is how many recent messages the consumer scans for keys
	ScanDepth int `json:"scan_depth"`

	// TokenBudget caps the total injected content size
	TokenBudget int `json:"token_budget"`

	// RecursiveScanning allows injected content to trigger further entries
	RecursiveScanning bool `json:"recursive_scanning"`

	// Entries is the ordered entry list
	Entries []LorebookEntry `json:"entries"`
}

// LorebookEntry is a single keyed snippet.
type LorebookEntry struct {
	// Keys are the trigger strings
	Keys []string `json:"keys"`

	// Content is the text injected when the entry activates
	Content string `json:"content"`

	// Enabled gates the entry entirely
	Enabled bool `json:"enabled"`

	// InsertionOrder is a stable tie-break among activated entries
	InsertionOrder int `json:"insertion_order"`

	// Priority ranks entries when the token budget forces drops; higher wins
	Priority int `json:"priority"`

	// CaseSensitive controls key matching case sensitivity
	CaseSensitive bool `json:"case_sensitive"`

	// UseRegex treats keys as regular expressions
	UseRegex bool `json:"use_regex"`

	// Selective requires a secondary key to also match
	Selective bool `json:"selective"`

	// SecondaryKeys are the additional triggers consulted when Selective
	SecondaryKeys []string `json:"secondary_keys"`

	// Constant makes the entry always active regardless of matching
	Constant bool `json:"constant"`

	// Position is where the content is injected: before_char or after_char
	Position string `json:"position"`

	// Name is an optional entry label
	Name string `json:"name"`

	// Comment is an optional author note
	Comment string `json:"comment"`
}
