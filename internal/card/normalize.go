package card

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	charxerr "github.com/risutools/charx/internal/errors"
)

// Decode parses raw card.json bytes and normalizes them into a Card.
// The bytes must be valid UTF-8 and valid JSON; anything else is fatal,
// a container without a usable card is not worth a partial result.
func Decode(data []byte) (*Card, error) {
	if !utf8.Valid(data) {
		return nil, charxerr.NewCardInvalid("not valid UTF-8")
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, charxerr.NewCardInvalid(fmt.Sprintf("not valid JSON: %v", err))
	}

	return Normalize(v)
}

// Normalize maps an arbitrary decoded JSON value into a canonical Card.
// Two shapes are accepted:
//  1. a wrapper object carrying spec + data keys (the archive form)
//  2. a bare object that is itself the data payload, identified by a
//     name key (standalone imports, including legacy schema versions)
//
// name must normalize to a non-empty string; every other field is
// defaulted rather than rejected, because producers vary in completeness.
// Fields are filled one by one and never inferred from other fields.
func Normalize(v any) (*Card, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, charxerr.NewCardInvalid("top-level value is not an object")
	}

	_, hasSpec := obj["spec"]
	_, hasData := obj["data"]
	_, hasName := obj["name"]

	var c *Card
	switch {
	case hasSpec && hasData:
		data, ok := obj["data"].(map[string]any)
		if !ok {
			return nil, charxerr.NewCardInvalid("data is not an object")
		}
		c = &Card{
			Spec:        str(obj, "spec"),
			SpecVersion: str(obj, "spec_version"),
			Data:        normalizeData(data),
		}
	case hasName:
		// Bare shape: the object is the data payload. Stamp the canonical
		// format identifiers since the source carries none.
		c = &Card{
			Spec:        "chara_card_v3",
			SpecVersion: "3.0",
			Data:        normalizeData(obj),
		}
	default:
		return nil, charxerr.NewCardInvalid("neither spec+data wrapper nor bare card with name")
	}

	if c.Data.Name == "" {
		return nil, charxerr.NewCardInvalid("name is missing or empty")
	}
	return c, nil
}

// normalizeData fills a Data record field by field. Absent or wrong-typed
// fields become their empty defaults.
func normalizeData(m map[string]any) Data {
	d := Data{
		Name:                    str(m, "name"),
		Description:             str(m, "description"),
		Personality:             str(m, "personality"),
		Scenario:                str(m, "scenario"),
		FirstMes:                str(m, "first_mes"),
		MesExample:              str(m, "mes_example"),
		CreatorNotes:            str(m, "creator_notes"),
		SystemPrompt:            str(m, "system_prompt"),
		PostHistoryInstructions: str(m, "post_history_instructions"),
		AlternateGreetings:      strList(m, "alternate_greetings"),
		Tags:                    strList(m, "tags"),
		Creator:                 str(m, "creator"),
		CharacterVersion:        str(m, "character_version"),
		Nickname:                str(m, "nickname"),
		Assets:                  normalizeAssets(m),
		Extensions:              objectOrEmpty(m, "extensions"),
		GroupOnlyGreetings:      strList(m, "group_only_greetings"),
	}

	if book, ok := object(m, "character_book"); ok {
		d.CharacterBook = normalizeLorebook(book)
	}

	return d
}

// normalizeLorebook fills a Lorebook with the same defaulting discipline.
func normalizeLorebook(m map[string]any) *Lorebook {
	book := &Lorebook{
		ScanDepth:         integer(m, "scan_depth"),
		TokenBudget:       integer(m, "token_budget"),
		RecursiveScanning: boolean(m, "recursive_scanning"),
		Entries:           []LorebookEntry{},
	}

	for _, item := range list(m, "entries") {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		book.Entries = append(book.Entries, normalizeEntry(entry))
	}

	return book
}

func normalizeEntry(m map[string]any) LorebookEntry {
	e := LorebookEntry{
		Keys:           strList(m, "keys"),
		Content:        str(m, "content"),
		Enabled:        boolean(m, "enabled"),
		InsertionOrder: integer(m, "insertion_order"),
		Priority:       integer(m, "priority"),
		CaseSensitive:  boolean(m, "case_sensitive"),
		UseRegex:       boolean(m, "use_regex"),
		Selective:      boolean(m, "selective"),
		SecondaryKeys:  strList(m, "secondary_keys"),
		Constant:       boolean(m, "constant"),
		Position:       str(m, "position"),
		Name:           str(m, "name"),
		Comment:        str(m, "comment"),
	}

	if e.Position != PositionAfterChar {
		e.Position = PositionBeforeChar
	}
	return e
}

func normalizeAssets(m map[string]any) []AssetRef {
	refs := []AssetRef{}
	for _, item := range list(m, "assets") {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		refs = append(refs, AssetRef{
			Type: str(entry, "type"),
			URI:  str(entry, "uri"),
			Name: str(entry, "name"),
			Ext:  str(entry, "ext"),
		})
	}
	return refs
}

// str returns m[key] as a string, or "" if absent or not a string.
func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// strList returns m[key] as a string slice, keeping order and duplicates.
// Non-string elements are skipped. Never returns nil.
func strList(m map[string]any, key string) []string {
	out := []string{}
	for _, item := range list(m, key) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// boolean returns m[key] as a bool, or false if absent or not a bool.
func boolean(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// integer returns m[key] truncated to int. JSON numbers decode as float64.
func integer(m map[string]any, key string) int {
	f, _ := m[key].(float64)
	return int(f)
}

// object returns m[key] as an object, reporting whether it was one.
func object(m map[string]any, key string) (map[string]any, bool) {
	o, ok := m[key].(map[string]any)
	return o, ok
}

// objectOrEmpty returns m[key] as an object, or an empty map.
func objectOrEmpty(m map[string]any, key string) map[string]any {
	if o, ok := object(m, key); ok {
		return o
	}
	return map[string]any{}
}

// list returns m[key] as a slice, or nil if absent or not an array.
func list(m map[string]any, key string) []any {
	l, _ := m[key].([]any)
	return l
}
