package card

// Card is the canonical parsed character definition: a format identifier
// wrapper around the Data payload. Every field is guaranteed present after
// normalization; consumers never need to branch on missing vs empty.
type Card struct {
	// Spec is the format identifier string (e.g. "chara_card_v3")
	Spec string `json:"spec"`

	// SpecVersion is the format version string (e.g. "3.0")
	SpecVersion string `json:"spec_version"`

	// Data is the character payload
	Data Data `json:"data"`
}

// Data is the character payload of a Card.
type Data struct {
	// Name is the character's display name. The only field required to be
	// non-empty.
	Name string `json:"name"`

	// Description is the character description shown to the model
	Description string `json:"description"`

	// Personality is a short personality summary
	Personality string `json:"personality"`

	// Scenario is the scene-setting text
	Scenario string `json:"scenario"`

	// FirstMes is the character's opening message
	FirstMes string `json:"first_mes"`

	// MesExample is example dialogue
	MesExample string `json:"mes_example"`

	// CreatorNotes is free-form notes from the card author
	CreatorNotes string `json:"creator_notes"`

	// SystemPrompt overrides the consumer's system prompt when non-empty
	SystemPrompt string `json:"system_prompt"`

	// PostHistoryInstructions is injected after chat history when non-empty
	PostHistoryInstructions string `json:"post_history_instructions"`

	// AlternateGreetings are alternative opening messages
	AlternateGreetings []string `json:"alternate_greetings"`

	// Tags is an ordered tag list; duplicates are allowed and preserved
	Tags []string `json:"tags"`

	// Creator is the card author's name
	Creator string `json:"creator"`

	// CharacterVersion is the author-assigned card revision
	CharacterVersion string `json:"character_version"`

	// Nickname is an optional short name
	Nickname string `json:"nickname"`

	// CharacterBook is the embedded lorebook, nil when the card has none
	CharacterBook *Lorebook `json:"character_book,omitempty"`

	// Assets is the declared asset manifest (references, not payloads)
	Assets []AssetRef `json:"assets"`

	// Extensions is an open bag of producer-specific values, carried opaquely
	Extensions map[string]any `json:"extensions"`

	// GroupOnlyGreetings are greetings used only in group chats
	GroupOnlyGreetings []string `json:"group_only_greetings"`
}

// AssetRef is a declared asset reference from a card's manifest. It names a
// resource; the payload lives in the archive's assets/ entries.
type AssetRef struct {
	// Type is a free-form role tag (icon, emotion, background, ...)
	Type string `json:"type"`

	// URI is a scheme-prefixed reference (embeded://path, data:, ccdefault:)
	URI string `json:"uri"`

	// Name is the display name for the asset
	Name string `json:"name"`

	// Ext is the declared file extension
	Ext string `json:"ext"`
}
