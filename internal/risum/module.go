package risum

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"
)

// module.risum binary framing: magic, version, then a little-endian u32
// payload length. Anything that fails a header check decodes to no module
// at all; modules are optional enhancements and never fail a parse.
const (
	magicByte     = 111
	formatVersion = 0
	headerLen     = 6
)

// Module is the decoded module envelope. The entry arrays are opaque
// records: this package carries them but never interprets or executes
// their content (cjs and trigger payloads included).
type Module struct {
	// Name is the module's display name
	Name string `json:"name"`

	// Description is the module's description
	Description string `json:"description"`

	// ID is the producer-assigned module identifier
	ID string `json:"id"`

	// Namespace qualifies the module's identifiers
	Namespace string `json:"namespace"`

	// Lorebook holds opaque lorebook extension records
	Lorebook []any `json:"lorebook"`

	// Regex holds opaque text-replacement records
	Regex []any `json:"regex"`

	// Trigger holds opaque trigger-script records
	Trigger []any `json:"trigger"`

	// Assets holds opaque asset-reference records
	Assets []any `json:"assets"`

	// CJS is the scripting payload, carried as-is and never executed
	CJS string `json:"cjs"`

	// LowLevelAccess marks modules requesting privileged consumer APIs
	LowLevelAccess bool `json:"low_level_access"`

	// HideIcon suppresses the module's icon in consumer UIs
	HideIcon bool `json:"hide_icon"`
}

// DecodeModule parses raw module.risum bytes into a Module, or nil when the
// bytes are unusable. Layout: byte 0 magic, byte 1 version, bytes 2..5 u32
// little-endian payload length, then the payload. Inputs shorter than the
// header, or with the wrong magic or version, yield nil without reading
// further. The payload is dictionary-decompressed and JSON-parsed; if that
// fails, the raw payload bytes are tried as JSON directly (some producers
// write uncompressed payloads). Both failing yields nil. A zero-length
// payload yields nil: it decompresses to "", which is not JSON, and the raw
// fallback fails the same way.
func DecodeModule(data []byte) *Module {
	if len(data) < headerLen {
		return nil
	}
	if data[0] != magicByte || data[1] != formatVersion {
		return nil
	}

	payload := data[headerLen:]
	if want := int64(binary.LittleEndian.Uint32(data[2:6])); want < int64(len(payload)) {
		payload = payload[:want]
	}

	if m := unmarshalModule([]byte(Decompress(payload))); m != nil {
		return m
	}
	return unmarshalModule(payload)
}

// EncodeModule frames a module as module.risum bytes. The JSON payload is
// dictionary-compressed when its text fits the codec's literal range;
// otherwise the JSON is written raw, a form DecodeModule's fallback accepts.
func EncodeModule(m *Module) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("nil module")
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal module: %w", err)
	}
	if compressed, err := Compress(string(payload)); err == nil {
		payload = compressed
	}
	if len(payload) > math.MaxUint32 {
		return nil, fmt.Errorf("payload too large: %d bytes", len(payload))
	}

	out := make([]byte, headerLen, headerLen+len(payload))
	out[0] = magicByte
	out[1] = formatVersion
	binary.LittleEndian.PutUint32(out[2:6], uint32(len(payload)))
	return append(out, payload...), nil
}

// unmarshalModule maps JSON text onto a Module with defaults for every
// absent or wrong-typed field, the same discipline the card normalizer
// applies. Only a JSON object is accepted; nil otherwise.
func unmarshalModule(data []byte) *Module {
	if !utf8.Valid(data) {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil
	}

	return &Module{
		Name:           modStr(obj, "name"),
		Description:    modStr(obj, "description"),
		ID:             modStr(obj, "id"),
		Namespace:      modStr(obj, "namespace"),
		Lorebook:       modList(obj, "lorebook"),
		Regex:          modList(obj, "regex"),
		Trigger:        modList(obj, "trigger"),
		Assets:         modList(obj, "assets"),
		CJS:            modStr(obj, "cjs"),
		LowLevelAccess: modBool(obj, "low_level_access"),
		HideIcon:       modBool(obj, "hide_icon"),
	}
}

func modStr(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func modBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func modList(m map[string]any, key string) []any {
	if l, ok := m[key].([]any); ok {
		return l
	}
	return []any{}
}
