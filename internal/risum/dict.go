package risum

import "fmt"

// dictBase is the first byte value that encodes a dictionary reference.
// Bytes below it are literals, so only dictionary indices 0..127 are
// addressable on the wire.
const dictBase = 128

// Decompress decodes the adaptive dictionary codec used for module payloads.
// The dictionary is an ordered list of two-character substrings grown from
// the decoded output itself; it is never transmitted. Decoding is a strict
// single pass: each byte either appends a literal character (< 128) or
// replays dictionary entry b-128. An out-of-range reference is dropped
// silently. The format carries no checksum, so corrupt input shortens the
// output instead of failing.
func Decompress(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var (
		out  []rune
		dict []string
		seen = make(map[string]bool)
	)
	add := func(pair string) {
		if !seen[pair] {
			seen[pair] = true
			dict = append(dict, pair)
		}
	}

	for _, b := range data {
		if b < dictBase {
			out = append(out, rune(b))
			if len(out) > 1 {
				add(string(out[len(out)-2:]))
			}
			continue
		}

		idx := int(b) - dictBase
		if idx >= len(dict) {
			continue
		}
		ref := []rune(dict[idx])
		if len(out) > 0 {
			add(string([]rune{out[len(out)-1], ref[0]}))
		}
		out = append(out, ref...)
	}

	return string(out)
}

// Compress is the encoder matching Decompress: greedy two-character
// dictionary substitution with the same dictionary growth rule, so the
// decoder rebuilds identical state from the output alone. Only defined for
// input whose characters all fit the literal byte space; anything else
// returns an error and the caller falls back to writing the text raw.
func Compress(text string) ([]byte, error) {
	runes := []rune(text)
	for _, r := range runes {
		if r >= dictBase {
			return nil, fmt.Errorf("character %q outside literal range", r)
		}
	}

	var (
		out   []byte
		dict  []string
		index = make(map[string]int)
	)
	add := func(pair string) {
		if _, ok := index[pair]; !ok {
			index[pair] = len(dict)
			dict = append(dict, pair)
		}
	}

	for i := 0; i < len(runes); {
		consumed := 1
		if i+1 < len(runes) {
			pair := string(runes[i : i+2])
			if idx, ok := index[pair]; ok && idx < 256-dictBase {
				out = append(out, byte(dictBase+idx))
				consumed = 2
			}
		}
		if consumed == 1 {
			out = append(out, byte(runes[i]))
		}

		// Mirror the decoder: after each emitted symbol, the pair formed by
		// the character before the symbol and its first character becomes a
		// dictionary candidate.
		if i > 0 {
			add(string(runes[i-1 : i+1]))
		}
		i += consumed
	}

	return out, nil
}
