package charx

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/risutools/charx/internal/card"
	charxerr "github.com/risutools/charx/internal/errors"
	"github.com/risutools/charx/internal/risum"
)

func TestBuild_RoundTrip(t *testing.T) {
	src, err := card.Decode([]byte(minimalCardJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	module := &risum.Module{
		Name:           "companion",
		Description:    "adds greetings",
		ID:             "mod-1",
		Namespace:      "builds",
		Lorebook:       []any{},
		Regex:          []any{map[string]any{"in": "hi", "out": "hello"}},
		Trigger:        []any{},
		Assets:         []any{},
		LowLevelAccess: true,
	}
	in := BuildInput{
		Card:   src,
		Module: module,
		Assets: map[string][]byte{
			"assets/emotion/smile.png": []byte("smile-bytes"),
			"icon/main.png":            []byte("icon-bytes"),
		},
		Meta: map[string]any{
			"origin": map[string]any{"source": "demo"},
		},
	}

	data, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	c, err := Parse(context.Background(), data, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !reflect.DeepEqual(c.Card, src) {
		t.Errorf("card did not survive the round trip:\n got %+v\nwant %+v", c.Card, src)
	}
	if !reflect.DeepEqual(c.Module, module) {
		t.Errorf("module did not survive the round trip:\n got %+v\nwant %+v", c.Module, module)
	}
	if got := c.Assets["assets/emotion/smile.png"]; string(got) != "smile-bytes" {
		t.Errorf("asset bytes = %q, want %q", got, "smile-bytes")
	}
	if got := c.Assets["assets/icon/main.png"]; string(got) != "icon-bytes" {
		t.Errorf("prefixless asset key should land under assets/, got %q", got)
	}
	if !reflect.DeepEqual(c.Meta, in.Meta) {
		t.Errorf("Meta = %+v, want %+v", c.Meta, in.Meta)
	}
	if len(c.ExcludedFiles) != 0 {
		t.Errorf("ExcludedFiles = %v, want empty", c.ExcludedFiles)
	}
}

func TestBuild_Validation(t *testing.T) {
	valid, err := card.Decode([]byte(minimalCardJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	tests := []struct {
		name string
		in   BuildInput
	}{
		{
			name: "nil card",
			in:   BuildInput{},
		},
		{
			name: "empty card name",
			in:   BuildInput{Card: &card.Card{Spec: "chara_card_v3", SpecVersion: "3.0"}},
		},
		{
			name: "asset path traversal",
			in:   BuildInput{Card: valid, Assets: map[string][]byte{"../evil.png": []byte("x")}},
		},
		{
			name: "asset path backslash",
			in:   BuildInput{Card: valid, Assets: map[string][]byte{`dir\a.png`: []byte("x")}},
		},
		{
			name: "asset path absolute",
			in:   BuildInput{Card: valid, Assets: map[string][]byte{"/abs.png": []byte("x")}},
		},
		{
			name: "asset path trailing slash",
			in:   BuildInput{Card: valid, Assets: map[string][]byte{"dir/": []byte("x")}},
		},
		{
			name: "duplicate asset paths after normalization",
			in: BuildInput{Card: valid, Assets: map[string][]byte{
				"icon/a.png":        []byte("1"),
				"assets/icon/a.png": []byte("2"),
			}},
		},
		{
			name: "empty metadata id",
			in:   BuildInput{Card: valid, Meta: map[string]any{"": "x"}},
		},
		{
			name: "metadata id with slash",
			in:   BuildInput{Card: valid, Meta: map[string]any{"a/b": "x"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.in)
			if err == nil {
				t.Fatal("Build() expected error, got nil")
			}
			if !charxerr.Is(err, charxerr.ErrInvalidRequest) {
				t.Errorf("error = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	src, err := card.Decode([]byte(minimalCardJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	in := BuildInput{
		Card:   src,
		Module: &risum.Module{Name: "m", Lorebook: []any{}, Regex: []any{}, Trigger: []any{}, Assets: []any{}},
		Assets: map[string][]byte{
			"emotion/a.png": []byte("a"),
			"emotion/b.png": []byte("b"),
			"icon/c.png":    []byte("c"),
		},
		Meta: map[string]any{"one": "1", "two": "2"},
	}

	first, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical input should produce identical archive bytes")
	}
}

func TestBuild_CardOnly(t *testing.T) {
	src, err := card.Decode([]byte(minimalCardJSON))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	data, err := Build(BuildInput{Card: src})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	c, err := Parse(context.Background(), data, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Module != nil {
		t.Errorf("Module = %+v, want nil", c.Module)
	}
	if len(c.Assets) != 0 {
		t.Errorf("Assets = %v, want empty", c.Assets)
	}
	if len(c.Meta) != 0 {
		t.Errorf("Meta = %v, want empty", c.Meta)
	}
}
