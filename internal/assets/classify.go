package assets

import (
	"path"
	"sort"
	"strings"

	"github.com/risutools/charx/internal/card"
)

// Category values assigned by Classify.
const (
	CategoryEmotions    = "emotions"
	CategoryIcons       = "icons"
	CategoryBackgrounds = "backgrounds"
	CategoryOther       = "other"
)

// mimeByExt is the fixed extension table for MIME inference. Anything not
// listed is generic binary.
var mimeByExt = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"webm": "video/webm",
}

// Asset is a classified, display-ready view of one extracted payload.
// It carries no bytes; payloads stay in the container's asset map.
type Asset struct {
	// Path is the archive entry path the payload came from
	Path string `json:"path"`

	// Name is the card-declared display name when the path is declared,
	// otherwise the last path segment
	Name string `json:"name"`

	// Category is one of emotions, icons, backgrounds, other
	Category string `json:"category"`

	// MIME is inferred from the file extension alone
	MIME string `json:"mime"`

	// Size is the payload length in bytes
	Size int64 `json:"size"`
}

// Classification buckets assets by semantic role.
type Classification struct {
	Emotions    []Asset `json:"emotions"`
	Icons       []Asset `json:"icons"`
	Backgrounds []Asset `json:"backgrounds"`
	Other       []Asset `json:"other"`
}

// All returns every classified asset, bucket by bucket.
func (c Classification) All() []Asset {
	out := make([]Asset, 0, len(c.Emotions)+len(c.Icons)+len(c.Backgrounds)+len(c.Other))
	out = append(out, c.Emotions...)
	out = append(out, c.Icons...)
	out = append(out, c.Backgrounds...)
	out = append(out, c.Other...)
	return out
}

// Classify post-processes a raw extracted asset map using the card's
// declared asset manifest. Display names come from declarations whose
// embeded:// URI matches the entry path, falling back to the last path
// segment. Category is decided by the first matching path marker; MIME by
// extension. Classification reads its inputs without modifying them, so
// classifying the same map twice yields identical results.
func Classify(raw map[string][]byte, declared []card.AssetRef) Classification {
	names := make(map[string]string, len(declared))
	for _, ref := range declared {
		uri := strings.TrimPrefix(ref.URI, "embeded://")
		if uri != "" {
			names[uri] = ref.Name
		}
	}

	paths := make([]string, 0, len(raw))
	for p := range raw {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out Classification
	for _, p := range paths {
		a := Asset{
			Path:     p,
			Name:     names[p],
			Category: categoryFor(p),
			MIME:     MIMEFor(p),
			Size:     int64(len(raw[p])),
		}
		if a.Name == "" {
			a.Name = path.Base(p)
		}

		switch a.Category {
		case CategoryEmotions:
			out.Emotions = append(out.Emotions, a)
		case CategoryIcons:
			out.Icons = append(out.Icons, a)
		case CategoryBackgrounds:
			out.Backgrounds = append(out.Backgrounds, a)
		default:
			out.Other = append(out.Other, a)
		}
	}
	return out
}

// categoryFor tests the literal path-segment markers in order; first match
// wins and the default is other.
func categoryFor(p string) string {
	switch {
	case strings.Contains(p, "/emotion/"):
		return CategoryEmotions
	case strings.Contains(p, "/icon/"):
		return CategoryIcons
	case strings.Contains(p, "/background/"):
		return CategoryBackgrounds
	default:
		return CategoryOther
	}
}

// MIMEFor infers a MIME type from a path's extension.
func MIMEFor(p string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if mime, ok := mimeByExt[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
