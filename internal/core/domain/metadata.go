package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldASCII decomposes accented characters to their base letters and drops
// whatever still falls outside printable ASCII. Object-store metadata only
// carries ASCII reliably.
func FoldASCII(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, folded)
}

// NormalizeMetadata returns a copy of m with every value ASCII-folded.
func NormalizeMetadata(m Metadata) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = FoldASCII(v)
	}
	return out
}

// SanitizeFilename produces a storage-safe filename: ASCII-folded, path
// separators removed, whitespace collapsed to underscores, and only
// [A-Za-z0-9._-] kept.
func SanitizeFilename(name string) string {
	name = FoldASCII(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, name)
	clean = strings.Trim(clean, "._")
	if clean == "" {
		return "document"
	}
	return clean
}
