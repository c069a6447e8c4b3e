package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeMode selects which characters Sanitize strips.
type SanitizeMode int

const (
	// SanitizeContent strips markup and newlines. Used for text that goes back
	// into an entry or out to a speech service.
	SanitizeContent SanitizeMode = iota
	// SanitizeFilename strips markup and every whitespace rune. Used for asset keys.
	SanitizeFilename
)

var bracketSpan = regexp.MustCompile(`\[\[[^\]]*\]\]|\[[^\]]*\]`)

// markupGlyphs are the inline formatting characters of the document syntax
// (^^highlight^^, *emphasis*, ==mark==, _italic_).
const markupGlyphs = "^*=_"

// Sanitize removes markup from text:
//   - bracketed spans such as [[page refs]] or [labels]
//   - the glyphs ^ * = _
//   - newlines (content mode) or all whitespace (filename mode)
//
// It never fails and Sanitize(Sanitize(s, m), m) == Sanitize(s, m).
func Sanitize(text string, mode SanitizeMode) string {
	if text == "" {
		return ""
	}
	text = bracketSpan.ReplaceAllString(text, "")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(markupGlyphs, r) {
			continue
		}
		switch mode {
		case SanitizeFilename:
			if unicode.IsSpace(r) {
				continue
			}
		default:
			if r == '\n' || r == '\r' {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaxAssetKeyBytes bounds asset keys well below the 255-byte file name limit,
// leaving room for the extension and the temporary name used while writing.
const MaxAssetKeyBytes = 120

// assetKeyHashLen is the number of hex digits appended to a shortened key.
const assetKeyHashLen = 8

// AssetKey derives a file-safe asset key from text: the filename-mode
// sanitization with path separators and control characters removed.
// Keys longer than MaxAssetKeyBytes are cut on a rune boundary and suffixed
// with a hash of the full key, so distinct long sentences stay distinct.
// An empty result means the text has no usable key.
func AssetKey(text string) string {
	key := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, Sanitize(text, SanitizeFilename))

	if strings.Trim(key, ".") == "" {
		return ""
	}
	if len(key) <= MaxAssetKeyBytes {
		return key
	}

	sum := sha256.Sum256([]byte(key))
	suffix := "-" + hex.EncodeToString(sum[:])[:assetKeyHashLen]
	cut := MaxAssetKeyBytes - len(suffix)
	for cut > 0 && !utf8.RuneStart(key[cut]) {
		cut--
	}
	return key[:cut] + suffix
}

// ContainsMarker reports whether text carries the card marker or the given
// custom tag, meaning the entry was already converted.
func ContainsMarker(text, customTag string) bool {
	if strings.Contains(text, CardMarker) {
		return true
	}
	customTag = strings.TrimSpace(customTag)
	return customTag != "" && strings.Contains(text, customTag)
}
