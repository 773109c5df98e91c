package importer

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts raw file bytes to a string without ever failing:
// UTF-8 (with or without a byte-order mark) first, then a Latin-1 fallback
// for legacy single-byte exports, and as a last resort a lossy UTF-8 decode
// with replacement characters.
func decodeText(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if utf8.Valid(raw) {
		return string(raw)
	}

	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
		return string(decoded)
	}

	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
