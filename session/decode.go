package session

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

var textContentTypes = []string{"text/html", "application/xhtml+xml", "text/plain"}

// IsTextContentType reports whether a Content-Type is decoded as text.
func IsTextContentType(contentType string) bool {
	lower := strings.ToLower(contentType)
	for _, t := range textContentTypes {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// decodeText converts a textual body to UTF-8. A charset declared in the
// header or by a BOM wins. Otherwise a body that is already valid UTF-8 is kept
// as-is, since the sniffer only looks at the first 1024 bytes and falls back
// to windows-1252.
func decodeText(raw []byte, contentType string) string {
	enc, _, certain := charset.DetermineEncoding(raw, contentType)
	if !certain && utf8.Valid(raw) {
		return string(raw)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(out)
}

// decodeBytes is the best-effort path for non-text bodies: UTF-8 as-is,
// then a detected charset, then permissive UTF-8.
func decodeBytes(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(raw); err == nil && result != nil {
		if enc, _ := charset.Lookup(result.Charset); enc != nil {
			if out, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(out)
			}
		}
	}
	return strings.ToValidUTF8(string(raw), "�")
}
