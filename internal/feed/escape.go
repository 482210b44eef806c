package feed

import "strings"

// encoding/xml escapes quotes as numeric entities; crawlers and the tests
// expect the named forms.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string {
	return xmlEscaper.Replace(sanitize(s))
}

// cdata wraps s in a CDATA section, splitting any terminator it contains.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(sanitize(s), "]]>", "]]]]><![CDATA[>") + "]]>"
}

// sanitize drops invalid UTF-8 and every rune outside the XML 1.0 Char production.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, strings.ToValidUTF8(s, ""))
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	default:
		return r >= 0x10000 && r <= 0x10FFFF
	}
}
