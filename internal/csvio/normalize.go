package csvio

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Normalize turns a raw tabular payload into canonical UTF-8 text with
// LF line endings, no leading BOM and no trailing blank lines. It never
// fails; an empty payload comes back as an empty string and is caught
// later by header validation.
func Normalize(raw string) string {
	data := sanitizeUTF8([]byte(raw))
	text := string(data)
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.HasSuffix(text, "\n") || strings.HasSuffix(text, " ") || strings.HasSuffix(text, "\t") {
		text = strings.TrimRight(text, " \t")
		text = strings.TrimSuffix(text, "\n")
	}
	return text
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\ufffd')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}

// sniffDelimiter inspects the header line and picks the field
// delimiter. Comma wins ties so a plain CSV is never misread.
func sniffDelimiter(firstLine string) rune {
	best := ','
	bestCount := strings.Count(firstLine, ",")
	for _, cand := range []rune{';', '\t'} {
		if n := strings.Count(firstLine, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}
