package css

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DecodeBytes implements the CSS Syntax 3 §3.2 "decode from bytes"
// fallback chain, first hit wins:
//
//  1. UTF-8 BOM
//  2. UTF-16 BE/LE BOM
//  3. protocolEncoding, if it resolves to a known label
//  4. an ASCII @charset "…"; prelude, if its label resolves
//  5. environmentEncoding, if it resolves
//  6. UTF-8
//
// This never fails: malformed byte sequences decode to U+FFFD. Label
// resolution uses golang.org/x/text/encoding/htmlindex, which resolves the
// WHATWG Encoding Standard's labels rather than IANA/MIME charset names.
func DecodeBytes(data []byte, protocolEncoding, environmentEncoding string) string {
	if enc, rest, ok := bomEncoding(data); ok {
		return decodeResolved(enc, rest)
	}
	if enc, ok := resolveLabel(protocolEncoding); ok {
		return decodeResolved(enc, data)
	}
	if label, ok := sniffCharsetRule(data); ok {
		if enc, ok := resolveLabel(label); ok {
			return decodeResolved(enc, data)
		}
	}
	if enc, ok := resolveLabel(environmentEncoding); ok {
		return decodeResolved(enc, data)
	}
	return decodeUTF8Replace(data)
}

// resolvedEncoding wraps an x/text encoding.Encoding, or marks that the
// bytes should just be treated as UTF-8 (isUTF8 true covers both the
// explicit UTF-8-BOM case and the spec's UTF-16-label-means-UTF-8 rule
// below).
type resolvedEncoding struct {
	isUTF8 bool
	enc    encoding.Encoding
}

func bomEncoding(data []byte) (resolvedEncoding, []byte, bool) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return resolvedEncoding{isUTF8: true}, data[3:], true
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return resolvedEncoding{enc: unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)}, data, true
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return resolvedEncoding{enc: unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)}, data, true
	}
	return resolvedEncoding{}, nil, false
}

// resolveLabel resolves a WHATWG encoding label via htmlindex. A label
// that resolves to UTF-16BE/LE outside of the BOM path is treated as UTF-8
// instead: only an actual BOM may trigger real UTF-16 decoding.
func resolveLabel(label string) (resolvedEncoding, bool) {
	if label == "" {
		return resolvedEncoding{}, false
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return resolvedEncoding{}, false
	}
	name, _ := htmlindex.Name(enc)
	if strings.EqualFold(name, "UTF-16LE") || strings.EqualFold(name, "UTF-16BE") {
		return resolvedEncoding{isUTF8: true}, true
	}
	return resolvedEncoding{enc: enc}, true
}

func decodeResolved(r resolvedEncoding, data []byte) string {
	if r.isUTF8 || r.enc == nil {
		return decodeUTF8Replace(data)
	}
	out, err := r.enc.NewDecoder().Bytes(data)
	if err != nil {
		return decodeUTF8Replace(data)
	}
	return string(out)
}

// decodeUTF8Replace decodes data as UTF-8, replacing any malformed
// sequence with U+FFFD one byte at a time, exactly what utf8.DecodeRune
// already does on invalid input.
func decodeUTF8Replace(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		b.WriteRune(r)
		data = data[size:]
	}
	return b.String()
}

// sniffCharsetRule recognizes the ASCII-only `@charset "…";` prelude CSS
// Syntax 3 §3.2 step 4 looks for, without running the full tokenizer: the
// label's bytes might not even be valid in the encoding they name.
func sniffCharsetRule(data []byte) (string, bool) {
	const prefix = `@charset "`
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return "", false
	}
	rest := data[len(prefix):]
	idx := bytes.Index(rest, []byte(`";`))
	if idx < 0 {
		return "", false
	}
	label := rest[:idx]
	for _, b := range label {
		if b >= 0x80 {
			return "", false
		}
	}
	return string(label), true
}
