// Package charset resolves character-set names to golang.org/x/text encodings.
//
// Names are matched case-insensitively. Besides the WHATWG and IANA
// registries a few common aliases are understood, and "utf-16" honours a
// byte order mark, defaulting to little endian when none is present.
package charset

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/ajitpratap0/tabclean/pkg/errors"
)

var aliases = map[string]encoding.Encoding{
	"utf-8":      unicode.UTF8,
	"utf8":       unicode.UTF8,
	"utf-8-sig":  unicode.UTF8BOM,
	"utf-16":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf16":      unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16-le":  unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":   unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf-16-be":  unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"latin-1":    charmap.ISO8859_1,
	"latin1":     charmap.ISO8859_1,
	"iso-8859-1": charmap.ISO8859_1,
	"cp1252":     charmap.Windows1252,
	"cp850":      charmap.CodePage850,
	"cp437":      charmap.CodePage437,
}

// Lookup returns the encoding registered under name.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "empty encoding name")
	}
	if enc, ok := aliases[key]; ok {
		return enc, nil
	}
	if enc, err := htmlindex.Get(key); err == nil {
		return enc, nil
	}
	// ianaindex returns a nil encoding without error for names it knows
	// but cannot encode.
	if enc, err := ianaindex.IANA.Encoding(key); err == nil && enc != nil {
		return enc, nil
	}
	return nil, errors.Newf(errors.ErrorTypeConfig, "unknown encoding %q", name)
}

// IsUTF8 reports whether enc is plain UTF-8.
func IsUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8
}
