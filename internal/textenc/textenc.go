// Package textenc decodes input files in legacy character sets to UTF-8.
package textenc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/flat2tab/internal/types"
)

// aliases covers common spellings that are not IANA names.
var aliases = map[string]encoding.Encoding{
	"cp1252":  charmap.Windows1252,
	"latin1":  charmap.ISO8859_1,
	"latin-1": charmap.ISO8859_1,
	"cp437":   charmap.CodePage437,
	"cp850":   charmap.CodePage850,
}

// Lookup resolves an encoding name. An empty name means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8", "utf-8-sig":
		return unicode.UTF8BOM, nil
	}
	if enc, ok := aliases[key]; ok {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return nil, types.E(types.ErrConfig, "textenc.Lookup", fmt.Errorf("unsupported input encoding %q", name))
	}
	return enc, nil
}

// Reader wraps r so it yields UTF-8. UTF-8 input passes through with a
// leading byte order mark removed.
func Reader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
