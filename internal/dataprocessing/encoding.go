package dataprocessing

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	// EncodingAuto keeps valid UTF-8 and falls back to Latin-1 otherwise.
	EncodingAuto = "auto"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts raw file bytes to UTF-8 text using the named encoding.
// Latin-1 maps every byte to a code point, so auto mode never fails.
func decodeText(data []byte, name string) ([]byte, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" || name == EncodingAuto {
		if utf8.Valid(data) {
			return data, "utf-8", nil
		}
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, "", err
		}
		return decoded, "iso-8859-1", nil
	}

	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, "", err
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode as %s: %w", name, err)
	}
	return bytes.TrimPrefix(decoded, utf8BOM), name, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}
