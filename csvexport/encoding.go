package csvexport

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// asciiReplacement substitutes characters that ASCII cannot represent.
const asciiReplacement = '?'

// utf16 is little-endian with a byte order mark, as spreadsheet tools expect.
var utf16 = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// EncodeOutput converts text to the exporter's output encoding.
func (e *Exporter) EncodeOutput(text string) ([]byte, error) {
	switch e.options.Encoding {
	case UTF8:
		return []byte(text), nil
	case UTF16:
		out, err := utf16.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, errors.Wrap(err, "csvexport: failed to encode as utf-16")
		}
		return out, nil
	case ASCII:
		toASCII := runes.Map(func(r rune) rune {
			if r > 0x7F {
				return asciiReplacement
			}
			return r
		})
		out, _, err := transform.String(toASCII, text)
		if err != nil {
			return nil, errors.Wrap(err, "csvexport: failed to encode as ascii")
		}
		return []byte(out), nil
	}
	return nil, errors.Errorf("csvexport: unknown encoding %q", e.options.Encoding)
}

// DecodeInput is the inverse of EncodeOutput, used to validate encoded artifacts.
// A UTF-16 byte order mark selects the endianness.
func (e *Exporter) DecodeInput(data []byte) (string, error) {
	if e.options.Encoding != UTF16 {
		return string(data), nil
	}
	out, err := utf16.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.Wrap(err, "csvexport: failed to decode utf-16")
	}
	return string(out), nil
}
