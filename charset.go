package app13

import (
	"bytes"

	"github.com/apex/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Charset is a text encoding usable for IPTC record values.
type Charset struct {
	name   string
	escape []byte // ISO 2022 escape sequence, nil if none is defined
	enc    encoding.Encoding
}

// Charsets with an ISO 2022 escape sequence. These are the only ones
// the record writer can declare in the envelope record.
var (
	ISO8859_1 = &Charset{"ISO-8859-1", []byte{0x1B, '.', 'A'}, charmap.ISO8859_1}
	UTF8      = &Charset{"UTF-8", []byte{0x1B, '%', 'G'}, unicode.UTF8}
	USASCII   = &Charset{"US-ASCII", []byte{0x1B, '(', 'B'}, mustIANA("US-ASCII")}
)

// DefaultCharset applies when no coded character set is declared.
var DefaultCharset = ISO8859_1

var escapeCharsets = []*Charset{UTF8, ISO8859_1, USASCII}

func mustIANA(name string) encoding.Encoding {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		panic("app13: unsupported charset " + name)
	}
	return enc
}

// Name returns the IANA name of the charset.
func (c *Charset) Name() string {
	return c.name
}

// EscapeSequence returns the bytes written in a coded character set
// record, or nil if the charset has none.
func (c *Charset) EscapeSequence() []byte {
	if c.escape == nil {
		return nil
	}
	return clone(c.escape)
}

// Encoding returns the underlying text encoding.
func (c *Charset) Encoding() encoding.Encoding {
	return c.enc
}

func (c *Charset) String() string {
	return c.name
}

// decode converts bytes to a string. Invalid input is replaced, never
// rejected.
func (c *Charset) decode(b []byte) string {
	s, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// encode converts a string, substituting characters the charset can't
// represent.
func (c *Charset) encode(s string) []byte {
	b, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}

// represents reports whether s survives an encode/decode round trip.
func (c *Charset) represents(s string) bool {
	b, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return false
	}
	return c.decode(b) == s
}

// CharsetByName looks up a charset by its IANA name or alias. It returns
// nil if the name isn't known or has no supported encoding.
func CharsetByName(name string) *Charset {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil
	}
	for _, c := range escapeCharsets {
		if c.enc == enc {
			return c
		}
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return &Charset{name: canonical, enc: enc}
}

// ResolveCharset maps the value of an IPTC coded character set record
// to a charset. Producers write either a charset name or an escape
// sequence, sometimes with spaces between its bytes; anything that
// can't be resolved gives DefaultCharset.
func ResolveCharset(coded []byte) *Charset {
	if c := CharsetByName(string(coded)); c != nil {
		return c
	}
	normalized := bytes.ReplaceAll(coded, []byte(" "), nil)
	for _, c := range escapeCharsets {
		if bytes.Equal(normalized, c.escape) {
			return c
		}
	}
	log.WithField("coded", coded).Debug("unknown coded character set, using default")
	return DefaultCharset
}
