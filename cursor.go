package app13

import (
	"bytes"
	"encoding/binary"
)

// reader is a big-endian cursor over an in-memory buffer.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

// next returns the following n bytes without copying them.
func (r *reader) next(n int, what string) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, &TruncatedError{What: what, Need: n, Have: r.remaining()}
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) byte1(what string) (uint8, error) {
	b, err := r.next(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint16(what string) (uint16, error) {
	b, err := r.next(2, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) uint32(what string) (uint32, error) {
	b, err := r.next(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// skipTo moves the cursor to the next occurrence of marker, leaving the
// marker unread. Without a match the cursor moves to the end and false
// is returned.
func (r *reader) skipTo(marker []byte) bool {
	i := bytes.Index(r.buf[r.pos:], marker)
	if i < 0 {
		r.pos = len(r.buf)
		return false
	}
	r.pos += i
	return true
}

// clone returns a copy of b that doesn't alias the input buffer.
func clone(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
