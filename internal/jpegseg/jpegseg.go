// Package jpegseg reads and writes JPEG markers and segment data up to
// the start of scan, for the commands that rewrite APP13 segments.
package jpegseg

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Markers the tools need to recognize.
const (
	TEM   = 0x01
	RST0  = 0xD0 // RSTn = RST0+n, n = 0-7
	SOI   = 0xD8
	EOI   = 0xD9
	SOS   = 0xDA
	DQT   = 0xDB
	APP0  = 0xE0 // APPn = APP0+n, n = 0-15
	APP13 = APP0 + 13
	COM   = 0xFE
)

// Marker represents a JPEG marker, which usually indicates the start of a
// segment.
type Marker uint8

// Name returns the name of a marker, or its hex value for markers
// without a listed name.
func (m Marker) Name() string {
	switch {
	case m == SOI:
		return "SOI"
	case m == EOI:
		return "EOI"
	case m == SOS:
		return "SOS"
	case m == DQT:
		return "DQT"
	case m == COM:
		return "COM"
	case m >= APP0 && m <= APP0+15:
		return fmt.Sprintf("APP%d", m-APP0)
	case m >= RST0 && m <= RST0+7:
		return fmt.Sprintf("RST%d", m-RST0)
	}
	return fmt.Sprintf("0x%02X", uint8(m))
}

// MaxDataSize is the largest segment payload, excluding the length field.
const MaxDataSize = 1<<16 - 3

// IsJPEGHeader reports whether buf starts with an SOI marker.
func IsJPEGHeader(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == SOI
}

// ReadHeader reads the SOI marker. Fill bytes aren't allowed before it.
func ReadHeader(reader io.Reader) error {
	var buf [2]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return err
	}
	if !IsJPEGHeader(buf[:]) {
		return errors.New("SOI marker not found")
	}
	return nil
}

// ReadMarker reads a marker, skipping 0xFF fill bytes.
func ReadMarker(reader io.Reader) (Marker, error) {
	var buf [2]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		return 0, err
	}
	if buf[0] != 0xFF {
		return 0, errors.Errorf("0xFF expected in marker, found 0x%.2X", buf[0])
	}
	b := buf[1:2]
	for b[0] == 0xFF {
		if _, err := io.ReadFull(reader, b); err != nil {
			return 0, err
		}
	}
	if b[0] == 0 {
		return 0, errors.New("invalid marker 0")
	}
	return Marker(b[0]), nil
}

func WriteMarker(writer io.Writer, marker Marker) error {
	_, err := writer.Write([]byte{0xFF, byte(marker)})
	return err
}

// ReadData reads the length field and payload of a segment.
func ReadData(reader io.Reader) ([]byte, error) {
	var lenbuf [2]byte
	if _, err := io.ReadFull(reader, lenbuf[:]); err != nil {
		return nil, err
	}
	length := int(lenbuf[0])<<8 + int(lenbuf[1]) - 2
	if length < 0 {
		return nil, errors.Errorf("invalid segment length %d", length+2)
	}
	buf := make([]byte, length)
	_, err := io.ReadFull(reader, buf)
	return buf, err
}

func WriteData(writer io.Writer, buf []byte) error {
	if len(buf) > MaxDataSize {
		return errors.Errorf("segment data is too long (%d), max %d", len(buf), MaxDataSize)
	}
	length := len(buf) + 2
	if _, err := writer.Write([]byte{byte(length >> 8), byte(length)}); err != nil {
		return err
	}
	_, err := writer.Write(buf)
	return err
}

// hasData reports whether a marker is followed by a length and payload.
func hasData(marker Marker) bool {
	return !(marker == TEM || marker == SOI || marker == EOI || marker >= RST0 && marker <= RST0+7)
}

// Scanner reads JPEG markers and segments up to the SOS segment.
type Scanner struct {
	reader io.Reader
}

// NewScanner creates a new Scanner and checks the JPEG header.
func NewScanner(reader io.Reader) (*Scanner, error) {
	if err := ReadHeader(reader); err != nil {
		return nil, err
	}
	return &Scanner{reader: reader}, nil
}

// Scan reads the next marker and its segment data, which is nil for
// markers without data. It doesn't work past the SOS segment.
func (scanner *Scanner) Scan() (Marker, []byte, error) {
	marker, err := ReadMarker(scanner.reader)
	if err != nil {
		return 0, nil, err
	}
	if !hasData(marker) {
		return marker, nil, nil
	}
	segment, err := ReadData(scanner.reader)
	return marker, segment, err
}

// Dumper writes JPEG markers and segments up to the SOS segment.
type Dumper struct {
	writer io.Writer
}

// NewDumper creates a new Dumper and writes the JPEG header.
func NewDumper(writer io.Writer) (*Dumper, error) {
	if err := WriteMarker(writer, SOI); err != nil {
		return nil, err
	}
	return &Dumper{writer: writer}, nil
}

// Dump writes a marker and, if it isn't nil, its segment data.
func (dumper *Dumper) Dump(marker Marker, buf []byte) error {
	if err := WriteMarker(dumper.writer, marker); err != nil {
		return err
	}
	if buf == nil && !hasData(marker) {
		return nil
	}
	return WriteData(dumper.writer, buf)
}

// Copy copies everything the scanner hasn't read, which after SOS is the
// entropy-coded data and whatever follows it.
func (dumper *Dumper) Copy(scanner *Scanner) error {
	_, err := io.Copy(dumper.writer, scanner.reader)
	return err
}

// Segment represents a marker and its segment data.
type Segment struct {
	Marker Marker
	Data   []byte
}

// ReadSegments reads a JPEG stream up to and including the SOS segment.
// The scanner is returned so that the rest of the stream can be copied.
func ReadSegments(reader io.Reader) (*Scanner, []Segment, error) {
	segments := make([]Segment, 0, 20)
	scanner, err := NewScanner(reader)
	if err != nil {
		return nil, nil, err
	}
	for {
		marker, buf, err := scanner.Scan()
		if err != nil {
			return scanner, segments, err
		}
		segments = append(segments, Segment{marker, buf})
		if marker == SOS {
			return scanner, segments, nil
		}
	}
}

// WriteSegments writes the JPEG header followed by segments.
func WriteSegments(writer io.Writer, segments []Segment) (*Dumper, error) {
	dumper, err := NewDumper(writer)
	if err != nil {
		return nil, err
	}
	for _, seg := range segments {
		if err := dumper.Dump(seg.Marker, seg.Data); err != nil {
			return nil, err
		}
	}
	return dumper, nil
}
