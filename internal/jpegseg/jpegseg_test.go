package jpegseg

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarkerName(t *testing.T) {
	tests := []struct {
		marker Marker
		want   string
	}{
		{SOI, "SOI"},
		{APP0, "APP0"},
		{APP13, "APP13"},
		{RST0 + 7, "RST7"},
		{0xC2, "0xC2"},
		{0x10, "0x10"},
	}
	for _, tt := range tests {
		if got := tt.marker.Name(); got != tt.want {
			t.Errorf("Marker(%#x).Name() = %q, want %q", uint8(tt.marker), got, tt.want)
		}
	}
}

// A JPEG stream cut down to its markers, with fake entropy-coded data.
var testStream = []byte{
	0xFF, SOI,
	0xFF, APP0, 0x00, 0x04, 'J', 'F',
	0xFF, APP13, 0x00, 0x05, 'P', 'S', '3',
	0xFF, 0xFF, DQT, 0x00, 0x03, 0x01, // fill byte before the marker
	0xFF, SOS, 0x00, 0x03, 0x02,
	0x12, 0x34, 0xFF, 0x00, 0x56,
	0xFF, EOI,
}

func TestReadWriteSegments(t *testing.T) {
	scanner, segments, err := ReadSegments(bytes.NewReader(testStream))
	if err != nil {
		t.Fatal(err)
	}
	want := []Segment{
		{APP0, []byte("JF")},
		{APP13, []byte("PS3")},
		{DQT, []byte{0x01}},
		{SOS, []byte{0x02}},
	}
	if diff := cmp.Diff(want, segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}

	var out bytes.Buffer
	dumper, err := WriteSegments(&out, segments)
	if err != nil {
		t.Fatal(err)
	}
	if err := dumper.Copy(scanner); err != nil {
		t.Fatal(err)
	}
	// The fill byte isn't preserved.
	wantOut := append(append([]byte{}, testStream[:15]...), testStream[16:]...)
	if !bytes.Equal(out.Bytes(), wantOut) {
		t.Errorf("output = % x\nwant % x", out.Bytes(), wantOut)
	}
}

func TestReadSegmentsErrors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
	}{
		{"not JPEG", []byte("GIF89a")},
		{"missing 0xFF", []byte{0xFF, SOI, 0x12, APP0}},
		{"zero marker", []byte{0xFF, SOI, 0xFF, 0x00}},
		{"short length", []byte{0xFF, SOI, 0xFF, APP0, 0x00, 0x01}},
		{"short data", []byte{0xFF, SOI, 0xFF, APP0, 0x00, 0x08, 'J'}},
		{"no SOS", []byte{0xFF, SOI, 0xFF, APP0, 0x00, 0x02}},
	}
	for _, tt := range tests {
		if _, _, err := ReadSegments(bytes.NewReader(tt.stream)); err == nil {
			t.Errorf("%s: no error", tt.name)
		}
	}
}

func TestWriteDataTooLong(t *testing.T) {
	var out bytes.Buffer
	if err := WriteData(&out, make([]byte, MaxDataSize+1)); err == nil {
		t.Error("no error for oversized segment")
	}
	if err := WriteData(&out, make([]byte, MaxDataSize)); err != nil {
		t.Errorf("maximum size segment: %v", err)
	}
	if out.Len() != MaxDataSize+2 {
		t.Errorf("wrote %d bytes, want %d", out.Len(), MaxDataSize+2)
	}
}

func TestIsJPEGHeader(t *testing.T) {
	if !IsJPEGHeader([]byte{0xFF, 0xD8, 0xFF}) {
		t.Error("SOI not recognized")
	}
	if IsJPEGHeader([]byte{0xFF}) || IsJPEGHeader([]byte("II*\x00")) {
		t.Error("non-JPEG input recognized")
	}
}
