package app13

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// encodeBlock lays out a block by hand, independently of WriteSegment.
func encodeBlock(blockType ResourceID, name, data []byte) []byte {
	buf := append([]byte{}, "8BIM"...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(blockType))
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	if len(name)%2 == 0 {
		buf = append(buf, 0)
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, data...)
	if len(data)%2 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func makeSegment(blocks ...[]byte) []byte {
	buf := append([]byte{}, "Photoshop 3.0\x00"...)
	for _, b := range blocks {
		buf = append(buf, b...)
	}
	return buf
}

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want []Block
	}{
		{
			name: "no blocks",
			buf:  makeSegment(),
			want: []Block{},
		},
		{
			name: "empty name",
			buf:  makeSegment(encodeBlock(0x0404, nil, []byte{1, 2})),
			want: []Block{{Type: 0x0404, Name: []byte{}, Data: []byte{1, 2}}},
		},
		{
			name: "odd name length without padding",
			buf:  makeSegment(encodeBlock(0x03ED, []byte("A"), []byte{1, 2})),
			want: []Block{{Type: 0x03ED, Name: []byte("A"), Data: []byte{1, 2}}},
		},
		{
			name: "even name length with padding",
			buf:  makeSegment(encodeBlock(0x03ED, []byte("AB"), []byte{1, 2})),
			want: []Block{{Type: 0x03ED, Name: []byte("AB"), Data: []byte{1, 2}}},
		},
		{
			name: "odd data size",
			buf: makeSegment(
				encodeBlock(0x040C, nil, []byte{1, 2, 3}),
				encodeBlock(0x0404, nil, []byte{4}),
			),
			want: []Block{
				{Type: 0x040C, Name: []byte{}, Data: []byte{1, 2, 3}},
				{Type: 0x0404, Name: []byte{}, Data: []byte{4}},
			},
		},
		{
			name: "empty data",
			buf:  makeSegment(encodeBlock(0x0406, nil, nil)),
			want: []Block{{Type: 0x0406, Name: []byte{}, Data: []byte{}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, strict := range []bool{false, true} {
				got, err := ParseBlocks(tt.buf, strict)
				if err != nil {
					t.Fatalf("ParseBlocks(strict=%v) error: %v", strict, err)
				}
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("ParseBlocks(strict=%v) mismatch (-want +got):\n%s", strict, diff)
				}
			}
		})
	}
}

func TestParseBlocksZeroLengthName(t *testing.T) {
	// Length byte and one padding byte, then the size.
	buf := makeSegment([]byte("8BIM\x04\x04\x00\x00\x00\x00\x00\x02\x1c\x02"))
	blocks, err := ParseBlocks(buf, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || !bytes.Equal(blocks[0].Data, []byte{0x1c, 0x02}) {
		t.Errorf("blocks = %v, want one block with data 1c02", blocks)
	}
}

func isFormatError(err error) bool {
	var fe FormatError
	return errors.As(err, &fe)
}

func TestParseBlocksFormatErrors(t *testing.T) {
	oversized := []byte("8BIM\x04\x04\x00\x00\x00\x00\x10\x00")
	tests := []struct {
		name string
		buf  []byte
	}{
		{"missing identification", []byte("Photoshop 2.0\x008BIM")},
		{"short identification", []byte("Photo")},
		{"bad signature", makeSegment(encodeBlock(0x0404, nil, []byte{1, 2}), []byte("MeSa\x04\x04"))},
		{"oversized block", makeSegment(append(oversized, 1, 2, 3, 4))},
		{"size of whole buffer", makeSegment([]byte("8BIM\x04\x04\x00\x00\x00\x00\x00\x1a"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, strict := range []bool{false, true} {
				_, err := ParseBlocks(tt.buf, strict)
				if !isFormatError(err) {
					t.Errorf("ParseBlocks(strict=%v) error = %v, want FormatError", strict, err)
				}
			}
		})
	}
}

func TestParseBlocksTruncated(t *testing.T) {
	first := encodeBlock(0x03ED, nil, []byte{1, 2, 3, 4})
	tests := []struct {
		name string
		tail []byte
		want int // blocks returned in non-strict mode
	}{
		{"inside type", []byte("8BIM\x04"), 1},
		{"inside name", []byte("8BIM\x04\x04\x06AB"), 1},
		{"missing name padding", []byte("8BIM\x04\x04\x00"), 1},
		{"inside size", []byte("8BIM\x04\x04\x00\x00\x00\x00"), 1},
		{"missing data padding", []byte("8BIM\x04\x04\x00\x00\x00\x00\x00\x01\x1c"), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := makeSegment(first, tt.tail)
			blocks, err := ParseBlocks(buf, false)
			if err != nil {
				t.Fatalf("non-strict error: %v", err)
			}
			if len(blocks) != tt.want {
				t.Errorf("non-strict returned %d blocks, want %d", len(blocks), tt.want)
			}
			_, err = ParseBlocks(buf, true)
			var short *TruncatedError
			if !errors.As(err, &short) {
				t.Errorf("strict error = %v, want TruncatedError", err)
			}
		})
	}
}

func TestParseBlocksPartialSignature(t *testing.T) {
	buf := makeSegment(encodeBlock(0x0404, nil, []byte{1, 2}), []byte("8B"))
	for _, strict := range []bool{false, true} {
		blocks, err := ParseBlocks(buf, strict)
		if err != nil || len(blocks) != 1 {
			t.Errorf("ParseBlocks(strict=%v) = %d blocks, %v; want 1 block", strict, len(blocks), err)
		}
	}
}

func TestParseBlocksIgnoredTypes(t *testing.T) {
	for _, ignored := range []ResourceID{1084, 1085, 1086, 1087} {
		buf := makeSegment(
			encodeBlock(0x03ED, nil, []byte{1, 2}),
			encodeBlock(ignored, []byte("print"), []byte("junk that is not a block")),
			encodeBlock(0x0404, nil, []byte{3, 4}),
		)
		blocks, err := ParseBlocks(buf, true)
		if err != nil {
			t.Fatalf("type %d: %v", ignored, err)
		}
		want := []Block{
			{Type: 0x03ED, Name: []byte{}, Data: []byte{1, 2}},
			{Type: 0x0404, Name: []byte{}, Data: []byte{3, 4}},
		}
		if diff := cmp.Diff(want, blocks); diff != "" {
			t.Errorf("type %d mismatch (-want +got):\n%s", ignored, diff)
		}
	}

	// Skipping the last block runs to the end of the buffer.
	buf := makeSegment(encodeBlock(0x03ED, nil, []byte{1, 2}), encodeBlock(0x043C, nil, []byte{5, 6, 7}))
	blocks, err := ParseBlocks(buf, true)
	if err != nil || len(blocks) != 1 {
		t.Errorf("trailing ignored block: %d blocks, %v; want 1 block", len(blocks), err)
	}
}

func TestWriteSegment(t *testing.T) {
	blocks := []Block{
		{Type: 0x03ED, Name: []byte{}, Data: []byte{0, 0x48, 0, 1}},
		{Type: 0x0404, Name: []byte("AB"), Data: []byte{0x1c, 0x02, 0x00, 0x00, 0x02, 0x00, 0x02}},
		{Type: 0x040C, Name: []byte("thumb"), Data: []byte{9}},
		{Type: 0x0406, Name: nil, Data: nil},
	}
	got, err := WriteSegment(blocks)
	if err != nil {
		t.Fatal(err)
	}
	want := makeSegment(
		encodeBlock(0x03ED, nil, []byte{0, 0x48, 0, 1}),
		encodeBlock(0x0404, []byte("AB"), []byte{0x1c, 0x02, 0x00, 0x00, 0x02, 0x00, 0x02}),
		encodeBlock(0x040C, []byte("thumb"), []byte{9}),
		encodeBlock(0x0406, nil, nil),
	)
	if !bytes.Equal(got, want) {
		t.Errorf("WriteSegment = % x\nwant % x", got, want)
	}

	parsed, err := ParseBlocks(got, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != len(blocks) {
		t.Fatalf("parsed %d blocks, want %d", len(parsed), len(blocks))
	}
	for i := range blocks {
		if parsed[i].Type != blocks[i].Type || !bytes.Equal(parsed[i].Name, blocks[i].Name) || !bytes.Equal(parsed[i].Data, blocks[i].Data) {
			t.Errorf("block %d = %+v, want %+v", i, parsed[i], blocks[i])
		}
	}
}

func TestWriteSegmentLongName(t *testing.T) {
	_, err := WriteSegment([]Block{{Type: 0x0404, Name: bytes.Repeat([]byte("n"), 256)}})
	if !isFormatError(err) {
		t.Errorf("error = %v, want FormatError", err)
	}
	if _, err := WriteSegment([]Block{{Type: 0x0404, Name: bytes.Repeat([]byte("n"), 255)}}); err != nil {
		t.Errorf("255 byte name: %v", err)
	}
}

func TestResourceIDName(t *testing.T) {
	tests := []struct {
		id   ResourceID
		want string
	}{
		{IPTCNAA, "IPTC-NAA"},
		{MacNSPrintInfo, "MacNSPrintInfo"},
		{Thumbnail, "Thumbnail"},
		{0x07D1, "PathInfo1"},
		{0x1234, "0x1234"},
	}
	for _, tt := range tests {
		if got := tt.id.Name(); got != tt.want {
			t.Errorf("ResourceID(%#x).Name() = %q, want %q", uint16(tt.id), got, tt.want)
		}
	}
}
