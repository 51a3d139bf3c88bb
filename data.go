package app13

import (
	"bytes"

	"github.com/pkg/errors"
)

// Identification string at the start of a Photoshop APP13 segment.
var photoshopHeader = []byte("Photoshop 3.0\x00")

// Size of the Photoshop identification string.
const HeaderSize = 14

// Check if a slice starts with the Photoshop identification string, as
// found in a JPEG APP13 segment. Returns a flag and the position of the
// next byte.
func GetHeader(buf []byte) (bool, int) {
	if len(buf) >= HeaderSize && bytes.Equal(buf[:HeaderSize], photoshopHeader) {
		return true, HeaderSize
	}
	return false, 0
}

// Put the Photoshop identification string at the start of a slice,
// returning the position of the next byte.
func PutHeader(buf []byte) int {
	copy(buf, photoshopHeader)
	return HeaderSize
}

// IsPhotoshopSegment reports whether an APP13 payload holds Photoshop
// image resources: the identification string followed by a block
// signature. Other APP13 uses exist and should be left alone.
func IsPhotoshopSegment(buf []byte) bool {
	valid, pos := GetHeader(buf)
	return valid && len(buf) >= pos+len(blockSignature) && bytes.Equal(buf[pos:pos+len(blockSignature)], blockSignature)
}

// Data holds the decoded content of a Photoshop APP13 segment: the IPTC
// records and every image resource block as read. It is never modified
// after construction; the With methods return new values.
type Data struct {
	records  []Record
	blocks   []Block
	charset  *Charset // forced write charset, nil to choose one
	declared *Charset // declared by the parsed IPTC data, or nil
}

// NewData builds a Data from records and blocks, which are copied. The
// charset, which may be nil, forces the one used to write the records.
func NewData(records []Record, blocks []Block, charset *Charset) *Data {
	return &Data{
		records: copyRecords(records),
		blocks:  copyBlocks(blocks),
		charset: charset,
	}
}

func copyRecords(records []Record) []Record {
	c := make([]Record, len(records))
	copy(c, records)
	return c
}

func copyBlocks(blocks []Block) []Block {
	c := make([]Block, len(blocks))
	for i, b := range blocks {
		c[i] = Block{Type: b.Type, Name: clone(b.Name), Data: clone(b.Data)}
	}
	return c
}

// Records returns a copy of the IPTC records.
func (d *Data) Records() []Record {
	return copyRecords(d.records)
}

// RawBlocks returns a copy of all image resource blocks, including IPTC
// blocks as they were read.
func (d *Data) RawBlocks() []Block {
	return copyBlocks(d.blocks)
}

// NonIPTCBlocks returns a copy of the blocks that don't carry IPTC data.
func (d *Data) NonIPTCBlocks() []Block {
	blocks := make([]Block, 0, len(d.blocks))
	for _, b := range d.blocks {
		if !b.IsIPTC() {
			blocks = append(blocks, b)
		}
	}
	return copyBlocks(blocks)
}

// Charset returns the charset forced with NewData or WithCharset, or nil
// if the writer chooses one.
func (d *Data) Charset() *Charset {
	return d.charset
}

// DeclaredCharset returns the charset named by the last coded character
// set record of the parsed IPTC data, or nil if there was none. It is
// only used for writing when it can represent every record and can be
// declared again.
func (d *Data) DeclaredCharset() *Charset {
	return d.declared
}

// WithRecords returns a copy of d holding different records.
func (d *Data) WithRecords(records []Record) *Data {
	return &Data{records: copyRecords(records), blocks: d.blocks, charset: d.charset, declared: d.declared}
}

// WithCharset returns a copy of d that writes its records with charset.
// With a nil charset the declared charset is kept if it fits the records,
// and the writer chooses otherwise.
func (d *Data) WithCharset(charset *Charset) *Data {
	return &Data{records: d.records, blocks: d.blocks, charset: charset, declared: d.declared}
}

// ParseSegment decodes an APP13 segment payload. Records are collected
// from every IPTC block in block order. Parsing errors are as for
// ParseBlocks.
func ParseSegment(buf []byte, strict bool) (*Data, error) {
	blocks, err := ParseBlocks(buf, strict)
	if err != nil {
		return nil, err
	}
	return newDataFromBlocks(blocks), nil
}

func newDataFromBlocks(blocks []Block) *Data {
	records := make([]Record, 0, 16)
	var charset *Charset
	for _, block := range blocks {
		if !block.IsIPTC() {
			continue
		}
		recs, declared := parseRecords(block.Data)
		records = append(records, recs...)
		if declared != nil {
			charset = declared
		}
	}
	return &Data{records: records, blocks: blocks, declared: charset}
}

// writeCharset returns the charset to pass to WriteRecords: the forced
// one, else the declared one if it still fits the records, else nil.
func (d *Data) writeCharset() *Charset {
	if d.charset != nil {
		return d.charset
	}
	if d.declared == nil || d.declared.escape == nil {
		return nil
	}
	for _, rec := range d.records {
		if !d.declared.represents(rec.Value) {
			return nil
		}
	}
	return d.declared
}

// IPTCBlock encodes the records as the data of an IPTC block, using the
// forced charset if set. Otherwise the declared charset is kept when it
// can represent every record, and the writer chooses when it can't.
func (d *Data) IPTCBlock() ([]byte, error) {
	return WriteRecords(d.records, d.writeCharset())
}

// Blocks returns the image resource blocks to write: the blocks as read,
// with the first IPTC block holding the re-encoded records and any
// further IPTC blocks removed. An IPTC block is appended if there was
// none and there are records to write.
func (d *Data) Blocks() ([]Block, error) {
	blocks := make([]Block, 0, len(d.blocks)+1)
	found := false
	for _, b := range d.blocks {
		if !b.IsIPTC() {
			blocks = append(blocks, b)
			continue
		}
		if found {
			continue
		}
		found = true
		data, err := d.IPTCBlock()
		if err != nil {
			return nil, errors.Wrap(err, "writing IPTC block")
		}
		blocks = append(blocks, Block{Type: b.Type, Name: b.Name, Data: data})
	}
	if !found && len(d.records) > 0 {
		data, err := d.IPTCBlock()
		if err != nil {
			return nil, errors.Wrap(err, "writing IPTC block")
		}
		blocks = append(blocks, Block{Type: IPTCNAA, Name: []byte{}, Data: data})
	}
	return copyBlocks(blocks), nil
}

// Encode returns the APP13 segment payload for d, with the IPTC block
// regenerated from the records.
func (d *Data) Encode() ([]byte, error) {
	blocks, err := d.Blocks()
	if err != nil {
		return nil, err
	}
	return WriteSegment(blocks)
}
