package app13

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// ResourceID is the type of a Photoshop image resource block.
type ResourceID uint16

// Some of the image resource IDs found in APP13 segments.
const (
	ResolutionInfo      ResourceID = 0x03ED
	PrintFlags          ResourceID = 0x03F3
	IPTCNAA             ResourceID = 0x0404 // IPTC-NAA record stream
	JPEGQuality         ResourceID = 0x0406
	GridGuides          ResourceID = 0x0408
	CopyrightFlag       ResourceID = 0x040A
	URL                 ResourceID = 0x040B
	Thumbnail           ResourceID = 0x040C
	GlobalAngle         ResourceID = 0x040D
	DocumentIDs         ResourceID = 0x0414
	GlobalAltitude      ResourceID = 0x0419
	Slices              ResourceID = 0x041A
	URLList             ResourceID = 0x041E
	VersionInfo         ResourceID = 0x0421
	ExifData1           ResourceID = 0x0422
	ExifData3           ResourceID = 0x0423
	XMPMetadata         ResourceID = 0x0424
	CaptionDigest       ResourceID = 0x0425
	PrintScale          ResourceID = 0x0426
	PixelAspectRatio    ResourceID = 0x0428
	PrintInfo           ResourceID = 0x043A
	PrintStyle          ResourceID = 0x043B
	MacNSPrintInfo      ResourceID = 0x043C
	WindowsDEVMODE      ResourceID = 0x043D
	AutoSaveFilePath    ResourceID = 0x043E
	AutoSaveFormat      ResourceID = 0x043F
	PrintFlagsInfo      ResourceID = 0x2710
	ClippingPathName    ResourceID = 0x0BB7
	OriginPathInfo      ResourceID = 0x0BB8
	ImageReadyVariables ResourceID = 0x1B58
)

var resourceNames = map[ResourceID]string{
	ResolutionInfo:      "ResolutionInfo",
	PrintFlags:          "PrintFlags",
	IPTCNAA:             "IPTC-NAA",
	JPEGQuality:         "JPEGQuality",
	GridGuides:          "GridGuides",
	CopyrightFlag:       "CopyrightFlag",
	URL:                 "URL",
	Thumbnail:           "Thumbnail",
	GlobalAngle:         "GlobalAngle",
	DocumentIDs:         "DocumentIDs",
	GlobalAltitude:      "GlobalAltitude",
	Slices:              "Slices",
	URLList:             "URLList",
	VersionInfo:         "VersionInfo",
	ExifData1:           "ExifData1",
	ExifData3:           "ExifData3",
	XMPMetadata:         "XMPMetadata",
	CaptionDigest:       "CaptionDigest",
	PrintScale:          "PrintScale",
	PixelAspectRatio:    "PixelAspectRatio",
	PrintInfo:           "PrintInfo",
	PrintStyle:          "PrintStyle",
	MacNSPrintInfo:      "MacNSPrintInfo",
	WindowsDEVMODE:      "WindowsDEVMODE",
	AutoSaveFilePath:    "AutoSaveFilePath",
	AutoSaveFormat:      "AutoSaveFormat",
	PrintFlagsInfo:      "PrintFlagsInfo",
	ClippingPathName:    "ClippingPathName",
	OriginPathInfo:      "OriginPathInfo",
	ImageReadyVariables: "ImageReadyVariables",
}

// Name returns the name of a resource ID, or a hex form if it isn't known.
func (id ResourceID) Name() string {
	if name, ok := resourceNames[id]; ok {
		return name
	}
	if id >= 0x07D0 && id <= 0x0BB6 {
		return fmt.Sprintf("PathInfo%d", id-0x07D0)
	}
	return fmt.Sprintf("0x%04X", uint16(id))
}

// Block types that Photoshop recommends readers don't interpret. Their
// contents are skipped by scanning for the next block signature.
var ignoredBlockTypes = map[ResourceID]bool{
	MacNSPrintInfo:   true,
	WindowsDEVMODE:   true,
	AutoSaveFilePath: true,
	AutoSaveFormat:   true,
}

// Signature found at the start of each image resource block.
var blockSignature = []byte("8BIM")

// Block is a single image resource block. Name holds the bytes of the
// pascal string without its length or padding.
type Block struct {
	Type ResourceID
	Name []byte
	Data []byte
}

// IsIPTC reports whether the block carries an IPTC-NAA record stream.
func (b Block) IsIPTC() bool {
	return b.Type == IPTCNAA
}

// ParseBlocks decodes the image resource blocks of an APP13 segment
// payload, which must begin with the Photoshop identification string.
// In non-strict mode a truncated block ends parsing and the blocks read
// up to that point are returned.
func ParseBlocks(buf []byte, strict bool) ([]Block, error) {
	valid, pos := GetHeader(buf)
	if !valid {
		return nil, FormatError("not a Photoshop APP13 segment")
	}
	return parseResources(buf[pos:], strict)
}

// parseResources decodes a sequence of image resource blocks without the
// identification string, as found in a TIFF PSIR field.
func parseResources(buf []byte, strict bool) ([]Block, error) {
	blocks := make([]Block, 0, 8)
	r := newReader(buf)
	for {
		sig, err := r.next(len(blockSignature), "block signature")
		if err != nil {
			break
		}
		if !bytes.Equal(sig, blockSignature) {
			return blocks, FormatError(fmt.Sprintf("invalid image resource block signature %q at offset %d", sig, r.pos-len(sig)))
		}
		block, skipped, err := parseBlock(r)
		if err != nil {
			var short *TruncatedError
			if strict || !errors.As(err, &short) {
				return blocks, errors.Wrapf(err, "image resource block %d", len(blocks))
			}
			log.WithError(err).Debug("truncated image resource block, stopping")
			if block.Data != nil {
				// Only the padding byte is missing.
				blocks = append(blocks, block)
			}
			break
		}
		if skipped {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// parseBlock reads one block following its signature. The returned flag
// is set for ignored block types, after resyncing on the next signature.
func parseBlock(r *reader) (Block, bool, error) {
	var block Block
	id, err := r.uint16("block type")
	if err != nil {
		return block, false, err
	}
	blockType := ResourceID(id)
	log.WithField("type", blockType.Name()).Debug("image resource block")
	if ignoredBlockTypes[blockType] {
		log.WithField("type", blockType).Debug("skipping image resource block")
		r.skipTo(blockSignature)
		return block, true, nil
	}
	block.Type = blockType

	// The name is a pascal string padded to an even length, including
	// the length byte.
	nameLen, err := r.byte1("block name length")
	if err != nil {
		return block, false, err
	}
	if nameLen == 0 {
		if _, err := r.byte1("block name padding"); err != nil {
			return block, false, err
		}
		block.Name = []byte{}
	} else {
		name, err := r.next(int(nameLen), "block name")
		if err != nil {
			return block, false, err
		}
		block.Name = clone(name)
		if nameLen%2 == 0 {
			if _, err := r.byte1("block name padding"); err != nil {
				return block, false, err
			}
		}
	}

	size, err := r.uint32("block size")
	if err != nil {
		return block, false, err
	}
	if uint64(size) > uint64(r.remaining()) {
		return block, false, FormatError(fmt.Sprintf("invalid block size %d > %d remaining", size, r.remaining()))
	}
	data, err := r.next(int(size), "block data")
	if err != nil {
		return block, false, err
	}
	block.Data = clone(data)
	if size%2 != 0 {
		if _, err := r.byte1("block data padding"); err != nil {
			return block, false, err
		}
	}
	return block, false, nil
}

// WriteSegment encodes blocks as an APP13 segment payload, starting with
// the Photoshop identification string. Block data is written as given.
func WriteSegment(blocks []Block) ([]byte, error) {
	var buf bytes.Buffer
	header := make([]byte, HeaderSize)
	PutHeader(header)
	buf.Write(header)
	for i, block := range blocks {
		if err := writeBlock(&buf, block); err != nil {
			return nil, errors.Wrapf(err, "image resource block %d", i)
		}
	}
	return buf.Bytes(), nil
}

func writeBlock(buf *bytes.Buffer, block Block) error {
	if len(block.Name) > 255 {
		return FormatError(fmt.Sprintf("block name is too long: %d bytes", len(block.Name)))
	}
	if uint64(len(block.Data)) > math.MaxUint32 {
		return FormatError(fmt.Sprintf("block data is too long: %d bytes", len(block.Data)))
	}
	buf.Write(blockSignature)
	var scratch [4]byte
	binary.BigEndian.PutUint16(scratch[:2], uint16(block.Type))
	buf.Write(scratch[:2])
	buf.WriteByte(byte(len(block.Name)))
	buf.Write(block.Name)
	if len(block.Name)%2 == 0 {
		buf.WriteByte(0)
	}
	binary.BigEndian.PutUint32(scratch[:], uint32(len(block.Data)))
	buf.Write(scratch[:])
	buf.Write(block.Data)
	if len(block.Data)%2 != 0 {
		buf.WriteByte(0)
	}
	return nil
}
