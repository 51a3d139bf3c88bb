package app13

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/apex/log"
)

const (
	iptcTagMarker       = 0x1C
	envelopeRecord      = 1
	applicationRecord   = 2
	codedCharacterSet   = 90 // envelope dataset 1:90
	maxNonExtendedSize  = 0x7FFF
	extendedDatasetFlag = 0x8000
	recordHeaderSize    = 5
	recordVersionValue  = 2
)

/*
   An IPTC-NAA stream is a sequence of datasets, each:

     0x1C          1-byte tag marker
     record        1-byte record number (1 = envelope, 2 = application)
     dataset       1-byte dataset number (RecordType)
     size          2-byte size; if the high bit is set the low bits give
                   the length of a following size field (extended dataset)
     data          size bytes, not padded
*/

// ParseRecords decodes the Application Record 2 datasets of an IPTC-NAA
// stream, in stream order. An envelope coded character set dataset
// switches the charset used for the datasets after it. Decoding stops
// quietly at an unexpected tag marker, at an extended dataset or where
// the stream is cut short.
func ParseRecords(data []byte) []Record {
	records, _ := parseRecords(data)
	return records
}

// parseRecords also returns the charset declared in the stream, or nil
// if there was none.
func parseRecords(data []byte) ([]Record, *Charset) {
	charset := DefaultCharset
	var declared *Charset
	records := make([]Record, 0, 16)
	r := newReader(data)
	for r.remaining() >= 2 {
		marker, _ := r.byte1("tag marker")
		if marker != iptcTagMarker {
			log.WithField("marker", marker).Debug("unexpected IPTC tag marker, stopping")
			break
		}
		header, err := r.next(recordHeaderSize-1, "dataset header")
		if err != nil {
			log.WithError(err).Debug("IPTC stream cut short")
			break
		}
		recordNumber := header[0]
		recordType := RecordType(header[1])
		size := binary.BigEndian.Uint16(header[2:])
		if size&extendedDatasetFlag != 0 {
			log.WithField("dataset", fmt.Sprintf("%d:%d", recordNumber, recordType)).Debug("extended dataset, ignoring rest of stream")
			break
		}
		value, err := r.next(int(size), "dataset data")
		if err != nil {
			log.WithError(err).Debug("IPTC stream cut short")
			break
		}

		if recordNumber == envelopeRecord && recordType == codedCharacterSet {
			charset = ResolveCharset(value)
			declared = charset
			continue
		}
		if recordNumber != applicationRecord {
			continue
		}
		if recordType == RecordVersion {
			// Regenerated by WriteRecords.
			continue
		}
		records = append(records, Record{Type: recordType, Value: charset.decode(value)})
	}
	return records, declared
}

// chooseCharset returns the charset WriteRecords uses when none is
// forced: the default if it can represent every value, else UTF-8.
func chooseCharset(records []Record) *Charset {
	for _, rec := range records {
		if !DefaultCharset.represents(rec.Value) {
			return UTF8
		}
	}
	return DefaultCharset
}

// WriteRecords encodes records as an IPTC-NAA stream suitable for the
// data of an IPTC image resource block. A nil charset selects ISO-8859-1
// when it can represent every value and UTF-8 otherwise. Any charset
// other than ISO-8859-1 is declared in an envelope record and must have
// an escape sequence. A value that a given charset can't represent is a
// FormatError.
//
// A record version dataset is always written first. The other records
// follow in descending order of type, keeping the given order within a
// type; record version entries in the input are dropped.
func WriteRecords(records []Record, charset *Charset) ([]byte, error) {
	if charset == nil {
		charset = chooseCharset(records)
	} else {
		for _, rec := range records {
			if rec.Type != RecordVersion && !charset.represents(rec.Value) {
				return nil, FormatError(fmt.Sprintf("%s value %q can't be represented in %s", rec.Type.Name(), rec.Value, charset.name))
			}
		}
	}
	var buf bytes.Buffer
	if charset != DefaultCharset {
		if charset.escape == nil {
			return nil, FormatError(fmt.Sprintf("unsupported charset %s, only UTF-8, ISO-8859-1 or US-ASCII can be declared", charset.name))
		}
		writeDataset(&buf, envelopeRecord, codedCharacterSet, charset.escape)
	}

	var version [2]byte
	binary.BigEndian.PutUint16(version[:], recordVersionValue)
	writeDataset(&buf, applicationRecord, uint8(RecordVersion), version[:])

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Type > sorted[j].Type
	})
	for _, rec := range sorted {
		if rec.Type == RecordVersion {
			continue
		}
		if rec.Type < 0 || rec.Type > 0xFF {
			return nil, FormatError(fmt.Sprintf("invalid record type: %d", int(rec.Type)))
		}
		value := charset.encode(rec.Value)
		if len(value) > maxNonExtendedSize {
			return nil, FormatError(fmt.Sprintf("%s value is too long: %d bytes", rec.Type.Name(), len(value)))
		}
		writeDataset(&buf, applicationRecord, uint8(rec.Type), value)
	}
	return buf.Bytes(), nil
}

func writeDataset(buf *bytes.Buffer, recordNumber, recordType uint8, value []byte) {
	var header [recordHeaderSize]byte
	header[0] = iptcTagMarker
	header[1] = recordNumber
	header[2] = recordType
	binary.BigEndian.PutUint16(header[3:], uint16(len(value)))
	buf.Write(header[:])
	buf.Write(value)
}
