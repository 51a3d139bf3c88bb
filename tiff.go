package app13

import (
	"github.com/apex/log"
	tiff "github.com/garyhouston/tiff66"
	"github.com/pkg/errors"
)

// ParseTIFF extracts Photoshop image resources from the 0th IFD of a
// TIFF file. The PSIR field holds resource blocks without the
// identification string; if it's missing, a bare IPTC-NAA field is used
// and presented as a single IPTC block. Returns nil if neither is
// present.
//
// tiff66 keeps reading past damaged IFD entries. In strict mode any
// problem it reports is returned, otherwise it is only logged.
func ParseTIFF(buf []byte, strict bool) (*Data, error) {
	valid, order, pos := tiff.GetHeader(buf)
	if !valid {
		return nil, FormatError("invalid TIFF header")
	}
	node, err := tiff.GetIFDTree(buf, order, pos, tiff.TIFFSpace)
	if err != nil {
		if strict || node == nil {
			return nil, errors.Wrap(err, "reading TIFF IFDs")
		}
		log.WithError(err).Debug("TIFF IFD problems")
	}
	var psir, iptc *tiff.Field
	for i := range node.Fields {
		switch node.Fields[i].Tag {
		case tiff.PSIR:
			psir = &node.Fields[i]
		case tiff.IPTC:
			iptc = &node.Fields[i]
		}
	}
	if psir != nil {
		blocks, err := parseResources(psir.Data, strict)
		if err != nil {
			return nil, errors.Wrap(err, "TIFF PSIR field")
		}
		return newDataFromBlocks(blocks), nil
	}
	if iptc != nil {
		block := Block{Type: IPTCNAA, Name: []byte{}, Data: clone(iptc.Data)}
		return newDataFromBlocks([]Block{block}), nil
	}
	return nil, nil
}
