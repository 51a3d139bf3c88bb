package app13

import (
	"fmt"
)

// A FormatError reports that the input is not a valid Photoshop segment
// or IPTC stream, or that a value can't be represented when writing.
type FormatError string

func (e FormatError) Error() string {
	return "app13: invalid format: " + string(e)
}

// A TruncatedError reports that the input ended in the middle of a
// structure. ParseBlocks only returns it in strict mode.
type TruncatedError struct {
	What string // the field being read
	Need int    // bytes required
	Have int    // bytes remaining
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("app13: truncated input reading %s: need %d bytes, have %d", e.What, e.Need, e.Have)
}
