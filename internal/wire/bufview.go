package wire

import (
	"encoding/binary"
	"unicode/utf16"
)

// bufView is a bounds-checked window over a reply buffer. Item records carry
// string offsets measured from the start of the buffer; stringAt is the only
// way strings are read out, so no call site does unchecked arithmetic
// against service-controlled offsets.
type bufView []byte

// stringAt reads the zero-terminated UTF-16LE string starting at off.
//
// A zero offset denotes the empty string and is valid. An odd offset
// (strings are 16-bit aligned) or one at/past the end of the buffer makes
// the field unreadable and returns false. A string running to the end of the
// buffer without a terminator is truncated there.
func (v bufView) stringAt(off uint32) (string, bool) {
	if off == 0 {
		return "", true
	}
	if off%2 != 0 || uint64(off) >= uint64(len(v)) {
		return "", false
	}
	units := make([]uint16, 0, 32)
	for i := int(off); i+1 < len(v); i += 2 {
		u := binary.LittleEndian.Uint16(v[i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), true
}
