// Package wire implements the binary request/reply layout of the Everything
// IPC query protocol.
//
// A request is a fixed 20-byte little-endian header followed by the UTF-16LE
// query text terminated by two zero code units. A reply is a 28-byte header,
// a run of 12-byte item records, and the UTF-16LE string data those records
// point into. String offsets are measured from the start of the reply buffer,
// not from the record that holds them.
//
// The reply buffer is produced by an external process and is never trusted:
// decoding is fully bounds-checked and a corrupt individual record is skipped
// rather than failing the batch.
package wire

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Fixed record sizes, in bytes.
const (
	RequestHeaderSize = 20
	ReplyHeaderSize   = 28
	ItemRecordSize    = 12
)

const (
	// CopyDataQueryW is the transport envelope discriminant that selects
	// the wide-string query variant of the protocol.
	CopyDataQueryW = 2

	// DefaultReplyKind is the envelope discriminant the service is asked to
	// stamp on reply messages.
	DefaultReplyKind = 0x804E

	// MaxTotalItems is a sanity ceiling on the service-reported result
	// count. A reply above it is treated as corrupt, not as a real result
	// set.
	MaxTotalItems = 10_000_000
)

// Search flag bits carried in the request header.
const (
	FlagRegex     uint32 = 0x1
	FlagMatchCase uint32 = 0x2
	FlagWholeWord uint32 = 0x4
	FlagMatchPath uint32 = 0x8
)

// Item flag bits carried in reply item records.
const (
	ItemFolder uint32 = 0x1
	ItemDrive  uint32 = 0x2
	ItemRoot   uint32 = 0x4
)

// Request describes one page query before encoding.
type Request struct {
	ReplyEndpoint uint32 // receiving endpoint the reply should be sent to
	ReplyKind     uint32 // envelope discriminant expected on the reply
	Flags         uint32 // FlagRegex | FlagMatchCase | FlagWholeWord | FlagMatchPath
	Offset        uint32 // index of the first result in this page
	MaxResults    uint32 // page limit
	Query         string
}

// EncodeRequest builds the request buffer: header, UTF-16LE text, double zero
// terminator. It does not fail for well-formed input; unencodable runes are
// substituted by the encoder.
func EncodeRequest(r Request) []byte {
	text, _ := utf16LE().NewEncoder().Bytes([]byte(r.Query))

	buf := make([]byte, 0, RequestHeaderSize+len(text)+4)
	buf = binary.LittleEndian.AppendUint32(buf, r.ReplyEndpoint)
	buf = binary.LittleEndian.AppendUint32(buf, r.ReplyKind)
	buf = binary.LittleEndian.AppendUint32(buf, r.Flags)
	buf = binary.LittleEndian.AppendUint32(buf, r.Offset)
	buf = binary.LittleEndian.AppendUint32(buf, r.MaxResults)
	buf = append(buf, text...)
	buf = append(buf, 0, 0, 0, 0)
	return buf
}

// DecodeRequest parses a request buffer back into a Request. The real
// service does this on its side of the channel; here it backs the in-memory
// transport's simulated service.
func DecodeRequest(buf []byte) (*Request, error) {
	if len(buf) < RequestHeaderSize {
		return nil, errors.Newf("request shorter than header: %d bytes", len(buf))
	}
	le := binary.LittleEndian
	r := &Request{
		ReplyEndpoint: le.Uint32(buf[0:]),
		ReplyKind:     le.Uint32(buf[4:]),
		Flags:         le.Uint32(buf[8:]),
		Offset:        le.Uint32(buf[12:]),
		MaxResults:    le.Uint32(buf[16:]),
	}
	r.Query = decodeUTF16Z(buf[RequestHeaderSize:])
	return r, nil
}

// Item is one decoded search result.
type Item struct {
	Name     string // filename part, may be empty
	FullPath string // directory part joined with the filename
	Flags    uint32
}

// IsFolder reports whether any of the folder/drive/root bits are set.
func (it Item) IsFolder() bool {
	return it.Flags&(ItemFolder|ItemDrive|ItemRoot) != 0
}

// Reply is one decoded page. Items holds only the readable records; the
// header counts are reported as the service sent them.
type Reply struct {
	TotalFolders uint32
	TotalFiles   uint32
	TotalItems   uint32
	BatchFolders uint32
	BatchFiles   uint32
	BatchItems   uint32
	BatchOffset  uint32
	Items        []Item
}

// DecodeReply parses a reply buffer.
//
// Structural problems (short header, implausible total, fewer bytes than the
// declared item records need) fail the whole decode. A bad string offset in
// one record only invalidates that field; a record with neither field
// readable is skipped and the rest of the batch still decodes. A batch item
// count of zero is the normal end-of-results signal, not an error.
func DecodeReply(buf []byte) (*Reply, error) {
	if len(buf) < ReplyHeaderSize {
		return nil, errors.Newf("reply shorter than header: %d bytes", len(buf))
	}
	le := binary.LittleEndian
	r := &Reply{
		TotalFolders: le.Uint32(buf[0:]),
		TotalFiles:   le.Uint32(buf[4:]),
		TotalItems:   le.Uint32(buf[8:]),
		BatchFolders: le.Uint32(buf[12:]),
		BatchFiles:   le.Uint32(buf[16:]),
		BatchItems:   le.Uint32(buf[20:]),
		BatchOffset:  le.Uint32(buf[24:]),
	}
	if r.TotalItems > MaxTotalItems {
		return nil, errors.Newf("implausible total item count %d", r.TotalItems)
	}
	n := int(r.BatchItems)
	if n == 0 {
		return r, nil
	}
	if len(buf) < ReplyHeaderSize+n*ItemRecordSize {
		return nil, errors.Newf("reply truncated: %d item records declared, %d bytes", n, len(buf))
	}

	view := bufView(buf)
	r.Items = make([]Item, 0, n)
	for i := 0; i < n; i++ {
		rec := buf[ReplyHeaderSize+i*ItemRecordSize:]
		flags := le.Uint32(rec[0:])
		name, nameOK := view.stringAt(le.Uint32(rec[4:]))
		dir, dirOK := view.stringAt(le.Uint32(rec[8:]))
		if !nameOK {
			name = ""
		}
		if !dirOK {
			dir = ""
		}
		if name == "" && dir == "" {
			continue
		}
		r.Items = append(r.Items, Item{
			Name:     name,
			FullPath: JoinPath(dir, name),
			Flags:    flags,
		})
	}
	return r, nil
}

// JoinPath joins an item's directory part and filename into a full path. A
// separator is inserted unless the directory already ends in one; a bare
// drive specifier ("D:") therefore becomes a rooted path ("D:\notes.txt")
// rather than a drive-relative one.
func JoinPath(dir, name string) string {
	switch {
	case dir == "":
		return name
	case name == "":
		return dir
	case strings.HasSuffix(dir, `\`) || strings.HasSuffix(dir, "/"):
		return dir + name
	}
	return dir + `\` + name
}

func utf16LE() encoding.Encoding {
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

// decodeUTF16Z decodes UTF-16LE code units up to the first zero unit or the
// end of the slice.
func decodeUTF16Z(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}
