package wire

import "encoding/binary"

// ReplyItem is the encode-side description of one result. Replies are only
// ever encoded on the service side of the channel; this exists for the
// in-memory transport's simulated service and for tests.
type ReplyItem struct {
	Name  string // filename part
	Path  string // directory part
	Flags uint32
}

// ReplyStats carries the whole-result-set counts for a reply header.
type ReplyStats struct {
	TotalFolders uint32
	TotalFiles   uint32
	TotalItems   uint32
}

// EncodeReply builds a reply buffer for one page: header, item records, then
// the string data the records point at. Batch folder/file counts are derived
// from the item flags.
func EncodeReply(items []ReplyItem, stats ReplyStats, batchOffset uint32) []byte {
	le := binary.LittleEndian

	var batchFolders, batchFiles uint32
	for _, it := range items {
		if it.Flags&(ItemFolder|ItemDrive|ItemRoot) != 0 {
			batchFolders++
		} else {
			batchFiles++
		}
	}

	buf := make([]byte, ReplyHeaderSize+len(items)*ItemRecordSize)
	le.PutUint32(buf[0:], stats.TotalFolders)
	le.PutUint32(buf[4:], stats.TotalFiles)
	le.PutUint32(buf[8:], stats.TotalItems)
	le.PutUint32(buf[12:], batchFolders)
	le.PutUint32(buf[16:], batchFiles)
	le.PutUint32(buf[20:], uint32(len(items)))
	le.PutUint32(buf[24:], batchOffset)

	appendString := func(s string) uint32 {
		if s == "" {
			return 0
		}
		off := uint32(len(buf))
		text, _ := utf16LE().NewEncoder().Bytes([]byte(s))
		buf = append(buf, text...)
		buf = append(buf, 0, 0)
		return off
	}

	for i, it := range items {
		rec := ReplyHeaderSize + i*ItemRecordSize
		le.PutUint32(buf[rec:], it.Flags)
		le.PutUint32(buf[rec+4:], appendString(it.Name))
		le.PutUint32(buf[rec+8:], appendString(it.Path))
	}
	return buf
}
