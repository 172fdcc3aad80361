package wire

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequest_Layout(t *testing.T) {
	buf := EncodeRequest(Request{
		ReplyEndpoint: 0x1234,
		ReplyKind:     DefaultReplyKind,
		Flags:         FlagWholeWord,
		Offset:        40,
		MaxResults:    20,
		Query:         "ab",
	})

	le := binary.LittleEndian
	require.Equal(t, RequestHeaderSize+2*2+4, len(buf))
	assert.Equal(t, uint32(0x1234), le.Uint32(buf[0:]))
	assert.Equal(t, uint32(0x804E), le.Uint32(buf[4:]))
	assert.Equal(t, FlagWholeWord, le.Uint32(buf[8:]))
	assert.Equal(t, uint32(40), le.Uint32(buf[12:]))
	assert.Equal(t, uint32(20), le.Uint32(buf[16:]))
	// UTF-16LE "ab" then two zero code units
	assert.Equal(t, []byte{'a', 0, 'b', 0, 0, 0, 0, 0}, buf[RequestHeaderSize:])
}

func TestEncodeRequest_RoundTrip(t *testing.T) {
	in := Request{
		ReplyEndpoint: 7,
		ReplyKind:     DefaultReplyKind,
		Flags:         FlagRegex,
		Offset:        100,
		MaxResults:    50,
		Query:         "smörgås \u65e5\u672c",
	}
	out, err := DecodeRequest(EncodeRequest(in))
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestDecodeReply_WellFormed(t *testing.T) {
	items := []ReplyItem{
		{Name: "notes.txt", Path: `C:\docs`, Flags: 0},
		{Name: "docs", Path: `C:\`, Flags: ItemFolder},
		{Name: "report.pdf", Path: `D:\work\2026`, Flags: 0},
	}
	buf := EncodeReply(items, ReplyStats{TotalFolders: 1, TotalFiles: 2, TotalItems: 3}, 0)

	r, err := DecodeReply(buf)
	require.NoError(t, err)
	require.Len(t, r.Items, 3)
	assert.Equal(t, uint32(3), r.TotalItems)
	assert.Equal(t, uint32(3), r.BatchItems)

	// Order preserved, paths joined.
	assert.Equal(t, `C:\docs\notes.txt`, r.Items[0].FullPath)
	assert.False(t, r.Items[0].IsFolder())
	assert.Equal(t, `C:\docs`, r.Items[1].FullPath)
	assert.True(t, r.Items[1].IsFolder())
	assert.Equal(t, `D:\work\2026\report.pdf`, r.Items[2].FullPath)
}

func TestDecodeReply_EmptyBatch(t *testing.T) {
	buf := EncodeReply(nil, ReplyStats{TotalItems: 1234}, 80)
	r, err := DecodeReply(buf)
	require.NoError(t, err)
	assert.Empty(t, r.Items)
	assert.Equal(t, uint32(1234), r.TotalItems)
	assert.Equal(t, uint32(80), r.BatchOffset)
}

func TestDecodeReply_ShortHeader(t *testing.T) {
	_, err := DecodeReply(make([]byte, ReplyHeaderSize-1))
	assert.Error(t, err)
}

func TestDecodeReply_ImplausibleTotal(t *testing.T) {
	buf := EncodeReply(nil, ReplyStats{TotalItems: MaxTotalItems + 1}, 0)
	_, err := DecodeReply(buf)
	assert.Error(t, err)
}

func TestDecodeReply_TruncatedItemRegion(t *testing.T) {
	buf := EncodeReply([]ReplyItem{{Name: "a", Path: `C:\`}}, ReplyStats{TotalItems: 1}, 0)
	// Declare more records than the buffer holds.
	binary.LittleEndian.PutUint32(buf[20:], 50)
	_, err := DecodeReply(buf)
	assert.Error(t, err)
}

func TestDecodeReply_OddOffsetSkipsOnlyThatItem(t *testing.T) {
	items := []ReplyItem{
		{Name: "good.txt", Path: `C:\a`},
		{Name: "bad.txt", Path: `C:\b`},
		{Name: "fine.txt", Path: `C:\c`},
	}
	buf := EncodeReply(items, ReplyStats{TotalFiles: 3, TotalItems: 3}, 0)

	// Corrupt the middle record: odd filename offset, out-of-range path
	// offset. Both fields unreadable, so the item is dropped.
	rec := ReplyHeaderSize + ItemRecordSize
	binary.LittleEndian.PutUint32(buf[rec+4:], 3)
	binary.LittleEndian.PutUint32(buf[rec+8:], uint32(len(buf))+100)

	r, err := DecodeReply(buf)
	require.NoError(t, err)
	require.Len(t, r.Items, 2)
	assert.Equal(t, `C:\a\good.txt`, r.Items[0].FullPath)
	assert.Equal(t, `C:\c\fine.txt`, r.Items[1].FullPath)
}

func TestDecodeReply_UnreadablePathKeepsName(t *testing.T) {
	buf := EncodeReply([]ReplyItem{{Name: "orphan.txt", Path: `C:\x`}}, ReplyStats{TotalItems: 1}, 0)
	rec := ReplyHeaderSize
	binary.LittleEndian.PutUint32(buf[rec+8:], 5) // odd path offset

	r, err := DecodeReply(buf)
	require.NoError(t, err)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "orphan.txt", r.Items[0].FullPath)
}

func TestDecodeReply_OffsetsRelativeToBufferStart(t *testing.T) {
	// Hand-build a reply whose single record points directly at known
	// byte positions. Misreading offsets as record-relative would land in
	// the middle of the string data and corrupt both fields.
	name := []byte{'f', 0, 0, 0}
	dir := []byte{'E', 0, ':', 0, 0, 0}

	buf := make([]byte, ReplyHeaderSize+ItemRecordSize)
	le := binary.LittleEndian
	le.PutUint32(buf[8:], 1)  // total items
	le.PutUint32(buf[20:], 1) // batch items
	nameOff := uint32(len(buf))
	buf = append(buf, name...)
	dirOff := uint32(len(buf))
	buf = append(buf, dir...)
	le.PutUint32(buf[ReplyHeaderSize+4:], nameOff)
	le.PutUint32(buf[ReplyHeaderSize+8:], dirOff)

	r, err := DecodeReply(buf)
	require.NoError(t, err)
	require.Len(t, r.Items, 1)
	assert.Equal(t, `E:\f`, r.Items[0].FullPath)
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		dir, name, want string
	}{
		{`C:\docs`, "notes.txt", `C:\docs\notes.txt`},
		{`C:\docs\`, "notes.txt", `C:\docs\notes.txt`},
		{"D:", "notes.txt", `D:\notes.txt`},
		{"", "notes.txt", "notes.txt"},
		{`C:\docs`, "", `C:\docs`},
		{"//server/share", "f", `//server/share\f`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinPath(tt.dir, tt.name), "JoinPath(%q, %q)", tt.dir, tt.name)
	}
}

func TestStringAt_ZeroOffsetIsEmpty(t *testing.T) {
	v := bufView(make([]byte, 64))
	s, ok := v.stringAt(0)
	assert.True(t, ok)
	assert.Empty(t, s)
}

func TestStringAt_Unterminated(t *testing.T) {
	v := bufView([]byte{0, 0, 'h', 0, 'i', 0})
	s, ok := v.stringAt(2)
	assert.True(t, ok)
	assert.Equal(t, "hi", s)
}
