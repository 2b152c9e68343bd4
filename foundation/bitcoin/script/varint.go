package script

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WriteCompactSize appends Bitcoin's variable length integer encoding of
// v to the buffer. Values below 0xfd occupy a single byte; larger values
// carry a one byte marker followed by 2, 4 or 8 little endian bytes.
func WriteCompactSize(buf *bytes.Buffer, v uint64) {
	switch {
	case v < 0xfd:
		buf.WriteByte(byte(v))

	case v <= 0xffff:
		buf.WriteByte(0xfd)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		buf.Write(b[:])

	case v <= 0xffffffff:
		buf.WriteByte(0xfe)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])

	default:
		buf.WriteByte(0xff)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		buf.Write(b[:])
	}
}

// ReadCompactSize decodes a variable length integer from the reader.
func ReadCompactSize(r *bytes.Reader) (uint64, error) {
	marker, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("reading varint marker: %w", err)
	}

	var width int
	switch marker {
	case 0xfd:
		width = 2
	case 0xfe:
		width = 4
	case 0xff:
		width = 8
	default:
		return uint64(marker), nil
	}

	b := make([]byte, 8)
	for i := 0; i < width; i++ {
		v, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("reading varint body: %w", err)
		}
		b[i] = v
	}

	return binary.LittleEndian.Uint64(b), nil
}
