package catalog

import (
	"github.com/kavarin/recordstore/internal/alias/bx"
	"github.com/kavarin/recordstore/internal/record"
)

func putFixedString(buf []byte, s string, size int) {
	for i := range buf[:size] {
		buf[i] = 0
	}
	copy(buf, s)
}

func getFixedString(buf []byte, size int) string {
	n := 0
	for n < size && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

// encode packs td into buf, which must be descriptorEncodedSize bytes.
func (td *TableDescriptor) encode(buf []byte) {
	off := 0
	putFixedString(buf[off:], td.Name, TableNameSize)
	off += TableNameSize

	bx.PutU32(buf[off:], uint32(td.NumAttr))
	off += 4

	for i := 0; i < MaxAttrs; i++ {
		putFixedString(buf[off:], td.AttrNames[i], AttrNameSize)
		off += AttrNameSize
	}
	for i := 0; i < MaxAttrs; i++ {
		bx.PutU32(buf[off:], uint32(td.DataTypes[i]))
		off += 4
	}
	for i := 0; i < MaxAttrs; i++ {
		bx.PutU32(buf[off:], uint32(td.TypeLength[i]))
		off += 4
	}
	bx.PutU32(buf[off:], uint32(td.KeySize))
	off += 4
	for i := 0; i < MaxKeyAttrs; i++ {
		bx.PutU32(buf[off:], uint32(td.KeyAttrs[i]))
		off += 4
	}
	bx.PutU32(buf[off:], uint32(td.NumTuples))
	off += 4
	bx.PutU32(buf[off:], uint32(td.HeadPage))
}

// decodeTableDescriptor unpacks a TableDescriptor from buf.
func decodeTableDescriptor(buf []byte) *TableDescriptor {
	td := &TableDescriptor{}
	off := 0
	td.Name = getFixedString(buf[off:], TableNameSize)
	off += TableNameSize

	td.NumAttr = bx.I32(buf[off:])
	off += 4

	for i := 0; i < MaxAttrs; i++ {
		td.AttrNames[i] = getFixedString(buf[off:], AttrNameSize)
		off += AttrNameSize
	}
	for i := 0; i < MaxAttrs; i++ {
		td.DataTypes[i] = record.DataType(bx.I32(buf[off:]))
		off += 4
	}
	for i := 0; i < MaxAttrs; i++ {
		td.TypeLength[i] = bx.I32(buf[off:])
		off += 4
	}
	td.KeySize = bx.I32(buf[off:])
	off += 4
	for i := 0; i < MaxKeyAttrs; i++ {
		td.KeyAttrs[i] = bx.I32(buf[off:])
		off += 4
	}
	td.NumTuples = bx.I32(buf[off:])
	off += 4
	td.HeadPage = bx.I32(buf[off:])
	return td
}
