// Package recordpage implements the on-disk layout of a record page: a
// fixed header, a one-byte-per-slot occupancy bitmap, and a fixed-width
// tuple area, all packed into one buffer-pool frame.
package recordpage

import (
	"github.com/kavarin/recordstore/internal/alias/bx"
	"github.com/kavarin/recordstore/internal/storage"
)

// HeaderSize is the encoded size of {nextPage, prevPage, numSlots}.
const HeaderSize = 12

// NoPage is the sentinel meaning "no such page" in next/prev links.
const NoPage = storage.NoPage

// NumSlotsFor computes how many fixed-size slots fit in one page, given the
// per-tuple record size: floor((pageSize - HeaderSize) / (recordSize + 1)),
// the "+1" accounting for each slot's one-byte occupancy flag.
func NumSlotsFor(pageSize int, recordSize int32) int32 {
	return (int32(pageSize) - HeaderSize) / (recordSize + 1)
}

// Page is a thin view over one record page's raw bytes, as held by a pinned
// buffer pool frame.
type Page struct {
	Buf []byte
}

func (p Page) NextPage() int32     { return bx.I32(p.Buf[0:4]) }
func (p Page) SetNextPage(v int32) { bx.PutU32(p.Buf[0:4], uint32(v)) }
func (p Page) PrevPage() int32     { return bx.I32(p.Buf[4:8]) }
func (p Page) SetPrevPage(v int32) { bx.PutU32(p.Buf[4:8], uint32(v)) }
func (p Page) NumSlots() int32     { return bx.I32(p.Buf[8:12]) }
func (p Page) SetNumSlots(v int32) { bx.PutU32(p.Buf[8:12], uint32(v)) }

// InitHeader zero-fills the page and writes a fresh header with a cleared
// slot bitmap.
func InitHeader(buf []byte, nextPage, prevPage, numSlots int32) {
	for i := range buf {
		buf[i] = 0
	}
	p := Page{Buf: buf}
	p.SetNextPage(nextPage)
	p.SetPrevPage(prevPage)
	p.SetNumSlots(numSlots)
}

func (p Page) bitmap() []byte {
	n := int(p.NumSlots())
	return p.Buf[HeaderSize : HeaderSize+n]
}

// SlotOccupied reports whether slot i currently holds a tuple.
func (p Page) SlotOccupied(i int32) bool {
	return p.bitmap()[i] != 0
}

// SetSlotOccupied sets or clears slot i's occupancy flag.
func (p Page) SetSlotOccupied(i int32, occupied bool) {
	if occupied {
		p.bitmap()[i] = 1
	} else {
		p.bitmap()[i] = 0
	}
}

// Tuple returns the byte range for slot i's tuple data, given the table's
// fixed record size.
func (p Page) Tuple(i int32, recordSize int32) []byte {
	base := HeaderSize + int(p.NumSlots())
	off := base + int(i)*int(recordSize)
	return p.Buf[off : off+int(recordSize)]
}

// FindFreeSlot scans the bitmap for the first unoccupied slot.
func (p Page) FindFreeSlot() (int32, bool) {
	n := p.NumSlots()
	for i := int32(0); i < n; i++ {
		if !p.SlotOccupied(i) {
			return i, true
		}
	}
	return -1, false
}
