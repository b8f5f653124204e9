package catalog

import (
	"fmt"

	"github.com/kavarin/recordstore/internal/alias/bx"
	"github.com/kavarin/recordstore/internal/rmerror"
	"github.com/kavarin/recordstore/internal/storage"
)

// headerSize is the encoded size of {totalNumPages, freePage, numTables}.
const headerSize = 12

// MaxTables is the fixed table-directory capacity for one page-sized catalog.
const MaxTables = storage.PageSize / (descriptorEncodedSize + 2*4)

// NoPage is the sentinel meaning "no page" for FreePage and page chain links.
const NoPage int32 = storage.NoPage

// Catalog is the page-0 resident table directory.
type Catalog struct {
	TotalNumPages int32
	FreePage      int32
	NumTables     int32
	Tables        [MaxTables]TableDescriptor
}

// New returns a freshly initialized catalog: totalNumPages=1, freePage=NONE,
// numTables=0, as written the first time a page file is created.
func New() *Catalog {
	return &Catalog{TotalNumPages: 1, FreePage: NoPage, NumTables: 0}
}

// Encode packs the catalog into buf, which must be storage.PageSize bytes.
func (c *Catalog) Encode(buf []byte) error {
	if len(buf) != storage.PageSize {
		return fmt.Errorf("catalog: encode: buffer must be %d bytes", storage.PageSize)
	}
	off := 0
	bx.PutU32(buf[off:], uint32(c.TotalNumPages))
	off += 4
	bx.PutU32(buf[off:], uint32(c.FreePage))
	off += 4
	bx.PutU32(buf[off:], uint32(c.NumTables))
	off += 4

	for i := range c.Tables {
		c.Tables[i].encode(buf[off : off+descriptorEncodedSize])
		off += descriptorEncodedSize
	}
	return nil
}

// Decode unpacks a catalog from buf (storage.PageSize bytes, as read from
// page 0).
func Decode(buf []byte) (*Catalog, error) {
	if len(buf) != storage.PageSize {
		return nil, fmt.Errorf("catalog: decode: buffer must be %d bytes", storage.PageSize)
	}
	c := &Catalog{}
	off := 0
	c.TotalNumPages = bx.I32(buf[off:])
	off += 4
	c.FreePage = bx.I32(buf[off:])
	off += 4
	c.NumTables = bx.I32(buf[off:])
	off += 4

	for i := range c.Tables {
		c.Tables[i] = *decodeTableDescriptor(buf[off : off+descriptorEncodedSize])
		off += descriptorEncodedSize
	}
	return c, nil
}

// LookupTable returns the descriptor and index for name, or ok=false.
func (c *Catalog) LookupTable(name string) (td *TableDescriptor, index int, ok bool) {
	for i := 0; i < int(c.NumTables); i++ {
		if c.Tables[i].Name == name {
			return &c.Tables[i], i, true
		}
	}
	return nil, -1, false
}

// AddTable appends a new descriptor. Fails if the name already exists, and
// with NoMoreEntries if the directory is full.
func (c *Catalog) AddTable(td *TableDescriptor) error {
	if _, _, ok := c.LookupTable(td.Name); ok {
		return fmt.Errorf("catalog: table %q already exists", td.Name)
	}
	if int(c.NumTables) >= MaxTables {
		return fmt.Errorf("catalog: add table %q: %w", td.Name, rmerror.ErrNoMoreEntries)
	}
	c.Tables[c.NumTables] = *td
	c.NumTables++
	return nil
}

// RemoveTable deletes the descriptor at index, compacting the array down and
// decrementing NumTables.
func (c *Catalog) RemoveTable(index int) error {
	if index < 0 || index >= int(c.NumTables) {
		return fmt.Errorf("catalog: remove table: index %d out of range", index)
	}
	for i := index; i < int(c.NumTables)-1; i++ {
		c.Tables[i] = c.Tables[i+1]
	}
	c.Tables[c.NumTables-1] = TableDescriptor{}
	c.NumTables--
	return nil
}
