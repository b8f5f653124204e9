package recordmgr

import (
	"fmt"

	"github.com/kavarin/recordstore/internal/bufferpool"
	"github.com/kavarin/recordstore/internal/catalog"
	"github.com/kavarin/recordstore/internal/record"
	"github.com/kavarin/recordstore/internal/recordpage"
	"github.com/kavarin/recordstore/internal/rmerror"
)

// Table is an open handle onto one table: its schema, its fixed record
// layout, and its permanently-pinned head page.
type Table struct {
	rm         *RecordManager
	name       string
	tdIndex    int
	schema     *record.Schema
	recordSize int32
	numSlots   int32
	headPage   int32
	headHandle *bufferpool.PageHandle
}

// OpenTable locates name's descriptor and pins its head page for the
// table's lifetime. Fails if the table is absent or already open.
func (rm *RecordManager) OpenTable(name string) (*Table, error) {
	if _, ok := rm.openTables[name]; ok {
		return nil, fmt.Errorf("recordmgr: table %q is already open", name)
	}
	td, idx, ok := rm.cat.LookupTable(name)
	if !ok {
		return nil, fmt.Errorf("recordmgr: open table %q: %w", name, rmerror.ErrKeyNotFound)
	}

	schema := td.Schema()
	recordSize, err := schema.RecordSize()
	if err != nil {
		return nil, err
	}

	h, err := rm.bp.PinPage(td.HeadPage)
	if err != nil {
		return nil, err
	}

	t := &Table{
		rm:         rm,
		name:       name,
		tdIndex:    idx,
		schema:     schema,
		recordSize: recordSize,
		numSlots:   recordpage.Page{Buf: h.Data}.NumSlots(),
		headPage:   td.HeadPage,
		headHandle: h,
	}
	rm.openTables[name] = t
	return t, nil
}

// Close unpins and forces the head page, releasing the table.
func (t *Table) Close() error {
	if err := t.rm.bp.UnpinPage(t.headHandle); err != nil {
		return err
	}
	if err := t.rm.bp.ForcePage(t.headHandle); err != nil {
		return err
	}
	delete(t.rm.openTables, t.name)
	t.headHandle = nil
	return nil
}

// Schema returns the table's schema.
func (t *Table) Schema() *record.Schema { return t.schema }

// NumTuples returns the table's persisted tuple count.
func (t *Table) NumTuples() int32 { return t.rm.cat.Tables[t.tdIndex].NumTuples }

// pinForAccess returns a handle for pageNum, reusing the table's pinned head
// handle when pageNum is the head page.
func (t *Table) pinForAccess(pageNum int32) (*bufferpool.PageHandle, bool, error) {
	if pageNum == t.headPage {
		return t.headHandle, true, nil
	}
	h, err := t.rm.bp.PinPage(pageNum)
	return h, false, err
}

func (t *Table) unpinIfNotHead(h *bufferpool.PageHandle, isHead bool) error {
	if isHead {
		return nil
	}
	return t.rm.bp.UnpinPage(h)
}

func (t *Table) bumpNumTuples(delta int32) error {
	t.rm.cat.Tables[t.tdIndex].NumTuples += delta
	return t.rm.markCatalogDirty()
}

// InsertRecord writes tuple (exactly RecordSize() bytes) into the first free
// slot in the table's page chain, extending the chain if none exists.
func (t *Table) InsertRecord(tuple []byte) (record.RID, error) {
	if int32(len(tuple)) != t.recordSize {
		return record.RID{}, fmt.Errorf("recordmgr: insert: tuple must be %d bytes", t.recordSize)
	}

	cur := t.headPage
	isHead := true
	for {
		h, _, err := t.pinForAccess(cur)
		if err != nil {
			return record.RID{}, err
		}
		p := recordpage.Page{Buf: h.Data}

		if slot, ok := p.FindFreeSlot(); ok {
			copy(p.Tuple(slot, t.recordSize), tuple)
			p.SetSlotOccupied(slot, true)
			if err := t.rm.bp.MarkDirty(h); err != nil {
				return record.RID{}, err
			}
			if err := t.unpinIfNotHead(h, isHead); err != nil {
				return record.RID{}, err
			}
			if err := t.bumpNumTuples(1); err != nil {
				return record.RID{}, err
			}
			return record.RID{Page: cur, Slot: slot}, nil
		}

		next := p.NextPage()
		if next != catalog.NoPage {
			if err := t.unpinIfNotHead(h, isHead); err != nil {
				return record.RID{}, err
			}
			cur = next
			isHead = false
			continue
		}

		// Chain exhausted: allocate a new page and link it in.
		newPage, err := t.rm.getFreePage()
		if err != nil {
			t.unpinIfNotHead(h, isHead)
			return record.RID{}, err
		}
		p.SetNextPage(newPage)
		if err := t.rm.bp.MarkDirty(h); err != nil {
			return record.RID{}, err
		}
		if err := t.unpinIfNotHead(h, isHead); err != nil {
			return record.RID{}, err
		}

		hn, err := t.rm.bp.PinPage(newPage)
		if err != nil {
			return record.RID{}, err
		}
		recordpage.InitHeader(hn.Data, catalog.NoPage, cur, t.numSlots)
		pn := recordpage.Page{Buf: hn.Data}
		pn.SetSlotOccupied(0, true)
		copy(pn.Tuple(0, t.recordSize), tuple)
		if err := t.rm.bp.MarkDirty(hn); err != nil {
			return record.RID{}, err
		}
		if err := t.rm.bp.UnpinPage(hn); err != nil {
			return record.RID{}, err
		}

		if err := t.bumpNumTuples(1); err != nil {
			return record.RID{}, err
		}
		return record.RID{Page: newPage, Slot: 0}, nil
	}
}

// DeleteRecord clears id's slot bit. Empty pages are left in the chain.
func (t *Table) DeleteRecord(id record.RID) error {
	h, isHead, err := t.pinForAccess(id.Page)
	if err != nil {
		return err
	}
	p := recordpage.Page{Buf: h.Data}
	if id.Slot < 0 || id.Slot >= p.NumSlots() || !p.SlotOccupied(id.Slot) {
		t.unpinIfNotHead(h, isHead)
		return fmt.Errorf("recordmgr: delete record %+v: %w", id, rmerror.ErrKeyNotFound)
	}
	p.SetSlotOccupied(id.Slot, false)
	if err := t.rm.bp.MarkDirty(h); err != nil {
		return err
	}
	if err := t.unpinIfNotHead(h, isHead); err != nil {
		return err
	}
	return t.bumpNumTuples(-1)
}

// UpdateRecord overwrites the tuple bytes at record.ID in place.
func (t *Table) UpdateRecord(rec record.Record) error {
	if int32(len(rec.Data)) != t.recordSize {
		return fmt.Errorf("recordmgr: update: tuple must be %d bytes", t.recordSize)
	}
	h, isHead, err := t.pinForAccess(rec.ID.Page)
	if err != nil {
		return err
	}
	p := recordpage.Page{Buf: h.Data}
	if rec.ID.Slot < 0 || rec.ID.Slot >= p.NumSlots() || !p.SlotOccupied(rec.ID.Slot) {
		t.unpinIfNotHead(h, isHead)
		return fmt.Errorf("recordmgr: update record %+v: %w", rec.ID, rmerror.ErrKeyNotFound)
	}
	copy(p.Tuple(rec.ID.Slot, t.recordSize), rec.Data)
	if err := t.rm.bp.MarkDirty(h); err != nil {
		return err
	}
	return t.unpinIfNotHead(h, isHead)
}

// GetRecord copies id's tuple bytes out.
func (t *Table) GetRecord(id record.RID) (record.Record, error) {
	h, isHead, err := t.pinForAccess(id.Page)
	if err != nil {
		return record.Record{}, err
	}
	p := recordpage.Page{Buf: h.Data}
	if id.Slot < 0 || id.Slot >= p.NumSlots() || !p.SlotOccupied(id.Slot) {
		t.unpinIfNotHead(h, isHead)
		return record.Record{}, fmt.Errorf("recordmgr: get record %+v: %w", id, rmerror.ErrKeyNotFound)
	}
	out := make([]byte, t.recordSize)
	copy(out, p.Tuple(id.Slot, t.recordSize))
	if err := t.unpinIfNotHead(h, isHead); err != nil {
		return record.Record{}, err
	}
	return record.Record{ID: id, Data: out}, nil
}
