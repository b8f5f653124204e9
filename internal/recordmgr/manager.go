// Package recordmgr ties the buffer pool, catalog, record pages, and
// expression evaluator together into table lifecycle management, tuple
// CRUD, the free-page list, and filtered scans.
package recordmgr

import (
	"fmt"

	"github.com/kavarin/recordstore/internal/bufferpool"
	"github.com/kavarin/recordstore/internal/catalog"
	"github.com/kavarin/recordstore/internal/record"
	"github.com/kavarin/recordstore/internal/recordpage"
	"github.com/kavarin/recordstore/internal/rmerror"
	"github.com/kavarin/recordstore/internal/storage"
)

// numPoolFrames is the buffer pool size used by Init.
const numPoolFrames = 16

// RecordManager owns one page file's buffer pool and system catalog. The
// catalog page (page 0) is pinned for the manager's entire lifetime.
type RecordManager struct {
	bs  *storage.BlockStore
	bp  *bufferpool.Pool
	cat *catalog.Catalog
	ch  *bufferpool.PageHandle

	openTables map[string]*Table
}

// Init opens (or creates) fileName, allocates a 16-frame LRU buffer pool,
// and pins the catalog page, initializing it if the file is fresh.
func Init(fileName string) (*RecordManager, error) {
	return InitWithPool(fileName, numPoolFrames, "lru")
}

// InitWithPool is Init with an explicit buffer pool size and replacement
// strategy, for callers that load these from configuration.
func InitWithPool(fileName string, numFrames int, strategy string) (*RecordManager, error) {
	bs, err := storage.OpenPageFile(fileName)
	if err != nil {
		return nil, err
	}

	bp, err := bufferpool.Init(bs, numFrames, strategy)
	if err != nil {
		return nil, err
	}

	ch, err := bp.PinPage(0)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Decode(ch.Data)
	if err != nil {
		return nil, err
	}
	if cat.TotalNumPages == 0 {
		// Fresh, zero-filled page: bootstrap a new catalog.
		cat = catalog.New()
		if err := cat.Encode(ch.Data); err != nil {
			return nil, err
		}
		if err := bp.MarkDirty(ch); err != nil {
			return nil, err
		}
	}

	return &RecordManager{
		bs:         bs,
		bp:         bp,
		cat:        cat,
		ch:         ch,
		openTables: make(map[string]*Table),
	}, nil
}

// Shutdown unpins the catalog page and shuts down the buffer pool.
func (rm *RecordManager) Shutdown() error {
	if err := rm.bp.UnpinPage(rm.ch); err != nil {
		return err
	}
	if err := rm.bp.Shutdown(); err != nil {
		return err
	}
	return rm.bs.ClosePageFile()
}

func (rm *RecordManager) markCatalogDirty() error {
	if err := rm.cat.Encode(rm.ch.Data); err != nil {
		return err
	}
	return rm.bp.MarkDirty(rm.ch)
}

// CreateTable allocates a head page and a new table descriptor for name.
func (rm *RecordManager) CreateTable(name string, schema *record.Schema) error {
	if _, _, ok := rm.cat.LookupTable(name); ok {
		return fmt.Errorf("recordmgr: table %q already exists", name)
	}
	if int(rm.cat.NumTables) >= catalog.MaxTables {
		return fmt.Errorf("recordmgr: create table %q: %w", name, rmerror.ErrNoMoreEntries)
	}

	recordSize, err := schema.RecordSize()
	if err != nil {
		return err
	}
	numSlots := recordpage.NumSlotsFor(storage.PageSize, recordSize)
	if numSlots <= 0 {
		return fmt.Errorf("recordmgr: create table %q: record too large for one page", name)
	}

	headPage, err := rm.getFreePage()
	if err != nil {
		return err
	}

	h, err := rm.bp.PinPage(headPage)
	if err != nil {
		return err
	}
	recordpage.InitHeader(h.Data, catalog.NoPage, catalog.NoPage, numSlots)
	if err := rm.bp.MarkDirty(h); err != nil {
		return err
	}
	if err := rm.bp.UnpinPage(h); err != nil {
		return err
	}

	td, err := catalog.NewTableDescriptor(name, schema, headPage)
	if err != nil {
		return err
	}
	if err := rm.cat.AddTable(td); err != nil {
		return err
	}
	return rm.markCatalogDirty()
}

// DeleteTable returns name's page chain to the free list and removes its
// descriptor. Fails if the table is currently open: RemoveTable compacts the
// descriptor array, which would otherwise strand any open Table's cached
// tdIndex on the wrong (or a removed) descriptor.
func (rm *RecordManager) DeleteTable(name string) error {
	if _, ok := rm.openTables[name]; ok {
		return fmt.Errorf("recordmgr: delete table %q: table is open", name)
	}
	td, idx, ok := rm.cat.LookupTable(name)
	if !ok {
		return fmt.Errorf("recordmgr: delete table %q: %w", name, rmerror.ErrKeyNotFound)
	}
	if err := rm.appendToFreeList(td.HeadPage); err != nil {
		return err
	}
	if err := rm.cat.RemoveTable(idx); err != nil {
		return err
	}
	rm.reindexOpenTables()
	return rm.markCatalogDirty()
}

// reindexOpenTables re-resolves every open table's cached tdIndex after the
// catalog's descriptor array has been compacted by RemoveTable.
func (rm *RecordManager) reindexOpenTables() {
	for name, t := range rm.openTables {
		if _, idx, ok := rm.cat.LookupTable(name); ok {
			t.tdIndex = idx
		}
	}
}

// GetNumTables returns the number of tables currently in the catalog.
func (rm *RecordManager) GetNumTables() int32 { return rm.cat.NumTables }

// GetNumPages returns the total number of pages in the page file.
func (rm *RecordManager) GetNumPages() int32 { return rm.cat.TotalNumPages }
