package recordmgr

import (
	"fmt"

	"github.com/kavarin/recordstore/internal/bufferpool"
	"github.com/kavarin/recordstore/internal/catalog"
	"github.com/kavarin/recordstore/internal/expr"
	"github.com/kavarin/recordstore/internal/record"
	"github.com/kavarin/recordstore/internal/recordpage"
	"github.com/kavarin/recordstore/internal/rmerror"
)

// Scan is a cursor over a table's full page chain, optionally filtered by a
// condition expression.
type Scan struct {
	t      *Table
	cond   *expr.Expr
	page   int32
	slot   int32
	handle *bufferpool.PageHandle
	isHead bool
}

// StartScan begins a scan over the table's chain. cond may be nil, meaning
// every tuple matches.
func (t *Table) StartScan(cond *expr.Expr) *Scan {
	return &Scan{t: t, cond: cond, page: t.headPage, slot: -1}
}

// Next advances to the next matching tuple, walking past pages in the
// chain. Returns ErrNoMoreTuples once the chain is exhausted.
func (s *Scan) Next() (record.Record, error) {
	for {
		if s.handle == nil {
			h, isHead, err := s.t.pinForAccess(s.page)
			if err != nil {
				return record.Record{}, err
			}
			s.handle = h
			s.isHead = isHead
		}

		p := recordpage.Page{Buf: s.handle.Data}
		s.slot++
		if s.slot >= p.NumSlots() {
			next := p.NextPage()
			if err := s.t.unpinIfNotHead(s.handle, s.isHead); err != nil {
				return record.Record{}, err
			}
			s.handle = nil
			if next == catalog.NoPage {
				return record.Record{}, fmt.Errorf("recordmgr: scan: %w", rmerror.ErrNoMoreTuples)
			}
			s.page = next
			s.slot = -1
			continue
		}

		if !p.SlotOccupied(s.slot) {
			continue
		}

		tuple := p.Tuple(s.slot, s.t.recordSize)
		if s.cond != nil {
			v, err := expr.Eval(tuple, s.t.schema, s.cond)
			if err != nil {
				return record.Record{}, err
			}
			if v.Type != record.TypeBool || !v.B {
				continue
			}
		}

		out := make([]byte, len(tuple))
		copy(out, tuple)
		return record.Record{ID: record.RID{Page: s.page, Slot: s.slot}, Data: out}, nil
	}
}

// Close releases any page the scan still holds pinned.
func (s *Scan) Close() error {
	if s.handle != nil && !s.isHead {
		return s.t.rm.bp.UnpinPage(s.handle)
	}
	return nil
}
