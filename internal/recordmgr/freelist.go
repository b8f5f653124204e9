package recordmgr

import (
	"github.com/kavarin/recordstore/internal/catalog"
	"github.com/kavarin/recordstore/internal/recordpage"
)

// getFreePage allocates a page: reusing the free list's head if one exists,
// otherwise growing the file by one page.
func (rm *RecordManager) getFreePage() (int32, error) {
	if rm.cat.FreePage == catalog.NoPage {
		newPage := rm.cat.TotalNumPages
		rm.cat.TotalNumPages++
		if err := rm.markCatalogDirty(); err != nil {
			return -1, err
		}
		return newPage, nil
	}

	head := rm.cat.FreePage
	h, err := rm.bp.PinPage(head)
	if err != nil {
		return -1, err
	}
	p := recordpage.Page{Buf: h.Data}
	next := p.NextPage()

	rm.cat.FreePage = next
	p.SetNextPage(catalog.NoPage)
	p.SetPrevPage(catalog.NoPage)
	if err := rm.bp.MarkDirty(h); err != nil {
		return -1, err
	}
	if err := rm.bp.UnpinPage(h); err != nil {
		return -1, err
	}

	if next != catalog.NoPage {
		hn, err := rm.bp.PinPage(next)
		if err != nil {
			return -1, err
		}
		recordpage.Page{Buf: hn.Data}.SetPrevPage(catalog.NoPage)
		if err := rm.bp.MarkDirty(hn); err != nil {
			return -1, err
		}
		if err := rm.bp.UnpinPage(hn); err != nil {
			return -1, err
		}
	}

	if err := rm.markCatalogDirty(); err != nil {
		return -1, err
	}
	return head, nil
}

// appendToFreeList returns the page chain starting at head to the free
// list, making head the new free-list head.
func (rm *RecordManager) appendToFreeList(head int32) error {
	tail := head
	for {
		h, err := rm.bp.PinPage(tail)
		if err != nil {
			return err
		}
		next := recordpage.Page{Buf: h.Data}.NextPage()
		if err := rm.bp.UnpinPage(h); err != nil {
			return err
		}
		if next == catalog.NoPage {
			break
		}
		tail = next
	}

	ht, err := rm.bp.PinPage(tail)
	if err != nil {
		return err
	}
	recordpage.Page{Buf: ht.Data}.SetNextPage(rm.cat.FreePage)
	if err := rm.bp.MarkDirty(ht); err != nil {
		return err
	}
	if err := rm.bp.UnpinPage(ht); err != nil {
		return err
	}

	if rm.cat.FreePage != catalog.NoPage {
		hh, err := rm.bp.PinPage(rm.cat.FreePage)
		if err != nil {
			return err
		}
		recordpage.Page{Buf: hh.Data}.SetPrevPage(tail)
		if err := rm.bp.MarkDirty(hh); err != nil {
			return err
		}
		if err := rm.bp.UnpinPage(hh); err != nil {
			return err
		}
	}

	hp, err := rm.bp.PinPage(head)
	if err != nil {
		return err
	}
	recordpage.Page{Buf: hp.Data}.SetPrevPage(catalog.NoPage)
	if err := rm.bp.MarkDirty(hp); err != nil {
		return err
	}
	if err := rm.bp.UnpinPage(hp); err != nil {
		return err
	}

	rm.cat.FreePage = head
	return rm.markCatalogDirty()
}

// GetNumFreePages walks the free-page chain, counting its length.
func (rm *RecordManager) GetNumFreePages() (int32, error) {
	var n int32
	cur := rm.cat.FreePage
	for cur != catalog.NoPage {
		h, err := rm.bp.PinPage(cur)
		if err != nil {
			return 0, err
		}
		next := recordpage.Page{Buf: h.Data}.NextPage()
		if err := rm.bp.UnpinPage(h); err != nil {
			return 0, err
		}
		n++
		cur = next
	}
	return n, nil
}
