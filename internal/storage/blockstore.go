// Package storage implements the fixed-size page file consumed by the
// buffer pool: create/open/close, block read/write, append, and
// ensure-capacity. One file backs one pool; there is no segmentation.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/kavarin/recordstore/internal/rmerror"
)

// PageSize is the fixed page size in bytes. All persistent objects live in
// page-sized units.
const PageSize = 4096

// NoPage is the sentinel page number meaning "no such page" in on-disk
// headers (next/prev page links, free-page-list head).
const NoPage int32 = -1

var (
	ErrAlreadyExists = errors.New("storage: page file already exists")
	ErrNotOpen       = errors.New("storage: block store is not open")
)

// BlockStore is a single page file, opened for synchronous read/write/append.
// All I/O is synchronous; errors are surfaced, never retried.
type BlockStore struct {
	mu            sync.Mutex
	fileName      string
	file          *os.File
	totalNumPages int32
	curPagePos    int32
}

// CreatePageFile creates a new page file containing exactly one zeroed page.
// Fails with ErrAlreadyExists if the file is already present.
func CreatePageFile(fileName string) error {
	if _, err := os.Stat(fileName); err == nil {
		return ErrAlreadyExists
	}
	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("storage: create page file: %w", rmerror.ErrFileNotFound)
	}
	defer func() { _ = f.Close() }()

	empty := make([]byte, PageSize)
	if _, err := f.Write(empty); err != nil {
		return fmt.Errorf("storage: write initial page: %w", rmerror.ErrWriteFailed)
	}
	return nil
}

// DestroyPageFile removes the page file from disk.
func DestroyPageFile(fileName string) error {
	if err := os.Remove(fileName); err != nil {
		return fmt.Errorf("storage: destroy page file: %w", rmerror.ErrFileNotFound)
	}
	return nil
}

// OpenPageFile opens an existing page file, creating it (with one page) if
// it does not yet exist.
func OpenPageFile(fileName string) (*BlockStore, error) {
	if _, err := os.Stat(fileName); err != nil {
		if err := CreatePageFile(fileName); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(fileName, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open page file: %w", rmerror.ErrFileNotFound)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("storage: stat page file: %w", rmerror.ErrFileNotFound)
	}

	bs := &BlockStore{
		fileName:      fileName,
		file:          f,
		totalNumPages: int32(info.Size() / PageSize),
		curPagePos:    0,
	}
	slog.Debug("storage: opened page file", "fileName", fileName, "totalNumPages", bs.totalNumPages)
	return bs, nil
}

// ClosePageFile closes the underlying file handle.
func (bs *BlockStore) ClosePageFile() error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.file == nil {
		return fmt.Errorf("storage: close: %w", rmerror.ErrFileNotFound)
	}
	err := bs.file.Close()
	bs.file = nil
	if err != nil {
		return fmt.Errorf("storage: close page file: %w", rmerror.ErrFileNotFound)
	}
	return nil
}

// TotalNumPages returns the current page count.
func (bs *BlockStore) TotalNumPages() int32 {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.totalNumPages
}

// ReadBlock reads page pageNum into dst, which must be exactly PageSize bytes.
// Fails with ReadNonExistingPage if pageNum is out of range.
func (bs *BlockStore) ReadBlock(pageNum int32, dst []byte) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.file == nil {
		return fmt.Errorf("storage: read block: %w", rmerror.ErrFileHandleNotInit)
	}
	if len(dst) != PageSize {
		return fmt.Errorf("storage: read block: dst must be %d bytes", PageSize)
	}
	if pageNum < 0 || pageNum >= bs.totalNumPages {
		return fmt.Errorf("storage: read block %d: %w", pageNum, rmerror.ErrReadNonExistingPage)
	}

	off := int64(pageNum) * PageSize
	n, err := bs.file.ReadAt(dst, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("storage: read block %d: %w", pageNum, rmerror.ErrReadFailed)
	}
	if n < PageSize {
		return fmt.Errorf("storage: short read on block %d: %w", pageNum, rmerror.ErrReadFailed)
	}
	bs.curPagePos = pageNum
	return nil
}

// WriteBlock writes src (exactly PageSize bytes) to page pageNum.
func (bs *BlockStore) WriteBlock(pageNum int32, src []byte) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.file == nil {
		return fmt.Errorf("storage: write block: %w", rmerror.ErrFileHandleNotInit)
	}
	if len(src) != PageSize {
		return fmt.Errorf("storage: write block: src must be %d bytes", PageSize)
	}
	if pageNum < 0 || pageNum >= bs.totalNumPages {
		return fmt.Errorf("storage: write block %d: %w", pageNum, rmerror.ErrPageOutOfRange)
	}

	off := int64(pageNum) * PageSize
	n, err := bs.file.WriteAt(src, off)
	if err != nil || n != PageSize {
		return fmt.Errorf("storage: write block %d: %w", pageNum, rmerror.ErrWriteFailed)
	}
	bs.curPagePos = pageNum
	return nil
}

// AppendEmptyBlock grows the file by one zeroed page and bumps totalNumPages.
func (bs *BlockStore) AppendEmptyBlock() error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.appendEmptyBlockLocked()
}

func (bs *BlockStore) appendEmptyBlockLocked() error {
	if bs.file == nil {
		return fmt.Errorf("storage: append: %w", rmerror.ErrFileHandleNotInit)
	}
	empty := make([]byte, PageSize)
	off := int64(bs.totalNumPages) * PageSize
	n, err := bs.file.WriteAt(empty, off)
	if err != nil || n != PageSize {
		return fmt.Errorf("storage: append empty block: %w", rmerror.ErrWriteFailed)
	}
	bs.totalNumPages++
	return nil
}

// EnsureCapacity grows the file with repeated AppendEmptyBlock calls until it
// holds at least numberOfPages pages.
func (bs *BlockStore) EnsureCapacity(numberOfPages int32) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	for bs.totalNumPages < numberOfPages {
		if err := bs.appendEmptyBlockLocked(); err != nil {
			return err
		}
	}
	return nil
}
