// Package bufferpool implements a fixed-size buffer pool over a
// storage.BlockStore: a page table mapping page numbers to frames, a
// pinning discipline, dirty write-back, and pluggable FIFO/LRU eviction.
package bufferpool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kavarin/recordstore/internal/rmerror"
	"github.com/kavarin/recordstore/internal/storage"
)

const logPrefix = "bufferpool: "

var (
	// ErrPinCountNegative is returned by UnpinPage when the frame's pin count is
	// already zero — a caller contract violation.
	ErrPinCountNegative = errors.New("bufferpool: unpin would drive pin count negative")

	// ErrForcePagePinned is returned by ForcePage when the handle's frame is
	// still pinned.
	ErrForcePagePinned = errors.New("bufferpool: cannot force a pinned page")
)

// frame holds one resident page and its bookkeeping.
type frame struct {
	occupied  bool
	pageNum   int32
	data      []byte
	pinCount  int32
	dirty     bool
	timestamp uint64
}

// PageHandle is a borrowing view onto a pinned frame's bytes. It does not
// outlive the Pool: page data ownership lives in the pool, never in handles.
type PageHandle struct {
	PageNum int32
	Data    []byte

	frameIdx int
}

// Pool is a fixed-size buffer pool bound to one BlockStore.
type Pool struct {
	mu sync.Mutex

	bs       *storage.BlockStore
	frames   []frame
	pageTbl  map[int32]int
	replacer Replacer
	clock    uint64

	numReadIO  uint64
	numWriteIO uint64
}

// Init allocates numFrames frames over bs using the named replacement
// strategy ("fifo" or "lru"). Fails with BufferPoolInitFailed if numFrames is
// not positive or the strategy name is unrecognized.
func Init(bs *storage.BlockStore, numFrames int, strategy string) (*Pool, error) {
	if numFrames <= 0 {
		return nil, fmt.Errorf("bufferpool: init with %d frames: %w", numFrames, rmerror.ErrBufferPoolInitFailed)
	}
	replacer, err := NewReplacer(strategy, numFrames)
	if err != nil {
		return nil, fmt.Errorf("bufferpool: init: %w", rmerror.ErrBufferPoolInitFailed)
	}

	p := &Pool{
		bs:       bs,
		frames:   make([]frame, numFrames),
		pageTbl:  make(map[int32]int, numFrames),
		replacer: replacer,
	}
	slog.Debug(logPrefix+"initialized", "numFrames", numFrames, "strategy", strategy)
	return p, nil
}

// PinPage returns a handle for pageNum, loading it from disk if not already
// resident. Fails with NoFreeFrame if every frame is pinned.
func (p *Pool) PinPage(pageNum int32) (*PageHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTbl[pageNum]; ok {
		f := &p.frames[idx]
		f.pinCount++
		p.clock++
		f.timestamp = p.clock
		slog.Debug(logPrefix+"pin hit", "pageNum", pageNum, "frameIdx", idx, "pinCount", f.pinCount)
		return &PageHandle{PageNum: pageNum, Data: f.data, frameIdx: idx}, nil
	}

	idx, err := p.acquireFrameLocked(pageNum)
	if err != nil {
		return nil, err
	}

	f := &p.frames[idx]
	if err := p.bs.EnsureCapacity(pageNum + 1); err != nil {
		return nil, err
	}
	if f.data == nil {
		f.data = make([]byte, storage.PageSize)
	}
	if err := p.bs.ReadBlock(pageNum, f.data); err != nil {
		return nil, err
	}
	p.numReadIO++

	f.occupied = true
	f.pageNum = pageNum
	f.pinCount = 1
	f.dirty = false
	p.clock++
	f.timestamp = p.clock
	p.pageTbl[pageNum] = idx

	slog.Debug(logPrefix+"pin miss, loaded from disk", "pageNum", pageNum, "frameIdx", idx)
	return &PageHandle{PageNum: pageNum, Data: f.data, frameIdx: idx}, nil
}

// acquireFrameLocked finds a free frame or evicts a victim, returning its
// index. Caller must hold p.mu.
func (p *Pool) acquireFrameLocked(pageNum int32) (int, error) {
	for i := range p.frames {
		if !p.frames[i].occupied {
			return i, nil
		}
	}

	idx, ok := p.replacer.Victim(p.frames)
	if !ok {
		return -1, fmt.Errorf("bufferpool: pin page %d: %w", pageNum, rmerror.ErrNoFreeFrame)
	}

	victim := &p.frames[idx]
	if victim.dirty {
		slog.Debug(logPrefix+"evicting dirty frame", "pageNum", victim.pageNum, "frameIdx", idx)
		if err := p.bs.WriteBlock(victim.pageNum, victim.data); err != nil {
			return -1, err
		}
		p.numWriteIO++
		victim.dirty = false
	}
	delete(p.pageTbl, victim.pageNum)
	return idx, nil
}

// UnpinPage decrements the handle's pin count. Fails with
// ErrPinCountNegative if the frame's pin count is already zero.
func (p *Pool) UnpinPage(h *PageHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := &p.frames[h.frameIdx]
	if f.pinCount == 0 {
		return ErrPinCountNegative
	}
	f.pinCount--
	slog.Debug(logPrefix+"unpin", "pageNum", h.PageNum, "pinCount", f.pinCount)
	return nil
}

// MarkDirty sets the handle's frame as dirty and bumps its timestamp.
func (p *Pool) MarkDirty(h *PageHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := &p.frames[h.frameIdx]
	f.dirty = true
	p.clock++
	f.timestamp = p.clock
	return nil
}

// ForcePage writes the handle's frame to disk if unpinned, clearing dirty.
// Fails with ErrForcePagePinned if the frame is still pinned.
func (p *Pool) ForcePage(h *PageHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := &p.frames[h.frameIdx]
	if f.pinCount != 0 {
		return ErrForcePagePinned
	}
	if err := p.bs.WriteBlock(f.pageNum, f.data); err != nil {
		return err
	}
	p.numWriteIO++
	f.dirty = false
	p.clock++
	f.timestamp = p.clock
	return nil
}

// ForceFlushPool writes every occupied, dirty, unpinned frame to disk and
// clears their dirty flags. A second call with nothing dirty issues zero
// writes.
func (p *Pool) ForceFlushPool() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.frames {
		f := &p.frames[i]
		if !f.occupied || !f.dirty || f.pinCount != 0 {
			continue
		}
		if err := p.bs.WriteBlock(f.pageNum, f.data); err != nil {
			return err
		}
		p.numWriteIO++
		f.dirty = false
	}
	slog.Debug(logPrefix + "force flush pool complete")
	return nil
}

// Shutdown flushes all dirty, unpinned frames. Callers close the underlying
// BlockStore separately. Fails with WriteFailed if any frame is still
// pinned, leaving the pool untouched and still usable.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	for _, f := range p.frames {
		if f.occupied && f.pinCount > 0 {
			p.mu.Unlock()
			return fmt.Errorf("bufferpool: shutdown with pinned page %d: %w", f.pageNum, rmerror.ErrWriteFailed)
		}
	}
	p.mu.Unlock()

	return p.ForceFlushPool()
}

// GetFrameContents returns the page number resident in each frame, or
// storage.NoPage for an empty frame.
func (p *Pool) GetFrameContents() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]int32, len(p.frames))
	for i, f := range p.frames {
		if f.occupied {
			out[i] = f.pageNum
		} else {
			out[i] = storage.NoPage
		}
	}
	return out
}

// GetDirtyFlags returns the dirty flag of each frame.
func (p *Pool) GetDirtyFlags() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]bool, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.dirty
	}
	return out
}

// GetFixCounts returns the pin count of each frame.
func (p *Pool) GetFixCounts() []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]int32, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.pinCount
	}
	return out
}

// NumReadIO returns the number of page reads issued to disk.
func (p *Pool) NumReadIO() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numReadIO
}

// NumWriteIO returns the number of page writes issued to disk.
func (p *Pool) NumWriteIO() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numWriteIO
}
