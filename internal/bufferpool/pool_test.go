package bufferpool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kavarin/recordstore/internal/rmerror"
	"github.com/kavarin/recordstore/internal/storage"
)

func newTestPool(t *testing.T, numFrames int, strategy string) *Pool {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	bs, err := storage.OpenPageFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.ClosePageFile() })

	pool, err := Init(bs, numFrames, strategy)
	require.NoError(t, err)
	return pool
}

func TestPinPage_LoadsAndPins(t *testing.T) {
	pool := newTestPool(t, 3, "fifo")

	h, err := pool.PinPage(0)
	require.NoError(t, err)
	require.EqualValues(t, 0, h.PageNum)
	require.EqualValues(t, 1, pool.GetFixCounts()[0])
}

func TestPinPage_NoFreeFrame(t *testing.T) {
	pool := newTestPool(t, 2, "fifo")

	_, err := pool.PinPage(0)
	require.NoError(t, err)
	_, err = pool.PinPage(1)
	require.NoError(t, err)

	_, err = pool.PinPage(2)
	require.ErrorIs(t, err, rmerror.ErrNoFreeFrame)
}

func TestUnpinPage_NegativeIsContractViolation(t *testing.T) {
	pool := newTestPool(t, 2, "fifo")
	h, err := pool.PinPage(0)
	require.NoError(t, err)

	require.NoError(t, pool.UnpinPage(h))
	require.ErrorIs(t, pool.UnpinPage(h), ErrPinCountNegative)
}

func TestLRUOrdering_EvictsLeastRecentlyUsed(t *testing.T) {
	pool := newTestPool(t, 3, "lru")

	for _, pn := range []int32{1, 2, 3} {
		h, err := pool.PinPage(pn)
		require.NoError(t, err)
		require.NoError(t, pool.UnpinPage(h))
	}

	h1, err := pool.PinPage(1)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(h1))

	h4, err := pool.PinPage(4)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(h4))

	h5, err := pool.PinPage(5)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(h5))

	h6, err := pool.PinPage(6)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(h6))

	require.ElementsMatch(t, []int32{4, 5, 6}, pool.GetFrameContents())
	require.EqualValues(t, 6, pool.NumReadIO())
	require.EqualValues(t, 0, pool.NumWriteIO())
}

func TestFIFOOrdering_EvictsInsertionOrder(t *testing.T) {
	pool := newTestPool(t, 3, "fifo")

	for _, pn := range []int32{1, 2, 3, 4, 5, 6} {
		h, err := pool.PinPage(pn)
		require.NoError(t, err)
		require.NoError(t, pool.UnpinPage(h))
	}

	require.ElementsMatch(t, []int32{4, 5, 6}, pool.GetFrameContents())
}

func TestDirtyWriteBackOnEviction(t *testing.T) {
	pool := newTestPool(t, 1, "fifo")

	h0, err := pool.PinPage(0)
	require.NoError(t, err)
	h0.Data[0] = 7
	require.NoError(t, pool.MarkDirty(h0))
	require.NoError(t, pool.UnpinPage(h0))

	h1, err := pool.PinPage(1)
	require.NoError(t, err)
	require.NoError(t, pool.UnpinPage(h1))

	require.EqualValues(t, 1, pool.NumWriteIO())
	require.EqualValues(t, 2, pool.NumReadIO())
}

func TestForceFlushPool_IdempotentAfterClean(t *testing.T) {
	pool := newTestPool(t, 2, "fifo")
	h, err := pool.PinPage(0)
	require.NoError(t, err)
	require.NoError(t, pool.MarkDirty(h))
	require.NoError(t, pool.UnpinPage(h))

	require.NoError(t, pool.ForceFlushPool())
	require.EqualValues(t, 1, pool.NumWriteIO())

	require.NoError(t, pool.ForceFlushPool())
	require.EqualValues(t, 1, pool.NumWriteIO())
}

func TestForcePage_FailsWhilePinned(t *testing.T) {
	pool := newTestPool(t, 2, "fifo")
	h, err := pool.PinPage(0)
	require.NoError(t, err)

	require.ErrorIs(t, pool.ForcePage(h), ErrForcePagePinned)
}

func TestShutdown_FailsWithPinnedFrameAndStaysUsable(t *testing.T) {
	pool := newTestPool(t, 2, "fifo")
	h, err := pool.PinPage(0)
	require.NoError(t, err)

	require.ErrorIs(t, pool.Shutdown(), rmerror.ErrWriteFailed)

	require.NoError(t, pool.UnpinPage(h))
	require.NoError(t, pool.Shutdown())
}

func TestInit_RejectsNonPositiveCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	bs, err := storage.OpenPageFile(path)
	require.NoError(t, err)
	defer func() { _ = bs.ClosePageFile() }()

	_, err = Init(bs, 0, "fifo")
	require.ErrorIs(t, err, rmerror.ErrBufferPoolInitFailed)
}
