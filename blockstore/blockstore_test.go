package blockstore_test

import (
	"io"
	"testing"

	"github.com/pedromagedanz/simfs"
	"github.com/pedromagedanz/simfs/blockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockCountTest struct {
	TotalBytes     int64
	ExpectedBlocks uint
}

var blockCountTests = [...]blockCountTest{
	{TotalBytes: 512, ExpectedBlocks: 1},
	{TotalBytes: 1023, ExpectedBlocks: 1},
	{TotalBytes: 1024, ExpectedBlocks: 2},
	{TotalBytes: 4096, ExpectedBlocks: 8},
	{TotalBytes: 33554432, ExpectedBlocks: 65536},
}

func TestNewBlockCount(t *testing.T) {
	for _, test := range blockCountTests {
		store, err := blockstore.New(test.TotalBytes)
		require.NoErrorf(t, err, "creating a %d-byte disk failed", test.TotalBytes)

		assert.Equal(t, test.ExpectedBlocks, store.TotalBlocks())
		assert.Equal(t, test.ExpectedBlocks, store.FreeBlocks(), "all blocks should start free")
		assert.EqualValues(t, 0, store.UsedBlocks())
	}
}

func TestNewRejectsOutOfRangeSizes(t *testing.T) {
	for _, size := range []int64{-1, 0, 511, 33554433} {
		_, err := blockstore.New(size)
		assert.ErrorIsf(t, err, simfs.ErrInvalidFormat, "size %d should be rejected", size)
	}
}

func TestAllocateScansFromTheStart(t *testing.T) {
	store, err := blockstore.New(2048)
	require.NoError(t, err)

	first, err := store.Allocate([]byte("D docs"))
	require.NoError(t, err)
	second, err := store.Allocate([]byte("F report.txt"))
	require.NoError(t, err)

	assert.EqualValues(t, 0, first)
	assert.EqualValues(t, 1, second)
	assert.EqualValues(t, 2, store.UsedBlocks())
	assert.EqualValues(t, 2, store.FreeBlocks())
}

func TestAllocateFailsWhenFull(t *testing.T) {
	store, err := blockstore.New(1024)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = store.Allocate([]byte{'F'})
		require.NoError(t, err)
	}

	addr, err := store.Allocate([]byte{'F'})
	assert.ErrorIs(t, err, simfs.ErrOutOfSpace)
	assert.Equal(t, blockstore.InvalidBlockAddress, addr)
	assert.Equal(t, "not enough space", err.Error())
}

func TestAllocateRejectsZeroSnapshots(t *testing.T) {
	store, err := blockstore.New(1024)
	require.NoError(t, err)

	_, err = store.Allocate(nil)
	assert.ErrorIs(t, err, simfs.ErrInvalidOperation)

	_, err = store.Allocate(make([]byte, 16))
	assert.ErrorIs(t, err, simfs.ErrInvalidOperation)
	assert.EqualValues(t, 0, store.UsedBlocks())
}

func TestByteQueries(t *testing.T) {
	store, err := blockstore.New(2048)
	require.NoError(t, err)

	assert.EqualValues(t, 2048, store.TotalBytes())
	assert.EqualValues(t, 2048, store.FreeBytes())

	_, err = store.Allocate([]byte{'D'})
	require.NoError(t, err)
	assert.EqualValues(t, 2048, store.TotalBytes())
	assert.EqualValues(t, 1536, store.FreeBytes())
}

func TestLengthToNumBlocks(t *testing.T) {
	assert.EqualValues(t, 0, blockstore.LengthToNumBlocks(0))
	assert.EqualValues(t, 1, blockstore.LengthToNumBlocks(1))
	assert.EqualValues(t, 1, blockstore.LengthToNumBlocks(512))
	assert.EqualValues(t, 2, blockstore.LengthToNumBlocks(513))
	assert.EqualValues(t, 2, blockstore.LengthToNumBlocks(600))
	assert.EqualValues(t, 2, blockstore.LengthToNumBlocks(1024))
}

func TestUsageBitmap(t *testing.T) {
	store, err := blockstore.New(2048)
	require.NoError(t, err)

	_, err = store.Allocate([]byte{'D'})
	require.NoError(t, err)
	_, err = store.Allocate([]byte{'F'})
	require.NoError(t, err)

	usage := store.UsageBitmap()
	assert.True(t, usage.Get(0))
	assert.True(t, usage.Get(1))
	assert.False(t, usage.Get(2))
	assert.False(t, usage.Get(3))
}

// A cell becomes "used" the moment any byte in it is nonzero, however it got
// there. Writing through the raw stream must be indistinguishable from an
// allocation as far as the accounting queries are concerned.
func TestStreamWritesAffectAccounting(t *testing.T) {
	store, err := blockstore.New(2048)
	require.NoError(t, err)

	stream := store.Stream()
	_, err = stream.Seek(3*blockstore.BlockSize, io.SeekStart)
	require.NoError(t, err)
	_, err = stream.Write([]byte{0xff})
	require.NoError(t, err)

	assert.EqualValues(t, 1, store.UsedBlocks())
	assert.True(t, store.UsageBitmap().Get(3))

	// The next allocation still takes the first free cell, not the lowest
	// address overall.
	addr, err := store.Allocate([]byte{'D'})
	require.NoError(t, err)
	assert.EqualValues(t, 0, addr)
}
