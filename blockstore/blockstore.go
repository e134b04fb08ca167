// Package blockstore simulates a fixed-size disk as an array of 512-byte
// cells. A cell is free iff every byte in it is zero; allocation writes a
// serialized snapshot of an object into the first free cell found by an
// ascending linear scan. Allocated cells are capacity accounting only and
// are never read back or reclaimed.
package blockstore

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/boljen/go-bitmap"
	"github.com/pedromagedanz/simfs"
	"github.com/xaionaro-go/bytesextra"
)

// BlockSize is the size of one cell, in bytes. It is also the unit every
// file size is rounded up to.
const BlockSize = 512

// MinDiskBytes and MaxDiskBytes bound the size a simulated disk may be
// created with, inclusive.
const MinDiskBytes = 512
const MaxDiskBytes = 33554432

type BlockAddress uint

const InvalidBlockAddress = BlockAddress(math.MaxUint)

// Store is the simulated disk.
type Store struct {
	cells       []byte
	totalBlocks uint
}

// New creates a store of floor(totalBytes / BlockSize) zeroed cells.
// totalBytes outside [MinDiskBytes, MaxDiskBytes] is an InvalidFormat error.
func New(totalBytes int64) (*Store, error) {
	if totalBytes < MinDiskBytes || totalBytes > MaxDiskBytes {
		return nil, simfs.ErrInvalidFormat.WithMessage(
			fmt.Sprintf(
				"disk size must be in [%d, %d] bytes, got %d",
				MinDiskBytes,
				MaxDiskBytes,
				totalBytes,
			))
	}

	totalBlocks := uint(totalBytes / BlockSize)
	return &Store{
		cells:       make([]byte, totalBlocks*BlockSize),
		totalBlocks: totalBlocks,
	}, nil
}

// Allocate writes `snapshot` into the first free cell, scanning from cell 0
// on every call. Snapshots longer than one cell are truncated; a snapshot
// with no nonzero byte would leave the cell indistinguishable from free, so
// it is rejected.
func (store *Store) Allocate(snapshot []byte) (BlockAddress, error) {
	if len(snapshot) == 0 || isZero(snapshot[:minInt(len(snapshot), BlockSize)]) {
		return InvalidBlockAddress, simfs.ErrInvalidOperation.WithMessage(
			"refusing to allocate an all-zero snapshot")
	}

	for i := uint(0); i < store.totalBlocks; i++ {
		if !store.isFree(i) {
			continue
		}
		copy(store.cellSlice(i), snapshot)
		return BlockAddress(i), nil
	}

	return InvalidBlockAddress, simfs.ErrOutOfSpace
}

// TotalBlocks returns the number of cells on the disk.
func (store *Store) TotalBlocks() uint {
	return store.totalBlocks
}

// FreeBlocks counts the cells that are entirely zero.
func (store *Store) FreeBlocks() uint {
	free := uint(0)
	for i := uint(0); i < store.totalBlocks; i++ {
		if store.isFree(i) {
			free++
		}
	}
	return free
}

// UsedBlocks counts the cells holding at least one nonzero byte.
func (store *Store) UsedBlocks() uint {
	return store.totalBlocks - store.FreeBlocks()
}

// TotalBytes returns the capacity of the disk, in bytes.
func (store *Store) TotalBytes() int64 {
	return int64(store.totalBlocks) * BlockSize
}

// FreeBytes returns the capacity of the free cells, in bytes.
func (store *Store) FreeBytes() int64 {
	return int64(store.FreeBlocks()) * BlockSize
}

// LengthToNumBlocks gives the minimum number of cells required to hold the
// given number of bytes.
func LengthToNumBlocks(size int64) uint {
	return uint((size + BlockSize - 1) / BlockSize)
}

// UsageBitmap returns a bitmap with one bit per cell, set iff the cell is in
// use. The bitmap is derived from cell state at call time.
func (store *Store) UsageBitmap() bitmap.Bitmap {
	usage := bitmap.New(int(store.totalBlocks))
	for i := uint(0); i < store.totalBlocks; i++ {
		usage.Set(int(i), !store.isFree(i))
	}
	return usage
}

// Stream exposes the raw cell array as an io.ReadWriteSeeker for inspection.
// Writes go straight to the cells, so callers can also use it to corrupt a
// disk on purpose in tests.
func (store *Store) Stream() io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(store.cells)
}

func (store *Store) cellSlice(index uint) []byte {
	start := index * BlockSize
	return store.cells[start : start+BlockSize]
}

func (store *Store) isFree(index uint) bool {
	return isZero(store.cellSlice(index))
}

func isZero(buffer []byte) bool {
	return bytes.Count(buffer, []byte{0}) == len(buffer)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
