// Package testing holds fixtures shared by the test suites of the other
// packages.
package testing

import (
	"io"
	"testing"

	"github.com/pedromagedanz/simfs/blockstore"
	"github.com/pedromagedanz/simfs/sim"
	"github.com/stretchr/testify/require"
)

// CreateTestFilesystem builds a filesystem of the given size with the
// default admin password. It's guaranteed to either return a usable
// filesystem or fail the test and abort.
func CreateTestFilesystem(t *testing.T, totalBytes int64) *sim.Filesystem {
	fsys, err := sim.CreateDisk(totalBytes, sim.DefaultAdminPassword)
	require.NoErrorf(t, err, "failed to create a %d-byte test disk", totalBytes)
	return fsys
}

// ReadBlock returns a copy of the raw bytes of one disk cell, read through
// the store's stream view.
func ReadBlock(t *testing.T, fsys *sim.Filesystem, index uint) []byte {
	stream := fsys.Blocks.Stream()

	_, err := stream.Seek(int64(index)*blockstore.BlockSize, io.SeekStart)
	require.NoErrorf(t, err, "failed to seek to block %d", index)

	buffer := make([]byte, blockstore.BlockSize)
	_, err = io.ReadFull(stream, buffer)
	require.NoErrorf(t, err, "failed to read block %d", index)
	return buffer
}
