package sim

import (
	"encoding/binary"

	"github.com/noxer/bytewriter"
	"github.com/pedromagedanz/simfs/blockstore"
	"github.com/pedromagedanz/simfs/inodetable"
	"github.com/pedromagedanz/simfs/namespace"
)

const snapshotTagDirectory = byte('D')
const snapshotTagFile = byte('F')

// maxSnapshotNameLength is how much of an entry's name fits in one cell
// after the fixed header fields.
const maxSnapshotNameLength = blockstore.BlockSize - 27

// entrySnapshot serializes an entry's metadata into a single 512-byte cell
// image: a one-byte type tag (never zero, so an allocated cell can't be
// mistaken for free), the inode fields, and the length-prefixed name.
// Nothing ever deserializes these; they exist so the disk's used cells hold
// a plausible image of what they account for.
func entrySnapshot(tag byte, inode *inodetable.Inode, name string) []byte {
	if len(name) > maxSnapshotNameLength {
		name = name[:maxSnapshotNameLength]
	}

	buffer := make([]byte, blockstore.BlockSize)
	writer := bytewriter.New(buffer)

	writer.Write([]byte{tag})
	binary.Write(writer, binary.LittleEndian, uint32(inode.ID))
	binary.Write(writer, binary.LittleEndian, uint32(inode.OwnerID))
	binary.Write(writer, binary.LittleEndian, uint64(inode.Size))
	binary.Write(writer, binary.LittleEndian, inode.CreatedAt.Unix())
	binary.Write(writer, binary.LittleEndian, uint16(len(name)))
	writer.Write([]byte(name))

	return buffer
}

func directorySnapshot(dir *namespace.Directory) []byte {
	return entrySnapshot(snapshotTagDirectory, dir.Inode, dir.Name)
}

func fileSnapshot(file *namespace.File) []byte {
	return entrySnapshot(snapshotTagFile, file.Inode, file.Name)
}
