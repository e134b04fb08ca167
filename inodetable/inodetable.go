// Package inodetable owns the inode records of a simulated filesystem.
// Inode ids are issued by a monotonic counter shared across the whole
// session: ids are never reused, no matter how many entries are removed.
package inodetable

import (
	"time"

	"github.com/pedromagedanz/simfs"
	"github.com/pedromagedanz/simfs/blockstore"
)

type FileType int

const (
	TypeDirectory FileType = iota
	TypeFile
)

func (ft FileType) String() string {
	if ft == TypeDirectory {
		return "directory"
	}
	return "file"
}

// NumDirectBlocks is the length of an inode's direct block address table.
// The table and the indirection address are reserved fields carried for
// layout fidelity; no operation populates them.
const NumDirectBlocks = 10

// Inode is the metadata record of one filesystem entry, independent of its
// name or content.
type Inode struct {
	ID             int
	OwnerID        int
	Type           FileType
	Size           int64
	CreatedAt      time.Time
	LastAccessedAt time.Time
	LastUpdatedAt  time.Time
	Permissions    simfs.PermissionMatrix

	// Blocks and Indirect are reserved and never populated.
	Blocks   [NumDirectBlocks]blockstore.BlockAddress
	Indirect blockstore.BlockAddress
}

// Table issues inodes with strictly increasing ids starting at 0.
type Table struct {
	nextID int
}

func NewTable() *Table {
	return &Table{}
}

// Create builds an inode with the next globally unique id, all three
// timestamps stamped to now, and the default rwxr-xr-- permissions.
func (table *Table) Create(ownerID int, fileType FileType, sizeBytes int64) *Inode {
	now := time.Now()
	inode := &Inode{
		ID:             table.nextID,
		OwnerID:        ownerID,
		Type:           fileType,
		Size:           sizeBytes,
		CreatedAt:      now,
		LastAccessedAt: now,
		LastUpdatedAt:  now,
		Permissions:    simfs.DefaultPermissions(),
		Indirect:       blockstore.InvalidBlockAddress,
	}
	for i := range inode.Blocks {
		inode.Blocks[i] = blockstore.InvalidBlockAddress
	}

	table.nextID++
	return inode
}

// CanWrite reports whether the given user may write through this inode: the
// general write bit grants everyone, otherwise only the owner. The group row
// is deliberately never consulted; there is no group roster in this model.
func (inode *Inode) CanWrite(userID int) bool {
	if inode.Permissions.General.Write {
		return true
	}
	return userID == inode.OwnerID
}

// CanRead reports whether the given user may read through this inode: the
// owner always can, anyone else needs the general read bit.
func (inode *Inode) CanRead(userID int) bool {
	if userID == inode.OwnerID {
		return true
	}
	return inode.Permissions.General.Read
}

// SetClass overwrites one row of the permission matrix and stamps the
// update time. Authorization is the caller's job.
func (inode *Inode) SetClass(class simfs.PermissionClass, bits simfs.ModeBits) {
	inode.Permissions.SetClass(class, bits)
	inode.LastUpdatedAt = time.Now()
}

// SetOwner transfers ownership. The new owner id is accepted as-is, even if
// it names no existing user; validating it is left to whoever hands out ids.
func (inode *Inode) SetOwner(newOwnerID int) {
	inode.OwnerID = newOwnerID
	inode.LastUpdatedAt = time.Now()
}

// TouchAccess stamps the access time.
func (inode *Inode) TouchAccess() {
	inode.LastAccessedAt = time.Now()
}

// TouchUpdate stamps the update time.
func (inode *Inode) TouchUpdate() {
	inode.LastUpdatedAt = time.Now()
}
