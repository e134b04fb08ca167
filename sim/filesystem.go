// Package sim ties the simulator's components into a single filesystem
// state: the user registry, the inode table, the block store, the directory
// tree, and the content store. Every operation of the command surface is a
// method on Filesystem, returning success-or-error; permission and ownership
// gates live here, on top of the raw component operations.
//
// Everything is strictly sequential. There is no locking because there is
// exactly one session mutating the state at a time.
package sim

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/pedromagedanz/simfs"
	"github.com/pedromagedanz/simfs/blockstore"
	"github.com/pedromagedanz/simfs/contentstore"
	"github.com/pedromagedanz/simfs/identity"
	"github.com/pedromagedanz/simfs/inodetable"
	"github.com/pedromagedanz/simfs/namespace"
)

// DefaultDiskBytes is the disk size used when the operator accepts the
// default at the creation prompt.
const DefaultDiskBytes = blockstore.MaxDiskBytes

// DefaultAdminPassword is used when the operator leaves the admin password
// blank at the creation prompt.
const DefaultAdminPassword = "1234"

// Filesystem is the whole mutable state of one simulated session. It is
// owned by the shell and passed by reference into every operation; there is
// no ambient global state.
type Filesystem struct {
	Users    *identity.Registry
	Inodes   *inodetable.Table
	Blocks   *blockstore.Store
	Root     *namespace.Directory
	Contents *contentstore.Store

	current *namespace.Directory
}

// CreateDisk builds a fresh filesystem: a zeroed block store of
// floor(totalBytes/512) cells, the id-0 administrator as the active user,
// and a root directory owned by the administrator. The root consumes no
// block.
func CreateDisk(totalBytes int64, adminPassword string) (*Filesystem, error) {
	blocks, err := blockstore.New(totalBytes)
	if err != nil {
		return nil, err
	}

	users := identity.NewRegistry()
	admin, err := users.CreateAdmin(adminPassword)
	if err != nil {
		return nil, err
	}

	inodes := inodetable.NewTable()
	root := namespace.NewDirectory(
		namespace.RootName, inodes.Create(admin.ID, inodetable.TypeDirectory, 0))

	fsys := &Filesystem{
		Users:    users,
		Inodes:   inodes,
		Blocks:   blocks,
		Root:     root,
		Contents: contentstore.NewStore(),
	}
	fsys.current = root
	return fsys, nil
}

// ActiveUser returns the user owning the session.
func (fsys *Filesystem) ActiveUser() *identity.User {
	return fsys.Users.ActiveUser()
}

func (fsys *Filesystem) activeIsAdmin() bool {
	return fsys.Users.ActiveID() == identity.AdminID
}

// AddUser records a new user. Only the administrator may do this.
func (fsys *Filesystem) AddUser(username, password string) (*identity.User, error) {
	return fsys.Users.Add(fsys.Users.ActiveID(), username, password)
}

// RemoveUser deletes a user record. The administrator and the active user
// are protected.
func (fsys *Filesystem) RemoveUser(targetID int) error {
	return fsys.Users.Remove(targetID)
}

// SwitchUser changes the active session to the given user. On failure the
// session is unchanged.
func (fsys *Filesystem) SwitchUser(userID int, password string) error {
	return fsys.Users.SwitchActiveUser(userID, password)
}

// CurrentDirectory returns the directory the session is "in": the root or
// one of its subdirectories.
func (fsys *Filesystem) CurrentDirectory() *namespace.Directory {
	return fsys.current
}

// Cd moves the session to the root or to one of its subdirectories.
func (fsys *Filesystem) Cd(name string) error {
	if name == namespace.RootName {
		fsys.current = fsys.Root
		return nil
	}

	sub := fsys.Root.Subdirectory(name)
	if sub == nil {
		return simfs.ErrNotFound.WithMessage(fmt.Sprintf("no subdirectory named %q", name))
	}
	fsys.current = sub
	return nil
}

// Resolve finds the first entry matching a bare name in the deterministic
// pre-order walk of the whole tree.
func (fsys *Filesystem) Resolve(name string) namespace.Entry {
	return namespace.Resolve(fsys.Root, name)
}

// DiskUsage is a point-in-time capacity summary derived from cell state.
type DiskUsage struct {
	TotalBytes  int64
	FreeBytes   int64
	TotalBlocks uint
	UsedBlocks  uint
	FreeBlocks  uint
	Usage       bitmap.Bitmap
}

// Usage reports the disk's capacity accounting.
func (fsys *Filesystem) Usage() DiskUsage {
	return DiskUsage{
		TotalBytes:  fsys.Blocks.TotalBytes(),
		FreeBytes:   fsys.Blocks.FreeBytes(),
		TotalBlocks: fsys.Blocks.TotalBlocks(),
		UsedBlocks:  fsys.Blocks.UsedBlocks(),
		FreeBlocks:  fsys.Blocks.FreeBlocks(),
		Usage:       fsys.Blocks.UsageBitmap(),
	}
}
