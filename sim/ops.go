package sim

import (
	"fmt"

	"github.com/pedromagedanz/simfs"
	"github.com/pedromagedanz/simfs/blockstore"
	"github.com/pedromagedanz/simfs/inodetable"
	"github.com/pedromagedanz/simfs/namespace"
)

// Mkdir creates a subdirectory under the root, owned by the active user. It
// consumes one block for the directory's metadata snapshot. A duplicate name
// overwrites the existing subdirectory, replacing its whole subtree; no
// uniqueness check is made.
func (fsys *Filesystem) Mkdir(name string) (*namespace.Directory, error) {
	inode := fsys.Inodes.Create(fsys.Users.ActiveID(), inodetable.TypeDirectory, 0)
	dir := namespace.NewDirectory(name, inode)

	if _, err := fsys.Blocks.Allocate(directorySnapshot(dir)); err != nil {
		return nil, err
	}

	fsys.Root.AttachSubdirectory(dir)
	return dir, nil
}

// Rmdir removes a subdirectory of the root and its entire subtree. Files
// inside are discarded; their blocks are not reclaimed. The caller must be
// the administrator, or the directory's general write bit must be set;
// being the owner is not enough on its own.
func (fsys *Filesystem) Rmdir(name string) error {
	if name == namespace.RootName {
		return simfs.ErrInvalidOperation.WithMessage("cannot remove the root directory")
	}

	sub := fsys.Root.Subdirectory(name)
	if sub == nil {
		return simfs.ErrNotFound.WithMessage(fmt.Sprintf("no subdirectory named %q", name))
	}

	if !fsys.activeIsAdmin() && !sub.Inode.Permissions.General.Write {
		return simfs.ErrPermissionDenied.WithMessage(
			fmt.Sprintf("removing %q needs the general write bit or the administrator", name))
	}

	if fsys.current == sub {
		fsys.current = fsys.Root
	}
	fsys.Root.RemoveSubdirectory(name)
	return nil
}

// Touch creates a file inside an existing subdirectory of the root. The
// size is rounded up to the next multiple of the block size, the whole
// capacity requirement is checked before anything is allocated, and then
// one block per needed block is consumed. Either every block is allocated
// or none are.
func (fsys *Filesystem) Touch(name string, sizeBytes int64, parentName string) (*namespace.File, error) {
	if sizeBytes < 0 {
		return nil, simfs.ErrInvalidFormat.WithMessage(
			fmt.Sprintf("file size must be non-negative, got %d", sizeBytes))
	}
	if parentName == namespace.RootName {
		return nil, simfs.ErrInvalidOperation.WithMessage(
			"files cannot be created directly under the root")
	}

	parent := fsys.Root.Subdirectory(parentName)
	if parent == nil {
		return nil, simfs.ErrNotFound.WithMessage(
			fmt.Sprintf("no subdirectory named %q", parentName))
	}

	// Anything larger than the biggest possible disk can never fit, and
	// rejecting it here keeps the rounding below from overflowing.
	if sizeBytes > blockstore.MaxDiskBytes {
		return nil, simfs.ErrOutOfSpace.WithMessage(
			fmt.Sprintf("%q needs %d bytes, %d free", name, sizeBytes, fsys.Blocks.FreeBytes()))
	}

	requiredBlocks := blockstore.LengthToNumBlocks(sizeBytes)
	roundedSize := int64(requiredBlocks) * blockstore.BlockSize

	// All-or-nothing: compare the full requirement against free capacity
	// before the first allocation call.
	if roundedSize > fsys.Blocks.FreeBytes() {
		return nil, simfs.ErrOutOfSpace.WithMessage(
			fmt.Sprintf("%q needs %d blocks, %d free",
				name, requiredBlocks, fsys.Blocks.FreeBlocks()))
	}

	inode := fsys.Inodes.Create(fsys.Users.ActiveID(), inodetable.TypeFile, roundedSize)
	file := &namespace.File{Name: name, Inode: inode}

	snapshot := fileSnapshot(file)
	for i := uint(0); i < requiredBlocks; i++ {
		// Each call re-scans the cells from the start.
		if _, err := fsys.Blocks.Allocate(snapshot); err != nil {
			return nil, err
		}
	}

	// Attach only once every block is accounted for, so a failure can't
	// leave a file in the tree with a partial allocation.
	parent.AttachFile(file)
	return file, nil
}

// Rm removes a file from a subdirectory. Its blocks and any content records
// are left behind.
func (fsys *Filesystem) Rm(parentName, fileName string) error {
	parent := fsys.Root.Subdirectory(parentName)
	if parent == nil {
		return simfs.ErrNotFound.WithMessage(
			fmt.Sprintf("no subdirectory named %q", parentName))
	}
	if !parent.RemoveFile(fileName) {
		return simfs.ErrNotFound.WithMessage(
			fmt.Sprintf("no file named %q in %q", fileName, parentName))
	}
	return nil
}

// Mkfs resets the root's subdirectories and files to empty. Disk blocks are
// not reclaimed; the allocator is monotonic for the life of the session.
func (fsys *Filesystem) Mkfs() {
	fsys.Root.ClearChildren()
	fsys.current = fsys.Root
}

// Chmod overwrites one permission class of the named entry. The caller must
// be the administrator, or must be the owner AND supply the owner's correct
// password. The ownership check comes first: a non-owner is rejected no
// matter what password they present.
func (fsys *Filesystem) Chmod(name string, class simfs.PermissionClass, mode, password string) error {
	entry := fsys.Resolve(name)
	if entry == nil {
		return simfs.ErrNotFound.WithMessage(fmt.Sprintf("no entry named %q", name))
	}

	bits, err := simfs.ParseModeBits(mode)
	if err != nil {
		return err
	}

	inode := entry.EntryInode()
	if !fsys.activeIsAdmin() {
		if fsys.Users.ActiveID() != inode.OwnerID {
			return simfs.ErrPermissionDenied.WithMessage(
				fmt.Sprintf("only the owner or the administrator can chmod %q", name))
		}
		if !fsys.Users.Authenticate(inode.OwnerID, password) {
			return simfs.ErrAuthenticationFailed.WithMessage(
				fmt.Sprintf("wrong password for the owner of %q", name))
		}
	}

	inode.SetClass(class, bits)
	return nil
}

// Chown transfers ownership of the named entry. The caller must be the
// administrator or the current owner. The new owner id is accepted even if
// it names no existing user.
func (fsys *Filesystem) Chown(name string, newOwnerID int) error {
	entry := fsys.Resolve(name)
	if entry == nil {
		return simfs.ErrNotFound.WithMessage(fmt.Sprintf("no entry named %q", name))
	}

	inode := entry.EntryInode()
	if !fsys.activeIsAdmin() && fsys.Users.ActiveID() != inode.OwnerID {
		return simfs.ErrPermissionDenied.WithMessage(
			fmt.Sprintf("only the owner or the administrator can chown %q", name))
	}

	inode.SetOwner(newOwnerID)
	return nil
}

// Echo appends a content record for the named file. The active user needs
// write permission on the file's inode. Records are keyed by bare file name,
// so same-named files in different directories share them.
func (fsys *Filesystem) Echo(name, content string) error {
	entry := fsys.Resolve(name)
	if entry == nil {
		return simfs.ErrNotFound.WithMessage(fmt.Sprintf("no file named %q", name))
	}
	if entry.IsDir() {
		return simfs.ErrInvalidOperation.WithMessage(
			fmt.Sprintf("%q is a directory", name))
	}

	inode := entry.EntryInode()
	if !inode.CanWrite(fsys.Users.ActiveID()) {
		return simfs.ErrPermissionDenied.WithMessage(
			fmt.Sprintf("no write permission on %q", name))
	}

	fsys.Contents.Write(entry.EntryName(), content)
	inode.TouchUpdate()
	return nil
}

// Cat returns the content of the earliest write to the named file. The
// active user must be the owner or the general read bit must be set.
func (fsys *Filesystem) Cat(name string) (string, error) {
	entry := fsys.Resolve(name)
	if entry == nil {
		return "", simfs.ErrNotFound.WithMessage(fmt.Sprintf("no file named %q", name))
	}
	if entry.IsDir() {
		return "", simfs.ErrInvalidOperation.WithMessage(
			fmt.Sprintf("%q is a directory", name))
	}

	inode := entry.EntryInode()
	if !inode.CanRead(fsys.Users.ActiveID()) {
		return "", simfs.ErrPermissionDenied.WithMessage(
			fmt.Sprintf("no read permission on %q", name))
	}

	content, ok := fsys.Contents.Read(entry.EntryName())
	if !ok {
		return "", simfs.ErrNotFound.WithMessage(
			fmt.Sprintf("%q has no content", name))
	}

	inode.TouchAccess()
	return content, nil
}
