package sim_test

import (
	"math"
	"testing"

	"github.com/pedromagedanz/simfs"
	"github.com/pedromagedanz/simfs/blockstore"
	simtest "github.com/pedromagedanz/simfs/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkdirConsumesOneBlock(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 2048)

	docs, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", docs.Name)
	assert.EqualValues(t, 1, fsys.Blocks.UsedBlocks())

	// The snapshot in the allocated cell starts with the directory tag.
	block := simtest.ReadBlock(t, fsys, 0)
	assert.EqualValues(t, 'D', block[0])
}

func TestMkdirDuplicateNameOverwrites(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 4096)

	first, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	_, err = fsys.Touch("a.txt", 100, "docs")
	require.NoError(t, err)

	second, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	require.NotSame(t, first, second)

	subs := fsys.Root.Subdirectories()
	require.Len(t, subs, 1)
	assert.Same(t, second, subs[0])
	assert.Empty(t, second.Files(), "the replacement starts empty; the old subtree is gone")
}

// Disk of 1024 bytes = 2 blocks. mkdir consumes one; a 600-byte file needs
// ceil(600/512) = 2 blocks but only one is free, so the touch fails without
// allocating anything.
func TestTouchOutOfSpaceScenario(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 1024)

	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	require.EqualValues(t, 1, fsys.Blocks.FreeBlocks())

	_, err = fsys.Touch("report.txt", 600, "docs")
	assert.ErrorIs(t, err, simfs.ErrOutOfSpace)

	assert.EqualValues(t, 1, fsys.Blocks.FreeBlocks(), "nothing may be allocated on failure")
	assert.Nil(t, fsys.Resolve("report.txt"), "the file must not be attached on failure")
}

func TestTouchRoundsSizeUp(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 4096)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)

	file, err := fsys.Touch("report.txt", 600, "docs")
	require.NoError(t, err)

	assert.EqualValues(t, 1024, file.Inode.Size)
	assert.EqualValues(t, 3, fsys.Blocks.UsedBlocks(), "one for the dir, two for the file")

	block := simtest.ReadBlock(t, fsys, 1)
	assert.EqualValues(t, 'F', block[0])
}

// A size near MaxInt64 must not wrap during rounding and sneak past the
// capacity precheck: the touch fails up front with nothing allocated and
// nothing attached.
func TestTouchHugeSizeFailsWithoutAllocating(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 2048)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	freeBefore := fsys.Blocks.FreeBlocks()

	for _, size := range []int64{math.MaxInt64, math.MaxInt64 - 510, blockstore.MaxDiskBytes + 1} {
		_, err = fsys.Touch("huge.txt", size, "docs")
		assert.ErrorIsf(t, err, simfs.ErrOutOfSpace, "size %d must be rejected", size)
		assert.Equal(t, freeBefore, fsys.Blocks.FreeBlocks(),
			"nothing may be allocated on failure")
		assert.Nil(t, fsys.Resolve("huge.txt"), "the file must not be attached on failure")
	}
}

func TestTouchZeroByteFileAllocatesNothing(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 2048)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)

	file, err := fsys.Touch("empty.txt", 0, "docs")
	require.NoError(t, err)
	assert.EqualValues(t, 0, file.Inode.Size)
	assert.EqualValues(t, 1, fsys.Blocks.UsedBlocks())
}

func TestTouchUnderRootIsRejected(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 4096)

	_, err := fsys.Touch("file.txt", 100, "/")
	assert.ErrorIs(t, err, simfs.ErrInvalidOperation)

	_, err = fsys.Touch("file.txt", 100, "missing")
	assert.ErrorIs(t, err, simfs.ErrNotFound)

	_, err = fsys.Touch("file.txt", -1, "missing")
	assert.ErrorIs(t, err, simfs.ErrInvalidFormat)
}

func TestInodeIDsNeverReused(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 33554432)

	seen := make(map[int]bool)
	previous := -1
	record := func(id int) {
		assert.Greater(t, id, previous, "inode ids must be strictly increasing")
		assert.False(t, seen[id], "inode id %d was reused", id)
		seen[id] = true
		previous = id
	}

	record(fsys.Root.Inode.ID)
	for i := 0; i < 3; i++ {
		dir, err := fsys.Mkdir("docs")
		require.NoError(t, err)
		record(dir.Inode.ID)

		file, err := fsys.Touch("a.txt", 10, "docs")
		require.NoError(t, err)
		record(file.Inode.ID)

		require.NoError(t, fsys.Rm("docs", "a.txt"))
		require.NoError(t, fsys.Rmdir("docs"))
	}
}

func TestRm(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 4096)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	_, err = fsys.Touch("a.txt", 100, "docs")
	require.NoError(t, err)
	usedBefore := fsys.Blocks.UsedBlocks()

	assert.ErrorIs(t, fsys.Rm("missing", "a.txt"), simfs.ErrNotFound)
	assert.ErrorIs(t, fsys.Rm("docs", "missing"), simfs.ErrNotFound)

	require.NoError(t, fsys.Rm("docs", "a.txt"))
	assert.Nil(t, fsys.Resolve("a.txt"))
	assert.Equal(t, usedBefore, fsys.Blocks.UsedBlocks(), "blocks are never reclaimed")
}

func TestRmdirPermissions(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 8192)
	alice, err := fsys.AddUser("alice", "pw1")
	require.NoError(t, err)
	require.NoError(t, fsys.SwitchUser(alice.ID, "pw1"))

	dir, err := fsys.Mkdir("mine")
	require.NoError(t, err)
	require.Equal(t, alice.ID, dir.Inode.OwnerID)

	// Owning the directory is not enough: without the general write bit only
	// the administrator can remove it.
	err = fsys.Rmdir("mine")
	assert.ErrorIs(t, err, simfs.ErrPermissionDenied)

	require.NoError(t, fsys.Chmod("mine", simfs.ClassGeneral, "rw", "pw1"))
	assert.NoError(t, fsys.Rmdir("mine"))
}

func TestRmdirAsAdmin(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 8192)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	usedBefore := fsys.Blocks.UsedBlocks()

	assert.ErrorIs(t, fsys.Rmdir("/"), simfs.ErrInvalidOperation)
	assert.ErrorIs(t, fsys.Rmdir("missing"), simfs.ErrNotFound)

	require.NoError(t, fsys.Rmdir("docs"))
	assert.Equal(t, usedBefore, fsys.Blocks.UsedBlocks(), "blocks leak by design")
}

func TestRmdirOfCurrentDirectoryReturnsToRoot(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 4096)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	require.NoError(t, fsys.Cd("docs"))

	require.NoError(t, fsys.Rmdir("docs"))
	assert.Same(t, fsys.Root, fsys.CurrentDirectory())
}

func TestMkfsResetsTreeButNotBlocks(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 4096)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	_, err = fsys.Touch("a.txt", 100, "docs")
	require.NoError(t, err)
	usedBefore := fsys.Blocks.UsedBlocks()

	fsys.Mkfs()

	assert.Empty(t, fsys.Root.Subdirectories())
	assert.Equal(t, usedBefore, fsys.Blocks.UsedBlocks())
	assert.Same(t, fsys.Root, fsys.CurrentDirectory())
}

func TestChmodGates(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 8192)
	alice, err := fsys.AddUser("alice", "pw1")
	require.NoError(t, err)

	// Admin-owned directory.
	_, err = fsys.Mkdir("docs")
	require.NoError(t, err)

	// A non-admin who doesn't own the entry is rejected even with their own
	// correct password: the ownership check is independent of the password.
	require.NoError(t, fsys.SwitchUser(alice.ID, "pw1"))
	err = fsys.Chmod("docs", simfs.ClassGeneral, "rw", "pw1")
	assert.ErrorIs(t, err, simfs.ErrPermissionDenied)

	// The owner with the wrong password fails authentication.
	dir, err := fsys.Mkdir("mine")
	require.NoError(t, err)
	err = fsys.Chmod("mine", simfs.ClassGeneral, "rw", "wrong")
	assert.ErrorIs(t, err, simfs.ErrAuthenticationFailed)

	// The owner with the right password succeeds.
	require.NoError(t, fsys.Chmod("mine", simfs.ClassGeneral, "rw", "pw1"))
	assert.Equal(t, simfs.ModeBits{Read: true, Write: true}, dir.Inode.Permissions.General)

	// The administrator needs no password at all.
	require.NoError(t, fsys.SwitchUser(0, "1234"))
	require.NoError(t, fsys.Chmod("mine", simfs.ClassGeneral, "r", ""))
	assert.Equal(t, simfs.ModeBits{Read: true}, dir.Inode.Permissions.General)
}

func TestChmodBadInput(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 4096)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)

	assert.ErrorIs(
		t, fsys.Chmod("missing", simfs.ClassUser, "rwx", ""), simfs.ErrNotFound)
	assert.ErrorIs(
		t, fsys.Chmod("docs", simfs.ClassUser, "rwz", ""), simfs.ErrInvalidFormat)
}

func TestChown(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 8192)
	alice, err := fsys.AddUser("alice", "pw1")
	require.NoError(t, err)

	dir, err := fsys.Mkdir("docs")
	require.NoError(t, err)

	// The administrator can hand the directory to alice.
	require.NoError(t, fsys.Chown("docs", alice.ID))
	assert.Equal(t, alice.ID, dir.Inode.OwnerID)

	// The new owner can hand it onward, even to an id nobody holds.
	require.NoError(t, fsys.SwitchUser(alice.ID, "pw1"))
	require.NoError(t, fsys.Chown("docs", 999))
	assert.Equal(t, 999, dir.Inode.OwnerID)

	// Now alice is neither admin nor owner.
	err = fsys.Chown("docs", alice.ID)
	assert.ErrorIs(t, err, simfs.ErrPermissionDenied)

	assert.ErrorIs(t, fsys.Chown("missing", 1), simfs.ErrNotFound)
}

func TestEchoCatRoundTrip(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 4096)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	_, err = fsys.Touch("a.txt", 100, "docs")
	require.NoError(t, err)

	require.NoError(t, fsys.Echo("a.txt", "hi"))
	content, err := fsys.Cat("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", content)

	// A second write accumulates; the first one still wins on read.
	require.NoError(t, fsys.Echo("a.txt", "bye"))
	content, err = fsys.Cat("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", content)
}

func TestEchoErrors(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 8192)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	_, err = fsys.Touch("a.txt", 100, "docs")
	require.NoError(t, err)

	assert.ErrorIs(t, fsys.Echo("missing", "x"), simfs.ErrNotFound)
	assert.ErrorIs(t, fsys.Echo("docs", "x"), simfs.ErrInvalidOperation)

	// A non-owner can't write with the default general row (r--)...
	alice, err := fsys.AddUser("alice", "pw1")
	require.NoError(t, err)
	require.NoError(t, fsys.SwitchUser(alice.ID, "pw1"))
	assert.ErrorIs(t, fsys.Echo("a.txt", "x"), simfs.ErrPermissionDenied)

	// ...but general.write opens the file to everyone.
	require.NoError(t, fsys.SwitchUser(0, "1234"))
	require.NoError(t, fsys.Chmod("a.txt", simfs.ClassGeneral, "rw", ""))
	require.NoError(t, fsys.SwitchUser(alice.ID, "pw1"))
	assert.NoError(t, fsys.Echo("a.txt", "x"))
}

func TestCatErrors(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 8192)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	_, err = fsys.Touch("a.txt", 100, "docs")
	require.NoError(t, err)

	_, err = fsys.Cat("missing")
	assert.ErrorIs(t, err, simfs.ErrNotFound)

	_, err = fsys.Cat("docs")
	assert.ErrorIs(t, err, simfs.ErrInvalidOperation)

	_, err = fsys.Cat("a.txt")
	assert.ErrorIs(t, err, simfs.ErrNotFound, "a file with no records has nothing to read")

	// Clearing general.read locks out everyone but the owner.
	require.NoError(t, fsys.Echo("a.txt", "secret"))
	require.NoError(t, fsys.Chmod("a.txt", simfs.ClassGeneral, "", ""))

	alice, err := fsys.AddUser("alice", "pw1")
	require.NoError(t, err)
	require.NoError(t, fsys.SwitchUser(alice.ID, "pw1"))
	_, err = fsys.Cat("a.txt")
	assert.ErrorIs(t, err, simfs.ErrPermissionDenied)

	require.NoError(t, fsys.SwitchUser(0, "1234"))
	content, err := fsys.Cat("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "secret", content)
}

// Content records are keyed by bare name: two same-named files in different
// directories are indistinguishable to the content store.
func TestSameNamedFilesShareContent(t *testing.T) {
	fsys := simtest.CreateTestFilesystem(t, 8192)
	_, err := fsys.Mkdir("docs")
	require.NoError(t, err)
	_, err = fsys.Mkdir("media")
	require.NoError(t, err)

	_, err = fsys.Touch("dup.txt", 10, "docs")
	require.NoError(t, err)
	_, err = fsys.Touch("dup.txt", 10, "media")
	require.NoError(t, err)

	require.NoError(t, fsys.Echo("dup.txt", "shared"))

	require.NoError(t, fsys.Rm("docs", "dup.txt"))
	content, err := fsys.Cat("dup.txt")
	require.NoError(t, err)
	assert.Equal(t, "shared", content, "the media copy reads the record written via docs")
}
