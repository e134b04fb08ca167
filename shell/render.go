package shell

import (
	"fmt"
	"strings"

	"github.com/pedromagedanz/simfs/namespace"
	"github.com/pedromagedanz/simfs/sim"
)

// renderUsageMapLimit caps how many blocks the df usage map is drawn for; a
// full-size disk has 65536 blocks and a character per block would be noise.
const renderUsageMapLimit = 64

func typeChar(entry namespace.Entry) byte {
	if entry.IsDir() {
		return 'd'
	}
	return '-'
}

func renderEntryLine(entry namespace.Entry) string {
	inode := entry.EntryInode()
	return fmt.Sprintf(
		"%c%s %4d %8d %s",
		typeChar(entry),
		inode.Permissions,
		inode.OwnerID,
		inode.Size,
		entry.EntryName(),
	)
}

func renderDirectory(dir *namespace.Directory) string {
	var lines []string
	for _, sub := range dir.Subdirectories() {
		lines = append(lines, renderEntryLine(sub))
	}
	for _, file := range dir.Files() {
		lines = append(lines, renderEntryLine(file))
	}
	return strings.Join(lines, "\n")
}

func renderInode(entry namespace.Entry) string {
	inode := entry.EntryInode()

	const timeLayout = "2006-01-02 15:04:05"
	var builder strings.Builder
	fmt.Fprintf(&builder, "inode:       %d\n", inode.ID)
	fmt.Fprintf(&builder, "name:        %s\n", entry.EntryName())
	fmt.Fprintf(&builder, "type:        %s\n", inode.Type)
	fmt.Fprintf(&builder, "owner:       %d\n", inode.OwnerID)
	fmt.Fprintf(&builder, "size:        %d\n", inode.Size)
	fmt.Fprintf(&builder, "permissions: %s\n", inode.Permissions)
	fmt.Fprintf(&builder, "created:     %s\n", inode.CreatedAt.Format(timeLayout))
	fmt.Fprintf(&builder, "accessed:    %s\n", inode.LastAccessedAt.Format(timeLayout))
	fmt.Fprintf(&builder, "updated:     %s", inode.LastUpdatedAt.Format(timeLayout))
	return builder.String()
}

func renderUsage(usage sim.DiskUsage) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "total: %d bytes (%d blocks)\n", usage.TotalBytes, usage.TotalBlocks)
	fmt.Fprintf(&builder, "used:  %d bytes (%d blocks)\n",
		usage.TotalBytes-usage.FreeBytes, usage.UsedBlocks)
	fmt.Fprintf(&builder, "free:  %d bytes (%d blocks)", usage.FreeBytes, usage.FreeBlocks)

	if usage.TotalBlocks <= renderUsageMapLimit {
		builder.WriteString("\nmap:   ")
		for i := uint(0); i < usage.TotalBlocks; i++ {
			if usage.Usage.Get(int(i)) {
				builder.WriteByte('#')
			} else {
				builder.WriteByte('-')
			}
		}
	}
	return builder.String()
}

func renderUsers(fsys *sim.Filesystem) string {
	activeID := fsys.ActiveUser().ID

	var lines []string
	for _, user := range fsys.Users.Users() {
		marker := " "
		if user.ID == activeID {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %4d  %s", marker, user.ID, user.Username))
	}
	return strings.Join(lines, "\n")
}
