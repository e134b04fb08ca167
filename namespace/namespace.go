// Package namespace owns the directory/file tree of a simulated filesystem.
// The tree is exactly one level deep: a root directory, named subdirectories
// under it, and named files inside those subdirectories.
//
// Names are not qualified by path. Resolution is a deterministic pre-order
// walk that returns the first entry matching a bare name, so colliding names
// anywhere in the tree are genuinely ambiguous and disambiguated only by
// traversal order.
package namespace

import (
	"github.com/pedromagedanz/simfs/inodetable"
)

// RootName is the name of the unique entry point of the tree.
const RootName = "/"

// Entry is either a Directory or a File found by Resolve.
type Entry interface {
	EntryName() string
	EntryInode() *inodetable.Inode
	IsDir() bool
}

// File is a named entry inside a subdirectory. Its content is not stored
// here; see the contentstore package.
type File struct {
	Name  string
	Inode *inodetable.Inode
}

func (f *File) EntryName() string { return f.Name }

func (f *File) EntryInode() *inodetable.Inode { return f.Inode }

func (f *File) IsDir() bool { return false }

// Directory is a named node of the tree. Children are kept in insertion
// order so traversal is deterministic.
type Directory struct {
	Name  string
	Inode *inodetable.Inode

	subdirs     map[string]*Directory
	subdirOrder []string
	files       map[string]*File
	fileOrder   []string
}

func (d *Directory) EntryName() string { return d.Name }

func (d *Directory) EntryInode() *inodetable.Inode { return d.Inode }

func (d *Directory) IsDir() bool { return true }

func NewDirectory(name string, inode *inodetable.Inode) *Directory {
	return &Directory{
		Name:    name,
		Inode:   inode,
		subdirs: make(map[string]*Directory),
		files:   make(map[string]*File),
	}
}

// AttachSubdirectory adds a child directory. A duplicate name silently
// replaces the previous child (last write wins) and keeps its position in
// the traversal order.
func (d *Directory) AttachSubdirectory(sub *Directory) {
	if _, exists := d.subdirs[sub.Name]; !exists {
		d.subdirOrder = append(d.subdirOrder, sub.Name)
	}
	d.subdirs[sub.Name] = sub
}

// RemoveSubdirectory detaches a child directory and its entire subtree,
// reporting whether it existed.
func (d *Directory) RemoveSubdirectory(name string) bool {
	if _, exists := d.subdirs[name]; !exists {
		return false
	}
	delete(d.subdirs, name)
	d.subdirOrder = removeName(d.subdirOrder, name)
	return true
}

// Subdirectory returns the named child directory, or nil.
func (d *Directory) Subdirectory(name string) *Directory {
	return d.subdirs[name]
}

// Subdirectories returns the child directories in insertion order.
func (d *Directory) Subdirectories() []*Directory {
	subs := make([]*Directory, 0, len(d.subdirOrder))
	for _, name := range d.subdirOrder {
		subs = append(subs, d.subdirs[name])
	}
	return subs
}

// AttachFile adds a file, with the same last-write-wins behavior as
// AttachSubdirectory.
func (d *Directory) AttachFile(file *File) {
	if _, exists := d.files[file.Name]; !exists {
		d.fileOrder = append(d.fileOrder, file.Name)
	}
	d.files[file.Name] = file
}

// RemoveFile detaches a file, reporting whether it existed.
func (d *Directory) RemoveFile(name string) bool {
	if _, exists := d.files[name]; !exists {
		return false
	}
	delete(d.files, name)
	d.fileOrder = removeName(d.fileOrder, name)
	return true
}

// File returns the named file, or nil.
func (d *Directory) File(name string) *File {
	return d.files[name]
}

// Files returns the files in insertion order.
func (d *Directory) Files() []*File {
	files := make([]*File, 0, len(d.fileOrder))
	for _, name := range d.fileOrder {
		files = append(files, d.files[name])
	}
	return files
}

// ClearChildren drops every subdirectory and file at once. Used by mkfs;
// note that nothing is reclaimed on the disk.
func (d *Directory) ClearChildren() {
	d.subdirs = make(map[string]*Directory)
	d.subdirOrder = nil
	d.files = make(map[string]*File)
	d.fileOrder = nil
}

// Resolve finds the first entry with the given bare name in a pre-order
// walk: the directory itself, then its files, then each subdirectory
// recursively, all in insertion order. It returns nil if nothing matches.
func Resolve(dir *Directory, name string) Entry {
	if dir.Name == name {
		return dir
	}
	for _, fileName := range dir.fileOrder {
		if fileName == name {
			return dir.files[fileName]
		}
	}
	for _, subName := range dir.subdirOrder {
		if entry := Resolve(dir.subdirs[subName], name); entry != nil {
			return entry
		}
	}
	return nil
}

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
