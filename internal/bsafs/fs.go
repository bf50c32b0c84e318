// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

// Package bsafs exposes a decoded BSA archive as a read-only FUSE
// filesystem. The directory tree is built once from the archive entry list,
// with backslash-separated entry names mapped onto nested directories.
// Payloads are read from the archive on demand.
package bsafs

import (
	"context"
	"os"
	"sort"
	"strings"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/mwkit/bsa"
)

// FS is the filesystem for one mounted archive.
type FS struct {
	archive *bsa.Archive
	root    *Dir
	mounted time.Time
}

// New builds the directory tree for a decoded archive. Entries whose names
// collide with a directory of the same name are dropped, the directory wins.
func New(a *bsa.Archive) (*FS, error) {
	entries, err := a.Entries()
	if err != nil {
		return nil, err
	}

	f := &FS{
		archive: a,
		mounted: time.Now(),
	}

	nextInode := uint64(1)
	f.root = f.newDir("", &nextInode)

	for _, entry := range entries {
		f.addEntry(entry, &nextInode)
	}

	return f, nil
}

// Root returns the root directory node.
func (f *FS) Root() (fs.Node, error) {
	return f.root, nil
}

func (f *FS) newDir(name string, nextInode *uint64) *Dir {
	d := &Dir{
		fs:    f,
		name:  name,
		inode: *nextInode,
		dirs:  make(map[string]*Dir),
		files: make(map[string]*File),
	}
	*nextInode++

	return d
}

// addEntry places one archive entry into the tree, creating intermediate
// directories as needed. Child maps are keyed on lower-cased segments so
// foreign archives with mixed-case stored names stay reachable; nodes keep
// the stored spelling for listings. Duplicate names overwrite, matching
// archive lookup where the last occurrence wins.
func (f *FS) addEntry(entry bsa.Entry, nextInode *uint64) {
	segments := strings.Split(strings.ReplaceAll(entry.Name, `\`, "/"), "/")

	dir := f.root
	for _, segment := range segments[:len(segments)-1] {
		if segment == "" {
			continue
		}

		key := strings.ToLower(segment)
		child, ok := dir.dirs[key]
		if !ok {
			child = f.newDir(segment, nextInode)
			delete(dir.files, key)
			dir.dirs[key] = child
		}
		dir = child
	}

	name := segments[len(segments)-1]
	if name == "" {
		return
	}

	key := strings.ToLower(name)
	if _, ok := dir.dirs[key]; ok {
		return
	}

	dir.files[key] = &File{
		fs:    f,
		name:  name,
		inode: *nextInode,
		entry: entry,
	}
	*nextInode++
}

// Dir implements Node and Handle for directories. The tree is immutable
// after New, so no locking is needed.
type Dir struct {
	fs    *FS
	name  string
	inode uint64
	dirs  map[string]*Dir
	files map[string]*File
}

// Attr returns directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	a.Inode = d.inode
	a.Mode = os.ModeDir | 0o555
	a.Mtime = d.fs.mounted
	a.Ctime = d.fs.mounted

	return nil
}

// Lookup resolves one name to a child node. Child maps are keyed
// lower-cased, so any spelling of a name resolves, the way the game engine
// treats archive paths.
func (d *Dir) Lookup(_ context.Context, name string) (fs.Node, error) {
	key := strings.ToLower(name)

	if child, ok := d.dirs[key]; ok {
		return child, nil
	}
	if child, ok := d.files[key]; ok {
		return child, nil
	}

	return nil, syscall.ENOENT
}

// ReadDirAll lists the directory children in sorted order, under their
// stored spelling.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	dirents := make([]fuse.Dirent, 0, len(d.dirs)+len(d.files))

	for _, child := range d.dirs {
		dirents = append(dirents, fuse.Dirent{
			Inode: child.inode,
			Name:  child.name,
			Type:  fuse.DT_Dir,
		})
	}

	for _, child := range d.files {
		dirents = append(dirents, fuse.Dirent{
			Inode: child.inode,
			Name:  child.name,
			Type:  fuse.DT_File,
		})
	}

	sort.Slice(dirents, func(i, j int) bool {
		return dirents[i].Name < dirents[j].Name
	})

	return dirents, nil
}

// File implements Node and Handle for archive entries.
type File struct {
	fs    *FS
	name  string
	inode uint64
	entry bsa.Entry
}

// Attr returns file attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	a.Inode = f.inode
	a.Mode = 0o444
	a.Size = uint64(f.entry.Size)
	a.Mtime = f.fs.mounted
	a.Ctime = f.fs.mounted

	return nil
}

// ReadAll reads the entry payload from the archive.
func (f *File) ReadAll(_ context.Context) ([]byte, error) {
	data, err := f.fs.archive.ReadEntry(f.entry.Name)
	if err != nil {
		return nil, syscall.EIO
	}

	return data, nil
}
