// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package entry defines the in-memory record cached for every object the
// tree has observed: a file, a directory, or a tombstone standing in for
// either.
package entry

import (
	"os"
	"time"

	"github.com/jacobsa/fuse/fuseops"
)

// Kind distinguishes files (including symlinks) from directories.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// RootInodeID is the fixed, reserved inode number of the tree root.
const RootInodeID = fuseops.RootInodeID

// Entry is the unit of cached metadata for one filesystem object.
//
// All fields are guarded by the owning tree's lock; Entry itself does not
// lock anything. This mirrors the single-threaded-event-loop model the
// fields were designed for, rendered here as "one mutex protects the whole
// tree" rather than per-entry locking.
type Entry struct {
	// Identity. Immutable after construction.
	Inode       fuseops.InodeID
	ParentInode fuseops.InodeID
	Basename    string
	Fullpath    string

	// Attributes.
	Kind  Kind
	Mode  os.FileMode
	Size  uint64
	Ctime time.Time

	// Generation / staleness bookkeeping.
	Age uint64

	// Tombstone and dirtiness flags.
	Removed    bool
	IsModified bool
	IsUpdating bool

	AccessTime  time.Time
	UpdatedTime time.Time

	// Directory-only fields. Nil/zero for files.
	DirCache        []byte
	DirCacheCreated time.Time
	Children        map[string]*Entry

	// Extended-attribute cache, refreshed from HEAD/listing responses.
	ETag        string
	VersionID   string
	ContentType string
	XattrTime   time.Time

	// SymlinkTarget holds the resolved link payload for entries whose Mode
	// carries os.ModeSymlink, cached after the first readlink download.
	SymlinkTarget string
}

// NewRoot constructs the tree's root directory entry.
func NewRoot(mode os.FileMode) *Entry {
	return &Entry{
		Inode:       RootInodeID,
		ParentInode: 0,
		Basename:    "",
		Fullpath:    "",
		Kind:        KindDirectory,
		Mode:        mode | os.ModeDir,
		Ctime:       time.Time{},
		Children:    make(map[string]*Entry),
	}
}

// NewChild constructs a new entry under parent, computing Fullpath per the
// join rule: parent fullpath + "/" + basename, except directly under root
// where the basename alone is the key.
func NewChild(parent *Entry, inode fuseops.InodeID, basename string, kind Kind, mode os.FileMode) *Entry {
	e := &Entry{
		Inode:       inode,
		ParentInode: parent.Inode,
		Basename:    basename,
		Fullpath:    JoinPath(parent.Fullpath, basename),
		Kind:        kind,
		Mode:        mode,
		Age:         parent.Age,
	}
	if kind == KindDirectory {
		e.Children = make(map[string]*Entry)
		e.Mode |= os.ModeDir
	}
	return e
}

// JoinPath computes a child's store key from its parent's fullpath and its
// basename, per §3's fullpath derivation rule.
func JoinPath(parentFullpath, basename string) string {
	if parentFullpath == "" {
		return basename
	}
	return parentFullpath + "/" + basename
}

// Visible reports whether the entry should appear in its parent's listing:
// observed in the current generation and not tombstoned.
func (e *Entry) Visible(parentAge uint64) bool {
	return e.Age == parentAge && !e.Removed
}

// CacheExpired reports whether the directory's listing cache must be
// refreshed before it can be trusted, per §4.2's expiry predicate. Clock
// regressions (now < DirCacheCreated) are treated as not-expired.
func (e *Entry) CacheExpired(now time.Time, maxAge time.Duration) bool {
	if e.IsModified {
		return true
	}
	if e.DirCache == nil {
		return true
	}
	if now.Before(e.DirCacheCreated) {
		return false
	}
	return now.Sub(e.DirCacheCreated) > maxAge
}

// TombstoneFresh reports whether a tombstoned entry's negative result is
// still within its freshness window, per §9's stricter freshness predicate:
// (now - access_time) < file_cache_max_time.
func (e *Entry) TombstoneFresh(now time.Time, maxAge time.Duration) bool {
	if !e.Removed {
		return false
	}
	if now.Before(e.AccessTime) {
		return true
	}
	return now.Sub(e.AccessTime) < maxAge
}

// XattrFresh reports whether the cached xattr fields are still usable
// without a HEAD refresh.
func (e *Entry) XattrFresh(now time.Time, maxAge time.Duration) bool {
	if e.XattrTime.IsZero() {
		return false
	}
	if now.Before(e.XattrTime) {
		return true
	}
	return now.Sub(e.XattrTime) < maxAge
}
