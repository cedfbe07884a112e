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

package tree

import (
	"context"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/yarffs/s3tree/entry"
	"github.com/yarffs/s3tree/store"
)

// GetAttributes returns the current cached attributes for inode, without
// dispatching any probe of its own; freshness is the responsibility of the
// lookup and write paths that populated them.
func (t *Tree) GetAttributes(inode fuseops.InodeID) (*entry.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.lookupInodeLocked(inode)
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// CreateFile implements §4.5's Create: reuse a same-basename file entry if
// present (clearing its tombstone and refreshing access_time/age) or add a
// new one with the configured file mode, mark it modified, and open a
// file-I/O handle in new-object mode.
func (t *Tree) CreateFile(ctx context.Context, parentID fuseops.InodeID, basename string) (*entry.Entry, fuseops.HandleID, error) {
	t.mu.Lock()
	parent := t.lookupInodeLocked(parentID)
	if parent == nil {
		t.mu.Unlock()
		return nil, 0, ErrNotFound
	}
	if parent.Kind != entry.KindDirectory {
		t.mu.Unlock()
		return nil, 0, ErrNotADirectory
	}

	var child *entry.Entry
	if existing, ok := parent.Children[basename]; ok && existing.Kind == entry.KindFile {
		existing.Removed = false
		existing.AccessTime = t.now()
		existing.Age = parent.Age
		child = existing
	} else {
		var err error
		child, err = t.addChildLocked(parent, basename, entry.KindFile, t.cfg.FileMode)
		if err != nil {
			t.mu.Unlock()
			return nil, 0, err
		}
	}
	child.IsModified = true
	if child.ContentType == "" {
		child.ContentType = store.MimeByExtension(child.Fullpath)
	}
	fullpath := child.Fullpath
	contentType := child.ContentType
	childInode := child.Inode

	handleID := t.allocHandleLocked()
	t.fileHandles[handleID] = &fileHandle{
		inode: childInode,
		fh:    t.store.OpenFile(fullpath, true, contentType),
	}
	t.mu.Unlock()

	return child, handleID, nil
}

// OpenFile implements §4.5's Open: locate the entry and open a file-I/O
// handle in existing-object mode.
func (t *Tree) OpenFile(ctx context.Context, inode fuseops.InodeID) (fuseops.HandleID, error) {
	t.mu.Lock()
	e := t.lookupInodeLocked(inode)
	if e == nil {
		t.mu.Unlock()
		return 0, ErrNotFound
	}
	if e.Kind != entry.KindFile {
		t.mu.Unlock()
		return 0, ErrIsADirectory
	}
	fullpath := e.Fullpath
	contentType := e.ContentType

	handleID := t.allocHandleLocked()
	t.fileHandles[handleID] = &fileHandle{
		inode: inode,
		fh:    t.store.OpenFile(fullpath, false, contentType),
	}
	t.mu.Unlock()

	return handleID, nil
}

// ReleaseFileHandle implements §4.5's Release: release the handle. The
// entry's lifetime is governed by the tree, not by open counts, per §9.
func (t *Tree) ReleaseFileHandle(ctx context.Context, handleID fuseops.HandleID) error {
	t.mu.Lock()
	h, ok := t.fileHandles[handleID]
	if !ok {
		t.mu.Unlock()
		return ErrInternal
	}
	delete(t.fileHandles, handleID)
	t.mu.Unlock()

	return h.fh.Release(ctx)
}

// ReadFile implements §4.5's Read: delegate byte ranges to the file-I/O
// handle.
func (t *Tree) ReadFile(ctx context.Context, handleID fuseops.HandleID, offset int64, size int) ([]byte, error) {
	t.mu.Lock()
	h, ok := t.fileHandles[handleID]
	t.mu.Unlock()
	if !ok {
		return nil, ErrInternal
	}
	return h.fh.ReadBuffer(ctx, offset, size)
}

// WriteFile implements §4.5's Write: delegate to the file-I/O handle, then
// update entry.Size from the block cache's reported length when available,
// else offset+len(data); set updated_time; leave is_modified untouched
// (nothing in the tree clears it, including release).
func (t *Tree) WriteFile(ctx context.Context, handleID fuseops.HandleID, offset int64, data []byte) error {
	t.mu.Lock()
	h, ok := t.fileHandles[handleID]
	t.mu.Unlock()
	if !ok {
		return ErrInternal
	}

	newLength, err := h.fh.WriteBuffer(ctx, offset, data)
	if err != nil {
		return err
	}
	t.cache.SetFileLength(h.inode, newLength)

	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.lookupInodeLocked(h.inode)
	if e == nil {
		return nil // entry vanished mid-flight; nothing left to update
	}
	if length, ok := t.cache.GetFileLength(h.inode); ok {
		e.Size = uint64(length)
	} else {
		e.Size = uint64(offset) + uint64(len(data))
	}
	e.UpdatedTime = t.now()
	return nil
}
