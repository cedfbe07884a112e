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
)

// Unlink implements §4.6's Unlink: verify the entry is a file, drop any
// block-cache content, DELETE the object, then on success tombstone the
// entry and invalidate the parent's listing cache.
func (t *Tree) Unlink(ctx context.Context, parentID fuseops.InodeID, basename string) error {
	t.mu.Lock()
	parent := t.lookupInodeLocked(parentID)
	if parent == nil {
		t.mu.Unlock()
		return ErrNotFound
	}
	child, ok := parent.Children[basename]
	if !ok || child.Removed {
		t.mu.Unlock()
		return ErrNotFound
	}
	if child.Kind != entry.KindFile {
		t.mu.Unlock()
		return ErrIsADirectory
	}
	fullpath := child.Fullpath
	childInode := child.Inode
	t.mu.Unlock()

	t.cache.RemoveFile(childInode)

	err := t.pool.Do(ctx, func(ctx context.Context) error {
		return t.store.Delete(ctx, fullpath)
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	parent = t.lookupInodeLocked(parentID)
	if parent == nil {
		return nil
	}
	if child, ok := parent.Children[basename]; ok && child.Inode == childInode {
		child.Removed = true
		child.Age = 0
	}
	invalidateDirCacheLocked(parent)
	return nil
}

// Rmdir implements §4.6's Rmdir: the target must be a directory whose
// children are all tombstoned; on success it is tombstoned locally with no
// server call. A directory-marker object written by Mkdir stays in the
// store, so a later listing refresh that reports it clears the tombstone.
func (t *Tree) Rmdir(ctx context.Context, parentID fuseops.InodeID, basename string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent := t.lookupInodeLocked(parentID)
	if parent == nil {
		return ErrNotFound
	}
	target, ok := parent.Children[basename]
	if !ok || target.Removed {
		return ErrNotFound
	}
	if target.Kind != entry.KindDirectory {
		return ErrNotADirectory
	}
	for _, child := range target.Children {
		if !child.Removed {
			return ErrNotEmpty
		}
	}

	target.Removed = true
	invalidateDirCacheLocked(parent)
	return nil
}
