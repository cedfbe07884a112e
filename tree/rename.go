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

// Rename implements §4.7's copy-then-delete rename. Only files may be
// renamed (recursive directory rename is out of scope) and the source must
// be under the store's single-operation copy limit.
func (t *Tree) Rename(ctx context.Context, oldParentID fuseops.InodeID, oldName string, newParentID fuseops.InodeID, newName string) error {
	t.mu.Lock()
	oldParent := t.lookupInodeLocked(oldParentID)
	newParent := t.lookupInodeLocked(newParentID)
	if oldParent == nil || newParent == nil {
		t.mu.Unlock()
		return ErrNotFound
	}
	source, ok := oldParent.Children[oldName]
	if !ok || source.Removed {
		t.mu.Unlock()
		return ErrNotFound
	}
	if source.Kind != entry.KindFile {
		t.mu.Unlock()
		return ErrNotSupported
	}
	if source.Size >= store.MaxRenameSize {
		t.mu.Unlock()
		return ErrNotSupported
	}

	oldPath := source.Fullpath
	newPath := entry.JoinPath(newParent.Fullpath, newName)
	sourceInode := source.Inode
	t.mu.Unlock()

	err := t.pool.Do(ctx, func(ctx context.Context) error {
		return t.store.PutCopy(ctx, oldPath, newPath)
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	newParent = t.lookupInodeLocked(newParentID)
	if newParent == nil {
		t.mu.Unlock()
		return ErrNotFound
	}
	dest, ok := newParent.Children[newName]
	if !ok {
		var addErr error
		dest, addErr = t.addChildLocked(newParent, newName, entry.KindFile, t.cfg.FileMode)
		if addErr != nil {
			t.mu.Unlock()
			return addErr
		}
	}
	dest.Removed = false
	dest.AccessTime = t.now()
	invalidateDirCacheLocked(newParent)
	t.mu.Unlock()

	err = t.pool.Do(ctx, func(ctx context.Context) error {
		return t.store.Delete(ctx, oldPath)
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	oldParent = t.lookupInodeLocked(oldParentID)
	if oldParent != nil {
		if source, ok := oldParent.Children[oldName]; ok && source.Inode == sourceInode {
			source.Removed = true
			source.Age = 0
		}
		invalidateDirCacheLocked(oldParent)
	}
	if newParent = t.lookupInodeLocked(newParentID); newParent != nil {
		invalidateDirCacheLocked(newParent)
	}
	return nil
}
