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

// Lookup resolves basename under parentID, implementing the seven
// resolution cases of §4.4.
func (t *Tree) Lookup(ctx context.Context, parentID fuseops.InodeID, basename string) (*entry.Entry, error) {
	return t.lookup(ctx, parentID, basename, false)
}

// lookup implements §4.4. retried bounds the listing-refresh retry to
// depth one, per the spec's explicit requirement.
func (t *Tree) lookup(ctx context.Context, parentID fuseops.InodeID, basename string, retried bool) (*entry.Entry, error) {
	t.mu.Lock()

	// Case 1: parent missing or not a directory.
	parent := t.lookupInodeLocked(parentID)
	if parent == nil {
		t.mu.Unlock()
		return nil, ErrNotFound
	}
	if parent.Kind != entry.KindDirectory {
		t.mu.Unlock()
		return nil, ErrNotADirectory
	}

	// Case 2: parent's listing cache is expired -> refresh, retry once.
	if parent.CacheExpired(t.now(), t.cfg.DirCacheMaxAge) {
		t.mu.Unlock()
		if retried {
			return nil, ErrInternal
		}
		if err := t.refreshDir(ctx, parent); err != nil {
			return nil, err
		}
		return t.lookup(ctx, parentID, basename, true)
	}

	child, ok := parent.Children[basename]
	now := t.now()

	// Case 3: cache fresh, no child entry -> HEAD probe.
	if !ok {
		t.mu.Unlock()
		return t.headProbeInsert(ctx, parentID, basename)
	}

	// Case 4: tombstoned and recent -> not-found without contacting server.
	if child.Removed {
		if child.TombstoneFresh(now, t.cfg.FileCacheMaxAge) {
			t.mu.Unlock()
			return nil, ErrNotFound
		}
		// Older tombstones fall through to a refresh.
		t.mu.Unlock()
		if retried {
			return nil, ErrNotFound
		}
		if err := t.refreshDir(ctx, parent); err != nil {
			return nil, err
		}
		return t.lookup(ctx, parentID, basename, true)
	}

	// Case 5: modified file, not currently updating -> HEAD refresh, report
	// pre-refresh attributes only after HEAD returns.
	if child.Kind == entry.KindFile && child.IsModified && !child.IsUpdating {
		child.IsUpdating = true
		childInode := child.Inode
		t.mu.Unlock()
		return t.headRefreshModified(ctx, childInode)
	}

	// Case 6: empty file, policy requires a directory-marker check, and the
	// previous update is stale enough to warrant one.
	if child.Kind == entry.KindFile && child.Size == 0 &&
		(t.cfg.CheckEmptyFiles || t.cfg.ForceHeadRequestsOnLookup) &&
		!child.IsUpdating &&
		now.Sub(child.UpdatedTime) >= t.cfg.DirCacheMaxAge {
		child.IsUpdating = true
		childInode := child.Inode
		t.mu.Unlock()
		return t.headCheckDirectoryMarker(ctx, childInode)
	}

	// Case 7: cached attributes are good enough.
	child.AccessTime = now
	result := child
	t.mu.Unlock()
	return result, nil
}

// headProbeInsert implements §4.4 case 3: dispatch a HEAD probe; on
// success insert a confirmed file (or directory-marker) entry, on failure
// insert a tombstone.
func (t *Tree) headProbeInsert(ctx context.Context, parentID fuseops.InodeID, basename string) (*entry.Entry, error) {
	t.mu.Lock()
	parent := t.lookupInodeLocked(parentID)
	if parent == nil || parent.Kind != entry.KindDirectory {
		t.mu.Unlock()
		return nil, ErrNotFound
	}
	fullpath := entry.JoinPath(parent.Fullpath, basename)
	t.mu.Unlock()

	attrs, headErr := t.doHead(ctx, fullpath)

	t.mu.Lock()
	defer t.mu.Unlock()

	parent = t.lookupInodeLocked(parentID)
	if parent == nil || parent.Kind != entry.KindDirectory {
		return nil, ErrNotFound
	}

	// A concurrent refresh or probe may have already resolved this child.
	if existing, ok := parent.Children[basename]; ok {
		if !existing.Removed {
			existing.AccessTime = t.now()
			return existing, nil
		}
	}

	if headErr != nil {
		child, err := t.addChildLocked(parent, basename, entry.KindFile, t.cfg.FileMode)
		if err != nil {
			return nil, err
		}
		child.Removed = true
		child.AccessTime = t.now()
		return nil, ErrNotFound
	}

	kind := entry.KindFile
	mode := t.cfg.FileMode
	if attrs.IsDirectoryMarker {
		kind = entry.KindDirectory
		mode = t.cfg.DirMode
	}
	child, err := t.addChildLocked(parent, basename, kind, mode)
	if err != nil {
		return nil, err
	}
	applyHeadAttrsLocked(child, attrs, t.cfg, t.now())
	child.AccessTime = t.now()
	return child, nil
}

// headRefreshModified implements §4.4 case 5.
func (t *Tree) headRefreshModified(ctx context.Context, childInode fuseops.InodeID) (*entry.Entry, error) {
	t.mu.Lock()
	child := t.lookupInodeLocked(childInode)
	if child == nil {
		t.mu.Unlock()
		return nil, ErrNotFound
	}
	snapshot := *child
	fullpath := child.Fullpath
	t.mu.Unlock()

	attrs, headErr := t.doHead(ctx, fullpath)

	t.mu.Lock()
	defer t.mu.Unlock()
	if child = t.lookupInodeLocked(childInode); child != nil {
		child.IsUpdating = false
		if headErr == nil {
			// Local modification wins over size/content fields; only the
			// xattr-facing metadata is refreshed here. is_modified is left
			// set; nothing in the tree clears it once set.
			child.ETag = attrs.ETag
			child.VersionID = attrs.VersionID
			child.ContentType = attrs.ContentType
			child.XattrTime = t.now()
		}
	}

	return &snapshot, nil
}

// headCheckDirectoryMarker implements §4.4 case 6.
func (t *Tree) headCheckDirectoryMarker(ctx context.Context, childInode fuseops.InodeID) (*entry.Entry, error) {
	t.mu.Lock()
	child := t.lookupInodeLocked(childInode)
	if child == nil {
		t.mu.Unlock()
		return nil, ErrNotFound
	}
	fullpath := child.Fullpath
	t.mu.Unlock()

	attrs, headErr := t.doHead(ctx, fullpath)

	t.mu.Lock()
	defer t.mu.Unlock()
	child = t.lookupInodeLocked(childInode)
	if child == nil {
		return nil, ErrNotFound
	}
	child.IsUpdating = false
	now := t.now()
	if headErr == nil {
		if attrs.IsDirectoryMarker {
			promoteToDirectoryLocked(child, t.cfg.DirMode)
		}
		child.UpdatedTime = now
	}
	child.AccessTime = now
	return child, nil
}

// doHead performs a HEAD probe through the connection pool, the rendering
// of §6.4's acquire/dispatch contract for a single-object attribute fetch.
func (t *Tree) doHead(ctx context.Context, fullpath string) (store.Attrs, error) {
	var attrs store.Attrs
	err := t.pool.Do(ctx, func(ctx context.Context) error {
		var headErr error
		attrs, headErr = t.store.Head(ctx, fullpath)
		return headErr
	})
	return attrs, err
}
