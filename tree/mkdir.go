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

// Mkdir implements directory creation: PUT an empty directory-marker
// object at the new fullpath (the same marker headCheckDirectoryMarker
// recognizes on probe), then add a local entry for it.
func (t *Tree) Mkdir(ctx context.Context, parentID fuseops.InodeID, basename string) (*entry.Entry, error) {
	t.mu.Lock()
	parent := t.lookupInodeLocked(parentID)
	if parent == nil {
		t.mu.Unlock()
		return nil, ErrNotFound
	}
	if parent.Kind != entry.KindDirectory {
		t.mu.Unlock()
		return nil, ErrNotADirectory
	}
	if existing, ok := parent.Children[basename]; ok && !existing.Removed {
		t.mu.Unlock()
		return nil, ErrExists
	}
	fullpath := entry.JoinPath(parent.Fullpath, basename)
	t.mu.Unlock()

	err := t.pool.Do(ctx, func(ctx context.Context) error {
		marker := t.store.OpenFile(fullpath, true, store.DirectoryContentType)
		return marker.Release(ctx)
	})
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	parent = t.lookupInodeLocked(parentID)
	if parent == nil {
		return nil, ErrNotFound
	}
	child, err := t.addChildLocked(parent, basename, entry.KindDirectory, t.cfg.DirMode)
	if err != nil {
		return nil, err
	}
	child.ContentType = store.DirectoryContentType
	child.AccessTime = t.now()
	child.UpdatedTime = t.now()
	return child, nil
}
