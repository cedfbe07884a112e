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
	"os"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/yarffs/s3tree/entry"
)

// CreateSymlink implements §4.9: a symlink is a file entry with the
// symlink mode bit set, whose object payload is the link target text.
func (t *Tree) CreateSymlink(ctx context.Context, parentID fuseops.InodeID, basename, target string) (*entry.Entry, error) {
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

	child, err := t.addChildLocked(parent, basename, entry.KindFile, t.cfg.FileMode|os.ModeSymlink)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	child.SymlinkTarget = target
	child.IsModified = true
	fullpath := child.Fullpath
	childInode := child.Inode
	t.mu.Unlock()

	payload := []byte(target)
	err = t.pool.Do(ctx, func(ctx context.Context) error {
		return t.store.SimpleUpload(ctx, fullpath, payload)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	child = t.lookupInodeLocked(childInode)
	if child == nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	child.Size = uint64(len(payload))
	child.UpdatedTime = t.now()
	return child, nil
}

// ReadSymlink implements §4.9's readlink: return the cached target if
// already resolved, else download the object body and cache it.
func (t *Tree) ReadSymlink(ctx context.Context, inode fuseops.InodeID) (string, error) {
	t.mu.Lock()
	e := t.lookupInodeLocked(inode)
	if e == nil {
		t.mu.Unlock()
		return "", ErrNotFound
	}
	if e.Mode&os.ModeSymlink == 0 {
		t.mu.Unlock()
		return "", ErrNotSupported
	}
	if e.SymlinkTarget != "" {
		target := e.SymlinkTarget
		t.mu.Unlock()
		return target, nil
	}
	fullpath := e.Fullpath
	t.mu.Unlock()

	var payload []byte
	err := t.pool.Do(ctx, func(ctx context.Context) error {
		var downloadErr error
		payload, downloadErr = t.store.SimpleDownload(ctx, fullpath)
		return downloadErr
	})
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e = t.lookupInodeLocked(inode); e != nil {
		e.SymlinkTarget = string(payload)
	}
	return string(payload), nil
}
