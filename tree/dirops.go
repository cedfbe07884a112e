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
	"bytes"
	"context"
	"encoding/binary"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/yarffs/s3tree/entry"
	"github.com/yarffs/s3tree/store"
)

// refreshDir drives the single-flight listing refresh of dir described in
// §4.2. Concurrent callers for the same directory share one underlying
// store listing via singleflight.Group, which is this module's rendering
// of the dir_cache_updating guard and the "fan out to queued waiters"
// recommendation in §9.
func (t *Tree) refreshDir(ctx context.Context, dir *entry.Entry) error {
	_, err, _ := t.refreshSF.Do(dir.Fullpath, func() (interface{}, error) {
		return nil, t.doRefreshDir(ctx, dir)
	})
	return err
}

// doRefreshDir performs the two-phase refresh: start-update (bump age),
// fetch every listing page from the store, apply-update (locate-or-insert
// children, advance their age), then sweep and rebuild the buffer. It is
// only ever invoked once per overlapping refresh, via refreshSF.
func (t *Tree) doRefreshDir(ctx context.Context, dir *entry.Entry) error {
	t.mu.Lock()
	dir.Age++
	newAge := dir.Age
	fullpath := dir.Fullpath
	dirInode := dir.Inode
	t.mu.Unlock()

	var pages []store.Page
	token := ""
	for {
		var page store.Page
		err := t.pool.Do(ctx, func(ctx context.Context) error {
			var err error
			page, err = t.store.List(ctx, fullpath, token)
			return err
		})
		if err != nil {
			return err
		}
		pages = append(pages, page)
		if !page.Truncated || page.NextContinuationToken == "" {
			break
		}
		token = page.NextContinuationToken
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// The directory may have been removed while we awaited the store.
	dir = t.lookupInodeLocked(dirInode)
	if dir == nil || dir.Kind != entry.KindDirectory {
		return nil
	}

	for _, page := range pages {
		for _, row := range page.Entries {
			child, ok := dir.Children[row.Basename]
			if !ok {
				kind := entry.KindFile
				mode := t.cfg.FileMode
				if row.IsPrefix {
					kind = entry.KindDirectory
					mode = t.cfg.DirMode
				}
				var err error
				child, err = t.addChildLocked(dir, row.Basename, kind, mode)
				if err != nil {
					continue
				}
			}
			child.Age = newAge
			child.Size = uint64(row.Size)
			child.Removed = false
			if !row.LastModified.IsZero() {
				child.Ctime = row.LastModified
			}
		}
	}

	t.sweepLocked(dir, newAge)
	t.buildDirBufferLocked(dir)
	return nil
}

// sweepLocked removes stale file children per §4.2 phase 3: age behind the
// current generation, not modified, and idle for at least the directory
// TTL. Directories are never swept.
func (t *Tree) sweepLocked(dir *entry.Entry, currentAge uint64) {
	now := t.now()
	for basename, child := range dir.Children {
		if child.Age >= currentAge {
			continue
		}
		if child.IsModified {
			continue
		}
		if child.Kind == entry.KindDirectory {
			continue
		}
		if now.Before(child.AccessTime) {
			continue
		}
		if now.Sub(child.AccessTime) < t.cfg.DirCacheMaxAge {
			continue
		}
		t.removeChildLocked(dir, basename)
	}
}

// Directory entry types, matching the standard dirent d_type values the
// fuse_dirent wire format (http://goo.gl/BmFxob) expects.
const (
	dtDir = 4
	dtReg = 8
)

// buildDirBufferLocked formats the directory-buffer blob per §4.2 phase 4:
// "." and ".." first (both pointing at this inode; parent reconstruction
// for ".." is the kernel adapter's job per §4.2), then every visible child
// in iteration order. The wire format is fuse_dirent, the same layout
// fuseutil.WriteDirent produces, so the fsadapter layer can hand this slice
// straight to the kernel as a ReadDirOp's Data/Dst buffer.
func (t *Tree) buildDirBufferLocked(dir *entry.Entry) {
	var buf bytes.Buffer
	writeDirent(&buf, dir.Inode, ".", dtDir)
	writeDirent(&buf, dir.Inode, "..", dtDir)
	for basename, child := range dir.Children {
		if !child.Visible(dir.Age) {
			continue
		}
		var typ uint32 = dtReg
		if child.Kind == entry.KindDirectory {
			typ = dtDir
		}
		writeDirent(&buf, child.Inode, basename, typ)
	}
	dir.DirCache = buf.Bytes()
	dir.DirCacheCreated = t.now()
}

// writeDirent appends one fuse_dirent record to buf: inode, the byte
// offset of the start of the *next* record (so a subsequent readdir at
// that offset resumes correctly), name length, type, name, and 8-byte
// alignment padding.
func writeDirent(buf *bytes.Buffer, inode fuseops.InodeID, name string, dtype uint32) {
	const direntSize = 8 + 8 + 4 + 4
	padLen := 0
	if len(name)%8 != 0 {
		padLen = 8 - (len(name) % 8)
	}
	recordLen := direntSize + len(name) + padLen
	nextOffset := uint64(buf.Len() + recordLen)

	var header [direntSize]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(inode))
	binary.LittleEndian.PutUint64(header[8:16], nextOffset)
	binary.LittleEndian.PutUint32(header[16:20], uint32(len(name)))
	binary.LittleEndian.PutUint32(header[20:24], dtype)
	buf.Write(header[:])
	buf.WriteString(name)
	if padLen != 0 {
		var padding [8]byte
		buf.Write(padding[:padLen])
	}
}

// OpenDir allocates a per-open-directory handle, per §4.3.
func (t *Tree) OpenDir(inode fuseops.InodeID) (fuseops.HandleID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir := t.lookupInodeLocked(inode)
	if dir == nil {
		return 0, ErrNotFound
	}
	if dir.Kind != entry.KindDirectory {
		return 0, ErrNotADirectory
	}

	id := t.allocHandleLocked()
	t.dirHandles[id] = &dirHandle{entry: dir}
	return id, nil
}

// ReadDir returns entries for handle starting at offset. An expired cache
// is refreshed first; a caller that arrives while a refresh is in flight
// joins that refresh and waits for it rather than synthesizing. The
// handle then follows §4.3's per-handle buffer stability
// requirement: once a handle's buffer is populated it is reused verbatim
// until release, so concurrent mutation never changes bytes already
// returned through that handle.
func (t *Tree) ReadDir(ctx context.Context, handleID fuseops.HandleID, offset int) ([]byte, error) {
	t.mu.Lock()
	h, ok := t.dirHandles[handleID]
	if !ok {
		t.mu.Unlock()
		return nil, ErrInternal
	}
	dir := h.entry

	if offset > 0 && h.buf == nil {
		t.mu.Unlock()
		return nil, ErrInternal
	}

	if h.buf != nil {
		buf := h.buf
		t.mu.Unlock()
		return sliceFrom(buf, offset), nil
	}

	expired := dir.CacheExpired(t.now(), t.cfg.DirCacheMaxAge)
	t.mu.Unlock()

	if expired {
		if err := t.refreshDir(ctx, dir); err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if dir.DirCache == nil {
		// The cache was invalidated after the refresh (a concurrent
		// mutation) or the directory vanished during it; synthesize from
		// current children without contacting the store.
		t.buildDirBufferLocked(dir)
	}
	h.buf = dir.DirCache
	return sliceFrom(h.buf, offset), nil
}

func sliceFrom(buf []byte, offset int) []byte {
	if offset >= len(buf) {
		return nil
	}
	return buf[offset:]
}

// ReleaseDirHandle frees the handle and its buffer; the directory's shared
// dir_cache is untouched, per §4.3.
func (t *Tree) ReleaseDirHandle(handleID fuseops.HandleID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.dirHandles[handleID]; !ok {
		return ErrInternal
	}
	delete(t.dirHandles, handleID)
	return nil
}
