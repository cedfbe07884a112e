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

// Extended attribute names exposed per §4.8. XattrMD5 is an alias for
// XattrETag: S3's ETag is the object's MD5 for non-multipart uploads, and
// tooling written against either name should see the same value.
const (
	XattrETag        = "user.etag"
	XattrMD5         = "user.md5"
	XattrVersion     = "user.version"
	XattrContentType = "user.content_type"
)

// GetXattr implements §4.8: directories carry no extended attributes: files
// serve user.etag/user.md5, user.version and user.content_type from cache
// when fresh, else dispatch a HEAD refresh first.
func (t *Tree) GetXattr(ctx context.Context, inode fuseops.InodeID, name string) (string, error) {
	t.mu.Lock()
	e := t.lookupInodeLocked(inode)
	if e == nil {
		t.mu.Unlock()
		return "", ErrNotFound
	}
	if e.Kind != entry.KindFile {
		t.mu.Unlock()
		return "", ErrNoXattr
	}
	switch name {
	case XattrETag, XattrMD5, XattrVersion, XattrContentType:
	default:
		t.mu.Unlock()
		return "", ErrNoXattr
	}

	if e.XattrFresh(t.now(), t.cfg.DirCacheMaxAge) {
		value := xattrValue(e, name)
		t.mu.Unlock()
		return value, nil
	}
	fullpath := e.Fullpath
	t.mu.Unlock()

	attrs, err := t.doHead(ctx, fullpath)

	t.mu.Lock()
	defer t.mu.Unlock()
	e = t.lookupInodeLocked(inode)
	if e == nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	e.ETag = attrs.ETag
	e.VersionID = attrs.VersionID
	e.ContentType = attrs.ContentType
	e.XattrTime = t.now()
	return xattrValue(e, name), nil
}

func xattrValue(e *entry.Entry, name string) string {
	switch name {
	case XattrETag, XattrMD5:
		return e.ETag
	case XattrVersion:
		return e.VersionID
	case XattrContentType:
		return e.ContentType
	default:
		return ""
	}
}
