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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarffs/s3tree/entry"
)

func TestGetXattrRefreshesThenServesFromCache(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putFile("doc.txt", []byte("contents"))

	e, err := tr.Lookup(ctx, entry.RootInodeID, "doc.txt")
	require.NoError(t, err)

	version, err := tr.GetXattr(ctx, e.Inode, XattrVersion)
	require.NoError(t, err)
	assert.Equal(t, "", version) // fakeStore never sets a version id

	// user.md5 is an alias for user.etag; both should read back whatever
	// the cache holds, even if empty for this fake.
	etag, err := tr.GetXattr(ctx, e.Inode, XattrETag)
	require.NoError(t, err)
	md5, err := tr.GetXattr(ctx, e.Inode, XattrMD5)
	require.NoError(t, err)
	assert.Equal(t, etag, md5)
}

func TestGetXattrFreshnessTracksDirCacheMaxAgeNotFileCacheMaxAge(t *testing.T) {
	cfg := testConfig()
	require.NotEqual(t, cfg.DirCacheMaxAge, cfg.FileCacheMaxAge)

	tr, fs, sc := newTestTree(cfg)
	ctx := context.Background()
	fs.putFile("doc.txt", []byte("contents"))

	e, err := tr.Lookup(ctx, entry.RootInodeID, "doc.txt")
	require.NoError(t, err)

	_, err = tr.GetXattr(ctx, e.Inode, XattrETag)
	require.NoError(t, err)
	callsAfterFirst := fs.headCallCount()

	// Past FileCacheMaxAge but still within DirCacheMaxAge: the cached
	// xattrs must still be served without a new HEAD, proving freshness
	// tracks DirCacheMaxAge rather than FileCacheMaxAge.
	sc.AdvanceTime(cfg.FileCacheMaxAge + time.Second)
	_, err = tr.GetXattr(ctx, e.Inode, XattrETag)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, fs.headCallCount())

	// Past DirCacheMaxAge too: a fresh HEAD must be issued.
	sc.AdvanceTime(cfg.DirCacheMaxAge)
	_, err = tr.GetXattr(ctx, e.Inode, XattrETag)
	require.NoError(t, err)
	assert.Greater(t, fs.headCallCount(), callsAfterFirst)
}

func TestGetXattrRejectsDirectory(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putDirectoryMarker("adir")

	dirEntry, err := tr.Lookup(ctx, entry.RootInodeID, "adir")
	require.NoError(t, err)

	_, err = tr.GetXattr(ctx, dirEntry.Inode, XattrETag)
	assert.ErrorIs(t, err, ErrNoXattr)
}

func TestGetXattrRejectsUnknownName(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putFile("doc.txt", []byte("contents"))

	e, err := tr.Lookup(ctx, entry.RootInodeID, "doc.txt")
	require.NoError(t, err)

	_, err = tr.GetXattr(ctx, e.Inode, "user.bogus")
	assert.ErrorIs(t, err, ErrNoXattr)
}
