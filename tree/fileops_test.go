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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarffs/s3tree/entry"
)

func TestCreateWriteReadRoundTrip(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()

	created, handle, err := tr.CreateFile(ctx, entry.RootInodeID, "new.txt")
	require.NoError(t, err)
	assert.True(t, created.IsModified)
	assert.Equal(t, "text/plain", created.ContentType)

	require.NoError(t, tr.WriteFile(ctx, handle, 0, []byte("hello world")))

	data, err := tr.ReadFile(ctx, handle, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, tr.ReleaseFileHandle(ctx, handle))

	fs.mu.Lock()
	obj, ok := fs.objects["new.txt"]
	fs.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, "hello world", string(obj.content))

	refreshed, err := tr.GetAttributes(created.Inode)
	require.NoError(t, err)
	assert.Equal(t, uint64(len("hello world")), refreshed.Size)
}

func TestOpenExistingFileReadsStoredContent(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putFile("existing.txt", []byte("stored bytes"))

	e, err := tr.Lookup(ctx, entry.RootInodeID, "existing.txt")
	require.NoError(t, err)

	handle, err := tr.OpenFile(ctx, e.Inode)
	require.NoError(t, err)

	data, err := tr.ReadFile(ctx, handle, 0, 64)
	require.NoError(t, err)
	assert.Equal(t, "stored bytes", string(data))

	require.NoError(t, tr.ReleaseFileHandle(ctx, handle))
}

func TestOpenFileRejectsDirectory(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putDirectoryMarker("adir")

	dirEntry, err := tr.Lookup(ctx, entry.RootInodeID, "adir")
	require.NoError(t, err)

	_, err = tr.OpenFile(ctx, dirEntry.Inode)
	assert.ErrorIs(t, err, ErrIsADirectory)
}
