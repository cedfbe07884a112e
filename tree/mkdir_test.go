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
	"github.com/yarffs/s3tree/store"
)

func TestMkdirCreatesDirectoryMarkerAndEntry(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()

	created, err := tr.Mkdir(ctx, entry.RootInodeID, "newdir")
	require.NoError(t, err)
	assert.Equal(t, entry.KindDirectory, created.Kind)

	fs.mu.Lock()
	obj, ok := fs.objects["newdir"]
	fs.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, store.DirectoryContentType, obj.contentType)

	found, err := tr.Lookup(ctx, entry.RootInodeID, "newdir")
	require.NoError(t, err)
	assert.Equal(t, created.Inode, found.Inode)
}

func TestMkdirRejectsExistingName(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putFile("taken.txt", []byte("x"))

	_, err := tr.Lookup(ctx, entry.RootInodeID, "taken.txt")
	require.NoError(t, err)

	_, err = tr.Mkdir(ctx, entry.RootInodeID, "taken.txt")
	assert.ErrorIs(t, err, ErrExists)
}

func TestMkdirRejectsNonDirectoryParent(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putFile("afile.txt", []byte("x"))

	fileEntry, err := tr.Lookup(ctx, entry.RootInodeID, "afile.txt")
	require.NoError(t, err)

	_, err = tr.Mkdir(ctx, fileEntry.Inode, "child")
	assert.ErrorIs(t, err, ErrNotADirectory)
}
