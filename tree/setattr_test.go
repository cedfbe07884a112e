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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarffs/s3tree/entry"
)

func TestSetAttributesChangesModeLocally(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putFile("a.txt", []byte("x"))

	e, err := tr.Lookup(ctx, entry.RootInodeID, "a.txt")
	require.NoError(t, err)

	newMode := os.FileMode(0600)
	updated, err := tr.SetAttributes(ctx, e.Inode, nil, &newMode, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), updated.Mode&os.ModePerm)
}

func TestSetAttributesTruncateToZero(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putFile("a.txt", []byte("hello"))

	e, err := tr.Lookup(ctx, entry.RootInodeID, "a.txt")
	require.NoError(t, err)

	zero := uint64(0)
	updated, err := tr.SetAttributes(ctx, e.Inode, &zero, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), updated.Size)

	fs.mu.Lock()
	obj := fs.objects["a.txt"]
	fs.mu.Unlock()
	assert.Empty(t, obj.content)
}

func TestSetAttributesRejectsArbitraryTruncate(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putFile("a.txt", []byte("hello"))

	e, err := tr.Lookup(ctx, entry.RootInodeID, "a.txt")
	require.NoError(t, err)

	three := uint64(3)
	_, err = tr.SetAttributes(ctx, e.Inode, &three, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestSetAttributesRejectsSizeOnDirectory(t *testing.T) {
	tr, fs, _ := newTestTree(testConfig())
	ctx := context.Background()
	fs.putDirectoryMarker("adir")

	e, err := tr.Lookup(ctx, entry.RootInodeID, "adir")
	require.NoError(t, err)

	zero := uint64(0)
	_, err = tr.SetAttributes(ctx, e.Inode, &zero, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotSupported)
}
