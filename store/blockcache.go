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

package store

import (
	"sync"

	"github.com/jacobsa/fuse/fuseops"
)

// BlockCache is an in-memory stand-in for the spec's out-of-scope on-disk
// block cache (§6.4, §D.4): it remembers the length of a file's locally
// buffered content per inode and lets unlink instruct it to drop that
// content.
type BlockCache struct {
	mu      sync.Mutex
	lengths map[fuseops.InodeID]int64
}

// NewBlockCache constructs an empty cache.
func NewBlockCache() *BlockCache {
	return &BlockCache{lengths: make(map[fuseops.InodeID]int64)}
}

// SetFileLength records the authoritative length reported by a file
// handle's buffer, consulted by write completion per §4.5.
func (c *BlockCache) SetFileLength(inode fuseops.InodeID, length int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lengths[inode] = length
}

// GetFileLength returns the cached length and whether one is recorded.
func (c *BlockCache) GetFileLength(inode fuseops.InodeID) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	length, ok := c.lengths[inode]
	return length, ok
}

// RemoveFile drops any cached length for inode, called from unlink per §4.6.
func (c *BlockCache) RemoveFile(inode fuseops.InodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lengths, inode)
}
