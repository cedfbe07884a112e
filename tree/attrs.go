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
	"os"
	"time"

	"github.com/yarffs/s3tree/entry"
	"github.com/yarffs/s3tree/store"
)

// applyHeadAttrsLocked copies a HEAD response onto e's cached fields, per
// §6.2's consumed-header list and §4.8's xattr cache. mu must be held.
func applyHeadAttrsLocked(e *entry.Entry, attrs store.Attrs, cfg Config, now time.Time) {
	e.Size = uint64(attrs.Size)
	if !attrs.LastModified.IsZero() {
		e.Ctime = attrs.LastModified
	}
	e.ETag = attrs.ETag
	e.VersionID = attrs.VersionID
	e.ContentType = attrs.ContentType
	e.XattrTime = now
	e.UpdatedTime = now
	if attrs.HasMode {
		e.Mode = attrs.Mode
	}
}

// promoteToDirectoryLocked converts e in place into a directory, per §4.4's
// HEAD-returns-application/x-directory case: type becomes directory,
// children map is allocated if absent, directory cache is cleared, mode is
// reset to the configured directory default. mu must be held.
func promoteToDirectoryLocked(e *entry.Entry, dirMode os.FileMode) {
	e.Kind = entry.KindDirectory
	if e.Children == nil {
		e.Children = make(map[string]*entry.Entry)
	}
	e.DirCache = nil
	e.DirCacheCreated = time.Time{}
	e.Mode = dirMode | os.ModeDir
}
