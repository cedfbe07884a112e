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

// Package store renders the spec's external collaborator contracts
// (connection pool, HTTP connection, block cache, file-I/O handle) as a
// concrete client over an S3-style object store, using the AWS SDK's
// service/s3 request and response types.
package store

import (
	"os"
	"time"
)

// DirectoryContentType is the well-known marker Content-Type that promotes
// a zero-length object into a directory entry on HEAD.
const DirectoryContentType = "application/x-directory"

// Attrs is the normalized result of a HEAD probe or a listing row, carrying
// exactly the headers the lookup resolver and xattr layer consume.
type Attrs struct {
	Size        int64
	ContentType string
	LastModified time.Time
	ETag        string
	VersionID   string
	Mode        os.FileMode // decoded from x-amz-meta-mode, 0 if absent
	HasMode     bool
	IsDirectoryMarker bool
}

// ListEntry is one row of a directory listing, per §6.2.
type ListEntry struct {
	Basename     string
	Size         int64
	LastModified time.Time
	IsPrefix     bool // true for a common-prefix ("subdirectory") row
}

// Page is one page of a directory listing, with an opaque continuation
// token for the next page (empty when the listing is complete).
type Page struct {
	Entries               []ListEntry
	NextContinuationToken string
	Truncated             bool
}
