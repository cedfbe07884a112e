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

import "context"

// ObjectStore is the subset of Client's surface the tree package depends
// on, extracted so the tree's tests can substitute a fake backed by a plain
// map instead of talking to S3.
type ObjectStore interface {
	Head(ctx context.Context, fullpath string) (Attrs, error)
	Delete(ctx context.Context, fullpath string) error
	PutCopy(ctx context.Context, oldPath, newPath string) error
	List(ctx context.Context, dirPath, continuationToken string) (Page, error)
	OpenFile(fullpath string, isNew bool, contentType string) FileIO
	SimpleUpload(ctx context.Context, fullpath string, content []byte) error
	SimpleDownload(ctx context.Context, fullpath string) ([]byte, error)
}

// FileIO is the subset of FileHandle's surface the tree package depends on.
type FileIO interface {
	ReadBuffer(ctx context.Context, offset int64, size int) ([]byte, error)
	WriteBuffer(ctx context.Context, offset int64, buf []byte) (int64, error)
	Release(ctx context.Context) error
}

var (
	_ ObjectStore = (*Client)(nil)
	_ FileIO      = (*FileHandle)(nil)
)

// OpenFile adapts Create to the ObjectStore interface.
func (c *Client) OpenFile(fullpath string, isNew bool, contentType string) FileIO {
	return Create(c, fullpath, isNew, contentType)
}

// SimpleUpload adapts the package-level SimpleUpload to the ObjectStore
// interface.
func (c *Client) SimpleUpload(ctx context.Context, fullpath string, content []byte) error {
	return SimpleUpload(ctx, c, fullpath, content)
}

// SimpleDownload adapts the package-level SimpleDownload to the ObjectStore
// interface.
func (c *Client) SimpleDownload(ctx context.Context, fullpath string) ([]byte, error) {
	return SimpleDownload(ctx, c, fullpath)
}
