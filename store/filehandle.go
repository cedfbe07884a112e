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
	"bytes"
	"context"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// FileHandle is the concrete realization of §6.4's file-I/O handle
// contract: create/release/read_buffer/write_buffer/simple_upload/
// simple_download. New-object handles buffer writes in memory and flush on
// release via s3manager.Uploader, following rclone's use of s3manager for
// uploads; existing-object handles download lazily on first read via
// s3manager.Downloader.
type FileHandle struct {
	client   *Client
	fullpath string
	isNew    bool
	mode     string // "mime type", set at creation for new objects

	mu       sync.Mutex
	buf      []byte
	loaded   bool
	modified bool
}

// Create opens a file-I/O handle against fullpath. isNew selects "new-
// object" mode (a fresh, empty local buffer, flushed on release) versus
// "existing-object" mode (lazily downloaded on first read).
func Create(client *Client, fullpath string, isNew bool, contentType string) *FileHandle {
	fh := &FileHandle{client: client, fullpath: fullpath, isNew: isNew, mode: contentType}
	if isNew {
		fh.buf = []byte{}
		fh.loaded = true
	}
	return fh
}

// Release flushes the buffer to the store when it was written to or the
// handle is for a new object (even if never written), then frees the
// handle's memory. The owning entry's lifetime is independent of release,
// per §4.5 and §9's decoupling of sweep from open handles.
func (fh *FileHandle) Release(ctx context.Context) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.modified || fh.isNew {
		if err := fh.flushLocked(ctx); err != nil {
			return err
		}
	}
	fh.buf = nil
	return nil
}

func (fh *FileHandle) flushLocked(ctx context.Context) error {
	uploader := s3manager.NewUploaderWithClient(fh.client.S3)
	in := &s3manager.UploadInput{
		Bucket: aws.String(fh.client.Bucket),
		Key:    aws.String(fh.client.objectKey(fh.fullpath)),
		Body:   bytes.NewReader(fh.buf),
	}
	if fh.mode != "" {
		in.ContentType = aws.String(fh.mode)
	}
	if fh.client.StorageClass != "" {
		in.StorageClass = aws.String(fh.client.StorageClass)
	}
	_, err := uploader.UploadWithContext(ctx, in)
	return translateAWSError(err)
}

// ensureLoadedLocked downloads the full object body on first access to an
// existing-object handle. fh.mu must be held.
func (fh *FileHandle) ensureLoadedLocked(ctx context.Context) error {
	if fh.loaded {
		return nil
	}
	downloader := s3manager.NewDownloaderWithClient(fh.client.S3)
	buf := &aws.WriteAtBuffer{}
	_, err := downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(fh.client.Bucket),
		Key:    aws.String(fh.client.objectKey(fh.fullpath)),
	})
	if err != nil {
		return translateAWSError(err)
	}
	fh.buf = buf.Bytes()
	fh.loaded = true
	return nil
}

// ReadBuffer returns up to size bytes starting at offset, per §4.5's Read.
func (fh *FileHandle) ReadBuffer(ctx context.Context, offset int64, size int) ([]byte, error) {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if err := fh.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	if offset >= int64(len(fh.buf)) {
		return nil, nil
	}
	end := offset + int64(size)
	if end > int64(len(fh.buf)) {
		end = int64(len(fh.buf))
	}
	out := make([]byte, end-offset)
	copy(out, fh.buf[offset:end])
	return out, nil
}

// WriteBuffer writes buf at offset, growing the in-memory buffer as needed,
// and marks the handle modified so Release flushes it. Returns the new
// total length, the source of truth for entry.Size per §4.5.
func (fh *FileHandle) WriteBuffer(ctx context.Context, offset int64, buf []byte) (int64, error) {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if err := fh.ensureLoadedLocked(ctx); err != nil {
		return 0, err
	}
	end := offset + int64(len(buf))
	if end > int64(len(fh.buf)) {
		grown := make([]byte, end)
		copy(grown, fh.buf)
		fh.buf = grown
	}
	copy(fh.buf[offset:end], buf)
	fh.modified = true
	return int64(len(fh.buf)), nil
}

// Length returns the handle's current in-memory content length, the
// authoritative "block-cache-reported-length" source named in §4.5 when
// the buffer has been materialized.
func (fh *FileHandle) Length() int64 {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return int64(len(fh.buf))
}

// SimpleUpload uploads content directly as fullpath's entire body, used by
// symlink creation (§4.9) to store the link target as the object payload.
func SimpleUpload(ctx context.Context, client *Client, fullpath string, content []byte) error {
	uploader := s3manager.NewUploaderWithClient(client.S3)
	_, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(client.Bucket),
		Key:    aws.String(client.objectKey(fullpath)),
		Body:   bytes.NewReader(content),
	})
	return translateAWSError(err)
}

// SimpleDownload downloads fullpath's entire body, used by readlink (§4.9)
// to resolve a symlink's target.
func SimpleDownload(ctx context.Context, client *Client, fullpath string) ([]byte, error) {
	downloader := s3manager.NewDownloaderWithClient(client.S3)
	buf := &aws.WriteAtBuffer{}
	_, err := downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(client.Bucket),
		Key:    aws.String(client.objectKey(fullpath)),
	})
	if err != nil {
		return nil, translateAWSError(err)
	}
	return buf.Bytes(), nil
}
