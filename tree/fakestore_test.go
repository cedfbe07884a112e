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
	"strings"
	"sync"

	"github.com/yarffs/s3tree/store"
)

// fakeObject is one object held by fakeStore.
type fakeObject struct {
	content     []byte
	contentType string
}

// fakeStore is an in-memory stand-in for store.Client, keyed by fullpath,
// used so the tree package's tests exercise real resolution logic without
// talking to S3.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]*fakeObject

	headErr   error
	listErr   error
	deleteErr error
	copyErr   error

	headCalls int
}

var _ store.ObjectStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]*fakeObject{}}
}

func (f *fakeStore) headCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headCalls
}

func (f *fakeStore) putDirectoryMarker(fullpath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[fullpath] = &fakeObject{contentType: store.DirectoryContentType}
}

func (f *fakeStore) putFile(fullpath string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[fullpath] = &fakeObject{content: content}
}

func (f *fakeStore) Head(ctx context.Context, fullpath string) (store.Attrs, error) {
	if f.headErr != nil {
		return store.Attrs{}, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headCalls++
	obj, ok := f.objects[fullpath]
	if !ok {
		return store.Attrs{}, errNotFoundInStore
	}
	return store.Attrs{
		Size:              int64(len(obj.content)),
		ContentType:       obj.contentType,
		IsDirectoryMarker: obj.contentType == store.DirectoryContentType,
	}, nil
}

func (f *fakeStore) Delete(ctx context.Context, fullpath string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, fullpath)
	return nil
}

func (f *fakeStore) PutCopy(ctx context.Context, oldPath, newPath string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[oldPath]
	if !ok {
		return errNotFoundInStore
	}
	copied := *obj
	f.objects[newPath] = &copied
	return nil
}

func (f *fakeStore) List(ctx context.Context, dirPath, continuationToken string) (store.Page, error) {
	if f.listErr != nil {
		return store.Page{}, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := dirPath
	if prefix != "" {
		prefix += "/"
	}

	seenPrefixes := map[string]bool{}
	var page store.Page
	for key, obj := range f.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if rest == "" {
			continue
		}
		if slash := strings.Index(rest, "/"); slash >= 0 {
			sub := rest[:slash]
			if !seenPrefixes[sub] {
				seenPrefixes[sub] = true
				page.Entries = append(page.Entries, store.ListEntry{Basename: sub, IsPrefix: true})
			}
			continue
		}
		page.Entries = append(page.Entries, store.ListEntry{Basename: rest, Size: int64(len(obj.content))})
	}
	return page, nil
}

func (f *fakeStore) OpenFile(fullpath string, isNew bool, contentType string) store.FileIO {
	return &fakeFileIO{store: f, fullpath: fullpath, isNew: isNew, contentType: contentType}
}

func (f *fakeStore) SimpleUpload(ctx context.Context, fullpath string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[fullpath] = &fakeObject{content: content}
	return nil
}

func (f *fakeStore) SimpleDownload(ctx context.Context, fullpath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[fullpath]
	if !ok {
		return nil, errNotFoundInStore
	}
	return obj.content, nil
}

// fakeFileIO is the fakeStore's FileIO, buffering in memory like the real
// FileHandle but against the fake's object map instead of S3.
type fakeFileIO struct {
	store       *fakeStore
	fullpath    string
	isNew       bool
	contentType string

	buf      []byte
	loaded   bool
	modified bool
}

func (fh *fakeFileIO) ensureLoaded() {
	if fh.loaded {
		return
	}
	if fh.isNew {
		fh.buf = []byte{}
	} else {
		fh.store.mu.Lock()
		if obj, ok := fh.store.objects[fh.fullpath]; ok {
			fh.buf = append([]byte(nil), obj.content...)
		}
		fh.store.mu.Unlock()
	}
	fh.loaded = true
}

func (fh *fakeFileIO) ReadBuffer(ctx context.Context, offset int64, size int) ([]byte, error) {
	fh.ensureLoaded()
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

func (fh *fakeFileIO) WriteBuffer(ctx context.Context, offset int64, buf []byte) (int64, error) {
	fh.ensureLoaded()
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

func (fh *fakeFileIO) Release(ctx context.Context) error {
	if fh.modified || fh.isNew {
		fh.store.mu.Lock()
		fh.store.objects[fh.fullpath] = &fakeObject{content: fh.buf, contentType: fh.contentType}
		fh.store.mu.Unlock()
	}
	return nil
}

type notFoundError struct{}

func (notFoundError) Error() string { return "fake store: not found" }

var errNotFoundInStore = notFoundError{}
