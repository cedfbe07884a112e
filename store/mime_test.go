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

package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yarffs/s3tree/store"
)

func TestMimeByExtension(t *testing.T) {
	assert.Equal(t, "text/plain", store.MimeByExtension("notes.txt"))
	assert.Equal(t, "image/png", store.MimeByExtension("a/b/pic.PNG"))
	assert.Equal(t, "application/octet-stream", store.MimeByExtension("noext"))
	assert.Equal(t, "application/octet-stream", store.MimeByExtension("trailing."))
}

