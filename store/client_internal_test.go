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

import "testing"

func TestObjectKey(t *testing.T) {
	c := &Client{Bucket: "bucket"}
	if got := c.objectKey("a/b"); got != "a/b" {
		t.Fatalf("objectKey(no prefix) = %q, want %q", got, "a/b")
	}

	c2 := &Client{Bucket: "bucket", KeyPrefix: "pfx"}
	if got := c2.objectKey("a/b"); got != "pfx/a/b" {
		t.Fatalf("objectKey(prefix) = %q, want %q", got, "pfx/a/b")
	}

	c3 := &Client{Bucket: "bucket", KeyPrefix: "pfx/"}
	if got := c3.objectKey("a/b"); got != "pfx/a/b" {
		t.Fatalf("objectKey(prefix with slash) = %q, want %q", got, "pfx/a/b")
	}
}

func TestBasenameOfPrefix(t *testing.T) {
	if got := basenameOfPrefix("dir/sub/", "dir/"); got != "sub" {
		t.Fatalf("basenameOfPrefix = %q, want %q", got, "sub")
	}
}
