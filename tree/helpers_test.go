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
	"time"

	"github.com/yarffs/s3tree/clock"
	"github.com/yarffs/s3tree/pipeline"
	"github.com/yarffs/s3tree/store"
)

// testConfig deliberately gives DirCacheMaxAge and FileCacheMaxAge distinct
// values: several tests (e.g. xattr freshness) assert that a behavior
// tracks one of the two TTLs specifically, and identical values would let
// a reference to the wrong field pass unnoticed. CheckEmptyFiles is on so
// that a zero-length directory-marker object reported by a listing is
// probed and promoted to a directory on lookup, which the directory tests
// rely on.
func testConfig() Config {
	return Config{
		FileMode:        0644,
		DirMode:         0755,
		DirCacheMaxAge:  2 * time.Minute,
		FileCacheMaxAge: time.Minute,
		CheckEmptyFiles: true,
	}
}

// newTestTree builds a Tree wired to a fakeStore and a SimulatedClock,
// letting tests drive time deterministically.
func newTestTree(cfg Config) (*Tree, *fakeStore, *clock.SimulatedClock) {
	fs := newFakeStore()
	sc := clock.NewSimulatedClock(time.Unix(1700000000, 0))
	tr := New(cfg, sc, fs, store.NewBlockCache(), pipeline.NewPool(4))
	return tr, fs, sc
}
