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

import "errors"

// Sentinel errors rendering the taxonomy in §7. The fsadapter package is
// the sole place that maps these onto syscall.Errno values for the kernel.
var (
	ErrNotFound      = errors.New("tree: not found")
	ErrNotADirectory = errors.New("tree: not a directory")
	ErrIsADirectory  = errors.New("tree: is a directory")
	ErrNotSupported  = errors.New("tree: not supported")
	ErrNotEmpty      = errors.New("tree: directory not empty")
	ErrInternal      = errors.New("tree: internal error")
	ErrNoXattr       = errors.New("tree: no such attribute")
	ErrExists        = errors.New("tree: entry exists with different type")
)
