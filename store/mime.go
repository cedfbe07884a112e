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

import "strings"

// mimeByExtension is a small compiled-in extension table, standing in for
// the /etc/mime.types lookup the original implementation performed at
// startup. This is a feature the distilled spec dropped but the original
// implementation carried (see original_source/src/mimetypes.c); it is used
// to set a better-than-default Content-Type on newly created objects.
var mimeByExtension = map[string]string{
	"txt":  "text/plain",
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"xml":  "application/xml",
	"csv":  "text/csv",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"zip":  "application/zip",
	"gz":   "application/gzip",
	"tar":  "application/x-tar",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"wav":  "audio/wav",
	"yaml": "application/x-yaml",
	"yml":  "application/x-yaml",
	"md":   "text/markdown",
}

const defaultContentType = "application/octet-stream"

// MimeByExtension returns a best-guess Content-Type for fullpath's final
// extension, falling back to the generic octet-stream type.
func MimeByExtension(fullpath string) string {
	idx := strings.LastIndexByte(fullpath, '.')
	if idx < 0 || idx == len(fullpath)-1 {
		return defaultContentType
	}
	ext := strings.ToLower(fullpath[idx+1:])
	if mt, ok := mimeByExtension[ext]; ok {
		return mt
	}
	return defaultContentType
}
