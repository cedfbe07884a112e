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

package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRationalizeAppliesModeDefaults(t *testing.T) {
	c := &Config{}
	c.FileSystem.FileMode = -1
	c.FileSystem.DirMode = -1

	c.Rationalize()

	assert.Equal(t, defaultFileMode, c.FileSystem.FileMode)
	assert.Equal(t, defaultDirMode, c.FileSystem.DirMode)
	assert.Equal(t, InfoLogSeverity, c.Logging.Severity)
	assert.Equal(t, 16, c.ConnectionPoolSize)
}

func TestRationalizeLeavesExplicitModesAlone(t *testing.T) {
	c := &Config{}
	c.FileSystem.FileMode = 0600
	c.FileSystem.DirMode = 0700

	c.Rationalize()

	assert.Equal(t, Octal(0600), c.FileSystem.FileMode)
	assert.Equal(t, Octal(0700), c.FileSystem.DirMode)
}

func TestValidateRequiresBucket(t *testing.T) {
	c := &Config{}
	c.Rationalize()
	assert.Error(t, c.Validate())

	c.Bucket = "my-bucket"
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsUnknownSeverity(t *testing.T) {
	c := &Config{Bucket: "b"}
	c.Rationalize()
	c.Logging.Severity = "VERBOSE"
	assert.Error(t, c.Validate())
}
