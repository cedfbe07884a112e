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
	"github.com/stretchr/testify/require"
)

func TestOctalUnmarshalParsesBase8(t *testing.T) {
	var o Octal
	require.NoError(t, o.UnmarshalText([]byte("644")))
	assert.Equal(t, Octal(0644), o)
}

func TestOctalMarshalRoundTrips(t *testing.T) {
	o := Octal(0755)
	text, err := o.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "755", string(text))

	var parsed Octal
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, o, parsed)
}

func TestLogSeverityUnmarshalUppercasesAndValidates(t *testing.T) {
	var s LogSeverity
	require.NoError(t, s.UnmarshalText([]byte("warning")))
	assert.Equal(t, WarningLogSeverity, s)

	var bad LogSeverity
	assert.Error(t, bad.UnmarshalText([]byte("bogus")))
}

func TestLogSeverityRank(t *testing.T) {
	assert.Less(t, TraceLogSeverity.Rank(), DebugLogSeverity.Rank())
	assert.Equal(t, -1, LogSeverity("nonsense").Rank())
}
