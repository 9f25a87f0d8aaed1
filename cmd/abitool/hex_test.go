// Copyright © 2022 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
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

package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHexArgWithAndWithoutPrefix(t *testing.T) {
	b, err := decodeHexArg("0xdead")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, b)

	b, err = decodeHexArg("dead")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, b)
}

func TestDecodeHexArgRejectsInvalidHex(t *testing.T) {
	_, err := decodeHexArg("0xzz")
	assert.Error(t, err)
}

func TestStringsReaderRoundTrip(t *testing.T) {
	r := stringsReader("hello")
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}
