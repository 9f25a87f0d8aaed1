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

package abi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeStringCanonical(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct{ in, out string }{
		{"uint", "uint256"},
		{"int", "int256"},
		{"fixed", "fixed128x18"},
		{"ufixed", "ufixed128x18"},
		{"uint32", "uint32"},
		{"bytes", "bytes"},
		{"bytes3", "bytes3"},
		{"bool", "bool"},
		{"address", "address"},
		{"string", "string"},
		{"bytes3[2]", "bytes3[2]"},
		{"uint256[]", "uint256[]"},
		{"(uint256,bytes,int8[3])", "(uint256,bytes,int8[3])"},
	} {
		got, err := ParseTypeString(ctx, tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.out, got.String(), tc.in)
	}
}

func TestParseTypeStringErrors(t *testing.T) {
	ctx := context.Background()
	for _, in := range []string{
		"",
		"wibble",
		"uint7",
		"uint0",
		"uint257",
		"bytes33",
		"uint256[0]",
		"uint256[01]",
		"(uint256,bool",
		"uint256)",
		"uint256 ",
	} {
		_, err := ParseTypeString(ctx, in)
		assert.Error(t, err, in)
	}
}

func TestInterningSharesSingleton(t *testing.T) {
	ctx := context.Background()
	a, err := ParseTypeString(ctx, "uint256")
	require.NoError(t, err)
	b, err := ParseTypeString(ctx, "uint256")
	require.NoError(t, err)
	aInternal := a.(*typeComponent)
	bInternal := b.(*typeComponent)
	assert.True(t, aInternal == bInternal)
}

func TestDynamicClassification(t *testing.T) {
	ctx := context.Background()
	dynamicCases := []string{"string", "bytes", "uint256[]", "(uint256,string)", "string[3]"}
	staticCases := []string{"uint256", "bytes32", "uint256[3]", "(uint256,bool)", "address[2][3]"}
	for _, s := range dynamicCases {
		tc, err := ParseTypeString(ctx, s)
		require.NoError(t, err)
		assert.True(t, tc.Dynamic(), s)
	}
	for _, s := range staticCases {
		tc, err := ParseTypeString(ctx, s)
		require.NoError(t, err)
		assert.False(t, tc.Dynamic(), s)
	}
}

func TestTupleArity(t *testing.T) {
	ctx := context.Background()
	tc, err := ParseTypeString(ctx, "(uint256,bool,bytes)")
	require.NoError(t, err)
	assert.Len(t, tc.TupleChildren(), 3)
}
