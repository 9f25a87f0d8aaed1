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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) TypeComponent {
	tc, err := ParseTypeString(context.Background(), s)
	require.NoError(t, err)
	return tc
}

func TestValidateElementaryHappyPath(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "uint256").(*typeComponent)
	n, err := tc.Validate(ctx, "", NewValue(tc, big.NewInt(42)))
	require.NoError(t, err)
	assert.Equal(t, 32, n)
}

func TestValidateElementaryWrongGoType(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "uint256").(*typeComponent)
	_, err := tc.Validate(ctx, "", NewValue(tc, "not a big.Int"))
	assert.Error(t, err)
}

func TestValidateIntOutOfRange(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "int8").(*typeComponent)
	_, err := tc.Validate(ctx, "", NewValue(tc, big.NewInt(200)))
	assert.Error(t, err)
	_, err = tc.Validate(ctx, "", NewValue(tc, big.NewInt(100)))
	assert.NoError(t, err)
}

func TestValidateBytesNTooLong(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "bytes3").(*typeComponent)
	_, err := tc.Validate(ctx, "", NewValue(tc, []byte{1, 2, 3, 4}))
	assert.Error(t, err)
	_, err = tc.Validate(ctx, "", NewValue(tc, []byte{1, 2, 3}))
	assert.NoError(t, err)
}

func TestValidateDynamicBytesSize(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "bytes").(*typeComponent)
	n, err := tc.Validate(ctx, "", NewValue(tc, []byte("dave")))
	require.NoError(t, err)
	assert.Equal(t, 64, n) // 32 length word + 32 padded data word
}

func TestValidateFixedArrayArity(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "uint256[2]").(*typeComponent)
	ok := NewTupleValue(tc, NewValue(tc.ArrayChild(), big.NewInt(1)), NewValue(tc.ArrayChild(), big.NewInt(2)))
	_, err := tc.Validate(ctx, "", ok)
	assert.NoError(t, err)

	bad := NewTupleValue(tc, NewValue(tc.ArrayChild(), big.NewInt(1)))
	_, err = tc.Validate(ctx, "", bad)
	assert.Error(t, err)
}

func TestValidateTupleArity(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(uint256,bool)").(*typeComponent)
	kids := tc.TupleChildren()
	ok := NewTupleValue(tc, NewValue(kids[0], big.NewInt(1)), NewValue(kids[1], true))
	_, err := tc.Validate(ctx, "", ok)
	assert.NoError(t, err)

	bad := NewTupleValue(tc, NewValue(kids[0], big.NewInt(1)))
	_, err = tc.Validate(ctx, "", bad)
	assert.Error(t, err)
}

func TestValidateFixedScaleMismatch(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "fixed128x18").(*typeComponent)
	_, err := tc.Validate(ctx, "", NewValue(tc, &Decimal{Unscaled: big.NewInt(1), Scale: 8}))
	assert.Error(t, err)
	_, err = tc.Validate(ctx, "", NewValue(tc, &Decimal{Unscaled: big.NewInt(1), Scale: 18}))
	assert.NoError(t, err)
}

func TestValidateNilValue(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "uint256").(*typeComponent)
	_, err := tc.Validate(ctx, "", nil)
	assert.Error(t, err)
}
