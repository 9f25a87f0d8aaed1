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
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripSam(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(bytes,bool,uint256[])").(*typeComponent)
	kids := tc.TupleChildren()
	arrTC := kids[2].(*typeComponent)
	arrChild := arrTC.ArrayChild()
	arr := NewTupleValue(arrTC,
		NewValue(arrChild, big.NewInt(1)),
		NewValue(arrChild, big.NewInt(2)),
		NewValue(arrChild, big.NewInt(3)),
	)
	cv := NewTupleValue(tc, NewValue(kids[0], []byte("dave")), NewValue(kids[1], true), arr)

	enc, err := EncodeABIData(ctx, tc, cv)
	require.NoError(t, err)

	decoded, err := DecodeABIData(ctx, tc, enc)
	require.NoError(t, err)
	require.Len(t, decoded.Children, 3)
	assert.Equal(t, []byte("dave"), decoded.Children[0].Value)
	assert.Equal(t, true, decoded.Children[1].Value)
	require.Len(t, decoded.Children[2].Children, 3)
	assert.Equal(t, "1", decoded.Children[2].Children[0].Value.(*big.Int).String())
	assert.Equal(t, "2", decoded.Children[2].Children[1].Value.(*big.Int).String())
	assert.Equal(t, "3", decoded.Children[2].Children[2].Value.(*big.Int).String())
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "uint256")
	enc, err := EncodeABIData(ctx, tc, NewValue(tc, big.NewInt(1)))
	require.NoError(t, err)
	_, err = DecodeABIData(ctx, tc, append(enc, 0x00))
	assert.Error(t, err)
}

func TestDecodeRejectsOffsetTooSmall(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(bytes)")
	data := make([]byte, 32)
	data[31] = 0x1f // one byte below the minimum offset of 0x20
	_, err := DecodeABIData(ctx, tc, data)
	assert.Error(t, err)
}

func TestDecodeRejectsBackwardsOffset(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(bytes,bytes)").(*typeComponent)
	kids := tc.TupleChildren()
	cv := NewTupleValue(tc, NewValue(kids[0], []byte("aaaa")), NewValue(kids[1], []byte("bbbb")))
	enc, err := EncodeABIData(ctx, tc, cv)
	require.NoError(t, err)

	// Retarget the second field's offset to point inside the head (before the watermark left
	// by decoding the first field) - this must be rejected as a backwards jump.
	tampered := append([]byte{}, enc...)
	backwards := make([]byte, 32)
	big.NewInt(32).FillBytes(backwards)
	copy(tampered[32:64], backwards)
	_, err = DecodeABIData(ctx, tc, tampered)
	assert.Error(t, err)
}

func TestDecodeLenientForwardOffsetTolerated(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(bytes,bytes)").(*typeComponent)
	kids := tc.TupleChildren()
	cv := NewTupleValue(tc, NewValue(kids[0], []byte("aaaa")), NewValue(kids[1], []byte("bbbb")))
	enc, err := EncodeABIData(ctx, tc, cv)
	require.NoError(t, err)

	// Insert 32 bytes of padding between the head and the first dynamic field's tail data,
	// and retarget both offsets forward by one word - a lenient decoder must still accept this.
	padded := append([]byte{}, enc[:64]...)
	padded = append(padded, make([]byte, 32)...)
	padded = append(padded, enc[64:]...)
	off0 := new(big.Int).SetBytes(padded[0:32])
	off0.Add(off0, big.NewInt(32))
	b0 := make([]byte, 32)
	off0.FillBytes(b0)
	copy(padded[0:32], b0)
	off1 := new(big.Int).SetBytes(padded[32:64])
	off1.Add(off1, big.NewInt(32))
	b1 := make([]byte, 32)
	off1.FillBytes(b1)
	copy(padded[32:64], b1)

	decoded, err := DecodeABIData(ctx, tc, padded)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaaa"), decoded.Children[0].Value)
	assert.Equal(t, []byte("bbbb"), decoded.Children[1].Value)
}

func TestDecodeOffsetOverflowRejected(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(bytes)")
	word, _ := hex.DecodeString("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	_, err := DecodeABIData(ctx, tc, word)
	assert.Error(t, err)
}

func TestDecodePartialSkipsUnrequestedFieldsAsAbsent(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(uint256,bool,bytes)").(*typeComponent)
	kids := tc.TupleChildren()
	cv := NewTupleValue(tc, NewValue(kids[0], big.NewInt(7)), NewValue(kids[1], true), NewValue(kids[2], []byte("hi")))
	enc, err := EncodeABIData(ctx, tc, cv)
	require.NoError(t, err)

	decoded, err := DecodeABIDataPartial(ctx, tc, enc, []int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, "7", decoded.Children[0].Value.(*big.Int).String())
	assert.True(t, IsAbsent(decoded.Children[1].Value))
	assert.Equal(t, []byte("hi"), decoded.Children[2].Value)
}

func TestDecodePartialRejectsNonIncreasingIndices(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(uint256,uint256)")
	data := make([]byte, 64)
	_, err := DecodeABIDataPartial(ctx, tc, data, []int{1, 0})
	assert.Error(t, err)
}

func TestDecodePartialRejectsOutOfRangeIndex(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(uint256,uint256)")
	data := make([]byte, 64)
	_, err := DecodeABIDataPartial(ctx, tc, data, []int{5})
	assert.Error(t, err)
}

func TestDecodeBoolRejectsNonZeroPadding(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "bool")
	word := make([]byte, 32)
	word[0] = 0x01
	word[31] = 0x01
	_, err := DecodeABIData(ctx, tc, word)
	assert.Error(t, err)
}
