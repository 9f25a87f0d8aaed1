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

func emptyTuple() TypeComponent {
	return &typeComponent{cType: TupleComponent}
}

func TestFunctionFooSelector(t *testing.T) {
	ctx := context.Background()
	f, err := NewFunction(ctx, VariantOrdinary, "foo", emptyTuple(), emptyTuple(), "nonpayable")
	require.NoError(t, err)
	assert.Equal(t, "foo()", f.Signature())

	sel, err := f.Selector(ctx, DefaultDigestFactory)
	require.NoError(t, err)
	assert.Equal(t, "c2985578", hex.EncodeToString(sel[:]))
}

func TestFunctionSelectorStableAcrossCalls(t *testing.T) {
	ctx := context.Background()
	f, err := NewFunction(ctx, VariantOrdinary, "foo", emptyTuple(), emptyTuple(), "nonpayable")
	require.NoError(t, err)
	sel1, err := f.Selector(ctx, DefaultDigestFactory)
	require.NoError(t, err)
	sel2, err := f.Selector(ctx, DefaultDigestFactory)
	require.NoError(t, err)
	assert.Equal(t, sel1, sel2)
}

func TestFunctionOrdinaryRequiresName(t *testing.T) {
	ctx := context.Background()
	_, err := NewFunction(ctx, VariantOrdinary, "", emptyTuple(), emptyTuple(), "nonpayable")
	assert.Error(t, err)
}

func TestFunctionReceiveRules(t *testing.T) {
	ctx := context.Background()
	_, err := NewFunction(ctx, VariantReceive, "", emptyTuple(), emptyTuple(), "payable")
	assert.NoError(t, err)

	_, err = NewFunction(ctx, VariantReceive, "", emptyTuple(), emptyTuple(), "nonpayable")
	assert.Error(t, err, "receive must be payable")

	_, err = NewFunction(ctx, VariantReceive, "named", emptyTuple(), emptyTuple(), "payable")
	assert.Error(t, err, "receive must not be named")

	tc := mustParse(t, "(uint256)").(*typeComponent)
	_, err = NewFunction(ctx, VariantReceive, "", tc, emptyTuple(), "payable")
	assert.Error(t, err, "receive must take no inputs")
}

func TestFunctionFallbackAndConstructorRules(t *testing.T) {
	ctx := context.Background()
	_, err := NewFunction(ctx, VariantFallback, "", emptyTuple(), emptyTuple(), "nonpayable")
	assert.NoError(t, err)

	outs := mustParse(t, "(uint256)").(*typeComponent)
	_, err = NewFunction(ctx, VariantFallback, "", emptyTuple(), outs, "nonpayable")
	assert.Error(t, err, "fallback must take no outputs")

	_, err = NewFunction(ctx, VariantFallback, "named", emptyTuple(), emptyTuple(), "nonpayable")
	assert.Error(t, err, "fallback must not be named")

	_, err = NewFunction(ctx, VariantConstructor, "", emptyTuple(), emptyTuple(), "nonpayable")
	assert.NoError(t, err)

	_, err = NewFunction(ctx, VariantConstructor, "", emptyTuple(), outs, "nonpayable")
	assert.Error(t, err, "constructor must take no outputs")
}

func TestFunctionUnknownVariantRejected(t *testing.T) {
	ctx := context.Background()
	_, err := NewFunction(ctx, Variant("bogus"), "x", emptyTuple(), emptyTuple(), "nonpayable")
	assert.Error(t, err)
}

func TestFunctionInvalidNameRejected(t *testing.T) {
	ctx := context.Background()
	_, err := NewFunction(ctx, VariantOrdinary, "has(paren", emptyTuple(), emptyTuple(), "nonpayable")
	assert.Error(t, err)
}

func TestFunctionEncodeDecodeCallRoundTrip(t *testing.T) {
	ctx := context.Background()
	inputs := mustParse(t, "(uint256,bool)").(*typeComponent)
	f, err := NewFunction(ctx, VariantOrdinary, "baz", inputs, emptyTuple(), "nonpayable")
	require.NoError(t, err)

	kids := inputs.TupleChildren()
	args := NewTupleValue(inputs, NewValue(kids[0], big.NewInt(69)), NewValue(kids[1], true))

	enc, err := f.EncodeCall(ctx, DefaultDigestFactory, args)
	require.NoError(t, err)
	assert.Len(t, enc, 4+64)

	decoded, err := f.DecodeCall(ctx, DefaultDigestFactory, enc)
	require.NoError(t, err)
	assert.Equal(t, "69", decoded.Children[0].Value.(*big.Int).String())
	assert.Equal(t, true, decoded.Children[1].Value)
}

func TestFunctionDecodeCallRejectsShortData(t *testing.T) {
	ctx := context.Background()
	f, err := NewFunction(ctx, VariantOrdinary, "foo", emptyTuple(), emptyTuple(), "nonpayable")
	require.NoError(t, err)
	_, err = f.DecodeCall(ctx, DefaultDigestFactory, []byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestFunctionDecodeCallRejectsWrongSelector(t *testing.T) {
	ctx := context.Background()
	f, err := NewFunction(ctx, VariantOrdinary, "foo", emptyTuple(), emptyTuple(), "nonpayable")
	require.NoError(t, err)
	_, err = f.DecodeCall(ctx, DefaultDigestFactory, []byte{0xde, 0xad, 0xbe, 0xef})
	assert.ErrorContains(t, err, "FF22")
}

func TestEventSignatureAndTopic0(t *testing.T) {
	ctx := context.Background()
	inputs := mustParse(t, "(address,uint256)").(*typeComponent)
	e, err := NewEvent(ctx, "Transfer", inputs, []bool{true, false}, false)
	require.NoError(t, err)
	assert.Equal(t, "Transfer(address,uint256)", e.Signature())

	topic0, err := e.Topic0(ctx, DefaultDigestFactory)
	require.NoError(t, err)
	assert.Len(t, topic0, 32)
	assert.NotEqual(t, [32]byte{}, topic0)
}

func TestEventIndexedArityMismatch(t *testing.T) {
	ctx := context.Background()
	inputs := mustParse(t, "(address,uint256)").(*typeComponent)
	_, err := NewEvent(ctx, "Transfer", inputs, []bool{true}, false)
	assert.Error(t, err)
}

func TestEventNonIndexedInputs(t *testing.T) {
	ctx := context.Background()
	inputs := mustParse(t, "(address,uint256,bool)").(*typeComponent)
	e, err := NewEvent(ctx, "Foo", inputs, []bool{true, false, true}, false)
	require.NoError(t, err)
	nonIndexed := e.NonIndexedInputs()
	assert.Equal(t, "(uint256)", nonIndexed.String())
}

func TestContractErrorSelector(t *testing.T) {
	ctx := context.Background()
	inputs := mustParse(t, "(string)").(*typeComponent)
	ce, err := NewContractError(ctx, "Error", inputs)
	require.NoError(t, err)
	assert.Equal(t, "Error(string)", ce.Signature())

	sel, err := ce.Selector(ctx, DefaultDigestFactory)
	require.NoError(t, err)
	assert.Equal(t, "08c379a0", hex.EncodeToString(sel[:]))
}
