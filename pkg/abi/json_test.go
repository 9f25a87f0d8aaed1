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
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterTypeComponentTreeElementary(t *testing.T) {
	ctx := context.Background()
	p := &Parameter{Name: "amount", Type: "uint256"}
	tc, err := p.TypeComponentTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "uint256", tc.String())
}

func TestParameterTypeComponentTreeArraySuffixes(t *testing.T) {
	ctx := context.Background()
	p := &Parameter{Name: "matrix", Type: "uint256[2][]"}
	tc, err := p.TypeComponentTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "uint256[2][]", tc.String())
}

func TestParameterTypeComponentTreeTuple(t *testing.T) {
	ctx := context.Background()
	p := &Parameter{
		Name: "pair",
		Type: "tuple",
		Components: []*Parameter{
			{Name: "a", Type: "uint256"},
			{Name: "b", Type: "bool"},
		},
	}
	tc, err := p.TypeComponentTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "(uint256,bool)", tc.String())
}

func TestParameterTypeComponentTreeTupleArray(t *testing.T) {
	ctx := context.Background()
	p := &Parameter{
		Name: "pairs",
		Type: "tuple[]",
		Components: []*Parameter{
			{Name: "a", Type: "uint256"},
		},
	}
	tc, err := p.TypeComponentTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "(uint256)[]", tc.String())
}

func TestParameterArrayTypeComponentTree(t *testing.T) {
	ctx := context.Background()
	pa := ParameterArray{
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
	}
	tc, err := pa.TypeComponentTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "(address,uint256)", tc.String())
}

func TestEntryAsFunctionOrdinary(t *testing.T) {
	ctx := context.Background()
	e := &Entry{
		Type:            "function",
		Name:            "transfer",
		StateMutability: "nonpayable",
		Inputs: ParameterArray{
			{Name: "to", Type: "address"},
			{Name: "value", Type: "uint256"},
		},
	}
	f, err := e.AsFunction(ctx)
	require.NoError(t, err)
	assert.Equal(t, "transfer(address,uint256)", f.Signature())
}

func TestEntryAsFunctionConstructorNoOutputs(t *testing.T) {
	ctx := context.Background()
	e := &Entry{Type: "constructor", Inputs: ParameterArray{{Name: "owner", Type: "address"}}}
	f, err := e.AsFunction(ctx)
	require.NoError(t, err)
	assert.Equal(t, VariantConstructor, f.Variant)
}

func TestEntryAsFunctionUnknownType(t *testing.T) {
	ctx := context.Background()
	e := &Entry{Type: "bogus"}
	_, err := e.AsFunction(ctx)
	assert.Error(t, err)
}

func TestEntryAsEvent(t *testing.T) {
	ctx := context.Background()
	e := &Entry{
		Type: "event",
		Name: "Transfer",
		Inputs: ParameterArray{
			{Name: "from", Type: "address", Indexed: true},
			{Name: "to", Type: "address", Indexed: true},
			{Name: "value", Type: "uint256", Indexed: false},
		},
	}
	ev, err := e.AsEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Transfer(address,address,uint256)", ev.Signature())
	assert.Equal(t, []bool{true, true, false}, ev.Indexed)
}

func TestEntryAsError(t *testing.T) {
	ctx := context.Background()
	e := &Entry{Type: "error", Name: "InsufficientBalance", Inputs: ParameterArray{{Name: "available", Type: "uint256"}}}
	ce, err := e.AsError(ctx)
	require.NoError(t, err)
	assert.Equal(t, "InsufficientBalance(uint256)", ce.Signature())
}

func TestABIFunctionsEventsErrorsIndexes(t *testing.T) {
	a := ABI{
		{Type: "function", Name: "foo"},
		{Type: "event", Name: "Bar"},
		{Type: "error", Name: "Baz"},
	}
	assert.Contains(t, a.Functions(), "foo")
	assert.Contains(t, a.Events(), "Bar")
	assert.Contains(t, a.Errors(), "Baz")
}

func decodeJSONValue(t *testing.T, raw string) interface{} {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	require.NoError(t, dec.Decode(&v))
	return v
}

func mustBigInt(t *testing.T, s string) *big.Int {
	i, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return i
}

func TestParseJSONValueElementaryTypes(t *testing.T) {
	ctx := context.Background()

	tc := mustParse(t, "uint256")
	cv, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"12345"`))
	require.NoError(t, err)
	assert.Equal(t, "12345", cv.Value.(interface{ String() string }).String())

	tc = mustParse(t, "bool")
	cv, err = ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `true`))
	require.NoError(t, err)
	assert.Equal(t, true, cv.Value)

	tc = mustParse(t, "string")
	cv, err = ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"hello"`))
	require.NoError(t, err)
	assert.Equal(t, "hello", cv.Value)

	tc = mustParse(t, "bytes")
	cv, err = ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"0xaabb"`))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0xbb}, cv.Value)
}

func TestParseJSONValueTupleByArray(t *testing.T) {
	ctx := context.Background()
	p := &Parameter{Type: "tuple", Components: []*Parameter{{Name: "a", Type: "uint256"}, {Name: "b", Type: "bool"}}}
	tc, err := p.TypeComponentTree(ctx)
	require.NoError(t, err)

	cv, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `["1",true]`))
	require.NoError(t, err)
	require.Len(t, cv.Children, 2)
	assert.Equal(t, true, cv.Children[1].Value)
}

func TestParseJSONValueTupleByMap(t *testing.T) {
	ctx := context.Background()
	p := &Parameter{Type: "tuple", Components: []*Parameter{{Name: "a", Type: "uint256"}, {Name: "b", Type: "bool"}}}
	tc, err := p.TypeComponentTree(ctx)
	require.NoError(t, err)

	cv, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `{"a":"1","b":true}`))
	require.NoError(t, err)
	require.Len(t, cv.Children, 2)
	assert.Equal(t, true, cv.Children[1].Value)
}

func TestParseJSONValueTupleArityMismatch(t *testing.T) {
	ctx := context.Background()
	p := &Parameter{Type: "tuple", Components: []*Parameter{{Name: "a", Type: "uint256"}, {Name: "b", Type: "bool"}}}
	tc, err := p.TypeComponentTree(ctx)
	require.NoError(t, err)

	_, err = ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `["1"]`))
	assert.Error(t, err)
}

func TestParseJSONValueFixedArrayArityMismatch(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "uint256[2]")
	_, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `["1"]`))
	assert.Error(t, err)
}

func TestParseJSONValueDynamicArray(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "uint256[]")
	cv, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `["1","2","3"]`))
	require.NoError(t, err)
	assert.Len(t, cv.Children, 3)
}

func TestParseJSONValueBoolFromString(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "bool")
	cv, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"true"`))
	require.NoError(t, err)
	assert.Equal(t, true, cv.Value)

	_, err = ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"notabool"`))
	assert.Error(t, err)
}

func TestParseJSONValueAddressAcceptsExactChecksum(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "address")

	cv, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"0x52908400098527886E0F7030069857D2E4169EE7"`))
	require.NoError(t, err)
	require.IsType(t, &big.Int{}, cv.Value)
}

func TestParseJSONValueAddressRejectsLowerCaseWithoutChecksum(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "address")
	// Same digits as the canonical EIP-55 vector above, but an all-lowercase rendering is not
	// itself the checksum of the value and must be rejected, not silently accepted.
	_, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"0x52908400098527886e0f7030069857d2e4169ee7"`))
	assert.Error(t, err)
}

func TestParseJSONValueAddressRejectsBadChecksum(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "address")
	// Same digits as the canonical EIP-55 vector above but with the case of one digit flipped.
	_, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"0x52908400098527886e0f7030069857D2E4169ee7"`))
	assert.Error(t, err)
}

func TestSerializeToJSONAddressRendersChecksum(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "address").(*typeComponent)
	addr, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"0x52908400098527886E0F7030069857D2E4169EE7"`))
	require.NoError(t, err)

	out, err := SerializeToJSON(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "0x52908400098527886E0F7030069857D2E4169EE7", out)
}

func TestParseJSONValueFixedDecimal(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "fixed128x18")
	cv, err := ParseJSONValue(ctx, tc, "", decodeJSONValue(t, `"1.5"`))
	require.NoError(t, err)
	d := cv.Value.(*Decimal)
	assert.Equal(t, uint16(18), d.Scale)
}

func TestSerializeToJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "(uint256,bool,bytes)").(*typeComponent)
	kids := tc.TupleChildren()
	cv := NewTupleValue(tc,
		&ComponentValue{Component: kids[0], Value: mustBigInt(t, "42")},
		&ComponentValue{Component: kids[1], Value: true},
		&ComponentValue{Component: kids[2], Value: []byte{0xde, 0xad}},
	)
	out, err := SerializeToJSON(ctx, cv)
	require.NoError(t, err)
	m, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "42", m["0"])
	assert.Equal(t, true, m["1"])
	assert.Equal(t, "0xdead", m["2"])
}

func TestSerializeToJSONAbsentYieldsNil(t *testing.T) {
	ctx := context.Background()
	tc := mustParse(t, "uint256").(*typeComponent)
	cv := &ComponentValue{Component: tc, Value: Absent}
	out, err := SerializeToJSON(ctx, cv)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEntryStringFallsBackOnError(t *testing.T) {
	e := &Entry{Type: "bogus", Name: "weird"}
	assert.Equal(t, "weird", e.String())
}

func TestEntryStringRendersSignature(t *testing.T) {
	e := &Entry{Type: "function", Name: "foo", Inputs: ParameterArray{{Name: "x", Type: "uint256"}}}
	assert.Equal(t, "foo(uint256)", e.String())
}
