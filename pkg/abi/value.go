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
	"fmt"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"

	"github.com/kaleido-abi/abicodec/internal/abimsgs"
)

// Decimal is the (unscaled, scale) pair backing fixedMxN/ufixedMxN values (spec §3
// "BigDecimal"), rather than a floating point approximation: the value is
// Unscaled * 10^-Scale exactly.
type Decimal struct {
	Unscaled *big.Int
	Scale    uint16
}

func (d *Decimal) String() string {
	if d == nil || d.Unscaled == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%sE-%d", d.Unscaled.String(), d.Scale)
}

// ComponentValue is a node in the value tree being encoded or produced by decoding (spec §3
// "Value model"). Leaves carry Value; tuples and arrays carry Children instead. Grounded on
// the teacher's ComponentValue (pkg/abi/inputparsing.go), generalized to the new typeComponent.
type ComponentValue struct {
	Component TypeComponent
	Children  []*ComponentValue
	Value     interface{}
}

// NewValue constructs a leaf ComponentValue.
func NewValue(tc TypeComponent, v interface{}) *ComponentValue {
	return &ComponentValue{Component: tc, Value: v}
}

// NewTupleValue constructs a composite (tuple or array) ComponentValue.
func NewTupleValue(tc TypeComponent, children ...*ComponentValue) *ComponentValue {
	return &ComponentValue{Component: tc, Children: children}
}

// Validate checks that cv matches the shape of tc (spec §4.3) - correct Go type at each
// leaf, integers/addresses within range, tuple/array arity matching size(), scale matching
// for fixed/ufixed - and returns the number of bytes cv will occupy in the standard ABI
// encoding (the head word, plus any owned dynamic tail). It performs no encoding: this is
// usable standalone to check a value tree is well-formed before ever touching encode/decode.
func (tc *typeComponent) Validate(ctx context.Context, path string, cv *ComponentValue) (int, error) {
	if cv == nil {
		return 0, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, "<nil>")
	}
	switch tc.cType {
	case ElementaryComponent:
		return tc.validateElementary(ctx, path, cv)
	case FixedArrayComponent:
		return tc.validateArray(ctx, path, cv, tc.arrayLength)
	case DynamicArrayComponent:
		n, err := tc.validateArray(ctx, path, cv, -1)
		if err != nil {
			return 0, err
		}
		return 32 + n, nil // length word, plus the elements
	case TupleComponent:
		return tc.validateTuple(ctx, path, cv)
	default:
		return 0, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc.cType)
	}
}

func (tc *typeComponent) validateArray(ctx context.Context, path string, cv *ComponentValue, fixedLen int) (int, error) {
	if fixedLen >= 0 && len(cv.Children) != fixedLen {
		return 0, i18n.NewError(ctx, abimsgs.MsgArrayLengthMismatch, path, fixedLen, len(cv.Children))
	}
	total := 0
	for i, child := range cv.Children {
		childPath := fmt.Sprintf("%s[%d]", path, i)
		n, err := tc.arrayChild.Validate(ctx, childPath, child)
		if err != nil {
			return 0, err
		}
		if tc.arrayChild.Dynamic() {
			n += 32 // the element's own offset slot in the head
		}
		total += n
	}
	return total, nil
}

func (tc *typeComponent) validateTuple(ctx context.Context, path string, cv *ComponentValue) (int, error) {
	if len(cv.Children) != len(tc.tupleChildren) {
		return 0, i18n.NewError(ctx, abimsgs.MsgTupleArityMismatch, path, len(tc.tupleChildren), len(cv.Children))
	}
	total := 0
	for i, childType := range tc.tupleChildren {
		childPath := fmt.Sprintf("%s.%d", path, i)
		n, err := childType.Validate(ctx, childPath, cv.Children[i])
		if err != nil {
			return 0, err
		}
		if childType.Dynamic() {
			n += 32
		}
		total += n
	}
	return total, nil
}

func (tc *typeComponent) validateElementary(ctx context.Context, path string, cv *ComponentValue) (int, error) {
	et := tc.elementaryType
	switch et {
	case ElementaryTypeBool:
		if _, ok := cv.Value.(bool); !ok {
			return 0, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "bool", cv.Value, path)
		}
		return 32, nil

	case ElementaryTypeInt:
		i, ok := cv.Value.(*big.Int)
		if !ok {
			return 0, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, tc.String(), cv.Value, path)
		}
		bounds, _ := NewUint(ctx, tc.m)
		if _, err := bounds.ToSigned(ctx, i); err != nil {
			return 0, err
		}
		return 32, nil

	case ElementaryTypeUint, ElementaryTypeAddress:
		i, ok := cv.Value.(*big.Int)
		if !ok {
			return 0, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, tc.String(), cv.Value, path)
		}
		bits := tc.m
		if et == ElementaryTypeAddress {
			bits = 160
		}
		bounds, _ := NewUint(ctx, bits)
		if _, err := bounds.ToUnsigned(ctx, i); err != nil {
			return 0, err
		}
		return 32, nil

	case ElementaryTypeFixed:
		d, ok := cv.Value.(*Decimal)
		if !ok {
			return 0, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, tc.String(), cv.Value, path)
		}
		if d.Scale != tc.n {
			return 0, i18n.NewError(ctx, abimsgs.MsgScaleMismatch, tc.n, d.Scale, path)
		}
		bounds, _ := NewUint(ctx, tc.m)
		if _, err := bounds.ToSigned(ctx, d.Unscaled); err != nil {
			return 0, err
		}
		return 32, nil

	case ElementaryTypeUfixed:
		d, ok := cv.Value.(*Decimal)
		if !ok {
			return 0, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, tc.String(), cv.Value, path)
		}
		if d.Scale != tc.n {
			return 0, i18n.NewError(ctx, abimsgs.MsgScaleMismatch, tc.n, d.Scale, path)
		}
		bounds, _ := NewUint(ctx, tc.m)
		if _, err := bounds.ToUnsigned(ctx, d.Unscaled); err != nil {
			return 0, err
		}
		return 32, nil

	case ElementaryTypeFunction:
		b, ok := cv.Value.([]byte)
		if !ok || len(b) != 24 {
			return 0, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "function", cv.Value, path)
		}
		return 32, nil

	case ElementaryTypeBytes:
		b, ok := cv.Value.([]byte)
		if !ok {
			return 0, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, tc.String(), cv.Value, path)
		}
		if tc.elementarySuffix == "" {
			// dynamic bytes: length word + data rounded up to a whole number of words
			return 32 + roundUpTo32(len(b)), nil
		}
		if len(b) > int(tc.m) {
			return 0, i18n.NewError(ctx, abimsgs.MsgFixedLengthABIArrayMismatch, len(b), tc.m, path)
		}
		return 32, nil

	case ElementaryTypeString:
		s, ok := cv.Value.(string)
		if !ok {
			return 0, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "string", cv.Value, path)
		}
		return 32 + roundUpTo32(len(s)), nil

	default:
		return 0, i18n.NewError(ctx, abimsgs.MsgUnknownABIElementaryType, et, path)
	}
}

// roundUpTo32 returns the number of bytes occupied by n bytes of raw data once padded out to
// a whole number of 32-byte ABI words.
func roundUpTo32(n int) int {
	return ((n + 31) / 32) * 32
}
