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

// EncodeABIData is the standard (head/tail) ABI encoder of spec §4.4. cv must already have
// been built against tc's shape (see Validate); EncodeABIData runs one Validate pass over cv
// before encoding, so a caller who skips an explicit Validate call still gets the same errors.
func EncodeABIData(ctx context.Context, tc TypeComponent, cv *ComponentValue) ([]byte, error) {
	internal, ok := tc.(*typeComponent)
	if !ok {
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc)
	}
	if _, err := internal.Validate(ctx, "", cv); err != nil {
		return nil, err
	}
	return internal.encodeStandard(ctx, "", cv)
}

// standardStaticWordSize is the fixed number of bytes tc occupies inline in a standard ABI
// head when tc is static. It is independent of any particular value.
func (tc *typeComponent) standardStaticWordSize() int {
	switch tc.cType {
	case FixedArrayComponent:
		return tc.arrayLength * tc.arrayChild.standardStaticWordSize()
	case TupleComponent:
		total := 0
		for _, c := range tc.tupleChildren {
			total += c.standardStaticWordSize()
		}
		return total
	default:
		return 32
	}
}

func (tc *typeComponent) encodeStandard(ctx context.Context, path string, cv *ComponentValue) ([]byte, error) {
	switch tc.cType {
	case ElementaryComponent:
		return tc.encodeElementary(ctx, path, cv)
	case FixedArrayComponent:
		childTypes := make([]*typeComponent, tc.arrayLength)
		for i := range childTypes {
			childTypes[i] = tc.arrayChild
		}
		return encodeHeadTail(ctx, path, childTypes, cv.Children)
	case TupleComponent:
		return encodeHeadTail(ctx, path, tc.tupleChildren, cv.Children)
	case DynamicArrayComponent:
		childTypes := make([]*typeComponent, len(cv.Children))
		for i := range childTypes {
			childTypes[i] = tc.arrayChild
		}
		body, err := encodeHeadTail(ctx, path, childTypes, cv.Children)
		if err != nil {
			return nil, err
		}
		lenBounds, _ := NewUint(ctx, 256)
		lenWord := lenBounds.SerializeTwosComplement(big.NewInt(int64(len(cv.Children))), 32)
		return append(lenWord, body...), nil
	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc.cType)
	}
}

// encodeHeadTail implements the standard ABI head/tail layout shared by tuples, fixed
// arrays, and (for their element sequence) dynamic arrays: static children are inlined into
// the head, dynamic children leave an offset word in the head and their encoding in the tail.
func encodeHeadTail(ctx context.Context, path string, childTypes []*typeComponent, children []*ComponentValue) ([]byte, error) {
	headSize := 0
	for _, ct := range childTypes {
		if ct.Dynamic() {
			headSize += 32
		} else {
			headSize += ct.standardStaticWordSize()
		}
	}
	head := make([]byte, 0, headSize)
	tail := make([]byte, 0)
	offsetBounds, _ := NewUint(ctx, 256)
	for i, ct := range childTypes {
		enc, err := ct.encodeStandard(ctx, indexPath(path, i), children[i])
		if err != nil {
			return nil, err
		}
		if ct.Dynamic() {
			offset := headSize + len(tail)
			head = append(head, offsetBounds.SerializeTwosComplement(big.NewInt(int64(offset)), 32)...)
			tail = append(tail, enc...)
		} else {
			head = append(head, enc...)
		}
	}
	return append(head, tail...), nil
}

func (tc *typeComponent) encodeElementary(ctx context.Context, path string, cv *ComponentValue) ([]byte, error) {
	et := tc.elementaryType
	switch et {
	case ElementaryTypeBool:
		word := make([]byte, 32)
		if cv.Value.(bool) {
			word[31] = 1
		}
		return word, nil

	case ElementaryTypeInt:
		bounds, _ := NewUint(ctx, tc.m)
		return bounds.SerializeTwosComplement(cv.Value.(*big.Int), 32), nil

	case ElementaryTypeUint:
		bounds, _ := NewUint(ctx, tc.m)
		return bounds.SerializeTwosComplement(cv.Value.(*big.Int), 32), nil

	case ElementaryTypeAddress:
		bounds, _ := NewUint(ctx, 160)
		return bounds.SerializeTwosComplement(cv.Value.(*big.Int), 32), nil

	case ElementaryTypeFixed:
		bounds, _ := NewUint(ctx, tc.m)
		return bounds.SerializeTwosComplement(cv.Value.(*Decimal).Unscaled, 32), nil

	case ElementaryTypeUfixed:
		bounds, _ := NewUint(ctx, tc.m)
		return bounds.SerializeTwosComplement(cv.Value.(*Decimal).Unscaled, 32), nil

	case ElementaryTypeFunction:
		word := make([]byte, 32)
		copy(word, cv.Value.([]byte))
		return word, nil

	case ElementaryTypeBytes:
		b := cv.Value.([]byte)
		if tc.elementarySuffix == "" {
			lenBounds, _ := NewUint(ctx, 256)
			lenWord := lenBounds.SerializeTwosComplement(big.NewInt(int64(len(b))), 32)
			padded := make([]byte, roundUpTo32(len(b)))
			copy(padded, b)
			return append(lenWord, padded...), nil
		}
		word := make([]byte, 32)
		copy(word, b)
		return word, nil

	case ElementaryTypeString:
		s := []byte(cv.Value.(string))
		lenBounds, _ := NewUint(ctx, 256)
		lenWord := lenBounds.SerializeTwosComplement(big.NewInt(int64(len(s))), 32)
		padded := make([]byte, roundUpTo32(len(s)))
		copy(padded, s)
		return append(lenWord, padded...), nil

	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgUnknownABIElementaryType, et, path)
	}
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
