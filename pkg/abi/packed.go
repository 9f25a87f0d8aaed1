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

	"github.com/hyperledger/firefly-common/pkg/i18n"

	"github.com/kaleido-abi/abicodec/internal/abimsgs"
)

// EncodePacked is the non-standard "packed" encoder of spec §4.5 (abi.encodePacked style):
// no length prefixes or offsets, and no padding at all except that elements of an array of a
// non-bytesN elementary type are written into a full 32-byte unit each, the same way the
// standard encoder would write them. Modeled structurally on encode.go's per-type dispatch.
func EncodePacked(ctx context.Context, tc TypeComponent, cv *ComponentValue) ([]byte, error) {
	internal, ok := tc.(*typeComponent)
	if !ok {
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc)
	}
	if _, err := internal.Validate(ctx, "", cv); err != nil {
		return nil, err
	}
	return internal.encodePacked(ctx, "", cv, false)
}

func (tc *typeComponent) encodePacked(ctx context.Context, path string, cv *ComponentValue, inArray bool) ([]byte, error) {
	switch tc.cType {
	case ElementaryComponent:
		return tc.encodePackedElementary(ctx, path, cv, inArray)
	case TupleComponent:
		out := make([]byte, 0)
		for i, childType := range tc.tupleChildren {
			enc, err := childType.encodePacked(ctx, indexPath(path, i), cv.Children[i], false)
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return out, nil
	case FixedArrayComponent, DynamicArrayComponent:
		out := make([]byte, 0)
		for i, child := range cv.Children {
			enc, err := tc.arrayChild.encodePacked(ctx, indexPath(path, i), child, true)
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return out, nil
	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc.cType)
	}
}

func (tc *typeComponent) encodePackedElementary(ctx context.Context, path string, cv *ComponentValue, inArray bool) ([]byte, error) {
	et := tc.elementaryType

	// Inside an array, every non-bytesN elementary element is padded out to a full word -
	// spec §4.5 "array elements of non-bytesN types get unit-padded".
	if inArray && !(et == ElementaryTypeBytes && tc.elementarySuffix != "") {
		return tc.encodeElementary(ctx, path, cv)
	}

	switch et {
	case ElementaryTypeBool:
		if cv.Value.(bool) {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case ElementaryTypeInt:
		bounds, _ := NewUint(ctx, tc.m)
		return bounds.SerializeTwosComplement(cv.Value.(*big.Int), int(tc.m)/8), nil

	case ElementaryTypeUint:
		bounds, _ := NewUint(ctx, tc.m)
		return bounds.SerializeTwosComplement(cv.Value.(*big.Int), int(tc.m)/8), nil

	case ElementaryTypeAddress:
		bounds, _ := NewUint(ctx, 160)
		return bounds.SerializeTwosComplement(cv.Value.(*big.Int), 20), nil

	case ElementaryTypeFixed, ElementaryTypeUfixed:
		bounds, _ := NewUint(ctx, tc.m)
		return bounds.SerializeTwosComplement(cv.Value.(*Decimal).Unscaled, int(tc.m)/8), nil

	case ElementaryTypeFunction:
		b := make([]byte, 24)
		copy(b, cv.Value.([]byte))
		return b, nil

	case ElementaryTypeBytes:
		b := cv.Value.([]byte)
		if tc.elementarySuffix != "" {
			out := make([]byte, tc.m)
			copy(out, b)
			return out, nil
		}
		return append([]byte(nil), b...), nil

	case ElementaryTypeString:
		return []byte(cv.Value.(string)), nil

	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgUnknownABIElementaryType, et, path)
	}
}

// packedStaticWidth is the number of bytes tc occupies in the packed encoding when tc is
// static - the packed-format analogue of standardStaticWordSize, which cannot be reused here
// since packed widths (e.g. 4 bytes for a uint32) do not match the standard ABI's fixed
// 32-byte word size.
func (tc *typeComponent) packedStaticWidth() int {
	switch tc.cType {
	case ElementaryComponent:
		return tc.elementaryPackedWidth()
	case FixedArrayComponent:
		return tc.arrayLength * tc.arrayChild.packedElementWidth()
	case TupleComponent:
		total := 0
		for _, c := range tc.tupleChildren {
			total += c.packedStaticWidth()
		}
		return total
	default:
		return 0
	}
}

// packedElementWidth is the packed width of one element of an array of tc: elementary
// elements other than bytesN are unit-padded to a full 32-byte word (spec §4.5), bytesN
// elements use their natural N-byte width, and composite elements recurse plainly.
func (tc *typeComponent) packedElementWidth() int {
	if tc.cType == ElementaryComponent && !(tc.elementaryType == ElementaryTypeBytes && tc.elementarySuffix != "") {
		return 32
	}
	return tc.packedStaticWidth()
}

// elementaryPackedWidth is the natural (non-array-context) packed width of an elementary type.
func (tc *typeComponent) elementaryPackedWidth() int {
	switch tc.elementaryType {
	case ElementaryTypeBool:
		return 1
	case ElementaryTypeInt, ElementaryTypeUint, ElementaryTypeFixed, ElementaryTypeUfixed:
		return int(tc.m) / 8
	case ElementaryTypeAddress:
		return 20
	case ElementaryTypeFunction:
		return 24
	case ElementaryTypeBytes:
		if tc.elementarySuffix != "" {
			return int(tc.m)
		}
		return 0
	default:
		return 0
	}
}

// packedDynamicChildCount reports how many of tc's direct children have packed-encoded
// lengths that depend on their value (strings, dynamic bytes, dynamic arrays, or any nested
// composite that is itself dynamic) - used for the ambiguity check on decode.
func packedDynamicChildCount(children []*typeComponent) int {
	n := 0
	for _, c := range children {
		if c.Dynamic() {
			n++
		}
	}
	return n
}

// DecodePacked decodes a packed buffer. It is only well-defined when, at every tuple level
// encountered, at most one direct child's packed length is value-dependent - otherwise there
// is no way to know where one field's bytes end and the next begins (spec §4.5
// PACKED_AMBIGUOUS), and this function reports that instead of guessing.
func DecodePacked(ctx context.Context, tc TypeComponent, data []byte) (*ComponentValue, error) {
	internal, ok := tc.(*typeComponent)
	if !ok {
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc)
	}
	cv, consumed, err := internal.decodePacked(ctx, "", data)
	if err != nil {
		return nil, err
	}
	if consumed < len(data) {
		return nil, i18n.NewError(ctx, abimsgs.MsgTrailingBytes, len(data)-consumed, internal.String())
	}
	return cv, nil
}

func (tc *typeComponent) decodePacked(ctx context.Context, path string, data []byte) (*ComponentValue, int, error) {
	switch tc.cType {
	case ElementaryComponent:
		return tc.decodePackedElementary(ctx, path, data, false)

	case TupleComponent:
		if packedDynamicChildCount(tc.tupleChildren) > 1 {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgPackedAmbiguous, tc.String())
		}
		children := make([]*ComponentValue, len(tc.tupleChildren))
		cursor := 0
		for i, childType := range tc.tupleChildren {
			var remaining []byte
			if childType.Dynamic() {
				// the sole dynamic field (if any) greedily consumes everything not
				// claimed by its fixed-width siblings: the bytes from the cursor up
				// to the summed packed width of the siblings that follow it.
				fixedAfter := 0
				for _, later := range tc.tupleChildren[i+1:] {
					fixedAfter += later.packedStaticWidth()
				}
				if len(data)-fixedAfter < cursor {
					return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, indexPath(path, i), path)
				}
				remaining = data[cursor : len(data)-fixedAfter]
			} else {
				width := childType.packedStaticWidth()
				if cursor+width > len(data) {
					return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, indexPath(path, i), path)
				}
				remaining = data[cursor : cursor+width]
			}
			cv, consumed, err := childType.decodePacked(ctx, indexPath(path, i), remaining)
			if err != nil {
				return nil, 0, err
			}
			children[i] = cv
			cursor += consumed
		}
		return &ComponentValue{Component: tc, Children: children}, cursor, nil

	case FixedArrayComponent:
		if tc.arrayChild.Dynamic() {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgPackedAmbiguous, tc.String())
		}
		children := make([]*ComponentValue, tc.arrayLength)
		cursor := 0
		for i := 0; i < tc.arrayLength; i++ {
			cv, consumed, err := tc.arrayChild.decodePackedElementaryOrComposite(ctx, indexPath(path, i), data[cursor:])
			if err != nil {
				return nil, 0, err
			}
			children[i] = cv
			cursor += consumed
		}
		return &ComponentValue{Component: tc, Children: children}, cursor, nil

	case DynamicArrayComponent:
		return nil, 0, i18n.NewError(ctx, abimsgs.MsgPackedAmbiguous, tc.String())

	default:
		return nil, 0, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc.cType)
	}
}

// decodePackedElementaryOrComposite dispatches an array element decode: elementary elements
// use the array unit-padding rule, composite elements (nested tuples/arrays) recurse plainly.
func (tc *typeComponent) decodePackedElementaryOrComposite(ctx context.Context, path string, data []byte) (*ComponentValue, int, error) {
	if tc.cType == ElementaryComponent {
		return tc.decodePackedElementary(ctx, path, data, true)
	}
	return tc.decodePacked(ctx, path, data)
}

func (tc *typeComponent) decodePackedElementary(ctx context.Context, path string, data []byte, inArray bool) (*ComponentValue, int, error) {
	et := tc.elementaryType

	if inArray && !(et == ElementaryTypeBytes && tc.elementarySuffix != "") {
		if len(data) < 32 {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
		}
		return tc.decodeElementary(ctx, path, data[:32])
	}

	switch et {
	case ElementaryTypeBool:
		if len(data) < 1 {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, "bool", path)
		}
		return &ComponentValue{Component: tc, Value: data[0] != 0}, 1, nil

	case ElementaryTypeInt:
		width := int(tc.m) / 8
		if len(data) < width {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
		}
		bounds, _ := NewUint(ctx, tc.m)
		return &ComponentValue{Component: tc, Value: bounds.ParseTwosComplement(data[:width])}, width, nil

	case ElementaryTypeUint:
		width := int(tc.m) / 8
		if len(data) < width {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
		}
		return &ComponentValue{Component: tc, Value: new(big.Int).SetBytes(data[:width])}, width, nil

	case ElementaryTypeAddress:
		if len(data) < 20 {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, "address", path)
		}
		return &ComponentValue{Component: tc, Value: new(big.Int).SetBytes(data[:20])}, 20, nil

	case ElementaryTypeFixed:
		width := int(tc.m) / 8
		if len(data) < width {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
		}
		bounds, _ := NewUint(ctx, tc.m)
		return &ComponentValue{Component: tc, Value: &Decimal{Unscaled: bounds.ParseTwosComplement(data[:width]), Scale: tc.n}}, width, nil

	case ElementaryTypeUfixed:
		width := int(tc.m) / 8
		if len(data) < width {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
		}
		return &ComponentValue{Component: tc, Value: &Decimal{Unscaled: new(big.Int).SetBytes(data[:width]), Scale: tc.n}}, width, nil

	case ElementaryTypeFunction:
		if len(data) < 24 {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, "function", path)
		}
		b := make([]byte, 24)
		copy(b, data[:24])
		return &ComponentValue{Component: tc, Value: b}, 24, nil

	case ElementaryTypeBytes:
		if tc.elementarySuffix != "" {
			if len(data) < int(tc.m) {
				return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
			}
			b := make([]byte, tc.m)
			copy(b, data[:tc.m])
			return &ComponentValue{Component: tc, Value: b}, int(tc.m), nil
		}
		b := append([]byte(nil), data...)
		return &ComponentValue{Component: tc, Value: b}, len(data), nil

	case ElementaryTypeString:
		return &ComponentValue{Component: tc, Value: string(data)}, len(data), nil

	default:
		return nil, 0, i18n.NewError(ctx, abimsgs.MsgUnknownABIElementaryType, et, path)
	}
}
