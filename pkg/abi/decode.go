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
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"

	"context"

	"github.com/kaleido-abi/abicodec/internal/abimsgs"
)

// maxOffsetOrLength is the largest value a 31-bit-clamped offset or length word may hold
// (spec §4.4 "31-bit offset overflow checks") - values above this cannot be a sane byte
// offset/length into any buffer Go can hold in memory on a 32-bit int, and headlong-style
// decoders reject them outright rather than risk an enormous allocation.
const maxOffsetOrLength = 0x7fffffff

// minOffset is the smallest legal offset into the tail region: an offset of less than one
// word can never point past the head of even a single-field tuple.
const minOffset = 0x20

// absentMarker is the sentinel value.Value is set to by a partial decode for any field the
// caller did not request (spec §4.8 "partial decode with an ABSENT sentinel").
type absentMarker struct{}

// Absent is the sentinel stored as a ComponentValue.Value when DecodeABIDataPartial skips it.
var Absent interface{} = absentMarker{}

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v interface{}) bool {
	_, ok := v.(absentMarker)
	return ok
}

// DecodeABIData is the standard (head/tail) ABI decoder of spec §4.4: it decodes the whole
// of tc from data, rejecting any unconsumed trailing bytes.
func DecodeABIData(ctx context.Context, tc TypeComponent, data []byte) (*ComponentValue, error) {
	internal, ok := tc.(*typeComponent)
	if !ok {
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc)
	}
	cv, consumed, err := internal.decodeStandard(ctx, "", data, nil)
	if err != nil {
		return nil, err
	}
	if consumed < len(data) {
		return nil, i18n.NewError(ctx, abimsgs.MsgTrailingBytes, len(data)-consumed, internal.String())
	}
	return cv, nil
}

// DecodeABIDataPartial decodes only the top-level tuple field indices listed, in strictly
// increasing order; every other field's ComponentValue carries the Absent sentinel instead
// of being walked at all. Unlike DecodeABIData it tolerates trailing bytes, since a caller
// asking for a prefix of fields has by definition not asked to account for the whole buffer.
func DecodeABIDataPartial(ctx context.Context, tc TypeComponent, data []byte, indices []int) (*ComponentValue, error) {
	internal, ok := tc.(*typeComponent)
	if !ok || internal.cType != TupleComponent {
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc)
	}
	last := -1
	for _, idx := range indices {
		if idx <= last {
			return nil, i18n.NewError(ctx, abimsgs.MsgIndicesNotIncreasing, last, idx)
		}
		if idx < 0 || idx >= len(internal.tupleChildren) {
			return nil, i18n.NewError(ctx, abimsgs.MsgIndexOutOfRange, idx, len(internal.tupleChildren)-1)
		}
		last = idx
	}
	include := make(map[int]bool, len(indices))
	for _, idx := range indices {
		include[idx] = true
	}
	cv, _, err := internal.decodeStandard(ctx, "", data, include)
	return cv, err
}

// decodeStandard decodes tc out of frame (a buffer whose byte 0 is the start of tc's own
// head/tail region - offsets inside are always relative to this frame, never the outer
// buffer, exactly mirroring how encodeHeadTail produces them). include, when non-nil, is
// read only at the immediate tuple level: indices absent from it are skipped (spec §4.8).
// It returns the ComponentValue plus the number of bytes of frame actually consumed, used
// by the top level to detect trailing bytes and by composites to extend their own watermark.
func (tc *typeComponent) decodeStandard(ctx context.Context, path string, frame []byte, include map[int]bool) (*ComponentValue, int, error) {
	switch tc.cType {
	case ElementaryComponent:
		return tc.decodeElementary(ctx, path, frame)
	case FixedArrayComponent:
		childTypes := make([]*typeComponent, tc.arrayLength)
		for i := range childTypes {
			childTypes[i] = tc.arrayChild
		}
		children, consumed, err := decodeHeadTail(ctx, path, frame, childTypes, nil)
		if err != nil {
			return nil, 0, err
		}
		return &ComponentValue{Component: tc, Children: children}, consumed, nil
	case TupleComponent:
		children, consumed, err := decodeHeadTail(ctx, path, frame, tc.tupleChildren, include)
		if err != nil {
			return nil, 0, err
		}
		return &ComponentValue{Component: tc, Children: children}, consumed, nil
	case DynamicArrayComponent:
		if len(frame) < 32 {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIArrayCount, path)
		}
		count, err := readOffsetOrLength(ctx, frame[:32], path)
		if err != nil {
			return nil, 0, err
		}
		childTypes := make([]*typeComponent, count)
		for i := range childTypes {
			childTypes[i] = tc.arrayChild
		}
		children, consumed, err := decodeHeadTail(ctx, path, frame[32:], childTypes, nil)
		if err != nil {
			return nil, 0, err
		}
		return &ComponentValue{Component: tc, Children: children}, 32 + consumed, nil
	default:
		return nil, 0, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc.cType)
	}
}

// decodeHeadTail is the decode-side mirror of encodeHeadTail: it walks the head words of a
// tuple/array-element sequence, following offsets into the tail for dynamic children, while
// enforcing the lenient-forward / no-backward-jump rule and the minimum-offset rule.
func decodeHeadTail(ctx context.Context, path string, frame []byte, childTypes []*typeComponent, include map[int]bool) ([]*ComponentValue, int, error) {
	headSize := 0
	for _, ct := range childTypes {
		if ct.Dynamic() {
			headSize += 32
		} else {
			headSize += ct.standardStaticWordSize()
		}
	}
	if len(frame) < headSize {
		return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, path, path)
	}

	children := make([]*ComponentValue, len(childTypes))
	cursor := 0
	watermark := headSize
	maxConsumed := headSize

	for i, ct := range childTypes {
		childPath := indexPath(path, i)
		skip := include != nil && !include[i]

		if ct.Dynamic() {
			offset, err := readOffsetOrLength(ctx, frame[cursor:cursor+32], childPath)
			if err != nil {
				return nil, 0, err
			}
			cursor += 32
			if skip {
				children[i] = &ComponentValue{Component: ct, Value: Absent}
				continue
			}
			if offset < minOffset {
				return nil, 0, i18n.NewError(ctx, abimsgs.MsgOffsetTooSmall, offset, childPath)
			}
			if offset < watermark {
				return nil, 0, i18n.NewError(ctx, abimsgs.MsgOffsetGoesBackwards, offset, childPath, watermark)
			}
			if offset > len(frame) {
				return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, childPath, childPath)
			}
			cv, consumed, err := ct.decodeStandard(ctx, childPath, frame[offset:], nil)
			if err != nil {
				return nil, 0, err
			}
			children[i] = cv
			watermark = offset
			if offset+consumed > maxConsumed {
				maxConsumed = offset + consumed
			}
		} else {
			width := ct.standardStaticWordSize()
			if skip {
				children[i] = &ComponentValue{Component: ct, Value: Absent}
				cursor += width
				continue
			}
			cv, _, err := ct.decodeStandard(ctx, childPath, frame[cursor:cursor+width], nil)
			if err != nil {
				return nil, 0, err
			}
			children[i] = cv
			cursor += width
		}
	}
	return children, maxConsumed, nil
}

func (tc *typeComponent) decodeElementary(ctx context.Context, path string, frame []byte) (*ComponentValue, int, error) {
	et := tc.elementaryType
	if len(frame) < 32 {
		return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
	}
	switch et {
	case ElementaryTypeBool:
		word := frame[:32]
		for _, b := range word[:31] {
			if b != 0 {
				return nil, 0, i18n.NewError(ctx, abimsgs.MsgInvalidBoolABIInput, word, "non-zero padding", path)
			}
		}
		return &ComponentValue{Component: tc, Value: word[31] != 0}, 32, nil

	case ElementaryTypeInt:
		bounds, _ := NewUint(ctx, tc.m)
		v := bounds.ParseTwosComplement(frame[:32])
		return &ComponentValue{Component: tc, Value: v}, 32, nil

	case ElementaryTypeUint:
		v := new(big.Int).SetBytes(frame[:32])
		bounds, _ := NewUint(ctx, tc.m)
		if _, err := bounds.ToUnsigned(ctx, v); err != nil {
			return nil, 0, err
		}
		return &ComponentValue{Component: tc, Value: v}, 32, nil

	case ElementaryTypeAddress:
		v := new(big.Int).SetBytes(frame[:32])
		bounds, _ := NewUint(ctx, 160)
		if _, err := bounds.ToUnsigned(ctx, v); err != nil {
			return nil, 0, err
		}
		return &ComponentValue{Component: tc, Value: v}, 32, nil

	case ElementaryTypeFixed:
		bounds, _ := NewUint(ctx, tc.m)
		unscaled := bounds.ParseTwosComplement(frame[:32])
		return &ComponentValue{Component: tc, Value: &Decimal{Unscaled: unscaled, Scale: tc.n}}, 32, nil

	case ElementaryTypeUfixed:
		unscaled := new(big.Int).SetBytes(frame[:32])
		bounds, _ := NewUint(ctx, tc.m)
		if _, err := bounds.ToUnsigned(ctx, unscaled); err != nil {
			return nil, 0, err
		}
		return &ComponentValue{Component: tc, Value: &Decimal{Unscaled: unscaled, Scale: tc.n}}, 32, nil

	case ElementaryTypeFunction:
		b := make([]byte, 24)
		copy(b, frame[:24])
		return &ComponentValue{Component: tc, Value: b}, 32, nil

	case ElementaryTypeBytes:
		if tc.elementarySuffix != "" {
			b := make([]byte, tc.m)
			copy(b, frame[:tc.m])
			return &ComponentValue{Component: tc, Value: b}, 32, nil
		}
		length, err := readOffsetOrLength(ctx, frame[:32], path)
		if err != nil {
			return nil, 0, err
		}
		total := 32 + roundUpTo32(length)
		if len(frame) < total {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
		}
		b := make([]byte, length)
		copy(b, frame[32:32+length])
		return &ComponentValue{Component: tc, Value: b}, total, nil

	case ElementaryTypeString:
		length, err := readOffsetOrLength(ctx, frame[:32], path)
		if err != nil {
			return nil, 0, err
		}
		total := 32 + roundUpTo32(length)
		if len(frame) < total {
			return nil, 0, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, tc.String(), path)
		}
		s := string(frame[32 : 32+length])
		return &ComponentValue{Component: tc, Value: s}, total, nil

	default:
		return nil, 0, i18n.NewError(ctx, abimsgs.MsgUnknownABIElementaryType, et, path)
	}
}

// readOffsetOrLength parses a 32-byte head word as an offset or length, enforcing the
// non-negative, 31-bit-clamped range every such word must satisfy (spec §4.4).
func readOffsetOrLength(ctx context.Context, word []byte, path string) (int, error) {
	v := new(big.Int).SetBytes(word)
	if !v.IsInt64() || v.Int64() > maxOffsetOrLength {
		return 0, i18n.NewError(ctx, abimsgs.MsgOffsetOverflow, v.String(), path)
	}
	return int(v.Int64()), nil
}
