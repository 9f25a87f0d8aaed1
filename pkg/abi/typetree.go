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
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/karlseguin/ccache"

	"github.com/kaleido-abi/abicodec/internal/abimsgs"
)

// DynamicLength is the arrayLength value recorded for a variable-length array ("T[]").
const DynamicLength = -1

// maxTypeStringLength bounds the textual descriptor accepted by ParseTypeString (spec §7).
const maxTypeStringLength = 8 * 1024

// maxParseDepth bounds the recursion of both the descriptor parser and the JSON/Parameter
// tree walker (spec §7).
const maxParseDepth = 64

// TypeComponent is a modelled representation of a node in an ABI type tree - a tuple, an
// array (fixed or dynamic), or an elementary type (including nested arrays of elementary
// types, all the way down). The canonical name returned by String() is the sole identity
// of the node: two components with the same String() are the same type.
type TypeComponent interface {
	String() string                     // the canonical type signature for this node
	ComponentType() ComponentType       // tuple, array, or elementary
	ElementaryType() ElementaryTypeInfo // non-nil only for elementary components
	ElementarySuffix() string           // the raw suffix text ("256", "8x18", "32", "")
	M() uint16                          // bit-width / byte-length suffix dimension
	N() uint16                          // scale dimension (fixed/ufixed only)
	ArrayLength() int                   // fixed array length, or DynamicLength
	ArrayChild() TypeComponent          // non-nil only for array components
	TupleChildren() []TypeComponent     // non-nil only for tuple components
	KeyName() string                    // optional field name - not part of canonical identity
	Dynamic() bool                      // true if this node's encoded length depends on its value
}

type ComponentType int

const (
	ElementaryComponent ComponentType = iota
	FixedArrayComponent
	DynamicArrayComponent
	TupleComponent
)

type typeComponent struct {
	cType            ComponentType
	elementaryType   *elementaryTypeInfo
	elementarySuffix string
	m                uint16
	n                uint16
	arrayLength      int
	arrayChild       *typeComponent
	tupleChildren    []*typeComponent
	keyName          string
}

// elementaryTypeInfo defines the string parsing rules for one elementary type name.
type elementaryTypeInfo struct {
	name          string
	suffixType    suffixType
	defaultSuffix string
	mMin          uint16
	mMax          uint16
	mMod          uint16
	nMin          uint16
	nMax          uint16
}

// ElementaryTypeInfo represents the rules for each elementary type understood by this parser.
type ElementaryTypeInfo interface {
	String() string
}

func (et *elementaryTypeInfo) String() string {
	switch et.suffixType {
	case suffixTypeMOptional, suffixTypeMRequired:
		s := fmt.Sprintf("%s<M> (%d <= M <= %d)", et.name, et.mMin, et.mMax)
		if et.mMod != 0 {
			s = fmt.Sprintf("%s (M mod %d == 0)", s, et.mMod)
		}
		if et.suffixType == suffixTypeMOptional {
			s = fmt.Sprintf("%s / %s", et.name, s)
		}
		if et.defaultSuffix != "" {
			s = fmt.Sprintf("%s (%s == %s%s)", s, et.name, et.name, et.defaultSuffix)
		}
		return s
	case suffixTypeMxNRequired:
		s := fmt.Sprintf("%s<M>x<N> (%d <= M <= %d) (%d <= N <= %d)", et.name, et.mMin, et.mMax, et.nMin, et.nMax)
		if et.mMod != 0 {
			s = fmt.Sprintf("%s (M mod %d == 0)", s, et.mMod)
		}
		if et.defaultSuffix != "" {
			s = fmt.Sprintf("%s (%s == %s%s)", s, et.name, et.name, et.defaultSuffix)
		}
		return s
	default:
		return et.name
	}
}

var elementaryTypes = map[string]*elementaryTypeInfo{}

func registerElementaryType(et elementaryTypeInfo) *elementaryTypeInfo {
	p := &et
	elementaryTypes[et.name] = p
	return p
}

var (
	ElementaryTypeInt = registerElementaryType(elementaryTypeInfo{
		name: "int", suffixType: suffixTypeMRequired, defaultSuffix: "256",
		mMin: 8, mMax: 256, mMod: 8,
	})
	ElementaryTypeUint = registerElementaryType(elementaryTypeInfo{
		name: "uint", suffixType: suffixTypeMRequired, defaultSuffix: "256",
		mMin: 8, mMax: 256, mMod: 8,
	})
	ElementaryTypeAddress = registerElementaryType(elementaryTypeInfo{
		name: "address", suffixType: suffixTypeNone,
	})
	ElementaryTypeBool = registerElementaryType(elementaryTypeInfo{
		name: "bool", suffixType: suffixTypeNone,
	})
	ElementaryTypeFixed = registerElementaryType(elementaryTypeInfo{
		name: "fixed", suffixType: suffixTypeMxNRequired, defaultSuffix: "128x18",
		mMin: 8, mMax: 256, mMod: 8, nMin: 0, nMax: 80,
	})
	ElementaryTypeUfixed = registerElementaryType(elementaryTypeInfo{
		name: "ufixed", suffixType: suffixTypeMxNRequired, defaultSuffix: "128x18",
		mMin: 8, mMax: 256, mMod: 8, nMin: 0, nMax: 80,
	})
	ElementaryTypeBytes = registerElementaryType(elementaryTypeInfo{
		name: "bytes", suffixType: suffixTypeMOptional, mMin: 1, mMax: 32,
	})
	ElementaryTypeFunction = registerElementaryType(elementaryTypeInfo{
		name: "function", suffixType: suffixTypeNone,
	})
	ElementaryTypeString = registerElementaryType(elementaryTypeInfo{
		name: "string", suffixType: suffixTypeNone,
	})
	ElementaryTypeTuple = registerElementaryType(elementaryTypeInfo{
		name: "tuple", suffixType: suffixTypeNone,
	})
)

type suffixType int

const (
	suffixTypeNone        suffixType = iota // no suffix - "address", "bool"
	suffixTypeMOptional                     // suffix is optional - "bytes" / "bytes32"
	suffixTypeMRequired                     // suffix always present in canonical form - "uint256"
	suffixTypeMxNRequired                   // two-dimensional suffix - "ufixed128x18"
)

// internCache is the process-wide mapping from canonical type name to singleton elementary
// node (spec §4.2, §5). It is a bounded LRU rather than an unbounded map so that parsing a
// large number of distinct (but elementary) canonical strings over the process lifetime
// cannot grow memory without limit.
var internCache = ccache.New(ccache.Configure().MaxSize(4096).ItemsToPrune(64))

const internTTL = 24 * time.Hour

// internMu makes the lookup-or-insert in internElementary atomic: ccache.Fetch on its own
// is a separate get and set, so two racing callers could each build and store a node.
var internMu sync.Mutex

// internElementary returns the process-wide singleton for a fully-resolved elementary node,
// creating and caching it on first use. Concurrent callers racing on the same key both get
// back the same node, because the lookup and the insert happen under internMu.
func internElementary(key string, build func() *typeComponent) *typeComponent {
	internMu.Lock()
	defer internMu.Unlock()
	item, _ := internCache.Fetch(key, internTTL, func() (interface{}, error) {
		return build(), nil
	})
	return item.Value().(*typeComponent)
}

// cloneWithName returns a shallow copy of tc carrying the supplied field name. Used when a
// tuple child references an interned (shared) primitive node but needs its own name - the
// interned node itself is never mutated.
func cloneWithName(tc *typeComponent, name string) *typeComponent {
	if name == "" {
		return tc
	}
	cp := *tc
	cp.keyName = name
	return &cp
}

func (tc *typeComponent) String() string {
	switch tc.cType {
	case ElementaryComponent:
		return tc.elementaryType.name + tc.elementarySuffix
	case FixedArrayComponent:
		return fmt.Sprintf("%s[%d]", tc.arrayChild.String(), tc.arrayLength)
	case DynamicArrayComponent:
		return tc.arrayChild.String() + "[]"
	case TupleComponent:
		buff := new(strings.Builder)
		buff.WriteByte('(')
		for i, child := range tc.tupleChildren {
			if i > 0 {
				buff.WriteByte(',')
			}
			buff.WriteString(child.String())
		}
		buff.WriteByte(')')
		return buff.String()
	default:
		return ""
	}
}

func (tc *typeComponent) ComponentType() ComponentType { return tc.cType }
func (tc *typeComponent) ElementaryType() ElementaryTypeInfo {
	if tc.elementaryType == nil {
		return nil
	}
	return tc.elementaryType
}
func (tc *typeComponent) ElementarySuffix() string { return tc.elementarySuffix }
func (tc *typeComponent) M() uint16                { return tc.m }
func (tc *typeComponent) N() uint16                { return tc.n }
func (tc *typeComponent) ArrayLength() int         { return tc.arrayLength }
func (tc *typeComponent) KeyName() string          { return tc.keyName }

func (tc *typeComponent) ArrayChild() TypeComponent {
	if tc.arrayChild == nil {
		return nil
	}
	return tc.arrayChild
}

func (tc *typeComponent) TupleChildren() []TypeComponent {
	if tc.cType != TupleComponent {
		return nil
	}
	children := make([]TypeComponent, len(tc.tupleChildren))
	for i, c := range tc.tupleChildren {
		children[i] = c
	}
	return children
}

// Dynamic reports whether tc's encoded length depends on the value it holds (spec §3).
func (tc *typeComponent) Dynamic() bool {
	switch tc.cType {
	case TupleComponent:
		for _, c := range tc.tupleChildren {
			if c.Dynamic() {
				return true
			}
		}
		return false
	case FixedArrayComponent:
		return tc.arrayChild.Dynamic()
	case DynamicArrayComponent:
		return true
	case ElementaryComponent:
		if tc.elementaryType == ElementaryTypeString {
			return true
		}
		if tc.elementaryType == ElementaryTypeBytes && tc.elementarySuffix == "" {
			return true
		}
		return false
	default:
		return false
	}
}

// size returns the tuple/array arity (spec "Tuple → ordered sequence whose arity matches size()").
func (tc *typeComponent) size() int {
	switch tc.cType {
	case TupleComponent:
		return len(tc.tupleChildren)
	case FixedArrayComponent:
		return tc.arrayLength
	default:
		return 0
	}
}

// ParseTypeString is the TypeFactory of spec §4.2: it lexes a standalone canonical (or
// alias) type descriptor - e.g. "uint256", "bytes3[2]", "(uint256,bytes,int8[3])" - into a
// type tree, without requiring a JSON ABI Parameter wrapper.
func ParseTypeString(ctx context.Context, descriptor string) (TypeComponent, error) {
	if len(descriptor) == 0 {
		return nil, i18n.NewError(ctx, abimsgs.MsgEmptyTypeString)
	}
	if len(descriptor) > maxTypeStringLength {
		return nil, i18n.NewError(ctx, abimsgs.MsgDescriptorTooLong, len(descriptor), maxTypeStringLength)
	}
	p := &descriptorParser{ctx: ctx, s: descriptor}
	tc, err := p.parseType(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, i18n.NewError(ctx, abimsgs.MsgUnexpectedTrailingChar, p.pos, p.s, string(p.s[p.pos]))
	}
	return tc, nil
}

type descriptorParser struct {
	ctx context.Context
	s   string
	pos int
}

// parseType := base suffix*
func (p *descriptorParser) parseType(depth int) (*typeComponent, error) {
	if depth > maxParseDepth {
		return nil, i18n.NewError(p.ctx, abimsgs.MsgRecursionTooDeep, maxParseDepth)
	}
	var base *typeComponent
	var err error
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		base, err = p.parseTuple(depth)
	} else {
		base, err = p.parseBase()
	}
	if err != nil {
		return nil, err
	}
	return p.parseArraySuffixes(base, depth)
}

// tuple := '(' (type (',' type)*)? ')'
func (p *descriptorParser) parseTuple(depth int) (*typeComponent, error) {
	start := p.pos
	p.pos++ // consume '('
	children := []*typeComponent{}
	if p.pos < len(p.s) && p.s[p.pos] == ')' {
		p.pos++
		return &typeComponent{cType: TupleComponent, tupleChildren: children}, nil
	}
	for {
		child, err := p.parseType(depth + 1)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		if p.pos >= len(p.s) {
			return nil, i18n.NewError(p.ctx, abimsgs.MsgUnterminatedTuple, start, p.s)
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
			continue
		case ')':
			p.pos++
			return &typeComponent{cType: TupleComponent, tupleChildren: children}, nil
		default:
			return nil, i18n.NewError(p.ctx, abimsgs.MsgUnexpectedTrailingChar, p.pos, p.s, string(p.s[p.pos]))
		}
	}
}

// base := 'uint' digits? | 'int' digits? | 'address' | 'bool' | 'bytes' digits? | 'string'
//       | ('u'|'') 'fixed' (digits 'x' digits)?
func (p *descriptorParser) parseBase() (*typeComponent, error) {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= 'a' && p.s[p.pos] <= 'z' {
		p.pos++
	}
	name := p.s[start:p.pos]
	et, ok := elementaryTypes[name]
	if !ok || et == ElementaryTypeTuple {
		return nil, i18n.NewError(p.ctx, abimsgs.MsgUnknownElementaryType, name, p.s)
	}

	suffixStart := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != '[' && p.s[p.pos] != ',' && p.s[p.pos] != ')' {
		p.pos++
	}
	suffix := p.s[suffixStart:p.pos]

	switch et.suffixType {
	case suffixTypeNone:
		if suffix != "" {
			return nil, i18n.NewError(p.ctx, abimsgs.MsgUnsupportedABISuffix, suffix, p.s, et.name)
		}
		return internElementary(name, func() *typeComponent {
			return &typeComponent{cType: ElementaryComponent, elementaryType: et}
		}), nil

	case suffixTypeMOptional:
		if suffix == "" {
			return internElementary(name, func() *typeComponent {
				return &typeComponent{cType: ElementaryComponent, elementaryType: et}
			}), nil
		}
		m, err := parseMDigits(p.ctx, p.s, et, suffix)
		if err != nil {
			return nil, err
		}
		canon := name + suffix
		return internElementary(canon, func() *typeComponent {
			return &typeComponent{cType: ElementaryComponent, elementaryType: et, elementarySuffix: suffix, m: m}
		}), nil

	case suffixTypeMRequired:
		useSuffix := suffix
		if useSuffix == "" {
			useSuffix = et.defaultSuffix
		}
		m, err := parseMDigits(p.ctx, p.s, et, useSuffix)
		if err != nil {
			return nil, err
		}
		canon := name + useSuffix
		return internElementary(canon, func() *typeComponent {
			return &typeComponent{cType: ElementaryComponent, elementaryType: et, elementarySuffix: useSuffix, m: m}
		}), nil

	case suffixTypeMxNRequired:
		useSuffix := suffix
		if useSuffix == "" {
			useSuffix = et.defaultSuffix
		}
		m, n, err := parseMxNDigits(p.ctx, p.s, et, useSuffix)
		if err != nil {
			return nil, err
		}
		canon := name + useSuffix
		return internElementary(canon, func() *typeComponent {
			return &typeComponent{cType: ElementaryComponent, elementaryType: et, elementarySuffix: useSuffix, m: m, n: n}
		}), nil

	default:
		return nil, i18n.NewError(p.ctx, abimsgs.MsgUnknownElementaryType, name, p.s)
	}
}

// suffix := ('[' digits? ']')*
func (p *descriptorParser) parseArraySuffixes(child *typeComponent, depth int) (*typeComponent, error) {
	if depth > maxParseDepth {
		return nil, i18n.NewError(p.ctx, abimsgs.MsgRecursionTooDeep, maxParseDepth)
	}
	if p.pos >= len(p.s) || p.s[p.pos] != '[' {
		return child, nil
	}
	p.pos++ // consume '['
	digitsStart := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ']' {
		p.pos++
	}
	if p.pos >= len(p.s) {
		return nil, i18n.NewError(p.ctx, abimsgs.MsgInvalidABIArraySpec, p.s)
	}
	digits := p.s[digitsStart:p.pos]
	p.pos++ // consume ']'

	var ac *typeComponent
	if digits == "" {
		ac = &typeComponent{cType: DynamicArrayComponent, arrayChild: child, arrayLength: DynamicLength}
	} else {
		length, err := parseArrayLength(p.ctx, p.s, digits)
		if err != nil {
			return nil, err
		}
		ac = &typeComponent{cType: FixedArrayComponent, arrayChild: child, arrayLength: length}
	}
	return p.parseArraySuffixes(ac, depth+1)
}

// parseMDigits validates a decimal bit/byte-width suffix against an elementary type's <M> rules.
// Rejects leading-zero and out-of-range widths (spec §4.2).
func parseMDigits(ctx context.Context, descriptor string, et *elementaryTypeInfo, suffix string) (uint16, error) {
	if err := rejectLeadingZero(ctx, descriptor, suffix); err != nil {
		return 0, err
	}
	val, err := strconv.ParseUint(suffix, 10, 16)
	if err != nil {
		return 0, i18n.WrapError(ctx, err, abimsgs.MsgInvalidABISuffix, descriptor, et.String())
	}
	m := uint16(val)
	if m < et.mMin || m > et.mMax {
		return 0, i18n.NewError(ctx, abimsgs.MsgInvalidABISuffix, descriptor, et.String())
	}
	if et.mMod != 0 && (m%et.mMod) != 0 {
		return 0, i18n.NewError(ctx, abimsgs.MsgInvalidABISuffix, descriptor, et.String())
	}
	return m, nil
}

// parseMxNDigits validates the "256x18" part of a "ufixed256x18" descriptor.
func parseMxNDigits(ctx context.Context, descriptor string, et *elementaryTypeInfo, suffix string) (uint16, uint16, error) {
	idx := strings.IndexByte(suffix, 'x')
	if idx <= 0 || idx >= len(suffix)-1 {
		return 0, 0, i18n.NewError(ctx, abimsgs.MsgInvalidABISuffix, descriptor, et.String())
	}
	m, err := parseMDigits(ctx, descriptor, et, suffix[:idx])
	if err != nil {
		return 0, 0, err
	}
	nStr := suffix[idx+1:]
	if err := rejectLeadingZero(ctx, descriptor, nStr); err != nil {
		return 0, 0, err
	}
	nVal, err := strconv.ParseUint(nStr, 10, 16)
	if err != nil {
		return 0, 0, i18n.WrapError(ctx, err, abimsgs.MsgInvalidABISuffix, descriptor, et.String())
	}
	n := uint16(nVal)
	if n < et.nMin || n > et.nMax {
		return 0, 0, i18n.NewError(ctx, abimsgs.MsgInvalidABISuffix, descriptor, et.String())
	}
	return m, n, nil
}

// parseArrayLength validates the "8" in "uint256[8]". Rejects leading zeros.
func parseArrayLength(ctx context.Context, descriptor string, digits string) (int, error) {
	if err := rejectLeadingZero(ctx, descriptor, digits); err != nil {
		return 0, err
	}
	val, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, i18n.WrapError(ctx, err, abimsgs.MsgInvalidABIArraySpec, descriptor)
	}
	return int(val), nil
}

// rejectLeadingZero rejects "08" and "0" (zero widths are always invalid per spec §4.2),
// and an empty digit string too; the bare forms ("bytes", "T[]") are recognised by the
// callers before this is reached.
func rejectLeadingZero(ctx context.Context, descriptor string, digits string) error {
	if digits == "" {
		return i18n.NewError(ctx, abimsgs.MsgInvalidABIArraySpec, descriptor)
	}
	if digits == "0" || (digits[0] == '0' && len(digits) > 1) {
		return i18n.NewError(ctx, abimsgs.MsgInvalidABIArraySpec, descriptor)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return i18n.NewError(ctx, abimsgs.MsgInvalidABIArraySpec, descriptor)
		}
	}
	return nil
}
