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

// Package abi implements the Ethereum contract ABI type system: canonical type descriptors,
// value validation, standard and packed encode/decode, and function/event/error selector
// derivation. The JSON ABI fragment format handled by this file is an external collaborator
// - the format contracts compilers emit - not itself part of the type system.
package abi

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"

	"github.com/kaleido-abi/abicodec/internal/abimsgs"
	"github.com/kaleido-abi/abicodec/pkg/ethtypes"
)

// Parameter is a single entry of a JSON ABI fragment's "inputs"/"outputs"/event fields array.
// Grounded on the teacher's pkg/abi/abi.go Parameter struct.
type Parameter struct {
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	InternalType string       `json:"internalType,omitempty"`
	Components   []*Parameter `json:"components,omitempty"`
	Indexed      bool         `json:"indexed,omitempty"`
}

// ParameterArray is an ordered list of Parameter, such as an Entry's Inputs or Outputs.
type ParameterArray []*Parameter

// Entry is one item of a JSON ABI array - a function, constructor, fallback, receive, event,
// or error declaration.
type Entry struct {
	Type            string         `json:"type"`
	Name            string         `json:"name,omitempty"`
	Payable         bool           `json:"payable,omitempty"`
	Constant        bool           `json:"constant,omitempty"`
	Anonymous       bool           `json:"anonymous,omitempty"`
	StateMutability string         `json:"stateMutability,omitempty"`
	Inputs          ParameterArray `json:"inputs,omitempty"`
	Outputs         ParameterArray `json:"outputs,omitempty"`
}

// ABI is a full JSON ABI fragment array, as emitted by solc.
type ABI []*Entry

// Functions returns the subset of entries of type "function".
func (a ABI) Functions() map[string]*Entry {
	out := make(map[string]*Entry)
	for _, e := range a {
		if e.Type == "function" {
			out[e.Name] = e
		}
	}
	return out
}

// Events returns the subset of entries of type "event".
func (a ABI) Events() map[string]*Entry {
	out := make(map[string]*Entry)
	for _, e := range a {
		if e.Type == "event" {
			out[e.Name] = e
		}
	}
	return out
}

// Errors returns the subset of entries of type "error".
func (a ABI) Errors() map[string]*Entry {
	out := make(map[string]*Entry)
	for _, e := range a {
		if e.Type == "error" {
			out[e.Name] = e
		}
	}
	return out
}

// TypeComponentTree parses p.Type (following p.Components for tuples) into a type node.
func (p *Parameter) TypeComponentTree(ctx context.Context) (TypeComponent, error) {
	return p.typeComponentTree(ctx, 0)
}

func (p *Parameter) typeComponentTree(ctx context.Context, depth int) (TypeComponent, error) {
	if depth > maxParseDepth {
		return nil, i18n.NewError(ctx, abimsgs.MsgRecursionTooDeep, maxParseDepth)
	}
	baseName, arraySuffixes, err := splitArraySuffixes(ctx, p.Type)
	if err != nil {
		return nil, err
	}

	var base *typeComponent
	if baseName == "tuple" {
		children := make([]*typeComponent, len(p.Components))
		for i, c := range p.Components {
			child, err := c.typeComponentTree(ctx, depth+1)
			if err != nil {
				return nil, err
			}
			internal := child.(*typeComponent)
			children[i] = cloneWithName(internal, c.Name)
		}
		base = &typeComponent{cType: TupleComponent, tupleChildren: children}
	} else {
		parsed, err := ParseTypeString(ctx, baseName)
		if err != nil {
			return nil, err
		}
		base = parsed.(*typeComponent)
	}

	for i := len(arraySuffixes) - 1; i >= 0; i-- {
		digits := arraySuffixes[i]
		if digits == "" {
			base = &typeComponent{cType: DynamicArrayComponent, arrayChild: base, arrayLength: DynamicLength}
		} else {
			length, err := parseArrayLength(ctx, p.Type, digits)
			if err != nil {
				return nil, err
			}
			base = &typeComponent{cType: FixedArrayComponent, arrayChild: base, arrayLength: length}
		}
	}
	return cloneWithName(base, p.Name), nil
}

// splitArraySuffixes peels the trailing "[N]"/"[]" groups off a JSON Parameter.Type string,
// returning the elementary/tuple base name plus the array digit groups in outer-to-inner
// order (so [0] is the outermost array dimension).
func splitArraySuffixes(ctx context.Context, typeStr string) (string, []string, error) {
	suffixes := []string{}
	rest := typeStr
	for strings.HasSuffix(rest, "]") {
		open := strings.LastIndexByte(rest, '[')
		if open < 0 {
			return "", nil, i18n.NewError(ctx, abimsgs.MsgInvalidABIArraySpec, typeStr)
		}
		suffixes = append(suffixes, rest[open+1:len(rest)-1])
		rest = rest[:open]
	}
	return rest, suffixes, nil
}

// TypeComponentTree builds the tuple type node for a whole ParameterArray (an Entry's Inputs
// or Outputs): an unnamed tuple whose children carry their Parameter.Name.
func (pa ParameterArray) TypeComponentTree(ctx context.Context) (TypeComponent, error) {
	children := make([]*typeComponent, len(pa))
	for i, p := range pa {
		tc, err := p.TypeComponentTree(ctx)
		if err != nil {
			return nil, err
		}
		children[i] = tc.(*typeComponent)
	}
	return &typeComponent{cType: TupleComponent, tupleChildren: children}, nil
}

// AsFunction builds the core Function schema object for a "function"/"constructor"/
// "fallback"/"receive" Entry.
func (e *Entry) AsFunction(ctx context.Context) (*Function, error) {
	inputs, err := e.Inputs.TypeComponentTree(ctx)
	if err != nil {
		return nil, err
	}
	outputs, err := e.Outputs.TypeComponentTree(ctx)
	if err != nil {
		return nil, err
	}
	var variant Variant
	switch e.Type {
	case "function", "":
		variant = VariantOrdinary
	case "constructor":
		variant = VariantConstructor
	case "fallback":
		variant = VariantFallback
	case "receive":
		variant = VariantReceive
	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgUnknownEntryType, e.Type)
	}
	return NewFunction(ctx, variant, e.Name, inputs, outputs, e.StateMutability)
}

// AsEvent builds the core Event schema object for an "event" Entry.
func (e *Entry) AsEvent(ctx context.Context) (*Event, error) {
	inputs, err := e.Inputs.TypeComponentTree(ctx)
	if err != nil {
		return nil, err
	}
	indexed := make([]bool, len(e.Inputs))
	for i, p := range e.Inputs {
		indexed[i] = p.Indexed
	}
	return NewEvent(ctx, e.Name, inputs, indexed, e.Anonymous)
}

// AsError builds the core ContractError schema object for an "error" Entry.
func (e *Entry) AsError(ctx context.Context) (*ContractError, error) {
	inputs, err := e.Inputs.TypeComponentTree(ctx)
	if err != nil {
		return nil, err
	}
	return NewContractError(ctx, e.Name, inputs)
}

// ParseJSONValue walks a decoded JSON value (as produced by encoding/json into
// interface{}/map[string]interface{}/[]interface{}/json.Number/string/bool) against tc,
// coercing it into a ComponentValue tree. Grounded on the teacher's inputparsing.go
// walkInput/walkTupleInput/walkArrayInput, condensed onto the new typeComponent.
func ParseJSONValue(ctx context.Context, tc TypeComponent, path string, raw interface{}) (*ComponentValue, error) {
	internal := tc.(*typeComponent)
	switch internal.cType {
	case TupleComponent:
		return parseJSONTuple(ctx, internal, path, raw)
	case FixedArrayComponent, DynamicArrayComponent:
		return parseJSONArray(ctx, internal, path, raw)
	default:
		return parseJSONElementary(ctx, internal, path, raw)
	}
}

func parseJSONTuple(ctx context.Context, tc *typeComponent, path string, raw interface{}) (*ComponentValue, error) {
	switch v := raw.(type) {
	case []interface{}:
		if len(v) != len(tc.tupleChildren) {
			return nil, i18n.NewError(ctx, abimsgs.MsgTupleABIArrayMismatch, len(v), len(tc.tupleChildren), path)
		}
		children := make([]*ComponentValue, len(v))
		for i, childType := range tc.tupleChildren {
			cv, err := ParseJSONValue(ctx, childType, indexPath(path, i), v[i])
			if err != nil {
				return nil, err
			}
			children[i] = cv
		}
		return &ComponentValue{Component: tc, Children: children}, nil
	case map[string]interface{}:
		children := make([]*ComponentValue, len(tc.tupleChildren))
		for i, childType := range tc.tupleChildren {
			if childType.keyName == "" {
				return nil, i18n.NewError(ctx, abimsgs.MsgTupleInABINoName, i, path)
			}
			fieldVal, ok := v[childType.keyName]
			if !ok {
				return nil, i18n.NewError(ctx, abimsgs.MsgMissingInputKeyABITuple, childType.keyName, path)
			}
			cv, err := ParseJSONValue(ctx, childType, path+"."+childType.keyName, fieldVal)
			if err != nil {
				return nil, err
			}
			children[i] = cv
		}
		return &ComponentValue{Component: tc, Children: children}, nil
	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgTupleABINotArrayOrMap, raw, path)
	}
}

func parseJSONArray(ctx context.Context, tc *typeComponent, path string, raw interface{}) (*ComponentValue, error) {
	v, ok := raw.([]interface{})
	if !ok {
		return nil, i18n.NewError(ctx, abimsgs.MsgMustBeSliceABIInput, raw, path)
	}
	if tc.cType == FixedArrayComponent && len(v) != tc.arrayLength {
		return nil, i18n.NewError(ctx, abimsgs.MsgFixedLengthABIArrayMismatch, len(v), tc.arrayLength, path)
	}
	children := make([]*ComponentValue, len(v))
	for i, elem := range v {
		cv, err := ParseJSONValue(ctx, tc.arrayChild, indexPath(path, i), elem)
		if err != nil {
			return nil, err
		}
		children[i] = cv
	}
	return &ComponentValue{Component: tc, Children: children}, nil
}

func parseJSONElementary(ctx context.Context, tc *typeComponent, path string, raw interface{}) (*ComponentValue, error) {
	et := tc.elementaryType
	switch et {
	case ElementaryTypeBool:
		switch v := raw.(type) {
		case bool:
			return &ComponentValue{Component: tc, Value: v}, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, i18n.NewError(ctx, abimsgs.MsgInvalidBoolABIInput, v, err, path)
			}
			return &ComponentValue{Component: tc, Value: b}, nil
		default:
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidBoolABIInput, raw, "unsupported type", path)
		}

	case ElementaryTypeInt, ElementaryTypeUint:
		i, err := coerceBigInt(raw)
		if err != nil {
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidIntegerABIInput, raw, err, path)
		}
		return &ComponentValue{Component: tc, Value: i}, nil

	case ElementaryTypeAddress:
		// Address coercion is always through ethtypes.Wrap - it, not coerceBigInt, owns EIP-55
		// checksum validation (spec §4.6), so a mixed-case address with a wrong checksum digit
		// is rejected here rather than silently accepted as a plain integer.
		s, ok := raw.(string)
		if !ok {
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidIntegerABIInput, raw, "address must be a hex string", path)
		}
		v, err := ethtypes.Wrap(ctx, s)
		if err != nil {
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidIntegerABIInput, raw, err, path)
		}
		return &ComponentValue{Component: tc, Value: v}, nil

	case ElementaryTypeFixed, ElementaryTypeUfixed:
		d, err := coerceDecimal(raw, tc.n)
		if err != nil {
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidFloatABIInput, raw, err, path)
		}
		return &ComponentValue{Component: tc, Value: d}, nil

	case ElementaryTypeBytes, ElementaryTypeFunction:
		s, ok := raw.(string)
		if !ok {
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidHexABIInput, raw, "expected a hex string", path)
		}
		b, err := decodeHex(s)
		if err != nil {
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidHexABIInput, raw, err, path)
		}
		return &ComponentValue{Component: tc, Value: b}, nil

	case ElementaryTypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidStringABIInput, raw, "not a JSON string", path)
		}
		return &ComponentValue{Component: tc, Value: s}, nil

	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgUnknownABIElementaryType, et, path)
	}
}

func coerceBigInt(raw interface{}) (*big.Int, error) {
	switch v := raw.(type) {
	case string:
		i, ok := new(big.Int).SetString(strings.TrimPrefix(v, "0x"), 0)
		if !ok {
			if i, ok = new(big.Int).SetString(v, 10); !ok {
				return nil, fmt.Errorf("not an integer: %q", v)
			}
		}
		return i, nil
	case json.Number:
		i, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return nil, fmt.Errorf("not an integer: %q", v.String())
		}
		return i, nil
	case float64:
		return big.NewInt(int64(v)), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
}

func coerceDecimal(raw interface{}, scale uint16) (*Decimal, error) {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if !hasFrac {
		fracPart = ""
	}
	if len(fracPart) > int(scale) {
		return nil, fmt.Errorf("more than %d decimal digits in %q", scale, s)
	}
	fracPart = fracPart + strings.Repeat("0", int(scale)-len(fracPart))
	digits := intPart + fracPart
	unscaled, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal: %q", s)
	}
	if neg {
		unscaled.Neg(unscaled)
	}
	return &Decimal{Unscaled: unscaled, Scale: scale}, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, err := hexNibble(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex character %q", c)
	}
}

// SerializeToJSON walks a decoded ComponentValue tree into plain Go values (map/slice/string/
// bool) suitable for encoding/json.Marshal. Grounded on the teacher's outputserialization.go
// walkOutput, condensed to a single default serialization (base-10 strings for integers,
// "0x"-prefixed hex for bytes) rather than the teacher's pluggable Serializer modes - callers
// needing the teacher's alternate formatting modes can walk the ComponentValue tree directly.
func SerializeToJSON(ctx context.Context, cv *ComponentValue) (interface{}, error) {
	if cv == nil || IsAbsent(cv.Value) {
		return nil, nil
	}
	internal := cv.Component.(*typeComponent)
	switch internal.cType {
	case TupleComponent:
		out := make(map[string]interface{}, len(cv.Children))
		for i, child := range cv.Children {
			name := internal.tupleChildren[i].keyName
			if name == "" {
				name = fmt.Sprintf("%d", i)
			}
			v, err := SerializeToJSON(ctx, child)
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
		return out, nil
	case FixedArrayComponent, DynamicArrayComponent:
		out := make([]interface{}, len(cv.Children))
		for i, child := range cv.Children {
			v, err := SerializeToJSON(ctx, child)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return serializeElementaryJSON(internal, cv)
	}
}

func serializeElementaryJSON(tc *typeComponent, cv *ComponentValue) (interface{}, error) {
	if tc.elementaryType == ElementaryTypeAddress {
		v, ok := cv.Value.(*big.Int)
		if !ok {
			return nil, fmt.Errorf("address value is not a *big.Int (got %T)", cv.Value)
		}
		return ethtypes.Format(v), nil
	}
	switch v := cv.Value.(type) {
	case *big.Int:
		return v.String(), nil
	case *Decimal:
		return v.String(), nil
	case []byte:
		return hexString(v), nil
	default:
		return v, nil
	}
}

// String returns a best-effort, log-friendly description of the entry, swallowing any error
// from building its type tree - the teacher's Entry.String()/log-and-swallow idiom.
func (e *Entry) String() string {
	ctx := context.Background()
	f, err := e.AsFunction(ctx)
	if err != nil {
		log.L(ctx).Debugf("failed to render ABI entry %s: %s", e.Name, err)
		return e.Name
	}
	return f.Signature()
}
