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
	"hash"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/crypto/sha3"

	"github.com/kaleido-abi/abicodec/internal/abimsgs"
)

// Variant is the state-machine tag of spec §4.8 distinguishing the four function entry
// shapes an ABI fragment can take.
type Variant string

const (
	VariantOrdinary    Variant = "function"
	VariantFallback    Variant = "fallback"
	VariantConstructor Variant = "constructor"
	VariantReceive     Variant = "receive"
)

// DigestFactory mints a fresh hash.Hash per call - Keccak-256 digests are not safe for
// concurrent use, so every selector/topic derivation gets its own instance (spec §5).
type DigestFactory func() hash.Hash

// DefaultDigestFactory is Keccak-256, matching Ethereum's own selector/topic derivation and
// the teacher's use of golang.org/x/crypto/sha3 throughout pkg/ethtypes and pkg/abi.
var DefaultDigestFactory DigestFactory = sha3.NewLegacyKeccak256

// Function is the core, JSON-independent schema object of spec §4.7: a name, a variant tag,
// an input tuple, an (optional) output tuple, and the state mutability declaration.
type Function struct {
	Variant         Variant
	Name            string
	Inputs          TypeComponent
	Outputs         TypeComponent
	StateMutability string
}

// NewFunction validates and constructs a Function per the per-variant rules of spec §4.7/§4.8.
func NewFunction(ctx context.Context, variant Variant, name string, inputs, outputs TypeComponent, stateMutability string) (*Function, error) {
	if inputs == nil {
		inputs = &typeComponent{cType: TupleComponent}
	}
	if outputs == nil {
		outputs = &typeComponent{cType: TupleComponent}
	}
	if err := validName(ctx, name); name != "" && err != nil {
		return nil, err
	}
	switch variant {
	case VariantReceive:
		if len(inputs.TupleChildren()) != 0 {
			return nil, i18n.NewError(ctx, abimsgs.MsgReceiveMustTakeNoInputs)
		}
		if stateMutability != "payable" {
			return nil, i18n.NewError(ctx, abimsgs.MsgReceiveMustBePayable)
		}
		if name != "" {
			return nil, i18n.NewError(ctx, abimsgs.MsgVariantMustNotBeNamed, variant)
		}
	case VariantFallback:
		if len(outputs.TupleChildren()) != 0 {
			return nil, i18n.NewError(ctx, abimsgs.MsgVariantMustTakeNoOutputs, variant)
		}
		if name != "" {
			return nil, i18n.NewError(ctx, abimsgs.MsgVariantMustNotBeNamed, variant)
		}
	case VariantConstructor:
		if len(outputs.TupleChildren()) != 0 {
			return nil, i18n.NewError(ctx, abimsgs.MsgVariantMustTakeNoOutputs, variant)
		}
		if name != "" {
			return nil, i18n.NewError(ctx, abimsgs.MsgVariantMustNotBeNamed, variant)
		}
	case VariantOrdinary:
		if name == "" {
			return nil, i18n.NewError(ctx, abimsgs.MsgOrdinaryRequiresName)
		}
	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgUnknownEntryType, variant)
	}
	return &Function{Variant: variant, Name: name, Inputs: inputs, Outputs: outputs, StateMutability: stateMutability}, nil
}

// Signature is the canonical "name(type,type,...)" form selectors are derived from.
func (f *Function) Signature() string {
	return f.Name + f.Inputs.String()
}

// Selector returns the first four bytes of keccak256(Signature()) - the function selector.
func (f *Function) Selector(ctx context.Context, digest DigestFactory) ([4]byte, error) {
	return selectorOf(digest, f.Signature())
}

// EncodeCall prepends the selector to the standard ABI encoding of the inputs.
func (f *Function) EncodeCall(ctx context.Context, digest DigestFactory, args *ComponentValue) ([]byte, error) {
	sel, err := f.Selector(ctx, digest)
	if err != nil {
		return nil, err
	}
	body, err := EncodeABIData(ctx, f.Inputs, args)
	if err != nil {
		return nil, err
	}
	return append(sel[:], body...), nil
}

// DecodeCall checks the leading four bytes of data against the expected selector and decodes
// the remainder against Inputs.
func (f *Function) DecodeCall(ctx context.Context, digest DigestFactory, data []byte) (*ComponentValue, error) {
	if len(data) < 4 {
		return nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughtBytesABISignature)
	}
	expected, err := f.Selector(ctx, digest)
	if err != nil {
		return nil, err
	}
	var got [4]byte
	copy(got[:], data[:4])
	if got != expected {
		return nil, i18n.NewError(ctx, abimsgs.MsgIncorrectABISignatureID, f.Signature(), hexString(expected[:]), hexString(got[:]))
	}
	return DecodeABIData(ctx, f.Inputs, data[4:])
}

// Event is the core schema object for a log event (spec §4.7): a name, an input tuple, a
// parallel Indexed flag per input, and the anonymous flag that determines whether the
// signature occupies topic 0.
type Event struct {
	Name      string
	Inputs    TypeComponent
	Indexed   []bool
	Anonymous bool
}

// NewEvent validates that Indexed has one entry per input and constructs the Event.
func NewEvent(ctx context.Context, name string, inputs TypeComponent, indexed []bool, anonymous bool) (*Event, error) {
	if err := validName(ctx, name); err != nil {
		return nil, err
	}
	if len(indexed) != len(inputs.TupleChildren()) {
		return nil, i18n.NewError(ctx, abimsgs.MsgTupleArityMismatch, "indexed", len(inputs.TupleChildren()), len(indexed))
	}
	return &Event{Name: name, Inputs: inputs, Indexed: indexed, Anonymous: anonymous}, nil
}

// Signature is the canonical "name(type,...)" form event topics are derived from.
func (e *Event) Signature() string {
	return e.Name + e.Inputs.String()
}

// Topic0 returns keccak256(Signature()) - the first log topic for a non-anonymous event.
func (e *Event) Topic0(ctx context.Context, digest DigestFactory) ([32]byte, error) {
	h := digest()
	if _, err := h.Write([]byte(e.Signature())); err != nil {
		return [32]byte{}, i18n.WrapError(ctx, err, abimsgs.MsgBadABITypeComponent, e.Signature())
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// NonIndexedInputs returns the tuple of inputs that appear in the log data area rather than
// as topics - the subset of Inputs.TupleChildren() where Indexed[i] is false.
func (e *Event) NonIndexedInputs() TypeComponent {
	children := e.Inputs.TupleChildren()
	kept := make([]*typeComponent, 0, len(children))
	for i, c := range children {
		if !e.Indexed[i] {
			kept = append(kept, c.(*typeComponent))
		}
	}
	return &typeComponent{cType: TupleComponent, tupleChildren: kept}
}

// ContractError is the core schema object for a custom Solidity error (spec §4.7): same
// selector derivation as a Function, but never carries outputs or state mutability.
type ContractError struct {
	Name   string
	Inputs TypeComponent
}

// NewContractError validates and constructs a ContractError.
func NewContractError(ctx context.Context, name string, inputs TypeComponent) (*ContractError, error) {
	if err := validName(ctx, name); err != nil {
		return nil, err
	}
	return &ContractError{Name: name, Inputs: inputs}, nil
}

// Signature is the canonical "name(type,...)" form the error selector is derived from.
func (e *ContractError) Signature() string {
	return e.Name + e.Inputs.String()
}

// Selector returns the first four bytes of keccak256(Signature()).
func (e *ContractError) Selector(ctx context.Context, digest DigestFactory) ([4]byte, error) {
	return selectorOf(digest, e.Signature())
}

func selectorOf(digest DigestFactory, signature string) ([4]byte, error) {
	h := digest()
	if _, err := h.Write([]byte(signature)); err != nil {
		return [4]byte{}, err
	}
	var out [4]byte
	copy(out[:], h.Sum(nil)[:4])
	return out, nil
}

// validName enforces spec §4.7's printable-ASCII-excluding-'(' rule for entry names.
func validName(ctx context.Context, name string) error {
	for _, r := range name {
		if r == '(' || r < 0x20 || r > 0x7e {
			return i18n.NewError(ctx, abimsgs.MsgInvalidEntryName, name)
		}
	}
	return nil
}

const hexDigits = "0123456789abcdef"

func hexString(b []byte) string {
	out := make([]byte, 2+len(b)*2)
	out[0], out[1] = '0', 'x'
	for i, v := range b {
		out[2+i*2] = hexDigits[v>>4]
		out[2+i*2+1] = hexDigits[v&0x0f]
	}
	return string(out)
}
