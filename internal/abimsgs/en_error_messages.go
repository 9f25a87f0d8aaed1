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

package abimsgs

import "github.com/hyperledger/firefly-common/pkg/i18n"

var ffe = i18n.FFE

//revive:disable
var (
	// PARSE_ERROR - malformed type descriptor / canonical signature
	MsgUnknownElementaryType  = ffe("FF22101", "Unknown elementary type '%s' in '%s'")
	MsgMissingABISuffix       = ffe("FF22102", "Missing required suffix on type '%s' - expected %s")
	MsgUnsupportedABISuffix   = ffe("FF22103", "Suffix '%s' is not valid for type '%s' (%s takes no suffix)")
	MsgInvalidABISuffix       = ffe("FF22104", "Invalid suffix on type '%s' - expected %s")
	MsgInvalidABIArraySpec    = ffe("FF22105", "Invalid array specifier in type '%s'")
	MsgUnexpectedTrailingChar = ffe("FF22106", "Unexpected character at offset %d in '%s': %s")
	MsgUnterminatedTuple      = ffe("FF22107", "Unterminated tuple starting at offset %d in '%s'")
	MsgRecursionTooDeep       = ffe("FF22108", "Type descriptor nesting exceeds the maximum depth of %d")
	MsgDescriptorTooLong      = ffe("FF22109", "Type descriptor length %d exceeds the maximum of %d bytes")
	MsgEmptyTypeString        = ffe("FF22110", "Empty type descriptor")

	// INVALID_RANGE - integer bit-width / signedness bounds (Uint)
	MsgSignedOutOfRange    = ffe("FF22120", "Value does not fit in a signed %d-bit integer")
	MsgUnsignedOutOfRange  = ffe("FF22121", "Value does not fit in an unsigned %d-bit integer")
	MsgInvalidBitWidth     = ffe("FF22122", "Invalid bit width %d - must be between 1 and 256")
	MsgNumberTooLargeABI   = ffe("FF22123", "Number does not fit into %d bits for '%s'")

	// INVALID_VALUE - value/type mismatch, arity, scale, length
	MsgWrongTypeComponentABIEncode = ffe("FF22130", "Expected type '%s' for value '%v' for %s")
	MsgInsufficientDataABIEncode   = ffe("FF22131", "Insufficient data: require %d bytes, have %d, for %s")
	MsgTupleArityMismatch          = ffe("FF22132", "tuple '%s': expected %d values, got %d")
	MsgArrayLengthMismatch         = ffe("FF22133", "array '%s': expected fixed length %d, got %d")
	MsgScaleMismatch               = ffe("FF22134", "Expected scale %d, got %d for %s")
	MsgBadABITypeComponent         = ffe("FF22135", "Invalid ABI type component: %v")
	MsgUnknownABIElementaryType    = ffe("FF22136", "Unknown elementary type '%v' at %s")
	MsgUnknownTupleSerializer      = ffe("FF22137", "Unknown tuple serializer mode: %v")
	MsgInvalidIntegerABIInput      = ffe("FF22138", "Cannot parse '%v' (%v) as an integer for %s")
	MsgInvalidFloatABIInput        = ffe("FF22139", "Cannot parse '%v' (%v) as a decimal for %s")
	MsgInvalidBoolABIInput         = ffe("FF22140", "Cannot parse '%v' (%v) as a boolean for %s")
	MsgInvalidStringABIInput       = ffe("FF22141", "Cannot parse '%v' (%v) as a string for %s")
	MsgInvalidHexABIInput          = ffe("FF22142", "Cannot parse '%v' (%v) as hex bytes for %s")
	MsgMustBeSliceABIInput         = ffe("FF22143", "Value '%v' must be an array/slice for %s")
	MsgFixedLengthABIArrayMismatch = ffe("FF22144", "Supplied %d elements, expected fixed size %d, for %s")
	MsgTupleABIArrayMismatch       = ffe("FF22145", "Supplied %d elements, expected %d tuple components, for %s")
	MsgTupleABINotArrayOrMap       = ffe("FF22146", "Value '%v' must be an array or map, for %s")
	MsgTupleInABINoName            = ffe("FF22147", "Tuple component %d has no name, so cannot be matched against a JSON object, for %s")
	MsgMissingInputKeyABITuple     = ffe("FF22148", "Missing key '%s' for %s")
	MsgIndicesNotIncreasing        = ffe("FF22149", "Partial decode indices must be strictly increasing: %d then %d")
	MsgIndexOutOfRange             = ffe("FF22150", "Partial decode index %d out of range (0-%d)")

	// INVALID_ENCODING - standard ABI decode failures
	MsgNotEnoughBytesABIValue      = ffe("FF22160", "Not enough bytes to decode %s for %s")
	MsgNotEnoughBytesABIArrayCount = ffe("FF22161", "Not enough bytes to decode array length for %s")
	MsgABIArrayCountTooLarge       = ffe("FF22162", "Array length '%s' too large for %s")
	MsgNotEnoughtBytesABISignature = ffe("FF22163", "Not enough bytes to decode the function selector")
	MsgIncorrectABISignatureID     = ffe("FF22164", "Incorrect function selector for '%s': expected=%s received=%s")
	MsgOffsetTooSmall              = ffe("FF22165", "Offset %d is below the minimum of one word (0x20) for %s")
	MsgOffsetGoesBackwards         = ffe("FF22166", "Offset %d at %s points backwards of cursor %d - encoding is not lenient-decodable")
	MsgOffsetOverflow              = ffe("FF22167", "Offset/length %s overflows the 31-bit positive range for %s")
	MsgTrailingBytes               = ffe("FF22168", "%d unconsumed trailing bytes after decoding %s")
	MsgNegativeUnsignedRead        = ffe("FF22169", "Read a negative value where an unsigned integer was expected, for %s")

	// PACKED_AMBIGUOUS
	MsgPackedAmbiguous = ffe("FF22180", "Packed decode of %s is ambiguous: more than one dynamic-length element at the same tuple level")

	// CHECKSUM_MISMATCH / INVALID_HEX - EIP-55 address codec
	MsgChecksumMismatch  = ffe("FF22190", "Address checksum mismatch: expected=%s supplied=%s")
	MsgInvalidHexAddress = ffe("FF22191", "Invalid hex character at offset %d in address '%s'")
	MsgInvalidAddressLen = ffe("FF22192", "Address must be a '0x' prefixed 40 character hex string, got length %d")

	// Function/Event/Error schema validation (§4.7)
	MsgReceiveMustTakeNoInputs   = ffe("FF22200", "A 'receive' entry must not declare any inputs")
	MsgReceiveMustBePayable      = ffe("FF22201", "A 'receive' entry must have stateMutability 'payable'")
	MsgVariantMustTakeNoOutputs  = ffe("FF22202", "A '%s' entry must not declare any outputs")
	MsgVariantMustNotBeNamed     = ffe("FF22203", "A '%s' entry must not have a name")
	MsgOrdinaryRequiresName      = ffe("FF22204", "A function entry must have a name")
	MsgInvalidEntryName          = ffe("FF22205", "Name '%s' contains characters outside of printable ASCII (excluding '(')")
	MsgUnknownEntryType          = ffe("FF22206", "Unknown ABI entry type '%s'")

	// Hex/numeric string coercion, shared with pkg/ethtypes
	MsgInvalidNumberString      = ffe("FF22088", "Invalid number '%s'")
	MsgInvalidIntPrecisionLoss  = ffe("FF22089", "Cannot parse '%s' without precision loss")
	MsgInvalidJSONTypeForBigInt = ffe("FF22212", "Cannot parse type '%T' as a number")

	// HexUint64 parsing (pkg/ethtypes)
	MsgHexUint64Negative = ffe("FF22090", "Negative or out of range value '%s' is not a valid uint64")
	MsgHexUint64BadType  = ffe("FF22091", "Unable to parse type '%T' as a uint64")
	MsgHexUint64ScanType = ffe("FF22092", "Unable to scan type '%T' as a uint64")
)
