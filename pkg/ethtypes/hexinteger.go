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

package ethtypes

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// HexInteger is a positive integer - serializes to JSON as an 0x hex string, and parses flexibly depending on the prefix (so 0x for hex, or base 10 for plain string / float64)
type HexInteger big.Int

func (h *HexInteger) String() string {
	return "0x" + (*big.Int)(h).Text(16)
}

func (h HexInteger) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, h.String())), nil
}

func (h *HexInteger) UnmarshalJSON(b []byte) error {
	var i interface{}
	_ = json.Unmarshal(b, &i)
	switch i := i.(type) {
	case float64:
		*h = HexInteger(*big.NewInt(int64(i)))
		return nil
	case string:
		bi, ok := new(big.Int).SetString(i, 0)
		if !ok {
			return fmt.Errorf("unable to parse integer: %s", i)
		}
		if bi.Sign() < 0 {
			return fmt.Errorf("negative values are not supported: %s", i)
		}
		*h = HexInteger(*bi)
		return nil
	default:
		return fmt.Errorf("unable to parse integer from type %T", i)
	}
}

func (h *HexInteger) BigInt() *big.Int {
	if h == nil {
		return new(big.Int)
	}
	return (*big.Int)(h)
}

// Int64 truncates the value to an int64, as per (big.Int).Int64()
func (h *HexInteger) Int64() int64 {
	return h.BigInt().Int64()
}

// Uint64 truncates the value to a uint64, as per (big.Int).Uint64()
func (h *HexInteger) Uint64() uint64 {
	return h.BigInt().Uint64()
}

// NewHexInteger wraps an existing big.Int
func NewHexInteger(bi *big.Int) *HexInteger {
	return (*HexInteger)(bi)
}

// NewHexInteger64 wraps a signed 64-bit value
func NewHexInteger64(i int64) *HexInteger {
	return NewHexInteger(big.NewInt(i))
}

// NewHexIntegerU64 wraps an unsigned 64-bit value
func NewHexIntegerU64(u uint64) *HexInteger {
	return NewHexInteger(new(big.Int).SetUint64(u))
}

// Scan implements sql.Scanner, accepting nil, bool, int64 and uint64 source values
func (h *HexInteger) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*h = HexInteger(*new(big.Int))
		return nil
	case bool:
		*h = HexInteger(*new(big.Int))
		return nil
	case int64:
		*h = HexInteger(*big.NewInt(v))
		return nil
	case uint64:
		*h = HexInteger(*new(big.Int).SetUint64(v))
		return nil
	default:
		return fmt.Errorf("unable to scan type %T as an integer", src)
	}
}
