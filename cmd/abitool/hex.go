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

package main

import (
	"io"
	"strings"

	"github.com/kaleido-abi/abicodec/pkg/ethtypes"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func decodeHexArg(s string) ([]byte, error) {
	b, err := ethtypes.NewHexBytes0xPrefix(s)
	if err != nil {
		return nil, err
	}
	return []byte(b), nil
}
