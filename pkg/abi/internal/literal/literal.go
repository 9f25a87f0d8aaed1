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

// Package literal parses a compact bracket/brace notation for writing test values - e.g.
// {1,[2,3],"str",true} - into plain Go values
// (*big.Int, string, bool, []byte, []interface{}). It is test-only scaffolding, not part of
// the public codec, so it trades completeness for brevity: no escapes inside quoted strings,
// no float/fixed-point literals.
package literal

import (
	"fmt"
	"math/big"
	"strings"
)

// Parse decodes one literal value from s. Leading/trailing whitespace is ignored; trailing
// garbage after a complete value is an error.
func Parse(s string) (interface{}, error) {
	p := &parser{in: s}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.in) {
		return nil, fmt.Errorf("unexpected trailing input %q at offset %d", p.in[p.pos:], p.pos)
	}
	return v, nil
}

type parser struct {
	in  string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t' || p.in[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

func (p *parser) parseValue() (interface{}, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '{':
		return p.parseSequence('{', '}')
	case c == '[':
		return p.parseSequence('[', ']')
	case c == '"':
		return p.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumberOrHex()
	case strings.HasPrefix(p.in[p.pos:], "true"):
		p.pos += 4
		return true, nil
	case strings.HasPrefix(p.in[p.pos:], "false"):
		p.pos += 5
		return false, nil
	default:
		return nil, fmt.Errorf("unexpected character %q at offset %d", c, p.pos)
	}
}

// parseSequence parses a tuple "{...}" or array "[...]" - both are comma-separated value lists;
// the caller only cares about the resulting []interface{}, so the bracket style carries no
// further meaning once parsed.
func (p *parser) parseSequence(open, close byte) ([]interface{}, error) {
	if p.peek() != open {
		return nil, fmt.Errorf("expected %q at offset %d", open, p.pos)
	}
	p.pos++
	out := []interface{}{}
	p.skipSpace()
	if p.peek() == close {
		p.pos++
		return out, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			continue
		case close:
			p.pos++
			return out, nil
		default:
			return nil, fmt.Errorf("expected ',' or %q at offset %d", close, p.pos)
		}
	}
}

func (p *parser) parseString() (string, error) {
	if p.peek() != '"' {
		return "", fmt.Errorf("expected '\"' at offset %d", p.pos)
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.in) && p.in[p.pos] != '"' {
		p.pos++
	}
	if p.pos >= len(p.in) {
		return "", fmt.Errorf("unterminated string starting at offset %d", start)
	}
	s := p.in[start:p.pos]
	p.pos++ // closing quote
	return s, nil
}

// parseNumberOrHex parses a signed decimal integer, or - when the digits begin with "0x" - a
// byte string (returned as []byte, matching the *ComponentValue representation of bytes/address
// values elsewhere in pkg/abi).
func (p *parser) parseNumberOrHex() (interface{}, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	if strings.HasPrefix(p.in[p.pos:], "0x") {
		p.pos += 2
		hexStart := p.pos
		for p.pos < len(p.in) && isHexDigit(p.in[p.pos]) {
			p.pos++
		}
		return parseHexBytes(p.in[hexStart:p.pos])
	}
	for p.pos < len(p.in) && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start || (p.pos == start+1 && p.in[start] == '-') {
		return nil, fmt.Errorf("invalid number at offset %d", start)
	}
	i, ok := new(big.Int).SetString(p.in[start:p.pos], 10)
	if !ok {
		return nil, fmt.Errorf("invalid number %q at offset %d", p.in[start:p.pos], start)
	}
	return i, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseHexBytes(digits string) ([]byte, error) {
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		hi, err := hexNibble(digits[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(digits[i*2+1])
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
		return 0, fmt.Errorf("invalid hex digit %q", c)
	}
}
