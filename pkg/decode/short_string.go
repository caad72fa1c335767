// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package decode

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
)

// MAX_SHORT_STRING determines the maximum number of bytes which can be packed
// into a single field element.
const MAX_SHORT_STRING = 31

// ShortString decodes a field element as a string.  The element is viewed as
// its minimal big-endian byte sequence, where each byte maps to the character
// with that code.  Hence, zero decodes as the empty string.
func ShortString(val stark252.Element) string {
	var (
		builder strings.Builder
		bytes   = val.BigInt().Bytes()
	)
	//
	for _, b := range bytes {
		builder.WriteRune(rune(b))
	}
	//
	return builder.String()
}

// ShortStrings decodes each of a sequence of field elements independently.
func ShortStrings(vals []stark252.Element) []string {
	var strs = make([]string, len(vals))
	//
	for i, v := range vals {
		strs[i] = ShortString(v)
	}
	//
	return strs
}

// EncodeShortString packs a string into a field element, such that the first
// character is the most significant byte.  This is the inverse of ShortString,
// hence every character must have a code below 256 and there can be at most 31
// of them.
func EncodeShortString(str string) (stark252.Element, error) {
	var bytes []byte
	//
	for _, r := range str {
		if r > 0xff {
			return stark252.Element{}, errors.Newf("short string \"%s\" contains non-byte character %q", str, r)
		}
		//
		bytes = append(bytes, byte(r))
	}
	//
	if len(bytes) > MAX_SHORT_STRING {
		return stark252.Element{}, errors.Newf("short string \"%s\" exceeds %d bytes", str, MAX_SHORT_STRING)
	}
	//
	var val big.Int
	//
	val.SetBytes(bytes)
	//
	return stark252.FromBigInt(&val), nil
}

// MustEncodeShortString packs a string into a field element, panicking if it
// does not fit.
func MustEncodeShortString(str string) stark252.Element {
	val, err := EncodeShortString(str)
	//
	if err != nil {
		panic(err.Error())
	}
	//
	return val
}
