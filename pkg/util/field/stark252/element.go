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
package stark252

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Element wraps fp.Element (i.e. the base field of the STARK curve, whose
// modulus is 2^251 + 17*2^192 + 1) to conform to the field.Element interface.
// This is the "felt252" value manipulated by Sierra programs.
type Element struct {
	fp.Element
}

// New constructs an element from a machine word.
func New(val uint64) Element {
	var elem Element
	//
	elem.Element.SetUint64(val)
	//
	return elem
}

// FromBigInt constructs an element from an arbitrary integer, which is reduced
// modulo the field.  Negative values map onto their additive inverses.
func FromBigInt(val *big.Int) Element {
	var (
		elem Element
		tmp  big.Int
	)
	//
	tmp.Mod(val, fp.Modulus())
	elem.Element.SetBigInt(&tmp)
	//
	return elem
}

// Modulus returns the field modulus.
func Modulus() *big.Int {
	return fp.Modulus()
}

// Modulus returns the field modulus.
func (x Element) Modulus() *big.Int {
	return fp.Modulus()
}

// Add x + y
func (x Element) Add(y Element) Element {
	var res fp.Element
	//
	res.Add(&x.Element, &y.Element)
	//
	return Element{res}
}

// Sub x - y
func (x Element) Sub(y Element) Element {
	var res fp.Element
	//
	res.Sub(&x.Element, &y.Element)
	//
	return Element{res}
}

// Mul x * y
func (x Element) Mul(y Element) Element {
	var res fp.Element
	//
	res.Mul(&x.Element, &y.Element)
	//
	return Element{res}
}

// Div x * y⁻¹.  Dividing by zero yields zero, hence callers must establish
// y is non-zero themselves.
func (x Element) Div(y Element) Element {
	var res fp.Element
	//
	res.Div(&x.Element, &y.Element)
	//
	return Element{res}
}

// Neg -x
func (x Element) Neg() Element {
	var res fp.Element
	//
	res.Neg(&x.Element)
	//
	return Element{res}
}

// Inverse x⁻¹, or 0 if x = 0.
func (x Element) Inverse() Element {
	var res fp.Element
	//
	res.Inverse(&x.Element)
	//
	return Element{res}
}

// Cmp returns 1 if x > y, 0 if x = y, and -1 if x < y.
func (x Element) Cmp(y Element) int {
	return x.Element.Cmp(&y.Element)
}

// Equals checks whether two elements are identical.
func (x Element) Equals(y Element) bool {
	return x.Element.Equal(&y.Element)
}

// IsOne implementation for the Element interface
func (x Element) IsOne() bool {
	return x.Element.IsOne()
}

// IsZero implementation for the Element interface
func (x Element) IsZero() bool {
	return x.Element.IsZero()
}

// SetBytes implementation for Element.
func (x Element) SetBytes(bytes []byte) Element {
	x.Element.SetBytes(bytes)
	//
	return x
}

// SetUint64 implementation for Element.
func (x Element) SetUint64(val uint64) Element {
	x.Element.SetUint64(val)
	//
	return x
}

// BigInt returns the canonical representative of x as a (fresh) big.Int.
func (x Element) BigInt() *big.Int {
	var res big.Int
	//
	return x.Element.BigInt(&res)
}

// Bytes returns the minimal big-endian encoding of x.  Zero has an empty
// encoding.
func (x Element) Bytes() []byte {
	return x.BigInt().Bytes()
}

// BitLen returns the number of bits required to represent x.
func (x Element) BitLen() int {
	return x.BigInt().BitLen()
}

func (x Element) String() string {
	return x.Element.String()
}

// Text implementation for the Element interface
func (x Element) Text(base int) string {
	return x.Element.Text(base)
}
