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
	"math/rand"
	"testing"

	"github.com/consensys/sierra-run/pkg/util/assert"
)

func TestModulus(t *testing.T) {
	// 2^251 + 17*2^192 + 1
	expected := new(big.Int).Lsh(big.NewInt(1), 251)
	expected.Add(expected, new(big.Int).Lsh(big.NewInt(17), 192))
	expected.Add(expected, big.NewInt(1))
	//
	assert.Equal(t, 0, expected.Cmp(Element{}.Modulus()))
}

func TestArithmetic(t *testing.T) {
	var (
		seven = New(7)
		five  = New(5)
	)
	//
	assert.Equal(t, "12", seven.Add(five).String())
	assert.Equal(t, "2", seven.Sub(five).String())
	assert.Equal(t, "35", seven.Mul(five).String())
	assert.True(t, five.Sub(seven).Add(New(2)).IsZero())
}

func TestDivision(t *testing.T) {
	for range 100 {
		var (
			x = New(rand.Uint64())
			y = New(rand.Uint64() | 1)
		)
		// (x / y) * y == x
		assert.True(t, x.Div(y).Mul(y).Equals(x), "x=%s, y=%s", x, y)
	}
}

func TestInverseOfZero(t *testing.T) {
	assert.True(t, New(0).Inverse().IsZero())
}

func TestFromBigInt(t *testing.T) {
	minusTwo := FromBigInt(big.NewInt(-2))
	//
	assert.True(t, minusTwo.Add(New(2)).IsZero())
	assert.Equal(t, 252, minusTwo.BitLen())
}

func TestText(t *testing.T) {
	assert.Equal(t, "ff", New(255).Text(16))
	assert.Equal(t, []byte{0xff}, New(255).Bytes())
}
