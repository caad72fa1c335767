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
package value

import (
	"testing"

	"github.com/consensys/sierra-run/pkg/util/assert"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm/memory"
)

func TestValue_Felt(t *testing.T) {
	checkStore(t, NewFelt(42), 42)
}

func TestValue_Struct(t *testing.T) {
	checkStore(t, Struct{[]Value{NewFelt(1), Struct{}, NewFelt(2)}}, 1, 2)
}

func TestValue_EnumPadding(t *testing.T) {
	// Payload is left-padded to the widest variant.
	checkStore(t, Enum{1, NewFelt(7), 3}, 1, 0, 0, 7)
	checkStore(t, Bool(true), 1)
	checkStore(t, Bool(false), 0)
}

func TestValue_EnumTooWide(t *testing.T) {
	_, err := Enum{0, Struct{[]Value{NewFelt(1), NewFelt(2)}}, 1}.Store(memory.New())
	//
	assert.True(t, err != nil)
}

func TestValue_Array(t *testing.T) {
	var (
		mem = memory.New()
		arr = NewArray(NewFelt(10), NewFelt(11))
	)
	//
	cells, err := arr.Store(mem)
	assert.NoError(t, err)
	assert.Equal(t, []stark252.Element{stark252.New(1), stark252.New(3)}, cells)
	// Storing again reuses the stored contents
	cells, err = arr.Store(mem)
	assert.NoError(t, err)
	assert.Equal(t, stark252.New(1), cells[0])
	assert.Equal(t, 3, mem.Len())
}

func TestValue_Box(t *testing.T) {
	var (
		mem = memory.New()
		box = NewBox(Struct{[]Value{NewFelt(4), NewFelt(5)}})
	)
	//
	cells, err := box.Store(mem)
	assert.NoError(t, err)
	assert.Equal(t, []stark252.Element{stark252.New(1)}, cells)
	//
	val, err := mem.Read(2)
	assert.NoError(t, err)
	assert.Equal(t, stark252.New(5), val)
	// Null is stored as address zero
	checkStore(t, Nullable{}, 0)
}

func TestValue_Uninitialized(t *testing.T) {
	_, err := Uninitialized{5, 1}.Store(memory.New())
	//
	assert.True(t, err != nil)
}

func checkStore(t *testing.T, val Value, expected ...uint64) {
	t.Helper()
	//
	cells, err := val.Store(memory.New())
	assert.NoError(t, err)
	assert.Equal(t, len(expected), len(cells), "cells: %v", cells)
	//
	for i, e := range expected {
		assert.Equal(t, stark252.New(e), cells[i])
	}
}
