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
package cmd

import (
	"bytes"
	"testing"

	"github.com/consensys/sierra-run/pkg/decode"
	"github.com/consensys/sierra-run/pkg/util"
	"github.com/consensys/sierra-run/pkg/util/assert"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm"
	"github.com/consensys/sierra-run/pkg/vm/memory"
)

func Test_Render_Success(t *testing.T) {
	result := vm.RunResult{
		Value:      vm.Success{Values: []stark252.Element{decode.MustEncodeShortString("hello"), stark252.New(0)}},
		GasCounter: util.None[uint64](),
	}
	//
	checkRender(t, result, false, "Run completed successfully\nResult: hello\nResult: \n")
}

func Test_Render_Panic(t *testing.T) {
	result := vm.RunResult{
		Value:      vm.Panic{Values: []stark252.Element{stark252.New(42), stark252.New(7)}},
		GasCounter: util.None[uint64](),
	}
	//
	checkRender(t, result, false, "Run panicked with err values: [42, 7]\n")
}

func Test_Render_PanicNegative(t *testing.T) {
	// Panic values are printed as unsigned decimals
	minusOne := stark252.New(0).Sub(stark252.New(1))
	result := vm.RunResult{
		Value:      vm.Panic{Values: []stark252.Element{minusOne}},
		GasCounter: util.None[uint64](),
	}
	//
	checkRender(t, result, false, "Run panicked with err values: ["+minusOne.BigInt().String()+"]\n")
}

func Test_Render_EmptyPanic(t *testing.T) {
	result := vm.RunResult{Value: vm.Panic{}, GasCounter: util.None[uint64]()}
	//
	checkRender(t, result, false, "Run panicked with err values: []\n")
}

func Test_Render_RemainingGas(t *testing.T) {
	result := vm.RunResult{
		Value:      vm.Panic{Values: []stark252.Element{decode.MustEncodeShortString("Out of gas")}, Reason: vm.OUT_OF_GAS},
		GasCounter: util.Some[uint64](50),
	}
	//
	checkRender(t, result, false, "Run panicked with err values: [375233589013918064796019]\nRemaining gas: 50\n")
}

func Test_Render_ZeroGas(t *testing.T) {
	result := vm.RunResult{Value: vm.Success{}, GasCounter: util.Some[uint64](0)}
	//
	checkRender(t, result, false, "Run completed successfully\nRemaining gas: 0\n")
}

func Test_Render_FullMemory(t *testing.T) {
	result := vm.RunResult{
		Value:      vm.Success{},
		GasCounter: util.None[uint64](),
		Memory: []memory.Cell{
			util.None[stark252.Element](),
			util.Some(stark252.New(7)),
			util.Some(stark252.New(14)),
		},
	}
	//
	checkRender(t, result, true, "Run completed successfully\nFull memory: [_, 7, 14, ]\n")
}

func Test_Render_NoColour(t *testing.T) {
	var buf bytes.Buffer
	//
	NewRenderer(&buf, false, false).Render(vm.RunResult{Value: vm.Success{}})
	//
	assert.False(t, bytes.ContainsRune(buf.Bytes(), 0x1b), "unexpected escape code")
}

func Test_Render_Colour(t *testing.T) {
	var buf bytes.Buffer
	//
	NewRenderer(&buf, false, true).Render(vm.RunResult{Value: vm.Success{}})
	//
	assert.True(t, bytes.ContainsRune(buf.Bytes(), 0x1b), "expected escape code")
	assert.True(t, bytes.Contains(buf.Bytes(), []byte("Run completed successfully")))
}

func checkRender(t *testing.T, result vm.RunResult, fullMemory bool, expected string) {
	t.Helper()
	//
	var buf bytes.Buffer
	//
	NewRenderer(&buf, fullMemory, false).Render(result)
	//
	assert.Equal(t, expected, buf.String())
}
