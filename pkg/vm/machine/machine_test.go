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
package machine

import (
	"context"
	"path"
	"testing"

	"github.com/consensys/sierra-run/pkg/sierra"
	"github.com/consensys/sierra-run/pkg/util/assert"
	"github.com/consensys/sierra-run/pkg/util/source"
	"github.com/consensys/sierra-run/pkg/vm/gas"
	"github.com/consensys/sierra-run/pkg/vm/memory"
	"github.com/consensys/sierra-run/pkg/vm/value"
)

// Determines the (relative) location of the test directory.
const TestDir = "../../../testdata/sierra"

func Test_Machine_Hello(t *testing.T) {
	vm := bootMachine(t, "hello", "::main", gas.Unmetered())
	//
	n, err := vm.Execute(100)
	//
	assert.NoError(t, err)
	assert.Equal(t, uint(3), n)
	assert.True(t, vm.Halted())
	assert.False(t, vm.OutOfGas())
	assert.Equal(t, []value.Value{value.NewFelt(448378203247)}, vm.Result())
}

func Test_Machine_StepByStep(t *testing.T) {
	vm := bootMachine(t, "hello", "::main", gas.Unmetered())
	//
	for i := range 3 {
		assert.False(t, vm.Halted(), "halted after %d steps", i)
		//
		n, err := vm.Execute(1)
		//
		assert.NoError(t, err)
		assert.Equal(t, uint(1), n)
	}
	//
	assert.True(t, vm.Halted())
	// Halted machines execute no further steps
	n, err := vm.Execute(1)
	assert.NoError(t, err)
	assert.Equal(t, uint(0), n)
}

func Test_Machine_OutOfGas(t *testing.T) {
	var meter = gas.NewMeter(150)
	//
	vm := bootMachine(t, "hello", "::main", meter)
	n, err := vm.Execute(100)
	//
	assert.NoError(t, err)
	assert.Equal(t, uint(3), n)
	assert.True(t, vm.Halted())
	assert.True(t, vm.OutOfGas())
	assert.True(t, meter.Exhausted())
	assert.Equal(t, 0, len(vm.Result()))
}

func Test_Machine_LocalUnsetUntilStored(t *testing.T) {
	vm := bootMachine(t, "locals", "::main", gas.Unmetered())
	// alloc_local
	_, err := vm.Execute(1)
	assert.NoError(t, err)
	//
	cells := vm.Memory().Snapshot()
	assert.Equal(t, 2, len(cells))
	assert.True(t, cells[1].IsEmpty())
	// finalize_locals, felt252_const
	_, err = vm.Execute(2)
	assert.NoError(t, err)
	assert.True(t, vm.Memory().Snapshot()[1].IsEmpty())
	// store_local
	_, err = vm.Execute(1)
	assert.NoError(t, err)
	//
	local, err := vm.Memory().Read(1)
	assert.NoError(t, err)
	assert.Equal(t, "7", local.String())
}

func Test_Machine_MemoryWriteOnce(t *testing.T) {
	for _, name := range []string{"fib", "locals", "arrays", "panic42"} {
		var (
			vm       = bootMachine(t, name, "::main", gas.Unmetered())
			previous = vm.Memory().Snapshot()
		)
		//
		for !vm.Halted() {
			_, err := vm.Execute(1)
			assert.NoError(t, err)
			//
			current := vm.Memory().Snapshot()
			//
			checkExtends(t, name, previous, current)
			//
			previous = current
		}
	}
}

func Test_Machine_CallFrames(t *testing.T) {
	var depth int
	//
	vm := bootMachine(t, "fib", "::main", gas.Unmetered())
	//
	for !vm.Halted() {
		depth = max(depth, len(vm.CallStack()))
		//
		_, err := vm.Execute(1)
		assert.NoError(t, err)
	}
	// main plus eleven nested calls of fib
	assert.Equal(t, 12, depth)
	assert.Equal(t, []value.Value{value.NewFelt(55)}, vm.Result())
}

func Test_Machine_ReturnAddress(t *testing.T) {
	vm := bootMachine(t, "fib", "::main", gas.Unmetered())
	// Execute upto (and including) the first function call
	_, err := vm.Execute(7)
	assert.NoError(t, err)
	//
	frames := vm.CallStack()
	assert.Equal(t, 2, len(frames))
	// Caller's fp and pc are recorded just before the callee's frame
	callee := frames[1]
	fp, err := vm.Memory().Read(callee.Fp() - 2)
	assert.NoError(t, err)
	pc, err := vm.Memory().Read(callee.Fp() - 1)
	assert.NoError(t, err)
	//
	assert.Equal(t, "1", fp.String())
	assert.Equal(t, "6", pc.String())
	assert.Equal(t, uint(8), callee.Pc())
}

func Test_Machine_StepLimit(t *testing.T) {
	vm := bootMachine(t, "loop", "::main", gas.Unmetered())
	//
	n, err := ExecuteAll(context.Background(), vm, 64, 1000)
	//
	assert.ErrorIs(t, err, ErrStepLimit)
	assert.Equal(t, uint(1001), n)
	assert.False(t, vm.Halted())
}

func Test_Machine_ExecuteAll(t *testing.T) {
	vm := bootMachine(t, "fib", "::main", gas.Unmetered())
	//
	n, err := ExecuteAll(context.Background(), vm, 4, 0)
	//
	assert.NoError(t, err)
	assert.True(t, vm.Halted())
	assert.True(t, n > 0)
}

func Test_Machine_Arguments(t *testing.T) {
	var (
		prog = linkFixture(t, "fib")
		fn   = prog.FindFunctions("fib::fib::fib")[0]
	)
	// Wrong number of arguments
	_, err := Boot(prog, fn, []value.Value{value.NewFelt(0)}, gas.Unmetered())
	assert.Error(t, err)
	//
	args := []value.Value{value.NewFelt(1), value.NewFelt(1), value.NewFelt(3)}
	vm, err := Boot(prog, fn, args, gas.Unmetered())
	assert.NoError(t, err)
	// arguments stored after the reserved cell
	assert.Equal(t, uint(4), vm.Memory().Len())
	//
	_, err = ExecuteAll(context.Background(), vm, 16, 0)
	assert.NoError(t, err)
	assert.Equal(t, []value.Value{value.NewFelt(3)}, vm.Result())
}

// ============================================================================
// Helpers
// ============================================================================

// Check that every cell assigned in a previous snapshot holds the same value
// in the current snapshot.
func checkExtends(t *testing.T, name string, previous []memory.Cell, current []memory.Cell) {
	t.Helper()
	//
	assert.True(t, len(previous) <= len(current), "%s: memory shrank", name)
	//
	for i, cell := range previous {
		if v, ok := cell.Get(); ok {
			w, ok := current[i].Get()
			//
			assert.True(t, ok, "%s: cell %d unassigned", name, i)
			assert.True(t, v.Equals(w), "%s: cell %d reassigned", name, i)
		}
	}
}

func bootMachine(t *testing.T, name string, entry string, meter *gas.Meter) *Machine {
	t.Helper()
	//
	var (
		prog = linkFixture(t, name)
		fns  = prog.FindFunctions(entry)
		args []value.Value
	)
	//
	assert.Equal(t, 1, len(fns))
	// Supply builtins
	for _, param := range fns[0].Params {
		info, _ := prog.Type(param.Type)
		assert.True(t, info.IsBuiltin())
		args = append(args, value.Builtin{Name: info.Generic})
	}
	//
	vm, err := Boot(prog, fns[0], args, meter)
	assert.NoError(t, err)
	//
	return vm
}

func linkFixture(t *testing.T, name string) *sierra.Program {
	t.Helper()
	//
	srcfile, err := source.ReadFile(path.Join(TestDir, name+".sierra"))
	assert.NoError(t, err)
	//
	prog, errs := sierra.Parse(srcfile)
	//
	for _, e := range errs {
		t.Errorf("%s: %s", name, e.Error())
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
	//
	return prog
}
