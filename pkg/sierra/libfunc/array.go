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
package libfunc

import (
	"github.com/consensys/sierra-run/pkg/sierra/types"
	"github.com/consensys/sierra-run/pkg/vm/value"
	"github.com/holiman/uint256"
)

var u32Bound = bitBound(32)

func init() {
	register("array_new", overType("array_new", arrayLibfunc("array_new", 0, branches(1), STEP, arrayNew)))
	register("array_append", overType("array_append", arrayLibfunc("array_append", 2, branches(1), STEP, arrayAppend)))
	register("array_pop_front", overType("array_pop_front",
		arrayLibfunc("array_pop_front", 1, branches(2, 1), 2*STEP, arrayPop(true, true))))
	register("array_pop_front_consume", overType("array_pop_front_consume",
		arrayLibfunc("array_pop_front_consume", 1, branches(2, 0), 2*STEP, arrayPop(true, false))))
	register("array_snapshot_pop_front", overType("array_snapshot_pop_front",
		arrayLibfunc("array_snapshot_pop_front", 1, branches(2, 1), 2*STEP, arrayPop(true, true))))
	register("array_snapshot_pop_back", overType("array_snapshot_pop_back",
		arrayLibfunc("array_snapshot_pop_back", 1, branches(2, 1), 2*STEP, arrayPop(false, true))))
	register("array_get", overType("array_get", arrayLibfunc("array_get", 3, branches(2, 1), 3*STEP, arrayGet)))
	register("array_slice", overType("array_slice", arrayLibfunc("array_slice", 4, branches(2, 1), 3*STEP, arraySlice)))
	register("array_len", overType("array_len", arrayLibfunc("array_len", 1, branches(1), STEP, arrayLen)))
}

// Construct a libfunc over arrays of some element type.
func arrayLibfunc(name string, params uint, outcomes []uint, cost uint64,
	execute Executor) func(*types.Info) (Libfunc, error) {
	return func(*types.Info) (Libfunc, error) {
		return NewBasic(name, params, outcomes, cost, execute), nil
	}
}

// array_new<T>() -> (arr)
func arrayNew(Context, []value.Value) (uint, []value.Value, error) {
	return single(value.NewArray())
}

// array_append<T>(arr, v) -> (arr)
func arrayAppend(_ Context, args []value.Value) (uint, []value.Value, error) {
	arr, err := cast[*value.Array](args[0])
	if err != nil {
		return fail(err)
	}
	// Arrays are linear, so the old array cannot be observed again.
	return single(value.NewArray(append(arr.Elements, args[1])...))
}

// Pop an element from the front or back of an array.  On success, the
// remainder and the boxed element are returned.  Otherwise, the (empty) array
// is returned when keep holds.
func arrayPop(front bool, keep bool) Executor {
	return func(ctx Context, args []value.Value) (uint, []value.Value, error) {
		arr, err := cast[*value.Array](args[0])
		//
		if err != nil {
			return fail(err)
		} else if arr.Len() == 0 && keep {
			return 1, []value.Value{arr}, nil
		} else if arr.Len() == 0 {
			return 1, nil, nil
		}
		//
		var (
			n         = arr.Len()
			elem      value.Value
			remainder *value.Array
		)
		//
		if front {
			elem, remainder = arr.Elements[0], value.NewArray(arr.Elements[1:]...)
		} else {
			elem, remainder = arr.Elements[n-1], value.NewArray(arr.Elements[:n-1]...)
		}
		//
		box, err := boxed(ctx, elem)
		if err != nil {
			return fail(err)
		}
		//
		return 0, []value.Value{remainder, box}, nil
	}
}

// array_get<T>(rc, arr, i) { some(rc, box) none(rc) }
func arrayGet(ctx Context, args []value.Value) (uint, []value.Value, error) {
	rc, err := builtin(args[0])
	if err != nil {
		return fail(err)
	}
	//
	arr, err := cast[*value.Array](args[1])
	if err != nil {
		return fail(err)
	}
	//
	index, err := toUint(args[2], u32Bound)
	if err != nil {
		return fail(err)
	} else if !index.Lt(uint256.NewInt(uint64(arr.Len()))) {
		return 1, []value.Value{rc.Use(1)}, nil
	}
	//
	box, err := boxed(ctx, arr.Elements[index.Uint64()])
	if err != nil {
		return fail(err)
	}
	//
	return 0, []value.Value{rc.Use(1), box}, nil
}

// array_slice<T>(rc, arr, start, len) { some(rc, slice) none(rc) }
func arraySlice(_ Context, args []value.Value) (uint, []value.Value, error) {
	rc, err := builtin(args[0])
	if err != nil {
		return fail(err)
	}
	//
	arr, err := cast[*value.Array](args[1])
	if err != nil {
		return fail(err)
	}
	//
	start, length, err := operands(args, u32Bound)
	if err != nil {
		return fail(err)
	}
	//
	end := new(uint256.Int).Add(start, length)
	//
	if uint256.NewInt(uint64(arr.Len())).Lt(end) {
		return 1, []value.Value{rc.Use(1)}, nil
	}
	//
	return 0, []value.Value{rc.Use(1), value.NewArray(arr.Elements[start.Uint64():end.Uint64()]...)}, nil
}

// array_len<T>(arr) -> (len)
func arrayLen(_ Context, args []value.Value) (uint, []value.Value, error) {
	arr, err := cast[*value.Array](args[0])
	if err != nil {
		return fail(err)
	}
	//
	return single(value.NewFelt(uint64(arr.Len())))
}
