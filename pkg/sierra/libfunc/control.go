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
	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/sierra/types"
	"github.com/consensys/sierra-run/pkg/vm/value"
)

func init() {
	register("store_temp", overType("store_temp", storeTemp))
	register("store_local", overType("store_local", storeLocal))
	register("alloc_local", overType("alloc_local", allocLocal))
	register("finalize_locals", fixed("finalize_locals", 0, branches(0), 0, nop))
	register("rename", overType("rename", rename))
	register("dup", overType("dup", duplicate))
	register("drop", overType("drop", drop))
	register("branch_align", fixed("branch_align", 0, branches(0), 0, nop))
	register("jump", fixed("jump", 0, branches(0), STEP, nop))
	register("disable_ap_tracking", fixed("disable_ap_tracking", 0, branches(0), 0, nop))
	register("enable_ap_tracking", fixed("enable_ap_tracking", 0, branches(0), 0, nop))
	register("function_call", functionCall)
}

func nop(Context, []value.Value) (uint, []value.Value, error) {
	return single()
}

func identity(_ Context, args []value.Value) (uint, []value.Value, error) {
	return single(args...)
}

// store_temp<T>(v) -> (v) pushes v onto the stack.
func storeTemp(info *types.Info) (Libfunc, error) {
	if !info.Storable {
		return nil, errors.Newf("type %s is not storable", info)
	}
	//
	return NewBasic("store_temp", 1, branches(1), STEP, func(ctx Context, args []value.Value) (uint, []value.Value, error) {
		cells, err := store(ctx, args[0])
		if err != nil {
			return fail(err)
		}
		//
		ctx.Memory().Append(cells...)
		//
		return single(args[0])
	}), nil
}

// alloc_local<T>() -> (uninit) reserves cells for a local variable.
func allocLocal(info *types.Info) (Libfunc, error) {
	return NewBasic("alloc_local", 0, branches(1), 0, func(ctx Context, _ []value.Value) (uint, []value.Value, error) {
		addr := ctx.Memory().Allocate(info.Size)
		//
		return single(value.Uninitialized{Address: addr, Width: info.Size})
	}), nil
}

// store_local<T>(uninit, v) -> (v) writes v into a previously allocated local.
func storeLocal(info *types.Info) (Libfunc, error) {
	return NewBasic("store_local", 2, branches(1), STEP, func(ctx Context, args []value.Value) (uint, []value.Value, error) {
		local, err := cast[value.Uninitialized](args[0])
		if err != nil {
			return fail(err)
		}
		//
		cells, err := store(ctx, args[1])
		if err != nil {
			return fail(err)
		} else if uint(len(cells)) != local.Width {
			return fail(errors.Newf("local of width %d cannot hold %d cells", local.Width, len(cells)))
		}
		//
		for i, cell := range cells {
			if err := ctx.Memory().Write(local.Address+uint(i), cell); err != nil {
				return fail(err)
			}
		}
		//
		return single(args[1])
	}), nil
}

func rename(*types.Info) (Libfunc, error) {
	return NewBasic("rename", 1, branches(1), 0, identity), nil
}

func duplicate(info *types.Info) (Libfunc, error) {
	if !info.Duplicatable {
		return nil, errors.Newf("type %s is not duplicatable", info)
	}
	//
	return NewBasic("dup", 1, branches(2), 0, func(_ Context, args []value.Value) (uint, []value.Value, error) {
		return single(args[0], args[0])
	}), nil
}

func drop(info *types.Info) (Libfunc, error) {
	if !info.Droppable {
		return nil, errors.Newf("type %s is not droppable", info)
	}
	//
	return NewBasic("drop", 1, branches(0), 0, nop), nil
}

// function_call<user@F> calls a user-defined function.
func functionCall(env Environment, args []program.GenericArg) (Libfunc, error) {
	if err := expectArgs("function_call", args, 1); err != nil {
		return nil, err
	}
	//
	farg, ok := args[0].(*program.UserFuncArg)
	if !ok {
		return nil, errors.Newf("expected function argument, found \"%s\"", args[0])
	}
	//
	fn, ok := env.Function(farg.Function)
	if !ok {
		return nil, errors.Newf("unknown function \"%s\"", farg.Function)
	}
	//
	return &FunctionCall{fn}, nil
}
