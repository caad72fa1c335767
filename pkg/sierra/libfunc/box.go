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
)

func init() {
	register("into_box", overType("into_box", boxLibfunc("into_box", 1, STEP, intoBox)))
	register("unbox", overType("unbox", boxLibfunc("unbox", 1, 0, unbox)))
	register("box_forward_snapshot", overType("box_forward_snapshot", boxLibfunc("box_forward_snapshot", 1, 0, identity)))
	register("snapshot_take", overType("snapshot_take", snapshotTake))
	register("null", overType("null", boxLibfunc("null", 0, 0, null)))
	register("nullable_from_box", overType("nullable_from_box", boxLibfunc("nullable_from_box", 1, 0, nullableFromBox)))
	register("match_nullable", overType("match_nullable", matchNullable))
}

func boxLibfunc(name string, params uint, cost uint64, execute Executor) func(*types.Info) (Libfunc, error) {
	return func(*types.Info) (Libfunc, error) {
		return NewBasic(name, params, branches(1), cost, execute), nil
	}
}

// Box a value, writing its contents into memory.
func boxed(ctx Context, v value.Value) (*value.Box, error) {
	box := value.NewBox(v)
	//
	if _, err := store(ctx, box); err != nil {
		return nil, err
	}
	//
	return box, nil
}

// into_box<T>(v) -> (box)
func intoBox(ctx Context, args []value.Value) (uint, []value.Value, error) {
	box, err := boxed(ctx, args[0])
	if err != nil {
		return fail(err)
	}
	//
	return single(box)
}

// unbox<T>(box) -> (v)
func unbox(_ Context, args []value.Value) (uint, []value.Value, error) {
	box, err := cast[*value.Box](args[0])
	if err != nil {
		return fail(err)
	}
	//
	return single(box.Inner)
}

// snapshot_take<T>(v) -> (v, snapshot)
func snapshotTake(*types.Info) (Libfunc, error) {
	return NewBasic("snapshot_take", 1, branches(2), 0, func(_ Context, args []value.Value) (uint, []value.Value, error) {
		return single(args[0], args[0])
	}), nil
}

// null<T>() -> (null)
func null(Context, []value.Value) (uint, []value.Value, error) {
	return single(value.Nullable{})
}

// nullable_from_box<T>(box) -> (nullable)
func nullableFromBox(_ Context, args []value.Value) (uint, []value.Value, error) {
	box, err := cast[*value.Box](args[0])
	if err != nil {
		return fail(err)
	}
	//
	return single(value.Nullable{Box: box})
}

// match_nullable<T>(nullable) { null() not_null(box) }
func matchNullable(*types.Info) (Libfunc, error) {
	return NewBasic("match_nullable", 1, branches(0, 1), STEP, func(_ Context, args []value.Value) (uint, []value.Value, error) {
		n, err := cast[value.Nullable](args[0])
		//
		if err != nil {
			return fail(err)
		} else if n.Box == nil {
			return 0, nil, nil
		}
		//
		return 1, []value.Value{n.Box}, nil
	}), nil
}
