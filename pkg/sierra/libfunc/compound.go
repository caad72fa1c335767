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
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm/value"
)

func init() {
	register("bool_not_impl", fixed("bool_not_impl", 1, branches(1), 0, boolNot))
	register("bool_and_impl", fixed("bool_and_impl", 2, branches(1), 0, boolOp(func(x, y bool) bool { return x && y })))
	register("bool_or_impl", fixed("bool_or_impl", 2, branches(1), 0, boolOp(func(x, y bool) bool { return x || y })))
	register("bool_xor_impl", fixed("bool_xor_impl", 2, branches(1), 0, boolOp(func(x, y bool) bool { return x != y })))
	register("bool_to_felt252", fixed("bool_to_felt252", 1, branches(1), 0, boolToFelt))
	register("struct_construct", overType("struct_construct", structConstruct))
	register("struct_deconstruct", overType("struct_deconstruct", structDeconstruct("struct_deconstruct")))
	register("struct_snapshot_deconstruct", overType("struct_snapshot_deconstruct",
		structDeconstruct("struct_snapshot_deconstruct")))
	register("enum_init", enumInit)
	register("enum_match", overType("enum_match", enumMatch("enum_match")))
	register("enum_snapshot_match", overType("enum_snapshot_match", enumMatch("enum_snapshot_match")))
}

func toBool(v value.Value) (bool, error) {
	e, err := cast[value.Enum](v)
	//
	if err != nil {
		return false, err
	} else if e.Variant > 1 {
		return false, errors.Newf("malformed bool %s", v)
	}
	//
	return e.Variant == 1, nil
}

// bool_not_impl(x) -> (!x)
func boolNot(_ Context, args []value.Value) (uint, []value.Value, error) {
	x, err := toBool(args[0])
	if err != nil {
		return fail(err)
	}
	//
	return single(value.Bool(!x))
}

func boolOp(op func(x, y bool) bool) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		x, err := toBool(args[0])
		if err != nil {
			return fail(err)
		}
		//
		y, err := toBool(args[1])
		if err != nil {
			return fail(err)
		}
		//
		return single(value.Bool(op(x, y)))
	}
}

// bool_to_felt252(x) -> (0 or 1)
func boolToFelt(_ Context, args []value.Value) (uint, []value.Value, error) {
	x, err := toBool(args[0])
	if err != nil {
		return fail(err)
	} else if x {
		return single(value.Felt{Value: stark252.New(1)})
	}
	//
	return single(value.Felt{})
}

// struct_construct<S>(m1, ..., mn) -> (S)
func structConstruct(info *types.Info) (Libfunc, error) {
	if info.Kind != types.STRUCT {
		return nil, errors.Newf("type %s is not a struct", info)
	}
	//
	return NewBasic("struct_construct", uint(len(info.Members)), branches(1), 0,
		func(_ Context, args []value.Value) (uint, []value.Value, error) {
			members := make([]value.Value, len(args))
			copy(members, args)
			//
			return single(value.Struct{Members: members})
		}), nil
}

// struct_deconstruct<S>(s) -> (m1, ..., mn)
func structDeconstruct(name string) func(*types.Info) (Libfunc, error) {
	return func(info *types.Info) (Libfunc, error) {
		if info.Kind != types.STRUCT {
			return nil, errors.Newf("type %s is not a struct", info)
		}
		//
		n := len(info.Members)
		//
		return NewBasic(name, 1, branches(uint(n)), 0, func(_ Context, args []value.Value) (uint, []value.Value, error) {
			s, err := cast[value.Struct](args[0])
			//
			if err != nil {
				return fail(err)
			} else if len(s.Members) != n {
				return fail(errors.Newf("struct %s has %d members (expected %d)", s, len(s.Members), n))
			}
			//
			return single(s.Members...)
		}), nil
	}
}

// enum_init<E, i>(payload) -> (E)
func enumInit(env Environment, args []program.GenericArg) (Libfunc, error) {
	if err := expectArgs("enum_init", args, 2); err != nil {
		return nil, err
	}
	//
	info, err := typeArg(env, args[0])
	if err != nil {
		return nil, err
	} else if info.Kind != types.ENUM {
		return nil, errors.Newf("type %s is not an enum", info)
	}
	//
	index, err := valueArg(args[1])
	if err != nil {
		return nil, err
	} else if !index.IsUint64() || index.Uint64() >= uint64(len(info.Members)) {
		return nil, errors.Newf("invalid variant %s for enum %s", index, info)
	}
	//
	var (
		variant = uint(index.Uint64())
		width   = info.VariantWidth()
	)
	//
	return NewBasic("enum_init", 1, branches(1), 0, func(_ Context, args []value.Value) (uint, []value.Value, error) {
		return single(value.Enum{Variant: variant, Payload: args[0], Width: width})
	}), nil
}

// enum_match<E>(e) { v1(payload) ... vn(payload) }
func enumMatch(name string) func(*types.Info) (Libfunc, error) {
	return func(info *types.Info) (Libfunc, error) {
		if info.Kind != types.ENUM {
			return nil, errors.Newf("type %s is not an enum", info)
		}
		//
		var (
			n        = len(info.Members)
			outcomes = make([]uint, n)
		)
		//
		for i := range outcomes {
			outcomes[i] = 1
		}
		//
		return NewBasic(name, 1, outcomes, STEP, func(_ Context, args []value.Value) (uint, []value.Value, error) {
			e, err := cast[value.Enum](args[0])
			//
			if err != nil {
				return fail(err)
			} else if e.Variant >= uint(n) {
				return fail(errors.Newf("enum variant %d out of range", e.Variant))
			}
			//
			return e.Variant, []value.Value{e.Payload}, nil
		}), nil
	}
}
