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

type feltOp func(x, y stark252.Element) (stark252.Element, error)

func init() {
	register("felt252_const", feltConst)
	register("felt252_add", fixed("felt252_add", 2, branches(1), 0, binary(add)))
	register("felt252_sub", fixed("felt252_sub", 2, branches(1), 0, binary(sub)))
	register("felt252_mul", fixed("felt252_mul", 2, branches(1), 0, binary(mul)))
	register("felt252_div", fixed("felt252_div", 2, branches(1), 0, binary(div)))
	register("felt252_add_const", feltOpConst("felt252_add_const", add))
	register("felt252_sub_const", feltOpConst("felt252_sub_const", sub))
	register("felt252_mul_const", feltOpConst("felt252_mul_const", mul))
	register("felt252_div_const", feltOpConst("felt252_div_const", div))
	register("felt252_is_zero", fixed("felt252_is_zero", 1, branches(0, 1), STEP, feltIsZero))
	register("unwrap_non_zero", overType("unwrap_non_zero", unwrapNonZero))
	register("const_as_immediate", constAsImmediate)
	register("const_as_box", constAsBox)
}

func add(x, y stark252.Element) (stark252.Element, error) { return x.Add(y), nil }
func sub(x, y stark252.Element) (stark252.Element, error) { return x.Sub(y), nil }
func mul(x, y stark252.Element) (stark252.Element, error) { return x.Mul(y), nil }

func div(x, y stark252.Element) (stark252.Element, error) {
	if y.IsZero() {
		return x, errors.New("division by zero")
	}
	//
	return x.Div(y), nil
}

func binary(op feltOp) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		x, err := felt(args[0])
		if err != nil {
			return fail(err)
		}
		//
		y, err := felt(args[1])
		if err != nil {
			return fail(err)
		}
		//
		z, err := op(x, y)
		if err != nil {
			return fail(err)
		}
		//
		return single(value.Felt{Value: z})
	}
}

// felt252_const<c>() -> (c)
func feltConst(_ Environment, args []program.GenericArg) (Libfunc, error) {
	c, err := feltValueArg("felt252_const", args)
	if err != nil {
		return nil, err
	}
	//
	return NewBasic("felt252_const", 0, branches(1), 0, constant(value.Felt{Value: c})), nil
}

// felt252_op_const<c>(x) -> (x op c)
func feltOpConst(name string, op feltOp) Generic {
	return func(_ Environment, args []program.GenericArg) (Libfunc, error) {
		c, err := feltValueArg(name, args)
		//
		if err != nil {
			return nil, err
		} else if name == "felt252_div_const" && c.IsZero() {
			return nil, errors.New("felt252_div_const by zero")
		}
		//
		return NewBasic(name, 1, branches(1), 0, func(_ Context, args []value.Value) (uint, []value.Value, error) {
			x, err := felt(args[0])
			if err != nil {
				return fail(err)
			}
			//
			z, err := op(x, c)
			if err != nil {
				return fail(err)
			}
			//
			return single(value.Felt{Value: z})
		}), nil
	}
}

func feltValueArg(name string, args []program.GenericArg) (stark252.Element, error) {
	if err := expectArgs(name, args, 1); err != nil {
		return stark252.Element{}, err
	}
	//
	c, err := valueArg(args[0])
	if err != nil {
		return stark252.Element{}, err
	}
	//
	return stark252.FromBigInt(c), nil
}

func constant(v value.Value) Executor {
	return func(Context, []value.Value) (uint, []value.Value, error) {
		return single(v)
	}
}

// felt252_is_zero(x) { zero() non_zero(x) }
func feltIsZero(_ Context, args []value.Value) (uint, []value.Value, error) {
	x, err := felt(args[0])
	//
	if err != nil {
		return fail(err)
	} else if x.IsZero() {
		return 0, nil, nil
	}
	//
	return 1, args, nil
}

func unwrapNonZero(*types.Info) (Libfunc, error) {
	return NewBasic("unwrap_non_zero", 1, branches(1), 0, identity), nil
}

// const_as_immediate<Const<T, c>>() -> (c)
func constAsImmediate(env Environment, args []program.GenericArg) (Libfunc, error) {
	c, err := constArg(env, args, "const_as_immediate")
	if err != nil {
		return nil, err
	}
	//
	return NewBasic("const_as_immediate", 0, branches(1), 0, constant(value.Felt{Value: c})), nil
}

// const_as_box<Const<T, c>, segment>() -> (Box<T>)
func constAsBox(env Environment, args []program.GenericArg) (Libfunc, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, errors.Newf("const_as_box expects 1 or 2 generic arguments (found %d)", len(args))
	}
	//
	c, err := constArg(env, args[0:1], "const_as_box")
	if err != nil {
		return nil, err
	}
	//
	return NewBasic("const_as_box", 0, branches(1), STEP, func(ctx Context, _ []value.Value) (uint, []value.Value, error) {
		box := value.NewBox(value.Felt{Value: c})
		//
		if _, err := store(ctx, box); err != nil {
			return fail(err)
		}
		//
		return single(box)
	}), nil
}

func constArg(env Environment, args []program.GenericArg, name string) (stark252.Element, error) {
	if err := expectArgs(name, args, 1); err != nil {
		return stark252.Element{}, err
	}
	//
	info, err := typeArg(env, args[0])
	if err != nil {
		return stark252.Element{}, err
	} else if info.Kind != types.CONST {
		return stark252.Element{}, errors.Newf("type %s is not a constant", info)
	}
	//
	return stark252.FromBigInt(&info.Value), nil
}
