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
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/sierra/types"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm/value"
	"github.com/holiman/uint256"
)

func init() {
	for _, bits := range []uint{8, 16, 32, 64, 128} {
		registerUint(bits)
	}
	//
	register("u128s_from_felt252", fixed("u128s_from_felt252", 2, branches(2, 3), 5*STEP, u128sFromFelt))
	register("u128_guarantee_mul", fixed("u128_guarantee_mul", 2, branches(3), STEP, u128GuaranteeMul))
	register("u128_mul_guarantee_verify", fixed("u128_mul_guarantee_verify", 2, branches(1), 4*STEP, u128Verify))
	register("bitwise", fixed("bitwise", 3, branches(4), 2*STEP, bitwise))
	register("upcast", castGeneric("upcast", upcast))
	register("downcast", castGeneric("downcast", downcast))
	register("u256_is_zero", fixed("u256_is_zero", 1, branches(0, 1), 2*STEP, u256IsZero))
	register("u256_safe_divmod", fixed("u256_safe_divmod", 3, branches(4), 20*STEP, u256SafeDivmod))
}

func registerUint(bits uint) {
	var (
		prefix = fmt.Sprintf("u%d", bits)
		bound  = bitBound(bits)
	)
	//
	register(prefix+"_const", uintConst(prefix+"_const", bound))
	register(prefix+"_overflowing_add", fixed(prefix+"_overflowing_add", 3, branches(2, 2), 3*STEP, overflowingAdd(bound)))
	register(prefix+"_overflowing_sub", fixed(prefix+"_overflowing_sub", 3, branches(2, 2), 3*STEP, overflowingSub(bound)))
	register(prefix+"_eq", fixed(prefix+"_eq", 2, branches(0, 0), STEP, uintEq(bound)))
	register(prefix+"_lt", fixed(prefix+"_lt", 3, branches(1, 1), 3*STEP, uintLt(bound)))
	register(prefix+"_is_zero", fixed(prefix+"_is_zero", 1, branches(0, 1), STEP, uintIsZero(bound)))
	register(prefix+"_safe_divmod", fixed(prefix+"_safe_divmod", 3, branches(3), 6*STEP, safeDivmod(bound)))
	register(prefix+"_to_felt252", fixed(prefix+"_to_felt252", 1, branches(1), 0, identity))
	register(prefix+"_try_from_felt252", fixed(prefix+"_try_from_felt252", 2, branches(2, 1), 4*STEP, tryFromFelt(bound)))
	//
	if bits < 128 {
		register(prefix+"_wide_mul", fixed(prefix+"_wide_mul", 2, branches(1), STEP, wideMul(bound)))
	}
}

func bitBound(bits uint) *uint256.Int {
	return new(uint256.Int).Lsh(uint256.NewInt(1), bits)
}

// Convert a felt into an unsigned integer, which must be below a given bound.
func toUint(v value.Value, bound *uint256.Int) (*uint256.Int, error) {
	f, err := felt(v)
	if err != nil {
		return nil, err
	}
	// Cannot overflow since every felt is below 2^252
	u, _ := uint256.FromBig(f.BigInt())
	//
	if !u.Lt(bound) {
		return nil, errors.Newf("value %s out of range", u.ToBig())
	}
	//
	return u, nil
}

func fromUint(u *uint256.Int) value.Felt {
	return value.Felt{Value: stark252.FromBigInt(u.ToBig())}
}

// Read the two operands of a binary operation, which may be preceded by a
// range check.
func operands(args []value.Value, bound *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	var n = len(args)
	//
	x, err := toUint(args[n-2], bound)
	if err != nil {
		return nil, nil, err
	}
	//
	y, err := toUint(args[n-1], bound)
	if err != nil {
		return nil, nil, err
	}
	//
	return x, y, nil
}

// uN_const<c>() -> (c)
func uintConst(name string, bound *uint256.Int) Generic {
	return func(_ Environment, args []program.GenericArg) (Libfunc, error) {
		if err := expectArgs(name, args, 1); err != nil {
			return nil, err
		}
		//
		c, err := valueArg(args[0])
		if err != nil {
			return nil, err
		}
		//
		u, overflow := uint256.FromBig(c)
		if c.Sign() < 0 || overflow || !u.Lt(bound) {
			return nil, errors.Newf("%s argument %s out of range", name, c)
		}
		//
		return NewBasic(name, 0, branches(1), 0, constant(fromUint(u))), nil
	}
}

// uN_overflowing_add(rc, x, y) { ok(rc, x+y) overflow(rc, x+y-2^N) }
func overflowingAdd(bound *uint256.Int) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		rc, err := builtin(args[0])
		if err != nil {
			return fail(err)
		}
		//
		x, y, err := operands(args, bound)
		if err != nil {
			return fail(err)
		}
		//
		z := new(uint256.Int).Add(x, y)
		//
		if z.Lt(bound) {
			return 0, []value.Value{rc.Use(1), fromUint(z)}, nil
		}
		//
		return 1, []value.Value{rc.Use(1), fromUint(z.Sub(z, bound))}, nil
	}
}

// uN_overflowing_sub(rc, x, y) { ok(rc, x-y) overflow(rc, x-y+2^N) }
func overflowingSub(bound *uint256.Int) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		rc, err := builtin(args[0])
		if err != nil {
			return fail(err)
		}
		//
		x, y, err := operands(args, bound)
		if err != nil {
			return fail(err)
		}
		//
		if !x.Lt(y) {
			return 0, []value.Value{rc.Use(1), fromUint(new(uint256.Int).Sub(x, y))}, nil
		}
		// Wrap around
		z := new(uint256.Int).Sub(bound, new(uint256.Int).Sub(y, x))
		//
		return 1, []value.Value{rc.Use(1), fromUint(z)}, nil
	}
}

// uN_eq(x, y) { false() true() }
func uintEq(bound *uint256.Int) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		x, y, err := operands(args, bound)
		//
		if err != nil {
			return fail(err)
		} else if x.Eq(y) {
			return 1, nil, nil
		}
		//
		return 0, nil, nil
	}
}

// uN_lt(rc, x, y) { false(rc) true(rc) }
func uintLt(bound *uint256.Int) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		rc, err := builtin(args[0])
		if err != nil {
			return fail(err)
		}
		//
		x, y, err := operands(args, bound)
		if err != nil {
			return fail(err)
		} else if x.Lt(y) {
			return 1, []value.Value{rc.Use(1)}, nil
		}
		//
		return 0, []value.Value{rc.Use(1)}, nil
	}
}

// uN_is_zero(x) { zero() non_zero(x) }
func uintIsZero(bound *uint256.Int) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		x, err := toUint(args[0], bound)
		//
		if err != nil {
			return fail(err)
		} else if x.IsZero() {
			return 0, nil, nil
		}
		//
		return 1, args, nil
	}
}

// uN_safe_divmod(rc, x, y) -> (rc, x / y, x % y)
func safeDivmod(bound *uint256.Int) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		rc, err := builtin(args[0])
		if err != nil {
			return fail(err)
		}
		//
		x, y, err := operands(args, bound)
		if err != nil {
			return fail(err)
		} else if y.IsZero() {
			return fail(errors.New("division by zero"))
		}
		//
		q, r := new(uint256.Int).Div(x, y), new(uint256.Int).Mod(x, y)
		//
		return single(rc.Use(3), fromUint(q), fromUint(r))
	}
}

// uN_try_from_felt252(rc, f) { some(rc, f) none(rc) }
func tryFromFelt(bound *uint256.Int) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		rc, err := builtin(args[0])
		if err != nil {
			return fail(err)
		}
		//
		if _, err := toUint(args[1], bound); err == nil {
			return 0, []value.Value{rc.Use(1), args[1]}, nil
		} else if _, err := felt(args[1]); err != nil {
			return fail(err)
		}
		//
		return 1, []value.Value{rc.Use(1)}, nil
	}
}

// uN_wide_mul(x, y) -> (x * y) into the next wider type.
func wideMul(bound *uint256.Int) Executor {
	return func(_ Context, args []value.Value) (uint, []value.Value, error) {
		x, y, err := operands(args, bound)
		if err != nil {
			return fail(err)
		}
		//
		return single(fromUint(new(uint256.Int).Mul(x, y)))
	}
}

var u128Bound = bitBound(128)

// u128s_from_felt252(rc, f) { narrow(rc, f) wide(rc, high, low) }
func u128sFromFelt(_ Context, args []value.Value) (uint, []value.Value, error) {
	rc, err := builtin(args[0])
	if err != nil {
		return fail(err)
	}
	//
	f, err := felt(args[1])
	if err != nil {
		return fail(err)
	}
	//
	u, _ := uint256.FromBig(f.BigInt())
	//
	if u.Lt(u128Bound) {
		return 0, []value.Value{rc.Use(1), args[1]}, nil
	}
	//
	high, low := splitU256(u)
	//
	return 1, []value.Value{rc.Use(3), high, low}, nil
}

// Split a 256-bit integer into its high and low 128-bit halves.
func splitU256(u *uint256.Int) (value.Felt, value.Felt) {
	var (
		mask = new(uint256.Int).Sub(u128Bound, uint256.NewInt(1))
		high = new(uint256.Int).Rsh(u, 128)
		low  = new(uint256.Int).And(u, mask)
	)
	//
	return fromUint(high), fromUint(low)
}

// u128_guarantee_mul(x, y) -> (high, low, guarantee)
func u128GuaranteeMul(_ Context, args []value.Value) (uint, []value.Value, error) {
	x, y, err := operands(args, u128Bound)
	if err != nil {
		return fail(err)
	}
	// Cannot overflow 256 bits
	high, low := splitU256(new(uint256.Int).Mul(x, y))
	//
	return single(high, low, value.Guarantee{})
}

// u128_mul_guarantee_verify(rc, guarantee) -> (rc)
func u128Verify(_ Context, args []value.Value) (uint, []value.Value, error) {
	rc, err := builtin(args[0])
	if err != nil {
		return fail(err)
	} else if _, err := cast[value.Guarantee](args[1]); err != nil {
		return fail(err)
	}
	//
	return single(rc.Use(9))
}

// bitwise(bitwise, x, y) -> (bitwise, x & y, x ^ y, x | y)
func bitwise(_ Context, args []value.Value) (uint, []value.Value, error) {
	bw, err := builtin(args[0])
	if err != nil {
		return fail(err)
	}
	//
	x, y, err := operands(args, u128Bound)
	if err != nil {
		return fail(err)
	}
	//
	var (
		and = new(uint256.Int).And(x, y)
		xor = new(uint256.Int).Xor(x, y)
		or  = new(uint256.Int).Or(x, y)
	)
	//
	return single(bw.Use(1), fromUint(and), fromUint(xor), fromUint(or))
}

// Construct a generic libfunc accepting a source and target integer type.
func castGeneric(name string, build func(from, to *types.Info) (Libfunc, error)) Generic {
	return func(env Environment, args []program.GenericArg) (Libfunc, error) {
		if err := expectArgs(name, args, 2); err != nil {
			return nil, err
		}
		//
		from, err := typeArg(env, args[0])
		if err != nil {
			return nil, err
		}
		//
		to, err := typeArg(env, args[1])
		if err != nil {
			return nil, err
		} else if !isInteger(from) || !isInteger(to) {
			return nil, errors.Newf("%s between non-integer types %s and %s", name, from, to)
		}
		//
		return build(from, to)
	}
}

func isInteger(info *types.Info) bool {
	return info.Kind == types.UINT || info.Kind == types.FELT252
}

// upcast<From, To>(x) -> (x)
func upcast(from, to *types.Info) (Libfunc, error) {
	if from.Bits > to.Bits {
		return nil, errors.Newf("cannot upcast %s to %s", from, to)
	}
	//
	return NewBasic("upcast", 1, branches(1), 0, identity), nil
}

// downcast<From, To>(rc, x) { some(rc, x) none(rc) }
func downcast(_, to *types.Info) (Libfunc, error) {
	var bound = bitBound(to.Bits)
	//
	return NewBasic("downcast", 2, branches(2, 1), 3*STEP, tryFromFelt(bound)), nil
}

// Read a u256 value, which is a struct of its low and high halves.
func toU256(v value.Value) (*uint256.Int, error) {
	s, err := cast[value.Struct](v)
	//
	if err != nil {
		return nil, err
	} else if len(s.Members) != 2 {
		return nil, errors.Newf("malformed u256 %s", v)
	}
	//
	low, err := toUint(s.Members[0], u128Bound)
	if err != nil {
		return nil, err
	}
	//
	high, err := toUint(s.Members[1], u128Bound)
	if err != nil {
		return nil, err
	}
	//
	return high.Lsh(high, 128).Or(high, low), nil
}

func fromU256(u *uint256.Int) value.Struct {
	high, low := splitU256(u)
	//
	return value.Struct{Members: []value.Value{low, high}}
}

// u256_is_zero(x) { zero() non_zero(x) }
func u256IsZero(_ Context, args []value.Value) (uint, []value.Value, error) {
	x, err := toU256(args[0])
	//
	if err != nil {
		return fail(err)
	} else if x.IsZero() {
		return 0, nil, nil
	}
	//
	return 1, args, nil
}

// u256_safe_divmod(rc, x, y) -> (rc, x / y, x % y, guarantee)
func u256SafeDivmod(_ Context, args []value.Value) (uint, []value.Value, error) {
	rc, err := builtin(args[0])
	if err != nil {
		return fail(err)
	}
	//
	x, err := toU256(args[1])
	if err != nil {
		return fail(err)
	}
	//
	y, err := toU256(args[2])
	if err != nil {
		return fail(err)
	} else if y.IsZero() {
		return fail(errors.New("division by zero"))
	}
	//
	q, r := new(uint256.Int).Div(x, y), new(uint256.Int).Mod(x, y)
	//
	return single(rc.Use(6), fromU256(q), fromU256(r), value.Guarantee{})
}
