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
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/sierra/types"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm/gas"
	"github.com/consensys/sierra-run/pkg/vm/memory"
	"github.com/consensys/sierra-run/pkg/vm/value"
)

// STEP is the gas cost of a single machine step.  Libfunc costs are expressed
// as multiples of this, approximating the number of steps taken by the
// corresponding machine code.  Libfuncs which are folded into neighbouring
// instructions cost nothing, whilst any libfunc which can transfer control
// costs at least one step (hence every loop consumes gas).
const STEP uint64 = 100

// Context provides the runtime environment in which a libfunc executes.
type Context interface {
	// Memory of the running machine.
	Memory() *memory.Memory
	// Gas meter of the running machine.
	Gas() *gas.Meter
}

// Environment provides the information needed to specialise a generic
// libfunc, namely the set of declared types and functions.
type Environment interface {
	Type(id program.Id) (*types.Info, bool)
	Function(id program.Id) (*program.Function, bool)
}

// Libfunc is a specialised library function, as invoked by a statement.
type Libfunc interface {
	fmt.Stringer
	// Params returns the number of arguments accepted.
	Params() uint
	// Branches returns the number of results bound on each branch.
	Branches() []uint
	// Cost returns the gas charged for each invocation.
	Cost() uint64
	// Execute this libfunc with the given arguments, returning the branch
	// taken along with the results bound on that branch.
	Execute(ctx Context, args []value.Value) (uint, []value.Value, error)
}

// Executor implements the semantics of a libfunc.
type Executor func(ctx Context, args []value.Value) (uint, []value.Value, error)

// Basic is a libfunc whose semantics is given by an executor.
type Basic struct {
	name     string
	params   uint
	branches []uint
	cost     uint64
	execute  Executor
}

// NewBasic constructs a libfunc with any number of branches.
func NewBasic(name string, params uint, branches []uint, cost uint64, execute Executor) *Basic {
	return &Basic{name, params, branches, cost, execute}
}

// Params implementation for the Libfunc interface.
func (p *Basic) Params() uint {
	return p.params
}

// Branches implementation for the Libfunc interface.
func (p *Basic) Branches() []uint {
	return p.branches
}

// Cost implementation for the Libfunc interface.
func (p *Basic) Cost() uint64 {
	return p.cost
}

// Execute implementation for the Libfunc interface.
func (p *Basic) Execute(ctx Context, args []value.Value) (uint, []value.Value, error) {
	if uint(len(args)) != p.params {
		return 0, nil, errors.Newf("%s expects %d arguments (found %d)", p.name, p.params, len(args))
	}
	//
	return p.execute(ctx, args)
}

func (p *Basic) String() string {
	return p.name
}

// FunctionCall invokes a user function.  Calls manipulate the call stack, and
// are therefore executed directly by the machine.
type FunctionCall struct {
	Function *program.Function
}

// Params implementation for the Libfunc interface.
func (p *FunctionCall) Params() uint {
	return uint(len(p.Function.Params))
}

// Branches implementation for the Libfunc interface.
func (p *FunctionCall) Branches() []uint {
	return []uint{uint(len(p.Function.Returns))}
}

// Cost implementation for the Libfunc interface.
func (p *FunctionCall) Cost() uint64 {
	return 2 * STEP
}

// Execute implementation for the Libfunc interface.
func (p *FunctionCall) Execute(Context, []value.Value) (uint, []value.Value, error) {
	return 0, nil, errors.Newf("call to %s must be executed by the machine", p.Function.Id)
}

func (p *FunctionCall) String() string {
	return fmt.Sprintf("function_call<user@%s>", p.Function.Id)
}

// Generic is responsible for specialising a generic libfunc.
type Generic func(env Environment, args []program.GenericArg) (Libfunc, error)

var generics = make(map[string]Generic)

func register(name string, generic Generic) {
	if _, ok := generics[name]; ok {
		panic(fmt.Sprintf("duplicate libfunc %s", name))
	}
	//
	generics[name] = generic
}

// Specialize a given libfunc declaration.
func Specialize(decl *program.LibfuncDeclaration, env Environment) (Libfunc, error) {
	generic, ok := generics[decl.Generic]
	//
	if !ok {
		return nil, errors.Newf("unknown libfunc \"%s\"", decl.Generic)
	}
	//
	return generic(env, decl.Args)
}

// IsKnown determines whether a given generic libfunc name is supported.
func IsKnown(name string) bool {
	_, ok := generics[name]
	return ok
}

// ============================================================================
// Specialisation helpers
// ============================================================================

// Construct a generic libfunc which accepts no generic arguments.
func fixed(name string, params uint, branches []uint, cost uint64, execute Executor) Generic {
	return func(_ Environment, args []program.GenericArg) (Libfunc, error) {
		if err := expectArgs(name, args, 0); err != nil {
			return nil, err
		}
		//
		return NewBasic(name, params, branches, cost, execute), nil
	}
}

// Construct a generic libfunc which accepts exactly one type argument.
func overType(name string, build func(*types.Info) (Libfunc, error)) Generic {
	return func(env Environment, args []program.GenericArg) (Libfunc, error) {
		if err := expectArgs(name, args, 1); err != nil {
			return nil, err
		}
		//
		info, err := typeArg(env, args[0])
		if err != nil {
			return nil, err
		}
		//
		return build(info)
	}
}

func expectArgs(name string, args []program.GenericArg, n int) error {
	if len(args) != n {
		return errors.Newf("%s expects %d generic arguments (found %d)", name, n, len(args))
	}
	//
	return nil
}

func typeArg(env Environment, arg program.GenericArg) (*types.Info, error) {
	targ, ok := arg.(*program.TypeArg)
	//
	if !ok {
		return nil, errors.Newf("expected type argument, found \"%s\"", arg)
	}
	//
	info, ok := env.Type(targ.Type)
	if !ok {
		return nil, errors.Newf("unknown type \"%s\"", targ.Type)
	}
	//
	return info, nil
}

func valueArg(arg program.GenericArg) (*big.Int, error) {
	varg, ok := arg.(*program.ValueArg)
	//
	if !ok {
		return nil, errors.Newf("expected value argument, found \"%s\"", arg)
	}
	//
	return &varg.Value, nil
}

// ============================================================================
// Execution helpers
// ============================================================================

func cast[T value.Value](v value.Value) (T, error) {
	t, ok := v.(T)
	//
	if !ok {
		return t, errors.Newf("unexpected value %s (%T)", v, v)
	}
	//
	return t, nil
}

func felt(v value.Value) (stark252.Element, error) {
	f, err := cast[value.Felt](v)
	return f.Value, err
}

func builtin(v value.Value) (value.Builtin, error) {
	return cast[value.Builtin](v)
}

// single returns an executor result on the first branch.
func single(results ...value.Value) (uint, []value.Value, error) {
	return 0, results, nil
}

func fail(err error) (uint, []value.Value, error) {
	return 0, nil, err
}

// store a value in memory, returning the cells it occupies.
func store(ctx Context, v value.Value) ([]stark252.Element, error) {
	return v.Store(ctx.Memory())
}

// branches constructs a branch signature.
func branches(results ...uint) []uint {
	return results
}
