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
package vm

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/decode"
	"github.com/consensys/sierra-run/pkg/sierra"
	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/sierra/types"
	"github.com/consensys/sierra-run/pkg/util"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm/gas"
	"github.com/consensys/sierra-run/pkg/vm/machine"
	"github.com/consensys/sierra-run/pkg/vm/value"
	log "github.com/sirupsen/logrus"
)

// ErrSetup marks errors arising before execution begins, such as an unknown
// entry point or mismatched arguments.
var ErrSetup = errors.New("setup error")

// ErrStepLimit signals a run exceeded its configured step ceiling.
var ErrStepLimit = machine.ErrStepLimit

// OUT_OF_GAS_MESSAGE is the panic payload reported when a run exhausts its gas
// budget.
const OUT_OF_GAS_MESSAGE = "Out of gas"

// PANIC_RESULT identifies the enum used by compiled programs to signal a
// panic from a function.
const PANIC_RESULT = "core::panics::PanicResult"

// CHUNK determines how many steps are executed between checks for
// cancellation.
const CHUNK = 1024

// Config determines how a runner executes functions.
type Config struct {
	// Whether execution is metered.
	GasEnabled bool
	// Maximum number of steps permitted for any run, where 0 means unlimited.
	MaxSteps uint
}

// Runner executes functions of a given program.  Each run is independent,
// owning its own memory and gas meter.
type Runner struct {
	program *sierra.Program
	config  Config
}

// NewRunner constructs a runner for a linked program.
func NewRunner(prog *sierra.Program, config Config) (*Runner, error) {
	if prog == nil {
		return nil, errors.Mark(errors.New("missing program"), ErrSetup)
	}
	//
	return &Runner{prog, config}, nil
}

// Program returns the program executed by this runner.
func (p *Runner) Program() *sierra.Program {
	return p.program
}

// RunFunction executes the function identified by name with some arguments,
// and (for metered runners) a given gas limit.  Builtin parameters of the
// function are supplied implicitly, hence args covers only the remaining
// parameters.
func (p *Runner) RunFunction(ctx context.Context, name string, args []big.Int, gasLimit *uint64) (RunResult, error) {
	var (
		stats = util.NewPerfStats()
		meter = gas.Unmetered()
	)
	//
	if gasLimit != nil && !p.config.GasEnabled {
		return RunResult{}, setupErrorf("gas limit provided to unmetered runner")
	} else if gasLimit == nil && p.config.GasEnabled {
		return RunResult{}, setupErrorf("gas limit required by metered runner")
	} else if gasLimit != nil {
		meter = gas.NewMeter(*gasLimit)
	}
	//
	fn, err := p.resolve(name)
	if err != nil {
		return RunResult{}, err
	}
	//
	params, err := p.bind(fn, args)
	if err != nil {
		return RunResult{}, err
	}
	//
	vm, err := machine.Boot(p.program, fn, params, meter)
	if err != nil {
		return RunResult{}, errors.Mark(err, ErrSetup)
	}
	//
	log.Debugf("running %s (%s)", fn.Id, meter)
	//
	steps, err := machine.ExecuteAll(ctx, vm, CHUNK, p.config.MaxSteps)
	if err != nil {
		return RunResult{}, errors.Wrapf(err, "running %s", fn.Id)
	}
	//
	outcome, err := p.outcome(fn, vm, meter)
	if err != nil {
		return RunResult{}, errors.Wrapf(err, "running %s", fn.Id)
	}
	//
	result := RunResult{Value: outcome, Memory: vm.Memory().Snapshot(), Steps: steps}
	//
	if remaining, ok := meter.Remaining(); ok {
		result.GasCounter = util.Some(remaining)
	}
	//
	stats.Log("Execution", log.Fields{"steps": steps, "cells": vm.Memory().Len()})
	//
	return result, nil
}

// Resolve a function name into exactly one function.
func (p *Runner) resolve(name string) (*program.Function, error) {
	fns := p.program.FindFunctions(name)
	//
	switch len(fns) {
	case 0:
		return nil, setupErrorf("unknown function \"%s\"", name)
	case 1:
		return fns[0], nil
	default:
		ids := make([]string, len(fns))
		//
		for i, fn := range fns {
			ids[i] = fn.Id.String()
		}
		//
		return nil, setupErrorf("function \"%s\" is ambiguous (%s)", name, strings.Join(ids, ", "))
	}
}

// Bind arguments to the parameters of a function, supplying builtins
// implicitly.
func (p *Runner) bind(fn *program.Function, args []big.Int) ([]value.Value, error) {
	var (
		params = make([]value.Value, len(fn.Params))
		index  = 0
	)
	//
	for i, param := range fn.Params {
		info, _ := p.program.Type(param.Type)
		//
		if info.IsBuiltin() {
			params[i] = value.Builtin{Name: info.Generic}
			continue
		} else if index >= len(args) {
			return nil, setupErrorf("%s expects more than %d arguments", fn.Id, len(args))
		} else if info.Size != 1 {
			return nil, setupErrorf("parameter %s of %s cannot be supplied (type %s)", param.Var, fn.Id, info)
		}
		//
		val, ok := types.CheckValue(info, &args[index])
		if !ok {
			return nil, setupErrorf("argument %s invalid for parameter %s of %s", args[index].String(), param.Var,
				fn.Id)
		}
		//
		params[i] = value.Felt{Value: stark252.FromBigInt(val)}
		index++
	}
	//
	if index != len(args) {
		return nil, setupErrorf("%s expects %d arguments (found %d)", fn.Id, index, len(args))
	}
	//
	return params, nil
}

// Determine the outcome of a halted machine.
func (p *Runner) outcome(fn *program.Function, vm *machine.Machine, meter *gas.Meter) (Outcome, error) {
	var values []stark252.Element
	//
	if vm.OutOfGas() {
		return outOfGas(), nil
	}
	//
	for i, v := range vm.Result() {
		info, _ := p.program.Type(fn.Returns[i])
		//
		if info.IsBuiltin() {
			continue
		} else if e, ok := v.(value.Enum); ok && isPanicResult(info) {
			return p.panicResult(e, vm, meter)
		}
		//
		cells, err := v.Store(vm.Memory())
		if err != nil {
			return nil, err
		}
		//
		values = append(values, cells...)
	}
	//
	return Success{values}, nil
}

// Decode a returned PanicResult into either a success or a panic.
func (p *Runner) panicResult(result value.Enum, vm *machine.Machine, meter *gas.Meter) (Outcome, error) {
	if result.Variant == 0 {
		cells, err := result.Payload.Store(vm.Memory())
		return Success{cells}, err
	}
	// Error variant holds (panic, Array<felt252>)
	var values []stark252.Element
	//
	payload, ok := result.Payload.(value.Struct)
	if !ok || len(payload.Members) == 0 {
		return nil, errors.Newf("malformed panic %s", result)
	}
	//
	array, ok := payload.Members[len(payload.Members)-1].(*value.Array)
	if !ok {
		return nil, errors.Newf("malformed panic %s", result)
	}
	//
	for _, e := range array.Elements {
		cells, err := e.Store(vm.Memory())
		if err != nil {
			return nil, err
		}
		//
		values = append(values, cells...)
	}
	// Programs signal exhausted gas by panicking themselves
	if meter.Exhausted() && len(values) == 1 && values[0].Equals(decode.MustEncodeShortString(OUT_OF_GAS_MESSAGE)) {
		return Panic{values, OUT_OF_GAS}, nil
	}
	//
	return Panic{values, USER_PANIC}, nil
}

func outOfGas() Panic {
	return Panic{[]stark252.Element{decode.MustEncodeShortString(OUT_OF_GAS_MESSAGE)}, OUT_OF_GAS}
}

// Determine whether a type is the enum returned by panicking functions.  This
// is identified either by name or, for programs without debug names,
// structurally as a two-variant enum whose error variant ends with an array of
// felts.
func isPanicResult(info *types.Info) bool {
	if info.Kind != types.ENUM || len(info.Members) != 2 {
		return false
	} else if strings.HasPrefix(info.Name.String(), PANIC_RESULT) {
		return true
	} else if strings.Contains(info.Name.String(), "::") {
		// Some other named enum
		return false
	}
	//
	variant := info.Members[1]
	//
	if variant.Kind != types.STRUCT || len(variant.Members) == 0 {
		return false
	}
	//
	last := variant.Members[len(variant.Members)-1]
	//
	return last.Kind == types.ARRAY && last.Inner.Kind == types.FELT252
}

func setupErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrSetup)
}
