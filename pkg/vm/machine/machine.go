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
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/sierra"
	"github.com/consensys/sierra-run/pkg/sierra/libfunc"
	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/util/collection/stack"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm/gas"
	"github.com/consensys/sierra-run/pkg/vm/memory"
	"github.com/consensys/sierra-run/pkg/vm/value"
	log "github.com/sirupsen/logrus"
)

// ErrExecution signals a fault arising during execution of a program which
// passed validation, such as a libfunc applied to a malformed value.
var ErrExecution = errors.New("execution error")

// Frame represents an active function call.
type Frame struct {
	// Function being executed
	function *program.Function
	// Index of the statement being executed
	pc uint
	// Frame pointer (i.e. first cell allocated by this frame)
	fp uint
	// Variables which are currently live.
	vars map[program.Id]value.Value
}

// Function returns the function executing in this frame.
func (p *Frame) Function() *program.Function {
	return p.function
}

// Pc returns the index of the statement being executed in this frame.
func (p *Frame) Pc() uint {
	return p.pc
}

// Fp returns the frame pointer of this frame.
func (p *Frame) Fp() uint {
	return p.fp
}

// Machine executes a linked Sierra program, one statement at a time.  Values
// live in variables of the active frame, whilst memory records every value
// stored during execution.  Gas is charged for each statement before it has
// any effect.
type Machine struct {
	program   *sierra.Program
	memory    *memory.Memory
	gas       *gas.Meter
	callstack *stack.Stack[*Frame]
	// Values returned by the entry function
	result []value.Value
	// Indicates the gas budget could not pay for a statement.
	outOfGas bool
	halted   bool
}

// Boot constructs a machine which is ready to execute a given function with
// some arguments.  The arguments are stored in memory before the first frame.
func Boot(prog *sierra.Program, fn *program.Function, args []value.Value, meter *gas.Meter) (*Machine, error) {
	var machine = &Machine{
		program:   prog,
		memory:    memory.New(),
		gas:       meter,
		callstack: stack.NewStack[*Frame](),
	}
	//
	if len(args) != len(fn.Params) {
		return nil, errors.Newf("%s expects %d arguments (found %d)", fn.Id, len(fn.Params), len(args))
	}
	//
	for _, arg := range args {
		cells, err := arg.Store(machine.memory)
		if err != nil {
			return nil, err
		}
		//
		machine.memory.Append(cells...)
	}
	//
	machine.call(fn, args)
	//
	return machine, nil
}

// Memory implementation for the libfunc.Context interface.
func (p *Machine) Memory() *memory.Memory {
	return p.memory
}

// Gas implementation for the libfunc.Context interface.
func (p *Machine) Gas() *gas.Meter {
	return p.gas
}

// Halted implementation for the Core interface.
func (p *Machine) Halted() bool {
	return p.halted
}

// OutOfGas indicates whether this machine halted because the gas budget was
// exhausted.
func (p *Machine) OutOfGas() bool {
	return p.outOfGas
}

// Result returns the values returned by the entry function, provided the
// machine halted normally.
func (p *Machine) Result() []value.Value {
	return p.result
}

// CallStack returns the active frames of this machine.
func (p *Machine) CallStack() []*Frame {
	return p.callstack.Items()
}

// Execute implementation for the Core interface.
func (p *Machine) Execute(steps uint) (uint, error) {
	var nsteps uint
	//
	for ; nsteps < steps && !p.halted; nsteps++ {
		if err := p.step(); err != nil {
			frame := p.callstack.Top()
			stmt := p.program.Statement(frame.pc)
			//
			return nsteps, errors.Wrapf(errors.Mark(err, ErrExecution), "statement %d (%s) in %s", frame.pc, stmt,
				frame.function.Id)
		}
	}
	//
	return nsteps, nil
}

// Execute a single statement.
func (p *Machine) step() error {
	var (
		frame = p.callstack.Top()
		stmt  = p.program.Statement(frame.pc)
		cost  = libfunc.STEP
	)
	//
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Tracef("[%d] %s (ap=%d, fp=%d, gas=%s)", frame.pc, stmt, p.memory.Len(), frame.fp, p.gas)
	}
	//
	switch stmt := stmt.(type) {
	case *program.Return:
		if !p.charge(cost) {
			return nil
		}
		//
		return p.ret(frame, stmt)
	case *program.Invocation:
		lf, _ := p.program.Libfunc(stmt.Libfunc)
		//
		if !p.charge(lf.Cost()) {
			return nil
		}
		//
		return p.invoke(frame, stmt, lf)
	default:
		return fmt.Errorf("unknown statement %s", stmt)
	}
}

// Charge the cost of a statement, halting if it cannot be paid.
func (p *Machine) charge(cost uint64) bool {
	if !p.gas.Charge(cost) {
		p.outOfGas = true
		p.halted = true
		//
		return false
	}
	//
	return true
}

func (p *Machine) invoke(frame *Frame, stmt *program.Invocation, lf libfunc.Libfunc) error {
	args, err := frame.take(stmt.Args)
	if err != nil {
		return err
	}
	// Calls are executed directly
	if call, ok := lf.(*libfunc.FunctionCall); ok {
		p.call(call.Function, args)
		return nil
	}
	//
	branch, results, err := lf.Execute(p, args)
	//
	if err != nil {
		return err
	} else if branch >= uint(len(stmt.Branches)) {
		return errors.Newf("%s took non-existent branch %d", lf, branch)
	}
	//
	return frame.advance(stmt.Branches[branch], results)
}

// Call a function by pushing a new frame.  The caller's frame pointer and
// return address are first recorded in memory.
func (p *Machine) call(fn *program.Function, args []value.Value) {
	var vars = make(map[program.Id]value.Value)
	//
	if !p.callstack.IsEmpty() {
		caller := p.callstack.Top()
		p.memory.Append(stark252.New(uint64(caller.fp)), stark252.New(uint64(caller.pc)))
	}
	//
	for i, param := range fn.Params {
		vars[param.Var] = args[i]
	}
	//
	p.callstack.Push(&Frame{fn, fn.Entry, p.memory.Len(), vars})
}

// Return from a function by popping its frame, and binding the returned
// values in the caller's frame.
func (p *Machine) ret(frame *Frame, stmt *program.Return) error {
	values, err := frame.take(stmt.Vars)
	if err != nil {
		return err
	}
	//
	p.callstack.Pop()
	// Check whether entry function returned
	if p.callstack.IsEmpty() {
		p.result = values
		p.halted = true
		//
		return nil
	}
	//
	caller := p.callstack.Top()
	call := p.program.Statement(caller.pc).(*program.Invocation)
	//
	return caller.advance(call.Branches[0], values)
}

// Take (i.e. consume) the values of some variables.
func (p *Frame) take(vars []program.Id) ([]value.Value, error) {
	var values = make([]value.Value, len(vars))
	//
	for i, v := range vars {
		val, ok := p.vars[v]
		if !ok {
			return nil, errors.Newf("variable %s undefined", v)
		}
		//
		values[i] = val
		delete(p.vars, v)
	}
	//
	return values, nil
}

// Bind the results of a branch, and continue at its destination.
func (p *Frame) advance(branch program.BranchInfo, results []value.Value) error {
	if len(results) != len(branch.Results) {
		return errors.Newf("expected %d results (found %d)", len(branch.Results), len(results))
	}
	//
	for i, r := range branch.Results {
		p.vars[r] = results[i]
	}
	//
	p.pc = branch.Destination(p.pc)
	//
	return nil
}
