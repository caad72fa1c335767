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
package sierra

import (
	"fmt"

	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/util/collection/bit"
	"github.com/consensys/sierra-run/pkg/util/source"
)

// Validate checks the dataflow of every function in a linked program.  That
// is, variables cannot be used before they are defined (or after they have
// been consumed), variables cannot be redefined whilst live, and every return
// must match the signature of its enclosing function.
func Validate(prog *Program) []source.SyntaxError {
	var errors []source.SyntaxError
	//
	for _, fn := range prog.source.Functions {
		errors = append(errors, validateFunction(prog, fn)...)
	}
	//
	return errors
}

// Check for issues related to the dataflow of a given function.  This is
// implemented using a straightforward dataflow analysis.  The dataflow state
// records which variables are possibly undefined, and which are possibly
// defined, at each statement.
func validateFunction(prog *Program, fn *program.Function) []source.SyntaxError {
	var (
		vars  = newVariables()
		entry flowState
	)
	// Initialise entry state (since parameters are assigned on entry)
	for _, param := range fn.Params {
		index := vars.index(param.Var)
		//
		if entry.defined.Contains(index) {
			return prog.source.SourceMap.SyntaxErrors(fn, fmt.Sprintf("duplicate parameter %s", param.Var))
		}
		//
		entry.defined.Insert(index)
	}
	// Every other variable is undefined on entry
	for _, id := range mentionedVariables(prog, fn) {
		if index := vars.index(id); !entry.defined.Contains(index) {
			entry.undefined.Insert(index)
		}
	}
	// Construct the worklist which is the heart of this algorithm.
	work := newWorklist(prog.NumStatements(), fn.Entry, entry)
	// Continue until all reachable statements visited
	for !work.Empty() {
		// Abstract execute statement
		if errs := applyStatementSemantics(&work, prog, fn, vars); len(errs) > 0 {
			return errs
		}
	}
	//
	return nil
}

// Abstractly execute a given statement with respect to a given state at the
// beginning of the statement, propagating the resulting states along each
// branch.
func applyStatementSemantics(work *worklist, prog *Program, fn *program.Function,
	vars *variables) []source.SyntaxError {
	var (
		pc, state = work.Pop()
		stmt      = prog.Statement(pc)
		srcmap    = prog.source.SourceMap
	)
	//
	switch stmt := stmt.(type) {
	case *program.Return:
		if len(stmt.Vars) != len(fn.Returns) {
			msg := fmt.Sprintf("%s returns %d values (found %d)", fn.Id, len(fn.Returns), len(stmt.Vars))
			return srcmap.SyntaxErrors(stmt, msg)
		}
		//
		return consume(stmt, stmt.Vars, &state, vars, srcmap)
	case *program.Invocation:
		if errs := consume(stmt, stmt.Args, &state, vars, srcmap); len(errs) > 0 {
			return errs
		}
		//
		for _, branch := range stmt.Branches {
			target := state.Clone()
			//
			for _, r := range branch.Results {
				index := vars.index(r)
				//
				if target.defined.Contains(index) {
					return srcmap.SyntaxErrors(stmt, fmt.Sprintf("variable %s possibly redefined", r))
				}
				//
				target.defined.Insert(index)
				target.undefined.Remove(index)
			}
			//
			work.Join(branch.Destination(pc), target)
		}
	}
	//
	return nil
}

// Determine the variables mentioned by any statement reachable from the entry
// of a given function.
func mentionedVariables(prog *Program, fn *program.Function) []program.Id {
	var (
		visited bit.Set
		stack   = []uint{fn.Entry}
		ids     []program.Id
	)
	//
	visited.Insert(fn.Entry)
	//
	for len(stack) > 0 {
		pc := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		//
		switch stmt := prog.Statement(pc).(type) {
		case *program.Return:
			ids = append(ids, stmt.Vars...)
		case *program.Invocation:
			ids = append(ids, stmt.Args...)
			//
			for _, branch := range stmt.Branches {
				ids = append(ids, branch.Results...)
				//
				if next := branch.Destination(pc); !visited.Contains(next) {
					visited.Insert(next)
					stack = append(stack, next)
				}
			}
		}
	}
	//
	return ids
}

// Consume a sequence of variables, which must be defined.  Consumed variables
// are no longer available.
func consume(stmt program.Statement, args []program.Id, state *flowState, vars *variables,
	srcmap *source.Map[any]) []source.SyntaxError {
	//
	for _, arg := range args {
		index := vars.index(arg)
		//
		if state.undefined.Contains(index) || !state.defined.Contains(index) {
			return srcmap.SyntaxErrors(stmt, fmt.Sprintf("variable %s possibly undefined", arg))
		}
		//
		state.defined.Remove(index)
		state.undefined.Insert(index)
	}
	//
	return nil
}

// Variables maps variable identifiers to indices within the dataflow sets.
type variables struct {
	indices map[program.Id]uint
}

func newVariables() *variables {
	return &variables{make(map[program.Id]uint)}
}

func (p *variables) index(id program.Id) uint {
	if index, ok := p.indices[id]; ok {
		return index
	}
	//
	index := uint(len(p.indices))
	p.indices[id] = index
	//
	return index
}

// flowState records the variables which are possibly undefined and possibly
// defined at a given statement.  A variable can be used only when definitely
// defined (i.e. it is possibly defined and not possibly undefined).
type flowState struct {
	undefined bit.Set
	defined   bit.Set
}

// Clone creates a true copy of this state.
func (p *flowState) Clone() flowState {
	return flowState{p.undefined.Clone(), p.defined.Clone()}
}

// Union joins a given state into this state, returning true if there is some
// change.
func (p *flowState) Union(other flowState) bool {
	lhs := p.undefined.Union(other.undefined)
	rhs := p.defined.Union(other.defined)
	//
	return lhs || rhs
}

// worklist encapsulates the notion of a worklist, along with the necessary
// dataflow sets for a dataflow analysis algorithm.
type worklist struct {
	// Visited is used to determine which statements have been reached
	visited bit.Set
	states  []flowState
	stack   []uint
}

// newWorklist constructs a new worklist of a given capacity.
func newWorklist(nstates uint, start uint, init flowState) worklist {
	var visited bit.Set
	//
	states := make([]flowState, nstates)
	states[start] = init
	// mark start visited
	visited.Insert(start)
	//
	return worklist{
		visited,
		states,
		[]uint{start},
	}
}

// Empty determines whether or not this worklist is empty.
func (p *worklist) Empty() bool {
	return len(p.stack) == 0
}

// Visited checks whether a given program point was reached during the analysis.
func (p *worklist) Visited(pc uint) bool {
	return p.visited.Contains(pc)
}

// Pop removes the next item from the stack, and also returns the relevant
// dataflow state.
func (p *worklist) Pop() (uint, flowState) {
	n := len(p.stack) - 1
	pc := p.stack[n]
	p.stack = p.stack[:n]
	//
	return pc, p.states[pc].Clone()
}

// Join joins a given state into the state recorded for a given pc location.
func (p *worklist) Join(pc uint, state flowState) {
	pcState := &p.states[pc]
	// Visit state if it hasn't been visited before, or there is an update to
	// its dataflow state.
	if pcState.Union(state) || !p.visited.Contains(pc) {
		// mark item as visited
		p.visited.Insert(pc)
		// push item on stack
		p.stack = append(p.stack, pc)
	}
}
