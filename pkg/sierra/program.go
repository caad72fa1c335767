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

	"github.com/consensys/sierra-run/pkg/sierra/libfunc"
	"github.com/consensys/sierra-run/pkg/sierra/parser"
	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/sierra/types"
	"github.com/consensys/sierra-run/pkg/util/source"
)

// Program is a linked and validated Sierra program, where every type and
// libfunc declaration has been specialised, and every reference resolved.
type Program struct {
	source    *program.Program
	types     *types.Registry
	libfuncs  map[program.Id]libfunc.Libfunc
	functions map[program.Id]*program.Function
}

// Parse a given source file into a linked and validated program.  Any error
// is fatal, and reported as one or more syntax errors.
func Parse(srcfile *source.File) (*Program, []source.SyntaxError) {
	prog, errs := parser.Parse(srcfile)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return Link(prog)
}

// Link a parsed program by specialising its types and libfuncs, and resolving
// all references.  The linked program is then validated.
func Link(prog *program.Program) (*Program, []source.SyntaxError) {
	var (
		srcmap = prog.SourceMap
		errors []source.SyntaxError
	)
	//
	registry, errs := types.Specialize(prog)
	if len(errs) > 0 {
		return nil, errs
	}
	//
	linked := &Program{
		source:    prog,
		types:     registry,
		libfuncs:  make(map[program.Id]libfunc.Libfunc),
		functions: make(map[program.Id]*program.Function),
	}
	// Index functions
	for _, fn := range prog.Functions {
		if _, ok := linked.functions[fn.Id]; ok {
			errors = append(errors, *srcmap.SyntaxError(fn, "duplicate function declaration"))
		} else {
			linked.functions[fn.Id] = fn
		}
		//
		errors = append(errors, linked.checkFunction(fn)...)
	}
	// Specialise libfuncs
	for _, decl := range prog.Libfuncs {
		if _, ok := linked.libfuncs[decl.Id]; ok {
			errors = append(errors, *srcmap.SyntaxError(decl, "duplicate libfunc declaration"))
		} else if lf, err := libfunc.Specialize(decl, linked); err != nil {
			errors = append(errors, *srcmap.SyntaxError(decl, err.Error()))
		} else {
			linked.libfuncs[decl.Id] = lf
		}
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	// Check statements
	for pc, stmt := range prog.Statements {
		errors = append(errors, linked.checkStatement(uint(pc), stmt)...)
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	// Check dataflow
	if errors = Validate(linked); len(errors) > 0 {
		return nil, errors
	}
	//
	return linked, nil
}

// Check a function's signature refers only to known types, and that its entry
// point exists.
func (p *Program) checkFunction(fn *program.Function) []source.SyntaxError {
	var srcmap = p.source.SourceMap
	//
	if fn.Entry >= p.NumStatements() {
		return srcmap.SyntaxErrors(fn, fmt.Sprintf("entry point %d out of bounds", fn.Entry))
	}
	//
	for _, param := range fn.Params {
		if _, ok := p.types.Lookup(param.Type); !ok {
			return srcmap.SyntaxErrors(fn, fmt.Sprintf("unknown type \"%s\"", param.Type))
		}
	}
	//
	for _, ret := range fn.Returns {
		if _, ok := p.types.Lookup(ret); !ok {
			return srcmap.SyntaxErrors(fn, fmt.Sprintf("unknown type \"%s\"", ret))
		}
	}
	//
	return nil
}

// Check an invocation matches the signature of its libfunc, and that its
// branch targets exist.
func (p *Program) checkStatement(pc uint, stmt program.Statement) []source.SyntaxError {
	var (
		srcmap = p.source.SourceMap
		n      = p.NumStatements()
	)
	//
	invoke, ok := stmt.(*program.Invocation)
	if !ok {
		return nil
	}
	//
	lf, ok := p.libfuncs[invoke.Libfunc]
	//
	switch {
	case !ok:
		return srcmap.SyntaxErrors(stmt, fmt.Sprintf("unknown libfunc \"%s\"", invoke.Libfunc))
	case uint(len(invoke.Args)) != lf.Params():
		msg := fmt.Sprintf("%s expects %d arguments (found %d)", lf, lf.Params(), len(invoke.Args))
		return srcmap.SyntaxErrors(stmt, msg)
	case len(invoke.Branches) != len(lf.Branches()):
		msg := fmt.Sprintf("%s has %d branches (found %d)", lf, len(lf.Branches()), len(invoke.Branches))
		return srcmap.SyntaxErrors(stmt, msg)
	}
	//
	for i, branch := range invoke.Branches {
		expected := lf.Branches()[i]
		//
		switch {
		case uint(len(branch.Results)) != expected:
			msg := fmt.Sprintf("branch %d of %s has %d results (found %d)", i, lf, expected, len(branch.Results))
			return srcmap.SyntaxErrors(stmt, msg)
		case branch.Destination(pc) >= n:
			return srcmap.SyntaxErrors(stmt, fmt.Sprintf("branch target %d out of bounds", branch.Destination(pc)))
		case branch.Destination(pc) != pc+1 && lf.Cost() < libfunc.STEP:
			// Transfers of control must be paid for
			msg := fmt.Sprintf("%s cannot branch to %d (only to the next statement)", lf, branch.Destination(pc))
			return srcmap.SyntaxErrors(stmt, msg)
		}
	}
	//
	return nil
}

// Source returns the program from which this was linked.
func (p *Program) Source() *program.Program {
	return p.source
}

// Type implementation for the libfunc.Environment interface.
func (p *Program) Type(id program.Id) (*types.Info, bool) {
	return p.types.Lookup(id)
}

// Function implementation for the libfunc.Environment interface.
func (p *Program) Function(id program.Id) (*program.Function, bool) {
	fn, ok := p.functions[id]
	return fn, ok
}

// Libfunc returns the specialised libfunc for a given identifier.
func (p *Program) Libfunc(id program.Id) (libfunc.Libfunc, bool) {
	lf, ok := p.libfuncs[id]
	return lf, ok
}

// Statement returns the statement at a given index.
func (p *Program) Statement(pc uint) program.Statement {
	return p.source.Statements[pc]
}

// NumStatements returns the number of statements in this program.
func (p *Program) NumStatements() uint {
	return uint(len(p.source.Statements))
}

// FindFunctions returns the functions matching a given name.
func (p *Program) FindFunctions(name string) []*program.Function {
	return p.source.FindFunctions(name)
}
