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
package program

import (
	"fmt"
	"strings"
)

// Statement represents a single statement of a program, which is either the
// invocation of a libfunc or a return.
type Statement interface {
	fmt.Stringer
	isStatement()
}

// BranchInfo describes one way in which control can leave an invocation.  The
// branch transfers control to a given statement (or the next statement, in the
// case of fallthrough), binding the given result variables.
type BranchInfo struct {
	// Target statement (ignored when Fallthrough holds).
	Target uint
	// Fallthrough indicates control continues with the next statement.
	Fallthrough bool
	// Variables to which the results of this branch are bound.
	Results []Id
}

// Destination returns the statement index reached by this branch, when taken
// from a statement at the given index.
func (p *BranchInfo) Destination(pc uint) uint {
	if p.Fallthrough {
		return pc + 1
	}
	//
	return p.Target
}

func (p *BranchInfo) String() string {
	var target = "fallthrough"
	//
	if !p.Fallthrough {
		target = fmt.Sprintf("%d", p.Target)
	}
	//
	return fmt.Sprintf("%s(%s)", target, joinIds(p.Results))
}

// Invocation calls a libfunc with some arguments, continuing on one of its
// branches.
type Invocation struct {
	Libfunc  Id
	Args     []Id
	Branches []BranchInfo
}

func (p *Invocation) String() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("%s(%s)", p.Libfunc, joinIds(p.Args)))
	//
	if len(p.Branches) == 1 && p.Branches[0].Fallthrough {
		builder.WriteString(fmt.Sprintf(" -> (%s)", joinIds(p.Branches[0].Results)))
	} else {
		builder.WriteString(" {")
		//
		for _, branch := range p.Branches {
			builder.WriteString(" ")
			builder.WriteString(branch.String())
		}
		//
		builder.WriteString(" }")
	}
	//
	return builder.String()
}

// Return terminates the enclosing function, returning the given variables.
type Return struct {
	Vars []Id
}

func (p *Return) String() string {
	return fmt.Sprintf("return(%s)", joinIds(p.Vars))
}

func (p *Invocation) isStatement() {}
func (p *Return) isStatement()     {}
