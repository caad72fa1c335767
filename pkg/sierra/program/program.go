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
	"strings"

	"github.com/consensys/sierra-run/pkg/util/source"
)

// Program represents a parsed (but not yet linked) Sierra program.  Programs
// are immutable once constructed.
type Program struct {
	Types      []*TypeDeclaration
	Libfuncs   []*LibfuncDeclaration
	Statements []Statement
	Functions  []*Function
	// Maps declarations, statements and functions back to the text from which
	// they were parsed.
	SourceMap *source.Map[any]
}

// FindFunctions returns all functions matching a given name.  A function
// matches if its identifier equals the name exactly, otherwise all functions
// whose identifier ends with the name are returned.  Thus, "::main" matches
// "hello::main".
func (p *Program) FindFunctions(name string) []*Function {
	var (
		key     = NewId(name)
		matches []*Function
	)
	// Exact match takes precedence
	for _, fn := range p.Functions {
		if fn.Id == key {
			return []*Function{fn}
		}
	}
	//
	for _, fn := range p.Functions {
		if strings.HasSuffix(string(fn.Id), string(key)) {
			matches = append(matches, fn)
		}
	}
	//
	return matches
}

func (p *Program) String() string {
	var builder strings.Builder
	//
	for _, decl := range p.Types {
		builder.WriteString(decl.String())
		builder.WriteString(";\n")
	}
	//
	for _, decl := range p.Libfuncs {
		builder.WriteString(decl.String())
		builder.WriteString(";\n")
	}
	//
	for _, stmt := range p.Statements {
		builder.WriteString(stmt.String())
		builder.WriteString(";\n")
	}
	//
	for _, fn := range p.Functions {
		builder.WriteString(fn.String())
		builder.WriteString(";\n")
	}
	//
	return builder.String()
}
