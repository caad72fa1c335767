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
	"math/big"
	"strings"
	"unicode"
)

// Id identifies a declared type, libfunc, function or variable.  An identifier
// is either numeric (e.g. "[7]") or a debug name (e.g. "Array<felt252>").
// Identifiers are normalised by removing all whitespace, such that two
// identifiers are equal exactly when their normalised text is equal.
type Id string

// NewId constructs a normalised identifier from its textual representation.
func NewId(text string) Id {
	return Id(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		//
		return r
	}, text))
}

// NumericId constructs an identifier of the form "[n]".
func NumericId(n uint) Id {
	return Id(fmt.Sprintf("[%d]", n))
}

func (p Id) String() string {
	return string(p)
}

// GenericArg represents an argument given to a generic type or libfunc, such
// as "felt252" in "Array<felt252>" or "5" in "felt252_const<5>".
type GenericArg interface {
	fmt.Stringer
	isGenericArg()
}

// ValueArg is a (possibly negative) numeric generic argument.
type ValueArg struct {
	Value big.Int
}

// TypeArg is a generic argument referring to a declared concrete type.
type TypeArg struct {
	Type Id
}

// UserTypeArg is a generic argument of the form "ut@Name", used to name
// structs and enums.
type UserTypeArg struct {
	Name Id
}

// UserFuncArg is a generic argument of the form "user@Name", used to refer to
// a declared function.
type UserFuncArg struct {
	Function Id
}

func (p *ValueArg) String() string    { return p.Value.String() }
func (p *TypeArg) String() string     { return p.Type.String() }
func (p *UserTypeArg) String() string { return "ut@" + p.Name.String() }
func (p *UserFuncArg) String() string { return "user@" + p.Function.String() }

func (p *ValueArg) isGenericArg()    {}
func (p *TypeArg) isGenericArg()     {}
func (p *UserTypeArg) isGenericArg() {}
func (p *UserFuncArg) isGenericArg() {}

// DeclaredTypeInfo records the optional capability annotation attached to a
// type declaration, such as "[storable: true, drop: true, dup: true,
// zero_sized: false]".
type DeclaredTypeInfo struct {
	Storable     bool
	Droppable    bool
	Duplicatable bool
	ZeroSized    bool
}

// TypeDeclaration binds a concrete type identifier to a generic type applied
// to some arguments.
type TypeDeclaration struct {
	Id      Id
	Generic string
	Args    []GenericArg
	// Declared capabilities, or nil if none were given.
	Info *DeclaredTypeInfo
}

func (p *TypeDeclaration) String() string {
	var str = fmt.Sprintf("type %s = %s", p.Id, genericString(p.Generic, p.Args))
	//
	if p.Info != nil {
		str = fmt.Sprintf("%s [storable: %t, drop: %t, dup: %t, zero_sized: %t]", str,
			p.Info.Storable, p.Info.Droppable, p.Info.Duplicatable, p.Info.ZeroSized)
	}
	//
	return str
}

// LibfuncDeclaration binds a concrete libfunc identifier to a generic libfunc
// applied to some arguments.
type LibfuncDeclaration struct {
	Id      Id
	Generic string
	Args    []GenericArg
}

func (p *LibfuncDeclaration) String() string {
	return fmt.Sprintf("libfunc %s = %s", p.Id, genericString(p.Generic, p.Args))
}

// Param is a function parameter, consisting of a variable and its type.
type Param struct {
	Var  Id
	Type Id
}

// Function declares a user function, which begins execution at a given
// statement and accepts zero or more parameters.
type Function struct {
	Id      Id
	Entry   uint
	Params  []Param
	Returns []Id
}

func (p *Function) String() string {
	var params = make([]string, len(p.Params))
	//
	for i, param := range p.Params {
		params[i] = fmt.Sprintf("%s: %s", param.Var, param.Type)
	}
	//
	return fmt.Sprintf("%s@%d(%s) -> (%s)", p.Id, p.Entry, strings.Join(params, ", "), joinIds(p.Returns))
}

func genericString(generic string, args []GenericArg) string {
	if len(args) == 0 {
		return generic
	}
	//
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = arg.String()
	}
	//
	return fmt.Sprintf("%s<%s>", generic, strings.Join(strs, ", "))
}

func joinIds(ids []Id) string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	//
	return strings.Join(strs, ", ")
}
