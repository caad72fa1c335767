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
package types

import (
	"fmt"
	"math/big"

	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/util/source"
)

// Registry maps every declared type identifier to its specialised type.
type Registry struct {
	types map[program.Id]*Info
}

// Lookup the concrete type associated with a given identifier.
func (p *Registry) Lookup(id program.Id) (*Info, bool) {
	info, ok := p.types[id]
	return info, ok
}

// Len returns the number of types in this registry.
func (p *Registry) Len() uint {
	return uint(len(p.types))
}

// Specialize all type declarations of a given program, producing a registry or
// some number of syntax errors.  Declarations may refer to each other in any
// order, though not cyclically.
func Specialize(prog *program.Program) (*Registry, []source.SyntaxError) {
	var (
		errors   []source.SyntaxError
		resolver = resolver{
			prog:     prog,
			decls:    make(map[program.Id]*program.TypeDeclaration),
			types:    make(map[program.Id]*Info),
			visiting: make(map[program.Id]bool),
		}
	)
	// Index declarations, checking for duplicates
	for _, decl := range prog.Types {
		if _, ok := resolver.decls[decl.Id]; ok {
			errors = append(errors, *prog.SourceMap.SyntaxError(decl, "duplicate type declaration"))
		} else {
			resolver.decls[decl.Id] = decl
		}
	}
	//
	if len(errors) > 0 {
		return nil, errors
	}
	// Resolve declarations
	for _, decl := range prog.Types {
		if _, errs := resolver.resolve(decl); len(errs) > 0 {
			return nil, errs
		}
	}
	//
	return &Registry{resolver.types}, nil
}

type resolver struct {
	prog     *program.Program
	decls    map[program.Id]*program.TypeDeclaration
	types    map[program.Id]*Info
	visiting map[program.Id]bool
}

// Resolve the concrete type for a given declaration, resolving any types it
// depends upon as necessary.
func (p *resolver) resolve(decl *program.TypeDeclaration) (*Info, []source.SyntaxError) {
	if info, ok := p.types[decl.Id]; ok {
		return info, nil
	} else if p.visiting[decl.Id] {
		return nil, p.errors(decl, "cyclic type declaration")
	}
	//
	p.visiting[decl.Id] = true
	defer delete(p.visiting, decl.Id)
	//
	specializer, ok := generics[decl.Generic]
	if !ok {
		return nil, p.errors(decl, fmt.Sprintf("unknown generic type \"%s\"", decl.Generic))
	}
	//
	info, errs := specializer(p, decl)
	if len(errs) > 0 {
		return nil, errs
	}
	//
	info.Id = decl.Id
	info.Generic = decl.Generic
	info.Declared = decl.Info
	info.ZeroSized = info.Size == 0
	p.types[decl.Id] = info
	//
	return info, nil
}

// Resolve a generic argument which must refer to a declared type.
func (p *resolver) typeArg(decl *program.TypeDeclaration, arg program.GenericArg) (*Info, []source.SyntaxError) {
	targ, ok := arg.(*program.TypeArg)
	//
	if !ok {
		return nil, p.errors(decl, fmt.Sprintf("expected type argument, found \"%s\"", arg))
	}
	//
	inner, ok := p.decls[targ.Type]
	if !ok {
		return nil, p.errors(decl, fmt.Sprintf("unknown type \"%s\"", targ.Type))
	}
	//
	return p.resolve(inner)
}

func (p *resolver) errors(decl *program.TypeDeclaration, msg string) []source.SyntaxError {
	return p.prog.SourceMap.SyntaxErrors(decl, msg)
}

type specializer func(*resolver, *program.TypeDeclaration) (*Info, []source.SyntaxError)

// Specialisers for each supported generic type.  These are registered during
// initialisation since specialisers resolve type arguments recursively.
var generics map[string]specializer

func init() {
	generics = map[string]specializer{
		"felt252":          scalar(FELT252, 252),
		"u8":               scalar(UINT, 8),
		"u16":              scalar(UINT, 16),
		"u32":              scalar(UINT, 32),
		"u64":              scalar(UINT, 64),
		"u128":             scalar(UINT, 128),
		"bytes31":          scalar(BYTES31, 248),
		"NonZero":          wrapper(NON_ZERO),
		"Box":              wrapper(BOX),
		"Snapshot":         wrapper(SNAPSHOT),
		"Array":            wrapper(ARRAY),
		"Uninitialized":    wrapper(UNINITIALIZED),
		"Nullable":         wrapper(NULLABLE),
		"Struct":           compound(STRUCT),
		"Enum":             compound(ENUM),
		"Const":            constant,
		"RangeCheck":       builtin(false),
		"GasBuiltin":       builtin(false),
		"Bitwise":          builtin(false),
		"Pedersen":         builtin(false),
		"Poseidon":         builtin(false),
		"EcOp":             builtin(false),
		"SegmentArena":     builtin(false),
		"System":           builtin(false),
		"BuiltinCosts":     builtin(true),
		"U128MulGuarantee": guarantee,
	}
}

func scalar(kind Kind, bits uint) specializer {
	return func(r *resolver, decl *program.TypeDeclaration) (*Info, []source.SyntaxError) {
		if len(decl.Args) != 0 {
			return nil, r.errors(decl, "unexpected generic arguments")
		}
		//
		return &Info{Kind: kind, Size: 1, Storable: true, Droppable: true, Duplicatable: true, Bits: bits}, nil
	}
}

func builtin(copyable bool) specializer {
	return func(r *resolver, decl *program.TypeDeclaration) (*Info, []source.SyntaxError) {
		if len(decl.Args) != 0 {
			return nil, r.errors(decl, "unexpected generic arguments")
		}
		//
		return &Info{Kind: BUILTIN, Size: 1, Storable: true, Droppable: copyable, Duplicatable: copyable}, nil
	}
}

func guarantee(r *resolver, decl *program.TypeDeclaration) (*Info, []source.SyntaxError) {
	if len(decl.Args) != 0 {
		return nil, r.errors(decl, "unexpected generic arguments")
	}
	//
	return &Info{Kind: MUL_GUARANTEE, Size: 0, Storable: true}, nil
}

func wrapper(kind Kind) specializer {
	return func(r *resolver, decl *program.TypeDeclaration) (*Info, []source.SyntaxError) {
		if len(decl.Args) != 1 {
			return nil, r.errors(decl, "expected exactly one generic argument")
		}
		//
		inner, errs := r.typeArg(decl, decl.Args[0])
		if len(errs) > 0 {
			return nil, errs
		}
		//
		info := &Info{Kind: kind, Inner: inner}
		//
		switch kind {
		case NON_ZERO:
			info.Size, info.Storable = inner.Size, inner.Storable
			info.Droppable, info.Duplicatable = inner.Droppable, inner.Duplicatable
		case BOX, NULLABLE:
			info.Size, info.Storable = 1, true
			info.Droppable, info.Duplicatable = inner.Droppable, inner.Duplicatable
		case SNAPSHOT:
			info.Size, info.Storable = inner.Size, inner.Storable
			info.Droppable, info.Duplicatable = true, true
		case ARRAY:
			info.Size, info.Storable = 2, true
			info.Droppable, info.Duplicatable = inner.Droppable, false
		case UNINITIALIZED:
			info.Size, info.Storable = inner.Size, false
			info.Droppable, info.Duplicatable = true, false
		}
		//
		return info, nil
	}
}

func compound(kind Kind) specializer {
	return func(r *resolver, decl *program.TypeDeclaration) (*Info, []source.SyntaxError) {
		var info = &Info{Kind: kind, Storable: true, Droppable: true, Duplicatable: true}
		//
		if len(decl.Args) == 0 {
			return nil, r.errors(decl, "missing user type argument")
		} else if name, ok := decl.Args[0].(*program.UserTypeArg); !ok {
			return nil, r.errors(decl, "expected user type argument")
		} else {
			info.Name = name.Name
		}
		//
		for _, arg := range decl.Args[1:] {
			member, errs := r.typeArg(decl, arg)
			if len(errs) > 0 {
				return nil, errs
			}
			//
			info.Members = append(info.Members, member)
			info.Storable = info.Storable && member.Storable
			info.Droppable = info.Droppable && member.Droppable
			info.Duplicatable = info.Duplicatable && member.Duplicatable
			//
			if kind == STRUCT {
				info.Size += member.Size
			}
		}
		// An enum holds its selector, followed by the widest variant.
		if kind == ENUM && len(info.Members) > 0 {
			info.Size = 1 + info.VariantWidth()
		}
		//
		return info, nil
	}
}

// Const<T, v> introduces a constant v of scalar type T.
func constant(r *resolver, decl *program.TypeDeclaration) (*Info, []source.SyntaxError) {
	if len(decl.Args) != 2 {
		return nil, r.errors(decl, "expected type and value arguments")
	}
	//
	inner, errs := r.typeArg(decl, decl.Args[0])
	if len(errs) > 0 {
		return nil, errs
	}
	//
	val, ok := decl.Args[1].(*program.ValueArg)
	if !ok {
		return nil, r.errors(decl, "expected value argument")
	}
	//
	value, ok := CheckValue(inner, &val.Value)
	if !ok {
		return nil, r.errors(decl, fmt.Sprintf("invalid constant of type %s", inner))
	}
	//
	info := &Info{Kind: CONST, Inner: inner}
	info.Value.Set(value)
	//
	return info, nil
}

// CheckValue determines whether a given constant is a valid value for a
// scalar type, returning its canonical representative.
func CheckValue(info *Info, val *big.Int) (*big.Int, bool) {
	var result big.Int
	//
	switch info.Kind {
	case FELT252:
		return result.Mod(val, stark252.Modulus()), true
	case UINT, BYTES31:
		if val.Sign() < 0 || val.Cmp(info.Bound()) >= 0 {
			return nil, false
		}
		//
		return result.Set(val), true
	}
	//
	return nil, false
}
