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
)

// Kind distinguishes the different families of concrete types.
type Kind uint8

const (
	// FELT252 represents a field element.
	FELT252 Kind = iota
	// UINT represents an unsigned integer of some bitwidth.
	UINT
	// BYTES31 represents a 31-byte word.
	BYTES31
	// NON_ZERO represents a value known not to be zero.
	NON_ZERO
	// BOX represents a pointer to a value.
	BOX
	// SNAPSHOT represents a read-only view of a value.
	SNAPSHOT
	// ARRAY represents an append-only array of values.
	ARRAY
	// STRUCT represents a fixed sequence of members.
	STRUCT
	// ENUM represents one of several variants.
	ENUM
	// UNINITIALIZED represents a local slot yet to be written.
	UNINITIALIZED
	// NULLABLE represents either a box or null.
	NULLABLE
	// CONST represents a compile-time constant.
	CONST
	// BUILTIN represents an implicit builtin (e.g. RangeCheck).
	BUILTIN
	// MUL_GUARANTEE represents a guarantee that a 128-bit multiplication
	// result must be verified.
	MUL_GUARANTEE
)

// Info describes a concrete (i.e. fully specialised) type.
type Info struct {
	// Identifier of the declaration which introduced this type
	Id program.Id
	// Generic type from which this was specialised (e.g. "Array")
	Generic string
	Kind    Kind
	// Number of memory cells occupied by a value of this type.
	Size         uint
	Storable     bool
	Droppable    bool
	Duplicatable bool
	ZeroSized    bool
	// Bitwidth of unsigned integer and bytes31 types
	Bits uint
	// Wrapped type for NonZero, Box, Snapshot, Array, Uninitialized, Nullable
	// and Const.
	Inner *Info
	// User type name of a struct or enum (e.g. "core::bool")
	Name program.Id
	// Members of a struct, or variants of an enum.
	Members []*Info
	// Value of a constant
	Value big.Int
	// Declared capabilities (if any).
	Declared *program.DeclaredTypeInfo
}

// IsBuiltin determines whether this type represents an implicit builtin
// argument which is supplied by the runner.
func (p *Info) IsBuiltin() bool {
	return p.Kind == BUILTIN
}

// Bound returns the exclusive upper bound on values of an unsigned integer
// or bytes31 type.
func (p *Info) Bound() *big.Int {
	var bound big.Int
	//
	return bound.Lsh(big.NewInt(1), p.Bits)
}

// Underlying strips away any snapshot or non-zero wrappers to expose the
// underlying type.
func (p *Info) Underlying() *Info {
	info := p
	//
	for info.Kind == SNAPSHOT || info.Kind == NON_ZERO {
		info = info.Inner
	}
	//
	return info
}

// VariantWidth returns the number of cells used for the payload of an enum
// value, which is the width of its widest variant.
func (p *Info) VariantWidth() uint {
	var width uint
	//
	for _, m := range p.Members {
		width = max(width, m.Size)
	}
	//
	return width
}

func (p *Info) String() string {
	if p.Id != "" {
		return p.Id.String()
	}
	//
	return fmt.Sprintf("%s<...>", p.Generic)
}
