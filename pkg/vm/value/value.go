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
package value

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
)

// Allocator provides storage for values which live in memory, such as the
// contents of boxes and arrays.
type Allocator interface {
	// Append assigns consecutive cells, returning the address of the first.
	Append(values ...stark252.Element) uint
}

// Value is a runtime value bound to a variable.  Every value has a flattened
// representation as a sequence of field elements matching the size of its
// type, though the contents of boxes and arrays are only written to memory
// when first required.
type Value interface {
	fmt.Stringer
	// Store flattens this value into a sequence of cells, first writing any
	// boxed or array contents into memory.
	Store(mem Allocator) ([]stark252.Element, error)
}

// Felt is a single field element, which is used for felt252, unsigned integer
// and bytes31 values.
type Felt struct {
	Value stark252.Element
}

// NewFelt constructs a felt from a machine word.
func NewFelt(val uint64) Felt {
	return Felt{stark252.New(val)}
}

// Store implementation for the Value interface.
func (p Felt) Store(Allocator) ([]stark252.Element, error) {
	return []stark252.Element{p.Value}, nil
}

func (p Felt) String() string {
	return p.Value.String()
}

// Struct is a fixed sequence of member values.
type Struct struct {
	Members []Value
}

// Store implementation for the Value interface.
func (p Struct) Store(mem Allocator) ([]stark252.Element, error) {
	var cells []stark252.Element
	//
	for _, m := range p.Members {
		mcells, err := m.Store(mem)
		if err != nil {
			return nil, err
		}
		//
		cells = append(cells, mcells...)
	}
	//
	return cells, nil
}

func (p Struct) String() string {
	return fmt.Sprintf("(%s)", join(p.Members))
}

// Enum is a variant of some enum type, along with its payload.  The width is
// that of the widest variant, such that a flattened enum always occupies the
// same number of cells regardless of which variant it holds.
type Enum struct {
	Variant uint
	Payload Value
	Width   uint
}

// Bool constructs a value of the core bool enum, whose variants are false (0)
// and true (1).
func Bool(b bool) Enum {
	var variant uint
	//
	if b {
		variant = 1
	}
	//
	return Enum{variant, Struct{}, 0}
}

// Store implementation for the Value interface.  The selector is followed by
// the payload, which is padded on the left with zeros to the enum's width.
func (p Enum) Store(mem Allocator) ([]stark252.Element, error) {
	payload, err := p.Payload.Store(mem)
	//
	if err != nil {
		return nil, err
	} else if uint(len(payload)) > p.Width {
		return nil, errors.Newf("enum payload (%d cells) exceeds width %d", len(payload), p.Width)
	}
	//
	cells := make([]stark252.Element, 1+p.Width-uint(len(payload)), 1+p.Width)
	cells[0] = stark252.New(uint64(p.Variant))
	//
	return append(cells, payload...), nil
}

func (p Enum) String() string {
	return fmt.Sprintf("%d:%s", p.Variant, p.Payload)
}

// Array is a sequence of values.  Arrays are linear, hence an array is never
// modified after construction (appending constructs a new array).  The
// contents are written to memory on first use, and stored as a pair of
// pointers to its first cell and one past its last.
type Array struct {
	Elements []Value
	// Start and end of stored contents
	start, end uint
	stored     bool
}

// NewArray constructs an array from some number of elements.
func NewArray(elements ...Value) *Array {
	return &Array{Elements: elements}
}

// Len returns the number of elements in this array.
func (p *Array) Len() uint {
	return uint(len(p.Elements))
}

// Store implementation for the Value interface.
func (p *Array) Store(mem Allocator) ([]stark252.Element, error) {
	if !p.stored {
		var cells []stark252.Element
		//
		for _, e := range p.Elements {
			ecells, err := e.Store(mem)
			if err != nil {
				return nil, err
			}
			//
			cells = append(cells, ecells...)
		}
		//
		p.start = mem.Append(cells...)
		p.end = p.start + uint(len(cells))
		p.stored = true
	}
	//
	return []stark252.Element{stark252.New(uint64(p.start)), stark252.New(uint64(p.end))}, nil
}

func (p *Array) String() string {
	return fmt.Sprintf("[%s]", join(p.Elements))
}

// Box is a pointer to a value held in memory.
type Box struct {
	Inner   Value
	address uint
	stored  bool
}

// NewBox constructs a box holding a given value.
func NewBox(inner Value) *Box {
	return &Box{Inner: inner}
}

// Store implementation for the Value interface.
func (p *Box) Store(mem Allocator) ([]stark252.Element, error) {
	if !p.stored {
		cells, err := p.Inner.Store(mem)
		if err != nil {
			return nil, err
		}
		//
		p.address = mem.Append(cells...)
		p.stored = true
	}
	//
	return []stark252.Element{stark252.New(uint64(p.address))}, nil
}

func (p *Box) String() string {
	return fmt.Sprintf("&%s", p.Inner)
}

// Nullable is either a box or null (represented by a nil box).
type Nullable struct {
	Box *Box
}

// Store implementation for the Value interface.  Null is stored as the
// (reserved) address zero.
func (p Nullable) Store(mem Allocator) ([]stark252.Element, error) {
	if p.Box == nil {
		return []stark252.Element{{}}, nil
	}
	//
	return p.Box.Store(mem)
}

func (p Nullable) String() string {
	if p.Box == nil {
		return "null"
	}
	//
	return p.Box.String()
}

// Builtin is an implicit argument representing a builtin, such as RangeCheck
// or GasBuiltin.  The counter records how many times it has been used.
type Builtin struct {
	Name    string
	Counter uint64
}

// Use returns a copy of this builtin with its usage counter advanced.
func (p Builtin) Use(n uint64) Builtin {
	return Builtin{p.Name, p.Counter + n}
}

// Store implementation for the Value interface.
func (p Builtin) Store(Allocator) ([]stark252.Element, error) {
	return []stark252.Element{stark252.New(p.Counter)}, nil
}

func (p Builtin) String() string {
	return fmt.Sprintf("%s(%d)", p.Name, p.Counter)
}

// Uninitialized is a block of local cells which have been allocated, but not
// yet written.
type Uninitialized struct {
	Address uint
	Width   uint
}

// Store implementation for the Value interface.  Uninitialized values cannot
// be stored.
func (p Uninitialized) Store(Allocator) ([]stark252.Element, error) {
	return nil, errors.Newf("cannot store uninitialized local at %d", p.Address)
}

func (p Uninitialized) String() string {
	return fmt.Sprintf("uninit@%d", p.Address)
}

// Guarantee records that a 128-bit multiplication must later be verified.  It
// occupies no cells.
type Guarantee struct{}

// Store implementation for the Value interface.
func (p Guarantee) Store(Allocator) ([]stark252.Element, error) {
	return nil, nil
}

func (p Guarantee) String() string {
	return "guarantee"
}

func join(values []Value) string {
	strs := make([]string, len(values))
	//
	for i, v := range values {
		strs[i] = v.String()
	}
	//
	return strings.Join(strs, ", ")
}
