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
package memory

import (
	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/util"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
)

// ErrReassignment signals an attempt to change the value of a cell which has
// already been assigned.
var ErrReassignment = errors.New("memory cell reassigned")

// ErrUnassigned signals an attempt to read a cell which has not been assigned.
var ErrUnassigned = errors.New("memory cell unassigned")

// ErrOutOfBounds signals an access beyond the allocated region of memory.
var ErrOutOfBounds = errors.New("memory address out of bounds")

// Cell is the (optional) contents of a single memory location.
type Cell = util.Option[stark252.Element]

// Memory is an append-only sequence of single-assignment cells, indexed by
// address.  Cells are allocated monotonically, and each cell is either unset
// or holds one field element.  Once set, a cell never changes value.  Address
// 0 is reserved and is never assigned.
type Memory struct {
	cells []Cell
}

// New constructs a memory holding only the reserved cell.
func New() *Memory {
	return &Memory{[]Cell{util.None[stark252.Element]()}}
}

// Len returns the number of allocated cells, which is also the address of the
// next cell to be allocated.
func (p *Memory) Len() uint {
	return uint(len(p.cells))
}

// Allocate n unset cells, returning the address of the first.
func (p *Memory) Allocate(n uint) uint {
	var base = p.Len()
	//
	for range n {
		p.cells = append(p.cells, util.None[stark252.Element]())
	}
	//
	return base
}

// Append allocates and assigns consecutive cells, returning the address of the
// first.
func (p *Memory) Append(values ...stark252.Element) uint {
	var base = p.Len()
	//
	for _, v := range values {
		p.cells = append(p.cells, util.Some(v))
	}
	//
	return base
}

// Write assigns a value to a previously allocated cell.  Writing the value a
// cell already holds has no effect, whilst writing any other value to an
// assigned cell fails.
func (p *Memory) Write(address uint, value stark252.Element) error {
	if address == 0 || address >= p.Len() {
		return errors.Wrapf(ErrOutOfBounds, "write to %d", address)
	} else if old, ok := p.cells[address].Get(); ok && old != value {
		return errors.Wrapf(ErrReassignment, "write %s to %d (holding %s)", value, address, old)
	}
	//
	p.cells[address] = util.Some(value)
	//
	return nil
}

// Read the value held in a given cell, which must have been assigned.
func (p *Memory) Read(address uint) (stark252.Element, error) {
	if address >= p.Len() {
		return stark252.Element{}, errors.Wrapf(ErrOutOfBounds, "read from %d", address)
	} else if value, ok := p.cells[address].Get(); ok {
		return value, nil
	}
	//
	return stark252.Element{}, errors.Wrapf(ErrUnassigned, "read from %d", address)
}

// Snapshot returns a copy of all cells, which is unaffected by any subsequent
// allocation or assignment.
func (p *Memory) Snapshot() []Cell {
	var cells = make([]Cell, len(p.cells))
	//
	copy(cells, p.cells)
	//
	return cells
}
