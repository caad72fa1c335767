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
package vm

import (
	"fmt"
	"strings"

	"github.com/consensys/sierra-run/pkg/util"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm/memory"
)

// Reason identifies why a run panicked.
type Reason uint8

const (
	// USER_PANIC indicates the program itself panicked.
	USER_PANIC Reason = iota
	// OUT_OF_GAS indicates the gas budget was exhausted.
	OUT_OF_GAS
)

func (r Reason) String() string {
	if r == OUT_OF_GAS {
		return "out of gas"
	}
	//
	return "panic"
}

// Outcome is either a Success or a Panic.
type Outcome interface {
	fmt.Stringer
	// Values returned by the run, or the panic payload.
	Elements() []stark252.Element
	isOutcome()
}

// Success holds the flattened (non-builtin) values returned by the entry
// function.
type Success struct {
	Values []stark252.Element
}

// Elements implementation for the Outcome interface.
func (p Success) Elements() []stark252.Element {
	return p.Values
}

func (p Success) String() string {
	return fmt.Sprintf("success(%s)", joinElements(p.Values))
}

func (p Success) isOutcome() {}

// Panic holds the payload of a panic, along with its reason.
type Panic struct {
	Values []stark252.Element
	Reason Reason
}

// Elements implementation for the Outcome interface.
func (p Panic) Elements() []stark252.Element {
	return p.Values
}

func (p Panic) String() string {
	return fmt.Sprintf("%s(%s)", p.Reason, joinElements(p.Values))
}

func (p Panic) isOutcome() {}

// RunResult captures everything observable about a completed run.
type RunResult struct {
	// Outcome of the run
	Value Outcome
	// Remaining gas, which is present only for metered runs.
	GasCounter util.Option[uint64]
	// Final contents of memory
	Memory []memory.Cell
	// Number of statements executed.
	Steps uint
}

func joinElements(vals []stark252.Element) string {
	var strs = make([]string, len(vals))
	//
	for i, v := range vals {
		strs[i] = v.String()
	}
	//
	return strings.Join(strs, ", ")
}
