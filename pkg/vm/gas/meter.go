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
package gas

import "fmt"

// Meter tracks the gas budget of a single run.  A meter is either metered, in
// which case it holds a finite budget, or unmetered in which case every charge
// succeeds and no budget is reported.
type Meter struct {
	metered   bool
	remaining uint64
	// Set once a charge or withdrawal could not be satisfied.
	exhausted bool
}

// Unmetered constructs a meter which accepts every charge.
func Unmetered() *Meter {
	return &Meter{}
}

// NewMeter constructs a meter holding a given budget.
func NewMeter(budget uint64) *Meter {
	return &Meter{metered: true, remaining: budget}
}

// IsMetered indicates whether this meter enforces a budget.
func (p *Meter) IsMetered() bool {
	return p.metered
}

// Remaining returns the remaining budget, along with whether this meter is
// metered at all.
func (p *Meter) Remaining() (uint64, bool) {
	return p.remaining, p.metered
}

// Exhausted indicates whether this meter has refused a charge or withdrawal.
func (p *Meter) Exhausted() bool {
	return p.exhausted
}

// Charge attempts to deduct a given cost from the budget, returning false
// (and leaving the budget untouched) if the budget cannot pay for it.
func (p *Meter) Charge(cost uint64) bool {
	if !p.metered {
		return true
	} else if cost > p.remaining {
		p.exhausted = true
		return false
	}
	//
	p.remaining -= cost
	//
	return true
}

// Withdraw determines whether a program is permitted to continue a
// gas-consuming loop or call.  This succeeds when unmetered, or when any
// budget remains (even a single unit).  Nothing is deducted here, hence a loop
// body admitted with less budget than it costs will fail a later Charge.  The
// machine then halts, which is reported as out of gas in the same way as a
// failed withdrawal.
func (p *Meter) Withdraw() bool {
	if !p.metered || p.remaining > 0 {
		return true
	}
	//
	p.exhausted = true
	//
	return false
}

func (p *Meter) String() string {
	if !p.metered {
		return "unmetered"
	}
	//
	return fmt.Sprintf("%d", p.remaining)
}
