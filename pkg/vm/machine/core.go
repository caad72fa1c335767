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
package machine

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrStepLimit signals that a machine did not terminate within the permitted
// number of steps.
var ErrStepLimit = errors.New("step limit exceeded")

// Core represents an executing machine.  A machine may be executing or
// terminated.
type Core interface {
	// Execute the machine for the given number of steps, returning the actual
	// number of steps executed and an error (if execution failed).  Fewer
	// steps than requested are executed only when the machine terminates.
	Execute(steps uint) (uint, error)
	// Halted indicates whether this machine has terminated.
	Halted() bool
}

// ExecuteAll executes a given machine to completion in chunks of n steps,
// returning the number of steps executed and/or any error arising.  Execution
// stops early if the context is cancelled, or if more than limit steps are
// executed (where a limit of zero means unlimited).
func ExecuteAll[M Core](ctx context.Context, machine M, n uint, limit uint) (uint, error) {
	var nsteps uint
	//
	for {
		if err := ctx.Err(); err != nil {
			return nsteps, errors.Wrap(err, "execution interrupted")
		}
		//
		chunk := n
		// Never exceed the limit (by more than one step)
		if limit != 0 {
			chunk = min(n, limit+1-nsteps)
		}
		// Execute upto chunk steps
		m, err := machine.Execute(chunk)
		// update the tally
		nsteps += m
		// check for termination
		if err != nil || machine.Halted() {
			return nsteps, err
		} else if limit != 0 && nsteps > limit {
			return nsteps, errors.Wrapf(ErrStepLimit, "after %d steps", limit)
		}
	}
}
