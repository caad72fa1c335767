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
package libfunc

import "github.com/consensys/sierra-run/pkg/sierra/program"

var bytes31Bound = bitBound(248)

func init() {
	register("bytes31_const", bytes31Const)
	register("bytes31_try_from_felt252", fixed("bytes31_try_from_felt252", 2, branches(2, 1), 3*STEP,
		tryFromFelt(bytes31Bound)))
	register("bytes31_to_felt252", fixed("bytes31_to_felt252", 1, branches(1), 0, identity))
}

// bytes31_const<c>() -> (c)
func bytes31Const(env Environment, args []program.GenericArg) (Libfunc, error) {
	return uintConst("bytes31_const", bytes31Bound)(env, args)
}
