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

import "github.com/consensys/sierra-run/pkg/vm/value"

func init() {
	register("withdraw_gas", fixed("withdraw_gas", 2, branches(2, 2), 3*STEP, withdrawGas))
	register("withdraw_gas_all", fixed("withdraw_gas_all", 3, branches(2, 2), 3*STEP, withdrawGas))
	register("redeposit_gas", fixed("redeposit_gas", 1, branches(1), 0, identity))
	register("get_builtin_costs", fixed("get_builtin_costs", 0, branches(1), STEP, getBuiltinCosts))
}

// withdraw_gas(rc, gas) { success(rc, gas) failure(rc, gas) }
func withdrawGas(ctx Context, args []value.Value) (uint, []value.Value, error) {
	rc, err := builtin(args[0])
	if err != nil {
		return fail(err)
	}
	//
	results := []value.Value{rc.Use(1), args[1]}
	//
	if ctx.Gas().Withdraw() {
		return 0, results, nil
	}
	//
	return 1, results, nil
}

func getBuiltinCosts(Context, []value.Value) (uint, []value.Value, error) {
	return single(value.Builtin{Name: "BuiltinCosts"})
}
