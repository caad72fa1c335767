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
package sierra

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/consensys/sierra-run/pkg/util/assert"
	"github.com/consensys/sierra-run/pkg/util/source"
	"gopkg.in/yaml.v3"
)

// Determines the (relative) location of the test directory.
const TestDir = "../../testdata/sierra"

const felt252 = "type felt252 = felt252 [storable: true, drop: true, dup: true, zero_sized: false];\n"

// ============================================================================
// Valid programs
// ============================================================================

func Test_Link_Valid(t *testing.T) {
	for _, name := range []string{"hello", "panic42", "fib", "loop", "locals", "arrays", "uints", "spin"} {
		prog := checkFile(t, path.Join(TestDir, name+".sierra"))
		//
		assert.True(t, prog.NumStatements() > 0, name)
		assert.True(t, len(prog.FindFunctions("::main"))+len(prog.FindFunctions("::add")) == 1, name)
	}
}

func Test_Link_Accessors(t *testing.T) {
	prog := checkFile(t, path.Join(TestDir, "fib.sierra"))
	//
	fn, ok := prog.Function("fib::fib::fib")
	assert.True(t, ok)
	assert.Equal(t, uint(8), fn.Entry)
	//
	info, ok := prog.Type("NonZero<felt252>")
	assert.True(t, ok)
	assert.Equal(t, uint(1), info.Size)
	//
	lf, ok := prog.Libfunc("felt252_is_zero")
	assert.True(t, ok)
	assert.Equal(t, []uint{0, 1}, lf.Branches())
	//
	_, ok = prog.Libfunc("felt252_sqrt")
	assert.False(t, ok)
	assert.Equal(t, uint(26), prog.NumStatements())
}

func Test_Link_Loop(t *testing.T) {
	// Variables defined on a back edge are consistent with the loop head
	checkSource(t, felt252+`libfunc felt252_const<1> = felt252_const<1>;
libfunc felt252_is_zero = felt252_is_zero;
libfunc branch_align = branch_align;
libfunc felt252_sub = felt252_sub;
libfunc drop<NonZero<felt252>> = drop<NonZero<felt252>>;
libfunc dup<felt252> = dup<felt252>;
libfunc jump = jump;
type NonZero<felt252> = NonZero<felt252> [storable: true, drop: true, dup: true, zero_sized: false];
dup<felt252>([0]) -> ([0], [1]);
felt252_is_zero([1]) { fallthrough() 3([2]) };
return([0]);
branch_align() -> ();
drop<NonZero<felt252>>([2]) -> ();
felt252_const<1>() -> ([3]);
felt252_sub([0], [3]) -> ([0]);
jump() { 0() };
test::countdown@0([0]: felt252) -> (felt252);
`)
}

// ============================================================================
// Invalid programs
// ============================================================================

func Test_Link_Invalid(t *testing.T) {
	var expected map[string]string
	//
	bytes, err := os.ReadFile(path.Join(TestDir, "invalid", "errors.yaml"))
	assert.NoError(t, err)
	assert.NoError(t, yaml.Unmarshal(bytes, &expected))
	//
	for name, msg := range expected {
		srcfile, err := source.ReadFile(path.Join(TestDir, "invalid", name+".sierra"))
		assert.NoError(t, err)
		//
		checkErrors(t, name, srcfile, msg)
	}
}

func Test_Link_PossiblyRedefined(t *testing.T) {
	checkSourceError(t, felt252+`libfunc felt252_const<1> = felt252_const<1>;
felt252_const<1>() -> ([0]);
felt252_const<1>() -> ([0]);
return([0]);
test::main@0() -> (felt252);
`, "variable [0] possibly redefined")
}

func Test_Link_PossiblyUndefined(t *testing.T) {
	// [1] is only defined on one branch
	checkSourceError(t, felt252+`type NonZero<felt252> = NonZero<felt252>;
libfunc felt252_is_zero = felt252_is_zero;
libfunc unwrap_non_zero<felt252> = unwrap_non_zero<felt252>;
felt252_is_zero([0]) { fallthrough() 1([1]) };
unwrap_non_zero<felt252>([1]) -> ([2]);
return([2]);
test::main@0([0]: felt252) -> (felt252);
`, "variable [1] possibly undefined")
}

func Test_Link_UnpaidBranch(t *testing.T) {
	// branch_align is free, so cannot be used to loop
	checkSourceError(t, felt252+`libfunc branch_align = branch_align;
libfunc felt252_const<1> = felt252_const<1>;
branch_align() { 0() };
felt252_const<1>() -> ([0]);
return([0]);
test::main@0() -> (felt252);
`, "branch_align cannot branch to 0")
}

func Test_Link_UnpaidForwardBranch(t *testing.T) {
	checkSourceError(t, felt252+`libfunc branch_align = branch_align;
libfunc felt252_const<1> = felt252_const<1>;
branch_align() { 2() };
felt252_const<1>() -> ([1]);
felt252_const<1>() -> ([0]);
return([0]);
test::main@0() -> (felt252);
`, "branch_align cannot branch to 2")
}

func Test_Link_ReturnArity(t *testing.T) {
	checkSourceError(t, felt252+`libfunc felt252_const<1> = felt252_const<1>;
felt252_const<1>() -> ([0]);
return([0]);
test::main@0() -> (felt252, felt252);
`, "test::main returns 2 values (found 1)")
}

func Test_Link_DuplicateParameter(t *testing.T) {
	checkSourceError(t, felt252+`return([0]);
test::main@0([0]: felt252, [0]: felt252) -> (felt252);
`, "duplicate parameter [0]")
}

func Test_Link_UnknownParamType(t *testing.T) {
	checkSourceError(t, felt252+`return([0]);
test::main@0([0]: u8) -> (felt252);
`, "unknown type \"u8\"")
}

func Test_Link_BranchCount(t *testing.T) {
	checkSourceError(t, felt252+`libfunc felt252_is_zero = felt252_is_zero;
felt252_is_zero([0]) -> ();
return();
test::main@0([0]: felt252) -> ();
`, "has 2 branches (found 1)")
}

func Test_Link_BranchResults(t *testing.T) {
	checkSourceError(t, felt252+`libfunc felt252_is_zero = felt252_is_zero;
felt252_is_zero([0]) { fallthrough() 2() };
return();
return();
test::main@0([0]: felt252) -> ();
`, "branch 1 of felt252_is_zero has 1 results (found 0)")
}

func Test_Link_DuplicateLibfunc(t *testing.T) {
	checkSourceError(t, felt252+`libfunc jump = jump;
libfunc jump = jump;
return();
test::main@0() -> ();
`, "duplicate libfunc declaration")
}

func Test_Link_DuplicateType(t *testing.T) {
	checkSourceError(t, felt252+felt252+`return();
test::main@0() -> ();
`, "duplicate type declaration")
}

func Test_Link_NotDuplicatable(t *testing.T) {
	checkSourceError(t, felt252+`type Array<felt252> = Array<felt252>;
libfunc dup<Array<felt252>> = dup<Array<felt252>>;
return();
test::main@0() -> ();
`, "type Array<felt252> is not duplicatable")
}

// ============================================================================
// Helpers
// ============================================================================

func checkFile(t *testing.T, filename string) *Program {
	t.Helper()
	//
	srcfile, err := source.ReadFile(filename)
	assert.NoError(t, err)
	//
	return checkLink(t, srcfile)
}

func checkSource(t *testing.T, input string) *Program {
	t.Helper()
	//
	return checkLink(t, source.NewSourceFile("test.sierra", []byte(input)))
}

func checkLink(t *testing.T, srcfile *source.File) *Program {
	t.Helper()
	//
	prog, errs := Parse(srcfile)
	//
	for _, err := range errs {
		t.Errorf("%s: %s", srcfile.Filename(), err.Error())
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
	//
	return prog
}

func checkSourceError(t *testing.T, input string, msg string) {
	t.Helper()
	//
	checkErrors(t, "test", source.NewSourceFile("test.sierra", []byte(input)), msg)
}

// Check that linking fails with an error containing a given message.
func checkErrors(t *testing.T, name string, srcfile *source.File, msg string) {
	t.Helper()
	//
	prog, errs := Parse(srcfile)
	//
	assert.True(t, prog == nil, "%s: expected errors", name)
	assert.True(t, len(errs) > 0, "%s: expected errors", name)
	//
	for _, err := range errs {
		if strings.Contains(err.Message(), msg) {
			return
		}
	}
	//
	t.Errorf("%s: expected error \"%s\", found \"%s\"", name, msg, errs[0].Message())
}
