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
package parser

import (
	"testing"

	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/util/assert"
	"github.com/consensys/sierra-run/pkg/util/source"
)

func Test_Parse_Empty(t *testing.T) {
	prog := checkParse(t, "// nothing to see here\n")
	//
	assert.Equal(t, 0, len(prog.Types))
	assert.Equal(t, 0, len(prog.Statements))
}

func Test_Parse_TypeDeclaration(t *testing.T) {
	prog := checkParse(t, "type felt252 = felt252 [storable: true, drop: true, dup: false, zero_sized: false];")
	//
	assert.Equal(t, 1, len(prog.Types))
	//
	decl := prog.Types[0]
	assert.Equal(t, program.Id("felt252"), decl.Id)
	assert.Equal(t, "felt252", decl.Generic)
	assert.Equal(t, 0, len(decl.Args))
	assert.Equal(t, program.DeclaredTypeInfo{Storable: true, Droppable: true}, *decl.Info)
}

func Test_Parse_TypeWithoutInfo(t *testing.T) {
	prog := checkParse(t, "type [3] = Array<[0]>;")
	//
	decl := prog.Types[0]
	assert.Equal(t, program.Id("[3]"), decl.Id)
	assert.Equal(t, "Array", decl.Generic)
	assert.Equal(t, "[0]", decl.Args[0].String())
	assert.True(t, decl.Info == nil)
}

func Test_Parse_GenericArgs(t *testing.T) {
	prog := checkParse(t, "type [5] = Enum<ut@core::option::Option::<felt252>, [1], -7, 42, user@foo::bar>;")
	//
	args := prog.Types[0].Args
	assert.Equal(t, 5, len(args))
	//
	ut, ok := args[0].(*program.UserTypeArg)
	assert.True(t, ok)
	assert.Equal(t, program.Id("core::option::Option::<felt252>"), ut.Name)
	//
	ty, ok := args[1].(*program.TypeArg)
	assert.True(t, ok)
	assert.Equal(t, program.Id("[1]"), ty.Type)
	//
	neg, ok := args[2].(*program.ValueArg)
	assert.True(t, ok)
	assert.Equal(t, "-7", neg.Value.String())
	//
	pos, ok := args[3].(*program.ValueArg)
	assert.True(t, ok)
	assert.Equal(t, "42", pos.Value.String())
	//
	fn, ok := args[4].(*program.UserFuncArg)
	assert.True(t, ok)
	assert.Equal(t, program.Id("foo::bar"), fn.Function)
}

func Test_Parse_DebugNames(t *testing.T) {
	src := "libfunc store_temp<core::panics::PanicResult::<(felt252, Array<felt252>)>> = store_temp<(felt252, u8)>;"
	prog := checkParse(t, src)
	//
	decl := prog.Libfuncs[0]
	// whitespace within names is ignored
	assert.Equal(t, program.Id("store_temp<core::panics::PanicResult::<(felt252,Array<felt252>)>>"), decl.Id)
	assert.Equal(t, "store_temp", decl.Generic)
	assert.Equal(t, "(felt252,u8)", decl.Args[0].String())
}

func Test_Parse_Invocation(t *testing.T) {
	prog := checkParse(t, "felt252_add([0], [1]) -> ([2]);")
	//
	stmt, ok := prog.Statements[0].(*program.Invocation)
	assert.True(t, ok)
	assert.Equal(t, program.Id("felt252_add"), stmt.Libfunc)
	assert.Equal(t, []program.Id{"[0]", "[1]"}, stmt.Args)
	assert.Equal(t, []program.BranchInfo{{Fallthrough: true, Results: []program.Id{"[2]"}}}, stmt.Branches)
}

func Test_Parse_Branches(t *testing.T) {
	prog := checkParse(t, "felt252_is_zero([0]) { fallthrough() 7([1]) };")
	//
	stmt := prog.Statements[0].(*program.Invocation)
	//
	assert.Equal(t, 2, len(stmt.Branches))
	assert.True(t, stmt.Branches[0].Fallthrough)
	assert.Equal(t, 0, len(stmt.Branches[0].Results))
	assert.False(t, stmt.Branches[1].Fallthrough)
	assert.Equal(t, uint(7), stmt.Branches[1].Target)
	assert.Equal(t, uint(7), stmt.Branches[1].Destination(3))
	assert.Equal(t, uint(4), stmt.Branches[0].Destination(3))
}

func Test_Parse_Return(t *testing.T) {
	prog := checkParse(t, "return([3], [4]);\nreturn();")
	//
	assert.Equal(t, 2, len(prog.Statements))
	assert.Equal(t, []program.Id{"[3]", "[4]"}, prog.Statements[0].(*program.Return).Vars)
	assert.Equal(t, 0, len(prog.Statements[1].(*program.Return).Vars))
}

func Test_Parse_Function(t *testing.T) {
	prog := checkParse(t, "hello::main@12([0]: RangeCheck, [1]: felt252) -> (RangeCheck, felt252);")
	//
	fn := prog.Functions[0]
	assert.Equal(t, program.Id("hello::main"), fn.Id)
	assert.Equal(t, uint(12), fn.Entry)
	assert.Equal(t, []program.Param{{Var: "[0]", Type: "RangeCheck"}, {Var: "[1]", Type: "felt252"}}, fn.Params)
	assert.Equal(t, []program.Id{"RangeCheck", "felt252"}, fn.Returns)
}

func Test_Parse_SourceMap(t *testing.T) {
	prog := checkParse(t, "felt252_const<1>() -> ([0]);\nreturn([0]);")
	//
	span := prog.SourceMap.Get(prog.Statements[1])
	//
	assert.Equal(t, "return([0]);", prog.SourceMap.Source().Text(span))
}

func Test_Parse_RoundTrip(t *testing.T) {
	src := `type felt252 = felt252 [storable: true, drop: true, dup: true, zero_sized: false];
libfunc felt252_const<5> = felt252_const<5>;
libfunc felt252_is_zero = felt252_is_zero;
felt252_const<5>() -> ([0]);
felt252_is_zero([0]) { fallthrough() 3([1]) };
return();
return([1]);
test::main@0() -> ();
`
	prog := checkParse(t, src)
	//
	assert.Equal(t, src, prog.String())
}

// ============================================================================
// Errors
// ============================================================================

func Test_ParseError_UnknownText(t *testing.T) {
	checkParseError(t, "type # = felt252;", "unknown text encountered")
}

func Test_ParseError_MissingSemicolon(t *testing.T) {
	checkParseError(t, "return([0])", "unexpected token")
}

func Test_ParseError_MissingArrow(t *testing.T) {
	checkParseError(t, "felt252_add([0], [1]) ([2]);", "expected \"->\" or \"{\"")
}

func Test_ParseError_BadTarget(t *testing.T) {
	checkParseError(t, "felt252_is_zero([0]) { foo() };", "expected branch target")
}

func Test_ParseError_Unbalanced(t *testing.T) {
	checkParseError(t, "libfunc store_temp<felt252 = store_temp;", "unbalanced brackets")
}

func Test_ParseError_BadProperty(t *testing.T) {
	checkParseError(t, "type felt252 = felt252 [copyable: true];", "unknown type property")
}

func Test_ParseError_BadBool(t *testing.T) {
	checkParseError(t, "type felt252 = felt252 [dup: yes];", "expected \"true\" or \"false\"")
}

func Test_ParseError_Position(t *testing.T) {
	errs := parseErrors(t, "return([0]);\nfelt252_add([0]) [1];")
	line := errs[0].FirstEnclosingLine()
	//
	assert.Equal(t, 2, line.Number())
}

// ============================================================================
// Helpers
// ============================================================================

func checkParse(t *testing.T, input string) *program.Program {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test.sierra", []byte(input))
	prog, errs := Parse(srcfile)
	//
	for _, err := range errs {
		t.Errorf("%s", err.Error())
	}
	//
	if len(errs) > 0 {
		t.FailNow()
	}
	//
	return prog
}

func checkParseError(t *testing.T, input string, msg string) {
	t.Helper()
	//
	errs := parseErrors(t, input)
	//
	assert.Equal(t, msg, errs[0].Message())
}

func parseErrors(t *testing.T, input string) []source.SyntaxError {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test.sierra", []byte(input))
	_, errs := Parse(srcfile)
	//
	assert.True(t, len(errs) > 0, "expected parse errors")
	//
	return errs
}
