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
package lex

import (
	"testing"

	"github.com/consensys/sierra-run/pkg/util/assert"
	"github.com/consensys/sierra-run/pkg/util/source"
)

const (
	END_OF uint = iota
	WSPACE
	NUMBER
	WORD
	LBRACE
	RBRACE
)

var rules = []LexRule[rune]{
	Rule(Unit('('), LBRACE),
	Rule(Unit(')'), RBRACE),
	Rule(Many(Or(Unit(' '), Unit('\n'))), WSPACE),
	Rule(Sequence(Within('0', '9'), Many(Within('0', '9'))), NUMBER),
	Rule(Sequence(Within('a', 'z'), Many(Within('a', 'z'))), WORD),
	Rule(Eof[rune](), END_OF),
}

func TestLexer_Empty(t *testing.T) {
	checkLexer(t, "", 0, Token{END_OF, source.NewSpan(0, 0)})
}

func TestLexer_Braces(t *testing.T) {
	checkLexer(t, "()", 0,
		Token{LBRACE, source.NewSpan(0, 1)},
		Token{RBRACE, source.NewSpan(1, 2)},
		Token{END_OF, source.NewSpan(2, 2)})
}

func TestLexer_Whitespace(t *testing.T) {
	checkLexer(t, "( \n)", 0,
		Token{LBRACE, source.NewSpan(0, 1)},
		Token{WSPACE, source.NewSpan(1, 3)},
		Token{RBRACE, source.NewSpan(3, 4)},
		Token{END_OF, source.NewSpan(4, 4)})
}

func TestLexer_Words(t *testing.T) {
	checkLexer(t, "abc 123", 0,
		Token{WORD, source.NewSpan(0, 3)},
		Token{WSPACE, source.NewSpan(3, 4)},
		Token{NUMBER, source.NewSpan(4, 7)},
		Token{END_OF, source.NewSpan(7, 7)})
}

func TestLexer_Unknown(t *testing.T) {
	checkLexer(t, "ab#", 1, Token{WORD, source.NewSpan(0, 2)})
}

func TestScanner_Sequence(t *testing.T) {
	rule := Sequence(Unit('a'), Unit('b'), Unit('c'))
	// non-final rule cannot be left unmatched.
	assert.Equal(t, 0, rule([]rune{'a', 'c', 'c'}))
	// final rule is allowed to have no match.
	assert.Equal(t, 2, rule([]rune{'a', 'b', 'b'}))
	assert.Equal(t, 3, rule([]rune{'a', 'b', 'c'}))
}

func TestScanner_Until(t *testing.T) {
	rule := Until('\n')
	//
	assert.Equal(t, 3, rule([]rune("abc\ndef")))
	assert.Equal(t, 3, rule([]rune("abc")))
}

func TestScanner_String(t *testing.T) {
	rule := String("->")
	//
	assert.Equal(t, 2, rule([]rune("->x")))
	assert.Equal(t, 0, rule([]rune("-x")))
	assert.Equal(t, 0, rule([]rune("-")))
}

func checkLexer(t *testing.T, input string, remaining uint, expected ...Token) {
	t.Helper()
	//
	lexer := NewLexer([]rune(input), rules...)
	tokens := lexer.Collect()
	//
	assert.Equal(t, len(expected), len(tokens), "tokens: %v", tokens)
	//
	for i := range expected {
		assert.Equal(t, expected[i], tokens[i])
	}
	//
	assert.Equal(t, remaining, lexer.Remaining())
}
