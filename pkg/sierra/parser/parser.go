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
	"fmt"
	"math/big"

	"github.com/consensys/sierra-run/pkg/sierra/program"
	"github.com/consensys/sierra-run/pkg/util/source"
	"github.com/consensys/sierra-run/pkg/util/source/lex"
)

// Parse accepts a given source file representing a Sierra program, and parses
// it into a (not yet linked) program.  Any syntax error is fatal, and no
// partial program is returned in such case.
func Parse(srcfile *source.File) (*program.Program, []source.SyntaxError) {
	parser := NewParser(srcfile)
	// Parse declarations, statements and functions
	return parser.Parse()
}

// Parser is a recursive-descent parser for the textual Sierra format.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	// Source mapping
	srcmap *source.Map[any]
	// Position within the tokens
	index int
}

// NewParser constructs a new parser for a given source file.
func NewParser(srcfile *source.File) *Parser {
	// Construct (initially empty) source mapping
	srcmap := source.NewSourceMap[any](srcfile)
	//
	return &Parser{srcfile, nil, srcmap, 0}
}

// Parse the given source file into a program, or some number of syntax errors.
func (p *Parser) Parse() (*program.Program, []source.SyntaxError) {
	var (
		prog   program.Program
		errors []source.SyntaxError
	)
	// Convert source file into tokens
	if p.tokens, errors = Lex(p.srcfile); len(errors) > 0 {
		return nil, errors
	}
	// Continue going until all consumed
	for p.lookahead().Kind != END_OF {
		var start = p.index
		// Determine kind of item
		switch {
		case p.followsKeyword("type"):
			var decl *program.TypeDeclaration
			//
			if decl, errors = p.parseTypeDeclaration(); len(errors) == 0 {
				prog.Types = append(prog.Types, decl)
				p.srcmap.Put(decl, p.spanOf(start, p.index-1))
			}
		case p.followsKeyword("libfunc"):
			var decl *program.LibfuncDeclaration
			//
			if decl, errors = p.parseLibfuncDeclaration(); len(errors) == 0 {
				prog.Libfuncs = append(prog.Libfuncs, decl)
				p.srcmap.Put(decl, p.spanOf(start, p.index-1))
			}
		case p.followsKeyword("return") && p.follows(IDENTIFIER, LBRACE):
			var stmt *program.Return
			//
			if stmt, errors = p.parseReturn(); len(errors) == 0 {
				prog.Statements = append(prog.Statements, stmt)
				p.srcmap.Put(stmt, p.spanOf(start, p.index-1))
			}
		default:
			var item any
			//
			if item, errors = p.parseStatementOrFunction(); len(errors) == 0 {
				switch item := item.(type) {
				case *program.Function:
					prog.Functions = append(prog.Functions, item)
				case *program.Invocation:
					prog.Statements = append(prog.Statements, item)
				}
				//
				p.srcmap.Put(item, p.spanOf(start, p.index-1))
			}
		}
		//
		if len(errors) > 0 {
			return nil, errors
		}
	}
	// Copy over source map
	prog.SourceMap = p.srcmap
	//
	return &prog, nil
}

// Parse "type <id> = <generic>[<args>] [<info>];"
func (p *Parser) parseTypeDeclaration() (*program.TypeDeclaration, []source.SyntaxError) {
	var (
		decl program.TypeDeclaration
		errs []source.SyntaxError
	)
	//
	if errs = p.parseKeyword("type"); len(errs) > 0 {
		return nil, errs
	} else if decl.Id, errs = p.parseId(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(EQUALS); len(errs) > 0 {
		return nil, errs
	} else if decl.Generic, decl.Args, errs = p.parseGeneric(); len(errs) > 0 {
		return nil, errs
	}
	// Optional declared type info
	if p.lookahead().Kind == LSQUARE {
		if decl.Info, errs = p.parseDeclaredTypeInfo(); len(errs) > 0 {
			return nil, errs
		}
	}
	//
	if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	return &decl, nil
}

// Parse "[storable: b, drop: b, dup: b, zero_sized: b]"
func (p *Parser) parseDeclaredTypeInfo() (*program.DeclaredTypeInfo, []source.SyntaxError) {
	var (
		info program.DeclaredTypeInfo
		errs []source.SyntaxError
	)
	//
	if _, errs = p.expect(LSQUARE); len(errs) > 0 {
		return nil, errs
	}
	//
	for i := 0; !p.match(RSQUARE); i++ {
		var (
			key  lex.Token
			flag bool
		)
		//
		if i != 0 {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		if key, errs = p.expect(IDENTIFIER); len(errs) > 0 {
			return nil, errs
		} else if _, errs = p.expect(COLON); len(errs) > 0 {
			return nil, errs
		} else if flag, errs = p.parseBool(); len(errs) > 0 {
			return nil, errs
		}
		//
		switch p.string(key) {
		case "storable":
			info.Storable = flag
		case "drop":
			info.Droppable = flag
		case "dup":
			info.Duplicatable = flag
		case "zero_sized":
			info.ZeroSized = flag
		default:
			return nil, p.syntaxErrors(key, "unknown type property")
		}
	}
	//
	return &info, nil
}

// Parse "libfunc <id> = <generic>[<args>];"
func (p *Parser) parseLibfuncDeclaration() (*program.LibfuncDeclaration, []source.SyntaxError) {
	var (
		decl program.LibfuncDeclaration
		errs []source.SyntaxError
	)
	//
	if errs = p.parseKeyword("libfunc"); len(errs) > 0 {
		return nil, errs
	} else if decl.Id, errs = p.parseId(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(EQUALS); len(errs) > 0 {
		return nil, errs
	} else if decl.Generic, decl.Args, errs = p.parseGeneric(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	return &decl, nil
}

// Parse "<name>" or "<name><<arg>, ..., <arg>>"
func (p *Parser) parseGeneric() (string, []program.GenericArg, []source.SyntaxError) {
	var (
		name string
		args []program.GenericArg
		errs []source.SyntaxError
	)
	//
	if name, errs = p.parseIdentifier(); len(errs) > 0 {
		return "", nil, errs
	} else if !p.match(LANGLE) {
		return name, nil, nil
	}
	//
	for i := 0; !p.match(RANGLE); i++ {
		var arg program.GenericArg
		//
		if i != 0 {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return "", nil, errs
			}
		}
		//
		if arg, errs = p.parseGenericArg(); len(errs) > 0 {
			return "", nil, errs
		}
		//
		args = append(args, arg)
	}
	//
	return name, args, nil
}

func (p *Parser) parseGenericArg() (program.GenericArg, []source.SyntaxError) {
	var (
		id   program.Id
		errs []source.SyntaxError
	)
	//
	switch {
	case p.follows(NUMBER):
		return &program.ValueArg{Value: p.number(p.next())}, nil
	case p.follows(MINUS, NUMBER):
		p.index++
		//
		val := p.number(p.next())
		//
		return &program.ValueArg{Value: *val.Neg(&val)}, nil
	case p.followsKeyword("ut") && p.follows(IDENTIFIER, AT):
		p.index += 2
		//
		if id, errs = p.parseId(); len(errs) > 0 {
			return nil, errs
		}
		//
		return &program.UserTypeArg{Name: id}, nil
	case p.followsKeyword("user") && p.follows(IDENTIFIER, AT):
		p.index += 2
		//
		if id, errs = p.parseId(); len(errs) > 0 {
			return nil, errs
		}
		//
		return &program.UserFuncArg{Function: id}, nil
	}
	//
	if id, errs = p.parseId(); len(errs) > 0 {
		return nil, errs
	}
	//
	return &program.TypeArg{Type: id}, nil
}

// Parse "return(<var>, ..., <var>);"
func (p *Parser) parseReturn() (*program.Return, []source.SyntaxError) {
	var (
		vars []program.Id
		errs []source.SyntaxError
	)
	//
	if errs = p.parseKeyword("return"); len(errs) > 0 {
		return nil, errs
	} else if vars, errs = p.parseIdList(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	return &program.Return{Vars: vars}, nil
}

// Parse either an invocation "<libfunc>(<args>) ..." or a function declaration
// "<id>@<entry>(<params>) -> (<types>);".  Both begin with an identifier, and
// are distinguished by what follows it.
func (p *Parser) parseStatementOrFunction() (any, []source.SyntaxError) {
	var (
		id   program.Id
		errs []source.SyntaxError
	)
	//
	if id, errs = p.parseId(); len(errs) > 0 {
		return nil, errs
	} else if p.match(AT) {
		return p.parseFunction(id)
	}
	//
	return p.parseInvocation(id)
}

func (p *Parser) parseFunction(id program.Id) (*program.Function, []source.SyntaxError) {
	var (
		fn    = program.Function{Id: id}
		entry lex.Token
		errs  []source.SyntaxError
	)
	//
	if entry, errs = p.expect(NUMBER); len(errs) > 0 {
		return nil, errs
	}
	//
	entryPc := p.number(entry)
	fn.Entry = uint(entryPc.Uint64())
	//
	if _, errs = p.expect(LBRACE); len(errs) > 0 {
		return nil, errs
	}
	// Parameters
	for i := 0; !p.match(RBRACE); i++ {
		var param program.Param
		//
		if i != 0 {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		if param.Var, errs = p.parseId(); len(errs) > 0 {
			return nil, errs
		} else if _, errs = p.expect(COLON); len(errs) > 0 {
			return nil, errs
		} else if param.Type, errs = p.parseId(); len(errs) > 0 {
			return nil, errs
		}
		//
		fn.Params = append(fn.Params, param)
	}
	// Returns
	if _, errs = p.expect(RIGHTARROW); len(errs) > 0 {
		return nil, errs
	} else if fn.Returns, errs = p.parseIdList(); len(errs) > 0 {
		return nil, errs
	} else if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	return &fn, nil
}

// Parse the remainder of an invocation, which takes one of two forms:
// "(<args>) -> (<results>);" or "(<args>) { <branch> ... <branch> };".
func (p *Parser) parseInvocation(libfunc program.Id) (*program.Invocation, []source.SyntaxError) {
	var (
		stmt = program.Invocation{Libfunc: libfunc}
		errs []source.SyntaxError
	)
	//
	if stmt.Args, errs = p.parseIdList(); len(errs) > 0 {
		return nil, errs
	}
	//
	if p.match(RIGHTARROW) {
		var results []program.Id
		// Single fallthrough branch
		if results, errs = p.parseIdList(); len(errs) > 0 {
			return nil, errs
		}
		//
		stmt.Branches = []program.BranchInfo{{Fallthrough: true, Results: results}}
	} else if p.match(LCURLY) {
		for !p.match(RCURLY) {
			var branch program.BranchInfo
			//
			if branch, errs = p.parseBranch(); len(errs) > 0 {
				return nil, errs
			}
			//
			stmt.Branches = append(stmt.Branches, branch)
		}
	} else {
		return nil, p.syntaxErrors(p.lookahead(), "expected \"->\" or \"{\"")
	}
	//
	if _, errs = p.expect(SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	return &stmt, nil
}

// Parse "fallthrough(<results>)" or "<target>(<results>)"
func (p *Parser) parseBranch() (program.BranchInfo, []source.SyntaxError) {
	var (
		branch program.BranchInfo
		errs   []source.SyntaxError
	)
	//
	switch {
	case p.followsKeyword("fallthrough"):
		branch.Fallthrough = true
		p.index++
	case p.follows(NUMBER):
		target := p.number(p.next())
		branch.Target = uint(target.Uint64())
	default:
		return branch, p.syntaxErrors(p.lookahead(), "expected branch target")
	}
	//
	if branch.Results, errs = p.parseIdList(); len(errs) > 0 {
		return branch, errs
	}
	//
	return branch, nil
}

// Parse "(<id>, ..., <id>)", which may be empty.
func (p *Parser) parseIdList() ([]program.Id, []source.SyntaxError) {
	var (
		ids  []program.Id
		errs []source.SyntaxError
	)
	//
	if _, errs = p.expect(LBRACE); len(errs) > 0 {
		return nil, errs
	}
	//
	for i := 0; !p.match(RBRACE); i++ {
		var id program.Id
		//
		if i != 0 {
			if _, errs = p.expect(COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		if id, errs = p.parseId(); len(errs) > 0 {
			return nil, errs
		}
		//
		ids = append(ids, id)
	}
	//
	return ids, nil
}

// Parse an identifier, which is either numeric (e.g. "[3]") or a debug name.
// Debug names are paths (e.g. "core::bool") optionally followed by generic
// arguments (e.g. "Array<felt252>" or "core::PanicResult::<(felt252,)>"), or
// tuples (e.g. "(felt252, u8)").  The contents of any brackets are taken
// verbatim.
func (p *Parser) parseId() (program.Id, []source.SyntaxError) {
	var (
		first = p.index
		errs  []source.SyntaxError
	)
	//
	switch p.lookahead().Kind {
	case LSQUARE:
		p.index++
		//
		if _, errs = p.expect(NUMBER); len(errs) > 0 {
			return "", errs
		} else if _, errs = p.expect(RSQUARE); len(errs) > 0 {
			return "", errs
		}
	case LBRACE:
		if errs = p.skipGroup(LBRACE, RBRACE); len(errs) > 0 {
			return "", errs
		}
	case IDENTIFIER:
		p.index++
		//
		for len(errs) == 0 {
			if p.match(COLON_COLON) {
				if p.lookahead().Kind == LANGLE {
					errs = p.skipGroup(LANGLE, RANGLE)
				} else {
					_, errs = p.expect(IDENTIFIER)
				}
			} else if p.lookahead().Kind == LANGLE {
				errs = p.skipGroup(LANGLE, RANGLE)
			} else {
				break
			}
		}
		//
		if len(errs) > 0 {
			return "", errs
		}
	default:
		return "", p.syntaxErrors(p.lookahead(), "expected identifier")
	}
	//
	span := p.spanOf(first, p.index-1)
	//
	return program.NewId(p.srcfile.Text(span)), nil
}

// Skip over a bracketed group of tokens, including any nested groups.
func (p *Parser) skipGroup(opening uint, closing uint) []source.SyntaxError {
	var (
		start = p.lookahead()
		depth = 0
	)
	//
	for {
		token := p.lookahead()
		//
		switch token.Kind {
		case END_OF:
			return p.syntaxErrors(start, "unbalanced brackets")
		case opening:
			depth++
		case closing:
			depth--
		}
		//
		p.index++
		//
		if depth == 0 {
			return nil
		}
	}
}

func (p *Parser) parseBool() (bool, []source.SyntaxError) {
	tok, errs := p.expect(IDENTIFIER)
	//
	if len(errs) > 0 {
		return false, errs
	}
	//
	switch p.string(tok) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	//
	return false, p.syntaxErrors(tok, "expected \"true\" or \"false\"")
}

func (p *Parser) parseKeyword(keyword string) []source.SyntaxError {
	tok, errs := p.expect(IDENTIFIER)
	//
	if len(errs) > 0 {
		return errs
	} else if p.string(tok) != keyword {
		return p.syntaxErrors(tok, fmt.Sprintf("expected \"%s\"", keyword))
	}
	//
	return nil
}

func (p *Parser) parseIdentifier() (string, []source.SyntaxError) {
	tok, errs := p.expect(IDENTIFIER)
	//
	if len(errs) > 0 {
		return "", errs
	}
	//
	return p.string(tok), nil
}

func (p *Parser) string(token lex.Token) string {
	return p.srcfile.Text(token.Span)
}

func (p *Parser) number(token lex.Token) big.Int {
	var number big.Int
	//
	number.SetString(p.string(token), 10)
	//
	return number
}

// Lookahead returns the next token.  This must exist because EOF is always
// appended at the end of the token stream.
func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

// Next returns the next token and advances past it.
func (p *Parser) next() lex.Token {
	token := p.tokens[p.index]
	p.index++
	//
	return token
}

// Expect returns an error if the next token is not what was expected.
func (p *Parser) expect(kind uint) (lex.Token, []source.SyntaxError) {
	lookahead := p.lookahead()
	//
	if lookahead.Kind != kind {
		errs := p.syntaxErrors(lookahead, "unexpected token")
		return lookahead, errs
	}
	//
	p.index++
	//
	return lookahead, nil
}

// Match attempts to match the given token.
func (p *Parser) match(kind uint) bool {
	if p.lookahead().Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

// Follows attempts to check what follows the current position.
func (p *Parser) follows(kinds ...uint) bool {
	for i, kind := range kinds {
		n := i + p.index
		if n >= len(p.tokens) {
			return false
		} else if p.tokens[n].Kind != kind {
			return false
		}
	}
	//
	return true
}

// FollowsKeyword checks whether the next token is an identifier matching the
// given keyword, which is not itself the start of a path (e.g. "type::x").
func (p *Parser) followsKeyword(keyword string) bool {
	return p.follows(IDENTIFIER) && p.string(p.lookahead()) == keyword && !p.follows(IDENTIFIER, COLON_COLON)
}

func (p *Parser) spanOf(firstToken, lastToken int) source.Span {
	start := p.tokens[firstToken].Span.Start()
	end := p.tokens[lastToken].Span.End()
	//
	return source.NewSpan(start, end)
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcfile.SyntaxError(token.Span, msg)}
}
