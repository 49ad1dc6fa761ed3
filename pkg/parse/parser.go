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

// Package parse implements a recursive-descent module parser over the token
// stream produced by pkg/lexer, turning it into the pkg/ast.Module the
// layout resolver consumes. It exists so the pipeline is demonstrably
// runnable end to end; the resolver's contract never depends on this
// specific parser.
package parse

import (
	"path/filepath"

	"github.com/latticelang/corelang/pkg/ast"
	"github.com/latticelang/corelang/pkg/diag"
	"github.com/latticelang/corelang/pkg/lexer"
	"github.com/latticelang/corelang/pkg/source"
)

// primitiveWidths maps a primitive keyword's token kind to its (size,
// align) in bytes. Populated eagerly, per SPEC_FULL.md #4.4, since
// primitive sizes never depend on resolution.
var primitiveWidths = map[lexer.Kind]int{
	lexer.KeyI8: 1, lexer.KeyU8: 1,
	lexer.KeyI16: 2, lexer.KeyU16: 2,
	lexer.KeyI32: 4, lexer.KeyU32: 4, lexer.KeyF32: 4,
	lexer.KeyI64: 8, lexer.KeyU64: 8, lexer.KeyF64: 8,
	lexer.KeyVoid: 0,
}

var primitiveNames = map[lexer.Kind]string{
	lexer.KeyI8: "i8", lexer.KeyI16: "i16", lexer.KeyI32: "i32", lexer.KeyI64: "i64",
	lexer.KeyU8: "u8", lexer.KeyU16: "u16", lexer.KeyU32: "u32", lexer.KeyU64: "u64",
	lexer.KeyF32: "f32", lexer.KeyF64: "f64", lexer.KeyVoid: "void",
}

// Parser consumes a token cursor and builds a Module.
type Parser struct {
	cursor   *lexer.Cursor
	sourceID uint
}

// NewParser constructs a parser over an already-scanned token stream.
func NewParser(tokens []lexer.Token, sourceID uint) *Parser {
	return &Parser{lexer.NewCursor(tokens), sourceID}
}

// ParseFile scans and parses a single file from disk in one step, under a
// caller-assigned source id that plays no further role in interning.
func ParseFile(path string, sourceID uint) (*ast.Module, *diag.Diagnostic) {
	file, err := source.ReadFile(path)
	if err != nil {
		return nil, diag.New(diag.ECodeFileNotFound, source.Location{SourceID: sourceID}, "%v", err)
	}

	return ParseSource(file, path, sourceID)
}

// ParseSource scans and parses an already-loaded file. Callers that want
// diag.Render to work (it looks the source id up in a *source.Registry)
// should obtain both the file and its id from the same Registry via Load,
// rather than assigning sourceID independently as ParseFile does.
func ParseSource(file *source.File, displayPath string, sourceID uint) (*ast.Module, *diag.Diagnostic) {
	tokens, derr := lexer.Tokenize([]byte(string(file.Contents())), sourceID)
	if derr != nil {
		return nil, derr
	}

	p := NewParser(tokens, sourceID)

	return p.ParseModule(filepath.Base(displayPath))
}

func (p *Parser) loc() source.Location {
	return p.cursor.Peek().Location
}

func (p *Parser) errorf(code diag.Code, format string, args ...any) *diag.Diagnostic {
	return diag.New(code, p.loc(), format, args...)
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, *diag.Diagnostic) {
	if !p.cursor.Match(k) {
		return lexer.Token{}, p.errorf(diag.ECodeUnexpectedToken, "expected %s", what)
	}

	return p.cursor.Pop(), nil
}

// ParseModule parses every top-level declaration until the token stream is
// exhausted.
func (p *Parser) ParseModule(path string) (*ast.Module, *diag.Diagnostic) {
	m := &ast.Module{Path: path}

	for p.cursor.Peek().Kind != lexer.NONE {
		if err := p.parseTopLevel(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (p *Parser) parseTopLevel(m *ast.Module) *diag.Diagnostic {
	tok := p.cursor.Peek()

	switch tok.Kind {
	case lexer.OrderInclude:
		return p.parseInclude(m)
	case lexer.OrderTemplate:
		return p.parseTemplate(m)
	case lexer.KeyStruct:
		return p.parseStruct(m)
	case lexer.KeyEnum:
		return p.parseEnum(m)
	case lexer.Identifier:
		return p.parseFunc(m)
	default:
		return p.errorf(diag.ECodeUnexpectedToken, "unexpected token %q at top level", tok.Text)
	}
}

// #include "path" [as alias] [< TypeExpr, ... >]
func (p *Parser) parseInclude(m *ast.Module) *diag.Diagnostic {
	loc := p.loc()
	p.cursor.Pop() // #include

	pathTok, err := p.expect(lexer.LitString, "include path string")
	if err != nil {
		return err
	}

	inc := &ast.Include{Path: pathTok.Text, Location: loc}
	inc.Alias = filepath.Base(pathTok.Text)

	if p.cursor.Match(lexer.Identifier) && p.cursor.Peek().Text == "as" {
		p.cursor.Pop()

		aliasTok, err := p.expect(lexer.Identifier, "include alias")
		if err != nil {
			return err
		}

		inc.Alias = aliasTok.Text
	}

	if p.cursor.Match(lexer.OpLess) {
		p.cursor.Pop()

		for {
			arg, err := p.parseType()
			if err != nil {
				return err
			}

			inc.Args = append(inc.Args, arg)

			if p.cursor.Match(lexer.OpComma) {
				p.cursor.Pop()

				continue
			}

			break
		}

		if _, err := p.expect(lexer.OpGreater, "'>' closing template arguments"); err != nil {
			return err
		}
	}

	m.Includes = append(m.Includes, inc)

	return nil
}

// #template <name, ...>
func (p *Parser) parseTemplate(m *ast.Module) *diag.Diagnostic {
	if m.Template != nil {
		return p.errorf(diag.ECodeUnexpectedToken, "a module may declare at most one #template")
	}

	loc := p.loc()
	p.cursor.Pop() // #template

	if _, err := p.expect(lexer.OpLess, "'<' opening template parameters"); err != nil {
		return err
	}

	tp := &ast.TemplateParam{Location: loc}

	for {
		nameTok, err := p.expect(lexer.Identifier, "template parameter name")
		if err != nil {
			return err
		}

		tp.Names = append(tp.Names, nameTok.Text)

		if p.cursor.Match(lexer.OpComma) {
			p.cursor.Pop()

			continue
		}

		break
	}

	if _, err := p.expect(lexer.OpGreater, "'>' closing template parameters"); err != nil {
		return err
	}

	m.Template = tp

	return nil
}

// struct Name { Type member ; ... }
func (p *Parser) parseStruct(m *ast.Module) *diag.Diagnostic {
	loc := p.loc()
	p.cursor.Pop() // struct

	nameTok, err := p.expect(lexer.Identifier, "struct name")
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.OpLBrace, "'{' opening struct body"); err != nil {
		return err
	}

	var members []*ast.Member

	for !p.cursor.Match(lexer.OpRBrace) {
		memberLoc := p.loc()

		typ, err := p.parseType()
		if err != nil {
			return err
		}

		memberName, err := p.expect(lexer.Identifier, "struct member name")
		if err != nil {
			return err
		}

		if _, err := p.expect(lexer.OpSemicolon, "';' after struct member"); err != nil {
			return err
		}

		members = append(members, &ast.Member{Name: memberName.Text, Type: typ, Location: memberLoc})
	}

	p.cursor.Pop() // }

	m.Structs = append(m.Structs, ast.NewStruct(nameTok.Text, members, loc))

	return nil
}

// enum Name { Member [= IntLiteral], ... }
func (p *Parser) parseEnum(m *ast.Module) *diag.Diagnostic {
	loc := p.loc()
	p.cursor.Pop() // enum

	nameTok, err := p.expect(lexer.Identifier, "enum name")
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.OpLBrace, "'{' opening enum body"); err != nil {
		return err
	}

	var members []ast.EnumMember

	next := int64(0)

	for !p.cursor.Match(lexer.OpRBrace) {
		memberTok, err := p.expect(lexer.Identifier, "enum member name")
		if err != nil {
			return err
		}

		value := next

		if p.cursor.Match(lexer.OpAssign) {
			p.cursor.Pop()

			valTok, err := p.expect(lexer.LitInt10, "enum member value")
			if err != nil {
				return err
			}

			value = valTok.Value.Int
		}

		members = append(members, ast.EnumMember{Name: memberTok.Text, Value: value})
		next = value + 1

		if p.cursor.Match(lexer.OpComma) {
			p.cursor.Pop()
		}
	}

	p.cursor.Pop() // }

	m.Enums = append(m.Enums, ast.NewEnum(nameTok.Text, members, loc))

	return nil
}

// [Receiver.]Name ( [Type name, ...] ) Type { <opaque body> }
func (p *Parser) parseFunc(m *ast.Module) *diag.Diagnostic {
	loc := p.loc()
	firstTok := p.cursor.Pop()

	f := &ast.Func{Name: firstTok.Text, Location: loc}

	if p.cursor.Match(lexer.OpDot) {
		p.cursor.Pop()

		nameTok, err := p.expect(lexer.Identifier, "method name")
		if err != nil {
			return err
		}

		f.Receiver = firstTok.Text
		f.Name = nameTok.Text
	}

	if _, err := p.expect(lexer.OpLParen, "'(' opening parameter list"); err != nil {
		return err
	}

	for !p.cursor.Match(lexer.OpRParen) {
		paramLoc := p.loc()

		typ, err := p.parseType()
		if err != nil {
			return err
		}

		nameTok, err := p.expect(lexer.Identifier, "parameter name")
		if err != nil {
			return err
		}

		f.Params = append(f.Params, &ast.Member{Name: nameTok.Text, Type: typ, Location: paramLoc})

		if p.cursor.Match(lexer.OpComma) {
			p.cursor.Pop()
		}
	}

	p.cursor.Pop() // )

	ret, err := p.parseType()
	if err != nil {
		return err
	}

	f.Return = ret

	scope := ast.NewScope()
	for _, param := range f.Params {
		scope.Declare(param.Name, param.Type)
	}

	f.Scope = scope

	if err := p.skipBody(); err != nil {
		return err
	}

	m.Funcs = append(m.Funcs, f)

	return nil
}

// skipBody consumes a balanced brace-delimited token run without attempting
// to semantically parse it; statement-level analysis is out of scope.
func (p *Parser) skipBody() *diag.Diagnostic {
	if _, err := p.expect(lexer.OpLBrace, "'{' opening function body"); err != nil {
		return err
	}

	depth := 1

	for depth > 0 {
		tok := p.cursor.Pop()

		switch tok.Kind {
		case lexer.NONE:
			return p.errorf(diag.ECodeUnexpectedEOF, "unterminated function body")
		case lexer.OpLBrace:
			depth++
		case lexer.OpRBrace:
			depth--
		}
	}

	return nil
}

// parseType parses a TypeExpr: primitives, *T, T[n]/T[], func(T,...) T,
// bare identifiers (named, or foreign when qualified as alias.Name).
func (p *Parser) parseType() (*ast.TypeExpr, *diag.Diagnostic) {
	loc := p.loc()

	if p.cursor.Match(lexer.OpMul) {
		p.cursor.Pop()

		target, err := p.parseType()
		if err != nil {
			return nil, err
		}

		return ast.NewPointer(target, loc), nil
	}

	if p.cursor.Match(lexer.KeyStruct) {
		// anonymous inline function-pointer style usage is not part of this
		// language; struct as a type position always refers to a named decl
		// and is handled by the Identifier branch elsewhere. Unreachable in
		// a well-formed program; treat as unexpected.
		return nil, p.errorf(diag.ECodeUnexpectedToken, "unexpected 'struct' in type position")
	}

	if width, ok := primitiveWidths[p.cursor.Peek().Kind]; ok {
		tok := p.cursor.Pop()

		return p.parseTypeSuffix(ast.NewPrimitive(primitiveNames[tok.Kind], width, primitiveAlign(width)), loc)
	}

	if p.cursor.Match(lexer.Identifier, lexer.OpLParen) && p.cursor.Peek().Text == "func" {
		return p.parseFuncType(loc)
	}

	if p.cursor.Match(lexer.Identifier, lexer.OpDot) {
		alias := p.cursor.Pop().Text
		p.cursor.Pop() // .

		nameTok, err := p.expect(lexer.Identifier, "foreign type name")
		if err != nil {
			return nil, err
		}

		return p.parseTypeSuffix(ast.NewForeign(alias, nameTok.Text, loc), loc)
	}

	if p.cursor.Match(lexer.Identifier) {
		nameTok := p.cursor.Pop()

		return p.parseTypeSuffix(ast.NewNamed(nameTok.Text, loc), loc)
	}

	return nil, p.errorf(diag.ECodeUnexpectedToken, "expected a type")
}

// parseTypeSuffix handles the trailing `[n]` / `[]` array-or-slice
// modifiers, which may chain (e.g. i32[4][2]).
func (p *Parser) parseTypeSuffix(base *ast.TypeExpr, loc source.Location) (*ast.TypeExpr, *diag.Diagnostic) {
	for p.cursor.Match(lexer.OpLBracket) {
		p.cursor.Pop()

		if p.cursor.Match(lexer.OpRBracket) {
			p.cursor.Pop()

			base = ast.NewSlice(base, loc)

			continue
		}

		lenTok, err := p.expect(lexer.LitInt10, "array length")
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(lexer.OpRBracket, "']' closing array length"); err != nil {
			return nil, err
		}

		base = ast.NewArray(base, int(lenTok.Value.Int), loc)
	}

	return base, nil
}

func (p *Parser) parseFuncType(loc source.Location) (*ast.TypeExpr, *diag.Diagnostic) {
	p.cursor.Pop() // 'func' identifier

	if _, err := p.expect(lexer.OpLParen, "'(' opening function type parameters"); err != nil {
		return nil, err
	}

	var params []*ast.TypeExpr

	for !p.cursor.Match(lexer.OpRParen) {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}

		params = append(params, t)

		if p.cursor.Match(lexer.OpComma) {
			p.cursor.Pop()
		}
	}

	p.cursor.Pop() // )

	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}

	return ast.NewFunction(params, ret, loc), nil
}

func primitiveAlign(size int) int {
	if size == 0 {
		return 1
	}

	return size
}
