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

// Package lexer implements the single-pass scanner for the source language:
// a character-at-a-time state machine (not a parser-combinator) mirroring
// the mode transitions of a classical hand-written C tokenizer.
package lexer

import "github.com/latticelang/corelang/pkg/source"

// Kind identifies the lexical class of a Token.
type Kind uint

// Token kinds.  Grouped as: literals and identifiers, operators (single- and
// double-character kinds together, by family: arithmetic, comparison,
// logical/bitwise), punctuation, primitive/control keywords, intrinsic
// functions, directives, and finally the PRECOMPILE wildcard used only by
// Cursor.Match.
const (
	NONE Kind = iota
	LitInt10
	LitInt16
	LitFloat
	LitChar
	LitString
	Identifier

	OpPlus
	OpMinus
	OpMul
	OpDiv
	OpRemain

	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEq
	OpNotEq

	OpLogicAnd
	OpLogicOr
	OpLogicNot
	OpBitAnd
	OpBitOr
	OpBitNot
	OpBitXor
	OpBitLShift
	OpBitRShift

	OpAssign
	OpDot
	OpComma
	OpColon
	OpSemicolon
	OpLParen
	OpRParen
	OpLBrace
	OpRBrace
	OpLBracket
	OpRBracket

	KeyI8
	KeyI16
	KeyI32
	KeyI64
	KeyU8
	KeyU16
	KeyU32
	KeyU64
	KeyF32
	KeyF64
	KeyVoid
	KeyNull
	KeyTrue
	KeyFalse
	KeyIf
	KeyElse
	KeyWhile
	KeyFor
	KeySwitch
	KeyCase
	KeyDefault
	KeyBreak
	KeyContinue
	KeyReturn
	KeyStruct
	KeyEnum

	IFuncSizeof
	IFuncCast
	IFuncMake
	IFuncLen

	OrderInclude
	OrderTemplate
	OrderDefer
	OrderDefine
	OrderConst
	OrderVolatile
	OrderVaArg
	OrderRawC
	OrderFuncC
	OrderRawIR
	OrderFuncIR

	// Precompile matches any token kind without consuming it; used only in
	// Cursor.Match patterns, never produced by the scanner.
	Precompile
)

// LiteralValue holds the decoded value carried by literal and identifier
// tokens.  At most one field is meaningful, selected by the owning Token's
// Kind.
type LiteralValue struct {
	Int    int64
	Float  float64
	Str    string
	IsChar bool
}

// Token is a single lexical unit: its kind, its originating location, the
// verbatim source text it was scanned from, and (for literals and
// identifiers) its decoded value.
type Token struct {
	Kind     Kind
	Location source.Location
	Text     string
	Value    LiteralValue
}

var keywords = map[string]Kind{
	"i8": KeyI8, "i16": KeyI16, "i32": KeyI32, "i64": KeyI64,
	"u8": KeyU8, "u16": KeyU16, "u32": KeyU32, "u64": KeyU64,
	"f32": KeyF32, "f64": KeyF64,
	"void": KeyVoid, "null": KeyNull, "true": KeyTrue, "false": KeyFalse,
	"if": KeyIf, "else": KeyElse, "while": KeyWhile, "for": KeyFor,
	"switch": KeySwitch, "case": KeyCase, "default": KeyDefault,
	"break": KeyBreak, "continue": KeyContinue, "return": KeyReturn,
	"struct": KeyStruct, "enum": KeyEnum,
	"sizeof": IFuncSizeof, "cast": IFuncCast, "make": IFuncMake, "len": IFuncLen,
}

var directives = map[string]Kind{
	"#include": OrderInclude, "#template": OrderTemplate, "#defer": OrderDefer,
	"#define": OrderDefine, "#const": OrderConst, "#volatile": OrderVolatile,
	"#va_arg": OrderVaArg, "#raw_c": OrderRawC, "#func_c": OrderFuncC,
	"#raw_ir": OrderRawIR, "#func_ir": OrderFuncIR,
}

var singleOps = map[byte]Kind{
	'+': OpPlus, '-': OpMinus, '*': OpMul, '/': OpDiv, '%': OpRemain,
	'<': OpLess, '>': OpGreater, '!': OpLogicNot, '&': OpBitAnd, '|': OpBitOr,
	'~': OpBitNot, '^': OpBitXor, '=': OpAssign, '.': OpDot, ',': OpComma,
	':': OpColon, ';': OpSemicolon, '(': OpLParen, ')': OpRParen,
	'{': OpLBrace, '}': OpRBrace, '[': OpLBracket, ']': OpRBracket,
}

func isDoubleOpStart(c byte) bool {
	return c == '<' || c == '>' || c == '=' || c == '!' || c == '&' || c == '|'
}

func doubleOp(c1, c2 byte) (Kind, bool) {
	switch {
	case c1 == '<' && c2 == '=':
		return OpLessEq, true
	case c1 == '>' && c2 == '=':
		return OpGreaterEq, true
	case c1 == '=' && c2 == '=':
		return OpEq, true
	case c1 == '!' && c2 == '=':
		return OpNotEq, true
	case c1 == '&' && c2 == '&':
		return OpLogicAnd, true
	case c1 == '|' && c2 == '|':
		return OpLogicOr, true
	case c1 == '<' && c2 == '<':
		return OpBitLShift, true
	case c1 == '>' && c2 == '>':
		return OpBitRShift, true
	}

	return NONE, false
}
