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
package lexer

import (
	"testing"

	"github.com/latticelang/corelang/pkg/diag"
	"github.com/latticelang/corelang/pkg/util/assert"
)

func checkKinds(t *testing.T, input string, expected ...Kind) {
	toks, err := Tokenize([]byte(input), 0)
	assert.True(t, err == nil, "unexpected diagnostic: %v", err)

	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}

	assert.Equal(t, expected, kinds)
}

func TestLexer_01_Identifiers(t *testing.T) {
	checkKinds(t, "foo bar_baz _qux", Identifier, Identifier, Identifier)
}

func TestLexer_02_Keywords(t *testing.T) {
	checkKinds(t, "i8 u64 f32 void struct enum", KeyI8, KeyU64, KeyF32, KeyVoid, KeyStruct, KeyEnum)
}

func TestLexer_03_Numbers(t *testing.T) {
	checkKinds(t, "123 0x1F 1.5", LitInt10, LitInt16, LitFloat)
}

func TestLexer_04_Operators(t *testing.T) {
	checkKinds(t, "<= >= == != && || << >> < > = !",
		OpLessEq, OpGreaterEq, OpEq, OpNotEq, OpLogicAnd, OpLogicOr, OpBitLShift, OpBitRShift,
		OpLess, OpGreater, OpAssign, OpLogicNot)
}

func TestLexer_05_ShortComment(t *testing.T) {
	checkKinds(t, "foo // a comment\nbar", Identifier, Identifier)
}

func TestLexer_06_LongComment(t *testing.T) {
	checkKinds(t, "foo /* a\nmulti-line\ncomment */ bar", Identifier, Identifier)
}

func TestLexer_07_Directive(t *testing.T) {
	checkKinds(t, "#include #template", OrderInclude, OrderTemplate)
}

func TestLexer_08_CharLiteral(t *testing.T) {
	toks, err := Tokenize([]byte(`'a' '\n' '\\'`), 0)
	assert.True(t, err == nil)
	assert.Equal(t, 3, len(toks))
	assert.Equal(t, int64('a'), toks[0].Value.Int)
	assert.Equal(t, int64('\n'), toks[1].Value.Int)
	assert.Equal(t, int64('\\'), toks[2].Value.Int)
}

func TestLexer_09_StringLiteral(t *testing.T) {
	toks, err := Tokenize([]byte(`"hello\nworld"`), 0)
	assert.True(t, err == nil)
	assert.Equal(t, 1, len(toks))
	assert.Equal(t, "hello\nworld", toks[0].Value.Str)
}

func TestLexer_10_EmptyCharIsE0104(t *testing.T) {
	_, err := Tokenize([]byte(`''`), 0)
	assert.True(t, err != nil)
	assert.Equal(t, diag.ECodeEmptyChar, err.Code)
}

func TestLexer_11_OverlongCharIsE0105(t *testing.T) {
	_, err := Tokenize([]byte(`'ab'`), 0)
	assert.True(t, err != nil)
	assert.Equal(t, diag.ECodeOverlongChar, err.Code)
}

func TestLexer_12_UnknownDirectiveIsE0109(t *testing.T) {
	_, err := Tokenize([]byte(`#nope`), 0)
	assert.True(t, err != nil)
	assert.Equal(t, diag.ECodeBadDirective, err.Code)
}

func TestLexer_13_UnknownByteIsE0101(t *testing.T) {
	_, err := Tokenize([]byte("foo $ bar"), 0)
	assert.True(t, err != nil)
	assert.Equal(t, diag.ECodeBadByte, err.Code)
}

func TestLexer_14_LineTrackingAcrossNewlineStyles(t *testing.T) {
	toks, err := Tokenize([]byte("a\nb\rc\r\nd"), 0)
	assert.True(t, err == nil)
	assert.Equal(t, 4, len(toks))
	assert.Equal(t, uint(1), toks[0].Location.Line)
	assert.Equal(t, uint(2), toks[1].Location.Line)
	assert.Equal(t, uint(3), toks[2].Location.Line)
	assert.Equal(t, uint(4), toks[3].Location.Line)
}

func TestLexer_15_HexRewindDoesNotDropNextToken(t *testing.T) {
	checkKinds(t, "0x1F+1", LitInt16, OpPlus, LitInt10)
}
