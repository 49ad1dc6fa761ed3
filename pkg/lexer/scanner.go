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
	"strconv"

	"github.com/latticelang/corelang/pkg/diag"
	"github.com/latticelang/corelang/pkg/source"
)

// mode is the scanner's internal state, matching TokenizeStatus in the
// reference tokenizer one-for-one.
type mode uint

const (
	modeDefault mode = iota
	modeShortComment
	modeLongComment
	modeIdentifier
	modeDirective
	modeDoubleOp
	modeNumber
	modeChar
	modeCharEscape
	modeString
	modeStringEscape
)

// Tokenize converts source text into a token stream.  It is single-pass: one
// byte is consumed per iteration except where a mode needs to look one byte
// ahead (comment/newline detection) or rewind one byte (to hand an
// unconsumed terminator back to modeDefault).  A single diagnostic aborts
// scanning; no partial token stream is returned alongside it.
func Tokenize(text []byte, sourceID uint) ([]Token, *diag.Diagnostic) {
	var (
		tokens []Token
		buffer []byte
		st     = modeDefault
		line   uint = 1
		pos    int
	)

	loc := func() source.Location { return source.Location{SourceID: sourceID, Line: line} }

	emit := func(k Kind, text string) {
		tokens = append(tokens, Token{Kind: k, Location: loc(), Text: text})
	}

	for loopCtrl := true; loopCtrl; {
		var c byte

		if pos >= len(text) {
			c = '\n'
			loopCtrl = false
		} else {
			c = text[pos]
			pos++
		}

		switch st {
		case modeDefault:
			switch {
			case isIdentStart(c):
				buffer = []byte{c}
				st = modeIdentifier
			case '0' <= c && c <= '9':
				buffer = []byte{c}
				st = modeNumber
			case isDoubleOpStart(c):
				buffer = []byte{c}
				st = modeDoubleOp
			case c == ' ' || c == '\t' || c == 0:
				// skip whitespace
			case c == '\r':
				line++
				if pos < len(text) && text[pos] == '\n' {
					pos++
				}
			case c == '\n':
				line++
			case c == '/':
				if pos < len(text) && text[pos] == '/' {
					pos++
					st = modeShortComment
				} else if pos < len(text) && text[pos] == '*' {
					pos++
					st = modeLongComment
				} else {
					emit(OpDiv, "/")
				}
			case c == '\'':
				buffer = nil
				st = modeChar
			case c == '"':
				buffer = nil
				st = modeString
			case c == '#':
				buffer = []byte{c}
				st = modeDirective
			default:
				if k, ok := singleOps[c]; ok {
					emit(k, string(c))
				} else {
					return nil, diag.New(diag.ECodeBadByte, loc(), "invalid character %q", c)
				}
			}

		case modeShortComment:
			if c == '\r' {
				line++
				if pos < len(text) && text[pos] == '\n' {
					pos++
				}
				st = modeDefault
			} else if c == '\n' {
				line++
				st = modeDefault
			}

		case modeLongComment:
			if c == '\r' {
				line++
				if pos < len(text) && text[pos] == '\n' {
					pos++
				}
			} else if c == '\n' {
				line++
			} else if c == '*' && pos < len(text) && text[pos] == '/' {
				pos++
				st = modeDefault
			}

		case modeIdentifier:
			if isIdentCont(c) {
				buffer = append(buffer, c)
			} else {
				word := string(buffer)
				if k, ok := keywords[word]; ok {
					emit(k, word)
				} else {
					tokens = append(tokens, Token{
						Kind: Identifier, Location: loc(), Text: word,
						Value: LiteralValue{Str: word},
					})
				}
				st = modeDefault
				pos--
			}

		case modeDoubleOp:
			if k, ok := doubleOp(buffer[0], c); ok {
				emit(k, string(buffer[0])+string(c))
				st = modeDefault
			} else {
				emit(singleOps[buffer[0]], string(buffer[0]))
				st = modeDefault
				pos--
			}

		case modeNumber:
			if ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F') || c == 'x' || c == 'X' || c == '.' {
				buffer = append(buffer, c)
			} else {
				numStr := string(buffer)
				k, ok := classifyNumber(numStr)
				if !ok {
					return nil, diag.New(diag.ECodeBadNumber, loc(), "invalid number %q", numStr)
				}

				tok := Token{Kind: k, Location: loc(), Text: numStr}

				switch k {
				case LitInt10:
					v, _ := strconv.ParseInt(numStr, 10, 64)
					tok.Value = LiteralValue{Int: v}
				case LitInt16:
					v, _ := strconv.ParseInt(numStr[2:], 16, 64)
					tok.Value = LiteralValue{Int: v}
				case LitFloat:
					v, _ := strconv.ParseFloat(numStr, 64)
					tok.Value = LiteralValue{Float: v}
				}

				tokens = append(tokens, tok)
				st = modeDefault
				pos--
			}

		case modeChar:
			switch {
			case c == '\\':
				st = modeCharEscape
			case c == '\r' || c == '\n':
				return nil, diag.New(diag.ECodeUnterminatedChar, loc(), "newline in char literal")
			case c == '\'':
				if len(buffer) == 0 {
					return nil, diag.New(diag.ECodeEmptyChar, loc(), "empty char literal")
				}

				if len(buffer) > 1 {
					return nil, diag.New(diag.ECodeOverlongChar, loc(), "char literal too long")
				}

				tokens = append(tokens, Token{
					Kind: LitChar, Location: loc(), Text: string(buffer),
					Value: LiteralValue{Int: int64(buffer[0]), IsChar: true},
				})
				st = modeDefault
			default:
				buffer = append(buffer, c)
			}

		case modeCharEscape:
			escaped, ok := unescape(c)
			if !ok {
				return nil, diag.New(diag.ECodeBadCharEscape, loc(), "invalid char escape \\%c", c)
			}

			buffer = append(buffer, escaped)
			st = modeChar

		case modeString:
			switch {
			case c == '\\':
				st = modeStringEscape
			case c == '\r' || c == '\n':
				return nil, diag.New(diag.ECodeUnterminatedStr, loc(), "newline in string literal")
			case c == '"':
				text := string(buffer)
				tokens = append(tokens, Token{
					Kind: LitString, Location: loc(), Text: text,
					Value: LiteralValue{Str: text},
				})
				st = modeDefault
			default:
				buffer = append(buffer, c)
			}

		case modeStringEscape:
			escaped, ok := unescape(c)
			if !ok {
				return nil, diag.New(diag.ECodeBadStringEscape, loc(), "invalid string escape \\%c", c)
			}

			buffer = append(buffer, escaped)
			st = modeString

		case modeDirective:
			if isIdentCont(c) {
				buffer = append(buffer, c)
			} else {
				word := string(buffer)

				k, ok := directives[word]
				if !ok {
					return nil, diag.New(diag.ECodeBadDirective, loc(), "unsupported compiler directive %s", word)
				}

				emit(k, word)
				st = modeDefault
				pos--
			}
		}
	}

	return tokens, nil
}

func isIdentStart(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || c == '_' || c > 127
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}

// classifyNumber mirrors isNumber: a run of digits is decimal, a "0x"/"0X"
// prefix makes it hexadecimal, and a single '.' (outside hex) makes it a
// float. Anything else is malformed.
func classifyNumber(text string) (Kind, bool) {
	isHex := false
	isFloat := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case (c == 'x' || c == 'X') && i == 1 && text[0] == '0':
			isHex = true
		case c == '.' && !isHex && !isFloat:
			isFloat = true
		case !(('0' <= c && c <= '9') || (isHex && (('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')))):
			return NONE, false
		}
	}

	switch {
	case isFloat:
		return LitFloat, true
	case isHex:
		return LitInt16, true
	default:
		return LitInt10, true
	}
}

func unescape(c byte) (byte, bool) {
	switch c {
	case '0':
		return 0, true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	default:
		return 0, false
	}
}
