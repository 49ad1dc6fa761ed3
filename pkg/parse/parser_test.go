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
package parse

import (
	"testing"

	"github.com/latticelang/corelang/pkg/ast"
	"github.com/latticelang/corelang/pkg/lexer"
	"github.com/latticelang/corelang/pkg/util/assert"
)

func parseSource(t *testing.T, text string) *ast.Module {
	tokens, derr := lexer.Tokenize([]byte(text), 0)
	assert.True(t, derr == nil, "unexpected lex diagnostic: %v", derr)

	p := NewParser(tokens, 0)
	m, err := p.ParseModule("test.lang")
	assert.True(t, err == nil, "unexpected parse diagnostic: %v", err)

	return m
}

func TestParser_01_SimpleStruct(t *testing.T) {
	m := parseSource(t, "struct P { i32 x; i64 y; }")
	assert.Equal(t, 1, len(m.Structs))
	assert.Equal(t, "P", m.Structs[0].Name)
	assert.Equal(t, 2, len(m.Structs[0].Members))
	assert.Equal(t, "x", m.Structs[0].Members[0].Name)
	assert.Equal(t, ast.TypePrimitive, m.Structs[0].Members[0].Type.Kind)
}

func TestParser_02_PointerBreaksSelfReference(t *testing.T) {
	m := parseSource(t, "struct Node { Node* next; i32 value; }")
	assert.Equal(t, ast.TypePointer, m.Structs[0].Members[0].Type.Kind)
	assert.Equal(t, ast.TypeNamed, m.Structs[0].Members[0].Type.Direct.Kind)
}

func TestParser_03_Include(t *testing.T) {
	m := parseSource(t, `#include "box.lang" as box <i32>`)
	assert.Equal(t, 1, len(m.Includes))
	assert.Equal(t, "box.lang", m.Includes[0].Path)
	assert.Equal(t, "box", m.Includes[0].Alias)
	assert.Equal(t, 1, len(m.Includes[0].Args))
}

func TestParser_04_Template(t *testing.T) {
	m := parseSource(t, "#template <T>\nstruct Wrap { T v; }")
	assert.True(t, m.Template != nil)
	assert.Equal(t, []string{"T"}, m.Template.Names)
}

func TestParser_05_Enum(t *testing.T) {
	m := parseSource(t, "enum Colour { Red, Green = 5, Blue }")
	assert.Equal(t, 3, len(m.Enums[0].Members))
	assert.Equal(t, int64(0), m.Enums[0].Members[0].Value)
	assert.Equal(t, int64(5), m.Enums[0].Members[1].Value)
	assert.Equal(t, int64(6), m.Enums[0].Members[2].Value)
}

func TestParser_06_ArrayOfVoid(t *testing.T) {
	m := parseSource(t, "struct Bad { void[3] xs; }")
	assert.Equal(t, ast.TypeArray, m.Structs[0].Members[0].Type.Kind)
	assert.Equal(t, 0, m.Structs[0].Members[0].Type.Direct.Size)
}

func TestParser_07_Function(t *testing.T) {
	m := parseSource(t, "P.Area(i32 scale) i32 { return scale; }")
	assert.Equal(t, 1, len(m.Funcs))
	assert.Equal(t, "P", m.Funcs[0].Receiver)
	assert.Equal(t, "Area", m.Funcs[0].Name)
	assert.True(t, m.Funcs[0].Exported())
}

func TestParser_08_ForeignType(t *testing.T) {
	m := parseSource(t, `#include "pub.lang" as pub
struct Holder { pub.Item it; }`)
	assert.Equal(t, ast.TypeForeign, m.Structs[0].Members[0].Type.Kind)
	assert.Equal(t, "pub", m.Structs[0].Members[0].Type.IncludeTarget)
	assert.Equal(t, "Item", m.Structs[0].Members[0].Type.Name)
}
