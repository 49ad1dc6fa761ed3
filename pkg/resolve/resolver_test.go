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
package resolve

import (
	"testing"

	"github.com/latticelang/corelang/pkg/ast"
	"github.com/latticelang/corelang/pkg/diag"
	"github.com/latticelang/corelang/pkg/lexer"
	"github.com/latticelang/corelang/pkg/parse"
	"github.com/latticelang/corelang/pkg/source"
	"github.com/latticelang/corelang/pkg/util/assert"
)

// memorySource serves modules from an in-memory map of source text, so
// resolver tests do not need to touch disk.
type memorySource struct {
	files map[string]string
	ids   map[string]uint
	next  uint
}

func newMemorySource(files map[string]string) *memorySource {
	return &memorySource{files: files, ids: make(map[string]uint)}
}

func (s *memorySource) Load(path string) (*ast.Module, *diag.Diagnostic) {
	text, ok := s.files[path]
	if !ok {
		return nil, diag.New(diag.ECodeMissingModule, source.Location{}, "no such module %q", path)
	}

	id, ok := s.ids[path]
	if !ok {
		id = s.next
		s.next++
		s.ids[path] = id
	}

	tokens, err := lexer.Tokenize([]byte(text), id)
	if err != nil {
		return nil, err
	}

	p := parse.NewParser(tokens, id)

	return p.ParseModule(path)
}

func parseModule(t *testing.T, text string) *ast.Module {
	tokens, derr := lexer.Tokenize([]byte(text), 0)
	assert.NoDiagnostic(t, derr)

	p := parse.NewParser(tokens, 0)
	m, err := p.ParseModule("main.lang")
	assert.NoDiagnostic(t, err)

	return m
}

func newResolver(src ModuleSource) (*LayoutResolver, *InstantiationStore) {
	store := NewInstantiationStore()

	return NewLayoutResolver(DefaultArch, src, store), store
}

// Two primitive members lay out back to back with no padding needed.
func TestResolver_TrivialPrimitivesSizeAndAlign(t *testing.T) {
	m := parseModule(t, "struct P { i32 x; i64 y; }")
	r, _ := newResolver(newMemorySource(nil))

	_, err := r.Resolve(m, nil, nil)
	assert.NoDiagnostic(t, err)

	s := m.Structs[0]
	assert.Equal(t, 16, s.Size)
	assert.Equal(t, 8, s.Align)
	assert.Equal(t, 0, s.Members[0].Offset)
	assert.Equal(t, 8, s.Members[1].Offset)
}

// A narrower member followed by a wider one forces interior and tail padding.
func TestResolver_MixedWidthMembersArePadded(t *testing.T) {
	m := parseModule(t, "struct Q { i8 a; i32 b; i8 c; }")
	r, _ := newResolver(newMemorySource(nil))

	_, err := r.Resolve(m, nil, nil)
	assert.NoDiagnostic(t, err)

	s := m.Structs[0]
	assert.Equal(t, 12, s.Size)
	assert.Equal(t, 4, s.Align)
	assert.Equal(t, 0, s.Members[0].Offset)
	assert.Equal(t, 4, s.Members[1].Offset)
	assert.Equal(t, 8, s.Members[2].Offset)
}

// A self-referential pointer member resolves because pointer size does not
// depend on its pointee; direct self-inclusion without indirection cannot
// converge and must fail instead.
func TestResolver_SelfReferentialPointerResolves(t *testing.T) {
	m := parseModule(t, "struct Node { Node* next; i32 value; }")
	r, _ := newResolver(newMemorySource(nil))

	_, err := r.Resolve(m, nil, nil)
	assert.NoDiagnostic(t, err)

	s := m.Structs[0]
	assert.Equal(t, 16, s.Size)
	assert.Equal(t, 8, s.Align)
	assert.Equal(t, 0, s.Members[0].Offset)
	assert.Equal(t, 8, s.Members[1].Offset)
}

func TestResolver_DirectSelfInclusionIsUndecidable(t *testing.T) {
	m := parseModule(t, "struct Bad { Bad x; }")
	r, _ := newResolver(newMemorySource(nil))

	_, err := r.Resolve(m, nil, nil)
	assert.DiagnosticCode(t, err, diag.ECodeStructUndecidable)
}

// Two includes of the same template with identical arguments must collapse
// to a single stored instantiation.
func TestResolver_TemplateInstantiationDeduplicatedAcrossIncludes(t *testing.T) {
	box := `#template <T>
struct Wrap { T v; }`
	client := `#include "box.lang" as boxA <i32>
#include "box.lang" as boxB <i32>
struct Holder { boxA.Wrap a; boxB.Wrap b; }`

	src := newMemorySource(map[string]string{"box.lang": box})
	r, store := newResolver(src)

	m := parseModule(t, client)

	_, err := r.Resolve(m, nil, nil)
	assert.NoDiagnostic(t, err)
	// One instantiation for the deduplicated box.lang<i32>, one for the
	// top-level client module itself.
	assert.Equal(t, 2, store.Len())
}

// A foreign type reference may reach an exported struct through an include
// alias but must fail against an unexported one.
func TestResolver_ForeignLookupRespectsExport(t *testing.T) {
	lib := `struct Pub { i32 x; }
struct priv { i32 y; }`
	goodClient := `#include "lib.lang" as lib
struct Holder { lib.Pub it; }`
	badClient := `#include "lib.lang" as lib
struct Holder { lib.priv it; }`

	src := newMemorySource(map[string]string{"lib.lang": lib})

	r1, _ := newResolver(src)
	good := parseModule(t, goodClient)
	_, err := r1.Resolve(good, nil, nil)
	assert.NoDiagnostic(t, err)

	r2, _ := newResolver(newMemorySource(map[string]string{"lib.lang": lib}))
	bad := parseModule(t, badClient)
	_, err2 := r2.Resolve(bad, nil, nil)
	assert.DiagnosticCode(t, err2, diag.ECodeMissingSymbol)
}

// An array of void elements can never be sized and must be rejected.
func TestResolver_ArrayOfVoidFails(t *testing.T) {
	m := parseModule(t, "struct Bad { void[3] xs; }")
	r, _ := newResolver(newMemorySource(nil))

	_, err := r.Resolve(m, nil, nil)
	assert.DiagnosticCode(t, err, diag.ECodeVoidElement)
}

// A non-templated module called with arguments fails E0806 (arity mismatch:
// presence/absence of template parameters).
func TestResolver_NonTemplateModuleWithArgsIsArityMismatch(t *testing.T) {
	m := parseModule(t, "struct P { i32 x; }")
	r, _ := newResolver(newMemorySource(nil))

	_, err := r.Resolve(m, []int{4}, []int{4})
	assert.DiagnosticCode(t, err, diag.ECodeTemplateArity)
}

// A templated module called with the wrong number of arguments (but at
// least one, so the module is recognizably a template client) fails E0807,
// not E0806: the arity is merely undecidable given the arguments supplied,
// distinct from a module that takes no template parameters at all.
func TestResolver_WrongArgumentCountIsUndecidable(t *testing.T) {
	m := parseModule(t, "#template <T, U>\nstruct Wrap { T v; }")
	r, _ := newResolver(newMemorySource(nil))

	_, err := r.Resolve(m, []int{4}, []int{4})
	assert.DiagnosticCode(t, err, diag.ECodeTemplateUndecidable)
}
