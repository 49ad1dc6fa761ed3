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
	log "github.com/sirupsen/logrus"

	"github.com/latticelang/corelang/pkg/ast"
	"github.com/latticelang/corelang/pkg/diag"
	"github.com/latticelang/corelang/pkg/source"
)

// ModuleSource is the external collaborator the resolver asks for the
// parsed (unresolved) form of an included module. It is satisfied
// structurally by pkg/parse.FileModuleSource, or by a test double.
type ModuleSource interface {
	Load(path string) (*ast.Module, *diag.Diagnostic)
}

// maxIterations bounds the outer progress loop, following the teacher's
// GlobalResolution iteration budget: a latent bug in the pass logic
// surfaces as a panic, not an infinite loop.
const maxIterations = 10000

// LayoutResolver computes size, alignment and struct layout for a module,
// recursively instantiating its includes through an InstantiationStore.
type LayoutResolver struct {
	arch   Arch
	source ModuleSource
	store  *InstantiationStore
}

// NewLayoutResolver constructs a resolver for a given architecture, backed
// by a module source for resolving includes and a shared instantiation
// store.
func NewLayoutResolver(arch Arch, src ModuleSource, store *InstantiationStore) *LayoutResolver {
	return &LayoutResolver{arch, src, store}
}

// Resolve lays out a module given a template-argument tuple (empty if the
// module declares no template parameters), recursively instantiating its
// includes, and adds the result to the store.
func (r *LayoutResolver) Resolve(m *ast.Module, argSizes, argAligns []int) (*ResolvedModule, *diag.Diagnostic) {
	if existing, ok := r.store.Find(m.Path, argSizes, argAligns); ok {
		log.Debugf("resolve: cache hit for %s%v", m.Path, argSizes)

		return existing, nil
	}

	if err := r.bindTemplateArgs(m, argSizes, argAligns); err != nil {
		return nil, err
	}

	iterations := 0

	for {
		if iterations >= maxIterations {
			panic("layout resolver exceeded iteration budget: internal bug in progress loop")
		}

		iterations++

		progress := false

		for _, inc := range m.Includes {
			changed, err := r.passAResolveIncludeArgs(m, inc)
			if err != nil {
				return nil, err
			}

			progress = progress || changed
		}

		for _, inc := range m.Includes {
			changed, err := r.passBImportInclude(m, inc)
			if err != nil {
				return nil, err
			}

			progress = progress || changed
		}

		for _, s := range m.Structs {
			changed, err := r.passCResolveStruct(m, s)
			if err != nil {
				return nil, err
			}

			progress = progress || changed
		}

		if !progress {
			break
		}

		log.Debugf("resolve: %s iteration %d made progress", m.Path, iterations)
	}

	for _, inc := range m.Includes {
		if inc.Resolved == nil {
			return nil, diag.New(diag.ECodeTemplateUndecidable, inc.Location,
				"include %q could not be resolved: undecidable template arguments", inc.Path)
		}
	}

	for _, s := range m.Structs {
		if !s.IsResolved() {
			return nil, diag.New(diag.ECodeStructUndecidable, s.Location,
				"struct %s has undecidable size: cyclic definition without indirection", s.Name)
		}
	}

	rm := r.store.Add(m, argSizes, argAligns)
	log.Debugf("resolve: instantiated %s as %s", m.Path, m.UniqueName)

	return rm, nil
}

func (r *LayoutResolver) bindTemplateArgs(m *ast.Module, sizes, aligns []int) *diag.Diagnostic {
	if m.Template == nil {
		if len(sizes) != 0 {
			return diag.New(diag.ECodeTemplateArity, source.Location{}, "module %q takes no template parameters", m.Path)
		}

		return nil
	}

	if len(sizes) == 0 {
		return diag.New(diag.ECodeTemplateArity, m.Template.Location,
			"module %q declares template parameters but was given no arguments", m.Path)
	}

	if len(sizes) != len(m.Template.Names) || len(aligns) != len(m.Template.Names) {
		return diag.New(diag.ECodeTemplateUndecidable, m.Template.Location,
			"module %q expects %d template arguments, got %d", m.Path, len(m.Template.Names), len(sizes))
	}

	m.Template.Sizes = sizes
	m.Template.Aligns = aligns

	return nil
}

// passAResolveIncludeArgs resolves the type expressions of one include's
// template arguments.
func (r *LayoutResolver) passAResolveIncludeArgs(m *ast.Module, inc *Include) (bool, *diag.Diagnostic) {
	if inc.Resolved != nil {
		return false, nil
	}

	changed := false

	for _, arg := range inc.Args {
		c, err := r.completeType(m, arg)
		if err != nil {
			return false, err
		}

		changed = changed || c
	}

	return changed, nil
}

// passBImportInclude instantiates one include once every argument is sized,
// reusing an existing instantiation from the store when one already exists
// for this exact (path, tuple).
func (r *LayoutResolver) passBImportInclude(m *ast.Module, inc *Include) (bool, *diag.Diagnostic) {
	if inc.Resolved != nil {
		return false, nil
	}

	sizes := make([]int, len(inc.Args))
	aligns := make([]int, len(inc.Args))

	for i, arg := range inc.Args {
		if arg.Size < 0 {
			return false, nil
		}

		sizes[i] = arg.Size
		aligns[i] = arg.Align
	}

	if existing, ok := r.store.Find(inc.Path, sizes, aligns); ok {
		inc.Resolved = existing.Module

		return true, nil
	}

	template, err := r.source.Load(inc.Path)
	if err != nil {
		return false, diag.New(diag.ECodeMissingModule, inc.Location, "cannot load included module %q: %v", inc.Path, err)
	}

	cloned := template.Clone()

	resolved, err := r.Resolve(cloned, sizes, aligns)
	if err != nil {
		return false, err
	}

	inc.Resolved = resolved.Module

	return true, nil
}

// passCResolveStruct resolves the layout of one struct, once every member's
// type is sized.
func (r *LayoutResolver) passCResolveStruct(m *ast.Module, s *Struct) (bool, *diag.Diagnostic) {
	if s.IsResolved() {
		return false, nil
	}

	changed := false

	for _, mem := range s.Members {
		c, err := r.completeType(m, mem.Type)
		if err != nil {
			return false, err
		}

		changed = changed || c

		if mem.Type.Size <= 0 {
			return changed, nil
		}
	}

	offset := 0
	align := 1

	for _, mem := range s.Members {
		pad := 0
		if mem.Type.Align > 0 {
			pad = (mem.Type.Align - offset%mem.Type.Align) % mem.Type.Align
		}

		offset += pad
		mem.Offset = offset
		offset += mem.Type.Size

		if mem.Type.Align > align {
			align = mem.Type.Align
		}
	}

	tailPad := 0
	if align > 0 {
		tailPad = (align - offset%align) % align
	}

	s.Size = offset + tailPad
	s.Align = align

	return true, nil
}

// completeType implements the per-kind sizing rules of SPEC_FULL.md #4.5.
// It recurses into children first so dependents settle before dependers,
// and returns whether any field of t (or a descendant) changed this call.
func (r *LayoutResolver) completeType(m *ast.Module, t *TypeExpr) (bool, *diag.Diagnostic) {
	changed := false

	if t.Direct != nil {
		c, err := r.completeType(m, t.Direct)
		if err != nil {
			return false, err
		}

		changed = changed || c
	}

	for _, p := range t.Indirect {
		c, err := r.completeType(m, p)
		if err != nil {
			return false, err
		}

		changed = changed || c
	}

	if t.Size >= 0 {
		return changed, nil
	}

	switch t.Kind {
	case ast.TypePrimitive:
		// Always pre-sized at parse time; unreachable here.
		return changed, nil

	case ast.TypePointer, ast.TypeSlice, ast.TypeFunction:
		if t.Kind == ast.TypeSlice && t.Direct.Size == 0 {
			return false, diag.New(diag.ECodeVoidElement, t.Location, "slice of void is not permitted")
		}

		t.Size = r.arch.WordSize
		t.Align = r.arch.WordSize

		return true, nil

	case ast.TypeArray:
		if t.Direct.Size == 0 {
			return false, diag.New(diag.ECodeVoidElement, t.Location, "array of void is not permitted")
		}

		if t.Direct.Size < 0 {
			return changed, nil
		}

		t.Size = t.Direct.Size * t.Length
		t.Align = t.Direct.Align

		return true, nil

	case ast.TypeNamed:
		return r.completeNamed(m, t)

	case ast.TypeForeign:
		return r.completeForeign(m, t)
	}

	return changed, nil
}

func (r *LayoutResolver) completeNamed(m *ast.Module, t *TypeExpr) (bool, *diag.Diagnostic) {
	if s := m.FindStruct(t.Name, false); s != nil {
		if !s.IsResolved() {
			return false, nil
		}

		t.Size = s.Size
		t.Align = s.Align

		return true, nil
	}

	if e := m.FindEnum(t.Name, false); e != nil {
		t.Size = e.Size
		t.Align = e.Align

		return true, nil
	}

	if m.Template != nil {
		if size, align, ok := m.Template.Find(t.Name); ok {
			t.Size = size
			t.Align = align

			return true, nil
		}
	}

	return false, diag.New(diag.ECodeUnresolvedLocal, t.Location, "undeclared local type %q", t.Name)
}

func (r *LayoutResolver) completeForeign(m *ast.Module, t *TypeExpr) (bool, *diag.Diagnostic) {
	inc := m.FindInclude(t.IncludeTarget)
	if inc == nil {
		return false, diag.New(diag.ECodeMissingAlias, t.Location, "no include aliased %q", t.IncludeTarget)
	}

	if inc.Resolved == nil {
		return false, nil
	}

	target := inc.Resolved

	if s := target.FindStruct(t.Name, true); s != nil {
		if !s.IsResolved() {
			return false, nil
		}

		t.Size = s.Size
		t.Align = s.Align

		return true, nil
	}

	if e := target.FindEnum(t.Name, true); e != nil {
		t.Size = e.Size
		t.Align = e.Align

		return true, nil
	}

	return false, diag.New(diag.ECodeMissingSymbol, t.Location, "included module %q has no exported symbol %q", inc.Path, t.Name)
}

// Type aliases keep the signatures above readable without repeating the ast
// package qualifier on every parameter.
type (
	TypeExpr = ast.TypeExpr
	Include  = ast.Include
	Struct   = ast.Struct
)
