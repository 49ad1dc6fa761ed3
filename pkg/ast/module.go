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
package ast

// Module is one parsed (or resolved) module: its source path plus the
// top-level declarations found in it.
type Module struct {
	// Path this module was parsed from, as named by an #include.
	Path string
	// UniqueName is assigned once this module is accepted into an
	// instantiation store; empty until then.
	UniqueName string

	Template *TemplateParam
	Includes []*Include
	Structs  []*Struct
	Enums    []*Enum
	Funcs    []*Func
}

// FindStruct looks up a top-level struct by name. When exportedOnly is set,
// only an exported struct is returned (used for foreign/cross-module
// lookups).
func (m *Module) FindStruct(name string, exportedOnly bool) *Struct {
	for _, s := range m.Structs {
		if s.Name == name && (!exportedOnly || IsExported(s.Name)) {
			return s
		}
	}

	return nil
}

// FindEnum looks up a top-level enum by name, subject to the same export
// restriction as FindStruct.
func (m *Module) FindEnum(name string, exportedOnly bool) *Enum {
	for _, e := range m.Enums {
		if e.Name == name && (!exportedOnly || IsExported(e.Name)) {
			return e
		}
	}

	return nil
}

// FindInclude looks up an include declaration by its alias.
func (m *Module) FindInclude(alias string) *Include {
	for _, inc := range m.Includes {
		if inc.Alias == alias {
			return inc
		}
	}

	return nil
}

// FindFunc looks up a top-level function by (receiver, name); receiver is
// empty for free functions.
func (m *Module) FindFunc(receiver, name string) *Func {
	for _, f := range m.Funcs {
		if f.Receiver == receiver && f.Name == name {
			return f
		}
	}

	return nil
}

// Clone deep-copies a module and every declaration it owns. Required before
// a template module is mutated by a distinct instantiation, since the
// resolver assigns sizes/alignments/offsets in place.
func (m *Module) Clone() *Module {
	c := &Module{Path: m.Path}

	if m.Template != nil {
		tp := *m.Template
		tp.Sizes = append([]int(nil), m.Template.Sizes...)
		tp.Aligns = append([]int(nil), m.Template.Aligns...)
		c.Template = &tp
	}

	for _, inc := range m.Includes {
		ci := *inc
		ci.Args = make([]*TypeExpr, len(inc.Args))

		for i, a := range inc.Args {
			ci.Args[i] = a.Clone()
		}

		ci.Resolved = nil
		c.Includes = append(c.Includes, &ci)
	}

	for _, s := range m.Structs {
		cs := &Struct{Name: s.Name, Size: s.Size, Align: s.Align, Location: s.Location}

		for _, mem := range s.Members {
			cm := *mem
			cm.Type = mem.Type.Clone()
			cs.Members = append(cs.Members, &cm)
		}

		c.Structs = append(c.Structs, cs)
	}

	for _, e := range m.Enums {
		ce := *e
		ce.Members = append([]EnumMember(nil), e.Members...)
		c.Enums = append(c.Enums, &ce)
	}

	for _, f := range m.Funcs {
		cf := *f
		cf.Return = f.Return.Clone()
		cf.Params = nil

		for _, p := range f.Params {
			cp := *p
			cp.Type = p.Type.Clone()
			cf.Params = append(cf.Params, &cp)
		}

		scope := NewScope()
		for _, p := range cf.Params {
			scope.Declare(p.Name, p.Type)
		}

		cf.Scope = scope

		c.Funcs = append(c.Funcs, &cf)
	}

	return c
}
