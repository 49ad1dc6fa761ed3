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

// Package ast defines the module AST consumed by the layout resolver: type
// expressions and top-level declarations (includes, template parameters,
// structs, enums, functions).
package ast

import "github.com/latticelang/corelang/pkg/source"

// TypeKind tags the shape of a TypeExpr.
type TypeKind uint

// The seven shapes a type expression can take.
const (
	TypePrimitive TypeKind = iota
	TypePointer
	TypeSlice
	TypeArray
	TypeFunction
	TypeNamed
	TypeForeign
)

// Unresolved is the sentinel size/align value before a TypeExpr has been
// through the layout resolver.
const Unresolved = -1

// TypeExpr is the recursive, structurally-equal (ignoring resolved
// size/align) tree describing a type reference.
type TypeExpr struct {
	Kind TypeKind

	// Direct holds the pointee/element/return type for pointer, slice,
	// array and function kinds.
	Direct *TypeExpr
	// Indirect holds the parameter types for a function kind.
	Indirect []*TypeExpr

	// Name is the referenced identifier for TypeNamed, or the symbol
	// declared inside the included module for TypeForeign.
	Name string
	// IncludeTarget names the include alias a TypeForeign type is qualified
	// by; empty for every other kind.
	IncludeTarget string
	// Length is the declared element count of an array type.
	Length int

	Size  int
	Align int

	Location source.Location
}

// NewPrimitive constructs a primitive type expression, already sized since
// primitive widths are known at parse time.
func NewPrimitive(name string, size, align int) *TypeExpr {
	return &TypeExpr{Kind: TypePrimitive, Name: name, Size: size, Align: align}
}

// NewPointer constructs an unresolved pointer-to-target type.
func NewPointer(target *TypeExpr, loc source.Location) *TypeExpr {
	return &TypeExpr{Kind: TypePointer, Direct: target, Size: Unresolved, Align: Unresolved, Location: loc}
}

// NewSlice constructs an unresolved slice-of-element type.
func NewSlice(element *TypeExpr, loc source.Location) *TypeExpr {
	return &TypeExpr{Kind: TypeSlice, Direct: element, Size: Unresolved, Align: Unresolved, Location: loc}
}

// NewArray constructs an unresolved array-of-element type with a fixed
// length.
func NewArray(element *TypeExpr, length int, loc source.Location) *TypeExpr {
	return &TypeExpr{Kind: TypeArray, Direct: element, Length: length, Size: Unresolved, Align: Unresolved, Location: loc}
}

// NewFunction constructs an unresolved function type.
func NewFunction(params []*TypeExpr, ret *TypeExpr, loc source.Location) *TypeExpr {
	return &TypeExpr{Kind: TypeFunction, Direct: ret, Indirect: params, Size: Unresolved, Align: Unresolved, Location: loc}
}

// NewNamed constructs an unresolved reference to a locally declared type
// (struct, enum or template parameter).
func NewNamed(name string, loc source.Location) *TypeExpr {
	return &TypeExpr{Kind: TypeNamed, Name: name, Size: Unresolved, Align: Unresolved, Location: loc}
}

// NewForeign constructs an unresolved reference to a symbol exported by an
// included module.
func NewForeign(includeAlias, name string, loc source.Location) *TypeExpr {
	return &TypeExpr{Kind: TypeForeign, IncludeTarget: includeAlias, Name: name, Size: Unresolved, Align: Unresolved, Location: loc}
}

// IsResolved reports whether this type expression's own size is known. It
// does not imply every descendant is resolved.
func (t *TypeExpr) IsResolved() bool {
	return t.Size >= 0
}

// Equal reports structural equality, ignoring resolved Size/Align/Location.
func (t *TypeExpr) Equal(o *TypeExpr) bool {
	if t == nil || o == nil {
		return t == o
	}

	if t.Kind != o.Kind || t.Name != o.Name || t.IncludeTarget != o.IncludeTarget || t.Length != o.Length {
		return false
	}

	if !t.Direct.Equal(o.Direct) {
		return false
	}

	if len(t.Indirect) != len(o.Indirect) {
		return false
	}

	for i := range t.Indirect {
		if !t.Indirect[i].Equal(o.Indirect[i]) {
			return false
		}
	}

	return true
}

// Clone deep-copies a type expression. Resolved Size/Align carry through,
// since a clone of an already-resolved type (e.g. a primitive) should not
// need re-resolving.
func (t *TypeExpr) Clone() *TypeExpr {
	if t == nil {
		return nil
	}

	c := *t
	c.Direct = t.Direct.Clone()

	if t.Indirect != nil {
		c.Indirect = make([]*TypeExpr, len(t.Indirect))
		for i, p := range t.Indirect {
			c.Indirect[i] = p.Clone()
		}
	}

	return &c
}
