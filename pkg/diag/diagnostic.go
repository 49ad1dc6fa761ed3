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

// Package diag defines the single diagnostic value type shared by every
// stage of the front-end: scanning, parsing and layout resolution all report
// failure the same way, as a Diagnostic rather than a distinct error type
// per package.
package diag

import (
	"fmt"

	"github.com/latticelang/corelang/pkg/source"
)

// Code identifies the class of a diagnostic.  Codes are grouped by the stage
// that raises them: E00xx is I/O, E01xx is lexical, E02xx is syntactic, E08xx
// is layout resolution.
type Code string

// Lexical diagnostics, raised by the scanner.
const (
	ECodeBadByte         Code = "E0101"
	ECodeBadNumber       Code = "E0102"
	ECodeUnterminatedChar Code = "E0103"
	ECodeEmptyChar       Code = "E0104"
	ECodeOverlongChar    Code = "E0105"
	ECodeBadCharEscape   Code = "E0106"
	ECodeUnterminatedStr Code = "E0107"
	ECodeBadStringEscape Code = "E0108"
	ECodeBadDirective    Code = "E0109"
)

// I/O diagnostics, raised by external collaborators but rendered uniformly.
const (
	ECodeFileNotFound Code = "E0001"
	ECodeFileUnreadable Code = "E0002"
	ECodeEncoding       Code = "E0003"
)

// Syntactic diagnostics, raised by the module parser.
const (
	ECodeUnexpectedToken Code = "E0201"
	ECodeUnexpectedEOF   Code = "E0202"
)

// Layout-resolution diagnostics, raised by the LayoutResolver.
const (
	ECodeVoidElement        Code = "E0801"
	ECodeUnresolvedLocal    Code = "E0802"
	ECodeMissingAlias       Code = "E0803"
	ECodeMissingModule      Code = "E0804"
	ECodeMissingSymbol      Code = "E0805"
	ECodeTemplateArity      Code = "E0806"
	ECodeTemplateUndecidable Code = "E0807"
	ECodeStructUndecidable  Code = "E0808"
)

// Diagnostic carries a code, a human-readable message and the source
// location at which the condition was detected.  Diagnostics are values:
// every exported operation in this module returns one (or nil) rather than
// panicking or relying on Go's vanilla error type for anything the caller is
// meant to act on.
type Diagnostic struct {
	Code     Code
	Message  string
	Location source.Location
}

// New constructs a diagnostic at a given location.
func New(code Code, loc source.Location, format string, args ...any) *Diagnostic {
	return &Diagnostic{code, fmt.Sprintf(format, args...), loc}
}

// Error implements the error interface so a *Diagnostic can be returned
// anywhere plain Go code expects one, e.g. at the CLI boundary.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%s:%s", d.Location.Line, d.Code, d.Message)
}

// Render produces a multi-line rendering of this diagnostic including the
// offending source line, in the style of a compiler front-end.
func Render(registry *source.Registry, d *Diagnostic) string {
	file := registry.Get(d.Location.SourceID)
	line := registry.Line(d.Location)

	return fmt.Sprintf("%s:%d: %s: %s\n  %s", file.Filename(), d.Location.Line, d.Code, d.Message, line.String())
}
