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
package source

import "os"

// File represents a given source file (typically stored on disk), loaded in
// full and retained as a rune slice so that rune offsets into it can be
// re-sliced cheaply when rendering a diagnostic.
type File struct {
	// Filename associated with this source file.
	filename string
	// Contents of this file.
	contents []rune
}

// NewFile constructs a new source file from a given byte array.
func NewFile(filename string, bytes []byte) *File {
	contents := []rune(string(bytes))
	return &File{filename, contents}
}

// ReadFile loads a single file from disk into a File.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return NewFile(filename, bytes), nil
}

// Filename returns the filename associated with this source file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the contents of this source file.
func (s *File) Contents() []rune {
	return s.contents
}

// Line provides information about a given line within a source file,
// including its 1-indexed line number and its span within the original text.
type Line struct {
	text   []rune
	span   Span
	number uint
}

// String returns the text of this line.
func (p *Line) String() string {
	return string(p.text[p.span.start:p.span.end])
}

// Number returns the 1-indexed line number.
func (p *Line) Number() uint {
	return p.number
}

// FindLine determines the line, counting from 1, which contains a given rune
// offset into this file.  If the offset lies beyond the end of the file, the
// last physical line is returned.
func (s *File) FindLine(offset int) Line {
	num := uint(1)
	start := 0

	for i := 0; i < len(s.contents); i++ {
		if i == offset {
			return Line{s.contents, Span{start, findEndOfLine(offset, s.contents)}, num}
		} else if s.contents[i] == '\n' {
			num++
			start = i + 1
		}
	}

	return Line{s.contents, Span{start, len(s.contents)}, num}
}

func findEndOfLine(index int, text []rune) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}

	return len(text)
}
