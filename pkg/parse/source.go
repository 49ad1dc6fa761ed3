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
	"path/filepath"
	"sync"

	"github.com/latticelang/corelang/pkg/ast"
	"github.com/latticelang/corelang/pkg/diag"
	"github.com/latticelang/corelang/pkg/source"
)

// FileModuleSource loads and parses modules from disk on demand, caching the
// parsed (unresolved) ast.Module by path. It structurally satisfies the
// resolver's ModuleSource collaborator interface without importing
// pkg/resolve, since Go interfaces are satisfied implicitly.
type FileModuleSource struct {
	mu       sync.Mutex
	cache    map[string]*ast.Module
	registry *source.Registry
	baseDir  string
}

// NewFileModuleSource constructs a module source rooted at baseDir; relative
// include paths are resolved against it. Every file it loads is interned into
// registry, so a diagnostic raised deep inside an include chain can still be
// rendered with its offending source line by diag.Render.
func NewFileModuleSource(baseDir string, registry *source.Registry) *FileModuleSource {
	return &FileModuleSource{cache: make(map[string]*ast.Module), registry: registry, baseDir: baseDir}
}

// Load returns the parsed module at path, parsing and caching it on first
// access. The module returned is never mutated by the caller; the resolver
// clones it before instantiation.
func (s *FileModuleSource) Load(path string) (*ast.Module, *diag.Diagnostic) {
	s.mu.Lock()

	if m, ok := s.cache[path]; ok {
		s.mu.Unlock()

		return m, nil
	}

	s.mu.Unlock()

	resolved := path
	if !filepath.IsAbs(path) {
		resolved = filepath.Join(s.baseDir, path)
	}

	id, file, err := s.registry.Load(resolved)
	if err != nil {
		return nil, diag.New(diag.ECodeFileNotFound, source.Location{}, "%v", err)
	}

	m, derr := ParseSource(file, path, id)
	if derr != nil {
		return nil, derr
	}

	s.mu.Lock()
	s.cache[path] = m
	s.mu.Unlock()

	return m, nil
}
