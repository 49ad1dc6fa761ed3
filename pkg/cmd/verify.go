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
package cmd

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/latticelang/corelang/pkg/ast"
	"github.com/latticelang/corelang/pkg/diag"
	"github.com/latticelang/corelang/pkg/parse"
	"github.com/latticelang/corelang/pkg/resolve"
	"github.com/latticelang/corelang/pkg/source"
	"github.com/latticelang/corelang/pkg/util"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [files...]",
	Short: "Resolve every file and independently re-check its struct layouts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerify,
}

// runVerify resolves each file exactly as `layout` does, then recomputes
// every struct's offsets from scratch with an independent pass and compares
// the result against what the resolver recorded. This is deliberately
// redundant with passCResolveStruct: the point is to catch a resolver bug
// that produced internally-consistent but wrong numbers, not to re-derive
// anything the resolver didn't already know.
func runVerify(cmd *cobra.Command, args []string) error {
	stats := util.NewPerfStats()
	defer stats.Log("verify")

	wordSize, _ := cmd.Flags().GetUint("word-size")

	arch := resolve.Arch{WordSize: int(wordSize)}
	store := resolve.NewInstantiationStore()
	registry := source.NewRegistry()

	failed := false

	for _, file := range args {
		src := parse.NewFileModuleSource(filepath.Dir(file), registry)
		resolver := resolve.NewLayoutResolver(arch, src, store)

		id, srcFile, ioErr := registry.Load(file)
		if ioErr != nil {
			failed = true

			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %v\n", file, diag.ECodeFileNotFound, ioErr)

			continue
		}

		m, err := parse.ParseSource(srcFile, file, id)
		if err != nil {
			failed = true

			fmt.Fprintln(cmd.ErrOrStderr(), diag.Render(registry, err))

			continue
		}

		rm, rerr := resolver.Resolve(m, nil, nil)
		if rerr != nil {
			failed = true

			fmt.Fprintln(cmd.ErrOrStderr(), diag.Render(registry, rerr))

			continue
		}

		if verr := verifyModule(rm.Module); verr != nil {
			failed = true

			fmt.Fprintf(cmd.ErrOrStderr(), "%s: layout mismatch: %v\n", file, verr)

			continue
		}

		for idx, entry := range store.All() {
			if entry == rm {
				store.MarkVerified(idx)

				break
			}
		}

		log.Debugf("verify: %s (%s) ok", file, rm.Module.UniqueName)

		if found := store.Lookup(rm.Module.UniqueName).OrElse(nil); found != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d struct(s), as %s)\n", file, len(found.Module.Structs), rm.Module.UniqueName)
		}
	}

	if failed {
		return fmt.Errorf("one or more files failed verification")
	}

	return nil
}

// verifyModule independently recomputes the offset, size and alignment of
// every struct in m and reports the first discrepancy found.
func verifyModule(m *ast.Module) error {
	for _, s := range m.Structs {
		if err := verifyStruct(s); err != nil {
			return fmt.Errorf("struct %s: %w", s.Name, err)
		}
	}

	return nil
}

func verifyStruct(s *ast.Struct) error {
	offset := 0
	align := 1

	for _, mem := range s.Members {
		if mem.Type.Size < 0 || mem.Type.Align <= 0 {
			return fmt.Errorf("member %s has no resolved size/align", mem.Name)
		}

		pad := (mem.Type.Align - offset%mem.Type.Align) % mem.Type.Align
		offset += pad

		if mem.Offset != offset {
			return fmt.Errorf("member %s: recorded offset %d, recomputed %d", mem.Name, mem.Offset, offset)
		}

		offset += mem.Type.Size

		if mem.Type.Align > align {
			align = mem.Type.Align
		}
	}

	tailPad := (align - offset%align) % align
	size := offset + tailPad

	if s.Size != size {
		return fmt.Errorf("recorded size %d, recomputed %d", s.Size, size)
	}

	if s.Align != align {
		return fmt.Errorf("recorded align %d, recomputed %d", s.Align, align)
	}

	return nil
}
