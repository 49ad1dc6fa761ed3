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
	"os"
	"path/filepath"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/latticelang/corelang/pkg/diag"
	"github.com/latticelang/corelang/pkg/parse"
	"github.com/latticelang/corelang/pkg/resolve"
	"github.com/latticelang/corelang/pkg/source"
	"github.com/latticelang/corelang/pkg/util"
	"github.com/latticelang/corelang/pkg/util/termio"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [files...]",
	Short: "Resolve and print the size/alignment/offset layout of every struct",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLayout,
}

func runLayout(cmd *cobra.Command, args []string) error {
	stats := util.NewPerfStats()
	defer stats.Log("layout")

	wordSize, _ := cmd.Flags().GetUint("word-size")
	noColour, _ := cmd.Flags().GetBool("no-colour")

	arch := resolve.Arch{WordSize: int(wordSize)}
	store := resolve.NewInstantiationStore()
	registry := source.NewRegistry()
	colour := !noColour && term.IsTerminal(int(os.Stdout.Fd()))

	type outcome struct {
		file string
		mod  *resolve.ResolvedModule
		err  *diag.Diagnostic
	}

	results := make([]outcome, len(args))

	var wg sync.WaitGroup

	sem := make(chan struct{}, max(1, runtime.NumCPU()))

	for i, file := range args {
		wg.Add(1)

		go func(i int, file string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			src := parse.NewFileModuleSource(filepath.Dir(file), registry)
			resolver := resolve.NewLayoutResolver(arch, src, store)

			log.Debugf("layout: resolving %s", file)

			id, srcFile, ioErr := registry.Load(file)
			if ioErr != nil {
				results[i] = outcome{file, nil, diag.New(diag.ECodeFileNotFound, source.Location{}, "%v", ioErr)}

				return
			}

			m, err := parse.ParseSource(srcFile, file, id)
			if err != nil {
				results[i] = outcome{file, nil, err}

				return
			}

			rm, rerr := resolver.Resolve(m, nil, nil)
			results[i] = outcome{file, rm, rerr}
		}(i, file)
	}

	wg.Wait()

	failed := false

	for _, r := range results {
		if r.err != nil {
			failed = true

			if r.err.Code == diag.ECodeFileNotFound {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", r.file, r.err.Code, r.err.Message)
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), diag.Render(registry, r.err))
			}

			continue
		}

		printLayout(cmd, r.mod, colour)
	}

	if failed {
		return fmt.Errorf("one or more files failed to resolve")
	}

	return nil
}

func printLayout(cmd *cobra.Command, rm *resolve.ResolvedModule, colour bool) {
	out := cmd.OutOrStdout()

	if t := rm.Module.Template; t != nil {
		for i, pair := range t.Pairs() {
			left, right := pair.Split()
			fmt.Fprintf(out, "  template arg %d: size=%d align=%d\n", i, left, right)
		}
	}

	var header termio.FormattedText
	if colour {
		header = row("struct", "member", "offset", "size", "align")
	} else {
		header = termio.NewText(fmt.Sprintf("%-12s%-12s%-8s%-8s%-8s", "struct", "member", "offset", "size", "align"))
	}

	fmt.Fprintln(out, string(header.Bytes()))

	for _, s := range rm.Module.Structs {
		for _, mem := range s.Members {
			var r termio.FormattedText
			if colour {
				r = row(s.Name, mem.Name, fmt.Sprint(mem.Offset), fmt.Sprint(mem.Type.Size), fmt.Sprint(mem.Type.Align))
			} else {
				r = termio.NewText(fmt.Sprintf("%-12s%-12s%-8d%-8d%-8d", s.Name, mem.Name, mem.Offset, mem.Type.Size, mem.Type.Align))
			}

			fmt.Fprintln(out, string(r.Bytes()))
		}

		fmt.Fprintf(out, "  %s: size=%d align=%d\n", s.Name, s.Size, s.Align)
	}
}

func row(cols ...string) termio.FormattedText {
	widths := []uint{12, 12, 8, 8, 8}

	result := termio.NewText("")

	for i, c := range cols {
		w := uint(8)
		if i < len(widths) {
			w = widths[i]
		}

		result = termio.NewText(string(result.Bytes()) + string(termio.NewColouredText(c, termio.TERM_CYAN).Pad(w).Bytes()))
	}

	return result
}

func max(a, b int) int {
	if a > b {
		return a
	}

	return b
}
