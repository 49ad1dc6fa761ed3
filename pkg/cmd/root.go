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

// Package cmd implements the corelangc command-line driver: a cobra root
// command wiring the scanner, parser and layout resolver together.
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "corelangc",
	Short: "corelangc resolves struct, enum and template layouts ahead of codegen",
	Long: `corelangc is the semantic front-end for the lattice systems language: it
scans source files, parses module declarations, and resolves every type,
struct and template instantiation to a concrete size and alignment.`,
}

// Execute runs the root command, exiting the process with a non-zero status
// on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Uint("word-size", 8, "target architecture pointer width, in bytes")
	rootCmd.PersistentFlags().Bool("no-colour", false, "disable ANSI colour in table output")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	}

	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(verifyCmd)
}
