// Copyright SDLabs Authors.
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

// Package cmd is the sdcore CLI surface (spec.md §6): a thin cobra wrapper
// that loads a JSON project description and drives the public
// compiler.Compile / sim.NewSimulation / ltm.Augment / causal.DetectLoops
// entry points, never reaching into their internals — the same boundary
// go-corset's own pkg/cmd keeps around corset.Compile/ir.NewTraceBuilder.
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd is the base command when sdcore is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "sdcore",
	Short: "A compiler and simulator for system-dynamics models.",
	Long:  "A compiler (and general toolbox) for system-dynamics models: compile, simulate, and analyze causal loop structure.",
}

// Execute runs rootCmd, whose child commands each add themselves in their
// own file's init, and exits with status 1 on error. Called once by
// cmd/sdcore's main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	cobra.OnInitialize(func() {
		if GetFlag(rootCmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	})
}
