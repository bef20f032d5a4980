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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sdlabs/sdcore/pkg/compiler"
	"github.com/sdlabs/sdcore/pkg/ltm"
	"github.com/sdlabs/sdcore/pkg/sim"
	"github.com/spf13/cobra"
)

var ltmCmd = &cobra.Command{
	Use:   "ltm <project.json>",
	Short: "Augment a project with Loops That Matter score variables, then simulate it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rp, err := loadProject(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		mode := ltm.Loops
		if GetString(cmd, "mode") == "all-links" {
			mode = ltm.AllLinks
		}

		cp, diags := compiler.Compile(rp)
		for _, d := range diags {
			if d.Blocking() {
				fmt.Println(d.Error())
			}
		}
		if cp.Blocking() {
			fmt.Println("ltm aborted: blocking diagnostics present")
			os.Exit(1)
		}

		cm := cp.Models[cp.Project.MainModel]
		augmented := ltm.Augment(cm.Model.Variables, mode, nil)
		augmentedCm, augDiags := compiler.Recompile(cm, augmented)
		for _, d := range augDiags {
			if d.Blocking() {
				fmt.Println(d.Error())
			}
		}

		s := sim.NewSimulation(augmentedCm, rp.SimSpecs)
		result, err := s.Run(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fmt.Printf("augmented %d synthetic variable(s)\n", len(augmented))
		printResultTable(result)
	},
}

func init() {
	ltmCmd.Flags().String("mode", "loops", "augmentation mode: loops or all-links")
	rootCmd.AddCommand(ltmCmd)
}
