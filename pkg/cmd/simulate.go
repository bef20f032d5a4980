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
	"sort"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/compiler"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/sim"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <project.json>",
	Short: "Compile and run a project's main model, printing a result table.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rp, err := loadProject(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if method := GetString(cmd, "method"); method == "rk4" {
			rp.SimSpecs.Method = project.RK4
		} else if method == "euler" {
			rp.SimSpecs.Method = project.Euler
		}
		if s := GetFloat64(cmd, "save-step"); s > 0 {
			rp.SimSpecs.SaveStep = s
		}

		cp, diags := compiler.Compile(rp)
		for _, d := range diags {
			if d.Blocking() {
				fmt.Println(d.Error())
			}
		}
		if cp.Blocking() {
			fmt.Println("simulation aborted: blocking diagnostics present")
			os.Exit(1)
		}

		cm := cp.Models[cp.Project.MainModel]
		s := sim.NewSimulation(cm, rp.SimSpecs)
		result, err := s.Run(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		printResultTable(result)
	},
}

func printResultTable(result *sim.Result) {
	var names []common.Ident
	for name, slot := range result.Offsets.Slots {
		if slot.Count == 1 {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	fmt.Print("time")
	for _, n := range names {
		if n == "time" {
			continue
		}
		fmt.Printf("\t%s", n)
	}
	fmt.Println()

	timeSeries := result.Series("time")
	for i := range result.Rows {
		fmt.Printf("%g", timeSeries[i])
		for _, n := range names {
			if n == "time" {
				continue
			}
			fmt.Printf("\t%g", result.Series(n)[i])
		}
		fmt.Println()
	}
}

func init() {
	simulateCmd.Flags().String("method", "", "integration method: euler or rk4 (overrides the project file)")
	simulateCmd.Flags().Float64("save-step", 0, "save-step override (0 keeps the project file's value)")
	rootCmd.AddCommand(simulateCmd)
}
