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
	"fmt"
	"os"
	"strings"

	"github.com/sdlabs/sdcore/pkg/causal"
	"github.com/sdlabs/sdcore/pkg/compiler"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loopsCmd = &cobra.Command{
	Use:   "loops <project.json>",
	Short: "Detect causal loops in a project's main model and print the loop table.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rp, err := loadProject(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		cp, diags := compiler.Compile(rp)
		for _, d := range diags {
			if d.Blocking() {
				fmt.Println(d.Error())
			}
		}
		if cp.Blocking() {
			fmt.Println("loop detection aborted: blocking diagnostics present")
			os.Exit(1)
		}

		cm := cp.Models[cp.Project.MainModel]
		loops := causal.DetectLoops(cm.Model.Variables)
		printLoopTable(loops)
	},
}

func printLoopTable(loops []causal.Loop) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	idWidth, polWidth := 12, 14
	stockWidth := width - idWidth - polWidth - 10
	if stockWidth < 10 {
		stockWidth = 10
	}

	fmt.Printf("%-*s%-*s%-*slinks\n", idWidth, "LOOP", polWidth, "POLARITY", stockWidth, "STOCKS")
	for _, l := range loops {
		stocks := make([]string, len(l.Stocks))
		for i, s := range l.Stocks {
			stocks[i] = string(s)
		}
		stockList := strings.Join(stocks, ", ")
		if len(stockList) > stockWidth-1 {
			stockList = stockList[:stockWidth-1]
		}
		fmt.Printf("%-*s%-*s%-*s%d\n", idWidth, l.ID, polWidth, polarityName(l.Polarity), stockWidth, stockList, len(l.Links))
	}
}

func polarityName(p causal.Polarity) string {
	switch p {
	case causal.Positive:
		return "Reinforcing"
	case causal.Negative:
		return "Balancing"
	default:
		return "Undetermined"
	}
}

func init() {
	rootCmd.AddCommand(loopsCmd)
}
