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

	"github.com/sdlabs/sdcore/pkg/compiler"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <project.json>",
	Short: "Compile a project description and report diagnostics.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rp, err := loadProject(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		cp, diags := compiler.Compile(rp)

		for _, d := range diags {
			fmt.Println(d.Error())
		}

		if cp.Blocking() {
			fmt.Println("compilation failed: one or more blocking diagnostics")
			os.Exit(1)
		}

		fmt.Printf("compiled %d model(s), %d diagnostic(s)\n", len(cp.Models), len(diags))
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
}
