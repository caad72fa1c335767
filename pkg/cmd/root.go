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
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sierra-run --path program.sierra",
	Short: "An interpreter for Sierra programs.",
	Long: `Execute the main function of a Sierra program, reporting either the
	values it returns or the payload of any panic.  Execution can optionally be
	metered by a given gas budget.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			printVersion()
			return
		}
		// Configure log level
		if GetFlag(cmd, "trace") {
			log.SetLevel(log.TraceLevel)
		} else if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		if GetString(cmd, "path") == "" {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		os.Exit(runProgram(cmd))
	},
}

func printVersion() {
	fmt.Print("sierra-run ")
	if Version != "" {
		// Built via "make"
		fmt.Printf("%s", Version)
	} else if info, ok := debug.ReadBuildInfo(); ok {
		// Built via "go install"
		fmt.Printf("%s", info.Main.Version)
	} else {
		// Unknown, perhaps "go run"
		fmt.Printf("(unknown version)")
	}
	fmt.Println()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("trace", false, "log every executed statement")
	rootCmd.Flags().String("path", "", "Sierra program to execute (optionally .gz or .zst compressed)")
	rootCmd.Flags().Uint64("available-gas", 0, "meter execution with the given gas budget")
	rootCmd.Flags().Bool("print-full-memory", false, "print the final contents of memory")
	rootCmd.Flags().String("entry", "::main", "function to execute (matched by suffix)")
	rootCmd.Flags().StringSlice("args", nil, "arguments for the entry function (decimal or 0x-prefixed)")
	rootCmd.Flags().Uint("max-steps", 0, "maximum number of statements executed (0 for unlimited)")
}
