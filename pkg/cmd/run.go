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
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/consensys/sierra-run/pkg/sierra"
	"github.com/consensys/sierra-run/pkg/util"
	"github.com/consensys/sierra-run/pkg/util/source"
	"github.com/consensys/sierra-run/pkg/vm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit codes reported by the runner.
const (
	EXIT_OK        = 0
	EXIT_READ      = 2
	EXIT_SETUP     = 3
	EXIT_PARSE     = 4
	EXIT_EXECUTION = 5
)

// RunOptions configures a single invocation of the runner.
type RunOptions struct {
	// Path of the program to execute
	Path string
	// Name of the function to execute
	Entry string
	// Arguments for the entry function
	Args []big.Int
	// Gas budget, where nil indicates unmetered execution
	Gas *uint64
	// Maximum number of statements executed (0 for unlimited)
	MaxSteps uint
	// Whether to print the final contents of memory
	FullMemory bool
}

func runProgram(cmd *cobra.Command) int {
	var opts = RunOptions{
		Path:       GetString(cmd, "path"),
		Entry:      GetString(cmd, "entry"),
		MaxSteps:   GetUint(cmd, "max-steps"),
		FullMemory: GetFlag(cmd, "print-full-memory"),
	}
	// Presence of a budget switches on metering
	if cmd.Flags().Changed("available-gas") {
		budget := GetUint64(cmd, "available-gas")
		opts.Gas = &budget
	}
	//
	args, err := ParseArgs(GetStringSlice(cmd, "args"))
	if err != nil {
		fmt.Println(err)
		return EXIT_SETUP
	}
	//
	opts.Args = args
	// Interrupts cancel execution between chunks
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	//
	return Run(ctx, os.Stdout, opts, isTerminal(os.Stdout))
}

// Run a program according to some options, writing its outcome to a given
// stream and returning the exit code.  Both successful runs and panicking runs
// are considered to have completed.
func Run(ctx context.Context, out io.Writer, opts RunOptions, colour bool) int {
	prog, code := ReadProgram(out, opts.Path, colour)
	if prog == nil {
		return code
	}
	//
	runner, err := vm.NewRunner(prog, vm.Config{GasEnabled: opts.Gas != nil, MaxSteps: opts.MaxSteps})
	if err != nil {
		fmt.Fprintln(out, err)
		return EXIT_SETUP
	}
	//
	result, err := runner.RunFunction(ctx, opts.Entry, opts.Args, opts.Gas)
	//
	switch {
	case errors.Is(err, vm.ErrSetup):
		fmt.Fprintln(out, err)
		return EXIT_SETUP
	case err != nil:
		log.Errorf("%+v", err)
		fmt.Fprintln(out, err)
		//
		return EXIT_EXECUTION
	}
	//
	NewRenderer(out, opts.FullMemory, colour).Render(result)
	//
	return EXIT_OK
}

// ReadProgram reads, parses and links the program at a given path.  Any
// failure is reported to the given stream, along with the appropriate exit
// code.
func ReadProgram(out io.Writer, path string, colour bool) (*sierra.Program, int) {
	var stats = util.NewPerfStats()
	//
	log.Debugf("reading program %s", path)
	//
	srcfile, err := source.ReadFile(path)
	if err != nil {
		fmt.Fprintln(out, err)
		return nil, EXIT_READ
	}
	//
	prog, errs := sierra.Parse(srcfile)
	//
	if len(errs) > 0 {
		for _, err := range errs {
			printSyntaxError(out, &err, colour)
		}
		//
		return nil, EXIT_PARSE
	}
	//
	stats.Log("Parsing", log.Fields{"statements": prog.NumStatements()})
	//
	return prog, EXIT_OK
}

// ParseArgs parses a list of function arguments, each of which is either a
// (possibly negative) decimal or a 0x-prefixed hexadecimal value.
func ParseArgs(args []string) ([]big.Int, error) {
	var vals = make([]big.Int, len(args))
	//
	for i, arg := range args {
		arg = strings.TrimSpace(arg)
		//
		if _, ok := vals[i].SetString(arg, 0); !ok {
			return nil, errors.Newf("invalid argument \"%s\"", arg)
		}
	}
	//
	return vals, nil
}
