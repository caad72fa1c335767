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
	"io"
	"strings"

	"github.com/consensys/sierra-run/pkg/decode"
	"github.com/consensys/sierra-run/pkg/util/field/stark252"
	"github.com/consensys/sierra-run/pkg/vm"
	"github.com/fatih/color"
)

// Renderer writes the outcome of a run in human-readable form.
type Renderer struct {
	out io.Writer
	// Whether to print the final contents of memory
	fullMemory bool
	// Printers for headlines
	success *color.Color
	failure *color.Color
}

// NewRenderer constructs a renderer for a given output stream.  Colour is used
// only when enabled, which should be the case only when the stream is a
// terminal.
func NewRenderer(out io.Writer, fullMemory bool, colour bool) *Renderer {
	return &Renderer{
		out:        out,
		fullMemory: fullMemory,
		success:    newColour(colour, color.FgGreen, color.Bold),
		failure:    newColour(colour, color.FgRed, color.Bold),
	}
}

// Render the result of a run.  Successful values are decoded as short strings,
// whilst panic payloads are printed as raw decimal values.
func (p *Renderer) Render(result vm.RunResult) {
	switch outcome := result.Value.(type) {
	case vm.Success:
		p.success.Fprintln(p.out, "Run completed successfully")
		//
		for _, v := range outcome.Values {
			fmt.Fprintf(p.out, "Result: %s\n", decode.ShortString(v))
		}
	case vm.Panic:
		p.failure.Fprint(p.out, "Run panicked")
		fmt.Fprintf(p.out, " with err values: [%s]\n", decimals(outcome.Values))
	}
	//
	if remaining, ok := result.GasCounter.Get(); ok {
		fmt.Fprintf(p.out, "Remaining gas: %d\n", remaining)
	}
	//
	if p.fullMemory {
		var builder strings.Builder
		//
		builder.WriteString("Full memory: [")
		//
		for _, cell := range result.Memory {
			if v, ok := cell.Get(); ok {
				builder.WriteString(v.BigInt().String())
			} else {
				builder.WriteString("_")
			}
			//
			builder.WriteString(", ")
		}
		//
		builder.WriteString("]")
		fmt.Fprintln(p.out, builder.String())
	}
}

// Format values as (unsigned) decimals.
func decimals(vals []stark252.Element) string {
	var strs = make([]string, len(vals))
	//
	for i, v := range vals {
		strs[i] = v.BigInt().String()
	}
	//
	return strings.Join(strs, ", ")
}
