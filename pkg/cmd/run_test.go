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
	"bytes"
	"context"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consensys/sierra-run/pkg/util/assert"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the sierra test files are found.
const TestDir = "../../testdata/sierra"

func Test_Run_Hello(t *testing.T) {
	checkRun(t, RunOptions{Path: fixture("hello")}, EXIT_OK,
		"Run completed successfully\nResult: hello\n")
}

func Test_Run_HelloMetered(t *testing.T) {
	checkRun(t, RunOptions{Path: fixture("hello"), Gas: budget(1000)}, EXIT_OK,
		"Run completed successfully\nResult: hello\nRemaining gas: 800\n")
}

func Test_Run_OutOfGas(t *testing.T) {
	checkRun(t, RunOptions{Path: fixture("hello"), Gas: budget(150)}, EXIT_OK,
		"Run panicked with err values: [375233589013918064796019]\nRemaining gas: 50\n")
}

func Test_Run_Panic(t *testing.T) {
	checkRun(t, RunOptions{Path: fixture("panic42")}, EXIT_OK,
		"Run panicked with err values: [42]\n")
}

func Test_Run_FullMemory(t *testing.T) {
	checkRun(t, RunOptions{Path: fixture("locals"), FullMemory: true}, EXIT_OK,
		"Run completed successfully\nResult: \x0e\nFull memory: [_, 7, 14, ]\n")
}

func Test_Run_Arguments(t *testing.T) {
	args, err := ParseArgs([]string{"0", "1", "5"})
	assert.NoError(t, err)
	//
	checkRun(t, RunOptions{Path: fixture("fib"), Entry: "fib::fib::fib", Args: args}, EXIT_OK,
		"Run completed successfully\nResult: \x05\n")
}

func Test_Run_UnknownEntry(t *testing.T) {
	code, out := run(t, RunOptions{Path: fixture("hello"), Entry: "::missing"})
	//
	assert.Equal(t, EXIT_SETUP, code)
	assert.True(t, strings.Contains(out, "::missing"), "unexpected output %s", out)
}

func Test_Run_StepLimit(t *testing.T) {
	code, _ := run(t, RunOptions{Path: fixture("loop"), MaxSteps: 1000})
	//
	assert.Equal(t, EXIT_EXECUTION, code)
}

func Test_Run_MissingFile(t *testing.T) {
	code, _ := run(t, RunOptions{Path: filepath.Join(TestDir, "missing.sierra")})
	//
	assert.Equal(t, EXIT_READ, code)
}

func Test_Run_SyntaxError(t *testing.T) {
	code, out := run(t, RunOptions{Path: filepath.Join(TestDir, "invalid", "missing_semicolon.sierra")})
	//
	assert.Equal(t, EXIT_PARSE, code)
	assert.True(t, strings.Contains(out, "missing_semicolon.sierra:"), "unexpected output %s", out)
	assert.True(t, strings.Contains(out, "unexpected token"), "unexpected output %s", out)
	assert.True(t, strings.Contains(out, "^"), "missing highlight in %s", out)
}

func Test_Run_LinkError(t *testing.T) {
	code, out := run(t, RunOptions{Path: filepath.Join(TestDir, "invalid", "unknown_libfunc.sierra")})
	//
	assert.Equal(t, EXIT_PARSE, code)
	assert.True(t, strings.Contains(out, "unknown libfunc"), "unexpected output %s", out)
}

func Test_Run_Gzip(t *testing.T) {
	var buf bytes.Buffer
	//
	writer := gzip.NewWriter(&buf)
	_, err := writer.Write(readFixture(t, "hello"))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())
	//
	path := writeTemp(t, "hello.sierra.gz", buf.Bytes())
	//
	checkRun(t, RunOptions{Path: path}, EXIT_OK, "Run completed successfully\nResult: hello\n")
}

func Test_Run_Zstd(t *testing.T) {
	encoder, err := zstd.NewWriter(nil)
	assert.NoError(t, err)
	//
	compressed := encoder.EncodeAll(readFixture(t, "hello"), nil)
	assert.NoError(t, encoder.Close())
	//
	path := writeTemp(t, "hello.sierra.zst", compressed)
	//
	checkRun(t, RunOptions{Path: path}, EXIT_OK, "Run completed successfully\nResult: hello\n")
}

func Test_Run_CorruptArchive(t *testing.T) {
	path := writeTemp(t, "hello.sierra.gz", []byte("not gzipped"))
	//
	code, _ := run(t, RunOptions{Path: path})
	//
	assert.Equal(t, EXIT_READ, code)
}

func Test_ParseArgs(t *testing.T) {
	args, err := ParseArgs([]string{"12", " 0x10", "-1"})
	//
	assert.NoError(t, err)
	assert.Equal(t, 0, args[0].Cmp(big.NewInt(12)))
	assert.Equal(t, 0, args[1].Cmp(big.NewInt(16)))
	assert.Equal(t, 0, args[2].Cmp(big.NewInt(-1)))
	//
	_, err = ParseArgs([]string{"twelve"})
	assert.Error(t, err)
}

// ===================================================================
// Test Helpers
// ===================================================================

func checkRun(t *testing.T, opts RunOptions, expectedCode int, expected string) {
	t.Helper()
	//
	code, out := run(t, opts)
	//
	assert.Equal(t, expectedCode, code, "unexpected exit code (output %s)", out)
	assert.Equal(t, expected, out)
}

func run(t *testing.T, opts RunOptions) (int, string) {
	t.Helper()
	//
	var out bytes.Buffer
	//
	if opts.Entry == "" {
		opts.Entry = "::main"
	}
	//
	code := Run(context.Background(), &out, opts, false)
	//
	return code, out.String()
}

func fixture(name string) string {
	return filepath.Join(TestDir, name+".sierra")
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	//
	contents, err := os.ReadFile(fixture(name))
	assert.NoError(t, err)
	//
	return contents
}

func writeTemp(t *testing.T, name string, contents []byte) string {
	t.Helper()
	//
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, contents, 0o600))
	//
	return path
}

func budget(n uint64) *uint64 {
	return &n
}
