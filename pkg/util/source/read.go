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
package source

import (
	"bytes"
	"io"
	"os"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
)

// ReadFile reads a given source file, or produces an error.  Files ending in
// ".gz" or ".zst" are transparently decompressed, though the original filename
// is retained for error reporting.
func ReadFile(filename string) (*File, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	switch path.Ext(filename) {
	case ".gz":
		log.Debugf("decompressing %s (gzip)", filename)
		//
		contents, err = gunzip(contents)
	case ".zst":
		log.Debugf("decompressing %s (zstd)", filename)
		//
		contents, err = unzstd(contents)
	}
	//
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing %s", filename)
	}
	//
	return NewSourceFile(filename, contents), nil
}

func gunzip(contents []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(contents))
	if err != nil {
		return nil, err
	}
	//
	defer reader.Close()
	//
	return io.ReadAll(reader)
}

func unzstd(contents []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	//
	defer decoder.Close()
	//
	return decoder.DecodeAll(contents, nil)
}
