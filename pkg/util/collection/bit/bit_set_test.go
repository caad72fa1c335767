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
package bit

import (
	"testing"

	"github.com/consensys/sierra-run/pkg/util/assert"
)

func Test_BitSet_00(t *testing.T) {
	var set Set
	//
	set.Insert(3)
	set.Insert(64)
	set.Insert(200)
	//
	assert.Equal(t, 3, set.Count())
	assert.True(t, set.Contains(64))
	assert.False(t, set.Contains(65))
	assert.Equal(t, "[3, 64, 200]", set.String())
}

func Test_BitSet_01(t *testing.T) {
	var set Set
	//
	set.Insert(10)
	set.Remove(10)
	set.Remove(1000)
	//
	assert.Equal(t, 0, set.Count())
	assert.False(t, set.Contains(10))
}

func Test_BitSet_02(t *testing.T) {
	var lhs, rhs Set
	//
	lhs.Insert(1)
	rhs.Insert(1)
	rhs.Insert(130)
	//
	assert.True(t, lhs.Union(rhs))
	assert.False(t, lhs.Union(rhs))
	assert.True(t, lhs.Contains(130))
}

func Test_BitSet_03(t *testing.T) {
	var set Set
	//
	set.Insert(5)
	clone := set.Clone()
	clone.Insert(6)
	//
	assert.False(t, set.Contains(6))
	assert.True(t, clone.Contains(5))
}
