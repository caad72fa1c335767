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
package stack

import (
	"testing"

	"github.com/consensys/sierra-run/pkg/util/assert"
)

func TestStack_PushPop(t *testing.T) {
	stack := NewStack[uint]()
	//
	assert.True(t, stack.IsEmpty())
	stack.Push(1)
	stack.Push(2)
	stack.Push(3)
	assert.Equal(t, 3, stack.Len())
	assert.Equal(t, 3, stack.Top())
	assert.Equal(t, 1, stack.Peek(2))
	assert.Equal(t, []uint{1, 2, 3}, stack.Items())
	//
	assert.Equal(t, 3, stack.Pop())
	assert.Equal(t, 2, stack.Pop())
	assert.Equal(t, 1, stack.Len())
	assert.Equal(t, 1, stack.Pop())
	assert.True(t, stack.IsEmpty())
}

func TestStack_PopEmpty(t *testing.T) {
	defer func() {
		assert.True(t, recover() != nil, "expected panic")
	}()
	//
	NewStack[int]().Pop()
}
