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
package lexer

import (
	"testing"

	"github.com/latticelang/corelang/pkg/util/assert"
)

func TestCursor_01_PopAdvances(t *testing.T) {
	c := NewCursor([]Token{{Kind: KeyI8}, {Kind: KeyI16}})
	assert.Equal(t, KeyI8, c.Pop().Kind)
	assert.Equal(t, KeyI16, c.Pop().Kind)
	assert.Equal(t, NONE, c.Pop().Kind)
}

func TestCursor_02_PeekDoesNotAdvance(t *testing.T) {
	c := NewCursor([]Token{{Kind: KeyI8}})
	assert.Equal(t, KeyI8, c.Peek().Kind)
	assert.Equal(t, KeyI8, c.Peek().Kind)
}

func TestCursor_03_Rewind(t *testing.T) {
	c := NewCursor([]Token{{Kind: KeyI8}, {Kind: KeyI16}})
	c.Pop()
	c.Rewind()
	assert.Equal(t, KeyI8, c.Pop().Kind)
}

func TestCursor_04_MatchNeverAdvances(t *testing.T) {
	c := NewCursor([]Token{{Kind: KeyI8}, {Kind: KeyI16}})
	assert.True(t, c.Match(KeyI8, KeyI16))
	assert.True(t, !c.Match(KeyI16, KeyI8))
	assert.Equal(t, KeyI8, c.Peek().Kind)
}

func TestCursor_05_MatchPrecompileWildcard(t *testing.T) {
	c := NewCursor([]Token{{Kind: KeyI8}, {Kind: KeyI16}})
	assert.True(t, c.Match(Precompile, KeyI16))
	assert.True(t, !c.CanPop(3))
}
