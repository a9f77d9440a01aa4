// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/multirewards/stackedmap"
)

func TestStackedMap(t *testing.T) {
	src := map[string]string{"base": "b"}
	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})

	// inherits from src
	v, ok, err := sm.Get("base")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	sm.Push()
	sm.Put("k", "v1")
	v, ok, _ = sm.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	depth := sm.Push()
	sm.Put("k", "v2")
	v, _, _ = sm.Get("k")
	assert.Equal(t, "v2", v)

	// revert top level
	sm.PopTo(depth)
	v, ok, _ = sm.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	sm.Pop()
	_, ok, _ = sm.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, sm.Depth())
}

func TestJournal(t *testing.T) {
	sm := stackedmap.New(func(string) (string, bool, error) {
		return "", false, nil
	})

	sm.Push()
	sm.Put("a", "1")
	sm.Push()
	sm.Put("a", "2")
	sm.Put("b", "3")

	var got []string
	sm.Journal(func(k, v string) bool {
		got = append(got, k+v)
		return true
	})
	assert.Equal(t, []string{"a1", "a2", "b3"}, got)
}
