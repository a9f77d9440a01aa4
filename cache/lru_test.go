// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/multirewards/cache"
)

func TestLRUGetOrLoad(t *testing.T) {
	c, err := cache.NewLRU(4)
	assert.NoError(t, err)

	loads := 0
	loader := func(key interface{}) (interface{}, error) {
		loads++
		return key.(string) + "-v", nil
	}

	v, err := c.GetOrLoad("k", loader)
	assert.NoError(t, err)
	assert.Equal(t, "k-v", v)

	v, err = c.GetOrLoad("k", loader)
	assert.NoError(t, err)
	assert.Equal(t, "k-v", v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("bad", func(interface{}) (interface{}, error) {
		return nil, errors.New("load failed")
	})
	assert.Error(t, err)
}
