// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/multirewards/kv"
)

func TestMemDB(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	key := []byte("key")
	value := []byte("value")

	_, err = db.Get(key)
	assert.True(t, db.IsNotFound(err))

	assert.NoError(t, db.Put(key, value))
	got, err := db.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	has, err := db.Has(key)
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, db.Delete(key))
	has, err = db.Has(key)
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestBatchAndIterator(t *testing.T) {
	db, err := NewMem()
	assert.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	assert.NoError(t, batch.Put([]byte("a"), []byte("1")))
	assert.NoError(t, batch.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 2, batch.Len())
	assert.NoError(t, batch.Write())

	it := db.NewIterator(kv.Range{})
	defer it.Release()

	n := 0
	for it.Next() {
		n++
	}
	assert.NoError(t, it.Error())
	assert.Equal(t, 2, n)
}
