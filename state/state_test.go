// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/multirewards/lvldb"
	"github.com/vechain/multirewards/thor"
)

func TestStorage(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := thor.BytesToAddress([]byte("contract"))
	key := thor.BytesToBytes32([]byte("key"))
	value := thor.BytesToBytes32([]byte("value"))

	got, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, thor.Bytes32{}, got)

	st.SetStorage(addr, key, value)
	got, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	// zero value deletes the slot
	st.SetStorage(addr, key, thor.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	assert.Zero(t, len(raw))
}

func TestCheckpointRevert(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := thor.BytesToAddress([]byte("contract"))
	key := thor.BytesToBytes32([]byte("key"))
	v1 := thor.BytesToBytes32([]byte("v1"))
	v2 := thor.BytesToBytes32([]byte("v2"))

	st.SetStorage(addr, key, v1)

	chk := st.NewCheckpoint()
	st.SetStorage(addr, key, v2)
	got, _ := st.GetStorage(addr, key)
	assert.Equal(t, v2, got)

	st.RevertTo(chk)
	got, _ = st.GetStorage(addr, key)
	assert.Equal(t, v1, got)
}

func TestCommit(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := thor.BytesToAddress([]byte("contract"))
	key := thor.BytesToBytes32([]byte("key"))
	value := thor.BytesToBytes32([]byte("value"))

	st.SetStorage(addr, key, value)
	assert.NoError(t, st.Commit())

	// a fresh state over the same store sees committed values
	st2 := New(db)
	got, err := st2.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)
}

type testRecord struct {
	A uint64
	B uint64
}

func (r *testRecord) Encode() ([]byte, error) {
	if r.A == 0 && r.B == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(r)
}

func (r *testRecord) Decode(data []byte) error {
	if len(data) == 0 {
		*r = testRecord{}
		return nil
	}
	return rlp.DecodeBytes(data, r)
}

func TestStructuredStorage(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := thor.BytesToAddress([]byte("contract"))
	key := thor.BytesToBytes32([]byte("record"))

	assert.NoError(t, st.SetStructuredStorage(addr, key, &testRecord{A: 1, B: 2}))

	var decoded testRecord
	assert.NoError(t, st.GetStructuredStorage(addr, key, &decoded))
	assert.Equal(t, testRecord{A: 1, B: 2}, decoded)

	// zero record elides storage
	assert.NoError(t, st.SetStructuredStorage(addr, key, &testRecord{}))
	raw, err := st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	assert.Zero(t, len(raw))
}
