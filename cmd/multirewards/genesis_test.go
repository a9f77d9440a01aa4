// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/multirewards/lvldb"
	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
	"github.com/vechain/multirewards/token"
)

func TestLoadGenesisDefaults(t *testing.T) {
	gene, err := loadGenesis("")
	require.NoError(t, err)
	engine, err := gene.engineAddress()
	require.NoError(t, err)
	assert.False(t, engine.IsZero())
	baseToken, err := gene.baseTokenAddress()
	require.NoError(t, err)
	assert.False(t, baseToken.IsZero())
}

func TestLoadGenesisFile(t *testing.T) {
	engine := thor.BytesToAddress([]byte("engine"))
	tok := thor.BytesToAddress([]byte("tok"))
	holder := thor.BytesToAddress([]byte("holder"))

	path := filepath.Join(t.TempDir(), "genesis.yaml")
	content := `
engine: ` + engine.String() + `
mints:
  - token: ` + tok.String() + `
    holder: ` + holder.String() + `
    amount: "1000000000000000000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	gene, err := loadGenesis(path)
	require.NoError(t, err)
	got, err := gene.engineAddress()
	require.NoError(t, err)
	assert.Equal(t, engine, got)
	// baseToken falls back to the default
	baseToken, err := gene.baseTokenAddress()
	require.NoError(t, err)
	assert.False(t, baseToken.IsZero())

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)
	bank := token.NewBank(engine, st)
	require.NoError(t, gene.apply(st, bank))

	bal, err := bank.Balance(tok, holder)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18)), bal)
}

func TestLoadGenesisRejectsBadAmount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	content := `
mints:
  - token: ` + thor.BytesToAddress([]byte("tok")).String() + `
    holder: ` + thor.BytesToAddress([]byte("holder")).String() + `
    amount: "not-a-number"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	gene, err := loadGenesis(path)
	require.NoError(t, err)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)
	bank := token.NewBank(thor.BytesToAddress([]byte("engine")), st)
	assert.Error(t, gene.apply(st, bank))
}
