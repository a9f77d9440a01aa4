// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
	"github.com/vechain/multirewards/token"
)

// Genesis describes the initial token universe of a fresh instance.
type Genesis struct {
	Engine    string `yaml:"engine"`
	BaseToken string `yaml:"baseToken"`
	Mints     []struct {
		Token  string `yaml:"token"`
		Holder string `yaml:"holder"`
		Amount string `yaml:"amount"`
	} `yaml:"mints"`
}

func defaultGenesis() *Genesis {
	return &Genesis{
		Engine:    thor.BytesToAddress([]byte("multirewards")).String(),
		BaseToken: thor.BytesToAddress([]byte("base-token")).String(),
	}
}

func loadGenesis(path string) (*Genesis, error) {
	if path == "" {
		return defaultGenesis(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var gene Genesis
	if err := yaml.Unmarshal(data, &gene); err != nil {
		return nil, errors.Wrap(err, "parse genesis file")
	}
	if gene.Engine == "" {
		gene.Engine = defaultGenesis().Engine
	}
	if gene.BaseToken == "" {
		gene.BaseToken = defaultGenesis().BaseToken
	}
	return &gene, nil
}

func (g *Genesis) engineAddress() (thor.Address, error) {
	addr, err := thor.ParseAddress(g.Engine)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "genesis: engine")
	}
	return *addr, nil
}

func (g *Genesis) baseTokenAddress() (thor.Address, error) {
	addr, err := thor.ParseAddress(g.BaseToken)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "genesis: baseToken")
	}
	return *addr, nil
}

// apply mints the configured balances. Mints are cumulative, so applying a
// genesis twice on a persisted database would double balances; the caller
// guards against that.
func (g *Genesis) apply(st *state.State, bank *token.Bank) error {
	for i, m := range g.Mints {
		tok, err := thor.ParseAddress(m.Token)
		if err != nil {
			return errors.Wrapf(err, "genesis: mints[%d].token", i)
		}
		holder, err := thor.ParseAddress(m.Holder)
		if err != nil {
			return errors.Wrapf(err, "genesis: mints[%d].holder", i)
		}
		amount, ok := new(big.Int).SetString(m.Amount, 10)
		if !ok || amount.Sign() < 0 {
			return errors.Errorf("genesis: mints[%d].amount: invalid value %q", i, m.Amount)
		}
		if err := bank.Mint(*tok, *holder, amount); err != nil {
			return errors.Wrapf(err, "genesis: mints[%d]", i)
		}
	}
	return st.Commit()
}
