// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewarder

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/multirewards/solidity"
	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
)

var (
	slotTotalSupply    = nameToSlot("total-supply")
	slotBalances       = nameToSlot("balances")
	slotRewardTokens   = nameToSlot("reward-tokens")
	slotListed         = nameToSlot("reward-token-listed")
	slotRewardStates   = nameToSlot("reward-states")
	slotAccountRewards = nameToSlot("account-rewards")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// storage represents the root storage of the rewarder contract.
type storage struct {
	context        *solidity.Context
	totalSupply    *solidity.Uint256
	balances       *solidity.Mapping[thor.Address, *big.Int]
	rewardTokens   *solidity.Array[thor.Address]
	listed         *solidity.Mapping[thor.Address, bool]
	rewardStates   *solidity.Mapping[thor.Address, *RewardState]
	accountRewards *solidity.Mapping[accountTokenKey, *accountReward]
}

func newStorage(addr thor.Address, state *state.State) *storage {
	context := solidity.NewContext(addr, state)
	return &storage{
		context:        context,
		totalSupply:    solidity.NewUint256(context, slotTotalSupply),
		balances:       solidity.NewMapping[thor.Address, *big.Int](context, slotBalances),
		rewardTokens:   solidity.NewArray[thor.Address](context, slotRewardTokens),
		listed:         solidity.NewMapping[thor.Address, bool](context, slotListed),
		rewardStates:   solidity.NewMapping[thor.Address, *RewardState](context, slotRewardStates),
		accountRewards: solidity.NewMapping[accountTokenKey, *accountReward](context, slotAccountRewards),
	}
}

func (s *storage) GetTotalSupply() (*big.Int, error) {
	supply, err := s.totalSupply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get total supply")
	}
	return supply, nil
}

func (s *storage) GetBalance(addr thor.Address) (*big.Int, error) {
	bal, err := s.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (s *storage) SetBalance(addr thor.Address, bal *big.Int) error {
	if err := s.balances.Set(addr, bal); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

func (s *storage) GetRewardState(token thor.Address) (*RewardState, error) {
	rs, err := s.rewardStates.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward state")
	}
	return rs.normalize(), nil
}

func (s *storage) SetRewardState(token thor.Address, rs *RewardState) error {
	if err := s.rewardStates.Set(token, rs); err != nil {
		return errors.Wrap(err, "failed to set reward state")
	}
	return nil
}

func (s *storage) GetAccountReward(account, token thor.Address) (*accountReward, error) {
	ar, err := s.accountRewards.Get(accountTokenKey{account, token})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account reward")
	}
	return ar.normalize(), nil
}

func (s *storage) SetAccountReward(account, token thor.Address, ar *accountReward) error {
	if err := s.accountRewards.Set(accountTokenKey{account, token}, ar); err != nil {
		return errors.Wrap(err, "failed to set account reward")
	}
	return nil
}

func (s *storage) IsListed(token thor.Address) (bool, error) {
	listed, err := s.listed.Get(token)
	if err != nil {
		return false, errors.Wrap(err, "failed to get whitelist flag")
	}
	return listed, nil
}

// forEachRewardToken walks the registry in its current order.
func (s *storage) forEachRewardToken(cb func(token thor.Address) error) error {
	n, err := s.rewardTokens.Len()
	if err != nil {
		return errors.Wrap(err, "failed to get registry length")
	}
	for i := uint64(0); i < n; i++ {
		token, err := s.rewardTokens.Get(i)
		if err != nil {
			return errors.Wrap(err, "failed to get registry entry")
		}
		if err := cb(token); err != nil {
			return err
		}
	}
	return nil
}

// removeRewardToken locates token and removes it via swap-with-last-and-truncate.
// The caller must have verified the token is listed.
func (s *storage) removeRewardToken(token thor.Address) error {
	n, err := s.rewardTokens.Len()
	if err != nil {
		return errors.Wrap(err, "failed to get registry length")
	}
	for i := uint64(0); i < n; i++ {
		entry, err := s.rewardTokens.Get(i)
		if err != nil {
			return errors.Wrap(err, "failed to get registry entry")
		}
		if entry == token {
			if err := s.rewardTokens.SwapRemove(i); err != nil {
				return errors.Wrap(err, "failed to remove registry entry")
			}
			return nil
		}
	}
	return errors.New("token not found in registry")
}
