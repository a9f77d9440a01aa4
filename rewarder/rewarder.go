// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewarder implements the staking multi-token reward distribution
// engine. Accounts stake a base token and accrue proportional shares of any
// number of whitelisted reward-token streams, tracked with cumulative
// time-weighted reward-per-unit-stake accumulators.
package rewarder

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/multirewards/log"
	"github.com/vechain/multirewards/rewarder/reverts"
	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
	"github.com/vechain/multirewards/token"
)

var (
	logger = log.WithContext("pkg", "rewarder")

	// WhitelistMinStake is the stake required to change the reward token whitelist.
	WhitelistMinStake = new(big.Int).Mul(big.NewInt(25_000), big.NewInt(1e18))
)

// Revert errors. Any of these aborts the whole operation: no state change,
// no payout, no event.
var (
	ErrInvalidAmount                    = reverts.New("invalid amount")
	ErrInsufficientBalance              = reverts.New("insufficient balance")
	ErrInsufficientBalanceForGovernance = reverts.New("insufficient balance for governance")
	ErrNoOpWhitelistChange              = reverts.New("whitelist state unchanged")
	ErrNotWhitelisted                   = reverts.New("token not whitelisted")
	ErrTransferFailed                   = reverts.New("token transfer failed")
	ErrReentrancy                       = reverts.New("reentrant call")
)

// Rewarder implements the staking and reward distribution operations.
// All ledger and accumulator state lives under the contract address in the
// given state; there is no mutation path besides the methods below.
type Rewarder struct {
	addr      thor.Address
	state     *state.State
	storage   *storage
	bank      *token.Bank
	baseToken thor.Address
	entered   bool
}

// New create a new instance.
func New(addr thor.Address, st *state.State, bank *token.Bank, baseToken thor.Address) *Rewarder {
	return &Rewarder{
		addr:      addr,
		state:     st,
		storage:   newStorage(addr, st),
		bank:      bank,
		baseToken: baseToken,
	}
}

// Address returns the engine's custody address.
func (r *Rewarder) Address() thor.Address {
	return r.addr
}

// BaseToken returns the staked token address.
func (r *Rewarder) BaseToken() thor.Address {
	return r.baseToken
}

//
// Getters - no state change
//

// TotalSupply returns the aggregate staked principal.
func (r *Rewarder) TotalSupply() (*big.Int, error) {
	return r.storage.GetTotalSupply()
}

// BalanceOf returns the staked principal of an account.
func (r *Rewarder) BalanceOf(account thor.Address) (*big.Int, error) {
	return r.storage.GetBalance(account)
}

// RewardTokensLength returns the number of whitelisted reward tokens.
func (r *Rewarder) RewardTokensLength() (uint64, error) {
	return r.storage.rewardTokens.Len()
}

// RewardToken returns the registry entry at the given index.
// The registry order changes on removals.
func (r *Rewarder) RewardToken(index uint64) (thor.Address, error) {
	return r.storage.rewardTokens.Get(index)
}

// IsRewardToken returns whether the token is currently whitelisted.
func (r *Rewarder) IsRewardToken(tok thor.Address) (bool, error) {
	return r.storage.IsListed(tok)
}

// RewardStateOf returns the funding state of a reward token.
func (r *Rewarder) RewardStateOf(tok thor.Address) (*RewardState, error) {
	return r.storage.GetRewardState(tok)
}

// LastTimeRewardApplicable returns min(now, periodFinish) for the token.
func (r *Rewarder) LastTimeRewardApplicable(tok thor.Address, now uint64) (uint64, error) {
	rs, err := r.storage.GetRewardState(tok)
	if err != nil {
		return 0, err
	}
	return lastApplicableTime(rs, now), nil
}

// RewardPerToken returns the cumulative reward per unit stake of the token,
// scaled by 1e18, advanced to the given time.
func (r *Rewarder) RewardPerToken(tok thor.Address, now uint64) (*big.Int, error) {
	rs, err := r.storage.GetRewardState(tok)
	if err != nil {
		return nil, err
	}
	return r.rewardPerToken(rs, now)
}

// Earned returns the account's claimable reward of the token at the given time.
func (r *Rewarder) Earned(account, tok thor.Address, now uint64) (*big.Int, error) {
	rs, err := r.storage.GetRewardState(tok)
	if err != nil {
		return nil, err
	}
	rpt, err := r.rewardPerToken(rs, now)
	if err != nil {
		return nil, err
	}
	return r.earned(account, tok, rpt)
}

// GetRewardForDuration returns the total emission of a full funding epoch at
// the token's current rate.
func (r *Rewarder) GetRewardForDuration(tok thor.Address) (*big.Int, error) {
	rs, err := r.storage.GetRewardState(tok)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Mul(rs.RewardRate, new(big.Int).SetUint64(rs.RewardsDuration)), nil
}

//
// Setters - state change
//

// Deposit stakes amount of the base token for receiver.
// The base token moves from the caller into the engine's custody.
func (r *Rewarder) Deposit(env *Environment, amount *big.Int, receiver thor.Address) error {
	return r.nonReentrant(env, func() error {
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if err := r.updateReward(receiver, env.Now()); err != nil {
			return err
		}
		if err := r.bank.Transfer(r.baseToken, env.Caller(), r.addr, amount); err != nil {
			return errors.WithMessage(ErrTransferFailed, err.Error())
		}
		if err := r.storage.totalSupply.Add(amount); err != nil {
			return errors.Wrap(err, "failed to grow total supply")
		}
		bal, err := r.storage.GetBalance(receiver)
		if err != nil {
			return err
		}
		if err := r.storage.SetBalance(receiver, new(big.Int).Add(bal, amount)); err != nil {
			return err
		}
		logger.Debug("deposit", "caller", env.Caller(), "receiver", receiver, "amount", amount)
		env.Log(DepositedEvent{Caller: env.Caller(), Receiver: receiver, Amount: amount})
		metricDeposits().Add(1)
		r.gaugeTotalStake()
		return nil
	})
}

// Withdraw unstakes amount of the caller's principal and sends it to the
// given address.
func (r *Rewarder) Withdraw(env *Environment, amount *big.Int, to thor.Address) error {
	return r.nonReentrant(env, func() error {
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		bal, err := r.storage.GetBalance(env.Caller())
		if err != nil {
			return err
		}
		if bal.Cmp(amount) < 0 {
			return ErrInsufficientBalance
		}
		if err := r.updateReward(env.Caller(), env.Now()); err != nil {
			return err
		}
		if err := r.storage.totalSupply.Sub(amount); err != nil {
			return errors.Wrap(err, "failed to shrink total supply")
		}
		if err := r.storage.SetBalance(env.Caller(), new(big.Int).Sub(bal, amount)); err != nil {
			return err
		}
		if err := r.bank.Transfer(r.baseToken, r.addr, to, amount); err != nil {
			return errors.WithMessage(ErrTransferFailed, err.Error())
		}
		logger.Debug("withdraw", "caller", env.Caller(), "to", to, "amount", amount)
		env.Log(WithdrawnEvent{Caller: env.Caller(), To: to, Amount: amount})
		metricWithdrawals().Add(1)
		r.gaugeTotalStake()
		return nil
	})
}

// GetReward pays out every nonzero accrued reward of the caller, one
// independent transfer per token. Tokens with nothing accrued are skipped.
func (r *Rewarder) GetReward(env *Environment) error {
	return r.nonReentrant(env, func() error {
		if err := r.updateReward(env.Caller(), env.Now()); err != nil {
			return err
		}
		return r.storage.forEachRewardToken(func(tok thor.Address) error {
			ar, err := r.storage.GetAccountReward(env.Caller(), tok)
			if err != nil {
				return err
			}
			if ar.Accrued.Sign() == 0 {
				return nil
			}
			accrued := ar.Accrued
			ar.Accrued = &big.Int{}
			if err := r.storage.SetAccountReward(env.Caller(), tok, ar); err != nil {
				return err
			}
			if err := r.bank.Transfer(tok, r.addr, env.Caller(), accrued); err != nil {
				return errors.WithMessage(ErrTransferFailed, err.Error())
			}
			logger.Debug("reward paid", "account", env.Caller(), "token", tok, "amount", accrued)
			env.Log(RewardPaidEvent{Account: env.Caller(), Token: tok, Amount: accrued})
			metricRewardsPaid().AddWithLabel(1, map[string]string{"token": tok.String()})
			return nil
		})
	})
}

// UpdateWhitelist admits or removes a reward token. Any address staking at
// least WhitelistMinStake may call it. Removal swaps the last registry entry
// into the vacated position, so the registry order is not stable.
func (r *Rewarder) UpdateWhitelist(env *Environment, tok thor.Address, add bool) error {
	return r.atomically(env, func() error {
		stake, err := r.storage.GetBalance(env.Caller())
		if err != nil {
			return err
		}
		if stake.Cmp(WhitelistMinStake) < 0 {
			return ErrInsufficientBalanceForGovernance
		}
		listed, err := r.storage.IsListed(tok)
		if err != nil {
			return err
		}
		if listed == add {
			return ErrNoOpWhitelistChange
		}
		// refresh all accumulators before the registry changes
		if err := r.updateReward(thor.Address{}, env.Now()); err != nil {
			return err
		}
		if add {
			if err := r.storage.rewardTokens.Push(tok); err != nil {
				return errors.Wrap(err, "failed to append registry entry")
			}
			rs, err := r.storage.GetRewardState(tok)
			if err != nil {
				return err
			}
			rs.RewardsDuration = thor.DefaultRewardsDuration
			if err := r.storage.SetRewardState(tok, rs); err != nil {
				return err
			}
		} else {
			if err := r.storage.removeRewardToken(tok); err != nil {
				return err
			}
		}
		if err := r.storage.listed.Set(tok, add); err != nil {
			return errors.Wrap(err, "failed to set whitelist flag")
		}
		logger.Info("whitelist updated", "caller", env.Caller(), "token", tok, "whitelisted", add)
		env.Log(WhitelistUpdatedEvent{Caller: env.Caller(), Token: tok, Whitelisted: add})
		if n, err := r.storage.rewardTokens.Len(); err == nil {
			metricRewardTokens().Set(int64(n))
		}
		return nil
	})
}

// NotifyRewardAmount funds reward emission. For each (token, amount) pair
// with a positive amount, the amount is pulled from the caller and the
// token's emission rate is re-based over a fresh full-duration window,
// folding in whatever is left of a still-running period.
func (r *Rewarder) NotifyRewardAmount(env *Environment, tokens []thor.Address, amounts []*big.Int) error {
	return r.atomically(env, func() error {
		if len(tokens) != len(amounts) {
			return ErrInvalidAmount
		}
		// refresh all accumulators with pre-update rates
		if err := r.updateReward(thor.Address{}, env.Now()); err != nil {
			return err
		}
		for i, tok := range tokens {
			amount := amounts[i]
			if amount == nil || amount.Sign() <= 0 {
				continue
			}
			listed, err := r.storage.IsListed(tok)
			if err != nil {
				return err
			}
			if !listed {
				return ErrNotWhitelisted
			}
			if err := r.bank.Transfer(tok, env.Caller(), r.addr, amount); err != nil {
				return errors.WithMessage(ErrTransferFailed, err.Error())
			}
			rs, err := r.storage.GetRewardState(tok)
			if err != nil {
				return err
			}
			duration := new(big.Int).SetUint64(rs.RewardsDuration)
			if env.Now() >= rs.PeriodFinish {
				rs.RewardRate = new(big.Int).Div(amount, duration)
			} else {
				remaining := new(big.Int).SetUint64(rs.PeriodFinish - env.Now())
				leftover := remaining.Mul(remaining, rs.RewardRate)
				rs.RewardRate = new(big.Int).Div(new(big.Int).Add(amount, leftover), duration)
			}
			rs.LastUpdateTime = env.Now()
			rs.PeriodFinish = env.Now() + rs.RewardsDuration
			if err := r.storage.SetRewardState(tok, rs); err != nil {
				return err
			}
			logger.Info("reward funded", "token", tok, "amount", amount, "rate", rs.RewardRate)
			env.Log(RewardAddedEvent{Caller: env.Caller(), Token: tok, Amount: amount})
			metricRewardsFunded().AddWithLabel(1, map[string]string{"token": tok.String()})
		}
		return nil
	})
}

//
// internals
//

func lastApplicableTime(rs *RewardState, now uint64) uint64 {
	if now < rs.PeriodFinish {
		return now
	}
	return rs.PeriodFinish
}

// rewardPerToken advances the stored accumulator to now. With zero stake the
// stored value is returned unchanged: no emission is attributed to nobody.
func (r *Rewarder) rewardPerToken(rs *RewardState, now uint64) (*big.Int, error) {
	supply, err := r.storage.GetTotalSupply()
	if err != nil {
		return nil, err
	}
	if supply.Sign() == 0 {
		return rs.RewardPerTokenStored, nil
	}
	last := lastApplicableTime(rs, now)
	if last <= rs.LastUpdateTime {
		return rs.RewardPerTokenStored, nil
	}
	x := new(big.Int).SetUint64(last - rs.LastUpdateTime)
	x.Mul(x, rs.RewardRate)
	x.Mul(x, thor.RewardScale)
	x.Div(x, supply)
	return x.Add(x, rs.RewardPerTokenStored), nil
}

// earned computes balance*(rewardPerToken-paid)/1e18 + accrued with
// truncating division. Truncation dust stays with the engine; it is never
// paid twice.
func (r *Rewarder) earned(account, tok thor.Address, rewardPerToken *big.Int) (*big.Int, error) {
	bal, err := r.storage.GetBalance(account)
	if err != nil {
		return nil, err
	}
	ar, err := r.storage.GetAccountReward(account, tok)
	if err != nil {
		return nil, err
	}
	x := new(big.Int).Sub(rewardPerToken, ar.RewardPerTokenPaid)
	x.Mul(x, bal)
	x.Div(x, thor.RewardScale)
	return x.Add(x, ar.Accrued), nil
}

// updateReward refreshes every registered token's accumulator and, for a
// real account, freezes its settlement snapshot. Must run before any stake
// change, with the pre-change balance still in place. The zero address marks
// a global refresh without account settlement.
func (r *Rewarder) updateReward(account thor.Address, now uint64) error {
	return r.storage.forEachRewardToken(func(tok thor.Address) error {
		rs, err := r.storage.GetRewardState(tok)
		if err != nil {
			return err
		}
		rpt, err := r.rewardPerToken(rs, now)
		if err != nil {
			return err
		}
		rs.RewardPerTokenStored = rpt
		rs.LastUpdateTime = lastApplicableTime(rs, now)
		if err := r.storage.SetRewardState(tok, rs); err != nil {
			return err
		}
		if account.IsZero() {
			return nil
		}
		ar, err := r.storage.GetAccountReward(account, tok)
		if err != nil {
			return err
		}
		accrued, err := r.earned(account, tok, rpt)
		if err != nil {
			return err
		}
		ar.Accrued = accrued
		ar.RewardPerTokenPaid = rpt
		return r.storage.SetAccountReward(account, tok, ar)
	})
}

// gaugeTotalStake reports the aggregate stake in whole token units, since
// gauges carry int64 and wei amounts overflow it.
func (r *Rewarder) gaugeTotalStake() {
	supply, err := r.storage.GetTotalSupply()
	if err != nil {
		return
	}
	units := new(big.Int).Div(supply, thor.RewardScale)
	if units.IsInt64() {
		metricTotalStake().Set(units.Int64())
	}
}

// atomically runs fn against a state checkpoint. On failure all state
// changes and events of the operation are discarded.
func (r *Rewarder) atomically(env *Environment, fn func() error) error {
	checkpoint := r.state.NewCheckpoint()
	eventMark := len(env.events)
	if err := fn(); err != nil {
		r.state.RevertTo(checkpoint)
		env.events = env.events[:eventMark]
		return err
	}
	return nil
}

// nonReentrant additionally rejects nested calls into the value-moving
// operations for the duration of the whole call tree.
func (r *Rewarder) nonReentrant(env *Environment, fn func() error) error {
	if r.entered {
		return ErrReentrancy
	}
	r.entered = true
	defer func() { r.entered = false }()
	return r.atomically(env, fn)
}
