// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewarder

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/multirewards/lvldb"
	"github.com/vechain/multirewards/rewarder/reverts"
	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
	"github.com/vechain/multirewards/token"
)

var (
	engineAddr = thor.BytesToAddress([]byte("rewarder"))
	stakeToken = thor.BytesToAddress([]byte("stake-token"))
	rewardTokA = thor.BytesToAddress([]byte("reward-token-a"))
	rewardTokB = thor.BytesToAddress([]byte("reward-token-b"))
	rewardTokC = thor.BytesToAddress([]byte("reward-token-c"))

	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
	carol = thor.BytesToAddress([]byte("carol"))
	whale = thor.BytesToAddress([]byte("whale"))
)

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type testRig struct {
	t     *testing.T
	state *state.State
	bank  *token.Bank
	rw    *Rewarder
}

func newTestRig(t *testing.T) *testRig {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)
	bank := token.NewBank(thor.BytesToAddress([]byte("bank")), st)
	return &testRig{
		t:     t,
		state: st,
		bank:  bank,
		rw:    New(engineAddr, st, bank, stakeToken),
	}
}

func (r *testRig) mint(tok, holder thor.Address, amount *big.Int) {
	require.NoError(r.t, r.bank.Mint(tok, holder, amount))
}

func (r *testRig) deposit(caller thor.Address, now uint64, amount *big.Int) *Environment {
	env := NewEnvironment(caller, now)
	require.NoError(r.t, r.rw.Deposit(env, amount, caller))
	return env
}

// whitelist stakes the whale up to the governance threshold if needed, then
// flips the token's whitelist entry at the given time.
func (r *testRig) whitelist(now uint64, tok thor.Address, add bool) {
	bal, err := r.rw.BalanceOf(whale)
	require.NoError(r.t, err)
	if bal.Cmp(WhitelistMinStake) < 0 {
		need := new(big.Int).Sub(WhitelistMinStake, bal)
		r.mint(stakeToken, whale, need)
		r.deposit(whale, now, need)
	}
	env := NewEnvironment(whale, now)
	require.NoError(r.t, r.rw.UpdateWhitelist(env, tok, add))
}

func (r *testRig) fund(now uint64, tok thor.Address, amount *big.Int) {
	r.mint(tok, whale, amount)
	env := NewEnvironment(whale, now)
	require.NoError(r.t, r.rw.NotifyRewardAmount(env, []thor.Address{tok}, []*big.Int{amount}))
}

func (r *testRig) earned(account, tok thor.Address, now uint64) *big.Int {
	earned, err := r.rw.Earned(account, tok, now)
	require.NoError(r.t, err)
	return earned
}

func TestDepositWithdraw(t *testing.T) {
	rig := newTestRig(t)
	rig.mint(stakeToken, alice, e18(100))

	env := NewEnvironment(alice, 1000)
	assert.ErrorIs(t, rig.rw.Deposit(env, big.NewInt(0), alice), ErrInvalidAmount)
	assert.ErrorIs(t, rig.rw.Deposit(env, big.NewInt(-1), alice), ErrInvalidAmount)
	assert.Empty(t, env.Events())

	require.NoError(t, rig.rw.Deposit(env, e18(60), bob))
	require.NoError(t, rig.rw.Deposit(env, e18(40), alice))

	balBob, err := rig.rw.BalanceOf(bob)
	require.NoError(t, err)
	assert.Equal(t, e18(60), balBob)
	balAlice, err := rig.rw.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, e18(40), balAlice)
	supply, err := rig.rw.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, e18(100), supply)

	custody, err := rig.bank.Balance(stakeToken, engineAddr)
	require.NoError(t, err)
	assert.Equal(t, e18(100), custody)

	// principal belongs to the receiver, not the depositor
	env = NewEnvironment(alice, 1000)
	assert.ErrorIs(t, rig.rw.Withdraw(env, e18(60), alice), ErrInsufficientBalance)

	env = NewEnvironment(bob, 1000)
	require.NoError(t, rig.rw.Withdraw(env, e18(60), carol))
	got, err := rig.bank.Balance(stakeToken, carol)
	require.NoError(t, err)
	assert.Equal(t, e18(60), got)
	supply, err = rig.rw.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, e18(40), supply)

	assert.Len(t, env.Events(), 1)
	assert.Equal(t, WithdrawnEvent{Caller: bob, To: carol, Amount: e18(60)}, env.Events()[0])
}

func TestDepositRevertsAtomically(t *testing.T) {
	rig := newTestRig(t)
	rig.mint(stakeToken, alice, e18(1))

	env := NewEnvironment(alice, 1000)
	err := rig.rw.Deposit(env, e18(2), alice)
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.True(t, reverts.IsRevertErr(err))
	assert.Empty(t, env.Events())

	supply, err := rig.rw.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, 0, supply.Sign())
	bal, err := rig.bank.Balance(stakeToken, alice)
	require.NoError(t, err)
	assert.Equal(t, e18(1), bal)
}

func TestWhitelistGovernance(t *testing.T) {
	rig := newTestRig(t)

	// below the threshold
	rig.mint(stakeToken, alice, e18(100))
	rig.deposit(alice, 1000, e18(100))
	env := NewEnvironment(alice, 1000)
	assert.ErrorIs(t, rig.rw.UpdateWhitelist(env, rewardTokA, true), ErrInsufficientBalanceForGovernance)

	rig.whitelist(1000, rewardTokA, true)
	listed, err := rig.rw.IsRewardToken(rewardTokA)
	require.NoError(t, err)
	assert.True(t, listed)
	n, err := rig.rw.RewardTokensLength()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	rs, err := rig.rw.RewardStateOf(rewardTokA)
	require.NoError(t, err)
	assert.Equal(t, thor.DefaultRewardsDuration, rs.RewardsDuration)

	// repeating the same change is a no-op revert
	env = NewEnvironment(whale, 1000)
	assert.ErrorIs(t, rig.rw.UpdateWhitelist(env, rewardTokA, true), ErrNoOpWhitelistChange)
	assert.Empty(t, env.Events())
	env = NewEnvironment(whale, 1000)
	assert.ErrorIs(t, rig.rw.UpdateWhitelist(env, rewardTokB, false), ErrNoOpWhitelistChange)
}

func TestWhitelistRemovalReordersRegistry(t *testing.T) {
	rig := newTestRig(t)
	rig.whitelist(1000, rewardTokA, true)
	rig.whitelist(1000, rewardTokB, true)
	rig.whitelist(1000, rewardTokC, true)

	// removing the head swaps the tail into its place
	rig.whitelist(1000, rewardTokA, false)

	n, err := rig.rw.RewardTokensLength()
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)
	first, err := rig.rw.RewardToken(0)
	require.NoError(t, err)
	assert.Equal(t, rewardTokC, first)
	second, err := rig.rw.RewardToken(1)
	require.NoError(t, err)
	assert.Equal(t, rewardTokB, second)

	listed, err := rig.rw.IsRewardToken(rewardTokA)
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestNotifyRewardAmount(t *testing.T) {
	rig := newTestRig(t)

	rig.mint(rewardTokA, whale, e18(1))
	env := NewEnvironment(whale, 1000)
	err := rig.rw.NotifyRewardAmount(env, []thor.Address{rewardTokA}, []*big.Int{e18(1)})
	assert.ErrorIs(t, err, ErrNotWhitelisted)

	rig.whitelist(1000, rewardTokA, true)

	// 604800e18 over the default 604800s window gives a rate of exactly 1e18/s
	rig.fund(1000, rewardTokA, e18(604800))
	rs, err := rig.rw.RewardStateOf(rewardTokA)
	require.NoError(t, err)
	assert.Equal(t, e18(1), rs.RewardRate)
	assert.Equal(t, uint64(1000+604800), rs.PeriodFinish)
	assert.Equal(t, uint64(1000), rs.LastUpdateTime)

	forDuration, err := rig.rw.GetRewardForDuration(rewardTokA)
	require.NoError(t, err)
	assert.Equal(t, e18(604800), forDuration)

	// funding mid-period folds the leftover emission into a fresh window:
	// rate = (604800e18 + 302400*1e18) / 604800 = 1.5e18/s
	rig.fund(1000+302400, rewardTokA, e18(604800))
	rs, err = rig.rw.RewardStateOf(rewardTokA)
	require.NoError(t, err)
	want := new(big.Int).Div(e18(907200), big.NewInt(604800))
	assert.Equal(t, want, rs.RewardRate)
	assert.Equal(t, uint64(1000+302400+604800), rs.PeriodFinish)

	// zero amounts are skipped without touching the token
	env = NewEnvironment(whale, 1000+302400)
	require.NoError(t, rig.rw.NotifyRewardAmount(env, []thor.Address{rewardTokA}, []*big.Int{big.NewInt(0)}))
	assert.Empty(t, env.Events())

	env = NewEnvironment(whale, 1000+302400)
	err = rig.rw.NotifyRewardAmount(env, []thor.Address{rewardTokA}, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestProportionalAccrual(t *testing.T) {
	rig := newTestRig(t)
	const t0 = uint64(1000)

	// the whale whitelists then exits so only alice and bob stake during
	// the period
	rig.whitelist(t0, rewardTokA, true)
	whaleStake, err := rig.rw.BalanceOf(whale)
	require.NoError(t, err)
	env := NewEnvironment(whale, t0)
	require.NoError(t, rig.rw.Withdraw(env, whaleStake, whale))

	rig.mint(stakeToken, alice, e18(100))
	rig.mint(stakeToken, bob, e18(300))
	rig.deposit(alice, t0, e18(100))
	rig.deposit(bob, t0, e18(300))
	rig.fund(t0, rewardTokA, e18(1000))

	end := t0 + thor.DefaultRewardsDuration
	earnedAlice := rig.earned(alice, rewardTokA, end)
	earnedBob := rig.earned(bob, rewardTokA, end)

	// pro-rata 1:3 exactly, approximately 250 and 750 units overall
	assert.Equal(t, new(big.Int).Mul(earnedAlice, big.NewInt(3)), earnedBob)
	dustA := new(big.Int).Sub(e18(250), earnedAlice)
	assert.True(t, dustA.Sign() >= 0 && dustA.Cmp(e18(1)) < 0, "alice earned %s", earnedAlice)
	dustB := new(big.Int).Sub(e18(750), earnedBob)
	assert.True(t, dustB.Sign() >= 0 && dustB.Cmp(e18(1)) < 0, "bob earned %s", earnedBob)

	total := new(big.Int).Add(earnedAlice, earnedBob)
	assert.True(t, total.Cmp(e18(1000)) <= 0, "accrual exceeds funding")
	dust := new(big.Int).Sub(e18(1000), total)
	assert.True(t, dust.Cmp(big.NewInt(1e12)) < 0, "dust too large: %s", dust)

	// past periodFinish the accumulator is frozen
	assert.Equal(t, earnedAlice, rig.earned(alice, rewardTokA, end+12345))

	last, err := rig.rw.LastTimeRewardApplicable(rewardTokA, end+12345)
	require.NoError(t, err)
	assert.Equal(t, end, last)
}

func TestGetReward(t *testing.T) {
	rig := newTestRig(t)
	const t0 = uint64(1000)

	rig.mint(stakeToken, alice, e18(100))
	rig.deposit(alice, t0, e18(100))
	rig.whitelist(t0, rewardTokA, true)
	rig.whitelist(t0, rewardTokB, true)
	rig.fund(t0, rewardTokA, e18(700))
	// token B stays listed but unfunded; the claim must skip it

	end := t0 + thor.DefaultRewardsDuration
	want := rig.earned(alice, rewardTokA, end)
	require.True(t, want.Sign() > 0)

	env := NewEnvironment(alice, end)
	require.NoError(t, rig.rw.GetReward(env))
	got, err := rig.bank.Balance(rewardTokA, alice)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.Len(t, env.Events(), 1)
	assert.Equal(t, RewardPaidEvent{Account: alice, Token: rewardTokA, Amount: want}, env.Events()[0])

	// settled claims never pay twice
	assert.Equal(t, 0, rig.earned(alice, rewardTokA, end).Sign())
	env = NewEnvironment(alice, end)
	require.NoError(t, rig.rw.GetReward(env))
	assert.Empty(t, env.Events())
	got, err = rig.bank.Balance(rewardTokA, alice)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConservationAcrossStakeChanges(t *testing.T) {
	rig := newTestRig(t)
	const t0 = uint64(1000)
	day := uint64(24 * 3600)

	rig.mint(stakeToken, alice, e18(100))
	rig.mint(stakeToken, bob, e18(300))
	rig.deposit(alice, t0, e18(100))
	rig.deposit(bob, t0, e18(300))
	rig.whitelist(t0, rewardTokA, true)
	rig.fund(t0, rewardTokA, e18(1000))

	// bob withdraws half of his stake two days in; his earlier accrual is
	// settled at the pre-change balance
	env := NewEnvironment(bob, t0+2*day)
	require.NoError(t, rig.rw.Withdraw(env, e18(150), bob))

	// alice doubles down a day later
	rig.mint(stakeToken, alice, e18(100))
	rig.deposit(alice, t0+3*day, e18(100))

	end := t0 + thor.DefaultRewardsDuration
	paid := new(big.Int)
	for _, who := range []thor.Address{alice, bob, whale} {
		env := NewEnvironment(who, end)
		require.NoError(t, rig.rw.GetReward(env))
		bal, err := rig.bank.Balance(rewardTokA, who)
		require.NoError(t, err)
		paid.Add(paid, bal)
	}

	// payouts never exceed funding; the truncation dust stays in custody
	assert.True(t, paid.Cmp(e18(1000)) <= 0)
	custody, err := rig.bank.Balance(rewardTokA, engineAddr)
	require.NoError(t, err)
	assert.Equal(t, e18(1000), new(big.Int).Add(paid, custody))
	dust := new(big.Int).Sub(e18(1000), paid)
	assert.True(t, dust.Cmp(big.NewInt(1e12)) < 0, "dust too large: %s", dust)
}

func TestZeroSupplyEmitsNothing(t *testing.T) {
	rig := newTestRig(t)
	const t0 = uint64(1000)
	day := uint64(24 * 3600)

	rig.whitelist(t0, rewardTokA, true)

	// drain the whale's governance stake so the pool is empty during the
	// first day of the period
	whaleStake, err := rig.rw.BalanceOf(whale)
	require.NoError(t, err)
	env := NewEnvironment(whale, t0)
	require.NoError(t, rig.rw.Withdraw(env, whaleStake, whale))
	rig.fund(t0, rewardTokA, e18(1000))

	rpt, err := rig.rw.RewardPerToken(rewardTokA, t0+day)
	require.NoError(t, err)
	assert.Equal(t, 0, rpt.Sign())

	// the first staker starts accruing from their deposit onward; the
	// emission of the empty interval stays in custody
	rig.mint(stakeToken, alice, e18(100))
	rig.deposit(alice, t0+day, e18(100))

	end := t0 + thor.DefaultRewardsDuration
	earned := rig.earned(alice, rewardTokA, end)

	rs, err := rig.rw.RewardStateOf(rewardTokA)
	require.NoError(t, err)
	expected := new(big.Int).Mul(rs.RewardRate, new(big.Int).SetUint64(thor.DefaultRewardsDuration-day))
	assert.Equal(t, expected, earned)
	assert.True(t, earned.Cmp(e18(1000)) < 0)
}

func TestReentrancyGuard(t *testing.T) {
	rig := newTestRig(t)
	rig.mint(stakeToken, alice, e18(1))

	rig.rw.entered = true
	env := NewEnvironment(alice, 1000)
	assert.ErrorIs(t, rig.rw.Deposit(env, e18(1), alice), ErrReentrancy)
	assert.ErrorIs(t, rig.rw.Withdraw(env, e18(1), alice), ErrReentrancy)
	assert.ErrorIs(t, rig.rw.GetReward(env), ErrReentrancy)

	rig.rw.entered = false
	require.NoError(t, rig.rw.Deposit(env, e18(1), alice))
}
