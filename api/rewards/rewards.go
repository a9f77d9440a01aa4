// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards exposes the staking engine over REST. Reads serve the
// current committed state; writes execute an operation, commit it and
// persist its events.
package rewards

import (
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/multirewards/api/utils"
	"github.com/vechain/multirewards/eventdb"
	"github.com/vechain/multirewards/rewarder"
	"github.com/vechain/multirewards/rewarder/reverts"
	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
	"github.com/vechain/multirewards/token"
)

type Rewards struct {
	mu        sync.Mutex
	rw        *rewarder.Rewarder
	state     *state.State
	bank      *token.Bank
	db        *eventdb.EventDB
	now       func() uint64
	allowMint bool
}

// New creates the rewards endpoint group. db may be nil to skip event
// persistence. allowMint enables the faucet, for sandbox deployments only.
func New(rw *rewarder.Rewarder, st *state.State, bank *token.Bank, db *eventdb.EventDB, allowMint bool) *Rewards {
	return &Rewards{
		rw:        rw,
		state:     st,
		bank:      bank,
		db:        db,
		now:       func() uint64 { return uint64(time.Now().Unix()) },
		allowMint: allowMint,
	}
}

func (r *Rewards) timestamp(requested uint64) uint64 {
	if requested != 0 {
		return requested
	}
	return r.now()
}

// execute runs one mutating operation under the write lock, commits the
// state and persists the emitted events.
func (r *Rewards) execute(env *rewarder.Environment, op func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := op(); err != nil {
		if reverts.IsRevertErr(err) {
			return utils.Forbidden(err)
		}
		return err
	}
	if err := r.state.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	if r.db != nil {
		records := make([]*eventdb.Record, 0, len(env.Events()))
		for _, ev := range env.Events() {
			records = append(records, eventdb.NewRecord(ev, env.Now()))
		}
		if err := r.db.Insert(records); err != nil {
			return errors.Wrap(err, "record events")
		}
	}
	return nil
}

func (r *Rewards) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	supply, err := r.rw.TotalSupply()
	if err != nil {
		return err
	}
	n, err := r.rw.RewardTokensLength()
	if err != nil {
		return err
	}
	tokens := make([]thor.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		tok, err := r.rw.RewardToken(i)
		if err != nil {
			return err
		}
		tokens = append(tokens, tok)
	}
	return utils.WriteJSON(w, &Summary{
		BaseToken:    r.rw.BaseToken(),
		TotalSupply:  math.HexOrDecimal256(*supply),
		RewardTokens: tokens,
	})
}

func (r *Rewards) tokenState(tok thor.Address, now uint64) (*TokenState, error) {
	listed, err := r.rw.IsRewardToken(tok)
	if err != nil {
		return nil, err
	}
	rs, err := r.rw.RewardStateOf(tok)
	if err != nil {
		return nil, err
	}
	rpt, err := r.rw.RewardPerToken(tok, now)
	if err != nil {
		return nil, err
	}
	forDuration, err := r.rw.GetRewardForDuration(tok)
	if err != nil {
		return nil, err
	}
	return &TokenState{
		Token:             tok,
		Listed:            listed,
		RewardsDuration:   rs.RewardsDuration,
		PeriodFinish:      rs.PeriodFinish,
		RewardRate:        math.HexOrDecimal256(*rs.RewardRate),
		LastUpdateTime:    rs.LastUpdateTime,
		RewardPerToken:    math.HexOrDecimal256(*rpt),
		RewardForDuration: math.HexOrDecimal256(*forDuration),
	}, nil
}

func (r *Rewards) handleGetTokens(w http.ResponseWriter, _ *http.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n, err := r.rw.RewardTokensLength()
	if err != nil {
		return err
	}
	states := make([]*TokenState, 0, n)
	for i := uint64(0); i < n; i++ {
		tok, err := r.rw.RewardToken(i)
		if err != nil {
			return err
		}
		ts, err := r.tokenState(tok, now)
		if err != nil {
			return err
		}
		states = append(states, ts)
	}
	return utils.WriteJSON(w, states)
}

func (r *Rewards) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	tok, err := thor.ParseAddress(mux.Vars(req)["token"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "token"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ts, err := r.tokenState(*tok, r.now())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, ts)
}

func (r *Rewards) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	bal, err := r.rw.BalanceOf(*addr)
	if err != nil {
		return err
	}
	n, err := r.rw.RewardTokensLength()
	if err != nil {
		return err
	}
	earned := make([]EarnedReward, 0, n)
	for i := uint64(0); i < n; i++ {
		tok, err := r.rw.RewardToken(i)
		if err != nil {
			return err
		}
		amount, err := r.rw.Earned(*addr, tok, now)
		if err != nil {
			return err
		}
		earned = append(earned, EarnedReward{Token: tok, Amount: math.HexOrDecimal256(*amount)})
	}
	return utils.WriteJSON(w, &AccountState{
		Address: *addr,
		Balance: math.HexOrDecimal256(*bal),
		Earned:  earned,
	})
}

func (r *Rewards) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var dr DepositRequest
	if err := utils.ParseJSON(req.Body, &dr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receiver := dr.Caller
	if dr.Receiver != nil {
		receiver = *dr.Receiver
	}
	env := rewarder.NewEnvironment(dr.Caller, r.timestamp(dr.Timestamp))
	if err := r.execute(env, func() error {
		return r.rw.Deposit(env, amountOrNil(dr.Amount), receiver)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &TxResponse{Timestamp: env.Now(), Events: toTxEvents(env.Events())})
}

func (r *Rewards) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var wr WithdrawRequest
	if err := utils.ParseJSON(req.Body, &wr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	to := wr.Caller
	if wr.To != nil {
		to = *wr.To
	}
	env := rewarder.NewEnvironment(wr.Caller, r.timestamp(wr.Timestamp))
	if err := r.execute(env, func() error {
		return r.rw.Withdraw(env, amountOrNil(wr.Amount), to)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &TxResponse{Timestamp: env.Now(), Events: toTxEvents(env.Events())})
}

func (r *Rewards) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var cr ClaimRequest
	if err := utils.ParseJSON(req.Body, &cr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	env := rewarder.NewEnvironment(cr.Caller, r.timestamp(cr.Timestamp))
	if err := r.execute(env, func() error {
		return r.rw.GetReward(env)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &TxResponse{Timestamp: env.Now(), Events: toTxEvents(env.Events())})
}

func (r *Rewards) handleWhitelist(w http.ResponseWriter, req *http.Request) error {
	var wr WhitelistRequest
	if err := utils.ParseJSON(req.Body, &wr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	env := rewarder.NewEnvironment(wr.Caller, r.timestamp(wr.Timestamp))
	if err := r.execute(env, func() error {
		return r.rw.UpdateWhitelist(env, wr.Token, wr.Whitelisted)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &TxResponse{Timestamp: env.Now(), Events: toTxEvents(env.Events())})
}

func (r *Rewards) handleNotify(w http.ResponseWriter, req *http.Request) error {
	var nr NotifyRequest
	if err := utils.ParseJSON(req.Body, &nr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	tokens := make([]thor.Address, 0, len(nr.Rewards))
	amounts := make([]*big.Int, 0, len(nr.Rewards))
	for _, f := range nr.Rewards {
		tokens = append(tokens, f.Token)
		amounts = append(amounts, amountOrNil(f.Amount))
	}
	env := rewarder.NewEnvironment(nr.Caller, r.timestamp(nr.Timestamp))
	if err := r.execute(env, func() error {
		return r.rw.NotifyRewardAmount(env, tokens, amounts)
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &TxResponse{Timestamp: env.Now(), Events: toTxEvents(env.Events())})
}

func (r *Rewards) handleFaucet(w http.ResponseWriter, req *http.Request) error {
	if !r.allowMint {
		return utils.Forbidden(errors.New("faucet disabled"))
	}
	var fr FaucetRequest
	if err := utils.ParseJSON(req.Body, &fr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount := amountOrNil(fr.Amount)
	if amount == nil || amount.Sign() <= 0 {
		return utils.BadRequest(errors.New("amount: must be positive"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.bank.Mint(fr.Token, fr.Holder, amount); err != nil {
		return err
	}
	if err := r.state.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	bal, err := r.bank.Balance(fr.Token, fr.Holder)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"balance": math.HexOrDecimal256(*bal)})
}

func (r *Rewards) handleGetHolding(w http.ResponseWriter, req *http.Request) error {
	tok, err := thor.ParseAddress(mux.Vars(req)["token"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "token"))
	}
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	bal, err := r.bank.Balance(*tok, *addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"balance": math.HexOrDecimal256(*bal)})
}

func (r *Rewards) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(r.handleGetSummary))
	sub.Path("/tokens").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(r.handleGetTokens))
	sub.Path("/tokens/{token}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(r.handleGetToken))
	sub.Path("/tokens/{token}/holdings/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(r.handleGetHolding))
	sub.Path("/accounts/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(r.handleGetAccount))
	sub.Path("/deposits").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleDeposit))
	sub.Path("/withdrawals").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleWithdraw))
	sub.Path("/claims").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleClaim))
	sub.Path("/whitelist").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleWhitelist))
	sub.Path("/notifications").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleNotify))
	sub.Path("/faucet").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(r.handleFaucet))
}
