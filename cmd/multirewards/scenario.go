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

	"github.com/vechain/multirewards/eventdb"
	"github.com/vechain/multirewards/log"
	"github.com/vechain/multirewards/rewarder"
	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
	"github.com/vechain/multirewards/token"
)

// Scenario is a replayable sequence of engine operations, used to drive a
// sandbox instance into a known state.
type Scenario struct {
	Steps []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one operation. Fields are interpreted per op:
// mint (token, holder, amount), deposit (caller, receiver, amount),
// withdraw (caller, to, amount), whitelist (caller, token, add),
// notify (caller, token, amount), claim (caller).
type ScenarioStep struct {
	Op       string `yaml:"op"`
	Time     uint64 `yaml:"time"`
	Caller   string `yaml:"caller"`
	Token    string `yaml:"token"`
	Holder   string `yaml:"holder"`
	Receiver string `yaml:"receiver"`
	To       string `yaml:"to"`
	Amount   string `yaml:"amount"`
	Add      bool   `yaml:"add"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario file")
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "parse scenario file")
	}
	return &sc, nil
}

func parseAddr(field, s string) (thor.Address, error) {
	if s == "" {
		return thor.Address{}, errors.Errorf("%s: required", field)
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, field)
	}
	return *addr, nil
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("amount: invalid value %q", s)
	}
	return amount, nil
}

// replay runs every step through the engine, committing after each one and
// persisting the emitted events.
func (sc *Scenario) replay(rw *rewarder.Rewarder, st *state.State, bank *token.Bank, db *eventdb.EventDB) error {
	for i, step := range sc.Steps {
		env, err := step.run(rw, bank)
		if err != nil {
			return errors.Wrapf(err, "scenario: steps[%d] (%s)", i, step.Op)
		}
		if err := st.Commit(); err != nil {
			return errors.Wrapf(err, "scenario: steps[%d] commit", i)
		}
		if db != nil && env != nil {
			records := make([]*eventdb.Record, 0, len(env.Events()))
			for _, ev := range env.Events() {
				records = append(records, eventdb.NewRecord(ev, env.Now()))
			}
			if err := db.Insert(records); err != nil {
				return errors.Wrapf(err, "scenario: steps[%d] record events", i)
			}
		}
		log.Info("scenario step applied", "step", i, "op", step.Op, "time", step.Time)
	}
	return nil
}

func (s *ScenarioStep) run(rw *rewarder.Rewarder, bank *token.Bank) (*rewarder.Environment, error) {
	switch s.Op {
	case "mint":
		tok, err := parseAddr("token", s.Token)
		if err != nil {
			return nil, err
		}
		holder, err := parseAddr("holder", s.Holder)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(s.Amount)
		if err != nil {
			return nil, err
		}
		return nil, bank.Mint(tok, holder, amount)
	case "deposit":
		caller, err := parseAddr("caller", s.Caller)
		if err != nil {
			return nil, err
		}
		receiver := caller
		if s.Receiver != "" {
			if receiver, err = parseAddr("receiver", s.Receiver); err != nil {
				return nil, err
			}
		}
		amount, err := parseAmount(s.Amount)
		if err != nil {
			return nil, err
		}
		env := rewarder.NewEnvironment(caller, s.Time)
		return env, rw.Deposit(env, amount, receiver)
	case "withdraw":
		caller, err := parseAddr("caller", s.Caller)
		if err != nil {
			return nil, err
		}
		to := caller
		if s.To != "" {
			if to, err = parseAddr("to", s.To); err != nil {
				return nil, err
			}
		}
		amount, err := parseAmount(s.Amount)
		if err != nil {
			return nil, err
		}
		env := rewarder.NewEnvironment(caller, s.Time)
		return env, rw.Withdraw(env, amount, to)
	case "whitelist":
		caller, err := parseAddr("caller", s.Caller)
		if err != nil {
			return nil, err
		}
		tok, err := parseAddr("token", s.Token)
		if err != nil {
			return nil, err
		}
		env := rewarder.NewEnvironment(caller, s.Time)
		return env, rw.UpdateWhitelist(env, tok, s.Add)
	case "notify":
		caller, err := parseAddr("caller", s.Caller)
		if err != nil {
			return nil, err
		}
		tok, err := parseAddr("token", s.Token)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(s.Amount)
		if err != nil {
			return nil, err
		}
		env := rewarder.NewEnvironment(caller, s.Time)
		return env, rw.NotifyRewardAmount(env, []thor.Address{tok}, []*big.Int{amount})
	case "claim":
		caller, err := parseAddr("caller", s.Caller)
		if err != nil {
			return nil, err
		}
		env := rewarder.NewEnvironment(caller, s.Time)
		return env, rw.GetReward(env)
	default:
		return nil, errors.Errorf("op: unknown operation %q", s.Op)
	}
}
