// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists the engine's operation events into sqlite so
// indexers and the API can query the history without replaying state.
package eventdb

import (
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/vechain/multirewards/rewarder"
	"github.com/vechain/multirewards/thor"
)

const recordTableSchema = `CREATE TABLE IF NOT EXISTS record (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	name TEXT NOT NULL,
	caller BLOB NOT NULL,
	account BLOB NOT NULL,
	token BLOB NOT NULL,
	amount TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS record_name ON record(name);
CREATE INDEX IF NOT EXISTS record_account ON record(account);
CREATE INDEX IF NOT EXISTS record_ts ON record(ts);`

type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Range bounds record timestamps, inclusive.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects records.
type Filter struct {
	Name    string        `json:"name"`
	Account *thor.Address `json:"account"`
	Token   *thor.Address `json:"token"`
	Order   OrderType     `json:"order"`
	Range   *Range        `json:"range"`
	Options *Options      `json:"options"`
}

// Record is one persisted operation event. Account holds the counterparty
// address of the event: the receiver of a deposit, the recipient of a
// withdrawal or the claiming account of a payout.
type Record struct {
	Sequence uint64       `json:"sequence"`
	Time     uint64       `json:"time"`
	Name     string       `json:"name"`
	Caller   thor.Address `json:"caller"`
	Account  thor.Address `json:"account"`
	Token    thor.Address `json:"token"`
	Amount   *big.Int     `json:"amount"`
}

// NewRecord flattens an engine event into a persistable record.
func NewRecord(ev rewarder.Event, ts uint64) *Record {
	rec := &Record{Time: ts, Name: ev.Name(), Amount: new(big.Int)}
	switch e := ev.(type) {
	case rewarder.DepositedEvent:
		rec.Caller, rec.Account, rec.Amount = e.Caller, e.Receiver, e.Amount
	case rewarder.WithdrawnEvent:
		rec.Caller, rec.Account, rec.Amount = e.Caller, e.To, e.Amount
	case rewarder.RewardAddedEvent:
		rec.Caller, rec.Token, rec.Amount = e.Caller, e.Token, e.Amount
	case rewarder.RewardPaidEvent:
		rec.Caller, rec.Account, rec.Token, rec.Amount = e.Account, e.Account, e.Token, e.Amount
	case rewarder.WhitelistUpdatedEvent:
		rec.Caller, rec.Token = e.Caller, e.Token
		if e.Whitelisted {
			rec.Amount = big.NewInt(1)
		}
	}
	return rec
}

// EventDB manages the persisted event history.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens an event db at the given path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(recordTableSchema); err != nil {
		db.Close()
		return nil, err
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory backed event db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Insert appends records in one transaction.
func (db *EventDB) Insert(records []*Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, err = tx.Exec(
			"INSERT INTO record(ts, name, caller, account, token, amount) VALUES (?, ?, ?, ?, ?, ?);",
			rec.Time,
			rec.Name,
			rec.Caller.Bytes(),
			rec.Account.Bytes(),
			rec.Token.Bytes(),
			rec.Amount.String(),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Filter returns records matching the filter, all records if nil.
func (db *EventDB) Filter(filter *Filter) ([]*Record, error) {
	if filter == nil {
		return db.query("SELECT * FROM record ORDER BY seq ASC")
	}
	var args []interface{}
	stmt := "SELECT * FROM record WHERE 1"
	if filter.Name != "" {
		args = append(args, filter.Name)
		stmt += " AND name = ? "
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ? "
	}
	if filter.Token != nil {
		args = append(args, filter.Token.Bytes())
		stmt += " AND token = ? "
	}
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND ts >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND ts <= ? "
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(stmt, args...)
}

func (db *EventDB) query(stmt string, args ...interface{}) ([]*Record, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			seq     uint64
			ts      uint64
			name    string
			caller  []byte
			account []byte
			token   []byte
			amount  string
		)
		if err := rows.Scan(&seq, &ts, &name, &caller, &account, &token, &amount); err != nil {
			return nil, err
		}
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			value = new(big.Int)
		}
		records = append(records, &Record{
			Sequence: seq,
			Time:     ts,
			Name:     name,
			Caller:   thor.BytesToAddress(caller),
			Account:  thor.BytesToAddress(account),
			Token:    thor.BytesToAddress(token),
			Amount:   value,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Path returns db's path.
func (db *EventDB) Path() string {
	return db.path
}

// Close closes the underlying sqlite db.
func (db *EventDB) Close() {
	db.db.Close()
}
