// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/multirewards/api/events"
	"github.com/vechain/multirewards/eventdb"
	"github.com/vechain/multirewards/rewarder"
	"github.com/vechain/multirewards/thor"
)

func newTestServer(t *testing.T) (*httptest.Server, *eventdb.EventDB) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	router := mux.NewRouter()
	events.New(db, 10).Mount(router, "/events")
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, db
}

func filterEvents(t *testing.T, server *httptest.Server, filter *eventdb.Filter) ([]*eventdb.Record, int) {
	data, err := json.Marshal(filter)
	require.NoError(t, err)
	res, err := http.Post(server.URL+"/events", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, res.StatusCode
	}
	var records []*eventdb.Record
	require.NoError(t, json.NewDecoder(res.Body).Decode(&records))
	return records, res.StatusCode
}

func TestEventsAPI(t *testing.T) {
	server, db := newTestServer(t)

	alice := thor.BytesToAddress([]byte("alice"))
	var records []*eventdb.Record
	for i := 0; i < 20; i++ {
		records = append(records, eventdb.NewRecord(rewarder.DepositedEvent{
			Caller:   alice,
			Receiver: alice,
			Amount:   big.NewInt(int64(i)),
		}, uint64(1000+i)))
	}
	require.NoError(t, db.Insert(records))

	// empty filter is capped at the configured limit
	got, code := filterEvents(t, server, &eventdb.Filter{})
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, got, 10)

	got, code = filterEvents(t, server, &eventdb.Filter{
		Name:    "Deposited",
		Range:   &eventdb.Range{From: 1015, To: 1999},
		Options: &eventdb.Options{Limit: 10},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, got, 5)

	// oversized pages are rejected
	_, code = filterEvents(t, server, &eventdb.Filter{
		Options: &eventdb.Options{Limit: 1000},
	})
	assert.Equal(t, http.StatusForbidden, code)

	// no matches yields an empty array, not null
	got, code = filterEvents(t, server, &eventdb.Filter{Name: "Withdrawn"})
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
