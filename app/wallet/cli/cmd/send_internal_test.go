package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	w, err := wallet.Generate()
	require.NoError(t, err)

	tx, err := newTx(w, "bob", 10, "0xabc")
	require.NoError(t, err)
	require.True(t, tx.Validate().Success)

	var got database.Tx
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		if got.Input.Amount == 0 {
			rw.WriteHeader(http.StatusBadRequest)
			rw.Write([]byte(`{"success":false,"message":"Invalid amount"}`))
			return
		}

		rw.WriteHeader(http.StatusCreated)
		rw.Write([]byte(`{"hash":"` + got.Hash + `"}`))
	}))
	defer srv.Close()

	body, err := send(srv.URL, tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash, got.Hash)
	assert.JSONEq(t, `{"hash":"`+tx.Hash+`"}`, body)

	bad, err := newTx(w, "bob", 0, "0xabc")
	require.NoError(t, err)

	_, err = send(srv.URL, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid amount")

	_, err = newTx(wallet.New("not a key"), "bob", 10, "0xabc")
	assert.Error(t, err)
}
