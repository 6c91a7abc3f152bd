// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/ardanlabs/protochain/business/sys/validate"
	"github.com/ardanlabs/protochain/business/web/errs"
	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/state"
	"github.com/ardanlabs/protochain/foundation/events"
	"github.com/ardanlabs/protochain/foundation/nameservice"
	"github.com/ardanlabs/protochain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// digits matches a block index in the blocks route.
var digits = regexp.MustCompile(`^[0-9]+$`)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Status returns a summary of the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := status{
		Mempool:   h.State.QueryMempoolLength(),
		Blocks:    h.State.QueryBlocksLength(),
		IsValid:   h.State.IsValid(),
		LastBlock: h.State.LatestBlock(),
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// NextBlock returns the template for mining the next block, null when there
// is nothing to mine.
func (h Handlers) NextBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.NextBlock(), http.StatusOK)
}

// QueryBlock returns the block with the specified index or hash.
func (h Handlers) QueryBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	indexOrHash := web.Param(r, "indexOrHash")

	var block database.Block
	var found bool

	switch {
	case digits.MatchString(indexOrHash):
		index, err := strconv.ParseInt(indexOrHash, 10, 64)
		if err == nil {
			block, found = h.State.QueryBlockByIndex(index)
		}

	default:
		block, found = h.State.QueryBlockByHash(indexOrHash)
	}

	if !found {
		return errs.NewTrusted(fmt.Errorf("block %q not found", indexOrHash), http.StatusNotFound)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// AddBlock accepts a block mined elsewhere.
func (h Handlers) AddBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nb newBlock
	if err := web.Decode(r, &nb); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(nb); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	block := nb.toBlock()

	h.Log.Infow("add block", "traceid", v.TraceID, "index", block.Index, "hash", block.Hash, "miner", h.NS.Lookup(block.Miner))

	if val := h.State.AddBlock(block); !val.Success {
		h.Log.Infow("add block", "traceid", v.TraceID, "status", "rejected", "reason", val.Message)
		return web.Respond(ctx, w, val, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, block, http.StatusCreated)
}

// Mempool returns the transactions the next block will carry.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	p := pending{
		Next:  h.State.RetrievePendingTransactions(),
		Total: h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, p, http.StatusOK)
}

// QueryTransaction returns where the transaction with the specified hash is.
func (h Handlers) QueryTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	loc := h.State.QueryTransaction(web.Param(r, "hash"))
	return web.Respond(ctx, w, loc, http.StatusOK)
}

// TransactionProof returns the merkle proof that the transaction with the
// specified hash was confirmed.
func (h Handlers) TransactionProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash := web.Param(r, "hash")

	block, hashes, order, found := h.State.QueryTransactionProof(hash)
	if !found {
		return errs.NewTrusted(fmt.Errorf("transaction %q not confirmed", hash), http.StatusNotFound)
	}

	p := proof{
		BlockIndex: block.Index,
		BlockHash:  block.Hash,
		TransRoot:  block.TransRoot(),
		Proof:      hashes,
		Order:      order,
	}

	return web.Respond(ctx, w, p, http.StatusOK)
}

// AddTransaction accepts a transaction from a wallet for inclusion.
func (h Handlers) AddTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt newTx
	if err := web.Decode(r, &nt); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(nt); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	tx := nt.toTx()

	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", tx, "to", h.NS.Lookup(tx.To))

	if val := h.State.AddTransaction(tx); !val.Success {
		h.Log.Infow("add tran", "traceid", v.TraceID, "status", "rejected", "reason", val.Message)
		return web.Respond(ctx, w, val, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, tx, http.StatusCreated)
}

// Events handles a web socket streaming chain events to a client. The
// blocks query parameter limits the stream to new blocks.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.GetTraceID(ctx)

	var prefix string
	if r.URL.Query().Has("blocks") {
		prefix = events.BlockPrefix
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(id, prefix)
	defer h.Evts.Unsubscribe(id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
