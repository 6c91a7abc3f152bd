// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"sync"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/protochain/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the blockchain.
type Config struct {
	Genesis   genesis.Genesis
	EvHandler EventHandler
}

// State manages the blockchain. A single mutex serializes every change to the
// chain and the mempool.
type State struct {
	mu        sync.RWMutex
	evHandler EventHandler
	nextIndex int64

	genesis genesis.Genesis
	db      *database.Database
	mempool *mempool.Mempool

	Worker Worker
}

// New constructs a new blockchain holding only the genesis block.
func New(cfg Config) *State {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen := cfg.Genesis.WithDefaults()
	first := genesisBlock(gen)

	s := State{
		evHandler: ev,
		nextIndex: 1,
		genesis:   gen,
		db:        database.New(first),
		mempool:   mempool.New(),
	}

	ev("state: New: genesis block[%s]", first.Hash)

	return &s
}

// Shutdown stops the worker if one is running.
func (s *State) Shutdown() {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	if s.Worker != nil {
		s.Worker.Shutdown()
	}
}

// =============================================================================

// genesisBlock builds the first block of the chain. It holds a single
// placeholder fee transaction and is hashed but never mined.
func genesisBlock(g genesis.Genesis) database.Block {
	timestamp := g.Date.UnixMilli()

	tx := database.Tx{
		Type:      database.TxTypeFee,
		Timestamp: timestamp,
		To:        g.Data,
	}
	tx.Hash = tx.CalcHash()

	block := database.Block{
		Index:        0,
		PreviousHash: "",
		Transactions: []database.Tx{tx},
		Timestamp:    timestamp,
	}
	block.Hash = block.CalcHash()

	return block
}
