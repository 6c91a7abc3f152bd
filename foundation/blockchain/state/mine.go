package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are not enough transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// NextBlock returns the template for mining the next block, or nil when
// there is nothing in the mempool to mine.
func (s *State) NextBlock() *database.BlockInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.mempool.Count() == 0 {
		return nil
	}

	return &database.BlockInfo{
		Index:         s.nextIndex,
		PreviousHash:  s.db.LatestBlock().Hash,
		Difficulty:    s.difficultyAt(s.db.Len()),
		MaxDifficulty: s.genesis.MaxDifficulty,
		FeePerTx:      s.feePerTx(),
		Transactions:  s.mempool.PickFront(s.genesis.TxPerBlock),
	}
}

// FeePerTx returns the fee a miner is paid for each transaction it mines.
// One unit is added for every full block of transactions waiting.
func (s *State) FeePerTx() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.feePerTx()
}

// MineNewBlock attempts to create a new block with a proper hash that can become
// the next block in the chain. The proof of work is performed without holding
// the chain lock and is abandoned when the context is cancelled.
func (s *State) MineNewBlock(ctx context.Context, miner string) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	info := s.NextBlock()
	if info == nil {
		return database.Block{}, ErrNoTransactions
	}

	block := database.NewBlockForMiner(*info, miner)

	s.evHandler("state: MineNewBlock: MINING: perform POW: index[%d]: difficulty[%d]: numTrans[%d]", info.Index, info.Difficulty, len(block.Transactions))

	start := time.Now()
	if err := block.Mine(ctx, info.Difficulty, miner); err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: solved: block[%s]: nonce[%d]: took[%s]", block.Hash, block.Nonce, time.Since(start))

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if v := s.addBlock(block); !v.Success {
		return database.Block{}, errors.New(v.Message)
	}

	return block, nil
}

// =============================================================================

func (s *State) feePerTx() uint64 {
	return s.genesis.FeePerTx + uint64(s.mempool.Count()/s.genesis.TxPerBlock)
}
