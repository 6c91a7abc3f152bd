package state

import (
	"github.com/ardanlabs/protochain/foundation/blockchain/database"
)

// TxLocation reports where a transaction was found. Each position is -1
// when the transaction isn't there.
type TxLocation struct {
	MempoolIndex int `json:"mempoolIndex"` // Position in the mempool.
	BlockIndex   int `json:"blockIndex"`   // Position in the list of every confirmed transaction.
}

// =============================================================================

// LatestBlock returns the last block in the chain.
func (s *State) LatestBlock() database.Block {
	return s.db.LatestBlock()
}

// QueryBlockByHash returns the block with the specified hash.
func (s *State) QueryBlockByHash(hash string) (database.Block, bool) {
	return s.db.BlockByHash(hash)
}

// QueryBlockByIndex returns the block at the specified index.
func (s *State) QueryBlockByIndex(index int64) (database.Block, bool) {
	return s.db.BlockByIndex(index)
}

// QueryTransaction looks for the transaction with the specified hash in the
// mempool and in the chain.
func (s *State) QueryTransaction(hash string) TxLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return TxLocation{
		MempoolIndex: s.mempool.Index(hash),
		BlockIndex:   s.db.TxIndex(hash),
	}
}

// QueryTransactionProof returns the block that confirmed the transaction with
// the specified hash along with the merkle proof of its inclusion.
func (s *State) QueryTransactionProof(hash string) (block database.Block, proof []string, order []int64, found bool) {
	block, found = s.db.BlockWithTx(hash)
	if !found {
		return database.Block{}, nil, nil, false
	}

	proof, order, err := block.TxProof(hash)
	if err != nil {
		s.evHandler("state: QueryTransactionProof: ERROR: %s", err)
		return database.Block{}, nil, nil, false
	}

	return block, proof, order, true
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksLength returns the number of blocks in the chain.
func (s *State) QueryBlocksLength() int {
	return s.db.Len()
}
