package state

import (
	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveMempool returns a copy of the mempool in the order the
// transactions will be mined.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrievePendingTransactions returns the transactions the next block
// will carry.
func (s *State) RetrievePendingTransactions() []database.Tx {
	return s.mempool.PickFront(s.genesis.TxPerBlock)
}

// RetrieveBlocks returns a copy of the chain.
func (s *State) RetrieveBlocks() []database.Block {
	return s.db.Copy()
}
