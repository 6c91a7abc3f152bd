package state

import (
	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/validation"
)

// AddTransaction accepts a transaction for inclusion in a future block.
func (s *State) AddTransaction(tx database.Tx) validation.Validation {
	if v := s.addTransaction(tx); !v.Success {
		s.evHandler("state: AddTransaction: WARNING: tx[%s]: %s", tx, v.Message)
		return v
	}

	s.evHandler("state: AddTransaction: tx[%s] added to mempool", tx)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return validation.New()
}

// =============================================================================

func (s *State) addTransaction(tx database.Tx) validation.Validation {
	if v := tx.Validate(); !v.Success {
		return v
	}

	// Only a miner pays itself, inside the block it mines.
	if tx.Type == database.TxTypeFee {
		return validation.Fail("Fee tx not allowed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mempool.Contains(tx.Hash) || s.db.ContainsTx(tx.Hash) {
		return validation.Fail("Duplicated tx")
	}

	s.mempool.Add(tx)

	return validation.New()
}
