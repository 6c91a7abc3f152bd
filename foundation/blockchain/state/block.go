package state

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/validation"
)

// AddBlock takes a block mined elsewhere, validates it and if that passes,
// adds the block to the chain. Any mining in progress is cancelled since its
// work is now stale.
func (s *State) AddBlock(block database.Block) validation.Validation {
	s.evHandler("state: AddBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.PreviousHash, block.Hash, len(block.Transactions))
	defer s.evHandler("state: AddBlock: completed: newBlk[%s]", block.Hash)

	if v := s.addBlock(block); !v.Success {
		return v
	}

	if s.Worker != nil {
		s.evHandler("state: AddBlock: signal mining to cancel")
		s.Worker.SignalCancelMining()
	}

	return validation.New()
}

// IsValid walks the chain from the newest block down to the first block
// after genesis, validating every block against the one before it.
func (s *State) IsValid() validation.Validation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := s.db.Copy()

	for i := len(blocks) - 1; i > 0; i-- {
		block := blocks[i]
		prev := blocks[i-1]

		if v := block.Validate(prev.Hash, prev.Index, s.difficultyAt(i)); !v.Success {
			return validation.Failf("Invalid block #%d: %s", block.Index, v.Message)
		}
	}

	return validation.New()
}

// Difficulty returns the difficulty the next block must be mined to.
func (s *State) Difficulty() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.difficultyAt(s.db.Len())
}

// =============================================================================

// addBlock validates the block against the latest block and if that passes,
// updates the chain and removes the block's transactions from the mempool.
func (s *State) addBlock(block database.Block) validation.Validation {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.db.LatestBlock()

	s.evHandler("state: addBlock: validate block")

	if v := block.Validate(latest.Hash, latest.Index, s.difficultyAt(s.db.Len())); !v.Success {
		s.evHandler("state: addBlock: WARNING: %s", v.Message)
		return v.Wrap("Invalid block: ")
	}

	seen := make(map[string]bool, len(block.Transactions))
	for _, tx := range block.Transactions {
		if seen[tx.Hash] || s.db.ContainsTx(tx.Hash) {
			s.evHandler("state: addBlock: WARNING: tx[%s] already confirmed", tx)
			return validation.Fail("Invalid block: Duplicated tx")
		}
		seen[tx.Hash] = true
	}

	s.evHandler("state: addBlock: update chain and remove from mempool")

	s.db.Append(block)
	s.nextIndex++

	hashes := make([]string, len(block.Transactions))
	for i, tx := range block.Transactions {
		hashes[i] = tx.Hash
	}
	removed := s.mempool.Delete(hashes...)

	s.evHandler("state: addBlock: removed[%d] from mempool", removed)

	s.blockEvent(block)

	return validation.New()
}

// difficultyAt returns the difficulty a block added at the specified
// position of the chain must be mined to.
func (s *State) difficultyAt(position int) int {
	difficulty := s.genesis.MinDifficulty

	if s.genesis.DifficultyFactor > 0 && position > 1 {
		difficulty += (position - 1) / s.genesis.DifficultyFactor
	}

	if difficulty > s.genesis.MaxDifficulty {
		difficulty = s.genesis.MaxDifficulty
	}

	return difficulty
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, block.Hash, string(blockJSON))
}
