package database

import (
	"sync"
)

// Database manages the ordered sequence of blocks that make up the chain.
// Blocks are kept in memory only.
type Database struct {
	mu     sync.RWMutex
	blocks []Block
}

// New constructs a database seeded with the specified genesis block.
func New(genesis Block) *Database {
	return &Database{
		blocks: []Block{genesis},
	}
}

// Append adds the block to the end of the chain. The block is not validated.
func (db *Database) Append(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.blocks = append(db.blocks, block)
}

// LatestBlock returns the last block in the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1]
}

// Len returns the number of blocks in the chain.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// Copy returns a copy of the chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)

	return blocks
}

// BlockByHash returns the block with the specified hash.
func (db *Database) BlockByHash(hash string) (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.blocks {
		if block.Hash == hash {
			return block, true
		}
	}

	return Block{}, false
}

// BlockByIndex returns the block at the specified index.
func (db *Database) BlockByIndex(index int64) (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.blocks {
		if block.Index == index {
			return block, true
		}
	}

	return Block{}, false
}

// TxIndex returns the position of the transaction with the specified hash
// in the list of every transaction of the chain, in block order, or -1.
func (db *Database) TxIndex(hash string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var i int
	for _, block := range db.blocks {
		for _, tx := range block.Transactions {
			if tx.Hash == hash {
				return i
			}
			i++
		}
	}

	return -1
}

// ContainsTx reports whether a transaction with the specified hash has been
// confirmed in a block.
func (db *Database) ContainsTx(hash string) bool {
	return db.TxIndex(hash) != -1
}

// BlockWithTx returns the block holding the transaction with the specified hash.
func (db *Database) BlockWithTx(hash string) (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.blocks {
		for _, tx := range block.Transactions {
			if tx.Hash == hash {
				return block, true
			}
		}
	}

	return Block{}, false
}
