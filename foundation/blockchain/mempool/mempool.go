// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
)

// Mempool represents the ordered set of submitted transactions waiting to
// be mined. Transactions are picked in the order they were added.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the back of the pool and returns the new
// number of transactions.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Index returns the position of the transaction with the specified hash,
// or -1 if it is not in the pool.
func (mp *Mempool) Index(hash string) int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	for i, tx := range mp.pool {
		if tx.Hash == hash {
			return i
		}
	}

	return -1
}

// Contains reports whether a transaction with the specified hash is in
// the pool.
func (mp *Mempool) Contains(hash string) bool {
	return mp.Index(hash) != -1
}

// Delete removes the transactions with the specified hashes from the pool
// and returns the number removed.
func (mp *Mempool) Delete(hashes ...string) int {
	remove := make(map[string]struct{}, len(hashes))
	for _, hash := range hashes {
		remove[hash] = struct{}{}
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	pool := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		if _, exists := remove[tx.Hash]; exists {
			continue
		}
		pool = append(pool, tx)
	}

	deleted := len(mp.pool) - len(pool)
	mp.pool = pool

	return deleted
}

// PickFront returns a copy of up to howMany transactions from the front of
// the pool. A value of -1 returns all of them.
func (mp *Mempool) PickFront(howMany int) []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if howMany < 0 || howMany > len(mp.pool) {
		howMany = len(mp.pool)
	}

	txs := make([]database.Tx, howMany)
	copy(txs, mp.pool[:howMany])

	return txs
}

// Copy returns a copy of every transaction in the pool.
func (mp *Mempool) Copy() []database.Tx {
	return mp.PickFront(-1)
}
