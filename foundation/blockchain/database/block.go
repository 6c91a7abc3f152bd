// Package database handles the data model of the blockchain: blocks, the
// transactions they carry and the templates used for mining new blocks.
package database

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/protochain/foundation/blockchain/merkle"
	"github.com/ardanlabs/protochain/foundation/blockchain/signature"
	"github.com/ardanlabs/protochain/foundation/blockchain/validation"
)

// BlockInfo is the template the chain hands out for mining the next block.
type BlockInfo struct {
	Index         int64  `json:"index"`
	PreviousHash  string `json:"previousHash"`
	Difficulty    int    `json:"difficulty"`
	MaxDifficulty int    `json:"maxDifficulty"`
	FeePerTx      uint64 `json:"feePerTx"`
	Transactions  []Tx   `json:"transactions"`
}

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Index        int64  `json:"index"`        // Position of the block in the chain.
	PreviousHash string `json:"previousHash"` // Hash of the previous block in the chain.
	Transactions []Tx   `json:"transactions"` // Transactions batched into this block.
	Timestamp    int64  `json:"timestamp"`    // Unix time in milliseconds the block was built.
	Nonce        uint64 `json:"nonce"`        // Value identified to solve the hash solution.
	Miner        string `json:"miner"`        // Address of the account who mined the block.
	Hash         string `json:"hash"`         // Hash solution, empty until mined.
}

// NewBlock constructs an unmined block.
func NewBlock(index int64, previousHash string, txs []Tx) Block {
	if txs == nil {
		txs = []Tx{}
	}

	return Block{
		Index:        index,
		PreviousHash: previousHash,
		Transactions: txs,
		Timestamp:    time.Now().UnixMilli(),
	}
}

// NewBlockFromInfo constructs an unmined block from a mining template.
func NewBlockFromInfo(info BlockInfo) Block {
	txs := make([]Tx, len(info.Transactions))
	copy(txs, info.Transactions)

	return NewBlock(info.Index, info.PreviousHash, txs)
}

// NewBlockForMiner constructs an unmined block from a mining template and
// adds the fee transaction paying the miner. A template that already
// carries a fee transaction is left as is.
func NewBlockForMiner(info BlockInfo, miner string) Block {
	block := NewBlockFromInfo(info)

	if _, exists := block.FeeTx(); exists {
		return block
	}

	amount := info.FeePerTx * uint64(len(info.Transactions))
	if amount == 0 {
		block.Transactions = append(block.Transactions, NewFeeTx(miner))
		return block
	}

	block.Transactions = append(block.Transactions, NewFeeTx(miner, TxOutput{ToAddress: miner, Amount: amount}))
	return block
}

// Mine performs the proof of work for the block, searching for a nonce that
// produces a hash with difficulty leading zeros. Pointer semantics are being
// used since a nonce is being discovered. The search stops when the context
// is cancelled, leaving the block unmined.
func (b *Block) Mine(ctx context.Context, difficulty int, miner string) error {
	if difficulty > signature.HashLength {
		return fmt.Errorf("difficulty %d is greater than the hash length", difficulty)
	}

	b.Miner = miner
	b.Hash = ""

	// The transactions don't change during the search.
	root := b.transRoot()

	for b.Nonce = 0; ; b.Nonce++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		hash := b.hash(root)
		if isHashSolved(difficulty, hash) {
			b.Hash = hash
			return nil
		}
	}
}

// CalcHash returns the hash of the current block fields.
func (b Block) CalcHash() string {
	return b.hash(b.transRoot())
}

// Validate checks the block can follow the block with the specified hash and
// index at the specified difficulty. The first failing check is reported.
func (b Block) Validate(previousHash string, previousIndex int64, difficulty int) validation.Validation {
	if b.Index < 0 || b.Index != previousIndex+1 {
		return validation.Fail("Invalid index")
	}

	if b.PreviousHash != previousHash {
		return validation.Fail("Invalid previous hash.")
	}

	var fees int
	for _, tx := range b.Transactions {
		if tx.Type == TxTypeFee {
			fees++
		}
	}
	if fees > 1 {
		return validation.Fail("Invalid transactions")
	}

	for _, tx := range b.Transactions {
		if v := tx.Validate(); !v.Success {
			return v
		}
	}

	if b.Timestamp <= 0 {
		return validation.Fail("Invalid timestamp")
	}

	if b.Hash == "" {
		return validation.Fail("No mined.")
	}

	if b.Hash != b.CalcHash() {
		return validation.Fail("Invalid hash.")
	}

	if !isHashSolved(difficulty, b.Hash) {
		return validation.Fail("No mined.")
	}

	return validation.New()
}

// FeeTx returns the fee transaction of the block if there is one.
func (b Block) FeeTx() (Tx, bool) {
	for _, tx := range b.Transactions {
		if tx.Type == TxTypeFee {
			return tx, true
		}
	}

	return Tx{}, false
}

// TransRoot returns the merkle root of the block's transactions.
func (b Block) TransRoot() string {
	return b.transRoot()
}

// TxProof returns the merkle proof that the transaction with the specified
// hash is part of this block.
func (b Block) TxProof(hash string) (proof []string, order []int64, err error) {
	tree, err := merkle.NewTree(b.leafs())
	if err != nil {
		return nil, nil, err
	}

	hashes, order, err := tree.Proof(txLeaf(hash))
	if err != nil {
		return nil, nil, err
	}

	proof = make([]string, len(hashes))
	for i, h := range hashes {
		proof[i] = fmt.Sprintf("%#x", h)
	}

	return proof, order, nil
}

// =============================================================================

// blockHeader is the set of fields covered by the block hash.
type blockHeader struct {
	Index        int64  `json:"index"`
	Timestamp    int64  `json:"timestamp"`
	PreviousHash string `json:"previousHash"`
	TransRoot    string `json:"transRoot"`
	Nonce        uint64 `json:"nonce"`
	Miner        string `json:"miner"`
}

func (b Block) hash(transRoot string) string {
	return signature.Hash(blockHeader{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		PreviousHash: b.PreviousHash,
		TransRoot:    transRoot,
		Nonce:        b.Nonce,
		Miner:        b.Miner,
	})
}

func (b Block) transRoot() string {
	tree, err := merkle.NewTree(b.leafs())
	if err != nil {
		return signature.ZeroHash
	}

	return tree.RootHex()
}

func (b Block) leafs() []txLeaf {
	leafs := make([]txLeaf, len(b.Transactions))
	for i, tx := range b.Transactions {
		leafs[i] = txLeaf(tx.Hash)
	}

	return leafs
}

// txLeaf implements the merkle Hashable interface for a transaction hash.
// The hash is treated as opaque text since it is supplied by clients.
type txLeaf string

func (l txLeaf) Hash() ([]byte, error) {
	h := sha256.Sum256([]byte(l))
	return h[:], nil
}

func (l txLeaf) Equals(other txLeaf) bool {
	return l == other
}

// isHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of leading 0's.
func isHashSolved(difficulty int, hash string) bool {
	hash = strings.TrimPrefix(hash, "0x")

	if len(hash) != signature.HashLength || difficulty > len(hash) {
		return false
	}

	if difficulty <= 0 {
		return true
	}

	return strings.Count(hash[:difficulty], "0") == difficulty
}
