package public

import (
	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/validation"
)

// status is the summary of the chain returned by the status endpoint.
type status struct {
	Mempool   int                   `json:"mempool"`
	Blocks    int                   `json:"blocks"`
	IsValid   validation.Validation `json:"isValid"`
	LastBlock database.Block        `json:"lastBlock"`
}

// pending lists the transactions the next block will carry.
type pending struct {
	Next  []database.Tx `json:"next"`
	Total int           `json:"total"`
}

// proof is the merkle proof a transaction was confirmed by a block.
type proof struct {
	BlockIndex int64    `json:"blockIndex"`
	BlockHash  string   `json:"blockHash"`
	TransRoot  string   `json:"transRoot"`
	Proof      []string `json:"proof"`
	Order      []int64  `json:"order"`
}

// =============================================================================

// newBlock is a block submitted by a miner. The hash is required to be
// present, an empty hash is left to block validation.
type newBlock struct {
	Index        int64         `json:"index"`
	PreviousHash string        `json:"previousHash"`
	Transactions []database.Tx `json:"transactions"`
	Timestamp    int64         `json:"timestamp"`
	Nonce        uint64        `json:"nonce"`
	Miner        string        `json:"miner"`
	Hash         *string       `json:"hash" validate:"required"`
}

func (nb newBlock) toBlock() database.Block {
	txs := nb.Transactions
	if txs == nil {
		txs = []database.Tx{}
	}

	return database.Block{
		Index:        nb.Index,
		PreviousHash: nb.PreviousHash,
		Transactions: txs,
		Timestamp:    nb.Timestamp,
		Nonce:        nb.Nonce,
		Miner:        nb.Miner,
		Hash:         *nb.Hash,
	}
}

// newTx is a transaction submitted by a wallet. The hash is required to be
// present, an empty hash is left to transaction validation.
type newTx struct {
	Type      database.TxType     `json:"type"`
	Timestamp int64               `json:"timestamp"`
	To        string              `json:"to"`
	Input     *database.TxInput   `json:"txInput"`
	Outputs   []database.TxOutput `json:"txOutputs"`
	Hash      *string             `json:"hash" validate:"required"`
}

func (nt newTx) toTx() database.Tx {
	return database.Tx{
		Type:      nt.Type,
		Timestamp: nt.Timestamp,
		To:        nt.To,
		Input:     nt.Input,
		Outputs:   nt.Outputs,
		Hash:      *nt.Hash,
	}
}
