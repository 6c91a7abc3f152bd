// Package genesis maintains access to the genesis configuration of the chain.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file. It carries the values that shape the
// chain for its whole lifetime.
type Genesis struct {
	Date             time.Time `json:"date"`              // Timestamp of the genesis block.
	Data             string    `json:"data"`              // Recipient of the genesis placeholder transaction.
	TxPerBlock       int       `json:"tx_per_block"`      // The maximum number of mempool transactions in a block.
	MinDifficulty    int       `json:"min_difficulty"`    // Difficulty of the first blocks after genesis.
	MaxDifficulty    int       `json:"max_difficulty"`    // Difficulty never grows past this.
	DifficultyFactor int       `json:"difficulty_factor"` // Number of blocks per difficulty step, 0 keeps it constant.
	FeePerTx         uint64    `json:"fee_per_tx"`        // Base fee paid to the miner for each transaction.
}

// Default returns the genesis values used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:             time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		Data:             "Genesis Block",
		TxPerBlock:       2,
		MinDifficulty:    1,
		MaxDifficulty:    62,
		DifficultyFactor: 5,
		FeePerTx:         1,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Values missing from the file
// are taken from the defaults.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis: %w", err)
	}

	// Decode on top of the defaults so a partial file is enough, then fix
	// anything the file explicitly zeroed that the chain can't run with.
	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	return genesis.WithDefaults(), nil
}

// WithDefaults returns a copy with the values the chain can't run with
// replaced.
func (g Genesis) WithDefaults() Genesis {
	def := Default()

	if g.Date.IsZero() {
		g.Date = def.Date
	}
	if g.Data == "" {
		g.Data = def.Data
	}
	if g.TxPerBlock <= 0 {
		g.TxPerBlock = def.TxPerBlock
	}
	if g.MaxDifficulty <= 0 {
		g.MaxDifficulty = def.MaxDifficulty
	}
	if g.MinDifficulty < 0 {
		g.MinDifficulty = 0
	}
	if g.MinDifficulty > g.MaxDifficulty {
		g.MinDifficulty = g.MaxDifficulty
	}
	if g.DifficultyFactor < 0 {
		g.DifficultyFactor = 0
	}

	return g
}
