// Package miner implements an external miner that pulls block templates
// from a node, performs the proof of work and submits the result.
package miner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/validation"
	"go.uber.org/zap"
)

// ErrNothingToMine is returned when the node has no transactions waiting.
var ErrNothingToMine = errors.New("nothing to mine")

// Miner talks to a node on behalf of the specified miner address.
type Miner struct {
	log     *zap.SugaredLogger
	url     string
	address string
	client  *http.Client
}

// New constructs a miner for the node at the specified url.
func New(log *zap.SugaredLogger, url string, address string) *Miner {
	return &Miner{
		log:     log,
		url:     url,
		address: address,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Run mines blocks until the context is cancelled, polling the node at the
// specified interval when there is nothing to mine.
func (m *Miner) Run(ctx context.Context, interval time.Duration) error {
	for {
		block, err := m.MineOne(ctx)
		switch {
		case err == nil:
			m.log.Infow("mined", "index", block.Index, "hash", block.Hash, "nonce", block.Nonce)
			continue

		case errors.Is(err, ErrNothingToMine):
			m.log.Infow("waiting", "status", "no transactions")

		case ctx.Err() != nil:
			return nil

		default:
			m.log.Errorw("mining", "ERROR", err)
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return nil
		}
	}
}

// MineOne requests the next block template, mines it with a fee transaction
// paying the miner and submits it to the node.
func (m *Miner) MineOne(ctx context.Context) (database.Block, error) {
	info, err := m.NextBlock(ctx)
	if err != nil {
		return database.Block{}, err
	}

	if info == nil {
		return database.Block{}, ErrNothingToMine
	}

	block := database.NewBlockForMiner(*info, m.address)

	m.log.Infow("mining", "index", info.Index, "difficulty", info.Difficulty, "transactions", len(block.Transactions))

	if err := block.Mine(ctx, info.Difficulty, m.address); err != nil {
		return database.Block{}, err
	}

	if err := m.SubmitBlock(ctx, block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// NextBlock returns the template for the next block, nil when the node has
// nothing to mine.
func (m *Miner) NextBlock(ctx context.Context) (*database.BlockInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url+"/blocks/next", nil)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting template: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requesting template: %s", resp.Status)
	}

	var info *database.BlockInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}

	return info, nil
}

// SubmitBlock sends the mined block to the node.
func (m *Miner) SubmitBlock(ctx context.Context, block database.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url+"/blocks", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("submitting block: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return nil

	case http.StatusBadRequest:
		var v validation.Validation
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return fmt.Errorf("decoding rejection: %w", err)
		}
		return fmt.Errorf("block rejected: %s", v.Message)

	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("submitting block: %s: %s", resp.Status, bytes.TrimSpace(body))
	}
}
