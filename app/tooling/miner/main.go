// This program mines blocks for a protochain node over its public API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/protochain/app/tooling/miner/miner"
	"github.com/ardanlabs/protochain/foundation/blockchain/wallet"
	"github.com/ardanlabs/protochain/foundation/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	url      string
	keyPath  string
	interval time.Duration
	once     bool
)

func main() {

	// Construct the application logger.
	log, err := logger.New("MINER")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	rootCmd := &cobra.Command{
		Use:          "miner",
		Short:        "Mine blocks for a protochain node",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), log)
		},
	}

	rootCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:3000", "Url of the node.")
	rootCmd.Flags().StringVarP(&keyPath, "key", "k", "zblock/accounts/miner.ecdsa", "Path to the private key of the miner.")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 5*time.Second, "Time to wait when there is nothing to mine.")
	rootCmd.Flags().BoolVarP(&once, "once", "o", false, "Mine a single block and exit.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Errorw("miner", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.SugaredLogger) error {
	w, err := wallet.Load(keyPath)
	if err != nil {
		return fmt.Errorf("unable to load private key for miner: %w", err)
	}

	log.Infow("startup", "status", "miner started", "node", url, "address", w.PublicKey)
	defer log.Infow("shutdown", "status", "miner stopped")

	m := miner.New(log, url, w.PublicKey)

	if once {
		block, err := m.MineOne(ctx)
		if err != nil {
			return err
		}
		log.Infow("mined", "index", block.Index, "hash", block.Hash)
		return nil
	}

	return m.Run(ctx, interval)
}
