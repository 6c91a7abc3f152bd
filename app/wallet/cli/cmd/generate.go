package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/protochain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var importWIF string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair, or import one in wallet import format",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&importWIF, "wif", "w", "", "Private key to import in wallet import format.")
}

func generateRun(cmd *cobra.Command, args []string) error {
	path := getPrivateKeyPath()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("key file %q already exists", path)
	}

	var w wallet.Wallet
	var err error

	switch importWIF {
	case "":
		w, err = wallet.Generate()
	default:
		w, err = wallet.FromWIF(importWIF)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(accountPath, 0755); err != nil {
		return errors.New("unable to create the accounts folder")
	}

	if err := w.Save(path); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), w.PublicKey)
	return nil
}
