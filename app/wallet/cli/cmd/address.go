package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address for the specific wallet",
	RunE:  addressRun,
}

var wifCmd = &cobra.Command{
	Use:   "wif",
	Short: "Print the private key for the specific wallet in wallet import format",
	RunE:  wifRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(wifCmd)
}

func addressRun(cmd *cobra.Command, args []string) error {
	w, err := loadWallet()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), w.PublicKey)
	return nil
}

func wifRun(cmd *cobra.Command, args []string) error {
	w, err := loadWallet()
	if err != nil {
		return err
	}

	wif, err := w.WIF()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), wif)
	return nil
}
