package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/protochain/foundation/blockchain/database"
	"github.com/ardanlabs/protochain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	url        string
	to         string
	amount     uint64
	previousTx string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWallet()
		if err != nil {
			return err
		}

		tx, err := newTx(w, to, amount, previousTx)
		if err != nil {
			return err
		}

		body, err := send(url, tx)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:3000", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.Flags().StringVarP(&previousTx, "previous-tx", "x", "", "Hash of the transaction holding the output being spent.")
}

// newTx constructs a regular transaction signed by the wallet.
func newTx(w wallet.Wallet, to string, amount uint64, previousTx string) (database.Tx, error) {
	txi := database.TxInput{
		FromAddress: w.PublicKey,
		Amount:      amount,
		PreviousTx:  previousTx,
	}
	if err := txi.Sign(w.PrivateKey()); err != nil {
		return database.Tx{}, err
	}

	return database.NewRegularTx(to, txi), nil
}

// send submits the transaction to the node and returns the response body.
func send(url string, tx database.Tx) (string, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return "", err
	}

	resp, err := http.Post(fmt.Sprintf("%s/transactions", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("node rejected transaction: %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	return string(bytes.TrimSpace(body)), nil
}
