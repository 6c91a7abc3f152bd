package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/protochain/foundation/blockchain/signature"
	"github.com/ardanlabs/protochain/foundation/blockchain/validation"
)

// TxType identifies the two kinds of transactions the chain accepts.
type TxType uint8

// Set of transaction types. The numeric values are part of the wire format.
const (
	TxTypeRegular TxType = 1 // Spends a prior output, carries one input.
	TxTypeFee     TxType = 2 // Pays the miner of the block, carries no input.
)

// String implements the fmt.Stringer interface for logging.
func (t TxType) String() string {
	switch t {
	case TxTypeRegular:
		return "REGULAR"
	case TxTypeFee:
		return "FEE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

// =============================================================================

// TxOutput is an unspent value record created by a transaction.
type TxOutput struct {
	ToAddress string `json:"toAddress"` // Address receiving the value.
	Amount    uint64 `json:"amount"`    // Value being transferred.
	Tx        string `json:"tx"`        // Hash of the transaction that created this output.
}

// Validate checks the output carries value.
func (txo TxOutput) Validate() validation.Validation {
	if txo.Amount == 0 {
		return validation.Fail("Invalid amount")
	}

	return validation.New()
}

// =============================================================================

// TxInput is a claim spending an output of a prior transaction. The
// signature covers the amount and the sender only.
type TxInput struct {
	FromAddress string `json:"fromAddress"` // Public address of the spender.
	Amount      uint64 `json:"amount"`      // Value being spent.
	Signature   string `json:"signature"`   // Signature over the amount and sender.
	PreviousTx  string `json:"previousTx"`  // Hash of the transaction owning the spent output.
}

// NewTxInputFromOutput constructs an unsigned input that spends the
// specified output.
func NewTxInputFromOutput(txo TxOutput) TxInput {
	return TxInput{
		FromAddress: txo.ToAddress,
		Amount:      txo.Amount,
		PreviousTx:  txo.Tx,
	}
}

// Sign uses the specified private key to sign the input. Signing again
// replaces the existing signature.
func (txi *TxInput) Sign(privateKey *ecdsa.PrivateKey) error {
	if privateKey == nil {
		return errors.New("private key is required")
	}

	sig, err := signature.Sign(txi.digest(), privateKey)
	if err != nil {
		return fmt.Errorf("signing input: %w", err)
	}

	txi.Signature = sig
	return nil
}

// Validate checks the input in order, stopping at the first failure.
func (txi TxInput) Validate() validation.Validation {
	if txi.Signature == "" {
		return validation.Fail("Signature is required")
	}

	if txi.Amount == 0 {
		return validation.Fail("Invalid amount")
	}

	if txi.PreviousTx == "" {
		return validation.Fail("Invalid previous TX")
	}

	if !signature.Verify(txi.digest(), txi.FromAddress, txi.Signature) {
		return validation.Fail("Invalid signature")
	}

	return validation.New()
}

// digest returns the data covered by the signature.
func (txi TxInput) digest() any {
	return struct {
		Amount      uint64 `json:"amount"`
		FromAddress string `json:"fromAddress"`
	}{
		Amount:      txi.Amount,
		FromAddress: txi.FromAddress,
	}
}

// =============================================================================

// Tx is a value transfer recorded by the blockchain. A regular transaction
// carries exactly one input, a fee transaction carries none. Outputs are
// optional and are not part of the hash.
type Tx struct {
	Type      TxType     `json:"type"`
	Timestamp int64      `json:"timestamp"` // Unix time in milliseconds.
	To        string     `json:"to"`
	Input     *TxInput   `json:"txInput,omitempty"`
	Outputs   []TxOutput `json:"txOutputs,omitempty"`
	Hash      string     `json:"hash"`
}

// NewRegularTx constructs a transaction spending the specified input.
func NewRegularTx(to string, input TxInput, outputs ...TxOutput) Tx {
	tx := Tx{
		Type:      TxTypeRegular,
		Timestamp: time.Now().UnixMilli(),
		To:        to,
		Input:     &input,
	}
	tx.Hash = tx.CalcHash()
	tx.Outputs = stampOutputs(tx.Hash, outputs)

	return tx
}

// NewFeeTx constructs a fee transaction paying the specified miner.
func NewFeeTx(miner string, outputs ...TxOutput) Tx {
	tx := Tx{
		Type:      TxTypeFee,
		Timestamp: time.Now().UnixMilli(),
		To:        miner,
	}
	tx.Hash = tx.CalcHash()
	tx.Outputs = stampOutputs(tx.Hash, outputs)

	return tx
}

// CalcHash returns the hash of the transaction content.
func (tx Tx) CalcHash() string {
	return signature.Hash(struct {
		Type      TxType   `json:"type"`
		Timestamp int64    `json:"timestamp"`
		To        string   `json:"to"`
		Input     *TxInput `json:"txInput"`
	}{
		Type:      tx.Type,
		Timestamp: tx.Timestamp,
		To:        tx.To,
		Input:     tx.Input,
	})
}

// Validate checks the transaction in order, stopping at the first failure.
func (tx Tx) Validate() validation.Validation {
	if tx.To == "" {
		return validation.Fail("Invalid to")
	}

	switch tx.Type {
	case TxTypeRegular:
		if tx.Input == nil {
			return validation.Fail("Missing tx input")
		}
		if v := tx.Input.Validate(); !v.Success {
			return v
		}

	case TxTypeFee:
		if tx.Input != nil {
			return validation.Fail("Fee tx must not have input")
		}

	default:
		return validation.Fail("Invalid type")
	}

	for _, txo := range tx.Outputs {
		if v := txo.Validate(); !v.Success {
			return v
		}
	}

	if tx.Hash != tx.CalcHash() {
		return validation.Fail("Invalid hash")
	}

	return validation.New()
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s", tx.Type, tx.Hash)
}

// =============================================================================

// stampOutputs records the creating transaction on each output that doesn't
// already name one.
func stampOutputs(hash string, outputs []TxOutput) []TxOutput {
	if len(outputs) == 0 {
		return nil
	}

	out := make([]TxOutput, len(outputs))
	for i, txo := range outputs {
		if txo.Tx == "" {
			txo.Tx = hash
		}
		out[i] = txo
	}

	return out
}
