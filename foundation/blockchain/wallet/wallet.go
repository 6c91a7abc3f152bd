// Package wallet maintains the key pair used to sign transaction inputs and
// the address derived from it.
package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/protochain/foundation/blockchain/signature"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
)

// keyHexLength is the length of a private key in hex form.
const keyHexLength = 64

// Wallet holds a secp256k1 key pair and the public address of that pair.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	PublicKey  string
}

// New constructs a wallet the way most callers want one. An empty key
// generates a new key pair, a 64 character key is treated as a hex private
// key and anything else as a WIF string. Malformed input produces a wallet
// with no key material, any signature it produces will fail verification.
func New(key string) Wallet {
	var w Wallet
	var err error

	switch {
	case key == "":
		w, err = Generate()
	case len(key) == keyHexLength:
		w, err = FromPrivateKey(key)
	default:
		w, err = FromWIF(key)
	}

	if err != nil {
		return Wallet{}
	}

	return w
}

// Generate constructs a wallet with a brand new key pair.
func Generate() (Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("generating key: %w", err)
	}

	return fromECDSA(privateKey), nil
}

// FromPrivateKey reconstructs the wallet from a hex encoded private key.
func FromPrivateKey(keyHex string) (Wallet, error) {
	privateKey, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return Wallet{}, fmt.Errorf("decoding private key: %w", err)
	}

	return fromECDSA(privateKey), nil
}

// FromWIF reconstructs the wallet from a wallet import format string.
func FromWIF(encoded string) (Wallet, error) {
	wif, err := btcutil.DecodeWIF(encoded)
	if err != nil {
		return Wallet{}, fmt.Errorf("decoding wif: %w", err)
	}

	privateKey, err := crypto.ToECDSA(wif.PrivKey.Serialize())
	if err != nil {
		return Wallet{}, fmt.Errorf("converting wif key: %w", err)
	}

	return fromECDSA(privateKey), nil
}

// Load reads a private key file written by Save.
func Load(path string) (Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return Wallet{}, fmt.Errorf("loading private key: %w", err)
	}

	return fromECDSA(privateKey), nil
}

// Save writes the private key to the specified file.
func (w Wallet) Save(path string) error {
	if w.privateKey == nil {
		return errors.New("wallet has no private key")
	}

	return crypto.SaveECDSA(path, w.privateKey)
}

// PrivateKey returns the private key used for signing. The key is nil for
// a wallet constructed from malformed input.
func (w Wallet) PrivateKey() *ecdsa.PrivateKey {
	return w.privateKey
}

// PrivateKeyHex returns the hex form of the private key.
func (w Wallet) PrivateKeyHex() string {
	if w.privateKey == nil {
		return ""
	}

	return hex.EncodeToString(crypto.FromECDSA(w.privateKey))
}

// WIF returns the private key in the mainnet compressed wallet import format.
func (w Wallet) WIF() (string, error) {
	if w.privateKey == nil {
		return "", errors.New("wallet has no private key")
	}

	pk, _ := btcec.PrivKeyFromBytes(crypto.FromECDSA(w.privateKey))

	wif, err := btcutil.NewWIF(pk, &chaincfg.MainNetParams, true)
	if err != nil {
		return "", fmt.Errorf("encoding wif: %w", err)
	}

	return wif.String(), nil
}

// =============================================================================

func fromECDSA(privateKey *ecdsa.PrivateKey) Wallet {
	return Wallet{
		privateKey: privateKey,
		PublicKey:  signature.PublicKeyToAddress(privateKey.PublicKey),
	}
}
