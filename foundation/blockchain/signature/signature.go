// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// HashLength is the number of hexadecimal digits in a hash, not counting
// the 0x prefix.
const HashLength = 64

// =============================================================================

// Hash returns a unique string for the value.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Sign uses the specified private key to sign the data. The signature is
// returned as a hex string of the 65 byte [R|S|V] form.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(sig), nil
}

// Verify reports whether the signature was produced over the value by the
// private key behind the specified address. Any malformed input reports false.
func Verify(value any, address string, sigStr string) bool {
	publicKey, err := hexutil.Decode(address)
	if err != nil {
		return false
	}

	sig, err := hexutil.Decode(sigStr)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false
	}

	data, err := stamp(value)
	if err != nil {
		return false
	}

	// The recovery id is not part of the verification.
	return crypto.VerifySignature(publicKey, data, sig[:crypto.RecoveryIDOffset])
}

// PublicKeyToAddress converts the public key into the address format used
// by the blockchain, the hex form of the compressed public key.
func PublicKeyToAddress(publicKey ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.CompressPubkey(&publicKey))
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the protochain stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {

	// Marshal the data.
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This will provide a data
	// length consistency with all data.
	txHash := crypto.Keccak256(v)

	// This stamp is used so signatures we produce when signing data
	// are always unique to this blockchain.
	stamp := []byte("\x19Protochain Signed Message:\n32")

	// Hash the stamp and txHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256(stamp, txHash), nil
}
