// Package identity generates wallet credentials and signs login challenges.
// Private key material never leaves the process; only addresses and
// signatures are handed to the network layer.
package identity

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet is a freshly generated secp256k1 keypair with its derived address
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// Generate creates a fresh keypair
func Generate() (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to derive public key")
	}

	return &Wallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKey),
	}, nil
}

// FromPrivateKeyHex restores a wallet from a 0x-prefixed private key
func FromPrivateKeyHex(privateKeyHex string) (*Wallet, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKey := privateKey.Public().(*ecdsa.PublicKey)
	return &Wallet{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKey),
	}, nil
}

// Address returns the EIP-55 checksummed hex address
func (w *Wallet) Address() string {
	return w.address.Hex()
}

// PrivateKeyHex returns the 0x-prefixed private key for ledger persistence
func (w *Wallet) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(w.privateKey))
}

// SignMessage signs message with the EIP-191 personal-sign scheme and
// returns the 0x-prefixed 65-byte signature with the legacy V offset
func (w *Wallet) SignMessage(message string) (string, error) {
	hash := personalHash(message)

	signature, err := crypto.Sign(hash.Bytes(), w.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	signature[64] += 27
	return hexutil.Encode(signature), nil
}

// VerifySignature reports whether signature over message recovers address.
// Used to confirm the credential round-trip on records read back out of a
// ledger.
func VerifySignature(address, message, signature string) bool {
	sigBytes, err := hexutil.Decode(signature)
	if err != nil || len(sigBytes) != 65 {
		return false
	}

	// undo the legacy V offset before recovery
	sig := make([]byte, 65)
	copy(sig, sigBytes)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	publicKey, err := crypto.SigToPub(personalHash(message).Bytes(), sig)
	if err != nil {
		return false
	}

	recovered := crypto.PubkeyToAddress(*publicKey)
	return recovered == common.HexToAddress(address)
}

func personalHash(message string) common.Hash {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256Hash([]byte(prefixed))
}
