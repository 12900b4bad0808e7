// Package signature provides helper functions for handling the ledger's
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// DigestLen is the number of hex characters produced by Digest.
const DigestLen = sha256.Size * 2

// ledgerID is stamped into every digest that gets signed. It makes it
// clear that the signature was produced for a block of this ledger.
const ledgerID = "\x19Hashchain Signed Block:\n32"

// =============================================================================

// Digest returns the lowercase hex encoded SHA-256 of the data.
func Digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Sign uses the specified private key to sign the block hash. The signature
// is returned in the 65 byte [R|S|V] format.
func Sign(hash string, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("private key is required")
	}

	sig, err := crypto.Sign(stamp(hash), privateKey)
	if err != nil {
		return nil, err
	}

	// Check the signature before handing it out.
	if !crypto.VerifySignature(crypto.FromECDSAPub(&privateKey.PublicKey), stamp(hash), sig[:crypto.RecoveryIDOffset]) {
		return nil, errors.New("invalid signature")
	}

	return sig, nil
}

// Verify reports whether sig is a valid signature of the block hash under
// the uncompressed public key. Any malformed input results in false.
func Verify(hash string, sig []byte, publicKey []byte) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}

	// The recovery id is part of the stored signature and can only be 0 or 1.
	if sig[crypto.RecoveryIDOffset] > 1 {
		return false
	}

	// The key must be a valid point on the curve.
	if _, err := crypto.UnmarshalPubkey(publicKey); err != nil {
		return false
	}

	return crypto.VerifySignature(publicKey, stamp(hash), sig[:crypto.RecoveryIDOffset])
}

// FromPublicKey returns the uncompressed encoding of the public key.
func FromPublicKey(publicKey *ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(publicKey)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the block hash with
// the ledger stamp embedded into the final hash.
func stamp(hash string) []byte {

	// Hash the block hash into a 32 byte array. This will provide
	// a data length consistency with all data.
	h := crypto.Keccak256([]byte(hash))

	// Hash the stamp and the block hash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256([]byte(ledgerID), h)
}
