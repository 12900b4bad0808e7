package database

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ardanlabs/hashchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Set of errors returned when sealing blocks.
var (
	ErrAlreadySigned = errors.New("block is already signed")
	ErrKeyMismatch   = errors.New("public key does not belong to the private key")
	ErrMalformedSeal = errors.New("signature and public key must both be present or both be absent")
)

// Sign signs the block's hash with the private key and attaches the seal.
// The signature covers the stored hash, not the rest of the block.
func (b *Block) Sign(privateKey *ecdsa.PrivateKey, publicKey *ecdsa.PublicKey) error {
	if b.Seal != nil {
		return ErrAlreadySigned
	}

	if privateKey == nil || publicKey == nil {
		return errors.New("keypair is required")
	}

	if !privateKey.PublicKey.Equal(publicKey) {
		return ErrKeyMismatch
	}

	sig, err := signature.Sign(b.Hash, privateKey)
	if err != nil {
		return err
	}

	b.Seal = &Seal{
		Signature: hexutil.Encode(sig),
		PublicKey: hexutil.Encode(signature.FromPublicKey(publicKey)),
	}

	return nil
}

// VerifySignature reports whether the seal is a valid signature of the
// stored hash under the embedded public key. It does not check that the
// hash matches the block's content, Validate does that.
func (b Block) VerifySignature() bool {
	if b.Seal == nil {
		return false
	}

	sig, err := hexutil.Decode(b.Seal.Signature)
	if err != nil {
		return false
	}

	pub, err := hexutil.Decode(b.Seal.PublicKey)
	if err != nil {
		return false
	}

	return signature.Verify(b.Hash, sig, pub)
}
