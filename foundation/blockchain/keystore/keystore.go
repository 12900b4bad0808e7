// Package keystore generates, persists and loads the keypair used to sign
// blocks. The private key is stored as the raw 32 byte scalar and the public
// key as the 65 byte uncompressed point. Neither file is protected.
package keystore

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
)

// Default file names for the keypair.
const (
	PrivateKeyFile = "private.key"
	PublicKeyFile  = "public.key"
)

// Keypair is a signing key and its verifying key.
type Keypair struct {
	PrivateKey *ecdsa.PrivateKey
	PublicKey  *ecdsa.PublicKey
}

// KeyStore manages the keypair files in a folder.
type KeyStore struct {
	privatePath string
	publicPath  string
}

// New constructs a key store for the keypair files in the specified folder.
func New(folder string) *KeyStore {
	return &KeyStore{
		privatePath: filepath.Join(folder, PrivateKeyFile),
		publicPath:  filepath.Join(folder, PublicKeyFile),
	}
}

// Paths returns the location of the private and public key files.
func (ks *KeyStore) Paths() (privatePath string, publicPath string) {
	return ks.privatePath, ks.publicPath
}

// Generate creates a fresh random keypair and writes it to disk, replacing
// any keypair already there.
func (ks *KeyStore) Generate() (Keypair, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return Keypair{}, fmt.Errorf("generating key: %w", err)
	}

	for _, path := range []string{ks.privatePath, ks.publicPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return Keypair{}, err
		}
	}

	if err := os.WriteFile(ks.privatePath, crypto.FromECDSA(privateKey), 0600); err != nil {
		return Keypair{}, fmt.Errorf("saving private key: %w", err)
	}

	if err := os.WriteFile(ks.publicPath, crypto.FromECDSAPub(&privateKey.PublicKey), 0644); err != nil {
		return Keypair{}, fmt.Errorf("saving public key: %w", err)
	}

	kp := Keypair{
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}

	return kp, nil
}

// LoadPrivateKey reads the private key. A missing or unreadable key
// returns false.
func (ks *KeyStore) LoadPrivateKey() (*ecdsa.PrivateKey, bool) {
	data, err := os.ReadFile(ks.privatePath)
	if err != nil {
		return nil, false
	}

	privateKey, err := crypto.ToECDSA(data)
	if err != nil {
		return nil, false
	}

	return privateKey, true
}

// LoadPublicKey reads the public key. A missing or unreadable key
// returns false.
func (ks *KeyStore) LoadPublicKey() (*ecdsa.PublicKey, bool) {
	data, err := os.ReadFile(ks.publicPath)
	if err != nil {
		return nil, false
	}

	publicKey, err := crypto.UnmarshalPubkey(data)
	if err != nil {
		return nil, false
	}

	return publicKey, true
}

// Load reads both halves of the keypair.
func (ks *KeyStore) Load() (Keypair, bool) {
	privateKey, ok := ks.LoadPrivateKey()
	if !ok {
		return Keypair{}, false
	}

	publicKey, ok := ks.LoadPublicKey()
	if !ok {
		return Keypair{}, false
	}

	return Keypair{PrivateKey: privateKey, PublicKey: publicKey}, true
}
