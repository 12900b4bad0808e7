// Package database handles the construction, sealing and validation of the
// blocks in the ledger and the reading and writing of the chain through a
// pluggable storage.
package database

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
)

// ErrCorruptChain is returned by a storage when the persisted chain
// can't be decoded.
var ErrCorruptChain = errors.New("persisted chain is corrupt")

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the chain. The chain is
// always read and written in its entirety.
type Storage interface {
	Load() ([]BlockData, error)
	Save(blocks []BlockData) error
	Close() error
}

// KeySource interface represents the behavior required to provide the
// keypair used to sign new blocks. A missing key is not an error.
type KeySource interface {
	LoadPrivateKey() (*ecdsa.PrivateKey, bool)
	LoadPublicKey() (*ecdsa.PublicKey, bool)
}

// =============================================================================

// Config represents the values required to construct a database.
type Config struct {
	Storage     Storage
	Keys        KeySource
	MaxAttempts uint64
	EvHandler   EventHandler
}

// Database manages the chain of blocks held by the storage. There is no
// locking, the database assumes a single writer.
type Database struct {
	storage     Storage
	keys        KeySource
	maxAttempts uint64
	evHandler   EventHandler
}

// New constructs a database for use.
func New(cfg Config) (*Database, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	db := Database{
		storage:     cfg.Storage,
		keys:        cfg.Keys,
		maxAttempts: cfg.MaxAttempts,
		evHandler:   safeHandler(cfg.EvHandler),
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Blocks reads the full chain from storage. A missing chain is returned as
// an empty chain. A chain that can't be decoded returns ErrCorruptChain.
func (db *Database) Blocks() ([]Block, error) {
	records, err := db.storage.Load()
	if err != nil {
		return nil, err
	}

	blocks := make([]Block, len(records))
	for i, record := range records {
		block, err := ToBlock(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptChain, err)
		}
		blocks[i] = block
	}

	return blocks, nil
}

// Append builds the next block with the provided data, signs it when a
// keypair is available and rewrites the chain with the new block at the
// tail. A corrupt chain is treated as empty.
func (db *Database) Append(ctx context.Context, data string, difficulty uint) (Block, error) {
	db.evHandler("database: Append: started: difficulty[%d]", difficulty)
	defer db.evHandler("database: Append: completed")

	blocks, err := db.Blocks()
	switch {
	case errors.Is(err, ErrCorruptChain):
		db.evHandler("database: Append: WARNING: %s: starting a new chain", err)
		blocks = nil
	case err != nil:
		return Block{}, fmt.Errorf("loading chain: %w", err)
	}

	var tail *Block
	if len(blocks) > 0 {
		tail = &blocks[len(blocks)-1]
	}

	args := BuildArgs{
		Index:       0,
		Data:        data,
		PrevHash:    GenesisPrevHash,
		Difficulty:  difficulty,
		MaxAttempts: db.maxAttempts,
	}
	if tail != nil {
		args.Index = tail.Index + 1
		args.PrevHash = tail.Hash
	}

	block, err := Build(ctx, args, db.evHandler)
	if err != nil {
		return Block{}, fmt.Errorf("building block: %w", err)
	}

	db.sign(&block)

	records := make([]BlockData, 0, len(blocks)+1)
	for _, b := range blocks {
		records = append(records, NewBlockData(b))
	}
	records = append(records, NewBlockData(block))

	if err := db.storage.Save(records); err != nil {
		return Block{}, fmt.Errorf("saving chain: %w", err)
	}

	db.evHandler("database: Append: blk[%d]: hash[%s]: signed[%t]", block.Index, block.Hash, block.IsSigned())

	return block, nil
}

// sign attaches a seal to the block if a keypair is available. Any failure
// leaves the block unsigned.
func (db *Database) sign(block *Block) {
	if db.keys == nil {
		db.evHandler("database: sign: WARNING: no key source, block unsigned")
		return
	}

	privateKey, okPriv := db.keys.LoadPrivateKey()
	publicKey, okPub := db.keys.LoadPublicKey()
	if !okPriv || !okPub {
		db.evHandler("database: sign: WARNING: no keys found, block unsigned")
		return
	}

	if err := block.Sign(privateKey, publicKey); err != nil {
		db.evHandler("database: sign: WARNING: %s, block unsigned", err)
		return
	}

	db.evHandler("database: sign: blk[%d]: signed", block.Index)
}

// =============================================================================

// safeHandler returns a handler that can always be called.
func safeHandler(evHandler EventHandler) EventHandler {
	if evHandler == nil {
		return func(string, ...any) {}
	}
	return evHandler
}
