// Package leveldb implements the ability to read and write the chain to a
// LevelDB database.
package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// heightKey holds the number of blocks in the chain.
const heightKey = "height_latest"

// LevelDB represents the serialization implementation for reading and storing
// the chain in LevelDB. Every block is stored as JSON under its own key and
// the whole chain is rewritten in a single batch. This implements the
// database.Storage interface.
type LevelDB struct {
	db *leveldb.DB
}

// New opens or creates the LevelDB database at the specified path.
func New(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb: %w", err)
	}

	return &LevelDB{db: db}, nil
}

// NewMemory constructs a LevelDB value backed by memory.
func NewMemory() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb: %w", err)
	}

	return &LevelDB{db: db}, nil
}

// Close releases the database.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// Load reads the entire chain from the database. A database without a
// height is an empty chain.
func (ldb *LevelDB) Load() ([]database.BlockData, error) {
	height, err := ldb.height()
	if err != nil {
		return nil, err
	}

	var blocks []database.BlockData
	for i := uint64(0); i < height; i++ {
		data, err := ldb.db.Get(blockKey(i), nil)
		if err != nil {
			if errors.Is(err, leveldb.ErrNotFound) {
				return nil, fmt.Errorf("%w: blk[%d] missing", database.ErrCorruptChain, i)
			}
			return nil, err
		}

		var blockData database.BlockData
		if err := json.Unmarshal(data, &blockData); err != nil {
			return nil, fmt.Errorf("%w: blk[%d]: %w", database.ErrCorruptChain, i, err)
		}

		blocks = append(blocks, blockData)
	}

	return blocks, nil
}

// Save rewrites the entire chain in one batch. Keys past the end of the new
// chain are removed.
func (ldb *LevelDB) Save(blocks []database.BlockData) error {
	height, err := ldb.height()
	if err != nil && !errors.Is(err, database.ErrCorruptChain) {
		return err
	}

	batch := new(leveldb.Batch)
	for i, block := range blocks {
		data, err := json.Marshal(block)
		if err != nil {
			return err
		}
		batch.Put(blockKey(uint64(i)), data)
	}

	for i := uint64(len(blocks)); i < height; i++ {
		batch.Delete(blockKey(i))
	}

	batch.Put([]byte(heightKey), []byte(strconv.Itoa(len(blocks))))

	return ldb.db.Write(batch, nil)
}

// height returns the number of blocks recorded in the database.
func (ldb *LevelDB) height() (uint64, error) {
	v, err := ldb.db.Get([]byte(heightKey), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	h, err := strconv.ParseUint(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: height: %w", database.ErrCorruptChain, err)
	}

	return h, nil
}

// blockKey forms the key of the specified block.
func blockKey(index uint64) []byte {
	return []byte("block_" + strconv.FormatUint(index, 10))
}
