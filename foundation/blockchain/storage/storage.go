// Package storage selects and opens the storage the chain is kept in.
package storage

import (
	"fmt"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/ardanlabs/hashchain/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/hashchain/foundation/blockchain/storage/leveldb"
	"github.com/ardanlabs/hashchain/foundation/blockchain/storage/memory"
)

// Set of supported storage kinds.
const (
	KindDisk    = "disk"
	KindLevelDB = "leveldb"
	KindMemory  = "memory"
)

// Open constructs the storage of the specified kind at the specified path.
// The path is ignored for memory storage.
func Open(kind string, path string) (database.Storage, error) {
	switch kind {
	case KindDisk:
		return disk.New(path)
	case KindLevelDB:
		return leveldb.New(path)
	case KindMemory:
		return memory.New()
	}

	return nil, fmt.Errorf("unknown storage kind %q", kind)
}
