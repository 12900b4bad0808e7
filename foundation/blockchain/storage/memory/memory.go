// Package memory implements the ability to read and write the chain to memory
// using a slice.
package memory

import (
	"sync"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// the chain in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.BlockData
}

// New constructs an Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Load returns a copy of the chain held in memory.
func (m *Memory) Load() ([]database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blocks := make([]database.BlockData, len(m.blocks))
	copy(blocks, m.blocks)

	return blocks, nil
}

// Save replaces the chain held in memory.
func (m *Memory) Save(blocks []database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = make([]database.BlockData, len(blocks))
	copy(m.blocks, blocks)

	return nil
}
