// Package disk implements the ability to read and write the chain to a
// single JSON file on disk.
package disk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// the chain as one JSON document on disk. This implements the database.Storage
// interface.
type Disk struct {
	path string
}

// New constructs a Disk value for use. The directory holding the file is
// created if it doesn't exist.
func New(path string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	return &Disk{path: path}, nil
}

// Close in this implementation has nothing to do since the file is
// opened and closed on every read and write.
func (d *Disk) Close() error {
	return nil
}

// Path returns the location of the chain file.
func (d *Disk) Path() string {
	return d.path
}

// Load reads the entire chain from disk. A missing or empty file is an
// empty chain.
func (d *Disk) Load() ([]database.BlockData, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var blocks []database.BlockData
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("%w: %w", database.ErrCorruptChain, err)
	}

	return blocks, nil
}

// Save rewrites the entire chain on disk.
func (d *Disk) Save(blocks []database.BlockData) error {
	if blocks == nil {
		blocks = []database.BlockData{}
	}

	// Marshal the chain for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temp file first so a failed write leaves the old chain.
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, d.path)
}
