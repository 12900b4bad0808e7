// Package history records text digests to a JSON history file. It has no
// chain semantics, it only shares the ledger's digest.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/hashchain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Entry represents a single recorded digest.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}

// History manages the history file.
type History struct {
	path string
}

// New constructs a history for the specified file.
func New(path string) *History {
	return &History{path: path}
}

// Record computes the digest of the text and appends it to the history.
func (h *History) Record(text string) (Entry, error) {
	entry := Entry{
		ID:        uuid.NewString(),
		Text:      text,
		Hash:      signature.Digest([]byte(text)),
		Timestamp: time.Now().UTC(),
	}

	entries := h.List()
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return Entry{}, err
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return Entry{}, err
	}

	if err := os.WriteFile(h.path, data, 0600); err != nil {
		return Entry{}, err
	}

	return entry, nil
}

// List returns the recorded entries. A missing or corrupt file is an
// empty history.
func (h *History) List() []Entry {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}

	return entries
}
