// Package genesis maintains access to the genesis file which holds the
// settings the ledger is created with.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ardanlabs/hashchain/foundation/validate"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date        time.Time `json:"date"`
	ChainName   string    `json:"chain_name" validate:"required"` // Informational name of this ledger.
	Difficulty  uint      `json:"difficulty" validate:"lte=64"`   // How difficult it needs to be to solve the work problem.
	MaxAttempts uint64    `json:"max_attempts"`                   // Upper bound on mining attempts, 0 is unbounded.
}

// Default returns the settings used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		ChainName:  "hashchain",
		Difficulty: 0,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. A missing file returns the
// default settings.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if err := validate.Check(genesis); err != nil {
		return Genesis{}, fmt.Errorf("validating genesis: %w", err)
	}

	return genesis, nil
}
