package database

import (
	"errors"
	"fmt"
)

// Reason identifies which integrity check a block failed.
type Reason int

// Set of reasons a chain can fail validation.
const (
	EmptyChain Reason = iota + 1
	HashMismatch
	BrokenLink
	UnsolvedHash
)

// String implements the fmt.Stringer interface.
func (r Reason) String() string {
	switch r {
	case EmptyChain:
		return "empty chain"
	case HashMismatch:
		return "hash mismatch"
	case BrokenLink:
		return "broken link"
	case UnsolvedHash:
		return "unsolved hash"
	}
	return "unknown"
}

// ValidationError reports the first block that failed validation and why.
// Index is the position of the block in the chain.
type ValidationError struct {
	Index  uint64
	Reason Reason
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if ve.Reason == EmptyChain {
		return "chain is empty"
	}
	return fmt.Sprintf("blk[%d]: %s", ve.Index, ve.Reason)
}

// IsValidationError checks if an error of type ValidationError exists.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationError returns a copy of the ValidationError pointer.
func GetValidationError(err error) *ValidationError {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return ve
}

// =============================================================================

// Validate walks the chain in order and checks every block's hash against
// its own content and its link to the previous block. It stops at the first
// block that fails. The genesis block is exempt from the link check.
func Validate(blocks []Block) error {
	if len(blocks) == 0 {
		return &ValidationError{Reason: EmptyChain}
	}

	for i, block := range blocks {
		if block.Hash != block.ComputeHash() {
			return &ValidationError{Index: uint64(i), Reason: HashMismatch}
		}

		if i > 0 && block.PrevHash != blocks[i-1].Hash {
			return &ValidationError{Index: uint64(i), Reason: BrokenLink}
		}
	}

	return nil
}

// ValidateWork checks every block's hash satisfies the difficulty. It is
// only run on explicit request since the difficulty is not recorded on
// the blocks.
func ValidateWork(blocks []Block, difficulty uint) error {
	if len(blocks) == 0 {
		return &ValidationError{Reason: EmptyChain}
	}

	for i, block := range blocks {
		if !isHashSolved(difficulty, block.Hash) {
			return &ValidationError{Index: uint64(i), Reason: UnsolvedHash}
		}
	}

	return nil
}

// =============================================================================

// SignatureStatus classifies the seal on a block.
type SignatureStatus int

// Set of signature classifications.
const (
	Unsigned SignatureStatus = iota
	Valid
	Invalid
)

// String implements the fmt.Stringer interface.
func (s SignatureStatus) String() string {
	switch s {
	case Unsigned:
		return "unsigned"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s SignatureStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SignatureReport is the classification of a single block's seal. Index is
// the position of the block in the chain, the same as ValidationError.
type SignatureReport struct {
	Index  uint64          `json:"index"`
	Status SignatureStatus `json:"status"`
}

// ValidateSignatures classifies the seal of every block in the chain. An
// unsigned block is not a failure and an invalid seal does not stop the walk.
func ValidateSignatures(blocks []Block) []SignatureReport {
	reports := make([]SignatureReport, len(blocks))
	for i, block := range blocks {
		status := Unsigned
		switch {
		case !block.IsSigned():
		case block.VerifySignature():
			status = Valid
		default:
			status = Invalid
		}

		reports[i] = SignatureReport{Index: uint64(i), Status: status}
	}

	return reports
}
