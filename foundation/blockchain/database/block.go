package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/hashchain/foundation/blockchain/signature"
)

// GenesisPrevHash is the previous hash recorded on the block at index 0.
const GenesisPrevHash = "GENESIS"

// progressInterval is how often the mining loop reports the number of
// attempts made so far.
const progressInterval = 1_000_000

// Set of errors returned by the block builder.
var (
	ErrDifficultyUnsatisfiable = fmt.Errorf("difficulty exceeds the %d hex characters of a digest", signature.DigestLen)
	ErrMiningExhausted         = errors.New("mining attempts exhausted")
)

// =============================================================================

// Seal is the signature attached to a block along with the public key that
// verifies it. A block without a seal is unsigned. Both values are hex
// encoded with a 0x prefix.
type Seal struct {
	Signature string
	PublicKey string
}

// Block represents a single entry in the ledger. Once built, only the seal
// may be set and it can only be set once.
type Block struct {
	Index     uint64
	Timestamp string
	Data      string
	PrevHash  string
	Nonce     uint64
	Hash      string
	Seal      *Seal
}

// ComputeHash returns the digest of the block's own fields. The nonce is
// always part of the input, it is 0 for blocks that were not mined.
func (b Block) ComputeHash() string {
	record := fmt.Sprintf("%d%s%s%s%d", b.Index, b.Timestamp, b.Data, b.PrevHash, b.Nonce)
	return signature.Digest([]byte(record))
}

// IsSigned reports whether a seal has been attached to the block.
func (b Block) IsSigned() bool {
	return b.Seal != nil
}

// =============================================================================

// BuildArgs provides the values required to build a block.
type BuildArgs struct {
	Index       uint64
	Data        string
	PrevHash    string
	Difficulty  uint   // Number of leading 0's the hash needs. 0 turns mining off.
	MaxAttempts uint64 // Upper bound on mining attempts. 0 means no bound.
}

// Build constructs a new block. When a difficulty is provided the work is
// performed to find a nonce that solves the POW puzzle. The search can be
// cancelled through the context.
func Build(ctx context.Context, args BuildArgs, evHandler EventHandler) (Block, error) {
	ev := safeHandler(evHandler)

	if args.Difficulty > signature.DigestLen {
		return Block{}, fmt.Errorf("difficulty %d: %w", args.Difficulty, ErrDifficultyUnsatisfiable)
	}

	nb := Block{
		Index:     args.Index,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Data:      args.Data,
		PrevHash:  args.PrevHash,
		Nonce:     0, // Will be identified by the POW algorithm.
	}

	if args.Difficulty == 0 {
		nb.Hash = nb.ComputeHash()
		return nb, nil
	}

	if err := nb.performPOW(ctx, args.Difficulty, args.MaxAttempts, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// POW constructs the block that follows the specified previous block. A nil
// previous block means the new block is the genesis block.
func POW(ctx context.Context, difficulty uint, prevBlock *Block, data string, evHandler EventHandler) (Block, error) {
	args := BuildArgs{
		Index:      0,
		Data:       data,
		PrevHash:   GenesisPrevHash,
		Difficulty: difficulty,
	}

	if prevBlock != nil {
		args.Index = prevBlock.Index + 1
		args.PrevHash = prevBlock.Hash
	}

	return Build(ctx, args, evHandler)
}

// performPOW does the work of mining to find a valid hash for the block.
// Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, difficulty uint, maxAttempts uint64, ev EventHandler) error {
	ev("database: performPOW: MINING: started: blk[%d]: difficulty[%d]", b.Index, difficulty)
	defer ev("database: performPOW: MINING: completed: blk[%d]", b.Index)

	var attempts uint64
	for b.Nonce = 0; ; b.Nonce++ {
		attempts++
		if attempts%progressInterval == 0 {
			ev("database: performPOW: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: performPOW: MINING: CANCELLED: attempts[%d]", attempts)
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.ComputeHash()
		if isHashSolved(difficulty, hash) {
			b.Hash = hash
			ev("database: performPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.PrevHash, hash)
			ev("database: performPOW: MINING: attempts[%d]", attempts)
			return nil
		}

		if maxAttempts > 0 && attempts >= maxAttempts {
			ev("database: performPOW: MINING: EXHAUSTED: attempts[%d]", attempts)
			return fmt.Errorf("after %d attempts: %w", attempts, ErrMiningExhausted)
		}
	}
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint, hash string) bool {
	if len(hash) != signature.DigestLen || difficulty > signature.DigestLen {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}

// =============================================================================

// BlockData represents what is written to storage and over the network.
type BlockData struct {
	Index     uint64 `json:"index"`
	Timestamp string `json:"timestamp"`
	Data      string `json:"data"`
	PrevHash  string `json:"prev_hash"`
	Hash      string `json:"hash"`
	Signature string `json:"signature,omitempty"`
	PublicKey string `json:"public_key,omitempty"`
	Nonce     uint64 `json:"nonce"`
}

// NewBlockData constructs the value to serialize to storage.
func NewBlockData(block Block) BlockData {
	blockData := BlockData{
		Index:     block.Index,
		Timestamp: block.Timestamp,
		Data:      block.Data,
		PrevHash:  block.PrevHash,
		Hash:      block.Hash,
		Nonce:     block.Nonce,
	}

	if block.Seal != nil {
		blockData.Signature = block.Seal.Signature
		blockData.PublicKey = block.Seal.PublicKey
	}

	return blockData
}

// ToBlock converts a storage record into a block. A record carrying only
// one half of a seal is rejected.
func ToBlock(blockData BlockData) (Block, error) {
	block := Block{
		Index:     blockData.Index,
		Timestamp: blockData.Timestamp,
		Data:      blockData.Data,
		PrevHash:  blockData.PrevHash,
		Hash:      blockData.Hash,
		Nonce:     blockData.Nonce,
	}

	switch {
	case blockData.Signature == "" && blockData.PublicKey == "":
	case blockData.Signature == "" || blockData.PublicKey == "":
		return Block{}, fmt.Errorf("blk[%d]: %w", blockData.Index, ErrMalformedSeal)
	default:
		block.Seal = &Seal{
			Signature: blockData.Signature,
			PublicKey: blockData.PublicKey,
		}
	}

	return block, nil
}
