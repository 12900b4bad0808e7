package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

// =============================================================================

func Test_BuildSelfConsistent(t *testing.T) {
	type table struct {
		name       string
		index      uint64
		data       string
		prevHash   string
		difficulty uint
	}

	tt := []table{
		{name: "genesis", index: 0, data: "genesis payload", prevHash: database.GenesisPrevHash},
		{name: "empty", index: 1, data: "", prevHash: "abc"},
		{name: "mined", index: 2, data: "mined payload", prevHash: "def", difficulty: 2},
	}

	t.Log("Given the need to build blocks whose hash matches their content.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				args := database.BuildArgs{
					Index:      tst.index,
					Data:       tst.data,
					PrevHash:   tst.prevHash,
					Difficulty: tst.difficulty,
				}

				block, err := database.Build(context.Background(), args, nil)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to build a block: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to build a block.", success, testID)

				if block.Hash != block.ComputeHash() {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, block.ComputeHash())
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, block.Hash)
					t.Fatalf("\t%s\tTest %d:\tShould reproduce the stored hash.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould reproduce the stored hash.", success, testID)

				if block.Index != tst.index || block.Data != tst.data || block.PrevHash != tst.prevHash {
					t.Fatalf("\t%s\tTest %d:\tShould keep the provided fields.", failed, testID)
				}

				if block.IsSigned() {
					t.Fatalf("\t%s\tTest %d:\tShould build an unsigned block.", failed, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Mining(t *testing.T) {
	for _, difficulty := range []uint{1, 2, 3} {
		block, err := database.Build(context.Background(), database.BuildArgs{Data: "work", PrevHash: database.GenesisPrevHash, Difficulty: difficulty}, nil)
		if err != nil {
			t.Fatalf("Should be able to mine at difficulty %d: %s", difficulty, err)
		}

		if !strings.HasPrefix(block.Hash, strings.Repeat("0", int(difficulty))) {
			t.Fatalf("Should get a hash with %d leading zeros, got %s", difficulty, block.Hash)
		}

		if err := database.ValidateWork([]database.Block{block}, difficulty); err != nil {
			t.Fatalf("Should pass the work check: %s", err)
		}
	}
}

func Test_NoMiningSingleAttempt(t *testing.T) {
	var events []string
	ev := func(v string, args ...any) {
		events = append(events, v)
	}

	block, err := database.Build(context.Background(), database.BuildArgs{Data: "no work", PrevHash: database.GenesisPrevHash}, ev)
	if err != nil {
		t.Fatalf("Should be able to build a block: %s", err)
	}

	if block.Nonce != 0 {
		t.Fatalf("Should keep the nonce at 0, got %d.", block.Nonce)
	}

	if len(events) != 0 {
		t.Fatalf("Should not enter the mining loop, got events %v.", events)
	}
}

func Test_MiningBounds(t *testing.T) {
	t.Run("unsatisfiable", func(t *testing.T) {
		_, err := database.Build(context.Background(), database.BuildArgs{Difficulty: 65}, nil)
		if !errors.Is(err, database.ErrDifficultyUnsatisfiable) {
			t.Fatalf("Should reject a difficulty past the digest length, got %v.", err)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		_, err := database.Build(context.Background(), database.BuildArgs{Difficulty: 64, MaxAttempts: 10}, nil)
		if !errors.Is(err, database.ErrMiningExhausted) {
			t.Fatalf("Should stop after the attempt cap, got %v.", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := database.Build(ctx, database.BuildArgs{Difficulty: 64}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Should stop when the context is cancelled, got %v.", err)
		}
	})
}

func Test_POW(t *testing.T) {
	genesis, err := database.POW(context.Background(), 0, nil, "genesis payload", nil)
	if err != nil {
		t.Fatalf("Should be able to build the genesis block: %s", err)
	}

	if genesis.Index != 0 || genesis.PrevHash != database.GenesisPrevHash {
		t.Fatalf("Should build a genesis block, got index %d prev %s.", genesis.Index, genesis.PrevHash)
	}

	next, err := database.POW(context.Background(), 1, &genesis, "second", nil)
	if err != nil {
		t.Fatalf("Should be able to build the next block: %s", err)
	}

	if next.Index != 1 || next.PrevHash != genesis.Hash {
		t.Fatalf("Should link the next block to the genesis block.")
	}

	if err := database.Validate([]database.Block{genesis, next}); err != nil {
		t.Fatalf("Should validate the chain: %s", err)
	}
}

// =============================================================================

func Test_SignVerify(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	block, err := database.Build(context.Background(), database.BuildArgs{Data: "signed", PrevHash: database.GenesisPrevHash}, nil)
	if err != nil {
		t.Fatalf("Should be able to build a block: %s", err)
	}

	if block.VerifySignature() {
		t.Fatalf("Should not verify an unsigned block.")
	}

	if err := block.Sign(pk, &pk.PublicKey); err != nil {
		t.Fatalf("Should be able to sign the block: %s", err)
	}

	if !block.IsSigned() || block.Seal.Signature == "" || block.Seal.PublicKey == "" {
		t.Fatalf("Should attach both halves of the seal.")
	}

	if !block.VerifySignature() {
		t.Fatalf("Should verify the signed block.")
	}

	if err := block.Sign(pk, &pk.PublicKey); !errors.Is(err, database.ErrAlreadySigned) {
		t.Fatalf("Should not sign a block twice, got %v.", err)
	}

	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	unsigned, _ := database.Build(context.Background(), database.BuildArgs{Data: "x", PrevHash: database.GenesisPrevHash}, nil)
	if err := unsigned.Sign(pk, &other.PublicKey); !errors.Is(err, database.ErrKeyMismatch) {
		t.Fatalf("Should reject a public key from another keypair, got %v.", err)
	}
	if unsigned.IsSigned() {
		t.Fatalf("Should leave the block unsigned after a failed sign.")
	}
}

func Test_VerifyFailsClosed(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	build := func() database.Block {
		block, err := database.Build(context.Background(), database.BuildArgs{Data: "signed", PrevHash: database.GenesisPrevHash}, nil)
		if err != nil {
			t.Fatalf("Should be able to build a block: %s", err)
		}
		if err := block.Sign(pk, &pk.PublicKey); err != nil {
			t.Fatalf("Should be able to sign the block: %s", err)
		}
		return block
	}

	tt := []struct {
		name   string
		mutate func(b *database.Block)
	}{
		{name: "badsighex", mutate: func(b *database.Block) { b.Seal.Signature = "0xzz" }},
		{name: "badpubhex", mutate: func(b *database.Block) { b.Seal.PublicKey = "nothex" }},
		{name: "badpoint", mutate: func(b *database.Block) { b.Seal.PublicKey = "0x04" + strings.Repeat("00", 64) }},
		{name: "shortsig", mutate: func(b *database.Block) { b.Seal.Signature = b.Seal.Signature[:20] }},
		{name: "hashchanged", mutate: func(b *database.Block) { b.Hash = strings.Repeat("0", 64) }},
		{name: "recoveryid", mutate: func(b *database.Block) { b.Seal.Signature = b.Seal.Signature[:len(b.Seal.Signature)-1] + "2" }},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			block := build()
			tst.mutate(&block)

			if block.VerifySignature() {
				t.Fatalf("Should fail closed.")
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_SignatureCoversHashOnly(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	block, err := database.Build(context.Background(), database.BuildArgs{Data: "original", PrevHash: database.GenesisPrevHash}, nil)
	if err != nil {
		t.Fatalf("Should be able to build a block: %s", err)
	}
	if err := block.Sign(pk, &pk.PublicKey); err != nil {
		t.Fatalf("Should be able to sign the block: %s", err)
	}

	// Corrupt the data without touching the hash.
	block.Data = "corrupted"

	if !block.VerifySignature() {
		t.Fatalf("Should still verify the signature over the untouched hash.")
	}

	err = database.Validate([]database.Block{block})
	ve := database.GetValidationError(err)
	if ve == nil || ve.Reason != database.HashMismatch || ve.Index != 0 {
		t.Fatalf("Should fail the hash check at block 0, got %v.", err)
	}
}

// =============================================================================

func Test_BlockData(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	block, _ := database.Build(context.Background(), database.BuildArgs{Data: "stored", PrevHash: database.GenesisPrevHash}, nil)
	if err := block.Sign(pk, &pk.PublicKey); err != nil {
		t.Fatalf("Should be able to sign the block: %s", err)
	}

	got, err := database.ToBlock(database.NewBlockData(block))
	if err != nil {
		t.Fatalf("Should be able to convert the record back: %s", err)
	}

	if !got.VerifySignature() || got.Hash != block.Hash || *got.Seal != *block.Seal {
		t.Fatalf("Should get back the same sealed block.")
	}

	half := database.NewBlockData(block)
	half.PublicKey = ""
	if _, err := database.ToBlock(half); !errors.Is(err, database.ErrMalformedSeal) {
		t.Fatalf("Should reject a record with half a seal, got %v.", err)
	}
}
