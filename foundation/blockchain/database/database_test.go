package database_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"testing"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/ardanlabs/hashchain/foundation/blockchain/keystore"
	"github.com/ardanlabs/hashchain/foundation/blockchain/storage/memory"
	"github.com/ethereum/go-ethereum/crypto"
)

// fixedKeys serves the same keypair on every call.
type fixedKeys struct {
	pk *ecdsa.PrivateKey
}

func (fk fixedKeys) LoadPrivateKey() (*ecdsa.PrivateKey, bool) { return fk.pk, fk.pk != nil }
func (fk fixedKeys) LoadPublicKey() (*ecdsa.PublicKey, bool) {
	if fk.pk == nil {
		return nil, false
	}
	return &fk.pk.PublicKey, true
}

// corruptStorage fails every load with a corrupt chain.
type corruptStorage struct {
	saved []database.BlockData
}

func (cs *corruptStorage) Load() ([]database.BlockData, error) {
	if cs.saved != nil {
		return cs.saved, nil
	}
	return nil, fmt.Errorf("%w: bad json", database.ErrCorruptChain)
}
func (cs *corruptStorage) Save(blocks []database.BlockData) error { cs.saved = blocks; return nil }
func (cs *corruptStorage) Close() error                           { return nil }

// =============================================================================

func Test_TwoBlockScenario(t *testing.T) {
	storage, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct memory storage: %s", err)
	}

	db, err := database.New(database.Config{Storage: storage})
	if err != nil {
		t.Fatalf("Should be able to construct the database: %s", err)
	}
	defer db.Close()

	b0, err := db.Append(context.Background(), "genesis payload", 0)
	if err != nil {
		t.Fatalf("Should be able to append the first block: %s", err)
	}

	if b0.Index != 0 || b0.PrevHash != database.GenesisPrevHash {
		t.Fatalf("Should create the genesis block, got index %d prev %s.", b0.Index, b0.PrevHash)
	}

	b1, err := db.Append(context.Background(), "second", 0)
	if err != nil {
		t.Fatalf("Should be able to append the second block: %s", err)
	}

	if b1.Index != 1 || b1.PrevHash != b0.Hash {
		t.Fatalf("Should link the second block to the first.")
	}

	blocks, err := db.Blocks()
	if err != nil {
		t.Fatalf("Should be able to read the chain: %s", err)
	}

	if len(blocks) != 2 {
		t.Fatalf("Should have 2 blocks, got %d.", len(blocks))
	}

	if err := database.Validate(blocks); err != nil {
		t.Fatalf("Should validate the chain: %s", err)
	}

	for _, report := range database.ValidateSignatures(blocks) {
		if report.Status != database.Unsigned {
			t.Fatalf("Should report block %d as unsigned, got %s.", report.Index, report.Status)
		}
	}
}

func Test_AppendSigned(t *testing.T) {
	t.Log("Given the need to sign appended blocks when keys are available.")
	{
		ks := keystore.New(t.TempDir())

		storage, _ := memory.New()
		db, err := database.New(database.Config{Storage: storage, Keys: ks})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the database: %v", failed, err)
		}

		b0, err := db.Append(context.Background(), "before keys", 0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to append without keys: %v", failed, err)
		}
		if b0.IsSigned() {
			t.Fatalf("\t%s\tShould leave the block unsigned without keys.", failed)
		}
		t.Logf("\t%s\tShould leave the block unsigned without keys.", success)

		if _, err := ks.Generate(); err != nil {
			t.Fatalf("\t%s\tShould be able to generate keys: %v", failed, err)
		}

		b1, err := db.Append(context.Background(), "after keys", 1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to append with keys: %v", failed, err)
		}
		if !b1.IsSigned() || !b1.VerifySignature() {
			t.Fatalf("\t%s\tShould sign the block once keys exist.", failed)
		}
		t.Logf("\t%s\tShould sign the block once keys exist.", success)

		blocks, err := db.Blocks()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the chain: %v", failed, err)
		}

		exp := []database.SignatureStatus{database.Unsigned, database.Valid}
		for i, report := range database.ValidateSignatures(blocks) {
			if report.Status != exp[i] {
				t.Fatalf("\t%s\tShould classify block %d as %s, got %s.", failed, i, exp[i], report.Status)
			}
		}
		t.Logf("\t%s\tShould keep the seal through storage.", success)

		if err := database.Validate(blocks); err != nil {
			t.Fatalf("\t%s\tShould validate the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould validate the chain.", success)
	}
}

func Test_AppendCorruptChain(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	var warned bool
	ev := func(v string, args ...any) {
		if errors.Is(findErr(args), database.ErrCorruptChain) {
			warned = true
		}
	}

	cs := corruptStorage{}
	db, err := database.New(database.Config{Storage: &cs, Keys: fixedKeys{pk: pk}, EvHandler: ev})
	if err != nil {
		t.Fatalf("Should be able to construct the database: %s", err)
	}

	if _, err := db.Blocks(); !errors.Is(err, database.ErrCorruptChain) {
		t.Fatalf("Should report the corrupt chain on read, got %v.", err)
	}

	block, err := db.Append(context.Background(), "fresh start", 0)
	if err != nil {
		t.Fatalf("Should treat the corrupt chain as empty: %s", err)
	}

	if block.Index != 0 || block.PrevHash != database.GenesisPrevHash || !block.VerifySignature() {
		t.Fatalf("Should start a new signed chain.")
	}

	if !warned {
		t.Fatalf("Should raise an event about the corrupt chain.")
	}
}

func Test_AppendUnsatisfiable(t *testing.T) {
	storage, _ := memory.New()
	db, err := database.New(database.Config{Storage: storage})
	if err != nil {
		t.Fatalf("Should be able to construct the database: %s", err)
	}

	if _, err := db.Append(context.Background(), "never", 100); !errors.Is(err, database.ErrDifficultyUnsatisfiable) {
		t.Fatalf("Should reject the difficulty before mining, got %v.", err)
	}

	blocks, _ := db.Blocks()
	if len(blocks) != 0 {
		t.Fatalf("Should not save anything on failure.")
	}
}

func Test_NewRequiresStorage(t *testing.T) {
	if _, err := database.New(database.Config{}); err == nil {
		t.Fatalf("Should require a storage.")
	}
}

// findErr returns the first error in the event arguments.
func findErr(args []any) error {
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			return err
		}
	}
	return nil
}
