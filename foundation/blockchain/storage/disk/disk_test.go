package disk_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/ardanlabs/hashchain/foundation/blockchain/storage/disk"
)

func Test_LoadMissing(t *testing.T) {
	d, err := disk.New(filepath.Join(t.TempDir(), "zblock", "blockchain.json"))
	if err != nil {
		t.Fatalf("Should be able to construct disk storage: %s", err)
	}
	defer d.Close()

	blocks, err := d.Load()
	if err != nil {
		t.Fatalf("Should be able to load a missing chain: %s", err)
	}

	if len(blocks) != 0 {
		t.Fatalf("Should get an empty chain, got %d blocks.", len(blocks))
	}
}

func Test_SaveLoad(t *testing.T) {
	d, err := disk.New(filepath.Join(t.TempDir(), "blockchain.json"))
	if err != nil {
		t.Fatalf("Should be able to construct disk storage: %s", err)
	}

	exp := []database.BlockData{
		{Index: 0, Timestamp: "t0", Data: "genesis payload", PrevHash: database.GenesisPrevHash, Hash: "h0"},
		{Index: 1, Timestamp: "t1", Data: "second", PrevHash: "h0", Hash: "h1", Signature: "0x01", PublicKey: "0x04", Nonce: 7},
	}

	if err := d.Save(exp); err != nil {
		t.Fatalf("Should be able to save the chain: %s", err)
	}

	got, err := d.Load()
	if err != nil {
		t.Fatalf("Should be able to load the chain: %s", err)
	}

	if len(got) != len(exp) {
		t.Fatalf("Should get back %d blocks, got %d.", len(exp), len(got))
	}

	for i := range exp {
		if got[i] != exp[i] {
			t.Logf("got: %+v", got[i])
			t.Logf("exp: %+v", exp[i])
			t.Fatalf("Should get back the same block %d.", i)
		}
	}

	// A second save overwrites the whole chain.
	if err := d.Save(exp[:1]); err != nil {
		t.Fatalf("Should be able to save the chain: %s", err)
	}

	got, err = d.Load()
	if err != nil {
		t.Fatalf("Should be able to load the chain: %s", err)
	}

	if len(got) != 1 {
		t.Fatalf("Should get back 1 block after overwrite, got %d.", len(got))
	}
}

func Test_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockchain.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("Should be able to write a corrupt file: %s", err)
	}

	d, err := disk.New(path)
	if err != nil {
		t.Fatalf("Should be able to construct disk storage: %s", err)
	}

	if _, err := d.Load(); !errors.Is(err, database.ErrCorruptChain) {
		t.Fatalf("Should get ErrCorruptChain, got %v.", err)
	}
}
