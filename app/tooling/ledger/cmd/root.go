// Package cmd contains the ledger command line tool.
package cmd

import (
	"os"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/ardanlabs/hashchain/foundation/blockchain/genesis"
	"github.com/ardanlabs/hashchain/foundation/blockchain/keystore"
	"github.com/ardanlabs/hashchain/foundation/blockchain/storage"
	"github.com/ardanlabs/hashchain/foundation/logger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	storageKind string
	chainPath   string
	keysFolder  string
	genesisPath string
	historyPath string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&storageKind, "storage", "s", storage.KindDisk, "Storage kind: disk or leveldb.")
	rootCmd.PersistentFlags().StringVarP(&chainPath, "chain", "c", "zblock/blockchain.json", "Path to the chain.")
	rootCmd.PersistentFlags().StringVarP(&keysFolder, "keys", "k", "zblock/keys/", "Path to the directory with the keypair.")
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "zblock/hash_history.json", "Path to the hash history.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log ledger events to stderr.")
}

var rootCmd = &cobra.Command{
	Use:           "ledger",
	Short:         "A hash-linked ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command specified on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// =============================================================================

// openDatabase constructs the database from the command line settings.
func openDatabase(maxAttempts uint64, log *zap.SugaredLogger) (*database.Database, error) {
	strg, err := storage.Open(storageKind, chainPath)
	if err != nil {
		return nil, err
	}

	ev := func(v string, args ...any) {
		log.Infof(v, args...)
	}

	return database.New(database.Config{
		Storage:     strg,
		Keys:        keystore.New(keysFolder),
		MaxAttempts: maxAttempts,
		EvHandler:   ev,
	})
}

// loadGenesis loads the ledger settings.
func loadGenesis() (genesis.Genesis, error) {
	return genesis.Load(genesisPath)
}

// newLogger returns the logger for ledger events. Events are only written
// when verbose is set.
func newLogger() (*zap.SugaredLogger, error) {
	if !verbose {
		return zap.NewNop().Sugar(), nil
	}
	return logger.New("LEDGER", "stderr")
}
