package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var showChainCmd = &cobra.Command{
	Use:   "show-chain",
	Short: "Print the chain",
	RunE:  showChainRun,
}

func init() {
	rootCmd.AddCommand(showChainCmd)
}

func showChainRun(cmd *cobra.Command, args []string) error {
	blocks, ok, err := readChain()
	if err != nil || !ok {
		return err
	}

	records := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		records[i] = database.NewBlockData(block)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	pterm.Info.Println("Blockchain:")
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return nil
}

// readChain reads the chain and reports a missing or empty chain. It
// returns false when there is nothing to show.
func readChain() ([]database.Block, bool, error) {
	log, err := newLogger()
	if err != nil {
		return nil, false, err
	}
	defer log.Sync()

	db, err := openDatabase(0, log)
	if err != nil {
		return nil, false, err
	}
	defer db.Close()

	blocks, err := db.Blocks()
	if err != nil {
		return nil, false, err
	}

	if len(blocks) == 0 {
		pterm.Error.Println("Blockchain is empty! Add a block first.")
		return nil, false, nil
	}

	return blocks, true, nil
}
