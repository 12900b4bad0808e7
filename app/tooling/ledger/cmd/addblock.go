package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	difficulty  int
	maxAttempts uint64
)

var addBlockCmd = &cobra.Command{
	Use:   "add-block <data>",
	Short: "Append a new block to the chain",
	Args:  cobra.ExactArgs(1),
	RunE:  addBlockRun,
}

func init() {
	rootCmd.AddCommand(addBlockCmd)
	addBlockCmd.Flags().IntVarP(&difficulty, "difficulty", "d", -1, "Leading zeros required in the hash. Defaults to the genesis setting.")
	addBlockCmd.Flags().Uint64Var(&maxAttempts, "max-attempts", 0, "Upper bound on mining attempts. Defaults to the genesis setting.")
}

func addBlockRun(cmd *cobra.Command, args []string) error {
	if difficulty < -1 {
		return fmt.Errorf("invalid difficulty %d", difficulty)
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	gen, err := loadGenesis()
	if err != nil {
		return err
	}

	d := gen.Difficulty
	if difficulty >= 0 {
		d = uint(difficulty)
	}

	attempts := gen.MaxAttempts
	if maxAttempts > 0 {
		attempts = maxAttempts
	}

	db, err := openDatabase(attempts, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// An interrupt cancels the mining.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spinner, _ := pterm.DefaultSpinner.Start("Building block")
	block, err := db.Append(ctx, args[0], d)
	if err != nil {
		spinner.Fail("Block not added")
		return err
	}
	spinner.Success("Block added to the chain")

	if block.IsSigned() {
		pterm.Success.Println("Block signed successfully")
	} else {
		pterm.Warning.Println("No keys found, the block is unsigned. Run 'generate-keys' first.")
	}

	pterm.Info.Printfln("Index: %d  Nonce: %d  Hash: %s", block.Index, block.Nonce, block.Hash)

	return nil
}
