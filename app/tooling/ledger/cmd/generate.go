package cmd

import (
	"github.com/ardanlabs/hashchain/foundation/blockchain/keystore"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate-keys",
	Short: "Generate a new signing keypair, replacing any existing one",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	ks := keystore.New(keysFolder)
	if _, err := ks.Generate(); err != nil {
		return err
	}

	privatePath, publicPath := ks.Paths()
	pterm.Success.Println("Keys generated successfully")
	pterm.Info.Printfln("Private key: %s", privatePath)
	pterm.Info.Printfln("Public key:  %s", publicPath)

	return nil
}
