package cmd

import (
	"github.com/ardanlabs/hashchain/foundation/history"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <text>",
	Short: "Compute the SHA-256 of the text and record it in the history",
	Args:  cobra.ExactArgs(1),
	RunE:  hashRun,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the hash history",
	RunE:  historyRun,
}

func init() {
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(historyCmd)
}

func hashRun(cmd *cobra.Command, args []string) error {
	entry, err := history.New(historyPath).Record(args[0])
	if err != nil {
		return err
	}

	pterm.Info.Printfln("Source: %s", entry.Text)
	pterm.Info.Printfln("SHA256 hash: %s", entry.Hash)
	pterm.Success.Printfln("History saved in %s", historyPath)

	return nil
}

func historyRun(cmd *cobra.Command, args []string) error {
	entries := history.New(historyPath).List()
	if len(entries) == 0 {
		pterm.Warning.Println("The history is empty. Run the 'hash' command first.")
		return nil
	}

	data := pterm.TableData{{"ID", "Text", "Hash"}}
	for _, entry := range entries {
		data = append(data, []string{entry.ID, entry.Text, entry.Hash})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
