package cmd

import (
	"strconv"

	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var workDifficulty uint

var validateChainCmd = &cobra.Command{
	Use:   "validate-chain",
	Short: "Check the hash and link of every block",
	RunE:  validateChainRun,
}

var validateSignaturesCmd = &cobra.Command{
	Use:   "validate-signatures",
	Short: "Check the signature of every block",
	RunE:  validateSignaturesRun,
}

func init() {
	rootCmd.AddCommand(validateChainCmd)
	rootCmd.AddCommand(validateSignaturesCmd)
	validateChainCmd.Flags().UintVarP(&workDifficulty, "difficulty", "d", 0, "Also check every hash has this many leading zeros.")
}

func validateChainRun(cmd *cobra.Command, args []string) error {
	blocks, ok, err := readChain()
	if err != nil || !ok {
		return err
	}

	err = database.Validate(blocks)
	if err == nil && workDifficulty > 0 {
		err = database.ValidateWork(blocks, workDifficulty)
	}

	if ve := database.GetValidationError(err); ve != nil {
		switch ve.Reason {
		case database.HashMismatch:
			pterm.Error.Printfln("Invalid hash at block %d", ve.Index)
		case database.BrokenLink:
			pterm.Error.Printfln("Broken chain at block %d", ve.Index)
		case database.UnsolvedHash:
			pterm.Error.Printfln("Block %d does not meet difficulty %d", ve.Index, workDifficulty)
		default:
			pterm.Error.Println(ve)
		}
		return nil
	}

	if err != nil {
		return err
	}

	pterm.Success.Printfln("Blockchain integrity verified. All %d blocks are valid!", len(blocks))

	return nil
}

func validateSignaturesRun(cmd *cobra.Command, args []string) error {
	blocks, ok, err := readChain()
	if err != nil || !ok {
		return err
	}

	data := pterm.TableData{{"Block", "Signature"}}
	for _, report := range database.ValidateSignatures(blocks) {
		data = append(data, []string{strconv.FormatUint(report.Index, 10), report.Status.String()})

		switch report.Status {
		case database.Unsigned:
			pterm.Warning.Printfln("Block %d is unsigned.", report.Index)
		case database.Valid:
			pterm.Success.Printfln("Block %d signature is valid.", report.Index)
		case database.Invalid:
			pterm.Error.Printfln("Block %d signature is INVALID!", report.Index)
		}
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
