package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chain-poker/internal/amount"
)

var amountCmd = &cobra.Command{
	Use:   "amount",
	Short: "Convert and validate SCRT amounts",
}

var amountToBaseCmd = &cobra.Command{
	Use:   "to-base <scrt>",
	Short: "Convert decimal SCRT to uSCRT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := amount.ToBaseUnits(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), units.String())
		return err
	},
}

var amountValidateCmd = &cobra.Command{
	Use:   "validate <scrt>",
	Short: "Run the amount input rules against a value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		required, _ := cmd.Flags().GetBool("required")
		minStr, _ := cmd.Flags().GetString("min")
		maxStr, _ := cmd.Flags().GetString("max")

		rules := amount.Rules{Required: required}
		var err error
		if minStr != "" {
			if rules.Min, err = amount.ToBaseUnits(minStr); err != nil {
				return err
			}
		}
		if maxStr != "" {
			if rules.Max, err = amount.ToBaseUnits(maxStr); err != nil {
				return err
			}
		}
		return printJSON(cmd.OutOrStdout(), amount.Validate(args[0], rules))
	},
}

func init() {
	amountValidateCmd.Flags().Bool("required", true, "reject empty input")
	amountValidateCmd.Flags().String("min", "", "minimum in SCRT")
	amountValidateCmd.Flags().String("max", "", "maximum in SCRT")
	amountCmd.AddCommand(amountToBaseCmd, amountValidateCmd)
	rootCmd.AddCommand(amountCmd)
}
