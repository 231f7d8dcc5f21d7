package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chain-poker/internal/action"
	"chain-poker/internal/game"
)

var actCmd = &cobra.Command{
	Use:   "act <lobby-id> <action>",
	Short: "Submit a game action",
	Long: `Submit one game action as a signed transaction.

Actions: ` + strings.Join([]string{
		game.ActionBuyIn, game.ActionStartGame, game.ActionRaise,
		game.ActionCall, game.ActionCheck, game.ActionFold, game.ActionWithdraw,
	}, ", ") + `

Examples:
  chainpoker act secret1... buy_in --amount 5
  chainpoker act secret1... raise --amount 0.25
  chainpoker act secret1... fold`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amt, _ := cmd.Flags().GetString("amount")
		username, _ := cmd.Flags().GetString("username")

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.restore(cmd.Context())

		resp, err := rt.svc.SubmitAction(cmd.Context(), args[0], args[1], game.ActionRequest{
			Username: username,
			Amount:   amt,
		})
		if resp != nil {
			if perr := printJSON(cmd.OutOrStdout(), resp); perr != nil {
				return perr
			}
		}
		if err != nil && action.OutcomeOf(err) == action.OutcomeDeliveryUnknown {
			return fmt.Errorf("%w (the transaction may still land; check the game view before retrying)", err)
		}
		if errors.Is(err, action.ErrActionPending) {
			return fmt.Errorf("another %s is still pending: %w", args[1], err)
		}
		return err
	},
}

func init() {
	actCmd.Flags().String("amount", "", "amount in SCRT (buy_in, raise)")
	actCmd.Flags().String("username", "", "name for buy_in (default: stored display name)")
	rootCmd.AddCommand(actCmd)
}
