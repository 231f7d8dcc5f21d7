package main

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"chain-poker/internal/config"
	"chain-poker/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "chainpoker",
	Short: "Client for poker lobbies on a privacy chain",
	Long: `chainpoker connects a wallet, reads lobby and game state and submits
game actions as signed transactions.

Example usage:
  chainpoker connect                       # enable the wallet and remember it
  chainpoker lobby create --big-blind 0.1  # instantiate a new lobby
  chainpoker lobby watch secret1...        # stream the game view
  chainpoker act secret1... raise --amount 0.5
  chainpoker serve                         # local HTTP API`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCfg, err := config.LoadLog("chainpoker")
		if err != nil {
			return err
		}
		logging.Init(logCfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := logging.Close(); err != nil {
			log.Warn().Err(err).Msg("close log file failed")
		}
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
