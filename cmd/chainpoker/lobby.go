package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appclient "chain-poker/internal/app/client"
	"chain-poker/internal/game"
)

var lobbyCmd = &cobra.Command{
	Use:   "lobby",
	Short: "Create and inspect lobbies",
}

var lobbyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Instantiate a new lobby with you as admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		bigBlind, _ := cmd.Flags().GetString("big-blind")
		minBB, _ := cmd.Flags().GetString("min-buy-in-bb")
		maxBB, _ := cmd.Flags().GetString("max-buy-in-bb")

		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.restore(cmd.Context())
		resp, err := rt.svc.CreateLobby(cmd.Context(), appclient.CreateLobbyRequest{
			Username: username,
			LobbyConfigInput: game.LobbyConfigInput{
				BigBlind:   bigBlind,
				MinBuyInBB: minBB,
				MaxBuyInBB: maxBB,
			},
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var lobbyViewCmd = &cobra.Command{
	Use:   "view <lobby-id>",
	Short: "Show the public lobby view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.restore(cmd.Context())
		resp, err := rt.svc.LobbyStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var lobbyGameCmd = &cobra.Command{
	Use:   "game <lobby-id>",
	Short: "Show your view of the running game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.restore(cmd.Context())
		resp, err := rt.svc.GameStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var lobbyWatchCmd = &cobra.Command{
	Use:   "watch <lobby-id>",
	Short: "Poll the game (or with --public, the lobby) until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		public, _ := cmd.Flags().GetBool("public")
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.restore(ctx)

		open := rt.svc.WatchGame
		if public {
			open = rt.svc.WatchLobby
		}
		watch := open(args[0])
		defer watch.Release()
		out := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				return nil
			case u, ok := <-watch.Updates:
				if !ok {
					return nil
				}
				if u.Err != nil {
					_ = printJSON(out, map[string]string{"error": u.Err.Error()})
					continue
				}
				if err := printJSON(out, u.Snapshot); err != nil {
					return err
				}
			}
		}
	},
}

func init() {
	lobbyCreateCmd.Flags().String("username", "", "name shown to other players (default: stored display name)")
	lobbyCreateCmd.Flags().String("big-blind", "", "big blind in SCRT")
	lobbyCreateCmd.Flags().String("min-buy-in-bb", "20", "minimum buy-in in big blinds")
	lobbyCreateCmd.Flags().String("max-buy-in-bb", "100", "maximum buy-in in big blinds")
	lobbyWatchCmd.Flags().Bool("public", false, "watch the public lobby view instead of the game")

	lobbyCmd.AddCommand(lobbyCreateCmd, lobbyViewCmd, lobbyGameCmd, lobbyWatchCmd)
	rootCmd.AddCommand(lobbyCmd)
}
