package main

import (
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Enable the wallet and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		view, err := rt.svc.Connect(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), view)
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the session; the next start will not reconnect",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		view, err := rt.svc.Disconnect(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), view)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session, reconnecting when it was remembered",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		rt.restore(cmd.Context())
		return printJSON(cmd.OutOrStdout(), rt.svc.Session())
	},
}

var nameCmd = &cobra.Command{
	Use:   "name [display-name]",
	Short: "Show or set the display name used for buy-ins",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		if len(args) == 1 {
			if err := rt.svc.SetDisplayName(cmd.Context(), args[0]); err != nil {
				return err
			}
		}
		name, err := rt.svc.DisplayName(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]string{"display_name": name})
	},
}

func init() {
	rootCmd.AddCommand(connectCmd, disconnectCmd, statusCmd, nameCmd)
}
