package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/lode/internal/config"
	"github.com/mmr-tortoise/lode/internal/model"
)

// NewLoginCommand creates the `lode login` command, which stores the remote
// cache auth token in the user config directory.
//
// Login is a global command: it must work outside any repository, which is
// precisely why the dispatcher treats inference failure as recoverable.
func NewLoginCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the lode remote cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return model.NewCLIError(model.ExitGeneralError,
					"no token provided; pass one with --token")
			}

			if err := config.SaveToken(token); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "could not store auth token", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Auth token to store")

	return cmd
}
