package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/lode/internal/config"
	"github.com/mmr-tortoise/lode/internal/model"
)

// NewLogoutCommand creates the `lode logout` command, which removes the
// stored auth token. Logging out when not logged in succeeds; logout is
// idempotent.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored remote cache credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteToken(); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "could not remove auth token", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
