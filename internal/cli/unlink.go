package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/lode/internal/model"
)

// NewUnlinkCommand creates the `lode unlink` command, which detaches the
// inferred repository from its remote cache team by removing the link
// config written by `lode link`.
func NewUnlinkCommand(state *model.RepoState) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: "Unlink the current repository from its remote cache team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state == nil {
				return model.NewCLIError(model.ExitNoRepository,
					"unlink must run inside a repository (no lode.json or package.json found)")
			}

			path := filepath.Join(state.Root, linkDirName, linkFileName)
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					return model.NewCLIError(model.ExitGeneralError,
						"this repository is not linked to a remote cache team")
				}
				return model.WrapCLIError(model.ExitGeneralError, "could not remove link config", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s.\n", state.Root)
			return nil
		},
	}
}
