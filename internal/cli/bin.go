package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/lode/internal/model"
)

// NewBinCommand creates the `lode bin` command, which prints the path of
// the binary handling this invocation.
//
// Because the dispatcher runs first, this is a user-visible way to see
// which copy of lode actually executes commands in a given directory: when
// delegation happens, the local binary answers; otherwise the global one
// does.
func NewBinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bin",
		Short: "Print the path of the lode binary executing this command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := os.Executable()
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "could not determine binary path", err)
			}

			if IsJSONOutput() {
				data, err := json.MarshalIndent(map[string]string{"path": exe}, "", "  ")
				if err != nil {
					return model.WrapCLIError(model.ExitGeneralError, "could not encode output", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), exe)
			return nil
		},
	}
}
