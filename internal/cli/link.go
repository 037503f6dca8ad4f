package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/lode/internal/config"
	"github.com/mmr-tortoise/lode/internal/model"
)

// linkDirName is the repository-local directory holding the link config.
const linkDirName = ".lode"

// linkFileName is the link config file written under linkDirName.
const linkFileName = "config.yaml"

// linkConfig is the YAML structure written to <root>/.lode/config.yaml by
// `lode link`. It records which remote cache team the repository shares
// artifacts with.
type linkConfig struct {
	// Team is the remote cache team slug.
	Team string `yaml:"team"`
}

// markerConfig is the subset of lode.json consulted by link: the repository
// can predeclare its team so `lode link` needs no flag. lode.json is JSONC,
// so comments are stripped before parsing.
type markerConfig struct {
	RemoteCache struct {
		Team string `json:"team"`
	} `json:"remoteCache"`
}

// NewLinkCommand creates the `lode link` command, which attaches the
// inferred repository to a remote cache team.
//
// link needs both a repository (it writes into the repository root) and a
// stored auth token, so it fails cleanly when either is missing.
func NewLinkCommand(state *model.RepoState) *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link the current repository to a remote cache team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state == nil {
				return model.NewCLIError(model.ExitNoRepository,
					"link must run inside a repository (no lode.json or package.json found)")
			}

			token, err := config.Token()
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "could not read auth config", err)
			}
			if token == "" {
				return model.NewCLIError(model.ExitAuthRequired,
					"not logged in; run `lode login` first")
			}

			if team == "" {
				team = teamFromMarker(state.Root)
			}
			if team == "" {
				return model.NewCLIError(model.ExitGeneralError,
					"no team given; pass one with --team or set remoteCache.team in lode.json")
			}

			if err := writeLinkConfig(state.Root, team); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "could not write link config", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s to team %q.\n", state.Root, team)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Remote cache team slug")

	return cmd
}

// teamFromMarker reads the team predeclared in <root>/lode.json, if any.
// A missing or unparsable marker simply yields no default; link then
// insists on an explicit --team.
func teamFromMarker(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "lode.json"))
	if err != nil {
		return ""
	}

	var marker markerConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &marker); err != nil {
		return ""
	}
	return marker.RemoteCache.Team
}

// writeLinkConfig persists the link config under the repository root.
func writeLinkConfig(root, team string) error {
	dir := filepath.Join(root, linkDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := yaml.Marshal(linkConfig{Team: team})
	if err != nil {
		return fmt.Errorf("failed to encode link config: %w", err)
	}

	path := filepath.Join(dir, linkFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
