package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willkamu/crm-shekinah-sub001/internal/buildinfo"
	"github.com/willkamu/crm-shekinah-sub001/internal/config"
)

// ConfigFile is the repository configuration file name.
const ConfigFile = "shekinah.yaml"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "shekinah",
		Short:   "Church administration and branch treasury",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newBatchCommand())
	rootCmd.AddCommand(newCloseCommand())
	rootCmd.AddCommand(newApproveCommand())
	rootCmd.AddCommand(newAcceptCommand())
	rootCmd.AddCommand(newBoardCommand())
	rootCmd.AddCommand(newTithesCommand())

	return rootCmd
}

// loadConfig reads shekinah.yaml from the repository root.
func loadConfig(repoRoot string) (*config.Config, error) {
	return config.Load(filepath.Join(repoRoot, ConfigFile))
}
