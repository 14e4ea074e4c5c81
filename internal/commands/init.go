package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/willkamu/crm-shekinah-sub001/internal/config"
	"github.com/willkamu/crm-shekinah-sub001/internal/directory"
	"github.com/willkamu/crm-shekinah-sub001/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var church string
	var operator string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new treasury repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(absDir, church, operator)
		},
	}

	cmd.Flags().StringVar(&church, "church", "", "church name (required)")
	_ = cmd.MarkFlagRequired("church")
	cmd.Flags().StringVar(&operator, "operator", "", "operator name (required)")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}

func runInit(dir, church, operator string) error {
	dirs := []string{
		"directory",
		"ledger",
		"reports",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(church, operator)
	if err := config.Save(filepath.Join(dir, ConfigFile), cfg); err != nil {
		return err
	}

	// Empty directories with headers, ready to be filled in.
	if err := writeIfMissing(directory.MembersPath(dir), directory.MembersHeader+"\n"); err != nil {
		return err
	}
	if err := writeIfMissing(directory.BranchesPath(dir), directory.BranchesHeader+"\n"); err != nil {
		return err
	}

	if !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return err
		}
	}
	if _, err := gitops.AutoCommit(dir, "init: treasury repository", cfg.Git); err != nil {
		return err
	}

	fmt.Printf("Initialized treasury repository for %s at %s\n", church, dir)
	return nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
