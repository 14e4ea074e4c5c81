package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/willkamu/crm-shekinah-sub001/internal/auditlog"
	"github.com/willkamu/crm-shekinah-sub001/internal/config"
	"github.com/willkamu/crm-shekinah-sub001/internal/directory"
	"github.com/willkamu/crm-shekinah-sub001/internal/gitops"
	"github.com/willkamu/crm-shekinah-sub001/internal/importer"
)

func newTithesCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "tithes [file.csv]",
		Short: "Bulk-import tithe-fidelity listings into the member directory",
		Long: `Imports tithe-status CSV listings (dni, estado_diezmo columns).
With a file argument that file is processed; without one, every CSV
waiting in the import/ drop folder is processed and moved to
import/processed/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if len(args) == 1 {
				return runTithesFile(absDir, args[0])
			}
			return runTithesDropFolder(absDir)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "treasury repository directory")

	return cmd
}

func runTithesFile(repoRoot, path string) error {
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}

	result, err := processTitheFile(repoRoot, path)
	if err != nil {
		return err
	}
	printImportResult(filepath.Base(path), result)

	return commitTithes(repoRoot, cfg, filepath.Base(path), result)
}

func runTithesDropFolder(repoRoot string) error {
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}

	files, err := importer.Scan(repoRoot)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No tithe listings waiting in import/")
		return nil
	}

	for _, f := range files {
		result, err := processTitheFile(repoRoot, f.Path)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		printImportResult(f.Name, result)

		if err := importer.MarkProcessed(repoRoot, f.Name); err != nil {
			return err
		}
		if err := commitTithes(repoRoot, cfg, f.Name, result); err != nil {
			return err
		}
	}
	return nil
}

// processTitheFile parses one listing and applies its fidelity updates by
// rewriting directory/members.csv.
func processTitheFile(repoRoot, path string) (importer.Result, error) {
	members, err := directory.LoadMembers(repoRoot)
	if err != nil {
		return importer.Result{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("opening tithe listing: %w", err)
	}
	defer f.Close()

	result, err := importer.ImportTithes(f, members)
	if err != nil {
		return importer.Result{}, err
	}
	if len(result.Updates) == 0 {
		return result, nil
	}

	byDNI := make(map[string]importer.FidelityUpdate, len(result.Updates))
	for _, u := range result.Updates {
		byDNI[u.DNI] = u
	}

	all := members.All()
	for i, m := range all {
		if u, ok := byDNI[m.DNI]; ok {
			all[i].Fidelity = u.Fidelity
		}
	}

	out, err := os.Create(directory.MembersPath(repoRoot))
	if err != nil {
		return importer.Result{}, fmt.Errorf("rewriting member directory: %w", err)
	}
	defer out.Close()

	if err := directory.WriteMembers(out, all); err != nil {
		return importer.Result{}, err
	}
	return result, nil
}

func printImportResult(name string, result importer.Result) {
	fmt.Printf("%s: %d rows, %d updated, %d errors\n",
		name, result.Rows, len(result.Updates), result.Errors)
}

func commitTithes(repoRoot string, cfg *config.Config, fileName string, result importer.Result) error {
	actor := cfg.Actor()
	if err := auditlog.Append(repoRoot, []auditlog.Entry{{
		Timestamp: time.Now().UTC(),
		Actor:     actor.Name,
		Role:      string(actor.Role),
		Action:    "tithe_import",
		Details:   fmt.Sprintf("%s: %d rows, %d updated, %d errors", fileName, result.Rows, len(result.Updates), result.Errors),
		EntityID:  fileName,
	}}); err != nil {
		return err
	}

	message := fmt.Sprintf("tithes: import %s", fileName)
	if _, err := gitops.AutoCommit(repoRoot, message, cfg.Git); err != nil {
		return err
	}
	return nil
}
