package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/willkamu/crm-shekinah-sub001/internal/auditlog"
	"github.com/willkamu/crm-shekinah-sub001/internal/gitops"
	"github.com/willkamu/crm-shekinah-sub001/internal/ledger"
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/notify"
	"github.com/willkamu/crm-shekinah-sub001/internal/treasury"
)

// batchFile is the YAML input that drives one wizard session.
type batchFile struct {
	Kind            string          `yaml:"kind"` // income | expense
	Date            string          `yaml:"date"` // YYYY-MM-DD
	Witness         string          `yaml:"witness,omitempty"`
	Evidence        string          `yaml:"evidence,omitempty"` // path to the batch evidence file
	MergeDuplicates bool            `yaml:"merge_duplicates,omitempty"`
	Items           []batchFileItem `yaml:"items"`
}

type batchFileItem struct {
	Kind        string `yaml:"kind"`
	Amount      string `yaml:"amount"`
	Member      string `yaml:"member,omitempty"`
	Description string `yaml:"description,omitempty"`
	Purpose     string `yaml:"purpose,omitempty"`
	Evidence    string `yaml:"evidence,omitempty"` // path to an item-level evidence file
}

func newBatchCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Enter and commit a batch of transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runBatch(absDir, args[0])
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "treasury repository directory")
	return cmd
}

func runBatch(repoRoot, batchPath string) error {
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	actor := cfg.Actor()

	data, err := os.ReadFile(batchPath)
	if err != nil {
		return fmt.Errorf("reading batch file: %w", err)
	}
	var bf batchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return fmt.Errorf("parsing batch file: %w", err)
	}

	date, err := model.ParseDate(bf.Date)
	if err != nil {
		return err
	}

	store := ledger.NewStore(repoRoot)
	notifier := notify.Console{W: os.Stdout}
	session := treasury.NewSession(actor, store, notifier, treasury.SessionOptions{
		MergeDuplicates: bf.MergeDuplicates,
	})

	if err := session.SetMetadata(treasury.BatchMetadata{
		Date:    date,
		Kind:    treasury.BatchKind(bf.Kind),
		Witness: bf.Witness,
	}); err != nil {
		return err
	}
	if err := session.AdvanceToItems(); err != nil {
		return err
	}

	// Batch evidence is ingested before the items so it counts as attached
	// during per-item validation, not only at commit.
	if bf.Evidence != "" {
		if err := treasury.Ingest(session.Evidence(), bf.Evidence); err != nil {
			return err
		}
	}

	for i, item := range bf.Items {
		in, err := toItemInput(item)
		if err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		if _, err := session.AddItem(in); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	if err := session.AdvanceToEvidence(); err != nil {
		return err
	}

	committed, err := session.Commit()
	if err != nil {
		return err
	}

	entries := make([]auditlog.Entry, 0, len(committed))
	for _, tx := range committed {
		entries = append(entries, auditlog.Entry{
			Timestamp: time.Now().UTC(),
			Actor:     actor.Name,
			Role:      string(actor.Role),
			Action:    "batch_commit",
			Details:   fmt.Sprintf("%s %s %s", tx.Kind, tx.Amount.StringFixed(2), tx.Date),
			EntityID:  tx.ID,
		})
	}
	if err := auditlog.Append(repoRoot, entries); err != nil {
		return err
	}

	message := fmt.Sprintf("batch: %d transaction(s) %s %s", len(committed), actor.BranchID, date)
	if _, err := gitops.AutoCommit(repoRoot, message, cfg.Git); err != nil {
		return err
	}
	return nil
}

func toItemInput(item batchFileItem) (treasury.ItemInput, error) {
	amount, err := decimal.NewFromString(item.Amount)
	if err != nil {
		return treasury.ItemInput{}, fmt.Errorf("parsing amount %q: %w", item.Amount, err)
	}

	in := treasury.ItemInput{
		Kind:        model.Kind(item.Kind),
		Amount:      amount,
		MemberID:    item.Member,
		Description: item.Description,
		Purpose:     item.Purpose,
	}
	if item.Evidence != "" {
		data, err := os.ReadFile(item.Evidence)
		if err != nil {
			return treasury.ItemInput{}, fmt.Errorf("reading evidence %s: %w", item.Evidence, err)
		}
		in.Evidence = treasury.DataURI(filepath.Base(item.Evidence), data)
	}
	return in, nil
}
