package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/willkamu/crm-shekinah-sub001/internal/auditlog"
	"github.com/willkamu/crm-shekinah-sub001/internal/gitops"
	"github.com/willkamu/crm-shekinah-sub001/internal/ledger"
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/treasury"
)

func newApproveCommand() *cobra.Command {
	var repoDir string
	var year, month int

	today := model.Today()

	cmd := &cobra.Command{
		Use:   "approve <transaction-id>",
		Short: "Approve a pending expense at branch level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runApprove(absDir, args[0], model.Period{Year: year, Month: month})
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "treasury repository directory")
	cmd.Flags().IntVar(&year, "year", today.Year, "ledger year")
	cmd.Flags().IntVar(&month, "month", today.Month, "ledger month")

	return cmd
}

func runApprove(repoRoot, txID string, period model.Period) error {
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	actor := cfg.Actor()

	store := ledger.NewStore(repoRoot)
	txns, _, err := store.TransactionsForMonth(actor.BranchID, period)
	if err != nil {
		return err
	}

	var target *model.Transaction
	for i := range txns {
		if txns[i].ID == txID {
			target = &txns[i]
			break
		}
	}
	if target == nil {
		return &model.GuardBlocked{Reason: fmt.Sprintf("no transaction %s in %s %s", txID, actor.BranchID, period.Key())}
	}

	if err := treasury.ApproveExpense(actor, *target); err != nil {
		return err
	}
	if err := store.UpdateTransactionApproval(actor.BranchID, period, txID, model.ApprovalApproved); err != nil {
		return err
	}

	if err := auditlog.Append(repoRoot, []auditlog.Entry{{
		Timestamp: time.Now().UTC(),
		Actor:     actor.Name,
		Role:      string(actor.Role),
		Action:    "expense_approve",
		Details:   fmt.Sprintf("%s %s", target.Description, target.Amount.StringFixed(2)),
		EntityID:  txID,
	}}); err != nil {
		return err
	}

	message := fmt.Sprintf("approve: expense %s", txID)
	if _, err := gitops.AutoCommit(repoRoot, message, cfg.Git); err != nil {
		return err
	}
	return nil
}
