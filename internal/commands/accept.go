package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/willkamu/crm-shekinah-sub001/internal/auditlog"
	"github.com/willkamu/crm-shekinah-sub001/internal/gitops"
	"github.com/willkamu/crm-shekinah-sub001/internal/id"
	"github.com/willkamu/crm-shekinah-sub001/internal/ledger"
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/notify"
	"github.com/willkamu/crm-shekinah-sub001/internal/report"
)

func newAcceptCommand() *cobra.Command {
	var repoDir string
	var branchID string
	var year, month int

	today := model.Today()

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept a submitted monthly report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runAccept(absDir, branchID, model.Period{Year: year, Month: month})
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "treasury repository directory")
	cmd.Flags().StringVar(&branchID, "branch", "", "branch whose report to accept (required)")
	_ = cmd.MarkFlagRequired("branch")
	cmd.Flags().IntVar(&year, "year", today.Year, "report year")
	cmd.Flags().IntVar(&month, "month", today.Month, "report month")

	return cmd
}

func runAccept(repoRoot, branchID string, period model.Period) error {
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	actor := cfg.Actor()

	store := ledger.NewStore(repoRoot)
	workflow := report.NewWorkflow(store, notify.Console{W: os.Stdout})
	if err := workflow.Accept(actor, branchID, period); err != nil {
		return err
	}

	if err := auditlog.Append(repoRoot, []auditlog.Entry{{
		Timestamp: time.Now().UTC(),
		Actor:     actor.Name,
		Role:      string(actor.Role),
		Action:    "report_accept",
		Details:   fmt.Sprintf("branch %s period %s", branchID, period.Key()),
		EntityID:  id.NewReportID(branchID, period),
	}}); err != nil {
		return err
	}

	message := fmt.Sprintf("accept: report %s %s", branchID, period.Key())
	if _, err := gitops.AutoCommit(repoRoot, message, cfg.Git); err != nil {
		return err
	}
	return nil
}
