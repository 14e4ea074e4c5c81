package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/willkamu/crm-shekinah-sub001/internal/auditlog"
	"github.com/willkamu/crm-shekinah-sub001/internal/gitops"
	"github.com/willkamu/crm-shekinah-sub001/internal/ledger"
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/notify"
	"github.com/willkamu/crm-shekinah-sub001/internal/report"
	"github.com/willkamu/crm-shekinah-sub001/internal/treasury"
)

func newCloseCommand() *cobra.Command {
	var repoDir string
	var year, month int
	var evidencePath string
	var method string
	var receiver string

	today := model.Today()

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Build and submit the branch's monthly report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			period := model.Period{Year: year, Month: month}
			delivery := model.Delivery{Method: model.DeliveryMethod(method), Receiver: receiver}
			return runClose(absDir, period, evidencePath, delivery)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "treasury repository directory")
	cmd.Flags().IntVar(&year, "year", today.Year, "report year")
	cmd.Flags().IntVar(&month, "month", today.Month, "report month")
	cmd.Flags().StringVar(&evidencePath, "evidence", "", "closing evidence file (required)")
	_ = cmd.MarkFlagRequired("evidence")
	cmd.Flags().StringVar(&method, "method", "", "delivery method: CASH_HANDOFF | BANK_DEPOSIT | TRANSFER (required)")
	_ = cmd.MarkFlagRequired("method")
	cmd.Flags().StringVar(&receiver, "receiver", "", "receiver name or operation reference (required)")
	_ = cmd.MarkFlagRequired("receiver")

	return cmd
}

func runClose(repoRoot string, period model.Period, evidencePath string, delivery model.Delivery) error {
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	actor := cfg.Actor()
	notifier := notify.Console{W: os.Stdout}

	data, err := os.ReadFile(evidencePath)
	if err != nil {
		return fmt.Errorf("reading closing evidence: %w", err)
	}
	closing := report.Closing{
		Evidence: treasury.DataURI(filepath.Base(evidencePath), data),
		Delivery: delivery,
	}

	store := ledger.NewStore(repoRoot)
	txns, warnings, err := store.TransactionsForMonth(actor.BranchID, period)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		notifier.Notify(w.String(), notify.Warning)
	}

	rpt, warnings, err := report.Build(actor.BranchID, period, txns, closing)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		notifier.Notify(w.String(), notify.Warning)
	}

	workflow := report.NewWorkflow(store, notifier)
	if err := workflow.Submit(actor, rpt); err != nil {
		return err
	}

	if err := auditlog.Append(repoRoot, []auditlog.Entry{{
		Timestamp: time.Now().UTC(),
		Actor:     actor.Name,
		Role:      string(actor.Role),
		Action:    "report_submit",
		Details:   report.Summary(rpt),
		EntityID:  rpt.ID,
	}}); err != nil {
		return err
	}

	message := fmt.Sprintf("close: report %s %s", actor.BranchID, period.Key())
	if _, err := gitops.AutoCommit(repoRoot, message, cfg.Git); err != nil {
		return err
	}
	return nil
}
