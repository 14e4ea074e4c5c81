package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/willkamu/crm-shekinah-sub001/internal/auditlog"
	"github.com/willkamu/crm-shekinah-sub001/internal/directory"
	"github.com/willkamu/crm-shekinah-sub001/internal/ledger"
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/notify"
	"github.com/willkamu/crm-shekinah-sub001/internal/report"
	"github.com/willkamu/crm-shekinah-sub001/internal/supervision"
)

func newBoardCommand() *cobra.Command {
	var repoDir string
	var year, month int
	var drillBranch string

	today := model.Today()

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the cross-branch supervision board for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runBoard(absDir, model.Period{Year: year, Month: month}, drillBranch)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "treasury repository directory")
	cmd.Flags().IntVar(&year, "year", today.Year, "board year")
	cmd.Flags().IntVar(&month, "month", today.Month, "board month")
	cmd.Flags().StringVar(&drillBranch, "branch", "", "drill down into one branch's report")

	return cmd
}

func runBoard(repoRoot string, period model.Period, drillBranch string) error {
	branches, err := directory.LoadBranches(repoRoot)
	if err != nil {
		return err
	}

	store := ledger.NewStore(repoRoot)
	notifier := notify.Console{W: os.Stdout}
	workflow := report.NewWorkflow(store, notifier)
	agg := supervision.NewAggregator(store, branches, workflow)

	if drillBranch != "" {
		return printDrillDown(repoRoot, store, agg, drillBranch, period)
	}

	board, warnings, err := agg.BuildBoard(period)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		notifier.Notify(w.String(), notify.Warning)
	}
	printBoard(board)
	return nil
}

func printBoard(board supervision.Board) {
	fmt.Printf("Supervision board %s\n\n", board.Period.Key())

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BRANCH\tLEADER\tSTATUS\tREPORT\tINCOME")
	for _, row := range board.Rows {
		reportStatus := "-"
		income := "-"
		if row.Status == supervision.RowReceived {
			reportStatus = string(row.ReportStatus)
			income = row.ReportedIncome.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			row.BranchName, row.Leader, row.Status, reportStatus, income)
	}
	tw.Flush()

	fmt.Printf("\nTotal income:  %s\n", board.TotalIncome.StringFixed(2))
	fmt.Printf("Total expense: %s\n", board.TotalExpense.StringFixed(2))
	fmt.Printf("Compliance:    %.0f%%\n", board.ComplianceRatio*100)
}

func printDrillDown(repoRoot string, store *ledger.Store, agg *supervision.Aggregator, branchID string, period model.Period) error {
	detail, err := agg.DrillDown(branchID, period)
	if err != nil {
		return err
	}
	r := detail.Report

	// Stored reports carry no detail rows; rebuild them from the ledger.
	txns, _, err := store.TransactionsForMonth(branchID, period)
	if err != nil {
		return err
	}
	r.ExpenseDetails = report.ExpenseBreakdown(txns)

	fmt.Println(report.Summary(r))
	fmt.Printf("Status:   %s\n", r.Status)
	fmt.Printf("Delivery: %s to %s\n", r.Delivery.Method, r.Delivery.Receiver)
	if r.Evidence != "" {
		fmt.Println("Evidence: attached")
	} else {
		fmt.Println("Evidence: missing")
	}

	if len(r.ExpenseDetails) > 0 {
		fmt.Println("\nExpenses:")
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, e := range r.ExpenseDetails {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.TransactionID, e.Description, e.Amount.StringFixed(2))
		}
		tw.Flush()
	}

	entries, err := auditlog.ForEntity(repoRoot, r.ID)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Println("\nHistory:")
		for _, e := range entries {
			fmt.Printf("  %s  %s (%s): %s\n",
				e.Timestamp.Format("2006-01-02 15:04"), e.Actor, e.Role, e.Action)
		}
	}
	return nil
}
