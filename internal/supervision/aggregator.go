package supervision

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/report"
)

// ReportSource reads monthly reports across branches.
type ReportSource interface {
	ReportsByPeriod(p model.Period) ([]model.MonthlyReport, error)
}

// BranchSource lists the branch directory.
type BranchSource interface {
	All() []model.Branch
}

// RowStatus classifies a branch row on the supervision board.
type RowStatus string

const (
	RowReceived RowStatus = "RECEIVED"
	RowPending  RowStatus = "PENDING"
)

// Row is one branch's audit row for a period. Rows are recomputed per query
// and never persisted.
type Row struct {
	BranchID       string
	BranchName     string
	Leader         string
	Status         RowStatus
	ReportStatus   model.ReportStatus
	ReportedIncome decimal.Decimal
}

// Board is the cross-branch rollup for one period.
type Board struct {
	Period          model.Period
	Rows            []Row
	TotalIncome     decimal.Decimal
	TotalExpense    decimal.Decimal
	ComplianceRatio float64 // branches with a report / total branches
}

// Detail is the read-only drill-down into one branch's report.
type Detail struct {
	Report model.MonthlyReport
}

// Aggregator computes the supervision board and exposes the single mutating
// action of accepting a submitted report.
type Aggregator struct {
	reports  ReportSource
	branches BranchSource
	workflow *report.Workflow
}

// NewAggregator creates a supervision aggregator.
func NewAggregator(reports ReportSource, branches BranchSource, workflow *report.Workflow) *Aggregator {
	return &Aggregator{reports: reports, branches: branches, workflow: workflow}
}

// BuildBoard computes one row per branch plus period KPIs. A branch is
// RECEIVED iff a report with status other than PENDING exists for the exact
// (branch, year, month) key.
func (a *Aggregator) BuildBoard(p model.Period) (Board, []model.IntegrityWarning, error) {
	reports, err := a.reports.ReportsByPeriod(p)
	if err != nil {
		return Board{}, nil, fmt.Errorf("loading reports for %s: %w", p.Key(), err)
	}

	byBranch := make(map[string]model.MonthlyReport, len(reports))
	for _, r := range reports {
		if r.Status == model.ReportPending {
			continue
		}
		byBranch[r.BranchID] = r
	}

	var warnings []model.IntegrityWarning
	board := Board{
		Period:       p,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}

	branches := a.branches.All()
	received := 0
	for _, b := range branches {
		row := Row{
			BranchID:   b.ID,
			BranchName: b.Name,
			Leader:     b.Leader,
			Status:     RowPending,
		}
		if r, ok := byBranch[b.ID]; ok {
			row.Status = RowReceived
			row.ReportStatus = r.Status
			row.ReportedIncome = r.IncomeTotal
			board.TotalIncome = board.TotalIncome.Add(r.IncomeTotal)
			board.TotalExpense = board.TotalExpense.Add(r.ExpenseTotal)
			received++
		}
		board.Rows = append(board.Rows, row)
	}

	if len(branches) == 0 {
		warnings = append(warnings, model.IntegrityWarning{
			Context: "board " + p.Key(),
			Detail:  "branch directory is empty, compliance ratio reads as zero",
		})
	} else {
		board.ComplianceRatio = float64(received) / float64(len(branches))
	}
	return board, warnings, nil
}

// DrillDown returns the stored report for one branch, exposing the evidence
// asset and delivery-chain fields read-only.
func (a *Aggregator) DrillDown(branchID string, p model.Period) (Detail, error) {
	reports, err := a.reports.ReportsByPeriod(p)
	if err != nil {
		return Detail{}, fmt.Errorf("loading reports for %s: %w", p.Key(), err)
	}
	for _, r := range reports {
		if r.BranchID == branchID {
			return Detail{Report: r}, nil
		}
	}
	return Detail{}, &model.GuardBlocked{Reason: fmt.Sprintf("no report for %s %s", branchID, p.Key())}
}

// AcceptReport delegates the board's only mutating action to the approval
// workflow.
func (a *Aggregator) AcceptReport(actor model.Actor, branchID string, p model.Period) error {
	return a.workflow.Accept(actor, branchID, p)
}
