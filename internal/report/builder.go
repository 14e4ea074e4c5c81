package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/willkamu/crm-shekinah-sub001/internal/id"
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/treasury"
)

// NoDescription is the placeholder for expense details whose transaction has
// no description.
const NoDescription = "(no description)"

// Closing carries the mandatory monthly-closing fields: the closing evidence
// asset and the delivery classification of the handled funds.
type Closing struct {
	Evidence string
	Delivery model.Delivery
}

// Build aggregates one branch's transactions for one period into a monthly
// report. The operation fails with no report when the closing evidence or
// delivery classification is missing. Derived-value faults (zero-substituted
// amounts, an empty source set) are returned as warnings, never as errors.
func Build(branchID string, period model.Period, txns []model.Transaction, closing Closing) (model.MonthlyReport, []model.IntegrityWarning, error) {
	if closing.Evidence == "" {
		return model.MonthlyReport{}, nil, &model.ValidationError{
			Field:  "evidence",
			Reason: "monthly closing requires an evidence asset",
		}
	}
	if verr := treasury.ValidateDelivery(closing.Delivery); verr != nil {
		return model.MonthlyReport{}, nil, verr
	}

	var warnings []model.IntegrityWarning

	// Filter on the literal stored calendar fields, never a reconstructed
	// time.Time subject to timezone normalization.
	var scoped []model.Transaction
	for _, tx := range txns {
		if tx.BranchID == branchID && period.Contains(tx.Date) {
			scoped = append(scoped, tx)
		}
	}
	if len(scoped) == 0 {
		warnings = append(warnings, model.IntegrityWarning{
			Context: "report " + period.Key() + " " + branchID,
			Detail:  "no transactions in period",
		})
	}

	incomeTotal := decimal.Zero
	expenseTotal := decimal.Zero

	for _, tx := range scoped {
		amount := tx.Amount
		if amount.IsZero() {
			warnings = append(warnings, model.IntegrityWarning{
				Context: "transaction " + tx.ID,
				Detail:  "missing or non-numeric amount counted as zero",
			})
		}
		if tx.Kind == model.KindExpense {
			expenseTotal = expenseTotal.Add(amount)
		} else {
			incomeTotal = incomeTotal.Add(amount)
		}
	}

	r := model.MonthlyReport{
		ID:             id.NewReportID(branchID, period),
		BranchID:       branchID,
		Period:         period,
		IncomeTotal:    incomeTotal,
		ExpenseTotal:   expenseTotal,
		Net:            incomeTotal.Sub(expenseTotal),
		ExpenseDetails: ExpenseBreakdown(scoped),
		Status:         model.ReportPending,
		Evidence:       closing.Evidence,
		Delivery:       closing.Delivery,
	}
	return r, warnings, nil
}

// ExpenseBreakdown derives the expense-detail rows for a transaction set.
// Details are never persisted with the report; readers rebuild them from
// the ledger.
func ExpenseBreakdown(txns []model.Transaction) []model.ExpenseDetail {
	var details []model.ExpenseDetail
	for _, tx := range txns {
		if tx.Kind != model.KindExpense {
			continue
		}
		desc := tx.Description
		if desc == "" {
			desc = NoDescription
		}
		details = append(details, model.ExpenseDetail{
			TransactionID: tx.ID,
			Description:   desc,
			Amount:        tx.Amount,
		})
	}
	return details
}

// Recompute returns the report's net balance derived from its totals. The
// stored Net field is never authoritative.
func Recompute(r model.MonthlyReport) decimal.Decimal {
	return r.IncomeTotal.Sub(r.ExpenseTotal)
}

// Summary renders a one-line description for notices and logs.
func Summary(r model.MonthlyReport) string {
	return fmt.Sprintf("%s %s: income %s, expense %s, net %s",
		r.BranchID, r.Period.Key(),
		r.IncomeTotal.StringFixed(2), r.ExpenseTotal.StringFixed(2), Recompute(r).StringFixed(2))
}
