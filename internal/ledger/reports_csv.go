package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// ReportHeader is the CSV header for reports.csv.
const ReportHeader = "id,branch_id,year,month,income_total,expense_total,net,status,evidence,delivery_method,delivery_receiver"

const (
	rptNumFields   = 11
	rptColID       = 0
	rptColBranchID = 1
	rptColYear     = 2
	rptColMonth    = 3
	rptColIncome   = 4
	rptColExpense  = 5
	rptColNet      = 6
	rptColStatus   = 7
	rptColEvidence = 8
	rptColMethod   = 9
	rptColReceiver = 10
)

// ReadReports reads all reports from a reports.csv reader. Non-numeric totals
// are substituted with zero and warned about; the net balance is always
// recomputed from the totals, never taken from the stored column.
func ReadReports(r io.Reader) ([]model.MonthlyReport, []model.IntegrityWarning, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = rptNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading reports CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	var reports []model.MonthlyReport
	var warnings []model.IntegrityWarning
	for i, rec := range records[1:] {
		rpt, w, err := UnmarshalReport(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		warnings = append(warnings, w...)
		reports = append(reports, rpt)
	}
	return reports, warnings, nil
}

// WriteReports writes reports to a reports.csv writer, including the header.
func WriteReports(w io.Writer, reports []model.MonthlyReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(headerFields(ReportHeader)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rpt := range reports {
		if err := cw.Write(MarshalReport(rpt)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendReports appends reports to an existing reports.csv writer (no header).
func AppendReports(w io.Writer, reports []model.MonthlyReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, rpt := range reports {
		if err := cw.Write(MarshalReport(rpt)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalReport converts a MonthlyReport to a CSV row. Expense details are
// not persisted; readers rebuild them from the ledger via
// report.ExpenseBreakdown.
func MarshalReport(r model.MonthlyReport) []string {
	row := make([]string, rptNumFields)
	row[rptColID] = r.ID
	row[rptColBranchID] = r.BranchID
	row[rptColYear] = strconv.Itoa(r.Period.Year)
	row[rptColMonth] = strconv.Itoa(r.Period.Month)
	row[rptColIncome] = r.IncomeTotal.StringFixed(2)
	row[rptColExpense] = r.ExpenseTotal.StringFixed(2)
	row[rptColNet] = r.IncomeTotal.Sub(r.ExpenseTotal).StringFixed(2)
	row[rptColStatus] = string(r.Status)
	row[rptColEvidence] = r.Evidence
	row[rptColMethod] = string(r.Delivery.Method)
	row[rptColReceiver] = r.Delivery.Receiver
	return row
}

// UnmarshalReport converts a CSV row to a MonthlyReport.
func UnmarshalReport(record []string) (model.MonthlyReport, []model.IntegrityWarning, error) {
	if len(record) != rptNumFields {
		return model.MonthlyReport{}, nil, fmt.Errorf("expected %d fields, got %d", rptNumFields, len(record))
	}

	year, err := strconv.Atoi(record[rptColYear])
	if err != nil {
		return model.MonthlyReport{}, nil, fmt.Errorf("parsing year %q: %w", record[rptColYear], err)
	}
	month, err := strconv.Atoi(record[rptColMonth])
	if err != nil {
		return model.MonthlyReport{}, nil, fmt.Errorf("parsing month %q: %w", record[rptColMonth], err)
	}

	var warnings []model.IntegrityWarning
	parseTotal := func(col int, name string) decimal.Decimal {
		d, err := decimal.NewFromString(record[col])
		if err != nil {
			warnings = append(warnings, model.IntegrityWarning{
				Context: "report " + record[rptColID],
				Detail:  fmt.Sprintf("%s %q is not numeric, substituted zero", name, record[col]),
			})
			return decimal.Zero
		}
		return d
	}

	income := parseTotal(rptColIncome, "income_total")
	expense := parseTotal(rptColExpense, "expense_total")

	return model.MonthlyReport{
		ID:           record[rptColID],
		BranchID:     record[rptColBranchID],
		Period:       model.Period{Year: year, Month: month},
		IncomeTotal:  income,
		ExpenseTotal: expense,
		Net:          income.Sub(expense),
		Status:       model.ReportStatus(record[rptColStatus]),
		Evidence:     record[rptColEvidence],
		Delivery: model.Delivery{
			Method:   model.DeliveryMethod(record[rptColMethod]),
			Receiver: record[rptColReceiver],
		},
	}, warnings, nil
}
