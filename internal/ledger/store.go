package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/willkamu/crm-shekinah-sub001/internal/id"
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/report"
)

// Store is the file-backed persistence collaborator. Transactions live in
// per-branch monthly files, reports in per-period files:
//
//	<root>/ledger/<branch>/<YYYY>/<MM>/transactions.csv
//	<root>/reports/<YYYY>/<MM>/reports.csv
type Store struct {
	root string
}

// NewStore creates a Store rooted at a ledger repository directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// AddTransaction appends a fully-formed transaction to its branch's monthly
// file, creating the directory and header if new.
func (s *Store) AddTransaction(tx model.Transaction) error {
	path := s.transactionsPath(tx.BranchID, model.PeriodOf(tx.Date))
	f, isNew, err := openAppend(path)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, TransactionHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, []model.Transaction{tx}); err != nil {
		return fmt.Errorf("appending transaction: %w", err)
	}
	return nil
}

// TransactionsForMonth reads one branch's transactions for a period.
// A missing file reads as an empty month.
func (s *Store) TransactionsForMonth(branchID string, p model.Period) ([]model.Transaction, []model.IntegrityWarning, error) {
	path := s.transactionsPath(branchID, p)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txns, warnings, err := ReadTransactions(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txns, warnings, nil
}

// UpdateTransactionApproval rewrites one transaction's approval sub-status.
// The rest of a committed transaction is immutable.
func (s *Store) UpdateTransactionApproval(branchID string, p model.Period, txID string, approval model.ApprovalStatus) error {
	path := s.transactionsPath(branchID, p)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", path, err)
	}
	txns, _, err := ReadTransactions(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading ledger %s: %w", path, err)
	}

	found := false
	for i := range txns {
		if txns[i].ID == txID {
			txns[i].Approval = approval
			found = true
		}
	}
	if !found {
		return fmt.Errorf("no transaction %s in %s %s", txID, branchID, p.Key())
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewriting ledger %s: %w", path, err)
	}
	defer out.Close()

	if _, err := fmt.Fprintln(out, TransactionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return AppendTransactions(out, txns)
}

// AddMonthlyReport appends a report to its period file.
func (s *Store) AddMonthlyReport(r model.MonthlyReport) error {
	path := s.reportsPath(r.Period)
	f, isNew, err := openAppend(path)
	if err != nil {
		return fmt.Errorf("opening reports: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, ReportHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendReports(f, []model.MonthlyReport{r}); err != nil {
		return fmt.Errorf("appending report: %w", err)
	}
	return nil
}

// ReportsByPeriod reads all branch reports for a period. Zero-substitution
// for unparsable totals has already been applied to what it returns.
func (s *Store) ReportsByPeriod(p model.Period) ([]model.MonthlyReport, error) {
	reports, _, err := s.readReports(p)
	return reports, err
}

// UpdateMonthlyReport applies a partial update to the report with the given
// id. The period is recovered from the id's natural key.
func (s *Store) UpdateMonthlyReport(reportID string, fields report.Update) error {
	p, _, err := id.ParseReportID(reportID)
	if err != nil {
		return err
	}

	reports, _, err := s.readReports(p)
	if err != nil {
		return err
	}

	found := false
	for i := range reports {
		if reports[i].ID != reportID {
			continue
		}
		found = true
		if fields.Status != nil {
			reports[i].Status = *fields.Status
		}
		if fields.Evidence != nil {
			reports[i].Evidence = *fields.Evidence
		}
		if fields.Delivery != nil {
			reports[i].Delivery = *fields.Delivery
		}
	}
	if !found {
		return fmt.Errorf("no report %s", reportID)
	}

	path := s.reportsPath(p)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewriting reports %s: %w", path, err)
	}
	defer f.Close()
	return WriteReports(f, reports)
}

func (s *Store) readReports(p model.Period) ([]model.MonthlyReport, []model.IntegrityWarning, error) {
	path := s.reportsPath(p)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening reports %s: %w", path, err)
	}
	defer f.Close()

	reports, warnings, err := ReadReports(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading reports %s: %w", path, err)
	}
	return reports, warnings, nil
}

func (s *Store) transactionsPath(branchID string, p model.Period) string {
	return filepath.Join(s.root, "ledger", branchID,
		fmt.Sprintf("%04d", p.Year), fmt.Sprintf("%02d", p.Month), "transactions.csv")
}

func (s *Store) reportsPath(p model.Period) string {
	return filepath.Join(s.root, "reports",
		fmt.Sprintf("%04d", p.Year), fmt.Sprintf("%02d", p.Month), "reports.csv")
}

// openAppend opens path for appending, creating parent directories. isNew
// reports whether the file did not exist yet.
func openAppend(path string) (f *os.File, isNew bool, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, false, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}
	f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, false, err
	}
	return f, isNew, nil
}
