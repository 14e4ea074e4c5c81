package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// TransactionHeader is the CSV header for transactions.csv.
const TransactionHeader = "id,date,branch_id,kind,amount,member_id,witness,description,purpose,evidence,custody,approval"

const (
	txNumFields = 12
	colID       = 0
	colDate     = 1
	colBranchID = 2
	colKind     = 3
	colAmount   = 4
	colMemberID = 5
	colWitness  = 6
	colDesc     = 7
	colPurpose  = 8
	colEvidence = 9
	colCustody  = 10
	colApproval = 11
)

// ReadTransactions reads all transactions from a transactions.csv reader.
// Rows with a missing or non-numeric amount are kept with a zero amount and
// reported as warnings rather than failing the read.
func ReadTransactions(r io.Reader) ([]model.Transaction, []model.IntegrityWarning, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = txNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	var txns []model.Transaction
	var warnings []model.IntegrityWarning
	for i, rec := range records[1:] {
		tx, warning, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if warning != nil {
			warnings = append(warnings, *warning)
		}
		txns = append(txns, tx)
	}
	return txns, warnings, nil
}

// AppendTransactions appends transactions to a transactions.csv writer (no header).
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, tx := range txns {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, txNumFields)
	row[colID] = tx.ID
	row[colDate] = tx.Date.String()
	row[colBranchID] = tx.BranchID
	row[colKind] = string(tx.Kind)
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colMemberID] = tx.MemberID
	row[colWitness] = tx.Witness
	row[colDesc] = tx.Description
	row[colPurpose] = tx.Purpose
	row[colEvidence] = tx.Evidence
	row[colCustody] = string(tx.Custody)
	row[colApproval] = string(tx.Approval)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction. An unparsable
// amount is substituted with zero and reported as a warning.
func UnmarshalTransaction(record []string) (model.Transaction, *model.IntegrityWarning, error) {
	if len(record) != txNumFields {
		return model.Transaction{}, nil, fmt.Errorf("expected %d fields, got %d", txNumFields, len(record))
	}

	date, err := model.ParseDate(record[colDate])
	if err != nil {
		return model.Transaction{}, nil, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	var warning *model.IntegrityWarning
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		amount = decimal.Zero
		warning = &model.IntegrityWarning{
			Context: "transaction " + record[colID],
			Detail:  fmt.Sprintf("amount %q is not numeric, substituted zero", record[colAmount]),
		}
	}

	return model.Transaction{
		ID:          record[colID],
		Date:        date,
		BranchID:    record[colBranchID],
		Kind:        model.Kind(record[colKind]),
		Amount:      amount,
		MemberID:    record[colMemberID],
		Witness:     record[colWitness],
		Description: record[colDesc],
		Purpose:     record[colPurpose],
		Evidence:    record[colEvidence],
		Custody:     model.Custody(record[colCustody]),
		Approval:    model.ApprovalStatus(record[colApproval]),
	}, warning, nil
}

func headerFields(header string) []string {
	return strings.Split(header, ",")
}
