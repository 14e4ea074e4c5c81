package model

import (
	"github.com/shopspring/decimal"
)

// Kind classifies a treasury transaction. Everything except EXPENSE is an
// income subtype.
type Kind string

const (
	KindTithe        Kind = "TITHE"
	KindOffering     Kind = "OFFERING"
	KindSpecialHonor Kind = "SPECIAL_HONOR"
	KindExpense      Kind = "EXPENSE"
)

// IsIncome reports whether the kind is an income subtype.
func (k Kind) IsIncome() bool { return k != KindExpense }

// Custody records where collected funds physically sit until delivered to
// central treasury.
type Custody string

const (
	CustodyDeposit       Custody = "DEPOSIT"
	CustodyCashInCustody Custody = "CASH_IN_CUSTODY"
)

// ApprovalStatus is the per-expense approval sub-status. It is independent
// of the monthly report lifecycle and the two can diverge.
type ApprovalStatus string

const (
	ApprovalApproved      ApprovalStatus = "APPROVED"
	ApprovalPendingBranch ApprovalStatus = "PENDING_BRANCH_APPROVAL"
)

// Transaction is one committed treasury movement. Immutable once committed,
// except for the approval sub-status.
type Transaction struct {
	ID          string
	Date        Date
	BranchID    string
	Kind        Kind
	Amount      decimal.Decimal
	MemberID    string // optional linked member (dni)
	Witness     string // required for income
	Description string // required for expenses
	Purpose     string // required for SPECIAL_HONOR income
	Evidence    string // embeddable evidence reference, empty if none
	Custody     Custody
	Approval    ApprovalStatus // expenses only
}
