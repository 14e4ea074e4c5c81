package model

import (
	"github.com/shopspring/decimal"
)

// ReportStatus is the lifecycle state of a monthly report. Transitions are
// monotonic: PENDING -> SUBMITTED -> ACCEPTED.
type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportSubmitted ReportStatus = "SUBMITTED"
	ReportAccepted  ReportStatus = "ACCEPTED"
)

// DeliveryMethod classifies how collected funds were delivered to central
// treasury at monthly closing.
type DeliveryMethod string

const (
	DeliveryCashHandoff DeliveryMethod = "CASH_HANDOFF"
	DeliveryBankDeposit DeliveryMethod = "BANK_DEPOSIT"
	DeliveryTransfer    DeliveryMethod = "TRANSFER"
)

// Valid reports whether m is one of the recognized delivery methods.
func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryCashHandoff, DeliveryBankDeposit, DeliveryTransfer:
		return true
	}
	return false
}

// Delivery is the closing delivery classification: how the funds left the
// branch and who received them (a name or an operation reference).
type Delivery struct {
	Method   DeliveryMethod
	Receiver string
}

// ExpenseDetail is one line of a report's expense breakdown.
type ExpenseDetail struct {
	TransactionID string
	Description   string
	Amount        decimal.Decimal
}

// MonthlyReport aggregates one branch's transactions for one period.
// Net is always recomputed from the totals, never trusted as stored truth.
type MonthlyReport struct {
	ID             string
	BranchID       string
	Period         Period
	IncomeTotal    decimal.Decimal
	ExpenseTotal   decimal.Decimal
	Net            decimal.Decimal
	ExpenseDetails []ExpenseDetail
	Status         ReportStatus
	Evidence       string
	Delivery       Delivery
}
