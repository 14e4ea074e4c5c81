package treasury

import (
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// ClassifyCustody derives the custody classification for a transaction.
// Income with evidence attached counts as deposited; without evidence the
// funds are flagged as cash in custody for audit visibility. Expenses have
// no custody classification.
func ClassifyCustody(kind model.Kind, evidence string) model.Custody {
	if !kind.IsIncome() {
		return ""
	}
	if evidence != "" {
		return model.CustodyDeposit
	}
	return model.CustodyCashInCustody
}

// ValidateDelivery checks the closing delivery classification. Both the
// method and the receiver-name-or-operation-reference are mandatory before
// a report can be finalized, independent of per-item custody.
func ValidateDelivery(d model.Delivery) *model.ValidationError {
	if !d.Method.Valid() {
		return &model.ValidationError{
			Field:  "delivery_method",
			Reason: "delivery method must be CASH_HANDOFF, BANK_DEPOSIT or TRANSFER",
		}
	}
	if d.Receiver == "" {
		return &model.ValidationError{
			Field:  "delivery_receiver",
			Reason: "delivery requires a receiver name or operation reference",
		}
	}
	return nil
}
