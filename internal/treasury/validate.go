package treasury

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// MinUnreceiptedDescription is the minimum description length for an expense
// with no evidence attached. The description acts as textual proof when no
// receipt exists.
const MinUnreceiptedDescription = 30

// ItemInput is one transaction as entered in the wizard form, before it has
// a durable id.
type ItemInput struct {
	Kind        model.Kind
	Amount      decimal.Decimal
	MemberID    string
	Witness     string
	Description string
	Purpose     string
	Evidence    string
}

// ValidateItem checks a single entry against the per-item field rules and
// returns the first violation as a human-readable reason, or nil when the
// item is valid. hasEvidence reflects whether evidence is attached at the
// item or batch level; the expense description fallback rule is conditional
// on it. It never panics; the caller decides how to surface the reason.
func ValidateItem(in ItemInput, hasEvidence bool) *model.ValidationError {
	if !in.Amount.IsPositive() {
		return &model.ValidationError{Field: "amount", Reason: "amount must be greater than zero"}
	}

	if in.Kind.IsIncome() {
		if in.Witness == "" {
			return &model.ValidationError{Field: "witness", Reason: "income requires a witness identity"}
		}
		if in.Kind == model.KindSpecialHonor && in.Purpose == "" {
			return &model.ValidationError{Field: "purpose", Reason: "special honor requires a purpose or beneficiary"}
		}
		return nil
	}

	if in.Description == "" {
		return &model.ValidationError{Field: "description", Reason: "expense requires a description"}
	}
	if !hasEvidence && utf8.RuneCountInString(in.Description) < MinUnreceiptedDescription {
		return &model.ValidationError{
			Field:  "description",
			Reason: "expense without evidence needs a description of at least 30 characters",
		}
	}
	return nil
}
