package treasury

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/willkamu/crm-shekinah-sub001/internal/id"
	"github.com/willkamu/crm-shekinah-sub001/internal/model"
	"github.com/willkamu/crm-shekinah-sub001/internal/notify"
)

// TransactionSink persists committed transactions. Durability and failure
// surfacing are the collaborator's responsibility.
type TransactionSink interface {
	AddTransaction(tx model.Transaction) error
}

// Step is the wizard's position in the batch-entry flow.
type Step int

const (
	StepMetadata Step = iota
	StepItems
	StepEvidence
	StepCommitted
)

func (s Step) String() string {
	switch s {
	case StepMetadata:
		return "METADATA"
	case StepItems:
		return "ITEMS"
	case StepEvidence:
		return "EVIDENCE"
	case StepCommitted:
		return "COMMITTED"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// BatchKind selects the income or expense entry flow.
type BatchKind string

const (
	BatchIncome  BatchKind = "income"
	BatchExpense BatchKind = "expense"
)

// BatchMetadata is the shared date/witness context for every item in a batch.
type BatchMetadata struct {
	Date    model.Date
	Kind    BatchKind
	Witness string
}

// PendingItem is an ephemeral, session-scoped entry. The temp id is the only
// valid handle for edit, delete and merge; the list order is for display only.
type PendingItem struct {
	TempID string
	ItemInput
}

// SessionOptions tunes wizard behavior.
type SessionOptions struct {
	// MergeDuplicates sums the amount into an existing pending item with the
	// same natural key instead of appending a duplicate row.
	MergeDuplicates bool
}

// Session is one open batch-entry wizard. A session walks
// METADATA -> ITEMS -> EVIDENCE -> COMMITTED exactly once; cancelling
// discards all pending items with no effect on committed data.
type Session struct {
	sessionID string
	actor     model.Actor
	sink      TransactionSink
	notifier  notify.Notifier
	opts      SessionOptions

	step     Step
	meta     BatchMetadata
	items    []PendingItem
	editing  string // temp id loaded into the entry form, "" when not editing
	evidence EvidenceSlot
	nextTemp int
}

// NewSession opens a wizard session for the given actor.
func NewSession(actor model.Actor, sink TransactionSink, notifier notify.Notifier, opts SessionOptions) *Session {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Session{
		sessionID: uuid.NewString(),
		actor:     actor,
		sink:      sink,
		notifier:  notifier,
		opts:      opts,
		step:      StepMetadata,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.sessionID }

// Step returns the wizard's current step.
func (s *Session) Step() Step { return s.step }

// Metadata returns the batch-level context.
func (s *Session) Metadata() BatchMetadata { return s.meta }

// Evidence exposes the batch-level evidence slot.
func (s *Session) Evidence() *EvidenceSlot { return &s.evidence }

// MetadataGuard is the METADATA -> ITEMS transition predicate: the batch
// date must be present and not in the future, and income batches need a
// witness identity. It reports a single blocking reason.
func MetadataGuard(meta BatchMetadata, today model.Date) *model.GuardBlocked {
	if meta.Date.IsZero() {
		return &model.GuardBlocked{Reason: "batch date is required"}
	}
	if meta.Date.After(today) {
		return &model.GuardBlocked{Reason: "batch date cannot be in the future"}
	}
	if meta.Kind == BatchIncome && meta.Witness == "" {
		return &model.GuardBlocked{Reason: "income batches require a witness identity"}
	}
	return nil
}

// ItemsGuard is the ITEMS -> EVIDENCE transition predicate.
func ItemsGuard(pending int) *model.GuardBlocked {
	if pending == 0 {
		return &model.GuardBlocked{Reason: "at least one pending item is required"}
	}
	return nil
}

// EvidenceGuard is the EVIDENCE -> COMMITTED predicate. A pending ingestion
// reads as absent evidence, so the guard must be re-checked after the read
// resolves rather than assumed satisfied.
func EvidenceGuard(slot *EvidenceSlot) *model.GuardBlocked {
	if slot.State() == EvidencePending {
		return &model.GuardBlocked{Reason: "evidence ingestion is still pending"}
	}
	return nil
}

// SetMetadata records the batch context. Only valid before the items step.
func (s *Session) SetMetadata(meta BatchMetadata) error {
	if s.step != StepMetadata {
		return &model.GuardBlocked{Reason: "metadata is fixed once the items step begins"}
	}
	s.meta = meta
	return nil
}

// AdvanceToItems applies the metadata guard and moves to the items step.
// On violation the step does not advance.
func (s *Session) AdvanceToItems() error {
	if s.step != StepMetadata {
		return &model.GuardBlocked{Reason: "wizard is not at the metadata step"}
	}
	if gb := MetadataGuard(s.meta, model.Today()); gb != nil {
		return gb
	}
	s.step = StepItems
	return nil
}

// AdvanceToEvidence applies the items guard and moves to the evidence step.
func (s *Session) AdvanceToEvidence() error {
	if s.step != StepItems {
		return &model.GuardBlocked{Reason: "wizard is not at the items step"}
	}
	if gb := ItemsGuard(len(s.items)); gb != nil {
		return gb
	}
	s.step = StepEvidence
	return nil
}

// AddItem validates and stores one entry. When an item is selected for
// editing, the submission updates that item in place by temp id and exits
// edit mode. Otherwise, with MergeDuplicates set, an entry whose natural key
// matches an existing pending item merges by summing amounts; anything else
// appends. A validation failure leaves the pending list unchanged.
func (s *Session) AddItem(in ItemInput) (PendingItem, error) {
	if s.step != StepItems {
		return PendingItem{}, &model.GuardBlocked{Reason: "wizard is not at the items step"}
	}
	if err := s.checkKind(in.Kind); err != nil {
		return PendingItem{}, err
	}

	// Items inherit the batch-level witness.
	in.Witness = s.meta.Witness

	if verr := ValidateItem(in, s.hasEvidence(in)); verr != nil {
		return PendingItem{}, verr
	}

	if s.editing != "" {
		item, idx := s.find(s.editing)
		if idx < 0 {
			s.editing = ""
			return PendingItem{}, &model.GuardBlocked{Reason: "item under edit no longer exists"}
		}
		item.ItemInput = in
		s.items[idx] = item
		s.editing = ""
		return item, nil
	}

	if s.opts.MergeDuplicates {
		key := naturalKey(in)
		for i, existing := range s.items {
			if naturalKey(existing.ItemInput) == key {
				s.items[i].Amount = existing.Amount.Add(in.Amount)
				return s.items[i], nil
			}
		}
	}

	s.nextTemp++
	item := PendingItem{TempID: fmt.Sprintf("pending-%d", s.nextTemp), ItemInput: in}
	s.items = append(s.items, item)
	return item, nil
}

// SelectItem loads a pending item's fields into the entry form and marks it
// as the edit target. The next AddItem replaces it in place.
func (s *Session) SelectItem(tempID string) (ItemInput, error) {
	item, idx := s.find(tempID)
	if idx < 0 {
		return ItemInput{}, &model.GuardBlocked{Reason: "no pending item " + tempID}
	}
	s.editing = tempID
	return item.ItemInput, nil
}

// RemoveItem deletes a pending item by temp id.
func (s *Session) RemoveItem(tempID string) error {
	_, idx := s.find(tempID)
	if idx < 0 {
		return &model.GuardBlocked{Reason: "no pending item " + tempID}
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if s.editing == tempID {
		s.editing = ""
	}
	return nil
}

// Items returns a copy of the pending list in entry order.
func (s *Session) Items() []PendingItem {
	out := make([]PendingItem, len(s.items))
	copy(out, s.items)
	return out
}

// Cancel discards all pending items and closes the session. Committed data
// is unaffected.
func (s *Session) Cancel() {
	s.items = nil
	s.editing = ""
	s.evidence.Clear()
	s.step = StepCommitted
}

// Commit finalizes the batch: every pending item gets a fresh unique id,
// inherits the batch evidence when it has none, and is persisted through the
// sink. The pending list is cleared and the session closes on success.
func (s *Session) Commit() ([]model.Transaction, error) {
	if s.step != StepEvidence {
		return nil, &model.GuardBlocked{Reason: "wizard is not at the evidence step"}
	}
	if gb := EvidenceGuard(&s.evidence); gb != nil {
		return nil, gb
	}
	batchEvidence, _ := s.evidence.Value()

	committed := make([]model.Transaction, 0, len(s.items))
	for _, item := range s.items {
		evidence := item.Evidence
		if evidence == "" {
			evidence = batchEvidence
		}
		tx := model.Transaction{
			ID:          id.NewTransactionID(s.meta.Date),
			Date:        s.meta.Date,
			BranchID:    s.actor.BranchID,
			Kind:        item.Kind,
			Amount:      item.Amount,
			MemberID:    item.MemberID,
			Witness:     s.meta.Witness,
			Description: item.Description,
			Purpose:     item.Purpose,
			Evidence:    evidence,
			Custody:     ClassifyCustody(item.Kind, evidence),
		}
		if item.Kind == model.KindExpense {
			tx.Approval = ExpenseApproval(s.actor)
		}
		if err := s.sink.AddTransaction(tx); err != nil {
			return committed, fmt.Errorf("persisting transaction %s: %w", tx.ID, err)
		}
		committed = append(committed, tx)
	}

	s.items = nil
	s.editing = ""
	s.step = StepCommitted
	s.notifier.Notify(fmt.Sprintf("batch committed: %d transaction(s)", len(committed)), notify.Success)
	return committed, nil
}

// ExpenseApproval derives the approval sub-status for an expense recorded by
// the given actor: senior roles record auto-approved, anyone else leaves the
// expense pending branch approval. This sub-status is independent of the
// monthly report lifecycle and the two can diverge.
func ExpenseApproval(actor model.Actor) model.ApprovalStatus {
	if actor.Role.Senior() {
		return model.ApprovalApproved
	}
	return model.ApprovalPendingBranch
}

// ApproveExpense checks a later branch approval of a committed expense. Only
// a senior role may approve, only expenses carry the sub-status, and only
// PENDING_BRANCH_APPROVAL may transition.
func ApproveExpense(actor model.Actor, tx model.Transaction) error {
	if !actor.Role.Senior() {
		return &model.GuardBlocked{Reason: "only a senior role may approve expenses"}
	}
	if tx.Kind != model.KindExpense {
		return &model.GuardBlocked{Reason: "only expenses carry an approval sub-status"}
	}
	if tx.Approval != model.ApprovalPendingBranch {
		return &model.GuardBlocked{Reason: fmt.Sprintf("expense %s is %s, not pending approval", tx.ID, tx.Approval)}
	}
	return nil
}

func (s *Session) checkKind(k model.Kind) *model.ValidationError {
	switch s.meta.Kind {
	case BatchIncome:
		if !k.IsIncome() {
			return &model.ValidationError{Field: "kind", Reason: "income batches accept income items only"}
		}
	case BatchExpense:
		if k.IsIncome() {
			return &model.ValidationError{Field: "kind", Reason: "expense batches accept expense items only"}
		}
	}
	return nil
}

// hasEvidence reports whether evidence is attached at the item or batch level.
func (s *Session) hasEvidence(in ItemInput) bool {
	if in.Evidence != "" {
		return true
	}
	_, ok := s.evidence.Value()
	return ok
}

func (s *Session) find(tempID string) (PendingItem, int) {
	for i, item := range s.items {
		if item.TempID == tempID {
			return item, i
		}
	}
	return PendingItem{}, -1
}

// naturalKey identifies duplicate entries for the merge option.
func naturalKey(in ItemInput) string {
	return string(in.Kind) + "|" + in.Description + "|" + in.MemberID
}
