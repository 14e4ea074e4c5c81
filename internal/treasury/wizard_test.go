package treasury

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// fakeSink collects committed transactions in memory.
type fakeSink struct {
	txns []model.Transaction
}

func (f *fakeSink) AddTransaction(tx model.Transaction) error {
	f.txns = append(f.txns, tx)
	return nil
}

var treasurer = model.Actor{Name: "Hna. Marta", Role: model.RoleTreasurer, BranchID: "anexo-norte"}

func openIncomeSession(t *testing.T, sink *fakeSink) *Session {
	t.Helper()
	s := NewSession(treasurer, sink, nil, SessionOptions{})
	require.NoError(t, s.SetMetadata(BatchMetadata{
		Date:    model.NewDate(2025, 1, 15),
		Kind:    BatchIncome,
		Witness: "Hna. Rosa",
	}))
	require.NoError(t, s.AdvanceToItems())
	return s
}

func TestMetadataGuard(t *testing.T) {
	today := model.NewDate(2025, 1, 20)

	assert.Nil(t, MetadataGuard(BatchMetadata{Date: model.NewDate(2025, 1, 15), Kind: BatchIncome, Witness: "w"}, today))
	assert.NotNil(t, MetadataGuard(BatchMetadata{Kind: BatchExpense}, today), "missing date")
	assert.NotNil(t, MetadataGuard(BatchMetadata{Date: model.NewDate(2025, 1, 21), Kind: BatchExpense}, today), "future date")
	assert.NotNil(t, MetadataGuard(BatchMetadata{Date: model.NewDate(2025, 1, 15), Kind: BatchIncome}, today), "income without witness")
	// Expense batches do not need a witness.
	assert.Nil(t, MetadataGuard(BatchMetadata{Date: model.NewDate(2025, 1, 15), Kind: BatchExpense}, today))
}

func TestAdvanceToItems_BlockedStaysAtMetadata(t *testing.T) {
	s := NewSession(treasurer, &fakeSink{}, nil, SessionOptions{})
	require.NoError(t, s.SetMetadata(BatchMetadata{Kind: BatchIncome})) // no date, no witness

	err := s.AdvanceToItems()
	var gb *model.GuardBlocked
	require.ErrorAs(t, err, &gb)
	assert.Equal(t, StepMetadata, s.Step())
}

func TestAdvanceToEvidence_RequiresItems(t *testing.T) {
	s := openIncomeSession(t, &fakeSink{})
	err := s.AdvanceToEvidence()
	var gb *model.GuardBlocked
	require.ErrorAs(t, err, &gb)
	assert.Equal(t, StepItems, s.Step())

	_, err = s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("50.00")})
	require.NoError(t, err)
	require.NoError(t, s.AdvanceToEvidence())
	assert.Equal(t, StepEvidence, s.Step())
}

func TestAddItem_ValidationLeavesListUnchanged(t *testing.T) {
	s := openIncomeSession(t, &fakeSink{})
	_, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("-1")})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, s.Items())
}

func TestAddItem_KindMustMatchBatch(t *testing.T) {
	s := openIncomeSession(t, &fakeSink{})
	_, err := s.AddItem(ItemInput{Kind: model.KindExpense, Amount: dec("10"), Description: strings.Repeat("x", 30)})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)
}

func TestAddItem_InheritsBatchWitness(t *testing.T) {
	s := openIncomeSession(t, &fakeSink{})
	// No per-item witness supplied; the batch witness satisfies validation.
	item, err := s.AddItem(ItemInput{Kind: model.KindOffering, Amount: dec("20.00")})
	require.NoError(t, err)
	assert.Equal(t, "Hna. Rosa", item.Witness)
}

func TestEditInPlaceByTempID(t *testing.T) {
	s := openIncomeSession(t, &fakeSink{})
	first, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("50.00"), MemberID: "dni-1"})
	require.NoError(t, err)
	_, err = s.AddItem(ItemInput{Kind: model.KindOffering, Amount: dec("5.00")})
	require.NoError(t, err)

	form, err := s.SelectItem(first.TempID)
	require.NoError(t, err)
	assert.Equal(t, dec("50.00"), form.Amount)

	form.Amount = dec("75.00")
	updated, err := s.AddItem(form)
	require.NoError(t, err)
	assert.Equal(t, first.TempID, updated.TempID, "updated by id, not appended")

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, dec("75.00"), items[0].Amount)

	// Edit mode has exited: the next submission appends.
	_, err = s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("1.00")})
	require.NoError(t, err)
	assert.Len(t, s.Items(), 3)
}

func TestRemoveItemByTempID(t *testing.T) {
	s := openIncomeSession(t, &fakeSink{})
	a, _ := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("50.00"), MemberID: "dni-1"})
	b, _ := s.AddItem(ItemInput{Kind: model.KindOffering, Amount: dec("5.00")})

	require.NoError(t, s.RemoveItem(a.TempID))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, b.TempID, items[0].TempID)

	assert.Error(t, s.RemoveItem("pending-999"))
}

func TestMergeDuplicates(t *testing.T) {
	s := NewSession(treasurer, &fakeSink{}, nil, SessionOptions{MergeDuplicates: true})
	require.NoError(t, s.SetMetadata(BatchMetadata{Date: model.NewDate(2025, 1, 15), Kind: BatchIncome, Witness: "w"}))
	require.NoError(t, s.AdvanceToItems())

	_, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("50.00"), MemberID: "dni-1"})
	require.NoError(t, err)
	merged, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("25.00"), MemberID: "dni-1"})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 1, "same natural key merges instead of appending")
	assert.Equal(t, dec("75.00"), merged.Amount)

	// Different member: different natural key, appends.
	_, err = s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("10.00"), MemberID: "dni-2"})
	require.NoError(t, err)
	assert.Len(t, s.Items(), 2)
}

func TestCancelDiscardsPendingOnly(t *testing.T) {
	sink := &fakeSink{}
	s := openIncomeSession(t, sink)
	_, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("50.00")})
	require.NoError(t, err)

	s.Cancel()
	assert.Empty(t, s.Items())
	assert.Equal(t, StepCommitted, s.Step())
	assert.Empty(t, sink.txns, "no effect on committed data")
}

func TestCommit_PersistsAllWithDistinctIDs(t *testing.T) {
	sink := &fakeSink{}
	s := openIncomeSession(t, sink)
	for _, amount := range []string{"10.00", "20.00", "30.00"} {
		_, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec(amount)})
		require.NoError(t, err)
	}
	require.NoError(t, s.AdvanceToEvidence())

	committed, err := s.Commit()
	require.NoError(t, err)
	require.Len(t, committed, 3)
	require.Len(t, sink.txns, 3)

	ids := make(map[string]bool)
	for _, tx := range sink.txns {
		ids[tx.ID] = true
		assert.Equal(t, model.NewDate(2025, 1, 15), tx.Date)
		assert.Equal(t, "Hna. Rosa", tx.Witness)
		assert.Equal(t, "anexo-norte", tx.BranchID)
	}
	assert.Len(t, ids, 3, "every transaction has a distinct id")

	assert.Equal(t, StepCommitted, s.Step())
	assert.Empty(t, s.Items())
}

func TestCommit_InheritsBatchEvidence(t *testing.T) {
	sink := &fakeSink{}
	s := openIncomeSession(t, sink)
	_, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("10.00")})
	require.NoError(t, err)
	_, err = s.AddItem(ItemInput{Kind: model.KindOffering, Amount: dec("5.00"), Evidence: "data:own"})
	require.NoError(t, err)
	require.NoError(t, s.AdvanceToEvidence())

	token := s.Evidence().Begin()
	s.Evidence().Resolve(token, "data:batch", nil)

	_, err = s.Commit()
	require.NoError(t, err)

	assert.Equal(t, "data:batch", sink.txns[0].Evidence, "item without evidence inherits batch evidence")
	assert.Equal(t, "data:own", sink.txns[1].Evidence, "item evidence wins over batch evidence")
	assert.Equal(t, model.CustodyDeposit, sink.txns[0].Custody)
}

func TestCommit_BlockedWhilePendingEvidence(t *testing.T) {
	sink := &fakeSink{}
	s := openIncomeSession(t, sink)
	_, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("10.00")})
	require.NoError(t, err)
	require.NoError(t, s.AdvanceToEvidence())

	token := s.Evidence().Begin()
	_, err = s.Commit()
	var gb *model.GuardBlocked
	require.ErrorAs(t, err, &gb)
	assert.Empty(t, sink.txns)

	// Re-check after resolution: the same call now succeeds.
	s.Evidence().Resolve(token, "data:batch", nil)
	_, err = s.Commit()
	require.NoError(t, err)
	assert.Len(t, sink.txns, 1)
}

func TestCommit_CashInCustodyWithoutEvidence(t *testing.T) {
	sink := &fakeSink{}
	s := openIncomeSession(t, sink)
	_, err := s.AddItem(ItemInput{Kind: model.KindTithe, Amount: dec("10.00")})
	require.NoError(t, err)
	require.NoError(t, s.AdvanceToEvidence())
	_, err = s.Commit()
	require.NoError(t, err)
	assert.Equal(t, model.CustodyCashInCustody, sink.txns[0].Custody)
}

func TestExpenseApprovalSubStatus(t *testing.T) {
	assert.Equal(t, model.ApprovalApproved, ExpenseApproval(model.Actor{Role: model.RolePastor}))
	assert.Equal(t, model.ApprovalApproved, ExpenseApproval(model.Actor{Role: model.RoleSupervisor}))
	assert.Equal(t, model.ApprovalPendingBranch, ExpenseApproval(model.Actor{Role: model.RoleTreasurer}))
}

func TestAddItem_BatchEvidenceRelaxesUnreceiptedRule(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession(treasurer, sink, nil, SessionOptions{})
	require.NoError(t, s.SetMetadata(BatchMetadata{Date: model.NewDate(2025, 1, 15), Kind: BatchExpense}))
	require.NoError(t, s.AdvanceToItems())

	short := ItemInput{Kind: model.KindExpense, Amount: dec("30.00"), Description: "limpieza"}

	// Without any evidence the short description is rejected.
	_, err := s.AddItem(short)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)

	// Batch evidence attached before entry counts as a receipt.
	token := s.Evidence().Begin()
	require.True(t, s.Evidence().Resolve(token, "data:batch", nil))
	_, err = s.AddItem(short)
	require.NoError(t, err)

	require.NoError(t, s.AdvanceToEvidence())
	_, err = s.Commit()
	require.NoError(t, err)
	require.Len(t, sink.txns, 1)
	assert.Equal(t, "data:batch", sink.txns[0].Evidence)
}

func TestApproveExpense(t *testing.T) {
	pending := model.Transaction{ID: "TX-1", Kind: model.KindExpense, Approval: model.ApprovalPendingBranch}
	pastor := model.Actor{Name: "Pr. Lucas", Role: model.RolePastor, BranchID: "anexo-norte"}

	assert.NoError(t, ApproveExpense(pastor, pending))

	var gb *model.GuardBlocked
	err := ApproveExpense(treasurer, pending)
	require.ErrorAs(t, err, &gb)

	income := model.Transaction{ID: "TX-2", Kind: model.KindTithe}
	err = ApproveExpense(pastor, income)
	require.ErrorAs(t, err, &gb)

	approved := pending
	approved.Approval = model.ApprovalApproved
	err = ApproveExpense(pastor, approved)
	require.ErrorAs(t, err, &gb)
}

func TestCommit_ExpenseBatchCarriesApproval(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession(treasurer, sink, nil, SessionOptions{})
	require.NoError(t, s.SetMetadata(BatchMetadata{Date: model.NewDate(2025, 1, 15), Kind: BatchExpense}))
	require.NoError(t, s.AdvanceToItems())
	_, err := s.AddItem(ItemInput{
		Kind:        model.KindExpense,
		Amount:      dec("80.00"),
		Description: strings.Repeat("compra de sillas para el anexo ", 2),
	})
	require.NoError(t, err)
	require.NoError(t, s.AdvanceToEvidence())
	_, err = s.Commit()
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPendingBranch, sink.txns[0].Approval)
}
